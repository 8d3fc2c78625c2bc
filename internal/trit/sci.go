package trit

import (
	"math"
	"math/big"
)

// Scale is the fixed-point factor applied to every scientific result before
// truncation toward zero.
const Scale = 1000

// PiValue is the constant Pi scales; Pi() encodes 3141.
const PiValue = 3.141592653589793

// Sqrt returns trunc(sqrt(a) * Scale).
func Sqrt(a string) (string, error) {
	return realFunc("sqrt", a, func(x float64) (float64, bool) {
		return math.Sqrt(x), x >= 0
	})
}

// Log3 returns trunc(ln(a)/ln(3) * Scale).
func Log3(a string) (string, error) {
	return realFunc("log3", a, func(x float64) (float64, bool) {
		return math.Log(x) / math.Log(3), x > 0
	})
}

// Sin treats the decoded integer as radians, with no range reduction.
func Sin(a string) (string, error) {
	return realFunc("sin", a, func(x float64) (float64, bool) { return math.Sin(x), true })
}

// Cos treats the decoded integer as radians, with no range reduction.
func Cos(a string) (string, error) {
	return realFunc("cos", a, func(x float64) (float64, bool) { return math.Cos(x), true })
}

// Tan treats the decoded integer as radians, with no range reduction.
func Tan(a string) (string, error) {
	return realFunc("tan", a, func(x float64) (float64, bool) { return math.Tan(x), true })
}

// Pi returns the encoding of trunc(PiValue * Scale).
func Pi() string {
	s, _ := scaled(PiValue)
	return s
}

func realFunc(op, a string, f func(float64) (float64, bool)) (string, error) {
	n, err := decode(op, a)
	if err != nil {
		return "", err
	}
	x, _ := new(big.Float).SetInt(n).Float64()
	y, ok := f(x)
	if !ok {
		return "", newError(ErrDomain, op, a)
	}
	s, ok := scaled(y)
	if !ok {
		// operand too large for float64
		return "", newError(ErrDomain, op, a)
	}
	return s, nil
}

func scaled(y float64) (string, bool) {
	v := y * Scale
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", false
	}
	n, _ := new(big.Float).SetFloat64(v).Int(nil)
	return Encode(n), true
}
