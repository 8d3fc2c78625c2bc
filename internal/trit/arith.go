package trit

import "math/big"

// DefaultFactorialLimit is the largest operand Factorial accepts unless the
// caller configures another ceiling. It bounds output size, not precision.
const DefaultFactorialLimit = 20

func decodePair(op, a, b string) (*big.Int, *big.Int, error) {
	x, err := decode(op, a)
	if err != nil {
		return nil, nil, err
	}
	y, err := decode(op, b)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// Add returns a + b.
func Add(a, b string) (string, error) {
	x, y, err := decodePair("add", a, b)
	if err != nil {
		return "", err
	}
	return Encode(x.Add(x, y)), nil
}

// Sub returns a - b.
func Sub(a, b string) (string, error) {
	x, y, err := decodePair("sub", a, b)
	if err != nil {
		return "", err
	}
	return Encode(x.Sub(x, y)), nil
}

// Mul returns a * b.
func Mul(a, b string) (string, error) {
	x, y, err := decodePair("mul", a, b)
	if err != nil {
		return "", err
	}
	return Encode(x.Mul(x, y)), nil
}

// DivMod returns the floored quotient and remainder of a / b. The quotient
// rounds toward negative infinity and the remainder takes the divisor's sign.
func DivMod(a, b string) (quotient, remainder string, err error) {
	x, y, err := decodePair("div", a, b)
	if err != nil {
		return "", "", err
	}
	if y.Sign() == 0 {
		return "", "", newError(ErrDivisionByZero, "div", b)
	}
	q, r := floorDivMod(x, y)
	return Encode(q), Encode(r), nil
}

// floorDivMod adjusts Go's truncated QuoRem to floor semantics.
func floorDivMod(x, y *big.Int) (*big.Int, *big.Int) {
	q, r := new(big.Int).QuoRem(x, y, new(big.Int))
	if r.Sign() != 0 && r.Sign() != y.Sign() {
		q.Sub(q, big.NewInt(1))
		r.Add(r, y)
	}
	return q, r
}

// Pow returns a raised to b. Negative exponents have no integer result.
func Pow(a, b string) (string, error) {
	x, y, err := decodePair("pow", a, b)
	if err != nil {
		return "", err
	}
	if y.Sign() < 0 {
		return "", newError(ErrDomain, "pow", b)
	}
	return Encode(new(big.Int).Exp(x, y, nil)), nil
}

// Factorial returns a! for 0 <= a <= limit. A non-positive limit selects
// DefaultFactorialLimit.
func Factorial(a string, limit int64) (string, error) {
	x, err := decode("fact", a)
	if err != nil {
		return "", err
	}
	if limit <= 0 {
		limit = DefaultFactorialLimit
	}
	if x.Sign() < 0 {
		return "", newError(ErrNegativeInput, "fact", a)
	}
	if x.Cmp(big.NewInt(limit)) > 0 {
		return "", newError(ErrOverflowGuard, "fact", a)
	}
	return Encode(new(big.Int).MulRange(1, x.Int64())), nil
}
