package trit

// Digit-wise logic works on the representation, not the value: operands are
// unsigned digit strings and results keep the padded width, so "0" digits on
// the left survive (Not("20") is "02").

// And returns the per-position minimum.
func And(a, b string) (string, error) {
	return zipDigits("and", a, b, func(x, y byte) byte { return min(x, y) })
}

// Or returns the per-position maximum.
func Or(a, b string) (string, error) {
	return zipDigits("or", a, b, func(x, y byte) byte { return max(x, y) })
}

// Xor returns the per-position sum modulo 3.
func Xor(a, b string) (string, error) {
	return zipDigits("xor", a, b, func(x, y byte) byte { return (x + y) % 3 })
}

// Not returns 2-d for every digit d.
func Not(a string) (string, error) {
	if err := checkDigits("not", a); err != nil {
		return "", err
	}
	out := make([]byte, len(a))
	for i := 0; i < len(a); i++ {
		out[i] = '0' + 2 - (a[i] - '0')
	}
	return string(out), nil
}

func zipDigits(op, a, b string, f func(x, y byte) byte) (string, error) {
	if err := checkDigits(op, a); err != nil {
		return "", err
	}
	if err := checkDigits(op, b); err != nil {
		return "", err
	}

	// Width is fixed from the original lengths before either side is padded.
	width := max(len(a), len(b))
	pa, pb := padLeft(a, width), padLeft(b, width)

	out := make([]byte, width)
	for i := 0; i < width; i++ {
		out[i] = '0' + f(pa[i]-'0', pb[i]-'0')
	}
	return string(out), nil
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	buf := make([]byte, width)
	pad := width - len(s)
	for i := 0; i < pad; i++ {
		buf[i] = '0'
	}
	copy(buf[pad:], s)
	return string(buf)
}

func checkDigits(op, s string) error {
	if s == "" {
		return newError(ErrInvalidDigit, op, s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '2' {
			return newError(ErrInvalidDigit, op, s)
		}
	}
	return nil
}
