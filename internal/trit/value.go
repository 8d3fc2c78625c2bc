package trit

import "math/big"

// Value is an immutable ternary number held in canonical form.
type Value struct {
	n *big.Int
}

// Parse validates s and returns its canonical value. "0012" and "-0"
// are accepted and normalize to "12" and "0".
func Parse(s string) (Value, error) {
	n, err := decode("parse", s)
	if err != nil {
		return Value{}, err
	}
	return Value{n: n}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// FromBig copies n into a Value.
func FromBig(n *big.Int) Value {
	return Value{n: new(big.Int).Set(n)}
}

// FromInt64 builds a Value from a machine integer.
func FromInt64(n int64) Value {
	return Value{n: big.NewInt(n)}
}

// Big returns a copy of the underlying integer.
func (v Value) Big() *big.Int {
	if v.n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v.n)
}

// Sign reports -1, 0 or +1.
func (v Value) Sign() int {
	if v.n == nil {
		return 0
	}
	return v.n.Sign()
}

// IsZero reports whether v is zero.
func (v Value) IsZero() bool { return v.Sign() == 0 }

// String returns the canonical unbalanced form.
func (v Value) String() string {
	if v.n == nil {
		return "0"
	}
	return Encode(v.n)
}

// Decimal returns the base-10 form.
func (v Value) Decimal() string {
	if v.n == nil {
		return "0"
	}
	return v.n.String()
}

// Balanced returns the balanced-alphabet remap of the canonical digits.
// Negative values have no balanced rendering and report ErrInvalidDigit.
func (v Value) Balanced() (string, error) {
	return ToBalanced(v.String())
}

// Equal reports numeric equality.
func (v Value) Equal(o Value) bool {
	return v.Big().Cmp(o.Big()) == 0
}

// MarshalText implements encoding.TextMarshaler.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Value) UnmarshalText(b []byte) error {
	p, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}
