package trit

// Balanced digits -, 0, + pair with unbalanced 0, 1, 2 position by position.
var (
	toBalanced = map[byte]byte{'0': '-', '1': '0', '2': '+'}
	toUnbal    = map[byte]byte{'-': '0', '0': '1', '+': '2'}
)

// ToBalanced remaps an unbalanced digit string onto the balanced alphabet.
// Any character outside {0,1,2}, a sign included, is rejected.
func ToBalanced(s string) (string, error) {
	return remap("bal", s, toBalanced)
}

// ToUnbalanced is the inverse of ToBalanced.
func ToUnbalanced(s string) (string, error) {
	return remap("unbal", s, toUnbal)
}

func remap(op, s string, table map[byte]byte) (string, error) {
	if s == "" {
		return "", newError(ErrInvalidDigit, op, s)
	}
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c, ok := table[s[i]]
		if !ok {
			return "", newError(ErrInvalidDigit, op, s)
		}
		out[i] = c
	}
	return string(out), nil
}
