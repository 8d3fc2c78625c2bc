package trit

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Known(t *testing.T) {
	cases := map[int64]string{
		0:    "0",
		1:    "1",
		2:    "2",
		3:    "10",
		5:    "12",
		9:    "100",
		-1:   "-1",
		-4:   "-11",
		841:  "1011011",
		1000: "1101001",
		3141: "11022100",
	}
	for n, want := range cases {
		assert.Equal(t, want, EncodeInt64(n), "encode(%d)", n)
	}
}

func TestDecode_AcceptsSignAndLeadingZeros(t *testing.T) {
	n, err := Decode("0012")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n.Int64())

	n, err = Decode("-0")
	require.NoError(t, err)
	assert.Equal(t, 0, n.Sign())
	assert.Equal(t, "0", Encode(n))

	n, err = Decode("-210")
	require.NoError(t, err)
	assert.Equal(t, int64(-21), n.Int64())
}

func TestDecode_Rejects(t *testing.T) {
	for _, s := range []string{"", "-", "3", "1a", "--1", " 1", "1-", "+1", "12.0"} {
		_, err := Decode(s)
		require.Error(t, err, "decode(%q)", s)
		assert.ErrorIs(t, err, ErrInvalidDigit, "decode(%q)", s)
	}
}

func TestRoundTrip_Int64Range(t *testing.T) {
	for n := int64(-5000); n <= 5000; n++ {
		got, err := Decode(EncodeInt64(n))
		require.NoError(t, err)
		if got.Int64() != n {
			t.Fatalf("round trip of %d gave %s", n, got)
		}
	}
}

func TestRoundTrip_Big(t *testing.T) {
	huge, ok := new(big.Int).SetString("-987654321098765432109876543210987654321098765432109876543210", 10)
	require.True(t, ok)
	for _, n := range []*big.Int{
		huge,
		new(big.Int).Neg(huge),
		new(big.Int).Exp(big.NewInt(3), big.NewInt(200), nil),
		new(big.Int).Sub(new(big.Int).Exp(big.NewInt(3), big.NewInt(200), nil), big.NewInt(1)),
	} {
		got, err := Decode(Encode(n))
		require.NoError(t, err)
		assert.Zero(t, got.Cmp(n), "round trip of %s", n)
	}
}

func TestEncode_NoLeadingZeros(t *testing.T) {
	for n := int64(1); n < 500; n++ {
		s := EncodeInt64(n)
		assert.NotEqual(t, byte('0'), s[0], "encode(%d)=%s", n, s)
	}
}

func TestBalanced_Mapping(t *testing.T) {
	b, err := ToBalanced("012")
	require.NoError(t, err)
	assert.Equal(t, "-0+", b)

	u, err := ToUnbalanced("+-0")
	require.NoError(t, err)
	assert.Equal(t, "201", u)
}

func TestBalanced_RoundTrip(t *testing.T) {
	for n := int64(0); n < 2000; n++ {
		s := EncodeInt64(n)
		b, err := ToBalanced(s)
		require.NoError(t, err)
		back, err := ToUnbalanced(b)
		require.NoError(t, err)
		assert.Equal(t, s, back)
	}
}

func TestBalanced_RejectsOutOfAlphabet(t *testing.T) {
	_, err := ToBalanced("-12")
	assert.ErrorIs(t, err, ErrInvalidDigit)

	_, err = ToBalanced("")
	assert.ErrorIs(t, err, ErrInvalidDigit)

	_, err = ToUnbalanced("+x-")
	assert.ErrorIs(t, err, ErrInvalidDigit)

	_, err = ToUnbalanced("2")
	assert.ErrorIs(t, err, ErrInvalidDigit)
}

func TestValue_Canonical(t *testing.T) {
	v, err := Parse("000120")
	require.NoError(t, err)
	assert.Equal(t, "120", v.String())
	assert.Equal(t, "15", v.Decimal())

	z := MustParse("-0")
	assert.True(t, z.IsZero())
	assert.Equal(t, "0", z.String())

	var empty Value
	assert.Equal(t, "0", empty.String())
	assert.True(t, FromInt64(-4).Equal(MustParse("-11")))
}

func TestValue_BigIsCopy(t *testing.T) {
	v := FromInt64(7)
	n := v.Big()
	n.SetInt64(100)
	assert.Equal(t, "21", v.String())
}

func TestValue_Text(t *testing.T) {
	var v Value
	require.NoError(t, v.UnmarshalText([]byte("0210")))
	out, err := v.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "210", string(out))

	assert.ErrorIs(t, v.UnmarshalText([]byte("9")), ErrInvalidDigit)
}

func TestError_Shape(t *testing.T) {
	_, err := Decode("19")
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "decode", te.Op)
	assert.Equal(t, "19", te.Input)
	assert.Equal(t, 2, Code(err))
	assert.Contains(t, err.Error(), `"19"`)
}

func TestDecimalConversion(t *testing.T) {
	got, err := FromDecimal("32")
	require.NoError(t, err)
	assert.Equal(t, "1012", got)

	got, err = FromDecimal("-4")
	require.NoError(t, err)
	assert.Equal(t, "-11", got)

	got, err = ToDecimal("-0011")
	require.NoError(t, err)
	assert.Equal(t, "-4", got)

	_, err = FromDecimal("12x")
	assert.ErrorIs(t, err, ErrInvalidDigit)
	_, err = FromDecimal("")
	assert.ErrorIs(t, err, ErrInvalidDigit)
	_, err = ToDecimal("3")
	assert.ErrorIs(t, err, ErrInvalidDigit)
}
