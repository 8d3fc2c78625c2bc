package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tritcalc/internal/trit"
)

func TestApply_Properties(t *testing.T) {
	e := New(DefaultLimits())

	cases := []struct {
		op       string
		operands []string
		want     []string
	}{
		{"add", []string{"0", "0"}, []string{"0"}},
		{"add", []string{"1", "1"}, []string{"2"}},
		{"add", []string{"2", "1"}, []string{"10"}},
		{"div", []string{"10", "2"}, []string{"1", "1"}},
		{"fact", []string{"202"}, []string{trit.EncodeInt64(2432902008176640000)}},
		{"and", []string{"12", "21"}, []string{"11"}},
		{"xor", []string{"1", "2"}, []string{"0"}},
		{"pi", nil, []string{trit.EncodeInt64(3141)}},
		{"bin2tri", []string{"32"}, []string{"1012"}},
		{"tri2bin", []string{"1012"}, []string{"32"}},
		{"bal", []string{"012"}, []string{"-0+"}},
		{"unbal", []string{"-0+"}, []string{"012"}},
		{"sqrt", []string{"11"}, []string{trit.EncodeInt64(2000)}},
	}
	for _, tc := range cases {
		out, err := e.Apply(tc.op, tc.operands)
		require.NoError(t, err, tc.op)
		assert.Equal(t, tc.op, out.Op)
		assert.Equal(t, tc.want, out.Values, "%s %v", tc.op, tc.operands)
	}
}

func TestApply_NotTwiceIsIdentity(t *testing.T) {
	e := New(DefaultLimits())
	for _, s := range []string{"0", "012", "2201", "0000"} {
		once, err := e.Apply("not", []string{s})
		require.NoError(t, err)
		twice, err := e.Apply("not", []string{once.Value()})
		require.NoError(t, err)
		assert.Equal(t, s, twice.Value())
	}
}

func TestApply_Errors(t *testing.T) {
	e := New(DefaultLimits())

	_, err := e.Apply("frobnicate", []string{"1"})
	assert.ErrorIs(t, err, ErrUnknownOperation)

	_, err = e.Apply("add", []string{"1"})
	assert.ErrorIs(t, err, ErrArity)

	_, err = e.Apply("pi", []string{"1"})
	assert.ErrorIs(t, err, ErrArity)

	_, err = e.Apply("fact", []string{"210"})
	assert.ErrorIs(t, err, trit.ErrOverflowGuard)

	_, err = e.Apply("div", []string{"1", "0"})
	assert.ErrorIs(t, err, trit.ErrDivisionByZero)

	_, err = e.Apply("bin2tri", []string{"1.5"})
	assert.ErrorIs(t, err, trit.ErrInvalidDigit)
}

func TestApply_CaseInsensitive(t *testing.T) {
	out, err := New(DefaultLimits()).Apply("ADD", []string{"1", "1"})
	require.NoError(t, err)
	assert.Equal(t, "add", out.Op)
	assert.Equal(t, "2", out.Value())
}

func TestSetLimits(t *testing.T) {
	e := New(Limits{})
	assert.Equal(t, int64(trit.DefaultFactorialLimit), e.Limits().FactorialLimit)

	e.SetLimits(Limits{FactorialLimit: 25})
	_, err := e.Apply("fact", []string{"210"}) // 21
	require.NoError(t, err)

	e.SetLimits(Limits{FactorialLimit: 5})
	_, err = e.Apply("fact", []string{"20"}) // 6
	assert.ErrorIs(t, err, trit.ErrOverflowGuard)
}

func TestApply_ConcurrentWithSetLimits(t *testing.T) {
	e := New(DefaultLimits())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if i == 0 {
					e.SetLimits(Limits{FactorialLimit: int64(20 + j%5)})
					continue
				}
				out, err := e.Apply("mul", []string{"12", "21"})
				if assert.NoError(t, err) {
					assert.Equal(t, trit.EncodeInt64(35), out.Value())
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestOutputString(t *testing.T) {
	assert.Equal(t, "q=1 r=1", Output{Op: "div", Values: []string{"1", "1"}}.String())
	assert.Equal(t, "12", Output{Op: "add", Values: []string{"12"}}.String())
	assert.Equal(t, "", Output{}.Value())
}

func TestBuiltinCategories(t *testing.T) {
	reg := New(DefaultLimits()).Registry()
	assert.Equal(t, 20, reg.Count())
	total := 0
	for _, c := range Categories {
		total += len(reg.ByCategory(c))
	}
	assert.Equal(t, reg.Count(), total)
}
