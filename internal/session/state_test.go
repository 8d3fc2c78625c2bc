package session

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tritcalc/internal/trit"
)

var valueEqual = cmp.Comparer(func(a, b trit.Value) bool { return a.Equal(b) })

func TestState_HistoryRing(t *testing.T) {
	s := NewState(3)
	for _, line := range []string{"a", "b", "c", "d", "e"} {
		s.Push(line)
	}
	if diff := cmp.Diff([]string{"c", "d", "e"}, s.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	s.Resize(2)
	if diff := cmp.Diff([]string{"d", "e"}, s.History()); diff != "" {
		t.Errorf("after resize (-want +got):\n%s", diff)
	}

	// History returns a copy.
	h := s.History()
	h[0] = "mutated"
	assert.Equal(t, "d", s.History()[0])
}

func TestState_Variables(t *testing.T) {
	s := NewState(10)
	require.NoError(t, s.Set("C", trit.MustParse("21")))
	require.NoError(t, s.Set("A", trit.MustParse("-1")))
	assert.ErrorIs(t, s.Set("a", trit.MustParse("1")), ErrUsage)
	assert.ErrorIs(t, s.Set("AB", trit.MustParse("1")), ErrUsage)

	v, ok := s.Get("C")
	require.True(t, ok)
	assert.Equal(t, "21", v.String())
	_, ok = s.Get("B")
	assert.False(t, ok)

	want := []Variable{
		{Name: "A", Value: trit.MustParse("-1")},
		{Name: "C", Value: trit.MustParse("21")},
	}
	if diff := cmp.Diff(want, s.Variables(), valueEqual); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}

	s.Clear()
	assert.Empty(t, s.Variables())
	assert.Empty(t, s.History())
}

func TestState_JSONShape(t *testing.T) {
	s := NewState(5)
	s.Push("B=12")
	require.NoError(t, s.Set("B", trit.MustParse("0012")))

	data, err := s.MarshalJSON()
	require.NoError(t, err)

	var raw struct {
		History   []string  `json:"history"`
		Variables []*string `json:"variables"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, []string{"B=12"}, raw.History)
	require.Len(t, raw.Variables, NumVariables)
	assert.Nil(t, raw.Variables[0])
	require.NotNil(t, raw.Variables[1])
	assert.Equal(t, "12", *raw.Variables[1])

	empty, err := NewState(1).MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(empty), `"history":[]`)
}

func TestState_JSONRoundTrip(t *testing.T) {
	s := NewState(4)
	for _, line := range []string{"A=1", "B=-2", "add A B", "vars"} {
		s.Push(line)
	}
	require.NoError(t, s.Set("A", trit.MustParse("1")))
	require.NoError(t, s.Set("B", trit.MustParse("-2")))
	require.NoError(t, s.Set("Z", trit.MustParse("1"+"0000000000000000000000000000000")))

	data, err := s.MarshalJSON()
	require.NoError(t, err)

	got := NewState(4)
	require.NoError(t, got.UnmarshalJSON(data))

	if diff := cmp.Diff(s.History(), got.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(s.Variables(), got.Variables(), valueEqual); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}

	// A smaller receiver keeps its own capacity.
	small := NewState(2)
	require.NoError(t, small.UnmarshalJSON(data))
	assert.Equal(t, []string{"add A B", "vars"}, small.History())
}

func TestState_UnmarshalRejects(t *testing.T) {
	s := NewState(5)
	require.NoError(t, s.Set("A", trit.MustParse("1")))

	err := s.UnmarshalJSON([]byte(`{"history":[],"variables":["13"]}`))
	assert.ErrorIs(t, err, trit.ErrInvalidDigit)

	vars := make([]*string, NumVariables+1)
	data, err := json.Marshal(map[string]any{"history": []string{}, "variables": vars})
	require.NoError(t, err)
	assert.Error(t, s.UnmarshalJSON(data))

	assert.Error(t, s.UnmarshalJSON([]byte(`not json`)))

	// Failed loads leave the state untouched.
	v, ok := s.Get("A")
	require.True(t, ok)
	assert.Equal(t, "1", v.String())
}
