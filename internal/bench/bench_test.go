package bench

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tritcalc/internal/engine"
	"tritcalc/internal/trit"
)

func TestRun(t *testing.T) {
	results, err := Run(context.Background(), engine.New(engine.DefaultLimits()), Options{Iterations: 20})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "add", results[0].Name)
	assert.Equal(t, "mul", results[1].Name)
	for _, r := range results {
		assert.Equal(t, 20, r.Iterations)
		assert.Positive(t, r.Engine)
		assert.Contains(t, r.String(), r.Name)
	}
}

func TestRun_DefaultIterations(t *testing.T) {
	results, err := Run(context.Background(), engine.New(engine.DefaultLimits()), Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultIterations, results[0].Iterations)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := Run(ctx, engine.New(engine.DefaultLimits()), Options{Iterations: 10})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestOperandsAgree(t *testing.T) {
	// The engine and the baseline must compute the same sum.
	e := engine.New(engine.DefaultLimits())
	ta, err := trit.FromDecimal(OperandA)
	require.NoError(t, err)
	tb, err := trit.FromDecimal(OperandB)
	require.NoError(t, err)

	out, err := e.Apply("add", []string{ta, tb})
	require.NoError(t, err)
	got, err := trit.ToDecimal(out.Value())
	require.NoError(t, err)

	x, _ := new(big.Int).SetString(OperandA, 10)
	y, _ := new(big.Int).SetString(OperandB, 10)
	assert.Equal(t, new(big.Int).Add(x, y).String(), got)
}

func TestResultRatio(t *testing.T) {
	assert.Equal(t, 0.0, Result{Engine: 5}.Ratio())
	assert.Equal(t, 2.0, Result{Engine: 10, Baseline: 5}.Ratio())
}
