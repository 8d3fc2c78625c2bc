// Package bench times engine arithmetic against raw math/big on the same
// operands, to show the cost of the ternary string round trip.
package bench

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"tritcalc/internal/engine"
	"tritcalc/internal/logging"
	"tritcalc/internal/trit"
)

// DefaultIterations is used when Options.Iterations is not positive.
const DefaultIterations = 1000

// The two 30-digit decimal operands every run uses.
const (
	OperandA = "123456789012345678901234567890"
	OperandB = "987654321098765432109876543210"
)

// Options configures a run.
type Options struct {
	Iterations int
}

// Result is one timed comparison.
type Result struct {
	Name       string
	Iterations int
	Engine     time.Duration
	Baseline   time.Duration
}

// Ratio is Engine/Baseline, or 0 when the baseline is too fast to measure.
func (r Result) Ratio() float64 {
	if r.Baseline <= 0 {
		return 0
	}
	return float64(r.Engine) / float64(r.Baseline)
}

func (r Result) String() string {
	return fmt.Sprintf("%-4s x%d  engine=%v  big.Int=%v  (%.1fx)", r.Name, r.Iterations, r.Engine, r.Baseline, r.Ratio())
}

type pair struct {
	name string
	base func(z, x, y *big.Int) *big.Int
}

// Run benchmarks add and mul. It stops early with ctx.Err() if cancelled.
func Run(ctx context.Context, e *engine.Engine, opts Options) ([]Result, error) {
	n := opts.Iterations
	if n <= 0 {
		n = DefaultIterations
	}

	ta, err := trit.FromDecimal(OperandA)
	if err != nil {
		return nil, err
	}
	tb, err := trit.FromDecimal(OperandB)
	if err != nil {
		return nil, err
	}
	x, _ := new(big.Int).SetString(OperandA, 10)
	y, _ := new(big.Int).SetString(OperandB, 10)

	pairs := []pair{
		{"add", (*big.Int).Add},
		{"mul", (*big.Int).Mul},
	}

	results := make([]Result, 0, len(pairs))
	for _, p := range pairs {
		timer := logging.StartTimer(logging.CategoryBench, p.name)

		start := time.Now()
		for i := 0; i < n; i++ {
			if i%100 == 0 {
				if err := ctx.Err(); err != nil {
					return results, err
				}
			}
			if _, err := e.Apply(p.name, []string{ta, tb}); err != nil {
				return results, fmt.Errorf("bench %s: %w", p.name, err)
			}
		}
		engineDur := time.Since(start)

		start = time.Now()
		z := new(big.Int)
		for i := 0; i < n; i++ {
			p.base(z, x, y)
		}
		baseDur := time.Since(start)

		timer.Stop()
		r := Result{Name: p.name, Iterations: n, Engine: engineDur, Baseline: baseDur}
		logging.Bench("%s", r)
		results = append(results, r)
	}
	return results, nil
}
