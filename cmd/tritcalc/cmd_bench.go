package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tritcalc/internal/bench"
	"tritcalc/internal/engine"
	"tritcalc/internal/logging"
)

var benchIterations int

// benchCmd times the engine against math/big
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark ternary add and mul against math/big",
	Args:  cobra.NoArgs,
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().IntVarP(&benchIterations, "iterations", "n", bench.DefaultIterations, "Iterations per operation")
}

func runBench(cmd *cobra.Command, args []string) error {
	_, _, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	timer := logging.StartTimer(logging.CategoryBench, "bench")
	results, err := bench.Run(ctx, engine.New(cfg.EngineLimits()), bench.Options{Iterations: benchIterations})
	elapsed := timer.Stop()
	if err != nil {
		return fmt.Errorf("benchmark interrupted: %w", err)
	}
	logger.Debug("Benchmark complete", zap.Duration("elapsed", elapsed))

	for _, r := range results {
		fmt.Fprintln(cmd.OutOrStdout(), r.String())
	}
	return nil
}
