package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tritcalc/internal/engine"
)

// evalCmd applies one engine operation and prints the result
var evalCmd = &cobra.Command{
	Use:   "eval <op> [operands...]",
	Short: "Evaluate a single operation",
	Long: `Applies one engine operation to ternary operands and prints the result.

Examples:
  tritcalc eval add 12 21     # 110
  tritcalc eval div -21 2     # q=-11 r=1
  tritcalc eval bin2tri 32    # 1012
  tritcalc eval pi            # 11022100`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func runEval(cmd *cobra.Command, args []string) error {
	_, _, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng := engine.New(cfg.EngineLimits())

	op := strings.ToLower(args[0])
	logger.Debug("Evaluating", zap.String("op", op), zap.Strings("operands", args[1:]))

	out, err := eng.Apply(op, args[1:])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return nil
}
