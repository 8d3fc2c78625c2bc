package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is stamped at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string

	// Logger
	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tritcalc",
	Short: "tritcalc - arbitrary-precision ternary calculator",
	Long: `tritcalc computes on base-3 digit strings: arithmetic, scaled scientific
functions, digit-wise ternary logic and balanced/unbalanced conversion.

Run without arguments to start the interactive shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The shell owns the terminal; it logs to files only.
		if cmd == cmd.Root() {
			return nil
		}

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runShell,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tritcalc version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tritcalc %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: nearest .tritcalc or current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <workspace>/.tritcalc/config.yaml)")

	// Operands may start with '-'; stop flag parsing at the operation name.
	evalCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
