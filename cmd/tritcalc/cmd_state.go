package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tritcalc/internal/vault"
)

// stateCmd groups saved-state commands
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect encrypted session state files",
}

var stateShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Decrypt a saved state and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runStateShow,
}

func init() {
	stateCmd.AddCommand(stateShowCmd)
}

func runStateShow(cmd *cobra.Command, args []string) error {
	_, _, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	v, err := vault.New(cfg.Passphrase())
	if err != nil {
		return fmt.Errorf("%w: set $%s", err, cfg.Vault.PassphraseEnv)
	}

	blob, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}
	data, err := v.Decrypt(blob)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("state is not valid JSON: %w", err)
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(cmd.OutOrStdout())
	return err
}
