package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tritcalc/internal/config"
)

var configForce bool

// configCmd groups configuration commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tritcalc configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to the workspace",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing config")
	configCmd.AddCommand(configInitCmd, configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	_, path, err := resolvePaths()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	_, path, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Never echo a stored passphrase.
	if cfg.Vault.Passphrase != "" {
		cfg.Vault.Passphrase = "********"
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", path, data)
	return nil
}
