package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tritcalc/cmd/tritcalc/shell"
	"tritcalc/internal/config"
	"tritcalc/internal/logging"
)

// runShell starts the interactive shell with the intrusion monitor and the
// config watcher running beside it. Leaving the shell stops both.
func runShell(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	shellCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		return rt.monitor.Run(shellCtx)
	})

	watcher := config.NewWatcher(rt.configPath, rt.applyConfig)
	g.Go(func() error {
		// Hot reload is optional; the shell keeps running without it.
		if err := watcher.Run(shellCtx); err != nil {
			logging.ConfigWarn("Config watcher stopped: %v", err)
		}
		return nil
	})

	rt.interp.Begin()
	defer rt.interp.End()

	model := shell.New(shellCtx, rt.interp, rt.monitor.Status, Version)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(shellCtx))
	g.Go(func() error {
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("shell: %w", err)
		}
		logging.Shell("Shell exited")
		return nil
	})

	return g.Wait()
}
