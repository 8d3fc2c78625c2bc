package main

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"tritcalc/internal/config"
	"tritcalc/internal/engine"
	"tritcalc/internal/logging"
	"tritcalc/internal/monitor"
	"tritcalc/internal/session"
	"tritcalc/internal/store"
	"tritcalc/internal/usage"
	"tritcalc/internal/vault"
)

// app is everything a session needs, built from the workspace config.
type app struct {
	workspace  string
	configPath string
	cfg        *config.Config

	engine  *engine.Engine
	tracker *usage.Tracker
	monitor *monitor.Monitor
	journal *store.Journal
	interp  *session.Interpreter
}

// resolvePaths returns the workspace root and config file path from flags.
func resolvePaths() (string, string, error) {
	ws := workspace
	if ws == "" {
		root, err := config.FindWorkspaceRoot()
		if err != nil {
			return "", "", fmt.Errorf("failed to find workspace: %w", err)
		}
		ws = root
	}
	ws, err := filepath.Abs(ws)
	if err != nil {
		return "", "", err
	}

	path := configPath
	if path == "" {
		path = config.DefaultPath(ws)
	}
	return ws, path, nil
}

// loadConfig reads and validates the workspace config.
func loadConfig() (string, string, *config.Config, error) {
	ws, path, err := resolvePaths()
	if err != nil {
		return "", "", nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", "", nil, err
	}
	if err := cfg.Validate(); err != nil {
		return "", "", nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logger.Debug("Config loaded", zap.String("workspace", ws), zap.String("path", path))
	return ws, path, cfg, nil
}

func sessionOptions(cfg *config.Config) session.Options {
	return session.Options{
		HistorySize:       cfg.Session.HistorySize,
		MaxScripts:        cfg.Session.MaxScripts,
		MaxScriptCommands: cfg.Session.MaxScriptCommands,
		MaxLoopIterations: cfg.Session.MaxLoopIterations,
		MaxCallDepth:      cfg.Session.MaxCallDepth,
		Version:           Version,
	}
}

// bootstrap loads config, starts logging and wires a session. The journal
// is opened only when withJournal is set and the store is enabled; failing
// to open it is logged and the session continues without one.
func bootstrap(withJournal bool) (*app, error) {
	ws, path, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := logging.Initialize(ws, cfg.LoggingOptions()); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logging.InitAudit(); err != nil {
		logging.BootError("Audit log unavailable: %v", err)
		logger.Warn("Audit log unavailable", zap.Error(err))
	}
	logging.Boot("tritcalc %s starting in %s", Version, ws)
	logger.Debug("Logging initialized", zap.String("logs", logging.LogsDir()), zap.Bool("debug", logging.IsDebugMode()))

	rt := &app{
		workspace:  ws,
		configPath: path,
		cfg:        cfg,
		engine:     engine.New(cfg.EngineLimits()),
		tracker:    usage.NewTracker(),
	}
	rt.monitor = monitor.New(rt.tracker, monitor.Options{
		Threshold: cfg.Monitor.Threshold,
		Interval:  cfg.MonitorInterval(),
	})

	opts := []session.Option{
		session.WithTracker(rt.tracker),
		session.WithStatus(rt.monitor.Status),
	}

	if pass := cfg.Passphrase(); pass != "" {
		v, err := vault.New(pass)
		if err != nil {
			logging.BootError("Vault setup failed: %v", err)
			return nil, err
		}
		opts = append(opts, session.WithCipher(v))
		logging.Vault("State encryption enabled")
	} else {
		logging.VaultWarn("No passphrase configured; save and load are disabled")
	}

	if withJournal && cfg.Store.Enabled {
		j, err := store.NewJournal(cfg.DatabasePath(ws))
		if err != nil {
			logging.StoreError("Journal unavailable: %v", err)
			logger.Warn("Journal unavailable", zap.Error(err))
		} else {
			rt.journal = j
			opts = append(opts, session.WithJournal(j))
		}
	}

	rt.interp = session.New(rt.engine, sessionOptions(cfg), opts...)
	return rt, nil
}

// applyConfig pushes a reloaded config into the running components. The
// monitor interval and journal location apply on the next start.
func (rt *app) applyConfig(cfg *config.Config) {
	logging.Configure(cfg.LoggingOptions())
	rt.engine.SetLimits(cfg.EngineLimits())
	rt.interp.SetOptions(sessionOptions(cfg))
	rt.monitor.SetThreshold(cfg.Monitor.Threshold)
	logging.Config("Config applied: factorial_limit=%d threshold=%d", cfg.Engine.FactorialLimit, cfg.Monitor.Threshold)
}

func (rt *app) Close() {
	if rt.journal != nil {
		if err := rt.journal.Close(); err != nil {
			logging.StoreError("Journal close failed: %v", err)
		}
	}
	logging.CloseAudit()
	logging.CloseAll()
}
