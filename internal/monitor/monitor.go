// Package monitor watches a session's step counter and raises an intrusion
// alert while the count is above a threshold.
package monitor

import (
	"context"
	"sync/atomic"
	"time"

	"tritcalc/internal/logging"
)

const (
	DefaultThreshold = 1000
	DefaultInterval  = 5 * time.Second
)

// StepSource reports a running step count. usage.Tracker satisfies it.
type StepSource interface {
	Steps() int64
}

// Options configures a Monitor. Zero values select the defaults.
type Options struct {
	Threshold int64
	Interval  time.Duration
}

// Status is a snapshot for display.
type Status struct {
	Steps     int64
	Threshold int64
	Alert     bool
	Samples   int64
}

// Monitor samples a StepSource on a fixed interval.
type Monitor struct {
	source    StepSource
	interval  time.Duration
	threshold atomic.Int64
	alert     atomic.Bool
	samples   atomic.Int64
}

// New creates a monitor over source.
func New(source StepSource, opts Options) *Monitor {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	m := &Monitor{source: source, interval: opts.Interval}
	m.threshold.Store(opts.Threshold)
	return m
}

// Run samples until ctx is cancelled. It always returns nil so it can sit
// in an errgroup next to other long-running tasks.
func (m *Monitor) Run(ctx context.Context) error {
	logging.Monitor("Monitor: started (threshold=%d, interval=%v)", m.threshold.Load(), m.interval)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Monitor("Monitor: stopped after %d samples", m.samples.Load())
			return nil
		case <-ticker.C:
			m.Sample()
		}
	}
}

// Sample reads the source once and updates the alert flag. Run calls it on
// every tick; it is exported so callers can force a check.
func (m *Monitor) Sample() bool {
	steps := m.source.Steps()
	threshold := m.threshold.Load()
	m.samples.Add(1)

	raised := steps > threshold
	prev := m.alert.Swap(raised)
	logging.MonitorDebug("Monitor: steps=%d threshold=%d alert=%v", steps, threshold, raised)

	if raised != prev {
		if raised {
			logging.MonitorWarn("Monitor: intrusion alert, %d steps exceeds threshold %d", steps, threshold)
		} else {
			logging.Monitor("Monitor: alert cleared at %d steps", steps)
		}
		logging.Audit().Intrusion(raised, steps, threshold)
	}
	return raised
}

// Alert reports whether the last sample was above the threshold.
func (m *Monitor) Alert() bool { return m.alert.Load() }

// Threshold returns the active threshold.
func (m *Monitor) Threshold() int64 { return m.threshold.Load() }

// SetThreshold changes the threshold; the next sample uses it.
func (m *Monitor) SetThreshold(n int64) {
	if n <= 0 {
		n = DefaultThreshold
	}
	m.threshold.Store(n)
}

// Status returns a snapshot using the live step count.
func (m *Monitor) Status() Status {
	return Status{
		Steps:     m.source.Steps(),
		Threshold: m.threshold.Load(),
		Alert:     m.alert.Load(),
		Samples:   m.samples.Load(),
	}
}
