package jobs

import (
	"context"
	"log/slog"
	"time"
)

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusRecorder receives the outcome of each check.
type StatusRecorder interface {
	SetStoreUp(up bool)
}

// StoreMonitor periodically pings the store, exporting the result and
// logging when availability changes.
type StoreMonitor struct {
	store    Pinger
	recorder StatusRecorder
	interval time.Duration
	timeout  time.Duration

	// up is nil until the first check completes.
	up *bool
}

// NewStoreMonitor creates a new store monitor. recorder may be nil.
func NewStoreMonitor(store Pinger, recorder StatusRecorder, interval time.Duration) *StoreMonitor {
	timeout := 5 * time.Second
	if interval < timeout {
		timeout = interval
	}
	return &StoreMonitor{
		store:    store,
		recorder: recorder,
		interval: interval,
		timeout:  timeout,
	}
}

// Start runs the check loop until ctx is cancelled.
func (m *StoreMonitor) Start(ctx context.Context) {
	slog.Info("store monitor started", "interval", m.interval)

	// Run immediately on start
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("store monitor stopped")
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check pings the store once and reports whether it is reachable.
func (m *StoreMonitor) Check(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.store.Ping(checkCtx)
	up := err == nil

	if m.recorder != nil {
		m.recorder.SetStoreUp(up)
	}

	switch {
	case m.up != nil && *m.up == up:
		// No change
	case up:
		slog.Info("store reachable")
	default:
		slog.Error("store unreachable", "error", err)
	}
	m.up = &up

	return up
}
