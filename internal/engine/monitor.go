package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zentrium/assistant-engine-go/internal/domain"
	"github.com/zentrium/assistant-engine-go/internal/session"
)

// Monitor periodically sweeps live sessions and lets the engine nudge
// the ones that went quiet with the widget still open.
type Monitor struct {
	manager  *session.Manager
	engine   *Engine
	window   time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewMonitor builds the idle monitor. window is how long a session may
// stay quiet before the nudge; interval is the sweep cadence.
func NewMonitor(manager *session.Manager, engine *Engine, window, interval time.Duration, logger *zap.Logger) *Monitor {
	return &Monitor{
		manager:  manager,
		engine:   engine,
		window:   window,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps until the context is cancelled. Intended to live in the
// server's errgroup next to the HTTP listener.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("idle monitor started",
		zap.Duration("window", m.window),
		zap.Duration("interval", m.interval),
	)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("idle monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

func (m *Monitor) sweep(ctx context.Context) {
	m.manager.Each(func(sessionID string) {
		m.manager.Handle(ctx, sessionID, func(sc *domain.SessionContext) {
			m.engine.CheckIdle(ctx, sc, m.window)
		})
	})
}
