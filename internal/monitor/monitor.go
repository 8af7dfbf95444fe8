package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gateconsole/internal/logger"
	"gateconsole/pkg/models"
)

// Engine is the subset of the engine client the monitor polls.
type Engine interface {
	Version(ctx context.Context) (*models.VersionResponse, error)
	Status(ctx context.Context) (*models.EngineStatusResponse, error)
}

// Snapshot is the result of the latest health check.
type Snapshot struct {
	Online    bool                         `json:"online"`
	Version   *models.VersionResponse      `json:"version,omitempty"`
	Status    *models.EngineStatusResponse `json:"status,omitempty"`
	Error     string                       `json:"error,omitempty"`
	CheckedAt time.Time                    `json:"checked_at"`

	err error
}

// Err returns the failure behind Error, if any.
func (s Snapshot) Err() error {
	return s.err
}

// Monitor polls the engine in the background and caches its health.
type Monitor struct {
	engine   Engine
	interval time.Duration
	up       prometheus.Gauge
	now      func() time.Time

	mu   sync.RWMutex
	last Snapshot
}

// New creates a monitor. reg may be nil.
func New(engine Engine, interval time.Duration, reg prometheus.Registerer) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	up := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gateconsole",
		Name:      "engine_up",
		Help:      "Whether the last engine health check succeeded.",
	})
	if reg != nil {
		reg.MustRegister(up)
	}
	return &Monitor{engine: engine, interval: interval, up: up, now: time.Now}
}

// Run checks immediately, then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	logger.Infof("Engine monitor started (interval=%s)", m.interval)
	m.Refresh(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Infof("Engine monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			m.Refresh(ctx)
		}
	}
}

// Refresh performs one check and returns the new snapshot.
func (m *Monitor) Refresh(ctx context.Context) Snapshot {
	snap := Snapshot{CheckedAt: m.now()}

	version, err := m.engine.Version(ctx)
	if err != nil {
		snap.Error = err.Error()
		snap.err = err
	} else {
		snap.Online = true
		snap.Version = version
		status, err := m.engine.Status(ctx)
		if err != nil {
			snap.Error = err.Error()
			snap.err = err
		} else {
			snap.Status = status
		}
	}

	m.mu.Lock()
	wasOnline := m.last.Online
	first := m.last.CheckedAt.IsZero()
	m.last = snap
	m.mu.Unlock()

	if snap.Online {
		m.up.Set(1)
	} else {
		m.up.Set(0)
	}
	if first || wasOnline != snap.Online {
		if snap.Online {
			logger.Infof("Engine online (version %s)", snap.Version.Version)
		} else {
			logger.Warnf("Engine offline: %s", snap.Error)
		}
	}
	return snap
}

// Last returns the cached snapshot. CheckedAt is zero before the first check.
func (m *Monitor) Last() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}
