package settings

import (
	"context"
	"sync"

	"gateconsole/internal/logger"
	"gateconsole/pkg/models"
)

// Listener is notified after the setting changes.
type Listener func(cfg models.EngineConfig)

// Manager serializes reads and writes of the engine connection setting.
type Manager struct {
	store     Store
	defaults  models.EngineConfig
	mu        sync.RWMutex
	current   models.EngineConfig
	listeners []Listener
}

// NewManager loads the saved setting from store, falling back to defaults.
func NewManager(ctx context.Context, store Store, defaults models.EngineConfig) (*Manager, error) {
	m := &Manager{
		store:    store,
		defaults: Derive(defaults.Host, defaults.Port),
		current:  Derive(defaults.Host, defaults.Port),
	}
	saved, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if saved != nil {
		m.current = Merge(m.defaults, *saved)
		logger.Infof("Engine settings loaded: %s", m.current.BaseURL)
	} else {
		logger.Infof("No saved engine settings, using default %s", m.current.BaseURL)
	}
	return m, nil
}

// Current returns the active setting.
func (m *Manager) Current() models.EngineConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Defaults returns the configured default setting.
func (m *Manager) Defaults() models.EngineConfig {
	return m.defaults
}

// OnChange registers a listener.
func (m *Manager) OnChange(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// Update merges patch into the current setting, validates, persists and
// notifies listeners.
func (m *Manager) Update(ctx context.Context, patch models.EngineConfig) (models.EngineConfig, error) {
	m.mu.Lock()
	next := Merge(m.current, patch)
	if err := Validate(next); err != nil {
		m.mu.Unlock()
		return m.Current(), err
	}
	if err := m.store.Save(ctx, next); err != nil {
		m.mu.Unlock()
		return m.Current(), err
	}
	m.current = next
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	logger.Infof("Engine settings updated: %s", next.BaseURL)
	for _, l := range listeners {
		l(next)
	}
	return next, nil
}

// Reset restores and persists the defaults.
func (m *Manager) Reset(ctx context.Context) (models.EngineConfig, error) {
	return m.Update(ctx, m.defaults)
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
