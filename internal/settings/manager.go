package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/engineeralok/sleeper-footballleague/internal/storage"
)

// Manager owns the current AppConfig, persists it through a storage.Store
// and fans changes out to subscribers.
type Manager struct {
	store    storage.Store
	defaults AppConfig

	mu      sync.RWMutex
	cfg     AppConfig
	lastRaw []byte

	subsMu sync.Mutex
	subs   []chan AppConfig
}

func NewManager(store storage.Store, defaults AppConfig) *Manager {
	defaults = Normalize(defaults, defaults)
	return &Manager{
		store:    store,
		defaults: defaults,
		cfg:      defaults.Clone(),
	}
}

func (m *Manager) Defaults() AppConfig {
	return m.defaults.Clone()
}

// Load reads the stored config and merges it over the defaults. A missing
// or unreadable value leaves the defaults in place.
func (m *Manager) Load(ctx context.Context) AppConfig {
	cfg, err := m.read(ctx)
	if err != nil {
		slog.Warn("Failed to load settings, using defaults", "error", err)
		cfg = m.defaults.Clone()
	}
	m.commit(cfg)
	return cfg.Clone()
}

func (m *Manager) Get() AppConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Clone()
}

// Update merges p over the current config and saves the result.
func (m *Manager) Update(ctx context.Context, p Patch) (AppConfig, error) {
	return m.save(ctx, Merge(m.Get(), p))
}

// Replace merges p over the defaults, discarding the current config.
func (m *Manager) Replace(ctx context.Context, p Patch) (AppConfig, error) {
	return m.save(ctx, Merge(m.defaults, p))
}

// Reset removes the stored value and reverts to the defaults.
func (m *Manager) Reset(ctx context.Context) (AppConfig, error) {
	if err := m.store.Delete(ctx, StorageKey); err != nil {
		return m.Get(), fmt.Errorf("failed to reset settings: %w", err)
	}
	cfg := m.defaults.Clone()
	m.commit(cfg)
	return cfg, nil
}

func (m *Manager) Subscribe(buffer int) <-chan AppConfig {
	ch := make(chan AppConfig, buffer)
	m.subsMu.Lock()
	m.subs = append(m.subs, ch)
	m.subsMu.Unlock()
	return ch
}

func (m *Manager) Unsubscribe(ch <-chan AppConfig) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for i, s := range m.subs {
		if s == ch {
			last := len(m.subs) - 1
			m.subs[i] = m.subs[last]
			m.subs[last] = nil
			m.subs = m.subs[:last]
			close(s)
			return
		}
	}
}

// Watch reloads the config whenever the backing store reports an external
// change. It blocks until ctx is done. Stores that cannot be watched just
// wait for ctx.
func (m *Manager) Watch(ctx context.Context) error {
	w, ok := m.store.(storage.Watcher)
	if !ok {
		<-ctx.Done()
		return nil
	}
	return w.Watch(ctx, func() {
		cfg, err := m.read(ctx)
		if err != nil {
			slog.Warn("Settings reload failed", "error", err)
			return
		}
		if m.commit(cfg) {
			slog.Info("Settings reloaded from storage")
		}
	})
}

func (m *Manager) read(ctx context.Context) (AppConfig, error) {
	raw, ok, err := m.store.Get(ctx, StorageKey)
	if err != nil {
		return AppConfig{}, err
	}
	if !ok {
		return m.defaults.Clone(), nil
	}

	var p Patch
	if err := json.Unmarshal(raw, &p); err != nil {
		return AppConfig{}, fmt.Errorf("stored settings are invalid: %w", err)
	}
	return Normalize(Merge(m.defaults, p), m.defaults), nil
}

func (m *Manager) save(ctx context.Context, cfg AppConfig) (AppConfig, error) {
	cfg = Normalize(cfg, m.defaults)
	raw, err := json.Marshal(cfg)
	if err != nil {
		return m.Get(), fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := m.store.Put(ctx, StorageKey, raw); err != nil {
		return m.Get(), fmt.Errorf("failed to save settings: %w", err)
	}
	m.commit(cfg)
	return cfg.Clone(), nil
}

// commit stores cfg and publishes it when it differs from the current value.
func (m *Manager) commit(cfg AppConfig) bool {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return false
	}

	m.mu.Lock()
	if m.lastRaw != nil && bytes.Equal(raw, m.lastRaw) {
		m.mu.Unlock()
		return false
	}
	m.cfg = cfg.Clone()
	m.lastRaw = raw
	m.mu.Unlock()

	m.publish(cfg)
	return true
}

func (m *Manager) publish(cfg AppConfig) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- cfg.Clone():
			continue
		default:
		}
		// drop the oldest snapshot and retry once
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- cfg.Clone():
		default:
			slog.Debug("Settings update dropped for slow subscriber")
		}
	}
}
