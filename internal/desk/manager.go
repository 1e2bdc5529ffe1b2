// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package desk

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/pdfdesk/internal/logging"
	"github.com/pdiddy/pdfdesk/internal/metrics"
)

// DefaultIdleTimeout expires desks nobody has touched for this long.
const DefaultIdleTimeout = 30 * time.Minute

// ErrNotFound is returned for unknown or expired desk ids.
var ErrNotFound = errors.New("desk not found")

// Manager holds the desks of the HTTP server, one per client, keyed by a
// random id. Safe for concurrent use.
type Manager struct {
	cfg  Config
	idle time.Duration
	now  func() time.Time

	mu    sync.Mutex
	desks map[string]*Desk
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithIdleTimeout overrides DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.idle = d
		}
	}
}

// WithManagerClock replaces time.Now for expiry decisions.
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager whose desks are built from cfg.
func NewManager(cfg Config, opts ...ManagerOption) *Manager {
	m := &Manager{
		cfg:   cfg,
		idle:  DefaultIdleTimeout,
		now:   time.Now,
		desks: make(map[string]*Desk),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create builds a new desk and returns it.
func (m *Manager) Create() *Desk {
	d := New(uuid.NewString(), m.cfg)
	d.now = m.now
	d.touch()

	m.mu.Lock()
	m.desks[d.ID()] = d
	n := len(m.desks)
	m.mu.Unlock()

	metrics.SetActiveDesks(n)
	logging.L().Info("desk created", zap.String("desk", d.ID()))
	return d
}

// Get returns the desk with id.
func (m *Manager) Get(id string) (*Desk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.desks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// Delete removes the desk with id.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, ok := m.desks[id]
	delete(m.desks, id)
	n := len(m.desks)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	metrics.SetActiveDesks(n)
	logging.L().Info("desk deleted", zap.String("desk", id))
	return nil
}

// Len returns the number of live desks.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.desks)
}

// Expire drops desks idle for longer than the idle timeout. Desks with a
// transformation in flight are kept. It returns how many were dropped.
func (m *Manager) Expire() int {
	cutoff := m.now().Add(-m.idle)

	m.mu.Lock()
	var dropped []string
	for id, d := range m.desks {
		if d.LastUsed().Before(cutoff) && !d.Busy() {
			delete(m.desks, id)
			dropped = append(dropped, id)
		}
	}
	n := len(m.desks)
	m.mu.Unlock()

	if len(dropped) > 0 {
		metrics.SetActiveDesks(n)
		logging.L().Info("expired idle desks", zap.Int("count", len(dropped)), zap.Int("remaining", n))
	}
	return len(dropped)
}

// Run calls Expire every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Expire()
		}
	}
}

// Wait blocks until every desk has finished its in-flight transformations.
func (m *Manager) Wait() {
	m.mu.Lock()
	desks := make([]*Desk, 0, len(m.desks))
	for _, d := range m.desks {
		desks = append(desks, d)
	}
	m.mu.Unlock()
	for _, d := range desks {
		d.Wait()
	}
}
