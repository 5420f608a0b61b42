package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Manager routes reads and writes to the active tier.
//
// Get and Set hold the read lock, SwitchTier holds the write lock, so a
// switch never observes a half-applied Set and a second switch queues
// behind the first.
type Manager struct {
	local  Area
	sync   Area
	logger *zap.Logger

	mu sync.RWMutex
}

// NewManager creates a manager. syncArea may be nil, in which case only the
// Local tier is usable.
func NewManager(local, syncArea Area, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		local:  local,
		sync:   syncArea,
		logger: logger.With(zap.String("component", "storage")),
	}
}

// HasSync reports whether a Synchronized backend is configured.
func (m *Manager) HasSync() bool {
	return m.sync != nil
}

// Tier returns the active tier as recorded in the Local area.
func (m *Manager) Tier(ctx context.Context) (Tier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tier(ctx)
}

func (m *Manager) tier(ctx context.Context) (Tier, error) {
	rec, err := m.local.Get(ctx, FlagKey)
	if err != nil {
		return Local, fmt.Errorf("reading storage flag: %w", err)
	}
	var enabled bool
	if _, err := rec.Decode(FlagKey, &enabled); err != nil {
		return Local, err
	}
	if enabled {
		return Synchronized, nil
	}
	return Local, nil
}

func (m *Manager) area(t Tier) (Area, error) {
	switch t {
	case Local:
		return m.local, nil
	case Synchronized:
		if m.sync == nil {
			return nil, ErrTierUnavailable
		}
		return m.sync, nil
	default:
		return nil, fmt.Errorf("unknown tier %s", t)
	}
}

func (m *Manager) active(ctx context.Context) (Area, error) {
	t, err := m.tier(ctx)
	if err != nil {
		return nil, err
	}
	return m.area(t)
}

// Get reads keys from the active tier. The tier flag is never returned.
func (m *Manager) Get(ctx context.Context, keys ...string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, err := m.active(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := a.Get(ctx, keys...)
	if err != nil {
		return nil, err
	}
	delete(rec, FlagKey)
	return rec, nil
}

// Set writes rec to the active tier. The tier flag cannot be written this
// way; use SwitchTier.
func (m *Manager) Set(ctx context.Context, rec Record) error {
	if _, ok := rec[FlagKey]; ok {
		return fmt.Errorf("%s is managed by SwitchTier", FlagKey)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, err := m.active(ctx)
	if err != nil {
		return err
	}
	return a.Set(ctx, rec)
}

// SwitchTier copies every key from the active tier into target and then
// records target as active. When any step before the flag write fails,
// the previous tier stays active and a *MigrationError is returned.
func (m *Manager) SwitchTier(ctx context.Context, target Tier) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from, err := m.tier(ctx)
	if err != nil {
		return &MigrationError{From: Local, To: target, Err: err}
	}
	if from == target {
		return nil
	}

	fail := func(err error) error {
		m.logger.Warn("tier switch aborted",
			zap.Stringer("from", from),
			zap.Stringer("to", target),
			zap.Error(err))
		return &MigrationError{From: from, To: target, Err: err}
	}

	src, err := m.area(from)
	if err != nil {
		return fail(err)
	}
	dst, err := m.area(target)
	if err != nil {
		return fail(err)
	}

	snapshot, err := src.Get(ctx)
	if err != nil {
		return fail(fmt.Errorf("reading %s tier: %w", from, err))
	}
	snapshot = snapshot.clone()
	delete(snapshot, FlagKey)

	if len(snapshot) > 0 {
		if err := dst.Set(ctx, snapshot); err != nil {
			return fail(fmt.Errorf("writing %s tier: %w", target, err))
		}
	}

	flag := make(Record, 1)
	if err := flag.Put(FlagKey, target == Synchronized); err != nil {
		return fail(err)
	}
	if err := m.local.Set(ctx, flag); err != nil {
		return fail(fmt.Errorf("recording active tier: %w", err))
	}

	m.logger.Info("storage tier switched",
		zap.Stringer("from", from),
		zap.Stringer("to", target),
		zap.Int("keys", len(snapshot)))
	return nil
}

// ForceLocal records Local as the active tier without copying anything.
// It recovers from a Synchronized flag whose backend is missing or down;
// settings written to the Synchronized tier since the last switch stay
// there and the Local copy from before that switch becomes active again.
func (m *Manager) ForceLocal(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	flag := make(Record, 1)
	if err := flag.Put(FlagKey, false); err != nil {
		return err
	}
	if err := m.local.Set(ctx, flag); err != nil {
		return fmt.Errorf("recording active tier: %w", err)
	}
	m.logger.Warn("storage tier forced to local")
	return nil
}

// IsMigrationError reports whether err is a failed tier switch.
func IsMigrationError(err error) bool {
	return errors.Is(err, ErrMigration)
}
