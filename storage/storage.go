// Package storage implements the two-tier key-value persistence used for
// user settings.
//
// The Local tier is a JSON file in the user data directory. The
// Synchronized tier is a Redis hash shared by every machine pointing at the
// same server. Exactly one tier is active at a time; the choice is a
// boolean flag ("syncEnabled") that always lives in the Local tier and is
// never migrated. Manager routes reads and writes to the active tier and
// performs the one-shot copy when the tier is switched.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// FlagKey is the Local-tier key holding the active tier flag.
const FlagKey = "syncEnabled"

// Tier names one of the two persistence backends.
type Tier int

const (
	Local Tier = iota
	Synchronized
)

func (t Tier) String() string {
	switch t {
	case Local:
		return "local"
	case Synchronized:
		return "sync"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Record is a set of keys with JSON-encoded values.
type Record map[string]json.RawMessage

// Put encodes v under key.
func (r Record) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	r[key] = data
	return nil
}

// Decode decodes the value under key into v. It reports false when the key
// is absent.
func (r Record) Decode(key string, v any) (bool, error) {
	data, ok := r[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Area is one key-value backend.
type Area interface {
	// Get returns the requested keys that exist. With no keys it returns
	// every stored key.
	Get(ctx context.Context, keys ...string) (Record, error)
	// Set writes every key of rec. A failed Set leaves the area unchanged.
	Set(ctx context.Context, rec Record) error
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrMigration marks a failed tier switch.
	ErrMigration = errors.New("storage migration failed")
	// ErrTierUnavailable is returned when the requested tier has no backend.
	ErrTierUnavailable = errors.New("storage tier not configured")
)

// MigrationError reports a tier switch that was aborted. The previous tier
// stays active.
type MigrationError struct {
	From, To Tier
	Err      error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("switching storage from %s to %s: %v", e.From, e.To, e.Err)
}

func (e *MigrationError) Unwrap() []error {
	return []error{ErrMigration, e.Err}
}
