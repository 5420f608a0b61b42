// Package settings defines the persisted user settings of eztranslate and
// reads/writes them through the active storage tier.
//
// Keys stored in the active tier:
//   - providerSettings      current provider and per-provider credentials
//   - targetLanguage        primary target (message key, e.g. langFrench)
//   - secondTargetLanguage  target used when the text is already in the primary
//
// The Local tier lives in the XDG data directory:
//
//	$XDG_DATA_HOME/eztranslate/  (default: ~/.local/share/eztranslate/)
//
// File permissions are 0600 (owner read/write only).
package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/eztranslate/langmeta"
	"github.com/minios-linux/eztranslate/storage"
)

const (
	dataDirName = "eztranslate"
	fileName    = "settings.json"
)

// Storage keys.
const (
	KeyProviderSettings     = "providerSettings"
	KeyTargetLanguage       = "targetLanguage"
	KeySecondTargetLanguage = "secondTargetLanguage"
)

// First-run language defaults.
const (
	DefaultTargetLanguage       = "langSimplifiedChinese"
	DefaultSecondTargetLanguage = "langEnglish"
)

// Store is the key-value surface settings are persisted through.
// *storage.Manager implements it.
type Store interface {
	Get(ctx context.Context, keys ...string) (storage.Record, error)
	Set(ctx context.Context, rec storage.Record) error
}

// ---------------------------------------------------------------------------
// Provider settings
// ---------------------------------------------------------------------------

// ProviderEntry holds the credentials and model choice for one provider.
type ProviderEntry struct {
	APIKey         string `json:"apiKey,omitempty"`
	ServerURL      string `json:"serverUrl,omitempty"`
	SelectedModel  string `json:"selectedModel,omitempty"`
	UseCustomModel bool   `json:"useCustomModel,omitempty"`
	CustomModel    string `json:"customModel,omitempty"`
}

// EffectiveModel returns the custom model when enabled and non-blank,
// otherwise the selected one.
func (e ProviderEntry) EffectiveModel() string {
	if e.UseCustomModel {
		if m := strings.TrimSpace(e.CustomModel); m != "" {
			return m
		}
	}
	return strings.TrimSpace(e.SelectedModel)
}

// ProviderSettings is the record stored under providerSettings.
//
// Older records kept only the current provider's fields at the top level;
// those are still written as a mirror and read as a fallback.
type ProviderSettings struct {
	CurrentProvider string                   `json:"currentProvider,omitempty"`
	Providers       map[string]ProviderEntry `json:"providers,omitempty"`
	ProviderEntry
}

// Entry returns the stored entry of a provider. When the providers map
// has no entry, the top-level mirror is used for the current provider.
func (ps ProviderSettings) Entry(id string) (ProviderEntry, bool) {
	if e, ok := ps.Providers[id]; ok {
		return e, true
	}
	if id != "" && id == ps.CurrentProvider && ps.ProviderEntry != (ProviderEntry{}) {
		return ps.ProviderEntry, true
	}
	return ProviderEntry{}, false
}

// Current returns the entry of the current provider.
func (ps ProviderSettings) Current() ProviderEntry {
	e, _ := ps.Entry(ps.CurrentProvider)
	return e
}

// Select makes id the current provider, storing entry for it and
// refreshing the top-level mirror.
func (ps *ProviderSettings) Select(id string, entry ProviderEntry) {
	if ps.Providers == nil {
		ps.Providers = make(map[string]ProviderEntry)
	}
	ps.Providers[id] = entry
	ps.CurrentProvider = id
	ps.ProviderEntry = entry
}

// ---------------------------------------------------------------------------
// File paths
// ---------------------------------------------------------------------------

// DataDir returns the XDG data directory for eztranslate.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// FilePath returns the Local tier file inside dir, or inside DataDir()
// when dir is empty.
func FilePath(dir string) (string, error) {
	if dir == "" {
		d, err := DataDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	return filepath.Join(dir, fileName), nil
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the provider settings. A missing record yields the zero value.
func Load(ctx context.Context, s Store) (ProviderSettings, error) {
	rec, err := s.Get(ctx, KeyProviderSettings)
	if err != nil {
		return ProviderSettings{}, fmt.Errorf("loading provider settings: %w", err)
	}
	var ps ProviderSettings
	if _, err := rec.Decode(KeyProviderSettings, &ps); err != nil {
		return ProviderSettings{}, err
	}
	return ps, nil
}

// Save writes the provider settings.
func Save(ctx context.Context, s Store, ps ProviderSettings) error {
	rec := make(storage.Record, 1)
	if err := rec.Put(KeyProviderSettings, ps); err != nil {
		return err
	}
	if err := s.Set(ctx, rec); err != nil {
		return fmt.Errorf("saving provider settings: %w", err)
	}
	return nil
}

// Languages holds the stored target language values. They are usually
// message keys but may be any value langmeta.TargetName accepts.
type Languages struct {
	Target       string
	SecondTarget string
}

// LoadLanguages reads both target languages. Missing values are "".
func LoadLanguages(ctx context.Context, s Store) (Languages, error) {
	rec, err := s.Get(ctx, KeyTargetLanguage, KeySecondTargetLanguage)
	if err != nil {
		return Languages{}, fmt.Errorf("loading languages: %w", err)
	}
	var l Languages
	if _, err := rec.Decode(KeyTargetLanguage, &l.Target); err != nil {
		return Languages{}, err
	}
	if _, err := rec.Decode(KeySecondTargetLanguage, &l.SecondTarget); err != nil {
		return Languages{}, err
	}
	return l, nil
}

// SaveLanguages writes the non-empty fields of l.
func SaveLanguages(ctx context.Context, s Store, l Languages) error {
	rec := make(storage.Record, 2)
	if l.Target != "" {
		if err := rec.Put(KeyTargetLanguage, l.Target); err != nil {
			return err
		}
	}
	if l.SecondTarget != "" {
		if err := rec.Put(KeySecondTargetLanguage, l.SecondTarget); err != nil {
			return err
		}
	}
	if len(rec) == 0 {
		return nil
	}
	if err := s.Set(ctx, rec); err != nil {
		return fmt.Errorf("saving languages: %w", err)
	}
	return nil
}

// Names returns the names of the stored targets sent to providers,
// applying the first-run defaults for missing values.
func (l Languages) Names() (primary, secondary string) {
	target := l.Target
	if target == "" {
		target = DefaultTargetLanguage
	}
	second := l.SecondTarget
	if second == "" {
		second = DefaultSecondTargetLanguage
	}
	return langmeta.TargetName(target), langmeta.TargetName(second)
}

// DefaultLanguages returns the defaults suggested for a UI locale: the
// locale's language as primary, and Simplified Chinese as secondary
// unless the primary already is Simplified Chinese, then English.
func DefaultLanguages(locale string) Languages {
	target := langmeta.KeyForLocale(locale)
	second := DefaultTargetLanguage
	if target == DefaultTargetLanguage {
		second = DefaultSecondTargetLanguage
	}
	return Languages{Target: target, SecondTarget: second}
}

// EnsureDefaults stores the first-run language defaults for the UI locale
// (see DefaultLanguages) for any target that is not set yet. It reports
// whether anything was written.
func EnsureDefaults(ctx context.Context, s Store, locale string) (bool, error) {
	l, err := LoadLanguages(ctx, s)
	if err != nil {
		return false, err
	}
	defaults := DefaultLanguages(locale)
	var missing Languages
	if l.Target == "" {
		missing.Target = defaults.Target
	}
	if l.SecondTarget == "" {
		missing.SecondTarget = defaults.SecondTarget
	}
	if missing == (Languages{}) {
		return false, nil
	}
	return true, SaveLanguages(ctx, s, missing)
}

// ---------------------------------------------------------------------------
// Display helpers
// ---------------------------------------------------------------------------

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
