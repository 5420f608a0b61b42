package settings

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/minios-linux/eztranslate/storage"
)

func newStore(t *testing.T) *storage.FileArea {
	t.Helper()
	return storage.NewFileArea(filepath.Join(t.TempDir(), fileName))
}

func TestDataDirAndFilePathUseXDGDataHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	wantDir := filepath.Join(tmp, "eztranslate")
	if dir != wantDir {
		t.Fatalf("DataDir() = %q, want %q", dir, wantDir)
	}

	got, err := FilePath("")
	if err != nil {
		t.Fatalf("FilePath() error: %v", err)
	}
	if want := filepath.Join(wantDir, "settings.json"); got != want {
		t.Fatalf("FilePath() = %q, want %q", got, want)
	}

	got, err = FilePath("/srv/ez")
	if err != nil || got != "/srv/ez/settings.json" {
		t.Fatalf("FilePath(/srv/ez) = %q, %v", got, err)
	}
}

func TestSaveLoadLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	ps, err := Load(ctx, store)
	if err != nil {
		t.Fatalf("Load() on empty store error: %v", err)
	}
	if ps.CurrentProvider != "" {
		t.Fatalf("Load() on empty store = %#v", ps)
	}

	ps.Select("openai", ProviderEntry{APIKey: "sk-test-123456", SelectedModel: "gpt-4o-mini"})
	ps.Select("ollama", ProviderEntry{ServerURL: "http://localhost:11434", SelectedModel: "llama3"})
	if err := Save(ctx, store, ps); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(ctx, store)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.CurrentProvider != "ollama" {
		t.Fatalf("CurrentProvider = %q, want ollama", loaded.CurrentProvider)
	}
	if e, ok := loaded.Entry("openai"); !ok || e.APIKey != "sk-test-123456" {
		t.Fatalf("Entry(openai) = %#v, %v", e, ok)
	}
	if loaded.ServerURL != "http://localhost:11434" {
		t.Fatalf("mirror ServerURL = %q", loaded.ServerURL)
	}
}

func TestLegacyMirrorFallback(t *testing.T) {
	raw := `{"currentProvider":"deepseek","apiKey":"legacy-key","selectedModel":"deepseek-chat"}`
	var ps ProviderSettings
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	e, ok := ps.Entry("deepseek")
	if !ok {
		t.Fatal("Entry(deepseek) not found via mirror")
	}
	if e.APIKey != "legacy-key" || e.SelectedModel != "deepseek-chat" {
		t.Fatalf("Entry(deepseek) = %#v", e)
	}
	if _, ok := ps.Entry("openai"); ok {
		t.Fatal("mirror must only serve the current provider")
	}
}

func TestEffectiveModel(t *testing.T) {
	cases := []struct {
		name  string
		entry ProviderEntry
		want  string
	}{
		{name: "selected", entry: ProviderEntry{SelectedModel: "gpt-4o"}, want: "gpt-4o"},
		{name: "custom", entry: ProviderEntry{SelectedModel: "gpt-4o", UseCustomModel: true, CustomModel: "my-ft"}, want: "my-ft"},
		{name: "blank custom", entry: ProviderEntry{SelectedModel: "gpt-4o", UseCustomModel: true, CustomModel: "  "}, want: "gpt-4o"},
		{name: "custom disabled", entry: ProviderEntry{SelectedModel: "gpt-4o", CustomModel: "my-ft"}, want: "gpt-4o"},
		{name: "none", entry: ProviderEntry{}, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.entry.EffectiveModel(); got != tc.want {
				t.Fatalf("EffectiveModel() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEnsureDefaults(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	if err := SaveLanguages(ctx, store, Languages{Target: "langGerman"}); err != nil {
		t.Fatalf("SaveLanguages() error: %v", err)
	}

	wrote, err := EnsureDefaults(ctx, store, "zh-CN")
	if err != nil {
		t.Fatalf("EnsureDefaults() error: %v", err)
	}
	if !wrote {
		t.Fatal("EnsureDefaults() should fill the missing secondary")
	}

	l, err := LoadLanguages(ctx, store)
	if err != nil {
		t.Fatalf("LoadLanguages() error: %v", err)
	}
	if l.Target != "langGerman" || l.SecondTarget != DefaultSecondTargetLanguage {
		t.Fatalf("LoadLanguages() = %#v", l)
	}

	wrote, err = EnsureDefaults(ctx, store, "zh-CN")
	if err != nil || wrote {
		t.Fatalf("second EnsureDefaults() = %v, %v, want false, nil", wrote, err)
	}
}

func TestEnsureDefaultsFollowsLocale(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	if _, err := EnsureDefaults(ctx, store, "fr_FR"); err != nil {
		t.Fatalf("EnsureDefaults() error: %v", err)
	}
	l, err := LoadLanguages(ctx, store)
	if err != nil {
		t.Fatalf("LoadLanguages() error: %v", err)
	}
	want := Languages{Target: "langFrench", SecondTarget: "langSimplifiedChinese"}
	if l != want {
		t.Fatalf("LoadLanguages() = %#v, want %#v", l, want)
	}
}

func TestLanguagesNames(t *testing.T) {
	p, s := Languages{}.Names()
	if p != "Simplified Chinese" || s != "English" {
		t.Fatalf("Names() on empty = %q, %q", p, s)
	}
	p, s = Languages{Target: "langFrench", SecondTarget: "日本語"}.Names()
	if p != "French" || s != "Japanese" {
		t.Fatalf("Names() = %q, %q", p, s)
	}
	p, _ = Languages{Target: "Swahili"}.Names()
	if p != "Swahili" {
		t.Fatalf("Names() kept %q, want Swahili", p)
	}
}

func TestDefaultLanguages(t *testing.T) {
	if got := DefaultLanguages("zh-CN"); got.Target != "langSimplifiedChinese" || got.SecondTarget != "langEnglish" {
		t.Fatalf("DefaultLanguages(zh-CN) = %#v", got)
	}
	if got := DefaultLanguages("fr_FR"); got.Target != "langFrench" || got.SecondTarget != "langSimplifiedChinese" {
		t.Fatalf("DefaultLanguages(fr_FR) = %#v", got)
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("short"); got != "****" {
		t.Fatalf("MaskKey(short) = %q", got)
	}
	if got := MaskKey("abcdefghijklmnop"); got != "abcd...mnop" {
		t.Fatalf("MaskKey(long) = %q", got)
	}
}
