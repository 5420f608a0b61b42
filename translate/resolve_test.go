package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/minios-linux/eztranslate/langmeta"
	"github.com/minios-linux/eztranslate/provider"
	"github.com/minios-linux/eztranslate/settings"
)

func selected(id string, e settings.ProviderEntry) settings.ProviderSettings {
	var ps settings.ProviderSettings
	ps.Select(id, e)
	return ps
}

// ---------------------------------------------------------------------------
// ResolveActiveConfig
// ---------------------------------------------------------------------------

func TestResolveActiveConfig(t *testing.T) {
	cases := []struct {
		name string
		ps   settings.ProviderSettings
		kind Kind
	}{
		{name: "nothing stored", ps: settings.ProviderSettings{}, kind: NotConfigured},
		{name: "no model", ps: selected(provider.OpenAI, settings.ProviderEntry{APIKey: "k"}), kind: NotConfigured},
		{name: "blank custom model", ps: selected(provider.OpenAI, settings.ProviderEntry{APIKey: "k", UseCustomModel: true, CustomModel: " "}), kind: NotConfigured},
		{name: "unknown provider", ps: selected("telepathy", settings.ProviderEntry{SelectedModel: "m"}), kind: UnknownProvider},
		{name: "missing key", ps: selected(provider.OpenAI, settings.ProviderEntry{APIKey: "  ", SelectedModel: "gpt-4o"}), kind: MissingCredential},
		{name: "missing server", ps: selected(provider.Ollama, settings.ProviderEntry{SelectedModel: "llama3"}), kind: MissingCredential},
		{name: "azure needs both", ps: selected(provider.Microsoft, settings.ProviderEntry{APIKey: "k", SelectedModel: "d"}), kind: MissingCredential},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveActiveConfig(tc.ps)
			te := wantKind(t, err, tc.kind)
			if !te.Kind.Config() {
				t.Fatalf("%s should be a configuration kind", te.Kind)
			}
		})
	}
}

func TestResolveActiveConfigSuccess(t *testing.T) {
	ps := selected(provider.DeepSeek, settings.ProviderEntry{
		APIKey:         " sk-deep ",
		SelectedModel:  "deepseek-chat",
		UseCustomModel: true,
		CustomModel:    "deepseek-reasoner",
	})
	cfg, err := ResolveActiveConfig(ps)
	if err != nil {
		t.Fatalf("ResolveActiveConfig() error: %v", err)
	}
	if cfg.Provider.ID != provider.DeepSeek || cfg.APIKey != "sk-deep" || cfg.Model != "deepseek-reasoner" {
		t.Fatalf("ResolveActiveConfig() = %#v", cfg)
	}
}

func TestResolveActiveConfigUnknownWrapsNotFound(t *testing.T) {
	_, err := ResolveActiveConfig(selected("nope", settings.ProviderEntry{SelectedModel: "m"}))
	if !errors.Is(err, provider.ErrNotFound) {
		t.Fatalf("error %v should wrap provider.ErrNotFound", err)
	}
}

func TestResolveActiveConfigSelfHostedNeedsNoKey(t *testing.T) {
	cfg, err := ResolveActiveConfig(selected(provider.VLLM, settings.ProviderEntry{
		ServerURL:     "http://gpu:8000",
		SelectedModel: "qwen2",
	}))
	if err != nil {
		t.Fatalf("ResolveActiveConfig() error: %v", err)
	}
	if cfg.ServerURL != "http://gpu:8000" {
		t.Fatalf("ServerURL = %q", cfg.ServerURL)
	}
}

// ---------------------------------------------------------------------------
// ResolveTarget
// ---------------------------------------------------------------------------

func staticDetector(code string, confidence int) langmeta.Detector {
	return langmeta.DetectorFunc(func(context.Context, string) ([]langmeta.Detection, error) {
		return []langmeta.Detection{{Code: code, Confidence: confidence}}, nil
	})
}

func TestResolveTarget(t *testing.T) {
	ctx := context.Background()
	failing := langmeta.DetectorFunc(func(context.Context, string) ([]langmeta.Detection, error) {
		return nil, errors.New("detector crashed")
	})
	empty := langmeta.DetectorFunc(func(context.Context, string) ([]langmeta.Detection, error) {
		return nil, nil
	})

	cases := []struct {
		name      string
		det       langmeta.Detector
		primary   string
		secondary string
		want      string
	}{
		{name: "confident match swaps", det: staticDetector("zh-CN", 51), primary: "Simplified Chinese", secondary: "English", want: "English"},
		{name: "boundary keeps primary", det: staticDetector("zh-CN", 50), primary: "Simplified Chinese", secondary: "English", want: "Simplified Chinese"},
		{name: "other language", det: staticDetector("en", 99), primary: "French", secondary: "English", want: "French"},
		{name: "region falls back to base", det: staticDetector("pt-BR", 90), primary: "Portuguese", secondary: "English", want: "English"},
		{name: "unmapped code is English", det: staticDetector("xx", 90), primary: "English", secondary: "German", want: "German"},
		{name: "detector error", det: failing, primary: "Japanese", secondary: "English", want: "Japanese"},
		{name: "no candidates", det: empty, primary: "Japanese", secondary: "English", want: "Japanese"},
		{name: "nil detector", det: nil, primary: "Korean", secondary: "English", want: "Korean"},
		{name: "empty secondary falls back", det: staticDetector("en", 80), primary: "English", secondary: "", want: "Simplified Chinese"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveTarget(ctx, tc.det, "text", tc.primary, tc.secondary)
			if got != tc.want {
				t.Fatalf("ResolveTarget() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveTargetUsesFirstCandidateOnly(t *testing.T) {
	det := langmeta.DetectorFunc(func(context.Context, string) ([]langmeta.Detection, error) {
		return []langmeta.Detection{{Code: "de", Confidence: 60}, {Code: "fr", Confidence: 99}}, nil
	})
	if got := ResolveTarget(context.Background(), det, "x", "French", "English"); got != "French" {
		t.Fatalf("ResolveTarget() = %q, want French", got)
	}
}

// ---------------------------------------------------------------------------
// Prompt
// ---------------------------------------------------------------------------

func TestPrompt(t *testing.T) {
	got := Prompt("To {{targetLang}} or {{secondTargetLang}}: {{text}}", "French", "English", "Hi {{targetLang}}")
	if got != "To French or English: Hi {{targetLang}}" {
		t.Fatalf("Prompt() = %q", got)
	}

	def := Prompt("", "French", "English", "Hello")
	if def == "" || !strings.Contains(def, "French") || !strings.Contains(def, "Hello") {
		t.Fatalf("default prompt = %q", def)
	}
}
