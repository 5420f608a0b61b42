package translate

import (
	"strings"

	"github.com/minios-linux/eztranslate/i18n"
	"github.com/minios-linux/eztranslate/provider"
	"github.com/minios-linux/eztranslate/settings"
)

// ActiveConfig is everything a dispatch needs to know about the backend.
type ActiveConfig struct {
	Provider  provider.Descriptor
	APIKey    string
	ServerURL string
	Model     string
}

// ResolveActiveConfig validates the stored provider settings and returns
// the configuration for the current provider. Checks run in order: a
// provider and model must be chosen, the provider must be known, and its
// required credentials must be present.
func ResolveActiveConfig(ps settings.ProviderSettings) (ActiveConfig, error) {
	if ps.CurrentProvider == "" && len(ps.Providers) == 0 && ps.ProviderEntry == (settings.ProviderEntry{}) {
		return ActiveConfig{}, newError(NotConfigured,
			i18n.T("Please configure an LLM provider in the settings first"))
	}

	entry := ps.Current()
	model := entry.EffectiveModel()
	if strings.TrimSpace(ps.CurrentProvider) == "" || model == "" {
		return ActiveConfig{}, newError(NotConfigured,
			i18n.T("Please select a provider and model in the settings first"))
	}

	desc, err := provider.Describe(ps.CurrentProvider)
	if err != nil {
		e := newError(UnknownProvider, i18n.Tf("Unknown provider: %s", ps.CurrentProvider))
		e.Provider = ps.CurrentProvider
		e.Err = err
		return ActiveConfig{}, e
	}

	cfg := ActiveConfig{
		Provider:  desc,
		APIKey:    strings.TrimSpace(entry.APIKey),
		ServerURL: strings.TrimSpace(entry.ServerURL),
		Model:     model,
	}
	if desc.RequiresAPIKey && cfg.APIKey == "" {
		e := newError(MissingCredential, i18n.Tf("%s API key is not configured", desc.Name))
		e.Provider = desc.ID
		return ActiveConfig{}, e
	}
	if desc.RequiresServerURL && cfg.ServerURL == "" {
		e := newError(MissingCredential, i18n.Tf("%s server URL is not configured", desc.Name))
		e.Provider = desc.ID
		return ActiveConfig{}, e
	}
	return cfg, nil
}
