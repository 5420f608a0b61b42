// Package translate is the dispatch engine: it resolves the active
// provider from the stored settings, picks the effective target language,
// builds the provider-specific HTTP request and normalizes the answer.
//
// Supported wire formats:
//   - openai     OpenAI-compatible chat/completions (most cloud backends,
//     LM Studio, vLLM)
//   - anthropic  Anthropic messages API
//   - google     Gemini generateContent
//   - azure      Azure OpenAI deployments
//   - zhipu      Zhipu GLM (OpenAI shape on its own endpoint)
//   - ollama     Ollama /api/generate
package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/minios-linux/eztranslate/i18n"
	"github.com/minios-linux/eztranslate/langmeta"
	"github.com/minios-linux/eztranslate/settings"
)

// ErrEmptyText is returned when there is nothing to translate.
var ErrEmptyText = errors.New("text to translate is empty")

// Request is one translation request. Targets may be English names,
// message keys or localized names; empty targets are read from settings.
type Request struct {
	Text            string
	PrimaryTarget   string
	SecondaryTarget string
}

// Options configures a Translator.
type Options struct {
	// Detector identifies the source language. Nil disables detection,
	// so the primary target is always used.
	Detector langmeta.Detector
	// Client sends provider requests. Nil means NewHTTPClient(Proxy, Timeout).
	Client *http.Client
	// Proxy is an HTTP(S) proxy URL; empty uses the environment.
	Proxy string
	// Timeout bounds a whole provider call. Zero means no limit.
	Timeout time.Duration
	// Prompt is a custom prompt template; empty uses DefaultPrompt.
	Prompt string
	Logger *zap.Logger
}

// Translator runs translation requests against the active provider.
// It is safe for concurrent use.
type Translator struct {
	store    settings.Store
	detector langmeta.Detector
	client   *http.Client
	prompt   string
	logger   *zap.Logger
}

// New creates a Translator reading settings from store.
func New(store settings.Store, opts Options) *Translator {
	client := opts.Client
	if client == nil {
		client = NewHTTPClient(opts.Proxy, opts.Timeout)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{
		store:    store,
		detector: opts.Detector,
		client:   client,
		prompt:   opts.Prompt,
		logger:   logger.With(zap.String("component", "translate")),
	}
}

// ---------------------------------------------------------------------------
// HTTP client with real proxy support
// ---------------------------------------------------------------------------

// NewHTTPClient returns a client using proxyURL, or HTTP_PROXY/HTTPS_PROXY
// from the environment when proxyURL is empty.
func NewHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// ---------------------------------------------------------------------------
// Translate
// ---------------------------------------------------------------------------

// Translate translates req.Text with the active provider. Every failure
// after the settings are read is a *Error.
func (t *Translator) Translate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", ErrEmptyText
	}

	ps, err := settings.Load(ctx, t.store)
	if err != nil {
		return "", err
	}
	cfg, err := ResolveActiveConfig(ps)
	if err != nil {
		t.logger.Warn("provider not usable", zap.Error(err))
		return "", err
	}

	primary, secondary, err := t.targets(ctx, req)
	if err != nil {
		return "", err
	}
	if secondary == "" {
		secondary = langmeta.FallbackSecondary(primary)
		t.logger.Warn("secondary target empty, using fallback", zap.String("secondary", secondary))
	}
	target := ResolveTarget(ctx, t.detector, req.Text, primary, secondary)

	prompt := Prompt(t.prompt, target, secondary, req.Text)
	spec, err := BuildRequest(cfg.Provider, cfg, prompt)
	if err != nil {
		return "", err
	}

	start := time.Now()
	text, err := t.send(ctx, cfg, spec)
	fields := []zap.Field{
		zap.String("provider", cfg.Provider.ID),
		zap.String("model", cfg.Model),
		zap.String("target", target),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		t.logger.Warn("translation failed", append(fields, zap.Error(err))...)
		return "", err
	}
	t.logger.Info("translation complete", append(fields, zap.Int("chars", len(text)))...)
	return text, nil
}

// targets returns the names of the request targets, falling back to the
// stored languages for empty ones. Values outside the vocabulary are kept
// as given.
func (t *Translator) targets(ctx context.Context, req Request) (string, string, error) {
	primary, secondary := req.PrimaryTarget, req.SecondaryTarget
	if primary == "" || secondary == "" {
		stored, err := settings.LoadLanguages(ctx, t.store)
		if err != nil {
			return "", "", err
		}
		p, s := stored.Names()
		if primary == "" {
			primary = p
		}
		if secondary == "" {
			secondary = s
		}
	}
	return langmeta.TargetName(primary), langmeta.TargetName(secondary), nil
}

func (t *Translator) send(ctx context.Context, cfg ActiveConfig, spec RequestSpec) (string, error) {
	httpReq, err := spec.HTTPRequest(ctx)
	if err != nil {
		return "", fmt.Errorf("preparing %s request: %w", cfg.Provider.ID, err)
	}

	t.logger.Debug("sending request",
		zap.String("provider", cfg.Provider.ID),
		zap.String("method", spec.Method),
		zap.String("host", httpReq.URL.Host))

	resp, err := t.client.Do(httpReq)
	if err != nil {
		e := networkError(err)
		e.Provider = cfg.Provider.ID
		return "", e
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e := newError(NetworkError, i18n.Tf("Reading the response failed: %v", err))
		e.Provider = cfg.Provider.ID
		e.Err = err
		return "", e
	}

	text, err := Normalize(cfg.Provider.Format, Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       body,
	})
	if err != nil {
		var te *Error
		if errors.As(err, &te) {
			te.Provider = cfg.Provider.ID
		}
		return "", err
	}
	return text, nil
}
