package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/minios-linux/eztranslate/i18n"
	"github.com/minios-linux/eztranslate/provider"
)

// ErrNoModelSource is returned by ListModels for backends without a
// listing API (Azure deployments are named by the user).
var ErrNoModelSource = errors.New("provider has no model listing")

// ModelClient lists models and checks credentials against a backend's
// management endpoints. It backs the provider setup commands; translation
// requests go through Translator.
type ModelClient struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewModelClient wraps hc (nil means a default client) in a resty client.
func NewModelClient(hc *http.Client, logger *zap.Logger) *ModelClient {
	if hc == nil {
		hc = NewHTTPClient("", 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelClient{
		http:   resty.NewWithClient(hc),
		logger: logger.With(zap.String("component", "models")),
	}
}

// ListModels returns the chat models desc offers. cfg supplies the
// credentials; its Model is ignored.
func (c *ModelClient) ListModels(ctx context.Context, desc provider.Descriptor, cfg ActiveConfig) ([]string, error) {
	src := desc.Models
	if len(src.Fixed) > 0 {
		return append([]string(nil), src.Fixed...), nil
	}
	if src.Endpoint == "" {
		return nil, fmt.Errorf("%s: %w", desc.Name, ErrNoModelSource)
	}
	if desc.RequiresServerURL && strings.TrimSpace(cfg.ServerURL) == "" {
		return nil, newError(MissingCredential, i18n.Tf("%s server URL is not configured", desc.Name))
	}

	req := c.http.R().SetContext(ctx)
	endpoint := expandEndpoint(src.Endpoint, cfg)
	switch desc.Format {
	case provider.FormatGoogle:
		endpoint += "?key=" + url.QueryEscape(cfg.APIKey)
	case provider.FormatAnthropic:
		req.SetHeader("x-api-key", cfg.APIKey).SetHeader("anthropic-version", "2023-06-01")
	default:
		if desc.RequiresAPIKey {
			req.SetHeader("Authorization", "Bearer "+cfg.APIKey)
		}
	}
	if desc.Host() == openRouterHost {
		req.SetHeader("HTTP-Referer", openRouterReferer).SetHeader("X-Title", openRouterTitle)
	}

	resp, err := req.Get(endpoint)
	if err != nil {
		return nil, networkError(err)
	}
	if resp.IsError() {
		return nil, managementError(resp)
	}

	models := parseModels(resp.Body())
	out := make([]string, 0, len(models))
	for _, m := range models {
		if src.Filter != nil && !src.Filter(m) {
			continue
		}
		id := m.ID
		if id == "" {
			id = m.Name
		}
		if id != "" {
			out = append(out, id)
		}
	}
	c.logger.Debug("models listed",
		zap.String("provider", desc.ID),
		zap.Int("total", len(models)),
		zap.Int("kept", len(out)))
	return out, nil
}

// parseModels reads the {"data":[...]} (OpenAI style) or {"models":[...]}
// (Google, Ollama) listing shapes. Google's "models/" name prefix is
// stripped.
func parseModels(body []byte) []provider.Model {
	list := gjson.GetBytes(body, "data")
	if !list.IsArray() {
		list = gjson.GetBytes(body, "models")
	}
	var out []provider.Model
	for _, item := range list.Array() {
		if item.Type == gjson.String {
			out = append(out, provider.Model{ID: item.String()})
			continue
		}
		m := provider.Model{
			ID:   item.Get("id").String(),
			Name: strings.TrimPrefix(item.Get("name").String(), "models/"),
			Type: item.Get("type").String(),
		}
		for _, method := range item.Get("supportedGenerationMethods").Array() {
			m.SupportedGenerationMethods = append(m.SupportedGenerationMethods, method.String())
		}
		if m.ID == "" {
			m.ID = m.Name
		}
		out = append(out, m)
	}
	return out
}

// TestConnection checks that the stored credentials are accepted. Key
// based backends are checked against their model listing (Anthropic with a one
// token message); self-hosted ones on /api/tags or /v1/models.
func (c *ModelClient) TestConnection(ctx context.Context, desc provider.Descriptor, cfg ActiveConfig) error {
	if desc.RequiresAPIKey && strings.TrimSpace(cfg.APIKey) == "" {
		return newError(MissingCredential, i18n.Tf("%s API key is not configured", desc.Name))
	}
	if desc.RequiresServerURL && strings.TrimSpace(cfg.ServerURL) == "" {
		return newError(MissingCredential, i18n.Tf("%s server URL is not configured", desc.Name))
	}

	req := c.http.R().SetContext(ctx)
	var (
		resp *resty.Response
		err  error
	)
	switch {
	case desc.Format == provider.FormatAnthropic:
		model := "claude-3-haiku-20240307"
		if len(desc.Models.Fixed) > 0 {
			model = desc.Models.Fixed[0]
		}
		resp, err = req.
			SetHeader("x-api-key", cfg.APIKey).
			SetHeader("anthropic-version", "2023-06-01").
			SetHeader("content-type", "application/json").
			SetBody(map[string]any{
				"model":      model,
				"max_tokens": 1,
				"messages":   []chatMessage{{Role: "user", Content: "Hi"}},
			}).
			Post(desc.Endpoint)
	case desc.Models.Endpoint != "":
		endpoint := expandEndpoint(desc.Models.Endpoint, cfg)
		if desc.Format == provider.FormatGoogle {
			endpoint += "?key=" + url.QueryEscape(cfg.APIKey)
		} else if desc.RequiresAPIKey {
			req.SetHeader("Authorization", "Bearer "+cfg.APIKey)
		}
		if desc.Host() == openRouterHost {
			req.SetHeader("HTTP-Referer", openRouterReferer).SetHeader("X-Title", openRouterTitle)
		}
		resp, err = req.Get(endpoint)
	default:
		return fmt.Errorf("%s: %w", desc.Name, ErrNoModelSource)
	}
	if err != nil {
		return networkError(err)
	}
	if resp.IsError() {
		return managementError(resp)
	}

	body := resp.Body()
	if gjson.ValidBytes(body) {
		if e := gjson.GetBytes(body, "error"); e.Exists() && e.Type != gjson.Null {
			msg := e.Get("message").String()
			if msg == "" {
				msg = i18n.T("The API returned an error")
			}
			return newError(HTTPError, msg)
		}
	}
	c.logger.Info("connection test passed", zap.String("provider", desc.ID))
	return nil
}

func networkError(err error) *Error {
	e := newError(NetworkError, i18n.Tf("Network request failed: %v", err))
	e.Err = err
	return e
}

// managementError extracts error.message or message from a failed
// listing or test call.
func managementError(resp *resty.Response) *Error {
	body := resp.Body()
	var msg string
	if gjson.ValidBytes(body) {
		msg = gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = gjson.GetBytes(body, "message").String()
		}
	}
	return httpError(Response{StatusCode: resp.StatusCode(), Status: resp.Status(), Body: body}, msg)
}
