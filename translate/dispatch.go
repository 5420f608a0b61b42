package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/minios-linux/eztranslate/i18n"
	"github.com/minios-linux/eztranslate/provider"
)

// Generation parameters sent with every chat-style request.
const (
	maxTokens   = 2048
	temperature = 0.3
)

// Attribution headers OpenRouter uses to credit the calling app.
const (
	openRouterHost    = "openrouter.ai"
	openRouterReferer = "https://github.com/Abelliuxl/ez-translate"
	openRouterTitle   = "EZ Translate"
)

// RequestSpec is a fully built provider request, independent of any
// HTTP client.
type RequestSpec struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// HTTPRequest materializes the spec as an *http.Request bound to ctx.
func (r RequestSpec) HTTPRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, bytes.NewReader(r.Body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = r.Header.Clone()
	return req, nil
}

// BuildRequest builds the request that asks desc's backend to complete
// prompt with the model and credentials of cfg.
func BuildRequest(desc provider.Descriptor, cfg ActiveConfig, prompt string) (RequestSpec, error) {
	c, ok := codecs[desc.Format]
	if !ok {
		e := newError(UnknownProvider, i18n.Tf("Unsupported API format: %s", desc.Format))
		e.Provider = desc.ID
		return RequestSpec{}, e
	}
	spec, err := c.build(desc, cfg, prompt)
	if err != nil {
		return RequestSpec{}, fmt.Errorf("building %s request: %w", desc.Format, err)
	}
	return spec, nil
}

// expandEndpoint substitutes {serverUrl} and {model} in an endpoint
// template. The server URL loses its trailing slashes.
func expandEndpoint(tmpl string, cfg ActiveConfig) string {
	r := strings.NewReplacer(
		"{serverUrl}", strings.TrimRight(cfg.ServerURL, "/"),
		"{model}", cfg.Model,
	)
	return r.Replace(tmpl)
}

func jsonHeader() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return h
}

func post(endpoint string, h http.Header, payload any) (RequestSpec, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return RequestSpec{}, err
	}
	return RequestSpec{Method: http.MethodPost, URL: endpoint, Header: h, Body: body}, nil
}

// ---------------------------------------------------------------------------
// Request bodies
// ---------------------------------------------------------------------------

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ---------------------------------------------------------------------------
// Request builders for each wire format
// ---------------------------------------------------------------------------

func newChatRequest(model, prompt string) chatRequest {
	return chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

func buildOpenAI(desc provider.Descriptor, cfg ActiveConfig, prompt string) (RequestSpec, error) {
	h := jsonHeader()
	if desc.RequiresAPIKey && cfg.APIKey != "" {
		h.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	if desc.Host() == openRouterHost {
		h.Set("HTTP-Referer", openRouterReferer)
		h.Set("X-Title", openRouterTitle)
	}
	return post(expandEndpoint(desc.Endpoint, cfg), h, newChatRequest(cfg.Model, prompt))
}

// buildAzure targets a deployment: the model names the deployment in the
// URL, and the key travels as a bearer token like the OpenAI shape.
func buildAzure(desc provider.Descriptor, cfg ActiveConfig, prompt string) (RequestSpec, error) {
	h := jsonHeader()
	h.Set("Authorization", "Bearer "+cfg.APIKey)
	return post(expandEndpoint(desc.Endpoint, cfg), h, newChatRequest(cfg.Model, prompt))
}

func buildZhipu(desc provider.Descriptor, cfg ActiveConfig, prompt string) (RequestSpec, error) {
	h := jsonHeader()
	h.Set("Authorization", "Bearer "+cfg.APIKey)
	return post(expandEndpoint(desc.Endpoint, cfg), h, newChatRequest(cfg.Model, prompt))
}

func buildAnthropic(desc provider.Descriptor, cfg ActiveConfig, prompt string) (RequestSpec, error) {
	h := make(http.Header)
	h.Set("x-api-key", cfg.APIKey)
	h.Set("anthropic-version", "2023-06-01")
	h.Set("content-type", "application/json")
	return post(expandEndpoint(desc.Endpoint, cfg), h, anthropicRequest{
		Model:       cfg.Model,
		MaxTokens:   maxTokens,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
	})
}

func buildGoogle(desc provider.Descriptor, cfg ActiveConfig, prompt string) (RequestSpec, error) {
	endpoint := expandEndpoint(desc.Endpoint, cfg) + "?key=" + url.QueryEscape(cfg.APIKey)
	return post(endpoint, jsonHeader(), geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
}

func buildOllama(desc provider.Descriptor, cfg ActiveConfig, prompt string) (RequestSpec, error) {
	return post(expandEndpoint(desc.Endpoint, cfg), jsonHeader(), ollamaRequest{
		Model:  cfg.Model,
		Prompt: prompt,
		Stream: false,
	})
}
