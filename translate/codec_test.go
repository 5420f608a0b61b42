package translate

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/minios-linux/eztranslate/provider"
)

func mustDescribe(t *testing.T, id string) provider.Descriptor {
	t.Helper()
	d, err := provider.Describe(id)
	if err != nil {
		t.Fatalf("Describe(%q) error: %v", id, err)
	}
	return d
}

func wantKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("error = %v (%T), want *Error of kind %s", err, err, kind)
	}
	if te.Kind != kind {
		t.Fatalf("kind = %s, want %s (message %q)", te.Kind, kind, te.Message)
	}
	return te
}

// ---------------------------------------------------------------------------
// Codec coverage
// ---------------------------------------------------------------------------

func TestEveryFormatHasCodec(t *testing.T) {
	for _, f := range provider.Formats() {
		c, ok := codecs[f]
		if !ok {
			t.Fatalf("no codec for wire format %q", f)
		}
		if c.build == nil || c.normalize == nil {
			t.Fatalf("codec for %q is incomplete", f)
		}
	}
}

func TestEveryProviderBuildsRequest(t *testing.T) {
	for _, d := range provider.All() {
		cfg := ActiveConfig{Provider: d, APIKey: "k-123", ServerURL: "http://host:1/", Model: "m1"}
		spec, err := BuildRequest(d, cfg, "hi")
		if err != nil {
			t.Fatalf("BuildRequest(%s) error: %v", d.ID, err)
		}
		if spec.Method != http.MethodPost {
			t.Fatalf("%s: method = %s", d.ID, spec.Method)
		}
		if strings.Contains(spec.URL, "{") {
			t.Fatalf("%s: unexpanded template in %q", d.ID, spec.URL)
		}
		if !json.Valid(spec.Body) {
			t.Fatalf("%s: body is not JSON: %s", d.ID, spec.Body)
		}
	}
}

// ---------------------------------------------------------------------------
// Request builders
// ---------------------------------------------------------------------------

func TestBuildOpenAI(t *testing.T) {
	d := mustDescribe(t, provider.OpenAI)
	spec, err := BuildRequest(d, ActiveConfig{APIKey: "sk-1", Model: "gpt-4o-mini"}, "Translate this")
	if err != nil {
		t.Fatalf("BuildRequest() error: %v", err)
	}
	if spec.URL != "https://api.openai.com/v1/chat/completions" {
		t.Fatalf("URL = %q", spec.URL)
	}
	if got := spec.Header.Get("Authorization"); got != "Bearer sk-1" {
		t.Fatalf("Authorization = %q", got)
	}
	if got := spec.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q", got)
	}
	if spec.Header.Get("X-Title") != "" {
		t.Fatal("attribution headers are for OpenRouter only")
	}

	want := `{"model":"gpt-4o-mini","messages":[{"role":"user","content":"Translate this"}],"max_tokens":2048,"temperature":0.3}`
	if string(spec.Body) != want {
		t.Fatalf("body = %s\nwant %s", spec.Body, want)
	}
}

func TestBuildOpenRouterAttribution(t *testing.T) {
	d := mustDescribe(t, provider.OpenRouter)
	spec, err := BuildRequest(d, ActiveConfig{APIKey: "or", Model: "x/y"}, "p")
	if err != nil {
		t.Fatalf("BuildRequest() error: %v", err)
	}
	if got := spec.Header.Get("HTTP-Referer"); got != "https://github.com/Abelliuxl/ez-translate" {
		t.Fatalf("HTTP-Referer = %q", got)
	}
	if got := spec.Header.Get("X-Title"); got != "EZ Translate" {
		t.Fatalf("X-Title = %q", got)
	}
}

func TestBuildSelfHostedOpenAIHasNoAuth(t *testing.T) {
	d := mustDescribe(t, provider.LMStudio)
	spec, err := BuildRequest(d, ActiveConfig{APIKey: "ignored", ServerURL: "http://localhost:1234/", Model: "qwen"}, "p")
	if err != nil {
		t.Fatalf("BuildRequest() error: %v", err)
	}
	if spec.URL != "http://localhost:1234/v1/chat/completions" {
		t.Fatalf("URL = %q", spec.URL)
	}
	if spec.Header.Get("Authorization") != "" {
		t.Fatal("LM Studio requests must not carry Authorization")
	}
}

func TestBuildAnthropic(t *testing.T) {
	d := mustDescribe(t, provider.Anthropic)
	spec, err := BuildRequest(d, ActiveConfig{APIKey: "ak", Model: "claude-3-5-haiku-20241022"}, "p")
	if err != nil {
		t.Fatalf("BuildRequest() error: %v", err)
	}
	if spec.Header.Get("x-api-key") != "ak" || spec.Header.Get("anthropic-version") != "2023-06-01" {
		t.Fatalf("headers = %v", spec.Header)
	}
	if spec.Header.Get("Authorization") != "" {
		t.Fatal("Anthropic uses x-api-key, not Authorization")
	}
	want := `{"model":"claude-3-5-haiku-20241022","max_tokens":2048,"messages":[{"role":"user","content":"p"}],"temperature":0.3}`
	if string(spec.Body) != want {
		t.Fatalf("body = %s", spec.Body)
	}
}

func TestBuildGoogle(t *testing.T) {
	d := mustDescribe(t, provider.Google)
	spec, err := BuildRequest(d, ActiveConfig{APIKey: "a b&c", Model: "gemini-1.5-flash"}, "p")
	if err != nil {
		t.Fatalf("BuildRequest() error: %v", err)
	}
	want := "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent?key=a+b%26c"
	if spec.URL != want {
		t.Fatalf("URL = %q, want %q", spec.URL, want)
	}
	if string(spec.Body) != `{"contents":[{"parts":[{"text":"p"}]}]}` {
		t.Fatalf("body = %s", spec.Body)
	}
}

func TestBuildAzure(t *testing.T) {
	d := mustDescribe(t, provider.Microsoft)
	spec, err := BuildRequest(d, ActiveConfig{APIKey: "az", ServerURL: "https://res.openai.azure.com/", Model: "gpt4-deploy"}, "p")
	if err != nil {
		t.Fatalf("BuildRequest() error: %v", err)
	}
	want := "https://res.openai.azure.com/openai/deployments/gpt4-deploy/chat/completions?api-version=2024-02-15-preview"
	if spec.URL != want {
		t.Fatalf("URL = %q, want %q", spec.URL, want)
	}
}

func TestBuildOllama(t *testing.T) {
	d := mustDescribe(t, provider.Ollama)
	spec, err := BuildRequest(d, ActiveConfig{ServerURL: "http://localhost:11434", Model: "llama3"}, "p")
	if err != nil {
		t.Fatalf("BuildRequest() error: %v", err)
	}
	if spec.URL != "http://localhost:11434/api/generate" {
		t.Fatalf("URL = %q", spec.URL)
	}
	if spec.Header.Get("Authorization") != "" {
		t.Fatal("Ollama requests carry no key")
	}
	if string(spec.Body) != `{"model":"llama3","prompt":"p","stream":false}` {
		t.Fatalf("body = %s", spec.Body)
	}
}

func TestBuildUnknownFormat(t *testing.T) {
	_, err := BuildRequest(provider.Descriptor{ID: "x", Format: "telepathy"}, ActiveConfig{}, "p")
	wantKind(t, err, UnknownProvider)
}

// ---------------------------------------------------------------------------
// Normalizer
// ---------------------------------------------------------------------------

func TestNormalizeSuccessPaths(t *testing.T) {
	cases := []struct {
		format provider.WireFormat
		body   string
	}{
		{provider.FormatOpenAI, `{"choices":[{"message":{"content":"  Bonjour  "}}]}`},
		{provider.FormatAzure, `{"choices":[{"message":{"content":"Bonjour"}}]}`},
		{provider.FormatZhipu, `{"choices":[{"message":{"content":"Bonjour\n"}}]}`},
		{provider.FormatAnthropic, `{"content":[{"type":"text","text":"Bonjour"}]}`},
		{provider.FormatGoogle, `{"candidates":[{"content":{"parts":[{"text":"Bonjour"}]}}]}`},
		{provider.FormatOllama, `{"response":" Bonjour ","done":true}`},
	}
	for _, tc := range cases {
		t.Run(string(tc.format), func(t *testing.T) {
			got, err := Normalize(tc.format, Response{StatusCode: 200, Body: []byte(tc.body)})
			if err != nil {
				t.Fatalf("Normalize() error: %v", err)
			}
			if got != "Bonjour" {
				t.Fatalf("Normalize() = %q, want %q", got, "Bonjour")
			}
		})
	}
}

func TestNormalizeHTTPErrors(t *testing.T) {
	t.Run("error message from body", func(t *testing.T) {
		_, err := Normalize(provider.FormatOpenAI, Response{
			StatusCode: 401,
			Status:     "401 Unauthorized",
			Body:       []byte(`{"error":{"message":"Incorrect API key provided"}}`),
		})
		te := wantKind(t, err, HTTPError)
		if te.Message != "Incorrect API key provided" || te.Status != 401 {
			t.Fatalf("error = %#v", te)
		}
	})

	t.Run("status line fallback", func(t *testing.T) {
		_, err := Normalize(provider.FormatAnthropic, Response{
			StatusCode: 502,
			Status:     "502 Bad Gateway",
			Body:       []byte("<html>upstream down</html>"),
		})
		te := wantKind(t, err, HTTPError)
		if te.Message != "HTTP 502: Bad Gateway" {
			t.Fatalf("message = %q", te.Message)
		}
	})

	t.Run("status text from code", func(t *testing.T) {
		_, err := Normalize(provider.FormatGoogle, Response{StatusCode: 404})
		te := wantKind(t, err, HTTPError)
		if te.Message != "HTTP 404: Not Found" {
			t.Fatalf("message = %q", te.Message)
		}
	})
}

func TestNormalizeMalformedAndEmpty(t *testing.T) {
	_, err := Normalize(provider.FormatOpenAI, Response{StatusCode: 200, Body: []byte("   ")})
	wantKind(t, err, EmptyResponse)

	_, err = Normalize(provider.FormatOpenAI, Response{StatusCode: 200, Body: []byte("{oops")})
	wantKind(t, err, MalformedResponse)

	_, err = Normalize(provider.FormatOpenAI, Response{StatusCode: 200, Body: []byte(`{"choices":[]}`)})
	wantKind(t, err, MalformedResponse)

	_, err = Normalize(provider.FormatAnthropic, Response{StatusCode: 200, Body: []byte(`{"content":[{"type":"text","text":42}]}`)})
	wantKind(t, err, MalformedResponse)

	_, err = Normalize("telepathy", Response{StatusCode: 200, Body: []byte(`{}`)})
	wantKind(t, err, MalformedResponse)
}

func TestNormalizeOllama(t *testing.T) {
	t.Run("403 is actionable", func(t *testing.T) {
		_, err := Normalize(provider.FormatOllama, Response{StatusCode: 403, Body: []byte(`{"error":"forbidden"}`)})
		te := wantKind(t, err, HTTPError)
		if !strings.Contains(te.Message, `OLLAMA_ORIGINS="*"`) {
			t.Fatalf("message = %q", te.Message)
		}
	})

	t.Run("json error string", func(t *testing.T) {
		_, err := Normalize(provider.FormatOllama, Response{StatusCode: 404, Body: []byte(`{"error":"model 'x' not found"}`)})
		te := wantKind(t, err, HTTPError)
		if te.Message != "model 'x' not found" {
			t.Fatalf("message = %q", te.Message)
		}
	})

	t.Run("raw text body", func(t *testing.T) {
		_, err := Normalize(provider.FormatOllama, Response{StatusCode: 500, Body: []byte("out of memory")})
		te := wantKind(t, err, HTTPError)
		if te.Message != "out of memory" {
			t.Fatalf("message = %q", te.Message)
		}
	})

	t.Run("empty error body", func(t *testing.T) {
		_, err := Normalize(provider.FormatOllama, Response{StatusCode: 500, Status: "500 Internal Server Error"})
		te := wantKind(t, err, HTTPError)
		if te.Message != "HTTP 500: Internal Server Error" {
			t.Fatalf("message = %q", te.Message)
		}
	})

	t.Run("blank success", func(t *testing.T) {
		_, err := Normalize(provider.FormatOllama, Response{StatusCode: 200, Body: []byte("\n")})
		wantKind(t, err, EmptyResponse)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := Normalize(provider.FormatOllama, Response{StatusCode: 200, Body: []byte("hello")})
		wantKind(t, err, MalformedResponse)
	})

	t.Run("missing response", func(t *testing.T) {
		_, err := Normalize(provider.FormatOllama, Response{StatusCode: 200, Body: []byte(`{"done":true}`)})
		wantKind(t, err, MalformedResponse)
	})

	t.Run("empty response", func(t *testing.T) {
		_, err := Normalize(provider.FormatOllama, Response{StatusCode: 200, Body: []byte(`{"response":""}`)})
		wantKind(t, err, MalformedResponse)
	})
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := error(&Error{Kind: HTTPError, Message: "x", Status: 500})
	if !errors.Is(err, &Error{Kind: HTTPError}) {
		t.Fatal("errors.Is should match on kind")
	}
	if errors.Is(err, &Error{Kind: NetworkError}) {
		t.Fatal("errors.Is should not match other kinds")
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Fatal("KindOf(plain) should be 0")
	}
}
