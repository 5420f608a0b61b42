// Package provider is the static registry of LLM translation backends.
//
// Each backend is described by a Descriptor: its endpoint template, the
// wire format its HTTP API speaks, and which credentials it needs. The
// table is read-only; adding a backend means adding one row here (and a
// codec in package translate when the row introduces a new wire format).
//
// Endpoint templates may contain two placeholders:
//
//	{serverUrl}  the user-configured base URL (self-hosted backends, Azure)
//	{model}      the selected model (Google, Azure deployments)
package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Wire formats
// ---------------------------------------------------------------------------

// WireFormat names the request/response shape family of a backend.
type WireFormat string

const (
	FormatOpenAI    WireFormat = "openai"
	FormatAnthropic WireFormat = "anthropic"
	FormatGoogle    WireFormat = "google"
	FormatAzure     WireFormat = "azure"
	FormatZhipu     WireFormat = "zhipu"
	FormatOllama    WireFormat = "ollama"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	OpenAI      = "openai"
	Anthropic   = "anthropic"
	Google      = "google"
	Microsoft   = "microsoft"
	OpenRouter  = "openrouter"
	SiliconFlow = "siliconflow"
	Together    = "together"
	Groq        = "groq"
	ZhipuAI     = "zhipuai"
	Moonshot    = "moonshot"
	DeepSeek    = "deepseek"
	Qwen        = "qwen"
	Doubao      = "doubao"
	Ollama      = "ollama"
	LMStudio    = "lmstudio"
	VLLM        = "vllm"
)

// ErrNotFound is returned by Describe for ids without a registry row.
var ErrNotFound = errors.New("provider not found")

// ---------------------------------------------------------------------------
// Descriptor
// ---------------------------------------------------------------------------

// Model is one entry of a backend's model listing, in whichever shape the
// backend returned it. Filters look at the fields their backend fills.
type Model struct {
	ID                         string
	Name                       string
	Type                       string
	SupportedGenerationMethods []string
}

// ModelSource tells the model lister where a backend's models come from.
type ModelSource struct {
	// Endpoint is the listing URL template. Empty means no listing API.
	Endpoint string
	// Fixed is a static model list used instead of calling Endpoint.
	Fixed []string
	// Filter drops entries that are not chat models. Nil keeps all.
	Filter func(Model) bool
}

// Descriptor holds the immutable metadata for one backend.
type Descriptor struct {
	// ID is the provider identifier stored in settings.
	ID string
	// Name is the display name.
	Name string
	// Format selects the request builder and response normalizer.
	Format WireFormat
	// Endpoint is the text-translation endpoint template.
	Endpoint string
	// VisionEndpoint is the endpoint used for image input.
	VisionEndpoint string
	// RequiresAPIKey is true when requests must carry an API key.
	RequiresAPIKey bool
	// RequiresServerURL is true for self-hosted backends and Azure.
	RequiresServerURL bool
	// SupportsVision reports image-input support.
	SupportsVision bool
	// Models describes how to list the backend's models.
	Models ModelSource
	// KeyHelpURL points to the page where users create an API key.
	KeyHelpURL string
	// ServerURLPlaceholder is the usual base URL of a self-hosted backend.
	ServerURLPlaceholder string
}

// Host returns the host part of the endpoint template, or "" when the host
// comes from the user-configured server URL.
func (d Descriptor) Host() string {
	rest, ok := strings.CutPrefix(d.Endpoint, "https://")
	if !ok {
		rest, ok = strings.CutPrefix(d.Endpoint, "http://")
	}
	if !ok {
		return ""
	}
	host, _, _ := strings.Cut(rest, "/")
	return host
}

// ---------------------------------------------------------------------------
// Lookup
// ---------------------------------------------------------------------------

// Describe returns the descriptor registered under id.
func Describe(id string) (Descriptor, error) {
	d, ok := registry[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return d, nil
}

// All returns every descriptor in display order.
func All() []Descriptor {
	out := make([]Descriptor, 0, len(order))
	for _, id := range order {
		out = append(out, registry[id])
	}
	return out
}

// IDs returns every provider id in display order.
func IDs() []string {
	return append([]string(nil), order...)
}

// Formats returns the distinct wire formats used by the registry.
func Formats() []WireFormat {
	seen := make(map[WireFormat]bool)
	var out []WireFormat
	for _, id := range order {
		f := registry[id].Format
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
