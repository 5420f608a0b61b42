package translate

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/minios-linux/eztranslate/i18n"
	"github.com/minios-linux/eztranslate/provider"
)

// Response is the part of a provider's HTTP answer the normalizer reads.
type Response struct {
	StatusCode int
	// Status is the reason phrase ("Not Found"). A leading status code,
	// as in http.Response.Status, is tolerated.
	Status string
	Body   []byte
}

func (r Response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r Response) statusText() string {
	text := strings.TrimSpace(strings.TrimPrefix(r.Status, strconv.Itoa(r.StatusCode)))
	if text == "" {
		text = http.StatusText(r.StatusCode)
	}
	return text
}

// codec pairs the request builder and the response normalizer of one
// wire format.
type codec struct {
	build     func(provider.Descriptor, ActiveConfig, string) (RequestSpec, error)
	normalize func(Response) (string, error)
}

// codecs must hold an entry for every provider.WireFormat in the registry.
var codecs = map[provider.WireFormat]codec{
	provider.FormatOpenAI:    {build: buildOpenAI, normalize: jsonNormalizer("choices.0.message.content", "error.message")},
	provider.FormatAzure:     {build: buildAzure, normalize: jsonNormalizer("choices.0.message.content", "error.message")},
	provider.FormatZhipu:     {build: buildZhipu, normalize: jsonNormalizer("choices.0.message.content", "error.message")},
	provider.FormatAnthropic: {build: buildAnthropic, normalize: jsonNormalizer("content.0.text", "error.message")},
	provider.FormatGoogle:    {build: buildGoogle, normalize: jsonNormalizer("candidates.0.content.parts.0.text", "error.message")},
	provider.FormatOllama:    {build: buildOllama, normalize: normalizeOllama},
}

// Normalize turns a provider answer into the translated text or a
// *Error. It never returns any other error type.
func Normalize(format provider.WireFormat, resp Response) (string, error) {
	c, ok := codecs[format]
	if !ok {
		return "", newError(MalformedResponse, i18n.Tf("Unsupported API format: %s", format))
	}
	return c.normalize(resp)
}

func httpError(resp Response, msg string) *Error {
	if msg == "" {
		msg = "HTTP " + strconv.Itoa(resp.StatusCode) + ": " + resp.statusText()
	}
	e := newError(HTTPError, msg)
	e.Status = resp.StatusCode
	return e
}

// jsonNormalizer reads the translation at textPath of a 2xx body and the
// error message at errorPath of any other body.
func jsonNormalizer(textPath, errorPath string) func(Response) (string, error) {
	return func(resp Response) (string, error) {
		if !resp.ok() {
			var msg string
			if gjson.ValidBytes(resp.Body) {
				msg = strings.TrimSpace(gjson.GetBytes(resp.Body, errorPath).String())
			}
			return "", httpError(resp, msg)
		}

		if len(strings.TrimSpace(string(resp.Body))) == 0 {
			return "", newError(EmptyResponse, i18n.T("The provider returned an empty response"))
		}
		if !gjson.ValidBytes(resp.Body) {
			return "", newError(MalformedResponse, i18n.T("The provider returned a response that is not valid JSON"))
		}
		res := gjson.GetBytes(resp.Body, textPath)
		if !res.Exists() || res.Type != gjson.String {
			return "", newError(MalformedResponse, i18n.Tf("Unexpected response format: missing %s", textPath))
		}
		text := strings.TrimSpace(res.String())
		if text == "" {
			return "", newError(EmptyResponse, i18n.T("The provider returned an empty translation"))
		}
		return text, nil
	}
}

// normalizeOllama handles /api/generate answers. Error bodies carry a
// plain "error" string, or are not JSON at all.
func normalizeOllama(resp Response) (string, error) {
	if !resp.ok() {
		if resp.StatusCode == http.StatusForbidden {
			return "", httpError(resp, i18n.T(`Ollama rejected the request. Set the environment variable OLLAMA_ORIGINS="*" and restart the Ollama service.`))
		}
		raw := strings.TrimSpace(string(resp.Body))
		var msg string
		if gjson.Valid(raw) {
			msg = strings.TrimSpace(gjson.Get(raw, "error").String())
		} else {
			msg = raw
		}
		return "", httpError(resp, msg)
	}

	raw := strings.TrimSpace(string(resp.Body))
	if raw == "" {
		return "", newError(EmptyResponse, i18n.T("Ollama returned an empty response, check that the model is loaded"))
	}
	if !gjson.Valid(raw) {
		return "", newError(MalformedResponse, i18n.T("Failed to parse the Ollama response"))
	}
	res := gjson.Get(raw, "response")
	text := strings.TrimSpace(res.String())
	if res.Type != gjson.String || text == "" {
		return "", newError(MalformedResponse, i18n.T("Ollama response is missing the response field"))
	}
	return text, nil
}
