package translate

import (
	"strings"

	"github.com/minios-linux/eztranslate/i18n"
)

// DefaultPrompt is the prompt template used when none is configured. It
// is a message id, so the catalog of the UI language may replace it.
const DefaultPrompt = `Translate the following text into {{targetLang}}. If the text is already in {{targetLang}}, translate it into {{secondTargetLang}} instead. Output only the translation, without quotes, notes or explanations.

{{text}}`

// Prompt fills a template's {{targetLang}}, {{secondTargetLang}} and
// {{text}} placeholders. An empty template selects the localized
// DefaultPrompt.
func Prompt(template, target, secondTarget, text string) string {
	if strings.TrimSpace(template) == "" {
		template = i18n.T(DefaultPrompt)
	}
	r := strings.NewReplacer(
		"{{targetLang}}", target,
		"{{secondTargetLang}}", secondTarget,
		"{{text}}", text,
	)
	return r.Replace(template)
}
