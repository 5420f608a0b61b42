// Package langmeta provides the language vocabulary shared by the
// translation engine and its collaborators: detector codes, the English
// language names used in prompts, and the message keys stored in settings
// (langEnglish, langSimplifiedChinese, ...).
package langmeta

import (
	"sort"
	"strings"
)

// English is the name every unknown input resolves to.
const English = "English"

// Meta describes one language of the vocabulary.
type Meta struct {
	// Name is the English name passed to providers in the prompt.
	Name string
	// Key is the message key persisted in settings.
	Key string
}

// Registry maps detector language codes to vocabulary entries.
// Locale variants are resolved in Resolve() via normalization and base fallback.
var Registry = map[string]Meta{
	"en":    {Name: "English", Key: "langEnglish"},
	"zh":    {Name: "Simplified Chinese", Key: "langSimplifiedChinese"},
	"zh-CN": {Name: "Simplified Chinese", Key: "langSimplifiedChinese"},
	"zh-TW": {Name: "Traditional Chinese", Key: "langTraditionalChinese"},
	"fr":    {Name: "French", Key: "langFrench"},
	"es":    {Name: "Spanish", Key: "langSpanish"},
	"ar":    {Name: "Arabic", Key: "langArabic"},
	"ru":    {Name: "Russian", Key: "langRussian"},
	"pt":    {Name: "Portuguese", Key: "langPortuguese"},
	"de":    {Name: "German", Key: "langGerman"},
	"it":    {Name: "Italian", Key: "langItalian"},
	"nl":    {Name: "Dutch", Key: "langDutch"},
	"da":    {Name: "Danish", Key: "langDanish"},
	"ja":    {Name: "Japanese", Key: "langJapanese"},
	"ko":    {Name: "Korean", Key: "langKorean"},
	"sv":    {Name: "Swedish", Key: "langSwedish"},
	"no":    {Name: "Norwegian Bokmål", Key: "langNorwegianBokmal"},
	"nb":    {Name: "Norwegian Bokmål", Key: "langNorwegianBokmal"},
	"pl":    {Name: "Polish", Key: "langPolish"},
	"tr":    {Name: "Turkish", Key: "langTurkish"},
	"fi":    {Name: "Finnish", Key: "langFinnish"},
	"hu":    {Name: "Hungarian", Key: "langHungarian"},
	"cs":    {Name: "Czech", Key: "langCzech"},
	"el":    {Name: "Greek", Key: "langGreek"},
	"hi":    {Name: "Hindi", Key: "langHindi"},
	"id":    {Name: "Indonesian", Key: "langIndonesian"},
	"th":    {Name: "Thai", Key: "langThai"},
	"vi":    {Name: "Vietnamese", Key: "langVietnamese"},
	"ro":    {Name: "Romanian", Key: "langRomanian"},
	"sk":    {Name: "Slovak", Key: "langSlovak"},
}

// aliases maps localized spellings found in older settings to English names.
var aliases = map[string]string{
	"中文":   "Simplified Chinese",
	"简体中文": "Simplified Chinese",
	"繁體中文": "Traditional Chinese",
	"繁体中文": "Traditional Chinese",
	"英语":   "English",
	"英文":   "English",
	"日语":   "Japanese",
	"日本語":  "Japanese",
	"韩语":   "Korean",
	"韓國語":  "Korean",
	"한국어":  "Korean",
}

var (
	byKey  = make(map[string]string)
	byName = make(map[string]Meta)
)

func init() {
	for _, m := range Registry {
		byKey[m.Key] = m.Name
		byName[m.Name] = m
	}
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns the vocabulary entry for a language code, supporting
// variants like zh_TW, zh-tw, and base-language fallbacks (pt-BR -> pt).
func Resolve(code string) (Meta, bool) {
	if m, ok := Registry[code]; ok {
		return m, true
	}
	normalized := canonicalize(code)
	if m, ok := Registry[normalized]; ok {
		return m, true
	}
	if base, _, ok := strings.Cut(normalized, "-"); ok {
		if m, ok := Registry[base]; ok {
			return m, true
		}
	}
	return Meta{}, false
}

// NameForCode maps a detector code to its English name. Unmapped codes
// resolve to English.
func NameForCode(code string) string {
	if m, ok := Resolve(code); ok {
		return m.Name
	}
	return English
}

// Lookup maps a message key, localized alias or English name of the
// vocabulary to its English name.
func Lookup(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if name, ok := byKey[value]; ok {
		return name, true
	}
	if name, ok := aliases[value]; ok {
		return name, true
	}
	if _, ok := byName[value]; ok {
		return value, true
	}
	return "", false
}

// TargetName turns a requested target language into the name sent to the
// provider. Vocabulary values are mapped like Lookup; any other non-blank
// value is passed through trimmed, so targets outside the vocabulary
// still reach the prompt. Blank stays blank.
func TargetName(value string) string {
	value = strings.TrimSpace(value)
	if name, ok := Lookup(value); ok {
		return name
	}
	return value
}

// KeyForName returns the message key of an English name, or "".
func KeyForName(name string) string {
	return byName[name].Key
}

// KeyForLocale maps a UI locale (en, zh-CN, fr_FR) to the message key used
// as the default primary target on first run.
func KeyForLocale(locale string) string {
	if m, ok := Resolve(locale); ok {
		return m.Key
	}
	return "langEnglish"
}

// FallbackSecondary returns the secondary target used when none is
// configured: English, or Simplified Chinese when the primary is English.
func FallbackSecondary(primary string) string {
	if name := TargetName(primary); name == "" || name == English {
		return "Simplified Chinese"
	}
	return English
}

// Names returns every distinct English name of the vocabulary, sorted.
func Names() []string {
	out := make([]string, 0, len(byName))
	for name := range byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
