package i18n

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/muslimbek77/tanlov-ai/internal/platform/i18n/catalog"
)

// Language is a persisted language preference value.
type Language string

const (
	// LatinUzbek is Uzbek written in Latin script.
	LatinUzbek Language = "uz_latn"
	// CyrillicUzbek is Uzbek written in Cyrillic script.
	CyrillicUzbek Language = "uz_cyrl"
	// Russian is Russian.
	Russian Language = "ru"

	// DefaultLanguage is used when no preference is known.
	DefaultLanguage = LatinUzbek

	// legacyUzbek is the value older settings stored before the script split.
	legacyUzbek = "uz"
)

var (
	latinTag    = language.MustParse(catalog.BaseLocale)
	cyrillicTag = language.MustParse(catalog.CyrillicLocale)
	russianTag  = language.Russian

	supportedTags = []language.Tag{latinTag, cyrillicTag, russianTag}
	tagMatcher    = language.NewMatcher(supportedTags)
)

// Languages returns every supported language in display order.
func Languages() []Language {
	return []Language{LatinUzbek, CyrillicUzbek, Russian}
}

// ParseLanguage maps a stored preference or language tag to a Language.
// Unknown and blank values resolve to DefaultLanguage.
func ParseLanguage(value string) Language {
	if lang, ok := lookupLanguage(value); ok {
		return lang
	}
	if tag, ok := ParseTag(value); ok {
		return LanguageForTag(tag)
	}
	return DefaultLanguage
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	switch l {
	case LatinUzbek, CyrillicUzbek, Russian:
		return true
	default:
		return false
	}
}

func (l Language) String() string {
	return string(l)
}

// Tag returns the BCP 47 tag for l.
func (l Language) Tag() language.Tag {
	switch l {
	case CyrillicUzbek:
		return cyrillicTag
	case Russian:
		return russianTag
	default:
		return latinTag
	}
}

// Locale returns the catalog locale identifier for l.
func (l Language) Locale() string {
	switch l {
	case CyrillicUzbek:
		return catalog.CyrillicLocale
	case Russian:
		return "ru"
	default:
		return catalog.BaseLocale
	}
}

// LabelKey returns the catalog key naming l in settings screens.
func (l Language) LabelKey() string {
	if !l.Valid() {
		return "settings.lang_" + string(DefaultLanguage)
	}
	return "settings.lang_" + string(l)
}

// LanguageForTag maps a supported tag back to its Language.
func LanguageForTag(tag language.Tag) Language {
	switch tag {
	case cyrillicTag:
		return CyrillicUzbek
	case russianTag:
		return Russian
	default:
		return LatinUzbek
	}
}

// SupportedTags returns the supported language tags, default first.
func SupportedTags() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// DefaultTag returns the default language tag.
func DefaultTag() language.Tag {
	return DefaultLanguage.Tag()
}

// ParseTag parses a preference value ("uz_latn"), a legacy value ("uz") or a
// BCP 47 tag ("uz-Cyrl", "ru-RU") into a supported tag.
func ParseTag(value string) (language.Tag, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return language.Tag{}, false
	}
	if lang, ok := lookupLanguage(trimmed); ok {
		return lang.Tag(), true
	}

	parsed, err := language.Parse(strings.ReplaceAll(trimmed, "_", "-"))
	if err != nil {
		return language.Tag{}, false
	}
	base, _ := parsed.Base()
	switch base.String() {
	case "ru":
		return russianTag, true
	case "uz":
		if script, confidence := parsed.Script(); confidence == language.Exact && script.String() == "Cyrl" {
			return cyrillicTag, true
		}
		return latinTag, true
	default:
		return language.Tag{}, false
	}
}

// MatchTags picks the supported tag closest to the user's preferences.
func MatchTags(tags []language.Tag) language.Tag {
	if len(tags) == 0 {
		return DefaultTag()
	}
	_, index, confidence := tagMatcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(supportedTags) {
		return DefaultTag()
	}
	return supportedTags[index]
}

func lookupLanguage(value string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(LatinUzbek), legacyUzbek:
		return LatinUzbek, true
	case string(CyrillicUzbek):
		return CyrillicUzbek, true
	case string(Russian):
		return Russian, true
	default:
		return "", false
	}
}
