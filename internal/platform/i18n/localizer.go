package i18n

import (
	"strings"

	"golang.org/x/text/message"

	"github.com/muslimbek77/tanlov-ai/internal/platform/i18n/catalog"
)

// Config configures a Localizer.
type Config struct {
	// Bundle holds the messages. Nil uses catalog.Default().
	Bundle *catalog.Bundle
	// Language selects the active language. Invalid values use DefaultLanguage.
	Language Language
}

// Localizer resolves message keys for one language. It is immutable and safe
// for concurrent use.
type Localizer struct {
	bundle   *catalog.Bundle
	language Language
	printer  *message.Printer
}

// NewLocalizer builds a Localizer from cfg.
func NewLocalizer(cfg Config) *Localizer {
	bundle := cfg.Bundle
	if bundle == nil {
		bundle = catalog.Default()
	}
	lang := cfg.Language
	if !lang.Valid() {
		lang = ParseLanguage(string(lang))
	}
	return &Localizer{
		bundle:   bundle,
		language: lang,
		printer:  message.NewPrinter(lang.Tag(), message.Catalog(bundle.PrinterCatalog())),
	}
}

// Language returns the active language.
func (l *Localizer) Language() Language {
	return l.language
}

// WithLanguage returns a Localizer over the same bundle for lang.
func (l *Localizer) WithLanguage(lang Language) *Localizer {
	return NewLocalizer(Config{Bundle: l.bundle, Language: lang})
}

// T returns the message for key in the active language, or key itself when
// the active language has no such message.
func (l *Localizer) T(key string) string {
	if value, ok := l.Lookup(key); ok {
		return value
	}
	return key
}

// Lookup returns the message for key and whether the active language has it.
// Lookup never falls back to another language.
func (l *Localizer) Lookup(key string) (string, bool) {
	if strings.TrimSpace(key) == "" {
		return "", false
	}
	return l.bundle.LocaleMessage(l.language.Locale(), key)
}

// Sprintf formats the message for key with args. A missing key is returned
// unformatted, like T.
func (l *Localizer) Sprintf(key string, args ...any) string {
	if _, ok := l.Lookup(key); !ok {
		return key
	}
	return l.printer.Sprintf(key, args...)
}

// Messages returns the active language's messages for namespace, or all
// messages when namespace is blank.
func (l *Localizer) Messages(namespace string) map[string]string {
	if strings.TrimSpace(namespace) == "" {
		return l.bundle.LocaleMessages(l.language.Locale())
	}
	return l.bundle.NamespaceMessages(l.language.Locale(), namespace)
}

// Missing returns the keys that T would echo back unchanged, in input order.
func (l *Localizer) Missing(keys ...string) []string {
	var missing []string
	for _, key := range keys {
		if _, ok := l.Lookup(key); !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
