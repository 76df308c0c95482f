// Package i18n renders coded errors as user-facing messages in the
// dashboard languages.
//
// Templates live in the "errors" namespace of the message catalog under keys
// like "errors.MIN_PARTICIPANTS". The uz-Cyrl templates are the transliterated
// uz-Latn ones, so error text follows the same script switch as the rest of
// the interface.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/muslimbek77/tanlov-ai/internal/platform/i18n/catalog"
)

// Code is an error code such as "UNAUTHENTICATED". It mirrors the errors
// package type without importing it.
type Code = string

const namespace = "errors"

// Catalog holds the compiled error templates of one locale.
type Catalog struct {
	locale    string
	raw       map[Code]string
	templates map[Code]*template.Template
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}
)

// GetCatalog returns the catalog for locale, built from the message catalog
// on first use. Unknown and blank locales resolve to the base locale.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}
	if c, ok := lookupCatalog(requested); ok {
		return c
	}

	resolved, messages := i18ncatalog.Default().NamespaceMessagesWithFallback(requested, namespace)
	if c, ok := lookupCatalog(resolved); ok {
		return c
	}
	codes := make(map[Code]string, len(messages))
	for key, value := range messages {
		codes[strings.TrimPrefix(key, namespace+".")] = value
	}
	return storeCatalogIfAbsent(resolved, NewCatalog(resolved, codes))
}

// NewCatalog compiles messages for locale. A template that does not parse
// is kept and rendered verbatim.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	c := &Catalog{
		locale:    locale,
		raw:       make(map[Code]string, len(messages)),
		templates: make(map[Code]*template.Template, len(messages)),
	}
	for code, text := range messages {
		c.raw[code] = text
		tmpl, err := template.New(code).Option("missingkey=zero").Parse(text)
		if err == nil {
			c.templates[code] = tmpl
		}
	}
	return c
}

// Locale returns the locale the catalog was built for.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the template for code with metadata such as Field or Min.
// Missing metadata renders empty. Without a template the code itself is
// returned.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	text, ok := c.raw[code]
	if !ok {
		return code
	}
	tmpl, ok := c.templates[code]
	if !ok {
		return text
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, metadata); err != nil {
		return text
	}
	return buf.String()
}

// RegisterCatalog replaces the cached catalog for locale. Tests use it to
// pin messages.
func RegisterCatalog(locale string, cat *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = cat
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	cat, ok := catalogs[locale]
	return cat, ok
}

func storeCatalogIfAbsent(locale string, candidate *Catalog) *Catalog {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[locale]; ok {
		return existing
	}
	catalogs[locale] = candidate
	return candidate
}
