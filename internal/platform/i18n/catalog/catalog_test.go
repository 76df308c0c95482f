package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/muslimbek77/tanlov-ai/internal/platform/translit"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	for _, locale := range []string{BaseLocale, CyrillicLocale, "ru"} {
		if !bundle.HasLocale(locale) {
			t.Fatalf("expected locale %s", locale)
		}
	}

	if got := len(bundle.LocaleMessages(BaseLocale)); got == 0 {
		t.Fatalf("expected %s messages", BaseLocale)
	}
	if got := len(bundle.NamespaceMessages("ru", "antifraud")); got == 0 {
		t.Fatalf("expected ru antifraud namespace messages")
	}
}

func TestCyrillicLocaleIsTransliteratedBase(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}

	base := bundle.LocaleMessages(BaseLocale)
	cyrl := bundle.LocaleMessages(CyrillicLocale)
	if len(base) != len(cyrl) {
		t.Fatalf("cyrillic messages = %d, want %d", len(cyrl), len(base))
	}
	for key, value := range base {
		if got, want := cyrl[key], Transliterate(value); got != want {
			t.Fatalf("%s = %q, want %q", key, got, want)
		}
	}
	if got := bundle.Namespaces(CyrillicLocale); strings.Join(got, ",") != strings.Join(bundle.Namespaces(BaseLocale), ",") {
		t.Fatalf("cyrillic namespaces = %v", got)
	}
}

func TestTransliterateKeepsPlaceholders(t *testing.T) {
	tests := map[string]string{
		"Kamida {{.Min}} ta ishtirokchi":  "Камида {{.Min}} та иштирокчи",
		"%d ta tahlil, %.1f%% moslik":     "%d та таҳлил, %.1f%% мослик",
		"Narx 15% dan yuqori":             "Нарх 15% дан юқори",
		"Xulosa":                          translit.LatinToCyrillic("Xulosa"),
		"{{.Reason}}":                     "{{.Reason}}",
	}
	for input, want := range tests {
		if got := Transliterate(input); got != want {
			t.Fatalf("Transliterate(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestEmbeddedBaseCatalogUsesModifierApostrophes(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	for key, value := range bundle.LocaleMessages(BaseLocale) {
		if strings.ContainsAny(value, "‘ʻ") {
			t.Fatalf("%s uses an apostrophe the transliterator ignores: %q", key, value)
		}
	}
}

func TestLoadFromFSRejectsKeyOutsideNamespace(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/uz-Latn/risk.yaml"), `locale: "uz-Latn"
namespace: "risk"
messages:
  "common.bad": "yo'q"
`)

	_, err := LoadFromFS(os.DirFS(tempDir))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFromFSRejectsAuthoredCyrillicLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/uz-Latn/common.yaml"), `locale: "uz-Latn"
namespace: "common"
messages:
  "common.ok": "Ha"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/uz-Cyrl/common.yaml"), `locale: "uz-Cyrl"
namespace: "common"
messages:
  "common.ok": "Ҳа"
`)

	_, err := LoadFromFS(os.DirFS(tempDir))
	if err == nil {
		t.Fatal("expected derived locale error")
	}
}

func TestLoadFromFSRejectsDuplicateKeys(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/uz-Latn/common.yaml"), `locale: "uz-Latn"
namespace: "common"
messages:
  "common.key": "a"
  "common.key": "b"
`)

	_, err := LoadFromFS(os.DirFS(tempDir))
	if err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestLoadFromFSRejectsUnknownFields(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/uz-Latn/common.yaml"), `locale: "uz-Latn"
namespace: "common"
owner: "ui"
messages:
  "common.key": "a"
`)

	_, err := LoadFromFS(os.DirFS(tempDir))
	if err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/ru/common.yaml"), `locale: "ru"
namespace: "common"
messages:
  "common.ok": "Да"
`)

	_, err := LoadFromFS(os.DirFS(tempDir))
	if err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	bundle := loadFixture(t)

	value, ok := bundle.Message("ru", "common.only_uz")
	if !ok || value != "Faqat o'zbekcha" {
		t.Fatalf("Message(ru, common.only_uz) = %q, %v", value, ok)
	}
	if _, ok := bundle.LocaleMessage("ru", "common.only_uz"); ok {
		t.Fatal("expected exact lookup to miss")
	}
	if _, ok := bundle.Message("ru", " "); ok {
		t.Fatal("expected blank key to miss")
	}
}

func TestNamespaceMessagesWithFallback(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	resolved, messages := bundle.NamespaceMessagesWithFallback("fr-FR", "errors")
	if resolved != BaseLocale {
		t.Fatalf("resolved locale = %q, want %s", resolved, BaseLocale)
	}
	if len(messages) == 0 {
		t.Fatal("expected fallback errors namespace messages")
	}
}

func TestPrinterCatalogFormatsDerivedLocale(t *testing.T) {
	bundle := loadFixture(t)

	printer := message.NewPrinter(language.MustParse(CyrillicLocale), message.Catalog(bundle.PrinterCatalog()))
	if got := printer.Sprintf("common.count", 3); got != "3 та таҳлил" {
		t.Fatalf("printer output = %q", got)
	}
}

func TestNilBundleIsEmpty(t *testing.T) {
	var bundle *Bundle
	if bundle.HasLocale(BaseLocale) {
		t.Fatal("nil bundle has no locales")
	}
	if got := bundle.LocaleMessages(BaseLocale); len(got) != 0 {
		t.Fatalf("nil bundle messages = %v", got)
	}
	if _, ok := bundle.Message(BaseLocale, "common.ok"); ok {
		t.Fatal("nil bundle lookup should miss")
	}
}

func loadFixture(t *testing.T) *Bundle {
	t.Helper()
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/uz-Latn/common.yaml"), `locale: "uz-Latn"
namespace: "common"
messages:
  "common.only_uz": "Faqat o'zbekcha"
  "common.count": "%d ta tahlil"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/ru/common.yaml"), `locale: "ru"
namespace: "common"
messages:
  "common.count": "%d анализов"
`)
	bundle, err := LoadFromFS(os.DirFS(tempDir))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return bundle
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
