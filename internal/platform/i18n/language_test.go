package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestParseLanguage(t *testing.T) {
	tests := map[string]Language{
		"uz_latn": LatinUzbek,
		"UZ_CYRL": CyrillicUzbek,
		"ru":      Russian,
		"uz":      LatinUzbek,
		"uz-Cyrl": CyrillicUzbek,
		"ru-RU":   Russian,
		"":        DefaultLanguage,
		"fr":      DefaultLanguage,
		"???":     DefaultLanguage,
	}
	for input, want := range tests {
		if got := ParseLanguage(input); got != want {
			t.Fatalf("ParseLanguage(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{input: "uz_latn", want: "uz-Latn", ok: true},
		{input: "uz-Latn", want: "uz-Latn", ok: true},
		{input: "uz", want: "uz-Latn", ok: true},
		{input: "uz_cyrl", want: "uz-Cyrl", ok: true},
		{input: "uz-Cyrl-UZ", want: "uz-Cyrl", ok: true},
		{input: "ru-RU", want: "ru", ok: true},
		{input: "en-US", ok: false},
		{input: " ", ok: false},
		{input: "not a tag", ok: false},
	}
	for _, tt := range tests {
		got, ok := ParseTag(tt.input)
		if ok != tt.ok {
			t.Fatalf("ParseTag(%q) ok = %v, want %v", tt.input, ok, tt.ok)
		}
		if ok && got.String() != tt.want {
			t.Fatalf("ParseTag(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLanguageTagRoundTrip(t *testing.T) {
	for _, lang := range Languages() {
		if got := LanguageForTag(lang.Tag()); got != lang {
			t.Fatalf("LanguageForTag(%s.Tag()) = %q", lang, got)
		}
	}
	if got := Language("de").Locale(); got != "uz-Latn" {
		t.Fatalf("invalid language locale = %q", got)
	}
	if got := Russian.LabelKey(); got != "settings.lang_ru" {
		t.Fatalf("label key = %q", got)
	}
}

func TestMatchTags(t *testing.T) {
	tests := []struct {
		accept string
		want   string
	}{
		{accept: "ru-RU,ru;q=0.9", want: "ru"},
		{accept: "en-US,en;q=0.9", want: "uz-Latn"},
		{accept: "uz-Cyrl,ru;q=0.5", want: "uz-Cyrl"},
	}
	for _, tt := range tests {
		tags, _, err := language.ParseAcceptLanguage(tt.accept)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.accept, err)
		}
		if got := MatchTags(tags); got.String() != tt.want {
			t.Fatalf("MatchTags(%q) = %q, want %q", tt.accept, got, tt.want)
		}
	}
	if got := MatchTags(nil); got != DefaultTag() {
		t.Fatalf("MatchTags(nil) = %q", got)
	}
}

func TestSupportedTagsReturnsCopy(t *testing.T) {
	tags := SupportedTags()
	tags[0] = language.English
	if SupportedTags()[0] != DefaultTag() {
		t.Fatal("SupportedTags exposed internal slice")
	}
}
