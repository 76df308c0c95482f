package translit

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestLatinToCyrillic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "digraph before letters", input: "o'zbek", want: "ўзбэк"},
		{name: "title case o apostrophe", input: "O'zbekiston", want: "Ўзбэкистон"},
		{name: "typographic apostrophe", input: "o’g’il", want: "ўғил"},
		{name: "all caps o apostrophe", input: "O’ZBEKISTON", want: "ЎЗБЭКИСТОН"},
		{name: "all caps sh is not a digraph", input: "SH", want: "СҲ"},
		{name: "all caps word", input: "BOSH", want: "БОСҲ"},
		{name: "title case sh", input: "Shahar", want: "Шаҳар"},
		{name: "lower case ch", input: "choyxona", want: "чойхона"},
		{name: "ng keeps two glyphs", input: "Yangi", want: "Янги"},
		{name: "title case ng", input: "Ngora", want: "Нгора"},
		{name: "caps ng falls through", input: "NG", want: "НГ"},
		{name: "yu and yo", input: "yulduz yo'l Yoqub", want: "юлдуз йўл Ёқуб"},
		{name: "orphan apostrophe", input: "ma'lumot", want: "малумот"},
		{name: "digits and punctuation", input: "2024-yil, 15%", want: "2024-йил, 15%"},
		{name: "full sentence", input: "G'ofur Orif o'g'li, 3-kurs", want: "Ғофур Ориф ўғли, 3-курс"},
		{name: "earlier rule wins", input: "ng'", want: "нғ"},
		{name: "o apostrophe before yo", input: "yo'q", want: "йўқ"},
		{name: "letters outside alphabet", input: "cWw", want: "cWw"},
		{name: "cyrillic passes through", input: "Ўзбекистон", want: "Ўзбекистон"},
		{name: "invalid utf8 bytes kept", input: "a\xffb", want: "а\xffб"},
		{name: "apostrophe splitting a typographic apostrophe", input: "\xe2\x80'\x99", want: ""},
		{name: "rejoined apostrophe after letter", input: "o\xe2\x80'\x99", want: "о"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LatinToCyrillic(tt.input); got != tt.want {
				t.Fatalf("LatinToCyrillic(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLatinToCyrillicIsNoOpOnCyrillic(t *testing.T) {
	inputs := []string{
		"Ғофур Ориф ўғли",
		"Тендер таҳлили",
		"Шаҳар, 2024 йил",
		"Анализ тендера",
	}
	for _, input := range inputs {
		if got := LatinToCyrillic(input); got != input {
			t.Fatalf("LatinToCyrillic(%q) = %q, want unchanged", input, got)
		}
	}
}

func TestDigraphRulesOrder(t *testing.T) {
	want := []string{
		`O['’]`, `o['’]`, `G['’]`, `g['’]`,
		`Sh`, `sh`, `Ch`, `ch`, `Ng`, `ng`,
		`Ya`, `ya`, `Yu`, `yu`, `Yo`, `yo`,
	}
	if len(digraphRules) != len(want) {
		t.Fatalf("digraph rules = %d, want %d", len(digraphRules), len(want))
	}
	for i, rule := range digraphRules {
		if got := rule.pattern.String(); got != want[i] {
			t.Fatalf("rule %d pattern = %q, want %q", i, got, want[i])
		}
	}
}

func TestPreserveCase(t *testing.T) {
	replace := preserveCase("нг", "НГ")
	tests := map[string]string{
		"NG": "НГ",
		"Ng": "Нг",
		"ng": "нг",
		"nG": "нг",
	}
	for match, want := range tests {
		if got := replace(match); got != want {
			t.Fatalf("preserveCase(%q) = %q, want %q", match, got, want)
		}
	}
}

func TestCopyMatchesWholeInput(t *testing.T) {
	input := "Tender tahlili\nO'zbekiston Respublikasi\r\nma'lumot"
	var out bytes.Buffer
	n, err := Copy(&out, strings.NewReader(input))
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	want := LatinToCyrillic(input)
	if out.String() != want {
		t.Fatalf("Copy output = %q, want %q", out.String(), want)
	}
	if n != int64(len(want)) {
		t.Fatalf("Copy wrote %d bytes, want %d", n, len(want))
	}
}

func TestLatinToCyrillicConcurrentUse(t *testing.T) {
	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := LatinToCyrillic("G'ofur o'g'li"); got != "Ғофур ўғли" {
					errs <- got
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Fatalf("concurrent LatinToCyrillic = %q", got)
	}
}
