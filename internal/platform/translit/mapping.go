package translit

import "regexp"

// letters maps single Uzbek Latin runes to Cyrillic runes. It is consulted
// only after every digraph rule has run.
var letters = map[rune]rune{
	'A': 'А', 'a': 'а',
	'B': 'Б', 'b': 'б',
	'D': 'Д', 'd': 'д',
	'E': 'Э', 'e': 'э',
	'F': 'Ф', 'f': 'ф',
	'G': 'Г', 'g': 'г',
	'H': 'Ҳ', 'h': 'ҳ',
	'I': 'И', 'i': 'и',
	'J': 'Ж', 'j': 'ж',
	'K': 'К', 'k': 'к',
	'L': 'Л', 'l': 'л',
	'M': 'М', 'm': 'м',
	'N': 'Н', 'n': 'н',
	'O': 'О', 'o': 'о',
	'P': 'П', 'p': 'п',
	'Q': 'Қ', 'q': 'қ',
	'R': 'Р', 'r': 'р',
	'S': 'С', 's': 'с',
	'T': 'Т', 't': 'т',
	'U': 'У', 'u': 'у',
	'V': 'В', 'v': 'в',
	'X': 'Х', 'x': 'х',
	'Y': 'Й', 'y': 'й',
	'Z': 'З', 'z': 'з',
}

// rule replaces every non-overlapping match of pattern.
type rule struct {
	pattern *regexp.Regexp
	replace func(match string) string
}

// digraphRules run in slice order. Each rule rewrites the whole string
// before the next one starts, so an earlier rule may consume a rune a later
// rule would have matched ("ng'" becomes "нғ", not "нг").
//
// Only the O'/G' rules go through preserveCase. The remaining rules are
// exact-case literals: "Sh" and "sh" match, "SH" does not.
var digraphRules = []rule{
	{regexp.MustCompile(`O['’]`), preserveCase("ў", "Ў")},
	{regexp.MustCompile(`o['’]`), literal("ў")},
	{regexp.MustCompile(`G['’]`), preserveCase("ғ", "Ғ")},
	{regexp.MustCompile(`g['’]`), literal("ғ")},
	{regexp.MustCompile(`Sh`), literal("Ш")},
	{regexp.MustCompile(`sh`), literal("ш")},
	{regexp.MustCompile(`Ch`), literal("Ч")},
	{regexp.MustCompile(`ch`), literal("ч")},
	{regexp.MustCompile(`Ng`), literal("Нг")},
	{regexp.MustCompile(`ng`), literal("нг")},
	{regexp.MustCompile(`Ya`), literal("Я")},
	{regexp.MustCompile(`ya`), literal("я")},
	{regexp.MustCompile(`Yu`), literal("Ю")},
	{regexp.MustCompile(`yu`), literal("ю")},
	{regexp.MustCompile(`Yo`), literal("Ё")},
	{regexp.MustCompile(`yo`), literal("ё")},
}

// isApostrophe reports whether r is one of the modifier marks used in o'/g'.
func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}
