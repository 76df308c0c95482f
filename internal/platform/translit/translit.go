// Package translit converts Uzbek text from the Latin alphabet to Cyrillic.
//
// Conversion runs in three ordered passes:
//   - digraph rules (o', g', sh, ch, ng, ya, yu, yo and their title-case forms)
//   - single-letter mapping
//   - removal of leftover apostrophes (' and ’)
//
// Characters outside the Uzbek Latin alphabet (digits, punctuation, Cyrillic,
// c, w) pass through unchanged, including invalid UTF-8 bytes. The result is a
// fixed point: converting it again yields the same string.
//
// All functions are safe for concurrent use by multiple goroutines.
package translit

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LatinToCyrillic converts Uzbek Latin text to Cyrillic script.
//
// The empty string is returned unchanged. Digraph rules are case-sensitive
// literals, so all-caps "SH" converts letter by letter to "СҲ".
func LatinToCyrillic(s string) string {
	if s == "" {
		return s
	}

	out := s
	for _, r := range digraphRules {
		out = r.pattern.ReplaceAllStringFunc(out, r.replace)
	}
	out = mapLetters(out)
	// Dropping an apostrophe between stray bytes can join them into a new ’.
	for strings.ContainsRune(out, '’') {
		out = mapLetters(out)
	}
	return out
}

// mapLetters applies the single-letter table and drops orphan apostrophes in
// one scan. Apostrophes have no letter mapping, so merging the two passes
// does not change the result.
func mapLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			b.WriteByte(s[i])
		case isApostrophe(r):
		default:
			if cyr, ok := letters[r]; ok {
				b.WriteRune(cyr)
			} else {
				b.WriteString(s[i : i+size])
			}
		}
		i += size
	}

	return b.String()
}

// Copy transliterates r into w line by line and returns the number of bytes
// written. Digraphs never span a line break, so the output equals
// LatinToCyrillic applied to the whole input.
func Copy(w io.Writer, r io.Reader) (int64, error) {
	br := bufio.NewReader(r)
	var written int64
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			n, werr := io.WriteString(w, LatinToCyrillic(line))
			written += int64(n)
			if werr != nil {
				return written, werr
			}
		}
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}

// preserveCase returns a replacement that mirrors the case pattern of the
// match: all upper gives upper, a leading capital gives title case, anything
// else gives lower.
func preserveCase(lower, upper string) func(string) string {
	return func(match string) string {
		if match == strings.ToUpper(match) {
			return upper
		}
		first, _ := utf8.DecodeRuneInString(match)
		if first == unicode.ToUpper(first) {
			head, size := utf8.DecodeRuneInString(upper)
			return string(head) + strings.ToLower(upper[size:])
		}
		return lower
	}
}

func literal(value string) func(string) string {
	return func(string) string { return value }
}
