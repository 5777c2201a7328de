package chunk

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var sectionBreak = regexp.MustCompile(`\n[ \t]*\n\s*`)

// splitSections splits on blank lines and drops empty sections.
func splitSections(text string) []string {
	parts := sectionBreak.Split(text, -1)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// segment is a piece of text plus the whitespace that separated it from
// the previous piece.
type segment struct {
	text string
	sep  string
}

// Tuned for English. Compared lowercased, without the trailing period.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "sr": true, "jr": true, "st": true,
	"vs": true, "etc": true, "e.g": true, "i.e": true, "cf": true, "al": true, "approx": true,
	"inc": true, "ltd": true, "co": true, "corp": true, "dept": true, "est": true,
	"no": true, "fig": true, "figs": true, "vol": true, "p": true, "pp": true, "ch": true, "sec": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true, "jul": true, "aug": true,
	"sep": true, "sept": true, "oct": true, "nov": true, "dec": true,
	"u.s": true, "u.k": true, "a.m": true, "p.m": true, "ph.d": true, "gen": true, "gov": true, "rev": true,
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '\u2026'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '}', '\u2019', '\u201D', '\u00BB':
		return true
	}
	return false
}

// isAbbreviation reports whether the word ending at the period s[:end] is a
// known abbreviation or a single-letter initial.
func isAbbreviation(s string, end int) bool {
	start := strings.LastIndexAny(s[:end], " \t\n(\"'")
	word := strings.ToLower(s[start+1 : end])
	if word == "" {
		return false
	}
	if abbreviations[word] {
		return true
	}
	r, size := utf8.DecodeRuneInString(word)
	return size == len(word) && unicode.IsLetter(r)
}

// splitSentences is an approximate sentence splitter. Terminal punctuation
// followed by whitespace ends a sentence unless it closes an abbreviation;
// line breaks always end one.
func splitSentences(text string) []segment {
	var out []segment
	sep := ""
	start := 0

	emit := func(end int) {
		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			out = append(out, segment{text: piece, sep: sep})
		}
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case r == '\n':
			emit(i)
			start, sep = skipSpace(text, i)
			i = start
			continue
		case isSentenceEnd(r):
			j := i + size
			for j < len(text) {
				c, n := utf8.DecodeRuneInString(text[j:])
				if !isCloser(c) && !isSentenceEnd(c) {
					break
				}
				j += n
			}
			if j < len(text) {
				next, _ := utf8.DecodeRuneInString(text[j:])
				if !unicode.IsSpace(next) {
					i = j
					continue
				}
			}
			if r == '.' && isAbbreviation(text, i) {
				i = j
				continue
			}
			emit(j)
			start, sep = skipSpace(text, j)
			i = start
			continue
		}
		i += size
	}
	emit(len(text))
	return out
}

// skipSpace returns the first non-space index at or after i and the
// separator the skipped run represents.
func skipSpace(text string, i int) (int, string) {
	sep := " "
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		if r == '\n' {
			sep = "\n"
		}
		i += size
	}
	return i, sep
}

// splitClauses cuts a sentence after , ; and : and then breaks any clause
// longer than maxChars runes at word boundaries.
func splitClauses(sentence string, maxChars int) []string {
	var clauses []string
	start := 0
	for i := 0; i < len(sentence); i++ {
		switch sentence[i] {
		case ',', ';', ':':
			if i+1 < len(sentence) && (sentence[i+1] == ' ' || sentence[i+1] == '\t') {
				clauses = append(clauses, sentence[start:i+1])
				start = i + 1
			}
		}
	}
	clauses = append(clauses, sentence[start:])

	out := make([]string, 0, len(clauses))
	for _, c := range clauses {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		out = append(out, capWords(c, maxChars)...)
	}
	return out
}

// capWords packs words into pieces of at most maxChars runes. A single word
// longer than maxChars stays whole.
func capWords(s string, maxChars int) []string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return []string{s}
	}
	var out []string
	var cur strings.Builder
	curLen := 0
	for _, w := range strings.Fields(s) {
		wl := utf8.RuneCountInString(w)
		if curLen > 0 && curLen+1+wl > maxChars {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += wl
	}
	if curLen > 0 {
		out = append(out, cur.String())
	}
	return out
}

// runeOffset returns the byte offset n runes after start, clamped to len(s).
func runeOffset(s string, start, n int) int {
	i := start
	for n > 0 && i < len(s) {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n--
	}
	return i
}

// snapToSpace moves end back to the last whitespace after start, if any.
func snapToSpace(s string, start, end int) int {
	if end >= len(s) {
		return len(s)
	}
	for i := end; i > start; {
		r, size := utf8.DecodeLastRuneInString(s[:i])
		if unicode.IsSpace(r) {
			if i-size > start {
				return i - size
			}
			break
		}
		i -= size
	}
	return end
}
