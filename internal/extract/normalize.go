package extract

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// normalizeText brings decoder output into the canonical text shape: NFC,
// "\n" line endings, no control characters, single spaces, at most one
// blank line in a row. Text longer than maxRunes is cut and marked.
func normalizeText(s string, maxRunes int) (text string, truncated bool, originalLen int) {
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			sb.WriteRune(r)
		case r == '\t', r == ' ', r == '\u00A0', r == '\u2007', r == '\u202F':
			sb.WriteByte(' ')
		case r == '\uFEFF', r == '\u200B':
			// zero-width: drop
		case unicode.IsControl(r):
			// drop
		default:
			sb.WriteRune(r)
		}
	}

	lines := strings.Split(sb.String(), "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = collapseSpaces(line)
		if line == "" {
			blank++
			if blank <= 1 {
				out = append(out, "")
			}
			continue
		}
		blank = 0
		out = append(out, line)
	}
	text = strings.TrimSpace(strings.Join(out, "\n"))

	originalLen = utf8.RuneCountInString(text)
	if maxRunes > 0 && originalLen > maxRunes {
		text = truncateRunes(text, maxRunes) + truncationMarker(originalLen)
		truncated = true
	}
	return text, truncated, originalLen
}

func truncationMarker(originalLen int) string {
	return fmt.Sprintf("\n\n[Content truncated: original length %d characters]", originalLen)
}

// collapseSpaces trims a line and squeezes runs of spaces to one.
func collapseSpaces(line string) string {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "  ") {
		return line
	}
	var sb strings.Builder
	sb.Grow(len(line))
	prevSpace := false
	for _, r := range line {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return strings.TrimRight(s[:i], " \n")
		}
		count++
	}
	return s
}
