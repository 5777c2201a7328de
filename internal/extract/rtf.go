package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Groups whose content is never body text.
var rtfSkippedDestinations = []string{
	"fonttbl", "colortbl", "stylesheet", "info", "pict", "object", "header",
	"footer", "headerl", "headerr", "footerl", "footerr", "listtable",
	"listoverridetable", "rsidtbl", "generator", "themedata", "datastore",
	"latentstyles", "xmlnstbl", "mmathPr",
}

var (
	rtfControlNewline = regexp.MustCompile(`(\\[a-zA-Z]+-?\d*)\r?\n`)
	rtfHexEscape      = regexp.MustCompile(`\\'([0-9a-fA-F]{2})`)
	rtfUnicodeEscape  = regexp.MustCompile(`\\u(-?\d+) ?(\\'[0-9a-fA-F]{2}|\?)?`)
	rtfParagraph      = regexp.MustCompile(`\\(par|line|sect|page|row)\b ?`)
	rtfCell           = regexp.MustCompile(`\\cell\b ?`)
	rtfTab            = regexp.MustCompile(`\\tab\b ?`)
	rtfControlWord    = regexp.MustCompile(`\\[a-zA-Z]+-?\d* ?`)
	rtfControlSymbol  = regexp.MustCompile(`\\[^a-zA-Z0-9]`)
	rtfInfoField      = regexp.MustCompile(`\{\\(title|author)\s+([^{}]*)\}`)
)

func (e *Extractor) decodeRTF(ctx context.Context, data []byte) (*decoded, error) {
	if err := checkSignature(FormatRTF, data); err != nil {
		return nil, err
	}

	src := string(data)
	out := &decoded{pageCount: 1}
	for _, m := range rtfInfoField.FindAllStringSubmatch(src, -1) {
		value := strings.TrimSpace(m[2])
		switch m[1] {
		case "title":
			out.title = value
		case "author":
			out.author = value
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out.text = rtfToText(src)
	return out, nil
}

// Escaped literals are parked on private-use runes until the structural
// braces and control words are gone.
const (
	rtfBackslash  = "\uE000"
	rtfOpenBrace  = "\uE001"
	rtfCloseBrace = "\uE002"
)

var rtfLiteralProtector = strings.NewReplacer(`\`, rtfBackslash, "{", rtfOpenBrace, "}", rtfCloseBrace)

func protectRTFLiteral(s string) string {
	return rtfLiteralProtector.Replace(s)
}

// rtfToText is a best-effort RTF stripper: destinations are dropped, escapes
// decoded, and every other control word removed.
func rtfToText(src string) string {
	s := rtfControlNewline.ReplaceAllString(src, "$1 ")
	s = strings.NewReplacer("\r\n", "", "\n", "", "\r", "").Replace(s)
	s = stripRTFGroups(s)

	s = strings.NewReplacer(`\\`, rtfBackslash, `\{`, rtfOpenBrace, `\}`, rtfCloseBrace).Replace(s)

	s = rtfUnicodeEscape.ReplaceAllStringFunc(s, func(m string) string {
		sub := rtfUnicodeEscape.FindStringSubmatch(m)
		n, err := strconv.Atoi(sub[1])
		if err != nil {
			return ""
		}
		if n < 0 {
			n += 65536
		}
		return protectRTFLiteral(string(rune(n)))
	})
	s = rtfHexEscape.ReplaceAllStringFunc(s, func(m string) string {
		b, err := strconv.ParseUint(m[2:], 16, 8)
		if err != nil {
			return ""
		}
		decodedByte, err := charmap.Windows1252.NewDecoder().Bytes([]byte{byte(b)})
		if err != nil {
			return ""
		}
		return protectRTFLiteral(string(decodedByte))
	})

	s = rtfParagraph.ReplaceAllString(s, "\n")
	s = rtfCell.ReplaceAllString(s, " | ")
	s = rtfTab.ReplaceAllString(s, "\t")
	s = strings.ReplaceAll(s, `\~`, " ")
	s = rtfControlWord.ReplaceAllString(s, "")
	s = rtfControlSymbol.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\\", "")
	s = strings.NewReplacer("{", "", "}", "").Replace(s)

	return strings.NewReplacer(rtfBackslash, `\`, rtfOpenBrace, "{", rtfCloseBrace, "}").Replace(s)
}

// stripRTFGroups removes {\*...} destinations and known non-text groups,
// matching braces by depth and honoring escaped braces.
func stripRTFGroups(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] == '\\' && i+1 < len(s) {
			sb.WriteString(s[i : i+2])
			i += 2
			continue
		}
		if s[i] == '{' && isSkippedGroup(s[i+1:]) {
			i = skipGroup(s, i)
			continue
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}

func isSkippedGroup(rest string) bool {
	rest = strings.TrimLeft(rest, " ")
	if strings.HasPrefix(rest, `\*`) {
		return true
	}
	if !strings.HasPrefix(rest, `\`) {
		return false
	}
	word := rest[1:]
	end := 0
	for end < len(word) && (word[end] >= 'a' && word[end] <= 'z' || word[end] >= 'A' && word[end] <= 'Z') {
		end++
	}
	word = word[:end]
	for _, d := range rtfSkippedDestinations {
		if word == d {
			return true
		}
	}
	return false
}

// skipGroup returns the index just past the group opened at s[start].
func skipGroup(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(s)
}
