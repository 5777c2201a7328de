package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"docpipe/internal/domain"
)

const (
	textSniffBytes     = 8 << 10
	maxBinaryByteRatio = 0.01
)

var (
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// looksBinary samples the head of data and reports whether more than 1% of
// it is NUL or non-whitespace control bytes.
func looksBinary(data []byte) bool {
	if bytes.HasPrefix(data, utf16LEBOM) || bytes.HasPrefix(data, utf16BEBOM) {
		return false
	}
	sample := data
	if len(sample) > textSniffBytes {
		sample = sample[:textSniffBytes]
	}
	if len(sample) == 0 {
		return false
	}

	suspicious := 0
	for _, b := range sample {
		switch {
		case b == '\t', b == '\n', b == '\r', b == '\f':
		case b < 0x20, b == 0x7F:
			suspicious++
		}
	}
	return float64(suspicious)/float64(len(sample)) > maxBinaryByteRatio
}

// decodeTextBytes converts data to UTF-8, honoring UTF-16 and UTF-8 byte
// order marks. Invalid sequences become U+FFFD.
func decodeTextBytes(data []byte) (string, string, error) {
	switch {
	case bytes.HasPrefix(data, utf16LEBOM):
		s, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		return string(s), "utf-16le", err
	case bytes.HasPrefix(data, utf16BEBOM):
		s, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		return string(s), "utf-16be", err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	return strings.ToValidUTF8(string(data), "\uFFFD"), "utf-8", nil
}

func readPlainText(data []byte) (string, string, error) {
	if looksBinary(data) {
		return "", "", fmt.Errorf("%w: binary content in text file", domain.ErrUnsupportedFormat)
	}
	text, encoding, err := decodeTextBytes(data)
	if err != nil {
		return "", "", fmt.Errorf("decode %s text: %w", encoding, err)
	}
	return text, encoding, nil
}

func (e *Extractor) decodeTXT(ctx context.Context, data []byte) (*decoded, error) {
	text, encoding, err := readPlainText(data)
	if err != nil {
		return nil, err
	}
	out := &decoded{text: text, pageCount: 1}
	out.meta.SetExtra("encoding", encoding)
	return out, ctx.Err()
}

func (e *Extractor) decodeCSV(ctx context.Context, data []byte) (*decoded, error) {
	text, encoding, err := readPlainText(data)
	if err != nil {
		return nil, err
	}
	out := &decoded{pageCount: 1}
	out.meta.SetExtra("encoding", encoding)

	lines, err := parseDelimited(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("CSV parse failed; using raw text", "error", err)
		out.meta.AddWarning(WarnCSVParseFailed)
		out.text = text
		return out, nil
	}
	out.meta.RowCount = len(lines)
	out.text = strings.Join(lines, "\n")
	return out, nil
}

// parseDelimited reads comma or tab separated records into " | " joined lines.
func parseDelimited(ctx context.Context, text string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	var lines []string
	for n := 0; ; n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := r.Read()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if line := joinCells(record); line != "" {
			lines = append(lines, line)
		}
	}
}

func sniffDelimiter(text string) rune {
	first := text
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	if strings.Count(first, "\t") > strings.Count(first, ",") {
		return '\t'
	}
	return ','
}
