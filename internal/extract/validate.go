package extract

import (
	"fmt"
	"strings"

	"docpipe/internal/domain"
)

// Leading bytes that mean a container was passed through undecoded. ZIP is
// matched on its record headers so prose like "PKI overview" survives.
var leakedSignatures = []string{
	"PK\x03\x04",
	"PK\x05\x06",
	"PK\x07\x08",
	"%PDF",
	`{\rtf`,
	"\xD0\xCF\x11\xE0",
}

// zipContainer reports whether the format's decoder unpacks a ZIP archive.
// Output from those never legitimately starts with a bare "PK".
func zipContainer(f Format) bool {
	return f == FormatDOCX || f == FormatXLSX || f == FormatPPTX
}

func leakedSignature(format Format, s string) string {
	s = strings.TrimLeft(s, " \t\r\n\uFEFF")
	if zipContainer(format) && strings.HasPrefix(s, "PK") {
		return "PK"
	}
	for _, sig := range leakedSignatures {
		if strings.HasPrefix(s, sig) {
			return sig
		}
	}
	return ""
}

// validateText is the last check before text leaves the extractor. raw is
// the decoder output, text its normalized form. Any failure here is a
// decoder defect, never a property of the upload.
func validateText(format Format, raw, text string) error {
	if sig := leakedSignature(format, raw); sig != "" {
		return fmt.Errorf("%w: decoder output starts with %q", domain.ErrBinaryLeakage, sig)
	}
	if sig := leakedSignature(format, text); sig != "" {
		return fmt.Errorf("%w: text starts with %q", domain.ErrBinaryLeakage, sig)
	}
	for i := 0; i < len(text); i++ {
		b := text[i]
		if b == '\t' || b == '\n' {
			continue
		}
		if b < 0x20 {
			return fmt.Errorf("%w: control byte 0x%02x at offset %d", domain.ErrBinaryLeakage, b, i)
		}
	}
	return nil
}
