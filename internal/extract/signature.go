package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"docpipe/internal/domain"
)

// PDF readers tolerate junk before the header; so do we, up to this offset.
const pdfHeaderWindow = 1024

// Parts larger than this are not read into memory.
const maxZipPartBytes = 64 << 20

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK\x03\x04")
	rtfMagic = []byte(`{\rtf`)
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// checkSignature fails fast when the leading bytes do not belong to f.
// Plain-text formats have no signature.
func checkSignature(f Format, data []byte) error {
	switch f {
	case FormatPDF:
		window := data
		if len(window) > pdfHeaderWindow {
			window = window[:pdfHeaderWindow]
		}
		if !bytes.Contains(window, pdfMagic) {
			return fmt.Errorf("%w: missing %%PDF header", domain.ErrCorruptSignature)
		}
	case FormatDOCX, FormatXLSX, FormatPPTX:
		if !bytes.HasPrefix(data, zipMagic) {
			return fmt.Errorf("%w: %s is not a ZIP container", domain.ErrCorruptSignature, f)
		}
	case FormatRTF:
		trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, utf8BOM), " \t\r\n")
		if !bytes.HasPrefix(trimmed, rtfMagic) {
			return fmt.Errorf("%w: missing {\\rtf header", domain.ErrCorruptSignature)
		}
	}
	return nil
}

// officeMainParts is the part every well-formed container of the format holds.
var officeMainParts = map[Format]string{
	FormatDOCX: "word/document.xml",
	FormatXLSX: "xl/workbook.xml",
	FormatPPTX: "ppt/presentation.xml",
}

// openOfficeZip validates the signature and container structure of an OOXML file.
func openOfficeZip(f Format, data []byte) (*zip.Reader, error) {
	if err := checkSignature(f, data); err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable ZIP container: %v", domain.ErrCorruptSignature, err)
	}
	if main := officeMainParts[f]; main != "" && findZipFile(zr, main) == nil {
		return nil, fmt.Errorf("%w: %s container has no %s", domain.ErrCorruptSignature, f, main)
	}
	return zr, nil
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	// Try exact match first.
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	// Then case-insensitive match.
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

func openZipFile(zr *zip.Reader, name string) (io.ReadCloser, error) {
	f := findZipFile(zr, name)
	if f == nil {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	if f.UncompressedSize64 > maxZipPartBytes {
		return nil, fmt.Errorf("%s is too large (%d bytes)", name, f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(rc, maxZipPartBytes), rc}, nil
}
