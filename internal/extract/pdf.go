package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"
)

// PDFDocument is the slice of a PDF engine the extractor needs.
type PDFDocument interface {
	NumPage() int
	Text(pageNumber int) (string, error)
	Metadata() map[string]string
	Close() error
}

// PDFOpener opens a PDF held in memory.
type PDFOpener func(data []byte) (PDFDocument, error)

// OpenFitz opens data with MuPDF.
func OpenFitz(data []byte) (PDFDocument, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func scannedPDFPlaceholder(pages int) string {
	return fmt.Sprintf("[This PDF contains %d pages but no extractable text. It may be a scanned or image-only document.]", pages)
}

func (e *Extractor) decodePDF(ctx context.Context, data []byte) (*decoded, error) {
	if err := checkSignature(FormatPDF, data); err != nil {
		return nil, err
	}

	doc, err := e.openPDF(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	out := &decoded{pageCount: doc.NumPage()}
	docMetadata := doc.Metadata()
	out.title = docMetadata["title"]
	out.author = docMetadata["author"]
	out.meta.SetExtra("producer", docMetadata["producer"])
	out.meta.SetExtra("creator", docMetadata["creator"])

	limit := out.pageCount
	if limit > e.cfg.PDFMaxPages {
		limit = e.cfg.PDFMaxPages
		out.meta.AddWarning(WarnPageCapReached)
		e.logger.Warn("PDF page cap reached", "pages", out.pageCount, "cap", e.cfg.PDFMaxPages)
	}

	pages := make([]string, 0, limit)
	for pageNum := 0; pageNum < limit; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := doc.Text(pageNum)
		if err != nil {
			e.logger.Warn("Failed to extract text from page", "page_num", pageNum+1, "total", out.pageCount, "error", err)
			out.meta.AddWarning(WarnPageUnreadable)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		out.meta.PagesWithText++
		pages = append(pages, text)
	}
	out.text = strings.Join(pages, "\n\n")

	// Nearly image-only documents are valid input; describe them instead of failing.
	if out.pageCount > 0 && utf8.RuneCountInString(strings.TrimSpace(out.text)) < MinPDFTextLength {
		out.text = scannedPDFPlaceholder(out.pageCount)
		out.meta.AddWarning(WarnNoExtractableText)
	}
	return out, nil
}

// cleanMetaValue trims document properties and drops ones holding control bytes.
func cleanMetaValue(v string) string {
	v = strings.TrimSpace(v)
	if !utf8.ValidString(v) {
		return ""
	}
	for _, r := range v {
		if r < 0x20 {
			return ""
		}
	}
	return v
}
