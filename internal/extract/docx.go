package extract

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// docxWriter accumulates WordprocessingML text. Paragraphs outside tables
// become blocks separated by blank lines; table rows become single lines
// with cells joined by " | ".
type docxWriter struct {
	blocks     []string
	para       strings.Builder
	cell       strings.Builder
	row        []string
	table      []string
	tableDepth int
	inText     bool
	paragraphs int
}

func (w *docxWriter) target() *strings.Builder {
	if w.tableDepth > 0 {
		return &w.cell
	}
	return &w.para
}

func (w *docxWriter) visit(tok xml.Token) {
	switch t := tok.(type) {
	case xml.StartElement:
		switch t.Name.Local {
		case "t":
			w.inText = true
		case "tab":
			w.target().WriteByte('\t')
		case "br", "cr":
			if w.tableDepth > 0 {
				w.cell.WriteByte(' ')
			} else {
				w.para.WriteByte('\n')
			}
		case "tbl":
			w.flushParagraph()
			w.tableDepth++
		case "tr":
			w.row = w.row[:0]
		case "tc":
			w.cell.Reset()
		}
	case xml.CharData:
		if w.inText {
			w.target().Write(t)
		}
	case xml.EndElement:
		switch t.Name.Local {
		case "t":
			w.inText = false
		case "p":
			if w.tableDepth > 0 {
				w.cell.WriteByte(' ')
			} else {
				w.flushParagraph()
			}
		case "tc":
			w.row = append(w.row, strings.TrimSpace(w.cell.String()))
			w.cell.Reset()
		case "tr":
			if line := joinCells(w.row); line != "" {
				w.table = append(w.table, line)
			}
		case "tbl":
			w.tableDepth--
			if w.tableDepth <= 0 {
				w.tableDepth = 0
				if len(w.table) > 0 {
					w.blocks = append(w.blocks, strings.Join(w.table, "\n"))
				}
				w.table = w.table[:0]
			}
		}
	}
}

func (w *docxWriter) flushParagraph() {
	text := strings.TrimSpace(w.para.String())
	w.para.Reset()
	if text == "" {
		return
	}
	w.paragraphs++
	w.blocks = append(w.blocks, text)
}

func (w *docxWriter) text() string {
	w.flushParagraph()
	return strings.Join(w.blocks, "\n\n")
}

func (e *Extractor) decodeDOCX(ctx context.Context, data []byte) (*decoded, error) {
	zr, err := openOfficeZip(FormatDOCX, data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &decoded{}
	if rc, err := openZipFile(zr, "docProps/core.xml"); err == nil {
		out.title, out.author = readCoreProperties(rc, e.xmlLimits())
		rc.Close()
	}

	rc, err := openZipFile(zr, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("read document part: %w", err)
	}
	defer rc.Close()

	w := &docxWriter{}
	if err := walkXML(rc, e.xmlLimits(), w.visit); err != nil {
		if !errors.Is(err, errXMLBudget) {
			return nil, err
		}
		e.logger.Warn("DOCX body exceeded XML budget; keeping partial text", "error", err)
		out.meta.AddWarning(WarnXMLBudgetExceeded)
	}

	out.text = w.text()
	out.pageCount = w.paragraphs
	return out, nil
}

// joinCells joins row cells with " | ", dropping trailing empty cells.
func joinCells(cells []string) string {
	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}
	if end == 0 {
		return ""
	}
	return strings.Join(cells[:end], " | ")
}
