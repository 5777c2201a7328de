package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

func (e *Extractor) decodeXLSX(ctx context.Context, data []byte) (*decoded, error) {
	if _, err := openOfficeZip(FormatXLSX, data); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	out := &decoded{}
	if props, err := f.GetDocProps(); err == nil && props != nil {
		out.title = props.Title
		out.author = props.Creator
	}

	sheets := f.GetSheetList()
	if len(sheets) > e.cfg.XLSXMaxSheets {
		e.logger.Warn("Workbook sheet cap reached", "sheets", len(sheets), "cap", e.cfg.XLSXMaxSheets)
		out.meta.AddWarning(WarnSheetCapReached)
		sheets = sheets[:e.cfg.XLSXMaxSheets]
	}

	blocks := make([]string, 0, len(sheets))
	for _, name := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines, capped, err := e.readSheet(f, name)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		if capped {
			out.meta.AddWarning(WarnRowCapReached)
		}
		out.meta.SheetNames = append(out.meta.SheetNames, name)
		out.meta.RowCount += len(lines)

		var sb strings.Builder
		sb.WriteString("## Sheet: ")
		sb.WriteString(name)
		if len(lines) > 0 {
			sb.WriteByte('\n')
			sb.WriteString(strings.Join(lines, "\n"))
		}
		blocks = append(blocks, sb.String())
	}

	out.text = strings.Join(blocks, "\n\n")
	out.pageCount = len(out.meta.SheetNames)
	return out, nil
}

// readSheet streams one worksheet, skipping blank rows. capped reports
// whether rows were left unread because of XLSXMaxRows.
func (e *Extractor) readSheet(f *excelize.File, sheet string) (lines []string, capped bool, err error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	for rows.Next() {
		if len(lines) >= e.cfg.XLSXMaxRows {
			capped = true
			break
		}
		cols, err := rows.Columns()
		if err != nil {
			return lines, capped, err
		}
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		if line := joinCells(cols); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, capped, rows.Error()
}
