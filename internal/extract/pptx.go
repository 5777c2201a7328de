package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePartPattern = regexp.MustCompile(`(?i)^ppt/slides/slide(\d+)\.xml$`)

type slidePart struct {
	number int
	name   string
}

// listSlides returns the slide parts ordered by slide number, not by name.
func listSlides(zr *zip.Reader) []slidePart {
	var slides []slidePart
	for _, f := range zr.File {
		m := slidePartPattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slidePart{number: n, name: f.Name})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })
	return slides
}

// drawingText collects DrawingML paragraphs. Field runs (slide numbers,
// dates) are skipped.
type drawingText struct {
	paragraphs []string
	current    strings.Builder
	inText     bool
	fieldDepth int
}

func (d *drawingText) visit(tok xml.Token) {
	switch t := tok.(type) {
	case xml.StartElement:
		switch t.Name.Local {
		case "t":
			d.inText = true
		case "fld":
			d.fieldDepth++
		case "br":
			d.current.WriteByte(' ')
		}
	case xml.CharData:
		if d.inText && d.fieldDepth == 0 {
			d.current.Write(t)
		}
	case xml.EndElement:
		switch t.Name.Local {
		case "t":
			d.inText = false
		case "fld":
			if d.fieldDepth > 0 {
				d.fieldDepth--
			}
		case "p":
			if text := strings.TrimSpace(d.current.String()); text != "" {
				d.paragraphs = append(d.paragraphs, text)
			}
			d.current.Reset()
		}
	}
}

// readDrawingPart extracts paragraphs from one slide or notes part. A budget
// overrun keeps what was read and reports it through the returned flag.
func (e *Extractor) readDrawingPart(zr *zip.Reader, name string) (paragraphs []string, overBudget bool, err error) {
	rc, err := openZipFile(zr, name)
	if err != nil {
		return nil, false, err
	}
	defer rc.Close()

	d := &drawingText{}
	if err := walkXML(rc, e.xmlLimits(), d.visit); err != nil {
		if !errors.Is(err, errXMLBudget) {
			return nil, false, err
		}
		e.logger.Warn("Slide part exceeded XML budget; keeping partial text", "part", name, "error", err)
		overBudget = true
	}
	if text := strings.TrimSpace(d.current.String()); text != "" {
		d.paragraphs = append(d.paragraphs, text)
	}
	return d.paragraphs, overBudget, nil
}

func (e *Extractor) decodePPTX(ctx context.Context, data []byte) (*decoded, error) {
	zr, err := openOfficeZip(FormatPPTX, data)
	if err != nil {
		return nil, err
	}

	out := &decoded{}
	if rc, err := openZipFile(zr, "docProps/core.xml"); err == nil {
		out.title, out.author = readCoreProperties(rc, e.xmlLimits())
		rc.Close()
	}

	slides := listSlides(zr)
	blocks := make([]string, 0, len(slides))
	for i, slide := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		position := i + 1

		paragraphs, overBudget, err := e.readDrawingPart(zr, slide.name)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", slide.number, err)
		}
		if overBudget {
			out.meta.AddWarning(WarnXMLBudgetExceeded)
		}

		notesName := fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", slide.number)
		var notes []string
		if findZipFile(zr, notesName) != nil {
			notes, overBudget, err = e.readDrawingPart(zr, notesName)
			if err != nil {
				e.logger.Warn("Skipping unreadable speaker notes", "slide", slide.number, "error", err)
				notes = nil
			}
			if overBudget {
				out.meta.AddWarning(WarnXMLBudgetExceeded)
			}
		}

		title := ""
		if len(paragraphs) > 0 {
			title = paragraphs[0]
		}
		out.meta.SlideTitles = append(out.meta.SlideTitles, title)

		var sb strings.Builder
		fmt.Fprintf(&sb, "## Slide %d", position)
		if len(paragraphs) > 0 {
			sb.WriteByte('\n')
			sb.WriteString(strings.Join(paragraphs, "\n"))
		}
		if len(notes) > 0 {
			sb.WriteString("\n\nNotes: ")
			sb.WriteString(strings.Join(notes, " "))
		}
		blocks = append(blocks, sb.String())
	}

	out.text = strings.Join(blocks, "\n\n")
	out.pageCount = len(slides)
	return out, nil
}
