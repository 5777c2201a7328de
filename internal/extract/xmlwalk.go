package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

const (
	DefaultMaxXMLDepth = 64
	DefaultMaxXMLNodes = 200000
)

var errXMLBudget = errors.New("xml budget exceeded")

type xmlLimits struct {
	maxDepth int
	maxNodes int
}

// walkXML streams tokens to visit without building a tree. Element depth
// and element count are bounded; crossing either bound stops the walk with
// errXMLBudget after everything seen so far has been visited.
func walkXML(r io.Reader, lim xmlLimits, visit func(tok xml.Token)) error {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	depth, nodes := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			nodes++
			if lim.maxDepth > 0 && depth > lim.maxDepth {
				return fmt.Errorf("%w: depth %d", errXMLBudget, depth)
			}
			if lim.maxNodes > 0 && nodes > lim.maxNodes {
				return fmt.Errorf("%w: more than %d elements", errXMLBudget, lim.maxNodes)
			}
			visit(t)
		case xml.EndElement:
			visit(t)
			if depth > 0 {
				depth--
			}
		case xml.CharData:
			visit(t)
		}
	}
}

func attrValue(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// readCoreProperties pulls title and creator from docProps/core.xml.
func readCoreProperties(r io.Reader, lim xmlLimits) (title, author string) {
	var current string
	var buf []byte
	_ = walkXML(r, lim, func(tok xml.Token) {
		switch t := tok.(type) {
		case xml.StartElement:
			current = t.Name.Local
			buf = buf[:0]
		case xml.CharData:
			if current != "" {
				buf = append(buf, t...)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "title":
				if title == "" {
					title = string(buf)
				}
			case "creator":
				if author == "" {
					author = string(buf)
				}
			}
			current = ""
		}
	})
	return title, author
}
