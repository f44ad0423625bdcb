// Package convert turns uploaded OOXML documents into PDF (via an external
// office suite) and HTML (by reading the package XML directly).
package convert

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DocxRun is a span of text with uniform character formatting.
type DocxRun struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
}

// DocxParagraph is a top-level body paragraph. Paragraphs inside table
// cells are captured by the table, not here.
type DocxParagraph struct {
	Style     string
	Alignment string
	Runs      []DocxRun
}

func (p *DocxParagraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// DocxTable holds the plain text of each cell, row by row.
type DocxTable struct {
	Rows [][]string
}

// DocxDocument is the parsed body of a .docx file.
type DocxDocument struct {
	Paragraphs []DocxParagraph
	Tables     []DocxTable
}

// ParseDocx reads word/document.xml out of the zip package and extracts
// paragraphs and tables.
func ParseDocx(r io.ReaderAt, size int64) (*DocxDocument, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("not a valid docx package: %w", err)
	}

	f, err := openZipFile(zr, "word/document.xml")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseDocxBody(f)
}

func openZipFile(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("missing %s in package", name)
}

func parseDocxBody(r io.Reader) (*DocxDocument, error) {
	doc := &DocxDocument{}
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed document.xml: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "p":
			p, err := parseDocxParagraph(dec, se)
			if err != nil {
				return nil, err
			}
			doc.Paragraphs = append(doc.Paragraphs, *p)
		case "tbl":
			t, err := parseDocxTable(dec, se)
			if err != nil {
				return nil, err
			}
			doc.Tables = append(doc.Tables, *t)
		}
	}
	return doc, nil
}

func parseDocxParagraph(dec *xml.Decoder, start xml.StartElement) (*DocxParagraph, error) {
	p := &DocxParagraph{}
	var run *DocxRun

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("malformed document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pStyle":
				p.Style = normalizeStyle(attrVal(t, "val"))
			case "jc":
				p.Alignment = normalizeAlignment(attrVal(t, "val"))
			case "r":
				run = &DocxRun{}
			case "b":
				if run != nil && !isOffToggle(t) {
					run.Bold = true
				}
			case "i":
				if run != nil && !isOffToggle(t) {
					run.Italic = true
				}
			case "u":
				if run != nil && attrVal(t, "val") != "none" {
					run.Underline = true
				}
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return nil, fmt.Errorf("malformed document.xml: %w", err)
				}
				if run != nil {
					run.Text += text
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				if run != nil && run.Text != "" {
					p.Runs = append(p.Runs, *run)
				}
				run = nil
			case start.Name.Local:
				if t.Name == start.Name {
					return p, nil
				}
			}
		}
	}
}

func parseDocxTable(dec *xml.Decoder, start xml.StartElement) (*DocxTable, error) {
	table := &DocxTable{}
	var row []string
	var cell *strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("malformed document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tr":
				row = nil
			case "tc":
				cell = &strings.Builder{}
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return nil, fmt.Errorf("malformed document.xml: %w", err)
				}
				if cell != nil {
					cell.WriteString(text)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tc":
				if cell != nil {
					row = append(row, cell.String())
				}
				cell = nil
			case "tr":
				table.Rows = append(table.Rows, row)
				row = nil
			case start.Name.Local:
				if t.Name == start.Name {
					return table, nil
				}
			}
		}
	}
}

// isOffToggle reports whether a boolean run property is explicitly turned
// off, as in <w:b w:val="0"/>.
func isOffToggle(se xml.StartElement) bool {
	v := attrVal(se, "val")
	return v == "0" || v == "false" || v == "none"
}

func attrVal(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// normalizeStyle folds style identifiers like "Heading1" and names like
// "heading 1" to a single lowercase no-space form.
func normalizeStyle(style string) string {
	return strings.ReplaceAll(strings.ToLower(style), " ", "")
}

func normalizeAlignment(val string) string {
	switch val {
	case "center":
		return "center"
	case "right", "end":
		return "right"
	case "both", "justify", "distribute":
		return "justify"
	}
	return ""
}
