package convert

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// PptxParagraph is one text paragraph inside a shape. Level comes from the
// outline indent level; anything above zero renders as a bullet.
type PptxParagraph struct {
	Text  string
	Level int
}

// PptxTable holds the plain text of each cell, row by row.
type PptxTable struct {
	Rows [][]string
}

// PptxBlock is one unit of slide content in document order: either a
// paragraph or a table, never both.
type PptxBlock struct {
	Paragraph *PptxParagraph
	Table     *PptxTable
}

// PptxSlide is a single slide with its title text pulled out of the title
// placeholder.
type PptxSlide struct {
	Number int
	Title  string
	Blocks []PptxBlock
}

// PptxPresentation is the parsed slide deck.
type PptxPresentation struct {
	Slides []PptxSlide
}

var slidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// ParsePptx reads every ppt/slides/slideN.xml out of the zip package, in
// numeric slide order.
func ParsePptx(r io.ReaderAt, size int64) (*PptxPresentation, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("not a valid pptx package: %w", err)
	}

	type slideFile struct {
		num  int
		file *zip.File
	}
	var files []slideFile
	for _, f := range zr.File {
		m := slidePattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		files = append(files, slideFile{num: n, file: f})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].num < files[j].num })

	prs := &PptxPresentation{}
	for i, sf := range files {
		rc, err := sf.file.Open()
		if err != nil {
			return nil, fmt.Errorf("open slide %d: %w", sf.num, err)
		}
		slide, err := parseSlide(rc, i+1)
		rc.Close()
		if err != nil {
			return nil, err
		}
		prs.Slides = append(prs.Slides, *slide)
	}
	return prs, nil
}

func parseSlide(r io.Reader, number int) (*PptxSlide, error) {
	slide := &PptxSlide{Number: number}
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed slide xml: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "sp":
			if err := parseShape(dec, se, slide); err != nil {
				return nil, err
			}
		case "tbl":
			t, err := parsePptxTable(dec, se)
			if err != nil {
				return nil, err
			}
			slide.Blocks = append(slide.Blocks, PptxBlock{Table: t})
		}
	}
	return slide, nil
}

// parseShape walks one p:sp element. The first paragraph of a title
// placeholder becomes the slide title; everything else is content.
func parseShape(dec *xml.Decoder, start xml.StartElement, slide *PptxSlide) error {
	isTitle := false
	var para *PptxParagraph
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("malformed slide xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "ph":
				switch attrVal(t, "type") {
				case "title", "ctrTitle":
					isTitle = true
				}
			case "p":
				para = &PptxParagraph{}
				text.Reset()
				if lvl := attrVal(t, "lvl"); lvl != "" {
					if n, err := strconv.Atoi(lvl); err == nil {
						para.Level = n
					}
				}
			case "pPr":
				if para != nil {
					if lvl := attrVal(t, "lvl"); lvl != "" {
						if n, err := strconv.Atoi(lvl); err == nil {
							para.Level = n
						}
					}
				}
			case "t":
				var s string
				if err := dec.DecodeElement(&s, &t); err != nil {
					return fmt.Errorf("malformed slide xml: %w", err)
				}
				text.WriteString(s)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if para != nil {
					para.Text = strings.TrimSpace(text.String())
					if para.Text != "" {
						if isTitle && slide.Title == "" {
							slide.Title = para.Text
						} else {
							slide.Blocks = append(slide.Blocks, PptxBlock{Paragraph: para})
						}
					}
				}
				para = nil
			case start.Name.Local:
				if t.Name == start.Name {
					return nil
				}
			}
		}
	}
}

func parsePptxTable(dec *xml.Decoder, start xml.StartElement) (*PptxTable, error) {
	table := &PptxTable{}
	var row []string
	var cell *strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("malformed slide xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tr":
				row = nil
			case "tc":
				cell = &strings.Builder{}
			case "t":
				var s string
				if err := dec.DecodeElement(&s, &t); err != nil {
					return nil, fmt.Errorf("malformed slide xml: %w", err)
				}
				if cell != nil {
					cell.WriteString(s)
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
