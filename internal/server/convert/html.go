package convert

import (
	"fmt"
	"html"
	"strings"
)

const docCSS = `<style>
    body { font-family: 'Calibri', sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; }
    h1 { font-size: 24pt; margin: 20px 0; }
    h2 { font-size: 18pt; margin: 16px 0; }
    h3 { font-size: 14pt; margin: 12px 0; }
    p { margin: 10px 0; line-height: 1.5; }
    .center { text-align: center; }
    .right { text-align: right; }
    .justify { text-align: justify; }
    .bold { font-weight: bold; }
    .italic { font-style: italic; }
    .underline { text-decoration: underline; }
    table { border-collapse: collapse; width: 100%; margin: 10px 0; }
    td, th { border: 1px solid #ddd; padding: 8px; }
    ul, ol { margin: 10px 0; padding-left: 30px; }
</style>`

const slideCSS = `<style>
    body { font-family: 'Calibri', sans-serif; max-width: 960px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
    .slide { background: white; margin: 20px 0; padding: 40px; box-shadow: 0 2px 8px rgba(0,0,0,0.1); min-height: 500px; position: relative; }
    .slide-number { position: absolute; bottom: 10px; right: 20px; color: #999; font-size: 12px; }
    .slide-title { font-size: 28pt; font-weight: bold; margin-bottom: 20px; color: #333; }
    .slide-content { font-size: 14pt; line-height: 1.6; }
    .slide-content ul { margin: 15px 0; padding-left: 30px; }
    .slide-content li { margin: 8px 0; }
    table { border-collapse: collapse; width: 100%; margin: 15px 0; }
    td, th { border: 1px solid #ddd; padding: 10px; text-align: left; }
    th { background: #f0f0f0; }
    .center { text-align: center; }
</style>`

func appendHTMLHead(parts []string, title string, css string) []string {
	parts = append(parts,
		"<!DOCTYPE html>",
		`<html lang="en">`,
		"<head>",
		`<meta charset="UTF-8">`,
		`<meta name="viewport" content="width=device-width, initial-scale=1.0">`,
		"<title>"+title+"</title>",
		css,
		"</head>",
		"<body>")
	return parts
}

// DocxHTML renders a parsed document as a standalone HTML page. Paragraphs
// come first, then every table.
func DocxHTML(doc *DocxDocument) string {
	var parts []string
	parts = appendHTMLHead(parts, "Converted Document", docCSS)

	for _, p := range doc.Paragraphs {
		if strings.TrimSpace(p.text()) == "" {
			parts = append(parts, "<p>&nbsp;</p>")
			continue
		}

		tag := "p"
		switch {
		case strings.Contains(p.Style, "heading1"):
			tag = "h1"
		case strings.Contains(p.Style, "heading2"):
			tag = "h2"
		case strings.Contains(p.Style, "heading3"):
			tag = "h3"
		}

		var content strings.Builder
		for _, run := range p.Runs {
			text := html.EscapeString(run.Text)
			if run.Bold {
				text = "<strong>" + text + "</strong>"
			}
			if run.Italic {
				text = "<em>" + text + "</em>"
			}
			if run.Underline {
				text = "<u>" + text + "</u>"
			}
			content.WriteString(text)
		}

		classAttr := ""
		if p.Alignment != "" {
			classAttr = fmt.Sprintf(" class=%q", p.Alignment)
		}
		parts = append(parts, fmt.Sprintf("<%s%s>%s</%s>", tag, classAttr, content.String(), tag))
	}

	for _, table := range doc.Tables {
		parts = appendTableHTML(parts, table.Rows)
	}

	parts = append(parts, "</body>", "</html>")
	return strings.Join(parts, "\n")
}

// PptxHTML renders a parsed deck as a standalone HTML page, one slide div
// per slide in deck order.
func PptxHTML(prs *PptxPresentation) string {
	var parts []string
	parts = appendHTMLHead(parts, "Converted Presentation", slideCSS)

	for _, slide := range prs.Slides {
		parts = append(parts, `<div class="slide">`)
		parts = append(parts, fmt.Sprintf(`<div class="slide-number">Slide %d</div>`, slide.Number))

		if slide.Title != "" {
			parts = append(parts, fmt.Sprintf(`<div class="slide-title">%s</div>`, html.EscapeString(slide.Title)))
		}

		for _, block := range slide.Blocks {
			switch {
			case block.Paragraph != nil:
				text := html.EscapeString(block.Paragraph.Text)
				if block.Paragraph.Level > 0 {
					parts = append(parts, "<ul><li>"+text+"</li></ul>")
				} else {
					parts = append(parts, `<div class="slide-content">`+text+"</div>")
				}
			case block.Table != nil:
				parts = appendTableHTML(parts, block.Table.Rows)
			}
		}

		parts = append(parts, "</div>")
	}

	parts = append(parts, "</body>", "</html>")
	return strings.Join(parts, "\n")
}

func appendTableHTML(parts []string, rows [][]string) []string {
	parts = append(parts, "<table>")
	for _, row := range rows {
		parts = append(parts, "<tr>")
		for _, cell := range row {
			parts = append(parts, "<td>"+html.EscapeString(cell)+"</td>")
		}
		parts = append(parts, "</tr>")
	}
	parts = append(parts, "</table>")
	return parts
}
