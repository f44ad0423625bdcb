package convert

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func buildPackage(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func parseDocxBytes(t *testing.T, b []byte) *DocxDocument {
	t.Helper()
	doc, err := ParseDocx(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("ParseDocx error: %v", err)
	}
	return doc
}

const docxHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const docxFooter = `</w:body></w:document>`

func docxPackage(t *testing.T, body string) []byte {
	return buildPackage(t, map[string]string{
		"word/document.xml": docxHeader + body + docxFooter,
	})
}

func TestParseDocx_HeadingStyleAndBold(t *testing.T) {
	b := docxPackage(t, `<w:p>
		<w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
		<w:r><w:rPr><w:b/></w:rPr><w:t>Title</w:t></w:r>
	</w:p>`)

	doc := parseDocxBytes(t, b)
	if len(doc.Paragraphs) != 1 {
		t.Fatalf("want 1 paragraph, got %d", len(doc.Paragraphs))
	}
	p := doc.Paragraphs[0]
	if p.Style != "heading1" {
		t.Fatalf("want heading1 style, got %q", p.Style)
	}
	if len(p.Runs) != 1 || !p.Runs[0].Bold || p.Runs[0].Text != "Title" {
		t.Fatalf("unexpected runs: %+v", p.Runs)
	}
}

func TestParseDocx_AlignmentAndRunFormats(t *testing.T) {
	b := docxPackage(t, `<w:p>
		<w:pPr><w:jc w:val="center"/></w:pPr>
		<w:r><w:rPr><w:i/><w:u w:val="single"/></w:rPr><w:t>styled</w:t></w:r>
	</w:p>
	<w:p>
		<w:pPr><w:jc w:val="both"/></w:pPr>
		<w:r><w:t>long text</w:t></w:r>
	</w:p>`)

	doc := parseDocxBytes(t, b)
	if doc.Paragraphs[0].Alignment != "center" {
		t.Fatalf("want center, got %q", doc.Paragraphs[0].Alignment)
	}
	run := doc.Paragraphs[0].Runs[0]
	if !run.Italic || !run.Underline || run.Bold {
		t.Fatalf("unexpected run flags: %+v", run)
	}
	if doc.Paragraphs[1].Alignment != "justify" {
		t.Fatalf("want justify for w:jc both, got %q", doc.Paragraphs[1].Alignment)
	}
}

func TestParseDocx_ExplicitlyDisabledToggle(t *testing.T) {
	b := docxPackage(t, `<w:p>
		<w:r><w:rPr><w:b w:val="0"/></w:rPr><w:t>plain</w:t></w:r>
	</w:p>`)

	doc := parseDocxBytes(t, b)
	if doc.Paragraphs[0].Runs[0].Bold {
		t.Fatal("w:b val=0 must not set bold")
	}
}

func TestParseDocx_TableCellsExcludedFromParagraphs(t *testing.T) {
	b := docxPackage(t, `<w:p><w:r><w:t>before</w:t></w:r></w:p>
	<w:tbl>
		<w:tr>
			<w:tc><w:p><w:r><w:t>A1</w:t></w:r></w:p></w:tc>
			<w:tc><w:p><w:r><w:t>B1</w:t></w:r></w:p></w:tc>
		</w:tr>
	</w:tbl>`)

	doc := parseDocxBytes(t, b)
	if len(doc.Paragraphs) != 1 {
		t.Fatalf("cell paragraphs leaked into body: %d", len(doc.Paragraphs))
	}
	if len(doc.Tables) != 1 {
		t.Fatalf("want 1 table, got %d", len(doc.Tables))
	}
	want := [][]string{{"A1", "B1"}}
	got := doc.Tables[0].Rows
	if len(got) != 1 || got[0][0] != "A1" || got[0][1] != "B1" {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestParseDocx_NotAZip(t *testing.T) {
	junk := []byte("not a zip at all")
	if _, err := ParseDocx(bytes.NewReader(junk), int64(len(junk))); err == nil {
		t.Fatal("expected error for invalid package")
	}
}

func TestDocxHTML_BoldHeading(t *testing.T) {
	b := docxPackage(t, `<w:p>
		<w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
		<w:r><w:rPr><w:b/></w:rPr><w:t>Title</w:t></w:r>
	</w:p>`)

	out := DocxHTML(parseDocxBytes(t, b))
	if !strings.Contains(out, "<h1><strong>Title</strong></h1>") {
		t.Fatalf("missing bold heading, got:\n%s", out)
	}
}

func TestDocxHTML_EmptyParagraphAndClasses(t *testing.T) {
	b := docxPackage(t, `<w:p/>
	<w:p>
		<w:pPr><w:jc w:val="right"/></w:pPr>
		<w:r><w:t>signed</w:t></w:r>
	</w:p>`)

	out := DocxHTML(parseDocxBytes(t, b))
	if !strings.Contains(out, "<p>&nbsp;</p>") {
		t.Fatal("empty paragraph should render as non-breaking space")
	}
	if !strings.Contains(out, `<p class="right">signed</p>`) {
		t.Fatalf("missing aligned paragraph, got:\n%s", out)
	}
}

func TestDocxHTML_EscapesMarkup(t *testing.T) {
	b := docxPackage(t, `<w:p>
		<w:r><w:t>a &lt;script&gt; tag</w:t></w:r>
	</w:p>`)

	out := DocxHTML(parseDocxBytes(t, b))
	if strings.Contains(out, "<script>") {
		t.Fatal("document text must be escaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("expected escaped text, got:\n%s", out)
	}
}

func TestDocxHTML_TablesAfterParagraphs(t *testing.T) {
	b := docxPackage(t, `<w:tbl>
		<w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr>
	</w:tbl>
	<w:p><w:r><w:t>paragraph</w:t></w:r></w:p>`)

	out := DocxHTML(parseDocxBytes(t, b))
	pIdx := strings.Index(out, "<p>paragraph</p>")
	tIdx := strings.Index(out, "<table>")
	if pIdx < 0 || tIdx < 0 {
		t.Fatalf("missing content:\n%s", out)
	}
	if tIdx < pIdx {
		t.Fatal("tables must render after all paragraphs")
	}
}
