package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/seo-optimizer/seoaudit/audit"
	"github.com/seo-optimizer/seoaudit/page"
)

// Renderer turns an audit and its extraction into a file format.
type Renderer interface {
	Render(r audit.Report, p page.Extraction) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md").
	Extension() string
	ContentType() string
}

// Formats lists the names ForFormat accepts.
var Formats = []string{"text", "json", "pdf"}

// ForFormat returns the renderer for a format name.
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "text", "md", "markdown":
		return TextRenderer{}, nil
	case "json":
		return JSONRenderer{}, nil
	case "pdf":
		return PDFRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown report format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// TextRenderer writes the Markdown report.
type TextRenderer struct{}

func (TextRenderer) Render(r audit.Report, p page.Extraction) ([]byte, error) {
	return []byte(Audit(r, p)), nil
}

func (TextRenderer) Extension() string   { return ".md" }
func (TextRenderer) ContentType() string { return "text/markdown; charset=utf-8" }

// Document is the JSON form of one audited page.
type Document struct {
	Extraction page.Extraction `json:"extraction"`
	Audit      audit.Report    `json:"audit"`
}

// JSONRenderer writes {extraction, audit} as indented JSON.
type JSONRenderer struct{}

func (JSONRenderer) Render(r audit.Report, p page.Extraction) ([]byte, error) {
	data, err := json.MarshalIndent(Document{Extraction: page.Normalize(p), Audit: r}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

func (JSONRenderer) Extension() string   { return ".json" }
func (JSONRenderer) ContentType() string { return "application/json; charset=utf-8" }

// PDFRenderer lays the Markdown report out as an A4 document.
type PDFRenderer struct{}

func (PDFRenderer) Render(r audit.Report, p page.Extraction) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("SEO Audit Report: "+p.URL, true)
	if ts, err := time.Parse(page.TimestampFormat, r.Timestamp); err == nil {
		pdf.SetCreationDate(ts)
		pdf.SetModificationDate(ts)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	for _, line := range strings.Split(Audit(r, p), "\n") {
		switch {
		case strings.TrimSpace(line) == "":
			pdf.Ln(3)
		case strings.HasPrefix(line, "#"):
			level := len(line) - len(strings.TrimLeft(line, "#"))
			renderHeading(pdf, tr(strings.TrimSpace(strings.TrimLeft(line, "# "))), level)
		case strings.HasPrefix(line, "- "):
			pdf.SetFont("Helvetica", "", 10)
			setBandColor(pdf, line)
			pdf.MultiCell(0, 5, tr("• "+line[2:]), "", "L", false)
			pdf.SetTextColor(0, 0, 0)
		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(line), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (PDFRenderer) Extension() string   { return ".pdf" }
func (PDFRenderer) ContentType() string { return "application/pdf" }

func renderHeading(pdf *gofpdf.Fpdf, text string, level int) {
	sizes := map[int]float64{1: 18, 2: 14, 3: 12}
	size, ok := sizes[level]
	if !ok {
		size = 11
	}
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, text, "", "L", false)
	pdf.Ln(1)
}

// setBandColor colours category score lines by their band.
func setBandColor(pdf *gofpdf.Fpdf, line string) {
	switch {
	case strings.HasSuffix(line, "[PASS]"):
		pdf.SetTextColor(30, 130, 60)
	case strings.HasSuffix(line, "[WARN]"):
		pdf.SetTextColor(190, 120, 0)
	case strings.HasSuffix(line, "[FAIL]"):
		pdf.SetTextColor(190, 30, 30)
	}
}
