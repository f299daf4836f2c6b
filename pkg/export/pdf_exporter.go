package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth = 190.0
	qrSizeMM  = 32.0
)

// Field is a label/value line printed above the tables.
type Field struct {
	Label string
	Value string
}

// Document describes a printable page: heading, key/value fields, tables and an optional QR image.
type Document struct {
	Title    string
	Subtitle string
	Fields   []Field
	Tables   []Dataset
	Footer   string
	QRCode   []byte
	QRLabel  string
}

// PDFExporter renders documents with gofpdf core fonts.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render lays out the document on A4 portrait pages.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	for _, table := range doc.Tables {
		if err := table.validate("pdf"); err != nil {
			return nil, err
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(pdfSafe(s)) }

	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, text(strings.ToUpper(doc.Title)), "", 1, "C", false, 0, "")
	}
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, text(doc.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	top := pdf.GetY()
	if len(doc.QRCode) > 0 {
		pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(doc.QRCode))
		pdf.ImageOptions("qr", 10+pageWidth-qrSizeMM, top, qrSizeMM, qrSizeMM, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		if doc.QRLabel != "" {
			pdf.SetFont("Arial", "", 7)
			pdf.SetXY(10+pageWidth-qrSizeMM, top+qrSizeMM)
			pdf.CellFormat(qrSizeMM, 4, text(doc.QRLabel), "", 0, "C", false, 0, "")
			pdf.SetXY(10, top)
		}
	}

	for _, field := range doc.Fields {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(45, 6, text(field.Label), "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, text(field.Value), "", 1, "", false, 0, "")
	}
	if len(doc.QRCode) > 0 && pdf.GetY() < top+qrSizeMM+6 {
		pdf.SetY(top + qrSizeMM + 6)
	}

	for _, table := range doc.Tables {
		pdf.Ln(4)
		if table.Title != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 7, text(table.Title), "", 1, "", false, 0, "")
		}
		colWidth := pageWidth / float64(len(table.Headers))
		pdf.SetFont("Arial", "B", 9)
		for _, header := range table.Headers {
			pdf.CellFormat(colWidth, 7, text(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, row := range table.Rows {
			for i, value := range row {
				align := ""
				if i > 0 {
					align = "R"
				}
				pdf.CellFormat(colWidth, 6, text(value), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if doc.Footer != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 8)
		pdf.MultiCell(0, 4, text(doc.Footer), "", "L", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Core PDF fonts are cp1252; the rupee sign has no glyph there.
var pdfReplacer = strings.NewReplacer("₹", "Rs. ", "\u00a0", " ")

func pdfSafe(s string) string {
	return pdfReplacer.Replace(s)
}
