package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Receipt is the printable summary of an appointment.
type Receipt struct {
	Title  string
	Status string
	Fields []Field
	QRCode []byte // PNG, optional
	Footer string
}

// Field is one labelled line of a receipt.
type Field struct {
	Label string
	Value string
}

// PDFExporter renders receipts into single page A4 documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the receipt document.
func (e *PDFExporter) Render(r Receipt) ([]byte, error) {
	if len(r.Fields) == 0 {
		return nil, fmt.Errorf("receipt requires at least one field")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "L", false, 0, "")
	if r.Status != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, strings.ToUpper(r.Status), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	for _, f := range r.Fields {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(45, 8, tr(f.Label), "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 8, tr(f.Value), "", 1, "", false, 0, "")
	}

	if len(r.QRCode) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(r.QRCode))
		pdf.ImageOptions("qr", 145, 20, 45, 45, false, opts, 0, "")
	}

	if r.Footer != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "I", 8)
		pdf.MultiCell(0, 5, tr(r.Footer), "", "L", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
