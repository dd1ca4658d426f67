package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// SummaryPDF renders a generated summary as a paginated A4 document and
// returns the encoded bytes.
func SummaryPDF(title, text string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 16)
	doc.MultiCell(0, 8, tr(title), "", "L", false)
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 11)
	doc.MultiCell(0, 6, tr(text), "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
