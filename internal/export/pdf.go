package export

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// DejaVu Sans Condensed covers Latin, Arabic and the typographic spaces
// used in French amounts.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
)

// Page layout in millimetres
const (
	pdfMargin       = 20.0
	pdfTitleSize    = 20.0
	pdfTitleLine    = 10.0
	pdfTitleGap     = 5.0
	pdfBodySize     = 11.0
	pdfBodyLine     = 5.5
	pdfParagraphGap = 3.0
	pdfFontFamily   = "DejaVuSans"
	pdfPageSize     = "A4"
	pdfCreator      = "contract-ui"
)

// PDF renders title as a bold centered block followed by each blank-line
// separated paragraph of body on A4 pages with uniform margins. Newlines
// inside a paragraph become line breaks.
func PDF(title, body string) ([]byte, error) {
	paras, err := paragraphs(body)
	if err != nil {
		return nil, err
	}
	return renderPDF(title, paras, true)
}

func renderPDF(title string, paras []string, compress bool) ([]byte, error) {
	pdf := fpdf.New("P", "mm", pdfPageSize, "")
	pdf.SetCompression(compress)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(title, true)
	pdf.SetCreator(pdfCreator, true)

	pdf.AddUTF8FontFromBytes(pdfFontFamily, "", fontRegular)
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "B", fontBold)

	pdf.AddPage()
	pdf.SetFont(pdfFontFamily, "B", pdfTitleSize)
	pdf.MultiCell(0, pdfTitleLine, title, "", "C", false)
	pdf.Ln(pdfTitleGap)

	pdf.SetFont(pdfFontFamily, "", pdfBodySize)
	for _, p := range paras {
		pdf.MultiCell(0, pdfBodyLine, p, "", "L", false)
		pdf.Ln(pdfParagraphGap)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return buf.Bytes(), nil
}
