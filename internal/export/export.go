// Package export renders contract text as downloadable documents.
package export

import (
	"errors"
	"regexp"
	"strings"
)

// Download metadata for the generated documents
const (
	Title = "Contrat de location"

	DOCXFilename = "contrat.docx"
	DOCXMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	PDFFilename = "contrat.pdf"
	PDFMimeType = "application/pdf"
)

// ErrEmptyBody is returned when there is no text to export
var ErrEmptyBody = errors.New("export: empty contract text")

var blankLine = regexp.MustCompile(`\n[ \t\r]*\n\s*`)

// SplitParagraphs cuts body on blank lines. Paragraphs keep their order and
// their inner newlines; surrounding whitespace is trimmed and empty
// paragraphs are dropped.
func SplitParagraphs(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	var out []string
	for _, p := range blankLine.Split(body, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Lines splits one paragraph on its inner newlines. Only a trailing carriage
// return is removed from each line.
func Lines(paragraph string) []string {
	lines := strings.Split(paragraph, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func paragraphs(body string) ([]string, error) {
	paras := SplitParagraphs(body)
	if len(paras) == 0 {
		return nil, ErrEmptyBody
	}
	return paras, nil
}
