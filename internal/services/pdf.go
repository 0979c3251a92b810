package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFService extracts plain text from PDF documents page by page.
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// ExtractFile reads the PDF at path and concatenates the text of every page
// in document order, newline separated. Pages that yield no text are skipped
// silently; a scanned page does not abort the document. When every page is
// empty the result is an empty string and a nil error; callers decide
// whether that is fatal.
func (s *PDFService) ExtractFile(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var builder strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Unreadable page, keep going with the rest.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return strings.TrimSpace(builder.String()), nil
}

// ExtractBytes writes data to a scoped temporary file and extracts its text.
// The temporary file is removed on all exit paths.
func (s *PDFService) ExtractBytes(data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "revisionai-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp pdf: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp pdf: %w", err)
	}

	return s.ExtractFile(path)
}
