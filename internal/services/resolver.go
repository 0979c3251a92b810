package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mshailja29/revisionAI/internal/models"
)

// ResolverService picks the extraction strategy for an input descriptor and
// produces the normalized text blob the rest of the pipeline consumes.
type ResolverService struct {
	pdf     *PDFService
	scraper *ScraperService
}

func NewResolverService(pdf *PDFService, scraper *ScraperService) *ResolverService {
	return &ResolverService{pdf: pdf, scraper: scraper}
}

// Resolve dispatches on the source kind. A document that cannot be read, or
// that yields no text at all, surfaces KindExtractionFailed so the caller
// never forwards an empty blob to the LLM. No retries.
func (s *ResolverService) Resolve(ctx context.Context, src models.Source) (string, error) {
	switch src.Kind {
	case models.SourceUpload:
		text, err := s.pdf.ExtractBytes(src.Data)
		if err != nil {
			return "", pipelineErr(KindExtractionFailed, "extract uploaded pdf", err)
		}
		if text == "" {
			return "", pipelineErr(KindExtractionFailed, "extract uploaded pdf", errEmptyDocument)
		}
		return text, nil

	case models.SourcePDFURL:
		data, err := s.scraper.fetch(ctx, src.URL)
		if err != nil {
			return "", pipelineErr(KindFetchFailed, "download pdf", err)
		}
		text, err := s.pdf.ExtractBytes(data)
		if err != nil {
			return "", pipelineErr(KindExtractionFailed, "extract downloaded pdf", err)
		}
		if text == "" {
			return "", pipelineErr(KindExtractionFailed, "extract downloaded pdf", errEmptyDocument)
		}
		return text, nil

	case models.SourcePageURL:
		return s.scraper.Scrape(ctx, src.URL)

	default:
		return "", fmt.Errorf("unsupported source kind %q", src.Kind)
	}
}

var errEmptyDocument = errors.New("document contains no extractable text")
