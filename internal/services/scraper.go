package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxLinkedDocuments caps the scraper's fan-out over PDFs linked from a
// course page, bounding latency and cost.
const maxLinkedDocuments = 3

// ScraperService turns an HTML course page into study text: readable body
// text plus the contents of the first few linked PDF documents.
type ScraperService struct {
	client *http.Client
	pdf    *PDFService
}

func NewScraperService(client *http.Client, pdf *PDFService) *ScraperService {
	if client == nil {
		client = http.DefaultClient
	}
	return &ScraperService{client: client, pdf: pdf}
}

// Scrape fetches pageURL, collects visible text from paragraph, list-item and
// h1-h3 heading elements in document order, then downloads and extracts at
// most the first three linked PDFs. A failure on an individual linked PDF is
// logged and skipped; it never voids text already gathered from the page.
func (s *ScraperService) Scrape(ctx context.Context, pageURL string) (string, error) {
	body, err := s.fetch(ctx, pageURL)
	if err != nil {
		return "", pipelineErr(KindFetchFailed, "fetch course page", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", pipelineErr(KindExtractionFailed, "parse course page", err)
	}

	var builder strings.Builder
	doc.Find("p, li, h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	})

	for _, docURL := range s.documentLinks(doc, pageURL) {
		text, err := s.fetchAndExtract(ctx, docURL)
		if err != nil {
			log.Printf("skipping linked pdf %s: %v", docURL, err)
			continue
		}
		if text == "" {
			continue
		}
		builder.WriteString("\n")
		builder.WriteString(text)
	}

	return strings.TrimSpace(builder.String()), nil
}

// documentLinks collects anchor hrefs ending in .pdf, resolved against
// pageURL, capped at maxLinkedDocuments.
func (s *ScraperService) documentLinks(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if len(links) >= maxLinkedDocuments {
			return
		}
		href, ok := sel.Attr("href")
		if !ok || !strings.HasSuffix(strings.ToLower(href), ".pdf") {
			return
		}
		resolved := href
		if base != nil {
			if abs, err := base.Parse(href); err == nil {
				resolved = abs.String()
			}
		}
		links = append(links, resolved)
	})
	return links
}

func (s *ScraperService) fetchAndExtract(ctx context.Context, docURL string) (string, error) {
	data, err := s.fetch(ctx, docURL)
	if err != nil {
		return "", err
	}
	text, err := s.pdf.ExtractBytes(data)
	if err != nil {
		return "", fmt.Errorf("extract linked pdf: %w", err)
	}
	return text, nil
}

func (s *ScraperService) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}
