package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestScraperPageText(t *testing.T) {
	page := `<html><body>
		<h1>Course Title</h1>
		<p>First paragraph.</p>
		<div>ignored wrapper text outside target tags</div>
		<ul><li>Item one</li><li>   </li></ul>
		<h2>Section</h2>
		<h4>Deep heading is skipped</h4>
		<p>Second paragraph.</p>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	scraper := NewScraperService(srv.Client(), NewPDFService())
	text, err := scraper.Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}

	for _, want := range []string{"Course Title", "First paragraph.", "Item one", "Section", "Second paragraph."} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
	if strings.Contains(text, "Deep heading") {
		t.Errorf("h4 text should not be collected: %q", text)
	}
	if got := strings.Index(text, "Course Title"); got > strings.Index(text, "Second paragraph.") {
		t.Errorf("document order not preserved: %q", text)
	}
}

func TestScraperLinkedPDFs(t *testing.T) {
	var mu sync.Mutex
	hits := make(map[string]int)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<p>Lecture notes below.</p>
			<a href="/docs/one.pdf">one</a>
			<a href="/docs/two.pdf">two</a>
			<a href="/docs/three.PDF">three</a>
			<a href="/docs/four.pdf">four</a>
			<a href="/docs/five.pdf">five</a>
			<a href="/syllabus.html">not a pdf</a>
		</body></html>`)
	})
	mux.HandleFunc("/docs/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()

		switch r.URL.Path {
		case "/docs/one.pdf":
			w.Write(buildTestPDF([]string{"contents of document one"}))
		case "/docs/two.pdf":
			http.Error(w, "gone", http.StatusNotFound)
		case "/docs/three.PDF":
			w.Write(buildTestPDF([]string{"contents of document three"}))
		default:
			w.Write(buildTestPDF([]string{"should never be fetched"}))
		}
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	scraper := NewScraperService(srv.Client(), NewPDFService())
	text, err := scraper.Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	total := 0
	for _, n := range hits {
		total += n
	}
	if total > 3 {
		t.Errorf("fetched %d linked documents, want at most 3 (%v)", total, hits)
	}
	if hits["/docs/four.pdf"] != 0 || hits["/docs/five.pdf"] != 0 {
		t.Errorf("links beyond the first three were fetched: %v", hits)
	}

	// A failure on the second link must not void the rest of the scrape.
	if !strings.Contains(text, "Lecture notes below.") {
		t.Errorf("page body text missing from %q", text)
	}
	if !strings.Contains(text, "contents of document one") {
		t.Errorf("first linked pdf text missing from %q", text)
	}
	if !strings.Contains(text, "contents of document three") {
		t.Errorf("third linked pdf text missing from %q", text)
	}
}

func TestScraperFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	scraper := NewScraperService(srv.Client(), NewPDFService())
	_, err := scraper.Scrape(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for non-2xx page response")
	}
	if KindOf(err) != KindFetchFailed {
		t.Errorf("kind = %q, want %q", KindOf(err), KindFetchFailed)
	}
}
