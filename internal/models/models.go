package models

import (
	"errors"
	"net/url"
	"strings"
)

// SourceKind identifies which extraction strategy applies to an input.
type SourceKind string

const (
	// SourceUpload is a PDF supplied as raw bytes by the user.
	SourceUpload SourceKind = "upload"
	// SourcePDFURL is a URL whose path ends in a document extension.
	SourcePDFURL SourceKind = "pdf_url"
	// SourcePageURL is any other URL, treated as an HTML course page.
	SourcePageURL SourceKind = "page_url"
)

// Source is the input descriptor for one study-material request. Exactly one
// variant is active: uploaded bytes, a direct PDF link, or a course page URL.
type Source struct {
	Kind     SourceKind
	Data     []byte
	Filename string
	URL      string
}

var ErrNoInput = errors.New("no file or url provided")

// DescribeSource classifies raw user input into a Source. Uploaded bytes take
// precedence over a URL; URLs are split on the path suffix.
func DescribeSource(data []byte, filename, rawURL string) (Source, error) {
	if len(data) > 0 {
		return Source{Kind: SourceUpload, Data: data, Filename: filename}, nil
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Source{}, ErrNoInput
	}

	if isDocumentURL(rawURL) {
		return Source{Kind: SourcePDFURL, URL: rawURL}, nil
	}
	return Source{Kind: SourcePageURL, URL: rawURL}, nil
}

func isDocumentURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(rawURL), ".pdf")
	}
	return strings.HasSuffix(strings.ToLower(parsed.Path), ".pdf")
}

// Flashcard is a question/answer study pair.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QuizQuestion is a multiple-choice question. Answer is expected to equal one
// of Options byte-for-byte; the pipeline does not enforce this.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// StudyMaterials is the canonical pipeline output consumed by the UI.
type StudyMaterials struct {
	Title      string         `json:"title"`
	Summary    string         `json:"summary"`
	WebLinks   []string       `json:"web_links"`
	Flashcards []Flashcard    `json:"flashcards"`
	Quizzes    []QuizQuestion `json:"quizzes"`
}

// Verdict is the graded outcome of one quiz answer.
type Verdict string

const (
	VerdictCorrect Verdict = "correct"
	VerdictWrong   Verdict = "wrong"
)
