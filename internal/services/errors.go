package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures so the orchestrator can build the
// matching fallback result.
type ErrorKind string

const (
	// KindExtractionFailed covers unreadable documents and documents that
	// yield no text at all.
	KindExtractionFailed ErrorKind = "extraction_failed"
	// KindFetchFailed covers network errors and non-2xx responses while
	// fetching pages or documents.
	KindFetchFailed ErrorKind = "fetch_failed"
	// KindMalformedOutput means no parseable JSON was found in a free-text
	// model response.
	KindMalformedOutput ErrorKind = "malformed_model_output"
	// KindEmptyInput means no text could be gathered from any source.
	KindEmptyInput ErrorKind = "empty_input"
	// KindRequestFailed covers LLM transport failures.
	KindRequestFailed ErrorKind = "request_failed"
)

// PipelineError is the typed failure that stages return instead of raising.
type PipelineError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func pipelineErr(kind ErrorKind, op string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Op: op, Err: err}
}

// KindOf reports the ErrorKind of err, or "" when err is not a PipelineError.
func KindOf(err error) ErrorKind {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ""
}
