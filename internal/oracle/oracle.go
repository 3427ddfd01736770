// Package oracle wraps the external extraction model. Extract never fails the
// caller: every problem becomes a per-document Failure.
package oracle

import (
	"context"
	"errors"
)

// Failure codes reported per document.
const (
	CodeTimeout             = "ORACLE_TIMEOUT"
	CodeFailure             = "ORACLE_FAILURE"
	CodeMalformedResponse   = "ORACLE_MALFORMED_RESPONSE"
	CodeDocumentUnavailable = "DOCUMENT_UNAVAILABLE"
)

// ErrNotConfigured is returned by the placeholder model.
var ErrNotConfigured = errors.New("extraction model not configured")

// Prompt is a single model request: instructions plus one document.
type Prompt struct {
	Instructions string
	Document     []byte
	MIMEType     string
	Filename     string
}

type Usage struct {
	PromptTokens int
	OutputTokens int
	TotalTokens  int
}

// Response carries the model's raw text output.
type Response struct {
	Raw   []byte
	Usage Usage
}

// Model abstracts extraction providers.
type Model interface {
	Generate(ctx context.Context, prompt Prompt) (Response, error)
}

// Input is one document submitted for extraction.
type Input struct {
	Filename string
	Data     []byte
}

// Failure describes why a document produced no candidate.
type Failure struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Raw       string `json:"raw,omitempty"`
	Retryable bool   `json:"retryable"`
}

// Result holds exactly one of Candidate or Failure.
type Result struct {
	Candidate *Candidate
	Failure   *Failure
}

// Succeeded reports whether the extraction produced a candidate.
func (r Result) Succeeded() bool {
	return r.Candidate != nil && r.Failure == nil
}

// Fail builds a failure result.
func Fail(code, message string, retryable bool) Result {
	return Result{Failure: &Failure{Code: code, Message: message, Retryable: retryable}}
}

// Extractor turns a document into a Result.
type Extractor interface {
	Extract(ctx context.Context, in Input, jobDescription string) Result
}

// PlaceholderModel is used when no provider is configured.
type PlaceholderModel struct{}

func (PlaceholderModel) Generate(ctx context.Context, prompt Prompt) (Response, error) {
	_ = ctx
	_ = prompt
	return Response{}, ErrNotConfigured
}

// TransientError marks a provider error as safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err so the adapter retries it once.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}
