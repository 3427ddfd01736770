package batch

import (
	"context"
	"fmt"

	"github.com/sourabhsahu334/newsUserBackend/internal/oracle"
)

// Per-document prices.
const (
	CreditsPerDocument       = 1
	CreditsPerDocumentWithJD = 2
)

// Price returns the cost of extracting n documents.
func Price(n int, withJobDescription bool) int {
	if withJobDescription {
		return n * CreditsPerDocumentWithJD
	}
	return n * CreditsPerDocument
}

// Meta carries source details that are copied onto results and history.
type Meta struct {
	EmailID      string
	EmailSubject string
}

// Document is one submitted file. When Data is empty, Fetch is called after
// payment to obtain the bytes.
type Document struct {
	Filename string
	Data     []byte
	Fetch    func(ctx context.Context) ([]byte, error)
	Meta     Meta
}

// Request is one batch submission.
type Request struct {
	AccountID      string
	Documents      []Document
	FolderName     string
	JobDescription string
	Source         string
}

// DocumentResult is the outcome for one document, at the same index it was submitted.
type DocumentResult struct {
	Filename       string            `json:"filename"`
	Status         string            `json:"status"`
	Candidate      *oracle.Candidate `json:"candidate,omitempty"`
	Error          *oracle.Failure   `json:"error,omitempty"`
	CreditsCharged int               `json:"creditsCharged"`
	HistoryID      string            `json:"historyId,omitempty"`
	EmailID        string            `json:"emailId,omitempty"`
	EmailSubject   string            `json:"emailSubject,omitempty"`
}

// Outcome is returned for a paid batch.
type Outcome struct {
	Results            []DocumentResult `json:"results"`
	CreditsCharged     int              `json:"creditsCharged"`
	RemainingCredits   int              `json:"remainingCredits"`
	JobDescriptionUsed bool             `json:"jobDescriptionUsed"`
	Folder             string           `json:"folderName"`
}

// ValidationError rejects a request before any credit is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
