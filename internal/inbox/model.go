package inbox

import (
	"time"

	"github.com/sourabhsahu334/newsUserBackend/internal/batch"
)

// MessageSummary is one row of the inbox listing.
type MessageSummary struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"threadId,omitempty"`
	Subject  string    `json:"subject"`
	From     string    `json:"from"`
	Date     time.Time `json:"date,omitzero"`
	Snippet  string    `json:"snippet,omitempty"`
	PDFCount int       `json:"pdfCount"`
}

// Attachment points at a PDF part of a message.
type Attachment struct {
	MessageID    string `json:"-"`
	AttachmentID string `json:"-"`
	Filename     string `json:"filename"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
}

// Message is a message with its discovered PDF attachments.
type Message struct {
	MessageSummary
	Attachments []Attachment `json:"attachments"`
}

// EmailRef is a message the caller selected for processing.
type EmailRef struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
}

type ProcessRequest struct {
	AccountID      string
	Emails         []EmailRef
	FolderName     string
	JobDescription string
}

// Skipped is a selected message whose attachments could not be discovered.
// Skipped messages are never charged.
type Skipped struct {
	EmailID      string `json:"emailId"`
	EmailSubject string `json:"emailSubject,omitempty"`
	Error        string `json:"error"`
}

type ProcessOutcome struct {
	batch.Outcome
	Skipped []Skipped `json:"skipped"`
}
