package history

import (
	"time"

	"github.com/sourabhsahu334/newsUserBackend/internal/oracle"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"

	SourceUpload = "upload"
	SourceGmail  = "gmail"
)

// Record is one persisted extraction outcome. Only folder membership changes after insert.
type Record struct {
	ID             string            `json:"id"`
	AccountID      string            `json:"-"`
	Filename       string            `json:"filename"`
	Candidate      *oracle.Candidate `json:"candidate"`
	Error          string            `json:"error,omitempty"`
	Status         string            `json:"status"`
	FolderNames    []string          `json:"folderNames"`
	CreditsCharged int               `json:"creditsCharged"`
	Source         string            `json:"source"`
	EmailID        string            `json:"emailId,omitempty"`
	EmailSubject   string            `json:"emailSubject,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// Entry is the input for Record: one processed document.
type Entry struct {
	Filename       string
	Candidate      *oracle.Candidate
	Error          string
	CreditsCharged int
	Source         string
	EmailID        string
	EmailSubject   string
}

// Filter narrows List and Search.
type Filter struct {
	Folder string
	Status string
}

// Query is the repository-level form of a listing request.
type Query struct {
	Filter
	Text   string
	Offset int
	Limit  int
}

// Page is one page of records, newest first.
type Page struct {
	Items    []Record `json:"items"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
}
