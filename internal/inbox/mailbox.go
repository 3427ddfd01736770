package inbox

import (
	"context"
	"strings"
)

// Mailbox is a read-only view of one user's mail.
type Mailbox interface {
	List(ctx context.Context, query string, max int64) ([]MessageSummary, error)
	Message(ctx context.Context, id string) (Message, error)
	Attachment(ctx context.Context, messageID, attachmentID string) ([]byte, error)
}

// MailboxFactory opens a mailbox for the caller's access token.
type MailboxFactory func(ctx context.Context, accessToken string) (Mailbox, error)

const pdfMime = "application/pdf"

func isPDFPart(filename, mimeType string) bool {
	if strings.TrimSpace(filename) == "" {
		return false
	}
	if strings.EqualFold(mimeType, pdfMime) {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}
