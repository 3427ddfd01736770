package inbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourabhsahu334/newsUserBackend/internal/batch"
	"github.com/sourabhsahu334/newsUserBackend/internal/extract"
	"github.com/sourabhsahu334/newsUserBackend/internal/history"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/telemetry"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/util"
)

const (
	DefaultQuery    = "has:attachment filename:pdf"
	defaultListSize = 10
	maxListSize     = 50
)

// Processor runs a paid batch.
type Processor interface {
	ProcessBatch(ctx context.Context, req batch.Request) (batch.Outcome, error)
}

type Service struct {
	Batches Processor
}

func NewService(p Processor) *Service {
	return &Service{Batches: p}
}

// List returns matching messages with their PDF counts.
func (s *Service) List(ctx context.Context, mb Mailbox, query string, max int) ([]MessageSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		query = DefaultQuery
	}
	if max <= 0 {
		max = defaultListSize
	}
	if max > maxListSize {
		max = maxListSize
	}
	return mb.List(ctx, query, int64(max))
}

// Process discovers the PDF attachments of the selected messages and runs
// them as one batch. Attachments are downloaded only after the batch is paid.
func (s *Service) Process(ctx context.Context, mb Mailbox, req ProcessRequest) (ProcessOutcome, error) {
	refs := dedupeRefs(req.Emails)
	if len(refs) == 0 {
		return ProcessOutcome{Skipped: []Skipped{}}, ErrNoEmails
	}

	var docs []batch.Document
	skipped := []Skipped{}
	for _, ref := range refs {
		msg, err := mb.Message(ctx, ref.ID)
		if err != nil {
			if ctx.Err() != nil {
				return ProcessOutcome{Skipped: skipped}, ctx.Err()
			}
			skipped = append(skipped, Skipped{EmailID: ref.ID, EmailSubject: ref.Subject, Error: util.SanitizeError(err.Error())})
			telemetry.Warn("inbox.message_skipped", map[string]any{
				"user_id":  req.AccountID,
				"email_id": ref.ID,
				"error":    err.Error(),
			})
			continue
		}
		subject := ref.Subject
		if subject == "" {
			subject = msg.Subject
		}
		for _, att := range msg.Attachments {
			docs = append(docs, batch.Document{
				Filename: attachmentName(att.Filename),
				Fetch:    fetcher(mb, att),
				Meta:     batch.Meta{EmailID: msg.ID, EmailSubject: subject},
			})
		}
	}
	if len(docs) == 0 {
		return ProcessOutcome{Skipped: skipped}, ErrNoAttachments
	}

	outcome, err := s.Batches.ProcessBatch(ctx, batch.Request{
		AccountID:      req.AccountID,
		Documents:      docs,
		FolderName:     req.FolderName,
		JobDescription: req.JobDescription,
		Source:         history.SourceGmail,
	})
	return ProcessOutcome{Outcome: outcome, Skipped: skipped}, err
}

func fetcher(mb Mailbox, att Attachment) func(ctx context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		data, err := mb.Attachment(ctx, att.MessageID, att.AttachmentID)
		if err != nil {
			return nil, err
		}
		if !extract.IsPDF(data) {
			return nil, fmt.Errorf("%s: %w", att.Filename, ErrInvalidAttachment)
		}
		return data, nil
	}
}

func attachmentName(name string) string {
	clean, err := util.SanitizeFileName(name)
	if err != nil || clean == "" {
		return "attachment.pdf"
	}
	return clean
}

func dedupeRefs(refs []EmailRef) []EmailRef {
	seen := make(map[string]struct{}, len(refs))
	out := make([]EmailRef, 0, len(refs))
	for _, r := range refs {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, EmailRef{ID: id, Subject: strings.TrimSpace(r.Subject)})
	}
	return out
}
