package inbox

import (
	"context"
	"sync"

	"github.com/sourabhsahu334/newsUserBackend/internal/batch"
)

type fakeMailbox struct {
	mu          sync.Mutex
	messages    map[string]Message
	attachments map[string][]byte
	downloads   int
}

func (f *fakeMailbox) List(ctx context.Context, query string, max int64) ([]MessageSummary, error) {
	out := []MessageSummary{}
	for _, m := range f.messages {
		out = append(out, m.MessageSummary)
	}
	return out, nil
}

func (f *fakeMailbox) Message(ctx context.Context, id string) (Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return Message{}, ErrMessageNotFound
	}
	return m, nil
}

func (f *fakeMailbox) Attachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	f.mu.Lock()
	f.downloads++
	f.mu.Unlock()
	data, ok := f.attachments[messageID+"/"+attachmentID]
	if !ok {
		return nil, ErrMessageNotFound
	}
	return data, nil
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{
		messages: map[string]Message{
			"m1": {
				MessageSummary: MessageSummary{ID: "m1", Subject: "Application: Go dev", PDFCount: 2},
				Attachments: []Attachment{
					{MessageID: "m1", AttachmentID: "a1", Filename: "ada.pdf", MimeType: pdfMime},
					{MessageID: "m1", AttachmentID: "a2", Filename: "cover.pdf", MimeType: pdfMime},
				},
			},
			"m2": {
				MessageSummary: MessageSummary{ID: "m2", Subject: "No files"},
				Attachments:    []Attachment{},
			},
		},
		attachments: map[string][]byte{
			"m1/a1": []byte("%PDF-1.4 ada"),
			"m1/a2": []byte("not a pdf"),
		},
	}
}

type captureProcessor struct {
	req     batch.Request
	fetched [][]byte
	errs    []error
	err     error
}

func (p *captureProcessor) ProcessBatch(ctx context.Context, req batch.Request) (batch.Outcome, error) {
	p.req = req
	if p.err != nil {
		return batch.Outcome{}, p.err
	}
	out := batch.Outcome{CreditsCharged: len(req.Documents), Folder: "default"}
	for _, doc := range req.Documents {
		data, err := doc.Fetch(ctx)
		p.fetched = append(p.fetched, data)
		p.errs = append(p.errs, err)
		out.Results = append(out.Results, batch.DocumentResult{Filename: doc.Filename, EmailID: doc.Meta.EmailID})
	}
	return out, nil
}
