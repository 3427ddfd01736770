package inbox

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const gmailUser = "me"

// GmailMailbox reads messages through the Gmail API.
type GmailMailbox struct {
	svc *gmail.Service
}

// NewGmailMailbox builds a mailbox authorized by a user access token.
func NewGmailMailbox(ctx context.Context, accessToken string) (Mailbox, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, ErrMissingToken
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	return NewGmailMailboxWithOptions(ctx, option.WithTokenSource(ts))
}

// NewGmailMailboxWithOptions builds a mailbox from raw client options.
func NewGmailMailboxWithOptions(ctx context.Context, opts ...option.ClientOption) (*GmailMailbox, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail client: %w", err)
	}
	return &GmailMailbox{svc: svc}, nil
}

func (m *GmailMailbox) List(ctx context.Context, query string, max int64) ([]MessageSummary, error) {
	call := m.svc.Users.Messages.List(gmailUser).Q(query).Context(ctx)
	if max > 0 {
		call = call.MaxResults(max)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, wrapGmailError(err)
	}
	out := make([]MessageSummary, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		msg, err := m.Message(ctx, ref.Id)
		if err != nil {
			if errors.Is(err, ErrMessageNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, msg.MessageSummary)
	}
	return out, nil
}

func (m *GmailMailbox) Message(ctx context.Context, id string) (Message, error) {
	msg, err := m.svc.Users.Messages.Get(gmailUser, id).Format("full").Context(ctx).Do()
	if err != nil {
		return Message{}, wrapGmailError(err)
	}
	return convertMessage(msg), nil
}

func (m *GmailMailbox) Attachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	body, err := m.svc.Users.Messages.Attachments.Get(gmailUser, messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return nil, wrapGmailError(err)
	}
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(body.Data, "="))
	if err != nil {
		return nil, fmt.Errorf("decode attachment: %w", err)
	}
	return data, nil
}

func convertMessage(msg *gmail.Message) Message {
	out := Message{
		MessageSummary: MessageSummary{
			ID:       msg.Id,
			ThreadID: msg.ThreadId,
			Snippet:  msg.Snippet,
		},
		Attachments: []Attachment{},
	}
	if msg.Payload == nil {
		return out
	}
	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "subject":
			out.Subject = h.Value
		case "from":
			out.From = h.Value
		case "date":
			if t, err := mail.ParseDate(h.Value); err == nil {
				out.Date = t.UTC()
			}
		}
	}
	out.Attachments = collectPDFs(msg.Id, msg.Payload, out.Attachments)
	out.PDFCount = len(out.Attachments)
	return out
}

// collectPDFs walks the MIME tree depth first.
func collectPDFs(messageID string, part *gmail.MessagePart, acc []Attachment) []Attachment {
	if part == nil {
		return acc
	}
	if part.Body != nil && part.Body.AttachmentId != "" && isPDFPart(part.Filename, part.MimeType) {
		acc = append(acc, Attachment{
			MessageID:    messageID,
			AttachmentID: part.Body.AttachmentId,
			Filename:     part.Filename,
			MimeType:     part.MimeType,
			Size:         part.Body.Size,
		})
	}
	for _, child := range part.Parts {
		acc = collectPDFs(messageID, child, acc)
	}
	return acc
}

func wrapGmailError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrPermissionDenied, apiErr.Message)
		case http.StatusNotFound:
			return ErrMessageNotFound
		}
	}
	return err
}
