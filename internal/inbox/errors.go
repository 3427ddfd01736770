package inbox

import "errors"

var (
	ErrNoEmails          = errors.New("no emails provided")
	ErrNoAttachments     = errors.New("no PDF attachments found")
	ErrMissingToken      = errors.New("missing mailbox access token")
	ErrPermissionDenied  = errors.New("mailbox permission denied")
	ErrMessageNotFound   = errors.New("message not found")
	ErrInvalidAttachment = errors.New("attachment is not a PDF")
)
