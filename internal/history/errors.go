package history

import "errors"

var (
	ErrNotFound      = errors.New("history record not found")
	ErrNoIDs         = errors.New("at least one record id is required")
	ErrInvalidFolder = errors.New("folder name is required")
	ErrSameFolder    = errors.New("source and target folders are the same")
	ErrEmptyQuery    = errors.New("search query is required")
	ErrInvalidStatus = errors.New("invalid status filter")
)
