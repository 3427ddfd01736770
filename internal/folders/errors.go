package folders

import "errors"

var (
	ErrNotFound      = errors.New("folder not found")
	ErrAlreadyExists = errors.New("folder already exists")
	ErrInvalidName   = errors.New("invalid folder name")
	ErrInvalidColumn = errors.New("unknown column")
	ErrDefaultFolder = errors.New("default folder cannot be deleted")
)
