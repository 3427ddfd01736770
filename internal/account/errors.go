package account

import "errors"

var (
	ErrNotFound        = errors.New("account not found")
	ErrMissingIdentity = errors.New("account id is required")
)
