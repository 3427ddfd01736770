package account

import (
	"context"
	"time"
)

type Repo interface {
	// Create inserts the account unless one with the same id exists and
	// reports whether a row was written.
	Create(ctx context.Context, acct Account) (bool, error)
	Get(ctx context.Context, id string) (Account, error)
	// ClaimSignup marks the signup grant as taken and reports whether this
	// call set the mark. ReleaseSignup clears it after a failed grant.
	ClaimSignup(ctx context.Context, id string, at time.Time) (bool, error)
	ReleaseSignup(ctx context.Context, id string) error
}
