package account

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, acct Account) (bool, error) {
	const query = `
INSERT INTO accounts (id, email, name, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING`
	res, err := r.DB.ExecContext(ctx, query, acct.ID, acct.Email, acct.Name, acct.CreatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *PGRepo) Get(ctx context.Context, id string) (Account, error) {
	const query = `
SELECT id, email, name, created_at
FROM accounts
WHERE id = $1
LIMIT 1`
	var acct Account
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&acct.ID, &acct.Email, &acct.Name, &acct.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return acct, nil
}

func (r *PGRepo) ClaimSignup(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `
UPDATE accounts
SET signup_granted_at = $2
WHERE id = $1 AND signup_granted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *PGRepo) ReleaseSignup(ctx context.Context, id string) error {
	const query = `UPDATE accounts SET signup_granted_at = NULL WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}
