package credits

import (
	"context"
	"database/sql"
	"time"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed ledger store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) Blocks(ctx context.Context, accountID string) ([]Block, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, amount, created_at, expires_at FROM credit_blocks
WHERE account_id = $1 ORDER BY expires_at, id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBlocks(rows)
}

func (s *pgStore) Mutate(ctx context.Context, accountID string, fn mutateFunc) (blocks []Block, err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// The ledger row is the per-account lock; it exists before any block does.
	if _, err = tx.ExecContext(ctx, `
INSERT INTO credit_ledgers (account_id) VALUES ($1) ON CONFLICT (account_id) DO NOTHING`, accountID); err != nil {
		return nil, err
	}
	var locked string
	if err = tx.QueryRowContext(ctx, `
SELECT account_id FROM credit_ledgers WHERE account_id = $1 FOR UPDATE`, accountID).Scan(&locked); err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `
SELECT id, amount, created_at, expires_at FROM credit_blocks
WHERE account_id = $1 ORDER BY expires_at, id FOR UPDATE`, accountID)
	if err != nil {
		return nil, err
	}
	current, err := scanBlocks(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	next, event, err := fn(current)
	if err != nil {
		return nil, err
	}
	if err = s.writeDiff(ctx, tx, accountID, current, next); err != nil {
		return nil, err
	}
	if event != nil {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO credit_events (account_id, kind, amount, balance_after, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
			accountID, event.Kind, event.Amount, event.BalanceAfter, event.Reason, event.CreatedAt); err != nil {
			return nil, err
		}
	}
	if _, err = tx.ExecContext(ctx, `
UPDATE credit_ledgers SET updated_at = now() WHERE account_id = $1`, accountID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return next, nil
}

// writeDiff deletes blocks missing from next, updates changed amounts and
// inserts blocks without an ID.
func (s *pgStore) writeDiff(ctx context.Context, tx *sql.Tx, accountID string, current, next []Block) error {
	kept := make(map[int64]int, len(next))
	for _, b := range next {
		if b.ID != 0 {
			kept[b.ID] = b.Amount
		}
	}
	for _, b := range current {
		amount, ok := kept[b.ID]
		switch {
		case !ok:
			if _, err := tx.ExecContext(ctx, `DELETE FROM credit_blocks WHERE id = $1`, b.ID); err != nil {
				return err
			}
		case amount != b.Amount:
			if _, err := tx.ExecContext(ctx, `UPDATE credit_blocks SET amount = $1 WHERE id = $2`, amount, b.ID); err != nil {
				return err
			}
		}
	}
	for i := range next {
		if next[i].ID != 0 {
			continue
		}
		if err := tx.QueryRowContext(ctx, `
INSERT INTO credit_blocks (account_id, amount, created_at, expires_at)
VALUES ($1, $2, $3, $4) RETURNING id`,
			accountID, next[i].Amount, next[i].CreatedAt, next[i].ExpiresAt).Scan(&next[i].ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *pgStore) PruneExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.DB.ExecContext(ctx, `
DELETE FROM credit_blocks WHERE amount = 0 OR expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *pgStore) Events(ctx context.Context, accountID string, limit int) ([]Event, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT account_id, kind, amount, balance_after, reason, created_at FROM credit_events
WHERE account_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.AccountID, &e.Kind, &e.Amount, &e.BalanceAfter, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanBlocks(rows *sql.Rows) ([]Block, error) {
	var out []Block
	for rows.Next() {
		var b Block
		if err := rows.Scan(&b.ID, &b.Amount, &b.CreatedAt, &b.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
