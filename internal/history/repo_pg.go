package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sourabhsahu334/newsUserBackend/internal/oracle"
)

type PGRepo struct {
	DB *sql.DB
}

const recordColumns = `id, account_id, filename, candidate, error, status, folder_names, credits_charged, source, email_id, email_subject, created_at`

func (r *PGRepo) Insert(ctx context.Context, records []Record) (err error) {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `
INSERT INTO history_records (id, account_id, filename, candidate, error, status, folder_names, credits_charged, source, email_id, email_subject, search_text, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	for _, rec := range records {
		var candidate any
		if rec.Candidate != nil {
			b, mErr := json.Marshal(rec.Candidate)
			if mErr != nil {
				return mErr
			}
			candidate = b
		}
		folders, mErr := json.Marshal(folderSet(rec.FolderNames))
		if mErr != nil {
			return mErr
		}
		if _, err = tx.ExecContext(ctx, query,
			rec.ID,
			rec.AccountID,
			rec.Filename,
			candidate,
			nullableString(rec.Error),
			rec.Status,
			folders,
			rec.CreditsCharged,
			rec.Source,
			rec.EmailID,
			rec.EmailSubject,
			searchText(rec.Candidate),
			rec.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert history record: %w", err)
		}
	}
	return tx.Commit()
}

func (r *PGRepo) List(ctx context.Context, accountID string, q Query) ([]Record, int, error) {
	where, args := buildWhere(accountID, q)

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM history_records WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + recordColumns + ` FROM history_records WHERE ` + where + ` ORDER BY created_at DESC, id DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit, q.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

func buildWhere(accountID string, q Query) (string, []any) {
	clauses := []string{"account_id = $1"}
	args := []any{accountID}
	if q.Folder != "" {
		args = append(args, q.Folder)
		clauses = append(clauses, fmt.Sprintf("folder_names @> jsonb_build_array($%d::text)", len(args)))
	}
	if q.Status != "" {
		args = append(args, q.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if text := normalizeQuery(q.Text); text != "" {
		args = append(args, "%"+escapeLike(text)+"%")
		clauses = append(clauses, fmt.Sprintf(`search_text LIKE $%d ESCAPE '\'`, len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PGRepo) Get(ctx context.Context, accountID, id string) (Record, error) {
	query := `SELECT ` + recordColumns + ` FROM history_records WHERE account_id = $1 AND id = $2 LIMIT 1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, accountID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *PGRepo) Move(ctx context.Context, accountID string, ids []string, source, target string) (int, error) {
	const query = `
UPDATE history_records
SET folder_names = CASE
    WHEN (folder_names - $3::text) @> jsonb_build_array($4::text) THEN folder_names - $3::text
    ELSE (folder_names - $3::text) || jsonb_build_array($4::text)
  END
WHERE account_id = $1 AND id = $2 AND folder_names @> jsonb_build_array($3::text)`
	return r.eachID(ctx, ids, func(tx *sql.Tx, id string) (int64, error) {
		return execAffected(ctx, tx, query, accountID, id, source, target)
	})
}

func (r *PGRepo) Copy(ctx context.Context, accountID string, ids []string, target string) (int, error) {
	const query = `
UPDATE history_records
SET folder_names = CASE
    WHEN folder_names @> jsonb_build_array($3::text) THEN folder_names
    ELSE folder_names || jsonb_build_array($3::text)
  END
WHERE account_id = $1 AND id = $2`
	return r.eachID(ctx, ids, func(tx *sql.Tx, id string) (int64, error) {
		return execAffected(ctx, tx, query, accountID, id, target)
	})
}

func (r *PGRepo) Delete(ctx context.Context, accountID string, ids []string) (int, error) {
	return r.eachID(ctx, ids, func(tx *sql.Tx, id string) (int64, error) {
		return execAffected(ctx, tx, `DELETE FROM history_records WHERE account_id = $1 AND id = $2`, accountID, id)
	})
}

func (r *PGRepo) RemoveFromFolder(ctx context.Context, accountID string, ids []string, folder string) (int, error) {
	const untag = `
UPDATE history_records
SET folder_names = folder_names - $3::text
WHERE account_id = $1 AND id = $2 AND folder_names @> jsonb_build_array($3::text)`
	const purge = `
DELETE FROM history_records
WHERE account_id = $1 AND id = $2 AND jsonb_array_length(folder_names) = 0`
	return r.eachID(ctx, ids, func(tx *sql.Tx, id string) (int64, error) {
		n, err := execAffected(ctx, tx, untag, accountID, id, folder)
		if err != nil || n == 0 {
			return n, err
		}
		if _, err := tx.ExecContext(ctx, purge, accountID, id); err != nil {
			return 0, err
		}
		return n, nil
	})
}

// eachID runs fn per id inside one transaction and sums affected rows.
func (r *PGRepo) eachID(ctx context.Context, ids []string, fn func(tx *sql.Tx, id string) (int64, error)) (affected int, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, id := range ids {
		n, fnErr := fn(tx, id)
		if fnErr != nil {
			err = fnErr
			return 0, err
		}
		affected += int(n)
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return affected, nil
}

func execAffected(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var candidate []byte
	var errText sql.NullString
	var folders []byte
	if err := row.Scan(
		&rec.ID,
		&rec.AccountID,
		&rec.Filename,
		&candidate,
		&errText,
		&rec.Status,
		&folders,
		&rec.CreditsCharged,
		&rec.Source,
		&rec.EmailID,
		&rec.EmailSubject,
		&rec.CreatedAt,
	); err != nil {
		return Record{}, err
	}
	if len(candidate) > 0 && string(candidate) != "null" {
		var c oracle.Candidate
		if err := json.Unmarshal(candidate, &c); err != nil {
			return Record{}, fmt.Errorf("history %s candidate: %w", rec.ID, err)
		}
		rec.Candidate = &c
	}
	if errText.Valid {
		rec.Error = errText.String
	}
	rec.FolderNames = []string{}
	if len(folders) > 0 {
		if err := json.Unmarshal(folders, &rec.FolderNames); err != nil {
			return Record{}, fmt.Errorf("history %s folders: %w", rec.ID, err)
		}
	}
	return rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
