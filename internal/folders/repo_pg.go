package folders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type PGRepo struct {
	DB *sql.DB
}

const uniqueViolation = "23505"

func (r *PGRepo) Create(ctx context.Context, folder Folder) error {
	const query = `
INSERT INTO folders (account_id, name, job_description, visible_columns, created_at)
VALUES ($1, $2, $3, $4, $5)`
	columns, err := json.Marshal(folder.VisibleColumns)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query, folder.AccountID, folder.Name, folder.JobDescription, columns, folder.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *PGRepo) Get(ctx context.Context, accountID, name string) (Folder, error) {
	const query = `
SELECT account_id, name, job_description, visible_columns, created_at
FROM folders
WHERE account_id = $1 AND name = $2
LIMIT 1`
	folder, err := scanFolder(r.DB.QueryRowContext(ctx, query, accountID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Folder{}, ErrNotFound
		}
		return Folder{}, err
	}
	return folder, nil
}

func (r *PGRepo) List(ctx context.Context, accountID string) ([]Folder, error) {
	const query = `
SELECT account_id, name, job_description, visible_columns, created_at
FROM folders
WHERE account_id = $1
ORDER BY created_at ASC, name ASC`
	rows, err := r.DB.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, folder)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, accountID, name string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM folders WHERE account_id = $1 AND name = $2`, accountID, name)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PGRepo) UpdateColumns(ctx context.Context, accountID, name string, columns []string) error {
	payload, err := json.Marshal(columns)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE folders SET visible_columns = $3 WHERE account_id = $1 AND name = $2`, accountID, name, payload)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PGRepo) UpdateJobDescription(ctx context.Context, accountID, name, jobDescription string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE folders SET job_description = $3 WHERE account_id = $1 AND name = $2`, accountID, name, jobDescription)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner) (Folder, error) {
	var folder Folder
	var jd sql.NullString
	var columns []byte
	if err := row.Scan(&folder.AccountID, &folder.Name, &jd, &columns, &folder.CreatedAt); err != nil {
		return Folder{}, err
	}
	if jd.Valid {
		folder.JobDescription = jd.String
	}
	parsed, err := decodeColumns(columns)
	if err != nil {
		return Folder{}, fmt.Errorf("folder %q columns: %w", folder.Name, err)
	}
	folder.VisibleColumns = parsed
	return folder, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
