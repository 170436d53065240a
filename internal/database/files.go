package database

import (
	"context"
	"errors"
	"metastor/internal/models"

	"github.com/jackc/pgx/v5"
)

type CreateFileParams struct {
	ID        string
	AccountID int64
	FileName  string
	CID       string
	Size      int64
	MimeType  string
}

const fileColumns = `id, account_id, file_name, cid, size, mime_type, paid, deleted, timestamp`

func scanFile(row pgx.Row) (*models.File, error) {
	var f models.File
	err := row.Scan(
		&f.ID,
		&f.AccountID,
		&f.FileName,
		&f.CID,
		&f.Size,
		&f.MimeType,
		&f.Paid,
		&f.Deleted,
		&f.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFile stores upload metadata. Uploads are always marked paid.
func (q *Queries) CreateFile(ctx context.Context, arg CreateFileParams) (*models.File, error) {
	query := `
		INSERT INTO files (id, account_id, file_name, cid, size, mime_type, paid)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING ` + fileColumns
	f, err := scanFile(q.db.QueryRow(ctx, query,
		arg.ID,
		arg.AccountID,
		arg.FileName,
		arg.CID,
		arg.Size,
		arg.MimeType,
	))
	if err != nil {
		switch pgErrCode(err) {
		case uniqueViolation:
			return nil, ErrDuplicateFileID
		case foreignKeyViolation:
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return f, nil
}

func (q *Queries) GetFile(ctx context.Context, id string, accountID int64) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND account_id = $2 AND NOT deleted`
	f, err := scanFile(q.db.QueryRow(ctx, query, id, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

// GetFileByCID returns the newest live metadata row for a content id.
func (q *Queries) GetFileByCID(ctx context.Context, cid string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE cid = $1 AND NOT deleted ORDER BY timestamp DESC LIMIT 1`
	f, err := scanFile(q.db.QueryRow(ctx, query, cid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (q *Queries) ListFiles(ctx context.Context, accountID int64, limit int) ([]models.File, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE account_id = $1 AND NOT deleted
		ORDER BY timestamp DESC
		LIMIT $2
	`
	rows, err := q.db.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

func (q *Queries) CountFiles(ctx context.Context, accountID int64) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM files WHERE account_id = $1 AND NOT deleted`, accountID).Scan(&n)
	return n, err
}

func (q *Queries) RenameFile(ctx context.Context, id string, accountID int64, newName string) (*models.File, error) {
	query := `
		UPDATE files
		SET file_name = $1
		WHERE id = $2 AND account_id = $3 AND NOT deleted
		RETURNING ` + fileColumns
	f, err := scanFile(q.db.QueryRow(ctx, query, newName, id, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (q *Queries) SoftDeleteFile(ctx context.Context, id string, accountID int64) (bool, error) {
	res, err := q.db.Exec(ctx, `UPDATE files SET deleted = true WHERE id = $1 AND account_id = $2 AND NOT deleted`, id, accountID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// SumActiveFileSizes is the storage usage of an account.
func (q *Queries) SumActiveFileSizes(ctx context.Context, accountID int64) (uint64, error) {
	var total int64
	err := q.db.QueryRow(ctx, `SELECT COALESCE(SUM(size), 0)::BIGINT FROM files WHERE account_id = $1 AND NOT deleted`, accountID).Scan(&total)
	if err != nil {
		return 0, err
	}
	return uint64(total), nil
}
