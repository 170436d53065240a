package database

import (
	"context"
	"errors"
	"metastor/internal/models"

	"github.com/jackc/pgx/v5"
)

// UpsertAccount returns the account for pubKey, creating it on first sight.
func (q *Queries) UpsertAccount(ctx context.Context, pubKey string) (*models.Account, error) {
	query := `
		INSERT INTO accounts (pub_key)
		VALUES ($1)
		ON CONFLICT (pub_key) DO UPDATE SET pub_key = EXCLUDED.pub_key
		RETURNING id, pub_key, created_at
	`
	var acc models.Account
	err := q.db.QueryRow(ctx, query, pubKey).Scan(&acc.ID, &acc.PubKey, &acc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (q *Queries) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT id, pub_key, created_at FROM accounts WHERE id = $1`
	var acc models.Account
	err := q.db.QueryRow(ctx, query, id).Scan(&acc.ID, &acc.PubKey, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &acc, nil
}

func (q *Queries) GetAccountByPubKey(ctx context.Context, pubKey string) (*models.Account, error) {
	query := `SELECT id, pub_key, created_at FROM accounts WHERE pub_key = $1`
	var acc models.Account
	err := q.db.QueryRow(ctx, query, pubKey).Scan(&acc.ID, &acc.PubKey, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &acc, nil
}

func (q *Queries) lockAccount(ctx context.Context, id int64) (bool, error) {
	var locked int64
	err := q.db.QueryRow(ctx, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
