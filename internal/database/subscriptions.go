package database

import (
	"context"
	"errors"
	"metastor/internal/models"
	"time"

	"github.com/jackc/pgx/v5"
)

const subscriptionColumns = `id, account_id, tier, period, amount, active, transaction_signature, start_date, end_date, created_at`

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	var sub models.Subscription
	err := row.Scan(
		&sub.ID,
		&sub.AccountID,
		&sub.Tier,
		&sub.Period,
		&sub.Amount,
		&sub.Active,
		&sub.TransactionSignature,
		&sub.StartDate,
		&sub.EndDate,
		&sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (q *Queries) CreateSubscription(ctx context.Context, arg *models.Subscription) (*models.Subscription, error) {
	query := `
		INSERT INTO subscriptions (account_id, tier, period, amount, active, start_date, end_date)
		VALUES ($1, $2, $3, $4, false, $5, $6)
		RETURNING ` + subscriptionColumns
	sub, err := scanSubscription(q.db.QueryRow(ctx, query,
		arg.AccountID,
		arg.Tier.String(),
		arg.Period.String(),
		arg.Amount,
		arg.StartDate,
		arg.EndDate,
	))
	if pgErrCode(err) == foreignKeyViolation {
		return nil, ErrAccountNotFound
	}
	return sub, err
}

func (q *Queries) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	sub, err := scanSubscription(q.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

func (q *Queries) LatestActiveSubscription(ctx context.Context, accountID int64) (*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE account_id = $1 AND active
		ORDER BY created_at DESC
		LIMIT 1
	`
	sub, err := scanSubscription(q.db.QueryRow(ctx, query, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

// ListPaidSubscriptions returns rows that carry a transaction signature,
// newest first.
func (q *Queries) ListPaidSubscriptions(ctx context.Context, accountID int64, limit int) ([]models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE account_id = $1 AND transaction_signature IS NOT NULL
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := q.db.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []models.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (q *Queries) CountActiveSubscriptions(ctx context.Context, accountID int64) (int, error) {
	var n int
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM subscriptions WHERE account_id = $1 AND active`, accountID).Scan(&n)
	return n, err
}

func (q *Queries) getSubscriptionForUpdate(ctx context.Context, id, accountID int64) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1 AND account_id = $2 FOR UPDATE`
	sub, err := scanSubscription(q.db.QueryRow(ctx, query, id, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

// activeSubscriptionID returns the id of the account's active row, or 0.
func (q *Queries) activeSubscriptionID(ctx context.Context, accountID int64) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `SELECT id FROM subscriptions WHERE account_id = $1 AND active`, accountID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return id, err
}

func (q *Queries) deactivateSubscriptions(ctx context.Context, accountID int64) error {
	_, err := q.db.Exec(ctx, `UPDATE subscriptions SET active = false WHERE account_id = $1 AND active`, accountID)
	return err
}

func (q *Queries) markSubscriptionActive(ctx context.Context, id int64, signature string, start time.Time) (*models.Subscription, error) {
	query := `
		UPDATE subscriptions
		SET active = true, transaction_signature = $2, start_date = $3
		WHERE id = $1
		RETURNING ` + subscriptionColumns
	sub, err := scanSubscription(q.db.QueryRow(ctx, query, id, signature, start))
	if err != nil {
		if pgErrCode(err) == uniqueViolation {
			return nil, ErrSignatureAlreadyUsed
		}
		return nil, err
	}
	return sub, nil
}
