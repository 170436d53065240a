package database

import (
	"context"
	"fmt"
	"metastor/internal/models"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
	*Queries
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:    pool,
		Queries: New(pool),
	}
}

func (s *Store) ExecTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	q := New(tx)
	err = fn(q)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) GetPool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ActivateSubscription makes subID the single active subscription of the
// account. The account row is locked for the duration so concurrent
// activations for one account are serialized. expectedActive is the id of
// the active row the caller observed before confirming (0 for none); when
// another activation replaced it in the meantime ErrActiveSubscriptionChanged
// is returned and subID stays quoted.
func (s *Store) ActivateSubscription(ctx context.Context, accountID, subID int64, signature string, start time.Time, expectedActive int64) (*models.Subscription, bool, error) {
	var (
		activated *models.Subscription
		changed   bool
	)
	err := s.ExecTx(ctx, func(q *Queries) error {
		found, err := q.lockAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if !found {
			return ErrSubscriptionNotFound
		}

		sub, err := q.getSubscriptionForUpdate(ctx, subID, accountID)
		if err != nil {
			return err
		}
		if sub == nil {
			return ErrSubscriptionNotFound
		}
		if sub.TransactionSignature != nil {
			if *sub.TransactionSignature == signature && sub.Active {
				activated = sub
				return nil
			}
			return ErrSubscriptionConfirmed
		}

		currentActive, err := q.activeSubscriptionID(ctx, accountID)
		if err != nil {
			return err
		}
		if currentActive != expectedActive {
			return ErrActiveSubscriptionChanged
		}

		if err := q.deactivateSubscriptions(ctx, accountID); err != nil {
			return err
		}
		activated, err = q.markSubscriptionActive(ctx, subID, signature, start)
		if err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return activated, changed, nil
}
