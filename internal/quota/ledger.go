// Package quota accounts storage used against a plan limit and admits or
// denies uploads.
package quota

import (
	"context"
	"fmt"
	"sync"

	"metastor/internal/apperr"
	"metastor/internal/models"
	"metastor/internal/plans"
)

// UsageSource sums the sizes of an account's non-deleted files.
type UsageSource interface {
	SumActiveFileSizes(ctx context.Context, accountID int64) (uint64, error)
}

type Decision int

const (
	Allow Decision = iota
	Deny
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// ExceededError is returned by Admit on denial.
type ExceededError struct {
	CurrentUsage uint64
	Limit        uint64
	FileSize     uint64
	Tier         models.Tier
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("storage limit exceeded: %s used of %s, upload of %s",
		plans.FormatBytes(e.CurrentUsage), plans.FormatBytes(e.Limit), plans.FormatBytes(e.FileSize))
}

func (e *ExceededError) Unwrap() error {
	return apperr.QuotaExceeded(e.Error())
}

type Ledger struct {
	source UsageSource

	mu    sync.Mutex
	locks map[int64]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

func NewLedger(source UsageSource) *Ledger {
	return &Ledger{source: source, locks: make(map[int64]*accountLock)}
}

func (l *Ledger) Usage(ctx context.Context, accountID int64) (uint64, error) {
	used, err := l.source.SumActiveFileSizes(ctx, accountID)
	if err != nil {
		return 0, apperr.Internal("failed to compute storage usage", err)
	}
	return used, nil
}

// Admit compares usage+incoming against the plan limit. Reaching the limit
// exactly is allowed.
func (l *Ledger) Admit(ctx context.Context, accountID int64, incoming uint64, plan plans.Plan) (Decision, error) {
	used, err := l.Usage(ctx, accountID)
	if err != nil {
		return Deny, err
	}
	return Evaluate(used, incoming, plan)
}

// Evaluate is Admit for a usage figure the caller already holds.
func Evaluate(used, incoming uint64, plan plans.Plan) (Decision, error) {
	if used > plan.StorageLimitBytes || incoming > plan.StorageLimitBytes-used {
		return Deny, &ExceededError{
			CurrentUsage: used,
			Limit:        plan.StorageLimitBytes,
			FileSize:     incoming,
			Tier:         plan.Tier,
		}
	}
	return Allow, nil
}

// Lock serializes admission and the following write for one account. The
// returned func releases it.
func (l *Ledger) Lock(accountID int64) func() {
	l.mu.Lock()
	al, ok := l.locks[accountID]
	if !ok {
		al = &accountLock{}
		l.locks[accountID] = al
	}
	al.refs++
	l.mu.Unlock()

	al.mu.Lock()
	return func() {
		al.mu.Unlock()
		l.mu.Lock()
		al.refs--
		if al.refs == 0 {
			delete(l.locks, accountID)
		}
		l.mu.Unlock()
	}
}

// Percentage returns used/limit as 0..100; a zero limit yields 0.
func Percentage(used, limit uint64) float64 {
	if limit == 0 {
		return 0
	}
	p := float64(used) / float64(limit) * 100
	if p > 100 {
		return 100
	}
	return p
}
