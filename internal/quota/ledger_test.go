package quota

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"metastor/internal/apperr"
	"metastor/internal/models"
	"metastor/internal/plans"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedUsage struct {
	used uint64
	err  error
}

func (f fixedUsage) SumActiveFileSizes(context.Context, int64) (uint64, error) {
	return f.used, f.err
}

func TestAdmit_FreeTierScenario(t *testing.T) {
	free := plans.GetPlan(models.TierFree)
	ledger := NewLedger(fixedUsage{used: 99 * plans.MiB})

	decision, err := ledger.Admit(context.Background(), 1, 2*plans.MiB, free)
	require.Equal(t, Deny, decision)

	var exceeded *ExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, uint64(99*plans.MiB), exceeded.CurrentUsage)
	assert.Equal(t, uint64(100*plans.MiB), exceeded.Limit)
	assert.Equal(t, uint64(2*plans.MiB), exceeded.FileSize)
	assert.Equal(t, models.TierFree, exceeded.Tier)
	assert.Equal(t, apperr.KindQuotaExceeded, apperr.KindOf(err))

	decision, err = ledger.Admit(context.Background(), 1, 1*plans.MiB, free)
	require.NoError(t, err)
	assert.Equal(t, Allow, decision)
}

func TestAdmit_Boundaries(t *testing.T) {
	plan := plans.Plan{Tier: models.TierBasic, StorageLimitBytes: 1000}

	tests := []struct {
		name     string
		used     uint64
		incoming uint64
		want     Decision
	}{
		{"empty", 0, 0, Allow},
		{"exactly at limit", 400, 600, Allow},
		{"one over", 400, 601, Deny},
		{"already over", 1200, 0, Deny},
		{"huge incoming", 1, ^uint64(0), Deny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger(fixedUsage{used: tt.used})
			got, _ := ledger.Admit(context.Background(), 7, tt.incoming, plan)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdmit_SourceError(t *testing.T) {
	ledger := NewLedger(fixedUsage{err: errors.New("db down")})
	decision, err := ledger.Admit(context.Background(), 1, 1, plans.GetPlan(models.TierFree))
	assert.Equal(t, Deny, decision)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(10, 0))
	assert.Equal(t, 50.0, Percentage(50, 100))
	assert.Equal(t, 100.0, Percentage(100, 100))
	assert.Equal(t, 100.0, Percentage(300, 100))
	assert.Equal(t, 0.0, Percentage(0, 100))
}

func TestLock_SerializesPerAccount(t *testing.T) {
	ledger := NewLedger(fixedUsage{})

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := ledger.Lock(42)
			defer unlock()
			n := inside.Add(1)
			if n > maxInside.Load() {
				maxInside.Store(n)
			}
			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Empty(t, ledger.locks)
}

func TestLock_IndependentAccounts(t *testing.T) {
	ledger := NewLedger(fixedUsage{})

	unlockA := ledger.Lock(1)
	done := make(chan struct{})
	go func() {
		unlock := ledger.Lock(2)
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on account 2 blocked behind account 1")
	}
	unlockA()
}
