package database

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"metastor/internal/models"

	"github.com/stretchr/testify/require"
)

var keySeq atomic.Int64

// createTestAccount inserts an account with a unique fake key.
func createTestAccount(t *testing.T) *models.Account {
	t.Helper()
	acc, err := testStore.UpsertAccount(context.Background(), fmt.Sprintf("test-key-%s-%d", t.Name(), keySeq.Add(1)))
	require.NoError(t, err)
	require.NotZero(t, acc.ID)
	return acc
}

func TestUpsertAccount_Idempotent(t *testing.T) {
	ctx := context.Background()
	pubKey := "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"

	first, err := testStore.UpsertAccount(ctx, pubKey)
	require.NoError(t, err)
	second, err := testStore.UpsertAccount(ctx, pubKey)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, pubKey, second.PubKey)
	require.WithinDuration(t, first.CreatedAt, second.CreatedAt, 0)

	var n int
	err = testStore.pool.QueryRow(ctx, `SELECT count(*) FROM accounts WHERE pub_key = $1`, pubKey).Scan(&n)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestGetAccount(t *testing.T) {
	ctx := context.Background()
	acc := createTestAccount(t)

	byID, err := testStore.GetAccountByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, acc.PubKey, byID.PubKey)

	byKey, err := testStore.GetAccountByPubKey(ctx, acc.PubKey)
	require.NoError(t, err)
	require.Equal(t, acc.ID, byKey.ID)

	missing, err := testStore.GetAccountByID(ctx, -1)
	require.NoError(t, err)
	require.Nil(t, missing)

	missing, err = testStore.GetAccountByPubKey(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}
