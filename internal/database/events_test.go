package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventJournal(t *testing.T) {
	ctx := context.Background()
	acc := createTestAccount(t)

	first, err := testStore.LogEvent(ctx, acc.ID, "file.uploaded", map[string]string{"id": "abc"})
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	require.Equal(t, "file.uploaded", first.EventType)

	_, err = testStore.LogEvent(ctx, acc.ID, "subscription.activated", map[string]int{"id": 7})
	require.NoError(t, err)

	events, err := testStore.GetEventsSince(ctx, acc.ID, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, first.ID, events[0].ID)

	events, err = testStore.GetEventsSince(ctx, acc.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "subscription.activated", events[0].EventType)

	other := createTestAccount(t)
	events, err = testStore.GetEventsSince(ctx, other.ID, 0)
	require.NoError(t, err)
	require.Empty(t, events)
}
