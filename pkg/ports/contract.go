package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/asfe/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunHistoryStoreContract runs a suite of tests to verify that a HistoryStore
// implementation adheres to the defined interface contract.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	network := "AlchemicalNetwork-contract" + time.Now().Format("20060102150405") + "-org-camp-proj"

	t.Run("Last Non-Existent", func(t *testing.T) {
		_, err := store.Last(ctx, "missing-"+network)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Record and Last", func(t *testing.T) {
		first := domain.GatherRun{
			ID:        "run-1",
			Network:   network,
			Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Resolved:  []string{"Transformation-a"},
			Absent:    1,
		}
		second := first
		second.ID = "run-2"
		second.Timestamp = first.Timestamp.Add(time.Hour)
		second.Resolved = []string{"Transformation-a", "Transformation-b"}
		second.Absent = 0

		require.NoError(t, store.Record(ctx, first))
		require.NoError(t, store.Record(ctx, second))

		last, err := store.Last(ctx, network)
		require.NoError(t, err)
		assert.Equal(t, "run-2", last.ID)
		assert.Equal(t, second.Resolved, last.Resolved)
		assert.True(t, second.Timestamp.Equal(last.Timestamp))
	})

	t.Run("Networks Are Isolated", func(t *testing.T) {
		other := "other-" + network
		require.NoError(t, store.Record(ctx, domain.GatherRun{ID: "run-x", Network: other}))

		last, err := store.Last(ctx, network)
		require.NoError(t, err)
		assert.Equal(t, "run-2", last.ID)
	})
}
