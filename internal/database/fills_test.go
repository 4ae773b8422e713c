package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalyst-trader/internal/model"
)

func TestFills(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	ctx := context.Background()

	t.Run("create and list newest first", func(t *testing.T) {
		testDB.TruncateFills(t)
		base := time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)

		buy := model.Fill{Ts: base, Symbol: "ABC", Side: model.SideBuy, Px: 2.01, Qty: 2500}
		sell := model.Fill{Ts: base.Add(10 * time.Minute), Symbol: "ABC", Side: model.SideSell, Px: 2.4567, Qty: 2500, Reason: "PROFIT_TARGET"}

		id1, err := testDB.CreateFill(ctx, buy)
		require.NoError(t, err)
		id2, err := testDB.CreateFill(ctx, sell)
		require.NoError(t, err)
		assert.Greater(t, id2, id1)

		fills, err := testDB.ListFills(ctx, 10)
		require.NoError(t, err)
		require.Len(t, fills, 2)

		assert.Equal(t, model.SideSell, fills[0].Side)
		assert.Equal(t, "PROFIT_TARGET", fills[0].Reason)
		assert.InDelta(t, 2.4567, fills[0].Px, 1e-9)
		assert.True(t, fills[0].Ts.Equal(sell.Ts))
		assert.Equal(t, model.SideBuy, fills[1].Side)
		assert.InDelta(t, 2500, fills[1].Qty, 1e-9)
	})

	t.Run("limit", func(t *testing.T) {
		testDB.TruncateFills(t)
		for i := 0; i < 5; i++ {
			_, err := testDB.CreateFill(ctx, model.Fill{
				Ts: time.Now().Add(time.Duration(i) * time.Second), Symbol: "XYZ", Side: model.SideBuy, Px: 1, Qty: 1,
			})
			require.NoError(t, err)
		}

		fills, err := testDB.ListFills(ctx, 3)
		require.NoError(t, err)
		assert.Len(t, fills, 3)
	})

	t.Run("rejects invalid side", func(t *testing.T) {
		_, err := testDB.CreateFill(ctx, model.Fill{Ts: time.Now(), Symbol: "XYZ", Side: "HOLD", Px: 1, Qty: 1})
		assert.Error(t, err)
	})

	t.Run("fills table exists", func(t *testing.T) {
		var exists bool
		err := testDB.conn.QueryRow(`
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = 'fills'
			)
		`).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
