// internal/storage/postgres/postgres_test.go
package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rovshanmuradov/trend-sniper/internal/storage"
	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestStore connects to TEST_POSTGRES_URL; the test is skipped without it.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_URL is not set")
	}
	ctx := context.Background()
	s, err := New(ctx, dsn, "", zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestStore_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	address := "Mint" + uuid.NewString()[:8]

	_, err := s.GetByTokenAddress(ctx, address)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	p := models.NewPosition(address, "TST", nil, time.Now(), 0.0012, 0.0001, 1912380.209, "sig")
	require.NoError(t, s.Insert(ctx, p))

	dup := models.NewPosition(address, "TST", nil, time.Now(), 0.0013, 0.0001, 1, "sig2")
	assert.ErrorIs(t, s.Insert(ctx, dup), storage.ErrDuplicate)

	row, err := s.GetByTokenAddress(ctx, address)
	require.NoError(t, err)
	got, err := row.Parse()
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.InDelta(t, 0.0012, got.BuyPrice, 1e-12)

	upd := models.CloseUpdate{
		SellTimestamp: time.Now(), SellAmountSOL: 0.0001025, SellPrice: 0.00123,
		SOLDelta: 0.0000025, PercentageDelta: 2.5, SellSignature: "sell", Reason: models.ReasonTakeProfit,
	}
	require.NoError(t, s.ClosePosition(ctx, p.ID, upd))
	assert.ErrorIs(t, s.ClosePosition(ctx, p.ID, upd), storage.ErrNotUpdated)

	open, err := s.ListOpen(ctx)
	require.NoError(t, err)
	for _, r := range open {
		assert.NotEqual(t, p.ID, r.ID)
	}
}

func TestStore_MigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}
