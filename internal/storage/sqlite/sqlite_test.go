// internal/storage/sqlite/sqlite_test.go
package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rovshanmuradov/trend-sniper/internal/storage"
	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:", zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newPosition(address string, boughtAt time.Time) *models.Position {
	created := boughtAt.Add(-30 * time.Second)
	return models.NewPosition(address, "SYM", &created, boughtAt, 0.0012, 0.0001, 1912380.209, "buy-sig")
}

func TestInsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetByTokenAddress(ctx, "MintA")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	p := newPosition("MintA", time.Now())
	require.NoError(t, s.Insert(ctx, p))

	row, err := s.GetByTokenAddress(ctx, "MintA")
	require.NoError(t, err)
	got, err := row.Parse()
	require.NoError(t, err)

	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "SYM", got.TokenSymbol)
	assert.InDelta(t, 0.0012, got.BuyPrice, 1e-12)
	assert.InDelta(t, 0.0001, got.BuyAmountSOL, 1e-12)
	assert.InDelta(t, 1912380.209, got.NumTokensBought, 1e-6)
	assert.Equal(t, "buy-sig", got.BuySignature)
	assert.WithinDuration(t, p.BuyTimestamp, got.BuyTimestamp, time.Millisecond)
	require.NotNil(t, got.TokenCreationTimestamp)
	assert.WithinDuration(t, *p.TokenCreationTimestamp, *got.TokenCreationTimestamp, time.Millisecond)
	assert.False(t, got.Closed)
}

func TestInsert_DuplicateOpenPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, newPosition("MintA", time.Now())))
	assert.ErrorIs(t, s.Insert(ctx, newPosition("MintA", time.Now())), storage.ErrDuplicate)

	rows, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestInsert_PrimaryKeyConflictIsNotDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := newPosition("MintA", time.Now())
	require.NoError(t, s.Insert(ctx, first))

	second := newPosition("MintB", time.Now())
	second.ID = first.ID
	err := s.Insert(ctx, second)
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrDuplicate)
}

func TestClosePosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := newPosition("MintA", time.Now().Add(-time.Minute))
	require.NoError(t, s.Insert(ctx, p))

	upd := models.CloseUpdate{
		SellTimestamp:   time.Now(),
		SellAmountSOL:   0.000103,
		SellPrice:       0.00124,
		SOLDelta:        0.000003,
		PercentageDelta: 3,
		SellSignature:   "sell-sig",
		Reason:          models.ReasonTakeProfit,
	}
	require.NoError(t, s.ClosePosition(ctx, p.ID, upd))
	assert.ErrorIs(t, s.ClosePosition(ctx, p.ID, upd), storage.ErrNotUpdated)
	assert.ErrorIs(t, s.ClosePosition(ctx, "missing", upd), storage.ErrNotUpdated)

	open, err := s.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	row, err := s.GetByTokenAddress(ctx, "MintA")
	require.NoError(t, err)
	got, err := row.Parse()
	require.NoError(t, err)
	assert.True(t, got.Closed)
	require.NotNil(t, got.SellPrice)
	assert.InDelta(t, 0.00124, *got.SellPrice, 1e-12)
	assert.InDelta(t, 3.0, *got.PercentageDelta, 1e-12)
	assert.Equal(t, models.ReasonTakeProfit, *got.CloseReason)
	assert.Equal(t, "sell-sig", *got.SellSignature)

	// A closed position does not block a new open one for the same token.
	require.NoError(t, s.Insert(ctx, newPosition("MintA", time.Now())))
}

func TestListOpen_Order(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Insert(ctx, newPosition("MintB", now)))
	require.NoError(t, s.Insert(ctx, newPosition("MintA", now.Add(-time.Minute))))

	open, err := s.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "MintA", open[0].TokenAddress)
	assert.Equal(t, "MintB", open[1].TokenAddress)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MintB", all[0].TokenAddress)
}

func TestListOpen_OrderWithinSecond(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	earlier := time.Date(2025, 3, 1, 12, 0, 5, 0, time.UTC)
	later := earlier.Add(500 * time.Millisecond)

	require.NoError(t, s.Insert(ctx, newPosition("Later", later)))
	require.NoError(t, s.Insert(ctx, newPosition("Earlier", earlier)))

	open, err := s.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "Earlier", open[0].TokenAddress)
	assert.Equal(t, "Later", open[1].TokenAddress)

	got, err := open[0].Parse()
	require.NoError(t, err)
	assert.True(t, earlier.Equal(got.BuyTimestamp))
}

func TestCorruptRowSurfacesAsInvalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, newPosition("MintA", time.Now())))
	_, err := s.db.ExecContext(ctx, `UPDATE positions SET buy_timestamp = 'yesterday'`)
	require.NoError(t, err)

	rows, err := s.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = rows[0].Parse()
	assert.ErrorIs(t, err, models.ErrInvalidRow)
	assert.Contains(t, err.Error(), "buy_timestamp")
}

func TestFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.db")
	s, err := New(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, s.Insert(context.Background(), newPosition("MintA", time.Now())))
	require.NoError(t, s.Close())

	s, err = New(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer s.Close()
	rows, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, s.Ping(context.Background()))
}
