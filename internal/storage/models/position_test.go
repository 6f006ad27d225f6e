// internal/storage/models/position_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validRow() *PositionRow {
	buy := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &PositionRow{
		ID:              "pos-1",
		TokenAddress:    "MintA",
		TokenSymbol:     "AAA",
		BuyTimestamp:    &buy,
		BuyPrice:        strPtr("0.0012"),
		BuyAmountSOL:    strPtr("1.00"),
		NumTokensBought: strPtr("1912380.2090"),
		BuySignature:    "sig",
	}
}

func TestPositionRow_Parse(t *testing.T) {
	p, err := validRow().Parse()
	require.NoError(t, err)

	assert.Equal(t, "pos-1", p.ID)
	assert.Equal(t, "MintA", p.TokenAddress)
	assert.InDelta(t, 0.0012, p.BuyPrice, 1e-12)
	assert.InDelta(t, 1.0, p.BuyAmountSOL, 1e-12)
	assert.InDelta(t, 1912380.209, p.NumTokensBought, 1e-6)
	assert.False(t, p.Closed)
	assert.Nil(t, p.SellPrice)
	assert.Nil(t, p.CloseReason)
}

func TestPositionRow_ParseClosed(t *testing.T) {
	row := validRow()
	sold := row.BuyTimestamp.Add(time.Minute)
	row.Closed = true
	row.SellTimestamp = &sold
	row.SellAmountSOL = strPtr("1.025")
	row.SellPrice = strPtr("0.00123")
	row.SOLDelta = strPtr("0.025")
	row.PercentageDelta = strPtr("2.5")
	row.CloseReason = strPtr(string(ReasonTakeProfit))

	p, err := row.Parse()
	require.NoError(t, err)
	require.NotNil(t, p.SellPrice)
	assert.InDelta(t, 0.00123, *p.SellPrice, 1e-12)
	assert.InDelta(t, 2.5, *p.PercentageDelta, 1e-12)
	assert.Equal(t, ReasonTakeProfit, *p.CloseReason)
}

func TestPositionRow_ParseInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *PositionRow)
		want   string
	}{
		{"non numeric price", func(r *PositionRow) { r.BuyPrice = strPtr("abc") }, "buy_price"},
		{"missing price", func(r *PositionRow) { r.BuyPrice = nil }, "buy_price is missing"},
		{"zero price", func(r *PositionRow) { r.BuyPrice = strPtr("0") }, "must be positive"},
		{"missing buy timestamp", func(r *PositionRow) { r.BuyTimestamp = nil }, "buy_timestamp"},
		{"bad sell price", func(r *PositionRow) { r.SellPrice = strPtr("") }, "sell_price"},
		{"store decode problem", func(r *PositionRow) { r.Invalid = []string{"token_creation_timestamp: bad"} }, "token_creation_timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.mutate(row)
			p, err := row.Parse()
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrInvalidRow)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPosition_RowRoundTrip(t *testing.T) {
	created := time.Now().Add(-30 * time.Second).UTC()
	p := NewPosition("MintA", "AAA", &created, time.Now(), 0.5, 0.0001, 1234.5, "sig")
	assert.NotEmpty(t, p.ID)

	back, err := p.Row().Parse()
	require.NoError(t, err)
	assert.Equal(t, p.ID, back.ID)
	assert.Equal(t, p.BuyPrice, back.BuyPrice)
	assert.Equal(t, p.NumTokensBought, back.NumTokensBought)
}
