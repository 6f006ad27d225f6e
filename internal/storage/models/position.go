// internal/storage/models/position.go
package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidRow marks a stored record that cannot be turned into a Position.
var ErrInvalidRow = errors.New("invalid position row")

// CloseReason explains why a position was closed.
type CloseReason string

const (
	ReasonTakeProfit CloseReason = "take_profit"
	ReasonTimeExit   CloseReason = "time_exit"
	ReasonStopLoss   CloseReason = "stop_loss"
)

// Position is one purchase of a token and, once closed, its sale.
type Position struct {
	ID                     string
	TokenAddress           string
	TokenSymbol            string
	TokenCreationTimestamp *time.Time
	BuyTimestamp           time.Time
	BuyPrice               float64
	BuyAmountSOL           float64
	NumTokensBought        float64
	BuySignature           string

	Closed          bool
	SellTimestamp   *time.Time
	SellAmountSOL   *float64
	SellPrice       *float64
	SOLDelta        *float64
	PercentageDelta *float64
	SellSignature   *string
	CloseReason     *CloseReason
}

// NewPosition returns an open position with a fresh ID.
func NewPosition(address, symbol string, created *time.Time, boughtAt time.Time, price, amountSOL, tokens float64, signature string) *Position {
	return &Position{
		ID:                     uuid.NewString(),
		TokenAddress:           address,
		TokenSymbol:            symbol,
		TokenCreationTimestamp: created,
		BuyTimestamp:           boughtAt.UTC(),
		BuyPrice:               price,
		BuyAmountSOL:           amountSOL,
		NumTokensBought:        tokens,
		BuySignature:           signature,
	}
}

// CloseUpdate is written once when a position is sold.
type CloseUpdate struct {
	SellTimestamp   time.Time
	SellAmountSOL   float64
	SellPrice       float64
	SOLDelta        float64
	PercentageDelta float64
	SellSignature   string
	Reason          CloseReason
}

// PositionRow is a record as read from the store, numeric columns kept as
// text. Invalid collects decode problems the store ran into while scanning.
type PositionRow struct {
	ID                     string
	TokenAddress           string
	TokenSymbol            string
	TokenCreationTimestamp *time.Time
	BuyTimestamp           *time.Time
	BuyPrice               *string
	BuyAmountSOL           *string
	NumTokensBought        *string
	BuySignature           string

	Closed          bool
	SellTimestamp   *time.Time
	SellAmountSOL   *string
	SellPrice       *string
	SOLDelta        *string
	PercentageDelta *string
	SellSignature   *string
	CloseReason     *string

	Invalid []string
}

// Parse validates the row and converts it to a Position.
func (r *PositionRow) Parse() (*Position, error) {
	problems := append([]string(nil), r.Invalid...)

	if r.ID == "" {
		problems = append(problems, "id is empty")
	}
	if r.TokenAddress == "" {
		problems = append(problems, "token_address is empty")
	}
	if r.BuyTimestamp == nil {
		problems = append(problems, "buy_timestamp is missing")
	}

	buyPrice, err := requiredFloat("buy_price", r.BuyPrice)
	if err != nil {
		problems = append(problems, err.Error())
	} else if buyPrice <= 0 {
		problems = append(problems, fmt.Sprintf("buy_price must be positive, got %v", buyPrice))
	}
	buyAmount, err := requiredFloat("buy_amount_sol", r.BuyAmountSOL)
	if err != nil {
		problems = append(problems, err.Error())
	}

	var tokens float64
	if r.NumTokensBought != nil {
		if tokens, err = parseFloat("num_tokens_bought", *r.NumTokensBought); err != nil {
			problems = append(problems, err.Error())
		}
	}

	p := &Position{
		ID:                     r.ID,
		TokenAddress:           r.TokenAddress,
		TokenSymbol:            r.TokenSymbol,
		TokenCreationTimestamp: r.TokenCreationTimestamp,
		BuyPrice:               buyPrice,
		BuyAmountSOL:           buyAmount,
		NumTokensBought:        tokens,
		BuySignature:           r.BuySignature,
		Closed:                 r.Closed,
		SellTimestamp:          r.SellTimestamp,
		SellSignature:          r.SellSignature,
	}
	if r.BuyTimestamp != nil {
		p.BuyTimestamp = *r.BuyTimestamp
	}
	if r.CloseReason != nil {
		reason := CloseReason(*r.CloseReason)
		p.CloseReason = &reason
	}

	optional := []struct {
		name string
		src  *string
		dst  **float64
	}{
		{"sell_amount_sol", r.SellAmountSOL, &p.SellAmountSOL},
		{"sell_price", r.SellPrice, &p.SellPrice},
		{"sol_delta", r.SOLDelta, &p.SOLDelta},
		{"percentage_delta", r.PercentageDelta, &p.PercentageDelta},
	}
	for _, o := range optional {
		if o.src == nil {
			continue
		}
		v, err := parseFloat(o.name, *o.src)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		*o.dst = &v
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w %q: %s", ErrInvalidRow, r.ID, strings.Join(problems, "; "))
	}
	return p, nil
}

func requiredFloat(name string, s *string) (float64, error) {
	if s == nil {
		return 0, fmt.Errorf("%s is missing", name)
	}
	return parseFloat(name, *s)
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", name, s)
	}
	return v, nil
}

// Row converts p back into its stored form. Used by stores that keep
// positions in memory and by tests.
func (p *Position) Row() *PositionRow {
	format := func(v float64) *string {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		return &s
	}
	optional := func(v *float64) *string {
		if v == nil {
			return nil
		}
		return format(*v)
	}
	buy := p.BuyTimestamp
	row := &PositionRow{
		ID:                     p.ID,
		TokenAddress:           p.TokenAddress,
		TokenSymbol:            p.TokenSymbol,
		TokenCreationTimestamp: p.TokenCreationTimestamp,
		BuyTimestamp:           &buy,
		BuyPrice:               format(p.BuyPrice),
		BuyAmountSOL:           format(p.BuyAmountSOL),
		NumTokensBought:        format(p.NumTokensBought),
		BuySignature:           p.BuySignature,
		Closed:                 p.Closed,
		SellTimestamp:          p.SellTimestamp,
		SellAmountSOL:          optional(p.SellAmountSOL),
		SellPrice:              optional(p.SellPrice),
		SOLDelta:               optional(p.SOLDelta),
		PercentageDelta:        optional(p.PercentageDelta),
		SellSignature:          p.SellSignature,
	}
	if p.CloseReason != nil {
		reason := string(*p.CloseReason)
		row.CloseReason = &reason
	}
	return row
}
