// =============================
// File: internal/dex/utils.go
// =============================
package dex

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// LamportsFromSOL converts SOL to lamports, truncating any fraction of a
// lamport. Negative input yields zero.
func LamportsFromSOL(sol float64) uint64 {
	return toRaw(sol, SOLDecimals)
}

// SOLFromLamports converts lamports back to SOL.
func SOLFromLamports(lamports uint64) float64 {
	return fromRaw(lamports, SOLDecimals)
}

// TokensFromRaw converts raw token units to a human amount.
func TokensFromRaw(raw uint64, decimals int32) float64 {
	return fromRaw(raw, decimals)
}

// RawFromTokens converts a human token amount to raw units, truncating.
func RawFromTokens(amount float64, decimals int32) uint64 {
	return toRaw(amount, decimals)
}

func toRaw(amount float64, decimals int32) uint64 {
	d := decimal.NewFromFloat(amount)
	if !d.IsPositive() {
		return 0
	}
	return uint64(d.Shift(decimals).IntPart())
}

func fromRaw(raw uint64, decimals int32) float64 {
	f, _ := decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -decimals).Float64()
	return f
}
