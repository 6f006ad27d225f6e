// internal/gmgn/types.go
package gmgn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TokenSummary is one entry of the ranking list.
type TokenSummary struct {
	Address               string `json:"address"`
	Symbol                string `json:"symbol"`
	PoolCreationTimestamp *int64 `json:"pool_creation_timestamp"`
	Price                 Float  `json:"price"`
}

// CreatedAt returns the pool creation time, if the service reported one.
func (t TokenSummary) CreatedAt() (time.Time, bool) {
	if t.PoolCreationTimestamp == nil || *t.PoolCreationTimestamp <= 0 {
		return time.Time{}, false
	}
	return time.Unix(*t.PoolCreationTimestamp, 0).UTC(), true
}

// TrendQuery selects the ranking list.
type TrendQuery struct {
	OrderBy      string
	Direction    string
	Limit        int
	MinLiquidity float64
	MinMarketCap float64
}

// DefaultTrendQuery returns the newest-first query used by the scanner.
func DefaultTrendQuery() TrendQuery {
	return TrendQuery{
		OrderBy:      "open_timestamp",
		Direction:    "desc",
		Limit:        20,
		MinLiquidity: 50000,
		MinMarketCap: 1000000,
	}
}

type rankResponse struct {
	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
	Data    *struct {
		Rank []TokenSummary `json:"rank"`
	} `json:"data"`
}

type tokenInfoRequest struct {
	Chain     string   `json:"chain"`
	Addresses []string `json:"addresses"`
}

type tokenInfoResponse struct {
	Code    int         `json:"code"`
	Msg     string      `json:"msg"`
	Message string      `json:"message"`
	Reason  string      `json:"reason"`
	Data    []tokenInfo `json:"data"`
}

type tokenInfo struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	Price   *struct {
		Price Float `json:"price"`
	} `json:"price"`
}

// Float decodes numbers that the service sends either as JSON numbers or as
// strings.
type Float float64

func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid float %q: %w", s, err)
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}
