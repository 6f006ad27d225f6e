// internal/gmgn/client.go
package gmgn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	rankPath      = "/defi/quotation/v1/rank/sol/swaps/1m"
	tokenInfoPath = "/api/v1/mutil_window_token_info"
	chainSolana   = "sol"
)

var (
	// ErrMalformedResponse is returned when the body cannot be decoded or lacks
	// the expected fields.
	ErrMalformedResponse = errors.New("malformed gmgn response")
	// ErrAPIFailure is returned when the service answers with a non-zero code.
	ErrAPIFailure = errors.New("gmgn api failure")
)

// Config describes how to reach the service. Cookie and client identifiers
// rotate, so they come from configuration.
type Config struct {
	BaseURL   string
	Cookie    string
	DeviceID  string
	ClientID  string
	UserAgent string
	Timeout   time.Duration
	RateLimit float64 // requests per second
}

// Client serves both the ranking and the price lookups.
type Client struct {
	http    *http.Client
	cfg     Config
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a client. Zero Timeout and RateLimit fall back to 10s and
// 5 req/s.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:  logger.Named("gmgn"),
	}
}

// Trending fetches the ranking list selected by q.
func (c *Client) Trending(ctx context.Context, q TrendQuery) ([]TokenSummary, error) {
	params := c.baseParams()
	params.Set("orderby", q.OrderBy)
	params.Set("direction", q.Direction)
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("min_liquidity", strconv.FormatFloat(q.MinLiquidity, 'f', -1, 64))
	params.Set("min_marketcap", strconv.FormatFloat(q.MinMarketCap, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+rankPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, c.cfg.BaseURL+"/?chain=sol&tab=trending")

	var response rankResponse
	if err := c.do(req, &response); err != nil {
		return nil, err
	}
	if response.Code != 0 {
		return nil, fmt.Errorf("%w: code %d: %s", ErrAPIFailure, response.Code, firstNonEmpty(response.Msg, response.Message))
	}
	if response.Data == nil {
		return nil, fmt.Errorf("%w: missing data.rank", ErrMalformedResponse)
	}
	return response.Data.Rank, nil
}

// TokenPrice returns the current price of the token at address.
func (c *Client) TokenPrice(ctx context.Context, address string) (float64, error) {
	body, err := json.Marshal(tokenInfoRequest{Chain: chainSolana, Addresses: []string{address}})
	if err != nil {
		return 0, fmt.Errorf("marshal body: %w", err)
	}

	endpoint := c.cfg.BaseURL + tokenInfoPath + "?" + c.baseParams().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, c.cfg.BaseURL+"/sol/token/"+address)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", c.cfg.BaseURL)

	var response tokenInfoResponse
	if err := c.do(req, &response); err != nil {
		return 0, err
	}
	if response.Code != 0 {
		return 0, fmt.Errorf("%w: code %d: %s", ErrAPIFailure, response.Code,
			firstNonEmpty(response.Msg, response.Message, response.Reason))
	}
	if len(response.Data) == 0 {
		return 0, fmt.Errorf("%w: no data for %s", ErrMalformedResponse, address)
	}

	info := response.Data[0]
	for _, d := range response.Data {
		if d.Address == address {
			info = d
			break
		}
	}
	if info.Price == nil || info.Price.Price <= 0 {
		return 0, fmt.Errorf("%w: missing price for %s", ErrMalformedResponse, address)
	}
	return float64(info.Price.Price), nil
}

// do executes the request with rate limiting and decodes a 200 JSON body.
func (c *Client) do(req *http.Request, out interface{}) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request completed",
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) baseParams() url.Values {
	params := url.Values{}
	if c.cfg.DeviceID != "" {
		params.Set("device_id", c.cfg.DeviceID)
	}
	if c.cfg.ClientID != "" {
		params.Set("client_id", c.cfg.ClientID)
	}
	params.Set("from_app", "gmgn")
	params.Set("app_lang", "en")
	return params
}

func (c *Client) setHeaders(req *http.Request, referer string) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", referer)
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.Cookie != "" {
		req.Header.Set("Cookie", c.cfg.Cookie)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
