// internal/scanner/scanner.go
package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/rovshanmuradov/trend-sniper/internal/gmgn"
	"go.uber.org/zap"
)

// TrendSource provides the ranking list.
type TrendSource interface {
	Trending(ctx context.Context, q gmgn.TrendQuery) ([]gmgn.TokenSummary, error)
}

// Scanner fetches trending tokens and keeps only the freshly created ones.
type Scanner struct {
	source TrendSource
	query  gmgn.TrendQuery
	logger *zap.Logger
}

func New(source TrendSource, query gmgn.TrendQuery, logger *zap.Logger) *Scanner {
	return &Scanner{
		source: source,
		query:  query,
		logger: logger.Named("scanner"),
	}
}

// FetchTrending returns the current ranking in service order.
func (s *Scanner) FetchTrending(ctx context.Context) ([]gmgn.TokenSummary, error) {
	tokens, err := s.source.Trending(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("fetch trending tokens: %w", err)
	}
	s.logger.Debug("trending tokens fetched", zap.Int("count", len(tokens)))
	return tokens, nil
}

// FilterNew keeps tokens whose age at now is strictly below maxAge. Tokens
// without a creation timestamp are dropped. Order is preserved.
func (s *Scanner) FilterNew(tokens []gmgn.TokenSummary, now time.Time, maxAge time.Duration) []gmgn.TokenSummary {
	fresh := make([]gmgn.TokenSummary, 0, len(tokens))
	for _, token := range tokens {
		created, ok := token.CreatedAt()
		if !ok {
			s.logger.Debug("token has no creation timestamp, skipping",
				zap.String("address", token.Address),
				zap.String("symbol", token.Symbol))
			continue
		}
		if now.Sub(created) < maxAge {
			fresh = append(fresh, token)
		}
	}
	return fresh
}

// Scan combines FetchTrending and FilterNew.
func (s *Scanner) Scan(ctx context.Context, now time.Time, maxAge time.Duration) ([]gmgn.TokenSummary, error) {
	tokens, err := s.FetchTrending(ctx)
	if err != nil {
		return nil, err
	}
	fresh := s.FilterNew(tokens, now, maxAge)
	s.logger.Info("scan finished",
		zap.Int("trending", len(tokens)),
		zap.Int("fresh", len(fresh)))
	return fresh, nil
}
