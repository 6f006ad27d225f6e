// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rovshanmuradov/trend-sniper/internal/storage"
	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
	"go.uber.org/zap"
)

const migrationLockID = 101

const schema = `
CREATE TABLE IF NOT EXISTS positions (
    id                       TEXT PRIMARY KEY,
    token_address            TEXT NOT NULL,
    token_symbol             TEXT NOT NULL DEFAULT '',
    token_creation_timestamp TIMESTAMPTZ,
    buy_timestamp            TIMESTAMPTZ NOT NULL,
    buy_price                DOUBLE PRECISION NOT NULL,
    buy_amount_sol           DOUBLE PRECISION NOT NULL,
    num_tokens_bought        DOUBLE PRECISION,
    buy_signature            TEXT NOT NULL DEFAULT '',
    position_closed          BOOLEAN NOT NULL DEFAULT FALSE,
    sell_timestamp           TIMESTAMPTZ,
    sell_amount_sol          DOUBLE PRECISION,
    sell_price               DOUBLE PRECISION,
    sol_delta                DOUBLE PRECISION,
    percentage_delta         DOUBLE PRECISION,
    sell_signature           TEXT,
    close_reason             TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS positions_open_token_idx
    ON positions (token_address) WHERE NOT position_closed;
CREATE INDEX IF NOT EXISTS positions_buy_timestamp_idx
    ON positions (buy_timestamp DESC);
`

const selectColumns = `
    id, token_address, token_symbol, token_creation_timestamp, buy_timestamp,
    buy_price::text, buy_amount_sol::text, num_tokens_bought::text, buy_signature,
    position_closed, sell_timestamp, sell_amount_sol::text, sell_price::text,
    sol_delta::text, percentage_delta::text, sell_signature, close_reason`

// Store реализует storage.Store поверх PostgreSQL (pgx).
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// zapTraceLogger пишет трассировку запросов pgx в zap.
type zapTraceLogger struct {
	logger *zap.Logger
}

func (l *zapTraceLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	fields := make([]zap.Field, 0, len(data))
	for k, v := range data {
		fields = append(fields, zap.Any(k, v))
	}
	switch level {
	case tracelog.LogLevelError:
		l.logger.Error(msg, fields...)
	case tracelog.LogLevelWarn:
		l.logger.Warn(msg, fields...)
	case tracelog.LogLevelInfo:
		l.logger.Info(msg, fields...)
	default:
		l.logger.Debug(msg, fields...)
	}
}

// New открывает пул соединений. Непустой password заменяет пароль из dsn.
func New(ctx context.Context, dsn, password string, logger *zap.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if password != "" {
		cfg.ConnConfig.Password = password
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = time.Hour
	cfg.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   &zapTraceLogger{logger: logger.Named("pgx")},
		LogLevel: tracelog.LogLevelWarn,
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Store{pool: pool, logger: logger.Named("postgres")}, nil
}

// Migrate создаёт таблицу и индексы под advisory-блокировкой.
func (s *Store) Migrate(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	var lockObtained bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", migrationLockID).Scan(&lockObtained); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !lockObtained {
		return errors.New("another migration is in progress")
	}
	defer func() {
		if _, err := conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			s.logger.Warn("failed to release migration lock", zap.Error(err))
		}
	}()

	if _, err := conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) GetByTokenAddress(ctx context.Context, address string) (*models.PositionRow, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM positions WHERE token_address = $1
		 ORDER BY buy_timestamp DESC LIMIT 1`, address)
	r, err := scanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get position %s: %w", address, err)
	}
	return r, nil
}

func (s *Store) Insert(ctx context.Context, p *models.Position) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO positions (
			id, token_address, token_symbol, token_creation_timestamp, buy_timestamp,
			buy_price, buy_amount_sol, num_tokens_bought, buy_signature, position_closed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
		ON CONFLICT (token_address) WHERE NOT position_closed DO NOTHING`,
		p.ID, p.TokenAddress, p.TokenSymbol, p.TokenCreationTimestamp, p.BuyTimestamp,
		p.BuyPrice, p.BuyAmountSOL, p.NumTokensBought, p.BuySignature)
	if err != nil {
		return fmt.Errorf("insert position %s: %w", p.TokenAddress, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrDuplicate
	}
	return nil
}

func (s *Store) ListOpen(ctx context.Context) ([]*models.PositionRow, error) {
	return s.list(ctx, `SELECT `+selectColumns+` FROM positions
		WHERE NOT position_closed ORDER BY buy_timestamp`)
}

func (s *Store) List(ctx context.Context) ([]*models.PositionRow, error) {
	return s.list(ctx, `SELECT `+selectColumns+` FROM positions ORDER BY buy_timestamp DESC`)
}

func (s *Store) list(ctx context.Context, query string) ([]*models.PositionRow, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	var result []*models.PositionRow
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *Store) ClosePosition(ctx context.Context, id string, upd models.CloseUpdate) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE positions SET
			position_closed = TRUE, sell_timestamp = $2, sell_amount_sol = $3, sell_price = $4,
			sol_delta = $5, percentage_delta = $6, sell_signature = $7, close_reason = $8
		WHERE id = $1 AND NOT position_closed`,
		id, upd.SellTimestamp.UTC(), upd.SellAmountSOL, upd.SellPrice,
		upd.SOLDelta, upd.PercentageDelta, upd.SellSignature, string(upd.Reason))
	if err != nil {
		return fmt.Errorf("close position %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotUpdated
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func scanRow(row pgx.Row) (*models.PositionRow, error) {
	var r models.PositionRow
	err := row.Scan(
		&r.ID, &r.TokenAddress, &r.TokenSymbol, &r.TokenCreationTimestamp, &r.BuyTimestamp,
		&r.BuyPrice, &r.BuyAmountSOL, &r.NumTokensBought, &r.BuySignature,
		&r.Closed, &r.SellTimestamp, &r.SellAmountSOL, &r.SellPrice,
		&r.SOLDelta, &r.PercentageDelta, &r.SellSignature, &r.CloseReason,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

var _ storage.Store = (*Store)(nil)
