// internal/storage/sqlite/sqlite.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rovshanmuradov/trend-sniper/internal/storage"
	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS positions (
    id                       TEXT PRIMARY KEY,
    token_address            TEXT    NOT NULL,
    token_symbol             TEXT    NOT NULL DEFAULT '',
    token_creation_timestamp TEXT,
    buy_timestamp            TEXT    NOT NULL,
    buy_price                REAL    NOT NULL,
    buy_amount_sol           REAL    NOT NULL,
    num_tokens_bought        REAL,
    buy_signature            TEXT    NOT NULL DEFAULT '',
    position_closed          INTEGER NOT NULL DEFAULT 0,
    sell_timestamp           TEXT,
    sell_amount_sol          REAL,
    sell_price               REAL,
    sol_delta                REAL,
    percentage_delta         REAL,
    sell_signature           TEXT,
    close_reason             TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS positions_open_token_idx
    ON positions(token_address) WHERE position_closed = 0;
CREATE INDEX IF NOT EXISTS positions_buy_timestamp_idx
    ON positions(buy_timestamp DESC);
`

// timeLayout is fixed width so text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectColumns = `
    id, token_address, token_symbol, token_creation_timestamp, buy_timestamp,
    CAST(buy_price AS TEXT), CAST(buy_amount_sol AS TEXT), CAST(num_tokens_bought AS TEXT),
    buy_signature, position_closed, sell_timestamp,
    CAST(sell_amount_sol AS TEXT), CAST(sell_price AS TEXT), CAST(sol_delta AS TEXT),
    CAST(percentage_delta AS TEXT), sell_signature, close_reason`

// Store keeps positions in a local SQLite file (pure Go driver, no CGo).
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens (or creates) the database at path and applies the schema. Use
// ":memory:" for a throwaway store.
func New(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // single writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: apply schema: %w", err)
	}
	return &Store{db: db, logger: logger.Named("sqlite")}, nil
}

func (s *Store) GetByTokenAddress(ctx context.Context, address string) (*models.PositionRow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM positions WHERE token_address = ?
		 ORDER BY buy_timestamp DESC LIMIT 1`, address)
	r, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get position %s: %w", address, err)
	}
	return r, nil
}

func (s *Store) Insert(ctx context.Context, p *models.Position) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO positions (
			id, token_address, token_symbol, token_creation_timestamp, buy_timestamp,
			buy_price, buy_amount_sol, num_tokens_bought, buy_signature, position_closed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT (token_address) WHERE position_closed = 0 DO NOTHING`,
		p.ID, p.TokenAddress, p.TokenSymbol, formatTime(p.TokenCreationTimestamp), formatTime(&p.BuyTimestamp),
		p.BuyPrice, p.BuyAmountSOL, p.NumTokensBought, p.BuySignature)
	if err != nil {
		return fmt.Errorf("insert position %s: %w", p.TokenAddress, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert position %s: %w", p.TokenAddress, err)
	}
	if n == 0 {
		return storage.ErrDuplicate
	}
	return nil
}

func (s *Store) ListOpen(ctx context.Context) ([]*models.PositionRow, error) {
	return s.list(ctx, `SELECT `+selectColumns+` FROM positions
		WHERE position_closed = 0 ORDER BY buy_timestamp`)
}

func (s *Store) List(ctx context.Context) ([]*models.PositionRow, error) {
	return s.list(ctx, `SELECT `+selectColumns+` FROM positions ORDER BY buy_timestamp DESC`)
}

func (s *Store) list(ctx context.Context, query string) ([]*models.PositionRow, error) {
	rows, err := s.db.QueryContext(ctx, query)
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
	sold := upd.SellTimestamp
	res, err := s.db.ExecContext(ctx, `
		UPDATE positions SET
			position_closed = 1, sell_timestamp = ?, sell_amount_sol = ?, sell_price = ?,
			sol_delta = ?, percentage_delta = ?, sell_signature = ?, close_reason = ?
		WHERE id = ? AND position_closed = 0`,
		formatTime(&sold), upd.SellAmountSOL, upd.SellPrice,
		upd.SOLDelta, upd.PercentageDelta, upd.SellSignature, string(upd.Reason), id)
	if err != nil {
		return fmt.Errorf("close position %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close position %s: %w", id, err)
	}
	if n == 0 {
		return storage.ErrNotUpdated
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(row scanner) (*models.PositionRow, error) {
	var (
		r                     models.PositionRow
		created, bought, sold sql.NullString
		closed                int64
	)
	err := row.Scan(
		&r.ID, &r.TokenAddress, &r.TokenSymbol, &created, &bought,
		&r.BuyPrice, &r.BuyAmountSOL, &r.NumTokensBought, &r.BuySignature,
		&closed, &sold, &r.SellAmountSOL, &r.SellPrice,
		&r.SOLDelta, &r.PercentageDelta, &r.SellSignature, &r.CloseReason,
	)
	if err != nil {
		return nil, err
	}
	r.Closed = closed != 0
	r.TokenCreationTimestamp = parseTime(&r, "token_creation_timestamp", created)
	r.BuyTimestamp = parseTime(&r, "buy_timestamp", bought)
	r.SellTimestamp = parseTime(&r, "sell_timestamp", sold)
	return &r, nil
}

func parseTime(r *models.PositionRow, column string, v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		r.Invalid = append(r.Invalid, fmt.Sprintf("%s %q is not a timestamp", column, v.String))
		return nil
	}
	return &t
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

var _ storage.Store = (*Store)(nil)
