package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"PortfolioTracker/internal/model"
)

// SQLiteStore persists positions and quotes in a SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteStore opens (or creates) the database file and runs migrations.
func NewSQLiteStore(ctx context.Context, dbPath string, log zerolog.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create %s: %w", ErrUnavailable, dir, err)
		}
	}

	// Pragmas in the DSN apply to every pooled connection. WAL lets the
	// dashboard read while the CLI writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", ErrUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: open sqlite: %w", ErrUnavailable, err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %w", ErrUnavailable, err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS positions (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol         TEXT NOT NULL,
			shares         REAL NOT NULL,
			cost_per_share REAL NOT NULL,
			trade_date     TEXT NOT NULL,
			note           TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_positions_symbol ON positions(symbol)`,

		`CREATE TABLE IF NOT EXISTS quote_cache (
			symbol     TEXT PRIMARY KEY,
			price      REAL NOT NULL,
			fetched_at INTEGER NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) AddPosition(ctx context.Context, p model.Position) (model.Position, error) {
	p, err := prepare(p)
	if err != nil {
		return model.Position{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `INSERT INTO positions
		(symbol, shares, cost_per_share, trade_date, note)
		VALUES (?,?,?,?,?)`,
		p.Symbol, p.Shares, p.CostPerShare, p.TradeDate, p.Note,
	)
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: insert position: %w", ErrUnavailable, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: read position id: %w", ErrUnavailable, err)
	}
	p.ID = id
	return p, nil
}

func (s *SQLiteStore) ImportPositions(ctx context.Context, ps []model.Position) (int, error) {
	rows, err := prepareAll(ps)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin import: %w", ErrUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO positions
		(symbol, shares, cost_per_share, trade_date, note)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare import: %w", ErrUnavailable, err)
	}
	defer stmt.Close()

	for _, p := range rows {
		if _, err := stmt.ExecContext(ctx, p.Symbol, p.Shares, p.CostPerShare, p.TradeDate, p.Note); err != nil {
			return 0, fmt.Errorf("%w: import %s: %w", ErrUnavailable, p.Symbol, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit import: %w", ErrUnavailable, err)
	}

	s.log.Info().Int("rows", len(rows)).Msg("positions imported")
	return len(rows), nil
}

func (s *SQLiteStore) ListPositions(ctx context.Context) ([]model.Position, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, symbol, shares, cost_per_share, trade_date, note
		FROM positions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list positions: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []model.Position
	for rows.Next() {
		var p model.Position
		if err := rows.Scan(&p.ID, &p.Symbol, &p.Shares, &p.CostPerShare, &p.TradeDate, &p.Note); err != nil {
			return nil, fmt.Errorf("%w: scan position: %w", ErrUnavailable, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list positions: %w", ErrUnavailable, err)
	}
	return out, nil
}

func (s *SQLiteStore) DeletePosition(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM positions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete position: %w", ErrUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete position: %w", ErrUnavailable, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) LoadQuotes(ctx context.Context) ([]model.PriceQuote, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, price, fetched_at FROM quote_cache ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("%w: load quotes: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []model.PriceQuote
	for rows.Next() {
		var (
			q  model.PriceQuote
			ts int64
		)
		if err := rows.Scan(&q.Symbol, &q.Price, &ts); err != nil {
			return nil, fmt.Errorf("%w: scan quote: %w", ErrUnavailable, err)
		}
		q.FetchedAt = time.Unix(0, ts).UTC()
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveQuotes(ctx context.Context, quotes []model.PriceQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin save quotes: %w", ErrUnavailable, err)
	}
	defer tx.Rollback()

	for _, q := range quotes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO quote_cache (symbol, price, fetched_at)
			VALUES (?,?,?)
			ON CONFLICT(symbol) DO UPDATE SET price = excluded.price, fetched_at = excluded.fetched_at`,
			q.Symbol, q.Price, q.FetchedAt.UnixNano(),
		); err != nil {
			return fmt.Errorf("%w: save quote %s: %w", ErrUnavailable, q.Symbol, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit quotes: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing sqlite store")
	return s.db.Close()
}
