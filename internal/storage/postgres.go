package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"PortfolioTracker/internal/model"
)

// PostgresStore persists positions and quotes in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgresStore connects to dbURL, verifies connectivity and runs migrations.
func NewPostgresStore(ctx context.Context, dbURL string, log zerolog.Logger) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: connect postgres: %w", ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping postgres: %w", ErrUnavailable, err)
	}

	s := &PostgresStore{pool: pool, log: log}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: migrate: %w", ErrUnavailable, err)
	}

	log.Info().Str("host", config.ConnConfig.Host).Str("database", config.ConnConfig.Database).Msg("postgres store opened")
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS positions (
			id             BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			symbol         TEXT NOT NULL,
			shares         DOUBLE PRECISION NOT NULL,
			cost_per_share DOUBLE PRECISION NOT NULL,
			trade_date     TEXT NOT NULL,
			note           TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_positions_symbol ON positions(symbol)`,

		`CREATE TABLE IF NOT EXISTS quote_cache (
			symbol     TEXT PRIMARY KEY,
			price      DOUBLE PRECISION NOT NULL,
			fetched_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

const insertPositionSQL = `INSERT INTO positions
	(symbol, shares, cost_per_share, trade_date, note)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id`

func (s *PostgresStore) AddPosition(ctx context.Context, p model.Position) (model.Position, error) {
	p, err := prepare(p)
	if err != nil {
		return model.Position{}, err
	}
	err = s.pool.QueryRow(ctx, insertPositionSQL,
		p.Symbol, p.Shares, p.CostPerShare, p.TradeDate, p.Note,
	).Scan(&p.ID)
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: insert position: %w", ErrUnavailable, err)
	}
	return p, nil
}

func (s *PostgresStore) ImportPositions(ctx context.Context, ps []model.Position) (int, error) {
	rows, err := prepareAll(ps)
	if err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: begin import: %w", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, p := range rows {
		batch.Queue(insertPositionSQL, p.Symbol, p.Shares, p.CostPerShare, p.TradeDate, p.Note)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("%w: import positions: %w", ErrUnavailable, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit import: %w", ErrUnavailable, err)
	}

	s.log.Info().Int("rows", len(rows)).Msg("positions imported")
	return len(rows), nil
}

func (s *PostgresStore) ListPositions(ctx context.Context) ([]model.Position, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, symbol, shares, cost_per_share, trade_date, note
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

func (s *PostgresStore) DeletePosition(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: delete position: %w", ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

func (s *PostgresStore) LoadQuotes(ctx context.Context) ([]model.PriceQuote, error) {
	rows, err := s.pool.Query(ctx, `SELECT symbol, price, fetched_at FROM quote_cache ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("%w: load quotes: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []model.PriceQuote
	for rows.Next() {
		var q model.PriceQuote
		if err := rows.Scan(&q.Symbol, &q.Price, &q.FetchedAt); err != nil {
			return nil, fmt.Errorf("%w: scan quote: %w", ErrUnavailable, err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveQuotes(ctx context.Context, quotes []model.PriceQuote) error {
	if len(quotes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, q := range quotes {
		batch.Queue(`INSERT INTO quote_cache (symbol, price, fetched_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (symbol) DO UPDATE SET price = EXCLUDED.price, fetched_at = EXCLUDED.fetched_at`,
			q.Symbol, q.Price, q.FetchedAt)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%w: save quotes: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.log.Info().Msg("closing postgres store")
	s.pool.Close()
	return nil
}
