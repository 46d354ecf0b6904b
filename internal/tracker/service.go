// Package tracker is the core shared by the CLI, the dashboards and the
// scheduled jobs: positions in, valuations out.
package tracker

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"PortfolioTracker/internal/collector"
	"PortfolioTracker/internal/csvio"
	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/storage"
	"PortfolioTracker/internal/valuation"
)

// Service combines storage, price resolution and the valuation engine.
type Service struct {
	Store     storage.Store
	Collector *collector.Collector
	Log       zerolog.Logger
	Clock     func() time.Time
}

// New creates a Service. A nil clock uses time.Now.
func New(store storage.Store, col *collector.Collector, log zerolog.Logger, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{Store: store, Collector: col, Log: log, Clock: clock}
}

// AddPosition records a new lot. An empty trade date means today.
func (s *Service) AddPosition(ctx context.Context, p model.Position) (model.Position, error) {
	if p.TradeDate == "" {
		p.TradeDate = s.Clock().Format(model.DateLayout)
	}
	stored, err := s.Store.AddPosition(ctx, p)
	if err != nil {
		return model.Position{}, err
	}
	s.Log.Info().Int64("id", stored.ID).Str("symbol", stored.Symbol).Float64("shares", stored.Shares).Msg("position added")
	return stored, nil
}

func (s *Service) DeletePosition(ctx context.Context, id int64) error {
	if err := s.Store.DeletePosition(ctx, id); err != nil {
		return err
	}
	s.Log.Info().Int64("id", id).Msg("position deleted")
	return nil
}

func (s *Service) ListPositions(ctx context.Context) ([]model.Position, error) {
	return s.Store.ListPositions(ctx)
}

// ImportCSV parses r and stores every row, or none if any row is invalid.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	positions, err := csvio.Read(r)
	if err != nil {
		return 0, err
	}
	if len(positions) == 0 {
		return 0, nil
	}
	return s.Store.ImportPositions(ctx, positions)
}

// ExportCSV writes every stored lot in interchange format.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	positions, err := s.Store.ListPositions(ctx)
	if err != nil {
		return err
	}
	return csvio.Write(w, positions)
}

// Valuate lists positions, resolves their prices and evaluates them. Missing
// prices never fail the call; storage failures do.
func (s *Service) Valuate(ctx context.Context) (model.Valuation, error) {
	positions, err := s.Store.ListPositions(ctx)
	if err != nil {
		return model.Valuation{}, fmt.Errorf("list positions: %w", err)
	}
	if len(positions) == 0 {
		return valuation.Evaluate(nil, nil, s.Clock()), nil
	}

	symbols := make([]string, len(positions))
	for i, p := range positions {
		symbols[i] = p.Symbol
	}
	quotes, err := s.Collector.Resolve(ctx, symbols)
	if err != nil {
		return model.Valuation{}, fmt.Errorf("resolve prices: %w", err)
	}
	return valuation.Evaluate(positions, quotes.Prices, quotes.FetchedAt), nil
}

// Refresh drops cached quotes so the next valuation fetches fresh prices.
func (s *Service) Refresh() {
	s.Collector.Invalidate()
}
