// Package storage persists positions and the last known quotes.
package storage

import (
	"context"
	"errors"
	"fmt"

	"PortfolioTracker/internal/model"
)

var (
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("invalid position")
	// ErrNotFound is returned when a position id does not exist.
	ErrNotFound = errors.New("position not found")
	// ErrUnavailable wraps failures to reach the backing database.
	ErrUnavailable = errors.New("storage unavailable")
)

// ValidationError describes a rejected field of a position.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Store records position lots.
type Store interface {
	// AddPosition validates p, stores it with an uppercased symbol and returns
	// the stored row including its assigned id.
	AddPosition(ctx context.Context, p model.Position) (model.Position, error)
	// ImportPositions stores all rows or none of them.
	ImportPositions(ctx context.Context, ps []model.Position) (int, error)
	// ListPositions returns every lot ordered by id.
	ListPositions(ctx context.Context) ([]model.Position, error)
	DeletePosition(ctx context.Context, id int64) error
	Close() error
}

// QuoteStore keeps the last fetched quote per symbol between runs.
type QuoteStore interface {
	LoadQuotes(ctx context.Context) ([]model.PriceQuote, error)
	SaveQuotes(ctx context.Context, quotes []model.PriceQuote) error
}

// Backend is a Store that also persists quotes. All implementations in this
// package satisfy it.
type Backend interface {
	Store
	QuoteStore
}
