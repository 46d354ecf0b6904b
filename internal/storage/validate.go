package storage

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"PortfolioTracker/internal/model"
)

// Normalize returns p with its text fields trimmed and the symbol uppercased.
func Normalize(p model.Position) model.Position {
	p.Symbol = strings.ToUpper(strings.TrimSpace(p.Symbol))
	p.TradeDate = strings.TrimSpace(p.TradeDate)
	p.Note = strings.TrimSpace(p.Note)
	return p
}

// Validate checks the business rules a lot must satisfy before it is stored.
func Validate(p model.Position) error {
	sym := strings.TrimSpace(p.Symbol)
	if sym == "" {
		return &ValidationError{Field: "symbol", Reason: "is required"}
	}
	if strings.IndexFunc(sym, unicode.IsSpace) >= 0 {
		return &ValidationError{Field: "symbol", Reason: "must not contain whitespace"}
	}
	if math.IsNaN(p.Shares) || math.IsInf(p.Shares, 0) {
		return &ValidationError{Field: "shares", Reason: "must be a finite number"}
	}
	if p.Shares < 0 {
		return &ValidationError{Field: "shares", Reason: "must not be negative"}
	}
	if math.IsNaN(p.CostPerShare) || math.IsInf(p.CostPerShare, 0) {
		return &ValidationError{Field: "cost_per_share", Reason: "must be a finite number"}
	}
	if p.CostPerShare < 0 {
		return &ValidationError{Field: "cost_per_share", Reason: "must not be negative"}
	}
	if _, err := time.Parse(model.DateLayout, strings.TrimSpace(p.TradeDate)); err != nil {
		return &ValidationError{Field: "trade_date", Reason: "must be YYYY-MM-DD"}
	}
	return nil
}

func prepare(p model.Position) (model.Position, error) {
	if err := Validate(p); err != nil {
		return model.Position{}, err
	}
	return Normalize(p), nil
}

func prepareAll(ps []model.Position) ([]model.Position, error) {
	out := make([]model.Position, len(ps))
	for i, p := range ps {
		np, err := prepare(p)
		if err != nil {
			return nil, &RowError{Index: i, Err: err}
		}
		out[i] = np
	}
	return out, nil
}

// RowError locates a validation failure within a batch import.
type RowError struct {
	Index int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index+1, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
