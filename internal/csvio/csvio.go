// Package csvio reads and writes positions in the delimited interchange format
// with header symbol,shares,cost_per_share,trade_date,note.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"PortfolioTracker/internal/model"
)

// Header is the column order written by Write.
var Header = []string{"symbol", "shares", "cost_per_share", "trade_date", "note"}

var required = []string{"symbol", "shares", "cost_per_share", "trade_date"}

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing column")
	// ErrEmpty is returned for input without a header row.
	ErrEmpty = errors.New("empty csv")
)

// LineError locates a malformed record.
type LineError struct {
	Line   int
	Column string
	Err    error
}

func (e *LineError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Column, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Read parses positions. Header names are matched after trimming and case
// folding, so " Symbol " selects the symbol column. The note column is
// optional and unknown columns are ignored. Business rules are left to
// storage; only numeric syntax is checked here.
func Read(r io.Reader) ([]model.Position, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}
	noteCol, hasNote := cols["note"]

	var out []model.Position
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if blank(record) {
			continue
		}

		field := func(name string) string {
			i := cols[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		shares, err := parseNumber(field("shares"))
		if err != nil {
			return nil, &LineError{Line: line, Column: "shares", Err: err}
		}
		cost, err := parseNumber(field("cost_per_share"))
		if err != nil {
			return nil, &LineError{Line: line, Column: "cost_per_share", Err: err}
		}

		p := model.Position{
			Symbol:       field("symbol"),
			Shares:       shares,
			CostPerShare: cost,
			TradeDate:    field("trade_date"),
		}
		if hasNote && noteCol < len(record) {
			p.Note = strings.TrimSpace(record[noteCol])
		}
		out = append(out, p)
	}
	return out, nil
}

// Write emits positions in interchange format.
func Write(w io.Writer, positions []model.Position) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range positions {
		record := []string{
			p.Symbol,
			number(p.Shares),
			number(p.CostPerShare),
			p.TradeDate,
			p.Note,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write position %d: %w", p.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteValuation emits lot rows with their derived columns. Unpriced rows
// leave current_price empty.
func WriteValuation(w io.Writer, rows []model.ValuationRow) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{"id"}, Header...),
		"current_price", "current_value", "cost_basis", "pnl_abs", "pnl_pct")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		price := ""
		if r.Priced {
			price = number(r.CurrentPrice)
		}
		record := []string{
			fmt.Sprintf("%d", r.ID),
			r.Symbol,
			number(r.Shares),
			number(r.CostPerShare),
			r.TradeDate,
			r.Note,
			price,
			fixed(r.CurrentValue, 2),
			fixed(r.CostBasis, 2),
			fixed(r.PnLAbs, 2),
			fixed(r.PnLPct, 4),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("value is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return d.InexactFloat64(), nil
}

// number formats v without binary float noise.
func number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).String()
}

func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
