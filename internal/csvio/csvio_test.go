package csvio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioTracker/internal/model"
)

func TestRead_MatchesHeadersLoosely(t *testing.T) {
	in := " Symbol ,SHARES, cost_per_share ,trade_date,Note,broker\n" +
		"aapl,10,150.25,2024-01-02,first buy,ibkr\n" +
		"\n" +
		",,,,,\n" +
		"MSFT, 2.5 ,300,2024-02-03,,ibkr\n"

	got, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.Position{Symbol: "aapl", Shares: 10, CostPerShare: 150.25, TradeDate: "2024-01-02", Note: "first buy"}, got[0])
	assert.Equal(t, model.Position{Symbol: "MSFT", Shares: 2.5, CostPerShare: 300, TradeDate: "2024-02-03"}, got[1])
}

func TestRead_NoteIsOptional(t *testing.T) {
	got, err := Read(strings.NewReader("trade_date,symbol,shares,cost_per_share\n2024-03-01,VTI,1,200\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "VTI", got[0].Symbol)
	assert.Equal(t, "2024-03-01", got[0].TradeDate)
	assert.Empty(t, got[0].Note)
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		check func(t *testing.T, err error)
	}{
		{"empty", "", func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrEmpty) }},
		{"missing column", "symbol,shares,trade_date\nA,1,2024-01-01\n", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrMissingColumn)
			assert.Contains(t, err.Error(), "cost_per_share")
		}},
		{"bad number", "symbol,shares,cost_per_share,trade_date\nA,1,1,2024-01-01\nB,ten,1,2024-01-01\n", func(t *testing.T, err error) {
			var le *LineError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, 3, le.Line)
			assert.Equal(t, "shares", le.Column)
		}},
		{"missing cost", "symbol,shares,cost_per_share,trade_date\nA,1,,2024-01-01\n", func(t *testing.T, err error) {
			var le *LineError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, "cost_per_share", le.Column)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.in))
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestWrite_ThenRead(t *testing.T) {
	positions := []model.Position{
		{ID: 1, Symbol: "AAPL", Shares: 0.1, CostPerShare: 150.3, TradeDate: "2024-01-02", Note: "has, comma"},
		{ID: 2, Symbol: "MSFT", Shares: 3, CostPerShare: 310, TradeDate: "2024-02-03"},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, positions))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "symbol,shares,cost_per_share,trade_date,note", lines[0])
	assert.Equal(t, `AAPL,0.1,150.3,2024-01-02,"has, comma"`, lines[1])

	back, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "has, comma", back[0].Note)
	assert.Equal(t, 0.1, back[0].Shares)
}

func TestWriteValuation(t *testing.T) {
	rows := []model.ValuationRow{
		{
			Position:     model.Position{ID: 7, Symbol: "AAPL", Shares: 10, CostPerShare: 150, TradeDate: "2024-01-02"},
			CurrentPrice: 180, CurrentValue: 1800, CostBasis: 1500, PnLAbs: 300, PnLPct: 0.2, Priced: true,
		},
		{
			Position:  model.Position{ID: 8, Symbol: "GONE", Shares: 4, CostPerShare: 25, TradeDate: "2024-01-03"},
			CostBasis: 100, PnLAbs: -100, PnLPct: -1,
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteValuation(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,symbol,shares,cost_per_share,trade_date,note,current_price,current_value,cost_basis,pnl_abs,pnl_pct", lines[0])
	assert.Equal(t, "7,AAPL,10,150,2024-01-02,,180,1800.00,1500.00,300.00,0.2000", lines[1])
	assert.Equal(t, "8,GONE,4,25,2024-01-03,,,0.00,100.00,-100.00,-1.0000", lines[2])
}
