package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/valuation"
)

func newTestNotifier(url string) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	n.BaseURL = url
	n.RetryInterval = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "42", payload["chat_id"])
		assert.Equal(t, "HTML", payload["parse_mode"])
		assert.Equal(t, "hello", payload["text"])
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).Send(context.Background(), "hello"))
}

func TestSendWithRetry_RecoversFromServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).SendWithRetry(context.Background(), "hi", 3))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendWithRetry_BadRequestIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"ok":false,"description":"chat not found"}`)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).SendWithRetry(context.Background(), "hi", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).SendWithRetry(context.Background(), "hi", 2)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestStartPolling_DispatchesCommands(t *testing.T) {
	var polls atomic.Int32
	replies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getUpdates":
			if polls.Add(1) == 1 {
				assert.Equal(t, "0", r.URL.Query().Get("offset"))
				fmt.Fprint(w, `{"ok":true,"result":[{"update_id":7,"message":{"text":" /summary "}},{"update_id":8}]}`)
				return
			}
			assert.Equal(t, "9", r.URL.Query().Get("offset"))
			select {
			case <-r.Context().Done():
			case <-time.After(50 * time.Millisecond):
			}
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		case "/botTOKEN/sendMessage":
			var payload map[string]string
			_ = json.NewDecoder(r.Body).Decode(&payload)
			replies <- payload["text"]
			fmt.Fprint(w, `{"ok":true}`)
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		newTestNotifier(srv.URL).StartPolling(ctx, func(_ context.Context, cmd string) string {
			return "got " + cmd
		})
		close(done)
	}()

	select {
	case reply := <-replies:
		assert.Equal(t, "got /summary", reply)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
}

func TestFormatSummary(t *testing.T) {
	v := valuation.Evaluate([]model.Position{
		{ID: 1, Symbol: "AAPL", Shares: 10, CostPerShare: 150, TradeDate: "2024-01-02"},
		{ID: 2, Symbol: "GONE", Shares: 1, CostPerShare: 10, TradeDate: "2024-01-02"},
	}, map[string]float64{"AAPL": 180}, time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC))

	msg := FormatSummary(v, "USD")
	assert.Contains(t, msg, "2024-06-01 09:30")
	assert.Contains(t, msg, "Value: $1,800.00")
	assert.Contains(t, msg, "P&amp;L: $290.00")
	assert.Contains(t, msg, "🟢 AAPL: $1,800.00 (20.00%, 100.00% of portfolio)")
	assert.Contains(t, msg, "No price for: GONE")

	empty := FormatSummary(valuation.Evaluate(nil, nil, time.Time{}), "USD")
	assert.True(t, strings.HasSuffix(empty, "No positions."))
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "❌ report failed: disk &lt;full&gt;", FormatError("report", errors.New("disk <full>")))
}
