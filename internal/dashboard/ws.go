package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/report"
)

// feedMessage is one snapshot pushed to dashboard clients.
type feedMessage struct {
	TotalValue string          `json:"total_value"`
	TotalCost  string          `json:"total_cost"`
	TotalPnL   string          `json:"total_pnl"`
	Valuation  model.Valuation `json:"valuation"`
}

func newFeedMessage(v model.Valuation, currency string) feedMessage {
	t := v.Totals
	return feedMessage{
		TotalValue: report.Money(t.TotalValue, currency),
		TotalCost:  report.Money(t.TotalCost, currency),
		TotalPnL:   report.Money(t.TotalPnL, currency) + " (" + report.Percent(t.TotalPnLPct) + ")",
		Valuation:  v,
	}
}

// handleFeed pushes a valuation snapshot on connect and then every refresh
// interval until the client goes away.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns(),
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket accept")
		return
	}
	defer c.Close(websocket.StatusInternalError, "")

	// Clients never send; CloseRead handles control frames and cancels ctx
	// once the peer closes.
	ctx := c.CloseRead(r.Context())

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		if err := s.pushSnapshot(ctx, c); err != nil {
			if errors.Is(err, context.Canceled) || websocket.CloseStatus(err) != -1 {
				c.Close(websocket.StatusNormalClosure, "")
				return
			}
			s.log.Warn().Err(err).Msg("websocket push")
			return
		}
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "")
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) pushSnapshot(ctx context.Context, c *websocket.Conn) error {
	v, err := s.svc.Valuate(ctx)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return wsjson.Write(wctx, c, newFeedMessage(v, s.cfg.Report.Currency))
}

// originPatterns converts the CORS origin list to websocket host patterns.
func (s *Server) originPatterns() []string {
	var patterns []string
	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}
