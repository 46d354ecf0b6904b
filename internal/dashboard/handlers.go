package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"PortfolioTracker/internal/csvio"
	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/report"
	"PortfolioTracker/internal/storage"
	"PortfolioTracker/internal/valuation"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Valuate(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("valuate")
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	page, err := newPageData(v, s.cfg.Report, s.cfg.Clock())
	if err != nil {
		s.log.Warn().Err(err).Msg("render charts")
	}
	page.Message = r.URL.Query().Get("msg")
	page.Error = r.URL.Query().Get("err")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, page); err != nil {
		s.log.Error().Err(err).Msg("render index")
	}
}

func (s *Server) handleAddTrade(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirect(w, r, "", "invalid form")
		return
	}
	p, err := positionFromForm(r)
	if err != nil {
		redirect(w, r, "", err.Error())
		return
	}
	stored, err := s.svc.AddPosition(r.Context(), p)
	if err != nil {
		redirect(w, r, "", err.Error())
		return
	}
	redirect(w, r, fmt.Sprintf("Added %s lot #%d", stored.Symbol, stored.ID), "")
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		redirect(w, r, "", err.Error())
		return
	}
	if err := s.svc.DeletePosition(r.Context(), id); err != nil {
		redirect(w, r, "", err.Error())
		return
	}
	redirect(w, r, fmt.Sprintf("Deleted lot #%d", id), "")
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	file, _, err := r.FormFile("file")
	if err != nil {
		redirect(w, r, "", "choose a CSV file to upload")
		return
	}
	defer file.Close()

	n, err := s.svc.ImportCSV(r.Context(), file)
	if err != nil {
		redirect(w, r, "", "import failed: "+err.Error())
		return
	}
	redirect(w, r, fmt.Sprintf("Imported %d lots", n), "")
}

// handleExport downloads the positions in interchange format, or the
// per-lot valuation when derived=1.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	derived := r.URL.Query().Get("derived") == "1"
	if !derived {
		positions, err := s.svc.ListPositions(r.Context())
		if err != nil {
			http.Error(w, err.Error(), statusOf(err))
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="positions.csv"`)
		if err := csvio.Write(w, positions); err != nil {
			s.log.Error().Err(err).Msg("export positions")
		}
		return
	}

	v, err := s.svc.Valuate(r.Context())
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="valuation.csv"`)
	if err := csvio.WriteValuation(w, v.Rows); err != nil {
		s.log.Error().Err(err).Msg("export valuation")
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.svc.Refresh()
	v, err := s.svc.Valuate(r.Context())
	if err != nil {
		redirect(w, r, "", err.Error())
		return
	}
	if len(v.Unpriced) > 0 {
		redirect(w, r, "Prices refreshed", "No price for: "+strings.Join(v.Unpriced, ", "))
		return
	}
	redirect(w, r, "Prices refreshed", "")
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Valuate(r.Context())
	if err != nil {
		redirect(w, r, "", err.Error())
		return
	}
	path, err := report.WriteHTML(s.cfg.ReportDir, v, s.cfg.Report)
	if err != nil {
		redirect(w, r, "", err.Error())
		return
	}
	redirect(w, r, "Report written to "+path, "")
}

func (s *Server) handleAPIValuation(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Valuate(r.Context())
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	v.Symbols = valuation.SortByValue(v.Symbols)
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleAPIListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.svc.ListPositions(r.Context())
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	if positions == nil {
		positions = []model.Position{}
	}
	writeJSON(w, http.StatusOK, positions)
}

// addPositionRequest uses pointers so an omitted number is told apart from 0.
type addPositionRequest struct {
	Symbol       string   `json:"symbol"`
	Shares       *float64 `json:"shares"`
	CostPerShare *float64 `json:"cost_per_share"`
	TradeDate    string   `json:"trade_date"`
	Note         string   `json:"note"`
}

func (s *Server) handleAPIAddPosition(w http.ResponseWriter, r *http.Request) {
	var req addPositionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Shares == nil || req.CostPerShare == nil {
		writeError(w, http.StatusBadRequest, "shares and cost_per_share are required")
		return
	}
	stored, err := s.svc.AddPosition(r.Context(), model.Position{
		Symbol:       req.Symbol,
		Shares:       *req.Shares,
		CostPerShare: *req.CostPerShare,
		TradeDate:    req.TradeDate,
		Note:         req.Note,
	})
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleAPIDeletePosition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.DeletePosition(r.Context(), id); err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func positionFromForm(r *http.Request) (model.Position, error) {
	shares, err := formNumber(r, "shares")
	if err != nil {
		return model.Position{}, err
	}
	cost, err := formNumber(r, "cost_per_share")
	if err != nil {
		return model.Position{}, err
	}
	return model.Position{
		Symbol:       r.PostFormValue("symbol"),
		Shares:       shares,
		CostPerShare: cost,
		TradeDate:    strings.TrimSpace(r.PostFormValue("trade_date")),
		Note:         strings.TrimSpace(r.PostFormValue("note")),
	}, nil
}

func formNumber(r *http.Request, field string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(r.PostFormValue(field)))
	if err != nil {
		return 0, fmt.Errorf("%s: not a number", field)
	}
	return d.InexactFloat64(), nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

// redirect sends the browser back to the page with a flash message.
func redirect(w http.ResponseWriter, r *http.Request, msg, errMsg string) {
	q := url.Values{}
	if msg != "" {
		q.Set("msg", msg)
	}
	if errMsg != "" {
		q.Set("err", errMsg)
	}
	target := "/"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func statusOf(err error) int {
	var lineErr *csvio.LineError
	switch {
	case errors.Is(err, storage.ErrValidation),
		errors.Is(err, csvio.ErrEmpty),
		errors.Is(err, csvio.ErrMissingColumn),
		errors.As(err, &lineErr):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
