// Package api exposes the budgeting core over a JSON HTTP interface.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/moneypot/moneypot/internal/budget"
	"github.com/moneypot/moneypot/internal/common"
	"github.com/moneypot/moneypot/internal/service"
)

// Server wires the budget engine and ledger store into an HTTP router.
type Server struct {
	store  service.Storage
	engine *budget.Engine
	now    func() time.Time
}

// NewServer creates an API server over the given store.
func NewServer(store service.Storage) *Server {
	return &Server{
		store:  store,
		engine: budget.New(store),
		now:    time.Now,
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/atb", s.handleAvailableToBudget)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Get("/{category_id}", s.handleCategoryDetail)
			r.Put("/{category_id}", s.handleUpdateCategory)
			r.Get("/{category_id}/renames", s.handleCategoryRenames)
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Get("/", s.handleListTransfers)
			r.Post("/", s.handleCreateTransfer)
			r.Post("/auto-populate", s.handleAutoPopulate)
			r.Put("/{transfer_id}", s.handleUpdateTransfer)
			r.Delete("/{transfer_id}", s.handleDeleteTransfer)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleCreateAccount)
			r.Put("/{account_id}", s.handleUpdateAccount)
			r.Delete("/{account_id}", s.handleDeleteAccount)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Post("/transfer", s.handleCreateTransactionTransfer)
			r.Put("/{transaction_id}", s.handleUpdateTransaction)
			r.Delete("/{transaction_id}", s.handleDeleteTransaction)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/{key}", s.handleGetSetting)
			r.Put("/{key}", s.handleSetSetting)
		})
	})

	return r
}

// today returns the request's reference date: an explicit "today" query
// parameter when present, the server clock otherwise.
func (s *Server) today(r *http.Request) string {
	if v := r.URL.Query().Get("today"); v != "" {
		return v
	}
	return s.now().Format("2006-01-02")
}

// round2 rounds a monetary value to two decimal places, half away from
// zero, for the response boundary. Internal arithmetic stays unrounded.
func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// respondError maps the application error taxonomy onto HTTP status codes.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		common.LogError(err, "request failed", common.Fields{"method": r.Method, "path": r.URL.Path})
	} else {
		slog.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.Validationf("invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, common.Validationf("invalid %s %q", param, raw)
	}
	return id, nil
}
