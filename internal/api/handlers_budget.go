package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/moneypot/moneypot/internal/budget"
	"github.com/moneypot/moneypot/internal/model"
)

type categorySummaryDTO struct {
	Name            string  `json:"name"`
	CategoryID      int64   `json:"categoryId"`
	MonthlyAmount   float64 `json:"monthlyAmount"`
	CarriedForward  float64 `json:"carriedForward"`
	Budgeted        float64 `json:"budgeted"`
	Activity        float64 `json:"activity"`
	PendingActivity float64 `json:"pendingActivity"`
	Available       float64 `json:"available"`
	IsOverBudget    bool    `json:"isOverBudget"`
}

type accountBalanceDTO struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	ID      int64   `json:"id"`
	Balance float64 `json:"balance"`
	Hidden  bool    `json:"hidden"`
}

type dashboardDTO struct {
	CurrentMonth   string               `json:"currentMonth"`
	LastReconciled string               `json:"lastReconciled,omitempty"`
	Categories     []categorySummaryDTO `json:"categories"`
	Assets         []accountBalanceDTO  `json:"assets"`
	Liabilities    []accountBalanceDTO  `json:"liabilities"`
	MonthlyIncome  float64              `json:"monthlyIncome"`
	MonthlySpent   float64              `json:"monthlySpent"`
	PendingCount   int                  `json:"pendingCount"`
}

func toAccountBalanceDTOs(balances []model.AccountBalance) []accountBalanceDTO {
	out := make([]accountBalanceDTO, 0, len(balances))
	for _, b := range balances {
		out = append(out, accountBalanceDTO{
			ID:      b.ID,
			Name:    b.Name,
			Type:    string(b.Type),
			Balance: round2(b.Balance),
			Hidden:  b.Hidden,
		})
	}
	return out
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.engine.Dashboard(r.Context(), s.today(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	dto := dashboardDTO{
		CurrentMonth:   dash.CurrentMonth,
		LastReconciled: dash.LastReconciled,
		MonthlyIncome:  round2(dash.MonthlyIncome),
		MonthlySpent:   round2(dash.MonthlySpent),
		PendingCount:   dash.PendingCount,
		Categories:     make([]categorySummaryDTO, 0, len(dash.Categories)),
		Assets:         toAccountBalanceDTOs(dash.Assets),
		Liabilities:    toAccountBalanceDTOs(dash.Liabilities),
	}
	for _, c := range dash.Categories {
		dto.Categories = append(dto.Categories, categorySummaryDTO{
			CategoryID:      c.CategoryID,
			Name:            c.Name,
			MonthlyAmount:   round2(c.MonthlyAmount),
			CarriedForward:  round2(c.CarriedForward),
			Budgeted:        round2(c.Budgeted),
			Activity:        round2(c.Activity),
			PendingActivity: round2(c.PendingActivity),
			Available:       round2(c.Available),
			IsOverBudget:    c.IsOverBudget,
		})
	}
	respondJSON(w, http.StatusOK, dto)
}

type atbDTO struct {
	Balance        float64 `json:"balance"`
	AccountBalance float64 `json:"accountBalance"`
	AllocatedOut   float64 `json:"allocatedOut"`
	ReturnedIn     float64 `json:"returnedIn"`
}

func (s *Server) handleAvailableToBudget(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.AvailableToBudget(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, atbDTO{
		Balance:        round2(summary.Balance),
		AccountBalance: round2(summary.AccountBalance),
		AllocatedOut:   round2(summary.AllocatedOut),
		ReturnedIn:     round2(summary.ReturnedIn),
	})
}

type categoryDetailDTO struct {
	Name              string  `json:"name"`
	Month             string  `json:"month"`
	CategoryID        int64   `json:"categoryId"`
	CarriedForward    float64 `json:"carriedForward"`
	Budgeted          float64 `json:"budgeted"`
	TransfersOut      float64 `json:"transfersOut"`
	Activity          float64 `json:"activity"`
	PendingActivity   float64 `json:"pendingActivity"`
	Available         float64 `json:"available"`
	PercentRemaining  float64 `json:"percentRemaining"`
	SpentLastMonth    float64 `json:"spentLastMonth"`
	AvgPerTransaction float64 `json:"avgPerTransaction"`
	TransactionCount  int     `json:"transactionCount"`
	IsOverBudget      bool    `json:"isOverBudget"`
}

func (s *Server) handleCategoryDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "category_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	detail, err := s.engine.CategoryDetail(r.Context(), id, s.today(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categoryDetailDTO{
		CategoryID:        detail.CategoryID,
		Name:              detail.Name,
		Month:             detail.Month,
		CarriedForward:    round2(detail.CarriedForward),
		Budgeted:          round2(detail.Budgeted),
		TransfersOut:      round2(detail.TransfersOut),
		Activity:          round2(detail.Activity),
		PendingActivity:   round2(detail.PendingActivity),
		Available:         round2(detail.Available),
		PercentRemaining:  round2(detail.PercentRemaining),
		SpentLastMonth:    round2(detail.SpentLastMonth),
		AvgPerTransaction: round2(detail.AvgPerTransaction),
		TransactionCount:  detail.TransactionCount,
		IsOverBudget:      detail.IsOverBudget,
	})
}

type transferRequest struct {
	FromCategoryID *int64          `json:"fromCategoryId"`
	ToCategoryID   *int64          `json:"toCategoryId"`
	Date           string          `json:"date"`
	Memo           string          `json:"memo"`
	Amount         decimal.Decimal `json:"amount"`
}

type transferDTO struct {
	Date           string  `json:"date"`
	Memo           string  `json:"memo,omitempty"`
	ID             int64   `json:"id"`
	FromCategoryID int64   `json:"fromCategoryId"`
	ToCategoryID   int64   `json:"toCategoryId"`
	Amount         float64 `json:"amount"`
}

func toTransferDTO(tr model.CategoryTransfer) transferDTO {
	return transferDTO{
		ID:             tr.ID,
		Date:           tr.Date,
		FromCategoryID: tr.FromCategoryID,
		ToCategoryID:   tr.ToCategoryID,
		Amount:         round2(tr.Amount),
		Memo:           tr.Memo,
	}
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	var month *model.Month
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := model.ParseMonth(raw)
		if err != nil {
			respondError(w, r, err)
			return
		}
		month = &m
	}

	transfers, err := s.store.GetTransfers(r.Context(), month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]transferDTO, 0, len(transfers))
	for _, tr := range transfers {
		out = append(out, toTransferDTO(tr))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.engine.CreateTransfer(r.Context(), budget.TransferInput{
		From:   req.FromCategoryID,
		To:     req.ToCategoryID,
		Date:   req.Date,
		Memo:   req.Memo,
		Amount: req.Amount,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTransferDTO(*created))
}

func (s *Server) handleUpdateTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "transfer_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := s.engine.UpdateTransfer(r.Context(), id, budget.TransferInput{
		From:   req.FromCategoryID,
		To:     req.ToCategoryID,
		Date:   req.Date,
		Memo:   req.Memo,
		Amount: req.Amount,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransferDTO(*updated))
}

func (s *Server) handleDeleteTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "transfer_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.engine.DeleteTransfer(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type autoPopulateItemDTO struct {
	CategoryName string  `json:"categoryName"`
	Error        string  `json:"error,omitempty"`
	CategoryID   int64   `json:"categoryId"`
	Balance      float64 `json:"balance"`
	Target       float64 `json:"target"`
	Amount       float64 `json:"amount"`
}

type autoPopulateDTO struct {
	Created          []autoPopulateItemDTO `json:"created"`
	Skipped          []autoPopulateItemDTO `json:"skipped"`
	Failed           []autoPopulateItemDTO `json:"failed"`
	TotalTransferred float64               `json:"totalTransferred"`
}

func toAutoPopulateItemDTOs(items []budget.AutoPopulateItem) []autoPopulateItemDTO {
	out := make([]autoPopulateItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, autoPopulateItemDTO{
			CategoryID:   it.CategoryID,
			CategoryName: it.CategoryName,
			Balance:      round2(it.Balance),
			Target:       round2(it.Target),
			Amount:       round2(it.Amount),
			Error:        it.Error,
		})
	}
	return out
}

func (s *Server) handleAutoPopulate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Date == "" {
		req.Date = s.today(r)
	}

	result, err := s.engine.AutoPopulate(r.Context(), req.Date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, autoPopulateDTO{
		Created:          toAutoPopulateItemDTOs(result.Created),
		Skipped:          toAutoPopulateItemDTOs(result.Skipped),
		Failed:           toAutoPopulateItemDTOs(result.Failed),
		TotalTransferred: round2(result.TotalTransferred),
	})
}
