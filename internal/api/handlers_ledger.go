package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/moneypot/moneypot/internal/common"
	"github.com/moneypot/moneypot/internal/model"
)

type accountDTO struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	ID         int64  `json:"id"`
	SortOrder  int    `json:"sortOrder"`
	InMoneypot bool   `json:"inMoneypot"`
	Hidden     bool   `json:"hidden"`
}

func toAccountDTO(a model.Account) accountDTO {
	return accountDTO{
		ID:         a.ID,
		Name:       a.Name,
		Type:       string(a.Type),
		SortOrder:  a.SortOrder,
		InMoneypot: a.InMoneypot,
		Hidden:     a.Hidden,
	}
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	includeHidden := r.URL.Query().Get("includeHidden") == "true"

	if r.URL.Query().Get("balances") == "true" {
		balances, err := s.store.GetAccountBalances(r.Context(), includeHidden)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, toAccountBalanceDTOs(balances))
		return
	}

	accounts, err := s.store.GetAccounts(r.Context(), includeHidden)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]accountDTO, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountDTO(a))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Type       string `json:"type"`
		SortOrder  int    `json:"sortOrder"`
		InMoneypot bool   `json:"inMoneypot"`
		Hidden     bool   `json:"hidden"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.store.CreateAccount(r.Context(), &model.Account{
		Name:       req.Name,
		Type:       model.AccountType(req.Type),
		SortOrder:  req.SortOrder,
		InMoneypot: req.InMoneypot,
		Hidden:     req.Hidden,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAccountDTO(*created))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "account_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Name       *string `json:"name"`
		Type       *string `json:"type"`
		SortOrder  *int    `json:"sortOrder"`
		InMoneypot *bool   `json:"inMoneypot"`
		Hidden     *bool   `json:"hidden"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	update := model.AccountUpdate{
		Name:       req.Name,
		SortOrder:  req.SortOrder,
		InMoneypot: req.InMoneypot,
		Hidden:     req.Hidden,
	}
	if req.Type != nil {
		t := model.AccountType(*req.Type)
		update.Type = &t
	}
	if err := s.store.UpdateAccount(r.Context(), id, update); err != nil {
		respondError(w, r, err)
		return
	}

	account, err := s.store.GetAccountByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAccountDTO(*account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "account_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.store.DeleteAccount(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryDTO struct {
	Name          string  `json:"name"`
	ID            int64   `json:"id"`
	MonthlyAmount float64 `json:"monthlyAmount"`
	SortOrder     int     `json:"sortOrder"`
	IsSystem      bool    `json:"isSystem"`
	Hidden        bool    `json:"hidden"`
}

func toCategoryDTO(c model.Category) categoryDTO {
	return categoryDTO{
		ID:            c.ID,
		Name:          c.Name,
		MonthlyAmount: round2(c.MonthlyAmount),
		SortOrder:     c.SortOrder,
		IsSystem:      c.IsSystem,
		Hidden:        c.Hidden,
	}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	includeHidden := r.URL.Query().Get("includeHidden") == "true"

	categories, err := s.store.GetCategories(r.Context(), includeHidden)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]categoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryDTO(c))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string          `json:"name"`
		MonthlyAmount decimal.Decimal `json:"monthlyAmount"`
		SortOrder     int             `json:"sortOrder"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.store.CreateCategory(r.Context(), &model.Category{
		Name:          req.Name,
		MonthlyAmount: req.MonthlyAmount,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCategoryDTO(*created))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "category_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Name          *string          `json:"name"`
		MonthlyAmount *decimal.Decimal `json:"monthlyAmount"`
		SortOrder     *int             `json:"sortOrder"`
		Hidden        *bool            `json:"hidden"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	update := model.CategoryUpdate{
		Name:          req.Name,
		MonthlyAmount: req.MonthlyAmount,
		SortOrder:     req.SortOrder,
		Hidden:        req.Hidden,
	}
	if err := s.store.UpdateCategory(r.Context(), id, update); err != nil {
		respondError(w, r, err)
		return
	}

	cat, err := s.store.GetCategoryByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCategoryDTO(*cat))
}

type categoryRenameDTO struct {
	OldName   string `json:"oldName"`
	RenamedAt string `json:"renamedAt"`
}

func (s *Server) handleCategoryRenames(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "category_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := s.store.GetCategoryByID(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	renames, err := s.store.GetCategoryRenames(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]categoryRenameDTO, 0, len(renames))
	for _, rn := range renames {
		out = append(out, categoryRenameDTO{
			OldName:   rn.OldName,
			RenamedAt: rn.RenamedAt.Format("2006-01-02"),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

type transactionDTO struct {
	Date        string  `json:"date"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	Type        string  `json:"type"`
	CategoryID  *int64  `json:"categoryId,omitempty"`
	PairID      *int64  `json:"pairId,omitempty"`
	ID          int64   `json:"id"`
	AccountID   int64   `json:"accountId"`
	Amount      float64 `json:"amount"`
	Reconciled  bool    `json:"reconciled"`
}

func toTransactionDTO(t model.Transaction) transactionDTO {
	return transactionDTO{
		ID:          t.ID,
		AccountID:   t.AccountID,
		CategoryID:  t.CategoryID,
		PairID:      t.PairID,
		Date:        t.Date,
		Description: t.Description,
		Status:      string(t.Status),
		Type:        string(t.Type),
		Amount:      round2(t.Amount),
		Reconciled:  t.Reconciled,
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter model.TransactionFilter

	if raw := q.Get("accountId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, r, common.Validationf("invalid accountId %q", raw))
			return
		}
		filter.AccountID = &id
	}
	if raw := q.Get("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, r, common.Validationf("invalid categoryId %q", raw))
			return
		}
		filter.CategoryID = &id
	}
	if raw := q.Get("status"); raw != "" {
		status := model.TransactionStatus(raw)
		if !status.Valid() {
			respondError(w, r, common.Validationf("invalid status %q", raw))
			return
		}
		filter.Status = &status
	}
	filter.StartDate = q.Get("startDate")
	filter.EndDate = q.Get("endDate")
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondError(w, r, common.Validationf("invalid limit %q", raw))
			return
		}
		filter.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			respondError(w, r, common.Validationf("invalid offset %q", raw))
			return
		}
		filter.Offset = offset
	}

	transactions, err := s.store.GetTransactions(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]transactionDTO, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, toTransactionDTO(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Status      string          `json:"status"`
		CategoryID  *int64          `json:"categoryId"`
		AccountID   int64           `json:"accountId"`
		Amount      decimal.Decimal `json:"amount"`
		Reconciled  bool            `json:"reconciled"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.store.CreateTransaction(r.Context(), &model.Transaction{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Date:        req.Date,
		Description: req.Description,
		Status:      model.TransactionStatus(req.Status),
		Type:        model.TypeRegular,
		Amount:      req.Amount,
		Reconciled:  req.Reconciled,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTransactionDTO(*created))
}

func (s *Server) handleCreateTransactionTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date          string          `json:"date"`
		Description   string          `json:"description"`
		Status        string          `json:"status"`
		FromAccountID int64           `json:"fromAccountId"`
		ToAccountID   int64           `json:"toAccountId"`
		Amount        decimal.Decimal `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Status == "" {
		req.Status = string(model.StatusSettled)
	}

	legs, err := s.store.CreateTransferPair(r.Context(),
		req.FromAccountID, req.ToAccountID, req.Date, req.Amount,
		req.Description, model.TransactionStatus(req.Status))
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]transactionDTO, 0, len(legs))
	for _, leg := range legs {
		out = append(out, toTransactionDTO(leg))
	}
	respondJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "transaction_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Date          *string          `json:"date"`
		Description   *string          `json:"description"`
		Status        *string          `json:"status"`
		CategoryID    *int64           `json:"categoryId"`
		Amount        *decimal.Decimal `json:"amount"`
		Reconciled    *bool            `json:"reconciled"`
		ClearCategory bool             `json:"clearCategory"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	update := model.TransactionUpdate{
		Date:          req.Date,
		Description:   req.Description,
		Amount:        req.Amount,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
		Reconciled:    req.Reconciled,
	}
	if req.Status != nil {
		status := model.TransactionStatus(*req.Status)
		update.Status = &status
	}
	if err := s.store.UpdateTransaction(r.Context(), id, update); err != nil {
		respondError(w, r, err)
		return
	}

	txn, err := s.store.GetTransactionByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionDTO(*txn))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "transaction_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := s.store.GetSetting(r.Context(), key)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

func (s *Server) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.store.SetSetting(r.Context(), key, req.Value); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}
