package http

import (
	"log/slog"
	"net/http"
	"strings"

	"budgetd/internal/core"
	"budgetd/internal/log"
)

// handleSummary serves GET /api/summary?user_id=&period=.
// Summaries are cached per user and period; write handlers invalidate
// the user's entries.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	userID := sanitizeInput(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	rawPeriod := r.URL.Query().Get("period")
	if rawPeriod == "" {
		rawPeriod = string(core.PeriodMonth)
	}
	period, err := core.ParsePeriod(rawPeriod)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	key := summaryCacheKey(userID, string(period))
	if cached, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", log.FieldUserID, userID, log.FieldPeriod, period)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	result, err := s.agg.Summarize(r.Context(), userID, period)
	if err != nil {
		if len(result.Categories) == 0 {
			slog.ErrorContext(r.Context(), "Summary failed", log.FieldError, err, log.FieldUserID, userID, log.FieldPeriod, period)
			writeDomainError(w, err)
			return
		}
		// Partial result: some categories failed to load. Serve what we
		// have but keep it out of the cache so the next read retries.
		slog.WarnContext(r.Context(), "Summary partially failed",
			log.FieldError, err,
			log.FieldUserID, userID,
			log.FieldPeriod, period,
			"failed_categories", result.Failed())
		writeJSON(w, http.StatusOK, result)
		return
	}

	s.summaryCache.Set(key, result)
	writeJSON(w, http.StatusOK, result)
}

// handleTransactions serves GET (list) and POST (create) on
// /api/transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := sanitizeInput(q.Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	category := sanitizeInput(q.Get("category"))
	if category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	items, err := s.txs.List(r.Context(), userID, category, q.Get("period"))
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", log.FieldError, err, log.FieldUserID, userID, log.FieldCategory, category)
		writeDomainError(w, err)
		return
	}
	if items == nil {
		items = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": items})
}

type createTransactionRequest struct {
	UserID      string `json:"user_id"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID := sanitizeInput(req.UserID)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	category, err := core.ParseCategory(req.Category)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	date, err := core.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	tx := core.Transaction{
		Category:    category,
		Amount:      core.Money{Cents: cents},
		Date:        date,
		Description: sanitizeInput(req.Description),
	}

	id, err := s.txs.Add(r.Context(), userID, tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create transaction failed", log.FieldError, err, log.FieldUserID, userID)
		writeDomainError(w, err)
		return
	}

	s.InvalidateUser(userID)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type deleteTransactionRequest struct {
	UserID   string `json:"user_id"`
	Category string `json:"category"`
	ID       string `json:"id"`
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req deleteTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID := sanitizeInput(req.UserID)
	if userID == "" || req.ID == "" {
		writeError(w, http.StatusBadRequest, "user_id and id are required")
		return
	}

	if err := s.txs.Delete(r.Context(), userID, req.Category, req.ID); err != nil {
		slog.ErrorContext(r.Context(), "Delete transaction failed", log.FieldError, err, log.FieldUserID, userID, "id", req.ID)
		writeDomainError(w, err)
		return
	}

	s.InvalidateUser(userID)
	w.WriteHeader(http.StatusNoContent)
}

type setBudgetRequest struct {
	UserID    string `json:"user_id"`
	Category  string `json:"category"`
	Amount    string `json:"amount"`
	Frequency string `json:"frequency"`
}

// handleSetBudget serves POST /api/budget. Daily and yearly amounts are
// normalized to their monthly equivalent before storage.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req setBudgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID := sanitizeInput(req.UserID)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	monthly, err := s.budgets.Set(r.Context(), userID, req.Category, strings.TrimSpace(req.Amount), req.Frequency)
	if err != nil {
		slog.ErrorContext(r.Context(), "Set budget failed", log.FieldError, err, log.FieldUserID, userID, log.FieldCategory, req.Category)
		writeDomainError(w, err)
		return
	}

	s.InvalidateUser(userID)
	writeJSON(w, http.StatusOK, map[string]any{"monthly_cents": monthly.Cents})
}

type resetBudgetRequest struct {
	UserID   string `json:"user_id"`
	Category string `json:"category"`
}

// handleResetBudget serves POST /api/budget/reset. Category "all"
// zeroes every limit; keys survive the reset.
func (s *Server) handleResetBudget(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req resetBudgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID := sanitizeInput(req.UserID)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	category := req.Category
	if category == "" {
		category = "all"
	}

	if err := s.budgets.Reset(r.Context(), userID, category); err != nil {
		slog.ErrorContext(r.Context(), "Reset budget failed", log.FieldError, err, log.FieldUserID, userID, log.FieldCategory, category)
		writeDomainError(w, err)
		return
	}

	s.InvalidateUser(userID)
	w.WriteHeader(http.StatusNoContent)
}
