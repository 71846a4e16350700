package http

import (
	"net/http"

	applog "fintrack/internal/log"
)

const txNotFound = "Transaction not found"

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	t, err := s.deps.Transactions.Create(r.Context(), userID(r), req.input())
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"msg":         "Transaction added",
		"transaction": toTransactionJSON(t),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Views.State(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": toTransactionsJSON(st.Transactions),
	})
}

func (s *Server) handleFilteredHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.deps.Views.History(r.Context(), userID(r), criteriaFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, r, applog.OpFilter, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions":  toTransactionsJSON(h.Transactions),
		"summary":       toSummaryJSON(h.Summary),
		"month_options": h.MonthOptions,
		"total":         h.Total,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Views.Dashboard(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"months":  toMonthsJSON(d.Months),
		"summary": toSummaryJSON(d.Summary),
	})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	t, err := s.deps.Transactions.Update(r.Context(), userID(r), id, req.input())
	if err != nil {
		writeError(w, r, applog.OpUpdate, err, txNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"msg":         "Updated",
		"transaction": toTransactionJSON(t),
	})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.deps.Transactions.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, r, applog.OpDelete, err, txNotFound)
		return
	}
	writeMessage(w, http.StatusOK, "Deleted")
}
