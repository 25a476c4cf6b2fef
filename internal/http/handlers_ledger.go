package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"spendtrack/internal/auth"
	"spendtrack/internal/core"
)

type transactionRow struct {
	ID       int64
	Date     string
	Category string
	Type     string
	Amount   string
}

type dashboardData struct {
	Username     string
	Transactions []transactionRow
	Income       string
	Expenses     string
	Balance      string
}

// handleDashboard renders the user's ledger with running totals.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	rows, err := s.ledger.List(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err, "user_id", user.ID)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	sum := core.Summarize(rows)
	data := dashboardData{
		Username: user.Username,
		Income:   sum.Income.String(),
		Expenses: sum.Expenses.String(),
		Balance:  sum.Balance.String(),
	}
	for _, tx := range rows {
		data.Transactions = append(data.Transactions, transactionRow{
			ID:       tx.ID,
			Date:     tx.Date,
			Category: tx.Category,
			Type:     tx.Type,
			Amount:   tx.Amount.String(),
		})
	}

	s.render(w, r, "index.html", data)
}

// handleAddForm renders a blank entry form. Nothing is persisted here.
func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "new.html", nil)
}

// handleCreate records a transaction for the current user. Date, category
// and type are stored as submitted; only the amount is parsed.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	cents, err := core.ParseDecimalToCents(r.Form.Get("amount"))
	if err != nil {
		slog.ErrorContext(r.Context(), "Amount parse failed", "error", err, "amount", r.Form.Get("amount"))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	tx := core.Transaction{
		Date:     sanitizeInput(r.Form.Get("date")),
		Category: sanitizeInput(r.Form.Get("category")),
		Type:     sanitizeInput(r.Form.Get("type")),
		Amount:   core.Money{Cents: cents},
		UserID:   user.ID,
	}
	if _, err := s.ledger.Record(r.Context(), tx); err != nil {
		slog.ErrorContext(r.Context(), "Record transaction failed", "error", err, "user_id", user.ID)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleDelete removes a transaction by id. The route is deliberately open:
// no session is required and ownership is not checked.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	id, err := strconv.ParseInt(r.Form.Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := s.ledger.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Delete transaction failed", "error", err, "id", id)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
