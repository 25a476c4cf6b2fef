package core

import "testing"

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		{Date: "2024-01-01", Category: "Salary", Type: TypeIncome, Amount: Money{Cents: 100000}},
		{Date: "2024-01-02", Category: "Food", Type: TypeExpense, Amount: Money{Cents: 20000}},
	}
	s := Summarize(txs)
	if s.Income.Cents != 100000 {
		t.Fatalf("income: expected 100000, got %d", s.Income.Cents)
	}
	if s.Expenses.Cents != 20000 {
		t.Fatalf("expenses: expected 20000, got %d", s.Expenses.Cents)
	}
	if s.Balance.Cents != 80000 {
		t.Fatalf("balance: expected 80000, got %d", s.Balance.Cents)
	}
}

func TestSummarizeIgnoresUnknownTypes(t *testing.T) {
	txs := []Transaction{
		{Type: TypeIncome, Amount: Money{Cents: 500}},
		{Type: "transfer", Amount: Money{Cents: 9999}},
		{Type: "", Amount: Money{Cents: 123}},
		{Type: "Income", Amount: Money{Cents: 777}}, // case-sensitive
	}
	s := Summarize(txs)
	if s.Income.Cents != 500 || s.Expenses.Cents != 0 {
		t.Fatalf("unknown types leaked into totals: %+v", s)
	}
	if s.Balance.Cents != 500 {
		t.Fatalf("balance: expected 500, got %d", s.Balance.Cents)
	}
}

func TestSummarizeExactness(t *testing.T) {
	// Amounts chosen to accumulate rounding error under float64 arithmetic.
	var txs []Transaction
	for i := 0; i < 1000; i++ {
		txs = append(txs, Transaction{Type: TypeIncome, Amount: Money{Cents: 10}}) // 0.10 each
	}
	s := Summarize(txs)
	if s.Income.Cents != 10000 {
		t.Fatalf("expected exactly 10000 cents, got %d", s.Income.Cents)
	}
	if s.Balance.Cents != s.Income.Cents-s.Expenses.Cents {
		t.Fatalf("balance invariant broken: %+v", s)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Income.Cents != 0 || s.Expenses.Cents != 0 || s.Balance.Cents != 0 {
		t.Fatalf("empty ledger should produce zero totals: %+v", s)
	}
}
