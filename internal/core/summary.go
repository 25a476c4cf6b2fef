package core

// Summary holds the aggregate totals shown on the dashboard.
type Summary struct {
	Income   Money
	Expenses Money
	Balance  Money
}

// Summarize reduces a user's transactions into total income, total expenses
// and the net balance. Summation is exact in cents. Entries whose Type is
// neither "income" nor "expense" contribute to neither total.
func Summarize(txs []Transaction) Summary {
	var s Summary
	for _, tx := range txs {
		switch tx.Type {
		case TypeIncome:
			s.Income.Cents += tx.Amount.Cents
		case TypeExpense:
			s.Expenses.Cents += tx.Amount.Cents
		}
	}
	s.Balance.Cents = s.Income.Cents - s.Expenses.Cents
	return s
}
