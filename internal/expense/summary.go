package expense

import (
	"github.com/shopspring/decimal"

	"expenseflow/internal/models"
)

// Breakdown is a count and amount total for one status or category bucket
type Breakdown struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// Summary holds the derived aggregates over a visible expense set. It is a
// pure function of the set it was computed from and is never persisted.
type Summary struct {
	TotalCount       int                           `json:"total_count"`
	TotalAmount      decimal.Decimal               `json:"total_amount"`
	ByStatus         map[string]Breakdown          `json:"by_status"`
	ByCategory       map[models.Category]Breakdown `json:"by_category"`
	UniqueSubmitters int                           `json:"unique_submitters"`
}

// Summarize computes the aggregates for the given expenses
func Summarize(expenses []*models.Expense) *Summary {
	summary := &Summary{
		TotalAmount: decimal.Zero,
		ByStatus:    make(map[string]Breakdown),
		ByCategory:  make(map[models.Category]Breakdown),
	}

	submitters := make(map[string]bool)
	for _, e := range expenses {
		summary.TotalCount++
		summary.TotalAmount = summary.TotalAmount.Add(e.Amount)

		byStatus := summary.ByStatus[e.Status]
		byStatus.Count++
		byStatus.Amount = byStatus.Amount.Add(e.Amount)
		summary.ByStatus[e.Status] = byStatus

		byCategory := summary.ByCategory[e.Category]
		byCategory.Count++
		byCategory.Amount = byCategory.Amount.Add(e.Amount)
		summary.ByCategory[e.Category] = byCategory

		submitters[e.SubmittedBy] = true
	}
	summary.UniqueSubmitters = len(submitters)

	return summary
}
