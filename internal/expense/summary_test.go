package expense

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenseflow/internal/models"
)

func expenseOf(submitter string, category models.Category, status string, amount float64) *models.Expense {
	return &models.Expense{
		ID:          submitter + "-" + string(category) + "-" + status,
		Title:       "t",
		Amount:      decimal.NewFromFloat(amount),
		Date:        time.Now(),
		Category:    category,
		Status:      status,
		SubmittedBy: submitter,
	}
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.Equal(t, 0, summary.TotalCount)
	assert.True(t, summary.TotalAmount.IsZero())
	assert.Empty(t, summary.ByStatus)
	assert.Empty(t, summary.ByCategory)
	assert.Equal(t, 0, summary.UniqueSubmitters)
}

func TestSummarize_Aggregates(t *testing.T) {
	expenses := []*models.Expense{
		expenseOf("u1", models.CategoryMeals, "submitted", 187.50),
		expenseOf("u1", models.CategoryTravel, "approved", 320.00),
		expenseOf("u2", models.CategoryMeals, "draft", 42.10),
		expenseOf("u2", models.CategoryOffice, "rejected", 15.99),
	}

	summary := Summarize(expenses)

	assert.Equal(t, 4, summary.TotalCount)
	assert.True(t, summary.TotalAmount.Equal(decimal.NewFromFloat(565.59)), "got %s", summary.TotalAmount)
	assert.Equal(t, 2, summary.UniqueSubmitters)

	meals := summary.ByCategory[models.CategoryMeals]
	assert.Equal(t, 2, meals.Count)
	assert.True(t, meals.Amount.Equal(decimal.NewFromFloat(229.60)), "got %s", meals.Amount)

	submitted := summary.ByStatus["submitted"]
	assert.Equal(t, 1, submitted.Count)
	assert.True(t, submitted.Amount.Equal(decimal.NewFromFloat(187.50)))
}

// The per-category totals must always add up to the grand total, whatever
// the mix of the visible set.
func TestSummarize_CategoryTotalsEqualGrandTotal(t *testing.T) {
	sets := [][]*models.Expense{
		nil,
		{expenseOf("u1", models.CategoryOther, "draft", 0.01)},
		{
			expenseOf("u1", models.CategoryMeals, "submitted", 187.50),
			expenseOf("u1", models.CategoryMeals, "draft", 12.25),
			expenseOf("u2", models.CategoryTravel, "approved", 1034.99),
			expenseOf("u3", models.CategoryEquipment, "rejected", 255.00),
			expenseOf("u3", models.CategoryAccommodation, "submitted", 89.90),
		},
	}

	for _, expenses := range sets {
		summary := Summarize(expenses)

		byCategory := decimal.Zero
		for _, breakdown := range summary.ByCategory {
			byCategory = byCategory.Add(breakdown.Amount)
		}
		require.True(t, byCategory.Equal(summary.TotalAmount),
			"category sum %s != total %s", byCategory, summary.TotalAmount)

		byStatus := decimal.Zero
		for _, breakdown := range summary.ByStatus {
			byStatus = byStatus.Add(breakdown.Amount)
		}
		require.True(t, byStatus.Equal(summary.TotalAmount),
			"status sum %s != total %s", byStatus, summary.TotalAmount)
	}
}
