// Package report renders the expense set visible to a user into an Excel
// workbook for offline review and finance hand-off.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"expenseflow/internal/expense"
	"expenseflow/internal/models"
)

const (
	expensesSheet = "Expenses"
	summarySheet  = "Summary"
)

// Exporter writes expense reports as Excel workbooks
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new report exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// WriteWorkbook renders the expenses and their summary into w as an xlsx
// workbook with one detail sheet and one summary sheet.
func (e *Exporter) WriteWorkbook(w io.Writer, expenses []*models.Expense, summary *expense.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := e.fillExpensesSheet(f, expenses); err != nil {
		return err
	}
	if err := e.fillSummarySheet(f, summary); err != nil {
		return err
	}

	// The default sheet becomes the detail sheet
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(expensesSheet)
	if err != nil {
		return fmt.Errorf("failed to locate expenses sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Expense report exported", zap.Int("rows", len(expenses)))
	return nil
}

func (e *Exporter) fillExpensesSheet(f *excelize.File, expenses []*models.Expense) error {
	if _, err := f.NewSheet(expensesSheet); err != nil {
		return fmt.Errorf("failed to create expenses sheet: %w", err)
	}

	headers := []string{
		"ID", "Title", "Amount", "Date", "Category", "Status",
		"Submitted By", "Submitted At", "Reviewed By", "Reviewed At", "Comments",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(expensesSheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header: %w", err)
		}
	}

	for row, exp := range expenses {
		reviewedAt := ""
		if exp.ReviewedAt != nil {
			reviewedAt = exp.ReviewedAt.Format("2006-01-02 15:04")
		}
		amount, _ := exp.Amount.Float64()

		values := []interface{}{
			exp.ID,
			exp.Title,
			amount,
			exp.Date.Format("2006-01-02"),
			exp.Category.String(),
			exp.Status,
			exp.SubmittedByName,
			exp.SubmittedAt.Format("2006-01-02 15:04"),
			exp.ReviewedByName,
			reviewedAt,
			exp.Comments,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(expensesSheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell: %w", err)
			}
		}
	}

	return nil
}

func (e *Exporter) fillSummarySheet(f *excelize.File, summary *expense.Summary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	totalAmount, _ := summary.TotalAmount.Float64()
	rows := [][]interface{}{
		{"Total expenses", summary.TotalCount},
		{"Total amount", totalAmount},
		{"Unique submitters", summary.UniqueSubmitters},
		{},
		{"By status", "Count", "Amount"},
	}

	for _, status := range []string{"draft", "submitted", "approved", "rejected"} {
		breakdown, ok := summary.ByStatus[status]
		if !ok {
			continue
		}
		amount, _ := breakdown.Amount.Float64()
		rows = append(rows, []interface{}{status, breakdown.Count, amount})
	}

	rows = append(rows, []interface{}{}, []interface{}{"By category", "Count", "Amount"})
	for _, category := range models.Categories() {
		breakdown, ok := summary.ByCategory[category]
		if !ok {
			continue
		}
		amount, _ := breakdown.Amount.Float64()
		rows = append(rows, []interface{}{category.String(), breakdown.Count, amount})
	}

	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(summarySheet, cell, value); err != nil {
				return fmt.Errorf("failed to set summary cell: %w", err)
			}
		}
	}

	return nil
}
