package repository

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"expenseflow/internal/models"
)

const expenseColumns = `id, title, amount, date, category, description, status,
	receipt_reference, submitted_by, submitted_by_name, submitted_at,
	reviewed_by, reviewed_by_name, reviewed_at, comments, created_at, updated_at`

// ExpenseRepository handles expense record database operations
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new expense record
func (r *ExpenseRepository) Create(tx *sql.Tx, expense *models.Expense) error {
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	args := []interface{}{
		expense.ID,
		expense.Title,
		expense.Amount.String(),
		expense.Date,
		expense.Category,
		expense.Description,
		expense.Status,
		expense.ReceiptReference,
		expense.SubmittedBy,
		expense.SubmittedByName,
		expense.SubmittedAt,
		nullString(expense.ReviewedBy),
		nullString(expense.ReviewedByName),
		expense.ReviewedAt,
		expense.Comments,
		expense.CreatedAt,
		expense.UpdatedAt,
	}

	var err error
	if tx != nil {
		_, err = tx.Exec(query, args...)
	} else {
		_, err = r.db.Exec(query, args...)
	}

	if err != nil {
		r.logger.Error("Failed to create expense", zap.String("id", expense.ID), zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}

	return nil
}

// GetByID retrieves an expense by id. Returns (nil, nil) if no record exists.
func (r *ExpenseRepository) GetByID(id string) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

	expense, err := r.scanOne(r.db.QueryRow(query, id))
	if err != nil {
		r.logger.Error("Failed to get expense by id", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return expense, nil
}

// ListAll returns every expense, most recently submitted first
func (r *ExpenseRepository) ListAll() ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses ORDER BY submitted_at DESC`
	return r.list(query)
}

// ListBySubmitter returns the expenses submitted by one user, most recently submitted first
func (r *ExpenseRepository) ListBySubmitter(userID string) ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE submitted_by = ? ORDER BY submitted_at DESC`
	return r.list(query, userID)
}

func (r *ExpenseRepository) list(query string, args ...interface{}) ([]*models.Expense, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

// Update overwrites every mutable field of the expense in a single statement,
// so a status change and its reviewer stamp commit together.
func (r *ExpenseRepository) Update(tx *sql.Tx, expense *models.Expense) error {
	query := `
		UPDATE expenses SET
			title = ?, amount = ?, date = ?, category = ?, description = ?,
			status = ?, receipt_reference = ?,
			reviewed_by = ?, reviewed_by_name = ?, reviewed_at = ?, comments = ?,
			updated_at = ?
		WHERE id = ?
	`

	args := []interface{}{
		expense.Title,
		expense.Amount.String(),
		expense.Date,
		expense.Category,
		expense.Description,
		expense.Status,
		expense.ReceiptReference,
		nullString(expense.ReviewedBy),
		nullString(expense.ReviewedByName),
		expense.ReviewedAt,
		expense.Comments,
		expense.UpdatedAt,
		expense.ID,
	}

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, args...)
	} else {
		result, err = r.db.Exec(query, args...)
	}

	if err != nil {
		r.logger.Error("Failed to update expense", zap.String("id", expense.ID), zap.Error(err))
		return fmt.Errorf("failed to update expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// Delete permanently removes an expense record
func (r *ExpenseRepository) Delete(tx *sql.Tx, id string) error {
	query := "DELETE FROM expenses WHERE id = ?"

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, id)
	} else {
		result, err = r.db.Exec(query, id)
	}

	if err != nil {
		r.logger.Error("Failed to delete expense", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *ExpenseRepository) scanOne(row scanner) (*models.Expense, error) {
	var expense models.Expense
	var amount string
	var reviewedBy, reviewedByName sql.NullString
	var reviewedAt sql.NullTime

	err := row.Scan(
		&expense.ID,
		&expense.Title,
		&amount,
		&expense.Date,
		&expense.Category,
		&expense.Description,
		&expense.Status,
		&expense.ReceiptReference,
		&expense.SubmittedBy,
		&expense.SubmittedByName,
		&expense.SubmittedAt,
		&reviewedBy,
		&reviewedByName,
		&reviewedAt,
		&expense.Comments,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}

	expense.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored amount %q: %w", amount, err)
	}

	if reviewedBy.Valid {
		expense.ReviewedBy = reviewedBy.String
	}
	if reviewedByName.Valid {
		expense.ReviewedByName = reviewedByName.String
	}
	if reviewedAt.Valid {
		expense.ReviewedAt = &reviewedAt.Time
	}

	return &expense, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
