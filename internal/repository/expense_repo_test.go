package repository

import (
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"expenseflow/internal/models"
)

// openTestDB opens an in-memory database with the real schema applied
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	// A single connection keeps every statement on the same in-memory db
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../migrations/001_initial_schema.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return db
}

func seedUser(t *testing.T, db *sql.DB, id, name string, role models.Role) *models.User {
	t.Helper()

	repo := NewUserRepository(db, zap.NewNop())
	now := time.Now().UTC().Truncate(time.Second)
	user := &models.User{
		ID:           id,
		Name:         name,
		Email:        id + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Department:   "Engineering",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(user))
	return user
}

func draftExpense(owner *models.User, id, title string, amount string) *models.Expense {
	now := time.Now().UTC().Truncate(time.Second)
	dec, _ := decimal.NewFromString(amount)
	return &models.Expense{
		ID:              id,
		Title:           title,
		Amount:          dec,
		Date:            now,
		Category:        models.CategoryMeals,
		Status:          "draft",
		SubmittedBy:     owner.ID,
		SubmittedByName: owner.Name,
		SubmittedAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestExpenseRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewExpenseRepository(db, zap.NewNop())
	alice := seedUser(t, db, "u1", "Alice", models.RoleEmployee)

	created := draftExpense(alice, "e1", "Team Lunch", "187.50")
	require.NoError(t, repo.Create(nil, created))

	got, err := repo.GetByID("e1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Team Lunch", got.Title)
	assert.True(t, got.Amount.Equal(decimal.NewFromFloat(187.50)), "got %s", got.Amount)
	assert.Equal(t, "draft", got.Status)
	assert.Equal(t, "u1", got.SubmittedBy)
	assert.Equal(t, "Alice", got.SubmittedByName)
	assert.Empty(t, got.ReviewedBy)
	assert.Nil(t, got.ReviewedAt)
}

func TestExpenseRepository_GetMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewExpenseRepository(db, zap.NewNop())

	got, err := repo.GetByID("no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExpenseRepository_UpdateStampsReviewAtomically(t *testing.T) {
	db := openTestDB(t)
	repo := NewExpenseRepository(db, zap.NewNop())
	alice := seedUser(t, db, "u1", "Alice", models.RoleEmployee)
	seedUser(t, db, "m1", "Mia", models.RoleManager)

	record := draftExpense(alice, "e1", "Team Lunch", "187.50")
	record.Status = "submitted"
	require.NoError(t, repo.Create(nil, record))

	reviewedAt := time.Now().UTC().Truncate(time.Second)
	record.Status = "rejected"
	record.ReviewedBy = "m1"
	record.ReviewedByName = "Mia"
	record.ReviewedAt = &reviewedAt
	record.Comments = "Use per-diem instead"
	require.NoError(t, repo.Update(nil, record))

	got, err := repo.GetByID("e1")
	require.NoError(t, err)
	assert.Equal(t, "rejected", got.Status)
	assert.Equal(t, "m1", got.ReviewedBy)
	assert.Equal(t, "Mia", got.ReviewedByName)
	require.NotNil(t, got.ReviewedAt)
	assert.Equal(t, "Use per-diem instead", got.Comments)
}

func TestExpenseRepository_UpdateMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewExpenseRepository(db, zap.NewNop())
	alice := seedUser(t, db, "u1", "Alice", models.RoleEmployee)

	record := draftExpense(alice, "ghost", "Ghost", "10")
	err := repo.Update(nil, record)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestExpenseRepository_ListOrderAndFilter(t *testing.T) {
	db := openTestDB(t)
	repo := NewExpenseRepository(db, zap.NewNop())
	alice := seedUser(t, db, "u1", "Alice", models.RoleEmployee)
	bob := seedUser(t, db, "u2", "Bob", models.RoleEmployee)

	older := draftExpense(alice, "e1", "Older", "10")
	older.SubmittedAt = older.SubmittedAt.Add(-time.Hour)
	newer := draftExpense(alice, "e2", "Newer", "20")
	other := draftExpense(bob, "e3", "Bob taxi", "30")

	for _, e := range []*models.Expense{older, newer, other} {
		require.NoError(t, repo.Create(nil, e))
	}

	all, err := repo.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 3)

	mine, err := repo.ListBySubmitter("u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "e2", mine[0].ID, "most recently submitted first")
	assert.Equal(t, "e1", mine[1].ID)
}

func TestExpenseRepository_Delete(t *testing.T) {
	db := openTestDB(t)
	repo := NewExpenseRepository(db, zap.NewNop())
	alice := seedUser(t, db, "u1", "Alice", models.RoleEmployee)

	require.NoError(t, repo.Create(nil, draftExpense(alice, "e1", "Team Lunch", "187.50")))
	require.NoError(t, repo.Delete(nil, "e1"))

	got, err := repo.GetByID("e1")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, repo.Delete(nil, "e1"), sql.ErrNoRows)
}
