package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"expenseflow/internal/models"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	seedUser(t, db, "u1", "Alice", models.RoleEmployee)

	byID, err := repo.GetByID("u1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Alice", byID.Name)
	assert.Equal(t, models.RoleEmployee, byID.Role)

	byEmail, err := repo.GetByEmail("u1@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "u1", byEmail.ID)
}

func TestUserRepository_GetByEmailIsExactMatch(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	seedUser(t, db, "u1", "Alice", models.RoleEmployee)

	got, err := repo.GetByEmail("U1@example.com")
	require.NoError(t, err)
	assert.Nil(t, got, "email lookup must be case-sensitive")
}

func TestUserRepository_DuplicateEmailRejected(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	seedUser(t, db, "u1", "Alice", models.RoleEmployee)

	dup := &models.User{
		ID:           "u2",
		Name:         "Other Alice",
		Email:        "u1@example.com",
		PasswordHash: "x",
		Role:         models.RoleEmployee,
	}
	assert.Error(t, repo.Create(dup), "unique index must reject duplicate email")
}

func TestUserRepository_UpdateRole(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	seedUser(t, db, "u1", "Alice", models.RoleEmployee)

	require.NoError(t, repo.UpdateRole("u1", models.RoleManager))

	got, err := repo.GetByID("u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, got.Role)

	assert.Error(t, repo.UpdateRole("missing", models.RoleAdmin))
}

func TestUserRepository_GetMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	got, err := repo.GetByID("nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}
