package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"snapgram/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	u := createUser(t, repo, "ann@example.com", "Ann Lee")
	assert.Len(t, u.ID, 36)

	byEmail, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", byID.Name)

	_, err = repo.GetByID(ctx, "does-not-exist")
	assert.True(t, models.IsNotFound(err))
}

func TestUserRepository_DuplicateEmailIsConflict(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	createUser(t, repo, "dup@example.com", "First")

	err := repo.Create(context.Background(), &models.User{Email: "dup@example.com", PasswordHash: "h", Name: "Second"})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeConflict))
}

func TestUserRepository_SearchByName(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	createUser(t, repo, "a@example.com", "Alice Smith")
	createUser(t, repo, "b@example.com", "Bob Smithers")
	createUser(t, repo, "c@example.com", "Carol 100%")

	tests := []struct {
		fragment string
		want     int
	}{
		{"smith", 2},
		{"ALICE", 1},
		{"zed", 0},
		{"%", 1},
		{"", 3},
	}
	for _, tt := range tests {
		t.Run(tt.fragment, func(t *testing.T) {
			users, err := repo.SearchByName(ctx, tt.fragment)
			require.NoError(t, err)
			assert.Len(t, users, tt.want)
		})
	}
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	u := createUser(t, repo, "u@example.com", "Before")
	other := createUser(t, repo, "taken@example.com", "Other")

	u.Name = "After"
	u.Username = ""
	require.NoError(t, repo.Update(ctx, u))
	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)

	u.Email = other.Email
	err = repo.Update(ctx, u)
	assert.True(t, models.HasCode(err, models.CodeConflict))

	require.NoError(t, repo.Delete(ctx, u.ID))
	assert.True(t, models.IsNotFound(repo.Delete(ctx, u.ID)))
	assert.True(t, models.IsNotFound(repo.Update(ctx, &models.User{ID: u.ID, Email: "x@example.com"})))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_GetByEmail_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1 ORDER BY "users"."id" LIMIT $2`)

	mock.ExpectQuery(query).
		WithArgs("test@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name"}).
			AddRow("u-1", "test@example.com", "Test"))
	user, err := repo.GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u-1", user.ID)

	mock.ExpectQuery(query).
		WithArgs("down@example.com", 1).
		WillReturnError(errors.New("connection reset"))
	_, err = repo.GetByEmail(ctx, "down@example.com")
	assert.True(t, models.HasCode(err, models.CodeInternal))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.True(t, isUniqueConstraintError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`)))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: users.email")))
	assert.False(t, isUniqueConstraintError(errors.New("connection refused")))
	assert.False(t, isUniqueConstraintError(nil))
}
