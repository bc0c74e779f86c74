package seed

import (
	"context"
	"fmt"
	"testing"

	"snapgram/internal/auth"
	"snapgram/internal/database"
	"snapgram/internal/media"
	"snapgram/internal/repository"
	"snapgram/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeeder(t *testing.T) (*Seeder, repository.PostRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	local, err := media.NewLocalStore(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	return NewSeeder(
		service.NewUserService(users, posts, hasher, local),
		service.NewPostService(posts, users, local),
		42,
	), posts
}

func TestSeeder_Run(t *testing.T) {
	s, posts := setupSeeder(t)
	ctx := context.Background()

	res, err := s.Run(ctx, Options{NumUsers: 5, NumPosts: 12})
	require.NoError(t, err)
	assert.Len(t, res.Users, 5)
	assert.Len(t, res.Posts, 12)

	stored, err := posts.List(ctx)
	require.NoError(t, err)
	total := 0
	for _, p := range stored {
		assert.Equal(t, len(p.Likes.Users), p.Likes.Count)
		total += p.Likes.Count
	}
	assert.Equal(t, res.Likes, total)
}

func TestSeeder_Clean(t *testing.T) {
	s, posts := setupSeeder(t)
	ctx := context.Background()

	_, err := s.Run(ctx, Options{NumUsers: 3, NumPosts: 4})
	require.NoError(t, err)

	res, err := s.Run(ctx, Options{NumUsers: 2, NumPosts: 1, ShouldClean: true})
	require.NoError(t, err)
	assert.Len(t, res.Users, 2)

	stored, err := posts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestSeedPosts_RequiresUsers(t *testing.T) {
	s, _ := setupSeeder(t)
	_, err := s.SeedPosts(context.Background(), nil, 1)
	assert.Error(t, err)
}
