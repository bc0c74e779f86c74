package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"snapgram/internal/media"
	"snapgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn       func(context.Context, *models.User) error
	getByEmailFn   func(context.Context, string) (*models.User, error)
	getByIDFn      func(context.Context, string) (*models.User, error)
	listFn         func(context.Context) ([]*models.User, error)
	searchByNameFn func(context.Context, string) ([]*models.User, error)
	updateFn       func(context.Context, *models.User) error
	deleteFn       func(context.Context, string) error
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context) ([]*models.User, error) { return s.listFn(ctx) }
func (s *userRepoStub) SearchByName(ctx context.Context, fragment string) ([]*models.User, error) {
	return s.searchByNameFn(ctx, fragment)
}
func (s *userRepoStub) Update(ctx context.Context, u *models.User) error { return s.updateFn(ctx, u) }
func (s *userRepoStub) Delete(ctx context.Context, id string) error     { return s.deleteFn(ctx, id) }
func (s *userRepoStub) Ping(context.Context) error                      { return nil }

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, u *models.User) error {
			u.EnsureID()
			return nil
		},
		getByEmailFn:   func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByIDFn:      func(_ context.Context, id string) (*models.User, error) { return &models.User{ID: id}, nil },
		listFn:         func(_ context.Context) ([]*models.User, error) { return nil, nil },
		searchByNameFn: func(_ context.Context, _ string) ([]*models.User, error) { return nil, nil },
		updateFn:       func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:       func(_ context.Context, _ string) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn     func(context.Context, *models.Post) error
	getByIDFn    func(context.Context, string) (*models.Post, error)
	listFn       func(context.Context) ([]*models.Post, error)
	listByTagFn  func(context.Context, string) ([]*models.Post, error)
	listByUserFn func(context.Context, string) ([]*models.Post, error)
	updateFn     func(context.Context, *models.Post) error
	deleteFn     func(context.Context, string) error
	likeFn       func(context.Context, string, string) (int, error)
	unlikeFn     func(context.Context, string, string) (int, error)
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error { return s.createFn(ctx, p) }
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context) ([]*models.Post, error) { return s.listFn(ctx) }
func (s *postRepoStub) ListByTag(ctx context.Context, tag string) ([]*models.Post, error) {
	return s.listByTagFn(ctx, tag)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *postRepoStub) Update(ctx context.Context, p *models.Post) error { return s.updateFn(ctx, p) }
func (s *postRepoStub) Delete(ctx context.Context, id string) error     { return s.deleteFn(ctx, id) }
func (s *postRepoStub) Like(ctx context.Context, postID, userID string) (int, error) {
	return s.likeFn(ctx, postID, userID)
}
func (s *postRepoStub) Unlike(ctx context.Context, postID, userID string) (int, error) {
	return s.unlikeFn(ctx, postID, userID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.EnsureID()
			return nil
		},
		getByIDFn:    func(_ context.Context, id string) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:       func(_ context.Context) ([]*models.Post, error) { return nil, nil },
		listByTagFn:  func(_ context.Context, _ string) ([]*models.Post, error) { return nil, nil },
		listByUserFn: func(_ context.Context, _ string) ([]*models.Post, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:     func(_ context.Context, _ string) error { return nil },
		likeFn:       func(_ context.Context, _, _ string) (int, error) { return 1, nil },
		unlikeFn:     func(_ context.Context, _, _ string) (int, error) { return 0, nil },
	}
}

// countingHasher records how often Hash runs.
type countingHasher struct {
	hashes int
}

func (h *countingHasher) Hash(plain string) (string, error) {
	h.hashes++
	return "hashed:" + plain, nil
}

func (h *countingHasher) Compare(plain, hash string) bool {
	return hash == "hashed:"+plain
}

// recordingUploader keeps uploads in memory and records destroyed keys.
type recordingUploader struct {
	mu        sync.Mutex
	uploaded  []string
	destroyed []string
	uploadErr error
}

func (u *recordingUploader) Upload(_ context.Context, obj media.Object) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.uploadErr != nil {
		return "", u.uploadErr
	}
	u.uploaded = append(u.uploaded, obj.Key)
	return "https://media.test/" + obj.Key, nil
}

func (u *recordingUploader) Destroy(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.destroyed = append(u.destroyed, key)
	return nil
}

var errStore = errors.New("store unavailable")

// assertCode asserts that err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
