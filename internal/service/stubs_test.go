package service

import (
	"context"
	"errors"
	"testing"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/models"
	"quill/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPostID = "0b6f3c1e-8d2a-4f5b-9c7e-1a2b3c4d5e6f"

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	findBySlugFn     func(context.Context, string) (*models.Post, error)
	findByIDFn       func(context.Context, string) (*models.Post, error)
	listFn           func(context.Context, int, int) ([]*models.Post, error)
	slugExistsFn     func(context.Context, string, string) (bool, error)
	createFn         func(context.Context, *models.Post) error
	updateFn         func(context.Context, *models.Post, string) error
	deleteFn         func(context.Context, string) error
	incrementViewsFn func(context.Context, string) error
}

func (s *postRepoStub) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.findBySlugFn(ctx, slug)
}
func (s *postRepoStub) FindByID(ctx context.Context, id string) (*models.Post, error) {
	return s.findByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return s.slugExistsFn(ctx, slug, excludeID)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post, previousSlug string) error {
	return s.updateFn(ctx, post, previousSlug)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IncrementViews(ctx context.Context, slug string) error {
	return s.incrementViewsFn(ctx, slug)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		findBySlugFn:     func(_ context.Context, _ string) (*models.Post, error) { return nil, gorm.ErrRecordNotFound },
		findByIDFn:       func(_ context.Context, _ string) (*models.Post, error) { return nil, gorm.ErrRecordNotFound },
		listFn:           func(_ context.Context, _, _ int) ([]*models.Post, error) { return nil, nil },
		slugExistsFn:     func(_ context.Context, _, _ string) (bool, error) { return false, nil },
		createFn:         func(_ context.Context, _ *models.Post) error { return nil },
		updateFn:         func(_ context.Context, _ *models.Post, _ string) error { return nil },
		deleteFn:         func(_ context.Context, _ string) error { return nil },
		incrementViewsFn: func(_ context.Context, _ string) error { return nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	findFn   func(context.Context, string, string) (*models.Like, error)
	createFn func(context.Context, *models.Like) (bool, error)
	deleteFn func(context.Context, string) (bool, error)
	countFn  func(context.Context, string) (int64, error)
}

func (s *likeRepoStub) Find(ctx context.Context, postID, fingerprint string) (*models.Like, error) {
	return s.findFn(ctx, postID, fingerprint)
}
func (s *likeRepoStub) Create(ctx context.Context, like *models.Like) (bool, error) {
	return s.createFn(ctx, like)
}
func (s *likeRepoStub) Delete(ctx context.Context, likeID string) (bool, error) {
	return s.deleteFn(ctx, likeID)
}
func (s *likeRepoStub) Count(ctx context.Context, postID string) (int64, error) {
	return s.countFn(ctx, postID)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		findFn:   func(_ context.Context, _, _ string) (*models.Like, error) { return nil, gorm.ErrRecordNotFound },
		createFn: func(_ context.Context, _ *models.Like) (bool, error) { return true, nil },
		deleteFn: func(_ context.Context, _ string) (bool, error) { return true, nil },
		countFn:  func(_ context.Context, _ string) (int64, error) { return 0, nil },
	}
}

// newSQLiteRepos returns repositories over a fresh in-memory database.
func newSQLiteRepos(t *testing.T) (repository.PostRepository, repository.LikeRepository) {
	t.Helper()
	db, err := database.Connect(&config.Config{
		Env:          "test",
		DBDriver:     config.DriverSQLite,
		DBSQLitePath: ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repository.NewPostRepository(db), repository.NewLikeRepository(db)
}

func assertAppError(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}
