package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"quill/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLikeRepository_CreateIsInsertIfAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	post := seedPost(t, db, "liked", time.Now())

	inserted, err := repo.Create(ctx, &models.Like{PostID: post.ID, Fingerprint: "fp_a"})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Create(ctx, &models.Like{PostID: post.ID, Fingerprint: "fp_a"})
	require.NoError(t, err)
	assert.False(t, inserted, "second insert for the same pair is a no-op")

	count, err := repo.Count(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLikeRepository_FindAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	post := seedPost(t, db, "liked", time.Now())

	_, err := repo.Find(ctx, post.ID, "fp_a")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.Create(ctx, &models.Like{PostID: post.ID, Fingerprint: "fp_a"})
	require.NoError(t, err)

	like, err := repo.Find(ctx, post.ID, "fp_a")
	require.NoError(t, err)
	assert.Equal(t, "fp_a", like.Fingerprint)

	removed, err := repo.Delete(ctx, like.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, like.ID)
	require.NoError(t, err)
	assert.False(t, removed, "double delete is a no-op")
}

func TestLikeRepository_CreateSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "likes"`) + `.*` + regexp.QuoteMeta(`ON CONFLICT ("post_id","fingerprint") DO NOTHING`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	inserted, err := repo.Create(context.Background(), &models.Like{PostID: "p1", Fingerprint: "fp_a"})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_TranslatesUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "likes"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), &models.Like{PostID: "p1", Fingerprint: "fp_a"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(gorm.ErrRecordNotFound))
}
