package repository

import (
	"context"

	"quill/internal/models"
	"quill/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository stores fingerprint likes. Writes are conditional so the
// (post_id, fingerprint) unique index decides races.
type LikeRepository interface {
	Find(ctx context.Context, postID, fingerprint string) (*models.Like, error)
	// Create inserts like unless the pair already exists; it reports whether a row was written.
	Create(ctx context.Context, like *models.Like) (bool, error)
	// Delete removes the like by id; it reports whether a row was removed.
	Delete(ctx context.Context, likeID string) (bool, error)
	Count(ctx context.Context, postID string) (int64, error)
}

type likeRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
	log     *observability.RepoLogger
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{
		db:      db,
		metrics: observability.NewDatabaseMetrics(),
		log:     observability.NewRepoLogger("likes"),
	}
}

func (r *likeRepository) Find(ctx context.Context, postID, fingerprint string) (*models.Like, error) {
	defer r.metrics.TrackQuery("find", "likes")()

	var like models.Like
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND fingerprint = ?", postID, fingerprint).
		Take(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) (bool, error) {
	defer r.metrics.TrackQuery("create", "likes")()

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "fingerprint"}},
			DoNothing: true,
		}).
		Create(like)
	if result.Error != nil {
		err := translateError(result.Error)
		r.log.LogError(ctx, err, "create")
		return false, err
	}

	inserted := result.RowsAffected > 0
	if inserted {
		r.log.LogCreate(ctx, map[string]any{"post_id": like.PostID, "like_id": like.ID})
	}
	return inserted, nil
}

func (r *likeRepository) Delete(ctx context.Context, likeID string) (bool, error) {
	defer r.metrics.TrackQuery("delete", "likes")()

	result := r.db.WithContext(ctx).Where("id = ?", likeID).Delete(&models.Like{})
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "delete")
		return false, result.Error
	}

	removed := result.RowsAffected > 0
	if removed {
		r.log.LogDelete(ctx, map[string]any{"like_id": likeID})
	}
	return removed, nil
}

func (r *likeRepository) Count(ctx context.Context, postID string) (int64, error) {
	defer r.metrics.TrackQuery("count", "likes")()

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
