// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	FindByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post, previousSlug string) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, slug string) error
}

// postRepository implements PostRepository
type postRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
	log     *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{
		db:      db,
		metrics: observability.NewDatabaseMetrics(),
		log:     observability.NewRepoLogger("posts"),
	}
}

const likeCountSelect = "posts.*, (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS like_count"

func withLikeCount(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).Select(likeCountSelect)
}

func (r *postRepository) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	defer r.metrics.TrackQuery("find_by_slug", "posts")()

	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(slug), &post, cache.PostTTL, func() error {
		return withLikeCount(r.db.WithContext(ctx)).Where("posts.slug = ?", slug).First(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	defer r.metrics.TrackQuery("find_by_id", "posts")()

	var post models.Post
	if err := withLikeCount(r.db.WithContext(ctx)).Where("posts.id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	defer r.metrics.TrackQuery("list", "posts")()

	var posts []*models.Post
	err := cache.Aside(ctx, cache.PostsListKey(limit, offset), &posts, cache.PostsListTTL, func() error {
		return withLikeCount(r.db.WithContext(ctx)).
			Order("posts.created_at DESC").
			Order("posts.id DESC").
			Limit(limit).
			Offset(offset).
			Find(&posts).Error
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	defer r.metrics.TrackQuery("slug_exists", "posts")()

	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("create", "posts")()

	if err := r.db.WithContext(ctx).Omit("Likes").Create(post).Error; err != nil {
		err = translateError(err)
		r.log.LogError(ctx, err, "create")
		return err
	}

	cache.InvalidatePostsList(ctx)
	r.log.LogCreate(ctx, map[string]any{"post_id": post.ID, "slug": post.Slug})
	return nil
}

// Update writes slug, title, excerpt and content. previousSlug is the slug
// the post had before the edit, so cached copies under it are dropped too.
func (r *postRepository) Update(ctx context.Context, post *models.Post, previousSlug string) error {
	defer r.metrics.TrackQuery("update", "posts")()

	result := r.db.WithContext(ctx).
		Model(post).
		Select("slug", "title", "excerpt", "content", "updated_at").
		Updates(post)
	if result.Error != nil {
		err := translateError(result.Error)
		r.log.LogError(ctx, err, "update")
		return err
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.InvalidatePost(ctx, previousSlug, post.Slug)
	cache.InvalidatePostsList(ctx)
	r.log.LogUpdate(ctx, map[string]any{"post_id": post.ID, "slug": post.Slug, "previous_slug": previousSlug})
	return nil
}

// Delete removes the post and its likes in one transaction.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	defer r.metrics.TrackQuery("delete", "posts")()

	var slug string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "slug").Where("id = ?", id).First(&post).Error; err != nil {
			return err
		}
		slug = post.Slug

		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Post{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.LogError(ctx, err, "delete")
		}
		return err
	}

	cache.InvalidatePost(ctx, slug)
	cache.InvalidatePostsList(ctx)
	r.log.LogDelete(ctx, map[string]any{"post_id": id, "slug": slug})
	return nil
}

// IncrementViews bumps the counter atomically in the database.
func (r *postRepository) IncrementViews(ctx context.Context, slug string) error {
	defer r.metrics.TrackQuery("increment_views", "posts")()

	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("slug = ?", slug).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.InvalidatePost(ctx, slug)
	return nil
}
