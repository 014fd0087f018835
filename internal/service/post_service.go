package service

import (
	"context"
	"errors"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/slug"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pagination bounds for ListPosts.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// DefaultSlugMaxAttempts bounds slug allocation when the caller passes zero.
const DefaultSlugMaxAttempts = 5

const msgPostNotFound = "Post not found."

type PostService struct {
	postRepo        repository.PostRepository
	likeRepo        repository.LikeRepository
	slugMaxAttempts int
}

type ListPostsInput struct {
	Limit  int
	Offset int
}

type CreatePostInput struct {
	Title   string
	Excerpt string
	Content string
	// Source is recorded in metrics: form, markdown or seed.
	Source string
}

// UpdatePostInput identifies the post by ID, or by Slug when ID is empty.
type UpdatePostInput struct {
	ID      string
	Slug    string
	Title   string
	Excerpt string
	Content string
}

// DeletePostInput identifies the post by ID, or by Slug when ID is empty.
type DeletePostInput struct {
	ID   string
	Slug string
}

func NewPostService(postRepo repository.PostRepository, likeRepo repository.LikeRepository, slugMaxAttempts int) *PostService {
	if slugMaxAttempts <= 0 {
		slugMaxAttempts = DefaultSlugMaxAttempts
	}
	return &PostService{
		postRepo:        postRepo,
		likeRepo:        likeRepo,
		slugMaxAttempts: slugMaxAttempts,
	}
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	limit, offset := in.Limit, in.Offset
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.postRepo.List(ctx, limit, offset)
}

// GetPostBySlug returns the post with Liked set for fingerprint.
func (s *PostService) GetPostBySlug(ctx context.Context, postSlug, fingerprint string) (*models.Post, error) {
	post, err := s.postRepo.FindBySlug(ctx, postSlug)
	if err != nil {
		return nil, mapNotFound(err)
	}

	liked, err := s.isLiked(ctx, post.ID, fingerprint)
	if err != nil {
		return nil, err
	}
	post.Liked = liked
	return post, nil
}

func (s *PostService) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	if !validPostID(id) {
		return nil, models.NewNotFoundError(msgPostNotFound)
	}
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return post, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.StartServiceSpan(ctx, "PostService", "CreatePost")
	defer span.End()

	fields := postFields{Title: in.Title, Excerpt: in.Excerpt, Content: in.Content}
	if err := fields.normalize(); err != nil {
		return nil, err
	}
	source := in.Source
	if source == "" {
		source = models.PostSourceForm
	}

	post := &models.Post{
		Title:   fields.Title,
		Excerpt: fields.Excerpt,
		Content: fields.Content,
	}
	err := s.writeWithUniqueSlug(ctx,
		func(ctx context.Context) (string, error) {
			return slug.Resolve(ctx, fields.Title, s.slugExists(""))
		},
		func(candidate string) error {
			post.Slug = candidate
			return s.postRepo.Create(ctx, post)
		},
	)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	observability.PostsCreated.WithLabelValues(source).Inc()
	observability.LogServiceCall(ctx, "PostService", "CreatePost", map[string]any{
		"post_id": post.ID,
		"slug":    post.Slug,
		"source":  source,
	})
	return post, nil
}

// UpdatePost edits a post and returns it with the slug it had before the edit.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, string, error) {
	span, ctx := observability.StartServiceSpan(ctx, "PostService", "UpdatePost")
	defer span.End()

	fields := postFields{Title: in.Title, Excerpt: in.Excerpt, Content: in.Content}
	if err := fields.normalize(); err != nil {
		return nil, "", err
	}

	post, err := s.findForWrite(ctx, in.ID, in.Slug)
	if err != nil {
		return nil, "", err
	}
	previousSlug := post.Slug

	post.Title = fields.Title
	post.Excerpt = fields.Excerpt
	post.Content = fields.Content

	err = s.writeWithUniqueSlug(ctx,
		func(ctx context.Context) (string, error) {
			return slug.ResolveForUpdate(ctx, fields.Title, previousSlug, s.slugExists(post.ID))
		},
		func(candidate string) error {
			post.Slug = candidate
			return s.postRepo.Update(ctx, post, previousSlug)
		},
	)
	if err != nil {
		span.SetError(err)
		return nil, "", mapNotFound(err)
	}

	observability.LogServiceCall(ctx, "PostService", "UpdatePost", map[string]any{
		"post_id":       post.ID,
		"slug":          post.Slug,
		"previous_slug": previousSlug,
	})
	return post, previousSlug, nil
}

// DeletePost removes the post and all of its likes.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.findForWrite(ctx, in.ID, in.Slug)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func (s *PostService) IncrementViews(ctx context.Context, postSlug string) error {
	if err := s.postRepo.IncrementViews(ctx, postSlug); err != nil {
		return mapNotFound(err)
	}
	observability.PostViews.Inc()
	return nil
}

// writeWithUniqueSlug resolves a slug and runs write with it. A write
// rejected by the slug unique index is retried with a freshly resolved slug
// up to slugMaxAttempts times.
func (s *PostService) writeWithUniqueSlug(
	ctx context.Context,
	resolve func(context.Context) (string, error),
	write func(candidate string) error,
) error {
	var lastErr error
	for attempt := 1; attempt <= s.slugMaxAttempts; attempt++ {
		candidate, err := resolve(ctx)
		if err != nil {
			return err
		}

		err = write(candidate)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return err
		}
		lastErr = err
		observability.SlugConflictRetries.Inc()
	}
	return models.NewConflictError("Could not allocate a unique slug. Please try again.", lastErr)
}

func (s *PostService) slugExists(excludeID string) slug.ExistsFunc {
	return func(ctx context.Context, candidate string) (bool, error) {
		taken, err := s.postRepo.SlugExists(ctx, candidate, excludeID)
		if taken {
			observability.SlugCollisions.Inc()
		}
		return taken, err
	}
}

// findForWrite loads the post to modify. A slug is resolved to its ID
// through the read cache; the post itself is always re-read from storage.
func (s *PostService) findForWrite(ctx context.Context, id, postSlug string) (*models.Post, error) {
	if id == "" {
		cached, err := s.postRepo.FindBySlug(ctx, postSlug)
		if err != nil {
			return nil, mapNotFound(err)
		}
		id = cached.ID
	}
	if !validPostID(id) {
		return nil, models.NewNotFoundError(msgPostNotFound)
	}
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return post, nil
}

func (s *PostService) isLiked(ctx context.Context, postID, fingerprint string) (bool, error) {
	if fingerprint == "" {
		return false, nil
	}
	_, err := s.likeRepo.Find(ctx, postID, fingerprint)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// validPostID reports whether id has the UUID shape of a stored post ID.
// Postgres rejects anything else with an input syntax error.
func validPostID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(msgPostNotFound)
	}
	return err
}
