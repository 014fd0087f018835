package service

import (
	"context"
	"errors"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"

	"gorm.io/gorm"
)

// DefaultLikeToggleMaxAttempts bounds toggle retries when the caller passes zero.
const DefaultLikeToggleMaxAttempts = 3

// LikeState is a fingerprint's view of a post's likes.
type LikeState struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

type LikeService struct {
	postRepo    repository.PostRepository
	likeRepo    repository.LikeRepository
	maxAttempts int
}

func NewLikeService(postRepo repository.PostRepository, likeRepo repository.LikeRepository, maxAttempts int) *LikeService {
	if maxAttempts <= 0 {
		maxAttempts = DefaultLikeToggleMaxAttempts
	}
	return &LikeService{
		postRepo:    postRepo,
		likeRepo:    likeRepo,
		maxAttempts: maxAttempts,
	}
}

// ToggleLike flips whether fingerprint likes the post. The unique
// (post_id, fingerprint) index arbitrates concurrent toggles: a conditional
// write that affects no rows means another request got there first, so the
// state is re-read and the toggle tried again.
func (s *LikeService) ToggleLike(ctx context.Context, postID, fingerprint string) (*LikeState, error) {
	span, ctx := observability.StartServiceSpan(ctx, "LikeService", "ToggleLike")
	defer span.End()

	if !validPostID(postID) {
		return nil, models.NewNotFoundError(msgPostNotFound)
	}
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		return nil, mapNotFound(err)
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			observability.LikeToggleRetries.Inc()
		}

		liked, done, err := s.toggleOnce(ctx, postID, fingerprint)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		if !done {
			continue
		}

		action := "unliked"
		if liked {
			action = "liked"
		}
		observability.LikeToggles.WithLabelValues(action).Inc()

		count, err := s.likeRepo.Count(ctx, postID)
		if err != nil {
			return nil, err
		}
		return &LikeState{Liked: liked, Count: count}, nil
	}

	err := models.NewConflictError("The like could not be updated. Please try again.", nil)
	span.SetError(err)
	return nil, err
}

// toggleOnce reports the new liked state and whether its write took effect.
func (s *LikeService) toggleOnce(ctx context.Context, postID, fingerprint string) (liked, done bool, err error) {
	existing, err := s.likeRepo.Find(ctx, postID, fingerprint)
	switch {
	case err == nil:
		removed, err := s.likeRepo.Delete(ctx, existing.ID)
		return false, removed, err
	case errors.Is(err, gorm.ErrRecordNotFound):
		inserted, err := s.likeRepo.Create(ctx, &models.Like{PostID: postID, Fingerprint: fingerprint})
		if errors.Is(err, repository.ErrDuplicateKey) {
			return true, false, nil
		}
		return true, inserted, err
	default:
		return false, false, err
	}
}

// ToggleLikeBySlug resolves the slug, toggles, and drops the cached detail.
func (s *LikeService) ToggleLikeBySlug(ctx context.Context, postSlug, fingerprint string) (*LikeState, error) {
	post, err := s.postRepo.FindBySlug(ctx, postSlug)
	if err != nil {
		return nil, mapNotFound(err)
	}
	state, err := s.ToggleLike(ctx, post.ID, fingerprint)
	if err != nil {
		return nil, err
	}
	cache.InvalidatePost(ctx, postSlug)
	cache.InvalidatePostsList(ctx)
	return state, nil
}

func (s *LikeService) LikeStatus(ctx context.Context, postID, fingerprint string) (*LikeState, error) {
	if !validPostID(postID) {
		return nil, models.NewNotFoundError(msgPostNotFound)
	}
	liked := true
	if _, err := s.likeRepo.Find(ctx, postID, fingerprint); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		liked = false
	}

	count, err := s.likeRepo.Count(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: liked, Count: count}, nil
}

func (s *LikeService) LikeStatusBySlug(ctx context.Context, postSlug, fingerprint string) (*LikeState, error) {
	post, err := s.postRepo.FindBySlug(ctx, postSlug)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return s.LikeStatus(ctx, post.ID, fingerprint)
}
