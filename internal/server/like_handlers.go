package server

import (
	"quill/internal/identity"

	"github.com/gofiber/fiber/v2"
)

// GetLikeStatus handles GET /api/posts/:slug/like
// @Summary Like state for the caller's fingerprint
// @Tags Likes
// @Produce json
// @Param slug path string true "Post slug"
// @Param X-Fingerprint header string false "Client fingerprint"
// @Success 200 {object} service.LikeState
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug}/like [get]
func (s *Server) GetLikeStatus(c *fiber.Ctx) error {
	state, err := s.likeService.LikeStatusBySlug(c.UserContext(), c.Params("slug"), identity.FromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

// ToggleLike handles POST /api/posts/:slug/like
// @Summary Toggle the caller's like
// @Tags Likes
// @Produce json
// @Param slug path string true "Post slug"
// @Param X-Fingerprint header string false "Client fingerprint"
// @Success 200 {object} service.LikeState
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/{slug}/like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	state, err := s.likeService.ToggleLikeBySlug(c.UserContext(), c.Params("slug"), identity.FromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

// IssueFingerprint handles POST /api/fingerprint
// @Summary Issue a fingerprint cookie
// @Tags Identity
// @Produce json
// @Success 200 {object} map[string]string
// @Router /fingerprint [post]
func (s *Server) IssueFingerprint(c *fiber.Ctx) error {
	fp, err := identity.Issue(c, s.config.FingerprintCookie, s.config.IsProduction())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"fingerprint": fp})
}
