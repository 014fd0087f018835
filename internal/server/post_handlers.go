package server

import (
	"quill/internal/identity"
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PostRequest is the create/update body, accepted as JSON or form fields.
type PostRequest struct {
	Title   string `json:"title" form:"title"`
	Excerpt string `json:"excerpt" form:"excerpt"`
	Content string `json:"content" form:"content"`
}

// PostWriteResponse is returned by create, update and import.
type PostWriteResponse struct {
	Slug         string       `json:"slug"`
	PreviousSlug string       `json:"previous_slug,omitempty"`
	Post         *models.Post `json:"post"`
}

func parsePostRequest(c *fiber.Ctx) (*PostRequest, error) {
	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, models.NewValidationError("Invalid request body")
	}
	return &req, nil
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Tags Posts
// @Produce json
// @Param limit query int false "Limit results" default(20)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPaginationLimit)

	posts, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags Posts
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param post body PostRequest true "Post data"
// @Success 201 {object} PostWriteResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	req, err := parsePostRequest(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		Title:   req.Title,
		Excerpt: req.Excerpt,
		Content: req.Content,
		Source:  models.PostSourceForm,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(PostWriteResponse{Slug: post.Slug, Post: post})
}

// GetPost handles GET /api/posts/:slug
// @Summary Get a post by slug
// @Tags Posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPostBySlug(c.UserContext(), c.Params("slug"), identity.FromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// GetPostByID handles GET /api/posts/id/:id
func (s *Server) GetPostByID(c *fiber.Ctx) error {
	post, err := s.postService.GetPostByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:slug
// @Summary Edit a post
// @Description The slug follows the new title; previous_slug lets clients redirect.
// @Tags Posts
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param slug path string true "Post slug"
// @Param post body PostRequest true "Post data"
// @Success 200 {object} PostWriteResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	req, err := parsePostRequest(c)
	if err != nil {
		return respondError(c, err)
	}

	post, previous, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		Slug:    c.Params("slug"),
		Title:   req.Title,
		Excerpt: req.Excerpt,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(PostWriteResponse{Slug: post.Slug, PreviousSlug: previous, Post: post})
}

// DeletePost handles DELETE /api/posts/:slug
// @Summary Delete a post and its likes
// @Tags Posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{Slug: c.Params("slug")}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// IncrementViews handles POST /api/posts/:slug/views
func (s *Server) IncrementViews(c *fiber.Ctx) error {
	if err := s.postService.IncrementViews(c.UserContext(), c.Params("slug")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
