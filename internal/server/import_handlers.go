package server

import (
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

const importFormField = "file"

// ImportPost handles POST /api/posts/import
// @Summary Create a post from an uploaded markdown file
// @Tags Posts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Markdown file (.md or .markdown)"
// @Success 201 {object} PostWriteResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/import [post]
func (s *Server) ImportPost(c *fiber.Ctx) error {
	header, err := c.FormFile(importFormField)
	if err != nil {
		return respondError(c, models.NewValidationError("Please select a .md or .markdown file."))
	}

	f, err := header.Open()
	if err != nil {
		return respondError(c, models.NewValidationError("Failed to read or parse the file."))
	}
	defer f.Close()

	post, err := s.importService.Import(c.UserContext(), header.Filename, f)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(PostWriteResponse{Slug: post.Slug, Post: post})
}
