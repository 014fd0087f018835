// Package service holds the business rules behind the HTTP handlers and CLIs.
package service

import (
	"strings"

	"quill/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const msgTitleContentRequired = "Title and content are required."

// postFields is the editable part of a post shared by create and update.
type postFields struct {
	Title   string `validate:"required"`
	Excerpt string
	Content string `validate:"required"`
}

// normalize trims every field, checks required fields and fills the excerpt.
func (f *postFields) normalize() error {
	f.Title = strings.TrimSpace(f.Title)
	f.Excerpt = strings.TrimSpace(f.Excerpt)
	f.Content = strings.TrimSpace(f.Content)

	if err := validate.Struct(f); err != nil {
		return models.NewValidationError(msgTitleContentRequired)
	}
	if f.Excerpt == "" {
		f.Excerpt = f.Title
	}
	f.Excerpt = models.ClampExcerpt(f.Excerpt)
	return nil
}
