package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"quill/internal/ingest"
	"quill/internal/models"
	"quill/internal/observability"
)

// DefaultImportMaxBytes caps uploads when the caller passes zero.
const DefaultImportMaxBytes int64 = 1 << 20

const (
	msgUnsupportedFile = "Please select a .md or .markdown file."
	msgUnreadableFile  = "Failed to read or parse the file."
)

// ImportService turns markdown documents into posts.
type ImportService struct {
	posts    *PostService
	parser   *ingest.Parser
	maxBytes int64
}

func NewImportService(posts *PostService, parser *ingest.Parser, maxBytes int64) *ImportService {
	if parser == nil {
		parser = ingest.NewParser(ingest.DefaultExtractors()...)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultImportMaxBytes
	}
	return &ImportService{posts: posts, parser: parser, maxBytes: maxBytes}
}

// Import reads a markdown document named filename and creates a post from it.
func (s *ImportService) Import(ctx context.Context, filename string, r io.Reader) (*models.Post, error) {
	span, ctx := observability.StartServiceSpan(ctx, "ImportService", "Import")
	defer span.End()

	if err := ingest.ValidateFilename(filename); err != nil {
		observability.MarkdownImports.WithLabelValues("rejected").Inc()
		return nil, models.NewValidationError(msgUnsupportedFile)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		observability.MarkdownImports.WithLabelValues("unreadable").Inc()
		return nil, models.NewValidationError(msgUnreadableFile)
	}
	if int64(len(data)) > s.maxBytes {
		observability.MarkdownImports.WithLabelValues("too_large").Inc()
		return nil, models.NewValidationError(fmt.Sprintf("File is larger than %d bytes.", s.maxBytes))
	}

	text, err := ingest.Decode(data)
	if err != nil {
		observability.MarkdownImports.WithLabelValues("unreadable").Inc()
		return nil, models.NewValidationError(msgUnreadableFile)
	}

	doc := s.parser.Parse(text)
	post, err := s.posts.CreatePost(ctx, CreatePostInput{
		Title:   doc.Title,
		Excerpt: doc.Excerpt,
		Content: doc.Content,
		Source:  models.PostSourceMarkdown,
	})
	if err != nil {
		observability.MarkdownImports.WithLabelValues("failed").Inc()
		span.SetError(err)
		return nil, err
	}

	observability.MarkdownImports.WithLabelValues("imported").Inc()
	observability.LogServiceCall(ctx, "ImportService", "Import", map[string]any{
		"filename":   filename,
		"slug":       post.Slug,
		"extractors": doc.Applied,
	})
	return post, nil
}

// ImportFile imports the markdown file at path.
func (s *ImportService) ImportFile(ctx context.Context, path string) (*models.Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return s.Import(ctx, filepath.Base(path), f)
}
