package service

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"quill/internal/ingest"
	"quill/internal/models"
)

// ImportFailure records a file that could not be imported.
type ImportFailure struct {
	Path string
	Err  error
}

func (f ImportFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

// ImportedFile pairs a source file with the post created from it.
type ImportedFile struct {
	Path string
	Post *models.Post
}

// ImportDir imports every markdown file under root, recursively, in lexical
// order. Files with other extensions are skipped. A failing file does not
// stop the walk; it is reported in the returned failures.
func (s *ImportService) ImportDir(ctx context.Context, root string) ([]ImportedFile, []ImportFailure, error) {
	var (
		imported []ImportedFile
		failures []ImportFailure
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || ingest.ValidateFilename(d.Name()) != nil {
			return nil
		}

		post, err := s.ImportFile(ctx, path)
		if err != nil {
			failures = append(failures, ImportFailure{Path: path, Err: err})
			return nil
		}
		imported = append(imported, ImportedFile{Path: path, Post: post})
		return nil
	})
	if err != nil {
		return imported, failures, fmt.Errorf("walk %s: %w", root, err)
	}
	return imported, failures, nil
}
