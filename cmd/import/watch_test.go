package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"quill/internal/models"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingImporter returns posts named after the file. A path listed in
// failures fails that many times before it imports.
type recordingImporter struct {
	calls    []string
	failures map[string]int
}

func (r *recordingImporter) importFile(_ context.Context, path string) (*models.Post, error) {
	r.calls = append(r.calls, path)
	if r.failures[path] > 0 {
		r.failures[path]--
		return nil, errors.New("empty file")
	}
	return &models.Post{Slug: filepath.Base(path)}, nil
}

func TestWatchQueue_SkipsFilesImportedBeforeWatching(t *testing.T) {
	dir := filepath.Join("notes", "drafts")
	existing := filepath.Join(dir, "hello.md")
	imp := &recordingImporter{}
	q := newWatchQueue(imp.importFile, []string{existing})

	assert.False(t, q.offer(fsnotify.Event{Name: existing, Op: fsnotify.Write}))
	assert.False(t, q.offer(fsnotify.Event{Name: dir + "/./hello.md", Op: fsnotify.Write}))

	imported, failures := q.flush(context.Background())
	assert.Empty(t, imported)
	assert.Empty(t, failures)
	assert.Empty(t, imp.calls)
}

func TestWatchQueue_ImportsEachFileOnce(t *testing.T) {
	path := filepath.Join("notes", "new.md")
	imp := &recordingImporter{}
	q := newWatchQueue(imp.importFile, nil)

	assert.True(t, q.offer(fsnotify.Event{Name: path, Op: fsnotify.Create}))
	assert.True(t, q.offer(fsnotify.Event{Name: path, Op: fsnotify.Write}))

	imported, failures := q.flush(context.Background())
	require.Len(t, imported, 1)
	assert.Equal(t, path, imported[0].Path)
	assert.Empty(t, failures)

	assert.False(t, q.offer(fsnotify.Event{Name: path, Op: fsnotify.Write}))
	assert.Equal(t, []string{path}, imp.calls)
}

func TestWatchQueue_RetriesFailedImport(t *testing.T) {
	path := filepath.Join("notes", "late.md")
	imp := &recordingImporter{failures: map[string]int{path: 1}}
	q := newWatchQueue(imp.importFile, nil)

	require.True(t, q.offer(fsnotify.Event{Name: path, Op: fsnotify.Create}))
	imported, failures := q.flush(context.Background())
	assert.Empty(t, imported)
	require.Len(t, failures, 1)
	assert.Equal(t, path, failures[0].Path)

	require.True(t, q.offer(fsnotify.Event{Name: path, Op: fsnotify.Write}))
	imported, failures = q.flush(context.Background())
	require.Len(t, imported, 1)
	assert.Equal(t, "late.md", imported[0].Post.Slug)
	assert.Empty(t, failures)
	assert.Len(t, imp.calls, 2)
}

func TestWatchQueue_IgnoresOtherEvents(t *testing.T) {
	q := newWatchQueue((&recordingImporter{}).importFile, nil)

	tests := []struct {
		name string
		ev   fsnotify.Event
	}{
		{"text file", fsnotify.Event{Name: "notes/todo.txt", Op: fsnotify.Create}},
		{"remove", fsnotify.Event{Name: "notes/gone.md", Op: fsnotify.Remove}},
		{"chmod", fsnotify.Event{Name: "notes/perm.md", Op: fsnotify.Chmod}},
		{"rename", fsnotify.Event{Name: "notes/old.md", Op: fsnotify.Rename}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, q.offer(tt.ev))
		})
	}
	assert.Empty(t, q.pending)
}
