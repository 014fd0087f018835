package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"quill/internal/ingest"
	"quill/internal/models"
	"quill/internal/service"

	"github.com/fsnotify/fsnotify"
)

const (
	settleDelay   = 300 * time.Millisecond
	importTimeout = 10 * time.Second
)

type importFunc func(ctx context.Context, path string) (*models.Post, error)

// watchQueue decides which watched files to import. A path is imported at
// most once per run; a path whose import failed stays eligible, so the next
// write to it tries again.
type watchQueue struct {
	importFile importFunc
	pending    map[string]struct{}
	seen       map[string]struct{}
}

// newWatchQueue returns a queue that skips the already imported paths.
func newWatchQueue(importFile importFunc, imported []string) *watchQueue {
	q := &watchQueue{
		importFile: importFile,
		pending:    map[string]struct{}{},
		seen:       make(map[string]struct{}, len(imported)),
	}
	for _, path := range imported {
		q.seen[filepath.Clean(path)] = struct{}{}
	}
	return q
}

// offer queues the event's file and reports whether it did.
func (q *watchQueue) offer(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || ingest.ValidateFilename(ev.Name) != nil {
		return false
	}
	path := filepath.Clean(ev.Name)
	if _, done := q.seen[path]; done {
		return false
	}
	q.pending[path] = struct{}{}
	return true
}

// flush imports the queued files in lexical order.
func (q *watchQueue) flush(ctx context.Context) ([]service.ImportedFile, []service.ImportFailure) {
	paths := make([]string, 0, len(q.pending))
	for path := range q.pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var (
		imported []service.ImportedFile
		failures []service.ImportFailure
	)
	for _, path := range paths {
		delete(q.pending, path)

		importCtx, cancel := context.WithTimeout(ctx, importTimeout)
		post, err := q.importFile(importCtx, path)
		cancel()
		if err != nil {
			failures = append(failures, service.ImportFailure{Path: path, Err: err})
			continue
		}
		q.seen[path] = struct{}{}
		imported = append(imported, service.ImportedFile{Path: path, Post: post})
	}
	return imported, failures
}

// watchDirs imports markdown files created or written under dirs until ctx
// is done. Editors emit several events per save, so files are imported once
// the directories have been quiet for settleDelay.
func watchDirs(ctx context.Context, q *watchQueue, dirs []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return w.Add(path)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	log.Printf("[import] watching %d director(ies) for new markdown files ...", len(dirs))

	debounce := time.NewTicker(time.Hour)
	debounce.Stop()
	trigger := func() {
		select {
		case <-debounce.C:
		default:
		}
		debounce.Reset(settleDelay)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.Add(ev.Name); err != nil {
						log.Printf("[warn] watch %s: %v", ev.Name, err)
					}
					continue
				}
			}
			if q.offer(ev) {
				trigger()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("[warn] watcher error: %v", err)
		case <-debounce.C:
			debounce.Stop()
			imported, failures := q.flush(ctx)
			for _, f := range imported {
				log.Printf("[import] %s -> /posts/%s", f.Path, f.Post.Slug)
			}
			for _, f := range failures {
				log.Printf("[import] %v", f)
			}
		}
	}
}
