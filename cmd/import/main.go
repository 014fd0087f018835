// Command import creates posts from markdown files on disk.
//
//	go run ./cmd/import [-watch] <file-or-dir>...
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/repository"
	"quill/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	watch := flag.Bool("watch", false, "Keep running and import markdown files created in the given directories")
	flag.Parse()
	if flag.NArg() < 1 {
		return fmt.Errorf("usage: go run ./cmd/import [-watch] <file-or-dir>...")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	posts := service.NewPostService(
		repository.NewPostRepository(db),
		repository.NewLikeRepository(db),
		cfg.SlugMaxAttempts,
	)
	importer := service.NewImportService(posts, nil, cfg.ImportMaxBytes)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		dirs     []string
		imported []string
	)
	failed := 0
	for _, path := range flag.Args() {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		if !info.IsDir() {
			post, err := importer.ImportFile(ctx, path)
			if err != nil {
				failed++
				log.Printf("[import] %s: %v", path, err)
				continue
			}
			log.Printf("[import] %s -> /posts/%s", path, post.Slug)
			imported = append(imported, path)
			continue
		}

		dirs = append(dirs, path)
		files, failures, err := importer.ImportDir(ctx, path)
		if err != nil {
			return err
		}
		for _, f := range files {
			log.Printf("[import] %s -> /posts/%s", f.Path, f.Post.Slug)
			imported = append(imported, f.Path)
		}
		for _, f := range failures {
			failed++
			log.Printf("[import] %v", f)
		}
	}

	if *watch {
		if len(dirs) == 0 {
			return fmt.Errorf("-watch needs at least one directory")
		}
		return watchDirs(ctx, newWatchQueue(importer.ImportFile, imported), dirs)
	}

	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to import", failed)
	}
	return nil
}
