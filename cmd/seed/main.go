// Command seed populates the database with the built-in and fake posts.
package main

import (
	"context"
	"flag"
	"log"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/repository"
	"quill/internal/seed"
	"quill/internal/service"
)

func main() {
	numPosts := flag.Int("posts", 0, "Number of fake posts to create")
	shouldClean := flag.Bool("clean", false, "Delete all posts and likes before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	posts := service.NewPostService(
		repository.NewPostRepository(db),
		repository.NewLikeRepository(db),
		cfg.SlugMaxAttempts,
	)
	s := seed.NewSeeder(db, posts)

	log.Printf("Seeding: %d fake posts, clean=%v", *numPosts, *shouldClean)
	if err := s.Run(context.Background(), seed.Options{
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding complete")
}
