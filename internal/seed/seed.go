// Package seed creates demo data for development and testing.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed posts.yml
var builtInYAML []byte

// BuiltInPost is a permanent post identified by its slug.
type BuiltInPost struct {
	Slug    string `yaml:"slug"`
	Title   string `yaml:"title"`
	Excerpt string `yaml:"excerpt"`
	Content string `yaml:"content"`
}

// Options configuration for the seeder
type Options struct {
	NumPosts    int
	ShouldClean bool
}

// LoadBuiltInPosts parses the embedded post list.
func LoadBuiltInPosts() ([]BuiltInPost, error) {
	var posts []BuiltInPost
	if err := yaml.Unmarshal(builtInYAML, &posts); err != nil {
		return nil, fmt.Errorf("parse built-in posts: %w", err)
	}
	for i, p := range posts {
		if p.Slug == "" || strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Content) == "" {
			return nil, fmt.Errorf("built-in post %d: slug, title and content are required", i)
		}
	}
	return posts, nil
}

// BuiltInPosts inserts every built-in post whose slug is free and reports
// how many were written. Existing posts are left untouched.
func BuiltInPosts(ctx context.Context, db *gorm.DB) (int, error) {
	posts, err := LoadBuiltInPosts()
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, item := range posts {
		post := models.Post{
			Slug:    item.Slug,
			Title:   strings.TrimSpace(item.Title),
			Excerpt: models.ClampExcerpt(strings.TrimSpace(item.Excerpt)),
			Content: strings.TrimSpace(item.Content),
		}
		result := db.WithContext(ctx).
			Omit("Likes").
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoNothing: true,
			}).
			Create(&post)
		if result.Error != nil {
			return inserted, fmt.Errorf("seed %s: %w", item.Slug, result.Error)
		}
		if result.RowsAffected == 0 {
			middleware.Logger.InfoContext(ctx, "built-in post already exists, skipping", slog.String("slug", item.Slug))
			continue
		}
		inserted++
		middleware.Logger.InfoContext(ctx, "seeded built-in post", slog.String("slug", item.Slug))
	}
	return inserted, nil
}

// Seeder generates fake posts through the post service so slugs are
// resolved exactly as they are for real writes.
type Seeder struct {
	db    *gorm.DB
	posts *service.PostService
}

// NewSeeder creates a seeder over db.
func NewSeeder(db *gorm.DB, posts *service.PostService) *Seeder {
	return &Seeder{db: db, posts: posts}
}

// FakePosts creates n posts with generated markdown content.
func (s *Seeder) FakePosts(ctx context.Context, n int) ([]*models.Post, error) {
	created := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		post, err := s.posts.CreatePost(ctx, service.CreatePostInput{
			Title:   strings.TrimSuffix(gofakeit.Sentence(5), "."),
			Excerpt: gofakeit.Sentence(20),
			Content: fakeMarkdown(),
			Source:  models.PostSourceSeed,
		})
		if err != nil {
			return created, fmt.Errorf("fake post %d: %w", i+1, err)
		}
		created = append(created, post)
	}
	return created, nil
}

// ClearAll deletes every like and post.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{}).Error
	})
}

// Run clears (optionally), seeds the built-in posts, then opts.NumPosts fake ones.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}
	if _, err := BuiltInPosts(ctx, s.db); err != nil {
		return err
	}
	if opts.NumPosts > 0 {
		if _, err := s.FakePosts(ctx, opts.NumPosts); err != nil {
			return err
		}
	}
	return nil
}

func fakeMarkdown() string {
	var b strings.Builder
	b.WriteString(gofakeit.Paragraph(1, 4, 12, " "))
	b.WriteString("\n\n## ")
	b.WriteString(strings.TrimSuffix(gofakeit.Sentence(3), "."))
	b.WriteString("\n\n")
	for i := 0; i < 3; i++ {
		b.WriteString("- ")
		b.WriteString(gofakeit.Sentence(6))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(gofakeit.Paragraph(1, 3, 10, " "))
	return b.String()
}
