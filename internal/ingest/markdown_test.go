package ingest

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/models"
)

func TestParse_Examples(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Document
	}{
		{
			name: "frontmatter",
			raw:  "---\ntitle: Foo\nexcerpt: Bar\n---\nBody text",
			want: Document{Title: "Foo", Excerpt: "Bar", Content: "Body text"},
		},
		{
			name: "heading fallback",
			raw:  "# My Title\n\nSome paragraph.",
			want: Document{Title: "My Title", Excerpt: "Some paragraph.", Content: "Some paragraph."},
		},
		{
			name: "plain text",
			raw:  "just text, no heading",
			want: Document{Title: UntitledTitle, Excerpt: "just text, no heading", Content: "just text, no heading"},
		},
		{
			name: "empty input",
			raw:  "",
			want: Document{Title: UntitledTitle, Excerpt: UntitledTitle, Content: ""},
		},
		{
			name: "heading only",
			raw:  "# Lonely",
			want: Document{Title: "Lonely", Excerpt: "Lonely", Content: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Equal(t, tt.want.Title, got.Title)
			assert.Equal(t, tt.want.Excerpt, got.Excerpt)
			assert.Equal(t, tt.want.Content, got.Content)
		})
	}
}

func TestParse_IsTotal(t *testing.T) {
	inputs := []string{
		"",
		"   \n\n  ",
		"---",
		"---\n---",
		"---\ntitle:\n---\n",
		"#",
		"#NoSpace",
		"\r\n\r\n",
		strings.Repeat("x", 5000),
		"---\nexcerpt: " + strings.Repeat("é", 700) + "\n---\nbody",
	}

	for _, raw := range inputs {
		got := Parse(raw)
		assert.NotEmpty(t, got.Title, "input %q", raw)
		assert.LessOrEqual(t, utf8.RuneCountInString(got.Excerpt), models.MaxExcerptLength, "input %q", raw)
	}
}

func TestFrontmatterExtractor(t *testing.T) {
	t.Run("strips quotes", func(t *testing.T) {
		d := &Draft{Content: "---\ntitle: \"Quoted\"\nexcerpt: 'single'\n---\nbody"}
		require.Equal(t, Extracted, FrontmatterExtractor{}.Extract(d))
		assert.Equal(t, "Quoted", d.Title)
		assert.Equal(t, "single", d.Excerpt)
		assert.Equal(t, "body", d.Content)
	})

	t.Run("ignores unknown keys", func(t *testing.T) {
		d := &Draft{Content: "---\nauthor: someone\ntags: a, b\n---\n\nbody"}
		require.Equal(t, Extracted, FrontmatterExtractor{}.Extract(d))
		assert.Empty(t, d.Title)
		assert.Empty(t, d.Excerpt)
		assert.Equal(t, "body", d.Content)
	})

	t.Run("truncates excerpt", func(t *testing.T) {
		d := &Draft{Content: "---\nexcerpt: " + strings.Repeat("a", 900) + "\n---\nbody"}
		require.Equal(t, Extracted, FrontmatterExtractor{}.Extract(d))
		assert.Len(t, d.Excerpt, models.MaxExcerptLength)
	})

	t.Run("only the first block is used", func(t *testing.T) {
		d := &Draft{Content: "---\ntitle: One\n---\nbody\n---\ntitle: Two\n---"}
		require.Equal(t, Extracted, FrontmatterExtractor{}.Extract(d))
		assert.Equal(t, "One", d.Title)
		assert.Equal(t, "body\n---\ntitle: Two\n---", d.Content)
	})

	t.Run("unterminated block passes", func(t *testing.T) {
		raw := "---\ntitle: Foo\nbody"
		d := &Draft{Content: raw}
		assert.Equal(t, Pass, FrontmatterExtractor{}.Extract(d))
		assert.Equal(t, raw, d.Content)
		assert.Empty(t, d.Title)
	})

	t.Run("no leading delimiter passes", func(t *testing.T) {
		d := &Draft{Content: "intro\n---\ntitle: Foo\n---"}
		assert.Equal(t, Pass, FrontmatterExtractor{}.Extract(d))
	})
}

func TestHeadingTitleExtractor(t *testing.T) {
	t.Run("first heading wins and is removed once", func(t *testing.T) {
		d := &Draft{Content: "intro\n# First\nmiddle\n# Second"}
		require.Equal(t, Extracted, HeadingTitleExtractor{}.Extract(d))
		assert.Equal(t, "First", d.Title)
		assert.Equal(t, "intro\nmiddle\n# Second", d.Content)
	})

	t.Run("level two heading is not a title", func(t *testing.T) {
		d := &Draft{Content: "## Sub\ntext"}
		assert.Equal(t, Pass, HeadingTitleExtractor{}.Extract(d))
		assert.Empty(t, d.Title)
	})

	t.Run("existing title passes", func(t *testing.T) {
		d := &Draft{Title: "Set", Content: "# Other"}
		assert.Equal(t, Pass, HeadingTitleExtractor{}.Extract(d))
		assert.Equal(t, "Set", d.Title)
		assert.Equal(t, "# Other", d.Content)
	})
}

func TestParagraphExcerptExtractor(t *testing.T) {
	t.Run("joins lines of the first paragraph", func(t *testing.T) {
		d := &Draft{Content: "line one\nline two\n   \nsecond paragraph"}
		require.Equal(t, Extracted, ParagraphExcerptExtractor{}.Extract(d))
		assert.Equal(t, "line one line two", d.Excerpt)
	})

	t.Run("empty content passes", func(t *testing.T) {
		d := &Draft{}
		assert.Equal(t, Pass, ParagraphExcerptExtractor{}.Extract(d))
	})
}

func TestParse_FrontmatterWithoutTitleUsesHeading(t *testing.T) {
	got := Parse("---\nexcerpt: Short\n---\n# Real Title\n\nBody")
	assert.Equal(t, "Real Title", got.Title)
	assert.Equal(t, "Short", got.Excerpt)
	assert.Equal(t, "Body", got.Content)
	assert.Equal(t, []string{"frontmatter", "heading"}, got.Applied)
}

func TestParse_NormalizesCRLF(t *testing.T) {
	got := Parse("---\r\ntitle: Win\r\n---\r\nLine one\r\nLine two\r\n\r\nNext")
	assert.Equal(t, "Win", got.Title)
	assert.Equal(t, "Line one Line two", got.Excerpt)
	assert.Equal(t, "Line one\nLine two\n\nNext", got.Content)
}

func TestParser_CustomChain(t *testing.T) {
	p := NewParser(DefaultTitleExtractor{}, TitleExcerptExtractor{})
	got := p.Parse("# Ignored\n\nbody")
	assert.Equal(t, UntitledTitle, got.Title)
	assert.Equal(t, UntitledTitle, got.Excerpt)
	assert.Equal(t, "# Ignored\n\nbody", got.Content)
}
