// Package ingest turns raw markdown files into post drafts.
//
// Parsing is a best-effort heuristic, not a markdown grammar. A Parser runs
// an ordered chain of extractors over a Draft; each extractor either fills
// in part of the draft (Extracted) or leaves it alone (Pass). The default
// chain is frontmatter, then first level-1 heading, then defaults.
package ingest

import (
	"strings"

	"quill/internal/models"
)

// UntitledTitle is used when neither frontmatter nor a heading names the post.
const UntitledTitle = "Untitled post"

const frontmatterDelimiter = "---"

// Result is the outcome of a single extractor run.
type Result int

const (
	// Pass means the extractor found nothing to contribute.
	Pass Result = iota
	// Extracted means the extractor updated the draft.
	Extracted
)

func (r Result) String() string {
	if r == Extracted {
		return "extracted"
	}
	return "pass"
}

// Document is the parsed {title, excerpt, content} triple.
type Document struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"`
	// Applied lists the extractors that contributed, in order.
	Applied []string `json:"-"`
}

// Draft is the working state threaded through the extractor chain.
type Draft struct {
	Title   string
	Excerpt string
	// Content is the working body; extractors may shrink it.
	Content string
}

// Extractor contributes part of a Document.
type Extractor interface {
	Name() string
	Extract(d *Draft) Result
}

// Parser applies extractors in order.
type Parser struct {
	extractors []Extractor
}

// NewParser builds a parser over the given chain.
func NewParser(extractors ...Extractor) *Parser {
	return &Parser{extractors: extractors}
}

// DefaultExtractors returns the standard chain.
func DefaultExtractors() []Extractor {
	return []Extractor{
		FrontmatterExtractor{},
		HeadingTitleExtractor{},
		DefaultTitleExtractor{},
		ParagraphExcerptExtractor{},
		TitleExcerptExtractor{},
	}
}

var defaultParser = NewParser(DefaultExtractors()...)

// Parse runs the default chain over raw. It never fails.
func Parse(raw string) Document {
	return defaultParser.Parse(raw)
}

// Parse runs the parser's chain over raw.
func (p *Parser) Parse(raw string) Document {
	d := &Draft{Content: strings.TrimSpace(normalizeNewlines(raw))}

	var applied []string
	for _, ex := range p.extractors {
		if ex.Extract(d) == Extracted {
			applied = append(applied, ex.Name())
		}
	}

	return Document{
		Title:   d.Title,
		Excerpt: d.Excerpt,
		Content: strings.TrimSpace(d.Content),
		Applied: applied,
	}
}

// FrontmatterExtractor reads title and excerpt from a leading
// "---" ... "---" block of key: value lines. The rest of the text becomes
// the working content.
type FrontmatterExtractor struct{}

func (FrontmatterExtractor) Name() string { return "frontmatter" }

func (FrontmatterExtractor) Extract(d *Draft) Result {
	lines := strings.Split(d.Content, "\n")
	if len(lines) < 2 || lines[0] != frontmatterDelimiter {
		return Pass
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if lines[i] == frontmatterDelimiter {
			closing = i
			break
		}
	}
	if closing < 0 {
		return Pass
	}

	block := lines[1:closing]
	if title, ok := frontmatterValue(block, "title"); ok {
		d.Title = title
	}
	if excerpt, ok := frontmatterValue(block, "excerpt"); ok {
		d.Excerpt = models.ClampExcerpt(excerpt)
	}
	d.Content = strings.TrimSpace(strings.Join(lines[closing+1:], "\n"))
	return Extracted
}

// frontmatterValue returns the first non-blank value for key.
func frontmatterValue(block []string, key string) (string, bool) {
	prefix := key + ":"
	for _, line := range block {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, prefix))
		value = stripQuotes(value)
		if value != "" {
			return value, true
		}
	}
	return "", false
}

// stripQuotes removes one leading and one trailing quote character, each
// independently.
func stripQuotes(s string) string {
	if s != "" && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if s != "" && (s[len(s)-1] == '"' || s[len(s)-1] == '\'') {
		s = s[:len(s)-1]
	}
	return s
}

// HeadingTitleExtractor takes the first level-1 heading as the title and
// removes that line from the content.
type HeadingTitleExtractor struct{}

func (HeadingTitleExtractor) Name() string { return "heading" }

func (HeadingTitleExtractor) Extract(d *Draft) Result {
	if d.Title != "" || d.Content == "" {
		return Pass
	}

	lines := strings.Split(d.Content, "\n")
	for i, line := range lines {
		text, ok := headingText(line)
		if !ok {
			continue
		}
		d.Title = text
		lines = append(lines[:i], lines[i+1:]...)
		d.Content = strings.TrimSpace(strings.Join(lines, "\n"))
		return Extracted
	}
	return Pass
}

// headingText matches "# text": a single '#', at least one space or tab,
// then non-blank text.
func headingText(line string) (string, bool) {
	if len(line) < 2 || line[0] != '#' || (line[1] != ' ' && line[1] != '\t') {
		return "", false
	}
	text := strings.TrimSpace(line[1:])
	if text == "" {
		return "", false
	}
	return text, true
}

// DefaultTitleExtractor fills in UntitledTitle.
type DefaultTitleExtractor struct{}

func (DefaultTitleExtractor) Name() string { return "default-title" }

func (DefaultTitleExtractor) Extract(d *Draft) Result {
	if d.Title != "" {
		return Pass
	}
	d.Title = UntitledTitle
	return Extracted
}

// ParagraphExcerptExtractor uses the first paragraph of the content, with
// its newlines collapsed to spaces, as the excerpt.
type ParagraphExcerptExtractor struct{}

func (ParagraphExcerptExtractor) Name() string { return "first-paragraph" }

func (ParagraphExcerptExtractor) Extract(d *Draft) Result {
	if d.Excerpt != "" || d.Content == "" {
		return Pass
	}

	var para []string
	for _, line := range strings.Split(d.Content, "\n") {
		if strings.TrimSpace(line) == "" {
			break
		}
		para = append(para, line)
	}

	excerpt := models.ClampExcerpt(strings.TrimSpace(strings.Join(para, " ")))
	if excerpt == "" {
		return Pass
	}
	d.Excerpt = excerpt
	return Extracted
}

// TitleExcerptExtractor falls back to the title as excerpt.
type TitleExcerptExtractor struct{}

func (TitleExcerptExtractor) Name() string { return "title-excerpt" }

func (TitleExcerptExtractor) Extract(d *Draft) Result {
	if d.Excerpt != "" {
		return Pass
	}
	d.Excerpt = models.ClampExcerpt(d.Title)
	return Extracted
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
