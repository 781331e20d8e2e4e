package digest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Article is one news item in a digest batch.
type Article struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	RawSummary  string `json:"raw_summary"`
}

// Placeholders used when an article field is missing, matching the digest
// wording the rest of the pipeline produces.
const (
	PlaceholderTitle     = "无标题"
	PlaceholderSource    = "未知来源"
	PlaceholderPublished = "N/A"
	PlaceholderURL       = "#"
	PlaceholderSummary   = "暂无摘要"
)

// Normalize fills empty fields with their placeholders.
func (a Article) Normalize() Article {
	if a.Title == "" {
		a.Title = PlaceholderTitle
	}
	if a.Source == "" {
		a.Source = PlaceholderSource
	}
	if a.PublishedAt == "" {
		a.PublishedAt = PlaceholderPublished
	}
	if a.URL == "" {
		a.URL = PlaceholderURL
	}
	if a.RawSummary == "" {
		a.RawSummary = PlaceholderSummary
	}
	return a
}

// ReadArticles decodes a JSON array of articles from r.
func ReadArticles(r io.Reader) ([]Article, error) {
	var articles []Article
	dec := json.NewDecoder(r)
	if err := dec.Decode(&articles); err != nil {
		return nil, fmt.Errorf("failed to decode articles: %w", err)
	}
	return articles, nil
}

// LoadArticles reads articles from a file path, or from stdin when the path
// is "-" or empty.
func LoadArticles(path string) ([]Article, error) {
	if path == "" || path == "-" {
		return ReadArticles(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open articles file: %w", err)
	}
	defer f.Close()

	articles, err := ReadArticles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return articles, nil
}

// TruncateSummary limits a summary to n runes. The sheet archive stores at
// most 500 characters per summary; truncation counts runes, not bytes, so
// CJK text is not cut mid-character.
func TruncateSummary(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
