package digest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "📰 新闻日报 - 5 条新闻", Subject("📰 新闻日报", 5))
	assert.Equal(t, "Daily - 1 条新闻", Subject("Daily", 1))
	assert.Equal(t, "📰 新闻日报 - 0 条新闻", Subject("", 0))
}

func sampleArticles(n int) []Article {
	articles := make([]Article, 0, n)
	for i := 0; i < n; i++ {
		articles = append(articles, Article{
			Title:       fmt.Sprintf("标题 %d", i+1),
			Source:      "测试来源",
			URL:         fmt.Sprintf("https://example.com/%d", i+1),
			PublishedAt: "2026-08-29 08:00",
			RawSummary:  fmt.Sprintf("摘要 %d", i+1),
		})
	}
	return articles
}

func TestRenderHTMLBasic(t *testing.T) {
	body, err := RenderHTML(sampleArticles(3), RenderOptions{
		TimeWindow: "过去 24 小时",
		SheetURL:   "https://docs.google.com/spreadsheets/d/sheet-id",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "📰 新闻日报")
	assert.Contains(t, body, "新闻总数: <strong>3</strong>")
	assert.Contains(t, body, "过去 24 小时")
	assert.Contains(t, body, `href="https://docs.google.com/spreadsheets/d/sheet-id"`)
	assert.Contains(t, body, "1. 标题 1")
	assert.Contains(t, body, "3. 标题 3")
	assert.NotContains(t, body, "注意", "no overflow note for a small batch")
}

func TestRenderHTMLCapsInlineArticles(t *testing.T) {
	body, err := RenderHTML(sampleArticles(15), RenderOptions{MaxInline: 10})
	require.NoError(t, err)

	assert.Contains(t, body, "10. 标题 10")
	assert.NotContains(t, body, "11. 标题 11")
	assert.Contains(t, body, "仅显示前 10 条新闻")
	assert.Contains(t, body, "完整的 15 条新闻")
}

func TestRenderHTMLEscapesArticleFields(t *testing.T) {
	articles := []Article{{
		Title:      `<script>alert("x")</script>`,
		Source:     "来源",
		URL:        "https://example.com",
		RawSummary: "a < b",
	}}

	body, err := RenderHTML(articles, RenderOptions{})
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestRenderHTMLOmitsEmptyOptionalSections(t *testing.T) {
	body, err := RenderHTML(sampleArticles(1), RenderOptions{})
	require.NoError(t, err)

	assert.NotContains(t, body, "时间范围")
	assert.NotContains(t, body, "查看完整报告")
}

func TestRenderHTMLNormalizesMissingFields(t *testing.T) {
	body, err := RenderHTML([]Article{{}}, RenderOptions{})
	require.NoError(t, err)

	assert.Contains(t, body, PlaceholderTitle)
	assert.Contains(t, body, PlaceholderSource)
	assert.Contains(t, body, PlaceholderSummary)
	assert.Contains(t, body, `href="#"`)
}

func TestRenderText(t *testing.T) {
	body, err := RenderText(sampleArticles(2), RenderOptions{
		TimeWindow: "过去 24 小时",
		SheetURL:   "https://docs.google.com/spreadsheets/d/sheet-id",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "新闻总数: 2")
	assert.Contains(t, body, "时间范围: 过去 24 小时")
	assert.Contains(t, body, "查看完整报告: https://docs.google.com/spreadsheets/d/sheet-id")
	assert.Contains(t, body, "1. 标题 1")
	assert.Contains(t, body, "链接: https://example.com/1")
	assert.False(t, strings.Contains(body, "&lt;"), "text body is not HTML-escaped")
}

func TestRenderTextOverflow(t *testing.T) {
	body, err := RenderText(sampleArticles(12), RenderOptions{MaxInline: 10})
	require.NoError(t, err)

	assert.Contains(t, body, "10. 标题 10")
	assert.NotContains(t, body, "11. 标题 11")
	assert.Contains(t, body, "完整的 12 条新闻")
}
