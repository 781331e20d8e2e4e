package digest

import (
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
)

// RenderOptions controls digest body rendering.
type RenderOptions struct {
	// TimeWindow is a human-readable description of the covered period.
	TimeWindow string
	// SheetURL links the full archive in Google Sheets when non-empty.
	SheetURL string
	// MaxInline caps the number of articles shown in the body. The full
	// batch always goes to the sheet; the email only previews the head.
	MaxInline int
}

// Subject builds the default digest subject for a batch of n articles.
func Subject(prefix string, n int) string {
	if prefix == "" {
		prefix = "📰 新闻日报"
	}
	return fmt.Sprintf("%s - %d 条新闻", prefix, n)
}

type renderArticle struct {
	Index int
	Article
}

type renderData struct {
	Total      int
	TimeWindow string
	SheetURL   string
	Articles   []renderArticle
	Overflow   int
}

func buildRenderData(articles []Article, opts RenderOptions) renderData {
	maxInline := opts.MaxInline
	if maxInline <= 0 {
		maxInline = 10
	}

	data := renderData{
		Total:      len(articles),
		TimeWindow: opts.TimeWindow,
		SheetURL:   opts.SheetURL,
	}

	shown := articles
	if len(shown) > maxInline {
		shown = shown[:maxInline]
		data.Overflow = len(articles)
	}
	for i, a := range shown {
		data.Articles = append(data.Articles, renderArticle{Index: i + 1, Article: a.Normalize()})
	}

	return data
}

var htmlBodyTemplate = template.Must(template.New("digest").Parse(`<html>
  <head>
    <style>
      body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
      h1 { color: #2c3e50; border-bottom: 3px solid #3498db; padding-bottom: 10px; }
      .summary { background-color: #f8f9fa; padding: 15px; margin: 20px 0; border-radius: 5px; border-left: 4px solid #3498db; }
      .article { margin: 20px 0; padding: 15px; border-left: 3px solid #3498db; background-color: #f9f9f9; }
      .article h3 { margin: 0 0 8px 0; color: #2c3e50; }
      .meta { color: #7f8c8d; font-size: 0.9em; margin: 5px 0; }
      .summary-text { color: #555; margin: 10px 0; }
      a { color: #3498db; text-decoration: none; }
      a:hover { text-decoration: underline; }
      .button { display: inline-block; padding: 10px 20px; background-color: #3498db; color: white; text-decoration: none; border-radius: 5px; margin: 10px 0; }
    </style>
  </head>
  <body>
    <h1>📰 新闻日报</h1>

    <div class="summary">
      <strong>📊 本期摘要</strong><br>
      • 新闻总数: <strong>{{.Total}}</strong><br>
{{- if .TimeWindow}}
      • 时间范围: {{.TimeWindow}}<br>
{{- end}}
    </div>
{{- if .SheetURL}}
    <p><a href="{{.SheetURL}}" class="button">📊 查看完整报告（Google Sheets）</a></p>
{{- end}}
    <h2>📑 今日头条</h2>
{{- range .Articles}}
    <div class="article">
      <h3>{{.Index}}. {{.Title}}</h3>
      <div class="meta">
        📍 来源: <strong>{{.Source}}</strong> | 🕐 发布时间: {{.PublishedAt}}
      </div>
      <div class="summary-text">{{.RawSummary}}</div>
      <a href="{{.URL}}">阅读全文 →</a>
    </div>
{{- end}}
{{- if .Overflow}}
    <div class="summary">
      <strong>📌 注意:</strong> 为了邮件简洁，仅显示前 {{len .Articles}} 条新闻。
      完整的 {{.Overflow}} 条新闻请查看 Google Sheets。
    </div>
{{- end}}
  </body>
</html>
`))

var textBodyTemplate = texttemplate.Must(texttemplate.New("digest").Parse(`============================================================
📰 新闻日报
============================================================

新闻总数: {{.Total}}
{{- if .TimeWindow}}
时间范围: {{.TimeWindow}}
{{- end}}
{{- if .SheetURL}}

📊 查看完整报告: {{.SheetURL}}
{{- end}}

============================================================
📑 今日头条
============================================================

{{range .Articles}}{{.Index}}. {{.Title}}
   来源: {{.Source}}
   时间: {{.PublishedAt}}
   摘要: {{.RawSummary}}
   链接: {{.URL}}

{{end}}
{{- if .Overflow}}
注意: 仅显示前 {{len .Articles}} 条新闻，完整的 {{.Overflow}} 条新闻请查看 Google Sheets。
{{end}}
============================================================
`))

// RenderHTML renders the HTML body for a digest batch.
func RenderHTML(articles []Article, opts RenderOptions) (string, error) {
	var b strings.Builder
	if err := htmlBodyTemplate.Execute(&b, buildRenderData(articles, opts)); err != nil {
		return "", fmt.Errorf("failed to render html body: %w", err)
	}
	return b.String(), nil
}

// RenderText renders the plain-text body for a digest batch.
func RenderText(articles []Article, opts RenderOptions) (string, error) {
	var b strings.Builder
	if err := textBodyTemplate.Execute(&b, buildRenderData(articles, opts)); err != nil {
		return "", fmt.Errorf("failed to render text body: %w", err)
	}
	return b.String(), nil
}
