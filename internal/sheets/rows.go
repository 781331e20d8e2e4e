package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/mikezhu1928477/Google/internal/digest"
)

// ArchiveOptions controls how a digest batch is laid out in the sheet.
type ArchiveOptions struct {
	// AddTimestamp prepends a batch separator row.
	AddTimestamp bool
	// AddHeader prepends the column header row.
	AddHeader bool
	// HeaderColumns names the sheet columns.
	HeaderColumns []string
	// SummaryLimit truncates summaries; 0 disables truncation.
	SummaryLimit int
	// ValueInputOption is passed through to the Sheets API.
	ValueInputOption string
}

// ArchiveResult summarizes a completed append.
type ArchiveResult struct {
	UpdatedCells int64
	UpdatedRange string
	SheetURL     string
}

// BuildDigestRows converts a digest batch into sheet rows: an optional batch
// separator, an optional header, then one row per article ordered
// published-at, title, source, url, summary.
func BuildDigestRows(articles []digest.Article, now time.Time, opts ArchiveOptions) [][]interface{} {
	width := len(opts.HeaderColumns)
	if width < 5 {
		width = 5
	}

	var rows [][]interface{}

	if opts.AddTimestamp {
		row := make([]interface{}, width)
		row[0] = fmt.Sprintf("=== 批次: %s ===", now.Format("2006-01-02 15:04:05"))
		for i := 1; i < width; i++ {
			row[i] = ""
		}
		rows = append(rows, row)
	}

	if opts.AddHeader && len(opts.HeaderColumns) > 0 {
		row := make([]interface{}, 0, len(opts.HeaderColumns))
		for _, col := range opts.HeaderColumns {
			row = append(row, col)
		}
		rows = append(rows, row)
	}

	for _, a := range articles {
		rows = append(rows, []interface{}{
			a.PublishedAt,
			a.Title,
			a.Source,
			a.URL,
			digest.TruncateSummary(a.RawSummary, opts.SummaryLimit),
		})
	}

	return rows
}

// ArchiveArticles appends a digest batch to the first worksheet.
func (c *Client) ArchiveArticles(ctx context.Context, articles []digest.Article, opts ArchiveOptions) (*ArchiveResult, error) {
	sheetTitle, err := c.FirstSheetTitle(ctx)
	if err != nil {
		return nil, err
	}

	rows := BuildDigestRows(articles, time.Now(), opts)
	if len(rows) == 0 {
		return &ArchiveResult{SheetURL: c.SpreadsheetURL()}, nil
	}

	rangeNotation := fmt.Sprintf("%s!A:Z", sheetTitle)
	resp, err := c.Append(ctx, rangeNotation, rows, opts.ValueInputOption)
	if err != nil {
		return nil, err
	}

	result := &ArchiveResult{SheetURL: c.SpreadsheetURL()}
	if resp.Updates != nil {
		result.UpdatedCells = resp.Updates.UpdatedCells
		result.UpdatedRange = resp.Updates.UpdatedRange
	}
	return result, nil
}

// WriteHeader writes the column header row at the top of the first
// worksheet. Meant to be run once when the sheet is fresh; it overwrites
// whatever is in the first row.
func (c *Client) WriteHeader(ctx context.Context, columns []string, valueInputOption string) (string, error) {
	sheetTitle, err := c.FirstSheetTitle(ctx)
	if err != nil {
		return "", err
	}

	row := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		row = append(row, col)
	}

	rangeNotation := fmt.Sprintf("%s!A1", sheetTitle)
	if _, err := c.Write(ctx, rangeNotation, [][]interface{}{row}, valueInputOption); err != nil {
		return "", err
	}
	return c.SpreadsheetURL(), nil
}
