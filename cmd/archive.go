package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikezhu1928477/Google/internal/digest"
	"github.com/mikezhu1928477/Google/internal/gapi"
	"github.com/mikezhu1928477/Google/internal/journal"
	"github.com/mikezhu1928477/Google/internal/sheets"
)

var (
	archiveHeader      bool
	archiveNoTimestamp bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive [articles-file]",
	Short: "Append a digest batch to the Google Sheets archive",
	Long: `Append a batch of articles to the configured spreadsheet.

Rows go to the first worksheet, after existing data (nothing is overwritten).
Each batch starts with a timestamp separator row unless --no-timestamp is
given; --header additionally prepends the column header row.

The spreadsheet must be shared with the service account's email address
(the client_email field in the key file).

Examples:
  google-delivery archive articles.json
  google-delivery archive articles.json --header
  fetch-news | google-delivery archive --no-timestamp`,
	Args: cobra.MaximumNArgs(1),
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().BoolVar(&archiveHeader, "header", false, "prepend the column header row")
	archiveCmd.Flags().BoolVar(&archiveNoTimestamp, "no-timestamp", false, "omit the batch timestamp separator row")
}

func runArchive(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateSheets(); err != nil {
		return err
	}

	articles, err := digest.LoadArticles(argPath(args))
	if err != nil {
		return err
	}

	client, err := sheets.NewClient(cmd.Context(), cfg.SpreadsheetID, cfg.ServiceAccountFile)
	if err != nil {
		return err
	}

	result, err := client.ArchiveArticles(cmd.Context(), articles, sheets.ArchiveOptions{
		AddTimestamp:     !archiveNoTimestamp,
		AddHeader:        archiveHeader,
		HeaderColumns:    cfg.Sheets.HeaderColumns,
		SummaryLimit:     cfg.Digest.SummaryLimit,
		ValueInputOption: cfg.Sheets.ValueInputOption,
	})
	if err != nil {
		if hint := gapi.Hint(err); hint != "" {
			return fmt.Errorf("%w (%s)", err, hint)
		}
		return err
	}

	recordDelivery(journal.Entry{
		Time:         time.Now(),
		ArticleCount: len(articles),
		UpdatedRange: result.UpdatedRange,
	})

	fmt.Printf("✅ Archived %d articles (%d cells, range %s)\n", len(articles), result.UpdatedCells, result.UpdatedRange)
	fmt.Printf("📊 %s\n", result.SheetURL)
	return nil
}
