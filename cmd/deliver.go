package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikezhu1928477/Google/internal/digest"
	"github.com/mikezhu1928477/Google/internal/gapi"
	"github.com/mikezhu1928477/Google/internal/gmail"
	"github.com/mikezhu1928477/Google/internal/journal"
	"github.com/mikezhu1928477/Google/internal/logger"
	"github.com/mikezhu1928477/Google/internal/sheets"
)

var (
	deliverTo     string
	deliverWindow string
)

var deliverCmd = &cobra.Command{
	Use:   "deliver [articles-file]",
	Short: "Archive a digest batch to Sheets, then email it",
	Long: `Run the full delivery: append the batch to the Google Sheets archive and
send the digest email with a link to the sheet.

If the archive step fails the email is still sent, without the sheet link, so
a Sheets outage does not block the digest.

Examples:
  google-delivery deliver articles.json
  fetch-news | google-delivery deliver --window "最近 24 小时"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeliver,
}

func init() {
	deliverCmd.Flags().StringVar(&deliverTo, "to", "", "recipient (default: GMAIL_TO)")
	deliverCmd.Flags().StringVar(&deliverWindow, "window", "", "time window description shown in the digest")
}

func runDeliver(cmd *cobra.Command, args []string) error {
	articles, err := digest.LoadArticles(argPath(args))
	if err != nil {
		return err
	}

	recipient := deliverTo
	if recipient == "" {
		recipient = cfg.GmailTo
	}
	if err := cfg.ValidateGmail(recipient == ""); err != nil {
		return err
	}

	entry := journal.Entry{
		Time:         time.Now(),
		Recipient:    recipient,
		ArticleCount: len(articles),
	}

	// Archive first so the email can link the fresh batch.
	sheetURL := ""
	if err := cfg.ValidateSheets(); err != nil {
		logger.Warn("skipping sheet archive", "reason", err)
		fmt.Printf("⚠️  Skipping sheet archive: %v\n", err)
	} else {
		client, err := sheets.NewClient(cmd.Context(), cfg.SpreadsheetID, cfg.ServiceAccountFile)
		if err != nil {
			return err
		}

		result, err := client.ArchiveArticles(cmd.Context(), articles, sheets.ArchiveOptions{
			AddTimestamp:     true,
			HeaderColumns:    cfg.Sheets.HeaderColumns,
			SummaryLimit:     cfg.Digest.SummaryLimit,
			ValueInputOption: cfg.Sheets.ValueInputOption,
		})
		if err != nil {
			logger.Warn("sheet archive failed", "error", err)
			if hint := gapi.Hint(err); hint != "" {
				fmt.Printf("⚠️  Sheet archive failed: %v (%s)\n", err, hint)
			} else {
				fmt.Printf("⚠️  Sheet archive failed: %v\n", err)
			}
		} else {
			sheetURL = result.SheetURL
			entry.UpdatedRange = result.UpdatedRange
			fmt.Printf("✅ Archived %d articles (range %s)\n", len(articles), result.UpdatedRange)
		}
	}

	messageID, err := sendDigest(cmd, gmail.SendInput{
		To:            recipient,
		SubjectPrefix: cfg.Digest.SubjectPrefix,
		TimeWindow:    deliverWindow,
		SheetURL:      sheetURL,
		MaxInline:     cfg.Digest.MaxInlineArticles,
		Articles:      articles,
	})
	if err != nil {
		return err
	}
	entry.MessageID = messageID

	recordDelivery(entry)

	fmt.Printf("✅ Digest sent to %s (%d articles)\n", recipient, len(articles))
	if sheetURL != "" {
		fmt.Printf("📊 %s\n", sheetURL)
	}
	return nil
}
