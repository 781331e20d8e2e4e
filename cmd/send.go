package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikezhu1928477/Google/internal/digest"
	"github.com/mikezhu1928477/Google/internal/gapi"
	"github.com/mikezhu1928477/Google/internal/gmail"
	"github.com/mikezhu1928477/Google/internal/journal"
	"github.com/mikezhu1928477/Google/internal/logger"
)

var (
	sendTo          string
	sendSubject     string
	sendWindow      string
	sendNoSheetLink bool
	sendDryRun      bool
)

var sendCmd = &cobra.Command{
	Use:   "send [articles-file]",
	Short: "Send a digest email via Gmail",
	Long: `Send a digest email for a batch of articles through the Gmail API.

Articles are read as a JSON array from the given file, or from stdin when the
file is "-" or omitted. Each article has title, source, url, published_at and
raw_summary fields; missing fields get placeholder text.

The email contains at most the configured number of inline articles (default
10) plus a link to the Google Sheets archive when a spreadsheet is configured.

Examples:
  google-delivery send articles.json
  fetch-news | google-delivery send
  google-delivery send articles.json --to someone@example.com --window "最近 24 小时"
  google-delivery send articles.json --dry-run     # print the rendered body`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient (default: GMAIL_TO)")
	sendCmd.Flags().StringVar(&sendSubject, "subject", "", "subject (default: derived from article count)")
	sendCmd.Flags().StringVar(&sendWindow, "window", "", "time window description shown in the digest")
	sendCmd.Flags().BoolVar(&sendNoSheetLink, "no-sheet-link", false, "omit the Google Sheets link")
	sendCmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "render the digest without sending")
}

func runSend(cmd *cobra.Command, args []string) error {
	articles, err := digest.LoadArticles(argPath(args))
	if err != nil {
		return err
	}

	recipient := sendTo
	if recipient == "" {
		recipient = cfg.GmailTo
	}

	sheetURL := ""
	if !sendNoSheetLink {
		sheetURL = cfg.SpreadsheetURL()
	}

	if sendDryRun {
		body, err := digest.RenderText(articles, digest.RenderOptions{
			TimeWindow: sendWindow,
			SheetURL:   sheetURL,
			MaxInline:  cfg.Digest.MaxInlineArticles,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Subject: %s\n", subjectOrDefault(sendSubject, len(articles)))
		fmt.Printf("To: %s\n\n", recipient)
		fmt.Print(body)
		return nil
	}

	if err := cfg.ValidateGmail(recipient == ""); err != nil {
		return err
	}

	messageID, err := sendDigest(cmd, gmail.SendInput{
		To:            recipient,
		Subject:       sendSubject,
		SubjectPrefix: cfg.Digest.SubjectPrefix,
		TimeWindow:    sendWindow,
		SheetURL:      sheetURL,
		MaxInline:     cfg.Digest.MaxInlineArticles,
		Articles:      articles,
	})
	if err != nil {
		return err
	}

	recordDelivery(journal.Entry{
		Time:         time.Now(),
		Recipient:    recipient,
		MessageID:    messageID,
		ArticleCount: len(articles),
	})

	fmt.Printf("✅ Digest sent to %s (%d articles)\n", recipient, len(articles))
	fmt.Printf("Message ID: %s\n", messageID)
	return nil
}

// sendDigest wires up the Gmail client and sends, translating auth and API
// failures into actionable messages.
func sendDigest(cmd *cobra.Command, in gmail.SendInput) (string, error) {
	authManager, err := newGmailAuth()
	if err != nil {
		return "", err
	}

	client, err := gmail.NewClient(cmd.Context(), authManager)
	if err != nil {
		if errors.Is(err, gmail.ErrAuthRequired) {
			return "", fmt.Errorf("authentication required. Run 'google-delivery auth' first")
		}
		return "", err
	}

	messageID, err := client.SendDigest(cmd.Context(), in)
	if err != nil {
		if hint := gapi.Hint(err); hint != "" {
			return "", fmt.Errorf("%w (%s)", err, hint)
		}
		return "", err
	}
	return messageID, nil
}

func subjectOrDefault(subject string, n int) string {
	if subject != "" {
		return subject
	}
	return digest.Subject(cfg.Digest.SubjectPrefix, n)
}

func argPath(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

// recordDelivery appends to the journal; failures are logged, not fatal.
func recordDelivery(e journal.Entry) {
	j := journal.New(dataDir)
	if err := j.Load(); err != nil {
		logger.Warn("failed to load journal", "error", err)
	}
	j.Record(e)
	if err := j.Save(); err != nil {
		logger.Warn("failed to save journal", "error", err)
	}
}
