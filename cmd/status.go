package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikezhu1928477/Google/internal/config"
	"github.com/mikezhu1928477/Google/internal/journal"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check configuration, credentials and recent deliveries",
	Long: `Display the current state of the delivery tool:
- Configured spreadsheet and recipient
- Credential files (existence and JSON shape)
- Gmail token status
- Recent deliveries from the local journal

This command never calls a Google API; it only inspects local state.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Configuration ===")
	printSetting(config.EnvSpreadsheetID, cfg.SpreadsheetID)
	printSetting(config.EnvGmailTo, cfg.GmailTo)
	fmt.Printf("%s: %s\n", config.EnvServiceAccountFile, cfg.ServiceAccountFile)
	fmt.Printf("%s: %s\n", config.EnvGmailCredentialsFile, cfg.GmailCredentialsFile)
	fmt.Printf("%s: %s\n", config.EnvGmailTokenFile, cfg.GmailTokenFile)

	fmt.Println("\n=== Credentials ===")
	reportCredentialFile("Service account key", cfg.ServiceAccountFile, config.KindServiceAccount)
	reportCredentialFile("Gmail OAuth client", cfg.GmailCredentialsFile, config.KindOAuthClient)
	warnOnCollision()

	fmt.Println("\n=== Gmail Token ===")
	if _, err := os.Stat(cfg.GmailCredentialsFile); err != nil {
		fmt.Println("⚠️  Cannot check: no Gmail OAuth client file")
	} else if authManager, err := newGmailAuth(); err != nil {
		fmt.Printf("⚠️  Cannot check: %v\n", err)
	} else if authManager.HasToken() {
		fmt.Printf("✅ Token cached at %s\n", authManager.TokenPath())
	} else {
		fmt.Println("⚠️  No token (run 'google-delivery auth')")
	}

	fmt.Println("\n=== Deliveries ===")
	j := journal.New(dataDir)
	if err := j.Load(); err != nil {
		fmt.Printf("⚠️  Failed to load journal: %v\n", err)
		return nil
	}

	if j.Len() == 0 {
		fmt.Println("No deliveries recorded yet")
		return nil
	}

	last := j.Last()
	fmt.Printf("Last delivery: %s (%s ago)\n",
		last.Time.Format("2006-01-02 15:04:05"),
		time.Since(last.Time).Truncate(time.Second))
	fmt.Printf("Recorded deliveries: %d\n\n", j.Len())

	for _, e := range j.Tail(5) {
		line := fmt.Sprintf("• %s  %d articles", e.Time.Format("2006-01-02 15:04"), e.ArticleCount)
		if e.Recipient != "" {
			line += "  → " + e.Recipient
		}
		if e.UpdatedRange != "" {
			line += "  [" + e.UpdatedRange + "]"
		}
		fmt.Println(line)
	}
	return nil
}

func printSetting(name, value string) {
	if value == "" {
		fmt.Printf("%s: (not set)\n", name)
		return
	}
	fmt.Printf("%s: %s\n", name, value)
}

// reportCredentialFile prints one line describing a credential file and
// whether its JSON shape matches the expected role.
func reportCredentialFile(label, path string, want config.CredentialKind) {
	kind, err := config.ClassifyCredentialFile(path)
	switch {
	case os.IsNotExist(err):
		fmt.Printf("⚠️  %s: missing (%s)\n", label, path)
	case err != nil:
		fmt.Printf("⚠️  %s: unreadable (%v)\n", label, err)
	case kind == want:
		fmt.Printf("✅ %s: %s\n", label, path)
	case kind == config.KindUnknown:
		fmt.Printf("⚠️  %s: %s has an unrecognized JSON shape\n", label, path)
	default:
		fmt.Printf("❌ %s: %s looks like a %s file, not a %s file\n", label, path, kind, want)
	}
}

// warnOnCollision surfaces the setup-guide defect where both credential
// downloads are renamed to the same filename.
func warnOnCollision() {
	if !cfg.CredentialPathCollision() {
		return
	}
	fmt.Println("❌ GOOGLE_SERVICE_ACCOUNT_FILE and GMAIL_CREDENTIALS_FILE point to the same file.")
	fmt.Println("   The service-account key and the OAuth client credential are different files;")
	fmt.Println("   give them distinct names (e.g. service-account.json and gmail_credentials.json).")
}
