package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mikezhu1928477/Google/internal/config"
	"github.com/mikezhu1928477/Google/internal/gapi"
	"github.com/mikezhu1928477/Google/internal/sheets"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for first-time users",
	Long: `Interactive setup wizard that walks through the credential configuration
described in the Google Cloud Console setup guide:

- Environment check (.env values and defaults)
- Credential file verification (service-account key and OAuth client)
- Google Sheets access test
- Gmail authorization

Perfect for first-time users who want a guided experience.

Example:
  google-delivery setup`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println("✅ Welcome to google-delivery!")
	fmt.Println()
	fmt.Println("This setup wizard will guide you through:")
	fmt.Println("1. 🔧 Environment check")
	fmt.Println("2. 🔑 Credential file verification")
	fmt.Println("3. 📊 Google Sheets access test")
	fmt.Println("4. 📧 Gmail authorization")
	fmt.Println()

	// Step 1: environment
	fmt.Println("ℹ️  Step 1: Environment")
	ok := true
	if cfg.SpreadsheetID == "" {
		fmt.Printf("⚠️  %s is not set. Copy it from the sheet URL:\n", config.EnvSpreadsheetID)
		fmt.Println("   https://docs.google.com/spreadsheets/d/<this part>/edit")
		ok = false
	} else {
		fmt.Printf("✅ Spreadsheet: %s\n", cfg.SpreadsheetURL())
	}
	if cfg.GmailTo == "" {
		fmt.Printf("⚠️  %s is not set; 'send' will need --to\n", config.EnvGmailTo)
	} else {
		fmt.Printf("✅ Recipient: %s\n", cfg.GmailTo)
	}
	fmt.Println()

	// Step 2: credential files
	fmt.Println("ℹ️  Step 2: Credential Files")
	reportCredentialFile("Service account key", cfg.ServiceAccountFile, config.KindServiceAccount)
	reportCredentialFile("Gmail OAuth client", cfg.GmailCredentialsFile, config.KindOAuthClient)
	if cfg.CredentialPathCollision() {
		warnOnCollision()
		ok = false
	}
	fmt.Println()

	// Step 3: Sheets access test
	fmt.Println("ℹ️  Step 3: Google Sheets Access")
	if err := cfg.ValidateSheets(); err != nil {
		fmt.Printf("⚠️  Skipping: %v\n", err)
		ok = false
	} else {
		client, err := sheets.NewClient(cmd.Context(), cfg.SpreadsheetID, cfg.ServiceAccountFile)
		if err != nil {
			fmt.Printf("⚠️  Failed to initialize Sheets client: %v\n", err)
			ok = false
		} else if title, err := client.Title(cmd.Context()); err != nil {
			fmt.Printf("⚠️  Cannot access spreadsheet: %v\n", err)
			if gapi.IsForbidden(err) || gapi.IsNotFound(err) {
				fmt.Printf("   Share the spreadsheet with: %s\n", client.ServiceAccountEmail())
			}
			ok = false
		} else {
			fmt.Printf("✅ Connected to spreadsheet: %s\n", title)
			if sheetTitle, err := client.FirstSheetTitle(cmd.Context()); err == nil {
				fmt.Printf("   Digest rows will go to worksheet %q\n", sheetTitle)
			}
		}
	}
	fmt.Println()

	// Step 4: Gmail authorization
	fmt.Println("ℹ️  Step 4: Gmail Authorization")
	if _, err := os.Stat(cfg.GmailCredentialsFile); err != nil {
		fmt.Printf("⚠️  Skipping: no OAuth client file at %s\n", cfg.GmailCredentialsFile)
		ok = false
	} else {
		authManager, err := newGmailAuth()
		if err != nil {
			fmt.Printf("⚠️  Failed to initialize: %v\n", err)
			ok = false
		} else if authManager.HasToken() {
			fmt.Println("✅ Already authorized (token cached)")
		} else {
			fmt.Println("We'll now authorize Gmail access. A consent URL will be printed;")
			fmt.Println("open it in a browser, approve, and paste the code back here.")
			fmt.Println()
			if _, err := authManager.Authenticate(cmd.Context(), os.Stdin, os.Stdout); err != nil {
				fmt.Printf("⚠️  Authorization failed: %v\n", err)
				ok = false
			} else {
				fmt.Println("✅ Gmail authorized!")
			}
		}
	}
	fmt.Println()

	if !ok {
		fmt.Println("⚠️  Setup finished with warnings. Fix the items above and re-run")
		fmt.Println("   'google-delivery setup' or check 'google-delivery status'.")
		return nil
	}

	fmt.Println("✅ Setup Complete!")
	fmt.Println()
	fmt.Println("📖 Next steps:")
	fmt.Println("  google-delivery sheets init-header        # once, on a fresh sheet")
	fmt.Println("  google-delivery deliver articles.json     # archive + email a batch")
	fmt.Println("  google-delivery status                    # check state anytime")
	return nil
}
