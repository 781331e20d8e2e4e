package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	revokeFlag bool
	statusOnly bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Gmail authentication",
	Long: `Authenticate with the Gmail API using the OAuth 2.0 installed-app flow.

You need an OAuth client credential file (desktop application type) from the
Google Cloud Console; its path comes from GMAIL_CREDENTIALS_FILE (default
./gmail_credentials.json). The granted token is cached at GMAIL_TOKEN_FILE and
refreshed automatically on later runs.

Examples:
  google-delivery auth             # Run the authorization flow
  google-delivery auth --status    # Check authentication status
  google-delivery auth --revoke    # Clear the cached token`,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().BoolVar(&revokeFlag, "revoke", false, "clear the cached token")
	authCmd.Flags().BoolVar(&statusOnly, "status", false, "check authentication status only")
}

func runAuth(cmd *cobra.Command, args []string) error {
	authManager, err := newGmailAuth()
	if err != nil {
		return err
	}

	if statusOnly {
		if authManager.HasToken() {
			fmt.Println("✅ Gmail authentication: valid")
			fmt.Printf("Token file: %s\n", authManager.TokenPath())
		} else {
			fmt.Println("⚠️  Gmail authentication: required (run 'google-delivery auth')")
		}
		return nil
	}

	if revokeFlag {
		if err := authManager.ClearToken(); err != nil {
			return fmt.Errorf("failed to clear authentication: %w", err)
		}
		fmt.Println("✅ Cached token cleared")
		return nil
	}

	if authManager.HasToken() {
		fmt.Println("✅ Already authenticated with Gmail")
		fmt.Println("Use --revoke to re-authenticate or --status to check status")
		return nil
	}

	if _, err := authManager.Authenticate(cmd.Context(), os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fmt.Println("\n✅ Authentication successful!")
	fmt.Println("You can now use 'google-delivery send' to deliver a digest.")
	return nil
}
