package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"

	"github.com/mikezhu1928477/Google/internal/config"
	"github.com/mikezhu1928477/Google/internal/gmail"
	"github.com/mikezhu1928477/Google/internal/logger"
)

var (
	dataDir string
	verbose bool
	cfgFile string
	envFile string
	cfg     *config.Config

	// Version information
	version    string
	commitHash string
	buildTime  string
)

var rootCmd = &cobra.Command{
	Use:   "google-delivery",
	Short: "Deliver news digests via Gmail and archive them to Google Sheets",
	Long: `A CLI tool that delivers news digest batches through Google APIs: it sends
a formatted digest email via Gmail (OAuth installed-app flow) and archives the
full batch to a Google Sheets spreadsheet (service-account authorization).

Credentials and targets are configured through the environment or a .env file:
GOOGLE_SPREADSHEET_ID, GMAIL_TO, GOOGLE_SERVICE_ACCOUNT_FILE,
GMAIL_CREDENTIALS_FILE and GMAIL_TOKEN_FILE. Run 'google-delivery setup' for a
guided first-time walkthrough.`,
}

func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, commit, buildTimeStr string) {
	version = v
	commitHash = commit
	buildTime = buildTimeStr

	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commitHash, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for token and journal (default: ~/.local/share/google-delivery)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config directory (default is $HOME/.config/google-delivery)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", ".env file to load (default: ./.env, then ~/.config/google-delivery/.env)")

	// Add subcommands
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(deliverCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(statusCmd)
}

func initConfig() {
	logger.Init(verbose)

	loadEnvFile()

	if dataDir == "" {
		defaultDataDir, err := config.GetDefaultDataDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting default data directory: %v\n", err)
			os.Exit(1)
		}
		dataDir = defaultDataDir
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}

// loadEnvFile loads variables from a .env file. Real environment variables
// always win over .env values. With --env-file a missing file is an error;
// otherwise the working directory and the user config dir are probed.
func loadEnvFile() {
	if envFile != "" {
		if err := gotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading env file %s: %v\n", envFile, err)
			os.Exit(1)
		}
		return
	}

	tryPaths := []string{".env"}
	if cfgHome, err := os.UserConfigDir(); err == nil {
		tryPaths = append(tryPaths, filepath.Join(cfgHome, config.AppName, ".env"))
	}
	for _, p := range tryPaths {
		if _, err := os.Stat(p); err == nil {
			if loadErr := gotenv.Load(p); loadErr == nil {
				return
			}
		}
	}
}

// newGmailAuth builds the Gmail auth manager from the configured credential
// and token paths.
func newGmailAuth() (*gmail.AuthManager, error) {
	if err := cfg.ValidateGmail(false); err != nil {
		return nil, err
	}
	return gmail.NewAuthManager(cfg.GmailCredentialsFile, cfg.GmailTokenFile)
}
