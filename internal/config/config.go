package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Environment variables read by the tool. Names and defaults follow the
// .env block documented in the setup guide.
const (
	EnvSpreadsheetID        = "GOOGLE_SPREADSHEET_ID"
	EnvGmailTo              = "GMAIL_TO"
	EnvServiceAccountFile   = "GOOGLE_SERVICE_ACCOUNT_FILE"
	EnvGmailCredentialsFile = "GMAIL_CREDENTIALS_FILE"
	EnvGmailTokenFile       = "GMAIL_TOKEN_FILE"
)

const (
	DefaultServiceAccountFile   = "./service-account.json"
	DefaultGmailCredentialsFile = "./gmail_credentials.json"
	DefaultGmailTokenFile       = "./gmail_token.json"
)

// AppName is used for the config and data directories under the user's
// XDG directories.
const AppName = "google-delivery"

type Config struct {
	// Credential and target settings, environment-driven.
	SpreadsheetID        string
	GmailTo              string
	ServiceAccountFile   string
	GmailCredentialsFile string
	GmailTokenFile       string

	// Presentation settings from the TOML config file.
	Digest DigestConfig `mapstructure:"digest"`
	Sheets SheetsConfig `mapstructure:"sheets"`
}

type DigestConfig struct {
	MaxInlineArticles int    `mapstructure:"max_inline_articles"`
	SummaryLimit      int    `mapstructure:"summary_limit"`
	SubjectPrefix     string `mapstructure:"subject_prefix"`
}

type SheetsConfig struct {
	ValueInputOption string   `mapstructure:"value_input_option"`
	HeaderColumns    []string `mapstructure:"header_columns"`
}

var defaultConfig = Config{
	Digest: DigestConfig{
		MaxInlineArticles: 10,
		SummaryLimit:      500,
		SubjectPrefix:     "📰 新闻日报",
	},
	Sheets: SheetsConfig{
		ValueInputOption: "RAW",
		HeaderColumns:    []string{"发布时间", "标题", "来源", "链接", "摘要"},
	},
}

// Load reads the TOML config file (creating a default one on first run) and
// binds the credential settings to their environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigName("config")

	if configPath == "" {
		dir, err := getDefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		configPath = dir
	}

	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createDefaultConfig(configPath); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
			// Ignore a second miss and fall back to defaults.
			_ = v.ReadInConfig()
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := defaultConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := bindEnvironment(v); err != nil {
		return nil, err
	}

	cfg.GmailTo = v.GetString(EnvGmailTo)
	cfg.ServiceAccountFile = stringOr(v.GetString(EnvServiceAccountFile), DefaultServiceAccountFile)
	cfg.GmailCredentialsFile = stringOr(v.GetString(EnvGmailCredentialsFile), DefaultGmailCredentialsFile)
	cfg.GmailTokenFile = stringOr(v.GetString(EnvGmailTokenFile), DefaultGmailTokenFile)

	if raw := v.GetString(EnvSpreadsheetID); raw != "" {
		id, err := ExtractSpreadsheetID(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvSpreadsheetID, err)
		}
		cfg.SpreadsheetID = id
	}

	return &cfg, nil
}

func bindEnvironment(v *viper.Viper) error {
	for _, name := range []string{
		EnvSpreadsheetID,
		EnvGmailTo,
		EnvServiceAccountFile,
		EnvGmailCredentialsFile,
		EnvGmailTokenFile,
	} {
		if err := v.BindEnv(name, name); err != nil {
			return fmt.Errorf("failed to bind %s: %w", name, err)
		}
	}
	return nil
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("digest.max_inline_articles", defaultConfig.Digest.MaxInlineArticles)
	v.SetDefault("digest.summary_limit", defaultConfig.Digest.SummaryLimit)
	v.SetDefault("digest.subject_prefix", defaultConfig.Digest.SubjectPrefix)

	v.SetDefault("sheets.value_input_option", defaultConfig.Sheets.ValueInputOption)
	v.SetDefault("sheets.header_columns", defaultConfig.Sheets.HeaderColumns)
}

func createDefaultConfig(configPath string) error {
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.toml")
	if _, err := os.Stat(configFile); err == nil {
		return nil
	}

	configContent := `# google-delivery configuration
#
# Credentials and targets come from the environment (or a .env file):
#   GOOGLE_SPREADSHEET_ID, GMAIL_TO,
#   GOOGLE_SERVICE_ACCOUNT_FILE (default ./service-account.json),
#   GMAIL_CREDENTIALS_FILE (default ./gmail_credentials.json),
#   GMAIL_TOKEN_FILE (default ./gmail_token.json)

[digest]
max_inline_articles = 10   # articles shown inline in the email body
summary_limit = 500        # summary truncation for sheet rows
subject_prefix = "📰 新闻日报"

[sheets]
value_input_option = "RAW"
header_columns = ["发布时间", "标题", "来源", "链接", "摘要"]
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func getDefaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", AppName), nil
}

// GetDefaultConfigDir returns the default configuration directory.
func GetDefaultConfigDir() (string, error) {
	return getDefaultConfigDir()
}

// GetDefaultDataDir returns the default data directory, used for the Gmail
// token store and the delivery journal.
func GetDefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", AppName), nil
}

var spreadsheetIDPattern = regexp.MustCompile(`/(?:spreadsheets/)?d/([a-zA-Z0-9_-]+)`)

// ExtractSpreadsheetID accepts either a bare spreadsheet ID or a full Google
// Sheets URL and returns the opaque ID from the /d/<id> path segment.
func ExtractSpreadsheetID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty spreadsheet identifier")
	}

	if strings.Contains(raw, "/") {
		m := spreadsheetIDPattern.FindStringSubmatch(raw)
		if m == nil {
			return "", fmt.Errorf("no /d/<id> segment found in %q", raw)
		}
		return m[1], nil
	}

	return raw, nil
}

// SpreadsheetURL returns the browser URL for the configured spreadsheet.
func (c *Config) SpreadsheetURL() string {
	if c.SpreadsheetID == "" {
		return ""
	}
	return "https://docs.google.com/spreadsheets/d/" + c.SpreadsheetID
}

// CredentialKind classifies the JSON shape of a downloaded credential file.
type CredentialKind string

const (
	KindOAuthClient    CredentialKind = "oauth_client"
	KindServiceAccount CredentialKind = "service_account"
	KindUnknown        CredentialKind = "unknown"
)

// ClassifyCredentialFile inspects a credential JSON file and reports whether
// it is an OAuth client secret (Gmail) or a service-account key (Sheets).
// The setup guide has been observed to direct both downloads to the same
// filename, so callers use this to verify the files match their roles.
func ClassifyCredentialFile(path string) (CredentialKind, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KindUnknown, err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return KindUnknown, fmt.Errorf("not a JSON object: %w", err)
	}

	if _, ok := probe["installed"]; ok {
		return KindOAuthClient, nil
	}
	if _, ok := probe["web"]; ok {
		return KindOAuthClient, nil
	}

	if rawType, ok := probe["type"]; ok {
		var t string
		if err := json.Unmarshal(rawType, &t); err == nil && t == "service_account" {
			return KindServiceAccount, nil
		}
	}

	return KindUnknown, nil
}

// CredentialPathCollision reports whether the service-account key and the
// Gmail OAuth client are configured to the same file. The setup instructions
// rename both downloads to gmail_credentials.json, which cannot work; this is
// surfaced as a warning rather than silently remapped.
func (c *Config) CredentialPathCollision() bool {
	a, err1 := filepath.Abs(c.ServiceAccountFile)
	b, err2 := filepath.Abs(c.GmailCredentialsFile)
	if err1 != nil || err2 != nil {
		return filepath.Clean(c.ServiceAccountFile) == filepath.Clean(c.GmailCredentialsFile)
	}
	return a == b
}

// ValidateSheets checks that the configuration is sufficient for Google
// Sheets operations.
func (c *Config) ValidateSheets() error {
	if c.SpreadsheetID == "" {
		return fmt.Errorf("%s is not set (configure it in .env or the environment)", EnvSpreadsheetID)
	}
	if c.ServiceAccountFile == "" {
		return fmt.Errorf("%s is not set", EnvServiceAccountFile)
	}
	if _, err := os.Stat(c.ServiceAccountFile); err != nil {
		return fmt.Errorf("service account key not found at %s: %w", c.ServiceAccountFile, err)
	}
	return nil
}

// ValidateGmail checks that the configuration is sufficient for Gmail
// operations. Recipient presence is only enforced when sending.
func (c *Config) ValidateGmail(needRecipient bool) error {
	if c.GmailCredentialsFile == "" {
		return fmt.Errorf("%s is not set", EnvGmailCredentialsFile)
	}
	if _, err := os.Stat(c.GmailCredentialsFile); err != nil {
		return fmt.Errorf("gmail credentials not found at %s: %w", c.GmailCredentialsFile, err)
	}
	if needRecipient && c.GmailTo == "" {
		return fmt.Errorf("no recipient: set %s or pass --to", EnvGmailTo)
	}
	return nil
}
