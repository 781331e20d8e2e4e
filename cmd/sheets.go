package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikezhu1928477/Google/internal/gapi"
	"github.com/mikezhu1928477/Google/internal/sheets"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "Inspect and manage the Google Sheets archive",
}

var sheetsInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show spreadsheet metadata and worksheets",
	Long: `Show the configured spreadsheet's title and its worksheets.

Useful after setup to confirm the service account can reach the spreadsheet.

Example:
  google-delivery sheets info`,
	RunE: runSheetsInfo,
}

var sheetsReadCmd = &cobra.Command{
	Use:   "read <range>",
	Short: "Read a range from the spreadsheet",
	Long: `Read values from an A1-notation range and print them tab-separated.

Examples:
  google-delivery sheets read 'Sheet1!A1:E10'
  google-delivery sheets read 'A:A'`,
	Args: cobra.ExactArgs(1),
	RunE: runSheetsRead,
}

var sheetsInitHeaderCmd = &cobra.Command{
	Use:   "init-header",
	Short: "Write the column header row",
	Long: `Write the digest column header row at the top of the first worksheet.

Meant to be run once on a fresh spreadsheet; it overwrites row 1.`,
	RunE: runSheetsInitHeader,
}

var sheetsURLCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the spreadsheet URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.SpreadsheetID == "" {
			return fmt.Errorf("%s is not set", "GOOGLE_SPREADSHEET_ID")
		}
		fmt.Println(cfg.SpreadsheetURL())
		return nil
	},
}

func init() {
	sheetsCmd.AddCommand(sheetsInfoCmd)
	sheetsCmd.AddCommand(sheetsReadCmd)
	sheetsCmd.AddCommand(sheetsInitHeaderCmd)
	sheetsCmd.AddCommand(sheetsURLCmd)
	rootCmd.AddCommand(sheetsCmd)
}

func newSheetsClient(cmd *cobra.Command) (*sheets.Client, error) {
	if err := cfg.ValidateSheets(); err != nil {
		return nil, err
	}
	return sheets.NewClient(cmd.Context(), cfg.SpreadsheetID, cfg.ServiceAccountFile)
}

func runSheetsInfo(cmd *cobra.Command, args []string) error {
	client, err := newSheetsClient(cmd)
	if err != nil {
		return err
	}

	title, err := client.Title(cmd.Context())
	if err != nil {
		if hint := gapi.Hint(err); hint != "" {
			return fmt.Errorf("%w (%s)", err, hint)
		}
		return err
	}

	worksheets, err := client.Sheets(cmd.Context(), false)
	if err != nil {
		return err
	}

	fmt.Println("=== Spreadsheet ===")
	fmt.Printf("Title: %s\n", title)
	fmt.Printf("URL: %s\n", client.SpreadsheetURL())
	fmt.Printf("Service account: %s\n", client.ServiceAccountEmail())

	fmt.Println("\n=== Worksheets ===")
	for _, ws := range worksheets {
		props := ws.Properties
		fmt.Printf("📄 %s\n", props.Title)
		fmt.Printf("  ID: %d\n", props.SheetId)
		if props.GridProperties != nil {
			fmt.Printf("  Size: %d rows × %d columns\n", props.GridProperties.RowCount, props.GridProperties.ColumnCount)
		}
	}
	fmt.Printf("\nTotal worksheets: %d\n", len(worksheets))
	return nil
}

func runSheetsRead(cmd *cobra.Command, args []string) error {
	client, err := newSheetsClient(cmd)
	if err != nil {
		return err
	}

	rows, err := client.Read(cmd.Context(), args[0])
	if err != nil {
		if hint := gapi.Hint(err); hint != "" {
			return fmt.Errorf("%w (%s)", err, hint)
		}
		return err
	}

	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprint(cell))
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
	return nil
}

func runSheetsInitHeader(cmd *cobra.Command, args []string) error {
	client, err := newSheetsClient(cmd)
	if err != nil {
		return err
	}

	url, err := client.WriteHeader(cmd.Context(), cfg.Sheets.HeaderColumns, cfg.Sheets.ValueInputOption)
	if err != nil {
		if hint := gapi.Hint(err); hint != "" {
			return fmt.Errorf("%w (%s)", err, hint)
		}
		return err
	}

	fmt.Printf("✅ Header written: %s\n", strings.Join(cfg.Sheets.HeaderColumns, " | "))
	fmt.Printf("📊 %s\n", url)
	return nil
}
