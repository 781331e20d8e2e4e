// Package sheets writes digest batches to a Google Sheets spreadsheet using
// server-to-server service-account authorization.
package sheets

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	sheetsapi "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"github.com/mikezhu1928477/Google/internal/gapi"
	"github.com/mikezhu1928477/Google/internal/logger"
)

type Client struct {
	srv           *sheetsapi.Service
	spreadsheetID string
	saEmail       string
	limiter       *gapi.RateLimiter

	// worksheet metadata cache; refreshed on demand
	sheetsCache []*sheetsapi.Sheet
}

// NewClient authenticates with the service-account key file and returns a
// client bound to the given spreadsheet.
func NewClient(ctx context.Context, spreadsheetID, serviceAccountFile string) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("no spreadsheet ID configured")
	}

	b, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account key: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(b, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}

	srv, err := sheetsapi.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return &Client{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		saEmail:       jwtConfig.Email,
		limiter:       gapi.NewRateLimiter(gapi.ServiceSheets),
	}, nil
}

// ServiceAccountEmail returns the robot identity from the key file. The
// spreadsheet must be shared with this address.
func (c *Client) ServiceAccountEmail() string {
	return c.saEmail
}

// SpreadsheetURL returns the browser URL for the bound spreadsheet.
func (c *Client) SpreadsheetURL() string {
	return "https://docs.google.com/spreadsheets/d/" + c.spreadsheetID
}

// Title fetches the spreadsheet's display title.
func (c *Client) Title(ctx context.Context) (string, error) {
	meta, err := c.metadata(ctx, false)
	if err != nil {
		return "", err
	}
	return meta.Properties.Title, nil
}

// Sheets returns the worksheet list, cached after the first call.
func (c *Client) Sheets(ctx context.Context, forceRefresh bool) ([]*sheetsapi.Sheet, error) {
	if c.sheetsCache != nil && !forceRefresh {
		return c.sheetsCache, nil
	}
	meta, err := c.metadata(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	return meta.Sheets, nil
}

func (c *Client) metadata(ctx context.Context, forceRefresh bool) (*sheetsapi.Spreadsheet, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	meta, err := c.srv.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to fetch spreadsheet metadata: %w", gapi.WrapError(err))
	}
	c.sheetsCache = meta.Sheets
	return meta, nil
}

// FirstSheetTitle returns the title of the first worksheet, the default
// target for digest rows.
func (c *Client) FirstSheetTitle(ctx context.Context) (string, error) {
	sheetList, err := c.Sheets(ctx, false)
	if err != nil {
		return "", err
	}
	if len(sheetList) == 0 {
		return "", fmt.Errorf("spreadsheet has no worksheets")
	}
	return sheetList[0].Properties.Title, nil
}

// Read returns the values in the given A1-notation range.
func (c *Client) Read(ctx context.Context, rangeNotation string) ([][]interface{}, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, rangeNotation).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", rangeNotation, gapi.WrapError(err))
	}
	return resp.Values, nil
}

// Write overwrites the given range with rows.
func (c *Client) Write(ctx context.Context, rangeNotation string, rows [][]interface{}, valueInputOption string) (*sheetsapi.UpdateValuesResponse, error) {
	if valueInputOption == "" {
		valueInputOption = "RAW"
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.srv.Spreadsheets.Values.
		Update(c.spreadsheetID, rangeNotation, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		if gapi.IsRateLimited(err) {
			c.limiter.RecordRateLimitError(0)
		}
		return nil, fmt.Errorf("unable to write %s: %w", rangeNotation, gapi.WrapError(err))
	}

	logger.Info("wrote rows", "range", resp.UpdatedRange, "cells", resp.UpdatedCells)
	return resp, nil
}

// Append adds rows after existing data in the given range without
// overwriting anything.
func (c *Client) Append(ctx context.Context, rangeNotation string, rows [][]interface{}, valueInputOption string) (*sheetsapi.AppendValuesResponse, error) {
	if valueInputOption == "" {
		valueInputOption = "RAW"
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.srv.Spreadsheets.Values.
		Append(c.spreadsheetID, rangeNotation, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		if gapi.IsRateLimited(err) {
			c.limiter.RecordRateLimitError(0)
		}
		return nil, fmt.Errorf("unable to append to %s: %w", rangeNotation, gapi.WrapError(err))
	}

	if resp.Updates != nil {
		logger.Info("appended rows", "range", resp.Updates.UpdatedRange, "cells", resp.Updates.UpdatedCells)
	}
	return resp, nil
}
