package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"salarycalc/internal/export"
	ports "salarycalc/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var _ ports.TableExporter = (*Client)(nil)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Options selects the target spreadsheet and the service account used to
// reach it. Inline JSON wins over the file path.
type Options struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
}

func New(ctx context.Context, o Options, extra ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(o.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	opts := extra
	if len(opts) == 0 {
		creds, err := loadCredentials(ctx, o)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", spreadsheetID)
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func loadCredentials(ctx context.Context, o Options) ([]byte, error) {
	inline := strings.TrimSpace(o.ServiceAccountJSON)
	file := strings.TrimSpace(o.ServiceAccountFile)

	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	case file != "":
		slog.DebugContext(ctx, "Reading service account credentials", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Export writes the table into the tab named title starting at A1, adding
// the tab first when the spreadsheet does not have it yet. A redelivered
// export therefore overwrites its own tab instead of failing. Values are
// written RAW so category names are never reinterpreted.
func (c *Client) Export(ctx context.Context, title string, table export.Table) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	title = sheetTitle(title)
	if title == "" {
		return "", errors.New("empty export title")
	}

	exists, err := c.hasSheet(ctx, title)
	if err != nil {
		return "", err
	}
	if !exists {
		add := &gsheet.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheet.Request{{
				AddSheet: &gsheet.AddSheetRequest{
					Properties: &gsheet.SheetProperties{Title: title},
				},
			}},
		}
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, add).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("add sheet %q: %w", title, err)
		}
	} else {
		slog.InfoContext(ctx, "Reusing existing sheet", "title", title)
	}

	rng := a1Range(title)
	vr := &gsheet.ValueRange{Values: table.Values()}
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write %s: %w", rng, err)
	}

	if resp.UpdatedRange != "" {
		return resp.UpdatedRange, nil
	}
	return rng, nil
}

// hasSheet reports whether the spreadsheet already has a tab named title.
func (c *Client) hasSheet(ctx context.Context, title string) (bool, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("list sheets: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return true, nil
		}
	}
	return false, nil
}

// sheetTitle trims the title to what the API accepts.
func sheetTitle(title string) string {
	title = strings.TrimSpace(title)
	if r := []rune(title); len(r) > export.MaxTitleLen {
		title = string(r[:export.MaxTitleLen])
	}
	return title
}

// a1Range quotes a sheet title for use in A1 notation.
func a1Range(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!A1"
}
