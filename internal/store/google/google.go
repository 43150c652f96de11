// Package google mirrors mood entries into a Google Sheets spreadsheet, one
// row per user and day. The sheet is write-only from moodlog's side.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"moodlog/internal/core"
	"moodlog/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultSheetName = "Moods"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	now           func() time.Time

	// mu serializes UpsertEntry: a new row's number comes from the rows read
	// just before the write.
	mu sync.Mutex
}

// Ensure interface conformance
var _ store.EntryWriter = (*Client)(nil)

// New creates a Sheets client. An empty sheetName means "Moods".
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS, else from the OAuth client and token files.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = defaultSheetName
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		now:           time.Now,
	}, nil
}

// newSheetsService prefers Service Account credentials and falls back to an
// OAuth user token.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		svc, err := newOAuthSheetsService(ctx)
		if errors.Is(err, ErrNoOAuthClient) {
			return nil, errors.New("missing credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS, or an OAuth client and token)")
		}
		if err != nil {
			return nil, fmt.Errorf("oauth credentials: %w", err)
		}
		slog.InfoContext(ctx, "Created Google Sheets service with OAuth user token")
		return svc, nil
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// UpsertEntry overwrites the row for (user, day) or appends a new one.
func (c *Client) UpsertEntry(ctx context.Context, userID string, e core.MoodEntry) (core.MoodEntry, error) {
	if err := e.Validate(); err != nil {
		return core.MoodEntry{}, fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return core.MoodEntry{}, errors.New("sheets service not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.readRange(ctx, "A:B")
	if err != nil {
		return core.MoodEntry{}, err
	}

	if len(keys) == 0 {
		if err := c.writeRow(ctx, 1, headerRow()); err != nil {
			return core.MoodEntry{}, err
		}
		keys = [][]any{headerRow()}
	}

	rowNum := findRow(keys, userID, e.Date.Key())
	if rowNum == 0 {
		rowNum = len(keys) + 1
	}

	if err := c.writeRow(ctx, rowNum, entryToRow(userID, e, c.now())); err != nil {
		return core.MoodEntry{}, err
	}

	slog.DebugContext(ctx, "Mood entry written to sheet", "row", rowNum, "user_id", userID, "day", e.Date.Key())
	return e, nil
}

func (c *Client) writeRow(ctx context.Context, rowNum int, values []any) error {
	rng := fmt.Sprintf("%s!A%d:G%d", c.sheetName, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", rng, err)
	}
	return nil
}

func (c *Client) readRange(ctx context.Context, cols string) ([][]any, error) {
	rng := fmt.Sprintf("%s!%s", c.sheetName, cols)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}
