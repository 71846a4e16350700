// Package google mirrors transactions into a Google Sheets tab through the
// Sheets v4 values API.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// values is the slice of the values API the mirror needs. Rows are 1-based
// as in A1 notation.
type values interface {
	get(ctx context.Context, rng string) ([][]any, error)
	update(ctx context.Context, rng string, row []any) error
	append(ctx context.Context, rng string, row []any) error
	clear(ctx context.Context, ranges []string) error
}

type Client struct {
	api   values
	sheet string
	// mu serializes lookups with the writes that depend on them.
	mu sync.Mutex
}

var _ ports.Mirror = (*Client)(nil)

// New builds a mirror authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newClient(&serviceValues{svc: svc, spreadsheetID: cfg.SpreadsheetID}, cfg.SheetName), nil
}

func newClient(api values, sheet string) *Client {
	if sheet == "" {
		sheet = "Transactions"
	}
	return &Client{api: api, sheet: sheet}
}

// newSheetsService prefers inline JSON credentials, then a file path, then
// GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inline != "":
		credentialsJSON = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service",
		"component", "sheets",
		"inline_credentials", inline != "",
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) UpsertTransaction(ctx context.Context, t core.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.api.get(ctx, c.keyRange())
	if err != nil {
		return fmt.Errorf("read %s ids: %w", c.sheet, err)
	}
	if len(rows) == 0 {
		if err := c.api.update(ctx, c.rowRange(1), toCells(ports.Header)); err != nil {
			return fmt.Errorf("write %s header: %w", c.sheet, err)
		}
	}

	cells := toCells(ports.Row(t))
	if n := findRows(rows, func(uid, id int64) bool { return uid == t.UserID && id == t.ID }); len(n) > 0 {
		if err := c.api.update(ctx, c.rowRange(n[0]), cells); err != nil {
			return fmt.Errorf("update %s row %d: %w", c.sheet, n[0], err)
		}
		return nil
	}
	if err := c.api.append(ctx, fmt.Sprintf("%s!A:G", c.sheet), cells); err != nil {
		return fmt.Errorf("append to %s: %w", c.sheet, err)
	}
	return nil
}

func (c *Client) RemoveTransaction(ctx context.Context, userID, id int64) error {
	return c.clearWhere(ctx, func(uid, rid int64) bool { return uid == userID && rid == id })
}

func (c *Client) RemoveUser(ctx context.Context, userID int64) error {
	return c.clearWhere(ctx, func(uid, _ int64) bool { return uid == userID })
}

// clearWhere blanks matching rows instead of deleting them, which would
// need the numeric sheet id and shift every row below.
func (c *Client) clearWhere(ctx context.Context, match func(userID, id int64) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.api.get(ctx, c.keyRange())
	if err != nil {
		return fmt.Errorf("read %s ids: %w", c.sheet, err)
	}
	found := findRows(rows, match)
	if len(found) == 0 {
		return nil
	}
	ranges := make([]string, len(found))
	for i, n := range found {
		ranges[i] = c.rowRange(n)
	}
	if err := c.api.clear(ctx, ranges); err != nil {
		return fmt.Errorf("clear %d rows in %s: %w", len(ranges), c.sheet, err)
	}
	return nil
}

func (c *Client) keyRange() string {
	return fmt.Sprintf("%s!A:B", c.sheet)
}

func (c *Client) rowRange(n int) string {
	return fmt.Sprintf("%s!A%d:G%d", c.sheet, n, n)
}

// findRows returns the 1-based row numbers whose id columns satisfy match.
// The header and blank or foreign rows never match.
func findRows(rows [][]any, match func(userID, id int64) bool) []int {
	var out []int
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		id, err1 := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(row[0])), 10, 64)
		uid, err2 := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(row[1])), 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if match(uid, id) {
			out = append(out, i+1)
		}
	}
	return out
}

func toCells(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

type serviceValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (s *serviceValues) get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *serviceValues) update(ctx context.Context, rng string, row []any) error {
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}

func (s *serviceValues) append(ctx context.Context, rng string, row []any) error {
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

func (s *serviceValues) clear(ctx context.Context, ranges []string) error {
	req := &gsheet.BatchClearValuesRequest{Ranges: ranges}
	_, err := s.svc.Spreadsheets.Values.BatchClear(s.spreadsheetID, req).Context(ctx).Do()
	return err
}
