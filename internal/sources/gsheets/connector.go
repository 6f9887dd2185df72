package gsheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"sheetetl/internal"
	"sheetetl/internal/config"
)

var ErrWorksheetNotFound = errors.New("no worksheet found")

type Connector struct {
	service       *sheets.Service
	spreadsheetID string
	worksheetGID  string
	limiter       *RateLimiter
	timeout       time.Duration
}

func NewConnector(ctx context.Context, cfg config.Config, src config.SourceSpec, limiter *RateLimiter) (*Connector, error) {
	auth, err := authOption(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := sheets.NewService(ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newConnector(svc, src, limiter, time.Duration(cfg.SheetsTimeoutMs)*time.Millisecond), nil
}

func newConnector(svc *sheets.Service, src config.SourceSpec, limiter *RateLimiter, timeout time.Duration) *Connector {
	if limiter == nil {
		limiter = NewRateLimiter(1)
	}
	return &Connector{
		service:       svc,
		spreadsheetID: src.SpreadsheetID,
		worksheetGID:  strings.TrimSpace(src.WorksheetGID),
		limiter:       limiter,
		timeout:       timeout,
	}
}

// authOption prefers a service-account key file and falls back to a user
// refresh token.
func authOption(ctx context.Context, cfg config.Config) (option.ClientOption, error) {
	if strings.TrimSpace(cfg.GoogleCredentialsFile) != "" {
		blob, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read google credentials: %w", err)
		}
		jwtCfg, err := google.JWTConfigFromJSON(blob, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("parse google credentials: %w", err)
		}
		return option.WithTokenSource(jwtCfg.TokenSource(ctx)), nil
	}

	if err := cfg.Require("GOOGLE_CLIENT_ID", cfg.GoogleClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("GOOGLE_REFRESH_TOKEN", cfg.GoogleRefreshToken); err != nil {
		return nil, err
	}
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       []string{sheets.SpreadsheetsReadonlyScope},
	}
	return option.WithTokenSource(oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GoogleRefreshToken})), nil
}

func (c *Connector) Describe() string {
	return fmt.Sprintf("gsheet:%s#gid=%s", c.spreadsheetID, c.worksheetGID)
}

// Fetch returns every formatted cell of the worksheet, first row as headers.
func (c *Connector) Fetch(ctx context.Context) (internal.Table, error) {
	title, err := c.worksheetTitle(ctx)
	if err != nil {
		return internal.Table{}, err
	}

	if err := c.limiter.WaitTurn(ctx); err != nil {
		return internal.Table{}, err
	}
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, quoteSheetTitle(title)).
		ValueRenderOption("FORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(callCtx).
		Do()
	if err != nil {
		return internal.Table{}, fmt.Errorf("read worksheet %q: %w", title, err)
	}

	values := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cellText(cell))
		}
		values = append(values, cells)
	}
	return internal.NewTable(values), nil
}

func (c *Connector) worksheetTitle(ctx context.Context) (string, error) {
	if err := c.limiter.WaitTurn(ctx); err != nil {
		return "", err
	}
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.service.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties(sheetId,title)").
		Context(callCtx).
		Do()
	if err != nil {
		return "", fmt.Errorf("open spreadsheet %s: %w", c.spreadsheetID, err)
	}

	for _, sheet := range resp.Sheets {
		if sheet == nil || sheet.Properties == nil {
			continue
		}
		if strconv.FormatInt(sheet.Properties.SheetId, 10) == c.worksheetGID {
			return sheet.Properties.Title, nil
		}
	}
	return "", fmt.Errorf("%w with gid: %s", ErrWorksheetNotFound, c.worksheetGID)
}

func (c *Connector) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func quoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
