// Package sheets appends rows to a Google Sheets spreadsheet on behalf of a
// service account.
//
// One Client is built at startup and shared by every request. The OAuth2 JWT
// bearer exchange happens lazily on the first call and the token is reused
// until it expires.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/parisxmas/intake-relay/internal/credentials"
)

const (
	// columnSpan is wide enough for every tab layout in use.
	columnSpan       = "A:Z"
	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"
	tokenSampleLen   = 12
)

var (
	errNoSpreadsheet = errors.New("spreadsheet id not configured (GOOGLE_SHEETS_ID)")
	errNoCredential  = errors.New("service account credential not configured")
)

// StoreError wraps every failure talking to the spreadsheet. Its message is
// the underlying error's message, unchanged.
type StoreError struct {
	Op     string
	Tab    string
	Status int
	Err    error
}

func (e *StoreError) Error() string {
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

type Options struct {
	SpreadsheetID string
	Timeout       time.Duration
}

type Client struct {
	svc           *sheetsapi.Service
	tokens        oauth2.TokenSource
	email         string
	spreadsheetID string
	timeout       time.Duration
	usable        bool
	logger        *zap.Logger
}

// New wires the JWT token source and the Sheets service. It performs no
// network I/O; ctx must outlive the client since token refreshes use it.
func New(ctx context.Context, cred credentials.Credential, opts Options, logger *zap.Logger) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	conf := &jwt.Config{
		Email:        cred.ClientEmail,
		PrivateKey:   cred.PrivateKey,
		PrivateKeyID: cred.PrivateKeyID,
		Scopes:       cred.Scopes,
		TokenURL:     google.JWTTokenURL,
	}
	// The token exchange does not see the request context, so bound it here.
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	tokens := conf.TokenSource(tokenCtx) // already a ReuseTokenSource

	hc := &http.Client{
		Transport: &oauth2.Transport{Source: tokens, Base: http.DefaultTransport},
	}
	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	c := newClient(svc, tokens, cred.ClientEmail, opts.SpreadsheetID, timeout, logger)
	c.usable = cred.Usable()
	return c, nil
}

func newClient(svc *sheetsapi.Service, tokens oauth2.TokenSource, email, spreadsheetID string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		svc:           svc,
		tokens:        tokens,
		email:         email,
		spreadsheetID: spreadsheetID,
		timeout:       timeout,
		usable:        true,
		logger:        logger,
	}
}

// Append inserts row as a new trailing row of tab. It never reads or
// updates existing rows.
func (c *Client) Append(ctx context.Context, tab string, row []string) error {
	if c.spreadsheetID == "" {
		return &StoreError{Op: "append", Tab: tab, Err: errNoSpreadsheet}
	}
	if !c.usable {
		return &StoreError{Op: "append", Tab: tab, Err: errNoCredential}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}

	start := time.Now()
	resp, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, tab+"!"+columnSpan, &sheetsapi.ValueRange{Values: [][]interface{}{cells}}).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		serr := &StoreError{Op: "append", Tab: tab, Status: statusOf(err), Err: err}
		c.logger.Warn("sheets append failed",
			zap.String("tab", tab),
			zap.Int("status", serr.Status),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return serr
	}

	fields := []zap.Field{zap.String("tab", tab), zap.Duration("elapsed", time.Since(start))}
	if resp.Updates != nil {
		fields = append(fields, zap.String("range", resp.Updates.UpdatedRange))
	}
	c.logger.Debug("sheets row appended", fields...)
	return nil
}

// Probe is the result of a bare token exchange, used for diagnostics.
type Probe struct {
	Email         string
	SpreadsheetID string
	TokenSample   string
}

// Probe forces the JWT exchange without writing anything.
func (c *Client) Probe(ctx context.Context) (Probe, error) {
	p := Probe{Email: c.email, SpreadsheetID: c.spreadsheetID}
	if !c.usable {
		return p, &StoreError{Op: "token", Err: errNoCredential}
	}

	type result struct {
		tok *oauth2.Token
		err error
	}
	ch := make(chan result, 1)
	go func() {
		tok, err := c.tokens.Token()
		ch <- result{tok, err}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	select {
	case <-ctx.Done():
		return p, &StoreError{Op: "token", Err: ctx.Err()}
	case r := <-ch:
		if r.err != nil {
			return p, &StoreError{Op: "token", Status: statusOf(r.err), Err: r.err}
		}
		p.TokenSample = tail(r.tok.AccessToken, tokenSampleLen)
		return p, nil
	}
}

func statusOf(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		return rerr.Response.StatusCode
	}
	return 0
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
