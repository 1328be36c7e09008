package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/parisxmas/intake-relay/internal/credentials"
)

type appendCall struct {
	path   string
	query  map[string]string
	values [][]string
}

type fakeSheets struct {
	mu     sync.Mutex
	calls  []appendCall
	status int
	body   string
	delay  time.Duration
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			return
		}
	}

	var req struct {
		Values [][]string `json:"values"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.calls = append(f.calls, appendCall{
		path: r.URL.Path,
		query: map[string]string{
			"valueInputOption": r.URL.Query().Get("valueInputOption"),
			"insertDataOption": r.URL.Query().Get("insertDataOption"),
		},
		values: req.Values,
	})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
		return
	}
	_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","updates":{"updatedRange":"LISTA!A2:J2","updatedRows":1}}`))
}

func newTestClient(t *testing.T, fake *fakeSheets, spreadsheetID string, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := sheetsapi.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "ya29.test-access-token-0123456789"})
	return newClient(svc, tokens, "relay@clinic.iam.gserviceaccount.com", spreadsheetID, timeout, nil)
}

func TestAppend_SendsRow(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake, "sheet-1", time.Second)

	row := []string{"2024-01-01T00:00:00.000Z", "Ana", "1-9", "30", "rodilla", "derecho", "", "", "", ""}
	require.NoError(t, c.Append(context.Background(), "LISTA", row))

	require.Len(t, fake.calls, 1)
	call := fake.calls[0]
	assert.True(t, strings.HasSuffix(call.path, "/v4/spreadsheets/sheet-1/values/LISTA!A:Z:append"), call.path)
	assert.Equal(t, "USER_ENTERED", call.query["valueInputOption"])
	assert.Equal(t, "INSERT_ROWS", call.query["insertDataOption"])
	assert.Equal(t, [][]string{row}, call.values)
}

func TestAppend_AuthFailureIsStoreError(t *testing.T) {
	fake := &fakeSheets{
		status: http.StatusUnauthorized,
		body:   `{"error":{"code":401,"message":"Request had invalid authentication credentials.","status":"UNAUTHENTICATED"}}`,
	}
	c := newTestClient(t, fake, "sheet-1", time.Second)

	err := c.Append(context.Background(), "LISTA", []string{"x"})
	require.Error(t, err)

	var serr *StoreError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusUnauthorized, serr.Status)
	assert.Equal(t, "LISTA", serr.Tab)
	assert.Contains(t, err.Error(), "Request had invalid authentication credentials.")
	assert.Equal(t, serr.Err.Error(), err.Error())
}

func TestAppend_Timeout(t *testing.T) {
	fake := &fakeSheets{delay: 2 * time.Second}
	c := newTestClient(t, fake, "sheet-1", 50*time.Millisecond)

	err := c.Append(context.Background(), "LISTA", []string{"x"})
	require.Error(t, err)

	var serr *StoreError
	require.True(t, errors.As(err, &serr))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestAppend_MissingSpreadsheetID(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake, "", time.Second)

	err := c.Append(context.Background(), "LISTA", []string{"x"})
	var serr *StoreError
	require.True(t, errors.As(err, &serr))
	assert.ErrorIs(t, err, errNoSpreadsheet)
	assert.Empty(t, fake.calls)
}

func TestNew_PlaceholderCredentialFailsAtUse(t *testing.T) {
	c, err := New(context.Background(), credentials.Credential{Scopes: []string{credentials.SpreadsheetsScope}},
		Options{SpreadsheetID: "sheet-1"}, nil)
	require.NoError(t, err)

	err = c.Append(context.Background(), "LISTA", []string{"x"})
	assert.ErrorIs(t, err, errNoCredential)

	p, err := c.Probe(context.Background())
	assert.ErrorIs(t, err, errNoCredential)
	assert.Equal(t, "sheet-1", p.SpreadsheetID)
}

func TestProbe_TokenSample(t *testing.T) {
	c := newTestClient(t, &fakeSheets{}, "sheet-1", time.Second)

	p, err := c.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0123456789", p.TokenSample[2:])
	assert.Len(t, p.TokenSample, tokenSampleLen)
	assert.Equal(t, "relay@clinic.iam.gserviceaccount.com", p.Email)
	assert.Equal(t, "sheet-1", p.SpreadsheetID)
}

// blockingTokens never yields a token until release is closed.
type blockingTokens struct {
	release chan struct{}
}

func (b blockingTokens) Token() (*oauth2.Token, error) {
	<-b.release
	return nil, errors.New("released")
}

func TestProbe_Timeout(t *testing.T) {
	tokens := blockingTokens{release: make(chan struct{})}
	t.Cleanup(func() { close(tokens.release) })

	c := newClient(nil, tokens, "relay@clinic.iam.gserviceaccount.com", "sheet-1", 50*time.Millisecond, nil)

	start := time.Now()
	p, err := c.Probe(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	var serr *StoreError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "token", serr.Op)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, p.TokenSample)
	assert.Equal(t, "sheet-1", p.SpreadsheetID)
}

func TestProbe_TokenError(t *testing.T) {
	tokens := blockingTokens{release: make(chan struct{})}
	close(tokens.release)

	c := newClient(nil, tokens, "relay@clinic.iam.gserviceaccount.com", "sheet-1", time.Second, nil)

	_, err := c.Probe(context.Background())
	var serr *StoreError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "released", err.Error())
}

func TestTail(t *testing.T) {
	assert.Equal(t, "abc", tail("abc", 12))
	assert.Equal(t, "def", tail("abcdef", 3))
}
