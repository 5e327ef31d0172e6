package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/okian/robonalysis/internal/adapters/http/api"
	"github.com/okian/robonalysis/internal/domain/model"
	"github.com/okian/robonalysis/internal/domain/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBody bounds how much of a response the probe reads.
const maxBody = 64 << 20

// HTTPClient wraps http.Client with the base URL and a session cookie jar.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client with timeout. The jar keeps the unlock
// session cookie between requests.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	jar, _ := cookiejar.New(nil)
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout, Jar: jar},
		baseURL: baseURL,
	}
}

// Health checks /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// Unlock exchanges the passcode for a session cookie.
func (c *HTTPClient) Unlock(ctx context.Context, passcode string) error {
	body, err := json.Marshal(types.UnlockRequest{Passcode: passcode})
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/unlock", body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnlock, err)
	}
	defer resp.Body.Close()

	var ack types.UnlockResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&ack); err != nil || !ack.OK {
		return fmt.Errorf("%w: status %d", ErrUnlock, resp.StatusCode)
	}
	return nil
}

// MatchContext fetches the match context of teamID.
func (c *HTTPClient) MatchContext(ctx context.Context, teamID string) (types.ContextResponse, error) {
	var out types.ContextResponse
	err := c.getJSON(ctx, "/api/team/matches/context?team_id="+url.QueryEscape(teamID), &out)
	return out, err
}

// EventStandings fetches the SP table of eventID.
func (c *HTTPClient) EventStandings(ctx context.Context, eventID string) (model.EventStandings, error) {
	var out model.EventStandings
	err := c.getJSON(ctx, "/api/event/standings?event_id="+url.QueryEscape(eventID), &out)
	return out, err
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxBody)
	if resp.StatusCode != http.StatusOK {
		var e types.ErrorResponse
		_ = json.NewDecoder(body).Decode(&e)
		return &StatusError{Path: path, Status: resp.StatusCode, Code: e.Code, Message: e.Message}
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(api.RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.client.Do(req)
}
