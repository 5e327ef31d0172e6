// Package upstream is the RobotEvents v2 client.
//
// Every list resource is paginated through meta.next_page_url up to a safety
// cap. A non-2xx page surfaces immediately as *UpstreamError; there are no
// retries.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/okian/robonalysis/internal/domain/model"
	"github.com/okian/robonalysis/pkg/logger"
	"github.com/okian/robonalysis/pkg/metrics"
)

// Defaults.
const (
	DefaultBaseURL   = "https://www.robotevents.com/api/v2"
	maxPerPage       = 250
	defaultMaxPages  = 100
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "robonalysis/1.0"
)

// Resource labels used in logs and metrics.
const (
	ResourceTeamMatches  = "team_matches"
	ResourceEventMatches = "event_matches"
	ResourceTeam         = "team"
	ResourceTeamEvents   = "team_events"
	ResourceTeamRankings = "team_rankings"
	ResourceTeamSkills   = "team_skills"
	ResourceTeamAwards   = "team_awards"
	ResourceSeasons      = "seasons"
)

// Scope selects whose matches to fetch. Exactly one of TeamID and EventID
// should be set; TeamID wins when both are.
type Scope struct {
	TeamID  string
	EventID string
}

// TeamScope returns a Scope for a team's matches.
func TeamScope(id string) Scope { return Scope{TeamID: id} }

// EventScope returns a Scope for an event's matches.
func EventScope(id string) Scope { return Scope{EventID: id} }

// Client talks to the upstream events API.
type Client struct {
	baseURL   string
	apiKey    string
	perPage   int
	maxPages  int
	timeout   time.Duration
	userAgent string
	http      *http.Client
	log       logger.Logger
}

// New creates a client with configuration options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		perPage:   maxPerPage,
		maxPages:  defaultMaxPages,
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		http:      &http.Client{},
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type pageMeta struct {
	NextPageURL string `json:"next_page_url"`
}

type page[T any] struct {
	Data []T      `json:"data"`
	Meta pageMeta `json:"meta"`
}

// FetchMatches returns every raw match in scope across all pages. Null
// records are preserved as nil entries for the normalizer to drop.
func (c *Client) FetchMatches(ctx context.Context, scope Scope) ([]*model.RawMatch, error) {
	q := c.listQuery()
	q.Set("sort", "started")
	switch {
	case scope.TeamID != "":
		q.Set("order", "desc")
		return fetchAll[*model.RawMatch](ctx, c, ResourceTeamMatches, c.endpoint(q, "teams", scope.TeamID, "matches"))
	case scope.EventID != "":
		q.Set("order", "asc")
		return fetchAll[*model.RawMatch](ctx, c, ResourceEventMatches, c.endpoint(q, "events", scope.EventID, "matches"))
	default:
		return nil, ErrMissingScope
	}
}

// FetchTeam looks a team up by id, or by team number when id is empty.
func (c *Client) FetchTeam(ctx context.Context, id, number string) ([]model.Team, error) {
	id, number = strings.TrimSpace(id), strings.TrimSpace(number)
	if id == "" && number == "" {
		return nil, ErrMissingScope
	}
	if id == "" {
		q := c.listQuery()
		q.Set("number", number)
		return fetchAll[model.Team](ctx, c, ResourceTeam, c.endpoint(q, "teams"))
	}

	body, err := c.get(ctx, ResourceTeam, c.endpoint(nil, "teams", id))
	if err != nil {
		return nil, err
	}
	return decodeTeams(body)
}

// FetchTeamEvents returns every event the team attended, newest first.
// Callers that want fewer trim the result.
func (c *Client) FetchTeamEvents(ctx context.Context, teamID string) ([]model.Event, error) {
	if teamID == "" {
		return nil, ErrMissingScope
	}
	q := c.listQuery()
	q.Set("sort", "start")
	q.Set("order", "desc")
	return fetchAll[model.Event](ctx, c, ResourceTeamEvents, c.endpoint(q, "teams", teamID, "events"))
}

// FetchTeamRankings returns the team's ranking rows, optionally for a season.
func (c *Client) FetchTeamRankings(ctx context.Context, teamID, seasonID string) ([]model.RankingRow, error) {
	if teamID == "" {
		return nil, ErrMissingScope
	}
	q := c.listQuery()
	if seasonID != "" {
		q.Add("season[]", seasonID)
	}
	return fetchAll[model.RankingRow](ctx, c, ResourceTeamRankings, c.endpoint(q, "teams", teamID, "rankings"))
}

// FetchTeamSkills returns the team's skills rows, optionally limited to
// eventIDs.
func (c *Client) FetchTeamSkills(ctx context.Context, teamID string, eventIDs []string) ([]model.SkillRow, error) {
	if teamID == "" {
		return nil, ErrMissingScope
	}
	q := c.listQuery()
	addAll(q, "event[]", eventIDs)
	return fetchAll[model.SkillRow](ctx, c, ResourceTeamSkills, c.endpoint(q, "teams", teamID, "skills"))
}

// FetchTeamAwards returns the team's awards, optionally limited to eventIDs.
func (c *Client) FetchTeamAwards(ctx context.Context, teamID string, eventIDs []string) ([]model.Award, error) {
	if teamID == "" {
		return nil, ErrMissingScope
	}
	q := c.listQuery()
	addAll(q, "event[]", eventIDs)
	return fetchAll[model.Award](ctx, c, ResourceTeamAwards, c.endpoint(q, "teams", teamID, "awards"))
}

// FetchSeasons returns seasons newest year first, optionally filtered by
// program and by the teams that took part.
func (c *Client) FetchSeasons(ctx context.Context, programIDs, teamIDs []string) ([]model.Season, error) {
	q := c.listQuery()
	q.Set("sort", "year")
	q.Set("order", "desc")
	addAll(q, "program[]", programIDs)
	addAll(q, "team[]", teamIDs)
	return fetchAll[model.Season](ctx, c, ResourceSeasons, c.endpoint(q, "seasons"))
}

func addAll(q url.Values, key string, values []string) {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			q.Add(key, v)
		}
	}
}

// fetchAll walks pages until the cursor runs out or the safety cap is hit.
// Hitting the cap is logged and returns what was gathered, unless nothing
// was gathered at all.
func fetchAll[T any](ctx context.Context, c *Client, resource, first string) ([]T, error) {
	var all []T
	next := first
	pages := 0
	for next != "" && pages < c.maxPages {
		body, err := c.get(ctx, resource, next)
		if err != nil {
			return nil, err
		}
		var p page[T]
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %w", ErrDecode, resource, pages+1, err)
		}
		pages++
		metrics.RecordUpstreamPage(resource)
		all = append(all, p.Data...)

		next, err = c.resolve(next, p.Meta.NextPageURL)
		if err != nil {
			return nil, err
		}
	}

	if next != "" {
		metrics.RecordPaginationTruncated(resource)
		c.log.Warn(ctx, "pagination truncated",
			logger.String("resource", resource),
			logger.Int("pages", pages),
			logger.Int("records", len(all)),
		)
		if len(all) == 0 {
			return nil, fmt.Errorf("%w: %w: %s", ErrNoData, ErrTruncated, resource)
		}
	}
	return all, nil
}

// get performs one authenticated GET and returns the decoded body of a 2xx
// response.
func (c *Client) get(ctx context.Context, resource, rawURL string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br, gzip")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(resource, "error", float64(time.Since(start).Milliseconds()))
		metrics.RecordErrorByComponent("upstream", "transport")
		return nil, fmt.Errorf("%w: %s: %w", ErrRequest, resource, err)
	}
	defer func() { _ = resp.Body.Close() }()

	latency := float64(time.Since(start).Milliseconds())
	metrics.RecordUpstreamRequest(resource, strconv.Itoa(resp.StatusCode), latency)

	body, readErr := readBody(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordErrorByComponent("upstream", "status_"+strconv.Itoa(resp.StatusCode))
		ue := &UpstreamError{Status: resp.StatusCode, Message: messageOf(body, resp.StatusCode), URL: redact(rawURL)}
		c.log.Warn(ctx, "upstream request failed",
			logger.String("resource", resource),
			logger.Int("status", ue.Status),
			logger.String("message", ue.Message),
		)
		return nil, ue
	}
	if readErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, resource, readErr)
	}

	c.log.Debug(ctx, "upstream page fetched",
		logger.String("resource", resource),
		logger.Float64("latency_ms", latency),
		logger.Int("bytes", len(body)),
	)
	return body, nil
}

func (c *Client) listQuery() url.Values {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(c.perPage))
	return q
}

func (c *Client) endpoint(q url.Values, segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	u := c.baseURL + "/" + strings.Join(escaped, "/")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// resolve turns a cursor into an absolute URL relative to the current page.
func (c *Client) resolve(current, next string) (string, error) {
	next = strings.TrimSpace(next)
	if next == "" {
		return "", nil
	}
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("%w: parse page url: %w", ErrRequest, err)
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("%w: parse next_page_url: %w", ErrRequest, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// decodeTeams accepts {data: [...]}, {data: {...}} or a bare team object.
func decodeTeams(body []byte) ([]model.Team, error) {
	var envelope struct {
		Data jsoniter.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: team: %w", ErrDecode, err)
	}

	data := bytes.TrimSpace(envelope.Data)
	switch {
	case len(data) > 0 && data[0] == '[':
		var teams []model.Team
		if err := json.Unmarshal(data, &teams); err != nil {
			return nil, fmt.Errorf("%w: team list: %w", ErrDecode, err)
		}
		return teams, nil
	case len(data) > 0 && data[0] == '{':
		var t model.Team
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("%w: team: %w", ErrDecode, err)
		}
		return []model.Team{t}, nil
	}

	var t model.Team
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, fmt.Errorf("%w: team: %w", ErrDecode, err)
	}
	if t.ID == "" {
		return []model.Team{}, nil
	}
	return []model.Team{t}, nil
}

// redact strips the query string, which may carry tokens on some mirrors.
func redact(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}
