package upstream_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/robonalysis/internal/adapters/upstream"
)

func newClient(t *testing.T, h http.HandlerFunc, opts ...upstream.Option) *upstream.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return upstream.New(append([]upstream.Option{
		upstream.WithBaseURL(srv.URL),
		upstream.WithAPIKey("token-123"),
	}, opts...)...)
}

func TestFetchMatchesPaginates(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		assert.Equal(t, "/teams/42/matches", r.URL.Path)
		assert.Equal(t, "250", r.URL.Query().Get("per_page"))
		assert.Equal(t, "desc", r.URL.Query().Get("order"))

		switch r.URL.Query().Get("page") {
		case "":
			fmt.Fprint(w, `{"data":[{"id":1},null],"meta":{"next_page_url":"/teams/42/matches?per_page=250&sort=started&order=desc&page=2"}}`)
		case "2":
			fmt.Fprint(w, `{"data":[{"id":"2"}],"meta":{"next_page_url":null}}`)
		}
	})

	got, err := client.FetchMatches(context.Background(), upstream.TeamScope("42"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].ID.String())
	assert.Nil(t, got[1])
	assert.Equal(t, "2", got[2].ID.String())
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchMatchesScopes(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/9/matches", r.URL.Path)
		assert.Equal(t, "asc", r.URL.Query().Get("order"))
		fmt.Fprint(w, `{"data":[],"meta":{}}`)
	})

	got, err := client.FetchMatches(context.Background(), upstream.EventScope("9"))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = client.FetchMatches(context.Background(), upstream.Scope{})
	assert.ErrorIs(t, err, upstream.ErrMissingScope)
}

func TestFetchMatchesUpstreamError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "message payload", status: http.StatusNotFound, body: `{"message":"No query results"}`, message: "No query results"},
		{name: "error payload", status: http.StatusUnauthorized, body: `{"error":"bad token"}`, message: "bad token"},
		{name: "non json payload", status: http.StatusBadGateway, body: `<html>oops</html>`, message: "Bad Gateway"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			})

			_, err := client.FetchMatches(context.Background(), upstream.TeamScope("1"))
			var ue *upstream.UpstreamError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, tc.status, ue.Status)
			assert.Equal(t, tc.message, ue.Message)
			assert.Equal(t, tc.status, upstream.StatusOf(err))
			assert.NotContains(t, ue.URL, "?")
		})
	}
}

func TestFetchMatchesFailsMidPagination(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"data":[{"id":1}],"meta":{"next_page_url":"?page=2"}}`)
	})

	got, err := client.FetchMatches(context.Background(), upstream.TeamScope("1"))
	assert.Nil(t, got)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusOf(err))
}

func TestPaginationSafetyCap(t *testing.T) {
	t.Run("truncates with data", func(t *testing.T) {
		var calls atomic.Int32
		client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			n := calls.Add(1)
			fmt.Fprintf(w, `{"data":[{"id":%d}],"meta":{"next_page_url":"?page=%d"}}`, n, n+1)
		}, upstream.WithMaxPages(3))

		got, err := client.FetchMatches(context.Background(), upstream.EventScope("5"))
		require.NoError(t, err)
		assert.Len(t, got, 3)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("fails without data", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"data":[],"meta":{"next_page_url":"?page=again"}}`)
		}, upstream.WithMaxPages(2))

		_, err := client.FetchMatches(context.Background(), upstream.EventScope("5"))
		assert.ErrorIs(t, err, upstream.ErrNoData)
		assert.ErrorIs(t, err, upstream.ErrTruncated)
	})
}

func TestCompressedBodies(t *testing.T) {
	payload := []byte(`{"data":[{"id":77}],"meta":{}}`)

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	_, _ = bw.Write(payload)
	require.NoError(t, bw.Close())

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, _ = gw.Write(payload)
	require.NoError(t, gw.Close())

	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{name: "brotli", encoding: "br", body: br.Bytes()},
		{name: "gzip", encoding: "gzip", body: gz.Bytes()},
		{name: "identity", encoding: "", body: payload},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.Header.Get("Accept-Encoding"), "br")
				if tc.encoding != "" {
					w.Header().Set("Content-Encoding", tc.encoding)
				}
				_, _ = w.Write(tc.body)
			})

			got, err := client.FetchMatches(context.Background(), upstream.TeamScope("1"))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "77", got[0].ID.String())
		})
	}
}

func TestFetchTeamShapes(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		number string
		path   string
		body   string
		want   []string
	}{
		{name: "bare object", id: "10", path: "/teams/10", body: `{"id":10,"number":"1234A"}`, want: []string{"10"}},
		{name: "data object", id: "11", path: "/teams/11", body: `{"data":{"id":11}}`, want: []string{"11"}},
		{name: "data list by number", number: "1234A", path: "/teams", body: `{"data":[{"id":12},{"id":13}],"meta":{}}`, want: []string{"12", "13"}},
		{name: "empty object", id: "14", path: "/teams/14", body: `{}`, want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tc.path, r.URL.Path)
				if tc.number != "" {
					assert.Equal(t, tc.number, r.URL.Query().Get("number"))
				}
				fmt.Fprint(w, tc.body)
			})

			teams, err := client.FetchTeam(context.Background(), tc.id, tc.number)
			require.NoError(t, err)
			ids := make([]string, 0, len(teams))
			for _, team := range teams {
				ids = append(ids, team.ID.String())
			}
			assert.Equal(t, tc.want, ids)
		})
	}

	_, err := upstream.New().FetchTeam(context.Background(), "", " ")
	assert.ErrorIs(t, err, upstream.ErrMissingScope)
}

func TestFetchTeamEventsAndRankings(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/teams/3/events":
			assert.Equal(t, "250", r.URL.Query().Get("per_page"))
			assert.Equal(t, "start", r.URL.Query().Get("sort"))
			fmt.Fprint(w, `{"data":[{"id":1,"start":"2024-01-01T00:00:00Z"}],"meta":{}}`)
		case "/teams/3/rankings":
			assert.Equal(t, "190", r.URL.Query().Get("season[]"))
			fmt.Fprint(w, `{"data":[{"rank":"2","event":{"id":1}}],"meta":{}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	events, err := client.FetchTeamEvents(context.Background(), "3")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2024-01-01T00:00:00Z", events[0].Start)

	rows, err := client.FetchTeamRankings(context.Background(), "3", "190")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Rank.Valid)
	assert.Equal(t, 2.0, rows[0].Rank.Value)
}

func TestFetchSkillsAndAwards(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "250", r.URL.Query().Get("per_page"))
		switch r.URL.Path {
		case "/teams/3/skills":
			assert.Equal(t, []string{"10", "11"}, r.URL.Query()["event[]"])
			fmt.Fprint(w, `{"data":[{"type":"driver","rank":"4","score":55,"event":{"id":10},"season":{"id":190}}],"meta":{}}`)
		case "/teams/3/awards":
			assert.Empty(t, r.URL.Query()["event[]"])
			fmt.Fprint(w, `{"data":[{"title":"Excellence Award","order":1,"event":{"id":"10"}}],"meta":{}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	rows, err := client.FetchTeamSkills(context.Background(), "3", []string{"10", " ", "11"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "driver", rows[0].Type)
	assert.Equal(t, 4.0, rows[0].Rank.Value)
	assert.Equal(t, "190", rows[0].Season.ID.String())

	awards, err := client.FetchTeamAwards(context.Background(), "3", nil)
	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.Equal(t, "Excellence Award", awards[0].Title)
	assert.Equal(t, "10", awards[0].Event.ID.String())

	_, err = client.FetchTeamSkills(context.Background(), "", nil)
	assert.ErrorIs(t, err, upstream.ErrMissingScope)
	_, err = client.FetchTeamAwards(context.Background(), "", nil)
	assert.ErrorIs(t, err, upstream.ErrMissingScope)
}

func TestFetchSeasons(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/seasons", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "year", q.Get("sort"))
		assert.Equal(t, "desc", q.Get("order"))
		assert.Equal(t, []string{"1", "4"}, q["program[]"])
		assert.Equal(t, []string{"3"}, q["team[]"])
		fmt.Fprint(w, `{"data":[{"id":190,"name":"2024-2025","program":{"id":1,"code":"V5RC"},"years_start":2024}],"meta":{}}`)
	})

	seasons, err := client.FetchSeasons(context.Background(), []string{"1", "4"}, []string{"3"})
	require.NoError(t, err)
	require.Len(t, seasons, 1)
	assert.Equal(t, "190", seasons[0].ID.String())
	assert.Equal(t, "V5RC", seasons[0].Program.Code)
	assert.Equal(t, 2024.0, seasons[0].YearsStart.Value)
}

func TestFetchHonoursCancellation(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":[],"meta":{}}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchMatches(ctx, upstream.TeamScope("1"))
	assert.ErrorIs(t, err, upstream.ErrRequest)
	assert.ErrorIs(t, err, context.Canceled)
}
