package guildapi

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sizimon/grippendor/internal/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", WithSessionCookie("session", "s3cret"))
}

func TestClient_FetchConfig(t *testing.T) {
	var gotPath, gotCookie string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if ck, err := r.Cookie("session"); err == nil {
			gotCookie = ck.Value
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Raiders","color":"#ff0000","password":"hunter2"}`))
	})

	cfg, err := c.FetchConfig(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "/api/guilds/config/123", gotPath)
	assert.Equal(t, "s3cret", gotCookie)
	assert.Equal(t, "Raiders", cfg.Title)
	assert.Equal(t, "hunter2", cfg.Password, "the client returns the raw document")
}

func TestClient_FetchEventParticipants(t *testing.T) {
	var gotPath string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[
			{"user_id":"1","name":"Ada","roles":["TANK","DPS"]},
			{"user_id":"2","name":"Bo","roles":[]}
		]`))
	})

	got, err := c.FetchEventParticipants(context.Background(), "g1", "e9")
	require.NoError(t, err)
	assert.Equal(t, "/api/guilds/eventuserdata/g1/e9", gotPath)
	assert.Equal(t, []models.Participant{
		{ID: "1", DisplayName: "Ada", Roles: []string{"TANK", "DPS"}},
		{ID: "2", DisplayName: "Bo", Roles: []string{}},
	}, got)
}

func TestClient_Endpoints(t *testing.T) {
	paths := make(map[string]bool)
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths[r.URL.Path] = true
		_, _ = w.Write([]byte(`[]`))
	})
	ctx := context.Background()

	_, err := c.FetchMembers(ctx, "g")
	require.NoError(t, err)
	_, err = c.FetchEvents(ctx, "g")
	require.NoError(t, err)
	_, err = c.FetchPresets(ctx, "g")
	require.NoError(t, err)

	assert.True(t, paths["/api/guilds/userdata/g"])
	assert.True(t, paths["/api/guilds/eventdata/g"])
	assert.True(t, paths["/api/guilds/presets/g"])
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		contentType  string
		body         string
		validateFunc func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			validateFunc: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrUnauthorized))
			},
		},
		{
			name:        "json error body",
			status:      http.StatusNotFound,
			contentType: "application/json",
			body:        `{"error":"guild not found"}`,
			validateFunc: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusNotFound, apiErr.Status)
				assert.Equal(t, "guild not found", apiErr.Message)
			},
		},
		{
			name:        "json message body",
			status:      http.StatusBadRequest,
			contentType: "application/json; charset=utf-8",
			body:        `{"message":"bad guild id"}`,
			validateFunc: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, "bad guild id", apiErr.Message)
			},
		},
		{
			name:        "plain text body falls back to status text",
			status:      http.StatusBadGateway,
			contentType: "text/html",
			body:        "<h1>oops</h1>",
			validateFunc: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusBadGateway, apiErr.Status)
				assert.Equal(t, "Bad Gateway", apiErr.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.FetchMembers(context.Background(), "g")
			require.Error(t, err)
			tt.validateFunc(t, err)
		})
	}
}

func TestClient_MalformedBody(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"`))
	})

	_, err := c.FetchEvents(context.Background(), "g")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_CancelledContext(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchMembers(ctx, "g")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_EscapesPathSegments(t *testing.T) {
	var gotRaw string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotRaw = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.FetchMembers(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/api/guilds/userdata/a%2Fb", gotRaw)
}

type countingTransport struct {
	requests int
}

func (t *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	t.requests++
	return http.DefaultTransport.RoundTrip(r)
}

func TestClient_CustomHTTPClientAndLogger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	transport := &countingTransport{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := New(srv.URL, WithHTTPClient(&http.Client{Transport: transport}), WithLogger(logger))
	_, err := c.FetchPresets(context.Background(), "g1")
	require.NoError(t, err)

	assert.Equal(t, 1, transport.requests)
	assert.Contains(t, logs.String(), "Guild API request")
	assert.Contains(t, logs.String(), "/guilds/presets/g1")
}
