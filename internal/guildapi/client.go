// Package guildapi is a client for the guild bot's HTTP API.
//
// Every call is authenticated with the dashboard's session cookie, which the
// client is handed at construction and never refreshes. Calls carry no
// timeout of their own; callers bound them through the context.
package guildapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/Sizimon/grippendor/internal/models"
)

// ErrUnauthorized is returned when the API rejects the session credential.
var ErrUnauthorized = errors.New("guildapi: unauthorized")

// APIError is a non-2xx response other than 401.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("guildapi: %d %s", e.Status, e.Message)
}

// Client talks to the bot API under a base URL such as
// "https://bot.example.com/grippendor/api".
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cookie  *http.Cookie
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit throttles outbound requests to r per second with the given burst.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(r), burst) }
}

// WithSessionCookie attaches the dashboard session cookie to every request.
func WithSessionCookie(name, value string) Option {
	return func(c *Client) {
		if name != "" && value != "" {
			c.cookie = &http.Cookie{Name: name, Value: value}
		}
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client. Without WithRateLimit requests are not throttled.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Inf, 0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchConfig returns the guild's dashboard settings exactly as the API sends
// them, password included. Callers must sanitize before keeping it.
func (c *Client) FetchConfig(ctx context.Context, guildID string) (models.GuildConfig, error) {
	var cfg models.GuildConfig
	err := c.get(ctx, &cfg, "guilds", "config", guildID)
	return cfg, err
}

// FetchMembers returns the guild's known members.
func (c *Client) FetchMembers(ctx context.Context, guildID string) ([]models.Member, error) {
	var members []models.Member
	err := c.get(ctx, &members, "guilds", "userdata", guildID)
	return members, err
}

// FetchEvents returns the guild's events.
func (c *Client) FetchEvents(ctx context.Context, guildID string) ([]models.Event, error) {
	var events []models.Event
	err := c.get(ctx, &events, "guilds", "eventdata", guildID)
	return events, err
}

// FetchPresets returns the guild's party presets.
func (c *Client) FetchPresets(ctx context.Context, guildID string) ([]models.Preset, error) {
	var presets []models.Preset
	err := c.get(ctx, &presets, "guilds", "presets", guildID)
	return presets, err
}

// FetchEventParticipants returns the sign-up roster of one event, in sign-up order.
func (c *Client) FetchEventParticipants(ctx context.Context, guildID, eventID string) ([]models.Participant, error) {
	var participants []models.Participant
	err := c.get(ctx, &participants, "guilds", "eventuserdata", guildID, eventID)
	return participants, err
}

func (c *Client) get(ctx context.Context, out any, segments ...string) error {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	endpoint := c.baseURL + "/" + strings.Join(escaped, "/")

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	c.logger.Debug("Guild API request", "url", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", endpoint, err)
	}
	return nil
}

// decodeError builds an APIError from a JSON {"error"|"message"} body, or the
// status text when the body is not JSON.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return apiErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Error != "":
			apiErr.Message = payload.Error
		case payload.Message != "":
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}
