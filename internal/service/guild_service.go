package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/Sizimon/grippendor/internal/cache"
	"github.com/Sizimon/grippendor/internal/dashboard"
	"github.com/Sizimon/grippendor/internal/middleware"
)

// GuildService implements the Connect GuildService: opening planning sessions
// and reading the guild data they hold.
type GuildService struct {
	sessions  *Sessions
	resources *cache.Cache
	now       func() time.Time
}

// NewGuildService creates a new GuildService over the shared session registry
// and the resource cache its loaders read from.
func NewGuildService(sessions *Sessions, resources *cache.Cache) *GuildService {
	return &GuildService{sessions: sessions, resources: resources, now: time.Now}
}

// OpenSession starts a planning session for a guild and mounts its data,
// served from the cache where possible.
func (s *GuildService) OpenSession(ctx context.Context, req *connect.Request[OpenSessionRequest]) (*connect.Response[OpenSessionResponse], error) {
	guildID := req.Msg.GuildID
	slog.Info("OpenSession request received", "guild_id", guildID)

	if guildID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("guild_id is required"))
	}
	if guildID != middleware.GetGuildID(ctx) {
		return nil, connect.NewError(connect.CodePermissionDenied, ErrWrongGuild)
	}

	sess := s.sessions.open(guildID)
	snap := sess.loader.Mount(ctx, guildID)

	slog.Info("Session opened",
		"session_id", sess.id,
		"guild_id", guildID,
		"failed", len(snap.Failed),
	)

	return connect.NewResponse(&OpenSessionResponse{
		SessionID: sess.id,
		Guild:     snap,
	}), nil
}

// Refresh refetches all guild resources, bypassing the cache.
func (s *GuildService) Refresh(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[GuildDataResponse], error) {
	sess, err := s.sessions.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	slog.Info("Refresh request received", "session_id", sess.id, "guild_id", sess.guildID)

	snap := sess.loader.Refresh(ctx)
	return connect.NewResponse(&GuildDataResponse{Guild: snap}), nil
}

// GetGuildData returns the session's current guild data without any fetching.
func (s *GuildService) GetGuildData(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[GuildDataResponse], error) {
	sess, err := s.sessions.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GuildDataResponse{Guild: sess.loader.Snapshot()}), nil
}

// GetTimeline splits the session's events into upcoming and past.
func (s *GuildService) GetTimeline(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[TimelineResponse], error) {
	sess, err := s.sessions.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	timeline := dashboard.BuildTimeline(sess.loader.Snapshot().Events, s.now())
	return connect.NewResponse(&TimelineResponse{Timeline: timeline}), nil
}

// SearchMembers fuzzy-matches the guild's members by username.
func (s *GuildService) SearchMembers(ctx context.Context, req *connect.Request[SearchMembersRequest]) (*connect.Response[SearchMembersResponse], error) {
	sess, err := s.sessions.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	members := dashboard.SearchMembers(sess.loader.Snapshot().Members, req.Msg.Query)
	slog.Debug("SearchMembers", "session_id", sess.id, "query", req.Msg.Query, "matches", len(members))
	return connect.NewResponse(&SearchMembersResponse{Members: members}), nil
}

// CacheStatus reports which of the session guild's resources are cached.
func (s *GuildService) CacheStatus(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[CacheStatusResponse], error) {
	sess, err := s.sessions.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&CacheStatusResponse{
		GuildID:   sess.guildID,
		Resources: s.resources.GuildStatus(ctx, sess.guildID),
	}), nil
}

// ClearCache drops the session guild's cached resources. The session keeps
// its current data; the next non-forced load goes to the API.
func (s *GuildService) ClearCache(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[CacheStatusResponse], error) {
	sess, err := s.sessions.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	slog.Info("ClearCache request received", "session_id", sess.id, "guild_id", sess.guildID)

	s.resources.ClearGuild(ctx, sess.guildID)
	return connect.NewResponse(&CacheStatusResponse{
		GuildID:   sess.guildID,
		Resources: s.resources.GuildStatus(ctx, sess.guildID),
	}), nil
}
