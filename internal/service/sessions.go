package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/Sizimon/grippendor/internal/loader"
	"github.com/Sizimon/grippendor/internal/middleware"
	"github.com/Sizimon/grippendor/internal/roster"
)

var (
	ErrSessionNotFound = errors.New("planning session not found")
	ErrWrongGuild      = errors.New("token is not valid for this guild")
)

// LoaderFactory builds the loader a new session uses.
type LoaderFactory func() *loader.Loader

// session is one open planning view: a guild's data and the roster being edited.
type session struct {
	id      string
	guildID string
	loader  *loader.Loader

	mu       sync.Mutex
	roster   *roster.Roster
	lastUsed time.Time
}

// Sessions is the registry of open planning sessions, shared by both services.
type Sessions struct {
	newLoader LoaderFactory
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessions creates an empty registry.
func NewSessions(newLoader LoaderFactory) *Sessions {
	return &Sessions{
		newLoader: newLoader,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

func (s *Sessions) open(guildID string) *session {
	sess := &session{
		id:       uuid.NewString(),
		guildID:  guildID,
		loader:   s.newLoader(),
		roster:   roster.New(),
		lastUsed: s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess
}

// get returns the session for id if the caller's token is scoped to its guild.
// Errors are Connect errors ready to return to the client.
func (s *Sessions) get(ctx context.Context, id string) (*session, error) {
	if id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("session_id is required"))
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, ErrSessionNotFound)
	}
	if sess.guildID != middleware.GetGuildID(ctx) {
		return nil, connect.NewError(connect.CodePermissionDenied, ErrWrongGuild)
	}

	sess.mu.Lock()
	sess.lastUsed = s.now()
	sess.mu.Unlock()
	return sess, nil
}

func (s *Sessions) close(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of open sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Prune closes sessions unused for longer than maxIdle and returns how many it closed.
func (s *Sessions) Prune(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	pruned := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastUsed.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			pruned++
		}
	}
	if pruned > 0 {
		slog.Info("Pruned idle planning sessions", "count", pruned, "remaining", len(s.sessions))
	}
	return pruned
}

// RunPruner calls Prune every interval until ctx is done.
func (s *Sessions) RunPruner(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune(maxIdle)
		}
	}
}
