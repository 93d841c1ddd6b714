package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/Sizimon/grippendor/internal/allocator"
	"github.com/Sizimon/grippendor/internal/guildapi"
	"github.com/Sizimon/grippendor/internal/metrics"
	"github.com/Sizimon/grippendor/internal/roster"
)

// PlannerService implements the Connect PlannerService: running the party
// allocation for an event and applying the user's manual edits to it.
type PlannerService struct {
	sessions *Sessions
	metrics  *metrics.Metrics
}

// NewPlannerService creates a new PlannerService. m may be nil.
func NewPlannerService(sessions *Sessions, m *metrics.Metrics) *PlannerService {
	return &PlannerService{sessions: sessions, metrics: m}
}

func view(r *roster.Roster) RosterView {
	state := r.State()
	return RosterView{
		Status:  r.Status().String(),
		Parties: state.Parties,
		Unused:  state.Unused,
	}
}

// Allocate fetches the event's sign-ups, splits them into parties with the
// chosen preset and replaces the session's roster with the result.
func (s *PlannerService) Allocate(ctx context.Context, req *connect.Request[AllocateRequest]) (*connect.Response[AllocateResponse], error) {
	slog.Info("Allocate request received",
		"session_id", req.Msg.SessionID,
		"event_id", req.Msg.EventID,
		"preset_id", req.Msg.PresetID,
	)

	sess, err := s.sessions.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	snap := sess.loader.Snapshot()
	preset, ok := snap.Preset(req.Msg.PresetID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("preset %q not found", req.Msg.PresetID))
	}
	if _, ok := snap.Event(req.Msg.EventID); !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("event %q not found", req.Msg.EventID))
	}

	participants, err := sess.loader.EventParticipants(ctx, req.Msg.EventID)
	if err != nil {
		slog.Error("Failed to fetch event participants", "event_id", req.Msg.EventID, "error", err)
		return nil, fetchError(err)
	}

	allocation := allocator.Allocate(preset, participants)
	s.metrics.Allocation(len(allocation.Parties), len(allocation.Unused))

	sess.mu.Lock()
	sess.roster.Reset(allocation)
	rv := view(sess.roster)
	sess.mu.Unlock()

	slog.Info("Allocation complete",
		"session_id", sess.id,
		"participants", len(participants),
		"parties", len(allocation.Parties),
		"unused", len(allocation.Unused),
	)

	return connect.NewResponse(&AllocateResponse{
		Roster:   rv,
		Coverage: allocator.Coverage(preset, participants),
		Capacity: allocator.PartyCapacity(preset, participants),
	}), nil
}

// fetchError maps a guild API failure to a Connect error.
func fetchError(err error) error {
	var apiErr *guildapi.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeUnavailable, err)
	}
}

// MoveMember moves a participant between parties or to and from the unused pool.
func (s *PlannerService) MoveMember(ctx context.Context, req *connect.Request[MoveMemberRequest]) (*connect.Response[MutationResponse], error) {
	sess, err := s.sessions.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	applied := sess.roster.MoveMember(req.Msg.ParticipantID,
		roster.ContainerID(req.Msg.Source), req.Msg.Index, roster.ContainerID(req.Msg.Target))
	if !applied {
		slog.Debug("MoveMember rejected",
			"session_id", sess.id,
			"user_id", req.Msg.ParticipantID,
			"source", req.Msg.Source,
			"index", req.Msg.Index,
			"target", req.Msg.Target,
		)
	}
	return connect.NewResponse(&MutationResponse{Applied: applied, Roster: view(sess.roster)}), nil
}

// ChangeRole reassigns the role of one party member.
func (s *PlannerService) ChangeRole(ctx context.Context, req *connect.Request[ChangeRoleRequest]) (*connect.Response[MutationResponse], error) {
	sess, err := s.sessions.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	applied := sess.roster.ChangeRole(req.Msg.PartyID, req.Msg.Index, req.Msg.Role)
	return connect.NewResponse(&MutationResponse{Applied: applied, Roster: view(sess.roster)}), nil
}

// RoleChoices lists the roles the dashboard should offer for one party member.
func (s *PlannerService) RoleChoices(ctx context.Context, req *connect.Request[RoleChoicesRequest]) (*connect.Response[RoleChoicesResponse], error) {
	sess, err := s.sessions.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	roles, ok := sess.roster.RoleChoices(req.Msg.PartyID, req.Msg.Index)
	sess.mu.Unlock()
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound,
			fmt.Errorf("no member at party %d index %d", req.Msg.PartyID, req.Msg.Index))
	}
	return connect.NewResponse(&RoleChoicesResponse{Roles: roles}), nil
}

// AddEmptyParty appends a party with no members.
func (s *PlannerService) AddEmptyParty(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[MutationResponse], error) {
	sess, err := s.sessions.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	id, applied := sess.roster.AddEmptyParty()
	return connect.NewResponse(&MutationResponse{Applied: applied, PartyID: id, Roster: view(sess.roster)}), nil
}

// GetRoster returns the session's roster as it currently stands.
func (s *PlannerService) GetRoster(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[RosterResponse], error) {
	sess, err := s.sessions.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return connect.NewResponse(&RosterResponse{Roster: view(sess.roster)}), nil
}

// CloseSession discards the session and its roster.
func (s *PlannerService) CloseSession(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[CloseSessionResponse], error) {
	sess, err := s.sessions.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.close(sess.id)
	slog.Info("Session closed", "session_id", sess.id, "guild_id", sess.guildID)
	return connect.NewResponse(&CloseSessionResponse{}), nil
}
