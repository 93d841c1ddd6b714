package service

import (
	"github.com/Sizimon/grippendor/internal/allocator"
	"github.com/Sizimon/grippendor/internal/cache"
	"github.com/Sizimon/grippendor/internal/dashboard"
	"github.com/Sizimon/grippendor/internal/loader"
	"github.com/Sizimon/grippendor/internal/models"
)

// GuildService messages.

type OpenSessionRequest struct {
	GuildID string `json:"guild_id"`
}

type OpenSessionResponse struct {
	SessionID string          `json:"session_id"`
	Guild     loader.Snapshot `json:"guild"`
}

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

type GuildDataResponse struct {
	Guild loader.Snapshot `json:"guild"`
}

type TimelineResponse struct {
	Timeline dashboard.Timeline `json:"timeline"`
}

type SearchMembersRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

type SearchMembersResponse struct {
	Members []models.Member `json:"members"`
}

type CacheStatusResponse struct {
	GuildID   string                      `json:"guild_id"`
	Resources map[cache.ResourceType]bool `json:"resources"`
}

// PlannerService messages.

// RosterView is the planner state as the dashboard renders it.
type RosterView struct {
	Status  string                     `json:"status"`
	Parties []models.Party             `json:"parties"`
	Unused  []models.UnusedParticipant `json:"unused"`
}

type AllocateRequest struct {
	SessionID string `json:"session_id"`
	EventID   string `json:"event_id"`
	PresetID  string `json:"preset_id"`
}

type AllocateResponse struct {
	Roster   RosterView               `json:"roster"`
	Coverage []allocator.RoleCoverage `json:"coverage"`
	// Capacity is the number of parties the sign-ups could fill at most.
	Capacity int `json:"capacity"`
}

type MoveMemberRequest struct {
	SessionID     string `json:"session_id"`
	ParticipantID string `json:"user_id"`
	// Source and Target are party ids; 0 is the unused pool.
	Source int `json:"source"`
	Index  int `json:"index"`
	Target int `json:"target"`
}

type ChangeRoleRequest struct {
	SessionID string `json:"session_id"`
	PartyID   int    `json:"party_id"`
	Index     int    `json:"index"`
	Role      string `json:"role"`
}

type RoleChoicesRequest struct {
	SessionID string `json:"session_id"`
	PartyID   int    `json:"party_id"`
	Index     int    `json:"index"`
}

type RoleChoicesResponse struct {
	Roles []string `json:"roles"`
}

// MutationResponse reports whether a roster edit took effect. Rejected edits
// are not errors; Applied is false and Roster is unchanged.
type MutationResponse struct {
	Applied bool       `json:"applied"`
	PartyID int        `json:"party_id,omitempty"`
	Roster  RosterView `json:"roster"`
}

type RosterResponse struct {
	Roster RosterView `json:"roster"`
}

type CloseSessionResponse struct{}
