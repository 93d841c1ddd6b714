// Package roster holds an allocation while it is being edited by hand.
//
// A Roster starts Unallocated. Reset loads an allocator result and moves it to
// Allocated; after that members can be dragged between parties and the unused
// pool, re-roled, and new empty parties added. Every edit keeps each
// participant in exactly one container. Party size is not enforced: once
// editing starts, capacity is a guideline and a party may be overfilled.
//
// A Roster is not safe for concurrent use; callers serialize access.
package roster

import (
	"github.com/Sizimon/grippendor/internal/allocator"
	"github.com/Sizimon/grippendor/internal/models"
)

// ContainerID addresses a party by id, or the unused pool.
type ContainerID int

// UnusedPool is the container id of the unused participant list.
// Party ids are always positive, so it never collides with a party.
const UnusedPool ContainerID = 0

// Status is the high-level state of a Roster.
type Status int

const (
	Unallocated Status = iota
	Allocated
)

func (s Status) String() string {
	if s == Allocated {
		return "allocated"
	}
	return "unallocated"
}

// Roster is the editable state built from one allocation run.
type Roster struct {
	status  Status
	parties []models.Party
	unused  []models.UnusedParticipant
}

// New returns an empty, unallocated roster.
func New() *Roster {
	return &Roster{}
}

// Status reports whether an allocation has been loaded.
func (r *Roster) Status() Status {
	return r.status
}

// Reset replaces the whole state with a fresh allocation, discarding edits.
func (r *Roster) Reset(a models.Allocation) {
	a = a.Clone()
	r.parties = a.Parties
	r.unused = a.Unused
	r.status = Allocated
}

// State returns a copy of the current parties and unused pool.
func (r *Roster) State() models.Allocation {
	return models.Allocation{Parties: r.parties, Unused: r.unused}.Clone()
}

func (r *Roster) partyIndex(id ContainerID) int {
	if id == UnusedPool {
		return -1
	}
	for i, p := range r.parties {
		if ContainerID(p.ID) == id {
			return i
		}
	}
	return -1
}

func (r *Roster) exists(id ContainerID) bool {
	return id == UnusedPool || r.partyIndex(id) >= 0
}

// memberAt returns the participant id at index in container, if any.
func (r *Roster) memberAt(id ContainerID, index int) (string, bool) {
	if index < 0 {
		return "", false
	}
	if id == UnusedPool {
		if index >= len(r.unused) {
			return "", false
		}
		return r.unused[index].ParticipantID, true
	}
	pi := r.partyIndex(id)
	if pi < 0 || index >= len(r.parties[pi].Assignments) {
		return "", false
	}
	return r.parties[pi].Assignments[index].ParticipantID, true
}

// MoveMember moves the member at index in source to the end of target.
//
// The move is re-validated against the current state: both containers must
// exist and the member at index must still be participantID. A stale drag
// (the roster changed between pick-up and drop) is dropped and MoveMember
// returns false without touching anything. Moving within the same container
// is a no-op.
func (r *Roster) MoveMember(participantID string, source ContainerID, index int, target ContainerID) bool {
	if r.status != Allocated || source == target {
		return false
	}
	if !r.exists(source) || !r.exists(target) {
		return false
	}
	if id, ok := r.memberAt(source, index); !ok || id != participantID {
		return false
	}

	if source == UnusedPool {
		u := r.unused[index]
		r.unused = append(r.unused[:index:index], r.unused[index+1:]...)
		ti := r.partyIndex(target)
		r.parties[ti].Assignments = append(r.parties[ti].Assignments, models.Assignment{
			ParticipantID: u.ParticipantID,
			DisplayName:   u.DisplayName,
			AssignedRole:  allocator.FlexRole,
			EligibleRoles: u.Roles,
		})
		return true
	}

	si := r.partyIndex(source)
	members := r.parties[si].Assignments
	m := members[index]
	r.parties[si].Assignments = append(members[:index:index], members[index+1:]...)

	if target == UnusedPool {
		r.unused = append(r.unused, models.UnusedParticipant{
			ParticipantID: m.ParticipantID,
			DisplayName:   m.DisplayName,
			Roles:         m.EligibleRoles,
		})
		return true
	}

	ti := r.partyIndex(target)
	r.parties[ti].Assignments = append(r.parties[ti].Assignments, m)
	return true
}

// ChangeRole sets the assigned role of the member at index in a party.
//
// The role is not checked against the member's eligible roles; the dashboard
// limits the choices (see RoleChoices) and the roster trusts it.
func (r *Roster) ChangeRole(partyID int, index int, role string) bool {
	if r.status != Allocated {
		return false
	}
	pi := r.partyIndex(ContainerID(partyID))
	if pi < 0 || index < 0 || index >= len(r.parties[pi].Assignments) {
		return false
	}
	r.parties[pi].Assignments[index].AssignedRole = role
	return true
}

// RoleChoices lists the roles the dashboard should offer for a member:
// their eligible roles plus FLEX.
func (r *Roster) RoleChoices(partyID int, index int) ([]string, bool) {
	pi := r.partyIndex(ContainerID(partyID))
	if pi < 0 || index < 0 || index >= len(r.parties[pi].Assignments) {
		return nil, false
	}
	eligible := r.parties[pi].Assignments[index].EligibleRoles
	choices := append([]string(nil), eligible...)
	for _, role := range eligible {
		if role == allocator.FlexRole {
			return choices, true
		}
	}
	return append(choices, allocator.FlexRole), true
}

// AddEmptyParty appends a party with the next free id and returns that id.
// Ids are max(existing)+1, or 1 when there are no parties.
func (r *Roster) AddEmptyParty() (int, bool) {
	if r.status != Allocated {
		return 0, false
	}
	next := 1
	for _, p := range r.parties {
		if p.ID >= next {
			next = p.ID + 1
		}
	}
	r.parties = append(r.parties, models.Party{ID: next, Assignments: []models.Assignment{}})
	return next, true
}
