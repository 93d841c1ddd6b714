package models

// Assignment is a participant placed into a party under one role.
type Assignment struct {
	ParticipantID string `json:"user_id"`
	DisplayName   string `json:"name"`

	// AssignedRole is the quota role the participant fills, or FLEX.
	AssignedRole string `json:"role"`

	// EligibleRoles carries every role the participant could play so the
	// dashboard can offer a role change without asking the API again.
	EligibleRoles []string `json:"available_roles"`
}

// Party is a generated sub-group of an event's participants.
type Party struct {
	// ID is a positive integer unique within one allocation.
	ID          int          `json:"id"`
	Assignments []Assignment `json:"members"`
}

// UnusedParticipant is a participant not placed in any party.
type UnusedParticipant struct {
	ParticipantID string   `json:"user_id"`
	DisplayName   string   `json:"name"`
	Roles         []string `json:"roles"`
}

// Allocation is the full set of parties plus the leftover pool.
type Allocation struct {
	Parties []Party             `json:"parties"`
	Unused  []UnusedParticipant `json:"unused"`
}

// Clone returns a deep copy that shares no slices with a.
func (a Allocation) Clone() Allocation {
	out := Allocation{
		Parties: make([]Party, len(a.Parties)),
		Unused:  make([]UnusedParticipant, len(a.Unused)),
	}
	for i, p := range a.Parties {
		members := make([]Assignment, len(p.Assignments))
		for j, m := range p.Assignments {
			m.EligibleRoles = append([]string(nil), m.EligibleRoles...)
			members[j] = m
		}
		out.Parties[i] = Party{ID: p.ID, Assignments: members}
	}
	for i, u := range a.Unused {
		u.Roles = append([]string(nil), u.Roles...)
		out.Unused[i] = u
	}
	return out
}

// MemberCount returns how many participants the allocation holds in total.
func (a Allocation) MemberCount() int {
	n := len(a.Unused)
	for _, p := range a.Parties {
		n += len(p.Assignments)
	}
	return n
}
