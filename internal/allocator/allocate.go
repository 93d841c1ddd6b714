// Package allocator builds parties for an event from its sign-up roster.
//
// Allocation is a greedy, deterministic heuristic: quotas are filled in preset
// order, ties go to whoever signed up first, and leftover slots are filled
// with FLEX players. It does not search for an optimal assignment.
package allocator

import (
	"github.com/Sizimon/grippendor/internal/models"
)

// FlexRole is the role given to participants filling a slot no quota asked for.
const FlexRole = "FLEX"

// claims tracks which roster positions have been placed in a party.
// Every placement goes through claim, so a participant can only ever land in
// one container.
type claims struct {
	roster []models.Participant
	// owner maps a roster position to the position that owns its id.
	// Repeated ids resolve to their first occurrence.
	owner   []int
	claimed []bool
}

func newClaims(roster []models.Participant) *claims {
	c := &claims{
		roster:  roster,
		owner:   make([]int, len(roster)),
		claimed: make([]bool, len(roster)),
	}
	first := make(map[string]int, len(roster))
	for i, p := range roster {
		if j, ok := first[p.ID]; ok {
			c.owner[i] = j
			continue
		}
		first[p.ID] = i
		c.owner[i] = i
	}
	return c
}

func (c *claims) free(i int) bool {
	return !c.claimed[c.owner[i]]
}

func (c *claims) claim(i int) models.Participant {
	o := c.owner[i]
	c.claimed[o] = true
	return c.roster[o]
}

// bucket is the ordered list of roster positions eligible for one role.
// cursor only moves forward: positions behind it are already claimed.
type bucket struct {
	positions []int
	cursor    int
}

func (b *bucket) next(c *claims) (int, bool) {
	for b.cursor < len(b.positions) {
		i := b.positions[b.cursor]
		b.cursor++
		if c.free(i) {
			return i, true
		}
	}
	return 0, false
}

// indexByRole groups roster positions by role, preserving roster order.
// A repeated id is listed once per role, at its first eligible position.
func indexByRole(roster []models.Participant) map[string]*bucket {
	buckets := make(map[string]*bucket)
	listed := make(map[string]map[string]bool)
	for i, p := range roster {
		for _, role := range p.Roles {
			b, ok := buckets[role]
			if !ok {
				b = &bucket{}
				buckets[role] = b
				listed[role] = make(map[string]bool)
			}
			if listed[role][p.ID] {
				continue
			}
			listed[role][p.ID] = true
			b.positions = append(b.positions, i)
		}
	}
	return buckets
}

func distinctIDs(roster []models.Participant) int {
	ids := make(map[string]struct{}, len(roster))
	for _, p := range roster {
		ids[p.ID] = struct{}{}
	}
	return len(ids)
}

// capacity returns the number of full parties the roster can support.
func capacity(preset models.Preset, roster []models.Participant, buckets map[string]*bucket) int {
	if preset.PartySize <= 0 || len(roster) == 0 {
		return 0
	}
	maxParties := distinctIDs(roster) / preset.PartySize
	for _, req := range preset.Requirements() {
		if req.Count <= 0 {
			continue
		}
		available := 0
		if b, ok := buckets[req.RoleName]; ok {
			available = len(b.positions)
		}
		maxParties = min(maxParties, available/req.Count)
	}
	return maxParties
}

// PartyCapacity returns how many parties Allocate will build for the inputs.
// It never exceeds distinct participant ids/PartySize, nor eligible/count for
// any role requirement.
func PartyCapacity(preset models.Preset, participants []models.Participant) int {
	return capacity(preset, participants, indexByRole(participants))
}

// Allocate splits participants into parties according to preset.
//
// For each party, role requirements are filled in preset order from the
// first unclaimed eligible participants, stopping once the party is full,
// then remaining slots are filled in roster order with FlexRole. Whoever is left over is returned as unused.
// Degenerate inputs (no party size, no participants, unmet quotas) produce
// no parties and leave everyone unused.
func Allocate(preset models.Preset, participants []models.Participant) models.Allocation {
	result := models.Allocation{
		Parties: []models.Party{},
		Unused:  []models.UnusedParticipant{},
	}

	buckets := indexByRole(participants)
	maxParties := capacity(preset, participants, buckets)
	c := newClaims(participants)

	for i := 0; i < maxParties; i++ {
		party := models.Party{
			ID:          i + 1,
			Assignments: make([]models.Assignment, 0, preset.PartySize),
		}

		for _, req := range preset.Requirements() {
			b, ok := buckets[req.RoleName]
			if !ok {
				continue
			}
			for taken := 0; taken < req.Count && len(party.Assignments) < preset.PartySize; taken++ {
				pos, ok := b.next(c)
				if !ok {
					break
				}
				party.Assignments = append(party.Assignments, assign(c.claim(pos), req.RoleName))
			}
		}

		// Quotas summing past the party size are cut off above, so a party
		// never holds more than PartySize; in that case there is nothing to fill.
		for pos := 0; pos < len(participants) && len(party.Assignments) < preset.PartySize; pos++ {
			if !c.free(pos) {
				continue
			}
			party.Assignments = append(party.Assignments, assign(c.claim(pos), FlexRole))
		}

		result.Parties = append(result.Parties, party)
	}

	for pos, p := range participants {
		if c.owner[pos] != pos || !c.free(pos) {
			continue
		}
		result.Unused = append(result.Unused, models.UnusedParticipant{
			ParticipantID: p.ID,
			DisplayName:   p.DisplayName,
			Roles:         append([]string(nil), p.Roles...),
		})
	}

	return result
}

func assign(p models.Participant, role string) models.Assignment {
	return models.Assignment{
		ParticipantID: p.ID,
		DisplayName:   p.DisplayName,
		AssignedRole:  role,
		EligibleRoles: append([]string(nil), p.Roles...),
	}
}
