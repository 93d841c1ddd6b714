package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sizimon/grippendor/internal/allocator"
	"github.com/Sizimon/grippendor/internal/models"
)

func member(id, role string, eligible ...string) models.Assignment {
	return models.Assignment{ParticipantID: id, DisplayName: id, AssignedRole: role, EligibleRoles: eligible}
}

func sampleAllocation() models.Allocation {
	return models.Allocation{
		Parties: []models.Party{
			{ID: 1, Assignments: []models.Assignment{
				member("alice", "TANK", "TANK", "DPS"),
				member("bob", "HEALER", "HEALER"),
			}},
			{ID: 2, Assignments: []models.Assignment{
				member("carol", "TANK", "TANK"),
			}},
		},
		Unused: []models.UnusedParticipant{
			{ParticipantID: "dave", DisplayName: "dave", Roles: []string{"DPS"}},
		},
	}
}

func allocated(t *testing.T) *Roster {
	t.Helper()
	r := New()
	r.Reset(sampleAllocation())
	require.Equal(t, Allocated, r.Status())
	return r
}

// containers returns participant id -> number of containers holding it.
func containers(a models.Allocation) map[string]int {
	seen := make(map[string]int)
	for _, p := range a.Parties {
		for _, m := range p.Assignments {
			seen[m.ParticipantID]++
		}
	}
	for _, u := range a.Unused {
		seen[u.ParticipantID]++
	}
	return seen
}

func TestNew_IsUnallocated(t *testing.T) {
	r := New()
	assert.Equal(t, Unallocated, r.Status())
	assert.Empty(t, r.State().Parties)

	assert.False(t, r.MoveMember("x", 1, 0, 2))
	assert.False(t, r.ChangeRole(1, 0, "DPS"))
	_, ok := r.AddEmptyParty()
	assert.False(t, ok)
}

func TestMoveMember(t *testing.T) {
	tests := []struct {
		name         string
		id           string
		source       ContainerID
		index        int
		target       ContainerID
		wantApplied  bool
		validateFunc func(t *testing.T, got models.Allocation)
	}{
		{
			name: "party to party keeps role", id: "alice", source: 1, index: 0, target: 2, wantApplied: true,
			validateFunc: func(t *testing.T, got models.Allocation) {
				require.Len(t, got.Parties[0].Assignments, 1)
				require.Len(t, got.Parties[1].Assignments, 2)
				moved := got.Parties[1].Assignments[1]
				assert.Equal(t, "alice", moved.ParticipantID)
				assert.Equal(t, "TANK", moved.AssignedRole)
			},
		},
		{
			name: "party to unused pool", id: "bob", source: 1, index: 1, target: UnusedPool, wantApplied: true,
			validateFunc: func(t *testing.T, got models.Allocation) {
				require.Len(t, got.Unused, 2)
				assert.Equal(t, "bob", got.Unused[1].ParticipantID)
				assert.Equal(t, []string{"HEALER"}, got.Unused[1].Roles)
			},
		},
		{
			name: "unused pool to party becomes flex", id: "dave", source: UnusedPool, index: 0, target: 1, wantApplied: true,
			validateFunc: func(t *testing.T, got models.Allocation) {
				assert.Empty(t, got.Unused)
				moved := got.Parties[0].Assignments[2]
				assert.Equal(t, "dave", moved.ParticipantID)
				assert.Equal(t, allocator.FlexRole, moved.AssignedRole)
				assert.Equal(t, []string{"DPS"}, moved.EligibleRoles)
			},
		},
		{
			name: "same container is a no-op", id: "alice", source: 1, index: 0, target: 1,
		},
		{
			name: "index out of range", id: "alice", source: 1, index: 5, target: 2,
		},
		{
			name: "negative index", id: "alice", source: 1, index: -1, target: 2,
		},
		{
			name: "stale index points at someone else", id: "alice", source: 1, index: 1, target: 2,
		},
		{
			name: "unknown target party", id: "alice", source: 1, index: 0, target: 9,
		},
		{
			name: "unknown source party", id: "alice", source: 7, index: 0, target: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := allocated(t)
			before := r.State()

			applied := r.MoveMember(tt.id, tt.source, tt.index, tt.target)
			assert.Equal(t, tt.wantApplied, applied)

			got := r.State()
			if !tt.wantApplied {
				assert.Equal(t, before, got)
				return
			}
			for id, n := range containers(got) {
				assert.Equal(t, 1, n, "participant %s", id)
			}
			assert.Equal(t, before.MemberCount(), got.MemberCount())
			tt.validateFunc(t, got)
		})
	}
}

func TestMoveMember_OverfillIsAllowed(t *testing.T) {
	r := New()
	r.Reset(models.Allocation{
		Parties: []models.Party{
			{ID: 1, Assignments: []models.Assignment{member("a", "DPS"), member("b", "DPS")}},
		},
		Unused: []models.UnusedParticipant{{ParticipantID: "c"}, {ParticipantID: "d"}},
	})

	require.True(t, r.MoveMember("c", UnusedPool, 0, 1))
	require.True(t, r.MoveMember("d", UnusedPool, 0, 1))
	assert.Len(t, r.State().Parties[0].Assignments, 4)
}

func TestMoveMember_StaleDropAfterEarlierMove(t *testing.T) {
	r := allocated(t)
	// Drag of bob starts at index 1, but alice leaves party 1 before the drop.
	require.True(t, r.MoveMember("alice", 1, 0, 2))
	before := r.State()

	assert.False(t, r.MoveMember("bob", 1, 1, UnusedPool))
	assert.Equal(t, before, r.State())
}

func TestChangeRole(t *testing.T) {
	r := allocated(t)

	assert.True(t, r.ChangeRole(1, 1, "DPS"), "roles outside eligibility are accepted")
	assert.Equal(t, "DPS", r.State().Parties[0].Assignments[1].AssignedRole)

	assert.False(t, r.ChangeRole(1, 2, "DPS"))
	assert.False(t, r.ChangeRole(5, 0, "DPS"))
	assert.False(t, r.ChangeRole(int(UnusedPool), 0, "DPS"))
}

func TestRoleChoices(t *testing.T) {
	r := allocated(t)

	choices, ok := r.RoleChoices(1, 0)
	require.True(t, ok)
	assert.Equal(t, []string{"TANK", "DPS", allocator.FlexRole}, choices)

	r.Reset(models.Allocation{Parties: []models.Party{
		{ID: 1, Assignments: []models.Assignment{member("x", "FLEX", "FLEX", "TANK")}},
	}})
	choices, ok = r.RoleChoices(1, 0)
	require.True(t, ok)
	assert.Equal(t, []string{"FLEX", "TANK"}, choices)

	_, ok = r.RoleChoices(1, 3)
	assert.False(t, ok)
}

func TestAddEmptyParty(t *testing.T) {
	t.Run("next id after the highest", func(t *testing.T) {
		r := New()
		r.Reset(models.Allocation{Parties: []models.Party{{ID: 1}, {ID: 3}}})

		id, ok := r.AddEmptyParty()
		require.True(t, ok)
		assert.Equal(t, 4, id)

		parties := r.State().Parties
		require.Len(t, parties, 3)
		assert.Equal(t, 4, parties[2].ID)
		assert.Empty(t, parties[2].Assignments)
	})

	t.Run("first party gets id one", func(t *testing.T) {
		r := New()
		r.Reset(models.Allocation{})

		id, ok := r.AddEmptyParty()
		require.True(t, ok)
		assert.Equal(t, 1, id)
	})
}

func TestReset_DiscardsEditsAndIsolatesInput(t *testing.T) {
	r := allocated(t)
	require.True(t, r.MoveMember("dave", UnusedPool, 0, 2))
	_, _ = r.AddEmptyParty()

	input := sampleAllocation()
	r.Reset(input)
	assert.Equal(t, sampleAllocation(), r.State())

	input.Parties[0].Assignments[0].AssignedRole = "CHANGED"
	assert.Equal(t, "TANK", r.State().Parties[0].Assignments[0].AssignedRole)

	out := r.State()
	out.Unused[0].Roles[0] = "CHANGED"
	assert.Equal(t, "DPS", r.State().Unused[0].Roles[0])
}
