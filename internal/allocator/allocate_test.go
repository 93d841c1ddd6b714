package allocator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sizimon/grippendor/internal/models"
)

func participant(id string, roles ...string) models.Participant {
	return models.Participant{ID: id, DisplayName: "name-" + id, Roles: roles}
}

func preset(size int, reqs ...models.RoleRequirement) models.Preset {
	return models.Preset{ID: "p", PartySize: size, Data: models.PresetData{Roles: reqs}}
}

func req(role string, count int) models.RoleRequirement {
	return models.RoleRequirement{RoleName: role, Count: count}
}

// dungeonRoster is 2 tanks, 2 healers and 8 dps.
func dungeonRoster() []models.Participant {
	roster := []models.Participant{
		participant("t1", "TANK"),
		participant("t2", "TANK"),
		participant("h1", "HEALER"),
		participant("h2", "HEALER"),
	}
	for i := 1; i <= 8; i++ {
		roster = append(roster, participant(fmt.Sprintf("d%d", i), "DPS"))
	}
	return roster
}

func dungeonPreset() models.Preset {
	return preset(5, req("TANK", 1), req("HEALER", 1), req("DPS", 3))
}

func memberIDs(p models.Party) []string {
	ids := make([]string, len(p.Assignments))
	for i, a := range p.Assignments {
		ids[i] = a.ParticipantID
	}
	return ids
}

func roles(p models.Party) []string {
	out := make([]string, len(p.Assignments))
	for i, a := range p.Assignments {
		out[i] = a.AssignedRole
	}
	return out
}

func unusedIDs(a models.Allocation) []string {
	ids := make([]string, len(a.Unused))
	for i, u := range a.Unused {
		ids[i] = u.ParticipantID
	}
	return ids
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name         string
		preset       models.Preset
		participants []models.Participant
		validateFunc func(t *testing.T, got models.Allocation)
	}{
		{
			name:         "two full dungeon parties with two left over",
			preset:       dungeonPreset(),
			participants: dungeonRoster(),
			validateFunc: func(t *testing.T, got models.Allocation) {
				require.Len(t, got.Parties, 2)
				assert.Equal(t, 1, got.Parties[0].ID)
				assert.Equal(t, 2, got.Parties[1].ID)
				assert.Equal(t, []string{"t1", "h1", "d1", "d2", "d3"}, memberIDs(got.Parties[0]))
				assert.Equal(t, []string{"t2", "h2", "d4", "d5", "d6"}, memberIDs(got.Parties[1]))
				assert.Equal(t, []string{"TANK", "HEALER", "DPS", "DPS", "DPS"}, roles(got.Parties[0]))
				assert.Equal(t, []string{"d7", "d8"}, unusedIDs(got))
			},
		},
		{
			name:         "empty roster",
			preset:       preset(4),
			participants: []models.Participant{},
			validateFunc: func(t *testing.T, got models.Allocation) {
				assert.Empty(t, got.Parties)
				assert.Empty(t, got.Unused)
				assert.NotNil(t, got.Parties)
				assert.NotNil(t, got.Unused)
			},
		},
		{
			name:         "zero party size leaves everyone unused",
			preset:       preset(0, req("TANK", 1)),
			participants: []models.Participant{participant("a", "TANK"), participant("b")},
			validateFunc: func(t *testing.T, got models.Allocation) {
				assert.Empty(t, got.Parties)
				assert.Equal(t, []string{"a", "b"}, unusedIDs(got))
			},
		},
		{
			name:         "unmet quota yields no parties",
			preset:       preset(2, req("HEALER", 1)),
			participants: []models.Participant{participant("a", "DPS"), participant("b", "DPS")},
			validateFunc: func(t *testing.T, got models.Allocation) {
				assert.Empty(t, got.Parties)
				assert.Equal(t, []string{"a", "b"}, unusedIDs(got))
			},
		},
		{
			name:   "multi-role participant goes to the first requirement",
			preset: preset(4, req("TANK", 1), req("HEALER", 1), req("DPS", 2)),
			participants: []models.Participant{
				participant("a", "TANK", "HEALER"),
				participant("b", "HEALER"),
				participant("c", "DPS"),
				participant("d", "DPS"),
			},
			validateFunc: func(t *testing.T, got models.Allocation) {
				require.Len(t, got.Parties, 1)
				assert.Equal(t, []string{"a", "b", "c", "d"}, memberIDs(got.Parties[0]))
				assert.Equal(t, []string{"TANK", "HEALER", "DPS", "DPS"}, roles(got.Parties[0]))
				assert.Equal(t, []string{"TANK", "HEALER"}, got.Parties[0].Assignments[0].EligibleRoles)
			},
		},
		{
			name:   "open slots are filled with flex in roster order",
			preset: preset(3, req("TANK", 1)),
			participants: []models.Participant{
				participant("x", "DPS"),
				participant("t", "TANK"),
				participant("y"),
				participant("z", "HEALER"),
			},
			validateFunc: func(t *testing.T, got models.Allocation) {
				require.Len(t, got.Parties, 1)
				assert.Equal(t, []string{"t", "x", "y"}, memberIDs(got.Parties[0]))
				assert.Equal(t, []string{"TANK", FlexRole, FlexRole}, roles(got.Parties[0]))
				assert.Equal(t, []string{"z"}, unusedIDs(got))
			},
		},
		{
			name:   "quotas larger than party size are cut at party size",
			preset: preset(2, req("TANK", 2), req("DPS", 1)),
			participants: []models.Participant{
				participant("t1", "TANK"),
				participant("t2", "TANK"),
				participant("d", "DPS"),
				participant("e", "DPS"),
			},
			validateFunc: func(t *testing.T, got models.Allocation) {
				require.Len(t, got.Parties, 1)
				assert.Equal(t, []string{"t1", "t2"}, memberIDs(got.Parties[0]))
				assert.Equal(t, []string{"d", "e"}, unusedIDs(got))
			},
		},
		{
			name:   "zero count requirement imposes no limit",
			preset: preset(2, req("TANK", 0)),
			participants: []models.Participant{
				participant("a", "DPS"),
				participant("b", "DPS"),
			},
			validateFunc: func(t *testing.T, got models.Allocation) {
				require.Len(t, got.Parties, 1)
				assert.Equal(t, []string{FlexRole, FlexRole}, roles(got.Parties[0]))
			},
		},
		{
			name:   "repeated participant id is placed once",
			preset: preset(2),
			participants: []models.Participant{
				participant("a", "DPS"),
				participant("a", "DPS"),
				participant("b", "DPS"),
			},
			validateFunc: func(t *testing.T, got models.Allocation) {
				require.Len(t, got.Parties, 1)
				assert.Equal(t, []string{"a", "b"}, memberIDs(got.Parties[0]))
				assert.Empty(t, got.Unused)
			},
		},
		{
			name:   "repeated ids do not count towards party capacity",
			preset: preset(2, req("DPS", 1)),
			participants: []models.Participant{
				participant("a", "DPS"),
				participant("a", "DPS"),
				participant("a", "DPS"),
				participant("b", "DPS"),
			},
			validateFunc: func(t *testing.T, got models.Allocation) {
				require.Len(t, got.Parties, 1, "no empty second party")
				assert.Equal(t, []string{"a", "b"}, memberIDs(got.Parties[0]))
				assert.Equal(t, []string{"DPS", FlexRole}, roles(got.Parties[0]))
				assert.Empty(t, got.Unused)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Allocate(tt.preset, tt.participants)
			tt.validateFunc(t, got)
		})
	}
}

// rosterCases is a spread of inputs for the property checks below.
func rosterCases() []struct {
	preset       models.Preset
	participants []models.Participant
} {
	pool := []string{"TANK", "HEALER", "DPS", "SUPPORT"}
	var cases []struct {
		preset       models.Preset
		participants []models.Participant
	}
	for size := 0; size <= 6; size++ {
		for n := 0; n <= 20; n += 3 {
			var roster []models.Participant
			for i := 0; i < n; i++ {
				var rs []string
				for k, r := range pool {
					if (i+k)%(k+2) == 0 {
						rs = append(rs, r)
					}
				}
				roster = append(roster, participant(fmt.Sprintf("u%02d", i), rs...))
			}
			cases = append(cases, struct {
				preset       models.Preset
				participants []models.Participant
			}{
				preset:       preset(size, req("TANK", 1), req("HEALER", 1), req("DPS", size/2)),
				participants: roster,
			})
		}
	}
	return cases
}

func TestAllocate_Deterministic(t *testing.T) {
	for _, c := range rosterCases() {
		first := Allocate(c.preset, c.participants)
		second := Allocate(c.preset, c.participants)
		assert.Equal(t, first, second)
	}
}

func TestAllocate_EveryParticipantInExactlyOneContainer(t *testing.T) {
	for _, c := range rosterCases() {
		got := Allocate(c.preset, c.participants)

		seen := make(map[string]int)
		for _, p := range got.Parties {
			for _, a := range p.Assignments {
				seen[a.ParticipantID]++
			}
		}
		for _, u := range got.Unused {
			seen[u.ParticipantID]++
		}

		assert.Len(t, seen, len(c.participants))
		for _, p := range c.participants {
			assert.Equal(t, 1, seen[p.ID], "participant %s", p.ID)
		}
	}
}

func TestAllocate_RespectsPartySize(t *testing.T) {
	for _, c := range rosterCases() {
		got := Allocate(c.preset, c.participants)
		for _, p := range got.Parties {
			assert.LessOrEqual(t, len(p.Assignments), c.preset.PartySize)
		}
	}
}

func TestPartyCapacity_Bounds(t *testing.T) {
	for _, c := range rosterCases() {
		maxParties := PartyCapacity(c.preset, c.participants)
		assert.Len(t, Allocate(c.preset, c.participants).Parties, maxParties)
		if c.preset.PartySize == 0 {
			assert.Zero(t, maxParties)
			continue
		}
		assert.LessOrEqual(t, maxParties, len(c.participants)/c.preset.PartySize)
		for _, cov := range Coverage(c.preset, c.participants) {
			if cov.PerParty > 0 {
				assert.LessOrEqual(t, maxParties, cov.Eligible/cov.PerParty)
			}
		}
	}
}

func TestPartyCapacity_RepeatedIDs(t *testing.T) {
	roster := []models.Participant{
		participant("a", "TANK"),
		participant("a", "TANK"),
		participant("a", "TANK"),
		participant("b", "HEALER"),
	}
	assert.Equal(t, 1, PartyCapacity(preset(2), roster))
	assert.Equal(t, 0, PartyCapacity(preset(1, req("TANK", 2)), roster), "one tank id cannot fill two slots")

	got := Coverage(preset(1, req("TANK", 1)), roster)
	assert.Equal(t, 1, got[0].Eligible)
}

func TestCoverage(t *testing.T) {
	got := Coverage(dungeonPreset(), dungeonRoster())
	assert.Equal(t, []RoleCoverage{
		{RoleName: "TANK", PerParty: 1, Eligible: 2, PartiesSupported: 2},
		{RoleName: "HEALER", PerParty: 1, Eligible: 2, PartiesSupported: 2},
		{RoleName: "DPS", PerParty: 3, Eligible: 8, PartiesSupported: 2},
	}, got)

	free := Coverage(preset(2, req("BARD", 0)), nil)
	assert.Equal(t, -1, free[0].PartiesSupported)
}
