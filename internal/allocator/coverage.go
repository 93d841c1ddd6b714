package allocator

import "github.com/Sizimon/grippendor/internal/models"

// RoleCoverage describes how well the roster covers one role requirement.
type RoleCoverage struct {
	RoleName string `json:"role_name"`
	PerParty int    `json:"per_party"`
	Eligible int    `json:"eligible"`

	// PartiesSupported is Eligible/PerParty, or -1 when the requirement
	// imposes no limit.
	PartiesSupported int `json:"parties_supported"`
}

// Coverage reports, per role requirement, how many parties the roster could
// staff if that role were the only constraint. The smallest value (together
// with roster size / party size) is what limits Allocate.
func Coverage(preset models.Preset, participants []models.Participant) []RoleCoverage {
	buckets := indexByRole(participants)
	out := make([]RoleCoverage, 0, len(preset.Requirements()))
	for _, req := range preset.Requirements() {
		eligible := 0
		if b, ok := buckets[req.RoleName]; ok {
			eligible = len(b.positions)
		}
		supported := -1
		if req.Count > 0 {
			supported = eligible / req.Count
		}
		out = append(out, RoleCoverage{
			RoleName:         req.RoleName,
			PerParty:         req.Count,
			Eligible:         eligible,
			PartiesSupported: supported,
		})
	}
	return out
}
