package dashboard

import (
	"cmp"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Sizimon/grippendor/internal/models"
)

// SearchMembers returns the members whose username fuzzy-matches query,
// ignoring case and diacritics, best match first. An empty query returns
// every member in alphabetical order.
func SearchMembers(members []models.Member, query string) []models.Member {
	query = strings.TrimSpace(query)
	if query == "" {
		out := slices.Clone(members)
		slices.SortStableFunc(out, func(a, b models.Member) int {
			return cmp.Compare(strings.ToLower(a.Username), strings.ToLower(b.Username))
		})
		if out == nil {
			out = []models.Member{}
		}
		return out
	}

	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Username
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Target), strings.ToLower(b.Target))
	})

	out := make([]models.Member, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, members[r.OriginalIndex])
	}
	return out
}
