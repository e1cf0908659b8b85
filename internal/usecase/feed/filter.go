package feed

import (
	"time"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gdugdh24/partnerfinder/internal/geo"
	"github.com/samber/lo"
)

// ExclusionSet holds the ids a viewer must not be shown again. Swiped and
// matched ids are kept apart so a caller can tell why a card is hidden.
type ExclusionSet struct {
	Swiped  map[string]struct{}
	Matched map[string]struct{}
}

func NewExclusionSet(swiped, matched []string) ExclusionSet {
	toSet := func(ids []string) map[string]struct{} {
		return lo.SliceToMap(ids, func(id string) (string, struct{}) { return id, struct{}{} })
	}
	return ExclusionSet{Swiped: toSet(swiped), Matched: toSet(matched)}
}

func (e ExclusionSet) Contains(id string) bool {
	if _, ok := e.Swiped[id]; ok {
		return true
	}
	_, ok := e.Matched[id]
	return ok
}

// predicate reports whether candidate survives one filtering step.
type predicate func(viewer, candidate *domain.Profile) bool

// FilterCandidates keeps the profiles of pool that viewer may be shown under
// cfg, in pool order. Age is computed as of now.
func FilterCandidates(viewer *domain.Profile, pool []*domain.Profile, excluded ExclusionSet, cfg domain.FilterConfig, now time.Time) []*domain.Profile {
	pipeline := []predicate{
		func(v, c *domain.Profile) bool { return c.ID != v.ID },
		func(_, c *domain.Profile) bool { return !excluded.Contains(c.ID) },
		func(_, c *domain.Profile) bool { return c.IsComplete() },
		func(v, c *domain.Profile) bool {
			d, ok := geo.DistanceBetween(v, c)
			// unknown distance passes
			return !ok || d <= cfg.MaxDistanceKm
		},
		func(_, c *domain.Profile) bool { return cfg.AgeRange.Contains(c.Age(now)) },
		func(_, c *domain.Profile) bool { return cfg.AcceptsGender(c.Gender) },
		func(v, c *domain.Profile) bool {
			return len(CommonInterests(v.Interests, c.Interests)) >= cfg.MinCommonInterests
		},
		func(_, c *domain.Profile) bool { return cfg.AcceptsExpertise(c.Expertise) },
	}

	out := make([]*domain.Profile, 0, len(pool))
	for _, candidate := range pool {
		if candidate == nil {
			continue
		}
		if lo.EveryBy(pipeline, func(keep predicate) bool { return keep(viewer, candidate) }) {
			out = append(out, candidate)
		}
	}
	return out
}

// CommonInterests returns the exact-match set intersection of a and b in the
// order of a.
func CommonInterests(a, b []string) []string {
	return lo.Uniq(lo.Intersect(b, a))
}
