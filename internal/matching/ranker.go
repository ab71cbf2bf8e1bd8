package matching

import (
	"sort"
)

// ExclusionReason names the gate that removed an internship from a ranking.
type ExclusionReason string

const (
	ExcludedCapacity       ExclusionReason = "capacity"
	ExcludedDeadline       ExclusionReason = "deadline"
	ExcludedFilters        ExclusionReason = "filters"
	ExcludedRequiredSkills ExclusionReason = "required_skills"
)

type RankRequest struct {
	CandidateSkills []string
	Preferences     Preferences
	Catalog         []Internship
	// TopN <= 0 selects DefaultTopN.
	TopN    int
	Filters *MatchFilters
	Config  *MatchConfig
}

type Ranking struct {
	Recommendations []Recommendation
	Considered      int
	Eligible        int
	Excluded        map[ExclusionReason]int
}

// Rank filters the catalog, scores the survivors and returns the best TopN,
// highest score first. Internships with equal scores keep catalog order.
func (e *Engine) Rank(req RankRequest) Ranking {
	cfg := resolveConfig(req.Config)
	topN := req.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	candidate := e.normalizer.NormalizeList(req.CandidateSkills)
	now := e.now()

	result := Ranking{
		Considered: len(req.Catalog),
		Excluded:   make(map[ExclusionReason]int),
	}

	recs := make([]Recommendation, 0, len(req.Catalog))
	for _, in := range req.Catalog {
		if cfg.CapacityFilter && capacityExhausted(in) {
			result.Excluded[ExcludedCapacity]++
			continue
		}
		if cfg.DeadlineFilter && deadlinePassed(in, now) {
			result.Excluded[ExcludedDeadline]++
			continue
		}
		if req.Filters != nil && !req.Filters.matches(in) {
			result.Excluded[ExcludedFilters]++
			continue
		}
		if cfg.RequireAllRequiredSkills && !e.hasAllRequired(candidate, in) {
			result.Excluded[ExcludedRequiredSkills]++
			continue
		}
		recs = append(recs, e.score(candidate, req.Preferences, in, cfg))
	}
	result.Eligible = len(recs)

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if len(recs) > topN {
		recs = recs[:topN]
	}
	result.Recommendations = recs
	return result
}
