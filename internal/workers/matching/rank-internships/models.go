package rankinternships

import "internship-workers/internal/matching"

// Input carries the ranking request. A nil Internships list means the catalog
// is loaded from the configured source.
type Input struct {
	CandidateID     string                 `json:"candidateId"`
	CandidateSkills []string               `json:"candidateSkills"`
	Preferences     *matching.Preferences  `json:"preferences"`
	Internships     []matching.Internship  `json:"internships"`
	TopN            int                    `json:"topN"`
	Filters         *matching.MatchFilters `json:"filters"`
	MatchConfig     *matching.ConfigPatch  `json:"matchConfig"`
}

type Output struct {
	RankingID       string                    `json:"rankingId"`
	Recommendations []matching.Recommendation `json:"recommendations"`
	Considered      int                       `json:"considered"`
	Eligible        int                       `json:"eligible"`
	Returned        int                       `json:"returned"`
	RankedAt        string                    `json:"rankedAt"`
}
