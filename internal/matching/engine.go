package matching

import "time"

// Engine binds a Normalizer and a clock. It holds no mutable state.
type Engine struct {
	normalizer *Normalizer
	now        func() time.Time
}

// NewEngine uses DefaultAliases when n is nil and time.Now when now is nil.
func NewEngine(n *Normalizer, now func() time.Time) *Engine {
	if n == nil {
		n = NewNormalizer(DefaultAliases())
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{normalizer: n, now: now}
}

func (e *Engine) Normalizer() *Normalizer {
	return e.normalizer
}

func (e *Engine) NormalizeSkills(raw []string) SkillSet {
	return e.normalizer.NormalizeList(raw)
}

// Score evaluates one internship against an already-normalized candidate
// skill set. A nil cfg selects DefaultMatchConfig.
func (e *Engine) Score(candidate SkillSet, prefs Preferences, in Internship, cfg *MatchConfig) Recommendation {
	return e.score(candidate, prefs, in, resolveConfig(cfg))
}

func (e *Engine) RankInternships(candidateSkills []string, prefs Preferences, catalog []Internship, topN int, filters *MatchFilters, cfg *MatchConfig) []Recommendation {
	return e.Rank(RankRequest{
		CandidateSkills: candidateSkills,
		Preferences:     prefs,
		Catalog:         catalog,
		TopN:            topN,
		Filters:         filters,
		Config:          cfg,
	}).Recommendations
}

var defaultEngine = NewEngine(nil, nil)

func NormalizeSkillsList(raw []string) SkillSet {
	return defaultEngine.NormalizeSkills(raw)
}

func ScoreInternship(candidate SkillSet, prefs Preferences, in Internship, cfg *MatchConfig) Recommendation {
	return defaultEngine.Score(candidate, prefs, in, cfg)
}

func RankInternships(candidateSkills []string, prefs Preferences, catalog []Internship, topN int, filters *MatchFilters, cfg *MatchConfig) []Recommendation {
	return defaultEngine.RankInternships(candidateSkills, prefs, catalog, topN, filters, cfg)
}
