package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	neutralMatch    = 0.5
	maxExplanations = 3
)

type factors struct {
	required      SkillSet
	preferred     SkillSet
	reqOverlap    int
	prefOverlap   int
	reqCoverage   float64
	prefCoverage  float64
	locMatch      float64
	matchedLoc    string
	hasLocPref    bool
	sectorMatch   float64
	hasSectorPref bool
	modMatch      float64
	modPref       Modality
	modInternship Modality
}

func (e *Engine) score(candidate SkillSet, prefs Preferences, in Internship, cfg MatchConfig) Recommendation {
	f := e.computeFactors(candidate, prefs, in)
	w := cfg.Weights

	raw := w.Required*f.reqCoverage +
		w.Preferred*f.prefCoverage +
		w.Location*f.locMatch +
		w.Sector*f.sectorMatch +
		w.Modality*f.modMatch

	var locPenalty, modPenalty float64
	if f.hasLocPref && f.locMatch == 0 {
		locPenalty = cfg.PreferencePenaltyWeight * w.Location
	}
	if !f.modPref.IsAny() && f.modMatch == 0 {
		modPenalty = cfg.PreferencePenaltyWeight * w.Modality
	}

	score := round3(clamp01(raw - locPenalty - modPenalty))

	return Recommendation{
		Internship:   in,
		Score:        score,
		Explanations: explain(f, in, w, locPenalty, modPenalty),
		Breakdown: Breakdown{
			RequiredCoverage:  f.reqCoverage,
			PreferredCoverage: f.prefCoverage,
			LocationMatch:     f.locMatch,
			SectorMatch:       f.sectorMatch,
			ModalityMatch:     f.modMatch,
			Raw:               raw,
			Penalty:           locPenalty + modPenalty,
		},
	}
}

func (e *Engine) computeFactors(candidate SkillSet, prefs Preferences, in Internship) factors {
	f := factors{
		required:  e.normalizer.NormalizeList(in.RequiredSkills),
		preferred: e.normalizer.NormalizeList(in.PreferredSkills),
	}

	f.reqOverlap = candidate.Overlap(f.required)
	f.reqCoverage = 1
	if f.required.Len() > 0 {
		f.reqCoverage = float64(f.reqOverlap) / float64(f.required.Len())
	}

	f.prefOverlap = candidate.Overlap(f.preferred)
	if f.preferred.Len() > 0 {
		f.prefCoverage = float64(f.prefOverlap) / float64(f.preferred.Len())
	}

	locPrefs := cleanList(prefs.Locations)
	f.hasLocPref = len(locPrefs) > 0
	f.locMatch = neutralMatch
	if f.hasLocPref {
		f.locMatch = 0
		if loc, ok := firstShared(locPrefs, in.Locations); ok {
			f.locMatch = 1
			f.matchedLoc = loc
		}
	}

	sectorPrefs := cleanList(prefs.Sectors)
	f.hasSectorPref = len(sectorPrefs) > 0
	f.sectorMatch = neutralMatch
	if f.hasSectorPref {
		f.sectorMatch = 0
		if containsFold(sectorPrefs, in.Sector) {
			f.sectorMatch = 1
		}
	}

	f.modPref = ParseModality(string(prefs.Modality))
	f.modInternship = Modality(strings.ToLower(strings.TrimSpace(string(in.Modality))))
	f.modMatch = neutralMatch
	if !f.modPref.IsAny() {
		f.modMatch = 0
		if modalitySatisfies(f.modInternship, f.modPref) {
			f.modMatch = 1
		}
	}

	return f
}

// modalitySatisfies treats a hybrid internship as acceptable for either strict preference.
func modalitySatisfies(internship, pref Modality) bool {
	if internship == pref {
		return true
	}
	return internship == ModalityHybrid && (pref == ModalityRemote || pref == ModalityOnsite)
}

func explain(f factors, in Internship, w Weights, locPenalty, modPenalty float64) []Explanation {
	entries := make([]Explanation, 0, 5)

	if f.reqOverlap > 0 {
		entries = append(entries, Explanation{
			Reason:       fmt.Sprintf("Matches %d of %d required skills", f.reqOverlap, f.required.Len()),
			Contribution: round3(w.Required * f.reqCoverage),
		})
	}
	if f.prefOverlap > 0 {
		entries = append(entries, Explanation{
			Reason:       fmt.Sprintf("Matches %d of %d preferred skills", f.prefOverlap, f.preferred.Len()),
			Contribution: round3(w.Preferred * f.prefCoverage),
		})
	}

	var locReason string
	switch {
	case !f.hasLocPref:
		locReason = "No location preference"
	case f.locMatch == 1:
		locReason = "Location match: " + f.matchedLoc
	default:
		locReason = "Location mismatch"
	}
	entries = append(entries, Explanation{
		Reason:       locReason,
		Contribution: round3(w.Location*f.locMatch - locPenalty),
	})

	var sectorReason string
	switch {
	case !f.hasSectorPref:
		sectorReason = "No sector preference"
	case f.sectorMatch == 1:
		sectorReason = "Sector match: " + strings.TrimSpace(in.Sector)
	default:
		sectorReason = "Sector mismatch: " + orUnspecified(in.Sector)
	}
	entries = append(entries, Explanation{
		Reason:       sectorReason,
		Contribution: round3(w.Sector * f.sectorMatch),
	})

	var modReason string
	switch {
	case f.modPref.IsAny():
		modReason = "Open to any modality"
	case f.modInternship == f.modPref:
		modReason = "Modality match: " + string(f.modPref)
	case f.modMatch == 1:
		modReason = fmt.Sprintf("Hybrid role fits %s preference", f.modPref)
	default:
		modReason = "Modality mismatch: " + orUnspecified(string(f.modInternship))
	}
	entries = append(entries, Explanation{
		Reason:       modReason,
		Contribution: round3(w.Modality*f.modMatch - modPenalty),
	})

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Contribution > entries[j].Contribution
	})
	if len(entries) > maxExplanations {
		entries = entries[:maxExplanations]
	}
	return entries
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func containsFold(list []string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}

// firstShared returns the first wanted value present in pool, spelled as in pool.
func firstShared(wanted, pool []string) (string, bool) {
	for _, w := range wanted {
		for _, p := range pool {
			if strings.EqualFold(strings.TrimSpace(p), w) {
				return strings.TrimSpace(p), true
			}
		}
	}
	return "", false
}

func orUnspecified(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unspecified"
	}
	return s
}
