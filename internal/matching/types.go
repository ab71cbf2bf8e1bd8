// Package matching ranks internships for a candidate: skill normalization,
// weighted multi-factor scoring with mismatch penalties, eligibility
// filtering and top-N truncation. It performs no I/O.
package matching

import "strings"

// Modality is the work arrangement of an internship or the one a candidate prefers.
type Modality string

const (
	ModalityRemote Modality = "remote"
	ModalityOnsite Modality = "onsite"
	ModalityHybrid Modality = "hybrid"
	ModalityAny    Modality = "any"
)

// ParseModality lowercases and trims s. An empty value means no preference.
func ParseModality(s string) Modality {
	m := Modality(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ModalityAny
	}
	return m
}

// IsAny reports whether m expresses no preference.
func (m Modality) IsAny() bool {
	return ParseModality(string(m)) == ModalityAny
}

type Preferences struct {
	Locations  []string `json:"locations,omitempty"`
	Sectors    []string `json:"sectors,omitempty"`
	Modality   Modality `json:"modality,omitempty"`
	MinStipend Number   `json:"minStipend"`
}

type Internship struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title,omitempty"`
	Organization        string   `json:"organization,omitempty"`
	RequiredSkills      []string `json:"requiredSkills"`
	PreferredSkills     []string `json:"preferredSkills"`
	Locations           []string `json:"locations"`
	Sector              string   `json:"sector"`
	Modality            Modality `json:"modality"`
	Capacity            Number   `json:"capacity"`
	ApplicationDeadline string   `json:"applicationDeadline,omitempty"`
	StipendMin          Number   `json:"stipendMin"`
	DurationMonths      Number   `json:"durationMonths"`
}

// MatchFilters are caller-supplied constraints, AND-combined. Zero values do not filter.
type MatchFilters struct {
	Location          string   `json:"location,omitempty"`
	Sector            string   `json:"sector,omitempty"`
	Modality          Modality `json:"modality,omitempty"`
	MinStipend        Number   `json:"minStipend"`
	MinDurationMonths Number   `json:"minDurationMonths"`
}

type Explanation struct {
	Reason       string  `json:"reason"`
	Contribution float64 `json:"contribution"`
}

// Breakdown exposes the factor values behind a score.
type Breakdown struct {
	RequiredCoverage  float64 `json:"requiredCoverage"`
	PreferredCoverage float64 `json:"preferredCoverage"`
	LocationMatch     float64 `json:"locationMatch"`
	SectorMatch       float64 `json:"sectorMatch"`
	ModalityMatch     float64 `json:"modalityMatch"`
	Raw               float64 `json:"raw"`
	Penalty           float64 `json:"penalty"`
}

type Recommendation struct {
	Internship   Internship    `json:"internship"`
	Score        float64       `json:"score"`
	Explanations []Explanation `json:"explanations"`
	Breakdown    Breakdown     `json:"breakdown"`
}
