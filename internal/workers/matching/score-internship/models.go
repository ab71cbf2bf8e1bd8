package scoreinternship

import "internship-workers/internal/matching"

type Input struct {
	CandidateID     string                `json:"candidateId"`
	CandidateSkills []string              `json:"candidateSkills"`
	Preferences     *matching.Preferences `json:"preferences"`
	Internship      matching.Internship   `json:"internship"`
	MatchConfig     *matching.ConfigPatch `json:"matchConfig"`
}

type Output struct {
	Recommendation matching.Recommendation `json:"recommendation"`
}
