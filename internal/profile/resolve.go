package profile

import (
	"context"

	"internship-workers/internal/common/errors"
	"internship-workers/internal/matching"
)

// Getter is satisfied by *Store.
type Getter interface {
	Get(ctx context.Context, candidateID string) (*Profile, error)
}

// Candidate is the subject of a scoring or ranking job.
type Candidate struct {
	ID          string
	Skills      []string
	Preferences matching.Preferences
	FromProfile bool
}

// Resolve picks the candidate's skills and preferences for a job. Skills
// given in the job win; otherwise the stored profile is loaded. Explicit
// preferences always override stored ones.
func Resolve(ctx context.Context, g Getter, candidateID string, skills []string, prefs *matching.Preferences) (Candidate, error) {
	if skills != nil {
		c := Candidate{ID: candidateID, Skills: skills}
		if prefs != nil {
			c.Preferences = *prefs
		}
		return c, nil
	}

	if candidateID == "" {
		return Candidate{}, errors.NewInvalidMatchInputError("candidateSkills or candidateId is required")
	}
	if g == nil {
		return Candidate{}, errors.NewInvalidMatchInputError("candidateSkills is required when profile lookup is unavailable")
	}

	p, err := g.Get(ctx, candidateID)
	if err != nil {
		return Candidate{}, err
	}

	c := Candidate{
		ID:          candidateID,
		Skills:      p.Skills,
		Preferences: p.Preferences,
		FromProfile: true,
	}
	if prefs != nil {
		c.Preferences = *prefs
	}
	return c, nil
}
