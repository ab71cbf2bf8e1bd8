package matching

import (
	"strings"
	"time"
)

var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDeadline accepts ISO 8601 timestamps (extended or basic offsets,
// minute or second precision), zone-less timestamps and plain dates.
// Zone-less values are read as UTC.
func ParseDeadline(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func capacityExhausted(in Internship) bool {
	return in.Capacity.Valid && in.Capacity.Value <= 0
}

// deadlinePassed is false for unparseable deadlines.
func deadlinePassed(in Internship, now time.Time) bool {
	t, ok := ParseDeadline(in.ApplicationDeadline)
	return ok && t.Before(now)
}

func (f MatchFilters) matches(in Internship) bool {
	if loc := strings.TrimSpace(f.Location); loc != "" && !containsFold(in.Locations, loc) {
		return false
	}
	if sector := strings.TrimSpace(f.Sector); sector != "" && !strings.EqualFold(sector, strings.TrimSpace(in.Sector)) {
		return false
	}
	if m := ParseModality(string(f.Modality)); !m.IsAny() && m != ParseModality(string(in.Modality)) {
		return false
	}
	if f.MinStipend.Valid && in.StipendMin.Valid && in.StipendMin.Value < f.MinStipend.Value {
		return false
	}
	if f.MinDurationMonths.Valid && in.DurationMonths.Valid && in.DurationMonths.Value < f.MinDurationMonths.Value {
		return false
	}
	return true
}

// hasAllRequired reports whether candidate covers every required skill of in.
func (e *Engine) hasAllRequired(candidate SkillSet, in Internship) bool {
	for skill := range e.normalizer.NormalizeList(in.RequiredSkills) {
		if !candidate.Has(skill) {
			return false
		}
	}
	return true
}
