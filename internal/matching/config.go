package matching

const DefaultTopN = 10

type Weights struct {
	Required  float64 `json:"req" mapstructure:"required"`
	Preferred float64 `json:"pref" mapstructure:"preferred"`
	Location  float64 `json:"loc" mapstructure:"location"`
	Sector    float64 `json:"sector" mapstructure:"sector"`
	Modality  float64 `json:"modality" mapstructure:"modality"`
}

// MatchConfig controls scoring weights and the built-in filters.
type MatchConfig struct {
	Weights                  Weights `json:"weights"`
	RequireAllRequiredSkills bool    `json:"requireAllRequiredSkills"`
	DeadlineFilter           bool    `json:"deadlineFilter"`
	CapacityFilter           bool    `json:"capacityFilter"`
	PreferencePenaltyWeight  float64 `json:"preferencePenaltyWeight"`
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		Weights: Weights{
			Required:  0.45,
			Preferred: 0.20,
			Location:  0.15,
			Sector:    0.10,
			Modality:  0.10,
		},
		RequireAllRequiredSkills: false,
		DeadlineFilter:           true,
		CapacityFilter:           true,
		PreferencePenaltyWeight:  0.15,
	}
}

// sanitized returns a copy with negative weights zeroed and the penalty
// factor clamped to [0,1].
func (c MatchConfig) sanitized() MatchConfig {
	c.Weights.Required = nonNegative(c.Weights.Required)
	c.Weights.Preferred = nonNegative(c.Weights.Preferred)
	c.Weights.Location = nonNegative(c.Weights.Location)
	c.Weights.Sector = nonNegative(c.Weights.Sector)
	c.Weights.Modality = nonNegative(c.Weights.Modality)
	c.PreferencePenaltyWeight = clamp01(c.PreferencePenaltyWeight)
	return c
}

func resolveConfig(cfg *MatchConfig) MatchConfig {
	if cfg == nil {
		return DefaultMatchConfig()
	}
	return cfg.sanitized()
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// WeightsPatch overrides individual weights. Nil fields keep the base value.
type WeightsPatch struct {
	Required  *float64 `json:"req,omitempty"`
	Preferred *float64 `json:"pref,omitempty"`
	Location  *float64 `json:"loc,omitempty"`
	Sector    *float64 `json:"sector,omitempty"`
	Modality  *float64 `json:"modality,omitempty"`
}

// ConfigPatch is a partial MatchConfig as supplied per request.
type ConfigPatch struct {
	Weights                  *WeightsPatch `json:"weights,omitempty"`
	RequireAllRequiredSkills *bool         `json:"requireAllRequiredSkills,omitempty"`
	DeadlineFilter           *bool         `json:"deadlineFilter,omitempty"`
	CapacityFilter           *bool         `json:"capacityFilter,omitempty"`
	PreferencePenaltyWeight  *float64      `json:"preferencePenaltyWeight,omitempty"`
}

// Apply returns base with every non-nil field of p applied. A nil patch
// returns base unchanged.
func (p *ConfigPatch) Apply(base MatchConfig) MatchConfig {
	if p == nil {
		return base
	}
	if w := p.Weights; w != nil {
		setFloat(&base.Weights.Required, w.Required)
		setFloat(&base.Weights.Preferred, w.Preferred)
		setFloat(&base.Weights.Location, w.Location)
		setFloat(&base.Weights.Sector, w.Sector)
		setFloat(&base.Weights.Modality, w.Modality)
	}
	setBool(&base.RequireAllRequiredSkills, p.RequireAllRequiredSkills)
	setBool(&base.DeadlineFilter, p.DeadlineFilter)
	setBool(&base.CapacityFilter, p.CapacityFilter)
	setFloat(&base.PreferencePenaltyWeight, p.PreferencePenaltyWeight)
	return base
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
