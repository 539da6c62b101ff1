package profile

import (
	"maps"
	"time"
)

// Profile is the partially known student record accumulated over a conversation.
type Profile struct {
	Grade10Percentage *float64 `json:"grade_10_percentage" yaml:"grade_10_percentage"`
	Grade12Percentage *float64 `json:"grade_12_percentage" yaml:"grade_12_percentage"`
	CGPA              *float64 `json:"cgpa" yaml:"cgpa"`
	JEEScore          *int     `json:"jee_score" yaml:"jee_score"`
	NEETScore         *int     `json:"neet_score" yaml:"neet_score"`
	SATScore          *int     `json:"sat_score" yaml:"sat_score"`
	GREScore          *int     `json:"gre_score" yaml:"gre_score"`
	GATEScore         *int     `json:"gate_score" yaml:"gate_score"`

	PreferredStream     *string `json:"preferred_stream" yaml:"preferred_stream"`
	PreferredLocation   *string `json:"preferred_location" yaml:"preferred_location"`
	PreferredCourseType *string `json:"preferred_course_type" yaml:"preferred_course_type"`

	BudgetMin *int `json:"budget_min" yaml:"budget_min"`
	BudgetMax *int `json:"budget_max" yaml:"budget_max"`

	Gender           *string `json:"gender" yaml:"gender"`
	Category         *string `json:"category" yaml:"category"`
	StateOfResidence *string `json:"state_of_residence" yaml:"state_of_residence"`

	CareerGoal             *string `json:"career_goal" yaml:"career_goal"`
	SpecializationInterest *string `json:"specialization_interest" yaml:"specialization_interest"`
	Extracurriculars       *string `json:"extracurriculars" yaml:"extracurriculars"`

	AdditionalInfo       map[string]any       `json:"additional_info" yaml:"additional_info"`
	ConfidenceScores     map[string]float64   `json:"confidence_scores" yaml:"confidence_scores"`
	ExtractionTimestamps map[string]time.Time `json:"extraction_timestamps" yaml:"extraction_timestamps"`
}

// New returns an empty profile.
func New() *Profile {
	p := &Profile{}
	p.ensureMaps()
	return p
}

func (p *Profile) ensureMaps() {
	if p.AdditionalInfo == nil {
		p.AdditionalInfo = make(map[string]any)
	}
	if p.ConfidenceScores == nil {
		p.ConfidenceScores = make(map[string]float64)
	}
	if p.ExtractionTimestamps == nil {
		p.ExtractionTimestamps = make(map[string]time.Time)
	}
}

func (p *Profile) floatRef(name string) **float64 {
	switch name {
	case Grade10Percentage:
		return &p.Grade10Percentage
	case Grade12Percentage:
		return &p.Grade12Percentage
	case CGPA:
		return &p.CGPA
	}
	return nil
}

func (p *Profile) intRef(name string) **int {
	switch name {
	case JEEScore:
		return &p.JEEScore
	case NEETScore:
		return &p.NEETScore
	case SATScore:
		return &p.SATScore
	case GREScore:
		return &p.GREScore
	case GATEScore:
		return &p.GATEScore
	case BudgetMin:
		return &p.BudgetMin
	case BudgetMax:
		return &p.BudgetMax
	}
	return nil
}

func (p *Profile) textRef(name string) **string {
	switch name {
	case PreferredStream:
		return &p.PreferredStream
	case PreferredLocation:
		return &p.PreferredLocation
	case PreferredCourseType:
		return &p.PreferredCourseType
	case Gender:
		return &p.Gender
	case Category:
		return &p.Category
	case StateOfResidence:
		return &p.StateOfResidence
	case CareerGoal:
		return &p.CareerGoal
	case SpecializationInterest:
		return &p.SpecializationInterest
	case Extracurriculars:
		return &p.Extracurriculars
	}
	return nil
}

// Get returns the value of a scalar field and whether it is set.
func (p *Profile) Get(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	if ref := p.floatRef(name); ref != nil && *ref != nil {
		return **ref, true
	}
	if ref := p.intRef(name); ref != nil && *ref != nil {
		return **ref, true
	}
	if ref := p.textRef(name); ref != nil && *ref != nil {
		return **ref, true
	}
	return nil, false
}

// Has reports whether a scalar field is set.
func (p *Profile) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// set stores an already coerced value. It reports false when the value type does not fit the field.
func (p *Profile) set(name string, value any) bool {
	switch v := value.(type) {
	case float64:
		if ref := p.floatRef(name); ref != nil {
			*ref = &v
			return true
		}
	case int:
		if ref := p.intRef(name); ref != nil {
			*ref = &v
			return true
		}
	case string:
		if ref := p.textRef(name); ref != nil {
			*ref = &v
			return true
		}
	}
	return false
}

// Known returns the set scalar fields.
func (p *Profile) Known() map[string]any {
	known := make(map[string]any)
	for _, f := range Fields {
		if v, ok := p.Get(f.Name); ok {
			known[f.Name] = v
		}
	}
	return known
}

// NonEmpty returns the known scalar fields plus additional_info when it has entries.
func (p *Profile) NonEmpty() map[string]any {
	out := p.Known()
	if p != nil && len(p.AdditionalInfo) > 0 {
		out["additional_info"] = maps.Clone(p.AdditionalInfo)
	}
	return out
}

// FilledCount returns the number of set scalar fields.
func (p *Profile) FilledCount() int {
	count := 0
	for _, f := range Fields {
		if p.Has(f.Name) {
			count++
		}
	}
	return count
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return New()
	}
	c := &Profile{}
	for _, f := range Fields {
		if v, ok := p.Get(f.Name); ok {
			c.set(f.Name, v)
		}
	}
	c.AdditionalInfo = maps.Clone(p.AdditionalInfo)
	c.ConfidenceScores = maps.Clone(p.ConfidenceScores)
	c.ExtractionTimestamps = maps.Clone(p.ExtractionTimestamps)
	c.ensureMaps()
	return c
}

// Confidence returns the stored confidence for a scalar field or additional_info key.
func (p *Profile) Confidence(key string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	v, ok := p.ConfidenceScores[key]
	return v, ok
}
