package service

import (
	"fmt"
	"math"

	"github.com/godilite/caseops/internal/repository/models"
)

// Status is the health label of a monthly aggregate or a single case.
type Status string

const (
	StatusAttention Status = "Attention"
	StatusOptimal   Status = "Optimal"
	StatusStable    Status = "Stable"
)

const (
	DefaultMaxLatenessDays     = 18.0
	DefaultProactivePctOptimal = 50.0
)

// Thresholds configure the classifier. MaxLatenessDays is also the bound used
// when ExcludeLate filters monthly aggregates.
type Thresholds struct {
	MaxLatenessDays     float64
	ProactivePctOptimal float64
	ExcludeLate         bool
}

// DefaultThresholds returns an 18 day lateness limit and a 50% proactive cut-off.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxLatenessDays:     DefaultMaxLatenessDays,
		ProactivePctOptimal: DefaultProactivePctOptimal,
	}
}

// Validate rejects a negative or non-finite lateness limit and a proactive
// percentage outside 0..100.
func (t Thresholds) Validate() error {
	if math.IsNaN(t.MaxLatenessDays) || math.IsInf(t.MaxLatenessDays, 0) || t.MaxLatenessDays < 0 {
		return fmt.Errorf("%w: max lateness days must be a non-negative number", ErrInvalidThreshold)
	}
	if math.IsNaN(t.ProactivePctOptimal) || t.ProactivePctOptimal < 0 || t.ProactivePctOptimal > 100 {
		return fmt.Errorf("%w: proactive percentage must be between 0 and 100", ErrInvalidThreshold)
	}
	return nil
}

// Metrics are the inputs the rules look at.
type Metrics struct {
	MeanCompletionDays float64
	ProactivePct       float64
}

// Rule is one entry of the ordered classification chain.
type Rule struct {
	Name   string
	Status Status
	Match  func(Metrics) bool
}

// Classifier evaluates rules top to bottom; the first match wins.
type Classifier struct {
	rules    []Rule
	fallback Status
}

// NewClassifier builds the late, then mostly-proactive chain, falling back to Stable.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{
		rules: []Rule{
			{
				Name:   "late",
				Status: StatusAttention,
				Match:  func(m Metrics) bool { return m.MeanCompletionDays > t.MaxLatenessDays },
			},
			{
				Name:   "mostly-proactive",
				Status: StatusOptimal,
				Match:  func(m Metrics) bool { return m.ProactivePct > t.ProactivePctOptimal },
			},
		},
		fallback: StatusStable,
	}
}

// Rules returns a copy of the rule chain in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify returns the status of the first matching rule.
func (c *Classifier) Classify(m Metrics) Status {
	for _, r := range c.rules {
		if r.Match(m) {
			return r.Status
		}
	}
	return c.fallback
}

// ClassifyAggregate labels a monthly aggregate.
func (c *Classifier) ClassifyAggregate(a MonthlyAggregate) Status {
	return c.Classify(Metrics{MeanCompletionDays: a.MeanResolutionDays, ProactivePct: a.ProactivePct})
}

// ClassifyCase labels one case. Completion is the final resolution time, or
// the days open so far when the case is unresolved.
func (c *Classifier) ClassifyCase(r models.CaseRecord) Status {
	m := Metrics{}
	switch {
	case r.FinalResolution.Valid:
		m.MeanCompletionDays = r.FinalResolution.Float64
	case r.DaysOpen.Valid:
		m.MeanCompletionDays = r.DaysOpen.Float64
	}
	if r.IsProactive() {
		m.ProactivePct = 100
	}
	return c.Classify(m)
}
