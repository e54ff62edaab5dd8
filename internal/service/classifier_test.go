package service

import (
	"math"
	"testing"

	"github.com/godilite/caseops/internal/repository/models"
	"github.com/stretchr/testify/assert"
)

func TestClassifier_Precedence(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	tests := []struct {
		name string
		m    Metrics
		want Status
	}{
		{"late and mostly proactive", Metrics{MeanCompletionDays: 20, ProactivePct: 80}, StatusAttention},
		{"late only", Metrics{MeanCompletionDays: 30, ProactivePct: 10}, StatusAttention},
		{"mostly proactive", Metrics{MeanCompletionDays: 5, ProactivePct: 80}, StatusOptimal},
		{"at lateness bound", Metrics{MeanCompletionDays: 18, ProactivePct: 0}, StatusStable},
		{"at proactive bound", Metrics{MeanCompletionDays: 1, ProactivePct: 50}, StatusStable},
		{"zero metrics", Metrics{}, StatusStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.m))
		})
	}
}

func TestClassifier_ConfigurableThresholds(t *testing.T) {
	m := Metrics{MeanCompletionDays: 10, ProactivePct: 40}

	assert.Equal(t, StatusStable, NewClassifier(DefaultThresholds()).Classify(m))
	assert.Equal(t, StatusAttention, NewClassifier(Thresholds{MaxLatenessDays: 7, ProactivePctOptimal: 50}).Classify(m))
	assert.Equal(t, StatusOptimal, NewClassifier(Thresholds{MaxLatenessDays: 18, ProactivePctOptimal: 30}).Classify(m))
}

func TestClassifier_Rules(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	rules := c.Rules()

	assert.Len(t, rules, 2)
	assert.Equal(t, "late", rules[0].Name)
	assert.Equal(t, StatusAttention, rules[0].Status)
	assert.Equal(t, "mostly-proactive", rules[1].Name)

	rules[0] = Rule{}
	assert.Equal(t, "late", c.Rules()[0].Name)
}

func TestClassifier_ClassifyCase(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	assert.Equal(t, StatusAttention, c.ClassifyCase(models.CaseRecord{FinalResolution: days(25), ContractType: "Proactive Monitoring"}))
	assert.Equal(t, StatusOptimal, c.ClassifyCase(models.CaseRecord{FinalResolution: days(3), ContractType: "Proactive Monitoring"}))
	assert.Equal(t, StatusStable, c.ClassifyCase(models.CaseRecord{FinalResolution: days(3), ContractType: "Reactive Support"}))
	// unresolved cases fall back to days open
	assert.Equal(t, StatusAttention, c.ClassifyCase(models.CaseRecord{DaysOpen: days(40)}))
	assert.Equal(t, StatusStable, c.ClassifyCase(models.CaseRecord{}))
}

func TestClassifier_ClassifyAggregate(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	assert.Equal(t, StatusAttention, c.ClassifyAggregate(MonthlyAggregate{MeanResolutionDays: 20, ProactivePct: 80}))
	assert.Equal(t, StatusOptimal, c.ClassifyAggregate(MonthlyAggregate{MeanResolutionDays: 2, ProactivePct: 75}))
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.NoError(t, Thresholds{}.Validate())

	bad := []Thresholds{
		{MaxLatenessDays: -1, ProactivePctOptimal: 50},
		{MaxLatenessDays: math.NaN(), ProactivePctOptimal: 50},
		{MaxLatenessDays: math.Inf(1), ProactivePctOptimal: 50},
		{MaxLatenessDays: 18, ProactivePctOptimal: 101},
		{MaxLatenessDays: 18, ProactivePctOptimal: -5},
		{MaxLatenessDays: 18, ProactivePctOptimal: math.NaN()},
	}
	for _, th := range bad {
		assert.ErrorIs(t, th.Validate(), ErrInvalidThreshold, "%+v", th)
	}
}
