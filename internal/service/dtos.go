package service

import "github.com/godilite/caseops/internal/repository/models"

// DashboardQuery narrows a dashboard request. A nil Thresholds uses the
// service defaults.
type DashboardQuery struct {
	Selection  Selection
	Thresholds *Thresholds
}

type FilterOptionsResult struct {
	Source  string
	NoData  bool
	Options map[models.Column][]string
}

// LabeledCase is a filtered record with its individual status label.
type LabeledCase struct {
	Record models.CaseRecord
	Status Status
}

type MonthlyResult struct {
	Source     string
	NoData     bool
	Thresholds Thresholds
	Aggregates []MonthlyAggregate
	// Skipped counts filtered records without an opened date.
	Skipped int
	// Excluded counts aggregates dropped by Thresholds.ExcludeLate.
	Excluded int
}

type Dashboard struct {
	Source     string
	NoData     bool
	Stats      models.LoadStats
	Thresholds Thresholds

	Cases   []LabeledCase
	KPIs    KPIs
	Display []DisplayKPI

	StatusBreakdown  []CategoryCount
	TechnologyCounts []CategoryCount
	DailyTrend       []DailyCount
	AgingBuckets     []CategoryCount
	InitialResponse  Distribution
	DaysOpen         Distribution

	Monthly MonthlyResult
}
