package service

import (
	"database/sql"
	"math"

	"github.com/godilite/caseops/internal/repository/models"
)

// KPIs are the unrounded summary statistics of a filtered view.
type KPIs struct {
	TotalCount         int
	OpenCount          int
	AvgDaysOpen        float64
	AvgInitialResponse float64
	AvgResolutionDays  float64
	TotalRMA           int64
}

// DisplayKPI is one rounded card value handed to the presentation layer.
type DisplayKPI struct {
	Key   string
	Label string
	Value float64
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v sql.NullFloat64) {
	if !v.Valid {
		return
	}
	m.sum += v.Float64
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

// ComputeKPIs aggregates records. Means skip null values and are 0 for an empty input.
func ComputeKPIs(records []models.CaseRecord) KPIs {
	var k KPIs
	var daysOpen, initial, resolution mean
	for _, r := range records {
		k.TotalCount++
		if !r.IsClosed() {
			k.OpenCount++
		}
		daysOpen.add(r.DaysOpen)
		initial.add(r.InitialResponse)
		resolution.add(r.FinalResolution)
		k.TotalRMA += r.RMACount
	}
	k.AvgDaysOpen = daysOpen.value()
	k.AvgInitialResponse = initial.value()
	k.AvgResolutionDays = resolution.value()
	return k
}

// Display returns the card values rounded to one decimal place.
func (k KPIs) Display() []DisplayKPI {
	return []DisplayKPI{
		{Key: "total_cases", Label: "Total SRs", Value: float64(k.TotalCount)},
		{Key: "open_cases", Label: "Open Cases", Value: float64(k.OpenCount)},
		{Key: "avg_days_open", Label: "Avg Days Open", Value: round1(k.AvgDaysOpen)},
		{Key: "avg_initial_response", Label: "Avg IRT (min)", Value: round1(k.AvgInitialResponse)},
		{Key: "avg_resolution_days", Label: "Avg Resolution Days", Value: round1(k.AvgResolutionDays)},
		{Key: "total_rma", Label: "Total RMA", Value: float64(k.TotalRMA)},
	}
}

func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*10) / 10
}
