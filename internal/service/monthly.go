package service

import (
	"sort"
	"time"

	"github.com/godilite/caseops/internal/repository/models"
)

// MonthlyAggregate is one (month, technology) bucket of cases.
type MonthlyAggregate struct {
	Month               time.Time
	Label               string
	Technology          string
	TotalRequests       int
	HighPriority        int
	MeanInitialResponse float64
	MeanResolutionDays  float64
	ProactiveCount      int
	ReactiveCount       int
	ProactivePct        float64
	EfficiencyScore     float64
	Status              Status
}

type monthKey struct {
	month      time.Time
	technology string
}

type monthAcc struct {
	total, high, proactive int
	initial, resolution    mean
}

// BucketMonthly groups records by opened month and technology. Buckets are
// ordered by month start, then technology. Records without an opened date
// are skipped and counted.
func BucketMonthly(records []models.CaseRecord) (out []MonthlyAggregate, skipped int) {
	groups := make(map[monthKey]*monthAcc)
	for _, r := range records {
		if r.OpenedAt.IsZero() {
			skipped++
			continue
		}
		key := monthKey{month: monthStart(r.OpenedAt), technology: r.Technology}
		acc, ok := groups[key]
		if !ok {
			acc = &monthAcc{}
			groups[key] = acc
		}
		acc.total++
		if r.IsHighPriority() {
			acc.high++
		}
		if r.IsProactive() {
			acc.proactive++
		}
		acc.initial.add(r.InitialResponse)
		acc.resolution.add(r.FinalResolution)
	}

	keys := make([]monthKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].month.Equal(keys[j].month) {
			return keys[i].month.Before(keys[j].month)
		}
		return keys[i].technology < keys[j].technology
	})

	out = make([]MonthlyAggregate, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		agg := MonthlyAggregate{
			Month:               k.month,
			Label:               formatMonth(k.month),
			Technology:          k.technology,
			TotalRequests:       acc.total,
			HighPriority:        acc.high,
			MeanInitialResponse: acc.initial.value(),
			MeanResolutionDays:  acc.resolution.value(),
			ProactiveCount:      acc.proactive,
			ReactiveCount:       acc.total - acc.proactive,
		}
		if acc.total > 0 {
			agg.ProactivePct = float64(acc.proactive) / float64(acc.total) * 100
		}
		if agg.MeanResolutionDays > 0 {
			agg.EfficiencyScore = 100 / agg.MeanResolutionDays
		}
		out = append(out, agg)
	}
	return out, skipped
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func formatMonth(t time.Time) string {
	return t.Format("Jan 2006")
}
