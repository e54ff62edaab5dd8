package service

import (
	"math"
	"sort"
	"time"

	"github.com/godilite/caseops/internal/repository/models"
)

// CategoryCount is one bar of a categorical breakdown.
type CategoryCount struct {
	Name  string
	Count int
}

// DailyCount is the number of cases opened on one UTC day.
type DailyCount struct {
	Day   time.Time
	Count int
}

// Distribution is the five-number summary behind a box plot.
type Distribution struct {
	Count  int
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

type ageBucket struct {
	label string
	upper float64 // inclusive
}

var ageBuckets = []ageBucket{
	{label: "0-7 Days", upper: 7},
	{label: "8-30 Days", upper: 30},
	{label: "31-90 Days", upper: 90},
	{label: "90+ Days", upper: math.Inf(1)},
}

func countBy(records []models.CaseRecord, col models.Column) []CategoryCount {
	counts := make(map[string]int)
	for _, r := range records {
		v, _ := r.Value(col)
		if v == "" {
			continue
		}
		counts[v]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, CategoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// StatusBreakdown counts cases per status, largest first.
func StatusBreakdown(records []models.CaseRecord) []CategoryCount {
	return countBy(records, models.ColumnStatus)
}

// TechnologyCounts counts cases per technology, largest first.
func TechnologyCounts(records []models.CaseRecord) []CategoryCount {
	return countBy(records, models.ColumnTechnology)
}

// DailyTrend counts cases per opened calendar day in chronological order.
func DailyTrend(records []models.CaseRecord) []DailyCount {
	counts := make(map[time.Time]int)
	for _, r := range records {
		if r.OpenedAt.IsZero() {
			continue
		}
		t := r.OpenedAt.UTC()
		counts[time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)]++
	}
	out := make([]DailyCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, DailyCount{Day: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// AgingBuckets counts cases per days-open range. All buckets are always
// returned, in ascending order.
func AgingBuckets(records []models.CaseRecord) []CategoryCount {
	out := make([]CategoryCount, len(ageBuckets))
	for i, b := range ageBuckets {
		out[i].Name = b.label
	}
	for _, r := range records {
		if !r.DaysOpen.Valid {
			continue
		}
		for i, b := range ageBuckets {
			if r.DaysOpen.Float64 <= b.upper {
				out[i].Count++
				break
			}
		}
	}
	return out
}

// Describe summarises values using linear interpolation between closest ranks.
func Describe(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Distribution{
		Count:  len(sorted),
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func column(records []models.CaseRecord, pick func(models.CaseRecord) (float64, bool)) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := pick(r); ok {
			out = append(out, v)
		}
	}
	return out
}
