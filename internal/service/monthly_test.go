package service

import (
	"testing"
	"time"

	"github.com/godilite/caseops/internal/repository/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketMonthly(t *testing.T) {
	t.Run("same month merges", func(t *testing.T) {
		out, skipped := BucketMonthly([]models.CaseRecord{
			{Technology: "Cloud", Priority: "P1", OpenedAt: date(2025, 3, 2), InitialResponse: days(30), FinalResolution: days(4), ContractType: "Proactive Monitoring"},
			{Technology: "Cloud", Priority: "P4", OpenedAt: date(2025, 3, 28), InitialResponse: days(90), FinalResolution: days(8), ContractType: "Reactive Support"},
		})
		assert.Zero(t, skipped)
		require.Len(t, out, 1)

		a := out[0]
		assert.Equal(t, date(2025, 3, 1), a.Month)
		assert.Equal(t, "Mar 2025", a.Label)
		assert.Equal(t, 2, a.TotalRequests)
		assert.Equal(t, 1, a.HighPriority)
		assert.InDelta(t, 60.0, a.MeanInitialResponse, 1e-9)
		assert.InDelta(t, 6.0, a.MeanResolutionDays, 1e-9)
		assert.Equal(t, 1, a.ProactiveCount)
		assert.Equal(t, 1, a.ReactiveCount)
		assert.InDelta(t, 50.0, a.ProactivePct, 1e-9)
		assert.InDelta(t, 100.0/6.0, a.EfficiencyScore, 1e-9)
	})

	t.Run("chronological order", func(t *testing.T) {
		out, _ := BucketMonthly([]models.CaseRecord{
			{Technology: "Cloud", OpenedAt: date(2025, 2, 10)},
			{Technology: "Network", OpenedAt: date(2024, 12, 5)},
			{Technology: "Cloud", OpenedAt: date(2025, 1, 20)},
			{Technology: "Aardvark", OpenedAt: date(2025, 1, 3)},
		})
		require.Len(t, out, 4)
		labels := make([]string, len(out))
		for i, a := range out {
			labels[i] = a.Label + "/" + a.Technology
		}
		assert.Equal(t, []string{"Dec 2024/Network", "Jan 2025/Aardvark", "Jan 2025/Cloud", "Feb 2025/Cloud"}, labels)
	})

	t.Run("ratios are computed after aggregation", func(t *testing.T) {
		records := []models.CaseRecord{
			{Technology: "Cloud", OpenedAt: date(2025, 1, 1), ContractType: "Proactive"},
			{Technology: "Cloud", OpenedAt: date(2025, 1, 2)},
			{Technology: "Cloud", OpenedAt: date(2025, 1, 3)},
		}
		out, _ := BucketMonthly(records)
		require.Len(t, out, 1)
		assert.InDelta(t, 100.0/3.0, out[0].ProactivePct, 1e-9)
	})

	t.Run("reactive plus proactive equals total", func(t *testing.T) {
		var records []models.CaseRecord
		for i := 0; i < 20; i++ {
			r := models.CaseRecord{
				Technology: []string{"Cloud", "Network", "Security"}[i%3],
				OpenedAt:   date(2025, time.Month(1+i%4), 1+i),
			}
			if i%2 == 0 {
				r.ContractType = "Proactive Monitoring"
			}
			records = append(records, r)
		}
		out, _ := BucketMonthly(records)
		for _, a := range out {
			assert.Equal(t, a.TotalRequests, a.ProactiveCount+a.ReactiveCount)
		}
	})

	t.Run("undated records are skipped", func(t *testing.T) {
		out, skipped := BucketMonthly([]models.CaseRecord{
			{Technology: "Cloud"},
			{Technology: "Cloud", OpenedAt: date(2025, 1, 1)},
		})
		assert.Equal(t, 1, skipped)
		require.Len(t, out, 1)
		assert.Zero(t, out[0].EfficiencyScore)
	})

	t.Run("empty input", func(t *testing.T) {
		out, skipped := BucketMonthly(nil)
		assert.Empty(t, out)
		assert.Zero(t, skipped)
	})
}
