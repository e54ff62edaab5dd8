package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/godilite/caseops/internal/repository"
	"github.com/godilite/caseops/internal/repository/models"
	"github.com/godilite/caseops/internal/service"
	"github.com/godilite/caseops/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const scenarioCSV = `Technology,Status,Priority,Opened Date,Closed Date,Days Open,Initial Response Time (minutes),Final Resolution Time (days),RMA Count,Case Owner,Contract Type
Cloud,Open,P1,2025-01-04,,5,30,,0,Avery,Proactive Monitoring
Network,Closed,P3,2025-01-10,2025-01-22,12,45,12,1,Jordan,Reactive Support
Cloud,Open,P2,2025-02-01,,45,120,,2,Riley,Reactive Support
`

func newService(t *testing.T, src service.CaseSource) *service.DashboardService {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return service.NewDashboardService(src, service.NewDatasetCache(nil, 0, logger), service.DefaultThresholds(), logger)
}

func scenarioSource(t *testing.T) *repository.CSVCaseSource {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.csv")
	require.NoError(t, os.WriteFile(path, []byte(scenarioCSV), 0o600))
	return repository.NewCSVCaseSource(path)
}

func TestNewDashboardService(t *testing.T) {
	assert.Panics(t, func() {
		service.NewDashboardService(nil, nil, service.DefaultThresholds(), nil)
	})

	s := service.NewDashboardService(&mocks.MockCaseSource{}, nil, service.DefaultThresholds(), nil)
	assert.Equal(t, service.DefaultThresholds(), s.Thresholds())
}

func TestGetDashboard_Scenario(t *testing.T) {
	s := newService(t, scenarioSource(t))

	d, err := s.GetDashboard(context.Background(), service.DashboardQuery{
		Selection: service.Selection{models.ColumnTechnology: {"Cloud"}},
	})
	require.NoError(t, err)

	assert.False(t, d.NoData)
	require.Len(t, d.Cases, 2)
	assert.Equal(t, 2, d.KPIs.TotalCount)
	assert.Equal(t, 2, d.KPIs.OpenCount)
	assert.InDelta(t, 25.0, d.KPIs.AvgDaysOpen, 1e-9)
	assert.Equal(t, int64(2), d.KPIs.TotalRMA)

	assert.Equal(t, []service.CategoryCount{{Name: "Cloud", Count: 2}}, d.TechnologyCounts)
	assert.Equal(t, "0-7 Days", d.AgingBuckets[0].Name)
	assert.Equal(t, 1, d.AgingBuckets[0].Count)
	assert.Equal(t, 1, d.AgingBuckets[2].Count)
	assert.Equal(t, 2, d.DaysOpen.Count)
	assert.Len(t, d.DailyTrend, 2)

	// Optimal: proactive; Attention: 45 days open
	assert.Equal(t, service.StatusOptimal, d.Cases[0].Status)
	assert.Equal(t, service.StatusAttention, d.Cases[1].Status)

	require.Len(t, d.Monthly.Aggregates, 2)
	assert.Equal(t, "Jan 2025", d.Monthly.Aggregates[0].Label)
	assert.Equal(t, "Feb 2025", d.Monthly.Aggregates[1].Label)
	assert.Equal(t, service.StatusOptimal, d.Monthly.Aggregates[0].Status)
}

func TestGetDashboard_EmptyFilter(t *testing.T) {
	s := newService(t, scenarioSource(t))

	d, err := s.GetDashboard(context.Background(), service.DashboardQuery{
		Selection: service.Selection{models.ColumnTechnology: {}},
	})
	require.NoError(t, err)

	assert.Empty(t, d.Cases)
	assert.Equal(t, 0, d.KPIs.TotalCount)
	assert.Zero(t, d.KPIs.AvgDaysOpen)
	assert.Zero(t, d.KPIs.TotalRMA)
	assert.Empty(t, d.Monthly.Aggregates)
	assert.Len(t, d.AgingBuckets, 4)
	assert.Equal(t, service.Distribution{}, d.InitialResponse)
}

func TestGetDashboard_MissingSource(t *testing.T) {
	src := repository.NewCSVCaseSource(filepath.Join(t.TempDir(), "absent.csv"))
	s := newService(t, src)

	d, err := s.GetDashboard(context.Background(), service.DashboardQuery{})
	require.NoError(t, err)
	assert.True(t, d.NoData)
	assert.Zero(t, d.KPIs.TotalCount)

	opts, err := s.GetFilterOptions(context.Background())
	require.NoError(t, err)
	assert.True(t, opts.NoData)
	assert.Empty(t, opts.Options[models.ColumnTechnology])
}

func TestGetDashboard_Validation(t *testing.T) {
	s := newService(t, scenarioSource(t))
	ctx := context.Background()

	_, err := s.GetDashboard(ctx, service.DashboardQuery{
		Selection: service.Selection{models.ColumnRMACount: {"1"}},
	})
	assert.ErrorIs(t, err, service.ErrInvalidSelection)

	_, err = s.GetDashboard(ctx, service.DashboardQuery{
		Thresholds: &service.Thresholds{MaxLatenessDays: -3, ProactivePctOptimal: 50},
	})
	assert.ErrorIs(t, err, service.ErrInvalidThreshold)

	_, err = s.GetMonthlyAggregates(ctx, service.DashboardQuery{
		Thresholds: &service.Thresholds{MaxLatenessDays: 18, ProactivePctOptimal: 150},
	})
	assert.ErrorIs(t, err, service.ErrInvalidThreshold)
}

func TestGetDashboard_UnreadableSource(t *testing.T) {
	src := &mocks.MockCaseSource{
		LoadFunc: func(ctx context.Context) (*models.Dataset, error) {
			return nil, repository.ErrUnreadableSource
		},
	}
	s := newService(t, src)

	_, err := s.GetDashboard(context.Background(), service.DashboardQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrDataUnavailable)
	assert.ErrorIs(t, err, repository.ErrUnreadableSource)
}

func TestGetDashboard_Canceled(t *testing.T) {
	src := &mocks.MockCaseSource{
		LoadFunc: func(ctx context.Context) (*models.Dataset, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	s := newService(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.GetDashboard(ctx, service.DashboardQuery{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGetDashboard_PeerCancellationIsNotUnavailable(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	src := &mocks.MockCaseSource{
		LoadFunc: func(ctx context.Context) (*models.Dataset, error) {
			close(started)
			select {
			case <-release:
				return &models.Dataset{Header: models.CanonicalHeader, Records: []models.CaseRecord{
					{Technology: "Cloud", Status: "Open", Priority: "P1"},
				}}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	s := service.NewDashboardService(src, nil, service.DefaultThresholds(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	canceled := make(chan error, 1)
	go func() {
		_, err := s.GetDashboard(ctx, service.DashboardQuery{})
		canceled <- err
	}()
	<-started

	waiter := make(chan error, 1)
	go func() {
		d, err := s.GetDashboard(context.Background(), service.DashboardQuery{})
		if err == nil && d.KPIs.TotalCount != 1 {
			err = errors.New("unexpected case count")
		}
		waiter <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	err := <-canceled
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, service.ErrDataUnavailable)

	close(release)
	require.NoError(t, <-waiter)
}

func TestGetMonthlyAggregates(t *testing.T) {
	s := newService(t, scenarioSource(t))
	ctx := context.Background()

	res, err := s.GetMonthlyAggregates(ctx, service.DashboardQuery{})
	require.NoError(t, err)
	require.Len(t, res.Aggregates, 3)
	for _, a := range res.Aggregates {
		assert.Equal(t, a.TotalRequests, a.ProactiveCount+a.ReactiveCount)
	}
	assert.Equal(t, "Network", res.Aggregates[1].Technology)

	// Network in January resolved in 12 days; a 10 day bound drops it from
	// the view and labels nothing else late.
	th := service.Thresholds{MaxLatenessDays: 10, ProactivePctOptimal: 50, ExcludeLate: true}
	res, err = s.GetMonthlyAggregates(ctx, service.DashboardQuery{Thresholds: &th})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Excluded)
	require.Len(t, res.Aggregates, 2)
	for _, a := range res.Aggregates {
		assert.NotEqual(t, service.StatusAttention, a.Status)
	}

	th.ExcludeLate = false
	res, err = s.GetMonthlyAggregates(ctx, service.DashboardQuery{Thresholds: &th})
	require.NoError(t, err)
	require.Len(t, res.Aggregates, 3)
	assert.Equal(t, service.StatusAttention, res.Aggregates[1].Status)
}

func TestExportCSV_RoundTrip(t *testing.T) {
	s := newService(t, repository.NewEmbeddedCaseSource())
	ctx := context.Background()

	sel := service.Selection{models.ColumnTechnology: {"Cloud", "Network"}}
	var buf bytes.Buffer
	n, err := s.ExportCSV(ctx, sel, &buf)
	require.NoError(t, err)
	require.Positive(t, n)

	d, err := s.GetDashboard(ctx, service.DashboardQuery{Selection: sel})
	require.NoError(t, err)
	assert.Equal(t, len(d.Cases), n)

	reloaded, err := repository.ParseCSV(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, reloaded.Records, n)
	for i, lc := range d.Cases {
		assert.Equal(t, lc.Record, reloaded.Records[i])
	}

	_, err = s.ExportCSV(ctx, service.Selection{"Region": {"EMEA"}}, &bytes.Buffer{})
	assert.ErrorIs(t, err, service.ErrInvalidSelection)

	firstLine := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.True(t, strings.HasPrefix(firstLine, "Technology,"))
}
