package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/godilite/caseops/internal/repository"
	"github.com/godilite/caseops/internal/repository/models"
	"go.uber.org/zap"
)

const (
	loadTimeout = 30 * time.Second
)

var (
	ErrDataUnavailable  = errors.New("data could not be loaded")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrInvalidThreshold = errors.New("invalid threshold")
)

// DashboardService runs the load, filter, aggregate and classify pipeline
// against one case source.
type DashboardService struct {
	source     CaseSource
	cache      *DatasetCache
	thresholds Thresholds
	logger     *zap.Logger
}

// NewDashboardService creates a new DashboardService instance. A nil cache
// gets a process-local one without a remote tier.
func NewDashboardService(source CaseSource, cache *DatasetCache, thresholds Thresholds, logger *zap.Logger) *DashboardService {
	if source == nil {
		panic("source must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	if cache == nil {
		cache = NewDatasetCache(nil, 0, logger)
	}
	return &DashboardService{
		source:     source,
		cache:      cache,
		thresholds: thresholds,
		logger:     logger.Named("dashboard"),
	}
}

func (s *DashboardService) Thresholds() Thresholds {
	return s.thresholds
}

func (s *DashboardService) dataset(ctx context.Context) (*models.Dataset, error) {
	ds, err := s.cache.GetOrLoad(ctx, s.source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	return ds, nil
}

func (s *DashboardService) resolve(q DashboardQuery) (Thresholds, error) {
	if err := q.Selection.Validate(); err != nil {
		return Thresholds{}, err
	}
	t := s.thresholds
	if q.Thresholds != nil {
		t = *q.Thresholds
	}
	if err := t.Validate(); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}

// GetFilterOptions lists the selectable values of every filterable column
// from the unfiltered dataset.
func (s *DashboardService) GetFilterOptions(ctx context.Context) (*FilterOptionsResult, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return &FilterOptionsResult{
		Source:  ds.Source,
		NoData:  ds.Missing,
		Options: FilterOptions(ds.Records),
	}, nil
}

// GetDashboard builds every view of the filtered dataset.
func (s *DashboardService) GetDashboard(ctx context.Context, q DashboardQuery) (*Dashboard, error) {
	t, err := s.resolve(q)
	if err != nil {
		return nil, err
	}
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}

	filtered := ApplyFilters(ds.Records, q.Selection)
	classifier := NewClassifier(t)

	cases := make([]LabeledCase, len(filtered))
	for i, r := range filtered {
		cases[i] = LabeledCase{Record: r, Status: classifier.ClassifyCase(r)}
	}

	kpis := ComputeKPIs(filtered)
	d := &Dashboard{
		Source:           ds.Source,
		NoData:           ds.Missing,
		Stats:            ds.Stats,
		Thresholds:       t,
		Cases:            cases,
		KPIs:             kpis,
		Display:          kpis.Display(),
		StatusBreakdown:  StatusBreakdown(filtered),
		TechnologyCounts: TechnologyCounts(filtered),
		DailyTrend:       DailyTrend(filtered),
		AgingBuckets:     AgingBuckets(filtered),
		InitialResponse:  Describe(column(filtered, initialResponse)),
		DaysOpen:         Describe(column(filtered, daysOpen)),
		Monthly:          monthly(ds, filtered, classifier, t),
	}

	s.logger.Debug("dashboard built",
		zap.String("source", ds.Source),
		zap.Int("rows", len(ds.Records)),
		zap.Int("filtered", len(filtered)),
		zap.Int("months", len(d.Monthly.Aggregates)))

	return d, nil
}

// GetMonthlyAggregates returns only the classified monthly buckets.
func (s *DashboardService) GetMonthlyAggregates(ctx context.Context, q DashboardQuery) (*MonthlyResult, error) {
	t, err := s.resolve(q)
	if err != nil {
		return nil, err
	}
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	res := monthly(ds, ApplyFilters(ds.Records, q.Selection), NewClassifier(t), t)
	return &res, nil
}

// ExportCSV writes the filtered records with the dataset's header and
// returns the number of records written.
func (s *DashboardService) ExportCSV(ctx context.Context, sel Selection, w io.Writer) (int, error) {
	if err := sel.Validate(); err != nil {
		return 0, err
	}
	ds, err := s.dataset(ctx)
	if err != nil {
		return 0, err
	}
	filtered := ApplyFilters(ds.Records, sel)
	if err := repository.WriteCSV(w, ds.Header, filtered); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	s.logger.Info("cases exported", zap.String("source", ds.Source), zap.Int("rows", len(filtered)))
	return len(filtered), nil
}

func monthly(ds *models.Dataset, filtered []models.CaseRecord, classifier *Classifier, t Thresholds) MonthlyResult {
	aggs, skipped := BucketMonthly(filtered)
	res := MonthlyResult{
		Source:     ds.Source,
		NoData:     ds.Missing,
		Thresholds: t,
		Aggregates: make([]MonthlyAggregate, 0, len(aggs)),
		Skipped:    skipped,
	}
	for _, a := range aggs {
		if t.ExcludeLate && a.MeanResolutionDays > t.MaxLatenessDays {
			res.Excluded++
			continue
		}
		a.Status = classifier.ClassifyAggregate(a)
		res.Aggregates = append(res.Aggregates, a)
	}
	return res
}

func initialResponse(r models.CaseRecord) (float64, bool) {
	return r.InitialResponse.Float64, r.InitialResponse.Valid
}

func daysOpen(r models.CaseRecord) (float64, bool) {
	return r.DaysOpen.Float64, r.DaysOpen.Valid
}
