package grpc

import (
	"bytes"
	"context"
	"errors"
	"time"

	pb "github.com/godilite/caseops/api/v1"
	"github.com/godilite/caseops/internal/repository/models"
	"github.com/godilite/caseops/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultGRPCTimeout = 30 * time.Second
	exportFilename     = "filtered_cases.csv"
	dateLayout         = "2006-01-02"
)

type GRPCHandlers struct {
	pb.UnimplementedCaseDashboardServer
	dashboard DashboardService
	logger    *zap.Logger
}

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(dashboard DashboardService, logger *zap.Logger) *GRPCHandlers {
	if dashboard == nil {
		panic("nil DashboardService provided to NewGRPCHandlers")
	}
	return &GRPCHandlers{
		dashboard: dashboard,
		logger:    logger.Named("grpc-handler"),
	}
}

func toSelection(in pb.Selections) service.Selection {
	if in == nil {
		return nil
	}
	sel := make(service.Selection, len(in))
	for col, values := range in {
		sel[models.Column(col)] = values
	}
	return sel
}

func toQuery(req *pb.DashboardRequest) service.DashboardQuery {
	q := service.DashboardQuery{Selection: toSelection(req.GetSelections())}
	if t := req.GetThresholds(); t != nil {
		q.Thresholds = &service.Thresholds{
			MaxLatenessDays:     t.MaxLatenessDays,
			ProactivePctOptimal: t.ProactivePctOptimal,
			ExcludeLate:         t.ExcludeLate,
		}
	}
	return q
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrInvalidSelection), errors.Is(err, service.ErrInvalidThreshold):
		s.logger.Info("invalid request", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrDataUnavailable):
		s.logger.Error("data unavailable", zap.String("op", op), zap.Error(err))
		return status.Error(codes.FailedPrecondition, "data could not be loaded")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) GetFilterOptions(ctx context.Context, _ *pb.FilterOptionsRequest) (*pb.FilterOptionsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	res, err := s.dashboard.GetFilterOptions(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "GetFilterOptions", err)
	}

	options := make([]*pb.FilterOption, 0, len(service.FilterableColumns))
	for _, col := range service.FilterableColumns {
		values := res.Options[col]
		if values == nil {
			values = []string{}
		}
		options = append(options, &pb.FilterOption{Column: string(col), Values: values})
	}
	return &pb.FilterOptionsResponse{Source: res.Source, NoData: res.NoData, Options: options}, nil
}

func (s *GRPCHandlers) GetDashboard(ctx context.Context, req *pb.DashboardRequest) (*pb.DashboardResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	d, err := s.dashboard.GetDashboard(ctx, toQuery(req))
	if err != nil {
		return nil, s.handleError(ctx, "GetDashboard", err)
	}

	kpis := make([]*pb.Kpi, len(d.Display))
	for i, k := range d.Display {
		kpis[i] = &pb.Kpi{Key: k.Key, Label: k.Label, Value: k.Value}
	}

	cases := make([]*pb.Case, len(d.Cases))
	for i, c := range d.Cases {
		cases[i] = mapToProtoCase(c)
	}

	trend := make([]*pb.DailyCount, len(d.DailyTrend))
	for i, dc := range d.DailyTrend {
		trend[i] = &pb.DailyCount{Day: dc.Day.Format(dateLayout), Count: int64(dc.Count)}
	}

	return &pb.DashboardResponse{
		Source: d.Source,
		NoData: d.NoData,
		Stats: &pb.LoadStats{
			Rows:                int64(d.Stats.Rows),
			CoercedDates:        int64(d.Stats.CoercedDates),
			CoercedNumbers:      int64(d.Stats.CoercedNumbers),
			InvariantViolations: int64(d.Stats.InvariantViolations),
			Encoding:            d.Stats.Encoding,
		},
		Kpis:             kpis,
		Cases:            cases,
		StatusBreakdown:  mapToProtoCounts(d.StatusBreakdown),
		TechnologyCounts: mapToProtoCounts(d.TechnologyCounts),
		DailyTrend:       trend,
		AgingBuckets:     mapToProtoCounts(d.AgingBuckets),
		InitialResponse:  mapToProtoDistribution(d.InitialResponse),
		DaysOpen:         mapToProtoDistribution(d.DaysOpen),
		Monthly:          mapToProtoMonthly(&d.Monthly),
	}, nil
}

func (s *GRPCHandlers) GetMonthlyAggregates(ctx context.Context, req *pb.DashboardRequest) (*pb.MonthlyAggregatesResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	res, err := s.dashboard.GetMonthlyAggregates(ctx, toQuery(req))
	if err != nil {
		return nil, s.handleError(ctx, "GetMonthlyAggregates", err)
	}
	return mapToProtoMonthly(res), nil
}

func (s *GRPCHandlers) ExportCases(ctx context.Context, req *pb.ExportRequest) (*pb.ExportResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	var buf bytes.Buffer
	n, err := s.dashboard.ExportCSV(ctx, toSelection(req.GetSelections()), &buf)
	if err != nil {
		return nil, s.handleError(ctx, "ExportCases", err)
	}
	return &pb.ExportResponse{Filename: exportFilename, Rows: int64(n), Csv: buf.Bytes()}, nil
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func mapToProtoCase(c service.LabeledCase) *pb.Case {
	r := c.Record
	return &pb.Case{
		Technology:             r.Technology,
		Status:                 r.Status,
		Priority:               r.Priority,
		OpenedDate:             formatDay(r.OpenedAt),
		ClosedDate:             formatDay(r.ClosedAt),
		DaysOpen:               optional(r.DaysOpen.Float64, r.DaysOpen.Valid),
		InitialResponseMinutes: optional(r.InitialResponse.Float64, r.InitialResponse.Valid),
		FinalResolutionDays:    optional(r.FinalResolution.Float64, r.FinalResolution.Valid),
		RmaCount:               r.RMACount,
		Owner:                  r.Owner,
		ContractType:           r.ContractType,
		Label:                  string(c.Status),
	}
}

func mapToProtoCounts(counts []service.CategoryCount) []*pb.CategoryCount {
	out := make([]*pb.CategoryCount, len(counts))
	for i, c := range counts {
		out[i] = &pb.CategoryCount{Name: c.Name, Count: int64(c.Count)}
	}
	return out
}

func mapToProtoDistribution(d service.Distribution) *pb.Distribution {
	return &pb.Distribution{
		Count:  int64(d.Count),
		Min:    d.Min,
		Q1:     d.Q1,
		Median: d.Median,
		Q3:     d.Q3,
		Max:    d.Max,
	}
}

func mapToProtoMonthly(res *service.MonthlyResult) *pb.MonthlyAggregatesResponse {
	aggs := make([]*pb.MonthlyAggregate, len(res.Aggregates))
	for i, a := range res.Aggregates {
		aggs[i] = &pb.MonthlyAggregate{
			Month:               a.Month.Format("2006-01"),
			Label:               a.Label,
			Technology:          a.Technology,
			TotalRequests:       int64(a.TotalRequests),
			HighPriority:        int64(a.HighPriority),
			MeanInitialResponse: a.MeanInitialResponse,
			MeanResolutionDays:  a.MeanResolutionDays,
			ProactiveCount:      int64(a.ProactiveCount),
			ReactiveCount:       int64(a.ReactiveCount),
			ProactivePct:        a.ProactivePct,
			EfficiencyScore:     a.EfficiencyScore,
			Status:              string(a.Status),
		}
	}
	return &pb.MonthlyAggregatesResponse{
		Source: res.Source,
		NoData: res.NoData,
		Thresholds: &pb.Thresholds{
			MaxLatenessDays:     res.Thresholds.MaxLatenessDays,
			ProactivePctOptimal: res.Thresholds.ProactivePctOptimal,
			ExcludeLate:         res.Thresholds.ExcludeLate,
		},
		Aggregates: aggs,
		Skipped:    int64(res.Skipped),
		Excluded:   int64(res.Excluded),
	}
}
