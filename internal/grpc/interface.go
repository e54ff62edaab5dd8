package grpc

import (
	"context"
	"io"

	"github.com/godilite/caseops/internal/service"
)

type DashboardService interface {
	GetFilterOptions(ctx context.Context) (*service.FilterOptionsResult, error)
	GetDashboard(ctx context.Context, q service.DashboardQuery) (*service.Dashboard, error)
	GetMonthlyAggregates(ctx context.Context, q service.DashboardQuery) (*service.MonthlyResult, error)
	ExportCSV(ctx context.Context, sel service.Selection, w io.Writer) (int, error)
}
