package mocks

import (
	"context"
	"errors"
	"io"

	"github.com/godilite/caseops/internal/service"
)

// MockDashboardService is a mock implementation of the DashboardService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockDashboardService struct {
	GetFilterOptionsFunc     func(ctx context.Context) (*service.FilterOptionsResult, error)
	GetDashboardFunc         func(ctx context.Context, q service.DashboardQuery) (*service.Dashboard, error)
	GetMonthlyAggregatesFunc func(ctx context.Context, q service.DashboardQuery) (*service.MonthlyResult, error)
	ExportCSVFunc            func(ctx context.Context, sel service.Selection, w io.Writer) (int, error)
}

// GetFilterOptions implements the DashboardService interface
func (m *MockDashboardService) GetFilterOptions(ctx context.Context) (*service.FilterOptionsResult, error) {
	if m.GetFilterOptionsFunc != nil {
		return m.GetFilterOptionsFunc(ctx)
	}
	return nil, errors.New("GetFilterOptionsFunc not implemented")
}

// GetDashboard implements the DashboardService interface
func (m *MockDashboardService) GetDashboard(ctx context.Context, q service.DashboardQuery) (*service.Dashboard, error) {
	if m.GetDashboardFunc != nil {
		return m.GetDashboardFunc(ctx, q)
	}
	return nil, errors.New("GetDashboardFunc not implemented")
}

// GetMonthlyAggregates implements the DashboardService interface
func (m *MockDashboardService) GetMonthlyAggregates(ctx context.Context, q service.DashboardQuery) (*service.MonthlyResult, error) {
	if m.GetMonthlyAggregatesFunc != nil {
		return m.GetMonthlyAggregatesFunc(ctx, q)
	}
	return nil, errors.New("GetMonthlyAggregatesFunc not implemented")
}

// ExportCSV implements the DashboardService interface
func (m *MockDashboardService) ExportCSV(ctx context.Context, sel service.Selection, w io.Writer) (int, error) {
	if m.ExportCSVFunc != nil {
		return m.ExportCSVFunc(ctx, sel, w)
	}
	return 0, errors.New("ExportCSVFunc not implemented")
}
