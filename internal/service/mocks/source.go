package mocks

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/godilite/caseops/internal/repository/models"
)

// MockCaseSource is a mock implementation of the CaseSource interface.
// It counts Load calls so tests can assert on caching.
type MockCaseSource struct {
	NameValue    string
	IdentityFunc func(ctx context.Context) (string, error)
	LoadFunc     func(ctx context.Context) (*models.Dataset, error)

	loads atomic.Int64
}

// Name implements the CaseSource interface
func (m *MockCaseSource) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "mock"
}

// Identity implements the CaseSource interface
func (m *MockCaseSource) Identity(ctx context.Context) (string, error) {
	if m.IdentityFunc != nil {
		return m.IdentityFunc(ctx)
	}
	return "mock:1", nil
}

// Load implements the CaseSource interface
func (m *MockCaseSource) Load(ctx context.Context) (*models.Dataset, error) {
	m.loads.Add(1)
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return nil, errors.New("LoadFunc not implemented")
}

func (m *MockCaseSource) Loads() int64 {
	return m.loads.Load()
}
