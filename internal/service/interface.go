package service

import (
	"context"
	"time"

	"github.com/godilite/caseops/internal/repository/models"
)

// CaseSource is a backing store for the raw case dataset.
type CaseSource interface {
	// Name is stable for the lifetime of the source.
	Name() string
	// Identity changes whenever the underlying data changes.
	Identity(ctx context.Context) (string, error)
	Load(ctx context.Context) (*models.Dataset, error)
}

// Cacher is the shared second-tier cache for parsed datasets.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}
