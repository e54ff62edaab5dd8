package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/godilite/caseops/internal/config"
	"github.com/godilite/caseops/internal/repository"
	"github.com/godilite/caseops/internal/service"
	dbbuilder "github.com/godilite/caseops/pkg/database"
	"go.uber.org/zap"
)

// Source is the configured case source plus the resources it holds open.
type Source struct {
	service.CaseSource
	// Store is set when the source is backed by SQL.
	Store *repository.SQLCaseRepository
	db    *sql.DB
}

// OpenSource builds the case source selected by cfg.DataSource.
func OpenSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Source, error) {
	switch cfg.DataSource {
	case config.SourceEmbedded:
		logger.Info("using embedded sample dataset")
		return &Source{CaseSource: repository.NewEmbeddedCaseSource()}, nil

	case config.SourceSQL:
		store, db, err := OpenStore(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Source{CaseSource: store, Store: store, db: db}, nil

	case config.SourceCSV, "":
		if _, err := repository.LookupEncoding(cfg.CasesFallbackEncoding); err != nil {
			return nil, fmt.Errorf("fallback encoding: %w", err)
		}
		logger.Info("using csv dataset",
			zap.String("path", cfg.CasesPath),
			zap.String("fallback_encoding", cfg.CasesFallbackEncoding))
		return &Source{
			CaseSource: repository.NewCSVCaseSource(cfg.CasesPath,
				repository.WithFallbackEncoding(cfg.CasesFallbackEncoding)),
		}, nil

	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}

// OpenStore opens and migrates the SQL case store.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repository.SQLCaseRepository, *sql.DB, error) {
	db, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("driver", cfg.DBDriver))

	store := repository.NewSQLCaseRepository(db, cfg.DBDriver, "cases")
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, db, nil
}

func (s *Source) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
