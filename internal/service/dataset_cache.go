package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/godilite/caseops/internal/repository/models"
	"github.com/godilite/caseops/pkg/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultDatasetTTL = 30 * time.Minute
	defaultSetTimeout = 5 * time.Second
	cacheKeyDataset   = "dataset:"
)

type datasetEntry struct {
	identity string
	dataset  *models.Dataset
}

// DatasetCache memoizes loaded datasets keyed by source identity. Entries are
// shared read-only between requests; a new identity for the same source
// replaces the previous entry. The optional remote tier lets replicas share
// a parsed dataset.
type DatasetCache struct {
	mu      sync.RWMutex
	entries map[string]datasetEntry
	sf      singleflight.Group
	remote  Cacher
	ttl     time.Duration
	logger  *zap.Logger
}

func NewDatasetCache(remote Cacher, ttl time.Duration, logger *zap.Logger) *DatasetCache {
	if ttl <= 0 {
		ttl = defaultDatasetTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetCache{
		entries: make(map[string]datasetEntry),
		remote:  remote,
		ttl:     ttl,
		logger:  logger.Named("dataset-cache"),
	}
}

// addTTLJitter spreads remote expirations by up to ±15s.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	jitter := time.Duration(rand.Intn(30)-15) * time.Second
	return ttl + jitter
}

// GetOrLoad returns the dataset for the source's current identity, loading it
// at most once per identity across concurrent callers. The shared load runs
// detached from any single caller, so one caller giving up does not fail the
// others waiting on the same identity.
func (c *DatasetCache) GetOrLoad(ctx context.Context, src CaseSource) (*models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	identity, err := src.Identity(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve source identity: %w", err)
	}

	c.mu.RLock()
	entry, ok := c.entries[src.Name()]
	c.mu.RUnlock()
	if ok && entry.identity == identity {
		c.logger.Debug("dataset cache hit", zap.String("identity", identity))
		return entry.dataset, nil
	}

	ch := c.sf.DoChan(identity, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		ds, err := c.loadThrough(loadCtx, src, identity)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[src.Name()] = datasetEntry{identity: identity, dataset: ds}
		c.mu.Unlock()
		return ds, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		c.logger.Debug("singleflight shared dataset load", zap.String("identity", identity))
	}

	ds, ok := res.Val.(*models.Dataset)
	if !ok {
		return nil, fmt.Errorf("type mismatch for dataset %q", identity)
	}
	return ds, nil
}

func (c *DatasetCache) loadThrough(ctx context.Context, src CaseSource, identity string) (*models.Dataset, error) {
	key := cacheKeyDataset + identity

	if c.remote != nil {
		var cached models.Dataset
		err := c.remote.Get(ctx, key, &cached)
		switch {
		case err == nil:
			c.logger.Debug("remote dataset hit", zap.String("key", key))
			return &cached, nil
		case errors.Is(err, cache.ErrCacheMiss):
			c.logger.Debug("remote dataset miss", zap.String("key", key))
		default:
			c.logger.Warn("remote cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
		}
	}

	start := time.Now()
	ds, err := src.Load(ctx)
	if err != nil {
		c.logger.Error("dataset load failed", zap.String("identity", identity), zap.Error(err))
		return nil, err
	}
	ds.Source = identity

	c.logger.Info("dataset loaded",
		zap.String("identity", identity),
		zap.Int("rows", ds.Stats.Rows),
		zap.String("encoding", ds.Stats.Encoding),
		zap.Int("coerced_dates", ds.Stats.CoercedDates),
		zap.Int("coerced_numbers", ds.Stats.CoercedNumbers),
		zap.Int("invariant_violations", ds.Stats.InvariantViolations),
		zap.Bool("missing", ds.Missing),
		zap.Duration("took", time.Since(start)))

	if c.remote != nil && !ds.Missing {
		go func(v *models.Dataset) {
			setCtx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
			defer cancel()

			ttl := addTTLJitter(c.ttl)
			if err := c.remote.Set(setCtx, key, v, ttl); err != nil {
				c.logger.Warn("failed to publish dataset to remote cache", zap.String("key", key), zap.Error(err))
				return
			}
			c.logger.Debug("dataset published to remote cache", zap.String("key", key), zap.Duration("ttl", ttl))
		}(ds)
	}
	return ds, nil
}

// Invalidate drops the in-process entry for a source.
func (c *DatasetCache) Invalidate(name string) {
	c.mu.Lock()
	delete(c.entries, name)
	c.mu.Unlock()
}
