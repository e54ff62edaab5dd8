package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/godilite/caseops/internal/repository/models"
	"github.com/godilite/caseops/internal/service"
	"github.com/godilite/caseops/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func sampleDataset() *models.Dataset {
	return &models.Dataset{
		Header: models.CanonicalHeader,
		Records: []models.CaseRecord{
			{Technology: "Cloud", Status: "Open"},
			{Technology: "Network", Status: "Closed"},
		},
		Stats: models.LoadStats{Rows: 2, Encoding: "utf-8"},
	}
}

func TestDatasetCache_MemoizesByIdentity(t *testing.T) {
	identity := "mock:1"
	src := &mocks.MockCaseSource{
		IdentityFunc: func(ctx context.Context) (string, error) { return identity, nil },
		LoadFunc:     func(ctx context.Context) (*models.Dataset, error) { return sampleDataset(), nil },
	}
	c := service.NewDatasetCache(nil, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	first, err := c.GetOrLoad(ctx, src)
	require.NoError(t, err)
	second, err := c.GetOrLoad(ctx, src)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), src.Loads())
	assert.Equal(t, "mock:1", first.Source)

	identity = "mock:2"
	third, err := c.GetOrLoad(ctx, src)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, int64(2), src.Loads())
	assert.Equal(t, "mock:2", third.Source)

	c.Invalidate(src.Name())
	_, err = c.GetOrLoad(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, int64(3), src.Loads())
}

func TestDatasetCache_ConcurrentLoadsCollapse(t *testing.T) {
	release := make(chan struct{})
	src := &mocks.MockCaseSource{
		LoadFunc: func(ctx context.Context) (*models.Dataset, error) {
			<-release
			return sampleDataset(), nil
		},
	}
	c := service.NewDatasetCache(nil, 0, zaptest.NewLogger(t))

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*models.Dataset, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := c.GetOrLoad(context.Background(), src)
			assert.NoError(t, err)
			results[i] = ds
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), src.Loads())
	for _, ds := range results {
		assert.Same(t, results[0], ds)
	}
}

func TestDatasetCache_CanceledCallerDoesNotFailWaiters(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	src := &mocks.MockCaseSource{
		LoadFunc: func(ctx context.Context) (*models.Dataset, error) {
			close(started)
			select {
			case <-release:
				return sampleDataset(), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	c := service.NewDatasetCache(nil, 0, zap.NewNop())

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(ctxA, src)
		errA <- err
	}()
	<-started

	type result struct {
		ds  *models.Dataset
		err error
	}
	resB := make(chan result, 1)
	go func() {
		ds, err := c.GetOrLoad(context.Background(), src)
		resB <- result{ds, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Len(t, b.ds.Records, 2)
	assert.Equal(t, int64(1), src.Loads())
}

func TestDatasetCache_CanceledContextSkipsLoad(t *testing.T) {
	src := &mocks.MockCaseSource{}
	c := service.NewDatasetCache(nil, 0, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetOrLoad(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, src.Loads())
}

func TestDatasetCache_Errors(t *testing.T) {
	loadErr := errors.New("boom")

	t.Run("load error is not cached", func(t *testing.T) {
		fail := true
		src := &mocks.MockCaseSource{
			LoadFunc: func(ctx context.Context) (*models.Dataset, error) {
				if fail {
					return nil, loadErr
				}
				return sampleDataset(), nil
			},
		}
		c := service.NewDatasetCache(nil, 0, zaptest.NewLogger(t))

		_, err := c.GetOrLoad(context.Background(), src)
		assert.ErrorIs(t, err, loadErr)

		fail = false
		ds, err := c.GetOrLoad(context.Background(), src)
		require.NoError(t, err)
		assert.Len(t, ds.Records, 2)
	})

	t.Run("identity error", func(t *testing.T) {
		src := &mocks.MockCaseSource{
			IdentityFunc: func(ctx context.Context) (string, error) { return "", loadErr },
		}
		c := service.NewDatasetCache(nil, 0, zaptest.NewLogger(t))

		_, err := c.GetOrLoad(context.Background(), src)
		assert.ErrorIs(t, err, loadErr)
		assert.Zero(t, src.Loads())
	})
}

func TestDatasetCache_RemoteTier(t *testing.T) {
	t.Run("remote hit skips the source", func(t *testing.T) {
		remote := &mocks.MockCacher{
			GetFunc: func(ctx context.Context, key string, dest any) error {
				assert.Equal(t, "dataset:mock:1", key)
				*dest.(*models.Dataset) = *sampleDataset()
				return nil
			},
		}
		src := &mocks.MockCaseSource{}
		c := service.NewDatasetCache(remote, time.Minute, zap.NewNop())

		ds, err := c.GetOrLoad(context.Background(), src)
		require.NoError(t, err)
		assert.Len(t, ds.Records, 2)
		assert.Zero(t, src.Loads())
	})

	t.Run("miss loads and publishes with jittered ttl", func(t *testing.T) {
		published := make(chan time.Duration, 1)
		remote := &mocks.MockCacher{
			SetFunc: func(ctx context.Context, key string, value any, expiration time.Duration) error {
				assert.Equal(t, "dataset:mock:1", key)
				published <- expiration
				return nil
			},
		}
		src := &mocks.MockCaseSource{
			LoadFunc: func(ctx context.Context) (*models.Dataset, error) { return sampleDataset(), nil },
		}
		c := service.NewDatasetCache(remote, time.Minute, zap.NewNop())

		_, err := c.GetOrLoad(context.Background(), src)
		require.NoError(t, err)

		select {
		case ttl := <-published:
			assert.InDelta(t, float64(time.Minute), float64(ttl), float64(15*time.Second))
		case <-time.After(time.Second):
			t.Fatal("dataset was not published")
		}
	})

	t.Run("remote errors fall back to the source", func(t *testing.T) {
		remote := &mocks.MockCacher{
			GetFunc: func(ctx context.Context, key string, dest any) error { return errors.New("connection refused") },
			SetFunc: func(ctx context.Context, key string, value any, expiration time.Duration) error {
				return errors.New("connection refused")
			},
		}
		src := &mocks.MockCaseSource{
			LoadFunc: func(ctx context.Context) (*models.Dataset, error) { return sampleDataset(), nil },
		}
		c := service.NewDatasetCache(remote, time.Minute, zap.NewNop())

		ds, err := c.GetOrLoad(context.Background(), src)
		require.NoError(t, err)
		assert.Len(t, ds.Records, 2)
		assert.Equal(t, int64(1), src.Loads())
	})

	t.Run("missing datasets are not published", func(t *testing.T) {
		remote := &mocks.MockCacher{
			SetFunc: func(ctx context.Context, key string, value any, expiration time.Duration) error {
				t.Error("missing dataset must not be published")
				return nil
			},
		}
		src := &mocks.MockCaseSource{
			LoadFunc: func(ctx context.Context) (*models.Dataset, error) {
				return &models.Dataset{Header: models.CanonicalHeader, Missing: true}, nil
			},
		}
		c := service.NewDatasetCache(remote, time.Minute, zap.NewNop())

		ds, err := c.GetOrLoad(context.Background(), src)
		require.NoError(t, err)
		assert.True(t, ds.Missing)
		time.Sleep(10 * time.Millisecond)
	})
}
