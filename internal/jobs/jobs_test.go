package jobs_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FreakyLetsFail/uni-swipe/internal/jobs"
	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestScheduler_AddAndRemove(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop(), time.Second)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.AddJob("b", "@every 1h", noop))
	require.NoError(t, s.AddJob("a", "@every 1h", noop))
	assert.Error(t, s.AddJob("a", "@every 1h", noop), "duplicate names are rejected")
	assert.Error(t, s.AddJob("c", "not a schedule", noop))
	assert.Equal(t, []string{"a", "b"}, s.JobNames())

	require.NoError(t, s.RemoveJob("a"))
	assert.Error(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.JobNames())
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop(), time.Second)
	var runs atomic.Int32
	require.NoError(t, s.AddJob("tick", "@every 1s", func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	defer s.Stop()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RunNowLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s := jobs.NewScheduler(zap.New(core), time.Second)

	s.RunNow("broken", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return errors.New("db down")
	})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "broken", logs.All()[0].ContextMap()["job_name"])
}

type fakeRefresher struct {
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(context.Context) (*service.Catalog, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &service.Catalog{}, nil
}

func TestCatalogRefreshJob(t *testing.T) {
	refresher := &fakeRefresher{}
	job := jobs.CatalogRefreshJob(refresher, zap.NewNop())

	require.NoError(t, job(context.Background()))
	assert.Equal(t, 1, refresher.calls)

	refresher.err = errors.New("timeout")
	err := job(context.Background())
	assert.ErrorContains(t, err, "catalog refresh")
}
