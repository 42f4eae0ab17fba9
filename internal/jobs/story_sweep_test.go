package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (c *countingSweeper) Sweep(context.Context) (int, error) {
	c.calls.Add(1)
	return 0, nil
}

func TestStorySweepRunsOnSchedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := NewScheduler(zap.NewNop())
	require.NoError(t, err)
	sweeper := &countingSweeper{}
	require.NoError(t, s.ScheduleStorySweep(ctx, sweeper, 50*time.Millisecond))

	s.Start()
	defer func() { _ = s.Shutdown() }()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestStorySweepSkipsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := NewScheduler(zap.NewNop())
	require.NoError(t, err)
	sweeper := &countingSweeper{}
	require.NoError(t, s.ScheduleStorySweep(ctx, sweeper, 20*time.Millisecond))

	s.Start()
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, s.Shutdown())

	assert.Zero(t, sweeper.calls.Load())
}
