package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSampler(t *testing.T, f *fixture) *Sampler {
	t.Helper()

	sampler := NewSampler(f.engine, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sampler.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("sampler did not stop")
		}
	})

	return sampler
}

func TestSampler_MeasuresWhilePeriodic(t *testing.T) {
	f := newFixture(t)
	f.calibrate(t, 2000)
	sampler := runSampler(t, f)

	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, sampler.Ticks(), "idle until periodic mode is enabled")

	f.do(t, func(s *Session) error { return s.SetPeriodic(2) })
	require.Eventually(t, func() bool { return sampler.Ticks() >= 3 }, 5*time.Second, time.Millisecond)
	assert.Contains(t, f.rec.Lines(), "(r: 255,g: 255,b: 209).")

	f.do(t, func(s *Session) error { return s.SetPeriodic(0) })
	time.Sleep(10 * time.Millisecond)
	n := sampler.Ticks()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, sampler.Ticks())
}

func TestSampler_Suspend(t *testing.T) {
	f := newFixture(t)
	f.calibrate(t, 2000)
	sampler := runSampler(t, f)

	f.do(t, func(s *Session) error { return s.SetPeriodic(1) })
	require.Eventually(t, func() bool { return sampler.Ticks() >= 1 }, 5*time.Second, time.Millisecond)

	sampler.Suspend()
	assert.True(t, sampler.Suspended())
	time.Sleep(10 * time.Millisecond)
	n := sampler.Ticks()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, sampler.Ticks(), "no measurements while suspended")

	sampler.Resume()
	require.Eventually(t, func() bool { return sampler.Ticks() > n }, 5*time.Second, time.Millisecond)
}

func TestSampler_SkipsWhileBusy(t *testing.T) {
	f := newFixture(t)
	f.calibrate(t, 2000)
	sampler := runSampler(t, f)

	f.do(t, func(s *Session) error {
		require.NoError(t, s.SetPeriodic(1))
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	assert.Zero(t, sampler.Ticks(), "ticks during a command are dropped")

	require.Eventually(t, func() bool { return sampler.Ticks() >= 1 }, 5*time.Second, time.Millisecond)
}

func TestSampler_TickRechecksSuspend(t *testing.T) {
	f := newFixture(t)
	f.calibrate(t, 2000)
	f.do(t, func(s *Session) error { return s.SetPeriodic(1) })
	f.rec.Reset()

	sampler := NewSampler(f.engine, time.Millisecond)
	sampler.Suspend()
	f.do(t, sampler.tick)

	assert.Zero(t, sampler.Ticks())
	assert.Empty(t, f.rec.Lines(), "no output while a line is being typed")

	sampler.Resume()
	f.do(t, sampler.tick)

	assert.Equal(t, int64(1), sampler.Ticks())
	assert.Equal(t, []string{"(r: 255,g: 255,b: 209)."}, f.rec.Lines())
}
