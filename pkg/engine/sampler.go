package engine

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"
)

// Sampler re-runs the measurement pipeline while periodic mode is enabled.
// It runs in its own goroutine next to the command loop and measures
// through TryDo, so a tick that finds the engine busy is skipped rather than
// queued.
type Sampler struct {
	e         *Engine
	unit      time.Duration
	suspended atomic.Bool
	ticks     atomic.Int64
}

// NewSampler creates a Sampler whose period is Mode.Period * unit.
func NewSampler(e *Engine, unit time.Duration) *Sampler {
	return &Sampler{e: e, unit: unit}
}

// Suspend stops measurements until Resume is called.
func (s *Sampler) Suspend() {
	s.suspended.Store(true)
}

// Resume allows measurements again.
func (s *Sampler) Resume() {
	s.suspended.Store(false)
}

// Suspended reports whether the sampler is suspended.
func (s *Sampler) Suspended() bool {
	return s.suspended.Load()
}

// Ticks returns how many periodic measurements were taken.
func (s *Sampler) Ticks() int64 {
	return s.ticks.Load()
}

// Run blocks until ctx is done.
func (s *Sampler) Run(ctx context.Context) error {
	var ticker *time.Ticker
	var tick <-chan time.Time

	reconfigure := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}

		mode := s.e.Mode()
		if mode.Periodic && mode.Period > 0 {
			ticker = time.NewTicker(time.Duration(mode.Period) * s.unit)
			tick = ticker.C
		}
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	reconfigure()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.e.PeriodChanged():
			reconfigure()
		case <-tick:
			s.measure(ctx)
		}
	}
}

func (s *Sampler) measure(ctx context.Context) {
	if s.suspended.Load() {
		return
	}

	err := s.e.TryDo(ctx, s.tick)

	switch {
	case err == nil, errors.Is(err, ErrBusy):
	case errors.Is(err, ErrNotCalibrated):
		s.e.out.Println("No valid calibration performed. Please perform calibration.")
	default:
		log.Printf("Periodic measurement failed: %v", err)
	}
}

// tick runs one periodic measurement under the engine lock. Suspension is
// checked again here since input may have started while the lock was taken.
func (s *Sampler) tick(sess *Session) error {
	if !sess.Mode().Periodic || s.suspended.Load() {
		return nil
	}
	s.ticks.Add(1)
	_, err := sess.Measure(SourcePeriodic)
	return err
}
