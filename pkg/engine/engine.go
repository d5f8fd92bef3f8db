// Package engine implements the colorimeter measurement engine: calibration,
// the measurement pipeline, operating modes and the periodic sampler.
//
// All state lives in Engine and is guarded by a single mutex. Operations are
// methods of Session and only run inside Engine.Do, so one command or one
// measurement always completes before the next starts.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/itohio/gocolorimeter/pkg/colorstore"
	"github.com/itohio/gocolorimeter/pkg/config"
	"github.com/itohio/gocolorimeter/pkg/delta"
	"github.com/itohio/gocolorimeter/pkg/device"
	"github.com/itohio/gocolorimeter/pkg/sample"
)

const (
	// MaxPeriod is the longest periodic interval in period units.
	MaxPeriod = 255
	// MaxThreshold is the largest delta or match threshold accepted from the shell.
	MaxThreshold = 255
)

var (
	// ErrNotCalibrated is returned when a measurement needs a valid calibration.
	ErrNotCalibrated = errors.New("no valid calibration")
	// ErrBusy is returned by TryDo when another operation holds the engine.
	ErrBusy = errors.New("engine busy")
)

// Reporter receives operator visible output lines.
type Reporter interface {
	Println(a ...any)
	Printf(format string, a ...any)
}

// Observer is notified about engine events.
type Observer interface {
	Measured(src Source, t sample.Triplet, reported bool)
	Matched(slot int)
	Calibrated(c Calibration)
}

type nopObserver struct{}

func (nopObserver) Measured(Source, sample.Triplet, bool) {}
func (nopObserver) Matched(int)                           {}
func (nopObserver) Calibrated(Calibration)                {}

// Calibration is the result of a calibration run.
type Calibration struct {
	Valid     bool
	Threshold uint16
	Levels    [3]uint16
}

// Options configures an Engine.
type Options struct {
	Timing   config.TimingConfig
	Observer Observer
}

// Engine owns the instrument state.
type Engine struct {
	mu sync.Mutex

	dev    device.Device
	store  colorstore.Store
	out    Reporter
	obs    Observer
	timing config.TimingConfig

	mode      Mode
	cal       Calibration
	delta     *delta.Detector
	colors    colorstore.Table
	curves    [3]Curve
	hasCurves bool

	periodChanged chan struct{}
}

// New creates an Engine. Call Load to restore the reference colors.
func New(dev device.Device, store colorstore.Store, out Reporter, opts Options) *Engine {
	obs := opts.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	return &Engine{
		dev:           dev,
		store:         store,
		out:           out,
		obs:           obs,
		timing:        opts.Timing,
		delta:         delta.New(),
		periodChanged: make(chan struct{}, 1),
	}
}

// Load restores the reference colors from the store.
func (e *Engine) Load(ctx context.Context) error {
	table, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load colors: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.colors = table

	return nil
}

// Do runs fn with exclusive access to the engine.
func (e *Engine) Do(ctx context.Context, fn func(*Session) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fn(&Session{ctx: ctx, e: e})
}

// TryDo is like Do but returns ErrBusy instead of waiting.
func (e *Engine) TryDo(ctx context.Context, fn func(*Session) error) error {
	if !e.mu.TryLock() {
		return ErrBusy
	}
	defer e.mu.Unlock()

	return fn(&Session{ctx: ctx, e: e})
}

// Mode returns a snapshot of the operating flags.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Calibration returns the current calibration.
func (e *Engine) Calibration() Calibration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cal
}

// Colors returns a copy of the reference color table.
func (e *Engine) Colors() colorstore.Table {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.colors
}

// Curves returns the curves recorded by the last test run.
func (e *Engine) Curves() ([3]Curve, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.curves, e.hasCurves
}

// PeriodChanged signals whenever periodic mode or its period changes.
func (e *Engine) PeriodChanged() <-chan struct{} {
	return e.periodChanged
}

func (e *Engine) notifyPeriod() {
	select {
	case e.periodChanged <- struct{}{}:
	default:
	}
}

// allOff switches every LED channel off.
func (e *Engine) allOff() error {
	for _, ch := range sample.Channels {
		if err := e.dev.Drive(ch, 0); err != nil {
			return fmt.Errorf("failed to switch %s off: %w", ch, err)
		}
	}
	return nil
}

// Session is exclusive access to the engine, valid only inside Do.
type Session struct {
	ctx context.Context
	e   *Engine
}

// Mode returns the operating flags.
func (s *Session) Mode() Mode {
	return s.e.mode
}

// Calibration returns the current calibration.
func (s *Session) Calibration() Calibration {
	return s.e.cal
}

// Colors returns the reference color table.
func (s *Session) Colors() colorstore.Table {
	return s.e.colors
}

// DisablePeriodic switches periodic mode off and reports whether it was on.
func (s *Session) DisablePeriodic() bool {
	if !s.e.mode.Periodic {
		return false
	}
	s.e.mode.Periodic = false
	s.e.mode.Period = 0
	s.e.notifyPeriod()
	return true
}
