package engine

import (
	"fmt"

	"github.com/itohio/gocolorimeter/pkg/colorstore"
	"github.com/itohio/gocolorimeter/pkg/sample"
)

// read drives only ch at level, waits settle and samples once. All channels
// are off afterwards.
func (e *Engine) read(ch sample.Channel, level uint16) (uint16, error) {
	if err := e.allOff(); err != nil {
		return 0, err
	}
	if err := e.dev.Drive(ch, level); err != nil {
		return 0, fmt.Errorf("failed to drive %s: %w", ch, err)
	}
	e.dev.Wait(e.timing.MeasureSettle)

	raw, err := e.dev.Sample()
	if err != nil {
		return 0, fmt.Errorf("failed to sample %s: %w", ch, err)
	}

	return raw, e.allOff()
}

// pulse flashes the indicator once.
func (e *Engine) pulse() error {
	if err := e.dev.SetIndicator(true); err != nil {
		return err
	}
	e.dev.Wait(e.timing.IndicatorPulse)
	return e.dev.SetIndicator(false)
}

// Measure takes one calibrated RGB measurement and reports it according to
// the delta and match modes.
func (s *Session) Measure(src Source) (sample.Triplet, error) {
	return s.measure(src, false)
}

// measure runs the pipeline. A forced measurement is always reported and
// does not feed the delta history.
func (s *Session) measure(src Source, force bool) (sample.Triplet, error) {
	e := s.e

	var t sample.Triplet
	if !e.cal.Valid {
		return t, ErrNotCalibrated
	}

	for _, ch := range sample.Channels {
		raw, err := e.read(ch, e.cal.Levels[ch])
		if err != nil {
			return t, err
		}
		t.Set(ch, sample.Normalize(raw, e.cal.Threshold))
	}

	report := force || !e.mode.Delta
	if e.mode.Delta && !force {
		e.delta.Update(t)
		report = e.delta.Exceeds(e.mode.DeltaThreshold)
	}

	if e.mode.Match {
		for _, slot := range sample.Match(t, e.colors[:], float32(e.mode.MatchThreshold)) {
			e.out.Printf("color %d", slot)
			e.obs.Matched(slot)
		}
	}

	if e.mode.LED == LEDSample {
		if err := e.pulse(); err != nil {
			return t, fmt.Errorf("failed to pulse indicator: %w", err)
		}
	}

	if report {
		e.out.Println(t.String())
	}
	e.obs.Measured(src, t, report)

	return t, nil
}

// StoreColor measures and stores the result as reference color n. The
// measurement is always reported.
func (s *Session) StoreColor(n int) (sample.Triplet, error) {
	e := s.e
	if err := colorstore.CheckIndex(n); err != nil {
		return sample.Triplet{}, err
	}

	t, err := s.measure(SourceColor, true)
	if err != nil {
		return t, err
	}

	c := colorstore.ReferenceColor{Valid: true, Color: t}
	if err := e.store.Save(s.ctx, n, c); err != nil {
		return t, fmt.Errorf("failed to store color %d: %w", n, err)
	}
	e.colors[n] = c

	return t, nil
}

// EraseColor invalidates reference color n. It reports false if the slot
// was already empty.
func (s *Session) EraseColor(n int) (bool, error) {
	e := s.e
	if err := colorstore.CheckIndex(n); err != nil {
		return false, err
	}
	if !e.colors[n].Valid {
		return false, nil
	}

	if err := e.store.Erase(s.ctx, n); err != nil {
		return false, fmt.Errorf("failed to erase color %d: %w", n, err)
	}
	e.colors[n] = colorstore.ReferenceColor{}

	return true, nil
}
