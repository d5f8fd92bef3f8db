package engine

import (
	"fmt"

	"github.com/itohio/gocolorimeter/pkg/sample"
)

// Curve is the raw sensor response of one channel for every drive level.
type Curve [sample.MaxDrive + 1]uint16

// ramp sweeps ch from 0 to MaxDrive with all other channels off, sampling
// after each step. The sweep stops early when visit returns false. All
// channels are off afterwards.
func (e *Engine) ramp(ch sample.Channel, visit func(level, raw uint16) bool) (err error) {
	if err := e.allOff(); err != nil {
		return err
	}
	defer func() {
		if offErr := e.allOff(); err == nil {
			err = offErr
		}
	}()

	for level := uint16(0); level <= sample.MaxDrive; level++ {
		if err := e.dev.Drive(ch, level); err != nil {
			return fmt.Errorf("failed to drive %s: %w", ch, err)
		}
		e.dev.Wait(e.timing.RampSettle)

		raw, err := e.dev.Sample()
		if err != nil {
			return fmt.Errorf("failed to sample %s at %d: %w", ch, level, err)
		}

		if !visit(level, raw) {
			break
		}
	}

	return nil
}

// Calibrate finds, for each channel, the largest drive level whose reading
// does not exceed threshold. The sensor response is assumed to increase
// monotonically with drive; otherwise the level recorded just before the
// first reading above threshold is used. On failure the previous calibration
// is kept.
func (s *Session) Calibrate(threshold uint16) (Calibration, error) {
	e := s.e
	if threshold > sample.MaxRaw {
		return e.cal, fmt.Errorf("threshold %d out of range (max %d)", threshold, sample.MaxRaw)
	}

	s.DisablePeriodic()
	e.mode.Testing = false
	e.mode.Calibrating = true
	defer func() { e.mode.Calibrating = false }()

	e.out.Println("wait....")

	var levels [3]uint16
	for _, ch := range sample.Channels {
		err := e.ramp(ch, func(level, raw uint16) bool {
			if raw > threshold {
				return false
			}
			levels[ch] = level
			return true
		})
		if err != nil {
			return e.cal, fmt.Errorf("calibration failed: %w", err)
		}
	}

	e.cal = Calibration{
		Valid:     true,
		Threshold: threshold,
		Levels:    levels,
	}
	e.delta.Reset()

	e.out.Printf("(PWMr: %d,PWMg: %d,PWMb: %d)", levels[sample.Red], levels[sample.Green], levels[sample.Blue])
	e.obs.Calibrated(e.cal)

	return e.cal, nil
}

// Test records the full response curve of every channel. With rows set,
// each step is streamed as "r,g,b,raw".
func (s *Session) Test(rows bool) error {
	e := s.e

	s.DisablePeriodic()
	e.mode.Calibrating = false
	e.mode.Testing = true
	defer func() { e.mode.Testing = false }()

	e.out.Println("wait....")

	var curves [3]Curve
	for _, ch := range sample.Channels {
		err := e.ramp(ch, func(level, raw uint16) bool {
			curves[ch][level] = raw
			if rows {
				var drive [3]uint16
				drive[ch] = level
				e.out.Printf("%d,%d,%d,%d", drive[sample.Red], drive[sample.Green], drive[sample.Blue], raw)
			}
			return true
		})
		if err != nil {
			return fmt.Errorf("test failed: %w", err)
		}
	}

	e.curves = curves
	e.hasCurves = true

	return nil
}

// Curves returns the curves recorded by the last test run.
func (s *Session) Curves() ([3]Curve, bool) {
	return s.e.curves, s.e.hasCurves
}
