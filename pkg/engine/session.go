package engine

import (
	"fmt"
	"strings"

	"github.com/itohio/gocolorimeter/pkg/sample"
)

// SetPeriodic sets the periodic interval in period units. Zero switches
// periodic mode off; any other value requires a valid calibration.
func (s *Session) SetPeriodic(units int) error {
	e := s.e
	if units < 0 || units > MaxPeriod {
		return fmt.Errorf("period %d out of range (max %d)", units, MaxPeriod)
	}

	if units == 0 {
		s.DisablePeriodic()
		return nil
	}
	if !e.cal.Valid {
		return ErrNotCalibrated
	}

	e.mode.Periodic = true
	e.mode.Period = units
	e.notifyPeriod()

	return nil
}

// SetDelta switches delta mode. The magnitude history is cleared on every
// call.
func (s *Session) SetDelta(enabled bool, threshold int) {
	e := s.e
	e.mode.Delta = enabled
	e.mode.DeltaThreshold = threshold
	if !enabled {
		e.mode.DeltaThreshold = 0
	}
	e.delta.Reset()
}

// SetMatch sets the match threshold. Zero switches match mode off.
func (s *Session) SetMatch(threshold int) {
	e := s.e
	e.mode.Match = threshold > 0
	e.mode.MatchThreshold = max(threshold, 0)
}

// SetLED sets the indicator mode.
func (s *Session) SetLED(mode LEDMode) error {
	e := s.e

	var on bool
	switch mode {
	case LEDOff, LEDSample:
	case LEDOn:
		on = true
	default:
		return fmt.Errorf("invalid led mode %d", mode)
	}

	if err := e.dev.SetIndicator(on); err != nil {
		return fmt.Errorf("failed to set indicator: %w", err)
	}
	e.mode.LED = mode

	return nil
}

// SetRGB drives all three channels directly.
func (s *Session) SetRGB(levels [3]uint16) error {
	for _, ch := range sample.Channels {
		if levels[ch] > sample.MaxDrive {
			return fmt.Errorf("%s level %d out of range (max %d)", ch, levels[ch], sample.MaxDrive)
		}
	}

	for _, ch := range sample.Channels {
		if err := s.e.dev.Drive(ch, levels[ch]); err != nil {
			return fmt.Errorf("failed to drive %s: %w", ch, err)
		}
	}

	return nil
}

// WaitButton blocks until the push button is pressed, then waits out the
// contact bounce. There is no timeout: the operator is expected to press
// the button eventually.
func (s *Session) WaitButton() error {
	if err := s.e.dev.WaitButton(); err != nil {
		return fmt.Errorf("failed to wait for button: %w", err)
	}
	s.e.dev.Wait(s.e.timing.ButtonDebounce)
	return nil
}

// AllOff switches all LED channels and the indicator off.
func (s *Session) AllOff() error {
	if err := s.e.allOff(); err != nil {
		return err
	}
	if err := s.e.dev.SetIndicator(false); err != nil {
		return fmt.Errorf("failed to switch indicator off: %w", err)
	}
	return nil
}

// Reset returns the engine to its power-on state. Reference colors are kept.
func (s *Session) Reset() error {
	e := s.e

	wasPeriodic := e.mode.Periodic
	e.mode = Mode{}
	e.cal = Calibration{}
	e.delta.Reset()
	e.curves = [3]Curve{}
	e.hasCurves = false
	if wasPeriodic {
		e.notifyPeriod()
	}

	return s.AllOff()
}

// SelfTest lights each channel at full scale in turn and blinks the
// indicator once.
func (s *Session) SelfTest() error {
	e := s.e

	for _, ch := range sample.Channels {
		if err := e.allOff(); err != nil {
			return err
		}
		if err := e.dev.Drive(ch, sample.MaxDrive); err != nil {
			return fmt.Errorf("failed to drive %s: %w", ch, err)
		}
		e.dev.Wait(e.timing.SelfTestStep)
	}
	if err := e.allOff(); err != nil {
		return err
	}

	if err := e.dev.SetIndicator(true); err != nil {
		return fmt.Errorf("failed to switch indicator on: %w", err)
	}
	e.dev.Wait(e.timing.SelfTestStep / 10)
	if err := e.dev.SetIndicator(false); err != nil {
		return fmt.Errorf("failed to switch indicator off: %w", err)
	}
	e.dev.Wait(e.timing.SelfTestStep / 10)

	return nil
}

// Status reports the operating flags, the calibration and the stored colors.
func (s *Session) Status() {
	e := s.e

	if e.cal.Valid {
		e.out.Printf("calibration: threshold %d (PWMr: %d,PWMg: %d,PWMb: %d)",
			e.cal.Threshold, e.cal.Levels[sample.Red], e.cal.Levels[sample.Green], e.cal.Levels[sample.Blue])
	} else {
		e.out.Println("calibration: none")
	}

	e.out.Printf("periodic: %s", onOff(e.mode.Periodic, e.mode.Period))
	e.out.Printf("delta: %s", onOff(e.mode.Delta, e.mode.DeltaThreshold))
	e.out.Printf("match: %s", onOff(e.mode.Match, e.mode.MatchThreshold))
	e.out.Printf("led: %s", e.mode.LED)

	valid := e.colors.Valid()
	if len(valid) == 0 {
		e.out.Println("colors: none")
		return
	}

	parts := make([]string, len(valid))
	for i, slot := range valid {
		c := e.colors[slot].Color
		parts[i] = fmt.Sprintf("%d:%d,%d,%d", slot, c.Red, c.Green, c.Blue)
	}
	e.out.Printf("colors: %s", strings.Join(parts, " "))
}

func onOff(on bool, value int) string {
	if !on {
		return "off"
	}
	return fmt.Sprint(value)
}
