package engine

import "fmt"

// LEDMode controls the status indicator.
type LEDMode int

const (
	LEDOff LEDMode = iota
	LEDOn
	// LEDSample pulses the indicator around every measurement.
	LEDSample
)

func (m LEDMode) String() string {
	switch m {
	case LEDOff:
		return "off"
	case LEDOn:
		return "on"
	case LEDSample:
		return "sample"
	default:
		return fmt.Sprintf("led(%d)", int(m))
	}
}

// Source identifies what started a measurement.
type Source int

const (
	SourceCommand Source = iota
	SourcePeriodic
	SourceColor
	SourceButton
)

func (s Source) String() string {
	switch s {
	case SourceCommand:
		return "trigger"
	case SourcePeriodic:
		return "periodic"
	case SourceColor:
		return "color"
	case SourceButton:
		return "button"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Mode holds the operating flags. Calibrating and Testing are never true
// while Periodic is.
type Mode struct {
	Calibrating bool
	Testing     bool

	Periodic bool
	Period   int // In period units (1..MaxPeriod)

	Delta          bool
	DeltaThreshold int

	Match          bool
	MatchThreshold int

	LED LEDMode
}
