package sample

import (
	"fmt"

	"github.com/chewxy/math32"
)

const (
	// MaxDrive is the full-scale PWM duty value of an LED channel.
	MaxDrive = 1023
	// MaxRaw is the full-scale 12-bit ADC reading.
	MaxRaw = 4095
	// MaxValue is the full-scale calibrated channel value.
	MaxValue = 255
)

// Channel identifies one of the three LED channels.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

// Channels lists the LED channels in measurement order.
var Channels = [3]Channel{Red, Green, Blue}

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Valid reports whether c names an existing channel.
func (c Channel) Valid() bool {
	return c >= Red && c <= Blue
}

// Triplet is one calibrated (red, green, blue) measurement, each 0..255.
type Triplet struct {
	Red   uint8 `yaml:"red"`
	Green uint8 `yaml:"green"`
	Blue  uint8 `yaml:"blue"`
}

// At returns the value of channel c.
func (t Triplet) At(c Channel) uint8 {
	switch c {
	case Green:
		return t.Green
	case Blue:
		return t.Blue
	default:
		return t.Red
	}
}

// Set stores v into channel c.
func (t *Triplet) Set(c Channel, v uint8) {
	switch c {
	case Red:
		t.Red = v
	case Green:
		t.Green = v
	case Blue:
		t.Blue = v
	}
}

// String formats the triplet the way the instrument reports it.
func (t Triplet) String() string {
	return fmt.Sprintf("(r: %d,g: %d,b: %d).", t.Red, t.Green, t.Blue)
}

// Normalize converts a raw ADC reading into the calibrated 0..255 scale.
// threshold is the raw reading that maps to full scale.
// Formula: round(raw / threshold * 255), clamped to 255.
func Normalize(raw, threshold uint16) uint8 {
	if threshold == 0 {
		if raw == 0 {
			return 0
		}
		return MaxValue
	}

	v := math32.Round(float32(raw) / float32(threshold) * MaxValue)
	if v > MaxValue {
		return MaxValue
	}
	return uint8(v)
}

// Magnitude returns the length of t as a vector in RGB space.
func Magnitude(t Triplet) float32 {
	r, g, b := float32(t.Red), float32(t.Green), float32(t.Blue)
	return math32.Sqrt(r*r + g*g + b*b)
}

// Distance returns the Euclidean distance between a and b in RGB space.
func Distance(a, b Triplet) float32 {
	dr := float32(a.Red) - float32(b.Red)
	dg := float32(a.Green) - float32(b.Green)
	db := float32(a.Blue) - float32(b.Blue)
	return math32.Sqrt(dr*dr + dg*dg + db*db)
}
