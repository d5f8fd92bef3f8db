package device

import (
	"time"

	"github.com/itohio/gocolorimeter/pkg/sample"
)

// Device defines the interface for colorimeter hardware (real or mocked).
type Device interface {
	Connect() error
	Close() error
	IsConnected() bool

	// Drive sets the PWM duty of one LED channel (0..sample.MaxDrive).
	Drive(ch sample.Channel, level uint16) error
	// Sample performs a single blocking ADC read (0..sample.MaxRaw).
	Sample() (uint16, error)
	// Wait blocks for d.
	Wait(d time.Duration)
	// SetIndicator switches the status indicator.
	SetIndicator(on bool) error
	// WaitButton blocks until the push button is pressed.
	WaitButton() error
}

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
