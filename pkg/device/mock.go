package device

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/itohio/gocolorimeter/pkg/config"
	"github.com/itohio/gocolorimeter/pkg/sample"
)

// ErrNotConnected is returned by operations on a closed device.
var ErrNotConnected = errors.New("not connected")

// ResponseFunc computes the raw sensor reading from the channel drive levels.
type ResponseFunc func(levels [3]uint16) float64

// Mock simulates a colorimeter: three LEDs lighting a sample whose reflected
// light falls on a single sensor. The reading is
//
//	offset + sum(gain[ch] * level[ch] * reflectance[ch]) + noise
//
// clamped to the 12-bit ADC range.
type Mock struct {
	cfg config.MockConfig

	mu        sync.RWMutex
	connected bool
	done      chan struct{}
	press     chan struct{}
	rng       *rand.Rand
	response  ResponseFunc

	levels    [3]uint16
	indicator bool
	samples   int
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.Default().Mock
	}

	return &Mock{
		cfg:   *cfg,
		press: make(chan struct{}, 1),
		rng:   rand.New(rand.NewPCG(1, 2)),
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.done = make(chan struct{})
	m.levels = [3]uint16{}
	m.indicator = false

	return nil
}

// Close stops the mocked device. A pending WaitButton returns ErrNotConnected.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.connected = false
	close(m.done)

	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Drive sets the simulated LED drive level.
func (m *Mock) Drive(ch sample.Channel, level uint16) error {
	if !ch.Valid() {
		return fmt.Errorf("invalid channel %d", ch)
	}
	if level > sample.MaxDrive {
		return fmt.Errorf("drive level %d out of range (max %d)", level, sample.MaxDrive)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return ErrNotConnected
	}

	m.levels[ch] = level
	return nil
}

// Sample returns the simulated sensor reading for the current drive levels.
func (m *Mock) Sample() (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return 0, ErrNotConnected
	}

	m.samples++

	var raw float64
	if m.response != nil {
		raw = m.response(m.levels)
	} else {
		raw = m.cfg.Offset
		for ch := range m.levels {
			raw += m.cfg.Gain[ch] * float64(m.levels[ch]) * m.cfg.Reflectance[ch]
		}
	}
	if m.cfg.Noise > 0 {
		raw += (m.rng.Float64()*2 - 1) * m.cfg.Noise
	}

	return uint16(math.Max(0, math.Min(raw, sample.MaxRaw))), nil
}

// Wait sleeps for d.
func (m *Mock) Wait(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// SetIndicator sets the simulated indicator state.
func (m *Mock) SetIndicator(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return ErrNotConnected
	}

	m.indicator = on
	return nil
}

// WaitButton blocks until Press is called, or until ButtonDelay elapses when
// it is configured.
func (m *Mock) WaitButton() error {
	m.mu.RLock()
	connected, done := m.connected, m.done
	m.mu.RUnlock()

	if !connected {
		return ErrNotConnected
	}

	var auto <-chan time.Time
	if m.cfg.ButtonDelay > 0 {
		timer := time.NewTimer(m.cfg.ButtonDelay)
		defer timer.Stop()
		auto = timer.C
	}

	select {
	case <-m.press:
		return nil
	case <-auto:
		return nil
	case <-done:
		return ErrNotConnected
	}
}

// Press simulates a push button press. Presses do not queue beyond one.
func (m *Mock) Press() {
	select {
	case m.press <- struct{}{}:
	default:
	}
}

// SetReflectance changes the simulated sample under the sensor.
func (m *Mock) SetReflectance(r [3]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Reflectance = r
}

// SetResponse replaces the linear sensor model. Nil restores it.
func (m *Mock) SetResponse(fn ResponseFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = fn
}

// Levels returns the current drive levels.
func (m *Mock) Levels() [3]uint16 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.levels
}

// Indicator returns the indicator state.
func (m *Mock) Indicator() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indicator
}

// Samples returns how many ADC reads were performed.
func (m *Mock) Samples() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.samples
}
