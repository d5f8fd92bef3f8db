package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Config represents the application configuration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Timing  TimingConfig  `yaml:"timing"`
	Shell   ShellConfig   `yaml:"shell"`
	Store   StoreConfig   `yaml:"store"`
	Metrics MetricsConfig `yaml:"metrics"`
	Mock    MockConfig    `yaml:"mock"`
}

// SerialConfig contains serial port configuration. An empty port means the
// shell runs on stdin/stdout.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
	Echo     bool   `yaml:"echo"`
}

// TimingConfig contains the settle times and periods used by the engine.
type TimingConfig struct {
	RampSettle     time.Duration `yaml:"ramp_settle"`     // Wait after each calibration/test step
	MeasureSettle  time.Duration `yaml:"measure_settle"`  // Wait after driving a channel before sampling
	IndicatorPulse time.Duration `yaml:"indicator_pulse"` // Indicator on-time in sample mode
	PeriodUnit     time.Duration `yaml:"period_unit"`     // Length of one periodic unit
	ButtonDebounce time.Duration `yaml:"button_debounce"`
	SelfTestStep   time.Duration `yaml:"self_test_step"` // Per-channel on-time of the startup self-test
}

// ShellConfig contains command shell configuration.
type ShellConfig struct {
	MaxLine int  `yaml:"max_line"`
	Prompt  bool `yaml:"prompt"`
	Banner  bool `yaml:"banner"`
}

// StoreConfig selects where reference colors are persisted.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// MetricsConfig contains the Prometheus exporter configuration.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // Empty disables the exporter
}

// MockConfig contains simulated colorimeter configuration.
type MockConfig struct {
	Reflectance [3]float64    `yaml:"reflectance"`  // Per channel reflectance of the simulated sample (0..1)
	Gain        [3]float64    `yaml:"gain"`         // Raw counts per drive step at full reflectance
	Offset      float64       `yaml:"offset"`       // Ambient light in raw counts
	Noise       float64       `yaml:"noise"`        // Uniform noise amplitude in raw counts
	ButtonDelay time.Duration `yaml:"button_delay"` // Auto press after this delay (0 = wait for Press)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "",
			BaudRate: 115200,
			Echo:     true,
		},
		Timing: TimingConfig{
			RampSettle:     20 * time.Millisecond,
			MeasureSettle:  20 * time.Millisecond,
			IndicatorPulse: 10 * time.Millisecond,
			PeriodUnit:     100 * time.Millisecond,
			ButtonDebounce: 10 * time.Millisecond,
			SelfTestStep:   time.Second,
		},
		Shell: ShellConfig{
			MaxLine: 80,
			Prompt:  true,
			Banner:  true,
		},
		Store: StoreConfig{
			Backend: BackendMemory,
		},
		Mock: MockConfig{
			Reflectance: [3]float64{0.8, 0.6, 0.4},
			Gain:        [3]float64{4, 4, 4},
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects values the instrument cannot work with.
func (c *Config) Validate() error {
	var errs []error

	if c.Serial.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("serial.baud_rate must be positive, got %d", c.Serial.BaudRate))
	}
	if c.Shell.MaxLine < 8 {
		errs = append(errs, fmt.Errorf("shell.max_line must be at least 8, got %d", c.Shell.MaxLine))
	}
	if c.Timing.PeriodUnit <= 0 {
		errs = append(errs, fmt.Errorf("timing.period_unit must be positive, got %s", c.Timing.PeriodUnit))
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendFile, BackendBadger:
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store.path is required for %s backend", c.Store.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}

	for i := range c.Mock.Gain {
		if c.Mock.Gain[i] < 0 {
			errs = append(errs, fmt.Errorf("mock.gain[%d] must not be negative", i))
		}
		if c.Mock.Reflectance[i] < 0 {
			errs = append(errs, fmt.Errorf("mock.reflectance[%d] must not be negative", i))
		}
	}

	return errors.Join(errs...)
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Timing.RampSettle == 0 {
		c.Timing.RampSettle = def.Timing.RampSettle
	}
	if c.Timing.MeasureSettle == 0 {
		c.Timing.MeasureSettle = def.Timing.MeasureSettle
	}
	if c.Timing.IndicatorPulse == 0 {
		c.Timing.IndicatorPulse = def.Timing.IndicatorPulse
	}
	if c.Timing.PeriodUnit == 0 {
		c.Timing.PeriodUnit = def.Timing.PeriodUnit
	}
	if c.Timing.ButtonDebounce == 0 {
		c.Timing.ButtonDebounce = def.Timing.ButtonDebounce
	}
	if c.Timing.SelfTestStep == 0 {
		c.Timing.SelfTestStep = def.Timing.SelfTestStep
	}

	if c.Shell.MaxLine == 0 {
		c.Shell.MaxLine = def.Shell.MaxLine
	}

	if c.Store.Backend == "" {
		c.Store.Backend = def.Store.Backend
	}
	if c.Store.Path == "" {
		switch c.Store.Backend {
		case BackendFile:
			c.Store.Path = "colors.yaml"
		case BackendBadger:
			c.Store.Path = "colors.db"
		}
	}
}
