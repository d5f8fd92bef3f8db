package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.True(t, cfg.Serial.Echo)
	assert.Equal(t, 20*time.Millisecond, cfg.Timing.RampSettle)
	assert.Equal(t, 20*time.Millisecond, cfg.Timing.MeasureSettle)
	assert.Equal(t, 10*time.Millisecond, cfg.Timing.IndicatorPulse)
	assert.Equal(t, 100*time.Millisecond, cfg.Timing.PeriodUnit)
	assert.Equal(t, 10*time.Millisecond, cfg.Timing.ButtonDebounce)
	assert.Equal(t, time.Second, cfg.Timing.SelfTestStep)
	assert.Equal(t, 80, cfg.Shell.MaxLine)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, [3]float64{0.8, 0.6, 0.4}, cfg.Mock.Reflectance)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()

	tmpfile, err := os.CreateTemp(t.TempDir(), "test_config_*.yaml")
	require.NoError(t, err)
	_, err = tmpfile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	return tmpfile.Name()
}

func TestLoad_ValidYAML(t *testing.T) {
	name := writeTemp(t, `
serial:
  port: "/dev/ttyACM0"
  baud_rate: 9600
  echo: false

timing:
  ramp_settle: 1ms
  measure_settle: 2ms
  period_unit: 50ms

shell:
  max_line: 40
  prompt: false

store:
  backend: badger
  path: /tmp/colors.db

metrics:
  listen: ":9100"

mock:
  reflectance: [0.5, 0.5, 0.5]
  gain: [2, 3, 4]
  offset: 10
`)

	cfg, err := Load(name)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.False(t, cfg.Serial.Echo)
	assert.Equal(t, time.Millisecond, cfg.Timing.RampSettle)
	assert.Equal(t, 2*time.Millisecond, cfg.Timing.MeasureSettle)
	assert.Equal(t, 50*time.Millisecond, cfg.Timing.PeriodUnit)
	assert.Equal(t, 10*time.Millisecond, cfg.Timing.IndicatorPulse) // default
	assert.Equal(t, 40, cfg.Shell.MaxLine)
	assert.False(t, cfg.Shell.Prompt)
	assert.Equal(t, BackendBadger, cfg.Store.Backend)
	assert.Equal(t, "/tmp/colors.db", cfg.Store.Path)
	assert.Equal(t, ":9100", cfg.Metrics.Listen)
	assert.Equal(t, [3]float64{2, 3, 4}, cfg.Mock.Gain)
	assert.Equal(t, float64(10), cfg.Mock.Offset)
}

func TestLoad_InvalidYAML(t *testing.T) {
	name := writeTemp(t, "invalid: yaml: content: [")

	cfg, err := Load(name)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	name := writeTemp(t, `
store:
  backend: file
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, "colors.yaml", cfg.Store.Path)               // default for file backend
	assert.Equal(t, 115200, cfg.Serial.BaudRate)                 // default
	assert.Equal(t, 100*time.Millisecond, cfg.Timing.PeriodUnit) // default
}

func TestLoad_InvalidValues(t *testing.T) {
	name := writeTemp(t, `
store:
  backend: floppy
`)

	cfg, err := Load(name)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults",
			modify: func(c *Config) {},
		},
		{
			name:    "negative baud rate",
			modify:  func(c *Config) { c.Serial.BaudRate = -1 },
			wantErr: true,
		},
		{
			name:    "short line",
			modify:  func(c *Config) { c.Shell.MaxLine = 4 },
			wantErr: true,
		},
		{
			name:    "zero period unit",
			modify:  func(c *Config) { c.Timing.PeriodUnit = 0 },
			wantErr: true,
		},
		{
			name:    "file backend without path",
			modify:  func(c *Config) { c.Store.Backend = BackendFile },
			wantErr: true,
		},
		{
			name: "badger backend with path",
			modify: func(c *Config) {
				c.Store.Backend = BackendBadger
				c.Store.Path = "colors.db"
			},
		},
		{
			name:    "negative gain",
			modify:  func(c *Config) { c.Mock.Gain[1] = -1 },
			wantErr: true,
		},
		{
			name:    "negative reflectance",
			modify:  func(c *Config) { c.Mock.Reflectance[2] = -0.1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Timing.MeasureSettle = 5 * time.Millisecond
	cfg.Mock.ButtonDelay = time.Second

	name := writeTemp(t, "")
	require.NoError(t, cfg.Save(name))

	loaded, err := Load(name)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 5*time.Millisecond, loaded.Timing.MeasureSettle)
	assert.Equal(t, time.Second, loaded.Mock.ButtonDelay)
	assert.Equal(t, cfg.Mock.Reflectance, loaded.Mock.Reflectance)
}
