package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/itohio/gocolorimeter/pkg/config"
	"github.com/itohio/gocolorimeter/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Serial.Echo = false
	cfg.Shell.Prompt = false
	cfg.Shell.Banner = false
	cfg.Timing = config.TimingConfig{PeriodUnit: time.Millisecond}
	return cfg
}

func TestRun_Session(t *testing.T) {
	cfg := testConfig()
	in := strings.NewReader("calibrate 2000\rcolor 0\rmatch 50\rtrigger\rexit\rtrigger\r")
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), cfg, in, &out))

	text := out.String()
	assert.Contains(t, text, "(PWMr: 625,PWMg: 833,PWMb: 1023)\r\n")
	assert.Contains(t, text, "color 0 stored.\r\n")
	assert.Contains(t, text, "color 0\r\n(r: 255,g: 255,b: 209).\r\n")
	assert.True(t, strings.HasSuffix(text, "Exiting Program ...\r\n"), text)
}

func TestRun_BannerAndEOF(t *testing.T) {
	cfg := testConfig()
	cfg.Shell.Banner = true
	cfg.Shell.Prompt = true
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), cfg, strings.NewReader(""), &out))

	assert.Contains(t, out.String(), "MENU")
	assert.Contains(t, out.String(), "Enter Command\r\n")
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig()
	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	defer pw.Close()

	done := make(chan error, 1)
	var out bytes.Buffer
	go func() {
		done <- run(ctx, cfg, pr, &out)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRun_PersistsColors(t *testing.T) {
	cfg := testConfig()
	cfg.Store = config.StoreConfig{Backend: config.BackendFile, Path: filepath.Join(t.TempDir(), "colors.yaml")}

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, strings.NewReader("calibrate 2000\rcolor 7\rexit\r"), &out))

	store, err := openStore(cfg.Store)
	require.NoError(t, err)
	defer store.Close()

	table, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{7}, table.Valid())
	assert.Equal(t, sample.Triplet{Red: 255, Green: 255, Blue: 209}, table[7].Color)
}

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StoreConfig
		wantErr bool
	}{
		{name: "memory", cfg: config.StoreConfig{Backend: config.BackendMemory}},
		{name: "file", cfg: config.StoreConfig{Backend: config.BackendFile, Path: filepath.Join(t.TempDir(), "c.yaml")}},
		{name: "badger", cfg: config.StoreConfig{Backend: config.BackendBadger, Path: filepath.Join(t.TempDir(), "c.db")}},
		{name: "unknown", cfg: config.StoreConfig{Backend: "eeprom"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := openStore(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, store.Close())
		})
	}
}
