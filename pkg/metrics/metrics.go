// Package metrics exports engine and shell activity to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itohio/gocolorimeter/pkg/command"
	"github.com/itohio/gocolorimeter/pkg/engine"
	"github.com/itohio/gocolorimeter/pkg/sample"
)

const namespace = "colorimeter"

// Collector records engine and command events.
type Collector struct {
	measurements *prometheus.CounterVec
	matches      *prometheus.CounterVec
	calibrations prometheus.Counter
	commands     *prometheus.CounterVec
	value        *prometheus.GaugeVec
	level        *prometheus.GaugeVec
	threshold    prometheus.Gauge
}

// Ensure Collector observes both the engine and the dispatcher.
var (
	_ engine.Observer  = (*Collector)(nil)
	_ command.Observer = (*Collector)(nil)
)

// New creates a Collector registered with reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)

	return &Collector{
		// Labels: source (trigger, periodic, color, button), reported (true, false)
		measurements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_total",
			Help:      "Measurements taken by source",
		}, []string{"source", "reported"}),
		matches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Reference color matches by slot",
		}, []string{"slot"}),
		calibrations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calibrations_total",
			Help:      "Completed calibrations",
		}),
		// Labels: command, result (ok, invalid, rejected, error, unknown)
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Dispatched command lines by result",
		}, []string{"command", "result"}),
		value: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "channel_value",
			Help:      "Last calibrated channel value (0-255)",
		}, []string{"channel"}),
		level: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "calibration_level",
			Help:      "Calibrated drive level per channel (0-1023)",
		}, []string{"channel"}),
		threshold: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "calibration_threshold",
			Help:      "Raw sensor threshold of the last calibration",
		}),
	}
}

func (c *Collector) Measured(src engine.Source, t sample.Triplet, reported bool) {
	c.measurements.WithLabelValues(src.String(), strconv.FormatBool(reported)).Inc()
	for _, ch := range sample.Channels {
		c.value.WithLabelValues(ch.String()).Set(float64(t.At(ch)))
	}
}

func (c *Collector) Matched(slot int) {
	c.matches.WithLabelValues(strconv.Itoa(slot)).Inc()
}

func (c *Collector) Calibrated(cal engine.Calibration) {
	c.calibrations.Inc()
	c.threshold.Set(float64(cal.Threshold))
	for _, ch := range sample.Channels {
		c.level.WithLabelValues(ch.String()).Set(float64(cal.Levels[ch]))
	}
}

func (c *Collector) CommandHandled(name string, result command.Result) {
	c.commands.WithLabelValues(name, string(result)).Inc()
}

// Handler returns the scrape handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return mux
}

// Serve exposes g on addr until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(g),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down metrics server: %v", err)
		}
	}()

	log.Printf("Serving metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}

	return nil
}
