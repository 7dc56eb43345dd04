// Package metrics exposes frame and manifestation statistics to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/iburimskiy/quantum-field/internal/field"
	"github.com/iburimskiy/quantum-field/internal/manifest"
)

const namespace = "quantum_field"

// Collector holds the application's metrics on a private registry. A nil
// *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	Frames         prometheus.Counter
	FrameDuration  prometheus.Histogram
	Connections    prometheus.Gauge
	Particles      prometheus.Gauge
	Manifestations *prometheus.GaugeVec
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	frames := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_total",
		Help:      "Total number of rendered frames",
	})

	frameDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "frame_duration_seconds",
		Help:      "Time spent stepping the field for one frame",
		Buckets:   []float64{.0005, .001, .002, .004, .008, .016, .033, .066},
	})

	connections := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections",
		Help:      "Connections drawn in the last frame",
	})

	particles := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "particles",
		Help:      "Particles in the field",
	})

	manifestations := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "manifestations",
		Help:      "Manifestations by status",
	}, []string{"status"})

	registry.MustRegister(frames, frameDuration, connections, particles, manifestations)

	return &Collector{
		registry:       registry,
		Frames:         frames,
		FrameDuration:  frameDuration,
		Connections:    connections,
		Particles:      particles,
		Manifestations: manifestations,
	}
}

// ObserveFrame records one rendered frame.
func (c *Collector) ObserveFrame(d time.Duration, stats field.FrameStats) {
	if c == nil {
		return
	}
	c.Frames.Inc()
	c.FrameDuration.Observe(d.Seconds())
	c.Connections.Set(float64(stats.Connections))
	c.Particles.Set(float64(stats.Particles))
}

func (c *Collector) SetManifestations(counts map[manifest.Status]int) {
	if c == nil {
		return
	}
	for status, n := range counts {
		c.Manifestations.WithLabelValues(string(status)).Set(float64(n))
	}
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves /metrics from the collector's registry and the runtime
// profiler under /debug.
func (c *Collector) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	router.Mount("/debug", middleware.Profiler())
	return router
}

// Serve listens on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           c.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Debug server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Debug server shutdown failed", zap.Error(err))
			return err
		}
		return nil
	}
}
