package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics counts search work. Each instance has its own registry so tests
// don't collide on the default one.
type metrics struct {
	registry *prometheus.Registry

	evaluations  prometheus.Counter
	restarts     prometheus.Counter
	improvements prometheus.Counter
	bestFitness  prometheus.Gauge
	period       prometheus.Gauge
	solved       *prometheus.CounterVec
	duration     prometheus.Histogram
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &metrics{
		registry: reg,
		evaluations: f.NewCounter(prometheus.CounterOpts{
			Name: "slippery_keys_evaluated_total",
			Help: "Candidate keys decrypted and scored",
		}),
		restarts: f.NewCounter(prometheus.CounterOpts{
			Name: "slippery_column_restarts_total",
			Help: "Key columns re-randomized before a local climb",
		}),
		improvements: f.NewCounter(prometheus.CounterOpts{
			Name: "slippery_best_improvements_total",
			Help: "Times a new best key was recorded",
		}),
		bestFitness: f.NewGauge(prometheus.GaugeOpts{
			Name: "slippery_best_fitness",
			Help: "Tetragram fitness of the best key of the current ciphertext",
		}),
		period: f.NewGauge(prometheus.GaugeOpts{
			Name: "slippery_period",
			Help: "Period of the current ciphertext",
		}),
		solved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slippery_ciphertexts_total",
			Help: "Ciphertexts processed by result",
		}, []string{"result"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "slippery_solve_duration_seconds",
			Help:    "Wall time spent on one ciphertext",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
		}),
	}
}

// serve exposes the registry on addr until ctx is done.
func (m *metrics) serve(ctx context.Context, addr string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		log.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()
}
