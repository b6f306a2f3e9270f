// Package metrics exposes extraction counters and latencies to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "proteobench"

// Recorder is safe for concurrent use. A nil *Recorder records nothing.
type Recorder struct {
	extractions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	queueDepth  prometheus.Gauge
}

// NewRecorder registers the collectors on reg; prometheus.DefaultRegisterer
// is used when reg is nil.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		// Labels: engine, status (OK, DEDUPLICATED, FAILED, UNSUPPORTED)
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Parameter files processed, by engine and outcome",
		}, []string{"engine", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_seconds",
			Help:      "Time to read and normalize one parameter file",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"engine"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_queue_depth",
			Help:      "Files waiting in the ingest queue",
		}),
	}
	reg.MustRegister(r.extractions, r.latency, r.queueDepth)
	return r
}

// Extraction records one processed file.
func (r *Recorder) Extraction(engine, status string, took time.Duration) {
	if r == nil {
		return
	}
	if engine == "" {
		engine = "unknown"
	}
	r.extractions.WithLabelValues(engine, status).Inc()
	r.latency.WithLabelValues(engine).Observe(took.Seconds())
}

// QueueDepth reports the current backlog of the ingest queue.
func (r *Recorder) QueueDepth(n int) {
	if r == nil {
		return
	}
	r.queueDepth.Set(float64(n))
}
