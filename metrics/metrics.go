// Package metrics wraps a prometheus registry with the counters,
// gauges, and histogram SPEC_FULL.md §4.N calls for: FIFO depth, Deq
// queue depth, video frames encoded, and per-frame duration ticks.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics owns a private prometheus registry and the collectors
// registered against it.
type Metrics struct {
	Registry *prometheus.Registry

	FIFODepth       *prometheus.GaugeVec
	DeqQueueDepth   *prometheus.GaugeVec
	VideoFrames     *prometheus.CounterVec
	VideoFrameTicks prometheus.Histogram
}

// New creates a Metrics instance with every collector registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		FIFODepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dvz_fifo_depth",
			Help: "Current item count of a named FIFO.",
		}, []string{"name"}),
		DeqQueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dvz_deq_queue_depth",
			Help: "Current item count of a Deq's named queue.",
		}, []string{"deq", "queue"}),
		VideoFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dvz_video_frames_encoded_total",
			Help: "Total frames successfully submitted to a video encoder backend.",
		}, []string{"backend"}),
		VideoFrameTicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dvz_video_frame_duration_ticks",
			Help:    "Per-frame duration in 90kHz ticks, as computed by the video encoder orchestrator.",
			Buckets: prometheus.LinearBuckets(1000, 500, 10),
		}),
	}
	reg.MustRegister(m.FIFODepth, m.DeqQueueDepth, m.VideoFrames, m.VideoFrameTicks)
	return m
}

// ObserveFIFODepth records the current depth of the named FIFO.
func (m *Metrics) ObserveFIFODepth(name string, depth int) {
	m.FIFODepth.WithLabelValues(name).Set(float64(depth))
}

// ObserveDeqQueueDepth records the current depth of one of a Deq's
// queues.
func (m *Metrics) ObserveDeqQueueDepth(deq string, queue int, depth int) {
	m.DeqQueueDepth.WithLabelValues(deq, strconv.Itoa(queue)).Set(float64(depth))
}

// RecordFrameEncoded increments the per-backend encoded-frame counter
// and observes the frame's duration in 90kHz ticks.
func (m *Metrics) RecordFrameEncoded(backend string, durationTicks uint32) {
	m.VideoFrames.WithLabelValues(backend).Inc()
	m.VideoFrameTicks.Observe(float64(durationTicks))
}
