// Package observability provides Prometheus metrics for the sound registry
// and the capture session. Metrics are an optional hook: every recording
// method is safe to call on a nil receiver so callers never need to branch.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains Prometheus metrics for the audio session layers.
type Metrics struct {
	registry *prometheus.Registry

	soundsLoadedTotal    *prometheus.CounterVec
	soundLoadErrorsTotal *prometheus.CounterVec
	voicesStartedTotal   prometheus.Counter
	voicesEndedTotal     prometheus.Counter
	activeSoundsGauge    prometheus.Gauge

	captureFramesTotal      prometheus.Counter
	captureRingWrapsTotal   prometheus.Counter
	historyDroppedWrites    prometheus.Counter
	historyBytesAccumulated prometheus.Counter
}

// NewMetrics creates and registers the audio session metrics on the given
// registry.
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}

	m.soundsLoadedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiosession_sounds_loaded_total",
			Help: "Total number of sound definitions loaded by source kind",
		},
		[]string{"source_kind"},
	)
	m.soundLoadErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiosession_sound_load_errors_total",
			Help: "Total number of failed sound loads by error code",
		},
		[]string{"code"},
	)
	m.voicesStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audiosession_voices_started_total",
			Help: "Total number of playback voices started",
		},
	)
	m.voicesEndedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audiosession_voices_ended_total",
			Help: "Total number of playback voices stopped or reaped",
		},
	)
	m.activeSoundsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "audiosession_active_sounds",
			Help: "Number of sound definitions currently in the registry",
		},
	)
	m.captureFramesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audiosession_capture_frames_total",
			Help: "Total number of analysis frames ingested from the capture callback",
		},
	)
	m.captureRingWrapsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audiosession_capture_ring_wraps_total",
			Help: "Times the visualization ring buffer wrapped around",
		},
	)
	m.historyDroppedWrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audiosession_history_dropped_writes_total",
			Help: "Capture callback history writes dropped because the transfer ring was full",
		},
	)
	m.historyBytesAccumulated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audiosession_history_bytes_total",
			Help: "Raw sample bytes accumulated into the capture history buffer",
		},
	)

	collectors := []prometheus.Collector{
		m.soundsLoadedTotal,
		m.soundLoadErrorsTotal,
		m.voicesStartedTotal,
		m.voicesEndedTotal,
		m.activeSoundsGauge,
		m.captureFramesTotal,
		m.captureRingWrapsTotal,
		m.historyDroppedWrites,
		m.historyBytesAccumulated,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordSoundLoaded increments the loaded counter for a source kind.
func (m *Metrics) RecordSoundLoaded(sourceKind string) {
	if m == nil {
		return
	}
	m.soundsLoadedTotal.WithLabelValues(sourceKind).Inc()
}

// RecordSoundLoadError increments the load error counter for a code.
func (m *Metrics) RecordSoundLoadError(code string) {
	if m == nil {
		return
	}
	m.soundLoadErrorsTotal.WithLabelValues(code).Inc()
}

// RecordVoiceStarted increments the started voice counter.
func (m *Metrics) RecordVoiceStarted() {
	if m == nil {
		return
	}
	m.voicesStartedTotal.Inc()
}

// RecordVoiceEnded increments the ended voice counter.
func (m *Metrics) RecordVoiceEnded() {
	if m == nil {
		return
	}
	m.voicesEndedTotal.Inc()
}

// SetActiveSounds updates the registry size gauge.
func (m *Metrics) SetActiveSounds(n int) {
	if m == nil {
		return
	}
	m.activeSoundsGauge.Set(float64(n))
}

// RecordCaptureFrame increments the ingested frame counter.
func (m *Metrics) RecordCaptureFrame() {
	if m == nil {
		return
	}
	m.captureFramesTotal.Inc()
}

// RecordRingWrap increments the ring wraparound counter.
func (m *Metrics) RecordRingWrap() {
	if m == nil {
		return
	}
	m.captureRingWrapsTotal.Inc()
}

// RecordHistoryDrop increments the dropped history write counter.
func (m *Metrics) RecordHistoryDrop() {
	if m == nil {
		return
	}
	m.historyDroppedWrites.Inc()
}

// RecordHistoryBytes adds to the accumulated history byte counter.
func (m *Metrics) RecordHistoryBytes(n int) {
	if m == nil {
		return
	}
	m.historyBytesAccumulated.Add(float64(n))
}
