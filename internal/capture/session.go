// Package capture manages the live audio-capture device and the
// visualization buffers fed from its real-time callback: a fixed-depth ring
// of FFT+waveform analysis frames and a raw sample history for export. At
// most one capture device is open per session.
package capture

import (
	"encoding/binary"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smallnest/ringbuffer"

	"github.com/tphakala/audiosession/internal/conf"
	"github.com/tphakala/audiosession/internal/device"
	"github.com/tphakala/audiosession/internal/errors"
	"github.com/tphakala/audiosession/internal/logging"
	"github.com/tphakala/audiosession/internal/observability"
	"github.com/tphakala/audiosession/internal/result"
)

// State is the capture session lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateCapturing
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateCapturing:
		return "capturing"
	}
	return "invalid"
}

const drainInterval = 10 * time.Millisecond

// Session owns the capture device lifecycle and the visualization buffers.
// Control operations serialize on one mutex; the device callback touches
// only the lock-free ring matrix and the transfer ring buffer.
type Session struct {
	mu      sync.Mutex
	backend device.Backend
	logger  *slog.Logger
	metrics *observability.Metrics

	state State
	cfg   device.CaptureConfig

	ring     *ringMatrix
	analyzer *analyzer

	// callback scratch, preallocated at Initialize
	waveFrame []float32
	fftFrame  []float32

	// transfer hands raw callback bytes to the drain goroutine; writes
	// never block, a full buffer drops the period instead.
	transfer   *ringbuffer.RingBuffer
	historyMu  sync.Mutex
	history    []float32
	historyCap int
	frames     atomic.Uint64

	ringDepth        int
	initialSmoothing float64

	dev       device.Device
	drainStop chan struct{}
	drainDone chan struct{}
}

// NewSession creates a capture session over the given backend. metrics may
// be nil.
func NewSession(backend device.Backend, settings *conf.Settings, metrics *observability.Metrics) *Session {
	s := &Session{
		backend: backend,
		logger:  logging.ForService("capture"),
		metrics: metrics,
		cfg: device.CaptureConfig{
			DeviceIndex: settings.Capture.Device,
			SampleRate:  settings.Capture.SampleRate,
			Channels:    settings.Capture.Channels,
			FrameSize:   settings.Capture.FrameSize,
		},
		historyCap:       settings.Capture.HistorySeconds * settings.Capture.SampleRate,
		ringDepth:        settings.Capture.RingDepth,
		initialSmoothing: settings.Capture.FFTSmoothing,
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsInited reports whether the session has been initialized.
func (s *Session) IsInited() bool {
	return s.State() != StateUninitialized
}

// IsStarted reports whether the device is currently capturing.
func (s *Session) IsStarted() bool {
	return s.State() == StateCapturing
}

// ListDevices enumerates the available capture devices. Valid in any state
// and has no effect on the session.
func (s *Session) ListDevices() ([]device.Info, error) {
	return s.backend.Enumerate()
}

// Initialize prepares the session for the given capture device index (-1
// selects the default device) and allocates the visualization buffers. A
// session that is already initialized or capturing must be disposed first.
func (s *Session) Initialize(deviceIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUninitialized {
		return errors.New(result.ErrDeviceInitFailed).
			Component("capture").
			Category(errors.CategoryState).
			Context("state", s.state.String()).
			Context("cause", "already initialized").
			Build()
	}

	s.cfg.DeviceIndex = deviceIndex
	frameSize := s.cfg.FrameSize
	s.ring = newRingMatrix(s.ringDepth, frameSize*2)
	s.ring.wrapped = s.metrics.RecordRingWrap
	s.analyzer = newAnalyzer(frameSize)
	s.analyzer.setSmoothing(s.initialSmoothing)
	s.waveFrame = make([]float32, frameSize)
	s.fftFrame = make([]float32, frameSize)
	// Transfer holds up to one second of raw f32 bytes before periods
	// drop, and never less than 64 periods.
	s.transfer = ringbuffer.New(max(s.cfg.SampleRate*4, frameSize*4*64))
	s.history = make([]float32, 0, s.historyCap)
	s.frames.Store(0)
	s.state = StateInitialized

	s.logger.Info("capture session initialized",
		"device_index", deviceIndex,
		"frame_size", frameSize,
		"sample_rate", s.cfg.SampleRate)
	return nil
}

// Start opens the physical device and begins capturing. Device-open failure
// leaves the state unchanged.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateUninitialized {
		return errors.New(result.ErrDeviceNotInited).
			Component("capture").
			Category(errors.CategoryState).
			Build()
	}
	if s.state == StateCapturing {
		return nil
	}

	dev, err := s.backend.Open(s.cfg, s.onFrames, s.onDeviceStop)
	if err != nil {
		return errors.New(result.ErrDeviceInitFailed).
			Component("capture").
			Category(errors.CategoryDevice).
			Context("device_index", s.cfg.DeviceIndex).
			Context("cause", err.Error()).
			Build()
	}
	if err := dev.Start(); err != nil {
		dev.Close()
		return errors.New(result.ErrDeviceInitFailed).
			Component("capture").
			Category(errors.CategoryDevice).
			Context("device_index", s.cfg.DeviceIndex).
			Context("cause", err.Error()).
			Build()
	}

	s.dev = dev
	s.drainStop = make(chan struct{})
	s.drainDone = make(chan struct{})
	go s.drainLoop(s.drainStop, s.drainDone)
	s.state = StateCapturing
	s.logger.Info("capture started", "device_index", s.cfg.DeviceIndex)
	return nil
}

// Stop tears the physical device down and returns to the initialized state.
// Idempotent when already stopped.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateUninitialized {
		return errors.New(result.ErrDeviceNotInited).
			Component("capture").
			Category(errors.CategoryState).
			Build()
	}
	if s.state != StateCapturing {
		return nil
	}
	s.stopLocked()
	return nil
}

func (s *Session) stopLocked() {
	if err := s.dev.Stop(); err != nil {
		s.logger.Warn("device stop failed", "error", err)
	}
	s.dev.Close()
	s.dev = nil

	close(s.drainStop)
	<-s.drainDone
	// Flush whatever the callback managed to hand over before the device
	// stopped, so history is complete and deterministic after Stop.
	s.drainTransfer()

	s.state = StateInitialized
	s.logger.Info("capture stopped")
}

// Dispose stops capture if needed and releases the buffers, returning to
// the uninitialized state. Idempotent.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCapturing {
		s.stopLocked()
	}
	s.ring = nil
	s.analyzer = nil
	s.waveFrame = nil
	s.fftFrame = nil
	s.transfer = nil
	s.historyMu.Lock()
	s.history = nil
	s.historyMu.Unlock()
	s.state = StateUninitialized
}

// onFrames is the device data callback. It runs on the backend's real-time
// thread: no allocation, no registry calls, no unbounded locking. samples is
// raw little-endian f32 PCM.
func (s *Session) onFrames(samples []byte, frameCount uint32) {
	ring := s.ring
	if ring == nil {
		return
	}

	n := min(len(samples)/4, len(s.waveFrame))
	for i := 0; i < n; i++ {
		s.waveFrame[i] = math.Float32frombits(binary.LittleEndian.Uint32(samples[i*4:]))
	}
	for i := n; i < len(s.waveFrame); i++ {
		s.waveFrame[i] = 0
	}

	s.analyzer.process(s.waveFrame, s.fftFrame)
	ring.push(s.fftFrame, s.waveFrame)

	if _, err := s.transfer.Write(samples[:n*4]); err != nil {
		s.metrics.RecordHistoryDrop()
	}

	s.frames.Add(1)
	s.metrics.RecordCaptureFrame()
}

// onDeviceStop is invoked by the backend when the device stops on its own,
// for example when the hardware disappears.
func (s *Session) onDeviceStop() {
	s.logger.Warn("capture device stopped unexpectedly")
}

// drainLoop moves raw bytes from the transfer ring into the history buffer
// off the audio thread.
func (s *Session) drainLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.drainTransfer()
		}
	}
}

func (s *Session) drainTransfer() {
	buf := make([]byte, 16*1024)
	for {
		n, err := s.transfer.Read(buf)
		if n == 0 {
			if err != nil && !errors.Is(err, ringbuffer.ErrIsEmpty) {
				s.logger.Warn("transfer read failed", "error", err)
			}
			return
		}
		s.appendHistory(buf[:n])
	}
}

func (s *Session) appendHistory(raw []byte) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	for i := 0; i+4 <= len(raw); i += 4 {
		if len(s.history) >= s.historyCap {
			break
		}
		s.history = append(s.history, math.Float32frombits(binary.LittleEndian.Uint32(raw[i:])))
	}
	s.metrics.RecordHistoryBytes(len(raw))
}

// Read2D copies the analysis ring into dst, newest frame first. Each
// destination row receives frameSize spectrum bins followed by frameSize
// waveform samples. Returns the number of rows copied.
func (s *Session) Read2D(dst [][]float32) (int, error) {
	s.mu.Lock()
	ring := s.ring
	state := s.state
	cols := s.cfg.FrameSize * 2
	s.mu.Unlock()

	if state == StateUninitialized {
		return 0, errors.New(result.ErrDeviceNotInited).
			Component("capture").
			Category(errors.CategoryState).
			Build()
	}
	if len(dst) == 0 {
		return 0, errors.New(result.ErrNullPointer).
			Component("capture").
			Category(errors.CategoryValidation).
			Context("argument", "dst").
			Build()
	}
	for _, row := range dst {
		if len(row) < cols {
			return 0, errors.New(result.ErrInvalidParameter).
				Component("capture").
				Category(errors.CategoryValidation).
				Context("row_len", len(row)).
				Context("required", cols).
				Build()
		}
	}
	return ring.snapshot(dst), nil
}

// ReadWave copies the newest raw waveform frame into dst.
func (s *Session) ReadWave(dst []float32) error {
	s.mu.Lock()
	ring := s.ring
	state := s.state
	frameSize := s.cfg.FrameSize
	s.mu.Unlock()

	if state == StateUninitialized {
		return errors.New(result.ErrDeviceNotInited).
			Component("capture").
			Category(errors.CategoryState).
			Build()
	}
	if len(dst) < frameSize {
		return errors.New(result.ErrNullPointer).
			Component("capture").
			Category(errors.CategoryValidation).
			Context("argument", "dst").
			Build()
	}
	if !ring.snapshotWave(dst) {
		for i := range dst[:frameSize] {
			dst[i] = 0
		}
	}
	return nil
}

// ReadFullHistory copies the raw samples accumulated since capture start
// into dst and returns how many were copied.
func (s *Session) ReadFullHistory(dst []float32) (int, error) {
	if s.State() == StateUninitialized {
		return 0, errors.New(result.ErrDeviceNotInited).
			Component("capture").
			Category(errors.CategoryState).
			Build()
	}
	if dst == nil {
		return 0, errors.New(result.ErrNullPointer).
			Component("capture").
			Category(errors.CategoryValidation).
			Context("argument", "dst").
			Build()
	}
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	return copy(dst, s.history), nil
}

// HistoryLen returns how many raw samples the history currently holds.
func (s *Session) HistoryLen() int {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	return len(s.history)
}

// RecordedFrameCount returns the number of callback periods ingested since
// Initialize.
func (s *Session) RecordedFrameCount() uint64 {
	return s.frames.Load()
}

// FrameCount returns how many analysis frames the ring currently holds.
func (s *Session) FrameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ring == nil {
		return 0
	}
	return s.ring.frameCount()
}

// SetFFTSmoothing sets the per-bin exponential smoothing factor applied to
// every ingested spectrum, clamped to [0,1]. Factor 0 passes raw spectra
// through, factor 1 freezes the spectrum at its first value.
func (s *Session) SetFFTSmoothing(factor float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUninitialized {
		return errors.New(result.ErrDeviceNotInited).
			Component("capture").
			Category(errors.CategoryState).
			Build()
	}
	s.analyzer.setSmoothing(factor)
	return nil
}

// FFTSmoothing returns the current smoothing factor.
func (s *Session) FFTSmoothing() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analyzer == nil {
		return 0
	}
	return s.analyzer.getSmoothing()
}
