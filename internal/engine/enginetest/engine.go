// Package enginetest provides a scripted in-memory implementation of the
// engine facade. It mints sequential handles, tracks live voices per source
// and lets tests end voices to simulate the engine reaping finished playback.
package enginetest

import (
	"sync"

	"github.com/tphakala/audiosession/internal/engine"
	"github.com/tphakala/audiosession/internal/result"
)

const maxGlobalFilters = 8

type voice struct {
	source   engine.Source
	paused   bool
	volume   float64
	pan      float64
	speed    float64
	looping  bool
	protect  bool
	position float64
}

// Engine is a fake engine.Engine for tests.
type Engine struct {
	mu sync.Mutex

	inited       bool
	cfg          engine.Config
	nextHandle   engine.Handle
	voices       map[engine.Handle]*voice
	globalVolume float64
	maxActive    int
	soundSpeed   float64
	filters      []engine.FilterType
	filterParams map[engine.FilterType]map[int]float64

	// FailPlay forces Play/Play3D to return the invalid handle.
	FailPlay bool
	// FailLoad forces the source constructors to fail.
	FailLoad bool

	// Automation records every automation call in order, formatted as
	// "op handle from to seconds" by the recording helpers.
	Automation []AutomationCall
}

// AutomationCall is one recorded automation dispatch.
type AutomationCall struct {
	Op      string
	Handle  engine.Handle
	From    float64
	To      float64
	Seconds float64
}

var _ engine.Engine = (*Engine)(nil)

// New returns an uninitialized fake engine.
func New() *Engine {
	return &Engine{
		nextHandle:   1,
		voices:       make(map[engine.Handle]*voice),
		globalVolume: 1.0,
		maxActive:    16,
		soundSpeed:   343.0,
		filterParams: make(map[engine.FilterType]map[int]float64),
	}
}

// source is the fake decoded-file / raw-buffer source object.
type source struct {
	eng       *Engine
	path      string
	destroyed bool
}

func (s *source) Destroy() { s.destroyed = true }

// waveformSource is the fake synthesized source with live parameters.
type waveformSource struct {
	source
	params    engine.WaveformParams
	frequency float64
}

func (w *waveformSource) SetWaveform(kind engine.WaveformKind) { w.params.Kind = kind }
func (w *waveformSource) SetFrequency(hz float64)              { w.frequency = hz }
func (w *waveformSource) SetScale(scale float64)               { w.params.Scale = scale }
func (w *waveformSource) SetDetune(detune float64)             { w.params.Detune = detune }
func (w *waveformSource) SetSuperwave(enabled bool)            { w.params.SuperWave = enabled }

// Params returns the current generator parameters, for assertions.
func (w *waveformSource) Params() engine.WaveformParams { return w.params }

// Frequency returns the current generator frequency, for assertions.
func (w *waveformSource) Frequency() float64 { return w.frequency }

// WaveformState exposes the live parameters of a fake waveform source.
func WaveformState(src engine.WaveformSource) (engine.WaveformParams, float64) {
	w := src.(*waveformSource)
	return w.params, w.frequency
}

// SourceDestroyed reports whether a fake source has been destroyed.
func SourceDestroyed(src engine.Source) bool {
	switch s := src.(type) {
	case *source:
		return s.destroyed
	case *waveformSource:
		return s.destroyed
	}
	return false
}

func (e *Engine) Init(cfg engine.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inited = true
	e.cfg = cfg
	return nil
}

func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inited = false
	e.voices = make(map[engine.Handle]*voice)
}

func (e *Engine) LoadFile(path string) (engine.Source, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailLoad {
		return nil, result.ErrFileLoadFailed
	}
	return &source{eng: e, path: path}, nil
}

func (e *Engine) LoadRaw(samples []float32, sampleRate, channels int) (engine.Source, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailLoad {
		return nil, result.ErrFileLoadFailed
	}
	return &source{eng: e}, nil
}

func (e *Engine) NewWaveform(params engine.WaveformParams) (engine.WaveformSource, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailLoad {
		return nil, result.ErrFileLoadFailed
	}
	return &waveformSource{source: source{eng: e}, params: params, frequency: 440}, nil
}

func (e *Engine) Play(src engine.Source, volume, pan float64, paused bool, bus uint) engine.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailPlay {
		return engine.InvalidHandle
	}
	h := e.nextHandle
	e.nextHandle++
	e.voices[h] = &voice{source: src, paused: paused, volume: volume, pan: pan, speed: 1.0}
	return h
}

func (e *Engine) Play3D(src engine.Source, pos, vel engine.Vec3, volume float64, paused bool, bus uint) engine.Handle {
	return e.Play(src, volume, 0, paused, bus)
}

func (e *Engine) Stop(h engine.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.voices, h)
}

func (e *Engine) StopSource(src engine.Source) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for h, v := range e.voices {
		if v.source == src {
			delete(e.voices, h)
		}
	}
}

func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voices = make(map[engine.Handle]*voice)
}

func (e *Engine) IsValidHandle(h engine.Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.voices[h]
	return ok
}

// EndVoice simulates the engine reaping a naturally finished voice.
func (e *Engine) EndVoice(h engine.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.voices, h)
}

func (e *Engine) withVoice(h engine.Handle, fn func(*voice)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.voices[h]; ok {
		fn(v)
	}
}

func (e *Engine) voiceValue(h engine.Handle, fn func(*voice) float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.voices[h]; ok {
		return fn(v)
	}
	return 0
}

func (e *Engine) SetPause(h engine.Handle, paused bool) {
	e.withVoice(h, func(v *voice) { v.paused = paused })
}

func (e *Engine) GetPause(h engine.Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.voices[h]; ok {
		return v.paused
	}
	return false
}

func (e *Engine) SetVolume(h engine.Handle, volume float64) {
	e.withVoice(h, func(v *voice) { v.volume = volume })
}

func (e *Engine) GetVolume(h engine.Handle) float64 {
	return e.voiceValue(h, func(v *voice) float64 { return v.volume })
}

func (e *Engine) SetPan(h engine.Handle, pan float64) {
	e.withVoice(h, func(v *voice) { v.pan = pan })
}

func (e *Engine) GetPan(h engine.Handle) float64 {
	return e.voiceValue(h, func(v *voice) float64 { return v.pan })
}

func (e *Engine) SetRelativePlaySpeed(h engine.Handle, speed float64) {
	e.withVoice(h, func(v *voice) { v.speed = speed })
}

func (e *Engine) GetRelativePlaySpeed(h engine.Handle) float64 {
	return e.voiceValue(h, func(v *voice) float64 { return v.speed })
}

func (e *Engine) SetLooping(h engine.Handle, enabled bool) {
	e.withVoice(h, func(v *voice) { v.looping = enabled })
}

func (e *Engine) SetProtectVoice(h engine.Handle, protect bool) {
	e.withVoice(h, func(v *voice) { v.protect = protect })
}

func (e *Engine) GetProtectVoice(h engine.Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.voices[h]; ok {
		return v.protect
	}
	return false
}

func (e *Engine) Seek(h engine.Handle, seconds float64) error {
	if seconds < 0 {
		return result.ErrInvalidParameter
	}
	e.withVoice(h, func(v *voice) { v.position = seconds })
	return nil
}

func (e *Engine) StreamPosition(h engine.Handle) float64 {
	return e.voiceValue(h, func(v *voice) float64 { return v.position })
}

func (e *Engine) GetGlobalVolume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.globalVolume
}

func (e *Engine) SetGlobalVolume(volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.globalVolume = volume
}

func (e *Engine) ActiveVoiceCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, v := range e.voices {
		if !v.paused {
			n++
		}
	}
	return n
}

func (e *Engine) VoiceCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.voices)
}

func (e *Engine) CountSource(src engine.Source) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, v := range e.voices {
		if v.source == src {
			n++
		}
	}
	return n
}

func (e *Engine) MaxActiveVoiceCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxActive
}

func (e *Engine) SetMaxActiveVoiceCount(n int) error {
	if n <= 0 {
		return result.ErrInvalidParameter
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxActive = n
	return nil
}

func (e *Engine) record(op string, h engine.Handle, from, to, seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Automation = append(e.Automation, AutomationCall{Op: op, Handle: h, From: from, To: to, Seconds: seconds})
}

func (e *Engine) FadeVolume(h engine.Handle, to, seconds float64) {
	e.record("fadeVolume", h, 0, to, seconds)
}

func (e *Engine) FadePan(h engine.Handle, to, seconds float64) {
	e.record("fadePan", h, 0, to, seconds)
}

func (e *Engine) FadeRelativePlaySpeed(h engine.Handle, to, seconds float64) {
	e.record("fadeRelativePlaySpeed", h, 0, to, seconds)
}

func (e *Engine) FadeGlobalVolume(to, seconds float64) {
	e.record("fadeGlobalVolume", engine.InvalidHandle, 0, to, seconds)
}

func (e *Engine) OscillateVolume(h engine.Handle, from, to, seconds float64) {
	e.record("oscillateVolume", h, from, to, seconds)
}

func (e *Engine) OscillatePan(h engine.Handle, from, to, seconds float64) {
	e.record("oscillatePan", h, from, to, seconds)
}

func (e *Engine) OscillateRelativePlaySpeed(h engine.Handle, from, to, seconds float64) {
	e.record("oscillateRelativePlaySpeed", h, from, to, seconds)
}

func (e *Engine) OscillateGlobalVolume(from, to, seconds float64) {
	e.record("oscillateGlobalVolume", engine.InvalidHandle, from, to, seconds)
}

func (e *Engine) SchedulePause(h engine.Handle, seconds float64) {
	e.record("schedulePause", h, 0, 0, seconds)
}

func (e *Engine) ScheduleStop(h engine.Handle, seconds float64) {
	e.record("scheduleStop", h, 0, 0, seconds)
}

func (e *Engine) Set3DSoundSpeed(speed float64) error {
	if speed <= 0 {
		return result.ErrInvalidParameter
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.soundSpeed = speed
	return nil
}

func (e *Engine) Get3DSoundSpeed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.soundSpeed
}

func (e *Engine) Set3DListenerParameters(pos, at, up, vel engine.Vec3) {}
func (e *Engine) Set3DListenerPosition(pos engine.Vec3)               {}
func (e *Engine) Set3DListenerAt(at engine.Vec3)                      {}
func (e *Engine) Set3DListenerUp(up engine.Vec3)                      {}
func (e *Engine) Set3DListenerVelocity(vel engine.Vec3)               {}

func (e *Engine) Set3DSourceParameters(h engine.Handle, pos, vel engine.Vec3) {
	e.record("set3dSourceParameters", h, 0, 0, 0)
}

func (e *Engine) Set3DSourcePosition(h engine.Handle, pos engine.Vec3) {
	e.record("set3dSourcePosition", h, 0, 0, 0)
}

func (e *Engine) Set3DSourceVelocity(h engine.Handle, vel engine.Vec3) {
	e.record("set3dSourceVelocity", h, 0, 0, 0)
}

func (e *Engine) Set3DSourceMinMaxDistance(h engine.Handle, minDistance, maxDistance float64) {
	e.record("set3dSourceMinMaxDistance", h, minDistance, maxDistance, 0)
}

func (e *Engine) Set3DSourceAttenuation(h engine.Handle, model engine.AttenuationModel, rolloffFactor float64) {
	e.record("set3dSourceAttenuation", h, float64(model), rolloffFactor, 0)
}

func (e *Engine) Set3DSourceDopplerFactor(h engine.Handle, factor float64) {
	e.record("set3dSourceDopplerFactor", h, 0, factor, 0)
}

func (e *Engine) AddGlobalFilter(filter engine.FilterType) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, f := range e.filters {
		if f == filter {
			return result.ErrFilterAlreadyAdded
		}
	}
	if len(e.filters) >= maxGlobalFilters {
		return result.ErrMaxFiltersReached
	}
	e.filters = append(e.filters, filter)
	return nil
}

func (e *Engine) RemoveGlobalFilter(filter engine.FilterType) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, f := range e.filters {
		if f == filter {
			e.filters = append(e.filters[:i], e.filters[i+1:]...)
			return nil
		}
	}
	return result.ErrFilterNotFound
}

func (e *Engine) IsFilterActive(filter engine.FilterType) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, f := range e.filters {
		if f == filter {
			return i, nil
		}
	}
	return -1, result.ErrFilterNotFound
}

func (e *Engine) SetFilterParam(filter engine.FilterType, attributeID int, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := false
	for _, f := range e.filters {
		if f == filter {
			active = true
			break
		}
	}
	if !active {
		return result.ErrFilterNotFound
	}
	params, ok := e.filterParams[filter]
	if !ok {
		params = make(map[int]float64)
		e.filterParams[filter] = params
	}
	params[attributeID] = value
	return nil
}

func (e *Engine) GetFilterParam(filter engine.FilterType, attributeID int) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	params, ok := e.filterParams[filter]
	if !ok {
		return 0, result.ErrFilterNotFound
	}
	return params[attributeID], nil
}
