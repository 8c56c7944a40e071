// Package engine defines the contract consumed from the low-level mixing and
// automation engine. The engine itself lives behind this interface: it decodes
// and synthesizes audio, runs automation curves on its own thread and owns the
// voice table. This layer only requests voice creation and termination and
// never frees engine voices directly.
package engine

// Handle identifies one live playback voice inside the engine's voice table.
// It is opaque: no arithmetic is meaningful on it. The zero value is the
// invalid sentinel returned by failed play calls. A handle may expire at any
// time because the engine reaps finished voices concurrently, so validity
// must be re-checked at every use.
type Handle uint32

// InvalidHandle is the sentinel returned when a voice could not be started.
const InvalidHandle Handle = 0

// Valid reports whether the handle is structurally valid. It says nothing
// about whether the voice is still alive inside the engine.
func (h Handle) Valid() bool { return h != InvalidHandle }

// Vec3 is a position or velocity in the 3D audio scene.
type Vec3 struct {
	X, Y, Z float64
}

// WaveformKind selects the basic oscillator shape of a synthesized source.
type WaveformKind int

const (
	WaveformSquare WaveformKind = iota
	WaveformSaw
	WaveformSin
	WaveformTriangle
	WaveformBounce
	WaveformJaws
	WaveformHumps
	WaveformFSquare
	WaveformFSaw
)

// WaveformParams are the construction parameters of a synthesized source.
type WaveformParams struct {
	Kind      WaveformKind
	SuperWave bool    // layer detuned copies of the oscillator
	Detune    float64 // detune amount between superwave layers
	Scale     float64 // amplitude scale of superwave layers
}

// AttenuationModel selects the 3D distance attenuation curve of a source.
type AttenuationModel int

const (
	NoAttenuation AttenuationModel = iota
	InverseDistance
	LinearDistance
	ExponentialDistance
)

// FilterType identifies a global DSP filter slot inside the engine.
type FilterType int

const (
	BiquadResonantFilter FilterType = iota
	EqFilter
	EchoFilter
	LofiFilter
	FlangerFilter
	BassboostFilter
	WaveShaperFilter
	FreeverbFilter
)

// Config carries the engine initialization parameters.
type Config struct {
	SampleRate int
	BufferSize int
	Channels   int
}

// Source is an opaque engine-side decoder or generator object. It is
// exclusively owned by the sound definition that created it and must be
// destroyed exactly once when the definition is unloaded.
type Source interface {
	// Destroy releases the engine-side object. Outstanding voices spawned
	// from the source must be stopped first.
	Destroy()
}

// WaveformSource is the synthesized-source variant of Source. The live
// generator parameters are only reachable through this interface, so waveform
// mutators on a decoded file are impossible rather than a silent no-op.
// Mutations apply to the next generated sample block without interrupting
// playback.
type WaveformSource interface {
	Source

	SetWaveform(kind WaveformKind)
	SetFrequency(hz float64)
	SetScale(scale float64)
	SetDetune(detune float64)
	SetSuperwave(enabled bool)
}

// Engine is the consumed facade over the mixing engine. Per-handle calls
// issued against an already-ended voice are safely ignored by the engine;
// getters on a dead handle return zero values.
type Engine interface {
	// Init brings the backend up. Must be called before any other method.
	Init(cfg Config) error
	// Shutdown stops all voices and tears the backend down.
	Shutdown()

	// LoadFile asks the engine to decode an audio file into a playable source.
	LoadFile(path string) (Source, error)
	// LoadRaw wraps an in-memory sample buffer into a playable source.
	LoadRaw(samples []float32, sampleRate, channels int) (Source, error)
	// NewWaveform constructs a live waveform generator source.
	NewWaveform(params WaveformParams) (WaveformSource, error)

	// Play starts a voice from the source. Returns InvalidHandle on failure.
	Play(src Source, volume, pan float64, paused bool, bus uint) Handle
	// Play3D starts a spatialized voice at the given position and velocity.
	Play3D(src Source, pos, vel Vec3, volume float64, paused bool, bus uint) Handle
	// Stop terminates one voice.
	Stop(h Handle)
	// StopSource terminates every voice spawned from the source.
	StopSource(src Source)
	// StopAll terminates every voice engine-wide.
	StopAll()
	// IsValidHandle reports whether the voice behind h is still alive.
	IsValidHandle(h Handle) bool

	SetPause(h Handle, paused bool)
	GetPause(h Handle) bool
	SetVolume(h Handle, volume float64)
	GetVolume(h Handle) float64
	SetPan(h Handle, pan float64)
	GetPan(h Handle) float64
	SetRelativePlaySpeed(h Handle, speed float64)
	GetRelativePlaySpeed(h Handle) float64
	SetLooping(h Handle, enabled bool)
	SetProtectVoice(h Handle, protect bool)
	GetProtectVoice(h Handle) bool
	Seek(h Handle, seconds float64) error
	StreamPosition(h Handle) float64

	GetGlobalVolume() float64
	SetGlobalVolume(volume float64)
	ActiveVoiceCount() int
	VoiceCount() int
	CountSource(src Source) int
	MaxActiveVoiceCount() int
	SetMaxActiveVoiceCount(n int) error

	FadeVolume(h Handle, to, seconds float64)
	FadePan(h Handle, to, seconds float64)
	FadeRelativePlaySpeed(h Handle, to, seconds float64)
	FadeGlobalVolume(to, seconds float64)
	OscillateVolume(h Handle, from, to, seconds float64)
	OscillatePan(h Handle, from, to, seconds float64)
	OscillateRelativePlaySpeed(h Handle, from, to, seconds float64)
	OscillateGlobalVolume(from, to, seconds float64)
	SchedulePause(h Handle, seconds float64)
	ScheduleStop(h Handle, seconds float64)

	Set3DSoundSpeed(speed float64) error
	Get3DSoundSpeed() float64
	Set3DListenerParameters(pos, at, up, vel Vec3)
	Set3DListenerPosition(pos Vec3)
	Set3DListenerAt(at Vec3)
	Set3DListenerUp(up Vec3)
	Set3DListenerVelocity(vel Vec3)
	Set3DSourceParameters(h Handle, pos, vel Vec3)
	Set3DSourcePosition(h Handle, pos Vec3)
	Set3DSourceVelocity(h Handle, vel Vec3)
	Set3DSourceMinMaxDistance(h Handle, minDistance, maxDistance float64)
	Set3DSourceAttenuation(h Handle, model AttenuationModel, rolloffFactor float64)
	Set3DSourceDopplerFactor(h Handle, factor float64)

	AddGlobalFilter(filter FilterType) error
	RemoveGlobalFilter(filter FilterType) error
	IsFilterActive(filter FilterType) (int, error)
	SetFilterParam(filter FilterType, attributeID int, value float64) error
	GetFilterParam(filter FilterType, attributeID int) (float64, error)
}
