package sound

import (
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tphakala/audiosession/internal/engine"
	"github.com/tphakala/audiosession/internal/errors"
	"github.com/tphakala/audiosession/internal/logging"
	"github.com/tphakala/audiosession/internal/observability"
	"github.com/tphakala/audiosession/internal/result"
)

// rawSourceIdentity is the fixed descriptor for in-memory sample buffers.
// All raw loads share one identity, so loading a second raw buffer is a
// duplicate just like re-loading a file.
const rawSourceIdentity = "memory-mapped-sample"

// Registry owns every loaded sound definition and serializes all mutating
// operations on one mutex. Load, play, unload and reap share the exclusion
// domain, so an unloadAll can never race a play into a half-destroyed
// definition.
type Registry struct {
	mu      sync.Mutex
	eng     engine.Engine
	sounds  map[Hash]*Sound
	bus     *eventBus
	metrics *observability.Metrics
	logger  *slog.Logger
	inited  bool
}

// NewRegistry creates a registry on top of the given engine facade. metrics
// may be nil.
func NewRegistry(eng engine.Engine, metrics *observability.Metrics) *Registry {
	return &Registry{
		eng:     eng,
		sounds:  make(map[Hash]*Sound),
		bus:     newEventBus(),
		metrics: metrics,
		logger:  logging.ForService("sound"),
	}
}

// Init brings the engine backend up. Must precede any load or play call.
func (r *Registry) Init(cfg engine.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inited {
		r.disposeAllLocked()
	}
	if err := r.eng.Init(cfg); err != nil {
		return errors.New(result.ErrBackendNotInited).
			Component("sound").
			Category(errors.CategoryEngine).
			Context("cause", err.Error()).
			Build()
	}
	r.inited = true
	r.logger.Info("engine initialized",
		"sample_rate", cfg.SampleRate,
		"buffer_size", cfg.BufferSize,
		"channels", cfg.Channels)
	return nil
}

// IsInited reports whether the engine backend is up.
func (r *Registry) IsInited() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inited
}

// Dispose stops everything, destroys all definitions and shuts the engine
// down.
func (r *Registry) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inited {
		return
	}
	r.disposeAllLocked()
	r.eng.Shutdown()
	r.inited = false
}

func hashDescriptor(descriptor string) Hash {
	h := fnv.New32a()
	_, _ = h.Write([]byte(descriptor))
	v := Hash(h.Sum32())
	if v == 0 {
		// Zero is the invalid sentinel, remap the one colliding input.
		v = 1
	}
	return v
}

// Load registers an audio file as a sound definition. Loading a descriptor
// that already resolved to a definition returns the existing hash together
// with a fileAlreadyLoaded error; the duplicate is a signal, not a failure,
// and no engine object is created for it.
func (r *Registry) Load(path string) (Hash, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inited {
		return 0, errors.New(result.ErrBackendNotInited).
			Component("sound").
			Category(errors.CategoryState).
			Build()
	}

	h := hashDescriptor(path)
	if _, exists := r.sounds[h]; exists {
		return h, errors.New(result.ErrFileAlreadyLoaded).
			Component("sound").
			Category(errors.CategoryConflict).
			Context("path", path).
			Build()
	}

	info, err := probeFile(path)
	if err != nil {
		r.metrics.RecordSoundLoadError(result.CodeOf(err).String())
		return 0, err
	}

	src, err := r.eng.LoadFile(path)
	if err != nil {
		// Nothing was inserted yet, so the registry never holds a
		// half-constructed definition.
		r.metrics.RecordSoundLoadError(result.FileLoadFailed.String())
		return 0, errors.New(result.ErrFileLoadFailed).
			Component("sound").
			Category(errors.CategoryEngine).
			Context("path", path).
			Context("cause", err.Error()).
			Build()
	}

	r.sounds[h] = &Sound{
		hash:     h,
		kind:     KindDecodedFile,
		path:     path,
		source:   src,
		duration: info.duration,
	}
	r.metrics.RecordSoundLoaded(KindDecodedFile.String())
	r.metrics.SetActiveSounds(len(r.sounds))
	r.logger.Debug("sound loaded", "hash", h, "path", path, "duration", info.duration)
	return h, nil
}

// LoadRaw registers an in-memory sample buffer as a sound definition. The
// buffer must be non-nil and non-empty.
func (r *Registry) LoadRaw(samples []float32, sampleRate, channels int) (Hash, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inited {
		return 0, errors.New(result.ErrBackendNotInited).
			Component("sound").
			Category(errors.CategoryState).
			Build()
	}
	if samples == nil {
		return 0, errors.New(result.ErrNullPointer).
			Component("sound").
			Category(errors.CategoryValidation).
			Context("argument", "samples").
			Build()
	}
	if len(samples) == 0 || sampleRate <= 0 || channels <= 0 {
		return 0, errors.New(result.ErrInvalidParameter).
			Component("sound").
			Category(errors.CategoryValidation).
			Context("samples", len(samples)).
			Context("sample_rate", sampleRate).
			Context("channels", channels).
			Build()
	}

	h := hashDescriptor(rawSourceIdentity)
	if _, exists := r.sounds[h]; exists {
		return h, errors.New(result.ErrFileAlreadyLoaded).
			Component("sound").
			Category(errors.CategoryConflict).
			Build()
	}

	src, err := r.eng.LoadRaw(samples, sampleRate, channels)
	if err != nil {
		r.metrics.RecordSoundLoadError(result.FileLoadFailed.String())
		return 0, errors.New(result.ErrFileLoadFailed).
			Component("sound").
			Category(errors.CategoryEngine).
			Context("cause", err.Error()).
			Build()
	}

	r.sounds[h] = &Sound{
		hash:   h,
		kind:   KindRawBuffer,
		path:   rawSourceIdentity,
		source: src,
	}
	r.metrics.RecordSoundLoaded(KindRawBuffer.String())
	r.metrics.SetActiveSounds(len(r.sounds))
	return h, nil
}

// Synthesize creates a waveform generator definition. Every call mints a
// fresh random hash; synthesized sources are never deduplicated.
func (r *Registry) Synthesize(params engine.WaveformParams) (Hash, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inited {
		return 0, errors.New(result.ErrBackendNotInited).
			Component("sound").
			Category(errors.CategoryState).
			Build()
	}

	h := r.mintHashLocked()
	src, err := r.eng.NewWaveform(params)
	if err != nil {
		r.metrics.RecordSoundLoadError(result.FileLoadFailed.String())
		return 0, errors.New(result.ErrFileLoadFailed).
			Component("sound").
			Category(errors.CategoryEngine).
			Context("cause", err.Error()).
			Build()
	}

	r.sounds[h] = &Sound{
		hash:     h,
		kind:     KindWaveform,
		source:   src,
		waveform: src,
	}
	r.metrics.RecordSoundLoaded(KindWaveform.String())
	r.metrics.SetActiveSounds(len(r.sounds))
	return h, nil
}

// mintHashLocked draws random hashes until one neither collides with a
// loaded definition nor equals the invalid sentinel.
func (r *Registry) mintHashLocked() Hash {
	for {
		h := Hash(uuid.New().ID())
		if h == 0 {
			continue
		}
		if _, exists := r.sounds[h]; !exists {
			return h
		}
	}
}

// Play starts a voice from a loaded definition on the main bus. An unknown
// hash fails silently with the invalid handle and mutates nothing.
func (r *Registry) Play(hash Hash, volume, pan float64, startPaused bool) engine.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sounds[hash]
	if !ok {
		return engine.InvalidHandle
	}
	h := r.eng.Play(s.source, volume, pan, startPaused, 0)
	if !h.Valid() {
		return engine.InvalidHandle
	}
	s.handles = append(s.handles, h)
	r.metrics.RecordVoiceStarted()
	return h
}

// Play3D starts a spatialized voice. Same contract as Play.
func (r *Registry) Play3D(hash Hash, pos, vel engine.Vec3, volume float64, startPaused bool, bus uint) engine.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sounds[hash]
	if !ok {
		return engine.InvalidHandle
	}
	h := r.eng.Play3D(s.source, pos, vel, volume, startPaused, bus)
	if !h.Valid() {
		return engine.InvalidHandle
	}
	s.handles = append(s.handles, h)
	r.metrics.RecordVoiceStarted()
	return h
}

// Stop terminates the voice behind the handle and removes it from its
// owner's handle list. Unresolvable handles are a no-op, so stopping a voice
// twice is harmless.
func (r *Registry) Stop(h engine.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, _ := r.resolveLocked(h)
	if s == nil {
		return
	}
	r.eng.Stop(h)
	if s.removeHandle(h) {
		r.metrics.RecordVoiceEnded()
	}
}

// Unload stops every voice of the definition, destroys the engine-side
// object and removes the definition. Unknown hashes are a no-op.
func (r *Registry) Unload(hash Hash) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sounds[hash]
	if !ok {
		return
	}
	r.unloadLocked(s)
	r.metrics.SetActiveSounds(len(r.sounds))
}

// UnloadAll stops every voice engine-wide and clears the registry. Runs
// under the same exclusion domain as Play, so no concurrent play can land a
// handle into a definition that is mid-destruction.
func (r *Registry) UnloadAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposeAllLocked()
	r.metrics.SetActiveSounds(0)
}

func (r *Registry) disposeAllLocked() {
	r.eng.StopAll()
	for _, s := range r.sounds {
		for range s.handles {
			r.metrics.RecordVoiceEnded()
		}
		s.handles = nil
		s.source.Destroy()
		r.bus.publish(Event{Kind: DefinitionDisposed, Hash: s.hash})
	}
	r.sounds = make(map[Hash]*Sound)
}

func (r *Registry) unloadLocked(s *Sound) {
	r.eng.StopSource(s.source)
	for range s.handles {
		r.metrics.RecordVoiceEnded()
	}
	s.handles = nil
	s.source.Destroy()
	delete(r.sounds, s.hash)
	r.bus.publish(Event{Kind: DefinitionDisposed, Hash: s.hash})
	r.logger.Debug("sound unloaded", "hash", s.hash, "path", s.path)
}

// ReapEnded sweeps every definition for handles the engine no longer
// considers alive, removes them and emits InstanceEnded events in handle
// creation order. The engine reaps finished voices on its own thread, so
// this is how naturally ended instances leave the registry.
func (r *Registry) ReapEnded() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sounds {
		if len(s.handles) == 0 {
			continue
		}
		kept := s.handles[:0]
		for _, h := range s.handles {
			if r.eng.IsValidHandle(h) {
				kept = append(kept, h)
				continue
			}
			r.metrics.RecordVoiceEnded()
			r.bus.publish(Event{Kind: InstanceEnded, Hash: s.hash, Handle: h})
		}
		s.handles = kept
	}
}

// Subscribe attaches a lifecycle event consumer to one definition.
func (r *Registry) Subscribe(hash Hash, buffer int) (<-chan Event, func()) {
	return r.bus.subscribe(hash, buffer)
}

// DroppedEvents reports lifecycle events lost to full subscriber buffers.
func (r *Registry) DroppedEvents() uint64 {
	return r.bus.droppedCount()
}

// Length returns the decoded duration in seconds of a file-backed
// definition, zero for unknown hashes and non-file sources.
func (r *Registry) Length(hash Hash) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sounds[hash]
	if !ok || s.kind != KindDecodedFile {
		return 0
	}
	return s.duration.Seconds()
}

// SoundCount returns the number of definitions currently loaded.
func (r *Registry) SoundCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sounds)
}

// CountInstances returns the number of live voices of one definition as
// reported by the engine.
func (r *Registry) CountInstances(hash Hash) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sounds[hash]
	if !ok {
		return 0
	}
	return r.eng.CountSource(s.source)
}

// ActiveVoiceCount returns the number of voices playing engine-wide.
func (r *Registry) ActiveVoiceCount() int {
	return r.eng.ActiveVoiceCount()
}

// VoiceCount returns the number of voices the application has started,
// including paused ones.
func (r *Registry) VoiceCount() int {
	return r.eng.VoiceCount()
}

// Handles returns the live handle list of one definition, oldest first.
func (r *Registry) Handles(hash Hash) []engine.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sounds[hash]
	if !ok {
		return nil
	}
	return s.Handles()
}

// SetWaveform changes the oscillator shape of a synthesized definition.
// No-op for unknown hashes and non-synthesized sources.
func (r *Registry) SetWaveform(hash Hash, kind engine.WaveformKind) {
	r.withWaveform(hash, func(w engine.WaveformSource) { w.SetWaveform(kind) })
}

// SetWaveformFrequency changes the generator base frequency in place.
func (r *Registry) SetWaveformFrequency(hash Hash, hz float64) {
	r.withWaveform(hash, func(w engine.WaveformSource) { w.SetFrequency(hz) })
}

// SetWaveformScale changes the superwave amplitude scale in place.
func (r *Registry) SetWaveformScale(hash Hash, scale float64) {
	r.withWaveform(hash, func(w engine.WaveformSource) { w.SetScale(scale) })
}

// SetWaveformDetune changes the superwave detune amount in place.
func (r *Registry) SetWaveformDetune(hash Hash, detune float64) {
	r.withWaveform(hash, func(w engine.WaveformSource) { w.SetDetune(detune) })
}

// SetWaveformSuperwave toggles superwave layering in place.
func (r *Registry) SetWaveformSuperwave(hash Hash, enabled bool) {
	r.withWaveform(hash, func(w engine.WaveformSource) { w.SetSuperwave(enabled) })
}

func (r *Registry) withWaveform(hash Hash, fn func(engine.WaveformSource)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sounds[hash]
	if !ok || s.waveform == nil {
		return
	}
	fn(s.waveform)
}
