package sound

import (
	"github.com/tphakala/audiosession/internal/engine"
	"github.com/tphakala/audiosession/internal/errors"
	"github.com/tphakala/audiosession/internal/result"
)

// Per-handle transport controls. Setters are fire-and-forget and silently
// ignore handles that no longer resolve; getters report the stale handle as
// an error.

// minRelativePlaySpeed is the floor below which the engine's resampler
// becomes unstable.
const minRelativePlaySpeed = 0.05

// SetPause pauses or resumes one voice.
func (r *Registry) SetPause(h engine.Handle, paused bool) {
	r.withHandle(h, func() { r.eng.SetPause(h, paused) })
}

// PauseSwitch toggles the pause state of one voice.
func (r *Registry) PauseSwitch(h engine.Handle) {
	r.withHandle(h, func() { r.eng.SetPause(h, !r.eng.GetPause(h)) })
}

// Pause reports whether the voice is paused.
func (r *Registry) Pause(h engine.Handle) (bool, error) {
	r.mu.Lock()
	s, _ := r.resolveLocked(h)
	r.mu.Unlock()
	if s == nil {
		return false, errors.New(result.ErrSoundHashNotFound).
			Component("sound").
			Category(errors.CategoryNotFound).
			Context("handle", uint32(h)).
			Build()
	}
	return r.eng.GetPause(h), nil
}

// SetVolume sets the voice volume.
func (r *Registry) SetVolume(h engine.Handle, volume float64) {
	r.withHandle(h, func() { r.eng.SetVolume(h, volume) })
}

// Volume returns the voice volume.
func (r *Registry) Volume(h engine.Handle) (float64, error) {
	return r.handleValue(h, func() float64 { return r.eng.GetVolume(h) })
}

// SetPan sets the voice stereo pan in [-1, 1].
func (r *Registry) SetPan(h engine.Handle, pan float64) {
	r.withHandle(h, func() { r.eng.SetPan(h, pan) })
}

// Pan returns the voice stereo pan.
func (r *Registry) Pan(h engine.Handle) (float64, error) {
	return r.handleValue(h, func() float64 { return r.eng.GetPan(h) })
}

// SetRelativePlaySpeed sets the playback speed multiplier, floored at 0.05.
func (r *Registry) SetRelativePlaySpeed(h engine.Handle, speed float64) {
	if speed < minRelativePlaySpeed {
		speed = minRelativePlaySpeed
	}
	clamped := speed
	r.withHandle(h, func() { r.eng.SetRelativePlaySpeed(h, clamped) })
}

// RelativePlaySpeed returns the playback speed multiplier.
func (r *Registry) RelativePlaySpeed(h engine.Handle) (float64, error) {
	return r.handleValue(h, func() float64 { return r.eng.GetRelativePlaySpeed(h) })
}

// SetLooping enables or disables looping for the voice.
func (r *Registry) SetLooping(h engine.Handle, enabled bool) {
	r.withHandle(h, func() { r.eng.SetLooping(h, enabled) })
}

// SetProtectVoice marks the voice protected from oldest-voice eviction when
// the engine runs out of free voices.
func (r *Registry) SetProtectVoice(h engine.Handle, protect bool) {
	r.withHandle(h, func() { r.eng.SetProtectVoice(h, protect) })
}

// ProtectVoice reports whether the voice is protected.
func (r *Registry) ProtectVoice(h engine.Handle) (bool, error) {
	r.mu.Lock()
	s, _ := r.resolveLocked(h)
	r.mu.Unlock()
	if s == nil {
		return false, errors.New(result.ErrSoundHashNotFound).
			Component("sound").
			Category(errors.CategoryNotFound).
			Context("handle", uint32(h)).
			Build()
	}
	return r.eng.GetProtectVoice(h), nil
}

// Seek moves the voice play position to the given time in seconds.
func (r *Registry) Seek(h engine.Handle, seconds float64) error {
	r.mu.Lock()
	s, _ := r.resolveLocked(h)
	r.mu.Unlock()
	if s == nil {
		return errors.New(result.ErrSoundHashNotFound).
			Component("sound").
			Category(errors.CategoryNotFound).
			Context("handle", uint32(h)).
			Build()
	}
	if err := r.eng.Seek(h, seconds); err != nil {
		return errors.New(err).
			Component("sound").
			Category(errors.CategoryEngine).
			Context("handle", uint32(h)).
			Context("seconds", seconds).
			Build()
	}
	return nil
}

// StreamPosition returns the voice play position in seconds.
func (r *Registry) StreamPosition(h engine.Handle) (float64, error) {
	return r.handleValue(h, func() float64 { return r.eng.StreamPosition(h) })
}

// Global mixer controls. These have no handle to gate on and forward
// directly.

// GlobalVolume returns the engine-wide output volume.
func (r *Registry) GlobalVolume() float64 {
	return r.eng.GetGlobalVolume()
}

// SetGlobalVolume sets the engine-wide output volume.
func (r *Registry) SetGlobalVolume(volume float64) {
	r.eng.SetGlobalVolume(volume)
}

// MaxActiveVoiceCount returns the engine's concurrent voice budget.
func (r *Registry) MaxActiveVoiceCount() int {
	return r.eng.MaxActiveVoiceCount()
}

// SetMaxActiveVoiceCount adjusts the engine's concurrent voice budget.
func (r *Registry) SetMaxActiveVoiceCount(n int) error {
	if err := r.eng.SetMaxActiveVoiceCount(n); err != nil {
		return errors.New(err).
			Component("sound").
			Category(errors.CategoryEngine).
			Context("max_voices", n).
			Build()
	}
	return nil
}
