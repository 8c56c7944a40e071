package sound

import (
	"github.com/tphakala/audiosession/internal/engine"
	"github.com/tphakala/audiosession/internal/errors"
	"github.com/tphakala/audiosession/internal/result"
)

// 3D audio surface. Listener state is global and forwards directly;
// per-source parameters are gated by the handle router like every other
// per-handle operation.

// SetSoundSpeed sets the speed of sound used for doppler, in world units
// per second.
func (r *Registry) SetSoundSpeed(speed float64) error {
	if err := r.eng.Set3DSoundSpeed(speed); err != nil {
		return errors.New(err).
			Component("sound").
			Category(errors.CategoryValidation).
			Context("speed", speed).
			Build()
	}
	return nil
}

// SoundSpeed returns the speed of sound used for doppler.
func (r *Registry) SoundSpeed() float64 {
	return r.eng.Get3DSoundSpeed()
}

// SetListenerParameters sets the full listener transform in one call.
func (r *Registry) SetListenerParameters(pos, at, up, vel engine.Vec3) {
	r.eng.Set3DListenerParameters(pos, at, up, vel)
}

// SetListenerPosition sets the listener position.
func (r *Registry) SetListenerPosition(pos engine.Vec3) {
	r.eng.Set3DListenerPosition(pos)
}

// SetListenerAt sets the listener look-at direction.
func (r *Registry) SetListenerAt(at engine.Vec3) {
	r.eng.Set3DListenerAt(at)
}

// SetListenerUp sets the listener up vector.
func (r *Registry) SetListenerUp(up engine.Vec3) {
	r.eng.Set3DListenerUp(up)
}

// SetListenerVelocity sets the listener velocity used for doppler.
func (r *Registry) SetListenerVelocity(vel engine.Vec3) {
	r.eng.Set3DListenerVelocity(vel)
}

// SetSourceParameters sets position and velocity of one voice in one call.
func (r *Registry) SetSourceParameters(h engine.Handle, pos, vel engine.Vec3) {
	r.withHandle(h, func() { r.eng.Set3DSourceParameters(h, pos, vel) })
}

// SetSourcePosition moves one voice in the 3D scene.
func (r *Registry) SetSourcePosition(h engine.Handle, pos engine.Vec3) {
	r.withHandle(h, func() { r.eng.Set3DSourcePosition(h, pos) })
}

// SetSourceVelocity sets the voice velocity used for doppler.
func (r *Registry) SetSourceVelocity(h engine.Handle, vel engine.Vec3) {
	r.withHandle(h, func() { r.eng.Set3DSourceVelocity(h, vel) })
}

// SetSourceMinMaxDistance sets the attenuation distance bounds of one voice.
func (r *Registry) SetSourceMinMaxDistance(h engine.Handle, minDistance, maxDistance float64) {
	r.withHandle(h, func() { r.eng.Set3DSourceMinMaxDistance(h, minDistance, maxDistance) })
}

// SetSourceAttenuation selects the attenuation model of one voice.
func (r *Registry) SetSourceAttenuation(h engine.Handle, model engine.AttenuationModel, rolloffFactor float64) {
	if rolloffFactor < 0 {
		return
	}
	r.withHandle(h, func() { r.eng.Set3DSourceAttenuation(h, model, rolloffFactor) })
}

// SetSourceDopplerFactor sets the doppler strength of one voice.
func (r *Registry) SetSourceDopplerFactor(h engine.Handle, factor float64) {
	r.withHandle(h, func() { r.eng.Set3DSourceDopplerFactor(h, factor) })
}

// Global filter surface, delegated to the engine. The engine owns filter
// slots and their parameters; errors come back with their stable codes
// (filterNotFound, filterAlreadyAdded, maxFiltersReached) untouched.

// AddGlobalFilter activates a filter on the engine output.
func (r *Registry) AddGlobalFilter(filter engine.FilterType) error {
	return r.filterErr(r.eng.AddGlobalFilter(filter), filter)
}

// RemoveGlobalFilter deactivates a filter on the engine output.
func (r *Registry) RemoveGlobalFilter(filter engine.FilterType) error {
	return r.filterErr(r.eng.RemoveGlobalFilter(filter), filter)
}

// IsFilterActive returns the slot index of an active filter.
func (r *Registry) IsFilterActive(filter engine.FilterType) (int, error) {
	idx, err := r.eng.IsFilterActive(filter)
	if err != nil {
		return -1, r.filterErr(err, filter)
	}
	return idx, nil
}

// SetFilterParam sets one filter attribute.
func (r *Registry) SetFilterParam(filter engine.FilterType, attributeID int, value float64) error {
	return r.filterErr(r.eng.SetFilterParam(filter, attributeID, value), filter)
}

// GetFilterParam reads one filter attribute.
func (r *Registry) GetFilterParam(filter engine.FilterType, attributeID int) (float64, error) {
	v, err := r.eng.GetFilterParam(filter, attributeID)
	if err != nil {
		return 0, r.filterErr(err, filter)
	}
	return v, nil
}

func (r *Registry) filterErr(err error, filter engine.FilterType) error {
	if err == nil {
		return nil
	}
	if result.CodeOf(err) == result.UnknownError {
		err = errors.Join(result.ErrUnknownError, err)
	}
	return errors.New(err).
		Component("sound").
		Category(errors.CategoryEngine).
		Context("filter", int(filter)).
		Build()
}
