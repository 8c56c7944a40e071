package sound

import (
	"github.com/tphakala/audiosession/internal/engine"
)

// Automation dispatch. Every call validates the handle (or the global scope)
// and forwards to the engine, which interpolates on its own thread. Nothing
// is tracked here: the calls are fire-and-forget, and stopping a voice
// implicitly abandons any automation in flight for it. Completion is only
// observable through the reaping path once a scheduled stop lands.

// FadeVolume ramps the voice volume to a target over the given duration.
func (r *Registry) FadeVolume(h engine.Handle, to, seconds float64) {
	r.withHandle(h, func() { r.eng.FadeVolume(h, to, seconds) })
}

// FadePan ramps the voice pan to a target over the given duration.
func (r *Registry) FadePan(h engine.Handle, to, seconds float64) {
	r.withHandle(h, func() { r.eng.FadePan(h, to, seconds) })
}

// FadeRelativePlaySpeed ramps the voice play speed to a target over the
// given duration.
func (r *Registry) FadeRelativePlaySpeed(h engine.Handle, to, seconds float64) {
	r.withHandle(h, func() { r.eng.FadeRelativePlaySpeed(h, to, seconds) })
}

// FadeGlobalVolume ramps the engine-wide volume to a target over the given
// duration.
func (r *Registry) FadeGlobalVolume(to, seconds float64) {
	r.eng.FadeGlobalVolume(to, seconds)
}

// OscillateVolume loops the voice volume between from and to with the given
// period.
func (r *Registry) OscillateVolume(h engine.Handle, from, to, seconds float64) {
	r.withHandle(h, func() { r.eng.OscillateVolume(h, from, to, seconds) })
}

// OscillatePan loops the voice pan between from and to with the given
// period.
func (r *Registry) OscillatePan(h engine.Handle, from, to, seconds float64) {
	r.withHandle(h, func() { r.eng.OscillatePan(h, from, to, seconds) })
}

// OscillateRelativePlaySpeed loops the voice play speed between from and to
// with the given period.
func (r *Registry) OscillateRelativePlaySpeed(h engine.Handle, from, to, seconds float64) {
	r.withHandle(h, func() { r.eng.OscillateRelativePlaySpeed(h, from, to, seconds) })
}

// OscillateGlobalVolume loops the engine-wide volume between from and to
// with the given period.
func (r *Registry) OscillateGlobalVolume(from, to, seconds float64) {
	r.eng.OscillateGlobalVolume(from, to, seconds)
}

// SchedulePause pauses the voice after the given delay.
func (r *Registry) SchedulePause(h engine.Handle, seconds float64) {
	r.withHandle(h, func() { r.eng.SchedulePause(h, seconds) })
}

// ScheduleStop stops the voice after the given delay.
func (r *Registry) ScheduleStop(h engine.Handle, seconds float64) {
	r.withHandle(h, func() { r.eng.ScheduleStop(h, seconds) })
}
