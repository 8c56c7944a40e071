package sound

import (
	"github.com/tphakala/audiosession/internal/engine"
	"github.com/tphakala/audiosession/internal/errors"
	"github.com/tphakala/audiosession/internal/result"
)

// The handle router maps a playback handle back to the definition that
// spawned it. Every per-handle operation goes through it as a validity gate
// so stale handles are rejected here instead of being forwarded to the
// engine. Resolution is a linear scan over all handle lists; the registry is
// small and the lists short, so an index would cost more than it saves.

// resolveLocked returns the owning definition and the handle's index within
// its list, or (nil, -1). Caller must hold r.mu.
func (r *Registry) resolveLocked(h engine.Handle) (*Sound, int) {
	if !h.Valid() {
		return nil, -1
	}
	for _, s := range r.sounds {
		for i, existing := range s.handles {
			if existing == h {
				return s, i
			}
		}
	}
	return nil, -1
}

// Resolve maps a handle to its owning definition hash and its index within
// the owner's handle list, oldest first. Resolution success is a snapshot:
// the engine may reap the voice at any moment afterwards.
func (r *Registry) Resolve(h engine.Handle) (Hash, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, idx := r.resolveLocked(h)
	if s == nil {
		return 0, -1, errors.New(result.ErrSoundHashNotFound).
			Component("sound").
			Category(errors.CategoryNotFound).
			Context("handle", uint32(h)).
			Build()
	}
	return s.hash, idx, nil
}

// IsValidHandle reports whether the handle resolves to a live voice both in
// the registry and in the engine.
func (r *Registry) IsValidHandle(h engine.Handle) bool {
	r.mu.Lock()
	s, _ := r.resolveLocked(h)
	r.mu.Unlock()
	return s != nil && r.eng.IsValidHandle(h)
}

// withHandle runs fn only when the handle resolves. Fire-and-forget setters
// use it, so a stale handle is a silent no-op.
func (r *Registry) withHandle(h engine.Handle, fn func()) {
	r.mu.Lock()
	s, _ := r.resolveLocked(h)
	r.mu.Unlock()
	if s == nil {
		return
	}
	// The voice may end between the resolve and this call; the engine
	// ignores calls on dead handles, so the race is harmless.
	fn()
}

// handleValue runs fn only when the handle resolves, returning a
// handle-invalid error otherwise. Query-style getters use it.
func (r *Registry) handleValue(h engine.Handle, fn func() float64) (float64, error) {
	r.mu.Lock()
	s, _ := r.resolveLocked(h)
	r.mu.Unlock()
	if s == nil {
		return 0, errors.New(result.ErrSoundHashNotFound).
			Component("sound").
			Category(errors.CategoryNotFound).
			Context("handle", uint32(h)).
			Build()
	}
	return fn(), nil
}
