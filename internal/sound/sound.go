// Package sound implements the session layer between the application and the
// mixing engine: the registry of loaded sound definitions, the handle router
// that validates playback handles, and the automation dispatcher.
package sound

import (
	"time"

	"github.com/tphakala/audiosession/internal/engine"
)

// SourceKind discriminates how a sound definition was created.
type SourceKind int

const (
	KindDecodedFile SourceKind = iota
	KindRawBuffer
	KindWaveform
)

func (k SourceKind) String() string {
	switch k {
	case KindDecodedFile:
		return "file"
	case KindRawBuffer:
		return "raw"
	case KindWaveform:
		return "waveform"
	}
	return "unknown"
}

// Hash is the stable identifier of a loaded sound definition. Identical
// source descriptors map to the same hash, so re-loading a source is detected
// as a duplicate instead of re-created.
type Hash uint32

// Sound is one loaded or synthesized sound definition. It exclusively owns
// its engine-side source object and tracks the live playback handles spawned
// from it in creation order.
type Sound struct {
	hash Hash
	kind SourceKind
	path string

	source engine.Source
	// waveform is non-nil only for KindWaveform definitions. The generator
	// mutators are reachable exclusively through it.
	waveform engine.WaveformSource

	// handles holds the currently playing voices, oldest first.
	handles []engine.Handle

	duration time.Duration
}

// Hash returns the definition's stable identifier.
func (s *Sound) Hash() Hash { return s.hash }

// Kind returns the definition's source kind.
func (s *Sound) Kind() SourceKind { return s.kind }

// Path returns the source descriptor the definition was loaded from, empty
// for synthesized sources.
func (s *Sound) Path() string { return s.path }

// Duration returns the decoded length of a file-backed definition, zero for
// raw and synthesized sources.
func (s *Sound) Duration() time.Duration { return s.duration }

// Handles returns a copy of the live handle list, oldest first.
func (s *Sound) Handles() []engine.Handle {
	out := make([]engine.Handle, len(s.handles))
	copy(out, s.handles)
	return out
}

// removeHandle deletes one handle from the list, preserving order. Removal
// is idempotent: a handle already reaped by a concurrent sweep is a no-op.
func (s *Sound) removeHandle(h engine.Handle) bool {
	for i, existing := range s.handles {
		if existing == h {
			s.handles = append(s.handles[:i], s.handles[i+1:]...)
			return true
		}
	}
	return false
}
