package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/audiosession/internal/engine"
	"github.com/tphakala/audiosession/internal/result"
)

func TestResolveMapsHandleToOwner(t *testing.T) {
	reg, _ := newTestRegistry(t)
	h1, err := reg.LoadRaw([]float32{0.5}, 44100, 1)
	require.NoError(t, err)
	h2, err := reg.Synthesize(engine.WaveformParams{Kind: engine.WaveformSin})
	require.NoError(t, err)

	va := reg.Play(h1, 1.0, 0, false)
	vb := reg.Play(h2, 1.0, 0, false)
	vc := reg.Play(h1, 1.0, 0, false)

	hash, idx, err := reg.Resolve(va)
	require.NoError(t, err)
	assert.Equal(t, h1, hash)
	assert.Equal(t, 0, idx)

	hash, idx, err = reg.Resolve(vc)
	require.NoError(t, err)
	assert.Equal(t, h1, hash)
	assert.Equal(t, 1, idx, "indices follow creation order within the owner")

	hash, _, err = reg.Resolve(vb)
	require.NoError(t, err)
	assert.Equal(t, h2, hash)
}

func TestResolveRejectsInvalidAndStaleHandles(t *testing.T) {
	reg, _ := newTestRegistry(t)
	hash, err := reg.LoadRaw([]float32{0.5}, 44100, 1)
	require.NoError(t, err)

	_, _, err = reg.Resolve(engine.InvalidHandle)
	assert.Equal(t, result.SoundHashNotFound, result.CodeOf(err))

	v := reg.Play(hash, 1.0, 0, false)
	reg.Stop(v)

	_, _, err = reg.Resolve(v)
	assert.Equal(t, result.SoundHashNotFound, result.CodeOf(err))
}

func TestIsValidHandleNeedsRegistryAndEngine(t *testing.T) {
	reg, eng := newTestRegistry(t)
	hash, err := reg.LoadRaw([]float32{0.5}, 44100, 1)
	require.NoError(t, err)

	v := reg.Play(hash, 1.0, 0, false)
	assert.True(t, reg.IsValidHandle(v))

	// the engine reaped the voice but no sweep has run yet
	eng.EndVoice(v)
	assert.False(t, reg.IsValidHandle(v))

	assert.False(t, reg.IsValidHandle(engine.InvalidHandle))
	assert.False(t, reg.IsValidHandle(engine.Handle(9999)))
}
