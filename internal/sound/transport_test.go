package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/audiosession/internal/engine"
	"github.com/tphakala/audiosession/internal/result"
)

func playOne(t *testing.T, reg *Registry) engine.Handle {
	t.Helper()
	hash, err := reg.LoadRaw([]float32{0.5}, 44100, 1)
	require.NoError(t, err)
	v := reg.Play(hash, 1.0, 0, false)
	require.True(t, v.Valid())
	return v
}

func TestTransportRoundTrip(t *testing.T) {
	reg, _ := newTestRegistry(t)
	v := playOne(t, reg)

	reg.SetVolume(v, 0.25)
	vol, err := reg.Volume(v)
	require.NoError(t, err)
	assert.Equal(t, 0.25, vol)

	reg.SetPan(v, -0.5)
	pan, err := reg.Pan(v)
	require.NoError(t, err)
	assert.Equal(t, -0.5, pan)

	reg.SetRelativePlaySpeed(v, 2.0)
	speed, err := reg.RelativePlaySpeed(v)
	require.NoError(t, err)
	assert.Equal(t, 2.0, speed)

	reg.SetPause(v, true)
	paused, err := reg.Pause(v)
	require.NoError(t, err)
	assert.True(t, paused)

	reg.PauseSwitch(v)
	paused, err = reg.Pause(v)
	require.NoError(t, err)
	assert.False(t, paused)

	reg.SetProtectVoice(v, true)
	protected, err := reg.ProtectVoice(v)
	require.NoError(t, err)
	assert.True(t, protected)

	require.NoError(t, reg.Seek(v, 1.5))
	pos, err := reg.StreamPosition(v)
	require.NoError(t, err)
	assert.Equal(t, 1.5, pos)
}

func TestRelativePlaySpeedFloor(t *testing.T) {
	reg, _ := newTestRegistry(t)
	v := playOne(t, reg)

	reg.SetRelativePlaySpeed(v, 0.001)
	speed, err := reg.RelativePlaySpeed(v)
	require.NoError(t, err)
	assert.Equal(t, minRelativePlaySpeed, speed)
}

func TestTransportStaleHandle(t *testing.T) {
	reg, eng := newTestRegistry(t)
	v := playOne(t, reg)
	reg.Stop(v)

	// setters are silent no-ops
	reg.SetVolume(v, 0.9)
	reg.SetPause(v, true)
	reg.SetLooping(v, true)

	// getters classify the handle as unresolvable
	_, err := reg.Volume(v)
	assert.Equal(t, result.SoundHashNotFound, result.CodeOf(err))
	_, err = reg.Pause(v)
	assert.Equal(t, result.SoundHashNotFound, result.CodeOf(err))
	_, err = reg.ProtectVoice(v)
	assert.Equal(t, result.SoundHashNotFound, result.CodeOf(err))
	_, err = reg.StreamPosition(v)
	assert.Equal(t, result.SoundHashNotFound, result.CodeOf(err))
	err = reg.Seek(v, 1.0)
	assert.Equal(t, result.SoundHashNotFound, result.CodeOf(err))

	assert.Zero(t, eng.VoiceCount())
}

func TestSeekRejectsNegativePosition(t *testing.T) {
	reg, _ := newTestRegistry(t)
	v := playOne(t, reg)

	err := reg.Seek(v, -1)
	assert.Equal(t, result.InvalidParameter, result.CodeOf(err))
}

func TestGlobalMixerControls(t *testing.T) {
	reg, _ := newTestRegistry(t)

	assert.Equal(t, 1.0, reg.GlobalVolume())
	reg.SetGlobalVolume(0.3)
	assert.Equal(t, 0.3, reg.GlobalVolume())

	require.NoError(t, reg.SetMaxActiveVoiceCount(32))
	assert.Equal(t, 32, reg.MaxActiveVoiceCount())

	err := reg.SetMaxActiveVoiceCount(0)
	assert.Equal(t, result.InvalidParameter, result.CodeOf(err))
	assert.Equal(t, 32, reg.MaxActiveVoiceCount())
}
