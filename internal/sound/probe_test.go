package sound

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/audiosession/internal/result"
)

func TestProbeWavFile(t *testing.T) {
	path := writeWavFile(t, "tone.wav")

	info, err := probeFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8000, info.sampleRate)
	assert.Equal(t, 1, info.channels)
	assert.InDelta(t, float64(time.Second), float64(info.duration), float64(10*time.Millisecond))
}

func TestProbeMissingFile(t *testing.T) {
	_, err := probeFile(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Equal(t, result.FileNotFound, result.CodeOf(err))
}

func TestProbeCorruptWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFFnope"), 0o644))

	_, err := probeFile(path)
	assert.Equal(t, result.FileLoadFailed, result.CodeOf(err))
}

func TestProbeUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.flac")
	require.NoError(t, os.WriteFile(path, []byte("fLaC"), 0o644))

	_, err := probeFile(path)
	assert.Equal(t, result.FileLoadFailed, result.CodeOf(err))
}

func TestProbeCorruptMp3AndOgg(t *testing.T) {
	for _, name := range []string{"x.mp3", "x.ogg"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, os.WriteFile(path, []byte("not really audio data"), 0o644))

		_, err := probeFile(path)
		assert.Equal(t, result.FileLoadFailed, result.CodeOf(err), name)
	}
}
