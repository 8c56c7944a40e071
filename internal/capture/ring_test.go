package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fill builds one analysis row pair where every value carries the frame tag,
// making ordering assertions trivial.
func fill(frameSize int, tag float32) (fft, wave []float32) {
	fft = make([]float32, frameSize)
	wave = make([]float32, frameSize)
	for i := range fft {
		fft[i] = tag
		wave[i] = -tag
	}
	return fft, wave
}

func TestRingMatrixEmpty(t *testing.T) {
	t.Parallel()

	m := newRingMatrix(4, 16)
	assert.Zero(t, m.frameCount())

	dst := [][]float32{make([]float32, 16)}
	assert.Zero(t, m.snapshot(dst))

	wave := make([]float32, 8)
	assert.False(t, m.snapshotWave(wave))
}

func TestRingMatrixNewestFirst(t *testing.T) {
	t.Parallel()

	const rows, frameSize = 4, 8
	m := newRingMatrix(rows, frameSize*2)

	for tag := 1; tag <= 3; tag++ {
		fft, wave := fill(frameSize, float32(tag))
		m.push(fft, wave)
	}
	require.Equal(t, 3, m.frameCount())

	dst := make([][]float32, rows)
	for i := range dst {
		dst[i] = make([]float32, frameSize*2)
	}
	n := m.snapshot(dst)
	require.Equal(t, 3, n)

	for i, want := range []float32{3, 2, 1} {
		assert.Equal(t, want, dst[i][0], "spectrum half of row %d", i)
		assert.Equal(t, -want, dst[i][frameSize], "waveform half of row %d", i)
	}
}

func TestRingMatrixWrapEvictsOldest(t *testing.T) {
	t.Parallel()

	const rows, frameSize = 4, 8
	m := newRingMatrix(rows, frameSize*2)
	wraps := 0
	m.wrapped = func() { wraps++ }

	for tag := 1; tag <= 6; tag++ {
		fft, wave := fill(frameSize, float32(tag))
		m.push(fft, wave)
	}

	assert.Equal(t, rows, m.frameCount())
	assert.Equal(t, 2, wraps)

	dst := make([][]float32, rows)
	for i := range dst {
		dst[i] = make([]float32, frameSize*2)
	}
	require.Equal(t, rows, m.snapshot(dst))
	for i, want := range []float32{6, 5, 4, 3} {
		assert.Equal(t, want, dst[i][0])
	}
}

func TestRingMatrixSnapshotWaveNewest(t *testing.T) {
	t.Parallel()

	const frameSize = 8
	m := newRingMatrix(4, frameSize*2)
	fft, wave := fill(frameSize, 7)
	m.push(fft, wave)

	dst := make([]float32, frameSize)
	require.True(t, m.snapshotWave(dst))
	for i := range dst {
		assert.Equal(t, float32(-7), dst[i])
	}
}

func TestRingMatrixSnapshotTruncatesToDst(t *testing.T) {
	t.Parallel()

	const frameSize = 8
	m := newRingMatrix(4, frameSize*2)
	for tag := 1; tag <= 4; tag++ {
		fft, wave := fill(frameSize, float32(tag))
		m.push(fft, wave)
	}

	dst := [][]float32{make([]float32, frameSize*2), make([]float32, frameSize*2)}
	require.Equal(t, 2, m.snapshot(dst))
	assert.Equal(t, float32(4), dst[0][0])
	assert.Equal(t, float32(3), dst[1][0])
}
