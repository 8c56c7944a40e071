package capture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineFrame(frameSize int, cycles float64) []float32 {
	wave := make([]float32, frameSize)
	for i := range wave {
		wave[i] = float32(math.Sin(2 * math.Pi * cycles * float64(i) / float64(frameSize)))
	}
	return wave
}

func TestFFTDCComponent(t *testing.T) {
	t.Parallel()

	re := make([]float64, 8)
	im := make([]float64, 8)
	for i := range re {
		re[i] = 1
	}

	fft(re, im)

	assert.InDelta(t, 8.0, re[0], 1e-9, "DC bin should carry the full sum")
	for i := 1; i < 8; i++ {
		assert.InDelta(t, 0.0, re[i], 1e-9)
		assert.InDelta(t, 0.0, im[i], 1e-9)
	}
}

func TestAnalyzerSpectrumPeak(t *testing.T) {
	t.Parallel()

	const frameSize = 256
	const cycles = 8.0

	a := newAnalyzer(frameSize)
	dst := make([]float32, frameSize)
	a.process(sineFrame(frameSize, cycles), dst)

	// frameSize samples are zero-padded to 2*frameSize points, so a tone of
	// c cycles per frame lands near bin 2c.
	peak := 0
	for i := 1; i < frameSize; i++ {
		if dst[i] > dst[peak] {
			peak = i
		}
	}
	assert.InDelta(t, 2*cycles, float64(peak), 2.0)
	assert.Positive(t, dst[peak])
}

func TestAnalyzerSmoothingZeroPassesRawSpectra(t *testing.T) {
	t.Parallel()

	const frameSize = 64
	a := newAnalyzer(frameSize)
	a.setSmoothing(0)

	loud := make([]float32, frameSize)
	a.process(sineFrame(frameSize, 4), loud)

	silent := make([]float32, frameSize)
	a.process(make([]float32, frameSize), silent)

	// With no smoothing the second spectrum must not remember the first.
	for i := range silent {
		assert.InDelta(t, 0.0, float64(silent[i]), 1e-9)
	}
}

func TestAnalyzerSmoothingOneFreezesSpectrum(t *testing.T) {
	t.Parallel()

	const frameSize = 64
	a := newAnalyzer(frameSize)
	a.setSmoothing(0)

	first := make([]float32, frameSize)
	a.process(sineFrame(frameSize, 4), first)

	a.setSmoothing(1)
	frozen := make([]float32, frameSize)
	a.process(make([]float32, frameSize), frozen)

	require.Equal(t, first, frozen, "factor 1 must hold the previous spectrum")
}

func TestAnalyzerSetSmoothingClamps(t *testing.T) {
	t.Parallel()

	a := newAnalyzer(64)

	a.setSmoothing(-0.5)
	assert.Zero(t, a.getSmoothing())

	a.setSmoothing(1.5)
	assert.Equal(t, 1.0, a.getSmoothing())

	a.setSmoothing(0.7)
	assert.InDelta(t, 0.7, a.getSmoothing(), 1e-12)
}
