package capture

import (
	"math"
	"sync/atomic"
)

// analyzer turns one waveform frame into a magnitude spectrum with per-bin
// exponential smoothing. It runs on the capture callback path, so every
// buffer is preallocated and Process never allocates. The transform is a
// plain iterative radix-2 FFT over a Hann-windowed, zero-padded frame:
// frameSize input samples, 2*frameSize points, frameSize magnitude bins.
type analyzer struct {
	frameSize int
	fftSize   int

	window []float64 // Hann coefficients, precomputed
	re     []float64
	im     []float64
	prev   []float32 // previous smoothed spectrum

	// smoothing factor in [0,1], stored as bits so the control thread can
	// change it while the audio thread reads it.
	smoothing atomic.Uint64
}

func newAnalyzer(frameSize int) *analyzer {
	fftSize := frameSize * 2
	a := &analyzer{
		frameSize: frameSize,
		fftSize:   fftSize,
		window:    make([]float64, frameSize),
		re:        make([]float64, fftSize),
		im:        make([]float64, fftSize),
		prev:      make([]float32, frameSize),
	}
	for i := range a.window {
		a.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(frameSize-1)))
	}
	a.smoothing.Store(math.Float64bits(0))
	return a
}

// setSmoothing updates the exponential smoothing factor, clamped to [0,1].
func (a *analyzer) setSmoothing(factor float64) {
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	a.smoothing.Store(math.Float64bits(factor))
}

func (a *analyzer) getSmoothing() float64 {
	return math.Float64frombits(a.smoothing.Load())
}

// process computes the smoothed magnitude spectrum of wave into dst.
// len(wave) and len(dst) must equal frameSize.
func (a *analyzer) process(wave []float32, dst []float32) {
	for i := 0; i < a.fftSize; i++ {
		if i < a.frameSize {
			a.re[i] = float64(wave[i]) * a.window[i]
		} else {
			a.re[i] = 0
		}
		a.im[i] = 0
	}

	fft(a.re, a.im)

	factor := a.getSmoothing()
	scale := 1 / float64(a.frameSize)
	for i := 0; i < a.frameSize; i++ {
		mag := float32(math.Sqrt(a.re[i]*a.re[i]+a.im[i]*a.im[i]) * scale)
		smoothed := float32(factor)*a.prev[i] + float32(1-factor)*mag
		a.prev[i] = smoothed
		dst[i] = smoothed
	}
}

// fft performs an in-place iterative radix-2 transform. len(re) == len(im)
// must be a power of two.
func fft(re, im []float64) {
	n := len(re)

	// bit-reversal permutation
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wRe, wIm := math.Cos(angle), math.Sin(angle)
		for start := 0; start < n; start += length {
			curRe, curIm := 1.0, 0.0
			half := length / 2
			for k := 0; k < half; k++ {
				i, j := start+k, start+k+half
				tRe := re[j]*curRe - im[j]*curIm
				tIm := re[j]*curIm + im[j]*curRe
				re[j] = re[i] - tRe
				im[j] = im[i] - tIm
				re[i] += tRe
				im[i] += tIm
				curRe, curIm = curRe*wRe-curIm*wIm, curRe*wIm+curIm*wRe
			}
		}
	}
}
