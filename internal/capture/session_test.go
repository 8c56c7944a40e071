package capture

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/audiosession/internal/conf"
	"github.com/tphakala/audiosession/internal/device/devicetest"
	"github.com/tphakala/audiosession/internal/result"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testFrameSize = 8

func testSettings() *conf.Settings {
	s := conf.Default()
	s.Capture.SampleRate = 1000
	s.Capture.FrameSize = testFrameSize
	s.Capture.RingDepth = 4
	s.Capture.HistorySeconds = 1
	return s
}

func newTestSession(t *testing.T) (*Session, *devicetest.Backend) {
	t.Helper()
	backend := devicetest.New()
	sess := NewSession(backend, testSettings(), nil)
	t.Cleanup(sess.Dispose)
	return sess, backend
}

// rawFrame encodes one callback period of constant samples as little-endian
// float32 bytes, the way the real backend delivers them.
func rawFrame(value float32) []byte {
	raw := make([]byte, testFrameSize*4)
	for i := 0; i < testFrameSize; i++ {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(value))
	}
	return raw
}

func requireCode(t *testing.T, want result.Code, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, result.CodeOf(err))
}

func TestSessionStateMachine(t *testing.T) {
	sess, backend := newTestSession(t)

	assert.Equal(t, StateUninitialized, sess.State())
	assert.False(t, sess.IsInited())
	assert.False(t, sess.IsStarted())

	requireCode(t, result.DeviceNotInited, sess.Start())
	requireCode(t, result.DeviceNotInited, sess.Stop())

	require.NoError(t, sess.Initialize(-1))
	assert.True(t, sess.IsInited())
	assert.False(t, sess.IsStarted())

	requireCode(t, result.DeviceInitFailed, sess.Initialize(-1))

	require.NoError(t, sess.Start())
	assert.True(t, sess.IsStarted())
	require.True(t, backend.Opened().Started())

	// starting twice is a no-op
	require.NoError(t, sess.Start())

	require.NoError(t, sess.Stop())
	assert.Equal(t, StateInitialized, sess.State())
	assert.True(t, backend.Opened().Closed())

	// stopping twice is a no-op
	require.NoError(t, sess.Stop())

	sess.Dispose()
	assert.Equal(t, StateUninitialized, sess.State())
	sess.Dispose()
}

func TestSessionStartFailureLeavesStateUnchanged(t *testing.T) {
	t.Run("open fails", func(t *testing.T) {
		sess, backend := newTestSession(t)
		backend.FailOpen = true

		require.NoError(t, sess.Initialize(-1))
		requireCode(t, result.DeviceInitFailed, sess.Start())
		assert.Equal(t, StateInitialized, sess.State())
	})

	t.Run("device start fails", func(t *testing.T) {
		sess, backend := newTestSession(t)
		backend.FailStart = true

		require.NoError(t, sess.Initialize(-1))
		requireCode(t, result.DeviceInitFailed, sess.Start())
		assert.Equal(t, StateInitialized, sess.State())
		assert.True(t, backend.Opened().Closed())
	})
}

func TestSessionListDevices(t *testing.T) {
	sess, _ := newTestSession(t)

	// enumeration is valid before Initialize
	infos, err := sess.ListDevices()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "Fake Capture", infos[0].Name)
	assert.True(t, infos[0].IsDefault)
}

func TestSessionReadValidation(t *testing.T) {
	sess, _ := newTestSession(t)

	dst := [][]float32{make([]float32, testFrameSize*2)}
	_, err := sess.Read2D(dst)
	requireCode(t, result.DeviceNotInited, err)
	requireCode(t, result.DeviceNotInited, sess.ReadWave(make([]float32, testFrameSize)))
	_, err = sess.ReadFullHistory(make([]float32, 16))
	requireCode(t, result.DeviceNotInited, err)
	requireCode(t, result.DeviceNotInited, sess.SetFFTSmoothing(0.5))

	require.NoError(t, sess.Initialize(-1))

	_, err = sess.Read2D(nil)
	requireCode(t, result.NullPointer, err)
	_, err = sess.Read2D([][]float32{make([]float32, testFrameSize)})
	requireCode(t, result.InvalidParameter, err)
	requireCode(t, result.NullPointer, sess.ReadWave(make([]float32, testFrameSize-1)))
	_, err = sess.ReadFullHistory(nil)
	requireCode(t, result.NullPointer, err)
}

func TestSessionIngest(t *testing.T) {
	sess, backend := newTestSession(t)
	require.NoError(t, sess.Initialize(-1))
	require.NoError(t, sess.Start())

	dev := backend.Opened()
	for tag := 1; tag <= 6; tag++ {
		dev.Feed(rawFrame(float32(tag)), testFrameSize)
	}

	assert.Equal(t, uint64(6), sess.RecordedFrameCount())
	assert.Equal(t, 4, sess.FrameCount(), "ring keeps only the newest rows")

	dst := make([][]float32, 4)
	for i := range dst {
		dst[i] = make([]float32, testFrameSize*2)
	}
	n, err := sess.Read2D(dst)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	for i, want := range []float32{6, 5, 4, 3} {
		assert.Equal(t, want, dst[i][testFrameSize], "waveform half of row %d", i)
	}

	wave := make([]float32, testFrameSize)
	require.NoError(t, sess.ReadWave(wave))
	for i := range wave {
		assert.Equal(t, float32(6), wave[i])
	}

	require.NoError(t, sess.Stop())
}

func TestSessionReadWaveEmptyRing(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.Initialize(-1))

	wave := []float32{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, sess.ReadWave(wave))
	for i := range wave {
		assert.Zero(t, wave[i], "empty ring must read as silence")
	}
}

func TestSessionHistoryAccumulates(t *testing.T) {
	sess, backend := newTestSession(t)
	require.NoError(t, sess.Initialize(-1))
	require.NoError(t, sess.Start())

	dev := backend.Opened()
	for tag := 1; tag <= 6; tag++ {
		dev.Feed(rawFrame(float32(tag)), testFrameSize)
	}

	// Stop flushes the transfer buffer, so the full history is visible.
	require.NoError(t, sess.Stop())
	require.Equal(t, 6*testFrameSize, sess.HistoryLen())

	dst := make([]float32, 6*testFrameSize)
	n, err := sess.ReadFullHistory(dst)
	require.NoError(t, err)
	require.Equal(t, len(dst), n)
	for i, v := range dst {
		assert.Equal(t, float32(i/testFrameSize+1), v, "sample %d out of order", i)
	}
}

func TestSessionHistoryCap(t *testing.T) {
	backend := devicetest.New()
	settings := testSettings()
	settings.Capture.SampleRate = testFrameSize * 2 // history caps at two frames
	sess := NewSession(backend, settings, nil)
	t.Cleanup(sess.Dispose)

	require.NoError(t, sess.Initialize(-1))
	require.NoError(t, sess.Start())

	dev := backend.Opened()
	for tag := 1; tag <= 6; tag++ {
		dev.Feed(rawFrame(float32(tag)), testFrameSize)
	}
	require.NoError(t, sess.Stop())

	assert.Equal(t, testFrameSize*2, sess.HistoryLen())
}

func TestSessionSmoothing(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.Initialize(-1))

	assert.Zero(t, sess.FFTSmoothing())
	require.NoError(t, sess.SetFFTSmoothing(0.6))
	assert.InDelta(t, 0.6, sess.FFTSmoothing(), 1e-12)

	require.NoError(t, sess.SetFFTSmoothing(2))
	assert.Equal(t, 1.0, sess.FFTSmoothing())
}
