package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsValidate(t *testing.T) {
	t.Parallel()

	s := Default()
	require.NoError(t, ValidateSettings(s))
	assert.Equal(t, -1, s.Capture.Device)
	assert.Equal(t, 256, s.Capture.FrameSize)
	assert.Equal(t, 256, s.Capture.RingDepth)
	assert.Equal(t, 10, s.Capture.HistorySeconds)
}

func TestValidateSettingsRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero engine sample rate", func(s *Settings) { s.Engine.SampleRate = 0 }},
		{"engine channels out of range", func(s *Settings) { s.Engine.Channels = 9 }},
		{"negative capture sample rate", func(s *Settings) { s.Capture.SampleRate = -1 }},
		{"frame size not power of two", func(s *Settings) { s.Capture.FrameSize = 300 }},
		{"zero frame size", func(s *Settings) { s.Capture.FrameSize = 0 }},
		{"zero ring depth", func(s *Settings) { s.Capture.RingDepth = 0 }},
		{"smoothing above one", func(s *Settings) { s.Capture.FFTSmoothing = 1.5 }},
		{"negative smoothing", func(s *Settings) { s.Capture.FFTSmoothing = -0.1 }},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := Default()
			tc.mutate(s)
			assert.Error(t, ValidateSettings(s))
		})
	}
}
