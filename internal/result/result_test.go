package result

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, NoError, CodeOf(nil))
	assert.Equal(t, FileNotFound, CodeOf(ErrFileNotFound))
	assert.Equal(t, UnknownError, CodeOf(fmt.Errorf("something else")))

	wrapped := fmt.Errorf("loading sample: %w", ErrFileLoadFailed)
	assert.Equal(t, FileLoadFailed, CodeOf(wrapped))
}

func TestSentinelIdentity(t *testing.T) {
	t.Parallel()

	// two sentinels of the same code compare equal through errors.Is even
	// when they are distinct values
	assert.ErrorIs(t, DeviceNotInited.Err(), ErrDeviceNotInited)
	assert.NotErrorIs(t, ErrDeviceNotInited, ErrDeviceInitFailed)

	assert.Nil(t, NoError.Err())
}

func TestCodeStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "file already loaded", FileAlreadyLoaded.String())
	assert.Equal(t, "unrecognized error code", Code(999).String())
}
