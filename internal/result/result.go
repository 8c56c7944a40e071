// Package result defines the stable error-code enumeration shared by the
// sound registry and the capture session. The numeric values are part of the
// published contract and must never be renumbered.
package result

import "errors"

// Code identifies the outcome of a fallible operation.
type Code int32

const (
	NoError            Code = 0
	InvalidParameter   Code = 1
	FileNotFound       Code = 2
	FileLoadFailed     Code = 3
	FileAlreadyLoaded  Code = 4
	BackendNotInited   Code = 5
	NullPointer        Code = 6
	SoundHashNotFound  Code = 7
	OutOfMemory        Code = 8
	NotImplemented     Code = 9
	UnknownError       Code = 10
	FilterNotFound     Code = 11
	FilterAlreadyAdded Code = 12
	MaxFiltersReached  Code = 13
	DeviceInitFailed   Code = 20
	DeviceNotInited    Code = 21
	DeviceWriteFailed  Code = 22
)

var codeNames = map[Code]string{
	NoError:            "no error",
	InvalidParameter:   "invalid parameter",
	FileNotFound:       "file not found",
	FileLoadFailed:     "file found but could not be loaded",
	FileAlreadyLoaded:  "file already loaded",
	BackendNotInited:   "backend not yet initialized",
	NullPointer:        "null or empty buffer argument",
	SoundHashNotFound:  "no sound with the given hash",
	OutOfMemory:        "out of memory",
	NotImplemented:     "feature not implemented",
	UnknownError:       "unknown error",
	FilterNotFound:     "filter not found",
	FilterAlreadyAdded: "filter already added",
	MaxFiltersReached:  "maximum number of filters reached",
	DeviceInitFailed:   "failed to initialize capture device",
	DeviceNotInited:    "capture device not initialized",
	DeviceWriteFailed:  "failed to write to capture device",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unrecognized error code"
}

// codeError is the sentinel error carrying a Code. Sentinels compare equal
// through errors.Is by code, so wrapped errors keep their classification.
type codeError struct {
	code Code
}

func (e *codeError) Error() string { return e.code.String() }

// Err returns the sentinel error for the code, or nil for NoError.
func (c Code) Err() error {
	if c == NoError {
		return nil
	}
	return &codeError{code: c}
}

func (e *codeError) Is(target error) bool {
	t, ok := target.(*codeError)
	return ok && t.code == e.code
}

// Sentinels for use with errors.Is and as wrap targets.
var (
	ErrInvalidParameter   = InvalidParameter.Err()
	ErrFileNotFound       = FileNotFound.Err()
	ErrFileLoadFailed     = FileLoadFailed.Err()
	ErrFileAlreadyLoaded  = FileAlreadyLoaded.Err()
	ErrBackendNotInited   = BackendNotInited.Err()
	ErrNullPointer        = NullPointer.Err()
	ErrSoundHashNotFound  = SoundHashNotFound.Err()
	ErrOutOfMemory        = OutOfMemory.Err()
	ErrNotImplemented     = NotImplemented.Err()
	ErrUnknownError       = UnknownError.Err()
	ErrFilterNotFound     = FilterNotFound.Err()
	ErrFilterAlreadyAdded = FilterAlreadyAdded.Err()
	ErrMaxFiltersReached  = MaxFiltersReached.Err()
	ErrDeviceInitFailed   = DeviceInitFailed.Err()
	ErrDeviceNotInited    = DeviceNotInited.Err()
	ErrDeviceWriteFailed  = DeviceWriteFailed.Err()
)

// CodeOf extracts the stable code from an error chain. A nil error maps to
// NoError, an error without an embedded code maps to UnknownError.
func CodeOf(err error) Code {
	if err == nil {
		return NoError
	}
	var ce *codeError
	if errors.As(err, &ce) {
		return ce.code
	}
	return UnknownError
}
