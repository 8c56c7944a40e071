// Package device defines the consumed contract of the platform audio capture
// layer and its malgo-backed implementation. The capture session owns device
// lifecycle through this interface; the data callback runs on the backend's
// own real-time thread.
package device

// DataCallback receives one period of captured audio. samples holds raw
// little-endian f32 PCM, frameCount the number of sample frames in it. The
// callback runs on the audio thread and must not block or allocate.
type DataCallback func(samples []byte, frameCount uint32)

// Info describes one capture device reported by the backend.
type Info struct {
	Index     int
	Name      string
	ID        string
	IsDefault bool
}

// CaptureConfig carries the parameters for opening a capture device.
// DeviceIndex -1 selects the system default device.
type CaptureConfig struct {
	DeviceIndex int
	SampleRate  int
	Channels    int
	FrameSize   int
}

// Device is one opened capture device.
type Device interface {
	// Start begins pumping the data callback.
	Start() error
	// Stop halts the callback pump; the device stays open.
	Stop() error
	// Close releases the device and its context. The device is unusable
	// afterwards.
	Close()
}

// Backend enumerates and opens capture devices.
type Backend interface {
	// Enumerate lists the available capture devices without side effects.
	Enumerate() ([]Info, error)
	// Open initializes a capture device. onStop, if non-nil, is invoked when
	// the device stops outside of an explicit Stop call.
	Open(cfg CaptureConfig, onFrames DataCallback, onStop func()) (Device, error)
}
