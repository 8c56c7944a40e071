// Package devicetest provides a scripted capture backend so the capture
// session can be driven from tests without a sound card.
package devicetest

import (
	"sync"

	"github.com/tphakala/audiosession/internal/device"
	"github.com/tphakala/audiosession/internal/result"
)

// Backend is a fake device.Backend.
type Backend struct {
	mu sync.Mutex

	// Infos is returned from Enumerate.
	Infos []device.Info
	// FailOpen forces Open to fail.
	FailOpen bool
	// FailStart forces Device.Start to fail.
	FailStart bool

	// EnumerateCalls counts Enumerate invocations, for cache assertions.
	EnumerateCalls int

	opened *Device
}

var _ device.Backend = (*Backend)(nil)

// New returns a backend reporting a single default device.
func New() *Backend {
	return &Backend{
		Infos: []device.Info{{Index: 0, Name: "Fake Capture", ID: "fake0", IsDefault: true}},
	}
}

func (b *Backend) Enumerate() ([]device.Info, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.EnumerateCalls++
	return b.Infos, nil
}

func (b *Backend) Open(cfg device.CaptureConfig, onFrames device.DataCallback, onStop func()) (device.Device, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailOpen {
		return nil, result.ErrDeviceInitFailed
	}
	d := &Device{
		backend:  b,
		cfg:      cfg,
		onFrames: onFrames,
		onStop:   onStop,
	}
	b.opened = d
	return d, nil
}

// Opened returns the most recently opened fake device.
func (b *Backend) Opened() *Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened
}

// Device is a fake device.Device whose callback is driven by the test.
type Device struct {
	mu       sync.Mutex
	backend  *Backend
	cfg      device.CaptureConfig
	onFrames device.DataCallback
	onStop   func()
	started  bool
	closed   bool
}

func (d *Device) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.backend.FailStart {
		return result.ErrDeviceInitFailed
	}
	d.started = true
	return nil
}

func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = false
	return nil
}

func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.started = false
}

// Started reports whether the fake device is pumping.
func (d *Device) Started() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

// Closed reports whether the fake device has been released.
func (d *Device) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Feed delivers one period of raw sample bytes through the data callback,
// exactly as the real backend would on its audio thread.
func (d *Device) Feed(samples []byte, frameCount uint32) {
	d.mu.Lock()
	started := d.started
	cb := d.onFrames
	d.mu.Unlock()
	if started && cb != nil {
		cb(samples, frameCount)
	}
}
