package device

import (
	"encoding/hex"
	"log/slog"
	"runtime"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/patrickmn/go-cache"

	"github.com/tphakala/audiosession/internal/errors"
	"github.com/tphakala/audiosession/internal/logging"
	"github.com/tphakala/audiosession/internal/result"
)

const enumerationCacheTTL = 5 * time.Second

// MalgoBackend implements Backend on top of miniaudio via malgo.
type MalgoBackend struct {
	logger *slog.Logger
	// Enumeration spins up a whole malgo context, which is expensive enough
	// to be worth a short-lived cache for UI polling.
	enumCache *cache.Cache
}

var _ Backend = (*MalgoBackend)(nil)

// NewMalgoBackend returns a backend using the OS-appropriate malgo driver.
func NewMalgoBackend() *MalgoBackend {
	return &MalgoBackend{
		logger:    logging.ForService("device"),
		enumCache: cache.New(enumerationCacheTTL, time.Minute),
	}
}

// osBackend picks alsa/wasapi/coreaudio explicitly, leaving auto-detection
// to malgo on anything else.
func osBackend() []malgo.Backend {
	switch runtime.GOOS {
	case "linux":
		return []malgo.Backend{malgo.BackendAlsa}
	case "windows":
		return []malgo.Backend{malgo.BackendWasapi}
	case "darwin":
		return []malgo.Backend{malgo.BackendCoreaudio}
	}
	return nil
}

func hexToASCII(hexStr string) (string, error) {
	bytes, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Enumerate lists capture devices, serving repeated calls from a short TTL
// cache.
func (b *MalgoBackend) Enumerate() ([]Info, error) {
	if cached, found := b.enumCache.Get("devices"); found {
		return cached.([]Info), nil
	}

	ctx, err := malgo.InitContext(osBackend(), malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.New(err).
			Component("device").
			Category(errors.CategoryDevice).
			Context("operation", "init_context").
			Build()
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, errors.New(err).
			Component("device").
			Category(errors.CategoryDevice).
			Context("operation", "enumerate").
			Build()
	}

	devices := make([]Info, 0, len(infos))
	for i, info := range infos {
		decodedID, err := hexToASCII(info.ID.String())
		if err != nil {
			b.logger.Warn("skipping device with undecodable id", "index", i, "error", err)
			continue
		}
		devices = append(devices, Info{
			Index:     i,
			Name:      info.Name(),
			ID:        decodedID,
			IsDefault: info.IsDefault == 1,
		})
	}

	b.enumCache.Set("devices", devices, cache.DefaultExpiration)
	return devices, nil
}

// malgoDevice wraps one opened malgo capture device with its context.
type malgoDevice struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	logger *slog.Logger
}

func (d *malgoDevice) Start() error {
	if err := d.device.Start(); err != nil {
		return errors.New(err).
			Component("device").
			Category(errors.CategoryDevice).
			Context("operation", "start").
			Build()
	}
	return nil
}

func (d *malgoDevice) Stop() error {
	if err := d.device.Stop(); err != nil {
		return errors.New(err).
			Component("device").
			Category(errors.CategoryDevice).
			Context("operation", "stop").
			Build()
	}
	return nil
}

func (d *malgoDevice) Close() {
	d.device.Uninit()
	if err := d.ctx.Uninit(); err != nil {
		d.logger.Warn("context uninit failed", "error", err)
	}
	d.ctx.Free()
}

// Open initializes a capture device for f32 mono/stereo capture with one
// callback invocation per FrameSize sample frames.
func (b *MalgoBackend) Open(cfg CaptureConfig, onFrames DataCallback, onStop func()) (Device, error) {
	ctx, err := malgo.InitContext(osBackend(), malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.New(result.ErrDeviceInitFailed).
			Component("device").
			Category(errors.CategoryDevice).
			Context("operation", "init_context").
			Context("cause", err.Error()).
			Build()
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(cfg.FrameSize)
	deviceConfig.Alsa.NoMMap = 1

	if cfg.DeviceIndex != -1 {
		infos, err := ctx.Devices(malgo.Capture)
		if err != nil || cfg.DeviceIndex < 0 || cfg.DeviceIndex >= len(infos) {
			_ = ctx.Uninit()
			ctx.Free()
			return nil, errors.New(result.ErrDeviceInitFailed).
				Component("device").
				Category(errors.CategoryDevice).
				Context("operation", "select_device").
				Context("device_index", cfg.DeviceIndex).
				Build()
		}
		deviceConfig.Capture.DeviceID = infos[cfg.DeviceIndex].ID.Pointer()
	}

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, pInput []byte, frameCount uint32) {
			onFrames(pInput, frameCount)
		},
		Stop: onStop,
	}

	dev, err := malgo.InitDevice(ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, errors.New(result.ErrDeviceInitFailed).
			Component("device").
			Category(errors.CategoryDevice).
			Context("operation", "init_device").
			Context("cause", err.Error()).
			Build()
	}

	b.logger.Info("capture device opened",
		"device_index", cfg.DeviceIndex,
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
		"frame_size", cfg.FrameSize)

	return &malgoDevice{ctx: ctx, device: dev, logger: b.logger}, nil
}
