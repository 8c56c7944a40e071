// Package conf handles loading and validating the application settings from
// a yaml configuration file, environment variables and defaults via viper.
package conf

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Settings holds the full application configuration.
type Settings struct {
	Debug bool // true enables debug level logging

	Main struct {
		Name string // application name used in logs
		Log  struct {
			Enabled    bool   // true enables rotating file log
			Path       string // log file path
			MaxSize    int    // max log file size in MB before rotation
			MaxBackups int    // rotated files to keep
			MaxAge     int    // days to keep rotated files
		}
	}

	Engine struct {
		SampleRate int // mixer output sample rate in Hz
		BufferSize int // mixer buffer size in sample frames
		Channels   int // mixer output channel count
	}

	Capture struct {
		Device         int     // capture device index, -1 selects the default device
		SampleRate     int     // capture sample rate in Hz
		Channels       int     // capture channel count
		FrameSize      int     // samples per capture callback invocation
		RingDepth      int     // analysis frames retained for visualization
		HistorySeconds int     // raw sample history retained for export
		FFTSmoothing   float64 // initial per-bin exponential smoothing factor
	}
}

var (
	settingsInstance *Settings
	settingsMutex    sync.Mutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// Setting returns the last loaded settings, loading them if needed.
func Setting() *Settings {
	settingsMutex.Lock()
	loaded := settingsInstance != nil
	settingsMutex.Unlock()
	if !loaded {
		if _, err := Load(); err != nil {
			return Default()
		}
	}
	return settingsInstance
}

// Default returns a settings struct populated with the built-in defaults
// without touching the config file. Used by tests and as a fallback.
func Default() *Settings {
	s := &Settings{}
	s.Main.Name = "audiosession"
	s.Engine.SampleRate = 44100
	s.Engine.BufferSize = 2048
	s.Engine.Channels = 2
	s.Capture.Device = -1
	s.Capture.SampleRate = 44100
	s.Capture.Channels = 1
	s.Capture.FrameSize = 256
	s.Capture.RingDepth = 256
	s.Capture.HistorySeconds = 10
	return s
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/audiosession")

	viper.SetEnvPrefix("audiosession")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file is fine, defaults and env cover everything.
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// ValidateSettings checks the loaded configuration for values the audio
// layers cannot work with.
func ValidateSettings(s *Settings) error {
	if s.Engine.SampleRate <= 0 {
		return fmt.Errorf("engine sample rate must be positive, got %d", s.Engine.SampleRate)
	}
	if s.Engine.Channels < 1 || s.Engine.Channels > 8 {
		return fmt.Errorf("engine channel count out of range: %d", s.Engine.Channels)
	}
	if s.Capture.SampleRate <= 0 {
		return fmt.Errorf("capture sample rate must be positive, got %d", s.Capture.SampleRate)
	}
	if s.Capture.FrameSize <= 0 || s.Capture.FrameSize&(s.Capture.FrameSize-1) != 0 {
		return fmt.Errorf("capture frame size must be a positive power of two, got %d", s.Capture.FrameSize)
	}
	if s.Capture.RingDepth <= 0 {
		return fmt.Errorf("capture ring depth must be positive, got %d", s.Capture.RingDepth)
	}
	if s.Capture.FFTSmoothing < 0 || s.Capture.FFTSmoothing > 1 {
		return fmt.Errorf("fft smoothing factor must be in [0,1], got %f", s.Capture.FFTSmoothing)
	}
	return nil
}
