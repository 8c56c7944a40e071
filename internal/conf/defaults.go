// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "audiosession")
	viper.SetDefault("main.log.enabled", false)
	viper.SetDefault("main.log.path", "audiosession.log")
	viper.SetDefault("main.log.maxsize", 100)
	viper.SetDefault("main.log.maxbackups", 3)
	viper.SetDefault("main.log.maxage", 28)

	viper.SetDefault("engine.samplerate", 44100)
	viper.SetDefault("engine.buffersize", 2048)
	viper.SetDefault("engine.channels", 2)

	viper.SetDefault("capture.device", -1)
	viper.SetDefault("capture.samplerate", 44100)
	viper.SetDefault("capture.channels", 1)
	viper.SetDefault("capture.framesize", 256)
	viper.SetDefault("capture.ringdepth", 256)
	viper.SetDefault("capture.historyseconds", 10)
	viper.SetDefault("capture.fftsmoothing", 0.0)
}
