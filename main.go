package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tphakala/audiosession/cmd"
	"github.com/tphakala/audiosession/internal/conf"
	"github.com/tphakala/audiosession/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if settings.Debug {
		level = slog.LevelDebug
	}
	var fileLog *logging.FileConfig
	if settings.Main.Log.Enabled {
		fileLog = &logging.FileConfig{
			Path:       settings.Main.Log.Path,
			MaxSizeMB:  settings.Main.Log.MaxSize,
			MaxBackups: settings.Main.Log.MaxBackups,
			MaxAgeDays: settings.Main.Log.MaxAge,
		}
	}
	logging.Init(level, fileLog)

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
