// Package capture implements the live capture command.
package capture

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/audiosession/internal/capture"
	"github.com/tphakala/audiosession/internal/conf"
	"github.com/tphakala/audiosession/internal/device"
	"github.com/tphakala/audiosession/internal/logging"
	"github.com/tphakala/audiosession/internal/observability"
)

type options struct {
	duration time.Duration
	output   string
	listen   string
}

// Command creates the capture command, which records from a capture device
// until interrupted and optionally saves the recording to a wav file.
func Command(settings *conf.Settings) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture audio from a device",
		Long:  "Open a capture device, run the FFT/waveform analysis pipeline and accumulate the raw recording history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(settings, opts)
		},
	}

	cmd.Flags().IntVar(&settings.Capture.Device, "device", viper.GetInt("capture.device"), "Capture device index (-1 for default)")
	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "Capture duration (0 runs until interrupted)")
	cmd.Flags().StringVar(&opts.output, "output", "", "Write the recording history to this wav file on exit")
	cmd.Flags().StringVar(&opts.listen, "listen", "", "Listen address for the Prometheus metrics endpoint")

	if err := viper.BindPFlag("capture.device", cmd.Flags().Lookup("device")); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func runCapture(settings *conf.Settings, opts *options) error {
	logger := logging.ForService("cli")

	var metrics *observability.Metrics
	if opts.listen != "" {
		registry := prometheus.NewRegistry()
		var err error
		metrics, err = observability.NewMetrics(registry)
		if err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(opts.listen, mux); err != nil {
				logger.Error("metrics endpoint failed", "listen", opts.listen, "error", err)
			}
		}()
		logger.Info("metrics endpoint up", "listen", opts.listen)
	}

	session := capture.NewSession(device.NewMalgoBackend(), settings, metrics)
	if err := session.Initialize(settings.Capture.Device); err != nil {
		return err
	}
	defer session.Dispose()

	if err := session.Start(); err != nil {
		return err
	}
	logger.Info("capturing", "device_index", settings.Capture.Device)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	var timeout <-chan time.Time
	if opts.duration > 0 {
		timeout = time.After(opts.duration)
	}

	status := time.NewTicker(5 * time.Second)
	defer status.Stop()

	for running := true; running; {
		select {
		case <-interrupt:
			running = false
		case <-timeout:
			running = false
		case <-status.C:
			logger.Info("capture status",
				"frames", session.RecordedFrameCount(),
				"history_samples", session.HistoryLen())
		}
	}

	if err := session.Stop(); err != nil {
		return err
	}
	logger.Info("capture finished",
		"frames", session.RecordedFrameCount(),
		"history_samples", session.HistoryLen())

	if opts.output != "" {
		if err := saveHistory(session, settings.Capture.SampleRate, opts.output); err != nil {
			return err
		}
		logger.Info("recording saved", "path", opts.output)
	}
	return nil
}

// saveHistory writes the accumulated raw samples as a 16-bit mono wav file.
func saveHistory(session *capture.Session, sampleRate int, path string) error {
	samples := make([]float32, session.HistoryLen())
	n, err := session.ReadFullHistory(samples)
	if err != nil {
		return err
	}
	samples = samples[:n]

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf.Data[i] = int(s * 32767)
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav file: %w", err)
	}
	return nil
}
