// SPDX-License-Identifier: MIT
package cmd

import (
	"os"
	"time"

	"voicebird/internal/build"
	"voicebird/internal/config"

	"github.com/spf13/cobra"
)

// Options is the parsed command line: which mode to run and the merged
// configuration (YAML file, environment, then flags).
type Options struct {
	Command string // "tune", "play" or "list"
	Config  *config.Config
}

func ParseArgs() (*Options, error) {
	buildInfo := build.Get()
	opts := &Options{Command: "tune"}

	var (
		configPath      string
		deviceID        int
		sampleRate      float64
		framesPerBuffer int
		lowLatency      bool
		bpm             float64
		record          bool
		outputFile      string
		wsEnabled       bool
		wsAddr          string
		verbose         bool
	)

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = "tune"
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			opts.Command = "list"
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "tune",
		Short: "Run the live tuner",
		Run: func(cmd *cobra.Command, args []string) {
			opts.Command = "tune"
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "play",
		Short: "Play the voice-controlled game",
		Run: func(cmd *cobra.Command, args []string) {
			opts.Command = "play"
		},
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "",
		"Path to a YAML config file (default searches config.yaml)")

	// Audio device configuration
	flags.IntVarP(&deviceID, "device", "d", config.MinDeviceID,
		"Input device ID. Use 'list' to see available devices.")
	flags.Float64VarP(&sampleRate, "sample-rate", "s", 0,
		"Sample rate, measured in Hertz (Hz)")
	flags.IntVarP(&framesPerBuffer, "frames-per-buffer", "b", 0,
		"The number of frames per buffer (affects latency)")
	flags.BoolVarP(&lowLatency, "low-latency", "l", false,
		"Use low latency mode for real-time processing")

	// Gameplay
	flags.Float64Var(&bpm, "bpm", 0,
		"Obstacle cadence in beats per minute")

	// Recording
	flags.BoolVarP(&record, "record", "r", false,
		"Record the raw input stream to a WAV file")
	flags.StringVarP(&outputFile, "output", "o", "",
		"Recording file name. Default is recording-DD-MM-YYYY-HHMMSS.wav")

	// Pitch feed
	flags.BoolVar(&wsEnabled, "ws", false,
		"Serve the pitch feed over WebSocket")
	flags.StringVar(&wsAddr, "ws-addr", "",
		"WebSocket listen address, e.g. :8080")

	flags.BoolVarP(&verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// Flags override the file only when actually set.
	if flags.Changed("device") {
		cfg.Audio.InputDevice = deviceID
	}
	if flags.Changed("sample-rate") {
		cfg.Audio.SampleRate = sampleRate
	}
	if flags.Changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = framesPerBuffer
	}
	if flags.Changed("low-latency") {
		cfg.Audio.LowLatency = lowLatency
	}
	if flags.Changed("bpm") {
		cfg.Game.BPM = bpm
	}
	if flags.Changed("record") {
		cfg.Recording.Enabled = record
	}
	if flags.Changed("output") {
		cfg.Recording.OutputFile = outputFile
	}
	if flags.Changed("ws") {
		cfg.Transport.WebSocketEnabled = wsEnabled
	}
	if flags.Changed("ws-addr") {
		cfg.Transport.WebSocketAddr = wsAddr
	}
	if verbose {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	if cfg.Recording.Enabled && cfg.Recording.OutputFile == "" {
		cfg.Recording.OutputFile = "recording-" +
			time.Now().UTC().Format("02-01-2006-150405") + ".wav"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts.Config = cfg
	return opts, nil
}
