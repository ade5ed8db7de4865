// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"voicebird/pkg/bitint"

	"gopkg.in/yaml.v3"
)

// Hardware and processing limits.
const (
	MinDeviceID   = -1     // -1 selects the system default input device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
)

// Config is the root application configuration, loaded from YAML with
// built-in defaults and environment overrides applied on top.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Verbose logging and debug features.
	LogLevel  string          `yaml:"log_level"` // "debug", "info", "warn", "error".
	Audio     AudioConfig     `yaml:"audio"`     // Capture and windowing settings.
	Pitch     PitchConfig     `yaml:"pitch"`     // Estimation and restriction heuristic settings.
	Tuner     TunerConfig     `yaml:"tuner"`     // Auto-scrolling tuner viewport settings.
	Game      GameConfig      `yaml:"game"`      // Gameplay physics and sequencing settings.
	Recording RecordingConfig `yaml:"recording"` // Raw input WAV recording.
	Transport TransportConfig `yaml:"transport"` // Pitch feed publishing.
}

// AudioConfig holds capture-side settings.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz.
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Capture chunk size in frames.
	WindowSize      int     `yaml:"window_size"`       // Sliding analysis window capacity (power of 2).
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency from the device.
}

// PitchConfig holds estimator search bounds and the adaptive
// restriction heuristic parameters.
type PitchConfig struct {
	MinFrequency     float64 `yaml:"min_frequency"`     // Full-band lower search bound (Hz).
	MaxFrequency     float64 `yaml:"max_frequency"`     // Full-band upper search bound (Hz).
	Threshold        float64 `yaml:"threshold"`         // Default YIN tolerance (full band).
	StrictThreshold  float64 `yaml:"strict_threshold"`  // Tolerance when the band is restricted.
	DeviationPercent float64 `yaml:"deviation_percent"` // Band half-width around the previous pitch (0-1).
	RMSGapFactor     float64 `yaml:"rms_gap_factor"`    // Prior/current RMS ratio that counts as decreasing.
	HistorySize      int     `yaml:"history_size"`      // Recent samples kept for the heuristic.
	SmootherSize     int     `yaml:"smoother_size"`     // Moving-average window for RMS smoothing.
}

// TunerConfig holds the auto-scrolling logarithmic viewport settings.
type TunerConfig struct {
	SemitoneRange   float64 `yaml:"semitone_range"`   // Viewport half-range in semitones.
	StabilityFrames int     `yaml:"stability_frames"` // Consecutive stable frames before sliding.
	StabilityHz     float64 `yaml:"stability_hz"`     // Max deviation across the stability ring (Hz).
	SlideStepHz     float64 `yaml:"slide_step_hz"`    // Center movement per slide trigger (Hz).
	CenterHz        float64 `yaml:"center_hz"`        // Initial viewport center (Hz).
}

// GameConfig holds gameplay settings. Positions are logical units, not
// pixels; the terminal view scales them at draw time.
type GameConfig struct {
	BPM            float64 `yaml:"bpm"`              // Obstacle cadence driver.
	ToleranceHz    float64 `yaml:"tolerance_hz"`     // Allowed deviation around a target note.
	FieldWidth     float64 `yaml:"field_width"`      // Play field width.
	FieldHeight    float64 `yaml:"field_height"`     // Play field height.
	MaxFrequency   float64 `yaml:"max_frequency"`    // Top of the linear frequency range.
	MinGap         float64 `yaml:"min_gap"`          // Minimum obstacle gap height.
	ScrollSpeed    float64 `yaml:"scroll_speed"`     // Base horizontal speed (units/s at 60 BPM).
	Gravity        float64 `yaml:"gravity"`          // Downward acceleration (units/s^2).
	BlendFactor    float64 `yaml:"blend_factor"`     // Pitch pursuit easing at 60 BPM.
	PitchHoldMs    int     `yaml:"pitch_hold_ms"`    // Hold-over after pitch loss.
	GraceMs        int     `yaml:"grace_ms"`         // Gravity-free period after start.
	DyingMs        int     `yaml:"dying_ms"`         // Fall duration before game over.
	NoteSequence   string  `yaml:"note_sequence"`    // Path to a YAML note sequence (empty for built-in).
	BirdX          float64 `yaml:"bird_x"`           // Fixed horizontal bird position.
	BirdSize       float64 `yaml:"bird_size"`        // Bird collision box edge length.
}

// RecordingConfig holds raw input recording settings.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Record the raw input stream.
	OutputFile string `yaml:"output_file"` // Target WAV path (empty for generated name).
	BitDepth   int    `yaml:"bit_depth"`   // Sample bit depth (16 or 32).
}

// TransportConfig holds pitch feed publishing settings.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"` // Serve PitchSamples over WebSocket.
	WebSocketAddr    string `yaml:"websocket_addr"`    // Listen address (e.g. ":8080").
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     MinDeviceID,
			SampleRate:      44100,
			FramesPerBuffer: 1024,
			WindowSize:      8192,
			LowLatency:      false,
		},
		Pitch: PitchConfig{
			MinFrequency:     70,
			MaxFrequency:     1200,
			Threshold:        0.15,
			StrictThreshold:  0.10,
			DeviationPercent: 0.30,
			RMSGapFactor:     1.10,
			HistorySize:      10,
			SmootherSize:     5,
		},
		Tuner: TunerConfig{
			SemitoneRange:   6,
			StabilityFrames: 5,
			StabilityHz:     3.0,
			SlideStepHz:     2.0,
			CenterHz:        220,
		},
		Game: GameConfig{
			BPM:          90,
			ToleranceHz:  20,
			FieldWidth:   800,
			FieldHeight:  600,
			MaxFrequency: 800,
			MinGap:       80,
			ScrollSpeed:  120,
			Gravity:      900,
			BlendFactor:  0.12,
			PitchHoldMs:  200,
			GraceMs:      1500,
			DyingMs:      1200,
			BirdX:        160,
			BirdSize:     24,
		},
		Recording: RecordingConfig{
			Enabled:  false,
			BitDepth: 16,
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddr:    ":8080",
		},
	}
}

// Load reads configuration from a YAML file at path. If path is empty it
// searches the default location ("config.yaml") and falls back to the
// built-in defaults when no file is found. Environment variable
// overrides are applied after loading, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		} else {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks cross-field constraints the YAML schema cannot express.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %.0f outside [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if !bitint.IsPowerOfTwo(c.Audio.WindowSize) {
		return fmt.Errorf("audio.window_size %d must be a power of 2", c.Audio.WindowSize)
	}
	if c.Audio.FramesPerBuffer <= 0 || c.Audio.FramesPerBuffer > c.Audio.WindowSize {
		return fmt.Errorf("audio.frames_per_buffer %d must be in (0, window_size]", c.Audio.FramesPerBuffer)
	}
	if c.Pitch.MinFrequency <= 0 || c.Pitch.MaxFrequency <= c.Pitch.MinFrequency {
		return fmt.Errorf("pitch frequency band [%.1f, %.1f] is invalid",
			c.Pitch.MinFrequency, c.Pitch.MaxFrequency)
	}
	if c.Pitch.DeviationPercent <= 0 || c.Pitch.DeviationPercent >= 1 {
		return fmt.Errorf("pitch.deviation_percent %.2f must be in (0, 1)", c.Pitch.DeviationPercent)
	}
	if c.Pitch.HistorySize < 2 {
		return fmt.Errorf("pitch.history_size %d must be >= 2", c.Pitch.HistorySize)
	}
	if c.Tuner.StabilityFrames < 1 {
		return fmt.Errorf("tuner.stability_frames %d must be >= 1", c.Tuner.StabilityFrames)
	}
	if c.Game.BPM <= 0 {
		return fmt.Errorf("game.bpm %.1f must be positive", c.Game.BPM)
	}
	if c.Game.ToleranceHz <= 0 {
		return fmt.Errorf("game.tolerance_hz %.1f must be positive", c.Game.ToleranceHz)
	}
	if c.Recording.BitDepth != 16 && c.Recording.BitDepth != 32 {
		return fmt.Errorf("recording.bit_depth %d must be 16 or 32", c.Recording.BitDepth)
	}
	return nil
}

// applyEnvOverrides applies ENV_* overrides on top of the loaded file.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.WebSocketEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("ENV_WS_ADDR"); ok {
		c.Transport.WebSocketAddr = val
	}
	if val, ok := os.LookupEnv("ENV_BPM"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil && fVal > 0 {
			c.Game.BPM = fVal
		}
	}
}
