// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"voicebird/cmd"
	"voicebird/internal/capture"
	"voicebird/internal/config"
	"voicebird/internal/dsp"
	"voicebird/internal/game"
	applog "voicebird/internal/log"
	"voicebird/internal/pitch"
	"voicebird/internal/transport"
	"voicebird/internal/tui"
)

// main runs in three phases:
//
// 1. Startup (cold path): parse arguments, load configuration,
//    initialize PortAudio, handle one-off commands.
//
// 2. Concurrent (hot path): wire the capture driver, estimation
//    pipeline and distributor, start the optional pitch feed, and hand
//    control to the terminal UI.
//
// 3. Shutdown (cold path): stop recording, release the pipeline and
//    PortAudio.
func main() {
	// ==================== STARTUP PHASE ====================

	// One thread for the audio callback, one for UI and I/O.
	runtime.GOMAXPROCS(2)

	opts, err := cmd.ParseArgs()
	if err != nil {
		log.Fatal(err)
	}
	cfg := opts.Config

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	if err := capture.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer capture.Terminate()

	if opts.Command == "list" {
		devices, err := capture.HostDevices()
		if err != nil {
			log.Fatal(err)
		}
		capture.FprintDevices(os.Stdout, devices)
		return
	}

	// ==================== CONCURRENT PHASE ====================

	driver, err := capture.NewDriver(cfg.Audio)
	if err != nil {
		log.Fatal(err)
	}

	var recorder *capture.Recorder
	if cfg.Recording.Enabled {
		recorder, err = capture.NewRecorder(int(cfg.Audio.SampleRate), cfg.Recording.BitDepth, cfg.Audio.FramesPerBuffer)
		if err != nil {
			log.Fatal(err)
		}
		if err := recorder.Start(cfg.Recording.OutputFile); err != nil {
			log.Fatal(err)
		}
		driver.SetRecorder(recorder)
	}

	estimator, err := dsp.NewYin(cfg.Audio.WindowSize)
	if err != nil {
		log.Fatal(err)
	}
	gateway := dsp.NewGateway(estimator)
	defer gateway.Close()

	distributor := pitch.NewDistributor()
	streamer := pitch.NewStreamer(cfg, driver, capture.NewDeviceProbe(cfg.Audio), gateway, distributor)
	defer streamer.Close()

	feed := newFeed(cfg)
	defer feed.Close()
	unsubscribe := streamer.Subscribe(func(s pitch.Sample) error {
		return feed.Send(s)
	})
	defer unsubscribe()

	switch opts.Command {
	case "play":
		notes := game.LoadSequence(cfg.Game.NoteSequence)
		err = tui.StartGameUI(cfg, streamer, notes)
	default:
		err = tui.StartTunerUI(cfg, streamer)
	}
	if err != nil {
		applog.Errorf("ui: %v", err)
	}

	// ==================== SHUTDOWN PHASE ====================

	streamer.StopStreaming()

	if recorder != nil {
		if err := recorder.Stop(); err != nil {
			applog.Errorf("recording: %v", err)
		} else {
			fmt.Printf("\nRecording saved to: %s\n", cfg.Recording.OutputFile)
		}
	}

	if dropped := streamer.DroppedChunks(); dropped > 0 {
		applog.Warnf("pipeline dropped %d capture chunks", dropped)
	}
}

// newFeed picks the pitch feed sink: a WebSocket broadcast when
// enabled, otherwise the debug-logging fallback.
func newFeed(cfg *config.Config) transport.Transport {
	if cfg.Transport.WebSocketEnabled {
		return transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr)
	}
	return transport.NewLoggingTransport()
}
