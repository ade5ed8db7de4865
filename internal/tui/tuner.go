// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"
	"time"

	"voicebird/internal/config"
	"voicebird/internal/pitch"
	"voicebird/internal/tuner"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// tunerScaleHeight is the logical height the viewport maps into; the
// view rescales it to however many rows the terminal offers.
const tunerScaleHeight = 100.0

type permissionMsg pitch.PermissionState

// TunerModel renders the live tuner: note name, cent deviation, and a
// scrolling pitch scale fed from the distributor.
type TunerModel struct {
	streamer *pitch.Streamer
	tuner    *tuner.Tuner

	reading tuner.Reading
	perm    pitch.PermissionState
	width   int
	height  int
	ready   bool
}

// NewTunerModel builds the tuner view over an already-wired streamer.
func NewTunerModel(cfg *config.Config, streamer *pitch.Streamer) TunerModel {
	return TunerModel{
		streamer: streamer,
		tuner:    tuner.New(cfg.Tuner, tunerScaleHeight, cfg.Pitch.SmootherSize),
		perm:     streamer.Permission(),
	}
}

// Init requests microphone permission and starts the frame tick.
func (m TunerModel) Init() tea.Cmd {
	return tea.Batch(m.requestPermission, tick())
}

func (m TunerModel) requestPermission() tea.Msg {
	return permissionMsg(m.streamer.RequestPermission())
}

func (m TunerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case permissionMsg:
		m.perm = pitch.PermissionState(msg)

	case tickMsg:
		now := time.Time(msg)
		m.reading = m.tuner.Observe(m.streamer.Latest(), m.streamer.IsStreaming(), now)
		m.perm = m.streamer.Permission()
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))):
			return m, tea.Quit
		case key.Matches(msg, key.NewBinding(key.WithKeys("s"))):
			if m.streamer.IsStreaming() {
				m.streamer.StopStreaming()
			} else if m.perm == pitch.PermissionGranted {
				m.streamer.StartStreaming()
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("r"))):
			if m.perm == pitch.PermissionDenied {
				return m, m.requestPermission
			}
		}
	}
	return m, nil
}

func (m TunerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	title := titleStyle.Render("Tuner")
	var body string

	switch {
	case m.perm == pitch.PermissionDenied:
		body = warnStyle.Render("Microphone access denied.") + "\n\nPress r to retry."
	case m.perm != pitch.PermissionGranted:
		body = "Requesting microphone access..."
	case !m.streamer.IsStreaming():
		body = "Paused. Press s to resume."
	default:
		body = m.renderScale()
	}

	help := infoStyle.Render("s: Pause/Resume • q: Quit")
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

// renderScale draws the viewport as one row per scale step with the
// needle on the detected pitch's row.
func (m TunerModel) renderScale() string {
	rows := m.height - 8
	if rows < 5 {
		rows = 5
	}

	min, max := m.tuner.ViewportBounds()
	var sb strings.Builder

	if m.reading.Active {
		sb.WriteString(highlightStyle.Render(fmt.Sprintf("%s  %+.0f¢  %.1f Hz",
			m.reading.Note.String(), m.reading.Note.Cents, m.reading.Frequency)))
	} else {
		sb.WriteString(infoStyle.Render("--"))
	}
	sb.WriteString(fmt.Sprintf("   level %.2f\n", m.reading.Level))

	needleRow := -1
	if m.reading.Active {
		needleRow = int(m.reading.Y / tunerScaleHeight * float64(rows-1))
		if needleRow < 0 {
			needleRow = 0
		} else if needleRow > rows-1 {
			needleRow = rows - 1
		}
	}

	for r := 0; r < rows; r++ {
		switch r {
		case 0:
			sb.WriteString(fmt.Sprintf("%7.1f ┤", max))
		case rows - 1:
			sb.WriteString(fmt.Sprintf("%7.1f ┤", min))
		default:
			sb.WriteString("        │")
		}
		if r == needleRow {
			sb.WriteString(highlightStyle.Render(" ◆"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// StartTunerUI runs the tuner view until the user quits.
func StartTunerUI(cfg *config.Config, streamer *pitch.Streamer) error {
	p := tea.NewProgram(NewTunerModel(cfg, streamer), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
