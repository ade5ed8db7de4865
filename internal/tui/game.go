// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"
	"time"

	"voicebird/internal/config"
	"voicebird/internal/game"
	"voicebird/internal/pitch"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// GameModel renders the voice-controlled game: the bird follows the
// sung pitch, obstacles follow the note sequence.
type GameModel struct {
	cfg      config.GameConfig
	streamer *pitch.Streamer
	world    *game.World
	clock    game.Clock

	perm      pitch.PermissionState
	lastFrame time.Time
	width     int
	height    int
	ready     bool
}

// NewGameModel builds the game view over an already-wired streamer.
func NewGameModel(cfg *config.Config, streamer *pitch.Streamer, notes []game.NoteEvent, clock game.Clock) GameModel {
	return GameModel{
		cfg:      cfg.Game,
		streamer: streamer,
		world:    game.NewWorld(cfg.Game, notes),
		clock:    clock,
		perm:     streamer.Permission(),
	}
}

// Init requests microphone permission and starts the frame tick.
func (m GameModel) Init() tea.Cmd {
	return tea.Batch(m.requestPermission, tick())
}

func (m GameModel) requestPermission() tea.Msg {
	return permissionMsg(m.streamer.RequestPermission())
}

func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case permissionMsg:
		m.perm = pitch.PermissionState(msg)

	case tickMsg:
		now := m.clock.Now()
		if !m.lastFrame.IsZero() {
			m.world.Step(now, now.Sub(m.lastFrame).Seconds(), m.currentPitch(now))
		}
		m.lastFrame = now
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))):
			return m, tea.Quit
		case key.Matches(msg, key.NewBinding(key.WithKeys("enter", " "))):
			switch m.world.State() {
			case game.StateMenu:
				if m.perm == pitch.PermissionGranted {
					m.world.Start(m.clock.Now())
				}
			case game.StateGameOver:
				m.world.ToMenu()
				m.world.Start(m.clock.Now())
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
			if m.world.State() == game.StateGameOver {
				m.world.ToMenu()
			}
		}
	}
	return m, nil
}

// currentPitch reads the latest published sample, applying the
// freshness rule so a stale pitch never steers the bird.
func (m GameModel) currentPitch(now time.Time) float64 {
	if !m.streamer.IsStreaming() {
		return 0
	}
	s := m.streamer.Latest()
	if !s.Detected() || !s.FreshWithin(pitch.FreshnessWindow, now) {
		return 0
	}
	return s.Frequency
}

func (m GameModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	title := titleStyle.Render("Voicebird")
	var body, help string

	switch {
	case m.perm == pitch.PermissionDenied:
		body = warnStyle.Render("Microphone access denied.")
		help = "q: Quit"
	case m.perm != pitch.PermissionGranted:
		body = "Requesting microphone access..."
		help = "q: Quit"
	case m.world.State() == game.StateMenu:
		body = "Sing to fly. Hit each note to pass through the gaps."
		help = "Enter: Start • q: Quit"
	case m.world.State() == game.StateGameOver:
		body = m.renderGameOver()
		help = "Enter: Play Again • Esc: Menu • q: Quit"
	default:
		body = m.renderField()
		help = "q: Quit"
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, infoStyle.Render(help))
}

func (m GameModel) renderGameOver() string {
	var sb strings.Builder
	sb.WriteString(warnStyle.Render("Game Over"))
	sb.WriteString("\n\n")

	if overall, ok := m.world.Scorer().Overall(); ok {
		sb.WriteString(fmt.Sprintf("Accuracy: %.1f%% over %d completed cycle(s)\n",
			overall, m.world.Scorer().CompletedCycles()))
	} else {
		sb.WriteString("No completed cycles.\n")
	}
	return sb.String()
}

// renderField rasterizes the logical play field onto the terminal
// grid: pillars above and below each gap, the bird at its fixed
// column.
func (m GameModel) renderField() string {
	cols := m.width - 4
	rows := m.height - 8
	if cols < 20 {
		cols = 20
	}
	if rows < 10 {
		rows = 10
	}

	sx := float64(cols) / m.cfg.FieldWidth
	sy := float64(rows) / m.cfg.FieldHeight

	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = make([]rune, cols)
		for c := range grid[r] {
			grid[r][c] = ' '
		}
	}

	for _, o := range m.world.Obstacles() {
		left := int(o.X * sx)
		right := int((o.X + o.Width) * sx)
		gapTop := int(o.GapTop * sy)
		gapBottom := int(o.GapBottom * sy)
		for c := left; c <= right; c++ {
			if c < 0 || c >= cols {
				continue
			}
			for r := 0; r < rows; r++ {
				if r < gapTop || r > gapBottom {
					grid[r][c] = '█'
				}
			}
		}
	}

	birdCol := int(m.cfg.BirdX * sx)
	birdRow := int(m.world.BirdY() * sy)
	if birdCol >= 0 && birdCol < cols && birdRow >= 0 && birdRow < rows {
		grid[birdRow][birdCol] = '◆'
	}

	lines := make([]string, rows)
	for r := range grid {
		lines[r] = string(grid[r])
	}

	status := m.renderStatus()
	return status + "\n" + fieldStyle.Render(strings.Join(lines, "\n"))
}

func (m GameModel) renderStatus() string {
	var target string
	if obstacles := m.world.Obstacles(); len(obstacles) > 0 {
		next := obstacles[0]
		target = fmt.Sprintf("next: %s (%.0f Hz)", next.Label, next.Target)
	}

	state := m.world.State().String()
	if m.world.State() == game.StateDying {
		state = warnStyle.Render(state)
	}
	return infoStyle.Render(fmt.Sprintf("%s   %s", state, target))
}

// StartGameUI runs the game view until the user quits.
func StartGameUI(cfg *config.Config, streamer *pitch.Streamer, notes []game.NoteEvent) error {
	p := tea.NewProgram(NewGameModel(cfg, streamer, notes, game.SystemClock()), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
