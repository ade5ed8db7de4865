// SPDX-License-Identifier: MIT
package game

import (
	"math"
	"time"

	"voicebird/internal/config"
)

// State is the gameplay lifecycle.
type State int

const (
	StateMenu State = iota
	StatePlaying
	StateDying
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StatePlaying:
		return "playing"
	case StateDying:
		return "dying"
	case StateGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// World owns the gameplay state: the pitch-flown bird, live obstacles,
// sequencing and scoring. It is single-threaded; the render loop calls
// Step once per frame with the current detected pitch (<= 0 when
// undetected this frame).
type World struct {
	cfg    config.GameConfig
	mapper *LinearMapper
	seq    *Sequencer
	scorer *Scorer

	state     State
	birdY     float64
	velY      float64
	obstacles []*Obstacle

	startedAt   time.Time
	dyingAt     time.Time
	lastPitch   float64
	lastPitchAt time.Time
}

// NewWorld builds a world over the given note sequence, starting in
// the menu.
func NewWorld(cfg config.GameConfig, notes []NoteEvent) *World {
	mapper := &LinearMapper{Height: cfg.FieldHeight, MaxFrequency: cfg.MaxFrequency}
	return &World{
		cfg:    cfg,
		mapper: mapper,
		seq:    NewSequencer(cfg, mapper, notes),
		scorer: NewScorer(),
		state:  StateMenu,
	}
}

// State returns the current lifecycle state.
func (w *World) State() State { return w.state }

// BirdY returns the bird's vertical center.
func (w *World) BirdY() float64 { return w.birdY }

// Obstacles returns the live obstacle set for drawing. The slice is
// owned by the world; callers must not mutate it.
func (w *World) Obstacles() []*Obstacle { return w.obstacles }

// Scorer exposes the run's accuracy aggregates.
func (w *World) Scorer() *Scorer { return w.scorer }

// Start begins a fresh run from the menu or the game-over screen.
func (w *World) Start(now time.Time) {
	if w.state == StatePlaying || w.state == StateDying {
		return
	}
	w.state = StatePlaying
	w.birdY = w.cfg.FieldHeight / 2
	w.velY = 0
	w.obstacles = w.obstacles[:0]
	w.startedAt = now
	w.lastPitch = 0
	w.lastPitchAt = time.Time{}
	w.seq.Reset()
	w.scorer = NewScorer()
}

// ToMenu returns from the game-over screen to the menu. The final
// score stays readable through Scorer until the next Start.
func (w *World) ToMenu() {
	if w.state == StateGameOver {
		w.state = StateMenu
	}
}

// Step advances the world by dt seconds. freq is the frame's detected
// pitch in Hz, or any value <= 0 when no pitch is available.
func (w *World) Step(now time.Time, dt float64, freq float64) {
	switch w.state {
	case StatePlaying:
		w.stepPlaying(now, dt, freq)
	case StateDying:
		w.velY += w.cfg.Gravity * dt
		w.birdY += w.velY * dt
		if now.Sub(w.dyingAt) >= time.Duration(w.cfg.DyingMs)*time.Millisecond {
			w.state = StateGameOver
		}
	}
}

func (w *World) stepPlaying(now time.Time, dt float64, freq float64) {
	if freq > 0 {
		w.lastPitch = freq
		w.lastPitchAt = now
	}
	held := w.pitchHeld(now)

	if held {
		// Ease toward the sung pitch; faster songs track tighter.
		blend := w.cfg.BlendFactor * w.cfg.BPM / 60.0
		if blend > 1 {
			blend = 1
		}
		w.birdY += (w.mapper.FrequencyToY(w.lastPitch) - w.birdY) * blend
		w.velY = 0
	} else if now.Sub(w.startedAt) > time.Duration(w.cfg.GraceMs)*time.Millisecond {
		w.velY += w.cfg.Gravity * dt
		w.birdY += w.velY * dt
	}

	for _, o := range w.obstacles {
		o.X -= w.cfg.ScrollSpeed * dt
	}

	half := w.cfg.BirdSize / 2
	birdLeft := w.cfg.BirdX - half
	birdRight := w.cfg.BirdX + half
	birdTop := w.birdY - half
	birdBottom := w.birdY + half

	if birdTop < 0 || birdBottom > w.cfg.FieldHeight {
		w.die(now)
		return
	}

	for _, o := range w.obstacles {
		if o.X >= birdRight || o.X+o.Width <= birdLeft {
			continue
		}

		inTolerance := held && math.Abs(w.lastPitch-o.Target) <= w.cfg.ToleranceHz
		if held {
			w.scorer.Observe(w.lastPitch, o.Target)
		}

		// Touching a pillar is only fatal when the player is off
		// pitch; in-tolerance overlap passes through.
		hitsPillar := birdTop < o.GapTop || birdBottom > o.GapBottom
		if hitsPillar && !inTolerance {
			w.die(now)
			return
		}
	}

	w.retirePassed(birdLeft)

	lastRight := math.Inf(-1)
	for _, o := range w.obstacles {
		if right := o.X + o.Width; right > lastRight {
			lastRight = right
		}
	}
	if obstacle := w.seq.Tick(now, lastRight); obstacle != nil {
		w.obstacles = append(w.obstacles, obstacle)
	}
}

// retirePassed finalizes notes whose obstacle has fully cleared the
// bird and drops them from the live set.
func (w *World) retirePassed(birdLeft float64) {
	kept := w.obstacles[:0]
	for _, o := range w.obstacles {
		if o.X+o.Width >= birdLeft {
			kept = append(kept, o)
			continue
		}
		w.scorer.FinishNote()
		if o.LastOfCycle {
			w.scorer.CompleteCycle()
		}
	}
	w.obstacles = kept
}

// pitchHeld reports whether a pitch currently steers the bird,
// including the hold-over window after loss.
func (w *World) pitchHeld(now time.Time) bool {
	if w.lastPitch <= 0 || w.lastPitchAt.IsZero() {
		return false
	}
	return now.Sub(w.lastPitchAt) <= time.Duration(w.cfg.PitchHoldMs)*time.Millisecond
}

func (w *World) die(now time.Time) {
	w.state = StateDying
	w.dyingAt = now
	w.velY = 0
	w.scorer.Abandon()
}
