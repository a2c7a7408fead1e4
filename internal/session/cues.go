package session

import (
	"sync/atomic"

	"github.com/hungerium/hungeriumm-sub001/internal/game"
)

// CueType labels a presentation cue.
type CueType string

const (
	CueHUD     CueType = "hud"
	CueBossHUD CueType = "boss"
	CueBurst   CueType = "burst"
	CueSound   CueType = "sound"
)

// Burst is a particle-burst request.
type Burst struct {
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Effect   game.Effect `json:"effect"`
	SpeedMul float64     `json:"speedMul"`
}

// Cue is one presentation output of the engine, forwarded to clients.
type Cue struct {
	Type  CueType       `json:"type"`
	HUD   *game.HUD     `json:"hud,omitempty"`
	Boss  *game.BossHUD `json:"boss,omitempty"`
	Burst *Burst        `json:"burst,omitempty"`
	Sound string        `json:"sound,omitempty"`
}

// CueFeed turns engine collaborator calls into a buffered stream. It is
// written only by the tick goroutine; a full buffer drops the cue.
type CueFeed struct {
	ch      chan Cue
	dropped atomic.Uint64
}

// NewCueFeed creates a feed holding up to size pending cues.
func NewCueFeed(size int) *CueFeed {
	if size <= 0 {
		size = 256
	}
	return &CueFeed{ch: make(chan Cue, size)}
}

// C returns the receive side of the feed.
func (f *CueFeed) C() <-chan Cue { return f.ch }

// Dropped returns how many cues were discarded.
func (f *CueFeed) Dropped() uint64 { return f.dropped.Load() }

func (f *CueFeed) push(c Cue) {
	select {
	case f.ch <- c:
	default:
		f.dropped.Add(1)
	}
}

func (f *CueFeed) UpdateHUD(h game.HUD) {
	h.PowerUps = append([]game.PowerUpStatus(nil), h.PowerUps...)
	f.push(Cue{Type: CueHUD, HUD: &h})
}

func (f *CueFeed) UpdateBossHUD(h game.BossHUD) {
	f.push(Cue{Type: CueBossHUD, Boss: &h})
}

func (f *CueFeed) ParticleBurst(x, y float64, effect game.Effect, speedMul float64) {
	f.push(Cue{Type: CueBurst, Burst: &Burst{X: x, Y: y, Effect: effect, SpeedMul: speedMul}})
}

func (f *CueFeed) PlaySound(name string) {
	f.push(Cue{Type: CueSound, Sound: name})
}
