package game

import (
	"math"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
)

// PlayerState is the player's visual state.
type PlayerState uint8

const (
	StateIdle PlayerState = iota
	StateRun
	StateSmile
	StateSad
	StateSuperpower
)

func (s PlayerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRun:
		return "run"
	case StateSmile:
		return "smile"
	case StateSad:
		return "sad"
	case StateSuperpower:
		return "superpower"
	default:
		return "unknown"
	}
}

// Player is the single controllable entity.
type Player struct {
	X, Y         float64
	Radius       float64
	CollectRange float64
	Speed        float64

	State   PlayerState
	StateMs float64 // Remaining ms of a timed state (smile, sad)

	AimX, AimY float64 // Last non-zero movement direction
}

// NewPlayer places the player at the bottom centre of the playfield.
func NewPlayer(cfg config.SimConfig, speedScale float64) Player {
	if speedScale <= 0 {
		speedScale = 1
	}
	return Player{
		X:            cfg.Width / 2,
		Y:            cfg.Height * 0.8,
		Radius:       cfg.PlayerRadius,
		CollectRange: cfg.PlayerCollectRange,
		Speed:        cfg.PlayerSpeed * speedScale,
		AimY:         -1,
	}
}

// DepthScale maps a vertical position to a size multiplier: smaller near
// the horizon (top), larger in the foreground (bottom).
func DepthScale(y, height, min, max float64) float64 {
	if height <= 0 {
		return 1
	}
	t := y / height
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return min + (max-min)*t
}

// CollisionRadius is the depth-scaled radius used for every player contact.
func (p *Player) CollisionRadius(cfg config.SimConfig) float64 {
	return p.Radius * DepthScale(p.Y, cfg.Height, cfg.DepthScaleMin, cfg.DepthScaleMax)
}

// PickupRadius extends the collision radius by the (possibly magnetised) collect range.
func (p *Player) PickupRadius(cfg config.SimConfig, magnet bool) float64 {
	r := p.CollectRange
	if magnet {
		r *= cfg.PowerUp.MagnetRangeScale
	}
	return p.CollisionRadius(cfg) + r
}

// SetTimedState shows state for ms, unless the superpower state is showing.
func (p *Player) SetTimedState(state PlayerState, ms float64) {
	if p.State == StateSuperpower && state != StateSuperpower {
		return
	}
	p.State = state
	p.StateMs = ms
}

// Move applies one tick of input. mx, my are clamped to [-1,1].
func (p *Player) Move(cfg config.SimConfig, mx, my, speedMul, scale float64) bool {
	mx = clampUnit(mx)
	my = clampUnit(my)
	if mx == 0 && my == 0 {
		return false
	}
	// Diagonals are not faster than axis moves.
	if l := math.Hypot(mx, my); l > 1 {
		mx /= l
		my /= l
	}
	p.AimX, p.AimY = mx, my

	step := p.Speed * speedMul * scale
	p.X = clamp(p.X+mx*step, p.Radius, cfg.Width-p.Radius)
	p.Y = clamp(p.Y+my*step, p.Radius, cfg.Height-p.Radius)
	return true
}

// UpdateState advances the visual state timer.
func (p *Player) UpdateState(dtMs float64, moving, superpower bool) {
	if superpower {
		p.State = StateSuperpower
		p.StateMs = 0
		return
	}
	if p.State == StateSuperpower {
		p.State = StateIdle
	}
	if p.StateMs > 0 {
		p.StateMs -= dtMs
		if p.StateMs > 0 {
			return
		}
		p.StateMs = 0
	}
	if moving {
		p.State = StateRun
	} else {
		p.State = StateIdle
	}
}

func clampUnit(v float64) float64 {
	return clamp(v, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
