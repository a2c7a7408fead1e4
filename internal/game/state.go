package game

import (
	"math"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
)

// SpawnKind enumerates the spawner's independent schedules.
type SpawnKind uint8

const (
	SpawnPrimary SpawnKind = iota
	SpawnHazard
	SpawnPowerUp
	SpawnObstacle
	SpawnBoss
	spawnKindCount
)

func (k SpawnKind) String() string {
	switch k {
	case SpawnPrimary:
		return "primary"
	case SpawnHazard:
		return "hazard"
	case SpawnPowerUp:
		return "powerup"
	case SpawnObstacle:
		return "obstacle"
	case SpawnBoss:
		return "boss"
	default:
		return "unknown"
	}
}

// PowerUpTimer is one timed modifier. Remaining is in seconds.
type PowerUpTimer struct {
	Active    bool
	Remaining float64
}

// GameState is the mutable simulation context of one run. Every subsystem
// receives it explicitly; nothing in this package keeps ambient state.
type GameState struct {
	Now  float64 // Simulated ms since the run started
	Tick uint64

	Score          int
	Level          int
	Combo          int
	PrimaryCount   int
	PendingRewards int
	LastPickupAt   float64

	ScoreMultiplier  float64
	RewardMultiplier float64

	PowerUps [powerUpKindCount]PowerUpTimer
	AutoFire bool

	LastSpawn [spawnKindCount]float64
	Boss      *Boss

	Paused bool
	Over   bool

	AbilityActive     bool
	AbilityRemainMs   float64
	AbilityCooldownMs float64
	FireCooldownMs    float64
	AutoFireTimerMs   float64

	BossesSeen int

	hudDirty     bool
	bossHUDDirty bool
}

// NewGameState returns the state for a fresh run.
func NewGameState(pendingRewards int) GameState {
	return GameState{
		Level:            1,
		PendingRewards:   pendingRewards,
		ScoreMultiplier:  1,
		RewardMultiplier: 1,
		hudDirty:         true,
	}
}

// ComboMultiplier returns 1 + floor(combo/step).
func (s *GameState) ComboMultiplier(step int) int {
	if step <= 0 {
		return 1
	}
	return 1 + s.Combo/step
}

// AwardPrimary applies the scoring rule for one primary pickup and returns
// the score delta and whether the level advanced.
func (s *GameState) AwardPrimary(cfg config.SimConfig) (delta int, leveledUp bool) {
	mult := s.ComboMultiplier(cfg.ComboStep)
	delta = int(math.Round(float64(cfg.BaseUnit*s.Level*mult) * s.ScoreMultiplier))
	s.Score += delta
	s.Combo++
	s.PrimaryCount++

	reward := int(math.Round(float64(cfg.BaseUnit) * s.RewardMultiplier))
	s.PendingRewards += reward
	if s.PendingRewards > cfg.MaxPendingRewards {
		s.PendingRewards = cfg.MaxPendingRewards
	}
	s.LastPickupAt = s.Now

	if cfg.PrimariesPerLevel > 0 && s.PrimaryCount%cfg.PrimariesPerLevel == 0 {
		s.Level++
		leveledUp = true
	}
	s.hudDirty = true
	return delta, leveledUp
}

// DecayCombo resets the combo once the pickup window has lapsed.
func (s *GameState) DecayCombo(timeoutMs float64) bool {
	if s.Combo > 0 && s.Now-s.LastPickupAt > timeoutMs {
		s.Combo = 0
		s.hudDirty = true
		return true
	}
	return false
}

// Shielded reports whether hazard contact is currently absorbed.
func (s *GameState) Shielded() bool {
	return s.PowerUps[PowerShield].Active
}

// HasPowerUp reports whether kind is active.
func (s *GameState) HasPowerUp(kind PowerUpKind) bool {
	return kind < powerUpKindCount && s.PowerUps[kind].Active
}

// HUD returns the externally visible score summary.
func (s *GameState) HUD(highScore int, step int) HUD {
	h := HUD{
		Score:           s.Score,
		Level:           s.Level,
		Combo:           s.Combo,
		ComboMultiplier: s.ComboMultiplier(step),
		PrimaryCount:    s.PrimaryCount,
		PendingRewards:  s.PendingRewards,
		ScoreMultiplier: s.ScoreMultiplier,
		HighScore:       highScore,
		Over:            s.Over,
		Paused:          s.Paused,
		AbilityReady:    !s.AbilityActive && s.AbilityCooldownMs <= 0,
	}
	if s.Score > h.HighScore {
		h.HighScore = s.Score
	}
	for k := PowerUpKind(0); k < powerUpKindCount; k++ {
		if s.PowerUps[k].Active {
			h.PowerUps = append(h.PowerUps, PowerUpStatus{Kind: k.String(), Remaining: s.PowerUps[k].Remaining})
		}
	}
	return h
}
