package game

import "github.com/hungerium/hungeriumm-sub001/internal/config"

// PowerUpKind is a timed player modifier.
type PowerUpKind uint8

const (
	PowerShield PowerUpKind = iota
	PowerSpeed
	PowerMagnet
	PowerRepel
	PowerRanged
	powerUpKindCount
)

func (k PowerUpKind) String() string {
	switch k {
	case PowerShield:
		return "shield"
	case PowerSpeed:
		return "speed"
	case PowerMagnet:
		return "magnet"
	case PowerRepel:
		return "repel"
	case PowerRanged:
		return "ranged"
	default:
		return "unknown"
	}
}

// PowerUpSet is a bitmask of power-up kinds.
type PowerUpSet uint8

// Has reports whether kind is in the set.
func (s PowerUpSet) Has(kind PowerUpKind) bool { return s&(1<<kind) != 0 }

// Duration returns the configured active time of kind, in seconds.
func Duration(cfg config.PowerUpConfig, kind PowerUpKind) float64 {
	switch kind {
	case PowerShield:
		return cfg.ShieldSeconds
	case PowerSpeed:
		return cfg.SpeedSeconds
	case PowerMagnet:
		return cfg.MagnetSeconds
	case PowerRepel:
		return cfg.RepelSeconds
	case PowerRanged:
		return cfg.RangedSeconds
	}
	return 0
}

// ActivatePowerUp turns kind on for its configured duration. Picking up an
// already active modifier refreshes the timer.
func ActivatePowerUp(s *GameState, cfg config.PowerUpConfig, kind PowerUpKind) {
	if kind >= powerUpKindCount {
		return
	}
	s.PowerUps[kind] = PowerUpTimer{Active: true, Remaining: Duration(cfg, kind)}
	if kind == PowerRanged {
		s.AutoFire = true
		s.AutoFireTimerMs = 0
	}
	s.hudDirty = true
}

// TickPowerUps decrements every active timer by dt seconds and returns the
// kinds that expired on this tick. Effects read the flags elsewhere.
func TickPowerUps(s *GameState, dt float64) PowerUpSet {
	var expired PowerUpSet
	for k := PowerUpKind(0); k < powerUpKindCount; k++ {
		t := &s.PowerUps[k]
		if !t.Active {
			continue
		}
		if t.Remaining > 0 {
			t.Remaining -= dt
		}
		if t.Remaining <= 0 {
			t.Remaining = 0
			t.Active = false
			expired |= 1 << k
			if k == PowerRanged {
				s.AutoFire = false
			}
		}
	}
	if expired != 0 {
		s.hudDirty = true
	}
	return expired
}
