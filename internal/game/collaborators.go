package game

import (
	"time"

	"go.uber.org/zap"
)

//go:generate go tool mockgen -destination=./mocks/collaborators_mock.go -package=mocks . ScoreSink,VFXSink,AudioSink,ProfileSink

// HUD is the score summary pushed to the UI layer.
type HUD struct {
	Score           int             `json:"score"`
	Level           int             `json:"level"`
	Combo           int             `json:"combo"`
	ComboMultiplier int             `json:"comboMultiplier"`
	PrimaryCount    int             `json:"primaryCount"`
	PendingRewards  int             `json:"pendingRewards"`
	ScoreMultiplier float64         `json:"scoreMultiplier"`
	HighScore       int             `json:"highScore"`
	Over            bool            `json:"over"`
	Paused          bool            `json:"paused"`
	AbilityReady    bool            `json:"abilityReady"`
	PowerUps        []PowerUpStatus `json:"powerUps,omitempty"`
}

// PowerUpStatus is one active modifier as shown on the HUD.
type PowerUpStatus struct {
	Kind      string  `json:"kind"`
	Remaining float64 `json:"remaining"`
}

// BossOutcome is how an encounter ended.
type BossOutcome string

const (
	OutcomeNone     BossOutcome = ""
	OutcomeDefeated BossOutcome = "defeated"
	OutcomeEscaped  BossOutcome = "escaped"
	OutcomeAborted  BossOutcome = "aborted" // Run ended during the encounter
)

// BossHUD is the boss health bar. Visible=false with an Outcome is the
// encounter-ended notification.
type BossHUD struct {
	Name      string      `json:"name"`
	HealthPct float64     `json:"healthPct"`
	Phase     int         `json:"phase"`
	Visible   bool        `json:"visible"`
	Outcome   BossOutcome `json:"outcome,omitempty"`
}

// Profile is the persisted per-player record. It is read once before the
// engine is built and written back through ProfileSink.
type Profile struct {
	PlayerID          string    `json:"playerId"`
	HighScore         int       `json:"highScore"`
	OwnedCharacters   []string  `json:"ownedCharacters"`
	SelectedCharacter string    `json:"selectedCharacter"`
	PendingRewards    int       `json:"pendingRewards"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Owns reports whether key is among the owned characters.
func (p Profile) Owns(key string) bool {
	for _, k := range p.OwnedCharacters {
		if k == key {
			return true
		}
	}
	return false
}

// ScoreSink receives HUD updates.
type ScoreSink interface {
	UpdateHUD(hud HUD)
	UpdateBossHUD(hud BossHUD)
}

// VFXSink receives particle-burst requests.
type VFXSink interface {
	ParticleBurst(x, y float64, effect Effect, speedMul float64)
}

// AudioSink receives sound cues keyed by event name.
type AudioSink interface {
	PlaySound(name string)
}

// ProfileSink persists profile changes. Implementations must not block the tick.
type ProfileSink interface {
	SaveProfile(p Profile)
}

// Collaborators bundles the engine's outputs. Any member may be nil.
type Collaborators struct {
	Score   ScoreSink
	VFX     VFXSink
	Audio   AudioSink
	Profile ProfileSink
}

// Sound names emitted by the engine.
const (
	SoundPickup      = "pickup"
	SoundPowerUp     = "powerup"
	SoundPowerDown   = "powerdown"
	SoundShieldBlock = "shield_block"
	SoundLevelUp     = "level_up"
	SoundFire        = "fire"
	SoundHit         = "hit"
	SoundAbility     = "ability"
	SoundBossSpawn   = "boss_spawn"
	SoundBossPhase   = "boss_phase"
	SoundBossAttack  = "boss_attack"
	SoundBossDefeat  = "boss_defeat"
	SoundBossEscape  = "boss_escape"
	SoundGameOver    = "game_over"
)

const (
	sinkScore = iota
	sinkVFX
	sinkAudio
	sinkProfile
	sinkCount
)

var sinkNames = [sinkCount]string{"score", "vfx", "audio", "profile"}

// outputs dispatches to collaborators. A nil collaborator is logged once
// and its calls become no-ops.
type outputs struct {
	c      Collaborators
	log    *zap.Logger
	warned [sinkCount]bool
}

func (o *outputs) missing(sink int) {
	if o.warned[sink] {
		return
	}
	o.warned[sink] = true
	o.log.Warn("collaborator not wired, output dropped", zap.String("sink", sinkNames[sink]))
}

func (o *outputs) hud(h HUD) {
	if o.c.Score == nil {
		o.missing(sinkScore)
		return
	}
	o.c.Score.UpdateHUD(h)
}

func (o *outputs) bossHUD(h BossHUD) {
	if o.c.Score == nil {
		o.missing(sinkScore)
		return
	}
	o.c.Score.UpdateBossHUD(h)
}

func (o *outputs) burst(x, y float64, effect Effect, speedMul float64) {
	if o.c.VFX == nil {
		o.missing(sinkVFX)
		return
	}
	o.c.VFX.ParticleBurst(x, y, effect, speedMul)
}

func (o *outputs) sound(name string) {
	if o.c.Audio == nil {
		o.missing(sinkAudio)
		return
	}
	o.c.Audio.PlaySound(name)
}

func (o *outputs) save(p Profile) {
	if o.c.Profile == nil {
		o.missing(sinkProfile)
		return
	}
	o.c.Profile.SaveProfile(p)
}
