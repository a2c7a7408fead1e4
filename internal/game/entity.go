package game

// Body is the circular physical footprint shared by every entity.
type Body struct {
	X, Y   float64
	VX, VY float64
	Radius float64
}

// CollectibleKind identifies what a collectible does when the player touches it.
type CollectibleKind uint8

const (
	KindPrimary CollectibleKind = iota
	KindHazard
	KindPowerUp
	collectibleKindCount
)

func (k CollectibleKind) String() string {
	switch k {
	case KindPrimary:
		return "primary"
	case KindHazard:
		return "hazard"
	case KindPowerUp:
		return "powerup"
	default:
		return "unknown"
	}
}

// Payload is the kind-specific part of a collectible. The set of
// implementations is closed: only this package can add one.
type Payload interface {
	Kind() CollectibleKind
	sealed()
}

// PrimaryPayload is the scoring collectible.
type PrimaryPayload struct{}

// HazardPayload describes a hazard, optionally on a zigzag path.
type HazardPayload struct {
	Zigzag    bool
	Amplitude float64 // Lateral speed in px per reference frame
	Frequency float64 // Radians per simulated ms
	Phase     float64
}

// PowerUpPayload carries the modifier the pickup activates.
type PowerUpPayload struct {
	PowerUp PowerUpKind
}

func (PrimaryPayload) Kind() CollectibleKind { return KindPrimary }
func (HazardPayload) Kind() CollectibleKind  { return KindHazard }
func (PowerUpPayload) Kind() CollectibleKind { return KindPowerUp }

func (PrimaryPayload) sealed() {}
func (HazardPayload) sealed()  {}
func (PowerUpPayload) sealed() {}

// Collectible is a pooled pickup drifting across the playfield.
type Collectible struct {
	Body
	Rotation float64
	BornAt   float64
	Payload  Payload
}

// Kind returns the payload kind. A released (zeroed) record reports
// collectibleKindCount.
func (c *Collectible) Kind() CollectibleKind {
	if c.Payload == nil {
		return collectibleKindCount
	}
	return c.Payload.Kind()
}

// Obstacle is a large drifting body that ends the run on contact unless shielded.
type Obstacle struct {
	Body
	Rotation float64
	Spin     float64
}

// Projectile is a player shot or a boss bullet.
type Projectile struct {
	Body
	ExpiresAt float64
}

// Effect names a particle-burst style for the VFX layer.
type Effect string

const (
	EffectPickup        Effect = "pickup"
	EffectPowerUp       Effect = "powerup"
	EffectShieldBlock   Effect = "shield_block"
	EffectProjectileHit Effect = "projectile_hit"
	EffectBossHit       Effect = "boss_hit"
	EffectBossDefeat    Effect = "boss_defeat"
	EffectBossExit      Effect = "boss_exit"
	EffectGameOver      Effect = "game_over"
	EffectCloneFade     Effect = "clone_fade"
)

// Particle is a short-lived visual fragment.
type Particle struct {
	Body
	LifeMs    float64
	MaxLifeMs float64
	Effect    Effect
}

// Clone is a helper spawned by the ability. Target is a handle into the
// collectible pool and is re-resolved every tick.
type Clone struct {
	Body
	Target Handle
	Fading bool
	FadeMs float64
	Alpha  float64
}
