package game

import (
	"sync"
	"time"
)

// EntitySnapshot is an immutable copy of one pooled entity for rendering.
type EntitySnapshot struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"r"`
	Rotation float64 `json:"rot,omitempty"`
	Alpha    float64 `json:"a,omitempty"`
	Kind     string  `json:"kind,omitempty"`
}

// PlayerSnapshot is the player's render state.
type PlayerSnapshot struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"r"` // Depth-scaled
	State    string  `json:"state"`
	Shielded bool    `json:"shielded"`
}

// BossSnapshot is the boss's render state.
type BossSnapshot struct {
	Name         string  `json:"name"`
	State        string  `json:"state"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Radius       float64 `json:"r"`
	Phase        int     `json:"phase"`
	HealthPct    float64 `json:"healthPct"`
	Invulnerable bool    `json:"invulnerable"`
}

// Snapshot is a complete immutable view of one session after a tick.
// Slices are preallocated to pool capacity and never grow.
type Snapshot struct {
	Sequence  uint64    `json:"seq"`
	Timestamp time.Time `json:"ts"`
	Tick      uint64    `json:"tick"`
	SimMs     float64   `json:"simMs"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Character string    `json:"character"`

	HUD    HUD            `json:"hud"`
	Player PlayerSnapshot `json:"player"`
	Boss   *BossSnapshot  `json:"boss,omitempty"`

	Collectibles []EntitySnapshot `json:"collectibles"`
	Obstacles    []EntitySnapshot `json:"obstacles"`
	Shots        []EntitySnapshot `json:"shots"`
	BossShots    []EntitySnapshot `json:"bossShots"`
	Particles    []EntitySnapshot `json:"particles"`
	Clones       []EntitySnapshot `json:"clones"`

	boss BossSnapshot
}

// Clone deep-copies s so the caller may keep it.
func (s *Snapshot) Clone() Snapshot {
	c := *s
	c.Collectibles = append([]EntitySnapshot(nil), s.Collectibles...)
	c.Obstacles = append([]EntitySnapshot(nil), s.Obstacles...)
	c.Shots = append([]EntitySnapshot(nil), s.Shots...)
	c.BossShots = append([]EntitySnapshot(nil), s.BossShots...)
	c.Particles = append([]EntitySnapshot(nil), s.Particles...)
	c.Clones = append([]EntitySnapshot(nil), s.Clones...)
	c.HUD.PowerUps = append([]PowerUpStatus(nil), s.HUD.PowerUps...)
	if s.Boss != nil {
		c.boss = *s.Boss
		c.Boss = &c.boss
	}
	return c
}

// SnapshotPool is a triple buffer: the tick goroutine fills a back buffer
// and publishes it, readers copy the published one. The writer never
// touches the published buffer, so readers only contend on the swap.
type SnapshotPool struct {
	mu        sync.Mutex
	buffers   [3]Snapshot
	published int
	writing   int
	sequence  uint64
}

// NewSnapshotPool preallocates every buffer to the world's pool capacities.
func NewSnapshotPool(w *World) *SnapshotPool {
	p := &SnapshotPool{published: -1}
	for i := range p.buffers {
		p.buffers[i] = Snapshot{
			Collectibles: make([]EntitySnapshot, 0, w.Collectibles.Cap()),
			Obstacles:    make([]EntitySnapshot, 0, w.Obstacles.Cap()),
			Shots:        make([]EntitySnapshot, 0, w.Shots.Cap()),
			BossShots:    make([]EntitySnapshot, 0, w.BossShots.Cap()),
			Particles:    make([]EntitySnapshot, 0, w.Particles.Cap()),
			Clones:       make([]EntitySnapshot, 0, w.Clones.Cap()),
		}
	}
	return p
}

// AcquireWrite returns a reset back buffer (tick goroutine only).
func (p *SnapshotPool) AcquireWrite() *Snapshot {
	p.mu.Lock()
	idx := (p.published + 1) % 3
	p.writing = idx
	p.sequence++
	seq := p.sequence
	p.mu.Unlock()

	s := &p.buffers[idx]
	s.Collectibles = s.Collectibles[:0]
	s.Obstacles = s.Obstacles[:0]
	s.Shots = s.Shots[:0]
	s.BossShots = s.BossShots[:0]
	s.Particles = s.Particles[:0]
	s.Clones = s.Clones[:0]
	s.Boss = nil
	s.Sequence = seq
	s.Timestamp = time.Now()
	return s
}

// PublishWrite makes the buffer from AcquireWrite visible to readers.
func (p *SnapshotPool) PublishWrite() {
	p.mu.Lock()
	p.published = p.writing
	p.mu.Unlock()
}

// Latest returns a copy of the most recently published snapshot.
// ok is false before the first publish.
func (p *SnapshotPool) Latest() (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.published < 0 {
		return Snapshot{}, false
	}
	return p.buffers[p.published].Clone(), true
}

// produceSnapshot writes the current state into the snapshot pool.
func (e *Engine) produceSnapshot() {
	s := e.snapshots.AcquireWrite()
	st := &e.state

	s.Tick = st.Tick
	s.SimMs = st.Now
	s.Width, s.Height = e.cfg.Width, e.cfg.Height
	s.Character = e.character.Key

	s.HUD = st.HUD(e.profile.HighScore, e.cfg.ComboStep)

	s.Player = PlayerSnapshot{
		X:        e.player.X,
		Y:        e.player.Y,
		Radius:   e.player.CollisionRadius(e.cfg),
		State:    e.player.State.String(),
		Shielded: st.Shielded(),
	}

	if b := st.Boss; b != nil {
		s.boss = BossSnapshot{
			Name:         b.Archetype.Name,
			State:        b.State.String(),
			X:            b.X,
			Y:            b.Y,
			Radius:       b.Radius,
			Phase:        b.Phase,
			HealthPct:    b.HealthFraction() * 100,
			Invulnerable: !b.Vulnerable(),
		}
		s.Boss = &s.boss
	}

	e.world.Collectibles.Each(func(_ Handle, c *Collectible) bool {
		kind := c.Kind().String()
		if p, ok := c.Payload.(PowerUpPayload); ok {
			kind = p.PowerUp.String()
		}
		s.Collectibles = append(s.Collectibles, EntitySnapshot{X: c.X, Y: c.Y, Radius: c.Radius, Rotation: c.Rotation, Kind: kind})
		return true
	})
	e.world.Obstacles.Each(func(_ Handle, o *Obstacle) bool {
		s.Obstacles = append(s.Obstacles, EntitySnapshot{X: o.X, Y: o.Y, Radius: o.Radius, Rotation: o.Rotation})
		return true
	})
	e.world.Shots.Each(func(_ Handle, p *Projectile) bool {
		s.Shots = append(s.Shots, EntitySnapshot{X: p.X, Y: p.Y, Radius: p.Radius})
		return true
	})
	e.world.BossShots.Each(func(_ Handle, p *Projectile) bool {
		s.BossShots = append(s.BossShots, EntitySnapshot{X: p.X, Y: p.Y, Radius: p.Radius})
		return true
	})
	e.world.Particles.Each(func(_ Handle, p *Particle) bool {
		alpha := 0.0
		if p.MaxLifeMs > 0 {
			alpha = p.LifeMs / p.MaxLifeMs
		}
		s.Particles = append(s.Particles, EntitySnapshot{X: p.X, Y: p.Y, Radius: p.Radius, Alpha: alpha, Kind: string(p.Effect)})
		return true
	})
	e.world.Clones.Each(func(_ Handle, c *Clone) bool {
		s.Clones = append(s.Clones, EntitySnapshot{X: c.X, Y: c.Y, Radius: c.Radius, Alpha: c.Alpha})
		return true
	})

	e.snapshots.PublishWrite()
}
