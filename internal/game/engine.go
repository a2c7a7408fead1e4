package game

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
	"github.com/hungerium/hungeriumm-sub001/internal/game/spatial"
)

// DefaultCommandQueue is the command ring size when Options leaves it unset.
const DefaultCommandQueue = 64

// broadphaseCell is the grid cell size used for the projectile pass.
const broadphaseCell = 64

// Options configures NewEngine. Only Config is required.
type Options struct {
	Config        config.SimConfig
	Logger        *zap.Logger
	Collaborators Collaborators
	Profile       Profile
	Archetypes    []BossArchetype
	Characters    []Character
	Seed          int64 // Zero picks a time-based seed
	SessionID     string
	Events        *EventLog
	QueueSize     int
	OnTick        func(TickReport) // Called on the loop goroutine after every Step
}

// Stats are cumulative counters for one engine.
type Stats struct {
	Ticks           uint64
	Spawns          [spawnKindCount]uint64
	Pickups         uint64
	HazardsShot     uint64
	ShotsFired      uint64
	BossesRetired   uint64
	GameOvers       uint64
	Restarts        uint64
	CommandsDropped uint64
}

// SpawnsOf returns how many entities of kind were spawned.
func (s Stats) SpawnsOf(kind SpawnKind) uint64 {
	if kind >= spawnKindCount {
		return 0
	}
	return s.Spawns[kind]
}

// TickReport is passed to Options.OnTick for metrics.
type TickReport struct {
	SessionID string
	Duration  time.Duration
	Score     int
	Level     int
	Over      bool
	Stats     Stats
	Pools     [6]PoolStats
}

// Engine runs one simulation. All mutation happens on a single goroutine:
// either the caller of Step/Tick, or the loop started by Start. Other
// goroutines talk to it through Enqueue and read it through Snapshot.
type Engine struct {
	cfg       config.SimConfig
	log       *zap.Logger
	rng       *rand.Rand
	seed      int64
	sessionID string

	clock   *FrameClock
	state   GameState
	player  Player
	world   *World
	spawner *Spawner
	grid    *spatial.Grid
	out     outputs

	profile    Profile
	character  Character
	characters []Character

	commands        *spatial.Queue[Command]
	cmdBuf          []Command
	held            Input
	commandsDropped atomic.Uint64

	snapshots *SnapshotPool
	events    *EventLog
	stats     Stats
	onTick    func(TickReport)

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewEngine creates an engine ready for its first tick.
func NewEngine(opts Options) *Engine {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	queue := opts.QueueSize
	if queue <= 0 {
		queue = DefaultCommandQueue
	}
	chars := opts.Characters
	if len(chars) == 0 {
		chars = []Character{DefaultCharacter}
	}

	rng := rand.New(rand.NewSource(seed))
	world := NewWorld(cfg)
	commands := spatial.NewQueue[Command](queue)

	e := &Engine{
		cfg:        cfg,
		log:        log,
		rng:        rng,
		seed:       seed,
		sessionID:  opts.SessionID,
		clock:      NewFrameClock(cfg.MaxDeltaMs),
		world:      world,
		spawner:    NewSpawner(cfg, rng, opts.Archetypes),
		grid:       spatial.NewGrid(cfg.Width, cfg.Height, broadphaseCell, cfg.Spawn.MaxHazards+cfg.Spawn.MaxObstacles),
		out:        outputs{c: opts.Collaborators, log: log},
		profile:    opts.Profile,
		characters: chars,
		commands:   commands,
		cmdBuf:     make([]Command, commands.Cap()),
		snapshots:  NewSnapshotPool(world),
		events:     opts.Events,
		onTick:     opts.OnTick,
	}
	e.character = e.initialCharacter()
	e.profile.SelectedCharacter = e.character.Key

	e.state = NewGameState(opts.Profile.PendingRewards)
	e.state.applyCharacter(e.character)
	e.player = NewPlayer(cfg, e.character.SpeedScale)
	e.startRun()
	return e
}

// initialCharacter picks the profile's selection if it is playable,
// otherwise the first free character.
func (e *Engine) initialCharacter() Character {
	if c, ok := findCharacter(e.characters, e.profile.SelectedCharacter); ok && c.Unlocked(e.profile) {
		return c
	}
	for _, c := range e.characters {
		if c.Unlocked(e.profile) {
			return c
		}
	}
	return DefaultCharacter
}

func (e *Engine) startRun() {
	e.emit(EventTypeRunStart, RunStartPayload{PlayerID: e.profile.PlayerID, Character: e.character.Key, Seed: e.seed})
	e.log.Info("run started",
		zap.String("session", e.sessionID),
		zap.String("player", e.profile.PlayerID),
		zap.String("character", e.character.Key),
		zap.Int64("seed", e.seed))
}

// Step drains queued commands and runs one tick with the accumulated input.
func (e *Engine) Step(tsMs float64) {
	e.drainCommands(tsMs)
	in := e.held
	e.held.Fire, e.held.Ability = false, false
	e.Tick(tsMs, in)
}

// Tick advances the simulation to timestamp tsMs. The order is fixed:
// clock, input, power-ups, ability and fire, spawning, movement, boss,
// collisions, combo decay, player state, outputs. A paused or finished
// run only republishes its state.
func (e *Engine) Tick(tsMs float64, in Input) {
	defer e.publish()

	st := &e.state
	if st.Paused || st.Over {
		return
	}

	scale := e.clock.Tick(tsMs)
	dtMs := e.clock.LastDeltaMs()
	if dtMs == 0 {
		// The anchoring tick carries no elapsed time; nothing integrates.
		scale = 0
	}
	st.Now = e.clock.Now()
	st.Tick++
	e.stats.Ticks++

	speedMul := 1.0
	if st.HasPowerUp(PowerSpeed) {
		speedMul = e.cfg.PowerUp.SpeedMultiplier
	}
	moving := e.player.Move(e.cfg, in.MoveX, in.MoveY, speedMul, scale)

	if expired := TickPowerUps(st, dtMs/1000); expired != 0 {
		e.out.sound(SoundPowerDown)
	}

	if in.Ability {
		e.activateAbility()
	}
	e.updateAbility(scale, dtMs)
	e.updateFire(in.Fire, dtMs)

	for k := SpawnKind(0); k < spawnKindCount; k++ {
		if !e.spawner.TrySpawn(st, e.world, k) {
			continue
		}
		e.stats.Spawns[k]++
		if k == SpawnBoss {
			e.announceBoss()
		}
	}

	e.moveEntities(scale, dtMs)
	e.updateBoss(scale, dtMs)
	e.resolve()
	st.DecayCombo(e.cfg.ComboTimeoutMs)
	e.player.UpdateState(dtMs, moving, st.AbilityActive)
}

func (e *Engine) announceBoss() {
	b := e.state.Boss
	e.out.sound(SoundBossSpawn)
	e.emit(EventTypeBossSpawn, BossPayload{Name: b.Archetype.Name, Phase: b.Phase, Health: b.Health})
	e.log.Info("boss spawned",
		zap.String("session", e.sessionID),
		zap.String("boss", b.Archetype.Name),
		zap.Int("level", e.state.Level))
}

// publish pushes dirty HUDs and produces the tick's snapshot.
func (e *Engine) publish() {
	st := &e.state
	if st.hudDirty {
		st.hudDirty = false
		e.out.hud(st.HUD(e.profile.HighScore, e.cfg.ComboStep))
	}
	if st.bossHUDDirty {
		st.bossHUDDirty = false
		if b := st.Boss; b != nil {
			e.out.bossHUD(b.hud())
		}
	}
	e.produceSnapshot()
}

// Pause freezes the run. Timers, spawns and entities stay where they are.
func (e *Engine) Pause() {
	st := &e.state
	if st.Paused || st.Over {
		return
	}
	st.Paused = true
	st.hudDirty = true
}

// Resume continues a paused run. tsMs becomes the clock's anchor so the
// paused interval is never simulated.
func (e *Engine) Resume(tsMs float64) {
	st := &e.state
	if !st.Paused {
		return
	}
	st.Paused = false
	st.hudDirty = true
	e.clock.Reanchor(tsMs)
}

// restart begins a new run, keeping the profile and pending rewards.
func (e *Engine) restart() {
	if e.state.Boss != nil {
		e.retireBoss(OutcomeAborted)
	}
	if e.state.Score > e.profile.HighScore {
		e.saveProfile()
	}

	e.state = NewGameState(e.state.PendingRewards)
	e.state.applyCharacter(e.character)
	e.player = NewPlayer(e.cfg, e.character.SpeedScale)
	e.world.Reset()
	e.clock.Reset()
	e.held = Input{}
	e.stats.Restarts++
	e.startRun()
}

// selectCharacter switches to an unlocked character and persists the choice.
func (e *Engine) selectCharacter(key string) bool {
	c, ok := findCharacter(e.characters, key)
	if !ok || !c.Unlocked(e.profile) {
		return false
	}
	e.character = c
	e.state.applyCharacter(c)
	e.player.Speed = e.cfg.PlayerSpeed * nonZero(c.SpeedScale)
	e.profile.SelectedCharacter = c.Key
	e.saveProfile()
	return true
}

// saveProfile folds the run into the profile and hands a copy to the sink.
func (e *Engine) saveProfile() {
	st := &e.state
	if st.Score > e.profile.HighScore {
		e.profile.HighScore = st.Score
	}
	e.profile.PendingRewards = st.PendingRewards
	e.profile.UpdatedAt = time.Now()

	p := e.profile
	p.OwnedCharacters = append([]string(nil), e.profile.OwnedCharacters...)
	e.out.save(p)
}

// Checkpoint persists the profile with the current run folded in. Call
// from the tick goroutine or after Stop.
func (e *Engine) Checkpoint() { e.saveProfile() }

func (e *Engine) emit(t EventType, payload interface{}) {
	if e.events == nil {
		return
	}
	e.events.Emit(NewEvent(t, e.sessionID, e.state.Tick, e.state.Now, payload))
}

// Start runs Step at the configured tick rate on a new goroutine.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopChan = make(chan struct{})
	e.doneChan = make(chan struct{})
	e.mu.Unlock()

	rate := e.cfg.TickRate
	if rate <= 0 {
		rate = 60
	}
	go e.loop(time.Second/time.Duration(rate), e.stopChan, e.doneChan)

	e.log.Info("engine started", zap.String("session", e.sessionID), zap.Int("tps", rate))
}

// Stop ends the loop and waits for the in-flight tick to finish.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopChan)
	done := e.doneChan
	e.mu.Unlock()

	<-done
	e.log.Info("engine stopped", zap.String("session", e.sessionID), zap.Uint64("ticks", e.stats.Ticks))
}

// Running reports whether the loop goroutine is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) loop(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	epoch := time.Now()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			start := time.Now()
			e.Step(float64(now.Sub(epoch).Microseconds()) / 1000)
			if e.onTick != nil {
				e.onTick(e.report(time.Since(start)))
			}
		}
	}
}

func (e *Engine) report(d time.Duration) TickReport {
	return TickReport{
		SessionID: e.sessionID,
		Duration:  d,
		Score:     e.state.Score,
		Level:     e.state.Level,
		Over:      e.state.Over,
		Stats:     e.Stats(),
		Pools:     e.world.Stats(),
	}
}

// Snapshot returns a copy of the latest published state. Safe from any goroutine.
func (e *Engine) Snapshot() (Snapshot, bool) {
	return e.snapshots.Latest()
}

// Stats returns the cumulative counters. Call from the tick goroutine or
// after Stop.
func (e *Engine) Stats() Stats {
	s := e.stats
	s.CommandsDropped = e.commandsDropped.Load()
	return s
}

// State returns a copy of the run state. Same goroutine rules as Stats.
func (e *Engine) State() GameState { return e.state }

// Player returns a copy of the player. Same goroutine rules as Stats.
func (e *Engine) Player() Player { return e.player }

// Profile returns a copy of the profile. Same goroutine rules as Stats.
func (e *Engine) Profile() Profile {
	p := e.profile
	p.OwnedCharacters = append([]string(nil), e.profile.OwnedCharacters...)
	return p
}

// Character returns the active character.
func (e *Engine) Character() Character { return e.character }

// Seed returns the RNG seed, for reproducing a run.
func (e *Engine) Seed() int64 { return e.seed }

// SessionID returns the id this engine logs and emits under.
func (e *Engine) SessionID() string { return e.sessionID }

// World exposes the entity pools. Same goroutine rules as Stats.
func (e *Engine) World() *World { return e.world }
