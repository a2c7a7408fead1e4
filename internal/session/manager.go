// Package session hosts many concurrent single-player simulations. Each
// session owns an engine running on its own goroutine; clients talk to it
// through the engine's command queue and read snapshots and cues.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
	"github.com/hungerium/hungeriumm-sub001/internal/data"
	"github.com/hungerium/hungeriumm-sub001/internal/game"
	"github.com/hungerium/hungeriumm-sub001/internal/persist"
)

// Observer receives session lifecycle and per-tick reports. Tick is
// called on the session's tick goroutine and must not block.
type Observer interface {
	SessionOpened(id string)
	SessionClosed(id, reason string)
	Tick(r game.TickReport)
}

type nopObserver struct{}

func (nopObserver) SessionOpened(string)         {}
func (nopObserver) SessionClosed(string, string) {}
func (nopObserver) Tick(game.TickReport)         {}

// Options configures a Manager. Store is required; the rest default.
type Options struct {
	Sim      config.SimConfig
	Session  config.SessionConfig
	Tables   *data.Tables
	Store    persist.Store
	Saver    game.ProfileSink // Usually a *persist.Saver run by the caller; nil uses an owned one
	Events   *game.EventLog
	Observer Observer
	Logger   *zap.Logger
}

// Manager creates, tracks and reaps sessions, and keeps the leaderboard.
type Manager struct {
	sim      config.SimConfig
	cfg      config.SessionConfig
	tables   *data.Tables
	store    persist.Store
	saver    game.ProfileSink
	owned    *persist.Saver // Set when no saver was supplied
	events   *game.EventLog
	observer Observer
	log      *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	lbMu        sync.Mutex
	leaderboard *game.Leaderboard
}

func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Tables == nil {
		opts.Tables = data.Builtin()
	}
	if opts.Store == nil {
		opts.Store = persist.NewMemoryStore()
	}
	var owned *persist.Saver
	if opts.Saver == nil {
		owned = persist.NewSaver(opts.Store, config.StorageConfig{}, opts.Logger.Named("saver"))
		opts.Saver = owned
	}
	return &Manager{
		sim:         opts.Sim,
		cfg:         opts.Session,
		tables:      opts.Tables,
		store:       opts.Store,
		saver:       opts.Saver,
		owned:       owned,
		events:      opts.Events,
		observer:    opts.Observer,
		log:         opts.Logger,
		sessions:    make(map[string]*Session),
		leaderboard: game.NewLeaderboard(),
	}
}

// SeedLeaderboard loads the n best stored scores into the leaderboard.
func (m *Manager) SeedLeaderboard(ctx context.Context, n int) error {
	top, err := m.store.TopScores(ctx, n)
	if err != nil {
		return fmt.Errorf("seed leaderboard: %w", err)
	}
	m.lbMu.Lock()
	for _, p := range top {
		if p.HighScore > 0 {
			m.leaderboard.Submit(p.PlayerID, p.HighScore)
		}
	}
	m.lbMu.Unlock()
	m.log.Info("leaderboard seeded", zap.Int("players", len(top)))
	return nil
}

// Create loads the player's profile and starts a new session. A zero seed
// picks one from the clock.
func (m *Manager) Create(ctx context.Context, playerID string, seed int64) (*Session, error) {
	if playerID == "" {
		return nil, ErrInvalidPlayer
	}
	if m.Len() >= m.cfg.MaxSessions {
		return nil, ErrSessionLimit
	}

	profile, err := persist.LoadOrNew(ctx, m.store, playerID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	s := &Session{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		CreatedAt: time.Now(),
		cues:      NewCueFeed(m.cfg.CueBuffer),
		profile:   profile,
	}
	s.touch()

	s.engine = game.NewEngine(game.Options{
		Config: m.sim,
		Logger: m.log,
		Collaborators: game.Collaborators{
			Score:   s.cues,
			VFX:     s.cues,
			Audio:   s.cues,
			Profile: &profileRelay{m: m, s: s},
		},
		Profile:    profile,
		Archetypes: m.tables.Bosses,
		Characters: m.tables.Characters,
		Seed:       seed,
		SessionID:  s.ID,
		Events:     m.events,
		QueueSize:  m.cfg.InputQueue,
		OnTick:     m.observer.Tick,
	})

	m.mu.Lock()
	if len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return nil, ErrSessionLimit
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	s.engine.Start()
	m.observer.SessionOpened(s.ID)
	m.log.Info("session created",
		zap.String("session", s.ID),
		zap.String("player", playerID),
		zap.Int64("seed", s.engine.Seed()))
	return s, nil
}

// Get returns a session and marks it active.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch()
	return s, nil
}

// Close stops a session and persists its profile.
func (m *Manager) Close(id, reason string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	m.shutdown(s, reason)
	return nil
}

func (m *Manager) shutdown(s *Session, reason string) {
	s.engine.Stop()
	s.engine.Checkpoint()
	m.flushOwned()
	if m.events != nil {
		m.events.Forget(s.ID)
	}
	m.observer.SessionClosed(s.ID, reason)
	m.log.Info("session closed",
		zap.String("session", s.ID),
		zap.String("player", s.PlayerID),
		zap.String("reason", reason))
}

// CloseAll stops every session.
func (m *Manager) CloseAll(reason string) {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range all {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			m.shutdown(s, reason)
		}(s)
	}
	wg.Wait()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List returns summaries of all sessions, newest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	out := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Info())
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Characters returns the selectable character table.
func (m *Manager) Characters() []game.Character {
	return m.tables.Characters
}

// Run reaps idle sessions until ctx is cancelled, then closes the rest.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.cfg.ReapInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.CloseAll("shutdown")
			return nil
		case now := <-ticker.C:
			if n := m.Reap(now); n > 0 {
				m.log.Info("reaped idle sessions", zap.Int("count", n))
			}
			m.flushOwned()
		}
	}
}

// Reap closes sessions idle longer than the configured timeout.
func (m *Manager) Reap(now time.Time) int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-m.cfg.IdleTimeout)

	m.mu.RLock()
	var idle []string
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range idle {
		if m.Close(id, "idle") == nil {
			n++
		}
	}
	return n
}

// Top returns the n best players.
func (m *Manager) Top(n int) []game.LeaderboardEntry {
	m.lbMu.Lock()
	defer m.lbMu.Unlock()
	return m.leaderboard.Top(n)
}

// Around returns the leaderboard neighbourhood of playerID.
func (m *Manager) Around(playerID string, above, below int) []game.LeaderboardEntry {
	m.lbMu.Lock()
	defer m.lbMu.Unlock()
	return m.leaderboard.Around(playerID, above, below)
}

func (m *Manager) submitScore(playerID string, score int) {
	m.lbMu.Lock()
	m.leaderboard.Submit(playerID, score)
	m.lbMu.Unlock()
}

// profileRelay is a session's ProfileSink: it records the profile on the
// session, ranks the high score and forwards to the saver.
type profileRelay struct {
	m *Manager
	s *Session
}

func (r *profileRelay) SaveProfile(p game.Profile) {
	r.s.setProfile(p)
	if p.HighScore > 0 {
		r.m.submitScore(p.PlayerID, p.HighScore)
	}
	r.m.saver.SaveProfile(p)
}

// flushOwned writes the owned saver's queue. Only called off the tick
// goroutines: after a session stops and from the reaper.
func (m *Manager) flushOwned() {
	if m.owned != nil {
		m.owned.Flush(context.Background())
	}
}
