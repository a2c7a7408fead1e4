package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hungerium/hungeriumm-sub001/internal/game"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
	ErrQueueFull       = errors.New("command queue full")
	ErrInvalidPlayer   = errors.New("invalid player id")
)

// Session is one player's running simulation.
type Session struct {
	ID        string
	PlayerID  string
	CreatedAt time.Time

	engine   *game.Engine
	cues     *CueFeed
	lastSeen atomic.Int64

	mu      sync.Mutex
	profile game.Profile
}

// Info summarises a session for listings.
type Info struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"playerId"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
	Score     int       `json:"score"`
	Level     int       `json:"level"`
	Over      bool      `json:"over"`
	Paused    bool      `json:"paused"`
}

func (s *Session) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen returns the time of the last client request.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Send queues a command for the next tick.
func (s *Session) Send(cmd game.Command) error {
	s.touch()
	if !s.engine.Enqueue(cmd) {
		return ErrQueueFull
	}
	return nil
}

// Input queues movement and action intent.
func (s *Session) Input(in game.Input) error {
	return s.Send(game.Command{Kind: game.CmdInput, Input: in})
}

// Snapshot returns the latest published state.
func (s *Session) Snapshot() (game.Snapshot, bool) {
	return s.engine.Snapshot()
}

// Cues returns the presentation cue stream.
func (s *Session) Cues() <-chan Cue { return s.cues.C() }

// CuesDropped returns how many cues overflowed the feed.
func (s *Session) CuesDropped() uint64 { return s.cues.Dropped() }

// Seed returns the engine's RNG seed.
func (s *Session) Seed() int64 { return s.engine.Seed() }

// Profile returns the most recently saved profile.
func (s *Session) Profile() game.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profile
	p.OwnedCharacters = append([]string(nil), s.profile.OwnedCharacters...)
	return p
}

func (s *Session) setProfile(p game.Profile) {
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
}

// Info returns a listing summary built from the latest snapshot.
func (s *Session) Info() Info {
	info := Info{
		ID:        s.ID,
		PlayerID:  s.PlayerID,
		CreatedAt: s.CreatedAt,
		LastSeen:  s.LastSeen(),
	}
	if snap, ok := s.engine.Snapshot(); ok {
		info.Score = snap.HUD.Score
		info.Level = snap.HUD.Level
		info.Over = snap.HUD.Over
		info.Paused = snap.HUD.Paused
	}
	return info
}
