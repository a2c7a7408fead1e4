package persist

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/hungerium/hungeriumm-sub001/internal/game"
)

// ErrProfileNotFound is returned when no profile exists for a player.
var ErrProfileNotFound = errors.New("profile not found")

// Store loads and saves player profiles.
type Store interface {
	Load(ctx context.Context, playerID string) (game.Profile, error)
	Save(ctx context.Context, p game.Profile) error
	// TopScores returns up to n profiles ordered by high score.
	TopScores(ctx context.Context, n int) ([]game.Profile, error)
}

// LoadOrNew loads a profile, returning a fresh one for unknown players.
func LoadOrNew(ctx context.Context, s Store, playerID string) (game.Profile, error) {
	p, err := s.Load(ctx, playerID)
	if errors.Is(err, ErrProfileNotFound) {
		return game.Profile{PlayerID: playerID}, nil
	}
	return p, err
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]game.Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]game.Profile)}
}

func (m *MemoryStore) Load(_ context.Context, playerID string) (game.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[playerID]
	if !ok {
		return game.Profile{}, ErrProfileNotFound
	}
	p.OwnedCharacters = append([]string(nil), p.OwnedCharacters...)
	return p, nil
}

func (m *MemoryStore) Save(_ context.Context, p game.Profile) error {
	if p.PlayerID == "" {
		return errors.New("save profile: empty player id")
	}
	p.OwnedCharacters = append([]string(nil), p.OwnedCharacters...)
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	m.mu.Lock()
	m.profiles[p.PlayerID] = p
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) TopScores(_ context.Context, n int) ([]game.Profile, error) {
	m.mu.RLock()
	out := make([]game.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].HighScore != out[j].HighScore {
			return out[i].HighScore > out[j].HighScore
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
