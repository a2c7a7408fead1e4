package game

import (
	"github.com/hungerium/hungeriumm-sub001/internal/game/spatial"
)

// Leaderboard ranks players by their best score. Backed by a skip list
// with span counts:
//   - Submit: O(log n)
//   - Rank: O(log n)
//   - Top: O(log n + k)
//   - Around: O(log n + k)
type Leaderboard struct {
	skipList *spatial.SkipList
}

// LeaderboardEntry is one ranked player.
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

// NewLeaderboard creates an empty leaderboard.
func NewLeaderboard() *Leaderboard {
	return &Leaderboard{skipList: spatial.NewSkipList(1)}
}

// Submit records score for playerID if it beats their previous best.
// It returns true when the board changed.
func (lb *Leaderboard) Submit(playerID string, score int) bool {
	if playerID == "" {
		return false
	}
	if best, ok := lb.skipList.Score(playerID); ok && float64(score) <= best {
		return false
	}
	lb.skipList.Insert(playerID, float64(score))
	return true
}

// Remove drops playerID from the board.
func (lb *Leaderboard) Remove(playerID string) {
	lb.skipList.Remove(playerID)
}

// Rank returns a player's 1-based rank, or 0 if unranked.
func (lb *Leaderboard) Rank(playerID string) int {
	return lb.skipList.Rank(playerID)
}

// Best returns a player's best score.
func (lb *Leaderboard) Best(playerID string) (int, bool) {
	s, ok := lb.skipList.Score(playerID)
	return int(s), ok
}

// Top returns the n highest-ranked players.
func (lb *Leaderboard) Top(n int) []LeaderboardEntry {
	return lb.Range(1, n)
}

// Around returns up to above players ranked higher than playerID, the
// player, and up to below players ranked lower.
func (lb *Leaderboard) Around(playerID string, above, below int) []LeaderboardEntry {
	rank := lb.skipList.Rank(playerID)
	if rank == 0 {
		return nil
	}
	return lb.Range(max(1, rank-above), rank+below)
}

// Range returns players ranked in [start, end], inclusive.
func (lb *Leaderboard) Range(start, end int) []LeaderboardEntry {
	start = max(1, start)
	entries := lb.skipList.Range(start, end)
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntry{PlayerID: e.Key, Score: int(e.Score), Rank: start + i}
	}
	return out
}

// Len returns the number of ranked players.
func (lb *Leaderboard) Len() int {
	return lb.skipList.Len()
}
