package game

import "testing"

// TestLeaderboardKeepsBest verifies only improvements change the board.
func TestLeaderboardKeepsBest(t *testing.T) {
	lb := NewLeaderboard()

	if !lb.Submit("ann", 100) {
		t.Fatal("First submission rejected")
	}
	if lb.Submit("ann", 80) {
		t.Error("Lower score replaced the best")
	}
	if lb.Submit("ann", 100) {
		t.Error("Equal score reported as a change")
	}
	if !lb.Submit("ann", 150) {
		t.Error("Higher score rejected")
	}
	if best, ok := lb.Best("ann"); !ok || best != 150 {
		t.Errorf("Expected best 150, got %d (ok=%v)", best, ok)
	}
	if lb.Submit("", 999) {
		t.Error("Anonymous submission accepted")
	}
	if lb.Len() != 1 {
		t.Errorf("Expected 1 player, got %d", lb.Len())
	}
}

// TestLeaderboardQueries verifies top, around and rank lookups.
func TestLeaderboardQueries(t *testing.T) {
	lb := NewLeaderboard()
	scores := map[string]int{"a": 10, "b": 50, "c": 30, "d": 40, "e": 20}
	for id, s := range scores {
		lb.Submit(id, s)
	}

	top := lb.Top(3)
	want := []string{"b", "d", "c"}
	if len(top) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(top))
	}
	for i, id := range want {
		if top[i].PlayerID != id || top[i].Rank != i+1 {
			t.Errorf("Top[%d]: expected %s at rank %d, got %+v", i, id, i+1, top[i])
		}
	}

	around := lb.Around("c", 1, 1)
	if len(around) != 3 || around[0].PlayerID != "d" || around[2].PlayerID != "e" {
		t.Errorf("Unexpected neighbourhood %+v", around)
	}
	if around[1].Rank != 3 {
		t.Errorf("Expected c at rank 3, got %d", around[1].Rank)
	}

	if got := lb.Around("b", 5, 0); len(got) != 1 || got[0].PlayerID != "b" {
		t.Errorf("Expected only the leader, got %+v", got)
	}
	if lb.Around("nobody", 1, 1) != nil {
		t.Error("Expected nil for an unranked player")
	}

	lb.Remove("b")
	if lb.Rank("d") != 1 {
		t.Errorf("Expected d to lead after removal, got rank %d", lb.Rank("d"))
	}
}
