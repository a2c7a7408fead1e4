package spatial

import (
	"sort"
	"sync"
	"testing"
)

// TestGridQuery verifies candidates come from the cells around the query.
func TestGridQuery(t *testing.T) {
	g := NewGrid(800, 600, 64, 16)
	g.Insert(1, 100, 100)
	g.Insert(2, 120, 110)
	g.Insert(3, 700, 500)
	g.Insert(4, -20, -20) // Off-field clamps to the corner cell

	got := append([]uint32(nil), g.Query(110, 105, 20)...)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected [1 2], got %v", got)
	}

	corner := g.Query(0, 0, 10)
	if len(corner) != 1 || corner[0] != 4 {
		t.Errorf("Expected off-field id 4 in corner cell, got %v", corner)
	}

	g.Reset()
	if g.Len() != 0 {
		t.Errorf("Expected empty grid after reset, got %d", g.Len())
	}
}

// TestQueueFIFO verifies single-producer ordering and capacity.
func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int](3) // Rounds up to 4
	if q.Cap() != 4 {
		t.Fatalf("Expected capacity 4, got %d", q.Cap())
	}
	for i := 0; i < 4; i++ {
		if !q.TryPush(i) {
			t.Fatalf("Push %d failed", i)
		}
	}
	if q.TryPush(99) {
		t.Error("Push succeeded on a full queue")
	}
	for i := 0; i < 4; i++ {
		v, ok := q.TryPop()
		if !ok || v != i {
			t.Errorf("Expected %d, got %d (ok=%v)", i, v, ok)
		}
	}
	if _, ok := q.TryPop(); ok {
		t.Error("Pop succeeded on an empty queue")
	}
	if !q.TryPush(5) {
		t.Error("Push failed after wrap-around")
	}
}

// TestQueueConcurrentProducers verifies no item is lost or duplicated.
func TestQueueConcurrentProducers(t *testing.T) {
	const producers, perProducer = 4, 1000
	q := NewQueue[int](producers * perProducer)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !q.TryPush(base + i) {
				}
			}
		}(p * perProducer)
	}
	wg.Wait()

	seen := make(map[int]bool, producers*perProducer)
	buf := make([]int, 256)
	for {
		n := q.DrainTo(buf)
		if n == 0 {
			break
		}
		for _, v := range buf[:n] {
			if seen[v] {
				t.Fatalf("Duplicate item %d", v)
			}
			seen[v] = true
		}
	}
	if len(seen) != producers*perProducer {
		t.Errorf("Expected %d items, got %d", producers*perProducer, len(seen))
	}
}

// TestSkipListRanking verifies ranks, updates and range queries.
func TestSkipListRanking(t *testing.T) {
	sl := NewSkipList(1)
	sl.Insert("ann", 50)
	sl.Insert("bob", 80)
	sl.Insert("cat", 20)
	sl.Insert("dan", 80) // Tie with bob; keys break ties

	tests := []struct {
		key  string
		rank int
	}{
		{"bob", 1},
		{"dan", 2},
		{"ann", 3},
		{"cat", 4},
		{"eve", 0},
	}
	for _, tt := range tests {
		if got := sl.Rank(tt.key); got != tt.rank {
			t.Errorf("Rank(%s): expected %d, got %d", tt.key, tt.rank, got)
		}
	}

	sl.Insert("cat", 100)
	if got := sl.Rank("cat"); got != 1 {
		t.Errorf("Expected cat to move to rank 1, got %d", got)
	}
	if sl.Len() != 4 {
		t.Errorf("Update changed length to %d", sl.Len())
	}

	r := sl.Range(2, 3)
	if len(r) != 2 || r[0].Key != "bob" || r[1].Key != "dan" {
		t.Errorf("Expected [bob dan], got %v", r)
	}

	if !sl.Remove("bob") || sl.Remove("bob") {
		t.Error("Remove should succeed once")
	}
	if got := sl.Rank("dan"); got != 2 {
		t.Errorf("Expected dan at rank 2 after removal, got %d", got)
	}
}

// TestSkipListLarge verifies rank consistency over many entries.
func TestSkipListLarge(t *testing.T) {
	sl := NewSkipList(7)
	const n = 500
	for i := 0; i < n; i++ {
		sl.Insert(string(rune('a'+i%26))+string(rune('A'+i/26)), float64(i))
	}
	all := sl.Range(1, n)
	if len(all) != n {
		t.Fatalf("Expected %d entries, got %d", n, len(all))
	}
	for i, e := range all {
		if int(e.Score) != n-1-i {
			t.Fatalf("Entry %d has score %v, expected %d", i, e.Score, n-1-i)
		}
		if got := sl.Rank(e.Key); got != i+1 {
			t.Fatalf("Rank(%s)=%d, expected %d", e.Key, got, i+1)
		}
	}
}
