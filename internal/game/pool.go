package game

// Handle addresses a pool slot. The generation changes every time the slot
// is released, so a handle kept past its entity's lifetime never resolves
// to whatever reuses the slot.
type Handle struct {
	Index uint32
	Gen   uint32
}

// NoHandle is the zero handle. Generations start at 1 so it never resolves.
var NoHandle = Handle{}

type slot[T any] struct {
	gen    uint32
	active bool
	value  T
}

// Pool is a fixed-capacity slab of reusable records. It never grows:
// exhaustion is reported to the caller, who skips the spawn.
type Pool[T any] struct {
	slots     []slot[T]
	active    int
	exhausted uint64
}

// NewPool preallocates capacity slots.
func NewPool[T any](capacity int) *Pool[T] {
	if capacity < 0 {
		capacity = 0
	}
	p := &Pool[T]{slots: make([]slot[T], capacity)}
	for i := range p.slots {
		p.slots[i].gen = 1
	}
	return p
}

// Acquire claims the first inactive slot (linear scan). The returned record
// is zeroed. ok is false when every slot is in use.
func (p *Pool[T]) Acquire() (Handle, *T, bool) {
	for i := range p.slots {
		s := &p.slots[i]
		if s.active {
			continue
		}
		s.active = true
		p.active++
		return Handle{Index: uint32(i), Gen: s.gen}, &s.value, true
	}
	p.exhausted++
	return NoHandle, nil, false
}

// Release zeroes the record and returns the slot to the pool.
// Stale or foreign handles are ignored and report false.
func (p *Pool[T]) Release(h Handle) bool {
	if int(h.Index) >= len(p.slots) {
		return false
	}
	s := &p.slots[h.Index]
	if !s.active || s.gen != h.Gen {
		return false
	}
	var zero T
	s.value = zero
	s.active = false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	p.active--
	return true
}

// Get resolves a handle to its live record.
func (p *Pool[T]) Get(h Handle) (*T, bool) {
	if int(h.Index) >= len(p.slots) {
		return nil, false
	}
	s := &p.slots[h.Index]
	if !s.active || s.gen != h.Gen {
		return nil, false
	}
	return &s.value, true
}

// At returns the live record in slot i together with its current handle.
func (p *Pool[T]) At(i int) (Handle, *T, bool) {
	if i < 0 || i >= len(p.slots) || !p.slots[i].active {
		return NoHandle, nil, false
	}
	s := &p.slots[i]
	return Handle{Index: uint32(i), Gen: s.gen}, &s.value, true
}

// Each visits active slots in index order until fn returns false.
// Releasing the visited entity from inside fn is allowed.
func (p *Pool[T]) Each(fn func(h Handle, v *T) bool) {
	for i := range p.slots {
		s := &p.slots[i]
		if !s.active {
			continue
		}
		if !fn(Handle{Index: uint32(i), Gen: s.gen}, &s.value) {
			return
		}
	}
}

// ReleaseAll returns every slot to the pool.
func (p *Pool[T]) ReleaseAll() {
	p.Each(func(h Handle, _ *T) bool {
		p.Release(h)
		return true
	})
}

// Active returns the number of live records.
func (p *Pool[T]) Active() int { return p.active }

// Cap returns the fixed capacity.
func (p *Pool[T]) Cap() int { return len(p.slots) }

// Exhausted returns how many acquisitions failed for lack of a slot.
func (p *Pool[T]) Exhausted() uint64 { return p.exhausted }
