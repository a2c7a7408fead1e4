package persist

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
	"github.com/hungerium/hungeriumm-sub001/internal/game"
)

// Saver writes profiles in the background so simulation ticks never wait
// on storage. It implements game.ProfileSink; when the queue is full the
// save is dropped and counted.
type Saver struct {
	store   Store
	queue   chan game.Profile
	timeout time.Duration
	log     *zap.Logger
	flushMu sync.Mutex

	saved   atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

// NewSaver creates a saver. Call Run to start writing.
func NewSaver(store Store, cfg config.StorageConfig, log *zap.Logger) *Saver {
	size := cfg.SaveQueue
	if size <= 0 {
		size = 128
	}
	timeout := cfg.SaveTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Saver{
		store:   store,
		queue:   make(chan game.Profile, size),
		timeout: timeout,
		log:     log,
	}
}

// SaveProfile queues p without blocking.
func (s *Saver) SaveProfile(p game.Profile) {
	select {
	case s.queue <- p:
	default:
		s.dropped.Add(1)
		s.log.Warn("profile save dropped, queue full", zap.String("player", p.PlayerID))
	}
}

// Run writes queued profiles until ctx is cancelled, then drains what is
// left before returning.
func (s *Saver) Run(ctx context.Context) error {
	for {
		select {
		case p := <-s.queue:
			s.write(ctx, p)
		case <-ctx.Done():
			s.drain()
			return nil
		}
	}
}

func (s *Saver) drain() { s.Flush(context.Background()) }

// Flush writes everything queued so far on the caller's goroutine, in
// queue order. Flushes are serialised; do not mix Flush with a running Run.
func (s *Saver) Flush(ctx context.Context) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	for {
		select {
		case p := <-s.queue:
			s.write(ctx, p)
		default:
			return
		}
	}
}

func (s *Saver) write(parent context.Context, p game.Profile) {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()
	if err := s.store.Save(ctx, p); err != nil {
		s.failed.Add(1)
		s.log.Error("profile save failed", zap.String("player", p.PlayerID), zap.Error(err))
		return
	}
	s.saved.Add(1)
}

// SaverStats counts saver outcomes.
type SaverStats struct {
	Saved   uint64 `json:"saved"`
	Failed  uint64 `json:"failed"`
	Dropped uint64 `json:"dropped"`
	Pending int    `json:"pending"`
}

func (s *Saver) Stats() SaverStats {
	return SaverStats{
		Saved:   s.saved.Load(),
		Failed:  s.failed.Load(),
		Dropped: s.dropped.Load(),
		Pending: len(s.queue),
	}
}
