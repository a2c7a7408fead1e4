package game

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	EventBufferSize       = 1024
	MaxEventsPerSec       = 5000 // Global rate limit
	MaxEventsPerSession   = 60   // Per-session rate limit per second
	BatchFlushSize        = 64
	BatchFlushInterval    = 100 * time.Millisecond
	SessionLimiterCleanup = 5 * time.Minute
)

// EventLog is a bounded, rate-limited JSONL event sink shared by every
// session. Emit never blocks: under pressure the oldest pending events are
// overwritten and counted as dropped.
type EventLog struct {
	mu      sync.Mutex
	buffer  [EventBufferSize]Event
	head    uint64 // next write
	tail    uint64 // next read
	nextSeq uint64

	globalLimiter   *rate.Limiter
	sessionLimiters sync.Map // map[string]*sessionLimiterEntry

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	file *os.File
	w    *bufio.Writer
	log  *zap.Logger

	droppedCount atomic.Uint64
	totalCount   atomic.Uint64
}

type sessionLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed atomic.Int64
}

// NewEventLog creates an event log. Call Start to begin writing.
func NewEventLog(log *zap.Logger) *EventLog {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventLog{
		globalLimiter: rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		stopChan:      make(chan struct{}),
		log:           log,
	}
}

// Start opens path for append and starts the writer. An empty path keeps
// events in memory only (useful for tests and metrics).
func (el *EventLog) Start(path string) error {
	if el.running.Load() {
		return nil
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open event log %s: %w", path, err)
		}
		el.file = f
		el.w = bufio.NewWriter(f)
	}

	el.running.Store(true)
	el.writerWg.Add(2)
	go el.writerLoop()
	go el.cleanupLoop()
	return nil
}

// Stop flushes pending events and closes the file.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		if !el.running.Load() {
			return
		}
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()
		if el.file != nil {
			if err := el.w.Flush(); err != nil {
				el.log.Warn("event log flush failed", zap.Error(err))
			}
			el.file.Close()
		}
	})
}

// Emit queues an event. It returns false when rate limited or stopped.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}
	if !el.globalLimiter.Allow() {
		el.droppedCount.Add(1)
		return false
	}
	if event.SessionID != "" && !el.sessionLimiter(event.SessionID).Allow() {
		el.droppedCount.Add(1)
		return false
	}

	el.mu.Lock()
	if el.head-el.tail >= EventBufferSize {
		el.tail++
		el.droppedCount.Add(1)
	}
	el.nextSeq++
	event.Sequence = el.nextSeq
	el.buffer[el.head%EventBufferSize] = event
	el.head++
	el.mu.Unlock()

	el.totalCount.Add(1)
	return true
}

func (el *EventLog) sessionLimiter(id string) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := el.sessionLimiters.Load(id); ok {
		e := v.(*sessionLimiterEntry)
		e.lastUsed.Store(now)
		return e.limiter
	}
	entry := &sessionLimiterEntry{limiter: rate.NewLimiter(MaxEventsPerSession, MaxEventsPerSession)}
	entry.lastUsed.Store(now)
	actual, _ := el.sessionLimiters.LoadOrStore(id, entry)
	return actual.(*sessionLimiterEntry).limiter
}

// Forget drops the limiter of a closed session.
func (el *EventLog) Forget(sessionID string) {
	el.sessionLimiters.Delete(sessionID)
}

func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()
	batch := make([]Event, 0, BatchFlushSize)

	for {
		select {
		case <-el.stopChan:
			for {
				batch = el.collectBatch(batch[:0])
				if len(batch) == 0 {
					return
				}
				el.flushBatch(batch)
			}
		case <-ticker.C:
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
		}
	}
}

func (el *EventLog) cleanupLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(SessionLimiterCleanup)
	defer ticker.Stop()
	for {
		select {
		case <-el.stopChan:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-SessionLimiterCleanup).UnixNano()
			el.sessionLimiters.Range(func(key, value interface{}) bool {
				if value.(*sessionLimiterEntry).lastUsed.Load() < cutoff {
					el.sessionLimiters.Delete(key)
				}
				return true
			})
		}
	}
}

func (el *EventLog) collectBatch(batch []Event) []Event {
	el.mu.Lock()
	defer el.mu.Unlock()
	for el.tail < el.head && len(batch) < BatchFlushSize {
		batch = append(batch, el.buffer[el.tail%EventBufferSize])
		el.tail++
	}
	return batch
}

// flushBatch writes events as newline-delimited JSON.
func (el *EventLog) flushBatch(batch []Event) {
	if el.w == nil {
		return
	}
	enc := json.NewEncoder(el.w)
	for i := range batch {
		if err := enc.Encode(&batch[i]); err != nil {
			el.log.Warn("event encode failed", zap.Error(err), zap.Stringer("type", batch[i].Type))
		}
	}
	if err := el.w.Flush(); err != nil {
		el.log.Warn("event log write failed", zap.Error(err))
	}
}

// EventLogStats is a point-in-time view for monitoring.
type EventLogStats struct {
	Total   uint64 `json:"total"`
	Dropped uint64 `json:"dropped"`
	Pending uint64 `json:"pending"`
	Running bool   `json:"running"`
}

// Stats returns counters for monitoring.
func (el *EventLog) Stats() EventLogStats {
	el.mu.Lock()
	pending := el.head - el.tail
	el.mu.Unlock()
	return EventLogStats{
		Total:   el.totalCount.Load(),
		Dropped: el.droppedCount.Load(),
		Pending: pending,
		Running: el.running.Load(),
	}
}
