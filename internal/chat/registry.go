// ABOUTME: In-memory registry of live reasoner sessions keyed by user
// ABOUTME: Per-user mutexes serialize conversation turns; idle TTL plus LRU cap bound growth

package chat

import (
	"container/list"
	"log/slog"
	"sync"
	"time"

	"github.com/Bonte-Project/bonte-server/internal/ai"
)

// entry holds one user's live session state. Its mutex is the per-user
// critical section: every conversation operation for the user runs under it,
// so reasoner turns never interleave.
type entry struct {
	mu       sync.Mutex
	session  ai.Session
	lastUsed time.Time
	elem     *list.Element
}

// Registry tracks live sessions. Sessions are a cache over the durable
// conversation log: evicting one loses no data, the next message rebuilds it
// from history.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   *list.List // user IDs, least recently used at the front
	ttl     time.Duration
	maxSize int
	logger  *slog.Logger
}

// NewRegistry creates a registry evicting sessions idle longer than ttl,
// and trimming from the least recently used end beyond maxSize entries.
func NewRegistry(ttl time.Duration, maxSize int, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[string]*entry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		logger:  logger.With("component", "session-registry"),
	}
}

// lock acquires the per-user critical section, creating the entry if needed.
// The caller must release it with unlock.
func (r *Registry) lock(userID string) *entry {
	for {
		r.mu.Lock()
		e, ok := r.entries[userID]
		if !ok {
			e = &entry{lastUsed: time.Now()}
			e.elem = r.order.PushBack(userID)
			r.entries[userID] = e
		}
		r.mu.Unlock()

		e.mu.Lock()

		// The sweeper may have evicted this entry between the map lookup and
		// acquiring its mutex. Holding a lock on an orphaned entry would let
		// two turns for the same user run concurrently, so verify the entry
		// is still the registered one and retry otherwise.
		r.mu.Lock()
		current := r.entries[userID]
		r.mu.Unlock()
		if current == e {
			return e
		}
		e.mu.Unlock()
	}
}

// unlock releases the per-user critical section and refreshes recency.
func (r *Registry) unlock(userID string, e *entry) {
	r.mu.Lock()
	if r.entries[userID] == e {
		e.lastUsed = time.Now()
		r.order.MoveToBack(e.elem)
	}
	r.mu.Unlock()
	e.mu.Unlock()
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts idle entries past the TTL and trims least recently used
// entries beyond the capacity bound. Entries whose critical section is held
// (a turn in flight) are skipped and picked up by a later sweep. Returns the
// number of entries evicted.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	cutoff := time.Now().Add(-r.ttl)

	var next *list.Element
	for el := r.order.Front(); el != nil; el = next {
		next = el.Next()
		userID := el.Value.(string)
		e := r.entries[userID]
		if !e.lastUsed.Before(cutoff) {
			break // order is LRU-sorted, the rest are fresher
		}
		if !e.mu.TryLock() {
			continue
		}
		r.evictLocked(userID, e)
		e.mu.Unlock()
		evicted++
	}

	for el := r.order.Front(); el != nil && len(r.entries) > r.maxSize; el = next {
		next = el.Next()
		userID := el.Value.(string)
		e := r.entries[userID]
		if !e.mu.TryLock() {
			continue
		}
		r.evictLocked(userID, e)
		e.mu.Unlock()
		evicted++
	}

	if evicted > 0 {
		r.logger.Debug("swept sessions", "evicted", evicted, "remaining", len(r.entries))
	}
	return evicted
}

// evictLocked removes an entry. Caller holds both r.mu and e.mu.
func (r *Registry) evictLocked(userID string, e *entry) {
	r.order.Remove(e.elem)
	delete(r.entries, userID)
	e.session = nil
}
