package dispatch

import (
	"sync"
	"time"
)

// Ledger is the notification record set: key → last-notified time. It is
// the only mutable state shared across tick steps, so all access goes
// through one mutex. Bounded: records expire after the retention window
// (zero retention means never) and the set holds at most capacity entries,
// evicting oldest-first.
type Ledger struct {
	mu        sync.Mutex
	retention time.Duration
	capacity  int
	records   map[string]time.Time
	order     []string
}

const defaultLedgerCapacity = 1024

func NewLedger(retention time.Duration, capacity int) *Ledger {
	if capacity <= 0 {
		capacity = defaultLedgerCapacity
	}
	return &Ledger{
		retention: retention,
		capacity:  capacity,
		records:   make(map[string]time.Time),
	}
}

// AlreadyNotified reports whether an unexpired record exists for key.
func (l *Ledger) AlreadyNotified(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(now)
	_, ok := l.records[key]
	return ok
}

// Mark records a successful notification for key.
func (l *Ledger) Mark(key string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(now)
	if _, ok := l.records[key]; !ok {
		l.order = append(l.order, key)
	}
	l.records[key] = now
	for len(l.records) > l.capacity {
		l.evictOldestLocked()
	}
}

// Len reports the current record count, pruning expired entries first.
func (l *Ledger) Len(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(now)
	return len(l.records)
}

func (l *Ledger) pruneLocked(now time.Time) {
	if l.retention <= 0 {
		return
	}
	kept := l.order[:0]
	for _, key := range l.order {
		at, ok := l.records[key]
		if !ok {
			continue
		}
		if now.Sub(at) >= l.retention {
			delete(l.records, key)
			continue
		}
		kept = append(kept, key)
	}
	l.order = kept
}

func (l *Ledger) evictOldestLocked() {
	for len(l.order) > 0 {
		key := l.order[0]
		l.order = l.order[1:]
		if _, ok := l.records[key]; ok {
			delete(l.records, key)
			return
		}
	}
}
