package paywall

import (
	"sort"
	"sync"
)

// lockPlatform is the lock key for the single platform accumulator record.
const lockPlatform = "platform"

func lockSession(id string) string { return "ses/" + id }
func lockVault(id string) string   { return "vlt/" + id }
func lockBinding(id string) string { return "cnt/" + id }
func lockCreator(p string) string  { return "creator/" + p }

// recordLocks serializes engine calls per record. Every call needs
// exclusive access to the records it touches; when no host provides
// that, the engine supplies it here. Keys are locked in sorted order
// so multi-record calls cannot deadlock.
type recordLocks struct {
	mu      sync.Mutex
	records map[string]*sync.Mutex
}

func (l *recordLocks) init() {
	l.records = make(map[string]*sync.Mutex)
}

// acquire locks the given record keys and returns a release function.
func (l *recordLocks) acquire(keys ...string) func() {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	held := make([]*sync.Mutex, 0, len(sorted))
	for _, k := range sorted {
		l.mu.Lock()
		m, ok := l.records[k]
		if !ok {
			m = &sync.Mutex{}
			l.records[k] = m
		}
		l.mu.Unlock()

		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
