package store

import (
	"sort"
	"sync"
)

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex hands out one mutex per key, dropping entries nobody holds
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyLock)}
}

// Lock acquires every key in sorted order and returns a func releasing them.
// Acquiring all keys in one call in a fixed order rules out lock-order deadlocks.
func (k *keyedMutex) Lock(keys ...string) func() {
	ordered := uniqueSorted(keys)

	held := make([]*keyLock, 0, len(ordered))
	for _, key := range ordered {
		l := k.acquire(key)
		l.mu.Lock()
		held = append(held, l)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].mu.Unlock()
				k.release(ordered[i])
			}
		})
	}
}

func (k *keyedMutex) acquire(key string) *keyLock {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	return l
}

func (k *keyedMutex) release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.locks[key]
	if !ok {
		return
	}
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}

// size reports how many keys are currently held or awaited
func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func uniqueSorted(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
