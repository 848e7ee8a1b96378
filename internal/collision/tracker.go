// Package collision tracks fingerprint-to-key assignments and counts distinct
// keys that share a fingerprint.
package collision

// Tracker maps 64-bit fingerprints to the distinct keys seen under them.
type Tracker struct {
	keys       map[uint64][]string
	count      int
	collisions int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{keys: make(map[uint64][]string)}
}

// Track records key under hash and reports whether the key was new.
// A new key arriving under an already used hash counts as a collision.
func (t *Tracker) Track(key string, hash uint64) bool {
	existing, ok := t.keys[hash]
	for _, k := range existing {
		if k == key {
			return false
		}
	}
	if ok {
		t.collisions++
	}
	t.keys[hash] = append(existing, key)
	t.count++

	return true
}

// HasCollision reports whether two distinct keys shared a fingerprint.
func (t *Tracker) HasCollision() bool {
	return t.collisions > 0
}

// Collisions returns the number of keys that landed on an occupied fingerprint.
func (t *Tracker) Collisions() int {
	return t.collisions
}

// Count returns the number of distinct keys tracked.
func (t *Tracker) Count() int {
	return t.count
}
