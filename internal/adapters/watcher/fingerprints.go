package watcher

import (
	"sync"

	"go.trai.ch/ilview/internal/core/ports"
)

// Fingerprints remembers the content digest of each watched assembly so that
// events which leave the bytes unchanged (touch, metadata edits, duplicate
// notifications) do not trigger a refresh.
type Fingerprints struct {
	hasher ports.Fingerprinter

	mu   sync.Mutex
	last map[string]string
}

// NewFingerprints creates an empty fingerprint cache.
func NewFingerprints(hasher ports.Fingerprinter) *Fingerprints {
	return &Fingerprints{
		hasher: hasher,
		last:   make(map[string]string),
	}
}

// Remember records the current digest of path. An unreadable file is recorded
// with an empty digest.
func (f *Fingerprints) Remember(path string) {
	sum, err := f.hasher.Fingerprint(path)
	if err != nil {
		sum = ""
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.last[path] = sum
}

// Forget drops path from the cache.
func (f *Fingerprints) Forget(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.last, path)
}

// Changed recomputes the digest of path, stores it and reports whether it
// differs from the previous one. A file that disappears counts as changed once.
// Unknown paths are never reported.
func (f *Fingerprints) Changed(path string) bool {
	f.mu.Lock()
	prev, known := f.last[path]
	f.mu.Unlock()
	if !known {
		return false
	}

	sum, err := f.hasher.Fingerprint(path)
	if err != nil {
		sum = ""
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, still := f.last[path]; !still {
		return false
	}
	f.last[path] = sum
	return sum != prev
}

// Filter returns the subset of paths whose content changed, in order.
func (f *Fingerprints) Filter(paths []string) []string {
	var changed []string
	for _, path := range paths {
		if f.Changed(path) {
			changed = append(changed, path)
		}
	}
	return changed
}
