// Package dedupe tracks result uploads already ingested so a repeated upload
// of the same file for the same race is not stored twice.
package dedupe

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
)

// DefaultMaxSize bounds the fingerprints kept in memory.
const DefaultMaxSize = 1024

// Deduper records upload fingerprints.
type Deduper interface {
	// SeenAndRecord reports whether fp was already recorded and records it
	// if it was not. The check and the record happen atomically.
	SeenAndRecord(ctx context.Context, fp string) bool

	// Unrecord forgets fp so the same upload can be retried after a failed
	// ingestion.
	Unrecord(ctx context.Context, fp string)

	Size() int64
}

// Fingerprint identifies an upload by race name and file content. The race
// name is compared without surrounding space and case.
func Fingerprint(raceName string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(raceName))))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// inMemoryDeduper keeps fingerprints in insertion order and evicts the oldest
// once maxSize is reached. maxSize <= 0 means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates a deduper configured by opts.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: DefaultMaxSize,
		seen:    make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, fp string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[fp]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		if oldest := d.order.Back(); oldest != nil {
			delete(d.seen, oldest.Value.(string))
			d.order.Remove(oldest)
		}
	}
	d.seen[fp] = d.order.PushFront(fp)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, fp string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.seen[fp]; ok {
		d.order.Remove(e)
		delete(d.seen, fp)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
