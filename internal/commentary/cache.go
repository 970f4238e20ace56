// Package commentary caches generated trade commentary. Entries are keyed
// by everything that could change the text: rule version, scoring config
// hash and the canonical trade signature. Any of the three changing is a
// cache miss, never a stale hit.
package commentary

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Key identifies one commentary entry. All three fields are required.
type Key struct {
	RuleVersion       string
	ScoringConfigHash string
	TradeSignature    string
}

// String flattens the key for storage backends.
func (k Key) String() string {
	return k.RuleVersion + "|" + k.ScoringConfigHash + "|" + k.TradeSignature
}

// Entry is a cached commentary payload.
type Entry struct {
	Verdict     string    `json:"verdict"`
	Bullets     []string  `json:"bullets"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Cache is the commentary store. Get returns ok=false on a miss; a miss is
// not an error.
type Cache interface {
	Get(ctx context.Context, key Key) (Entry, bool, error)
	Set(ctx context.Context, key Key, entry Entry) error
	Clear(ctx context.Context) error
}

// MemoryCache is the in-process store used by the CLI and as a fallback
// when no Redis address is configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, key Key) (Entry, bool, error) {
	c.mu.RLock()
	raw, ok := c.entries[key.String()]
	c.mu.RUnlock()
	if !ok {
		return Entry{}, false, nil
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key Key, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key.String()] = raw
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Clear(context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string][]byte)
	c.mu.Unlock()
	return nil
}
