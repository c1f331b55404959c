package kv

import (
	"encoding/json"
	"fmt"
	"sync"

	"studytrack/internal/platform/id"
)

// Cache is the on-device key/value store. Load reports false for absent or
// undecodable entries; it never fails the caller.
type Cache interface {
	Load(key string, dst any) bool
	Save(key string, value any) error
	Remove(key string) error
}

const OwnerKey = "local_user_id"

// OwnerID returns the persisted local owner identity, creating it on first use.
func OwnerID(cache Cache, ids id.Generator) (string, error) {
	var owner string
	if cache.Load(OwnerKey, &owner) && owner != "" {
		return owner, nil
	}
	owner = ids.New()
	if err := cache.Save(OwnerKey, owner); err != nil {
		return "", fmt.Errorf("persist owner id: %w", err)
	}
	return owner, nil
}

type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string][]byte{}}
}

func (c *MemoryCache) Load(key string, dst any) bool {
	c.mu.RLock()
	raw, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *MemoryCache) Save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	c.mu.Lock()
	c.entries[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Remove(key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
