package kv

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileCache keeps one JSON document per key under dir.
type FileCache struct {
	dir string
	mu  sync.Mutex
}

func NewFileCache(dataDir string) *FileCache {
	return &FileCache{dir: filepath.Join(dataDir, "cache")}
}

func (c *FileCache) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(c.dir, safe+".json")
}

func (c *FileCache) Load(key string, dst any) bool {
	c.mu.Lock()
	payload, err := os.ReadFile(c.path(key))
	c.mu.Unlock()
	if err != nil {
		return false
	}
	return json.Unmarshal(payload, dst) == nil
}

func (c *FileCache) Save(key string, value any) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	target := c.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

func (c *FileCache) Remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(c.path(key)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
