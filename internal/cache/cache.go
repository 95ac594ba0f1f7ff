// Package cache persists each component's path assignment between compiles.
// The dev loop diffs a fresh parse against the stored assignment to produce
// minimal structural changes, so node identity survives edits and restarts.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/minimact/mxc/pkg/assign"
)

// Cache is an on-disk store of per-component path assignments
type Cache struct {
	mu    sync.RWMutex
	dir   string
	index *Index
}

// Index tracks all stored assignments
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry describes one stored assignment
type Entry struct {
	Component string    `json:"component"`
	Hash      string    `json:"hash"`
	Path      string    `json:"path"`
	Updated   time.Time `json:"updated"`
}

// DefaultDir returns the default cache location
func DefaultDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".cache", "mxc")
}

// Open opens (or creates) a cache rooted at dir
func Open(dir string) (*Cache, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	c := &Cache{
		dir: dir,
		index: &Index{
			Version: "1",
			Entries: make(map[string]*Entry),
			Updated: time.Now(),
		},
	}
	if err := c.loadIndex(); err != nil {
		// Corrupt or missing index: start fresh, the worst case is one
		// full re-path per component.
		c.index = &Index{
			Version: "1",
			Entries: make(map[string]*Entry),
			Updated: time.Now(),
		}
	}
	return c, nil
}

// Get loads the stored assignment for a component, or nil when none exists
func (c *Cache) Get(component string) (*assign.Assignment, bool) {
	c.mu.RLock()
	entry, ok := c.index.Entries[component]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		c.Delete(component)
		return nil, false
	}
	var asg assign.Assignment
	if err := json.Unmarshal(data, &asg); err != nil {
		c.Delete(component)
		return nil, false
	}
	return &asg, true
}

// Put stores a component's assignment, replacing any previous one
func (c *Cache) Put(component string, asg *assign.Assignment) error {
	data, err := json.Marshal(asg)
	if err != nil {
		return fmt.Errorf("encode assignment for %s: %w", component, err)
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	c.mu.RLock()
	if existing, ok := c.index.Entries[component]; ok && existing.Hash == hash {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	path := filepath.Join(c.dir, "assignments", sanitizeKey(component)+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create assignments directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write assignment for %s: %w", component, err)
	}

	c.mu.Lock()
	c.index.Entries[component] = &Entry{
		Component: component,
		Hash:      hash,
		Path:      path,
		Updated:   time.Now(),
	}
	c.index.Updated = time.Now()
	c.mu.Unlock()

	return c.saveIndex()
}

// Delete drops one component's stored assignment
func (c *Cache) Delete(component string) {
	c.mu.Lock()
	if entry, ok := c.index.Entries[component]; ok {
		os.Remove(entry.Path)
		delete(c.index.Entries, component)
		c.index.Updated = time.Now()
	}
	c.mu.Unlock()
	c.saveIndex()
}

// Prune removes assignments older than maxAge and returns how many went
func (c *Cache) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	var stale []string
	c.mu.RLock()
	for name, entry := range c.index.Entries {
		if entry.Updated.Before(cutoff) {
			stale = append(stale, name)
		}
	}
	c.mu.RUnlock()
	for _, name := range stale {
		c.Delete(name)
	}
	return len(stale)
}

// Len returns the number of stored assignments
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index.Entries)
}

func (c *Cache) indexPath() string {
	return filepath.Join(c.dir, "index.json")
}

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		return err
	}
	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	if index.Entries == nil {
		index.Entries = make(map[string]*Entry)
	}
	c.mu.Lock()
	c.index = &index
	c.mu.Unlock()
	return nil
}

func (c *Cache) saveIndex() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(c.indexPath(), data, 0644)
}

// sanitizeKey makes a component name safe as a file name
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}
