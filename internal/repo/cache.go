package repo

import (
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"basegraph.app/triage/internal/model"
)

type searchKey struct {
	repo    string
	keyword string
}

// searchCache memoises search results per (repo, keyword). Stored slices are
// never handed out directly.
type searchCache interface {
	get(key searchKey) ([]model.RepoMatch, bool)
	put(key searchKey, matches []model.RepoMatch)
}

func newSearchCache(size int) searchCache {
	if size <= 0 {
		return &mapCache{entries: make(map[searchKey][]model.RepoMatch)}
	}
	c, err := lru.New[searchKey, []model.RepoMatch](size)
	if err != nil {
		// only reachable with a non-positive size
		return &mapCache{entries: make(map[searchKey][]model.RepoMatch)}
	}
	return &lruCache{entries: c}
}

type mapCache struct {
	mu      sync.RWMutex
	entries map[searchKey][]model.RepoMatch
}

func (c *mapCache) get(key searchKey) ([]model.RepoMatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	matches, ok := c.entries[key]
	return slices.Clone(matches), ok
}

func (c *mapCache) put(key searchKey, matches []model.RepoMatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = slices.Clone(matches)
}

type lruCache struct {
	entries *lru.Cache[searchKey, []model.RepoMatch]
}

func (c *lruCache) get(key searchKey) ([]model.RepoMatch, bool) {
	matches, ok := c.entries.Get(key)
	return slices.Clone(matches), ok
}

func (c *lruCache) put(key searchKey, matches []model.RepoMatch) {
	c.entries.Add(key, slices.Clone(matches))
}
