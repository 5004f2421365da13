// Package parsecache remembers parsed résumés so repeated submissions of the
// same text skip the tagger.
package parsecache

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"

	"github.com/okian/eventmatch/internal/domain/model"
)

const defaultMaxSize = 1000

// Cache stores parse results keyed by résumé text.
type Cache interface {
	// Get returns the cached result for text, if any.
	Get(ctx context.Context, text string) (model.ParsedResume, bool)

	// Put records the result for text, evicting the oldest entry when full.
	Put(ctx context.Context, text string, r model.ParsedResume)

	Size() int64
}

type entry struct {
	key    string
	parsed model.ParsedResume
}

// InMemoryCache implements Cache with a map and an insertion-ordered list.
type InMemoryCache struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // front is newest
	maxSize int
	size    atomic.Int64
}

var _ Cache = (*InMemoryCache)(nil)

// NewInMemoryCache creates a cache with configuration options.
func NewInMemoryCache(opts ...Option) *InMemoryCache {
	c := &InMemoryCache{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(c)
	}
	c.items = make(map[string]*list.Element)
	c.order = list.New()
	return c
}

// Key returns the cache key for a résumé text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Get implements Cache.Get. The returned value is a copy.
func (c *InMemoryCache) Get(_ context.Context, text string) (model.ParsedResume, bool) {
	key := Key(text)
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return model.ParsedResume{}, false
	}
	return clone(el.Value.(*entry).parsed), true
}

// Put implements Cache.Put.
func (c *InMemoryCache) Put(_ context.Context, text string, r model.ParsedResume) {
	key := Key(text)
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).parsed = clone(r)
		return
	}
	if c.maxSize > 0 && len(c.items) >= c.maxSize {
		c.evictOldest()
	}
	c.items[key] = c.order.PushFront(&entry{key: key, parsed: clone(r)})
	c.size.Add(1)
}

// evictOldest must be called with c.mu held.
func (c *InMemoryCache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry).key)
	c.size.Add(-1)
}

// Size returns the number of cached résumés.
func (c *InMemoryCache) Size() int64 {
	return c.size.Load()
}

func clone(r model.ParsedResume) model.ParsedResume {
	out := model.ParsedResume{
		Skills:     append([]string{}, r.Skills...),
		Experience: r.Experience,
		Education:  append([]string{}, r.Education...),
	}
	if r.SkillCategories != nil {
		out.SkillCategories = make(map[string][]string, len(r.SkillCategories))
		for k, v := range r.SkillCategories {
			out.SkillCategories[k] = append([]string{}, v...)
		}
	}
	return out
}
