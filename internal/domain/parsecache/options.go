package parsecache

// Option applies a configuration option to the InMemoryCache.
type Option func(*InMemoryCache)

// WithMaxSize sets the maximum number of résumés kept.
// If maxSize > 0 the oldest entry is evicted first; otherwise the cache is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(c *InMemoryCache) {
		c.maxSize = maxSize
	}
}
