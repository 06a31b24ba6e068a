package highlight

// DefaultCacheCapacity bounds the number of rendered lines kept per process.
const DefaultCacheCapacity = 512

// Cache is a bounded store of rendered lines. When it overflows its capacity
// it evicts the least-recently-populated half in one sweep, which keeps
// eviction cheap and the working set warm. It is an injectable collaborator,
// not module-level state.
type Cache struct {
	capacity int
	entries  map[string]string
	order    []string // insertion order, oldest first
}

// NewCache creates a cache holding at most capacity entries. A non-positive
// capacity falls back to the default.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]string, capacity),
	}
}

// Get returns the cached value for key.
func (c *Cache) Get(key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Put stores val under key, evicting the oldest half on overflow.
func (c *Cache) Put(key, val string) {
	if _, exists := c.entries[key]; exists {
		c.entries[key] = val
		return
	}
	if len(c.entries) >= c.capacity {
		half := len(c.order) / 2
		for _, k := range c.order[:half] {
			delete(c.entries, k)
		}
		c.order = append([]string(nil), c.order[half:]...)
	}
	c.entries[key] = val
	c.order = append(c.order, key)
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	return len(c.entries)
}
