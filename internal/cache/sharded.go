package cache

const (
	// DefaultShardCount is the number of shards. Must be a power of two.
	DefaultShardCount = 16

	// DefaultCapacity is the default per-shard soft limit.
	DefaultCapacity = 256

	shardMask = DefaultShardCount - 1
)

// Hasher computes the hash used for shard selection.
type Hasher[K any] func(K) uint64

// ShardedCache spreads entries over DefaultShardCount independent Cache
// shards to reduce lock contention between concurrent builds.
type ShardedCache[K comparable, V any] struct {
	shards   [DefaultShardCount]*Cache[K, V]
	hasher   Hasher[K]
	capacity int
}

// NewSharded creates a sharded cache with the given per-shard soft limit.
// A capacity <= 0 selects DefaultCapacity.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *ShardedCache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &ShardedCache[K, V]{hasher: hasher, capacity: capacity}
	for i := range c.shards {
		c.shards[i] = New[K, V](capacity)
	}
	return c
}

func (c *ShardedCache[K, V]) shard(key K) *Cache[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

// Get returns the cached value for key.
func (c *ShardedCache[K, V]) Get(key K) (V, bool) { return c.shard(key).Get(key) }

// Set stores value under key.
func (c *ShardedCache[K, V]) Set(key K, value V) { c.shard(key).Set(key, value) }

// GetOrCreate returns the cached value or stores the result of create.
// Only the key's shard is locked while create runs.
func (c *ShardedCache[K, V]) GetOrCreate(key K, create func() V) V {
	return c.shard(key).GetOrCreate(key, create)
}

// Delete removes key and reports whether it was present.
func (c *ShardedCache[K, V]) Delete(key K) bool { return c.shard(key).Delete(key) }

// Clear drops every entry in every shard.
func (c *ShardedCache[K, V]) Clear() {
	for _, s := range c.shards {
		s.Clear()
	}
}

// Len returns the total number of entries.
func (c *ShardedCache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

// Capacity returns the per-shard soft limit.
func (c *ShardedCache[K, V]) Capacity() int { return c.capacity }

// Stats aggregates the statistics of all shards.
func (c *ShardedCache[K, V]) Stats() Stats {
	st := Stats{Capacity: c.capacity, TotalCapacity: c.capacity * DefaultShardCount}
	for _, s := range c.shards {
		ss := s.Stats()
		st.Len += ss.Len
		st.Hits += ss.Hits
		st.Misses += ss.Misses
		st.Evictions += ss.Evictions
	}
	st.HitRate = hitRate(st.Hits, st.Misses)
	return st
}
