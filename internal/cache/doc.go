// Package cache provides the LRU caches shared by atlas builds.
//
// Cache is a mutex-guarded LRU with a soft limit; exceeding the limit drops
// the least recently used quarter. ShardedCache spreads keys over 16 Cache
// shards. Both are keyed generically; ContentKey identifies font and asset
// blobs by hash and length:
//
//	pairs := cache.New[cache.ContentKey, []truetype.PairAdjustment](64)
//	adj := pairs.GetOrCreate(cache.KeyOf(data), func() []truetype.PairAdjustment {
//		return truetype.ExtractHorizontalPairAdjustments(data, 0)
//	})
package cache
