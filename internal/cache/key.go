package cache

import (
	"hash/fnv"
	"io"
)

// ContentKey identifies a byte blob (font file, asset) by its FNV-1a hash
// and length. Two blobs with equal keys are treated as identical.
type ContentKey struct {
	Hash uint64
	Size int
}

// KeyOf computes the content key of data.
func KeyOf(data []byte) ContentKey {
	h := fnv.New64a()
	_, _ = h.Write(data) // never fails
	return ContentKey{Hash: h.Sum64(), Size: len(data)}
}

// ContentKeyHasher is the shard selector for ContentKey keys.
func ContentKeyHasher(k ContentKey) uint64 {
	return k.Hash ^ uint64(k.Size)*0x9E3779B97F4A7C15
}

// StringHasher computes the FNV-1a hash of s.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = io.WriteString(h, s)
	return h.Sum64()
}
