package utils

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Hash64 is FNV-1a over s. Stable across processes and releases.
func Hash64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// CacheKey returns "ns1:ns2:...:<hash of payload>" with the hash as 16 hex digits.
func CacheKey(payload string, namespace ...string) string {
	hex := strconv.FormatUint(Hash64(payload), 16)
	hex = strings.Repeat("0", 16-len(hex)) + hex
	return strings.Join(append(namespace, hex), ":")
}

// Pick deterministically chooses an index in [0, n) for key. n must be positive.
func Pick(key string, n int) int {
	return int(Hash64(key) % uint64(n))
}
