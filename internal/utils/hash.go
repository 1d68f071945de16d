package utils

import (
	"fmt"
	"hash/fnv"
)

func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// ShortHash renders HashStringToUint64 as a fixed-width hex string, suitable for object keys.
func ShortHash(s string) string {
	return fmt.Sprintf("%016x", HashStringToUint64(s))
}
