package utils

import (
	"fmt"
	"hash/fnv"
	"time"
)

func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// TraceKey derives a stable hex key for one firing of one recurring
// entity at one due instant. The same (entity, instant) pair always
// yields the same key, so a replayed window reproduces it.
func TraceKey(entityID string, at time.Time) string {
	return fmt.Sprintf("%016x", HashStringToUint64(fmt.Sprintf("%s:%d", entityID, at.Unix())))
}
