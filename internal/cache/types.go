package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")
)

// Entry is a cached synthesis result.
type Entry struct {
	Audio    []byte
	MIMEType string
}

// size is the number of bytes an entry is charged for.
func (e Entry) size() int64 {
	return int64(len(e.Audio) + len(e.MIMEType))
}

// CacheStats holds cache performance metrics
type CacheStats struct {
	// Configuration
	Capacity int64 `json:"capacity"` // Maximum capacity in bytes

	// Current state
	Size      int64 `json:"size"`      // Current size in bytes
	ItemCount int64 `json:"itemCount"` // Number of items in cache

	// Performance metrics
	Hits      int64   `json:"hits"`      // Number of cache hits
	Misses    int64   `json:"misses"`    // Number of cache misses
	Evictions int64   `json:"evictions"` // Number of evictions
	HitRate   float64 `json:"hitRate"`   // Calculated hit rate (hits / (hits + misses))

	// Timing
	LastAccess time.Time `json:"lastAccess"` // Last access time
	LastEvict  time.Time `json:"lastEvict"`  // Last eviction time
}

// GenerateCacheKey generates a cache key from the request and engine settings.
func GenerateCacheKey(text, voice, model, format string) string {
	data := fmt.Sprintf("%s|%s|%s|%s", text, voice, model, format)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16]) // Use first 16 bytes for shorter keys
}
