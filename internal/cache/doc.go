// Package cache provides an in-memory LRU cache for synthesized audio.
// Entries are bounded by total byte size and live only as long as the
// process; nothing is written to disk.
package cache
