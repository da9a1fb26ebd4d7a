// Package cache stores encoded analysis results keyed by project and mode.
//
// Two backends implement Store: MemoryStore, an in-process TTL map with a
// janitor goroutine, and RedisStore, which shares results across server
// replicas. New picks one from config.CacheConfig.
package cache
