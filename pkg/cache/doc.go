// Package cache provides a bounded, concurrency-safe LRU cache whose entries
// may carry a time to live.
//
// Capacity bounds the number of entries. Once it is reached the least recently
// used entry is evicted on insert. An entry whose TTL has passed is treated as
// absent by Get and is removed lazily, either on access or by Purge.
package cache
