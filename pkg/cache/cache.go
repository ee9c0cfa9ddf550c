// Package cache provides the in-process TTL cache used for read-only
// exchange data such as the open-markets listing. Execution paths never
// read through it; only browse endpoints do.
package cache

import "time"

// Cache is a TTL key-value cache.
type Cache interface {
	// Get returns (value, true) when the key is present and unexpired.
	Get(key string) (interface{}, bool)

	// Set stores a value with a TTL. Returns false when the entry was
	// dropped by admission policy.
	Set(key string, value interface{}, ttl time.Duration) bool

	// Delete removes a key.
	Delete(key string)

	// Close releases cache resources.
	Close()
}
