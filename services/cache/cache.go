package cache

import (
	"time"
)

// CacheService holds the short lived crawler state: rate-limit blocks per
// source and the links that were already reported
type CacheService interface {
	// Get returns the value of key, or an error when it is missing or expired
	Get(key string) ([]byte, error)

	// Set stores value under key for expiration, zero keeps it until evicted
	Set(key string, value []byte, expiration time.Duration) error

	// Delete forgets key
	Delete(key string) error
}

// Pinger is implemented by caches that can check their backend
type Pinger interface {
	Ping() error
}

// Reachable returns c when its backend answers, nil and the ping error
// otherwise. A cache without a backend to check is always reachable.
func Reachable(c CacheService) (CacheService, error) {
	if p, ok := c.(Pinger); ok {
		if err := p.Ping(); err != nil {
			return nil, err
		}
	}
	return c, nil
}
