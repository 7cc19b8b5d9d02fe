package cache

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// DefaultTimeout bounds every memcache round trip. A slow cache must not
// hold up a crawl.
const DefaultTimeout = 500 * time.Millisecond

// maxRelativeExpiration is the longest expiration memcache reads as a
// duration, larger values are taken as unix timestamps
const maxRelativeExpiration = 30 * 24 * time.Hour

// MemcacheService implements CacheService using memcache
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService creates a memcache service with the default timeout
func NewMemcacheService(serverAddr string) *MemcacheService {
	return NewMemcacheServiceWithTimeout(serverAddr, DefaultTimeout)
}

// NewMemcacheServiceWithTimeout creates a memcache service whose calls give
// up after timeout
func NewMemcacheServiceWithTimeout(serverAddr string, timeout time.Duration) *MemcacheService {
	client := memcache.New(serverAddr)
	client.Timeout = timeout
	return &MemcacheService{client: client}
}

// Get retrieves a value from memcache
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores a value in memcache for expiration
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	return m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: expirationField(expiration, time.Now()),
	})
}

// Delete removes a value from memcache
func (m *MemcacheService) Delete(key string) error {
	return m.client.Delete(key)
}

// Ping checks that every memcache server answers
func (m *MemcacheService) Ping() error {
	return m.client.Ping()
}

// expirationField converts d to the memcache expiration field: seconds up to
// thirty days, an absolute unix time beyond that
func expirationField(d time.Duration, now time.Time) int32 {
	if d <= 0 {
		return 0
	}
	seconds := int32(d.Round(time.Second) / time.Second)
	if seconds == 0 {
		seconds = 1
	}
	if d > maxRelativeExpiration {
		return int32(now.Add(d).Unix())
	}
	return seconds
}
