package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"time"

	"sjsage522/listingwatch/internal/listing"
	"sjsage522/listingwatch/logger"
	"sjsage522/listingwatch/pkg/errors"
)

const seenKeyPrefix = "seen:"

// SeenStore remembers which record links were already reported
type SeenStore struct {
	cache CacheService
	ttl   time.Duration
}

// NewSeenStore creates a store keeping links for ttl
func NewSeenStore(cache CacheService, ttl time.Duration) *SeenStore {
	return &SeenStore{cache: cache, ttl: ttl}
}

// key hashes the link, memcache keys can not hold spaces or exceed 250 bytes
func (s *SeenStore) key(link string) string {
	sum := sha1.Sum([]byte(link))
	return seenKeyPrefix + hex.EncodeToString(sum[:])
}

// Seen reports whether the link was marked during the last ttl. A cache
// failure counts as unseen.
func (s *SeenStore) Seen(link string) bool {
	_, err := s.cache.Get(s.key(link))
	return err == nil
}

// MarkSeen remembers the link
func (s *SeenStore) MarkSeen(link string) error {
	if err := s.cache.Set(s.key(link), []byte("1"), s.ttl); err != nil {
		return errors.NewCache("seen", "failed to mark "+link, err)
	}
	return nil
}

// Unseen returns the records not reported before, in input order. A link
// repeated within records is returned once. Nothing is marked, callers mark
// the records with MarkAll once they are delivered.
func (s *SeenStore) Unseen(records []listing.Record) []listing.Record {
	result := make([]listing.Record, 0, len(records))
	batch := make(map[string]struct{}, len(records))
	for _, record := range records {
		link := record.Link()
		if _, ok := batch[link]; ok {
			continue
		}
		batch[link] = struct{}{}
		if s.Seen(link) {
			continue
		}
		result = append(result, record)
	}
	return result
}

// MarkAll remembers the links of records. A link that can not be stored is
// logged and reported again on the next run.
func (s *SeenStore) MarkAll(records []listing.Record) {
	for _, record := range records {
		if err := s.MarkSeen(record.Link()); err != nil {
			logger.ForCache().Warn().Err(err).Msg("Failed to remember record")
		}
	}
}
