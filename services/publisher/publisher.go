package publisher

import (
	"encoding/json"
	"time"

	"sjsage522/listingwatch/internal/listing"
	"sjsage522/listingwatch/pkg/errors"
)

// Publisher represents a service for publishing messages
type Publisher interface {
	// Publish publishes a message to a stream
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}

// Message is the payload published for every matching record
type Message struct {
	Source    string         `json:"source"`
	Provider  string         `json:"provider"`
	Record    listing.Record `json:"record"`
	MatchedAt time.Time      `json:"matched_at"`
}

// PublishRecords publishes each record as JSON under the source key. It
// stops at the first failure and returns how many records were published.
func PublishRecords(p Publisher, source, provider string, records []listing.Record) (int, error) {
	now := time.Now().UTC()
	for i, record := range records {
		payload, err := json.Marshal(Message{
			Source:    source,
			Provider:  provider,
			Record:    record,
			MatchedAt: now,
		})
		if err != nil {
			return i, errors.NewPublisher(source, "failed to encode record", err)
		}

		if err := p.Publish(source, payload); err != nil {
			return i, errors.NewPublisher(source, "failed to publish record", err)
		}
	}
	return len(records), nil
}
