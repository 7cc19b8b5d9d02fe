package crawler

import "sjsage522/listingwatch/internal/listing"

// Crawler interface defines the contract for all crawler implementations
type Crawler interface {
	// FetchRecords walks every page of a source and returns its records in
	// page order
	FetchRecords() ([]listing.Record, error)

	// GetName returns the crawler's name for logging and identification
	GetName() string

	// GetProvider returns the provider name for the crawler
	GetProvider() string
}

// Recorder receives crawl progress. Implemented by the metrics service.
type Recorder interface {
	PageFetched(source string, err error)
	EntryNormalized(source string, err error)
}

type nopRecorder struct{}

func (nopRecorder) PageFetched(string, error)     {}
func (nopRecorder) EntryNormalized(string, error) {}
