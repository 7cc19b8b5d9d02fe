// Package report renders matching records as plain text, RSS or email.
package report

import (
	"sjsage522/listingwatch/internal/listing"
)

// Reporter delivers the matching records of one source
type Reporter interface {
	Report(source string, records []listing.Record) error
}

// Format selects how records are laid out
type Format int

const (
	// Products lays records out as shop listings
	Products Format = iota
	// Reviews lays records out as translation templates waiting for review
	Reviews
)

// String returns the format name
func (f Format) String() string {
	switch f {
	case Reviews:
		return "reviews"
	default:
		return "products"
	}
}

// Text renders records in the format
func (f Format) Text(records []listing.Record) string {
	if f == Reviews {
		return ReviewsText(records)
	}
	return ProductsText(records)
}

// Multi fans a report out to several reporters, stopping at the first error
type Multi []Reporter

// Report calls every reporter in order
func (m Multi) Report(source string, records []listing.Record) error {
	for _, r := range m {
		if err := r.Report(source, records); err != nil {
			return err
		}
	}
	return nil
}
