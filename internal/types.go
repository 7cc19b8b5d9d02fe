package internal

import (
	"sjsage522/listingwatch/services/cache"
	"sjsage522/listingwatch/services/metrics"
	"sjsage522/listingwatch/services/publisher"
	"sjsage522/listingwatch/services/report"
)

// Dependencies holds the optional services of a watch run. A nil field
// disables the service.
type Dependencies struct {
	Seen      *cache.SeenStore
	Publisher publisher.Publisher
	Reporter  report.Reporter
	Metrics   *metrics.Metrics
}
