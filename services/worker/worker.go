package worker

import (
	"context"
	"encoding/json"
	"time"

	"sjsage522/listingwatch/helpers"
	"sjsage522/listingwatch/internal"
	"sjsage522/listingwatch/internal/crawler"
	"sjsage522/listingwatch/internal/filter"
	"sjsage522/listingwatch/internal/listing"
	"sjsage522/listingwatch/pkg/errors"
	"sjsage522/listingwatch/services/publisher"
)

// Worker handles the crawling, filtering and reporting process
type Worker struct {
	ctx           context.Context
	crawlers      []crawler.Crawler
	expr          filter.Expression
	deps          internal.Dependencies
	logger        helpers.LoggerInterface
	crawlInterval time.Duration
	verbose       bool
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	crawlers []crawler.Crawler,
	expr filter.Expression,
	deps internal.Dependencies,
	logger helpers.LoggerInterface,
	crawlInterval time.Duration,
) *Worker {
	return &Worker{
		ctx:           ctx,
		crawlers:      crawlers,
		expr:          expr,
		deps:          deps,
		logger:        logger,
		crawlInterval: crawlInterval,
	}
}

// SetVerbose logs the first new record of every source
func (w *Worker) SetVerbose(verbose bool) {
	w.verbose = verbose
}

// Start runs the crawlers every crawl interval until the context is done.
// A tick in progress always completes.
func (w *Worker) Start() {
	for {
		start := time.Now()
		reported := w.RunOnce()
		w.logger.LogInfo("Crawl finished in %s, %d new records", time.Since(start).Round(time.Millisecond), reported)

		select {
		case <-w.ctx.Done():
			w.logger.LogInfo("Worker stopped")
			return
		case <-time.After(w.crawlInterval):
		}
	}
}

// RunOnce runs every crawler one after another, then trims the streams. It
// returns the number of new matching records.
func (w *Worker) RunOnce() int {
	reported := 0
	for _, c := range w.crawlers {
		reported += w.crawlAndReport(c)
	}

	if w.deps.Publisher != nil {
		// Trim all streams after crawling
		if err := w.deps.Publisher.TrimStreams(); err != nil {
			w.logger.LogError("StreamTrimming", err)
		}
	}
	return reported
}

// crawlAndReport crawls a source and hands its new matches to the
// publisher and the reporter
func (w *Worker) crawlAndReport(c crawler.Crawler) int {
	name := c.GetName()

	start := time.Now()
	records, err := c.FetchRecords()
	if w.deps.Metrics != nil {
		w.deps.Metrics.ObserveCrawl(name, time.Since(start))
	}
	if err != nil {
		// records of the pages walked before the failure are still used
		if errors.IsRetryable(err) {
			w.logger.LogInfo("Crawling %s failed, retrying on the next tick: %v", name, err)
		} else {
			w.logger.LogError(name, err)
		}
	}
	if len(records) == 0 {
		return 0
	}

	engine := filter.NewEngine(name, nil)
	if w.deps.Metrics != nil {
		engine.Observer = w.deps.Metrics
	}

	matched, err := engine.Filter(records, w.expr)
	if err != nil {
		w.logger.LogError(name, err)
		return 0
	}

	if w.deps.Seen != nil {
		matched = w.deps.Seen.Unseen(matched)
	}
	if len(matched) == 0 {
		return 0
	}

	delivered := true
	if w.deps.Publisher != nil {
		if _, err := publisher.PublishRecords(w.deps.Publisher, name, c.GetProvider(), matched); err != nil {
			w.logger.LogError(name, err)
			delivered = w.deps.Reporter != nil
		}
	}

	if w.deps.Reporter != nil {
		if err := w.deps.Reporter.Report(name, matched); err != nil {
			w.logger.LogError(name, err)
			delivered = false
		}
	}

	// undelivered records stay unseen and are tried again on the next tick
	if !delivered {
		return 0
	}
	if w.deps.Seen != nil {
		w.deps.Seen.MarkAll(matched)
	}

	if w.deps.Metrics != nil {
		w.deps.Metrics.ReportedRecords(name, len(matched))
	}

	if w.verbose {
		w.logFirstRecord(name, matched[0])
	}
	return len(matched)
}

func (w *Worker) logFirstRecord(name string, record listing.Record) {
	data, err := json.Marshal(record)
	if err != nil {
		w.logger.LogError(name, err)
		return
	}
	w.logger.LogInfo("New record from %s: %s", name, string(data))
}
