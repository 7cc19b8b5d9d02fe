package crawler

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/listingwatch/helpers"
	"sjsage522/listingwatch/internal/listing"
	"sjsage522/listingwatch/logger"
	"sjsage522/listingwatch/pkg/errors"
	"sjsage522/listingwatch/services/cache"
)

// BaseCrawler provides common functionality for all crawlers
type BaseCrawler struct {
	Name      string
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	Recorder  Recorder

	// fetch is replaced in tests
	fetch func(url string) (io.Reader, error)
}

func newBaseCrawler(name string, cacheSvc cache.CacheService, blockTime time.Duration) BaseCrawler {
	return BaseCrawler{
		Name:      name,
		CacheKey:  name + "_rate_limited",
		CacheSvc:  cacheSvc,
		BlockTime: blockTime,
		Recorder:  nopRecorder{},
		fetch:     helpers.Fetch,
	}
}

// fetchWithCache fetches a URL unless the source is blocked after a rate
// limiting answer
func (c *BaseCrawler) fetchWithCache(url string) (io.Reader, error) {
	// Check if the crawler is rate limited
	if c.CacheSvc != nil && c.CacheKey != "" {
		if _, err := c.CacheSvc.Get(c.CacheKey); err == nil {
			return nil, errors.NewRateLimit(c.Name, c.BlockTime)
		}
	}

	fetch := c.fetch
	if fetch == nil {
		fetch = helpers.Fetch
	}

	body, err := fetch(url)
	if err != nil {
		if strings.HasPrefix(err.Error(), helpers.ErrRateLimitedPrefix) {
			if c.CacheSvc != nil && c.CacheKey != "" {
				seconds := fmt.Sprintf("%d", c.BlockTime/time.Second)
				if cacheErr := c.CacheSvc.Set(c.CacheKey, []byte(seconds), c.BlockTime); cacheErr != nil {
					logger.ForCrawler(c.Name).Warn().Err(cacheErr).Msg("Failed to store rate limit flag")
				}
			}
			return nil, errors.NewRateLimit(c.Name, c.BlockTime)
		}
		return nil, errors.NewNetwork(c.Name, fmt.Sprintf("failed to fetch %s", url), err)
	}

	return body, nil
}

// createDocument creates a goquery document from a reader
func (c *BaseCrawler) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, errors.NewParsing(c.Name, "failed to parse HTML", err)
	}
	return doc, nil
}

// fetchDocument fetches and parses one page, reporting the outcome to the
// recorder
func (c *BaseCrawler) fetchDocument(url string) (*goquery.Document, error) {
	logger.ForCrawler(c.Name).Debug().Str("url", url).Msg("Fetching page")

	reader, err := c.fetchWithCache(url)
	if err == nil {
		var doc *goquery.Document
		doc, err = c.createDocument(reader)
		if err == nil {
			c.recorder().PageFetched(c.Name, nil)
			return doc, nil
		}
	}

	c.recorder().PageFetched(c.Name, err)
	return nil, err
}

// processEntries normalizes entries one after another, in document order.
// Entries that fail to normalize are logged and skipped.
func (c *BaseCrawler) processEntries(selections *goquery.Selection, normalizer *listing.Normalizer) []listing.Record {
	records := make([]listing.Record, 0, selections.Length())

	selections.Each(func(_ int, s *goquery.Selection) {
		record, err := normalizer.Normalize(s)
		c.recorder().EntryNormalized(c.Name, err)
		if err != nil {
			logger.LogError("crawler", err, "Skipping entry from %s", c.Name)
			return
		}
		records = append(records, record)
	})

	return records
}

func (c *BaseCrawler) recorder() Recorder {
	if c.Recorder == nil {
		return nopRecorder{}
	}
	return c.Recorder
}

// GetName returns the crawler's name for logging
func (c *BaseCrawler) GetName() string {
	return c.Name
}
