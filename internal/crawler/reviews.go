package crawler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/listingwatch/internal/listing"
	"sjsage522/listingwatch/logger"
	"sjsage522/listingwatch/services/cache"
)

// Review attributes
const (
	AttrCount      = "count"
	AttrLastEditor = "last-editor"
	AttrDate       = "date"
)

// ReviewsCrawler collects the translation templates of one release and
// language that have suggestions waiting for review
type ReviewsCrawler struct {
	BaseCrawler
	BaseURL   string
	Release   string
	Language  string
	BatchSize int
}

// NewReviewsCrawler creates a crawler for the translation statistics of a
// release
func NewReviewsCrawler(baseURL, release, language string, batchSize int, cacheSvc cache.CacheService, blockTime time.Duration) *ReviewsCrawler {
	return &ReviewsCrawler{
		BaseCrawler: newBaseCrawler("reviews-"+strings.ToLower(release)+"-"+language, cacheSvc, blockTime),
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Release:     release,
		Language:    language,
		BatchSize:   batchSize,
	}
}

// IndexURL returns the statistics page of the release and language
func (c *ReviewsCrawler) IndexURL() string {
	return fmt.Sprintf("%s/ubuntu/%s/+lang/%s/+index", c.BaseURL, strings.ToLower(c.Release), c.Language)
}

// BatchURL returns the statistics page starting at the given row
func (c *ReviewsCrawler) BatchURL(start int) string {
	return fmt.Sprintf("%s?start=%d&batch=%d", c.IndexURL(), start, c.BatchSize)
}

// FetchRecords walks batches until the page no longer links to a next one
func (c *ReviewsCrawler) FetchRecords() ([]listing.Record, error) {
	records := []listing.Record{}

	for start := 0; ; start += c.BatchSize {
		doc, err := c.fetchDocument(c.BatchURL(start))
		if err != nil {
			return records, err
		}

		page, hasNext := c.ParseReviews(doc)
		records = append(records, page...)
		if !hasNext {
			break
		}
	}

	logger.ForCrawler(c.Name).Info().Int("records", len(records)).Msg("Reviews crawled")
	return records, nil
}

// ParseReviews returns the templates with suggestions listed on a page and
// whether a next batch exists. Rows without a link in the suggestions
// column have nothing to review.
func (c *ReviewsCrawler) ParseReviews(doc *goquery.Document) ([]listing.Record, bool) {
	hasNext := doc.Find("#upper-batch-nav-batchnav-next").Length() > 0
	records := []listing.Record{}

	rows := doc.Find("table.listing.sortable.translation-stats tr")
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 8 {
			return
		}

		reviewLink := cells.Eq(4).Find("a").First()
		if reviewLink.Length() == 0 {
			return
		}

		count, err := strconv.Atoi(strings.TrimSpace(reviewLink.Text()))
		c.recorder().EntryNormalized(c.Name, err)
		if err != nil {
			logger.ForCrawler(c.Name).Warn().Str("count", reviewLink.Text()).Msg("Suggestion count is not a number")
			return
		}
		href, _ := reviewLink.Attr("href")

		records = append(records, listing.NewRecord(map[string]listing.Value{
			listing.AttrName: listing.String(strings.TrimSpace(cells.Eq(0).Find("a").First().Text())),
			listing.AttrLink: listing.String(c.BaseURL + strings.TrimSpace(href)),
			AttrCount:        listing.Int(count),
			AttrLastEditor:   listing.String(strings.TrimSpace(cells.Eq(7).Find("a").First().Text())),
			AttrDate:         listing.String(strings.TrimSpace(cells.Eq(6).Find("span.sortkey").First().Text())),
		}))
	})

	return records, hasNext
}

// GetProvider returns the provider name
func (c *ReviewsCrawler) GetProvider() string {
	return "launchpad"
}
