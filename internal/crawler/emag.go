package crawler

import (
	"fmt"
	"strings"
	"time"

	"sjsage522/listingwatch/internal/listing"
	"sjsage522/listingwatch/logger"
	"sjsage522/listingwatch/services/cache"
)

// Section is one paginated eMAG listing
type Section struct {
	// Path is the URL path of the listing, also used in page links
	Path string
	// Entries selects the sub-tree of every product on a page
	Entries string
}

var (
	// Resigilate lists returned products
	Resigilate = Section{
		Path:    "resigilate",
		Entries: `div[style="height:auto; position:relative;"]`,
	}

	// Lichidari lists stock clearances
	Lichidari = Section{
		Path:    "lichidari",
		Entries: `form[action$="/addtocart"][method="post"]`,
	}

	// EmagSections are walked in this order
	EmagSections = []Section{Resigilate, Lichidari}
)

// EmagCrawler walks every page of one eMAG section
type EmagCrawler struct {
	BaseCrawler
	BaseURL    string
	Section    Section
	CategoryID int

	normalizer *listing.Normalizer
}

// NewEmagCrawler creates a crawler for a section. A zero categoryID lists
// every category.
func NewEmagCrawler(baseURL string, section Section, categoryID int, cacheSvc cache.CacheService, blockTime time.Duration) *EmagCrawler {
	baseURL = strings.TrimRight(baseURL, "/")
	name := "emag-" + section.Path

	return &EmagCrawler{
		BaseCrawler: newBaseCrawler(name, cacheSvc, blockTime),
		BaseURL:     baseURL,
		Section:     section,
		CategoryID:  categoryID,
		normalizer:  listing.NewNormalizer(name, baseURL, listing.EmagLayout),
	}
}

// PageURL returns the address of a page of the section
func (c *EmagCrawler) PageURL(page int) string {
	url := fmt.Sprintf("%s/%s/p%d", c.BaseURL, c.Section.Path, page)
	if c.CategoryID != 0 {
		url += fmt.Sprintf("?catid=%d", c.CategoryID)
	}
	return url
}

// FetchRecords walks the section page by page. The first page also
// announces how many pages follow. A failed page ends the walk and the
// records of the earlier pages are returned with the error.
func (c *EmagCrawler) FetchRecords() ([]listing.Record, error) {
	log := logger.ForCrawler(c.Name)

	doc, err := c.fetchDocument(c.PageURL(1))
	if err != nil {
		return []listing.Record{}, err
	}

	pages, err := PageCount(doc, c.Section.Path)
	if err != nil {
		return []listing.Record{}, err
	}
	log.Debug().Int("pages", pages).Msg("Section pagination")

	records := []listing.Record{}
	for page := 1; page <= pages; page++ {
		// the first page is already here
		if page != 1 {
			doc, err = c.fetchDocument(c.PageURL(page))
			if err != nil {
				return records, err
			}
		}
		records = append(records, c.processEntries(doc.Find(c.Section.Entries), c.normalizer)...)
	}

	log.Info().Int("records", len(records)).Msg("Section crawled")
	return records, nil
}

// GetProvider returns the provider name
func (c *EmagCrawler) GetProvider() string {
	return "emag"
}
