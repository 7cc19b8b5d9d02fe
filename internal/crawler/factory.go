package crawler

import (
	"sjsage522/listingwatch/config"
	"sjsage522/listingwatch/logger"
	"sjsage522/listingwatch/services/cache"
)

// CreateCrawlers creates one eMAG crawler per section, in walk order. A
// zero categoryID lists every category.
func CreateCrawlers(cfg *config.Config, categoryID int, cacheSvc cache.CacheService, recorder Recorder) []Crawler {
	crawlers := make([]Crawler, 0, len(EmagSections))
	for _, section := range EmagSections {
		c := NewEmagCrawler(cfg.EmagURL, section, categoryID, cacheSvc, cfg.BlockTime)
		if recorder != nil {
			c.Recorder = recorder
		}
		crawlers = append(crawlers, c)
	}

	for i, c := range crawlers {
		logger.ForCrawler(c.GetName()).Debug().
			Int("index", i).
			Str("url", c.(*EmagCrawler).PageURL(1)).
			Msg("Created crawler")
	}

	return crawlers
}
