package report

import (
	"fmt"
	"io"
	"time"

	"github.com/gorilla/feeds"

	"sjsage522/listingwatch/internal/crawler"
	"sjsage522/listingwatch/internal/listing"
	"sjsage522/listingwatch/pkg/errors"
)

const (
	rssTitle           = "Ubuntu %s translation reviews for %s"
	rssDescription     = "RSS feeds for Ubuntu %s translations in %s that have new suggestions required to be reviewed."
	rssItemDescription = "Template %q has %d new suggestions waiting to be reviewed. Template was last changed by %s on %s."
)

// RSSReporter writes translation reviews as an RSS 2.0 channel
type RSSReporter struct {
	Out      io.Writer
	Release  string
	Language string
	// Link is the statistics page the channel points to
	Link string

	now func() time.Time
}

// NewRSSReporter creates a reporter for the reviews of a release and language
func NewRSSReporter(out io.Writer, release, language, link string) *RSSReporter {
	return &RSSReporter{
		Out:      out,
		Release:  release,
		Language: language,
		Link:     link,
		now:      time.Now,
	}
}

// Feed builds the channel for the records
func (r *RSSReporter) Feed(records []listing.Record) *feeds.RssFeed {
	now := r.now()

	feed := &feeds.Feed{
		Title:       fmt.Sprintf(rssTitle, r.Release, r.Language),
		Link:        &feeds.Link{Href: r.Link},
		Description: fmt.Sprintf(rssDescription, r.Release, r.Language),
		Created:     now,
		Updated:     now,
	}

	for _, record := range records {
		count := record.Number(crawler.AttrCount)
		feed.Items = append(feed.Items, &feeds.Item{
			Title: fmt.Sprintf("%s - %d", record.Name(), count),
			Link:  &feeds.Link{Href: record.Link()},
			Description: fmt.Sprintf(rssItemDescription,
				record.Name(), count, record.Text(crawler.AttrLastEditor), record.Text(crawler.AttrDate)),
			Id:      fmt.Sprintf("%s-%d", record.Link(), now.Unix()),
			Created: now,
		})
	}

	rss := (&feeds.Rss{Feed: feed}).RssFeed()
	rss.Language = "en-us"
	rss.Docs = "http://blogs.law.harvard.edu/tech/rss"
	rss.Generator = "listingwatch"
	return rss
}

// Report writes the channel, also when there are no records
func (r *RSSReporter) Report(source string, records []listing.Record) error {
	xml, err := feeds.ToXML(r.Feed(records))
	if err != nil {
		return errors.NewReport(source, "failed to encode feed", err)
	}

	if _, err := io.WriteString(r.Out, xml+"\n"); err != nil {
		return errors.NewReport(source, "failed to write feed", err)
	}
	return nil
}
