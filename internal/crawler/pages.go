package crawler

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/listingwatch/pkg/errors"
)

// PageCount returns the number of pages announced by the pagination holder
// of a section's first page. A page without the holder has no pages, a
// holder without links has a single page, otherwise the last link names
// the last page.
func PageCount(doc *goquery.Document, section string) (int, error) {
	holder := doc.Find("div.holder-pagini-2").First()
	if holder.Length() == 0 {
		return 0, nil
	}

	links := holder.Find("a.pagini-options-2")
	if links.Length() == 0 {
		return 1, nil
	}

	href, _ := links.Last().Attr("href")
	pageRegex := regexp.MustCompile(regexp.QuoteMeta(section) + `/p(\d+)`)
	match := pageRegex.FindStringSubmatch(href)
	if match == nil {
		return 0, errors.NewParsing(section, fmt.Sprintf("could not get the number of pages from %q", href), nil)
	}

	count, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, errors.NewParsing(section, "page number out of range", err)
	}
	return count, nil
}
