package listing

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PriceLayout describes where the prices of one listing variant live.
// Container holds the only price when there is no discount. When Old
// matches, the current price is read from Current, or from Container itself
// when Current is empty.
type PriceLayout struct {
	Container string
	Current   string
	Old       string
}

// Layout contains the CSS selectors used to locate the parts of an entry
type Layout struct {
	Details    string
	NameLink   string
	Attributes string
	Prices     string
	Variants   []PriceLayout
}

// EmagLayout locates entries of both the resigilate and lichidari listings
var EmagLayout = Layout{
	Details:    "div.col-2-prod",
	NameLink:   "a",
	Attributes: "li",
	Prices:     "div.col-3-prod",
	Variants: []PriceLayout{
		{
			// resigilate
			Container: "div.pret-produs-listing-rsg",
			Old:       "span.old-price",
		},
		{
			// lichidari, possibly without discount
			Container: "div.pret-produs-listing",
			Current:   `span[title="Pret nou"]`,
			Old:       "span.old",
		},
	},
}

// Locate extracts the raw fragment of one entry sub-tree
func (n *Normalizer) Locate(s *goquery.Selection) Fragment {
	var f Fragment
	layout := n.Layout

	details := s.Find(layout.Details).First()
	nameLink := details.Find(layout.NameLink).First()
	f.NameText = nameLink.Text()
	f.Href, _ = nameLink.Attr("href")

	details.Find(layout.Attributes).Each(func(_ int, li *goquery.Selection) {
		content, err := li.Html()
		if err != nil {
			content = li.Text()
		}
		f.AttributeSpans = append(f.AttributeSpans, content)
	})

	prices := s.Find(layout.Prices).First()
	for _, variant := range layout.Variants {
		container := prices.Find(variant.Container).First()
		if container.Length() == 0 {
			continue
		}

		old := prices.Find(variant.Old).First()
		if old.Length() == 0 {
			f.PriceText = container.Text()
			break
		}

		f.OldPriceText = old.Text()
		current := container
		if variant.Current != "" {
			current = prices.Find(variant.Current).First()
		}
		f.PriceText = current.Text()
		break
	}

	f.PriceText = strings.TrimSpace(f.PriceText)
	f.OldPriceText = strings.TrimSpace(f.OldPriceText)
	return f
}

// Normalize locates and builds the record of one entry sub-tree
func (n *Normalizer) Normalize(s *goquery.Selection) (Record, error) {
	return n.Build(n.Locate(s))
}
