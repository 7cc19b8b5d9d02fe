package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"sjsage522/listingwatch/internal/crawler"
	"sjsage522/listingwatch/internal/listing"
	"sjsage522/listingwatch/pkg/errors"
)

// NoProducts is printed instead of an empty product list
const NoProducts = "No products found."

type line struct {
	label string
	value string
}

// ProductText renders one product. The priced attributes come first, page
// attributes follow in name order and the link closes the block.
func ProductText(r listing.Record) string {
	lines := []line{
		{"name", r.Name()},
		{"price", fmt.Sprintf("%d RON", r.Number(listing.AttrPrice))},
		{"discount", fmt.Sprintf("%d RON", r.Number(listing.AttrDiscount))},
		{"percentage", fmt.Sprintf("%d%%", r.Number(listing.AttrDiscountPercentage))},
		{"old-price", fmt.Sprintf("%d RON", r.Number(listing.AttrOldPrice))},
	}
	for _, key := range r.Extras() {
		lines = append(lines, line{key, r.Text(key)})
	}
	lines = append(lines, line{"link", r.Link()})

	return renderLines(lines)
}

// renderLines aligns values on the widest label. Labels may hold
// diacritics, so widths are measured in terminal cells.
func renderLines(lines []line) string {
	width := 0
	for _, l := range lines {
		if w := runewidth.StringWidth(l.label) + 1; w > width {
			width = w
		}
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(runewidth.FillRight(l.label+":", width))
		b.WriteString(" ")
		b.WriteString(l.value)
		b.WriteString("\n")
	}
	return b.String()
}

// ProductsText renders products separated by a blank line
func ProductsText(records []listing.Record) string {
	results := make([]string, 0, len(records))
	for _, r := range records {
		results = append(results, ProductText(r))
	}
	return strings.Join(results, "\n")
}

// ReviewText renders one template waiting for review
func ReviewText(r listing.Record) string {
	return renderLines([]line{
		{"Template", r.Name()},
		{"New suggestions", fmt.Sprintf("%d", r.Number(crawler.AttrCount))},
		{"URL", r.Link()},
		{"Last reviewer", r.Text(crawler.AttrLastEditor)},
		{"Last changed date", r.Text(crawler.AttrDate)},
	})
}

// ReviewsText renders templates separated by a blank line
func ReviewsText(records []listing.Record) string {
	results := make([]string, 0, len(records))
	for _, r := range records {
		results = append(results, ReviewText(r))
	}
	return strings.Join(results, "\n")
}

// TextReporter prints records to a writer
type TextReporter struct {
	Out    io.Writer
	Format Format
}

// NewTextReporter creates a text reporter
func NewTextReporter(out io.Writer, format Format) *TextReporter {
	return &TextReporter{Out: out, Format: format}
}

// Report prints the records, or a notice when there are none
func (t *TextReporter) Report(source string, records []listing.Record) error {
	text := t.Format.Text(records)
	if len(records) == 0 {
		text = NoProducts + "\n"
	}
	if _, err := io.WriteString(t.Out, text); err != nil {
		return errors.NewReport(source, "failed to write text report", err)
	}
	return nil
}
