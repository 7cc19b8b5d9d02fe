package listing

import (
	"html"
	"regexp"
	"strings"

	"sjsage522/listingwatch/logger"
	"sjsage522/listingwatch/pkg/errors"
)

// attributeRegex captures the label (group 1) and the value (group 2) of a
// "<strong>Label:</strong> value" span. The value ends at the next tag.
var attributeRegex = regexp.MustCompile(`<strong>(.*)</strong>([^<]*)`)

// Fragment holds the raw parts of one listing entry, already located in the
// page by the crawler.
type Fragment struct {
	NameText       string
	Href           string
	AttributeSpans []string
	PriceText      string
	// OldPriceText is empty when the entry carries no discount markup
	OldPriceText string
}

// Diagnostic describes a label:value span that could not be read
type Diagnostic struct {
	Source  string
	Product string
	Span    string
	Reason  string
}

// DiagnosticFunc receives non-fatal normalization diagnostics
type DiagnosticFunc func(Diagnostic)

// LogDiagnostics is the default sink: one warning per diagnostic
func LogDiagnostics(d Diagnostic) {
	logger.ForNormalizer().Warn().
		Str("source", d.Source).
		Str("product", d.Product).
		Str("span", d.Span).
		Msg(d.Reason)
}

// Normalizer turns listing fragments into records
type Normalizer struct {
	// Source names the site section, used in errors and diagnostics
	Source string
	// BaseURL is prefixed to relative product links
	BaseURL     string
	Layout      Layout
	Diagnostics DiagnosticFunc
}

// NewNormalizer creates a normalizer logging diagnostics through zerolog
func NewNormalizer(source, baseURL string, layout Layout) *Normalizer {
	return &Normalizer{
		Source:      source,
		BaseURL:     baseURL,
		Layout:      layout,
		Diagnostics: LogDiagnostics,
	}
}

// Build creates the record for one fragment. A span that is not a
// label:value pair is reported through Diagnostics and skipped.
func (n *Normalizer) Build(f Fragment) (Record, error) {
	name := strings.TrimSpace(f.NameText)
	attrs := make(map[string]Value, len(f.AttributeSpans)+6)

	for _, span := range f.AttributeSpans {
		label, value, ok := parseAttribute(span)
		if !ok {
			n.diagnose(Diagnostic{
				Source:  n.Source,
				Product: name,
				Span:    strings.TrimSpace(span),
				Reason:  "Failed to get attribute",
			})
			continue
		}
		attrs[label] = String(value)
	}

	price, err := ParsePrice(f.PriceText)
	if err != nil {
		return Record{}, errors.NewParsing(n.Source, "failed to read price of "+quote(name), err)
	}

	oldPrice := price
	if strings.TrimSpace(f.OldPriceText) != "" {
		oldPrice, err = ParsePrice(f.OldPriceText)
		if err != nil {
			return Record{}, errors.NewParsing(n.Source, "failed to read old price of "+quote(name), err)
		}
	}

	discount := oldPrice - price

	attrs[AttrName] = String(name)
	attrs[AttrLink] = String(n.resolveLink(f.Href))
	attrs[AttrPrice] = Int(price)
	attrs[AttrOldPrice] = Int(oldPrice)
	attrs[AttrDiscount] = Int(discount)
	attrs[AttrDiscountPercentage] = Int(DiscountPercentage(oldPrice, discount))

	return NewRecord(attrs), nil
}

// resolveLink prefixes the base URL unless href is already absolute
func (n *Normalizer) resolveLink(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return n.BaseURL + href
}

func (n *Normalizer) diagnose(d Diagnostic) {
	if n.Diagnostics != nil {
		n.Diagnostics(d)
	}
}

// parseAttribute extracts the lower-cased label and the trimmed value
func parseAttribute(span string) (string, string, bool) {
	match := attributeRegex.FindStringSubmatch(span)
	if match == nil {
		return "", "", false
	}

	label := strings.ToLower(strings.Trim(html.UnescapeString(match[1]), " \t\r\n:"))
	if label == "" {
		return "", "", false
	}
	value := strings.TrimSpace(html.UnescapeString(match[2]))
	return label, value, true
}

func quote(s string) string {
	return `"` + s + `"`
}
