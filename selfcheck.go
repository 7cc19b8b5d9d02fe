package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/listingwatch/internal/crawler"
	"sjsage522/listingwatch/internal/filter"
	"sjsage522/listingwatch/internal/listing"
	"sjsage522/listingwatch/pkg/errors"
)

// selfCheck is one scenario of the built-in suite
type selfCheck struct {
	name string
	run  func() error
}

func expect(ok bool, format string, args ...interface{}) error {
	if ok {
		return nil
	}
	return fmt.Errorf(format, args...)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func fixtureEntry(html string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return doc.Find("body > *").First(), nil
}

var selfChecks = []selfCheck{
	{"parse_expression_empty", func() error {
		expr, err := filter.Parse("  ")
		return firstError(err, expect(len(expr) == 0, "got %d rules", len(expr)))
	}},
	{"parse_expression_operators", func() error {
		expr, err := filter.Parse("caca <4,raca>5, oaca~zaca, maca!~daca")
		if err != nil {
			return err
		}
		kinds := []filter.Kind{filter.Less, filter.Greater, filter.Regex, filter.RegexNot}
		for i, kind := range kinds {
			if err := expect(expr[i].Kind == kind, "rule %d is %s", i, expr[i].Kind); err != nil {
				return err
			}
		}
		return expect(expr[0].Number == 4 && expr[1].Number == 5, "wrong bounds in %s", expr)
	}},
	{"parse_expression_errors", func() error {
		for _, bad := range []string{"price< ", "<10", "price<abc", "name~(", "caca"} {
			_, err := filter.Parse(bad)
			if !errors.IsExpression(err) {
				return fmt.Errorf("%q was accepted", bad)
			}
		}
		return nil
	}},
	{"match_rules", func() error {
		record := listing.NewRecord(map[string]listing.Value{
			"name":  listing.String("some name"),
			"price": listing.Int(10),
		})
		cases := map[string]bool{
			"caca~maca": false, "price<10": false, "price<11": true,
			"price>9": true, "name~(some|caca)": true, "name!~caca": true,
		}
		for rule, want := range cases {
			got, err := filter.Match(record, filter.MustParse(rule)[0])
			if err != nil {
				return err
			}
			if err := expect(got == want, "%s matched %v", rule, got); err != nil {
				return err
			}
		}
		return nil
	}},
	{"match_not_integer", func() error {
		record := listing.NewRecord(map[string]listing.Value{"garantie": listing.String("12 luni")})
		_, err := filter.Match(record, filter.MustParse("garantie<24")[0])
		return expect(errors.IsEvaluation(err), "got %v", err)
	}},
	{"filter_products", func() error {
		records := []listing.Record{
			listing.NewRecord(map[string]listing.Value{"name": listing.String("caca"), "price": listing.Int(200)}),
			listing.NewRecord(map[string]listing.Value{"name": listing.String("caca"), "price": listing.Int(400)}),
			listing.NewRecord(map[string]listing.Value{"name": listing.String("maca"), "price": listing.Int(100)}),
		}
		matched, err := filter.Apply(records, "name~caca,price<300")
		return firstError(err, expect(len(matched) == 1, "got %d matches", len(matched)))
	}},
	{"parse_price", func() error {
		price, err := listing.ParsePrice("10.000,<sup>99</sup> Lei")
		return firstError(err, expect(price == 10000, "got %d", price))
	}},
	{"discount_percentage", func() error {
		return firstError(
			expect(listing.DiscountPercentage(10000, 2500) == 25, "10000/2500"),
			expect(listing.DiscountPercentage(394, 39) == 10, "394/39"),
			expect(listing.DiscountPercentage(200, 5) == 2, "200/5 rounds half to even"),
			expect(listing.DiscountPercentage(759, 0) == 0, "no discount"),
		)
	}},
	{"normalize_resigilate", func() error {
		entry, err := fixtureEntry(`<div style="height:auto; position:relative;">
			<div class="col-2-prod"><a href="LINK_TO_PRODUCT">PRODUCT_NAME</a>
			<ul><li><strong>ATTR1_NAME:</strong> ATTR1_VALUE<br /></li></ul></div>
			<div class="col-3-prod"><span class="old-price">10.000,<sup>99</sup> Lei</span>
			<div class="pret-produs-listing-rsg">7.500,<sup>99</sup> Lei</div></div></div>`)
		if err != nil {
			return err
		}
		n := listing.NewNormalizer("self-check", "http://www.emag.ro", listing.EmagLayout)
		record, err := n.Normalize(entry)
		if err != nil {
			return err
		}
		return firstError(
			expect(record.Name() == "PRODUCT_NAME", "name %q", record.Name()),
			expect(record.Link() == "http://www.emag.roLINK_TO_PRODUCT", "link %q", record.Link()),
			expect(record.Number(listing.AttrDiscountPercentage) == 25, "percentage %d", record.Number(listing.AttrDiscountPercentage)),
			expect(record.Text("attr1_name") == "ATTR1_VALUE", "attribute %q", record.Text("attr1_name")),
		)
	}},
	{"normalize_lichidari_no_discount", func() error {
		entry, err := fixtureEntry(`<form action="https://www.emag.ro/addtocart" method="post">
			<div class="col-2-prod"><h2><a href="LINK">PRODUCT_NAME</a></h2></div>
			<div class="col-3-prod"><div class="pret-produs-listing">759,<sup>99</sup> Lei</div></div></form>`)
		if err != nil {
			return err
		}
		n := listing.NewNormalizer("self-check", "http://www.emag.ro", listing.EmagLayout)
		record, err := n.Normalize(entry)
		if err != nil {
			return err
		}
		return firstError(
			expect(record.Number(listing.AttrPrice) == 759, "price %d", record.Number(listing.AttrPrice)),
			expect(record.Number(listing.AttrOldPrice) == 759, "old price %d", record.Number(listing.AttrOldPrice)),
			expect(record.Number(listing.AttrDiscount) == 0, "discount %d", record.Number(listing.AttrDiscount)),
		)
	}},
	{"page_count", func() error {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div class="holder-pagini-2">
			<a class="pagini-options-2" href="/resigilate/p2">2</a>
			<a class="pagini-options-2" href="/resigilate/p9">9</a></div>`))
		if err != nil {
			return err
		}
		pages, err := crawler.PageCount(doc, "resigilate")
		return firstError(err, expect(pages == 9, "got %d pages", pages))
	}},
	{"parse_reviews_has_next", func() error {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body>
			<a class="next" id="upper-batch-nav-batchnav-next">Next</a>
			<table class="listing sortable translation-stats"></table></body></html>`))
		if err != nil {
			return err
		}
		c := crawler.NewReviewsCrawler("https://translations.launchpad.net", "natty", "ro", 150, nil, 0)
		records, hasNext := c.ParseReviews(doc)
		return firstError(expect(hasNext, "next page not found"), expect(len(records) == 0, "got %d reviews", len(records)))
	}},
}

// runChecks prints one line per check and a summary. It returns the number
// of failed checks.
func runChecks(out io.Writer, checks []selfCheck, stopOnFailure bool) int {
	passed, failed := 0, 0
	for _, check := range checks {
		if err := check.run(); err != nil {
			failed++
			fmt.Fprintf(out, "%s: FAIL (%v)\n", check.name, err)
			if stopOnFailure {
				break
			}
			continue
		}
		passed++
		fmt.Fprintf(out, "%s: PASS\n", check.name)
	}

	fmt.Fprintln(out, "--")
	fmt.Fprintf(out, "Ran %d tests. %d PASSED. %d FAILED.\n", passed+failed, passed, failed)
	return failed
}

func (a *app) runSelfChecks(stopOnFailure bool) error {
	if failed := runChecks(a.out, selfChecks, stopOnFailure); failed > 0 {
		return &exitError{code: exitUsage}
	}
	return nil
}
