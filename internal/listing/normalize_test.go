package listing

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/listingwatch/pkg/errors"
)

const testBaseURL = "http://www.emag.ro"

func newTestNormalizer(diags *[]Diagnostic) *Normalizer {
	n := NewNormalizer("emag", testBaseURL, EmagLayout)
	n.Diagnostics = func(d Diagnostic) {
		if diags != nil {
			*diags = append(*diags, d)
		}
	}
	return n
}

func entry(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Find("body > *").First()
}

func TestBuild_Discount(t *testing.T) {
	n := newTestNormalizer(nil)

	record, err := n.Build(Fragment{
		NameText:     "  Laptop  ",
		Href:         "/laptop/pd/1",
		PriceText:    "7.500,99 Lei",
		OldPriceText: "10.000,99 Lei",
	})
	require.NoError(t, err)

	assert.Equal(t, "Laptop", record.Name())
	assert.Equal(t, "http://www.emag.ro/laptop/pd/1", record.Link())
	assert.Equal(t, 7500, record.Number(AttrPrice))
	assert.Equal(t, 10000, record.Number(AttrOldPrice))
	assert.Equal(t, 2500, record.Number(AttrDiscount))
	assert.Equal(t, 25, record.Number(AttrDiscountPercentage))
}

func TestBuild_SmallDiscount(t *testing.T) {
	n := newTestNormalizer(nil)

	record, err := n.Build(Fragment{
		NameText:     "Monitor",
		Href:         "LINK",
		PriceText:    "355,49 Lei",
		OldPriceText: "394,99 Lei",
	})
	require.NoError(t, err)

	assert.Equal(t, 39, record.Number(AttrDiscount))
	assert.Equal(t, 10, record.Number(AttrDiscountPercentage))
}

func TestBuild_NoDiscount(t *testing.T) {
	n := newTestNormalizer(nil)

	record, err := n.Build(Fragment{NameText: "Mouse", Href: "LINK", PriceText: "759,99 Lei"})
	require.NoError(t, err)

	assert.Equal(t, 759, record.Number(AttrPrice))
	assert.Equal(t, 759, record.Number(AttrOldPrice))
	assert.Equal(t, 0, record.Number(AttrDiscount))
	assert.Equal(t, 0, record.Number(AttrDiscountPercentage))
}

func TestBuild_MissingPrice(t *testing.T) {
	n := newTestNormalizer(nil)

	_, err := n.Build(Fragment{NameText: "Broken", Href: "LINK"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParsing))
	assert.Contains(t, err.Error(), `"Broken"`)
}

func TestBuild_Attributes(t *testing.T) {
	var diags []Diagnostic
	n := newTestNormalizer(&diags)

	record, err := n.Build(Fragment{
		NameText: "Laptop",
		Href:     "LINK",
		AttributeSpans: []string{
			"\n<strong>Tip procesor:</strong> Intel Core i5\n<br/>\n",
			"<strong>Garantie:</strong> 12 luni",
			"<strong>Stare:</strong> Ambalaj deteriorat &amp; zgarieturi<br/>",
			"no label here",
			"<strong>Name:</strong> not the product name",
		},
		PriceText: "3.699,99 Lei",
	})
	require.NoError(t, err)

	assert.Equal(t, "Intel Core i5", record.Text("tip procesor"))
	assert.Equal(t, "12 luni", record.Text("garantie"))
	assert.Equal(t, "Ambalaj deteriorat & zgarieturi", record.Text("stare"))
	assert.Equal(t, "Laptop", record.Name(), "synthetic attributes win over page labels")

	require.Len(t, diags, 1)
	assert.Equal(t, "no label here", diags[0].Span)
	assert.Equal(t, "Laptop", diags[0].Product)
	assert.Equal(t, "emag", diags[0].Source)
}

func TestBuild_AbsoluteLink(t *testing.T) {
	n := newTestNormalizer(nil)

	record, err := n.Build(Fragment{NameText: "x", Href: " https://www.emag.ro/p/1 ", PriceText: "1 Lei"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.emag.ro/p/1", record.Link())

	record, err = n.Build(Fragment{NameText: "x", Href: "//s.emag.ro/p/1", PriceText: "1 Lei"})
	require.NoError(t, err)
	assert.Equal(t, "https://s.emag.ro/p/1", record.Link())
}

func TestNormalize_Resigilate(t *testing.T) {
	n := newTestNormalizer(nil)

	record, err := n.Normalize(entry(t, `
		<div style="height:auto; position:relative;">
		<div class="col-1-prod">
		<a href="LINK_TO_PRODUCT"><img src="PRODUCT_IMAGE" /></a>
		</div>
		<div class="col-2-prod">
		<a href="LINK_TO_PRODUCT" class="produs_lista_rsg">
			PRODUCT_NAME
		</a><br />
		<ul class="sp specs-ocazii">
		<li>
		<strong>ATTR1_NAME:</strong> ATTR1_VALUE
			<br />
		</li>
		<li>
		<strong>ATTR2_NAME:</strong> ATTR2_VALUE luni
		</li>
		</ul>
		</div>
		<div class="col-3-prod">
		<div class="top">
		<div class="pret-vechi" title="Pret vechi">
		<span class="old-price">
			10.000,<sup class="money-decimal">99</sup> Lei
		</span>
		<span class="price-diff">
			(-2.500,<sup class="money-decimal">00</sup> Lei)
		</span>
		</div>
		<div class="pret-produs-listing-rsg">
			7.500,<sup class="money-decimal">99</sup> Lei
		</div>
		</div>
		</div>
		</div>`))
	require.NoError(t, err)

	assert.Equal(t, "PRODUCT_NAME", record.Name())
	assert.Equal(t, testBaseURL+"LINK_TO_PRODUCT", record.Link())
	assert.Equal(t, 7500, record.Number(AttrPrice))
	assert.Equal(t, 10000, record.Number(AttrOldPrice))
	assert.Equal(t, 2500, record.Number(AttrDiscount))
	assert.Equal(t, 25, record.Number(AttrDiscountPercentage))
	assert.Equal(t, "ATTR1_VALUE", record.Text("attr1_name"))
	assert.Equal(t, "ATTR2_VALUE luni", record.Text("attr2_name"))
}

func TestNormalize_LichidariNoDiscount(t *testing.T) {
	n := newTestNormalizer(nil)

	record, err := n.Normalize(entry(t, `
		<form action="https://www.emag.ro/addtocart" method="post">
		<div id="poza1" class="col-1-prod">
		<div><a href="LINK_TO_PRODUCT" title="ceva"><img src="PIC"></a></div></div>
		<div class="col-2-prod">
		<h2><a href="LINK_TO_PRODUCT" title="NAME">
		PRODUCT_NAME
		</a></h2><br>
		<ul class="sp">
		<li>
		<strong>ATTR1_NAME:</strong> ATTR1_VALUE<br>
		</li>
		</ul>
		</div>
		<div id="pret1" class="col-3-prod">
		<div class="top">
		<div class="produs-listing-price-box">
		<div class="pret-produs-listing">
		759,<sup class="money-decimal">99</sup> Lei
		</div>
		</div>
		<span class="stare-disp-listing">Stoc limitat</span>
		</div></div></form>`))
	require.NoError(t, err)

	assert.Equal(t, "PRODUCT_NAME", record.Name())
	assert.Equal(t, testBaseURL+"LINK_TO_PRODUCT", record.Link())
	assert.Equal(t, 759, record.Number(AttrPrice))
	assert.Equal(t, 759, record.Number(AttrOldPrice))
	assert.Equal(t, 0, record.Number(AttrDiscount))
	assert.Equal(t, 0, record.Number(AttrDiscountPercentage))
	assert.Equal(t, "ATTR1_VALUE", record.Text("attr1_name"))
}

func TestNormalize_LichidariDiscount(t *testing.T) {
	n := newTestNormalizer(nil)

	record, err := n.Normalize(entry(t, `
		<form action="https://www.emag.ro/addtocart" method="post">
		<div class="col-2-prod">
		<h2><a href="LINK_TO_PRODUCT" title="tile-here">
		PRODUCT_NAME
		</a></h2>
		<ul class="sp">
		<li><strong>ATTR1_NAME:</strong> ATTR1_VALUE<br></li>
		</ul>
		</div>
		<div id="pret3" class="col-3-prod">
		<div class="top">
		<div class="produs-listing-price-box">
		<div class="pret-produs-listing">
		<span class="old" style="ceva" title="Pret vechi">
			394,<sup class="money-decimal">99</sup> Lei</span>
		<span title="Pret nou">
			355,<sup class="money-decimal">49</sup> Lei</span>
		<span> (-10 %)</span>
		</div>
		</div>
		</div></div></form>`))
	require.NoError(t, err)

	assert.Equal(t, 355, record.Number(AttrPrice))
	assert.Equal(t, 394, record.Number(AttrOldPrice))
	assert.Equal(t, 39, record.Number(AttrDiscount))
	assert.Equal(t, 10, record.Number(AttrDiscountPercentage))
	assert.Equal(t, "ATTR1_VALUE", record.Text("attr1_name"))
}
