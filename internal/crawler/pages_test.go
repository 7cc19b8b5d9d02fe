package crawler

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func document(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestPageCount(t *testing.T) {
	testCases := []struct {
		name     string
		html     string
		expected int
	}{
		{
			name:     "no holder",
			html:     `<div something="else">caca</div>`,
			expected: 0,
		},
		{
			name: "single page",
			html: `<div class="holder-pagini-2">
				<span class="pagini-2">Pagini:</span>
				<span class="pagini-options-2">1</span>
				</div>`,
			expected: 1,
		},
		{
			name: "few pages",
			html: `<div class="holder-pagini-2">
				<span class="pagini-2">Pagini:</span>
				<span class="pagini-options-2">1</span>
				<a class="pagini-options-2" href="/resigilate/p2">2</a>
				<a class="pagini-options-2" href="/resigilate/p3">3</a>
				</div>`,
			expected: 3,
		},
		{
			name: "many pages with category",
			html: `<div class="holder-pagini-2">
				<a class="pagini-options-2" href="/resigilate/p2?catid=7">2</a>
				<span>...</span>
				<a class="pagini-options-2" href="/resigilate/p9?catid=7">9</a>
				</div>`,
			expected: 9,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pages, err := PageCount(document(t, tc.html), "resigilate")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, pages)
		})
	}
}

func TestPageCount_UnexpectedLink(t *testing.T) {
	html := `<div class="holder-pagini-2">
		<a class="pagini-options-2" href="/lichidari/p4">4</a>
		</div>`

	_, err := PageCount(document(t, html), "resigilate")
	assert.Error(t, err)
}
