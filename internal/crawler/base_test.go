package crawler

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/listingwatch/internal/listing"
	scrapeerrors "sjsage522/listingwatch/pkg/errors"
)

// TestBaseCrawler tests the base crawler functionality
func TestBaseCrawler(t *testing.T) {
	mockCache := NewMockCacheService()
	recorder := &mockRecorder{}
	crawler := newBaseCrawler("test", mockCache, time.Second)
	crawler.Recorder = recorder

	html := `<html><body>
		<div class="entry">
			<div class="col-2-prod"><a href="/a">Deal 1</a></div>
			<div class="col-3-prod"><div class="pret-produs-listing">20 Lei</div></div>
		</div>
		<div class="entry">
			<div class="col-2-prod"><a href="/b">No price</a></div>
		</div>
		<div class="entry">
			<div class="col-2-prod"><a href="/c">Deal 2</a></div>
			<div class="col-3-prod"><div class="pret-produs-listing">10 Lei</div></div>
		</div>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	normalizer := listing.NewNormalizer("test", "http://example.com", listing.EmagLayout)
	records := crawler.processEntries(doc.Find("div.entry"), normalizer)

	require.Len(t, records, 2, "the entry without a price is skipped")
	assert.Equal(t, "Deal 1", records[0].Name(), "document order is kept")
	assert.Equal(t, "Deal 2", records[1].Name())
	assert.Equal(t, "http://example.com/c", records[1].Link())
	assert.Equal(t, 3, recorder.entries)
	assert.Equal(t, 1, recorder.entryErrors)

	assert.Equal(t, "test", crawler.GetName())
}

func TestFetchWithCache_Blocked(t *testing.T) {
	mockCache := NewMockCacheService()
	crawler := newBaseCrawler("test", mockCache, 500*time.Second)
	crawler.fetch = func(string) (io.Reader, error) {
		t.Fatal("a blocked crawler must not fetch")
		return nil, nil
	}

	mockCache.Set("test_rate_limited", []byte("500"), time.Minute)

	_, err := crawler.fetchWithCache("http://example.com")
	require.Error(t, err)
	assert.True(t, scrapeerrors.IsType(err, scrapeerrors.ErrorTypeRateLimit))
}

func TestFetchWithCache_RateLimited(t *testing.T) {
	mockCache := NewMockCacheService()
	crawler := newBaseCrawler("test", mockCache, 500*time.Second)
	crawler.fetch = func(string) (io.Reader, error) {
		return nil, errors.New("rate limited; retry after 60")
	}

	_, err := crawler.fetchWithCache("http://example.com")
	require.Error(t, err)
	assert.True(t, scrapeerrors.IsType(err, scrapeerrors.ErrorTypeRateLimit))

	value, err := mockCache.Get("test_rate_limited")
	require.NoError(t, err)
	assert.Equal(t, "500", string(value))
}

func TestFetchWithCache_NetworkError(t *testing.T) {
	mockCache := NewMockCacheService()
	crawler := newBaseCrawler("test", mockCache, time.Second)
	crawler.fetch = func(string) (io.Reader, error) {
		return nil, errors.New("connection refused")
	}

	_, err := crawler.fetchWithCache("http://example.com")
	require.Error(t, err)
	assert.True(t, scrapeerrors.IsType(err, scrapeerrors.ErrorTypeNetwork))

	_, err = mockCache.Get("test_rate_limited")
	assert.Error(t, err, "only rate limiting blocks the crawler")
}
