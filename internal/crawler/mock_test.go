package crawler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	cache map[string][]byte
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, &mockError{message: "cache miss"}
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.cache[key] = value
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	delete(m.cache, key)
	return nil
}

type mockError struct {
	message string
}

func (e *mockError) Error() string {
	return e.message
}

// mockRecorder counts crawl progress
type mockRecorder struct {
	pages       int
	pageErrors  int
	entries     int
	entryErrors int
}

func (r *mockRecorder) PageFetched(source string, err error) {
	r.pages++
	if err != nil {
		r.pageErrors++
	}
}

func (r *mockRecorder) EntryNormalized(source string, err error) {
	r.entries++
	if err != nil {
		r.entryErrors++
	}
}

// mockSite serves fixed HTML per request URI and remembers the requests
type mockSite struct {
	mu       sync.Mutex
	pages    map[string]string
	requests []string
	server   *httptest.Server
}

func newMockSite(pages map[string]string) *mockSite {
	site := &mockSite{pages: pages}
	site.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.requests = append(site.requests, r.URL.RequestURI())
		site.mu.Unlock()

		body, ok := site.pages[r.URL.RequestURI()]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	return site
}

func (s *mockSite) Close() {
	s.server.Close()
}

func (s *mockSite) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}
