// Package testutil provides testing utilities for the character browser.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockCharacter is a character served by MockGraphQL.
type MockCharacter struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Image   string `json:"image"`
}

// MockResponse defines the behavior for a single page.
type MockResponse struct {
	// StatusCode overrides the HTTP status (default 200).
	StatusCode int
	// Body, when set, is written verbatim instead of a generated payload.
	Body string
	// Errors are reported in the GraphQL errors array.
	Errors []string
	// Delay is applied before responding.
	Delay time.Duration
}

// MockGraphQL is a configurable mock of the characters GraphQL endpoint.
// Pages are served from a fixed dataset split into PageSize chunks.
type MockGraphQL struct {
	server *httptest.Server

	mu        sync.RWMutex
	dataset   []MockCharacter
	pageSize  int
	overrides map[int]MockResponse
	requests  map[int]int
	gate      chan struct{}

	// LastRequestHeader is the header of the most recent request.
	LastRequestHeader http.Header
}

// NewMockGraphQL creates a mock upstream serving count generated characters,
// pageSize per page.
func NewMockGraphQL(count, pageSize int) *MockGraphQL {
	mock := &MockGraphQL{
		dataset:   GenerateCharacters(count),
		pageSize:  pageSize,
		overrides: make(map[int]MockResponse),
		requests:  make(map[int]int),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// GenerateCharacters returns count deterministic characters.
func GenerateCharacters(count int) []MockCharacter {
	out := make([]MockCharacter, count)
	for i := range out {
		species := "Human"
		if i%3 == 2 {
			species = "Alien"
		}
		out[i] = MockCharacter{
			Name:    fmt.Sprintf("Character %d", i+1),
			Species: species,
			Image:   fmt.Sprintf("https://example.com/avatar/%d.jpeg", i+1),
		}
	}
	return out
}

// URL returns the mock server URL.
func (m *MockGraphQL) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockGraphQL) Close() {
	m.mu.Lock()
	if m.gate != nil {
		close(m.gate)
		m.gate = nil
	}
	m.mu.Unlock()
	m.server.Close()
}

// SetResponse overrides the response for one page.
func (m *MockGraphQL) SetResponse(page int, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[page] = resp
}

// ClearResponse removes an override for one page.
func (m *MockGraphQL) ClearResponse(page int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.overrides, page)
}

// Hold makes every request block until Release is called.
func (m *MockGraphQL) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate == nil {
		m.gate = make(chan struct{})
	}
}

// Release unblocks requests held by Hold.
func (m *MockGraphQL) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate != nil {
		close(m.gate)
		m.gate = nil
	}
}

// RequestCount returns the number of requests made for page.
func (m *MockGraphQL) RequestCount(page int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[page]
}

// TotalRequests returns the number of requests made for any page.
func (m *MockGraphQL) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.requests {
		total += n
	}
	return total
}

// TotalPages returns the number of pages in the dataset.
func (m *MockGraphQL) TotalPages() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalPages()
}

func (m *MockGraphQL) totalPages() int {
	if m.pageSize <= 0 {
		return 0
	}
	return (len(m.dataset) + m.pageSize - 1) / m.pageSize
}

func (m *MockGraphQL) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Variables struct {
			Page *int `json:"page"`
		} `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"errors":[{"message":"malformed request"}]}`, http.StatusBadRequest)
		return
	}
	page := 1
	if req.Variables.Page != nil {
		page = *req.Variables.Page
	}

	m.mu.Lock()
	m.requests[page]++
	m.LastRequestHeader = r.Header.Clone()
	override, hasOverride := m.overrides[page]
	gate := m.gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if hasOverride {
		if override.Delay > 0 {
			time.Sleep(override.Delay)
		}
		status := override.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		if override.Body != "" {
			w.WriteHeader(status)
			w.Write([]byte(override.Body))
			return
		}
		if len(override.Errors) > 0 {
			errs := make([]map[string]string, 0, len(override.Errors))
			for _, msg := range override.Errors {
				errs = append(errs, map[string]string{"message": msg})
			}
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"characters": nil}, "errors": errs})
			return
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error": "upstream failure"}`))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(m.pagePayload(page))
}

func (m *MockGraphQL) pagePayload(page int) map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.totalPages()
	results := []MockCharacter{}
	if page >= 1 && page <= total {
		start := (page - 1) * m.pageSize
		end := start + m.pageSize
		if end > len(m.dataset) {
			end = len(m.dataset)
		}
		results = m.dataset[start:end]
	}

	var next, prev any
	if page < total {
		next = page + 1
	}
	if page > 1 && page <= total+1 {
		prev = page - 1
	}

	return map[string]any{
		"data": map[string]any{
			"characters": map[string]any{
				"info": map[string]any{
					"count": len(m.dataset),
					"pages": total,
					"next":  next,
					"prev":  prev,
				},
				"results": results,
			},
		},
	}
}
