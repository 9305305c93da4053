package pagination

import (
	"strconv"
	"strings"
	"sync"
)

// Source is the navigation source of truth for the current page.
type Source interface {
	// Page returns the current page as stored by the source. Values below 1
	// are read as page 1 by the Controller.
	Page() int

	// SetPage records a new current page.
	SetPage(page int)
}

// MemorySource keeps the current page in memory.
type MemorySource struct {
	mu   sync.RWMutex
	page int
}

// NewMemorySource creates a source starting at page.
func NewMemorySource(page int) *MemorySource {
	return &MemorySource{page: normalizePage(page)}
}

// Page implements Source.
func (s *MemorySource) Page() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// SetPage implements Source.
func (s *MemorySource) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
}

// ParsePage converts a raw page value (URL segment, query parameter, flag)
// into a page number. Anything that is not a positive integer reads as 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return normalizePage(n)
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
