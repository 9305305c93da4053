package cache

import (
	"fmt"
	"strings"
)

// keyOperation is the namespace of every characters query key.
const keyOperation = "characters"

// QueryKey identifies a distinct characters query. Only the page argument
// takes part in the key, so two requests for the same page share one entry.
type QueryKey struct {
	// Page is the 1-indexed page number.
	Page int
}

// NewQueryKey returns the normalized key for page. Pages below 1 normalize
// to 1, which is what the upstream serves for a missing page argument.
func NewQueryKey(page int) QueryKey {
	if page < 1 {
		page = 1
	}
	return QueryKey{Page: page}
}

// String generates a deterministic cache key string.
// Format: characters:page=N
//
// Example:
//
//	characters:page=2
func (k QueryKey) String() string {
	parts := []string{keyOperation}

	page := k.Page
	if page < 1 {
		page = 1
	}
	parts = append(parts, fmt.Sprintf("page=%d", page))

	return strings.Join(parts, ":")
}
