package cache

import (
	"time"

	"github.com/Sternrassler/character-browser/pkg/client"
)

// Status is the lifecycle state of a cache entry.
type Status string

const (
	// StatusLoading means an upstream request for the key is in flight.
	StatusLoading Status = "loading"

	// StatusError means the last request for the key failed.
	StatusError Status = "error"

	// StatusReady means the entry holds a successfully fetched page.
	StatusReady Status = "ready"
)

// Entry is the stored state for one query key.
type Entry struct {
	Status Status

	// Page is set when Status is StatusReady.
	Page *client.CharacterPage

	// Err is set when Status is StatusError.
	Err error

	// UpdatedAt is when the entry last changed state.
	UpdatedAt time.Time

	gen uint64
}

// Result is what a query caller observes: the loading flag, the error and
// the data of one key at a point in time.
type Result struct {
	Key     QueryKey
	Loading bool
	Err     error
	Data    *client.CharacterPage
}

// Ready reports whether the result carries data.
func (r Result) Ready() bool {
	return !r.Loading && r.Err == nil && r.Data != nil
}

// Empty reports whether the result resolved to a page without characters.
func (r Result) Empty() bool {
	return !r.Loading && r.Err == nil && r.Data.IsEmpty()
}

// result converts the entry into a caller-facing snapshot.
func (e *Entry) result(key QueryKey) Result {
	if e == nil {
		return Result{Key: key, Loading: true}
	}
	return Result{
		Key:     key,
		Loading: e.Status == StatusLoading,
		Err:     e.Err,
		Data:    e.Page,
	}
}

// StoredPage is a characters page as persisted in the shared Redis store.
type StoredPage struct {
	// Page is the cached response.
	Page *client.CharacterPage `json:"page"`

	// Expires is when the stored page becomes stale.
	Expires time.Time `json:"expires"`

	// CachedAt is when we stored this page.
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired returns true if the stored page has expired.
func (e *StoredPage) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *StoredPage) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
