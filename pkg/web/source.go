package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Sternrassler/character-browser/pkg/pagination"
	"github.com/go-chi/chi/v5"
)

// PathSource is a navigation source backed by the /page/{page} URL segment.
// SetPage does not touch the request; it records where the browser should
// be redirected.
type PathSource struct {
	raw  string
	page int
}

// NewPathSource reads the current page from the request's {page} parameter.
func NewPathSource(r *http.Request) *PathSource {
	raw := chi.URLParam(r, "page")
	return &PathSource{raw: raw, page: pagination.ParsePage(raw)}
}

// Page implements pagination.Source.
func (s *PathSource) Page() int {
	return s.page
}

// SetPage implements pagination.Source.
func (s *PathSource) SetPage(page int) {
	s.page = page
}

// Moved reports whether the URL does not spell the current page, either
// because navigation changed it or because the segment was not canonical.
func (s *PathSource) Moved() bool {
	return s.raw != strconv.Itoa(s.page)
}

// Location is the canonical URL of the current page.
func (s *PathSource) Location() string {
	return pagePath(s.page)
}

func pagePath(page int) string {
	return fmt.Sprintf("/page/%d", page)
}
