package pagination

import (
	"errors"
	"fmt"

	"github.com/Sternrassler/character-browser/pkg/cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrInvalidPage is returned when navigating to a page below 1.
var ErrInvalidPage = errors.New("invalid page")

// QueryCache is the part of the characters query cache the Controller uses.
type QueryCache interface {
	Query(key cache.QueryKey) cache.Result
	Prefetch(key cache.QueryKey)
	TotalPages() int
}

// Controller implements page navigation over a Source.
type Controller struct {
	source Source
	cache  QueryCache
	logger zerolog.Logger
}

// NewController creates a controller reading and writing the current page
// through source.
func NewController(source Source, queryCache QueryCache) *Controller {
	if source == nil {
		panic("source cannot be nil")
	}
	if queryCache == nil {
		panic("query cache cannot be nil")
	}
	return &Controller{
		source: source,
		cache:  queryCache,
		logger: log.With().Str("component", "page-controller").Logger(),
	}
}

// CurrentPage returns the page held by the source.
func (c *Controller) CurrentPage() int {
	return normalizePage(c.source.Page())
}

// TotalPages returns the known page count, or 0 while unknown.
func (c *Controller) TotalPages() int {
	return c.cache.TotalPages()
}

// Result queries the cache for the current page.
func (c *Controller) Result() cache.Result {
	return c.cache.Query(cache.NewQueryKey(c.CurrentPage()))
}

// SetCurrentPage navigates to page. Pages below 1 are rejected; pages past
// the last known page are clamped to it. While the page count is unknown any
// positive page is accepted.
func (c *Controller) SetCurrentPage(page int) error {
	if page < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	target := c.clamp(page)
	if target != page {
		c.logger.Debug().
			Int("requested", page).
			Int("page", target).
			Msg("Clamped navigation target")
	}
	c.source.SetPage(target)
	return nil
}

// OnHoverNext prefetches the page Next would navigate to, without changing
// the displayed page. It returns whether a prefetch was issued: nothing is
// prefetched while Next is disabled.
func (c *Controller) OnHoverNext() bool {
	current := c.CurrentPage()
	next := c.clamp(current + 1)
	if next == current || !c.CanNext(false) {
		return false
	}

	c.logger.Debug().
		Int("page", current).
		Int("prefetch", next).
		Msg("Prefetching next page")
	c.cache.Prefetch(cache.NewQueryKey(next))
	return true
}

// OnClickNext navigates to the next page, clamped to the last page.
func (c *Controller) OnClickNext() error {
	return c.SetCurrentPage(c.clamp(c.CurrentPage() + 1))
}

// OnClickPrevious navigates to the previous page, never below page 1.
func (c *Controller) OnClickPrevious() error {
	target := c.CurrentPage() - 1
	if target < 1 {
		target = 1
	}
	return c.SetCurrentPage(c.clamp(target))
}

// CanPrevious reports whether the Previous control is enabled.
func (c *Controller) CanPrevious(loading bool) bool {
	return !loading && c.CurrentPage() > 1
}

// CanNext reports whether the Next control is enabled. Next stays disabled
// until the page count is known and once the current page reaches it.
func (c *Controller) CanNext(loading bool) bool {
	return !loading && c.CurrentPage() < c.TotalPages()
}

// clamp bounds page to [1, totalPages] when totalPages is known.
func (c *Controller) clamp(page int) int {
	if total := c.TotalPages(); total > 0 && page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}
