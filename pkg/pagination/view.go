package pagination

import (
	"fmt"

	"github.com/Sternrassler/character-browser/pkg/cache"
	"github.com/Sternrassler/character-browser/pkg/client"
)

// SkeletonRows is the number of placeholder rows shown while loading.
const SkeletonRows = 20

// State selects which of the mutually exclusive views is rendered.
type State string

const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateEmpty   State = "empty"
	StateReady   State = "ready"
)

// Column describes one column of the characters table.
type Column struct {
	ID     string
	Header string
}

// Columns are the table columns in display order.
var Columns = []Column{
	{ID: "name", Header: "Name"},
	{ID: "species", Header: "Species"},
	{ID: "image", Header: "Image"},
}

// Headings shown by the error and empty views.
const (
	ErrorTitle  = "Error Loading Characters"
	EmptyTitle  = "No Characters Found"
	EmptyDetail = "There are no characters available to display at the moment. Please try again later."
	RetryLabel  = "Try Again"
)

// View is everything a front-end needs to render the current page.
type View struct {
	State      State
	Page       int
	TotalPages int

	// Label is "Loading..." while loading, "Page X of Y" otherwise.
	Label string

	PreviousEnabled bool
	NextEnabled     bool

	// Items are the rows in server order (StateReady only).
	Items []client.Character

	// ErrorMessage is the underlying error text (StateError only).
	ErrorMessage string
}

// View builds the render state for res, which should be the result for the
// controller's current page.
func (c *Controller) View(res cache.Result) View {
	v := View{
		Page:       c.CurrentPage(),
		TotalPages: c.TotalPages(),
	}
	if res.Data != nil && res.Data.TotalPages > 0 {
		v.TotalPages = res.Data.TotalPages
	}

	switch {
	case res.Loading:
		v.State = StateLoading
		v.Label = "Loading..."
		return v
	case res.Err != nil:
		v.State = StateError
		v.ErrorMessage = res.Err.Error()
	case res.Data.IsEmpty():
		v.State = StateEmpty
	default:
		v.State = StateReady
		v.Items = res.Data.Items
	}

	v.Label = fmt.Sprintf("Page %d of %d", v.Page, v.TotalPages)
	v.PreviousEnabled = c.CanPrevious(false)
	v.NextEnabled = c.CanNext(false)
	return v
}
