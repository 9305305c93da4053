// Package pagination owns which characters page is displayed and how the
// user moves between pages.
//
// The current page lives in a Source, either an in-memory counter
// (MemorySource) or a URL path segment provided by the web front-end. The
// Controller reads and writes the page through that Source only, so the
// navigation rules are the same for every front-end:
//
//   - Navigation targets are clamped to [1, totalPages] once totalPages is
//     known (learned from the first Ready page)
//   - Previous is disabled on page 1, Next once the current page reaches
//     totalPages, and both while the current page is loading
//   - Hovering Next prefetches the next page through the query cache
//     without changing what is displayed
//
// Example usage:
//
//	src := pagination.NewMemorySource(1)
//	ctrl := pagination.NewController(src, queryCache)
//
//	view := ctrl.View(ctrl.Result())
//	ctrl.OnHoverNext()  // prefetch page 2
//	ctrl.OnClickNext()  // navigate to page 2
//
// The Warmer prefetches a leading range of pages with a bounded worker
// pool so the first clicks after startup never wait on the upstream.
package pagination
