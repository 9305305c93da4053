package web

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Sternrassler/character-browser/pkg/client"
	"github.com/Sternrassler/character-browser/pkg/pagination"
	"github.com/a-h/templ"
)

// Title is the page heading.
const Title = "Rick and Morty Characters"

const stylesheet = `body{font-family:system-ui,sans-serif;margin:0 auto 20px;width:1000px}
h1{text-align:center;font-size:2.25rem;margin:2rem 0 5rem}
table{width:100%;border-collapse:collapse;border:1px solid #e5e7eb}
th,td{text-align:left;padding:1rem;border-bottom:1px solid #e5e7eb}
img{width:5rem;height:5rem;object-fit:cover;border-radius:.375rem}
.skeleton{background:#e5e7eb;border-radius:.25rem;animation:pulse 2s infinite}
.skeleton.text{height:1rem;width:8rem}.skeleton.image{height:5rem;width:5rem}
@keyframes pulse{50%{opacity:.5}}
nav{display:flex;align-items:center;justify-content:space-between;padding:1rem .5rem}
a.control,button{font:inherit;color:inherit;text-decoration:none;background:none;border:0;cursor:pointer}
button:disabled{opacity:.5;cursor:default}
.notice{display:flex;flex-direction:column;align-items:center;padding:3rem;background:#f9fafb;border:1px solid #e5e7eb;border-radius:.5rem;min-height:600px}
.notice p{max-width:28rem;text-align:center}
.notice button{padding:.5rem 1rem;background:#ef4444;color:#fff;border-radius:.375rem}`

// script loads pending fragments and reports hovers on the Next control.
const script = `(function(){
function load(){var s=document.querySelector('[data-src]');if(!s)return;
fetch(s.getAttribute('data-src')).then(function(r){return r.text()}).then(function(h){document.getElementById('content').innerHTML=h;load()})}
document.addEventListener('mouseenter',function(e){var t=e.target;
if(t.getAttribute&&t.getAttribute('data-prefetch')){fetch(t.getAttribute('data-prefetch'),{method:'POST'}).catch(function(){})}},true);
load()})();`

// Page renders the full document around the current page's content.
func Page(v pagination.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		fmt.Fprintf(&b, `<title>%s</title><style>%s</style></head><body>`, templ.EscapeString(Title), stylesheet)
		fmt.Fprintf(&b, `<h1>%s</h1><main id="content">`, templ.EscapeString(Title))
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := Content(v).Render(ctx, w); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, `</main><script>%s</script></body></html>`, script)
		return err
	})
}

// Content renders exactly one of the loading, error, empty or ready views.
func Content(v pagination.View) templ.Component {
	switch v.State {
	case pagination.StateLoading:
		return loadingView(v)
	case pagination.StateError:
		return errorView(v)
	case pagination.StateEmpty:
		return emptyView()
	default:
		return readyView(v)
	}
}

func loadingView(v pagination.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<section data-testid="characters" data-state="loading" data-src="%s/content">`,
			templ.EscapeString(pagePath(v.Page)))
		b.WriteString(`<table>`)
		writeHeader(&b)
		b.WriteString(`<tbody>`)
		for range pagination.SkeletonRows {
			b.WriteString(`<tr data-testid="skeleton-row">` +
				`<td><div class="skeleton text"></div></td>` +
				`<td><div class="skeleton text"></div></td>` +
				`<td><div class="skeleton image"></div></td></tr>`)
		}
		b.WriteString(`</tbody></table>`)
		writePagination(&b, v)
		b.WriteString(`</section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func readyView(v pagination.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section data-testid="characters" data-state="ready"><table>`)
		writeHeader(&b)
		b.WriteString(`<tbody>`)
		for _, c := range v.Items {
			writeRow(&b, c)
		}
		b.WriteString(`</tbody></table>`)
		writePagination(&b, v)
		b.WriteString(`</section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func errorView(v pagination.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<section class="notice" data-testid="error" data-state="error" role="alert">`+
				`<h3>%s</h3><p>%s</p>`+
				`<form method="post" action="%s/retry"><button type="submit" data-testid="retry-button">%s</button></form>`+
				`</section>`,
			templ.EscapeString(pagination.ErrorTitle),
			templ.EscapeString(v.ErrorMessage),
			templ.EscapeString(pagePath(v.Page)),
			templ.EscapeString(pagination.RetryLabel),
		)
		return err
	})
}

func emptyView() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<section class="notice" data-testid="empty" data-state="empty"><h3>%s</h3><p>%s</p></section>`,
			templ.EscapeString(pagination.EmptyTitle),
			templ.EscapeString(pagination.EmptyDetail),
		)
		return err
	})
}

func writeHeader(b *strings.Builder) {
	b.WriteString(`<thead><tr>`)
	for _, col := range pagination.Columns {
		fmt.Fprintf(b, `<th data-column="%s">%s</th>`, col.ID, templ.EscapeString(col.Header))
	}
	b.WriteString(`</tr></thead>`)
}

func writeRow(b *strings.Builder, c client.Character) {
	fmt.Fprintf(b,
		`<tr data-testid="character-row"><td>%s</td><td>%s</td><td><img src="%s" alt="%s"></td></tr>`,
		templ.EscapeString(c.Name),
		templ.EscapeString(c.Species),
		templ.EscapeString(string(templ.URL(c.ImageURL))),
		templ.EscapeString(c.Name),
	)
}

func writePagination(b *strings.Builder, v pagination.View) {
	b.WriteString(`<nav data-testid="pagination">`)
	if v.PreviousEnabled {
		fmt.Fprintf(b, `<a class="control" href="%s/previous" data-testid="previous-button">Previous</a>`, pagePath(v.Page))
	} else {
		b.WriteString(`<button type="button" disabled data-testid="previous-button">Previous</button>`)
	}
	fmt.Fprintf(b, `<span data-testid="page-label">%s</span>`, templ.EscapeString(v.Label))
	if v.NextEnabled {
		fmt.Fprintf(b, `<a class="control" href="%s/next" data-prefetch="/prefetch/%d" data-testid="next-button">Next</a>`,
			pagePath(v.Page), v.Page)
	} else {
		b.WriteString(`<button type="button" disabled data-testid="next-button">Next</button>`)
	}
	b.WriteString(`</nav>`)
}
