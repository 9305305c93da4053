// Package tui is the terminal front-end of the character browser.
package tui

import (
	"context"
	"strings"

	"github.com/Sternrassler/character-browser/pkg/cache"
	"github.com/Sternrassler/character-browser/pkg/logging"
	"github.com/Sternrassler/character-browser/pkg/pagination"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// Cache is the query cache as used by the terminal front-end.
type Cache interface {
	pagination.QueryCache
	Refetch(key cache.QueryKey)
	Subscribe(key cache.QueryKey, fn func(cache.Result)) (cancel func())
}

// updateBuffer bounds pending change signals. Signals are only hints to
// re-query, so dropping one while others are queued loses nothing.
const updateBuffer = 16

// pageUpdatedMsg signals that the entry for page changed state.
type pageUpdatedMsg struct {
	page int
}

type focus int

const (
	focusNone focus = iota
	focusNext
)

// Model is the bubbletea model of the browser.
type Model struct {
	cache  Cache
	source *pagination.MemorySource
	ctrl   *pagination.Controller
	styles Styles
	logger zerolog.Logger

	updates     chan int
	unsubscribe func()
	subscribed  int

	view  pagination.View
	table table.Model
	focus focus
	width int
}

// New creates a model showing page.
func New(c Cache, page int) Model {
	source := pagination.NewMemorySource(page)
	m := Model{
		cache:   c,
		source:  source,
		ctrl:    pagination.NewController(source, c),
		styles:  DefaultStyles(),
		logger:  logging.NewLogger("tui"),
		updates: make(chan int, updateBuffer),
		table: table.New(
			table.WithColumns(columns(100)),
			table.WithHeight(pagination.SkeletonRows),
			table.WithFocused(true),
		),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pageUpdatedMsg:
		if msg.page == m.ctrl.CurrentPage() {
			m.refresh()
		}
		return m, waitForUpdate(m.updates)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetColumns(columns(msg.Width))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Close()
			return m, tea.Quit
		case "right", "l":
			m.next()
			return m, nil
		case "left", "h":
			if m.view.PreviousEnabled {
				m.navigate(m.ctrl.OnClickPrevious())
			}
			return m, nil
		case "tab":
			m.toggleFocus()
			return m, nil
		case "enter":
			if m.focus == focusNext {
				m.next()
			}
			return m, nil
		case "r":
			if m.view.State == pagination.StateError {
				m.cache.Refetch(cache.NewQueryKey(m.ctrl.CurrentPage()))
				m.refresh()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Current returns the render state of the displayed page.
func (m Model) Current() pagination.View {
	return m.view
}

// Close cancels the cache subscription.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Model) next() {
	if m.view.NextEnabled {
		m.navigate(m.ctrl.OnClickNext())
	}
}

// toggleFocus moves focus onto Next, which prefetches the page it leads to,
// or off it again.
func (m *Model) toggleFocus() {
	if m.focus == focusNext {
		m.focus = focusNone
		return
	}
	m.focus = focusNext
	if m.view.NextEnabled {
		m.ctrl.OnHoverNext()
	}
}

func (m *Model) navigate(err error) {
	if err != nil {
		m.logger.Warn().Err(err).Msg("Navigation rejected")
		return
	}
	m.refresh()
}

// refresh re-reads the current page from the cache. The subscription is
// registered before querying so no transition is missed.
func (m *Model) refresh() {
	page := m.ctrl.CurrentPage()
	if m.unsubscribe == nil || m.subscribed != page {
		m.Close()
		updates := m.updates
		m.unsubscribe = m.cache.Subscribe(cache.NewQueryKey(page), func(res cache.Result) {
			select {
			case updates <- res.Key.Page:
			default:
			}
		})
		m.subscribed = page
	}

	m.view = m.ctrl.View(m.ctrl.Result())
	m.table.SetRows(rows(m.view))
	m.table.GotoTop()
}

func waitForUpdate(ch <-chan int) tea.Cmd {
	return func() tea.Msg {
		return pageUpdatedMsg{page: <-ch}
	}
}

func columns(width int) []table.Column {
	if width < 60 {
		width = 60
	}
	name := width * 3 / 10
	species := width * 2 / 10
	image := width - name - species - 8
	widths := []int{name, species, image}

	cols := make([]table.Column, len(pagination.Columns))
	for i, c := range pagination.Columns {
		cols[i] = table.Column{Title: c.Header, Width: widths[i]}
	}
	return cols
}

func rows(v pagination.View) []table.Row {
	switch v.State {
	case pagination.StateLoading:
		out := make([]table.Row, pagination.SkeletonRows)
		for i := range out {
			out[i] = table.Row{strings.Repeat("░", 16), strings.Repeat("░", 10), strings.Repeat("░", 24)}
		}
		return out
	case pagination.StateReady:
		out := make([]table.Row, 0, len(v.Items))
		for _, c := range v.Items {
			out = append(out, table.Row{c.Name, c.Species, c.ImageURL})
		}
		return out
	default:
		return nil
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Rick and Morty Characters"))
	b.WriteString("\n")

	switch m.view.State {
	case pagination.StateError:
		b.WriteString(m.styles.Notice.Render(
			m.styles.Error.Render(pagination.ErrorTitle) + "\n\n" +
				m.view.ErrorMessage + "\n\n" +
				m.styles.Focused.Render("[r] "+pagination.RetryLabel)))
	case pagination.StateEmpty:
		b.WriteString(m.styles.Notice.Render(
			lipgloss.NewStyle().Bold(true).Render(pagination.EmptyTitle) + "\n\n" +
				pagination.EmptyDetail))
	default:
		b.WriteString(m.table.View())
		b.WriteString("\n")
		b.WriteString(m.pagination())
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("←/h previous • →/l next • tab focus next • r retry • q quit"))
	return b.String()
}

func (m Model) pagination() string {
	prev := m.styles.Disabled.Render("Previous")
	if m.view.PreviousEnabled {
		prev = m.styles.Control.Render("Previous")
	}

	next := m.styles.Disabled.Render("Next")
	switch {
	case m.view.NextEnabled && m.focus == focusNext:
		next = m.styles.Focused.Render("Next")
	case m.view.NextEnabled:
		next = m.styles.Control.Render("Next")
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, prev, m.styles.Label.Render(m.view.Label), next)
}

// Run starts the terminal browser on page and blocks until the user quits
// or ctx is canceled.
func Run(ctx context.Context, c Cache, page int, opts ...tea.ProgramOption) error {
	m := New(c, page)
	defer m.Close()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	}
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
