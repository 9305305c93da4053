package pagination

import (
	"errors"
	"testing"

	"github.com/Sternrassler/character-browser/pkg/cache"
	"github.com/Sternrassler/character-browser/pkg/client"
)

// stubCache records prefetches and serves canned results.
type stubCache struct {
	totalPages int
	results    map[int]cache.Result
	prefetched []int
	queried    []int
}

func newStubCache(totalPages int) *stubCache {
	return &stubCache{
		totalPages: totalPages,
		results:    make(map[int]cache.Result),
	}
}

func (s *stubCache) Query(key cache.QueryKey) cache.Result {
	s.queried = append(s.queried, key.Page)
	if res, ok := s.results[key.Page]; ok {
		return res
	}
	return cache.Result{Key: key, Loading: true}
}

func (s *stubCache) Prefetch(key cache.QueryKey) {
	s.prefetched = append(s.prefetched, key.Page)
}

func (s *stubCache) TotalPages() int {
	return s.totalPages
}

func intPtr(n int) *int { return &n }

// sampleResult mirrors {count:100, pages:5, next:2, prev:null} with two rows.
func sampleResult() cache.Result {
	return cache.Result{
		Key: cache.NewQueryKey(1),
		Data: &client.CharacterPage{
			Items: []client.Character{
				{Name: "Rick Sanchez", Species: "Human", ImageURL: "https://example.com/rick.jpg"},
				{Name: "Morty Smith", Species: "Human", ImageURL: "https://example.com/morty.jpg"},
			},
			TotalCount: 100,
			TotalPages: 5,
			Next:       intPtr(2),
		},
	}
}

func TestNewController_Panics(t *testing.T) {
	tests := []struct {
		name   string
		source Source
		cache  QueryCache
	}{
		{name: "nil source", source: nil, cache: newStubCache(1)},
		{name: "nil cache", source: NewMemorySource(1), cache: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("NewController should panic")
				}
			}()
			NewController(tt.source, tt.cache)
		})
	}
}

func TestSetCurrentPage(t *testing.T) {
	tests := []struct {
		name       string
		totalPages int
		target     int
		wantPage   int
		wantErr    error
	}{
		{name: "within range", totalPages: 5, target: 3, wantPage: 3},
		{name: "clamped to last page", totalPages: 5, target: 9, wantPage: 5},
		{name: "unknown total accepts any positive page", totalPages: 0, target: 42, wantPage: 42},
		{name: "zero rejected", totalPages: 5, target: 0, wantPage: 2, wantErr: ErrInvalidPage},
		{name: "negative rejected", totalPages: 0, target: -1, wantPage: 2, wantErr: ErrInvalidPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewMemorySource(2)
			ctrl := NewController(src, newStubCache(tt.totalPages))

			err := ctrl.SetCurrentPage(tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetCurrentPage(%d) error = %v, want %v", tt.target, err, tt.wantErr)
			}
			if got := src.Page(); got != tt.wantPage {
				t.Errorf("page = %d, want %d", got, tt.wantPage)
			}
		})
	}
}

func TestOnClickNextAndPrevious_Clamped(t *testing.T) {
	tests := []struct {
		name       string
		start      int
		totalPages int
		click      func(*Controller) error
		wantPage   int
	}{
		{name: "next from first", start: 1, totalPages: 5, click: (*Controller).OnClickNext, wantPage: 2},
		{name: "next at last stays", start: 5, totalPages: 5, click: (*Controller).OnClickNext, wantPage: 5},
		{name: "next past last clamps back", start: 8, totalPages: 5, click: (*Controller).OnClickNext, wantPage: 5},
		{name: "next with unknown total", start: 3, totalPages: 0, click: (*Controller).OnClickNext, wantPage: 4},
		{name: "previous from middle", start: 3, totalPages: 5, click: (*Controller).OnClickPrevious, wantPage: 2},
		{name: "previous at first stays", start: 1, totalPages: 5, click: (*Controller).OnClickPrevious, wantPage: 1},
		{name: "previous past last clamps", start: 9, totalPages: 5, click: (*Controller).OnClickPrevious, wantPage: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewMemorySource(tt.start)
			ctrl := NewController(src, newStubCache(tt.totalPages))

			if err := tt.click(ctrl); err != nil {
				t.Fatalf("click failed: %v", err)
			}
			if got := src.Page(); got != tt.wantPage {
				t.Errorf("page = %d, want %d", got, tt.wantPage)
			}

			// Clicking twice more never leaves [1, total].
			tt.click(ctrl)
			tt.click(ctrl)
			if got := src.Page(); got < 1 || (tt.totalPages > 0 && got > tt.totalPages) {
				t.Errorf("page %d escaped [1, %d]", got, tt.totalPages)
			}
		})
	}
}

func TestOnHoverNext(t *testing.T) {
	tests := []struct {
		name         string
		start        int
		totalPages   int
		wantIssued   bool
		wantPrefetch []int
	}{
		{name: "first page prefetches second", start: 1, totalPages: 5, wantIssued: true, wantPrefetch: []int{2}},
		{name: "middle page", start: 3, totalPages: 5, wantIssued: true, wantPrefetch: []int{4}},
		{name: "last page does nothing", start: 5, totalPages: 5, wantIssued: false},
		{name: "beyond last page does nothing", start: 7, totalPages: 5, wantIssued: false},
		{name: "unknown total does nothing", start: 1, totalPages: 0, wantIssued: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewMemorySource(tt.start)
			stub := newStubCache(tt.totalPages)
			ctrl := NewController(src, stub)

			if got := ctrl.OnHoverNext(); got != tt.wantIssued {
				t.Errorf("OnHoverNext() = %v, want %v", got, tt.wantIssued)
			}
			if len(stub.prefetched) != len(tt.wantPrefetch) {
				t.Fatalf("prefetched = %v, want %v", stub.prefetched, tt.wantPrefetch)
			}
			for i := range tt.wantPrefetch {
				if stub.prefetched[i] != tt.wantPrefetch[i] {
					t.Errorf("prefetched = %v, want %v", stub.prefetched, tt.wantPrefetch)
				}
			}
			if got := src.Page(); got != tt.start {
				t.Errorf("hover changed the page to %d", got)
			}
		})
	}
}

func TestOnHoverNext_OncePerHover(t *testing.T) {
	stub := newStubCache(5)
	ctrl := NewController(NewMemorySource(1), stub)

	ctrl.OnHoverNext()
	if len(stub.prefetched) != 1 {
		t.Fatalf("prefetches after one hover = %d, want 1", len(stub.prefetched))
	}
	ctrl.OnHoverNext()
	if len(stub.prefetched) != 2 {
		t.Errorf("prefetches after two hovers = %d, want 2", len(stub.prefetched))
	}
}

func TestControls_Enabled(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		totalPages   int
		loading      bool
		wantPrevious bool
		wantNext     bool
	}{
		{name: "first page", page: 1, totalPages: 5, wantPrevious: false, wantNext: true},
		{name: "middle page", page: 3, totalPages: 5, wantPrevious: true, wantNext: true},
		{name: "last page", page: 5, totalPages: 5, wantPrevious: true, wantNext: false},
		{name: "beyond last page", page: 6, totalPages: 5, wantPrevious: true, wantNext: false},
		{name: "loading disables both", page: 3, totalPages: 5, loading: true},
		{name: "unknown total disables next", page: 2, totalPages: 0, wantPrevious: true, wantNext: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewController(NewMemorySource(tt.page), newStubCache(tt.totalPages))

			if got := ctrl.CanPrevious(tt.loading); got != tt.wantPrevious {
				t.Errorf("CanPrevious(%v) = %v, want %v", tt.loading, got, tt.wantPrevious)
			}
			if got := ctrl.CanNext(tt.loading); got != tt.wantNext {
				t.Errorf("CanNext(%v) = %v, want %v", tt.loading, got, tt.wantNext)
			}
		})
	}
}

func TestResult_QueriesCurrentPage(t *testing.T) {
	stub := newStubCache(5)
	src := NewMemorySource(1)
	ctrl := NewController(src, stub)

	ctrl.Result()
	ctrl.OnClickNext()
	ctrl.Result()

	if len(stub.queried) != 2 || stub.queried[0] != 1 || stub.queried[1] != 2 {
		t.Errorf("queried = %v, want [1 2]", stub.queried)
	}
}
