package pagination

import (
	"errors"
	"testing"

	"github.com/Sternrassler/character-browser/pkg/cache"
	"github.com/Sternrassler/character-browser/pkg/client"
)

func TestView_Ready(t *testing.T) {
	ctrl := NewController(NewMemorySource(1), newStubCache(5))

	v := ctrl.View(sampleResult())

	if v.State != StateReady {
		t.Fatalf("State = %q, want %q", v.State, StateReady)
	}
	if v.Label != "Page 1 of 5" {
		t.Errorf("Label = %q, want %q", v.Label, "Page 1 of 5")
	}
	if !v.NextEnabled {
		t.Error("Next should be enabled on page 1 of 5")
	}
	if v.PreviousEnabled {
		t.Error("Previous should be disabled on page 1")
	}
	if len(v.Items) != 2 || v.Items[0].Name != "Rick Sanchez" || v.Items[1].Name != "Morty Smith" {
		t.Errorf("Items = %+v, want Rick then Morty", v.Items)
	}
}

func TestView_Loading(t *testing.T) {
	ctrl := NewController(NewMemorySource(3), newStubCache(5))

	v := ctrl.View(cache.Result{Key: cache.NewQueryKey(3), Loading: true})

	if v.State != StateLoading {
		t.Fatalf("State = %q, want %q", v.State, StateLoading)
	}
	if v.Label != "Loading..." {
		t.Errorf("Label = %q, want %q", v.Label, "Loading...")
	}
	if v.NextEnabled || v.PreviousEnabled {
		t.Error("both controls should be disabled while loading")
	}
	if len(v.Items) != 0 {
		t.Errorf("Items = %d, want none while loading", len(v.Items))
	}
}

func TestView_Error(t *testing.T) {
	ctrl := NewController(NewMemorySource(1), newStubCache(0))

	v := ctrl.View(cache.Result{Key: cache.NewQueryKey(1), Err: errors.New("Failed to fetch characters")})

	if v.State != StateError {
		t.Fatalf("State = %q, want %q", v.State, StateError)
	}
	if v.ErrorMessage != "Failed to fetch characters" {
		t.Errorf("ErrorMessage = %q", v.ErrorMessage)
	}
}

func TestView_Empty(t *testing.T) {
	ctrl := NewController(NewMemorySource(1), newStubCache(0))

	v := ctrl.View(cache.Result{
		Key:  cache.NewQueryKey(1),
		Data: &client.CharacterPage{Items: []client.Character{}},
	})

	if v.State != StateEmpty {
		t.Fatalf("State = %q, want %q", v.State, StateEmpty)
	}
	if len(v.Items) != 0 {
		t.Error("empty view must not carry rows")
	}
}

func TestView_TotalPagesFromData(t *testing.T) {
	// The cache has not learned the count yet, the result carries it.
	ctrl := NewController(NewMemorySource(2), newStubCache(0))

	res := sampleResult()
	res.Key = cache.NewQueryKey(2)
	v := ctrl.View(res)

	if v.Label != "Page 2 of 5" {
		t.Errorf("Label = %q, want %q", v.Label, "Page 2 of 5")
	}
}

func TestColumns(t *testing.T) {
	want := []string{"name", "species", "image"}
	if len(Columns) != len(want) {
		t.Fatalf("len(Columns) = %d, want %d", len(Columns), len(want))
	}
	for i, id := range want {
		if Columns[i].ID != id {
			t.Errorf("Columns[%d].ID = %q, want %q", i, Columns[i].ID, id)
		}
	}
}
