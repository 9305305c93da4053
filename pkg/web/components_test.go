package web

import (
	"context"
	"strings"
	"testing"

	"github.com/Sternrassler/character-browser/pkg/client"
	"github.com/Sternrassler/character-browser/pkg/pagination"
)

func render(t *testing.T, v pagination.View) string {
	t.Helper()
	var b strings.Builder
	if err := Content(v).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	return b.String()
}

func TestContent_States(t *testing.T) {
	tests := []struct {
		name    string
		view    pagination.View
		want    []string
		notWant []string
	}{
		{
			name:    "loading",
			view:    pagination.View{State: pagination.StateLoading, Page: 4, Label: "Loading..."},
			want:    []string{`data-state="loading"`, `data-src="/page/4/content"`, "Loading..."},
			notWant: []string{"character-row", "Error Loading Characters"},
		},
		{
			name:    "error",
			view:    pagination.View{State: pagination.StateError, Page: 2, ErrorMessage: "server error"},
			want:    []string{"Error Loading Characters", "<p>server error</p>", `action="/page/2/retry"`, "Try Again"},
			notWant: []string{"<table", "pagination"},
		},
		{
			name:    "empty",
			view:    pagination.View{State: pagination.StateEmpty, Page: 9},
			want:    []string{"No Characters Found", "Please try again later."},
			notWant: []string{"<table", "pagination", "Try Again"},
		},
		{
			name: "ready",
			view: pagination.View{
				State:           pagination.StateReady,
				Page:            2,
				TotalPages:      5,
				Label:           "Page 2 of 5",
				PreviousEnabled: true,
				NextEnabled:     true,
				Items:           []client.Character{{Name: "Rick Sanchez", Species: "Human", ImageURL: "https://example.com/rick.jpg"}},
			},
			want: []string{
				"<td>Rick Sanchez</td><td>Human</td>",
				`href="/page/2/previous"`,
				`data-prefetch="/prefetch/2"`,
				"Page 2 of 5",
			},
			notWant: []string{"skeleton-row", "disabled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, tt.view)
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q", s)
				}
			}
		})
	}
}

func TestContent_Escapes(t *testing.T) {
	out := render(t, pagination.View{
		State: pagination.StateReady,
		Page:  1,
		Items: []client.Character{{
			Name:     `<script>alert("x")</script>`,
			Species:  "Cronenberg & Co",
			ImageURL: "javascript:alert(1)",
		}},
	})

	if strings.Contains(out, "<script>alert") {
		t.Error("character name was not escaped")
	}
	if !strings.Contains(out, "Cronenberg &amp; Co") {
		t.Error("species was not escaped")
	}
	if strings.Contains(out, `src="javascript:`) {
		t.Error("unsafe image URL was not sanitized")
	}
}

func TestPage_Document(t *testing.T) {
	var b strings.Builder
	view := pagination.View{State: pagination.StateEmpty, Page: 1}
	if err := Page(view).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	out := b.String()

	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Error("document should start with a doctype")
	}
	if !strings.Contains(out, "<h1>Rick and Morty Characters</h1>") {
		t.Error("missing heading")
	}
	if !strings.Contains(out, `<main id="content"><section class="notice" data-testid="empty"`) {
		t.Error("content should be rendered inside main")
	}
}
