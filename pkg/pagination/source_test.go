package pagination

import "testing"

func TestParsePage(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{raw: "1", want: 1},
		{raw: "7", want: 7},
		{raw: " 12 ", want: 12},
		{raw: "", want: 1},
		{raw: "0", want: 1},
		{raw: "-4", want: 1},
		{raw: "abc", want: 1},
		{raw: "2.5", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParsePage(tt.raw); got != tt.want {
				t.Errorf("ParsePage(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMemorySource(t *testing.T) {
	src := NewMemorySource(0)
	if got := src.Page(); got != 1 {
		t.Errorf("NewMemorySource(0).Page() = %d, want 1", got)
	}

	src.SetPage(4)
	if got := src.Page(); got != 4 {
		t.Errorf("Page() after SetPage(4) = %d, want 4", got)
	}
}
