package convert

import (
	"testing"

	"fileforge/internal/formats"
)

func TestConvertDocument_GarbageInput(t *testing.T) {
	c := New(DefaultLimits())
	_, err := c.convertDocument([]byte("this is not a pdf at all"), "txt", formats.Options{}, nil)
	if err == nil {
		t.Fatalf("expected error for non-PDF input")
	}
	if err.Error() == "" {
		t.Fatalf("expected a non-empty failure reason")
	}
}

func TestPageWindow(t *testing.T) {
	cases := []struct {
		name       string
		opts       formats.Options
		total      int
		start, end int
	}{
		{"no range selects all", formats.Options{}, 10, 1, 10},
		{"range within document", formats.Options{PageStart: 2, PageEnd: 5}, 10, 2, 5},
		{"end clamped to total", formats.Options{PageStart: 8, PageEnd: 20}, 10, 8, 10},
		{"start beyond total collapses", formats.Options{PageStart: 15, PageEnd: 20}, 10, 10, 10},
		{"single page", formats.Options{PageStart: 3, PageEnd: 3}, 10, 3, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := pageWindow(tc.opts, tc.total)
			if start != tc.start || end != tc.end {
				t.Fatalf("pageWindow = %d-%d, want %d-%d", start, end, tc.start, tc.end)
			}
		})
	}
}
