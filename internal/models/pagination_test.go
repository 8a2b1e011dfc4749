package models

import "testing"

func TestClampPage(t *testing.T) {
	cases := []struct {
		name  string
		page  int
		count int
		size  int
		want  int
	}{
		{"zero clamps to first", 0, 100, 20, 1},
		{"negative clamps to first", -5, 100, 20, 1},
		{"past the end clamps to first", 99, 100, 20, 1},
		{"last page stays", 5, 100, 20, 5},
		{"middle page stays", 3, 100, 20, 3},
		{"empty listing", 7, 0, 20, 1},
		{"partial last page", 3, 41, 20, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClampPage(tc.page, tc.count, tc.size); got != tc.want {
				t.Errorf("ClampPage(%d, %d, %d) = %d, want %d", tc.page, tc.count, tc.size, got, tc.want)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	if got := TotalPages(0, 20); got != 1 {
		t.Errorf("empty listing: got %d, want 1", got)
	}
	if got := TotalPages(41, 20); got != 3 {
		t.Errorf("41/20: got %d, want 3", got)
	}
	if got := TotalPages(40, 20); got != 2 {
		t.Errorf("40/20: got %d, want 2", got)
	}
}
