package reporting

import (
	"testing"
)

func TestFallbackRate(t *testing.T) {
	cases := []struct {
		name     string
		fallback int
		total    int
		want     float64
	}{
		{"no activity", 0, 0, 0},
		{"all external", 0, 10, 0},
		{"all fallback", 10, 10, 1},
		{"quarter", 5, 20, 0.25},
		{"negative total guarded", 3, -1, 0},
	}
	for _, tc := range cases {
		if got := fallbackRate(tc.fallback, tc.total); got != tc.want {
			t.Errorf("%s: fallbackRate(%d, %d) = %v, want %v",
				tc.name, tc.fallback, tc.total, got, tc.want)
		}
	}
}

func TestClampWindow(t *testing.T) {
	cases := []struct {
		days int
		want int
	}{
		{0, 30},
		{-5, 30},
		{366, 30},
		{1, 1},
		{30, 30},
		{365, 365},
	}
	for _, tc := range cases {
		if got := clampWindow(tc.days); got != tc.want {
			t.Errorf("clampWindow(%d) = %d, want %d", tc.days, got, tc.want)
		}
	}
}
