package models

import "testing"

// TestAlphaSessionDuration covers both duration notations in exports.
func TestAlphaSessionDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1:02 hr", 3720},
		{"0:45 hr", 2700},
		{"45 min", 2700},
		{"", 0},
		{"soon", 0},
		{"x:10 hr", 0},
	}
	for _, tt := range tests {
		if got := (AlphaSession{Duration: tt.in}).DurationSeconds(); got != tt.want {
			t.Errorf("DurationSeconds(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
