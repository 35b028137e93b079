package core

import "testing"

func TestPercent(t *testing.T) {
	tests := []struct {
		name  string
		part  int64
		whole int64
		want  float64
	}{
		{name: "half", part: 50, whole: 100, want: 50},
		{name: "one decimal rounding", part: 1, whole: 3, want: 33.3},
		{name: "rounds up", part: 2, whole: 3, want: 66.7},
		{name: "zero whole yields zero", part: 500, whole: 0, want: 0},
		{name: "zero part", part: 0, whole: 100, want: 0},
		{name: "over budget", part: 150, whole: 100, want: 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.part, tt.whole); got != tt.want {
				t.Errorf("Percent(%d, %d) = %v, want %v", tt.part, tt.whole, got, tt.want)
			}
		})
	}
}

// Member percentages for a real split should sum to 100 within rounding.
func TestPercentSumsToWhole(t *testing.T) {
	parts := []int64{3333, 3333, 3334}
	var whole int64
	for _, p := range parts {
		whole += p
	}
	var sum float64
	for _, p := range parts {
		sum += Percent(p, whole)
	}
	if sum < 99.8 || sum > 100.2 {
		t.Errorf("percentages sum to %v, want ~100", sum)
	}
}
