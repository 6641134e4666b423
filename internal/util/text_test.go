package util

import "testing"

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "integer", input: "3", want: 3},
		{name: "decimal", input: "1.5", want: 1.5},
		{name: "padded", input: "  2 ", want: 2},
		{name: "blank", input: "", want: 0},
		{name: "words", input: "three", want: 0},
		{name: "nan", input: "NaN", want: 0},
		{name: "infinity", input: "Inf", want: 0},
		{name: "negative", input: "-1", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceNumber(tt.input)
			if got != tt.want {
				t.Fatalf("CoerceNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
