package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("got %v, want [0.6 0.8]", v)
	}

	zero := []float32{0, 0, 0}
	NormalizeL2(zero)
	for _, x := range zero {
		if x != 0 {
			t.Fatalf("zero vector changed: %v", zero)
		}
	}
}

func TestL2Distance(t *testing.T) {
	tests := []struct {
		a, b []float32
		want float64
	}{
		{[]float32{0, 0}, []float32{3, 4}, 5},
		{[]float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{[]float32{-1}, []float32{1}, 2},
	}
	for _, tt := range tests {
		if got := L2Distance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("L2Distance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
	if got := SquaredL2([]float32{0, 0}, []float32{3, 4}); got != 25 {
		t.Errorf("SquaredL2 = %v, want 25", got)
	}
}
