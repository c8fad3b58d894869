package llm

import (
	"math"
	"testing"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name string
		vec  []float32
		want []float32
	}{
		{
			name: "scales to unit length",
			vec:  []float32{3, 4},
			want: []float32{0.6, 0.8},
		},
		{
			name: "already normalized",
			vec:  []float32{1, 0, 0},
			want: []float32{1, 0, 0},
		},
		{
			name: "zero vector unchanged",
			vec:  []float32{0, 0, 0},
			want: []float32{0, 0, 0},
		},
		{
			name: "negative components",
			vec:  []float32{-3, 4},
			want: []float32{-0.6, 0.8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalizeVector(tt.vec)
			for i := range tt.want {
				if math.Abs(float64(tt.vec[i]-tt.want[i])) > 1e-6 {
					t.Errorf("normalizeVector() [%d] = %v, want %v", i, tt.vec[i], tt.want[i])
				}
			}
		})
	}
}

func TestNormalizeVector_UnitNorm(t *testing.T) {
	vec := []float32{0.1, -2.7, 13.9, 0.004}
	normalizeVector(vec)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("normalizeVector() squared norm = %v, want 1", sum)
	}
}
