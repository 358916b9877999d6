package embedding

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	vec := Normalize([]float32{3, 4})

	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if math.Abs(magnitude-1.0) > 1e-6 {
		t.Errorf("magnitude = %f, want 1.0", magnitude)
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	vec := Normalize([]float32{0, 0, 0})
	for i, v := range vec {
		if v != 0 {
			t.Errorf("vec[%d] = %f, want 0", i, v)
		}
	}
}
