package metrics

import "testing"

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"odd", []float64{19.99, 24.99, 14.99, 29.99, 9.99}, 19.99},
		{"even picks upper middle", []float64{10, 20, 30, 40}, 30},
		{"single", []float64{7.5}, 7.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Median(tt.values)
			if got == nil || *got != tt.want {
				t.Errorf("Median(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}

	if got := Median(nil); got != nil {
		t.Errorf("Median(nil) = %v, want nil", *got)
	}
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input mutated: %v", values)
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{4.0, 5.0}); got == nil || *got != 4.5 {
		t.Errorf("Mean = %v, want 4.5", got)
	}
	if got := Mean(nil); got != nil {
		t.Errorf("Mean(nil) = %v, want nil", *got)
	}
}
