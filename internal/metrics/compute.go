package metrics

import "sort"

// Median returns the element at index floor(n/2) of the sorted values.
// For even-sized inputs this is the upper of the two middle elements,
// not their mean; historical rows were produced this way and
// comparability matters more than the textbook definition.
// Returns nil for an empty slice. The input is not modified.
func Median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	m := sorted[len(sorted)/2]
	return &m
}

// Mean returns the arithmetic mean, or nil for an empty slice.
func Mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}
