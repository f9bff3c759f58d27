package validator

import "golang.org/x/exp/slices"

// MedianFilter is an odd-sized sliding-window despike filter. Before the
// window fills, it passes input through unmodified; once full, it emits
// the window median. Implemented over a fixed-size array with wraparound
// position tracking rather than a growing slice.
type MedianFilter struct {
	window []float64
	pos    int
	filled bool
}

// NewMedianFilter creates a filter over an odd-sized window. size must be
// odd and >= 1.
func NewMedianFilter(size int) *MedianFilter {
	if size <= 0 || size%2 == 0 {
		panic("validator: median filter window size must be odd and > 0")
	}
	return &MedianFilter{window: make([]float64, size)}
}

// Filter feeds value through the filter, returning the despiked output.
func (f *MedianFilter) Filter(value float64) float64 {
	f.window[f.pos] = value
	f.pos = (f.pos + 1) % len(f.window)
	if f.pos == 0 {
		f.filled = true
	}

	if !f.filled {
		return value
	}

	sorted := make([]float64, len(f.window))
	copy(sorted, f.window)
	slices.Sort(sorted)
	return sorted[len(sorted)/2]
}

// Reset clears the filter's window state.
func (f *MedianFilter) Reset() {
	for i := range f.window {
		f.window[i] = 0
	}
	f.pos = 0
	f.filled = false
}
