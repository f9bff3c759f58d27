package validator

import "math"

// NormalizationMethod selects the Normalizer's output transform.
type NormalizationMethod int

const (
	NormalizeZScore NormalizationMethod = iota
	NormalizeMinMax
	NormalizeIdentity
)

// minStdDev is the denominator floor used by both normalization modes,
// avoiding division blow-up on near-constant input.
const minStdDev = 1e-4

// Normalizer implements EWMA-based z-score normalization, running-extrema
// min-max normalization, or identity passthrough.
type Normalizer struct {
	method      NormalizationMethod
	alpha       float64
	mean        float64
	variance    float64
	initialized bool
	min, max    float64
}

// NewNormalizer creates a Normalizer. alpha is clamped to [0, 1].
func NewNormalizer(method NormalizationMethod, alpha float64) *Normalizer {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	return &Normalizer{
		method:   method,
		alpha:    alpha,
		variance: 1,
		min:      math.MaxFloat64,
		max:      -math.MaxFloat64,
	}
}

// Normalize feeds value through the normalizer, updating its running
// statistics and returning the normalized output.
func (n *Normalizer) Normalize(value float64) float64 {
	if value < n.min {
		n.min = value
	}
	if value > n.max {
		n.max = value
	}

	if !n.initialized {
		n.mean = value
		n.variance = 1
		n.initialized = true
		return 0
	}

	delta := value - n.mean
	n.mean += n.alpha * delta
	n.variance = (1 - n.alpha) * (n.variance + n.alpha*delta*delta)

	switch n.method {
	case NormalizeZScore:
		std := math.Max(math.Sqrt(n.variance), minStdDev)
		return (value - n.mean) / std
	case NormalizeMinMax:
		rng := math.Max(n.max-n.min, minStdDev)
		return (value - n.min) / rng
	default: // NormalizeIdentity
		return value
	}
}

// Mean returns the current EWMA mean estimate.
func (n *Normalizer) Mean() float64 { return n.mean }

// StdDev returns the current EWMA standard deviation estimate.
func (n *Normalizer) StdDev() float64 { return math.Sqrt(n.variance) }

// Reset clears all running state.
func (n *Normalizer) Reset() {
	n.mean = 0
	n.variance = 1
	n.initialized = false
	n.min = math.MaxFloat64
	n.max = -math.MaxFloat64
}
