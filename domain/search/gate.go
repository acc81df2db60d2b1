package search

import "math"

// Default confidence thresholds, overridable via LOWCONF_TOPSIM and
// LOWCONF_SOFTMAX.
const (
	DefaultLowConfTopSim  = 0.48
	DefaultLowConfSoftmax = 0.55
)

// Gate classifies a result list as confident or low-confidence from the
// top raw similarity and top softmax weight.
type Gate struct {
	topSim  float64
	softmax float64
}

// NewGate creates a Gate with the given thresholds; non-positive values
// fall back to the defaults.
func NewGate(topSim, softmax float64) Gate {
	if topSim <= 0 {
		topSim = DefaultLowConfTopSim
	}
	if softmax <= 0 {
		softmax = DefaultLowConfSoftmax
	}
	return Gate{topSim: topSim, softmax: softmax}
}

// TopSimThreshold returns the raw similarity threshold.
func (g Gate) TopSimThreshold() float64 { return g.topSim }

// SoftmaxThreshold returns the softmax weight threshold.
func (g Gate) SoftmaxThreshold() float64 { return g.softmax }

// LowConfidence reports whether the result list fails the gate: empty, or
// top score below the similarity threshold, or top confidence below the
// softmax threshold.
func (g Gate) LowConfidence(results []Result) bool {
	if len(results) == 0 {
		return true
	}
	top := results[0]
	return top.Score() < g.topSim || top.Confidence() < g.softmax
}

// Softmax computes softmax weights over raw similarities using the
// numerically stable form exp(s_i - max) / sum exp(s_j - max).
func Softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return []float64{}
	}

	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	weights := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		weights[i] = math.Exp(s - maxScore)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}
