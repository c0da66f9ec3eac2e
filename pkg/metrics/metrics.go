// Package metrics implements the numeric scoring primitives used by the
// evaluation engine: error magnitudes over aligned values, ordinal agreement
// on ranked scales, and distribution diagnostics that flag degenerate output.
package metrics

import "math"

// MeanAbsoluteError averages |predicted - actual| over aligned pairs.
// Returns 0 when no pairs are given.
func MeanAbsoluteError(predicted, actual []float64) float64 {
	n := len(predicted)
	if len(actual) < n {
		n = len(actual)
	}
	if n == 0 {
		return 0.0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(predicted[i] - actual[i])
	}
	return sum / float64(n)
}

// SetPrecisionRecallF1 computes precision, recall, and F1 over two label
// collections treated as sets (duplicates collapse). Empty predicted scores
// precision 1 only when actual is also empty; empty actual always scores
// recall 1.
func SetPrecisionRecallF1(predicted, actual []string) (p, r, f float64) {
	pred := toSet(predicted)
	act := toSet(actual)

	inter := 0
	for v := range pred {
		if _, ok := act[v]; ok {
			inter++
		}
	}

	if len(pred) == 0 {
		if len(act) == 0 {
			p = 1.0
		}
	} else {
		p = float64(inter) / float64(len(pred))
	}
	if len(act) == 0 {
		r = 1.0
	} else {
		r = float64(inter) / float64(len(act))
	}
	if p+r > 0 {
		f = 2 * p * r / (p + r)
	}
	return p, r, f
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// OrdinalAgreement scores how close two values on an ordered scale are:
// 1 for identical positions, decaying linearly to 0 at opposite ends.
// Values absent from the scale score 0.
func OrdinalAgreement(predicted, actual string, scale []string) float64 {
	if len(scale) < 2 {
		if predicted == actual {
			return 1.0
		}
		return 0.0
	}
	pi := indexOf(scale, predicted)
	ai := indexOf(scale, actual)
	if pi < 0 || ai < 0 {
		return 0.0
	}
	dist := math.Abs(float64(pi - ai))
	return 1.0 - dist/float64(len(scale)-1)
}

func indexOf(scale []string, v string) int {
	for i, s := range scale {
		if s == v {
			return i
		}
	}
	return -1
}

// MeanOrdinalAgreement averages OrdinalAgreement over aligned pairs.
// Returns 1 when no pairs are given (nothing disagreed).
func MeanOrdinalAgreement(predicted, actual []string, scale []string) float64 {
	n := len(predicted)
	if len(actual) < n {
		n = len(actual)
	}
	if n == 0 {
		return 1.0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += OrdinalAgreement(predicted[i], actual[i], scale)
	}
	return sum / float64(n)
}

// DistributionStats summarizes a batch of scores in [0,1] and flags patterns
// that suggest the producer is emitting a constant rather than discriminating
type DistributionStats struct {
	Count      int     `json:"count"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Histogram  [5]int  `json:"histogram"`
	Degenerate bool    `json:"degenerate"`
	Reason     string  `json:"reason,omitempty"`
}

// Describe computes DistributionStats over values assumed to lie in [0,1].
// The histogram buckets the range into fifths; a value of exactly 1 lands in
// the top bucket. Degenerate flags: std dev under 0.05 with at least 3 values,
// or every value in a single bucket with at least 5 values.
func Describe(values []float64) DistributionStats {
	stats := DistributionStats{Count: len(values)}
	if len(values) == 0 {
		return stats
	}

	stats.Min = values[0]
	stats.Max = values[0]
	var sum float64
	for _, v := range values {
		sum += v
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		stats.Histogram[bucket(v)]++
	}
	stats.Mean = sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - stats.Mean
		variance += d * d
	}
	variance /= float64(len(values))
	stats.StdDev = math.Sqrt(variance)

	if len(values) >= 3 && stats.StdDev < 0.05 {
		stats.Degenerate = true
		stats.Reason = "near-constant scores (std dev < 0.05)"
	} else if len(values) >= 5 && singleBucket(stats.Histogram) {
		stats.Degenerate = true
		stats.Reason = "all scores fall in a single fifth of the range"
	}
	return stats
}

func bucket(v float64) int {
	if v < 0 {
		return 0
	}
	b := int(v * 5)
	if b > 4 {
		return 4
	}
	return b
}

func singleBucket(hist [5]int) bool {
	occupied := 0
	for _, n := range hist {
		if n > 0 {
			occupied++
		}
	}
	return occupied == 1
}

// Round2 rounds to two decimal places; reports store scores at this precision
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
