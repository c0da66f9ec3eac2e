package evaluation

import (
	"strconv"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/pkg/metrics"
)

// MultimodalEvaluator scores divergence detection against ground truth.
// Either side may legitimately lack the layer (no paralinguistic
// annotations), so Evaluate accepts nil on both sides.
type MultimodalEvaluator struct{}

// NewMultimodalEvaluator creates a multimodal evaluator
func NewMultimodalEvaluator() *MultimodalEvaluator {
	return &MultimodalEvaluator{}
}

// Evaluate scores divergence flags and composite sentiments. Returns nil when
// neither side produced the layer; a one-sided layer scores against the
// nil-side rules (produced-but-not-expected counts fully against precision,
// expected-but-not-produced counts fully against recall).
func (e *MultimodalEvaluator) Evaluate(extracted, groundTruth *signals.MultimodalSignals, t *signals.Transcript) *LayerReport {
	if extracted == nil && groundTruth == nil {
		return nil
	}
	if groundTruth == nil {
		return &LayerReport{
			LayerName: "Multimodal",
			SignalMetrics: []SignalMetrics{{
				SignalName:       "divergences",
				Precision:        Float(0),
				Recall:           Float(1),
				F1:               Float(0),
				CountExtracted:   len(extracted.Divergences),
				StructuralIssues: []string{"Multimodal signals produced but not expected"},
			}},
		}
	}
	if extracted == nil {
		return &LayerReport{
			LayerName: "Multimodal",
			SignalMetrics: []SignalMetrics{{
				SignalName:       "divergences",
				Precision:        Float(0),
				Recall:           Float(0),
				F1:               Float(0),
				CountGroundTruth: len(groundTruth.Divergences),
				StructuralIssues: []string{"Multimodal signals expected but not produced"},
			}},
		}
	}

	maxIdx := t.MaxTurnIndex()
	return &LayerReport{
		LayerName: "Multimodal",
		SignalMetrics: []SignalMetrics{
			e.evalDivergences(extracted, groundTruth, maxIdx),
			e.evalCompositeSentiments(extracted, groundTruth),
		},
	}
}

func (e *MultimodalEvaluator) evalDivergences(extracted, groundTruth *signals.MultimodalSignals, maxIdx int) SignalMetrics {
	extIndices := make([]string, len(extracted.Divergences))
	for i := range extracted.Divergences {
		extIndices[i] = strconv.Itoa(extracted.Divergences[i].UtteranceIndex)
	}
	gtIndices := make([]string, len(groundTruth.Divergences))
	for i := range groundTruth.Divergences {
		gtIndices[i] = strconv.Itoa(groundTruth.Divergences[i].UtteranceIndex)
	}

	p, r, f := metrics.SetPrecisionRecallF1(extIndices, gtIndices)

	typeMatches := 0
	matchedCount := 0
	for i := range groundTruth.Divergences {
		gt := &groundTruth.Divergences[i]
		for j := range extracted.Divergences {
			ext := &extracted.Divergences[j]
			if ext.UtteranceIndex != gt.UtteranceIndex {
				continue
			}
			matchedCount++
			if ext.Type == gt.Type {
				typeMatches++
			}
			break
		}
	}

	m := SignalMetrics{
		SignalName:       "divergences",
		Precision:        Float(p),
		Recall:           Float(r),
		F1:               Float(f),
		CountExtracted:   len(extracted.Divergences),
		CountGroundTruth: len(groundTruth.Divergences),
	}
	if matchedCount > 0 {
		m.Accuracy = Float(float64(typeMatches) / float64(matchedCount))
	}

	indices := make([]int, len(extracted.Divergences))
	for i := range extracted.Divergences {
		indices[i] = extracted.Divergences[i].UtteranceIndex
	}
	m.StructuralIssues = ValidateUtteranceIndices(indices, maxIdx, "divergence")
	return m
}

func (e *MultimodalEvaluator) evalCompositeSentiments(extracted, groundTruth *signals.MultimodalSignals) SignalMetrics {
	extIndices := make([]string, len(extracted.CompositeSentiments))
	for i := range extracted.CompositeSentiments {
		extIndices[i] = strconv.Itoa(extracted.CompositeSentiments[i].UtteranceIndex)
	}
	gtIndices := make([]string, len(groundTruth.CompositeSentiments))
	for i := range groundTruth.CompositeSentiments {
		gtIndices[i] = strconv.Itoa(groundTruth.CompositeSentiments[i].UtteranceIndex)
	}

	p, r, f := metrics.SetPrecisionRecallF1(extIndices, gtIndices)

	polarityMatches := 0
	matchedCount := 0
	for i := range groundTruth.CompositeSentiments {
		gt := &groundTruth.CompositeSentiments[i]
		for j := range extracted.CompositeSentiments {
			ext := &extracted.CompositeSentiments[j]
			if ext.UtteranceIndex != gt.UtteranceIndex {
				continue
			}
			matchedCount++
			if ext.AdjustedPolarity == gt.AdjustedPolarity {
				polarityMatches++
			}
			break
		}
	}

	m := SignalMetrics{
		SignalName:       "composite_sentiments",
		Precision:        Float(p),
		Recall:           Float(r),
		F1:               Float(f),
		CountExtracted:   len(extracted.CompositeSentiments),
		CountGroundTruth: len(groundTruth.CompositeSentiments),
	}
	if matchedCount > 0 {
		m.Accuracy = Float(float64(polarityMatches) / float64(matchedCount))
	}
	return m
}
