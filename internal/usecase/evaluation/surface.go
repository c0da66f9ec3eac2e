package evaluation

import (
	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/pkg/config"
	"github.com/aby0/customer-intelligence/pkg/fuzzy"
	"github.com/aby0/customer-intelligence/pkg/metrics"
)

// SurfaceEvaluator scores Layer 1 signal extraction against ground truth
type SurfaceEvaluator struct {
	thresholds config.MatchThresholds
	sim        fuzzy.SimilarityFunc
}

// NewSurfaceEvaluator creates a surface evaluator. A nil similarity function
// falls back to token overlap.
func NewSurfaceEvaluator(thresholds config.MatchThresholds, sim fuzzy.SimilarityFunc) *SurfaceEvaluator {
	return &SurfaceEvaluator{thresholds: thresholds, sim: sim}
}

// Evaluate scores aspects, topics, entities, and key phrases
func (e *SurfaceEvaluator) Evaluate(extracted, groundTruth *signals.SurfaceSignals, t *signals.Transcript) *LayerReport {
	maxIdx := t.MaxTurnIndex()
	return &LayerReport{
		LayerName: "Surface",
		SignalMetrics: []SignalMetrics{
			e.evalAspects(extracted, groundTruth, maxIdx),
			e.evalTopics(extracted, groundTruth, t),
			e.evalEntities(extracted, groundTruth),
			e.evalKeyPhrases(extracted, groundTruth),
		},
	}
}

func (e *SurfaceEvaluator) evalAspects(extracted, groundTruth *signals.SurfaceSignals, maxIdx int) SignalMetrics {
	extNames := make([]string, len(extracted.Aspects))
	for i := range extracted.Aspects {
		extNames[i] = extracted.Aspects[i].Aspect
	}
	gtNames := make([]string, len(groundTruth.Aspects))
	for i := range groundTruth.Aspects {
		gtNames[i] = groundTruth.Aspects[i].Aspect
	}

	p, r, f, match := fuzzy.PrecisionRecallF1(extNames, gtNames, e.thresholds.Aspect, e.sim)

	// Polarity agreement and intensity error on matched pairs
	polarityMatches := 0
	var extIntensities, gtIntensities []float64
	for _, pair := range match.Pairs {
		ea := &extracted.Aspects[pair.ExtractedIndex]
		ga := &groundTruth.Aspects[pair.GroundTruthIndex]
		if ea.Sentiment == ga.Sentiment {
			polarityMatches++
		}
		extIntensities = append(extIntensities, ea.Intensity)
		gtIntensities = append(gtIntensities, ga.Intensity)
	}

	m := SignalMetrics{
		SignalName:       "aspects",
		Precision:        Float(p),
		Recall:           Float(r),
		F1:               Float(f),
		CountExtracted:   len(extNames),
		CountGroundTruth: len(gtNames),
		MatchedPairs:     match.Pairs,
	}
	if len(match.Pairs) > 0 {
		m.Accuracy = Float(float64(polarityMatches) / float64(len(match.Pairs)))
		m.MAE = Float(metrics.MeanAbsoluteError(extIntensities, gtIntensities))
	}

	for i := range extracted.Aspects {
		a := &extracted.Aspects[i]
		m.StructuralIssues = append(m.StructuralIssues,
			ValidateUtteranceIndices(a.SourceUtteranceIndices, maxIdx, "aspect:"+a.Aspect)...)
	}

	intensities := make([]float64, len(extracted.Aspects))
	for i := range extracted.Aspects {
		intensities[i] = extracted.Aspects[i].Intensity
	}
	dist, issues := CheckScoreDistribution(intensities, "aspect_intensity")
	m.ScoreDistribution = &dist
	m.StructuralIssues = append(m.StructuralIssues, issues...)
	return m
}

func (e *SurfaceEvaluator) evalTopics(extracted, groundTruth *signals.SurfaceSignals, t *signals.Transcript) SignalMetrics {
	extNames := make([]string, len(extracted.Topics))
	for i := range extracted.Topics {
		extNames[i] = extracted.Topics[i].Name
	}
	gtNames := make([]string, len(groundTruth.Topics))
	for i := range groundTruth.Topics {
		gtNames[i] = groundTruth.Topics[i].Name
	}

	p, r, f, match := fuzzy.PrecisionRecallF1(extNames, gtNames, e.thresholds.Topic, e.sim)

	timelineMatches := 0
	var extRelevances, gtRelevances []float64
	for _, pair := range match.Pairs {
		et := &extracted.Topics[pair.ExtractedIndex]
		gt := &groundTruth.Topics[pair.GroundTruthIndex]
		if et.TimelinePosition == gt.TimelinePosition {
			timelineMatches++
		}
		extRelevances = append(extRelevances, et.Relevance)
		gtRelevances = append(gtRelevances, gt.Relevance)
	}

	m := SignalMetrics{
		SignalName:       "topics",
		Precision:        Float(p),
		Recall:           Float(r),
		F1:               Float(f),
		CountExtracted:   len(extNames),
		CountGroundTruth: len(gtNames),
		MatchedPairs:     match.Pairs,
	}
	if len(match.Pairs) > 0 {
		m.Accuracy = Float(float64(timelineMatches) / float64(len(match.Pairs)))
		m.MAE = Float(metrics.MeanAbsoluteError(extRelevances, gtRelevances))
	}

	m.StructuralIssues = append(m.StructuralIssues,
		CheckTimelineConsistency(extracted.Topics, t.Utterances)...)

	relevances := make([]float64, len(extracted.Topics))
	for i := range extracted.Topics {
		relevances[i] = extracted.Topics[i].Relevance
	}
	dist, issues := CheckScoreDistribution(relevances, "topic_relevance")
	m.ScoreDistribution = &dist
	m.StructuralIssues = append(m.StructuralIssues, issues...)
	return m
}

func (e *SurfaceEvaluator) evalEntities(extracted, groundTruth *signals.SurfaceSignals) SignalMetrics {
	extNames := make([]string, len(extracted.Entities))
	for i := range extracted.Entities {
		extNames[i] = extracted.Entities[i].Name
	}
	gtNames := make([]string, len(groundTruth.Entities))
	for i := range groundTruth.Entities {
		gtNames[i] = groundTruth.Entities[i].Name
	}

	p, r, f, match := fuzzy.PrecisionRecallF1(extNames, gtNames, e.thresholds.Entity, e.sim)

	typeMatches := 0
	for _, pair := range match.Pairs {
		if extracted.Entities[pair.ExtractedIndex].EntityType == groundTruth.Entities[pair.GroundTruthIndex].EntityType {
			typeMatches++
		}
	}

	m := SignalMetrics{
		SignalName:       "entities",
		Precision:        Float(p),
		Recall:           Float(r),
		F1:               Float(f),
		CountExtracted:   len(extNames),
		CountGroundTruth: len(gtNames),
		MatchedPairs:     match.Pairs,
	}
	if len(match.Pairs) > 0 {
		m.Accuracy = Float(float64(typeMatches) / float64(len(match.Pairs)))
	}
	return m
}

func (e *SurfaceEvaluator) evalKeyPhrases(extracted, groundTruth *signals.SurfaceSignals) SignalMetrics {
	extPhrases := make([]string, len(extracted.KeyPhrases))
	for i := range extracted.KeyPhrases {
		extPhrases[i] = extracted.KeyPhrases[i].Phrase
	}
	gtPhrases := make([]string, len(groundTruth.KeyPhrases))
	for i := range groundTruth.KeyPhrases {
		gtPhrases[i] = groundTruth.KeyPhrases[i].Phrase
	}

	p, r, f, match := fuzzy.PrecisionRecallF1(extPhrases, gtPhrases, e.thresholds.KeyPhrase, e.sim)

	var extRelevances, gtRelevances []float64
	for _, pair := range match.Pairs {
		extRelevances = append(extRelevances, extracted.KeyPhrases[pair.ExtractedIndex].Relevance)
		gtRelevances = append(gtRelevances, groundTruth.KeyPhrases[pair.GroundTruthIndex].Relevance)
	}

	m := SignalMetrics{
		SignalName:       "key_phrases",
		Precision:        Float(p),
		Recall:           Float(r),
		F1:               Float(f),
		CountExtracted:   len(extPhrases),
		CountGroundTruth: len(gtPhrases),
		MatchedPairs:     match.Pairs,
	}
	if len(match.Pairs) > 0 {
		m.MAE = Float(metrics.MeanAbsoluteError(extRelevances, gtRelevances))
	}

	relevances := make([]float64, len(extracted.KeyPhrases))
	for i := range extracted.KeyPhrases {
		relevances[i] = extracted.KeyPhrases[i].Relevance
	}
	dist, issues := CheckScoreDistribution(relevances, "keyphrase_relevance")
	m.ScoreDistribution = &dist
	m.StructuralIssues = append(m.StructuralIssues, issues...)
	return m
}
