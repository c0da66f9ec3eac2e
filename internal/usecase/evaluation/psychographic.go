package evaluation

import (
	"math"
	"strings"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/pkg/config"
	"github.com/aby0/customer-intelligence/pkg/fuzzy"
	"github.com/aby0/customer-intelligence/pkg/metrics"
)

// PsychographicEvaluator scores Layer 3 signal extraction against ground
// truth. The mental model is a single classification; persona indicators
// compare as archetype sets; the language fingerprint averages three
// sub-signal overlaps.
type PsychographicEvaluator struct {
	thresholds config.MatchThresholds
	sim        fuzzy.SimilarityFunc
}

// NewPsychographicEvaluator creates a psychographic evaluator
func NewPsychographicEvaluator(thresholds config.MatchThresholds, sim fuzzy.SimilarityFunc) *PsychographicEvaluator {
	return &PsychographicEvaluator{thresholds: thresholds, sim: sim}
}

// Evaluate scores the mental model, persona indicators, and language
// fingerprint
func (e *PsychographicEvaluator) Evaluate(extracted, groundTruth *signals.PsychographicSignals, t *signals.Transcript) *LayerReport {
	return &LayerReport{
		LayerName: "Psychographic",
		SignalMetrics: []SignalMetrics{
			e.evalMentalModel(extracted, groundTruth),
			e.evalPersonaIndicators(extracted, groundTruth),
			e.evalLanguageFingerprint(extracted, groundTruth),
		},
	}
}

func (e *PsychographicEvaluator) evalMentalModel(extracted, groundTruth *signals.PsychographicSignals) SignalMetrics {
	primaryMatch := 0.0
	if extracted.MentalModel.Primary == groundTruth.MentalModel.Primary {
		primaryMatch = 1.0
	}

	accuracy := primaryMatch
	if groundTruth.MentalModel.Secondary != "" {
		secondaryMatch := 0.0
		if extracted.MentalModel.Secondary == groundTruth.MentalModel.Secondary {
			secondaryMatch = 1.0
		}
		accuracy = (primaryMatch + secondaryMatch) / 2
	}

	confidenceDelta := math.Abs(extracted.MentalModel.Confidence - groundTruth.MentalModel.Confidence)

	return SignalMetrics{
		SignalName:       "mental_model",
		Precision:        Float(primaryMatch),
		Recall:           Float(primaryMatch),
		F1:               Float(primaryMatch),
		CountExtracted:   1,
		CountGroundTruth: 1,
		Accuracy:         Float(accuracy),
		MAE:              Float(confidenceDelta),
	}
}

func (e *PsychographicEvaluator) evalPersonaIndicators(extracted, groundTruth *signals.PsychographicSignals) SignalMetrics {
	extArchetypes := make([]string, len(extracted.PersonaIndicators))
	for i := range extracted.PersonaIndicators {
		extArchetypes[i] = string(extracted.PersonaIndicators[i].Archetype)
	}
	gtArchetypes := make([]string, len(groundTruth.PersonaIndicators))
	for i := range groundTruth.PersonaIndicators {
		gtArchetypes[i] = string(groundTruth.PersonaIndicators[i].Archetype)
	}

	p, r, f := metrics.SetPrecisionRecallF1(extArchetypes, gtArchetypes)

	// Confidence error over archetypes present on both sides
	var extConf, gtConf []float64
	for i := range groundTruth.PersonaIndicators {
		gt := &groundTruth.PersonaIndicators[i]
		for j := range extracted.PersonaIndicators {
			ext := &extracted.PersonaIndicators[j]
			if ext.Archetype != gt.Archetype {
				continue
			}
			extConf = append(extConf, ext.Confidence)
			gtConf = append(gtConf, gt.Confidence)
			break
		}
	}

	m := SignalMetrics{
		SignalName:       "persona_indicators",
		Precision:        Float(p),
		Recall:           Float(r),
		F1:               Float(f),
		CountExtracted:   len(extracted.PersonaIndicators),
		CountGroundTruth: len(groundTruth.PersonaIndicators),
	}
	if len(extConf) > 0 {
		m.MAE = Float(metrics.MeanAbsoluteError(extConf, gtConf))
	}

	confidences := make([]float64, len(extracted.PersonaIndicators))
	for i := range extracted.PersonaIndicators {
		confidences[i] = extracted.PersonaIndicators[i].Confidence
	}
	dist, issues := CheckScoreDistribution(confidences, "persona_confidence")
	m.ScoreDistribution = &dist
	m.StructuralIssues = append(m.StructuralIssues, issues...)
	return m
}

func (e *PsychographicEvaluator) evalLanguageFingerprint(extracted, groundTruth *signals.PsychographicSignals) SignalMetrics {
	extFP := &extracted.LanguageFingerprint
	gtFP := &groundTruth.LanguageFingerprint

	// Vocabulary compares exactly after lowercasing
	vocabP, vocabR, vocabF := metrics.SetPrecisionRecallF1(
		lowercaseAll(extFP.DistinctiveVocabulary), lowercaseAll(gtFP.DistinctiveVocabulary))

	metaP, metaR, metaF, metaMatch := fuzzy.PrecisionRecallF1(
		extFP.Metaphors, gtFP.Metaphors, e.thresholds.Metaphor, e.sim)

	frameP, frameR, frameF, _ := fuzzy.PrecisionRecallF1(
		extFP.FramingPatterns, gtFP.FramingPatterns, e.thresholds.Metaphor, e.sim)

	return SignalMetrics{
		SignalName: "language_fingerprint",
		Precision:  Float((vocabP + metaP + frameP) / 3),
		Recall:     Float((vocabR + metaR + frameR) / 3),
		F1:         Float((vocabF + metaF + frameF) / 3),
		CountExtracted: len(extFP.DistinctiveVocabulary) +
			len(extFP.Metaphors) + len(extFP.FramingPatterns),
		CountGroundTruth: len(gtFP.DistinctiveVocabulary) +
			len(gtFP.Metaphors) + len(gtFP.FramingPatterns),
		MatchedPairs: metaMatch.Pairs,
	}
}

func lowercaseAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
