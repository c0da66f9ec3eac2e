package evaluation

import (
	"strings"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/pkg/metrics"
)

// Ordinal scales for engagement trajectory scoring
var (
	participationScale = []string{"low", "moderate", "high"}
	questionDepthScale = []string{"surface", "moderate", "deep"}
	energyScale        = []string{"low", "medium", "high"}
)

// BehavioralEvaluator scores Layer 2 signal extraction against ground truth.
// Closed-vocabulary signals (objection types, intent types, phases) score as
// sets; competitor names compare case-insensitively.
type BehavioralEvaluator struct{}

// NewBehavioralEvaluator creates a behavioral evaluator
func NewBehavioralEvaluator() *BehavioralEvaluator {
	return &BehavioralEvaluator{}
}

// Evaluate scores objection triples, buying intent, competitive mentions, and
// the engagement trajectory
func (e *BehavioralEvaluator) Evaluate(extracted, groundTruth *signals.BehavioralSignals, t *signals.Transcript) *LayerReport {
	maxIdx := t.MaxTurnIndex()
	return &LayerReport{
		LayerName: "Behavioral",
		SignalMetrics: []SignalMetrics{
			e.evalObjectionTriples(extracted, groundTruth, maxIdx),
			e.evalBuyingIntent(extracted, groundTruth),
			e.evalCompetitiveMentions(extracted, groundTruth, maxIdx),
			e.evalEngagementTrajectory(extracted, groundTruth),
		},
	}
}

func (e *BehavioralEvaluator) evalObjectionTriples(extracted, groundTruth *signals.BehavioralSignals, maxIdx int) SignalMetrics {
	extTypes := make([]string, len(extracted.ObjectionTriples))
	for i := range extracted.ObjectionTriples {
		extTypes[i] = string(extracted.ObjectionTriples[i].Objection.Type)
	}
	gtTypes := make([]string, len(groundTruth.ObjectionTriples))
	for i := range groundTruth.ObjectionTriples {
		gtTypes[i] = string(groundTruth.ObjectionTriples[i].Objection.Type)
	}

	p, r, f := metrics.SetPrecisionRecallF1(extTypes, gtTypes)

	// Resolution and outcome accuracy over objection types found on both sides
	resolutionMatches := 0
	outcomeMatches := 0
	matchedCount := 0
	for i := range groundTruth.ObjectionTriples {
		gt := &groundTruth.ObjectionTriples[i]
		for j := range extracted.ObjectionTriples {
			ext := &extracted.ObjectionTriples[j]
			if ext.Objection.Type != gt.Objection.Type {
				continue
			}
			matchedCount++
			if ext.Resolution != nil && gt.Resolution != nil && ext.Resolution.Type == gt.Resolution.Type {
				resolutionMatches++
			}
			if ext.Outcome.Resolved == gt.Outcome.Resolved {
				outcomeMatches++
			}
			break
		}
	}

	m := SignalMetrics{
		SignalName:       "objection_triples",
		Precision:        Float(p),
		Recall:           Float(r),
		F1:               Float(f),
		CountExtracted:   len(extracted.ObjectionTriples),
		CountGroundTruth: len(groundTruth.ObjectionTriples),
	}
	if matchedCount > 0 {
		resolutionAccuracy := float64(resolutionMatches) / float64(matchedCount)
		outcomeAccuracy := float64(outcomeMatches) / float64(matchedCount)
		m.Accuracy = Float((resolutionAccuracy + outcomeAccuracy) / 2)
	}

	for i := range extracted.ObjectionTriples {
		triple := &extracted.ObjectionTriples[i]
		m.StructuralIssues = append(m.StructuralIssues,
			ValidateUtteranceIndices(triple.Objection.SourceUtteranceIndices, maxIdx,
				"objection:"+string(triple.Objection.Type))...)
		if triple.Resolution != nil {
			m.StructuralIssues = append(m.StructuralIssues,
				ValidateUtteranceIndices(triple.Resolution.SourceUtteranceIndices, maxIdx,
					"resolution:"+string(triple.Resolution.Type))...)
		}
	}

	confidences := make([]float64, len(extracted.ObjectionTriples))
	for i := range extracted.ObjectionTriples {
		confidences[i] = extracted.ObjectionTriples[i].Confidence
	}
	dist, issues := CheckScoreDistribution(confidences, "objection_confidence")
	m.ScoreDistribution = &dist
	m.StructuralIssues = append(m.StructuralIssues, issues...)
	return m
}

func (e *BehavioralEvaluator) evalBuyingIntent(extracted, groundTruth *signals.BehavioralSignals) SignalMetrics {
	extTypes := make([]string, len(extracted.BuyingIntentMarkers))
	for i := range extracted.BuyingIntentMarkers {
		extTypes[i] = string(extracted.BuyingIntentMarkers[i].Type)
	}
	gtTypes := make([]string, len(groundTruth.BuyingIntentMarkers))
	for i := range groundTruth.BuyingIntentMarkers {
		gtTypes[i] = string(groundTruth.BuyingIntentMarkers[i].Type)
	}

	p, r, f := metrics.SetPrecisionRecallF1(extTypes, gtTypes)

	m := SignalMetrics{
		SignalName:       "buying_intent",
		Precision:        Float(p),
		Recall:           Float(r),
		F1:               Float(f),
		CountExtracted:   len(extracted.BuyingIntentMarkers),
		CountGroundTruth: len(groundTruth.BuyingIntentMarkers),
	}

	confidences := make([]float64, len(extracted.BuyingIntentMarkers))
	for i := range extracted.BuyingIntentMarkers {
		confidences[i] = extracted.BuyingIntentMarkers[i].Confidence
	}
	dist, issues := CheckScoreDistribution(confidences, "buying_intent_confidence")
	m.ScoreDistribution = &dist
	m.StructuralIssues = append(m.StructuralIssues, issues...)
	return m
}

func (e *BehavioralEvaluator) evalCompetitiveMentions(extracted, groundTruth *signals.BehavioralSignals, maxIdx int) SignalMetrics {
	extNames := make([]string, len(extracted.CompetitiveMentions))
	for i := range extracted.CompetitiveMentions {
		extNames[i] = strings.ToLower(extracted.CompetitiveMentions[i].Competitor)
	}
	gtNames := make([]string, len(groundTruth.CompetitiveMentions))
	for i := range groundTruth.CompetitiveMentions {
		gtNames[i] = strings.ToLower(groundTruth.CompetitiveMentions[i].Competitor)
	}

	p, r, f := metrics.SetPrecisionRecallF1(extNames, gtNames)

	sentimentMatches := 0
	matchedCount := 0
	for i := range groundTruth.CompetitiveMentions {
		gt := &groundTruth.CompetitiveMentions[i]
		for j := range extracted.CompetitiveMentions {
			ext := &extracted.CompetitiveMentions[j]
			if !strings.EqualFold(ext.Competitor, gt.Competitor) {
				continue
			}
			matchedCount++
			if ext.Sentiment == gt.Sentiment {
				sentimentMatches++
			}
			break
		}
	}

	m := SignalMetrics{
		SignalName:       "competitive_mentions",
		Precision:        Float(p),
		Recall:           Float(r),
		F1:               Float(f),
		CountExtracted:   len(extracted.CompetitiveMentions),
		CountGroundTruth: len(groundTruth.CompetitiveMentions),
	}
	if matchedCount > 0 {
		m.Accuracy = Float(float64(sentimentMatches) / float64(matchedCount))
	}

	for i := range extracted.CompetitiveMentions {
		cm := &extracted.CompetitiveMentions[i]
		m.StructuralIssues = append(m.StructuralIssues,
			ValidateUtteranceIndices(cm.SourceUtteranceIndices, maxIdx,
				"competitor:"+cm.Competitor)...)
	}
	return m
}

func (e *BehavioralEvaluator) evalEngagementTrajectory(extracted, groundTruth *signals.BehavioralSignals) SignalMetrics {
	extPhases := make([]string, len(extracted.EngagementTrajectory))
	for i := range extracted.EngagementTrajectory {
		extPhases[i] = extracted.EngagementTrajectory[i].Phase
	}
	gtPhases := make([]string, len(groundTruth.EngagementTrajectory))
	for i := range groundTruth.EngagementTrajectory {
		gtPhases[i] = groundTruth.EngagementTrajectory[i].Phase
	}

	p, r, f := metrics.SetPrecisionRecallF1(extPhases, gtPhases)

	// Ordinal agreement across all three engagement dimensions on matched
	// phases
	var agreements []float64
	for i := range groundTruth.EngagementTrajectory {
		gt := &groundTruth.EngagementTrajectory[i]
		for j := range extracted.EngagementTrajectory {
			ext := &extracted.EngagementTrajectory[j]
			if ext.Phase != gt.Phase {
				continue
			}
			agreements = append(agreements,
				metrics.OrdinalAgreement(ext.ParticipationLevel, gt.ParticipationLevel, participationScale),
				metrics.OrdinalAgreement(ext.QuestionDepth, gt.QuestionDepth, questionDepthScale),
				metrics.OrdinalAgreement(ext.Energy, gt.Energy, energyScale))
			break
		}
	}

	m := SignalMetrics{
		SignalName:       "engagement_trajectory",
		Precision:        Float(p),
		Recall:           Float(r),
		F1:               Float(f),
		CountExtracted:   len(extracted.EngagementTrajectory),
		CountGroundTruth: len(groundTruth.EngagementTrajectory),
	}
	if len(agreements) > 0 {
		var sum float64
		for _, a := range agreements {
			sum += a
		}
		m.OrdinalAgreement = Float(sum / float64(len(agreements)))
	}
	return m
}
