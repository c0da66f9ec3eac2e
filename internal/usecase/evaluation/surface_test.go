package evaluation

import (
	"strings"
	"testing"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/pkg/config"
)

func surfaceTranscript() *signals.Transcript {
	return &signals.Transcript{
		Account:      signals.AccountProfile{CompanyName: "Acme Corp"},
		CallMetadata: signals.CallMetadata{CallID: "call-1"},
		Utterances: []signals.Utterance{
			{Speaker: "alex", Text: "Thanks for joining today", TurnIndex: 0},
			{Speaker: "kim", Text: "We are worried about the rollout", TurnIndex: 1},
			{Speaker: "kim", Text: "Our team likes the product", TurnIndex: 2},
			{Speaker: "kim", Text: "Can we revisit pricing next week", TurnIndex: 3},
		},
	}
}

func surfaceFixtures() (*signals.SurfaceSignals, *signals.SurfaceSignals) {
	extracted := &signals.SurfaceSignals{
		Aspects: []signals.AspectSentiment{
			{Aspect: "pricing", Sentiment: signals.SentimentPositive, Intensity: 0.8, SourceUtteranceIndices: []int{3}},
			{Aspect: "implementation timeline", Sentiment: signals.SentimentNegative, Intensity: 0.6, SourceUtteranceIndices: []int{1}},
			{Aspect: "support", Sentiment: signals.SentimentNeutral, Intensity: 0.4, SourceUtteranceIndices: []int{99}},
		},
		Topics: []signals.TopicDetection{
			{Name: "pricing", TimelinePosition: "early", Relevance: 0.9},
		},
		Entities: []signals.NamedEntity{
			{Name: "Acme Corp", EntityType: signals.EntityCompany, MentionCount: 2},
			{Name: "DataFlow", EntityType: signals.EntityCompetitor, MentionCount: 1},
		},
		KeyPhrases: []signals.KeyPhrase{
			{Phrase: "annual license", Relevance: 0.7},
		},
	}
	groundTruth := &signals.SurfaceSignals{
		Aspects: []signals.AspectSentiment{
			{Aspect: "pricing", Sentiment: signals.SentimentNegative, Intensity: 0.6, SourceUtteranceIndices: []int{3}},
			{Aspect: "implementation timeline", Sentiment: signals.SentimentNegative, Intensity: 0.5, SourceUtteranceIndices: []int{1}},
		},
		Topics: []signals.TopicDetection{
			{Name: "pricing", TimelinePosition: "late", Relevance: 0.8},
		},
		Entities: []signals.NamedEntity{
			{Name: "Acme Corp", EntityType: signals.EntityCompany, MentionCount: 2},
			{Name: "DataFlow", EntityType: signals.EntityProduct, MentionCount: 1},
		},
		KeyPhrases: []signals.KeyPhrase{
			{Phrase: "annual license pricing", Relevance: 0.6},
		},
	}
	return extracted, groundTruth
}

func metricByName(t *testing.T, report *LayerReport, name string) *SignalMetrics {
	t.Helper()
	for i := range report.SignalMetrics {
		if report.SignalMetrics[i].SignalName == name {
			return &report.SignalMetrics[i]
		}
	}
	t.Fatalf("no metric named %q", name)
	return nil
}

func TestSurfaceEvaluatorAspects(t *testing.T) {
	extracted, groundTruth := surfaceFixtures()
	e := NewSurfaceEvaluator(config.DefaultThresholds(), nil)
	report := e.Evaluate(extracted, groundTruth, surfaceTranscript())

	if report.LayerName != "Surface" || len(report.SignalMetrics) != 4 {
		t.Fatalf("report shape: %s, %d metrics", report.LayerName, len(report.SignalMetrics))
	}

	m := metricByName(t, report, "aspects")
	if !almostEqual(*m.Precision, 2.0/3) || !almostEqual(*m.Recall, 1.0) || !almostEqual(*m.F1, 0.8) {
		t.Errorf("aspects P/R/F = %v/%v/%v", *m.Precision, *m.Recall, *m.F1)
	}
	// Polarity agrees only on the timeline aspect
	if !almostEqual(*m.Accuracy, 0.5) {
		t.Errorf("polarity accuracy = %v, want 0.5", *m.Accuracy)
	}
	if !almostEqual(*m.MAE, 0.15) {
		t.Errorf("intensity MAE = %v, want 0.15", *m.MAE)
	}
	found := false
	for _, issue := range m.StructuralIssues {
		if strings.Contains(issue, "aspect:support") && strings.Contains(issue, "exceeds max 3") {
			found = true
		}
	}
	if !found {
		t.Errorf("out-of-bounds index not flagged: %v", m.StructuralIssues)
	}
	if m.CountExtracted != 3 || m.CountGroundTruth != 2 {
		t.Errorf("counts = %d/%d", m.CountExtracted, m.CountGroundTruth)
	}
}

func TestSurfaceEvaluatorTopics(t *testing.T) {
	extracted, groundTruth := surfaceFixtures()
	e := NewSurfaceEvaluator(config.DefaultThresholds(), nil)
	report := e.Evaluate(extracted, groundTruth, surfaceTranscript())

	m := metricByName(t, report, "topics")
	if !almostEqual(*m.Precision, 1) || !almostEqual(*m.Recall, 1) {
		t.Errorf("topics P/R = %v/%v", *m.Precision, *m.Recall)
	}
	// Timeline label disagrees with ground truth and with the transcript
	if !almostEqual(*m.Accuracy, 0) {
		t.Errorf("timeline accuracy = %v, want 0", *m.Accuracy)
	}
	if !almostEqual(*m.MAE, 0.1) {
		t.Errorf("relevance MAE = %v, want 0.1", *m.MAE)
	}
	foundTimeline := false
	for _, issue := range m.StructuralIssues {
		if strings.Contains(issue, `Topic "pricing"`) {
			foundTimeline = true
		}
	}
	if !foundTimeline {
		t.Errorf("timeline inconsistency not flagged: %v", m.StructuralIssues)
	}
}

func TestSurfaceEvaluatorEntities(t *testing.T) {
	extracted, groundTruth := surfaceFixtures()
	e := NewSurfaceEvaluator(config.DefaultThresholds(), nil)
	report := e.Evaluate(extracted, groundTruth, surfaceTranscript())

	m := metricByName(t, report, "entities")
	if !almostEqual(*m.Precision, 1) || !almostEqual(*m.Recall, 1) || !almostEqual(*m.F1, 1) {
		t.Errorf("entities P/R/F = %v/%v/%v", *m.Precision, *m.Recall, *m.F1)
	}
	// DataFlow matched by name but typed competitor vs product
	if !almostEqual(*m.Accuracy, 0.5) {
		t.Errorf("type accuracy = %v, want 0.5", *m.Accuracy)
	}
}

func TestSurfaceEvaluatorKeyPhrases(t *testing.T) {
	extracted, groundTruth := surfaceFixtures()
	e := NewSurfaceEvaluator(config.DefaultThresholds(), nil)
	report := e.Evaluate(extracted, groundTruth, surfaceTranscript())

	m := metricByName(t, report, "key_phrases")
	// "annual license" vs "annual license pricing" shares 2 of 3 tokens,
	// clearing the 0.4 threshold
	if !almostEqual(*m.Precision, 1) || !almostEqual(*m.Recall, 1) {
		t.Errorf("key phrases P/R = %v/%v", *m.Precision, *m.Recall)
	}
	if !almostEqual(*m.MAE, 0.1) {
		t.Errorf("relevance MAE = %v, want 0.1", *m.MAE)
	}
}

func TestSurfaceEvaluatorEmptySides(t *testing.T) {
	e := NewSurfaceEvaluator(config.DefaultThresholds(), nil)
	report := e.Evaluate(&signals.SurfaceSignals{}, &signals.SurfaceSignals{}, surfaceTranscript())

	for _, m := range report.SignalMetrics {
		if !almostEqual(*m.Precision, 1) || !almostEqual(*m.Recall, 1) || !almostEqual(*m.F1, 1) {
			t.Errorf("%s: empty vs empty should score 1/1/1, got %v/%v/%v",
				m.SignalName, *m.Precision, *m.Recall, *m.F1)
		}
		if m.Accuracy != nil || m.MAE != nil {
			t.Errorf("%s: no matched pairs should leave accuracy and MAE unset", m.SignalName)
		}
	}
}
