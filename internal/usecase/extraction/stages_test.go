package extraction

import (
	"testing"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
)

func shortTranscript(turns int) *signals.Transcript {
	t := &signals.Transcript{CallMetadata: signals.CallMetadata{CallID: "call-short"}}
	for i := 0; i < turns; i++ {
		t.Utterances = append(t.Utterances, signals.Utterance{
			Speaker: "kim", Text: "turn", TurnIndex: i,
		})
	}
	return t
}

func TestShortTranscriptPolicy(t *testing.T) {
	p := &signals.PsychographicSignals{
		MentalModel: signals.MentalModel{Primary: signals.MentalModelEfficiency, Confidence: 0.9},
		PersonaIndicators: []signals.PersonaIndicator{
			{Archetype: signals.ArchetypeExecutiveChampion, Confidence: 0.8},
		},
	}

	if !ApplyShortTranscriptPolicy(shortTranscript(9), p) {
		t.Fatal("9-turn transcript must trigger the policy")
	}
	if !p.MentalModel.LowConfidence {
		t.Error("mental model not marked low confidence")
	}
	if !p.PersonaIndicators[0].LowConfidence {
		t.Error("persona indicator not marked low confidence")
	}
	if !p.LanguageFingerprint.LowConfidence {
		t.Error("language fingerprint not marked low confidence")
	}

	q := &signals.PsychographicSignals{}
	if ApplyShortTranscriptPolicy(shortTranscript(10), q) {
		t.Error("10-turn transcript must not trigger the policy")
	}
}

func TestInferredRolePolicyCapsConfidence(t *testing.T) {
	b := &signals.BehavioralSignals{
		ObjectionTriples: []signals.ObjectionTriple{
			{Confidence: 0.95},
			{Confidence: 0.6},
		},
	}
	ApplyInferredRolePolicy(b, true)
	if b.ObjectionTriples[0].Confidence != inferredRoleConfidenceCap {
		t.Errorf("high confidence not capped: %v", b.ObjectionTriples[0].Confidence)
	}
	if b.ObjectionTriples[1].Confidence != 0.6 {
		t.Errorf("confidence below the cap must not change: %v", b.ObjectionTriples[1].Confidence)
	}

	c := &signals.BehavioralSignals{ObjectionTriples: []signals.ObjectionTriple{{Confidence: 0.95}}}
	ApplyInferredRolePolicy(c, false)
	if c.ObjectionTriples[0].Confidence != 0.95 {
		t.Error("policy must be a no-op when roles were supplied")
	}
}

func TestDeriveSentimentReversals(t *testing.T) {
	surface := &signals.SurfaceSignals{
		Aspects: []signals.AspectSentiment{
			{Aspect: "pricing", Sentiment: signals.SentimentNegative, SourceUtteranceIndices: []int{2}},
			{Aspect: "pricing", Sentiment: signals.SentimentPositive, SourceUtteranceIndices: []int{14}},
			{Aspect: "timeline", Sentiment: signals.SentimentNegative, SourceUtteranceIndices: []int{5}},
			{Aspect: "timeline", Sentiment: signals.SentimentNegative, SourceUtteranceIndices: []int{9}},
		},
	}

	reversals := DeriveSentimentReversals(surface)
	if len(reversals) != 1 {
		t.Fatalf("expected 1 reversal, got %d", len(reversals))
	}
	r := reversals[0]
	if r.Aspect != "pricing" {
		t.Errorf("aspect = %q", r.Aspect)
	}
	if r.From != signals.SentimentNegative || r.To != signals.SentimentPositive {
		t.Errorf("reversal %q -> %q", r.From, r.To)
	}
	if len(r.SourceUtteranceIndices) != 2 || r.SourceUtteranceIndices[0] != 2 || r.SourceUtteranceIndices[1] != 14 {
		t.Errorf("indices = %v", r.SourceUtteranceIndices)
	}
}

func TestDeriveSentimentReversalsOrderedByTurn(t *testing.T) {
	// Later mention listed first in the input; ordering must follow turns.
	surface := &signals.SurfaceSignals{
		Aspects: []signals.AspectSentiment{
			{Aspect: "support", Sentiment: signals.SentimentPositive, SourceUtteranceIndices: []int{12}},
			{Aspect: "support", Sentiment: signals.SentimentNegative, SourceUtteranceIndices: []int{3}},
		},
	}
	reversals := DeriveSentimentReversals(surface)
	if len(reversals) != 1 {
		t.Fatalf("expected 1 reversal, got %d", len(reversals))
	}
	if reversals[0].From != signals.SentimentNegative || reversals[0].To != signals.SentimentPositive {
		t.Errorf("reversal %q -> %q, want negative -> positive", reversals[0].From, reversals[0].To)
	}
}

func TestDeriveSentimentReversalsIgnoresNeutral(t *testing.T) {
	surface := &signals.SurfaceSignals{
		Aspects: []signals.AspectSentiment{
			{Aspect: "roadmap", Sentiment: signals.SentimentNeutral, SourceUtteranceIndices: []int{1}},
			{Aspect: "roadmap", Sentiment: signals.SentimentPositive, SourceUtteranceIndices: []int{8}},
		},
	}
	if got := DeriveSentimentReversals(surface); len(got) != 0 {
		t.Errorf("neutral mentions must not form reversals, got %v", got)
	}
	if got := DeriveSentimentReversals(nil); got != nil {
		t.Errorf("nil surface must yield nil, got %v", got)
	}
}

func TestOverallConfidence(t *testing.T) {
	b := &signals.BehavioralSignals{
		ObjectionTriples:    []signals.ObjectionTriple{{Confidence: 0.8}},
		BuyingIntentMarkers: []signals.BuyingIntentMarker{{Confidence: 0.6}},
	}
	p := &signals.PsychographicSignals{
		MentalModel:       signals.MentalModel{Confidence: 0.7},
		PersonaIndicators: []signals.PersonaIndicator{{Confidence: 0.9}},
	}
	if got := OverallConfidence(b, p); got != 0.75 {
		t.Errorf("overall confidence = %v, want 0.75", got)
	}
	if got := OverallConfidence(nil, nil); got != 0.5 {
		t.Errorf("default confidence = %v, want 0.5", got)
	}
}
