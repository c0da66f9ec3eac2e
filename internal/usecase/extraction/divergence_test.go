package extraction

import (
	"math"
	"testing"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/pkg/config"
)

func newDetector() *DivergenceDetector {
	return NewDivergenceDetector(config.DefaultFusionWeights())
}

func TestDetectNoAnnotationsIsNoOp(t *testing.T) {
	d := newDetector()
	transcript := &signals.Transcript{
		CallMetadata: signals.CallMetadata{CallID: "call-001"},
		Utterances: []signals.Utterance{
			{Speaker: "jordan", Text: "The pricing looks great.", TurnIndex: 0},
		},
	}
	surface := &signals.SurfaceSignals{
		Aspects: []signals.AspectSentiment{
			{Aspect: "pricing", Sentiment: signals.SentimentPositive, Intensity: 0.8, SourceUtteranceIndices: []int{0}},
		},
	}

	out := d.Detect(transcript, surface)
	if len(out.Divergences) != 0 || len(out.CompositeSentiments) != 0 {
		t.Fatal("no-annotation transcript must produce an empty multimodal layer")
	}
	if out.Note != NoteNonverbalUnavailable {
		t.Errorf("note = %q, want explicit unavailable note", out.Note)
	}
}

func TestFuseThreeModalityWeights(t *testing.T) {
	d := newDetector()
	// All three modalities present: exact 0.40/0.35/0.25 weighted sum.
	got := d.fuse(1.0, -0.4, 0.6, true, true)
	want := 0.40*1.0 + 0.35*-0.4 + 0.25*0.6
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("fuse = %v, want %v", got, want)
	}
}

func TestFuseRenormalizesMissingModality(t *testing.T) {
	d := newDetector()
	// Text + audio only: weights renormalize to 0.4/0.75 and 0.35/0.75.
	got := d.fuse(1.0, -1.0, 0, true, false)
	want := (0.40*1.0 + 0.35*-1.0) / 0.75
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("fuse = %v, want %v", got, want)
	}
	// Text alone reproduces the text score exactly.
	if got := d.fuse(0.6, 0, 0, false, false); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("text-only fuse = %v, want 0.6", got)
	}
}

func TestDetectFlagsPositiveTextNegativeDelivery(t *testing.T) {
	d := newDetector()
	transcript := &signals.Transcript{
		CallMetadata: signals.CallMetadata{CallID: "call-002"},
		Utterances: []signals.Utterance{
			{
				Speaker: "sam", Text: "Sounds good, we are excited about this.", TurnIndex: 0,
				Paralinguistic: &signals.ParalinguisticAnnotation{
					PauseBeforeSec:    2.5,
					Energy:            signals.EnergyLow,
					Pitch:             signals.PitchFalling,
					HesitationMarkers: []string{"um", "uh"},
					Tone:              "flat",
				},
			},
		},
	}
	surface := &signals.SurfaceSignals{
		Aspects: []signals.AspectSentiment{
			{Aspect: "proposal", Sentiment: signals.SentimentPositive, Intensity: 0.7, SourceUtteranceIndices: []int{0}},
		},
	}

	out := d.Detect(transcript, surface)
	if len(out.Divergences) != 1 {
		t.Fatalf("expected 1 divergence, got %d", len(out.Divergences))
	}
	div := out.Divergences[0]
	if div.Type != signals.DivergenceTextPositiveAudioNegative {
		t.Errorf("divergence type = %q", div.Type)
	}
	if div.TextSentiment != signals.SentimentPositive {
		t.Errorf("text sentiment = %q", div.TextSentiment)
	}
	if len(div.NonverbalCues) == 0 {
		t.Error("divergence must list the contributing cues")
	}

	if len(out.CompositeSentiments) != 1 {
		t.Fatalf("expected 1 composite sentiment, got %d", len(out.CompositeSentiments))
	}
	cs := out.CompositeSentiments[0]
	if cs.Confidence >= baseCompositeConfidence {
		t.Errorf("diverged composite must carry reduced confidence, got %v", cs.Confidence)
	}
	if cs.OriginalTextPolarity != signals.SentimentPositive {
		t.Errorf("original polarity = %q", cs.OriginalTextPolarity)
	}
}

func TestDetectAlignedCuesNotFlagged(t *testing.T) {
	d := newDetector()
	transcript := &signals.Transcript{
		CallMetadata: signals.CallMetadata{CallID: "call-003"},
		Utterances: []signals.Utterance{
			{
				Speaker: "sam", Text: "This would transform our workflow.", TurnIndex: 0,
				Paralinguistic: &signals.ParalinguisticAnnotation{
					Energy: signals.EnergyHigh,
					Pitch:  signals.PitchRising,
					Tone:   "enthusiastic",
				},
			},
		},
	}
	surface := &signals.SurfaceSignals{
		Aspects: []signals.AspectSentiment{
			{Aspect: "workflow impact", Sentiment: signals.SentimentPositive, Intensity: 0.9, SourceUtteranceIndices: []int{0}},
		},
	}

	out := d.Detect(transcript, surface)
	if len(out.Divergences) != 0 {
		t.Fatalf("aligned cues must not be flagged, got %d divergences", len(out.Divergences))
	}
	cs := out.CompositeSentiments[0]
	if cs.Confidence != baseCompositeConfidence {
		t.Errorf("aligned composite confidence = %v", cs.Confidence)
	}
	if cs.AdjustedPolarity != signals.SentimentPositive {
		t.Errorf("adjusted polarity = %q", cs.AdjustedPolarity)
	}
}

func TestDetectNeutralTextNegativeDelivery(t *testing.T) {
	d := newDetector()
	transcript := &signals.Transcript{
		CallMetadata: signals.CallMetadata{CallID: "call-004"},
		Utterances: []signals.Utterance{
			{
				Speaker: "sam", Text: "We will review the materials.", TurnIndex: 0,
				Paralinguistic: &signals.ParalinguisticAnnotation{
					Behaviors: []string{"checking phone", "leaning back", "glancing at clock"},
				},
			},
		},
	}

	// No surface aspect cites turn 0, so its text polarity is neutral.
	out := d.Detect(transcript, &signals.SurfaceSignals{})
	if len(out.Divergences) != 1 {
		t.Fatalf("expected 1 divergence, got %d", len(out.Divergences))
	}
	if out.Divergences[0].Type != signals.DivergenceTextNeutralAudioNegative {
		t.Errorf("divergence type = %q", out.Divergences[0].Type)
	}
}

func TestTextPolarityVoting(t *testing.T) {
	surface := &signals.SurfaceSignals{
		Aspects: []signals.AspectSentiment{
			{Aspect: "pricing", Sentiment: signals.SentimentPositive, SourceUtteranceIndices: []int{1}},
			{Aspect: "timeline", Sentiment: signals.SentimentNegative, SourceUtteranceIndices: []int{1}},
			{Aspect: "support", Sentiment: signals.SentimentNegative, SourceUtteranceIndices: []int{2}},
		},
	}
	polarity := textPolarityByUtterance(surface)
	if polarity[1] != signals.SentimentMixed {
		t.Errorf("conflicting votes must yield mixed, got %q", polarity[1])
	}
	if polarity[2] != signals.SentimentNegative {
		t.Errorf("polarity[2] = %q", polarity[2])
	}
	if _, ok := polarity[3]; ok {
		t.Error("uncited utterance must not appear in the polarity map")
	}
}
