package extraction

import (
	"sort"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
)

// shortTranscriptTurns is the evidence-density floor for the psychographic
// layer. Below it, every Layer 3 signal is low-confidence no matter what the
// stage itself reports.
const shortTranscriptTurns = 10

// NoteShortTranscript annotates results degraded by the short-transcript policy
const NoteShortTranscript = "short transcript (<10 turns); psychographic signals marked low confidence"

// inferredRoleConfidenceCap bounds behavioral attributions that rest on
// inferred rather than supplied speaker roles
const inferredRoleConfidenceCap = 0.7

// IsShortTranscript is the input condition for the psychographic degradation
// policy
func IsShortTranscript(t *signals.Transcript) bool {
	return len(t.Utterances) < shortTranscriptTurns
}

// ApplyShortTranscriptPolicy marks all psychographic signals low-confidence
// when the transcript is too short to trust Layer 3 inference
func ApplyShortTranscriptPolicy(t *signals.Transcript, p *signals.PsychographicSignals) bool {
	if p == nil || !IsShortTranscript(t) {
		return false
	}
	p.MarkLowConfidence()
	return true
}

// ApplyInferredRolePolicy caps the confidence of role-attributed behavioral
// signals when speaker roles were inferred rather than supplied
func ApplyInferredRolePolicy(b *signals.BehavioralSignals, rolesInferred bool) {
	if b == nil || !rolesInferred {
		return
	}
	for i := range b.ObjectionTriples {
		if b.ObjectionTriples[i].Confidence > inferredRoleConfidenceCap {
			b.ObjectionTriples[i].Confidence = inferredRoleConfidenceCap
		}
	}
}

type aspectMention struct {
	sentiment signals.SentimentPolarity
	firstTurn int
	indices   []int
}

// DeriveSentimentReversals finds aspects whose polarity flips across repeated
// mentions. Purely derived from surface aspects ordered by earliest cited
// turn; mixed and neutral mentions do not participate.
func DeriveSentimentReversals(surface *signals.SurfaceSignals) []signals.SentimentReversal {
	if surface == nil {
		return nil
	}

	mentions := make(map[string][]aspectMention)
	for i := range surface.Aspects {
		a := &surface.Aspects[i]
		if a.Sentiment != signals.SentimentPositive && a.Sentiment != signals.SentimentNegative {
			continue
		}
		if len(a.SourceUtteranceIndices) == 0 {
			continue
		}
		first := a.SourceUtteranceIndices[0]
		for _, idx := range a.SourceUtteranceIndices {
			if idx < first {
				first = idx
			}
		}
		mentions[a.Aspect] = append(mentions[a.Aspect], aspectMention{
			sentiment: a.Sentiment,
			firstTurn: first,
			indices:   a.SourceUtteranceIndices,
		})
	}

	aspects := make([]string, 0, len(mentions))
	for name, ms := range mentions {
		if len(ms) > 1 {
			aspects = append(aspects, name)
		}
	}
	sort.Strings(aspects)

	var reversals []signals.SentimentReversal
	for _, name := range aspects {
		ms := mentions[name]
		sort.Slice(ms, func(a, b int) bool { return ms[a].firstTurn < ms[b].firstTurn })

		for i := 1; i < len(ms); i++ {
			if ms[i].sentiment == ms[i-1].sentiment {
				continue
			}
			indices := append(append([]int{}, ms[i-1].indices...), ms[i].indices...)
			sort.Ints(indices)
			reversals = append(reversals, signals.SentimentReversal{
				Aspect:                 name,
				From:                   ms[i-1].sentiment,
				To:                     ms[i].sentiment,
				SourceUtteranceIndices: indices,
			})
		}
	}
	return reversals
}

// OverallConfidence averages the confidence of behavioral and psychographic
// signals, defaulting to 0.5 when neither layer produced any
func OverallConfidence(b *signals.BehavioralSignals, p *signals.PsychographicSignals) float64 {
	var confidences []float64
	if b != nil {
		for i := range b.ObjectionTriples {
			confidences = append(confidences, b.ObjectionTriples[i].Confidence)
		}
		for i := range b.BuyingIntentMarkers {
			confidences = append(confidences, b.BuyingIntentMarkers[i].Confidence)
		}
	}
	if p != nil {
		confidences = append(confidences, p.MentalModel.Confidence)
		for i := range p.PersonaIndicators {
			confidences = append(confidences, p.PersonaIndicators[i].Confidence)
		}
	}
	if len(confidences) == 0 {
		return 0.5
	}
	var sum float64
	for _, c := range confidences {
		sum += c
	}
	return round2(sum / float64(len(confidences)))
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
