package extraction

import (
	"fmt"
	"math"
	"strings"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/pkg/config"
)

// NoteNonverbalUnavailable annotates a multimodal layer produced without any
// paralinguistic input
const NoteNonverbalUnavailable = "non-verbal signals unavailable; composite sentiment equals text sentiment"

// divergenceThreshold is the polarity gap on [-1,1] beyond which a text vs.
// non-verbal disagreement is flagged
const divergenceThreshold = 0.5

const (
	baseCompositeConfidence     = 0.9
	divergedCompositeConfidence = 0.5
)

// Cue lexicons for scoring pre-annotated paralinguistic markers. Scores are
// polarity contributions on [-1,1].
var toneScores = map[string]float64{
	"enthusiastic": 0.4, "excited": 0.4, "warm": 0.3, "confident": 0.3,
	"upbeat": 0.3, "engaged": 0.3, "curious": 0.2,
	"neutral": 0, "matter-of-fact": 0,
	"skeptical": -0.4, "flat": -0.3, "frustrated": -0.5, "hesitant": -0.3,
	"guarded": -0.3, "tense": -0.4, "dismissive": -0.5, "impatient": -0.4,
	"worried": -0.4, "resigned": -0.4, "distracted": -0.3,
}

var behaviorScores = map[string]float64{
	"leaning forward": 0.35, "nodding": 0.35, "smiling": 0.35,
	"taking notes": 0.3, "eye contact": 0.25, "animated gestures": 0.3,
	"looking away": -0.3, "checking phone": -0.4, "arms crossed": -0.3,
	"leaning back": -0.2, "frowning": -0.35, "shaking head": -0.4,
	"camera off": -0.25, "glancing at clock": -0.4, "multitasking": -0.35,
}

// DivergenceDetector fuses per-utterance text sentiment with paralinguistic
// cues into composite sentiment scores and divergence flags. Fully
// deterministic: no inference calls, cue lexicons only.
type DivergenceDetector struct {
	weights config.FusionWeights
}

// NewDivergenceDetector constructs a detector with the given fusion weights
func NewDivergenceDetector(weights config.FusionWeights) *DivergenceDetector {
	return &DivergenceDetector{weights: weights}
}

// Detect produces the multimodal layer for one transcript. Text sentiment per
// utterance is derived from surface aspects' provenance; a nil surface layer
// leaves every utterance neutral. Transcripts with no annotations get an
// empty layer with an explicit note.
func (d *DivergenceDetector) Detect(t *signals.Transcript, surface *signals.SurfaceSignals) *signals.MultimodalSignals {
	out := &signals.MultimodalSignals{
		Divergences:         []signals.DivergenceSignal{},
		CompositeSentiments: []signals.CompositeSentiment{},
	}
	if !t.HasParalinguistic() {
		out.Note = NoteNonverbalUnavailable
		return out
	}

	textPolarity := textPolarityByUtterance(surface)

	for i := range t.Utterances {
		u := &t.Utterances[i]
		if u.Paralinguistic == nil {
			continue
		}

		polarity := textPolarity[u.TurnIndex]
		if polarity == "" {
			polarity = signals.SentimentNeutral
		}
		textScore := polarityScore(polarity)

		audioScore, hasAudio := scoreAudio(u.Paralinguistic)
		videoScore, hasVideo := scoreVideo(u.Paralinguistic)

		composite := d.fuse(textScore, audioScore, videoScore, hasAudio, hasVideo)

		nonverbal, cues := nonverbalSummary(u.Paralinguistic, audioScore, videoScore, hasAudio, hasVideo)

		cs := signals.CompositeSentiment{
			UtteranceIndex:       u.TurnIndex,
			OriginalTextPolarity: polarity,
			AdjustedPolarity:     scoreToPolarity(composite),
			Score:                composite,
			Confidence:           baseCompositeConfidence,
		}

		if math.Abs(textScore-nonverbal) > divergenceThreshold {
			dt := classifyDivergence(textScore, nonverbal)
			cs.Confidence = divergedCompositeConfidence
			cs.Note = "text and non-verbal cues diverge"
			out.Divergences = append(out.Divergences, signals.DivergenceSignal{
				UtteranceIndex: u.TurnIndex,
				Type:           dt,
				TextSentiment:  polarity,
				NonverbalCues:  cues,
				Interpretation: interpretDivergence(dt),
				Confidence:     0.8,
			})
		}

		out.CompositeSentiments = append(out.CompositeSentiments, cs)
	}
	return out
}

// fuse computes the weighted composite, renormalizing weights proportionally
// over the modalities actually present. Text is always present.
func (d *DivergenceDetector) fuse(text, audio, video float64, hasAudio, hasVideo bool) float64 {
	wText := d.weights.Text
	wAudio := 0.0
	wVideo := 0.0
	if hasAudio {
		wAudio = d.weights.Audio
	}
	if hasVideo {
		wVideo = d.weights.Video
	}
	total := wText + wAudio + wVideo
	if total == 0 {
		return text
	}
	return (wText*text + wAudio*audio + wVideo*video) / total
}

// textPolarityByUtterance votes each utterance's polarity from the surface
// aspects that cite it. Conflicting positive and negative votes yield mixed;
// utterances no aspect cites stay neutral.
func textPolarityByUtterance(surface *signals.SurfaceSignals) map[int]signals.SentimentPolarity {
	polarity := make(map[int]signals.SentimentPolarity)
	if surface == nil {
		return polarity
	}
	type votes struct{ pos, neg bool }
	tally := make(map[int]*votes)
	for i := range surface.Aspects {
		a := &surface.Aspects[i]
		for _, idx := range a.SourceUtteranceIndices {
			v := tally[idx]
			if v == nil {
				v = &votes{}
				tally[idx] = v
			}
			switch a.Sentiment {
			case signals.SentimentPositive:
				v.pos = true
			case signals.SentimentNegative:
				v.neg = true
			case signals.SentimentMixed:
				v.pos, v.neg = true, true
			}
		}
	}
	for idx, v := range tally {
		switch {
		case v.pos && v.neg:
			polarity[idx] = signals.SentimentMixed
		case v.pos:
			polarity[idx] = signals.SentimentPositive
		case v.neg:
			polarity[idx] = signals.SentimentNegative
		default:
			polarity[idx] = signals.SentimentNeutral
		}
	}
	return polarity
}

func polarityScore(p signals.SentimentPolarity) float64 {
	switch p {
	case signals.SentimentPositive:
		return 1.0
	case signals.SentimentNegative:
		return -1.0
	default:
		// neutral and mixed both sit at zero on the polarity axis
		return 0.0
	}
}

func scoreToPolarity(score float64) signals.SentimentPolarity {
	switch {
	case score > 0.15:
		return signals.SentimentPositive
	case score < -0.15:
		return signals.SentimentNegative
	default:
		return signals.SentimentNeutral
	}
}

func scoreAudio(p *signals.ParalinguisticAnnotation) (float64, bool) {
	if !p.HasAudio() {
		return 0, false
	}
	var score float64
	switch p.Energy {
	case signals.EnergyHigh:
		score += 0.4
	case signals.EnergyLow:
		score -= 0.4
	}
	switch p.Pitch {
	case signals.PitchRising:
		score += 0.2
	case signals.PitchFalling:
		score -= 0.2
	}
	hesitation := 0.15 * float64(len(p.HesitationMarkers))
	if hesitation > 0.45 {
		hesitation = 0.45
	}
	score -= hesitation
	if p.PauseBeforeSec >= 2.0 {
		score -= 0.2
	} else if p.PauseBeforeSec >= 1.0 {
		score -= 0.1
	}
	if v, ok := toneScores[strings.ToLower(p.Tone)]; ok {
		score += v
	}
	return clampPolarity(score), true
}

func scoreVideo(p *signals.ParalinguisticAnnotation) (float64, bool) {
	if !p.HasVideo() {
		return 0, false
	}
	var score float64
	for _, b := range p.Behaviors {
		if v, ok := behaviorScores[strings.ToLower(b)]; ok {
			score += v
		}
	}
	return clampPolarity(score), true
}

func clampPolarity(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// nonverbalSummary takes the plain mean of the present non-text modalities
// and lists the raw cues for the divergence record
func nonverbalSummary(p *signals.ParalinguisticAnnotation, audio, video float64, hasAudio, hasVideo bool) (float64, []string) {
	var score float64
	switch {
	case hasAudio && hasVideo:
		score = (audio + video) / 2
	case hasAudio:
		score = audio
	case hasVideo:
		score = video
	}

	var cues []string
	if p.Energy != "" {
		cues = append(cues, "energy: "+string(p.Energy))
	}
	if p.Pitch != "" {
		cues = append(cues, "pitch: "+string(p.Pitch))
	}
	if p.PauseBeforeSec >= 1.0 {
		cues = append(cues, fmt.Sprintf("%gs pause", p.PauseBeforeSec))
	}
	for _, h := range p.HesitationMarkers {
		cues = append(cues, "hesitation: "+h)
	}
	if p.Tone != "" {
		cues = append(cues, "tone: "+p.Tone)
	}
	cues = append(cues, p.Behaviors...)
	if len(cues) == 0 {
		cues = []string{"(annotations present, no scored cues)"}
	}
	return score, cues
}

func classifyDivergence(text, nonverbal float64) signals.DivergenceType {
	switch {
	case text > 0 && nonverbal < text:
		return signals.DivergenceTextPositiveAudioNegative
	case text < 0 && nonverbal > text:
		return signals.DivergenceTextNegativeAudioPositive
	case nonverbal < 0:
		return signals.DivergenceTextNeutralAudioNegative
	default:
		return signals.DivergenceTextNeutralAudioPositive
	}
}

func interpretDivergence(t signals.DivergenceType) string {
	switch t {
	case signals.DivergenceTextPositiveAudioNegative:
		return "polite agreement may be masking reservations"
	case signals.DivergenceTextNegativeAudioPositive:
		return "stated concern delivered with engaged energy; likely negotiable"
	case signals.DivergenceTextNeutralAudioNegative:
		return "neutral words with negative delivery; probe for an unstated concern"
	default:
		return "neutral words with positive delivery; interest may exceed what was said"
	}
}
