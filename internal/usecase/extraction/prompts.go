package extraction

import (
	"fmt"
	"strings"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
)

// FormatTranscript renders a transcript into prompt text, one line per turn:
// [idx] speaker: [cues] text
func FormatTranscript(t *signals.Transcript) string {
	lines := make([]string, 0, len(t.Utterances))
	for i := range t.Utterances {
		lines = append(lines, FormatUtterance(&t.Utterances[i]))
	}
	return strings.Join(lines, "\n")
}

// FormatUtterance renders one turn the same way FormatTranscript does
func FormatUtterance(u *signals.Utterance) string {
	return fmt.Sprintf("[%d] %s:%s %s", u.TurnIndex, u.Speaker, formatCues(u.Paralinguistic), u.Text)
}

func formatCues(p *signals.ParalinguisticAnnotation) string {
	if p == nil {
		return ""
	}
	var parts []string
	if p.PauseBeforeSec > 0 {
		parts = append(parts, fmt.Sprintf("%gs pause", p.PauseBeforeSec))
	}
	if p.Energy != "" {
		parts = append(parts, "energy: "+strings.ToUpper(string(p.Energy)))
	}
	if p.Pitch != "" {
		parts = append(parts, "pitch: "+strings.ToUpper(string(p.Pitch)))
	}
	if len(p.HesitationMarkers) > 0 {
		parts = append(parts, "hesitation: "+strings.Join(p.HesitationMarkers, ", "))
	}
	if p.Tone != "" {
		parts = append(parts, "tone: "+p.Tone)
	}
	if len(p.Behaviors) > 0 {
		parts = append(parts, "behaviors: "+strings.Join(p.Behaviors, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, "; ") + "]"
}

const surfacePrompt = `You are analyzing a B2B sales call transcript. Extract surface-level signals.

Return ONLY valid JSON matching this shape, no commentary:
{
  "aspects": [
    {
      "aspect": "short name of the thing sentiment is about",
      "sentiment": "positive|negative|neutral|mixed",
      "intensity": 0.0,
      "context": "short quote or paraphrase",
      "source_utterance_indices": [0]
    }
  ],
  "topics": [
    {"name": "topic name", "timeline_position": "early|mid|late", "relevance": 0.0}
  ],
  "entities": [
    {"name": "entity name", "entity_type": "person|company|product|competitor", "role": "optional role", "mention_count": 1}
  ],
  "key_phrases": [
    {"phrase": "important term", "relevance": 0.0, "context": "optional context"}
  ]
}

Rules:
- An utterance may carry several aspects, each with its own polarity and intensity. Never collapse an utterance to a single score.
- source_utterance_indices use the bracketed turn numbers from the transcript.
- intensity and relevance are in [0,1].

Transcript:
%s`

const behavioralPrompt = `You are analyzing a B2B sales call transcript. Surface-level signals extracted earlier are provided as context. Extract behavioral signals.

Return ONLY valid JSON matching this shape, no commentary:
{
  "objection_triples": [
    {
      "objection": {
        "type": "pricing|implementation|competition|timeline|risk|authority|need|other",
        "specific_language": "the prospect's literal words",
        "speaker_role": "who raised it",
        "conversation_stage": "early|mid|late",
        "source_utterance_indices": [0]
      },
      "resolution": {
        "type": "roi_argument|social_proof|discount|phased_rollout|technical_demo|risk_mitigation|other",
        "specific_language": "the rep's literal words",
        "source_utterance_indices": [0]
      },
      "outcome": {"resolved": false, "deal_progressed": false, "next_action": ""},
      "confidence": 0.0
    }
  ],
  "buying_intent_markers": [
    {
      "type": "timeline_question|stakeholder_introduction|if_to_when_shift|implementation_detail|budget_confirmation|next_steps_request|other",
      "evidence": "literal language",
      "confidence": 0.0,
      "source_utterance_indices": [0]
    }
  ],
  "competitive_mentions": [
    {
      "competitor": "name",
      "context": "what was said",
      "sentiment": "positive|negative|neutral|mixed",
      "comparison_type": "optional",
      "source_utterance_indices": [0]
    }
  ],
  "engagement_trajectory": [
    {"phase": "early|mid|late", "participation_level": "low|moderate|high", "question_depth": "surface|moderate|deep", "energy": "low|medium|high", "notes": ""}
  ]
}

Rules:
- Every objection appears, including ones nobody addressed. When no resolution was attempted, set "resolution" to null and "resolved" to false. Unresolved objections are the most important output, never drop them.
- An if-to-when shift is a move from hypothetical phrasing ("if we did this") to committed phrasing ("when we roll this out").

Surface signals from earlier analysis:
%s

Transcript:
%s`

const psychographicPrompt = `You are analyzing a B2B sales call transcript. Surface and behavioral signals extracted earlier are provided as context. Extract psychographic signals about the prospect.

Return ONLY valid JSON matching this shape, no commentary:
{
  "mental_model": {
    "primary": "cost_reduction|growth_enablement|risk_mitigation|efficiency",
    "secondary": "cost_reduction|growth_enablement|risk_mitigation|efficiency",
    "evidence": ["literal quotes backing the classification"],
    "confidence": 0.0,
    "reasoning": "why this framework fits"
  },
  "persona_indicators": [
    {
      "archetype": "analytical_evaluator|executive_champion|reluctant_adopter",
      "confidence": 0.0,
      "evidence": ["literal quotes"],
      "reasoning": "optional"
    }
  ],
  "language_fingerprint": {
    "distinctive_vocabulary": ["words or phrases this person habitually uses"],
    "metaphors": ["metaphors or analogies they reach for"],
    "framing_patterns": ["how they frame decisions, e.g. cost framing, risk framing"]
  }
}

Rules:
- persona_indicators are soft scores across the archetype set. Real people blend archetypes; include every archetype with meaningful evidence, never a single hard label.
- "secondary" may be omitted when no second framework applies.
- Cite literal evidence for every classification.

Prior analysis:
%s

Transcript:
%s`

const summaryPrompt = `You are summarizing a B2B sales call transcript for a revenue team.

Return ONLY valid JSON matching this shape, no commentary:
{
  "executive_summary": "2-4 sentence summary of the call",
  "key_moments": [
    {"moment_type": "breakthrough|objection|commitment|risk|insight", "description": "what happened", "significance": "why it matters", "turn_indices": [0]}
  ],
  "action_items": [
    {"action": "what needs doing", "owner": "who", "criticality": "high|medium|low"}
  ],
  "prospect_priorities": ["what the prospect cares about most"],
  "concerns_to_address": ["open concerns going into the next call"]
}

Transcript:
%s`

const reformulatePrompt = `Your response is not valid JSON. Error: %s. Please return ONLY the corrected valid JSON with no commentary.`
