package extraction

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
)

// Parser cleans and decodes LLM JSON output into typed signal layers.
// Model output is not trusted: markdown fences are stripped, common JSON
// defects are repaired, and out-of-vocabulary enum values are coerced before
// schema validation runs.
type Parser struct {
	annotationRe    *regexp.Regexp
	trailingCommaRe *regexp.Regexp
}

// NewParser constructs a parser
func NewParser() *Parser {
	return &Parser{
		// "value" - commentary  →  "value - commentary"
		annotationRe: regexp.MustCompile(`"([^"]*?)"\s+-\s+([^"\n,\]\}]+?)\s*([,\]\}])`),
		// trailing commas before ] or }
		trailingCommaRe: regexp.MustCompile(`,(\s*[}\]])`),
	}
}

// CleanJSON strips markdown fences and returns the JSON body of a response
func (p *Parser) CleanJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	start := 1
	end := len(lines)
	for i := len(lines) - 1; i > 0; i-- {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			end = i
			break
		}
	}
	if start > end {
		return text
	}
	return strings.Join(lines[start:end], "\n")
}

// RepairJSON fixes defects the model produces often enough to matter:
// unquoted annotations dangling after string values, and trailing commas.
func (p *Parser) RepairJSON(text string) string {
	text = p.annotationRe.ReplaceAllString(text, `"$1 - $2"$3`)
	text = p.trailingCommaRe.ReplaceAllString(text, `$1`)
	return text
}

// Decode cleans a raw response and unmarshals it into v, repairing the JSON
// on a first-pass decode failure
func (p *Parser) Decode(raw string, v interface{}) error {
	text := p.CleanJSON(raw)
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}
	return json.Unmarshal([]byte(p.RepairJSON(text)), v)
}

// coerceEnum maps an out-of-vocabulary value to "other" when the vocabulary
// has it, otherwise to the first valid value. Empty stays empty for optional
// fields; callers pass fallbackEmpty=false to force a value.
func coerceEnum(value string, valid []string, allowEmpty bool) string {
	if value == "" && allowEmpty {
		return ""
	}
	for _, v := range valid {
		if value == v {
			return value
		}
	}
	for _, v := range valid {
		if v == "other" {
			return "other"
		}
	}
	return valid[0]
}

var (
	sentimentValues  = []string{"positive", "negative", "neutral", "mixed"}
	entityValues     = []string{"person", "company", "product", "competitor"}
	timelineValues   = []string{"early", "mid", "late"}
	objectionValues  = []string{"pricing", "implementation", "competition", "timeline", "risk", "authority", "need", "other"}
	resolutionValues = []string{"roi_argument", "social_proof", "discount", "phased_rollout", "technical_demo", "risk_mitigation", "other"}
	intentValues     = []string{"timeline_question", "stakeholder_introduction", "if_to_when_shift", "implementation_detail", "budget_confirmation", "next_steps_request", "other"}
	mentalValues     = []string{"cost_reduction", "growth_enablement", "risk_mitigation", "efficiency"}
	archetypeValues  = []string{"analytical_evaluator", "executive_champion", "reluctant_adopter"}
	participationVal = []string{"low", "moderate", "high"}
	questionDepthVal = []string{"surface", "moderate", "deep"}
	energyValues     = []string{"low", "medium", "high"}
	momentValues     = []string{"breakthrough", "objection", "commitment", "risk", "insight"}
	criticalityVal   = []string{"high", "medium", "low"}
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CoerceSurface normalizes decoded surface signals to the closed vocabularies
func (p *Parser) CoerceSurface(s *signals.SurfaceSignals) {
	for i := range s.Aspects {
		a := &s.Aspects[i]
		a.Sentiment = signals.SentimentPolarity(coerceEnum(string(a.Sentiment), sentimentValues, false))
		a.Intensity = clamp01(a.Intensity)
	}
	for i := range s.Topics {
		t := &s.Topics[i]
		t.TimelinePosition = coerceEnum(t.TimelinePosition, timelineValues, false)
		t.Relevance = clamp01(t.Relevance)
	}
	for i := range s.Entities {
		e := &s.Entities[i]
		e.EntityType = signals.EntityType(coerceEnum(string(e.EntityType), entityValues, false))
		if e.MentionCount < 1 {
			e.MentionCount = 1
		}
	}
	for i := range s.KeyPhrases {
		s.KeyPhrases[i].Relevance = clamp01(s.KeyPhrases[i].Relevance)
	}
}

// CoerceBehavioral normalizes decoded behavioral signals
func (p *Parser) CoerceBehavioral(b *signals.BehavioralSignals) {
	for i := range b.ObjectionTriples {
		t := &b.ObjectionTriples[i]
		t.Objection.Type = signals.ObjectionType(coerceEnum(string(t.Objection.Type), objectionValues, false))
		t.Objection.ConversationStage = coerceEnum(t.Objection.ConversationStage, timelineValues, false)
		if t.Resolution != nil {
			t.Resolution.Type = signals.ResolutionType(coerceEnum(string(t.Resolution.Type), resolutionValues, false))
		}
		t.Confidence = clamp01(t.Confidence)
	}
	for i := range b.BuyingIntentMarkers {
		m := &b.BuyingIntentMarkers[i]
		m.Type = signals.IntentMarkerType(coerceEnum(string(m.Type), intentValues, false))
		m.Confidence = clamp01(m.Confidence)
	}
	for i := range b.CompetitiveMentions {
		c := &b.CompetitiveMentions[i]
		c.Sentiment = signals.SentimentPolarity(coerceEnum(string(c.Sentiment), sentimentValues, false))
	}
	for i := range b.EngagementTrajectory {
		e := &b.EngagementTrajectory[i]
		e.Phase = coerceEnum(e.Phase, timelineValues, false)
		e.ParticipationLevel = coerceEnum(e.ParticipationLevel, participationVal, false)
		e.QuestionDepth = coerceEnum(e.QuestionDepth, questionDepthVal, false)
		e.Energy = coerceEnum(e.Energy, energyValues, false)
	}
}

// CoercePsychographic normalizes decoded psychographic signals
func (p *Parser) CoercePsychographic(ps *signals.PsychographicSignals) {
	ps.MentalModel.Primary = signals.MentalModelType(coerceEnum(string(ps.MentalModel.Primary), mentalValues, false))
	ps.MentalModel.Secondary = signals.MentalModelType(coerceEnum(string(ps.MentalModel.Secondary), mentalValues, true))
	ps.MentalModel.Confidence = clamp01(ps.MentalModel.Confidence)
	if len(ps.MentalModel.Evidence) == 0 {
		ps.MentalModel.Evidence = []string{"(no evidence cited)"}
	}
	if ps.MentalModel.Reasoning == "" {
		ps.MentalModel.Reasoning = "(no reasoning given)"
	}
	for i := range ps.PersonaIndicators {
		ind := &ps.PersonaIndicators[i]
		ind.Archetype = signals.ArchetypeType(coerceEnum(string(ind.Archetype), archetypeValues, false))
		ind.Confidence = clamp01(ind.Confidence)
		if len(ind.Evidence) == 0 {
			ind.Evidence = []string{"(no evidence cited)"}
		}
	}
}

// CoerceSummary normalizes a decoded transcript summary
func (p *Parser) CoerceSummary(s *signals.TranscriptSummary) {
	for i := range s.KeyMoments {
		s.KeyMoments[i].MomentType = coerceEnum(s.KeyMoments[i].MomentType, momentValues, false)
	}
	for i := range s.ActionItems {
		s.ActionItems[i].Criticality = coerceEnum(s.ActionItems[i].Criticality, criticalityVal, false)
	}
}
