package signals

// MentalModelType is the fixed taxonomy of buyer evaluation frameworks
type MentalModelType string

const (
	MentalModelCostReduction    MentalModelType = "cost_reduction"
	MentalModelGrowthEnablement MentalModelType = "growth_enablement"
	MentalModelRiskMitigation   MentalModelType = "risk_mitigation"
	MentalModelEfficiency       MentalModelType = "efficiency"
)

// ArchetypeType is the fixed buyer archetype set
type ArchetypeType string

const (
	ArchetypeAnalyticalEvaluator ArchetypeType = "analytical_evaluator"
	ArchetypeExecutiveChampion   ArchetypeType = "executive_champion"
	ArchetypeReluctantAdopter    ArchetypeType = "reluctant_adopter"
)

// MentalModel is the evaluation framework the buyer is using
type MentalModel struct {
	Primary       MentalModelType `json:"primary" validate:"required,oneof=cost_reduction growth_enablement risk_mitigation efficiency"`
	Secondary     MentalModelType `json:"secondary,omitempty" validate:"omitempty,oneof=cost_reduction growth_enablement risk_mitigation efficiency"`
	Evidence      []string        `json:"evidence" validate:"required,min=1"`
	Confidence    float64         `json:"confidence" validate:"min=0,max=1"`
	Reasoning     string          `json:"reasoning" validate:"required"`
	LowConfidence bool            `json:"low_confidence,omitempty"`
}

// PersonaIndicator is a soft-assigned confidence for one archetype. Real
// subjects blend archetypes, so indicators never collapse to a hard label.
type PersonaIndicator struct {
	Archetype     ArchetypeType `json:"archetype" validate:"required,oneof=analytical_evaluator executive_champion reluctant_adopter"`
	Confidence    float64       `json:"confidence" validate:"min=0,max=1"`
	Evidence      []string      `json:"evidence" validate:"required,min=1"`
	Reasoning     string        `json:"reasoning,omitempty"`
	LowConfidence bool          `json:"low_confidence,omitempty"`
}

// LanguageFingerprint captures distinctive vocabulary and framing, derived
// transcript-wide so it carries no per-utterance provenance.
type LanguageFingerprint struct {
	DistinctiveVocabulary []string `json:"distinctive_vocabulary"`
	Metaphors             []string `json:"metaphors"`
	FramingPatterns       []string `json:"framing_patterns"`
	LowConfidence         bool     `json:"low_confidence,omitempty"`
}

// PsychographicSignals is the container for all Layer 3 psychographic signals
type PsychographicSignals struct {
	MentalModel         MentalModel         `json:"mental_model"`
	PersonaIndicators   []PersonaIndicator  `json:"persona_indicators" validate:"dive"`
	LanguageFingerprint LanguageFingerprint `json:"language_fingerprint"`
}

// MarkLowConfidence flags every psychographic signal as low-confidence
func (p *PsychographicSignals) MarkLowConfidence() {
	p.MentalModel.LowConfidence = true
	for i := range p.PersonaIndicators {
		p.PersonaIndicators[i].LowConfidence = true
	}
	p.LanguageFingerprint.LowConfidence = true
}
