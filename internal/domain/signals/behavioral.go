package signals

// ObjectionType classifies a prospect concern
type ObjectionType string

const (
	ObjectionPricing        ObjectionType = "pricing"
	ObjectionImplementation ObjectionType = "implementation"
	ObjectionCompetition    ObjectionType = "competition"
	ObjectionTimeline       ObjectionType = "timeline"
	ObjectionRisk           ObjectionType = "risk"
	ObjectionAuthority      ObjectionType = "authority"
	ObjectionNeed           ObjectionType = "need"
	ObjectionOther          ObjectionType = "other"
)

// ResolutionType classifies how a rep attempted to address an objection
type ResolutionType string

const (
	ResolutionROIArgument    ResolutionType = "roi_argument"
	ResolutionSocialProof    ResolutionType = "social_proof"
	ResolutionDiscount       ResolutionType = "discount"
	ResolutionPhasedRollout  ResolutionType = "phased_rollout"
	ResolutionTechnicalDemo  ResolutionType = "technical_demo"
	ResolutionRiskMitigation ResolutionType = "risk_mitigation"
	ResolutionOther          ResolutionType = "other"
)

// IntentMarkerType classifies buying-intent cues
type IntentMarkerType string

const (
	IntentTimelineQuestion        IntentMarkerType = "timeline_question"
	IntentStakeholderIntroduction IntentMarkerType = "stakeholder_introduction"
	IntentIfToWhenShift           IntentMarkerType = "if_to_when_shift"
	IntentImplementationDetail    IntentMarkerType = "implementation_detail"
	IntentBudgetConfirmation      IntentMarkerType = "budget_confirmation"
	IntentNextStepsRequest        IntentMarkerType = "next_steps_request"
	IntentOther                   IntentMarkerType = "other"
)

// Objection is a concern or pushback raised by the prospect
type Objection struct {
	Type                   ObjectionType `json:"type" validate:"required,oneof=pricing implementation competition timeline risk authority need other"`
	SpecificLanguage       string        `json:"specific_language" validate:"required"`
	SpeakerRole            string        `json:"speaker_role" validate:"required"`
	ConversationStage      string        `json:"conversation_stage" validate:"required,oneof=early mid late"`
	SourceUtteranceIndices []int         `json:"source_utterance_indices" validate:"required,min=1"`
}

// Resolution is a sales rep's attempt to address an objection
type Resolution struct {
	Type                   ResolutionType `json:"type" validate:"required,oneof=roi_argument social_proof discount phased_rollout technical_demo risk_mitigation other"`
	SpecificLanguage       string         `json:"specific_language" validate:"required"`
	SpeakerRole            string         `json:"speaker_role,omitempty"`
	SourceUtteranceIndices []int          `json:"source_utterance_indices" validate:"required,min=1"`
}

// ObjectionOutcome is the result of an objection-resolution exchange
type ObjectionOutcome struct {
	Resolved       bool   `json:"resolved"`
	DealProgressed bool   `json:"deal_progressed"`
	NextAction     string `json:"next_action,omitempty"`
}

// ObjectionTriple links a raised concern to how it was handled and what
// followed. An objection with no resolution attempt keeps Resolution nil and
// Resolved false. Unresolved objections are first-class output, never dropped.
type ObjectionTriple struct {
	Objection  Objection        `json:"objection" validate:"required"`
	Resolution *Resolution      `json:"resolution"`
	Outcome    ObjectionOutcome `json:"outcome"`
	Confidence float64          `json:"confidence" validate:"min=0,max=1"`
}

// BuyingIntentMarker is a linguistic cue that correlates with deal progression
type BuyingIntentMarker struct {
	Type                   IntentMarkerType `json:"type" validate:"required,oneof=timeline_question stakeholder_introduction if_to_when_shift implementation_detail budget_confirmation next_steps_request other"`
	Evidence               string           `json:"evidence" validate:"required"`
	Confidence             float64          `json:"confidence" validate:"min=0,max=1"`
	SourceUtteranceIndices []int            `json:"source_utterance_indices" validate:"required,min=1"`
}

// CompetitiveMention is a reference to a competitor during the call
type CompetitiveMention struct {
	Competitor             string            `json:"competitor" validate:"required"`
	Context                string            `json:"context" validate:"required"`
	Sentiment              SentimentPolarity `json:"sentiment" validate:"required,oneof=positive negative neutral mixed"`
	ComparisonType         string            `json:"comparison_type,omitempty"`
	SourceUtteranceIndices []int             `json:"source_utterance_indices" validate:"required,min=1"`
}

// EngagementTrajectoryPoint is prospect engagement at one conversation phase
type EngagementTrajectoryPoint struct {
	Phase              string `json:"phase" validate:"required,oneof=early mid late"`
	ParticipationLevel string `json:"participation_level" validate:"required,oneof=low moderate high"`
	QuestionDepth      string `json:"question_depth" validate:"required,oneof=surface moderate deep"`
	Energy             string `json:"energy" validate:"required,oneof=low medium high"`
	Notes              string `json:"notes,omitempty"`
}

// SentimentReversal flags an aspect whose polarity flips across repeated
// mentions, derived from surface aspects and ordered by turn index.
type SentimentReversal struct {
	Aspect                 string            `json:"aspect" validate:"required"`
	From                   SentimentPolarity `json:"from" validate:"required,oneof=positive negative neutral mixed"`
	To                     SentimentPolarity `json:"to" validate:"required,oneof=positive negative neutral mixed"`
	SourceUtteranceIndices []int             `json:"source_utterance_indices" validate:"required,min=2"`
}

// BehavioralSignals is the container for all Layer 2 behavioral signals
type BehavioralSignals struct {
	ObjectionTriples     []ObjectionTriple           `json:"objection_triples" validate:"dive"`
	BuyingIntentMarkers  []BuyingIntentMarker        `json:"buying_intent_markers" validate:"dive"`
	CompetitiveMentions  []CompetitiveMention        `json:"competitive_mentions" validate:"dive"`
	EngagementTrajectory []EngagementTrajectoryPoint `json:"engagement_trajectory" validate:"dive"`
	SentimentReversals   []SentimentReversal         `json:"sentiment_reversals,omitempty" validate:"dive"`
}
