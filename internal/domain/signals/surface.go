package signals

// SentimentPolarity is the closed sentiment vocabulary shared across layers
type SentimentPolarity string

const (
	SentimentPositive SentimentPolarity = "positive"
	SentimentNegative SentimentPolarity = "negative"
	SentimentNeutral  SentimentPolarity = "neutral"
	SentimentMixed    SentimentPolarity = "mixed"
)

// EntityType tags a named entity
type EntityType string

const (
	EntityPerson     EntityType = "person"
	EntityCompany    EntityType = "company"
	EntityProduct    EntityType = "product"
	EntityCompetitor EntityType = "competitor"
)

// AspectSentiment is sentiment about one specific aspect. An utterance can
// carry several aspects, each with independent polarity and intensity.
type AspectSentiment struct {
	Aspect                 string            `json:"aspect" validate:"required"`
	Sentiment              SentimentPolarity `json:"sentiment" validate:"required,oneof=positive negative neutral mixed"`
	Intensity              float64           `json:"intensity" validate:"min=0,max=1"`
	Context                string            `json:"context,omitempty"`
	SourceUtteranceIndices []int             `json:"source_utterance_indices" validate:"required,min=1"`
}

// TopicDetection is a topic with an approximate position in the conversation
type TopicDetection struct {
	Name             string  `json:"name" validate:"required"`
	TimelinePosition string  `json:"timeline_position" validate:"required,oneof=early mid late"`
	Relevance        float64 `json:"relevance" validate:"min=0,max=1"`
}

// NamedEntity is a person, company, product, or competitor mentioned in the call
type NamedEntity struct {
	Name         string     `json:"name" validate:"required"`
	EntityType   EntityType `json:"entity_type" validate:"required,oneof=person company product competitor"`
	Role         string     `json:"role,omitempty"`
	MentionCount int        `json:"mention_count" validate:"min=1"`
}

// KeyPhrase is an important term or concept from the conversation
type KeyPhrase struct {
	Phrase    string  `json:"phrase" validate:"required"`
	Relevance float64 `json:"relevance" validate:"min=0,max=1"`
	Context   string  `json:"context,omitempty"`
}

// SurfaceSignals is the container for all Layer 1 surface signals
type SurfaceSignals struct {
	Aspects    []AspectSentiment `json:"aspects" validate:"dive"`
	Topics     []TopicDetection  `json:"topics" validate:"dive"`
	Entities   []NamedEntity     `json:"entities" validate:"dive"`
	KeyPhrases []KeyPhrase       `json:"key_phrases" validate:"dive"`
}
