package signals

// DivergenceType classifies a text/non-verbal contradiction
type DivergenceType string

const (
	DivergenceTextPositiveAudioNegative DivergenceType = "text_positive_audio_negative"
	DivergenceTextNegativeAudioPositive DivergenceType = "text_negative_audio_positive"
	DivergenceTextNeutralAudioNegative  DivergenceType = "text_neutral_audio_negative"
	DivergenceTextNeutralAudioPositive  DivergenceType = "text_neutral_audio_positive"
)

// DivergenceSignal is a detected contradiction between text sentiment and
// non-verbal cues for one utterance
type DivergenceSignal struct {
	UtteranceIndex int               `json:"utterance_index" validate:"min=0"`
	Type           DivergenceType    `json:"type" validate:"required,oneof=text_positive_audio_negative text_negative_audio_positive text_neutral_audio_negative text_neutral_audio_positive"`
	TextSentiment  SentimentPolarity `json:"text_sentiment" validate:"required,oneof=positive negative neutral mixed"`
	NonverbalCues  []string          `json:"nonverbal_cues" validate:"required,min=1"`
	Interpretation string            `json:"interpretation,omitempty"`
	Confidence     float64           `json:"confidence" validate:"min=0,max=1"`
}

// CompositeSentiment is the per-utterance sentiment after multimodal fusion
type CompositeSentiment struct {
	UtteranceIndex       int               `json:"utterance_index" validate:"min=0"`
	OriginalTextPolarity SentimentPolarity `json:"original_text_polarity" validate:"required,oneof=positive negative neutral mixed"`
	AdjustedPolarity     SentimentPolarity `json:"adjusted_polarity" validate:"required,oneof=positive negative neutral mixed"`
	Score                float64           `json:"score" validate:"min=-1,max=1"`
	Confidence           float64           `json:"confidence" validate:"min=0,max=1"`
	Note                 string            `json:"note,omitempty"`
}

// MultimodalSignals is the container for divergence-detection output.
// A transcript with no paralinguistic annotations gets empty slices plus an
// explicit Note, never a silent default.
type MultimodalSignals struct {
	Divergences         []DivergenceSignal   `json:"divergences" validate:"dive"`
	CompositeSentiments []CompositeSentiment `json:"composite_sentiments" validate:"dive"`
	Note                string               `json:"note,omitempty"`
}
