package signals

// EnergyLevel is a coarse vocal energy annotation
type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

// PitchDirection is the pitch trend over an utterance
type PitchDirection string

const (
	PitchRising  PitchDirection = "rising"
	PitchFalling PitchDirection = "falling"
	PitchFlat    PitchDirection = "flat"
)

// ParalinguisticAnnotation carries pre-annotated audio/video cues for one
// utterance. The system consumes these; it never computes them from media.
type ParalinguisticAnnotation struct {
	PauseBeforeSec    float64        `json:"pause_before_sec,omitempty" validate:"min=0"`
	Energy            EnergyLevel    `json:"energy,omitempty" validate:"omitempty,oneof=low medium high"`
	Pitch             PitchDirection `json:"pitch,omitempty" validate:"omitempty,oneof=rising falling flat"`
	HesitationMarkers []string       `json:"hesitation_markers,omitempty"`
	Tone              string         `json:"tone,omitempty"`
	Behaviors         []string       `json:"behaviors,omitempty"`
}

// HasAudio reports whether any audio-derived cue is present
func (p *ParalinguisticAnnotation) HasAudio() bool {
	if p == nil {
		return false
	}
	return p.PauseBeforeSec > 0 || p.Energy != "" || p.Pitch != "" ||
		len(p.HesitationMarkers) > 0 || p.Tone != ""
}

// HasVideo reports whether any video-derived cue is present
func (p *ParalinguisticAnnotation) HasVideo() bool {
	return p != nil && len(p.Behaviors) > 0
}

// Utterance is a single speaker turn in a sales call transcript
type Utterance struct {
	Speaker        string                    `json:"speaker" validate:"required"`
	Role           string                    `json:"role,omitempty"`
	Text           string                    `json:"text" validate:"required"`
	TurnIndex      int                       `json:"turn_index" validate:"min=0"`
	Paralinguistic *ParalinguisticAnnotation `json:"paralinguistic,omitempty"`
}

// StakeholderProfile is a participant in the buying process
type StakeholderProfile struct {
	Name        string `json:"name" validate:"required"`
	Role        string `json:"role" validate:"required"`
	PersonaType string `json:"persona_type" validate:"omitempty,oneof=analytical_evaluator executive_champion reluctant_adopter"`
}

// AccountProfile is company and deal context attached to a transcript.
// Metadata only; the extraction algorithms never read it.
type AccountProfile struct {
	CompanyName  string               `json:"company_name" validate:"required"`
	CompanySize  string               `json:"company_size" validate:"omitempty,oneof=startup smb mid_market enterprise"`
	Industry     string               `json:"industry,omitempty"`
	DealStage    string               `json:"deal_stage" validate:"omitempty,oneof=discovery evaluation negotiation close"`
	DealOutcome  string               `json:"deal_outcome,omitempty" validate:"omitempty,oneof=won lost stalled"`
	Stakeholders []StakeholderProfile `json:"stakeholders,omitempty" validate:"dive"`
}

// CallMetadata identifies a single sales call recording
type CallMetadata struct {
	CallID          string   `json:"call_id" validate:"required"`
	CallDate        string   `json:"call_date,omitempty"`
	CallNumber      int      `json:"call_number,omitempty" validate:"omitempty,min=1"`
	DurationMinutes int      `json:"duration_minutes,omitempty" validate:"min=0"`
	Participants    []string `json:"participants,omitempty"`
}

// Transcript is a complete sales call transcript with account context.
// Immutable once created; downstream stages reference it, never mutate it.
type Transcript struct {
	Account      AccountProfile `json:"account"`
	CallMetadata CallMetadata   `json:"call_metadata"`
	Utterances   []Utterance    `json:"utterances" validate:"required,min=1,dive"`
}

// MaxTurnIndex returns the highest utterance turn index
func (t *Transcript) MaxTurnIndex() int {
	max := 0
	for _, u := range t.Utterances {
		if u.TurnIndex > max {
			max = u.TurnIndex
		}
	}
	return max
}

// HasParalinguistic reports whether any utterance carries annotations
func (t *Transcript) HasParalinguistic() bool {
	for i := range t.Utterances {
		if t.Utterances[i].Paralinguistic != nil {
			return true
		}
	}
	return false
}

// HasSpeakerRoles reports whether every utterance carries an explicit role label
func (t *Transcript) HasSpeakerRoles() bool {
	for i := range t.Utterances {
		if t.Utterances[i].Role == "" {
			return false
		}
	}
	return len(t.Utterances) > 0
}
