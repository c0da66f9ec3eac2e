package signals

// KeyMoment is a critical conversation turning point
type KeyMoment struct {
	MomentType   string `json:"moment_type" validate:"required,oneof=breakthrough objection commitment risk insight"`
	Description  string `json:"description" validate:"required"`
	Significance string `json:"significance,omitempty"`
	TurnIndices  []int  `json:"turn_indices,omitempty"`
}

// ActionItem is a follow-up action identified in the call
type ActionItem struct {
	Action      string `json:"action" validate:"required"`
	Owner       string `json:"owner,omitempty"`
	Criticality string `json:"criticality" validate:"required,oneof=high medium low"`
}

// TranscriptSummary is a human-readable summary of a sales call
type TranscriptSummary struct {
	ExecutiveSummary   string       `json:"executive_summary" validate:"required"`
	KeyMoments         []KeyMoment  `json:"key_moments" validate:"required,min=1,dive"`
	ActionItems        []ActionItem `json:"action_items" validate:"dive"`
	ProspectPriorities []string     `json:"prospect_priorities" validate:"required,min=1"`
	ConcernsToAddress  []string     `json:"concerns_to_address"`
}
