package signals

// Layer names the four signal layers
type Layer string

const (
	LayerSurface       Layer = "surface"
	LayerBehavioral    Layer = "behavioral"
	LayerPsychographic Layer = "psychographic"
	LayerMultimodal    Layer = "multimodal"
)

// LayerFailure records a per-layer extraction failure. The layer's pointer in
// ExtractionResult stays nil, so a failed layer is distinguishable from an
// empty one.
type LayerFailure struct {
	Layer    Layer  `json:"layer"`
	Message  string `json:"message"`
	Attempts int    `json:"attempts"`
}

// ExtractionResult is the complete signal extraction output for one transcript.
// Assembled once per run and never mutated afterwards.
type ExtractionResult struct {
	TranscriptID        string                `json:"transcript_id" validate:"required"`
	ExtractionTimestamp string                `json:"extraction_timestamp"`
	Surface             *SurfaceSignals       `json:"surface,omitempty"`
	Behavioral          *BehavioralSignals    `json:"behavioral,omitempty"`
	Psychographic       *PsychographicSignals `json:"psychographic,omitempty"`
	Multimodal          *MultimodalSignals    `json:"multimodal,omitempty"`
	LayerFailures       []LayerFailure        `json:"layer_failures,omitempty"`
	OverallConfidence   float64               `json:"overall_confidence" validate:"min=0,max=1"`
	Notes               []string              `json:"notes,omitempty"`
}

// FailedLayer reports whether the named layer failed and its failure record
func (r *ExtractionResult) FailedLayer(layer Layer) (*LayerFailure, bool) {
	for i := range r.LayerFailures {
		if r.LayerFailures[i].Layer == layer {
			return &r.LayerFailures[i], true
		}
	}
	return nil, false
}

// GroundTruth is an independently authored reference annotation. Same shape as
// an extraction result; consumed only by evaluation.
type GroundTruth = ExtractionResult
