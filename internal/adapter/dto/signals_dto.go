package dto

import (
	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/internal/usecase/evaluation"
)

// ExtractRequest carries one transcript for signal extraction
type ExtractRequest struct {
	Transcript *signals.Transcript `json:"transcript" validate:"required"`
}

// ExtractResponse wraps one extraction result
type ExtractResponse struct {
	Result *signals.ExtractionResult `json:"result"`
}

// EvaluateRequest carries an extraction, its reference annotation, and the
// transcript both were produced from
type EvaluateRequest struct {
	Extraction  *signals.ExtractionResult `json:"extraction" validate:"required"`
	GroundTruth *signals.GroundTruth      `json:"ground_truth" validate:"required"`
	Transcript  *signals.Transcript       `json:"transcript" validate:"required"`
	Judge       bool                      `json:"judge,omitempty"`
	Baselines   bool                      `json:"baselines,omitempty"`
}

// EvaluateResponse wraps the structured report plus its rendered text form
type EvaluateResponse struct {
	Report  *evaluation.EvaluationReport `json:"report"`
	Summary string                       `json:"summary"`
}

// SummarizeRequest carries one transcript for summary extraction
type SummarizeRequest struct {
	Transcript *signals.Transcript `json:"transcript" validate:"required"`
}

// SummarizeResponse wraps one transcript summary
type SummarizeResponse struct {
	Summary *signals.TranscriptSummary `json:"summary"`
}
