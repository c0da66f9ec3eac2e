package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/aby0/customer-intelligence/errors"
	"github.com/aby0/customer-intelligence/internal/adapter/dto"
	"github.com/aby0/customer-intelligence/internal/usecase/evaluation"
	"github.com/aby0/customer-intelligence/internal/usecase/extraction"
)

// Signals handles extraction, evaluation, and summarization endpoints
type Signals struct {
	extractor extraction.Service
	evaluator evaluation.Service
	logger    *zap.Logger
}

// NewSignals creates a new signals handler
func NewSignals(extractor extraction.Service, evaluator evaluation.Service, logger *zap.Logger) *Signals {
	return &Signals{extractor: extractor, evaluator: evaluator, logger: logger}
}

// Extract runs signal extraction on one transcript
func (h *Signals) Extract(c echo.Context) error {
	var req dto.ExtractRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if req.Transcript == nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("transcript is required"))
	}

	result, err := h.extractor.Extract(c.Request().Context(), req.Transcript)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, dto.ExtractResponse{Result: result})
}

// Evaluate scores an extraction result against its reference annotation
func (h *Signals) Evaluate(c echo.Context) error {
	var req dto.EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if req.Extraction == nil || req.GroundTruth == nil || req.Transcript == nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(
			"extraction, ground_truth, and transcript are all required"))
	}

	report, err := h.evaluator.Evaluate(c.Request().Context(),
		req.Extraction, req.GroundTruth, req.Transcript,
		evaluation.Options{Judge: req.Judge, Baselines: req.Baselines})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, dto.EvaluateResponse{Report: report, Summary: report.Summary()})
}

// Summarize produces a human-readable call summary for one transcript
func (h *Signals) Summarize(c echo.Context) error {
	var req dto.SummarizeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if req.Transcript == nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("transcript is required"))
	}

	summary, err := h.extractor.ExtractSummary(c.Request().Context(), req.Transcript)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, dto.SummarizeResponse{Summary: summary})
}
