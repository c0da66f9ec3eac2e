package extraction

import (
	"context"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/aby0/customer-intelligence/errors"
	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/pkg/config"
	"github.com/aby0/customer-intelligence/pkg/jobcontext"
	"github.com/aby0/customer-intelligence/pkg/llm"
	"github.com/aby0/customer-intelligence/pkg/validator"
)

const maxCompletionTokens = 4096

// Service defines signal extraction methods
type Service interface {
	Extract(ctx context.Context, transcript *signals.Transcript) (*signals.ExtractionResult, error)
	ExtractSummary(ctx context.Context, transcript *signals.Transcript) (*signals.TranscriptSummary, error)
	ExtractBatch(ctx context.Context, transcripts []*signals.Transcript) []BatchResult
}

type extractionService struct {
	client    *llm.AnthropicClient
	parser    *Parser
	validator *validator.CustomValidator
	detector  *DivergenceDetector
	cfg       *config.Config
	logger    *zap.Logger
}

// NewService constructs the extraction orchestrator
func NewService(client *llm.AnthropicClient, cfg *config.Config, logger *zap.Logger) Service {
	return &extractionService{
		client:    client,
		parser:    NewParser(),
		validator: validator.New(),
		detector:  NewDivergenceDetector(cfg.Fusion),
		cfg:       cfg,
		logger:    logger,
	}
}

// Extract runs the three sequential inference stages plus divergence
// detection and assembles one ExtractionResult. Stage failures are scoped to
// their layer: the failed layer's pointer stays nil, a LayerFailure records
// why, and later stages proceed with whatever upstream context exists.
func (s *extractionService) Extract(ctx context.Context, transcript *signals.Transcript) (*signals.ExtractionResult, error) {
	if err := s.validator.Validate(transcript); err != nil {
		return nil, errors.ErrValidation("transcript", err)
	}

	transcriptID := transcript.CallMetadata.CallID
	if s.logger != nil {
		s.logger.Info("starting extraction",
			zap.String("transcript_id", transcriptID),
			zap.Int("turns", len(transcript.Utterances)),
		)
	}

	result := &signals.ExtractionResult{
		TranscriptID:        transcriptID,
		ExtractionTimestamp: time.Now().UTC().Format(time.RFC3339),
	}

	roles, rolesInferred := InferSpeakerRoles(transcript)
	if rolesInferred {
		result.Notes = append(result.Notes, NoteRolesInferred)
	}
	roleContext := FormatRoles(roles, rolesInferred)
	text := FormatTranscript(transcript)

	// Layer 1: surface
	surface, failure := s.extractSurface(ctx, text)
	if failure != nil {
		result.LayerFailures = append(result.LayerFailures, *failure)
	}
	result.Surface = surface

	// Divergence detection depends only on the surface layer, so it overlaps
	// the remaining inference stages.
	multimodalCh := make(chan *signals.MultimodalSignals, 1)
	go func() {
		multimodalCh <- s.detector.Detect(transcript, surface)
	}()

	// Layer 2: behavioral
	behavioral, failure := s.extractBehavioral(ctx, text, roleContext, surface)
	if failure != nil {
		result.LayerFailures = append(result.LayerFailures, *failure)
	}
	if behavioral != nil {
		behavioral.SentimentReversals = DeriveSentimentReversals(surface)
		ApplyInferredRolePolicy(behavioral, rolesInferred)
	}
	result.Behavioral = behavioral

	// Layer 3: psychographic
	psychographic, failure := s.extractPsychographic(ctx, text, roleContext, surface, behavioral)
	if failure != nil {
		result.LayerFailures = append(result.LayerFailures, *failure)
	}
	if ApplyShortTranscriptPolicy(transcript, psychographic) {
		result.Notes = append(result.Notes, NoteShortTranscript)
	}
	result.Psychographic = psychographic

	result.Multimodal = <-multimodalCh
	if result.Multimodal != nil && result.Multimodal.Note != "" {
		result.Notes = append(result.Notes, result.Multimodal.Note)
	}

	result.OverallConfidence = OverallConfidence(behavioral, psychographic)

	if s.logger != nil {
		s.logger.Info("extraction complete",
			zap.String("transcript_id", transcriptID),
			zap.Float64("overall_confidence", result.OverallConfidence),
			zap.Int("layer_failures", len(result.LayerFailures)),
		)
	}
	return result, nil
}

// ExtractSummary produces a human-readable call summary in one inference call
func (s *extractionService) ExtractSummary(ctx context.Context, transcript *signals.Transcript) (*signals.TranscriptSummary, error) {
	if err := s.validator.Validate(transcript); err != nil {
		return nil, errors.ErrValidation("transcript", err)
	}

	prompt := fmt.Sprintf(summaryPrompt, FormatTranscript(transcript))
	var summary signals.TranscriptSummary
	if failure := s.runLayer(ctx, "summary", prompt, &summary, func() {
		s.parser.CoerceSummary(&summary)
	}); failure != nil {
		return nil, errors.ErrSchema("summary", fmt.Errorf("%s", failure.Message))
	}
	return &summary, nil
}

func (s *extractionService) extractSurface(ctx context.Context, text string) (*signals.SurfaceSignals, *signals.LayerFailure) {
	prompt := fmt.Sprintf(surfacePrompt, text)
	var out signals.SurfaceSignals
	if failure := s.runLayer(ctx, string(signals.LayerSurface), prompt, &out, func() {
		s.parser.CoerceSurface(&out)
	}); failure != nil {
		return nil, failure
	}
	return &out, nil
}

func (s *extractionService) extractBehavioral(ctx context.Context, text, roleContext string, surface *signals.SurfaceSignals) (*signals.BehavioralSignals, *signals.LayerFailure) {
	prior := priorContext(roleContext, surface, nil)
	prompt := fmt.Sprintf(behavioralPrompt, prior, text)
	var out signals.BehavioralSignals
	if failure := s.runLayer(ctx, string(signals.LayerBehavioral), prompt, &out, func() {
		s.parser.CoerceBehavioral(&out)
	}); failure != nil {
		return nil, failure
	}
	return &out, nil
}

func (s *extractionService) extractPsychographic(ctx context.Context, text, roleContext string, surface *signals.SurfaceSignals, behavioral *signals.BehavioralSignals) (*signals.PsychographicSignals, *signals.LayerFailure) {
	prior := priorContext(roleContext, surface, behavioral)
	prompt := fmt.Sprintf(psychographicPrompt, prior, text)
	var out signals.PsychographicSignals
	if failure := s.runLayer(ctx, string(signals.LayerPsychographic), prompt, &out, func() {
		s.parser.CoercePsychographic(&out)
	}); failure != nil {
		return nil, failure
	}
	return &out, nil
}

// runLayer drives one inference stage: call with retry, decode with one
// reformulation round on malformed JSON, coerce enums, validate the schema.
func (s *extractionService) runLayer(ctx context.Context, layer, prompt string, v interface{}, coerce func()) *signals.LayerFailure {
	attempts := 1
	raw, err := s.completeWithRetry(ctx, s.cfg.Anthropic.Model, prompt)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("layer inference call failed",
				zap.String("layer", layer),
				zap.Error(err),
			)
		}
		return &signals.LayerFailure{
			Layer:    signals.Layer(layer),
			Message:  errors.ErrService("anthropic", err).Error(),
			Attempts: attempts,
		}
	}

	decodeErr := s.parser.Decode(raw, v)
	if decodeErr != nil {
		// One reformulation round: hand the model its own output and the
		// parse error, never a blind replay.
		attempts++
		retryRaw, err := s.reformulate(ctx, prompt, raw, decodeErr)
		if err != nil {
			return &signals.LayerFailure{
				Layer:    signals.Layer(layer),
				Message:  errors.ErrService("anthropic", err).Error(),
				Attempts: attempts,
			}
		}
		if decodeErr = s.parser.Decode(retryRaw, v); decodeErr != nil {
			return &signals.LayerFailure{
				Layer:    signals.Layer(layer),
				Message:  errors.ErrSchema(layer, decodeErr).Error(),
				Attempts: attempts,
			}
		}
	}

	coerce()
	if err := s.validator.Validate(v); err != nil {
		return &signals.LayerFailure{
			Layer:    signals.Layer(layer),
			Message:  errors.ErrSchema(layer, err).Error(),
			Attempts: attempts,
		}
	}
	return nil
}

func (s *extractionService) reformulate(ctx context.Context, prompt, raw string, parseErr error) (string, error) {
	messages := []llm.Message{
		{Role: "user", Content: prompt},
		{Role: "assistant", Content: raw},
		{Role: "user", Content: fmt.Sprintf(reformulatePrompt, parseErr)},
	}
	var out string
	call := func() error {
		var err error
		out, err = s.client.Complete(ctx, s.cfg.Anthropic.Model, maxCompletionTokens, messages)
		if err != nil && jobcontext.IsNonRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	if err := backoff.Retry(call, s.newBackOff(ctx)); err != nil {
		return "", err
	}
	return out, nil
}

func (s *extractionService) completeWithRetry(ctx context.Context, model, prompt string) (string, error) {
	var out string
	call := func() error {
		var err error
		out, err = s.client.Prompt(ctx, model, maxCompletionTokens, prompt)
		if err != nil && jobcontext.IsNonRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	if err := backoff.Retry(call, s.newBackOff(ctx)); err != nil {
		return "", err
	}
	return out, nil
}

func (s *extractionService) newBackOff(ctx context.Context) backoff.BackOffContext {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.Extract.InitialInterval
	bo.MaxElapsedTime = s.cfg.Extract.MaxElapsedTime
	return backoff.WithContext(bo, ctx)
}

// priorContext renders earlier-stage output for injection into later prompts
func priorContext(roleContext string, surface *signals.SurfaceSignals, behavioral *signals.BehavioralSignals) string {
	out := ""
	if roleContext != "" {
		out += roleContext + "\n"
	}
	if surface == nil {
		out += "(surface layer unavailable)"
	} else {
		out += fmt.Sprintf("Aspects: %s\nTopics: %s\nEntities: %s",
			renderAspects(surface), renderTopics(surface), renderEntities(surface))
	}
	if behavioral != nil {
		out += fmt.Sprintf("\nObjections: %d; intent markers: %d; competitive mentions: %d",
			len(behavioral.ObjectionTriples), len(behavioral.BuyingIntentMarkers), len(behavioral.CompetitiveMentions))
	}
	return out
}

func renderAspects(s *signals.SurfaceSignals) string {
	if len(s.Aspects) == 0 {
		return "(none)"
	}
	out := ""
	for i := range s.Aspects {
		a := &s.Aspects[i]
		out += fmt.Sprintf("%s (%s, %.2f); ", a.Aspect, a.Sentiment, a.Intensity)
	}
	return out
}

func renderTopics(s *signals.SurfaceSignals) string {
	if len(s.Topics) == 0 {
		return "(none)"
	}
	out := ""
	for i := range s.Topics {
		out += fmt.Sprintf("%s (%s); ", s.Topics[i].Name, s.Topics[i].TimelinePosition)
	}
	return out
}

func renderEntities(s *signals.SurfaceSignals) string {
	if len(s.Entities) == 0 {
		return "(none)"
	}
	out := ""
	for i := range s.Entities {
		out += fmt.Sprintf("%s (%s); ", s.Entities[i].Name, s.Entities[i].EntityType)
	}
	return out
}
