package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aby0/customer-intelligence/errors"
	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/internal/infrastructure/cache"
	"github.com/aby0/customer-intelligence/pkg/config"
	"github.com/aby0/customer-intelligence/pkg/fuzzy"
	"github.com/aby0/customer-intelligence/pkg/llm"
)

// Options selects the optional evaluation passes
type Options struct {
	Judge     bool
	Baselines bool
}

// Case is one corpus evaluation unit
type Case struct {
	Extracted   *signals.ExtractionResult
	GroundTruth *signals.GroundTruth
	Transcript  *signals.Transcript
}

// Service evaluates extraction results against ground truth
type Service interface {
	Evaluate(ctx context.Context, extracted *signals.ExtractionResult, groundTruth *signals.GroundTruth, transcript *signals.Transcript, opts Options) (*EvaluationReport, error)
	EvaluateCorpus(ctx context.Context, cases []Case, opts Options) (*CorpusReport, error)
}

type evaluationService struct {
	surface       *SurfaceEvaluator
	behavioral    *BehavioralEvaluator
	psychographic *PsychographicEvaluator
	multimodal    *MultimodalEvaluator
	judge         *Judge
	cfg           *config.Config
	logger        *zap.Logger
}

// NewService creates an evaluation service. The embedder is optional; when
// nil, similarity falls back to token overlap. The client is only needed when
// judge scoring is requested.
func NewService(client *llm.AnthropicClient, cfg *config.Config, embedder fuzzy.Embedder, logger *zap.Logger) Service {
	sim := fuzzy.BlendedSimilarity(embedder)
	s := &evaluationService{
		surface:       NewSurfaceEvaluator(cfg.Matching, sim),
		behavioral:    NewBehavioralEvaluator(),
		psychographic: NewPsychographicEvaluator(cfg.Matching, sim),
		multimodal:    NewMultimodalEvaluator(),
		cfg:           cfg,
		logger:        logger,
	}
	if client != nil {
		s.judge = NewJudge(client, cache.NewStore(), cfg, logger)
	}
	return s
}

func (s *evaluationService) Evaluate(ctx context.Context, extracted *signals.ExtractionResult, groundTruth *signals.GroundTruth, transcript *signals.Transcript, opts Options) (*EvaluationReport, error) {
	if extracted == nil || groundTruth == nil || transcript == nil {
		return nil, errors.ErrInvalidArgument("extraction, ground truth, and transcript are all required")
	}
	if extracted.TranscriptID != groundTruth.TranscriptID {
		return nil, errors.ErrInvalidArgument(fmt.Sprintf(
			"extraction is for transcript %q but ground truth is for %q",
			extracted.TranscriptID, groundTruth.TranscriptID))
	}
	if maxCitedIndex(groundTruth) > transcript.MaxTurnIndex() {
		return nil, errors.ErrIndexSpaceMismatch(extracted.TranscriptID)
	}

	report := &EvaluationReport{TranscriptID: extracted.TranscriptID}

	switch {
	case extracted.Surface != nil && groundTruth.Surface != nil:
		report.Surface = s.surface.Evaluate(extracted.Surface, groundTruth.Surface, transcript)
	case groundTruth.Surface != nil:
		report.Surface = failedLayerReport("Surface", "surface")
	}
	switch {
	case extracted.Behavioral != nil && groundTruth.Behavioral != nil:
		report.Behavioral = s.behavioral.Evaluate(extracted.Behavioral, groundTruth.Behavioral, transcript)
	case groundTruth.Behavioral != nil:
		report.Behavioral = failedLayerReport("Behavioral", "behavioral")
	}
	switch {
	case extracted.Psychographic != nil && groundTruth.Psychographic != nil:
		report.Psychographic = s.psychographic.Evaluate(extracted.Psychographic, groundTruth.Psychographic, transcript)
	case groundTruth.Psychographic != nil:
		report.Psychographic = failedLayerReport("Psychographic", "psychographic")
	}
	report.Multimodal = s.multimodal.Evaluate(extracted.Multimodal, groundTruth.Multimodal, transcript)

	if opts.Baselines && extracted.Surface != nil && report.Surface != nil {
		s.addBaselines(extracted.Surface, transcript, report.Surface)
	}
	if opts.Judge {
		if s.judge == nil {
			return nil, errors.ErrJudgeUnavailable(fmt.Errorf("no inference client configured"))
		}
		s.addJudgeScores(ctx, extracted, groundTruth, transcript, report)
	}

	if s.logger != nil {
		fields := []zap.Field{zap.String("transcript_id", report.TranscriptID)}
		if overall, ok := report.OverallF1(); ok {
			fields = append(fields, zap.Float64("overall_f1", overall))
		}
		s.logger.Info("evaluation complete", fields...)
	}
	return report, nil
}

// EvaluateCorpus evaluates every case and never aborts the batch: a case that
// fails validation is recorded on the report as a CaseFailure and the loop
// moves on, so one bad annotation cannot discard the rest of the corpus.
func (s *evaluationService) EvaluateCorpus(ctx context.Context, cases []Case, opts Options) (*CorpusReport, error) {
	corpus := &CorpusReport{Reports: make([]EvaluationReport, 0, len(cases))}
	for i := range cases {
		c := &cases[i]
		report, err := s.Evaluate(ctx, c.Extracted, c.GroundTruth, c.Transcript, opts)
		if err != nil {
			failure := CaseFailure{TranscriptID: caseTranscriptID(c, i), Message: err.Error()}
			corpus.Failures = append(corpus.Failures, failure)
			if s.logger != nil {
				s.logger.Warn("corpus case failed",
					zap.String("transcript_id", failure.TranscriptID),
					zap.Error(err))
			}
			continue
		}
		corpus.Reports = append(corpus.Reports, *report)
	}
	return corpus, nil
}

// caseTranscriptID picks the best identifier available for a failed case
func caseTranscriptID(c *Case, idx int) string {
	switch {
	case c.Extracted != nil && c.Extracted.TranscriptID != "":
		return c.Extracted.TranscriptID
	case c.GroundTruth != nil && c.GroundTruth.TranscriptID != "":
		return c.GroundTruth.TranscriptID
	case c.Transcript != nil && c.Transcript.CallMetadata.CallID != "":
		return c.Transcript.CallMetadata.CallID
	default:
		return fmt.Sprintf("case-%d", idx)
	}
}

// failedLayerReport stands in for a layer the extractor did not produce but
// ground truth expects. Zero precision and recall: everything expected was
// missed and nothing offered was right.
func failedLayerReport(layerName, signalName string) *LayerReport {
	return &LayerReport{
		LayerName: layerName,
		SignalMetrics: []SignalMetrics{{
			SignalName:       signalName,
			Precision:        Float(0),
			Recall:           Float(0),
			F1:               Float(0),
			StructuralIssues: []string{layerName + " signals expected but not produced"},
		}},
	}
}

// maxCitedIndex returns the highest utterance index any signal in the result
// cites, or -1 when nothing cites
func maxCitedIndex(r *signals.ExtractionResult) int {
	max := -1
	note := func(indices []int) {
		for _, idx := range indices {
			if idx > max {
				max = idx
			}
		}
	}

	if r.Surface != nil {
		for i := range r.Surface.Aspects {
			note(r.Surface.Aspects[i].SourceUtteranceIndices)
		}
	}
	if r.Behavioral != nil {
		for i := range r.Behavioral.ObjectionTriples {
			t := &r.Behavioral.ObjectionTriples[i]
			note(t.Objection.SourceUtteranceIndices)
			if t.Resolution != nil {
				note(t.Resolution.SourceUtteranceIndices)
			}
		}
		for i := range r.Behavioral.BuyingIntentMarkers {
			note(r.Behavioral.BuyingIntentMarkers[i].SourceUtteranceIndices)
		}
		for i := range r.Behavioral.CompetitiveMentions {
			note(r.Behavioral.CompetitiveMentions[i].SourceUtteranceIndices)
		}
		for i := range r.Behavioral.SentimentReversals {
			note(r.Behavioral.SentimentReversals[i].SourceUtteranceIndices)
		}
	}
	if r.Multimodal != nil {
		for i := range r.Multimodal.Divergences {
			note([]int{r.Multimodal.Divergences[i].UtteranceIndex})
		}
		for i := range r.Multimodal.CompositeSentiments {
			note([]int{r.Multimodal.CompositeSentiments[i].UtteranceIndex})
		}
	}
	return max
}

func (s *evaluationService) addBaselines(surface *signals.SurfaceSignals, transcript *signals.Transcript, report *LayerReport) {
	var texts []string
	for i := range transcript.Utterances {
		texts = append(texts, transcript.Utterances[i].Text)
	}
	transcriptText := strings.Join(texts, " ")

	byTurn := make(map[int]string, len(transcript.Utterances))
	for i := range transcript.Utterances {
		byTurn[transcript.Utterances[i].TurnIndex] = transcript.Utterances[i].Text
	}

	for i := range report.SignalMetrics {
		m := &report.SignalMetrics[i]
		switch m.SignalName {
		case "entities":
			names := make([]string, len(surface.Entities))
			for j := range surface.Entities {
				names[j] = strings.ToLower(surface.Entities[j].Name)
			}
			m.BaselineAgreement = EntityBaselineAgreement(names, transcriptText)

		case "key_phrases":
			phrases := make([]string, len(surface.KeyPhrases))
			for j := range surface.KeyPhrases {
				phrases[j] = surface.KeyPhrases[j].Phrase
			}
			m.BaselineAgreement = KeyphraseBaselineAgreement(phrases, transcriptText)

		case "aspects":
			var pairs []SentimentPair
			for j := range surface.Aspects {
				a := &surface.Aspects[j]
				var sources []string
				for _, idx := range a.SourceUtteranceIndices {
					if text, ok := byTurn[idx]; ok {
						sources = append(sources, text)
					}
				}
				source := strings.TrimSpace(strings.Join(sources, " "))
				if source != "" {
					pairs = append(pairs, SentimentPair{SourceText: source, Polarity: a.Sentiment})
				}
			}
			m.BaselineAgreement = SentimentBaselineAgreement(pairs)
		}
	}
}

func (s *evaluationService) addJudgeScores(ctx context.Context, extracted *signals.ExtractionResult, groundTruth *signals.GroundTruth, transcript *signals.Transcript, report *EvaluationReport) {
	id := extracted.TranscriptID

	if report.Surface != nil && extracted.Surface != nil && groundTruth.Surface != nil {
		for i := range report.Surface.SignalMetrics {
			m := &report.Surface.SignalMetrics[i]
			if m.SignalName != "aspects" {
				continue
			}
			for _, pair := range capPairs(m.MatchedPairs, s.cfg.Judge.MaxAspects) {
				ext := &extracted.Surface.Aspects[pair.ExtractedIndex]
				gt := &groundTruth.Surface.Aspects[pair.GroundTruthIndex]
				score, err := s.judge.ScoreAspect(ctx, id,
					Excerpt(transcript, ext.SourceUtteranceIndices),
					mustJSON(ext), mustJSON(gt))
				if s.recordJudge(m, score, err) {
					break
				}
			}
			finishJudge(m)
		}
	}

	if report.Behavioral != nil && extracted.Behavioral != nil && groundTruth.Behavioral != nil {
		for i := range report.Behavioral.SignalMetrics {
			m := &report.Behavioral.SignalMetrics[i]
			switch m.SignalName {
			case "objection_triples":
				for j := 0; j < capInt(len(extracted.Behavioral.ObjectionTriples), s.cfg.Judge.MaxTriples); j++ {
					ext := &extracted.Behavioral.ObjectionTriples[j]
					gtJSON := "{}"
					for k := range groundTruth.Behavioral.ObjectionTriples {
						if groundTruth.Behavioral.ObjectionTriples[k].Objection.Type == ext.Objection.Type {
							gtJSON = mustJSON(&groundTruth.Behavioral.ObjectionTriples[k])
							break
						}
					}
					indices := append([]int{}, ext.Objection.SourceUtteranceIndices...)
					if ext.Resolution != nil {
						indices = append(indices, ext.Resolution.SourceUtteranceIndices...)
					}
					score, err := s.judge.ScoreObjectionTriple(ctx, id,
						Excerpt(transcript, indices), mustJSON(ext), gtJSON)
					if s.recordJudge(m, score, err) {
						break
					}
				}
				finishJudge(m)

			case "competitive_mentions":
				for j := 0; j < capInt(len(extracted.Behavioral.CompetitiveMentions), s.cfg.Judge.MaxCompetitive); j++ {
					ext := &extracted.Behavioral.CompetitiveMentions[j]
					gtJSON := "{}"
					for k := range groundTruth.Behavioral.CompetitiveMentions {
						if strings.EqualFold(groundTruth.Behavioral.CompetitiveMentions[k].Competitor, ext.Competitor) {
							gtJSON = mustJSON(&groundTruth.Behavioral.CompetitiveMentions[k])
							break
						}
					}
					score, err := s.judge.ScoreCompetitiveContext(ctx, id,
						Excerpt(transcript, ext.SourceUtteranceIndices), mustJSON(ext), gtJSON)
					if s.recordJudge(m, score, err) {
						break
					}
				}
				finishJudge(m)
			}
		}
	}

	if report.Psychographic != nil && extracted.Psychographic != nil && groundTruth.Psychographic != nil {
		for i := range report.Psychographic.SignalMetrics {
			m := &report.Psychographic.SignalMetrics[i]
			switch m.SignalName {
			case "persona_indicators":
				for j := range extracted.Psychographic.PersonaIndicators {
					ext := &extracted.Psychographic.PersonaIndicators[j]
					gtJSON := "{}"
					for k := range groundTruth.Psychographic.PersonaIndicators {
						if groundTruth.Psychographic.PersonaIndicators[k].Archetype == ext.Archetype {
							gtJSON = mustJSON(&groundTruth.Psychographic.PersonaIndicators[k])
							break
						}
					}
					score, err := s.judge.ScorePersonaReasoning(ctx, id,
						Excerpt(transcript, nil), mustJSON(ext), gtJSON)
					if s.recordJudge(m, score, err) {
						break
					}
				}
				finishJudge(m)

			case "language_fingerprint":
				score, err := s.judge.ScoreFramingPatterns(ctx, id,
					Excerpt(transcript, nil),
					mustJSON(&extracted.Psychographic.LanguageFingerprint),
					mustJSON(&groundTruth.Psychographic.LanguageFingerprint))
				s.recordJudge(m, score, err)
				finishJudge(m)
			}
		}
	}

	if report.Multimodal != nil && extracted.Multimodal != nil && groundTruth.Multimodal != nil {
		for i := range report.Multimodal.SignalMetrics {
			m := &report.Multimodal.SignalMetrics[i]
			if m.SignalName != "divergences" {
				continue
			}
			for j := 0; j < capInt(len(extracted.Multimodal.Divergences), s.cfg.Judge.MaxDivergences); j++ {
				ext := &extracted.Multimodal.Divergences[j]
				gtJSON := "{}"
				for k := range groundTruth.Multimodal.Divergences {
					if groundTruth.Multimodal.Divergences[k].UtteranceIndex == ext.UtteranceIndex {
						gtJSON = mustJSON(&groundTruth.Multimodal.Divergences[k])
						break
					}
				}
				score, err := s.judge.ScoreDivergenceInterpretation(ctx, id,
					Excerpt(transcript, []int{ext.UtteranceIndex}), mustJSON(ext), gtJSON)
				if s.recordJudge(m, score, err) {
					break
				}
			}
			finishJudge(m)
		}
	}
}

// recordJudge appends a score or logs the failure; the true return stops
// judging the current signal type
func (s *evaluationService) recordJudge(m *SignalMetrics, score JudgeScore, err error) bool {
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("judge call failed, skipping remaining signals of this type",
				zap.String("signal_name", m.SignalName),
				zap.Error(err))
		}
		return true
	}
	m.JudgeScores = append(m.JudgeScores, score)
	return false
}

func finishJudge(m *SignalMetrics) {
	if len(m.JudgeScores) == 0 {
		return
	}
	var sum float64
	for _, js := range m.JudgeScores {
		sum += float64(js.Score)
	}
	m.MeanJudgeScore = Float(sum / float64(len(m.JudgeScores)))
}

func capPairs(pairs []fuzzy.MatchedPair, limit int) []fuzzy.MatchedPair {
	if limit > 0 && len(pairs) > limit {
		return pairs[:limit]
	}
	return pairs
}

func capInt(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
