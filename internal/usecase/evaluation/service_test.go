package evaluation

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/aby0/customer-intelligence/errors"
	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/pkg/config"
	"github.com/aby0/customer-intelligence/pkg/llm"
)

func newTestConfig(srvURL string) *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{
			APIKey:     "test-key",
			BaseURL:    srvURL,
			JudgeModel: "judge-model",
			Timeout:    5 * time.Second,
		},
		Extract: config.ExtractConfig{
			InitialInterval: time.Millisecond,
			MaxElapsedTime:  20 * time.Millisecond,
		},
		Matching: config.DefaultThresholds(),
		Judge: config.JudgeConfig{
			MaxAspects:     5,
			MaxTriples:     5,
			MaxCompetitive: 3,
			MaxDivergences: 5,
		},
	}
}

func evalCase() (*signals.ExtractionResult, *signals.GroundTruth, *signals.Transcript) {
	extSurface, gtSurface := surfaceFixtures()
	extracted := &signals.ExtractionResult{TranscriptID: "call-1", Surface: extSurface}
	groundTruth := &signals.GroundTruth{TranscriptID: "call-1", Surface: gtSurface}
	return extracted, groundTruth, surfaceTranscript()
}

func TestEvaluateRejectsTranscriptIDMismatch(t *testing.T) {
	extracted, groundTruth, transcript := evalCase()
	groundTruth.TranscriptID = "call-2"

	svc := NewService(nil, newTestConfig(""), nil, zap.NewNop())
	_, err := svc.Evaluate(context.Background(), extracted, groundTruth, transcript, Options{})
	if err == nil {
		t.Fatal("expected ID mismatch error")
	}
	var appErr apperrors.AppError
	if !stderrors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_INVALID_ARGUMENT {
		t.Errorf("error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestEvaluateRejectsIndexSpaceMismatch(t *testing.T) {
	extracted, groundTruth, transcript := evalCase()
	// Ground truth citing beyond the transcript means the annotation belongs
	// to a different index space
	groundTruth.Surface.Aspects[0].SourceUtteranceIndices = []int{99}

	svc := NewService(nil, newTestConfig(""), nil, zap.NewNop())
	_, err := svc.Evaluate(context.Background(), extracted, groundTruth, transcript, Options{})
	if err == nil {
		t.Fatal("expected index space mismatch error")
	}
	var appErr apperrors.AppError
	if !stderrors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_VALIDATION_FAILED {
		t.Errorf("error = %v, want VALIDATION_FAILED", err)
	}
}

func TestEvaluateExtractedOutOfBoundsIsNonFatal(t *testing.T) {
	// The extractor citing a bad index is a quality finding, not an input
	// error; surfaceFixtures already cites turn 99 on the support aspect.
	extracted, groundTruth, transcript := evalCase()

	svc := NewService(nil, newTestConfig(""), nil, zap.NewNop())
	report, err := svc.Evaluate(context.Background(), extracted, groundTruth, transcript, Options{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	m := metricByName(t, report.Surface, "aspects")
	found := false
	for _, issue := range m.StructuralIssues {
		if strings.Contains(issue, "exceeds max") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing out-of-bounds issue in %v", m.StructuralIssues)
	}
}

func TestEvaluateMissingLayerScoresZero(t *testing.T) {
	extracted, groundTruth, transcript := evalCase()
	groundTruth.Behavioral = &signals.BehavioralSignals{
		BuyingIntentMarkers: []signals.BuyingIntentMarker{
			{Type: signals.IntentTimelineQuestion, Evidence: "when", Confidence: 0.8, SourceUtteranceIndices: []int{3}},
		},
	}

	svc := NewService(nil, newTestConfig(""), nil, zap.NewNop())
	report, err := svc.Evaluate(context.Background(), extracted, groundTruth, transcript, Options{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if report.Behavioral == nil {
		t.Fatal("expected stand-in behavioral report")
	}
	m := metricByName(t, report.Behavioral, "behavioral")
	if !almostEqual(*m.Precision, 0) || !almostEqual(*m.Recall, 0) || !almostEqual(*m.F1, 0) {
		t.Errorf("P/R/F = %v/%v/%v, want zeros", *m.Precision, *m.Recall, *m.F1)
	}
	if len(m.StructuralIssues) != 1 || !strings.Contains(m.StructuralIssues[0], "expected but not produced") {
		t.Errorf("issues = %v", m.StructuralIssues)
	}
}

func TestEvaluateJudgeWithoutClient(t *testing.T) {
	extracted, groundTruth, transcript := evalCase()

	svc := NewService(nil, newTestConfig(""), nil, zap.NewNop())
	_, err := svc.Evaluate(context.Background(), extracted, groundTruth, transcript, Options{Judge: true})
	if err == nil {
		t.Fatal("expected judge unavailable error")
	}
	var appErr apperrors.AppError
	if !stderrors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_SERVICE_UNAVAILABLE {
		t.Errorf("error = %v, want SERVICE_UNAVAILABLE", err)
	}
}

func TestEvaluateBaselines(t *testing.T) {
	extracted, groundTruth, transcript := evalCase()

	svc := NewService(nil, newTestConfig(""), nil, zap.NewNop())
	report, err := svc.Evaluate(context.Background(), extracted, groundTruth, transcript, Options{Baselines: true})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	aspects := metricByName(t, report.Surface, "aspects")
	if aspects.BaselineAgreement == nil {
		t.Error("aspects baseline agreement not computed")
	}
	phrases := metricByName(t, report.Surface, "key_phrases")
	if phrases.BaselineAgreement != nil {
		// The 4-turn fixture transcript repeats nothing, so the frequency
		// baseline finds no candidates
		t.Errorf("key_phrases baseline = %v, want nil for candidate-free text", *phrases.BaselineAgreement)
	}
}

func TestEvaluateJudgeRespectsCapsAndExcerpts(t *testing.T) {
	var calls atomic.Int64
	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req llm.MessagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			for _, msg := range req.Messages {
				prompts = append(prompts, msg.Content)
			}
		}
		resp := llm.MessagesResponse{}
		resp.Content = append(resp.Content, struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: "text", Text: `{"score": 4, "justification": "solid"}`})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	cfg := newTestConfig(srv.URL)
	cfg.Judge.MaxAspects = 1
	client := llm.NewAnthropicClient(&cfg.Anthropic)
	svc := NewService(client, cfg, nil, zap.NewNop())

	extracted, groundTruth, transcript := evalCase()
	report, err := svc.Evaluate(context.Background(), extracted, groundTruth, transcript, Options{Judge: true})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	// Two aspects matched but the cap allows one judge call
	if got := calls.Load(); got != 1 {
		t.Fatalf("judge made %d calls, want 1", got)
	}
	m := metricByName(t, report.Surface, "aspects")
	if len(m.JudgeScores) != 1 || m.JudgeScores[0].Score != 4 {
		t.Errorf("judge scores = %+v", m.JudgeScores)
	}
	if m.MeanJudgeScore == nil || !almostEqual(*m.MeanJudgeScore, 4) {
		t.Errorf("mean judge score = %v", m.MeanJudgeScore)
	}

	// The judged aspect cites turn 3 only, so the prompt excerpt must not
	// carry the rest of the call
	prompt := strings.Join(prompts, "\n")
	if !strings.Contains(prompt, "[3]") {
		t.Errorf("prompt missing cited turn: %.200s", prompt)
	}
	if strings.Contains(prompt, "[0]") || strings.Contains(prompt, "[1]") {
		t.Errorf("prompt leaks uncited turns: %.200s", prompt)
	}
}

func TestEvaluateCorpus(t *testing.T) {
	svc := NewService(nil, newTestConfig(""), nil, zap.NewNop())

	e1, g1, t1 := evalCase()
	e2, g2, t2 := evalCase()
	e2.TranscriptID, g2.TranscriptID = "call-2", "call-2"

	corpus, err := svc.EvaluateCorpus(context.Background(), []Case{
		{Extracted: e1, GroundTruth: g1, Transcript: t1},
		{Extracted: e2, GroundTruth: g2, Transcript: t2},
	}, Options{})
	if err != nil {
		t.Fatalf("evaluate corpus: %v", err)
	}

	if corpus.NTranscripts() != 2 {
		t.Fatalf("transcripts = %d", corpus.NTranscripts())
	}
	agg := corpus.MeanMetricsBySignal()
	aspects, ok := agg["aspects"]
	if !ok || aspects.F1 == nil || !almostEqual(*aspects.F1, 0.8) {
		t.Errorf("aggregated aspects = %+v", aspects)
	}
}

func TestEvaluateCorpusKeepsPartialResultsOnBadCase(t *testing.T) {
	svc := NewService(nil, newTestConfig(""), nil, zap.NewNop())

	e1, g1, t1 := evalCase()
	e2, g2, t2 := evalCase()
	g2.TranscriptID = "call-9"

	corpus, err := svc.EvaluateCorpus(context.Background(), []Case{
		{Extracted: e1, GroundTruth: g1, Transcript: t1},
		{Extracted: e2, GroundTruth: g2, Transcript: t2},
	}, Options{})
	if err != nil {
		t.Fatalf("evaluate corpus: %v", err)
	}

	if corpus.NTranscripts() != 1 {
		t.Fatalf("evaluated transcripts = %d, want the good case kept", corpus.NTranscripts())
	}
	if corpus.Reports[0].TranscriptID != "call-1" {
		t.Errorf("kept report for %q", corpus.Reports[0].TranscriptID)
	}
	if len(corpus.Failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(corpus.Failures))
	}
	f := corpus.Failures[0]
	if f.TranscriptID != "call-1" {
		t.Errorf("failure transcript id = %q", f.TranscriptID)
	}
	if !strings.Contains(f.Message, "call-9") {
		t.Errorf("failure message %q should name the mismatched id", f.Message)
	}
	if !strings.Contains(corpus.Summary(), "Failed cases (1)") {
		t.Errorf("corpus summary should list failed cases:\n%s", corpus.Summary())
	}
}
