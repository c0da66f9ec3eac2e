package evaluation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/aby0/customer-intelligence/errors"
	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/internal/infrastructure/cache"
	"github.com/aby0/customer-intelligence/internal/usecase/extraction"
	"github.com/aby0/customer-intelligence/pkg/config"
	"github.com/aby0/customer-intelligence/pkg/jobcontext"
	"github.com/aby0/customer-intelligence/pkg/llm"
)

const judgeMaxTokens = 256

// Likert rubrics for each judged signal type
const (
	aspectGranularityRubric = `5 - Excellent: Aspect is at exactly the right level of granularity (e.g., "pricing" not "cost" or "the 185K annual license pricing"). Captures the precise concept discussed.
4 - Good: Aspect is slightly too broad or narrow but captures the right concept.
3 - Acceptable: Aspect is recognizable but significantly too broad (e.g., "business" instead of "implementation timeline").
2 - Poor: Aspect is misleading or conflates multiple distinct aspects.
1 - Unacceptable: Aspect is completely wrong or nonsensical.`

	objectionTripleRubric = `5 - Excellent: All three components (objection, resolution, outcome) are accurate, specific language closely matches transcript, and source indices are correct.
4 - Good: Components are correct but specific language is paraphrased rather than quoted from the transcript.
3 - Acceptable: Objection and outcome are correct but resolution type or specifics are partially wrong.
2 - Poor: Objection type is correct but resolution or outcome are significantly wrong.
1 - Unacceptable: Objection is misidentified or the triple does not correspond to a real exchange in the transcript.`

	personaReasoningRubric = `5 - Excellent: Reasoning cites specific transcript evidence, correctly maps behavior patterns to archetype definition, and acknowledges nuance.
4 - Good: Reasoning is correct and grounded in the transcript but misses some supporting evidence.
3 - Acceptable: Reasoning reaches the right conclusion but with weak or generic justification.
2 - Poor: Reasoning has logical gaps or cites evidence that does not support the conclusion.
1 - Unacceptable: Reasoning contradicts the transcript or fundamentally mischaracterizes the buyer.`

	framingPatternRubric = `5 - Excellent: Patterns are specific, accurate, insightful, and would help a marketer tailor content for this buyer.
4 - Good: Patterns are accurate and somewhat specific but not deeply insightful.
3 - Acceptable: Patterns are generic but not wrong (e.g., "uses business language").
2 - Poor: Patterns are vague or partially inaccurate.
1 - Unacceptable: Patterns are wrong or completely generic.`

	competitiveContextRubric = `5 - Excellent: Context captures the full nuance of how the competitor was mentioned - as leverage, genuine alternative, or incumbent - with accurate sentiment and comparison type.
4 - Good: Context is accurate but misses some nuance of the mention.
3 - Acceptable: Context captures the basic mention but mischaracterizes the sentiment or comparison type.
2 - Poor: Context is significantly incomplete or misleading.
1 - Unacceptable: Context is wrong.`

	divergenceInterpretationRubric = `5 - Excellent: Interpretation correctly synthesizes text content with nonverbal cues, explains the psychological state, and notes business implications.
4 - Good: Interpretation is correct but lacks business implications or is somewhat superficial.
3 - Acceptable: Interpretation is plausible but generic - could apply to many situations, not specific to this moment.
2 - Poor: Interpretation contradicts either the text or the nonverbal cues.
1 - Unacceptable: Interpretation is completely wrong.`
)

const judgePromptTemplate = `You are evaluating the quality of a signal extracted from a sales call transcript by an AI system.

## Transcript (relevant excerpt)
%s

## Extracted Signal (%s)
%s

## Ground Truth (reference annotation)
%s

## Evaluation Rubric
Score from 1 to 5:

%s

## Instructions
1. Read the transcript excerpt carefully
2. Compare the extracted signal against the ground truth
3. Apply the rubric criteria
4. Return ONLY valid JSON: {"score": <1-5>, "justification": "<2-3 sentences>"}`

// CacheKey builds a deterministic judge-cache key from signal identity
func CacheKey(transcriptID, signalType, payload string) string {
	h := sha256.Sum256([]byte(payload))
	return fmt.Sprintf("%s:%s:%s", transcriptID, signalType, hex.EncodeToString(h[:])[:12])
}

// Excerpt renders only the utterances a signal cites, deduplicated and in
// turn order. Signals with no provenance (transcript-wide fingerprints) get
// the full transcript.
func Excerpt(t *signals.Transcript, indices []int) string {
	if len(indices) == 0 {
		return extraction.FormatTranscript(t)
	}

	want := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		want[idx] = struct{}{}
	}
	ordered := make([]int, 0, len(want))
	for idx := range want {
		ordered = append(ordered, idx)
	}
	sort.Ints(ordered)

	byTurn := make(map[int]*signals.Utterance, len(t.Utterances))
	for i := range t.Utterances {
		byTurn[t.Utterances[i].TurnIndex] = &t.Utterances[i]
	}

	var lines []string
	for _, idx := range ordered {
		if u, ok := byTurn[idx]; ok {
			lines = append(lines, extraction.FormatUtterance(u))
		}
	}
	return strings.Join(lines, "\n")
}

// Judge scores extracted signals against rubrics via the inference service.
// Scores are cached per run so repeated evaluation of the same signal costs
// one call.
type Judge struct {
	client *llm.AnthropicClient
	store  *cache.Store
	parser *extraction.Parser
	model  string
	retry  config.ExtractConfig
	logger *zap.Logger
}

// NewJudge creates a judge backed by the given client and run-scoped store
func NewJudge(client *llm.AnthropicClient, store *cache.Store, cfg *config.Config, logger *zap.Logger) *Judge {
	if store == nil {
		store = cache.NewStore()
	}
	return &Judge{
		client: client,
		store:  store,
		parser: extraction.NewParser(),
		model:  cfg.Anthropic.JudgeModel,
		retry:  cfg.Extract,
		logger: logger,
	}
}

type judgeResponse struct {
	Score         int    `json:"score"`
	Justification string `json:"justification"`
}

func (j *Judge) score(ctx context.Context, transcriptID, signalType, excerpt, signalJSON, groundTruthJSON, rubric, description string) (JudgeScore, error) {
	key := CacheKey(transcriptID, signalType, signalJSON)
	if cached, ok := j.store.Get(key); ok {
		return cached.(JudgeScore), nil
	}

	prompt := fmt.Sprintf(judgePromptTemplate, excerpt, description, signalJSON, groundTruthJSON, rubric)

	var raw string
	operation := func() error {
		var err error
		raw, err = j.client.Prompt(ctx, j.model, judgeMaxTokens, prompt)
		if err != nil && jobcontext.IsNonRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = j.retry.InitialInterval
	bo.MaxElapsedTime = j.retry.MaxElapsedTime
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return JudgeScore{}, errors.ErrJudgeUnavailable(err)
	}

	score := j.parse(raw)
	if j.logger != nil {
		j.logger.Debug("judge scored signal",
			zap.String("transcript_id", transcriptID),
			zap.String("signal_type", signalType),
			zap.Int("score", score.Score))
	}
	j.store.Set(key, score)
	return score, nil
}

// parse decodes the judge reply, clamping the score into 1..5. Output that
// does not parse falls back to the neutral midpoint with the raw text kept
// for inspection.
func (j *Judge) parse(raw string) JudgeScore {
	text := j.parser.CleanJSON(raw)

	var resp judgeResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil || resp.Score == 0 {
		truncated := raw
		if len(truncated) > 200 {
			truncated = truncated[:200]
		}
		return JudgeScore{Score: 3, Justification: "Parse error: " + truncated}
	}

	score := resp.Score
	if score < 1 {
		score = 1
	}
	if score > 5 {
		score = 5
	}
	return JudgeScore{Score: score, Justification: resp.Justification}
}

// ScoreAspect judges one aspect sentiment against the granularity rubric
func (j *Judge) ScoreAspect(ctx context.Context, transcriptID, excerpt, signalJSON, groundTruthJSON string) (JudgeScore, error) {
	return j.score(ctx, transcriptID, "aspect", excerpt, signalJSON, groundTruthJSON,
		aspectGranularityRubric, "aspect-based sentiment")
}

// ScoreObjectionTriple judges one objection-resolution-outcome triple
func (j *Judge) ScoreObjectionTriple(ctx context.Context, transcriptID, excerpt, signalJSON, groundTruthJSON string) (JudgeScore, error) {
	return j.score(ctx, transcriptID, "objection_triple", excerpt, signalJSON, groundTruthJSON,
		objectionTripleRubric, "objection-resolution-outcome triple")
}

// ScorePersonaReasoning judges one persona indicator's reasoning
func (j *Judge) ScorePersonaReasoning(ctx context.Context, transcriptID, excerpt, signalJSON, groundTruthJSON string) (JudgeScore, error) {
	return j.score(ctx, transcriptID, "persona", excerpt, signalJSON, groundTruthJSON,
		personaReasoningRubric, "persona indicator")
}

// ScoreFramingPatterns judges the language fingerprint's framing patterns
func (j *Judge) ScoreFramingPatterns(ctx context.Context, transcriptID, excerpt, signalJSON, groundTruthJSON string) (JudgeScore, error) {
	return j.score(ctx, transcriptID, "framing", excerpt, signalJSON, groundTruthJSON,
		framingPatternRubric, "language fingerprint / framing patterns")
}

// ScoreCompetitiveContext judges one competitive mention's context
func (j *Judge) ScoreCompetitiveContext(ctx context.Context, transcriptID, excerpt, signalJSON, groundTruthJSON string) (JudgeScore, error) {
	return j.score(ctx, transcriptID, "competitive", excerpt, signalJSON, groundTruthJSON,
		competitiveContextRubric, "competitive mention")
}

// ScoreDivergenceInterpretation judges one multimodal divergence
func (j *Judge) ScoreDivergenceInterpretation(ctx context.Context, transcriptID, excerpt, signalJSON, groundTruthJSON string) (JudgeScore, error) {
	return j.score(ctx, transcriptID, "divergence", excerpt, signalJSON, groundTruthJSON,
		divergenceInterpretationRubric, "multimodal divergence")
}
