// Package evaluation scores extraction output against independently authored
// ground truth: per-layer evaluators compose fuzzy matching, numeric metrics,
// and structural checks into reports, optionally augmented by a rubric-based
// quality judge and dependency-free baselines.
package evaluation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aby0/customer-intelligence/pkg/fuzzy"
	"github.com/aby0/customer-intelligence/pkg/metrics"
)

// JudgeScore is a single rubric-based quality score on a 1-5 scale
type JudgeScore struct {
	Score         int    `json:"score" validate:"min=1,max=5"`
	Justification string `json:"justification"`
}

// SignalMetrics holds precision/recall/F1 and the supplementary metrics for
// one signal type. Optional metrics stay nil when a signal type does not
// carry them or no matched pairs support them.
type SignalMetrics struct {
	SignalName       string   `json:"signal_name"`
	Precision        *float64 `json:"precision,omitempty"`
	Recall           *float64 `json:"recall,omitempty"`
	F1               *float64 `json:"f1,omitempty"`
	CountExtracted   int      `json:"count_extracted"`
	CountGroundTruth int      `json:"count_ground_truth"`

	Accuracy          *float64 `json:"accuracy,omitempty"`
	MAE               *float64 `json:"mae,omitempty"`
	OrdinalAgreement  *float64 `json:"ordinal_agreement,omitempty"`
	BaselineAgreement *float64 `json:"baseline_agreement,omitempty"`

	JudgeScores    []JudgeScore `json:"judge_scores,omitempty"`
	MeanJudgeScore *float64     `json:"mean_judge_score,omitempty"`

	StructuralIssues  []string                   `json:"structural_issues,omitempty"`
	ScoreDistribution *metrics.DistributionStats `json:"score_distribution,omitempty"`

	// MatchedPairs is retained for debugging and judge targeting
	MatchedPairs []fuzzy.MatchedPair `json:"matched_pairs,omitempty"`
}

// Float wraps a metric value for the optional fields of SignalMetrics
func Float(v float64) *float64 {
	return &v
}

// LayerReport is the evaluation report for one extraction layer
type LayerReport struct {
	LayerName     string          `json:"layer_name"`
	SignalMetrics []SignalMetrics `json:"signal_metrics"`
}

// MeanF1 averages F1 across signal types that carry it. The second return is
// false when no signal type has an F1.
func (l *LayerReport) MeanF1() (float64, bool) {
	var sum float64
	n := 0
	for i := range l.SignalMetrics {
		if f := l.SignalMetrics[i].F1; f != nil {
			sum += *f
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// EvaluationReport is the complete evaluation of one extraction result
// against ground truth. A nil layer means neither side produced that layer.
type EvaluationReport struct {
	TranscriptID  string       `json:"transcript_id"`
	Surface       *LayerReport `json:"surface,omitempty"`
	Behavioral    *LayerReport `json:"behavioral,omitempty"`
	Psychographic *LayerReport `json:"psychographic,omitempty"`
	Multimodal    *LayerReport `json:"multimodal,omitempty"`
}

func (r *EvaluationReport) layers() []*LayerReport {
	return []*LayerReport{r.Surface, r.Behavioral, r.Psychographic, r.Multimodal}
}

// AllSignalMetrics flattens the per-layer metrics into one list
func (r *EvaluationReport) AllSignalMetrics() []SignalMetrics {
	var all []SignalMetrics
	for _, layer := range r.layers() {
		if layer != nil {
			all = append(all, layer.SignalMetrics...)
		}
	}
	return all
}

// OverallF1 averages F1 across all signal types that carry it
func (r *EvaluationReport) OverallF1() (float64, bool) {
	var sum float64
	n := 0
	for _, m := range r.AllSignalMetrics() {
		if m.F1 != nil {
			sum += *m.F1
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Summary renders a human-readable report
func (r *EvaluationReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluation Report: %s\n", r.TranscriptID)
	b.WriteString(strings.Repeat("=", 60))

	for _, layer := range r.layers() {
		if layer == nil {
			continue
		}
		if mean, ok := layer.MeanF1(); ok {
			fmt.Fprintf(&b, "\n\n%s (avg F1: %.2f)\n", layer.LayerName, mean)
		} else {
			fmt.Fprintf(&b, "\n\n%s (avg F1: n/a)\n", layer.LayerName)
		}
		b.WriteString(strings.Repeat("-", 40))
		for i := range layer.SignalMetrics {
			m := &layer.SignalMetrics[i]
			fmt.Fprintf(&b, "\n  %-30s %s  %s  %s  (%d extracted, %d gt)",
				m.SignalName,
				renderMetric("P", m.Precision), renderMetric("R", m.Recall),
				renderMetric("F1", m.F1),
				m.CountExtracted, m.CountGroundTruth)
			if m.Accuracy != nil {
				fmt.Fprintf(&b, "\n    accuracy=%.2f", *m.Accuracy)
			}
			if m.MAE != nil {
				fmt.Fprintf(&b, "\n    MAE=%.3f", *m.MAE)
			}
			if m.OrdinalAgreement != nil {
				fmt.Fprintf(&b, "\n    ordinal_agreement=%.2f", *m.OrdinalAgreement)
			}
			if m.MeanJudgeScore != nil {
				fmt.Fprintf(&b, "\n    judge=%.1f/5", *m.MeanJudgeScore)
			}
			if m.BaselineAgreement != nil {
				fmt.Fprintf(&b, "\n    baseline_agreement=%.2f", *m.BaselineAgreement)
			}
			for j, issue := range m.StructuralIssues {
				if j == 3 {
					fmt.Fprintf(&b, "\n    ... and %d more", len(m.StructuralIssues)-3)
					break
				}
				fmt.Fprintf(&b, "\n    ! %s", issue)
			}
		}
	}

	if overall, ok := r.OverallF1(); ok {
		fmt.Fprintf(&b, "\n\nOverall F1: %.2f", overall)
	} else {
		b.WriteString("\n\nOverall F1: n/a")
	}
	return b.String()
}

func renderMetric(name string, v *float64) string {
	if v == nil {
		return name + "=n/a"
	}
	return fmt.Sprintf("%s=%.2f", name, *v)
}

// SignalAverages are corpus-level mean precision/recall/F1 for one signal
// type. A nil field means no transcript in the corpus carried that metric.
type SignalAverages struct {
	Precision *float64 `json:"precision,omitempty"`
	Recall    *float64 `json:"recall,omitempty"`
	F1        *float64 `json:"f1,omitempty"`
}

// CaseFailure records one corpus case that could not be evaluated. The case's
// report is absent from Reports, so a failed case is distinguishable from an
// evaluated one.
type CaseFailure struct {
	TranscriptID string `json:"transcript_id"`
	Message      string `json:"message"`
}

// CorpusReport aggregates evaluation reports across a corpus of transcripts.
// Cases that failed structural validation appear in Failures instead of
// Reports; the rest of the corpus still aggregates.
type CorpusReport struct {
	Reports  []EvaluationReport `json:"reports"`
	Failures []CaseFailure      `json:"failures,omitempty"`
}

// NTranscripts returns the number of evaluated transcripts
func (c *CorpusReport) NTranscripts() int {
	return len(c.Reports)
}

// MeanMetricsBySignal averages precision/recall/F1 per signal type across
// transcripts. Transcripts where a signal type is absent do not contribute
// to that type's averages.
func (c *CorpusReport) MeanMetricsBySignal() map[string]SignalAverages {
	type accum struct {
		p, r, f []float64
	}
	acc := make(map[string]*accum)

	for i := range c.Reports {
		for _, m := range c.Reports[i].AllSignalMetrics() {
			a, ok := acc[m.SignalName]
			if !ok {
				a = &accum{}
				acc[m.SignalName] = a
			}
			if m.Precision != nil {
				a.p = append(a.p, *m.Precision)
			}
			if m.Recall != nil {
				a.r = append(a.r, *m.Recall)
			}
			if m.F1 != nil {
				a.f = append(a.f, *m.F1)
			}
		}
	}

	result := make(map[string]SignalAverages, len(acc))
	for name, a := range acc {
		result[name] = SignalAverages{
			Precision: meanOf(a.p),
			Recall:    meanOf(a.r),
			F1:        meanOf(a.f),
		}
	}
	return result
}

// Summary renders a human-readable corpus-level summary
func (c *CorpusReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Corpus Evaluation (%d transcripts)\n", c.NTranscripts())
	b.WriteString(strings.Repeat("=", 60))

	agg := c.MeanMetricsBySignal()
	names := make([]string, 0, len(agg))
	for name := range agg {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		vals := agg[name]
		fmt.Fprintf(&b, "\n  %-30s %s  %s  %s",
			name,
			renderMetric("P", vals.Precision), renderMetric("R", vals.Recall),
			renderMetric("F1", vals.F1))
	}

	var overall []float64
	for i := range c.Reports {
		if f, ok := c.Reports[i].OverallF1(); ok {
			overall = append(overall, f)
		}
	}
	if mean := meanOf(overall); mean != nil {
		fmt.Fprintf(&b, "\n\nMean Overall F1: %.2f", *mean)
	} else {
		b.WriteString("\n\nMean Overall F1: n/a")
	}

	if len(c.Failures) > 0 {
		fmt.Fprintf(&b, "\n\nFailed cases (%d):", len(c.Failures))
		for i := range c.Failures {
			fmt.Fprintf(&b, "\n  %s: %s", c.Failures[i].TranscriptID, c.Failures[i].Message)
		}
	}
	return b.String()
}

func meanOf(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return Float(sum / float64(len(values)))
}
