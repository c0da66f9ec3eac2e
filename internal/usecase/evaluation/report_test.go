package evaluation

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func sampleReport() *EvaluationReport {
	return &EvaluationReport{
		TranscriptID: "t-001",
		Surface: &LayerReport{
			LayerName: "Surface",
			SignalMetrics: []SignalMetrics{
				{SignalName: "aspects", Precision: Float(0.67), Recall: Float(1), F1: Float(0.8),
					CountExtracted: 3, CountGroundTruth: 2, Accuracy: Float(0.5)},
				{SignalName: "topics", Precision: Float(1), Recall: Float(1), F1: Float(1),
					CountExtracted: 1, CountGroundTruth: 1,
					StructuralIssues: []string{"a", "b", "c", "d", "e"}},
			},
		},
		Behavioral: &LayerReport{
			LayerName: "Behavioral",
			SignalMetrics: []SignalMetrics{
				{SignalName: "objection_triples", Precision: Float(0.5), Recall: Float(0.5), F1: Float(0.5),
					CountExtracted: 2, CountGroundTruth: 2},
			},
		},
	}
}

func TestLayerReportMeanF1(t *testing.T) {
	r := sampleReport()
	mean, ok := r.Surface.MeanF1()
	if !ok || !almostEqual(mean, 0.9) {
		t.Errorf("MeanF1 = %v, %v; want 0.9, true", mean, ok)
	}

	empty := &LayerReport{LayerName: "X", SignalMetrics: []SignalMetrics{{SignalName: "y"}}}
	if _, ok := empty.MeanF1(); ok {
		t.Error("layer with no F1 values should report no mean")
	}
}

func TestEvaluationReportOverallF1(t *testing.T) {
	r := sampleReport()
	overall, ok := r.OverallF1()
	want := (0.8 + 1.0 + 0.5) / 3
	if !ok || !almostEqual(overall, want) {
		t.Errorf("OverallF1 = %v, %v; want %v, true", overall, ok, want)
	}

	if metrics := r.AllSignalMetrics(); len(metrics) != 3 {
		t.Errorf("AllSignalMetrics returned %d entries, want 3", len(metrics))
	}
}

func TestEvaluationReportSummary(t *testing.T) {
	s := sampleReport().Summary()

	for _, want := range []string{
		"Evaluation Report: t-001",
		"Surface (avg F1: 0.90)",
		"P=0.67",
		"accuracy=0.50",
		"(3 extracted, 2 gt)",
		"! a",
		"... and 2 more",
		"Overall F1: 0.77",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
	// Only the first three issues render individually
	if strings.Contains(s, "! d") {
		t.Error("summary should truncate structural issues after three")
	}
}

func TestCorpusReportSkipsAbsentSignalTypes(t *testing.T) {
	withMultimodal := *sampleReport()
	withMultimodal.Multimodal = &LayerReport{
		LayerName: "Multimodal",
		SignalMetrics: []SignalMetrics{
			{SignalName: "divergences", Precision: Float(1), Recall: Float(1), F1: Float(1)},
		},
	}
	withoutMultimodal := *sampleReport()

	corpus := &CorpusReport{Reports: []EvaluationReport{withMultimodal, withoutMultimodal}}
	if corpus.NTranscripts() != 2 {
		t.Fatalf("NTranscripts = %d", corpus.NTranscripts())
	}

	agg := corpus.MeanMetricsBySignal()

	// Divergences exist in one report only; the other must not drag the mean
	div, ok := agg["divergences"]
	if !ok || div.F1 == nil || !almostEqual(*div.F1, 1.0) {
		t.Errorf("divergences aggregate = %+v, want F1 1.0", div)
	}

	aspects := agg["aspects"]
	if aspects.F1 == nil || !almostEqual(*aspects.F1, 0.8) {
		t.Errorf("aspects aggregate F1 = %v, want 0.8", aspects.F1)
	}

	s := corpus.Summary()
	if !strings.Contains(s, "Corpus Evaluation (2 transcripts)") {
		t.Errorf("corpus summary header missing:\n%s", s)
	}
	if !strings.Contains(s, "Mean Overall F1:") {
		t.Errorf("corpus summary missing mean overall F1:\n%s", s)
	}
}
