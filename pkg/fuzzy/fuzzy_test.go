package fuzzy

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTokenOverlapSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "pricing concerns", "pricing concerns", 1.0},
		{"case insensitive", "Pricing Concerns", "pricing concerns", 1.0},
		{"partial overlap", "ROI analysis", "ROI justification", 1.0 / 3.0},
		{"no overlap", "pricing", "integration", 0.0},
		{"both empty", "", "", 1.0},
		{"one empty", "pricing", "", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TokenOverlapSimilarity(tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("TokenOverlapSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTokenOverlapSymmetric(t *testing.T) {
	a, b := "implementation timeline risk", "timeline for implementation"
	if got, rev := TokenOverlapSimilarity(a, b), TokenOverlapSimilarity(b, a); !almostEqual(got, rev) {
		t.Errorf("similarity not symmetric: %v vs %v", got, rev)
	}
}

func TestMatchBelowThresholdRejected(t *testing.T) {
	// "ROI analysis" vs "ROI justification" shares 1 of 3 tokens, below the
	// 0.6 aspect-name threshold, so the pair must not align.
	result := Match([]string{"ROI analysis"}, []string{"ROI justification"}, 0.6, nil)
	if len(result.Pairs) != 0 {
		t.Fatalf("expected no pairs at threshold 0.6, got %d", len(result.Pairs))
	}
	if len(result.UnmatchedExtracted) != 1 || len(result.UnmatchedGroundTruth) != 1 {
		t.Errorf("expected both sides unmatched, got %v / %v", result.UnmatchedExtracted, result.UnmatchedGroundTruth)
	}
}

func TestMatchOneToOne(t *testing.T) {
	extracted := []string{"pricing concerns", "pricing concerns", "support quality"}
	groundTruth := []string{"pricing concerns", "support quality"}
	result := Match(extracted, groundTruth, 0.6, nil)
	if len(result.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(result.Pairs))
	}
	seenExt := make(map[int]bool)
	seenGT := make(map[int]bool)
	for _, p := range result.Pairs {
		if seenExt[p.ExtractedIndex] || seenGT[p.GroundTruthIndex] {
			t.Fatalf("matching is not 1:1: %+v", result.Pairs)
		}
		seenExt[p.ExtractedIndex] = true
		seenGT[p.GroundTruthIndex] = true
	}
	if len(result.UnmatchedExtracted) != 1 || result.UnmatchedExtracted[0] != 1 {
		t.Errorf("expected duplicate extracted item left unmatched, got %v", result.UnmatchedExtracted)
	}
}

func TestMatchTieBreakDeterministic(t *testing.T) {
	// Two extracted items score identically against one ground-truth item.
	// The lower extracted index must win.
	extracted := []string{"pricing model", "pricing model"}
	groundTruth := []string{"pricing model"}
	for run := 0; run < 5; run++ {
		result := Match(extracted, groundTruth, 0.5, nil)
		if len(result.Pairs) != 1 {
			t.Fatalf("expected 1 pair, got %d", len(result.Pairs))
		}
		if result.Pairs[0].ExtractedIndex != 0 {
			t.Fatalf("tie-break must prefer lower extracted index, got %d", result.Pairs[0].ExtractedIndex)
		}
	}
}

func TestMatchPrefersHigherSimilarity(t *testing.T) {
	extracted := []string{"onboarding process speed"}
	groundTruth := []string{"onboarding speed", "onboarding process speed delay"}
	result := Match(extracted, groundTruth, 0.4, nil)
	if len(result.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(result.Pairs))
	}
	if result.Pairs[0].GroundTruthIndex != 1 {
		t.Errorf("expected best-scoring ground truth (index 1), got %d", result.Pairs[0].GroundTruthIndex)
	}
}

func TestPrecisionRecallF1EdgeCases(t *testing.T) {
	tests := []struct {
		name                string
		extracted, gt       []string
		wantP, wantR, wantF float64
	}{
		{"both empty", nil, nil, 1, 1, 1},
		{"extracted empty", nil, []string{"pricing"}, 0, 0, 0},
		{"ground truth empty", []string{"pricing"}, nil, 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, r, f, _ := PrecisionRecallF1(tt.extracted, tt.gt, 0.6, nil)
			if !almostEqual(p, tt.wantP) || !almostEqual(r, tt.wantR) || !almostEqual(f, tt.wantF) {
				t.Errorf("got P=%v R=%v F=%v, want P=%v R=%v F=%v", p, r, f, tt.wantP, tt.wantR, tt.wantF)
			}
		})
	}
}

func TestPrecisionRecallF1(t *testing.T) {
	extracted := []string{"pricing concerns", "integration complexity", "roadmap"}
	groundTruth := []string{"pricing concerns", "integration complexity", "security posture", "support quality"}
	p, r, f, result := PrecisionRecallF1(extracted, groundTruth, 0.6, nil)
	if len(result.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(result.Pairs))
	}
	if !almostEqual(p, 2.0/3.0) {
		t.Errorf("precision = %v, want %v", p, 2.0/3.0)
	}
	if !almostEqual(r, 0.5) {
		t.Errorf("recall = %v, want 0.5", r)
	}
	wantF := 2 * (2.0 / 3.0) * 0.5 / (2.0/3.0 + 0.5)
	if !almostEqual(f, wantF) {
		t.Errorf("f1 = %v, want %v", f, wantF)
	}
}

type fixedEmbedder struct {
	vectors map[string][]float64
}

func (e *fixedEmbedder) Embed(text string) ([]float64, error) {
	return e.vectors[text], nil
}

func TestBlendedSimilarity(t *testing.T) {
	emb := &fixedEmbedder{vectors: map[string][]float64{
		"budget fears":     {1, 0},
		"pricing concerns": {1, 0},
	}}
	sim := BlendedSimilarity(emb)
	// Zero token overlap, perfect cosine: the blend averages to 0.5.
	got := sim("budget fears", "pricing concerns")
	if !almostEqual(got, 0.5) {
		t.Errorf("blended similarity = %v, want 0.5", got)
	}
	// Nil embedder degrades to plain token overlap.
	plain := BlendedSimilarity(nil)
	if got := plain("pricing concerns", "pricing concerns"); !almostEqual(got, 1.0) {
		t.Errorf("nil-embedder blend = %v, want 1.0", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := CosineSimilarity([]float64{1, 0}, []float64{0, 1}); !almostEqual(got, 0) {
		t.Errorf("orthogonal cosine = %v, want 0", got)
	}
	if got := CosineSimilarity([]float64{1, 2}, []float64{2, 4}); !almostEqual(got, 1) {
		t.Errorf("parallel cosine = %v, want 1", got)
	}
	if got := CosineSimilarity([]float64{1, 0}, []float64{-1, 0}); !almostEqual(got, 0) {
		t.Errorf("negative cosine must clamp to 0, got %v", got)
	}
	if got := CosineSimilarity(nil, []float64{1}); !almostEqual(got, 0) {
		t.Errorf("mismatched dims = %v, want 0", got)
	}
}
