// Package fuzzy provides similarity scoring and greedy 1:1 alignment between
// extracted and reference item collections.
package fuzzy

import (
	"math"
	"sort"
	"strings"
)

// SimilarityFunc scores the similarity of two labels in [0,1]
type SimilarityFunc func(a, b string) float64

// Embedder is an optional semantic-similarity backend. The matcher works
// correctly without one; when present its cosine similarity is blended with
// token overlap.
type Embedder interface {
	Embed(text string) ([]float64, error)
}

// TokenOverlapSimilarity is Jaccard similarity on lowercased word tokens
func TokenOverlapSimilarity(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 1.0
	}
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}
	inter := 0
	for tok := range tokensA {
		if _, ok := tokensB[tok]; ok {
			inter++
		}
	}
	union := len(tokensA) + len(tokensB) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}
	return set
}

// CosineSimilarity computes cosine similarity of two vectors, clamped to [0,1]
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		return 0.0
	}
	if cos > 1 {
		return 1.0
	}
	return cos
}

// BlendedSimilarity returns a similarity function that averages token overlap
// with embedding cosine similarity. Embedding errors fall back to token
// overlap alone.
func BlendedSimilarity(embedder Embedder) SimilarityFunc {
	return func(a, b string) float64 {
		jaccard := TokenOverlapSimilarity(a, b)
		if embedder == nil {
			return jaccard
		}
		va, errA := embedder.Embed(a)
		vb, errB := embedder.Embed(b)
		if errA != nil || errB != nil {
			return jaccard
		}
		return (jaccard + CosineSimilarity(va, vb)) / 2
	}
}

// MatchedPair aligns one extracted item with one ground-truth item
type MatchedPair struct {
	ExtractedIndex   int     `json:"extracted_index"`
	GroundTruthIndex int     `json:"ground_truth_index"`
	Extracted        string  `json:"extracted"`
	GroundTruth      string  `json:"ground_truth"`
	Similarity       float64 `json:"similarity"`
}

// MatchResult holds the 1:1 alignment plus the leftover items on each side
type MatchResult struct {
	Pairs                []MatchedPair `json:"pairs"`
	UnmatchedExtracted   []int         `json:"unmatched_extracted,omitempty"`
	UnmatchedGroundTruth []int         `json:"unmatched_ground_truth,omitempty"`
}

type scoredPair struct {
	score float64
	i, j  int
}

// Match computes the full pairwise similarity matrix and greedily accepts the
// highest-similarity pair at or above threshold whose endpoints are unused.
// The result is a deterministic 1:1 assignment: ties on similarity break by
// lower extracted index, then lower ground-truth index (stable original
// ordering), so corpus metrics reproduce run to run.
func Match(extracted, groundTruth []string, threshold float64, sim SimilarityFunc) MatchResult {
	if sim == nil {
		sim = TokenOverlapSimilarity
	}

	pairs := make([]scoredPair, 0, len(extracted)*len(groundTruth))
	for i, ext := range extracted {
		for j, gt := range groundTruth {
			score := sim(ext, gt)
			if score >= threshold {
				pairs = append(pairs, scoredPair{score: score, i: i, j: j})
			}
		}
	}

	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].score != pairs[b].score {
			return pairs[a].score > pairs[b].score
		}
		if pairs[a].i != pairs[b].i {
			return pairs[a].i < pairs[b].i
		}
		return pairs[a].j < pairs[b].j
	})

	usedExt := make(map[int]bool, len(extracted))
	usedGT := make(map[int]bool, len(groundTruth))
	result := MatchResult{}

	for _, p := range pairs {
		if usedExt[p.i] || usedGT[p.j] {
			continue
		}
		usedExt[p.i] = true
		usedGT[p.j] = true
		result.Pairs = append(result.Pairs, MatchedPair{
			ExtractedIndex:   p.i,
			GroundTruthIndex: p.j,
			Extracted:        extracted[p.i],
			GroundTruth:      groundTruth[p.j],
			Similarity:       p.score,
		})
	}

	for i := range extracted {
		if !usedExt[i] {
			result.UnmatchedExtracted = append(result.UnmatchedExtracted, i)
		}
	}
	for j := range groundTruth {
		if !usedGT[j] {
			result.UnmatchedGroundTruth = append(result.UnmatchedGroundTruth, j)
		}
	}
	return result
}

// PrecisionRecallF1 computes precision, recall, and F1 from a greedy 1:1 fuzzy
// match between extracted and ground-truth labels
func PrecisionRecallF1(extracted, groundTruth []string, threshold float64, sim SimilarityFunc) (p, r, f float64, result MatchResult) {
	if len(extracted) == 0 && len(groundTruth) == 0 {
		return 1.0, 1.0, 1.0, MatchResult{}
	}
	if len(extracted) == 0 {
		result = Match(extracted, groundTruth, threshold, sim)
		return 0.0, 0.0, 0.0, result
	}
	if len(groundTruth) == 0 {
		result = Match(extracted, groundTruth, threshold, sim)
		return 0.0, 1.0, 0.0, result
	}

	result = Match(extracted, groundTruth, threshold, sim)
	n := float64(len(result.Pairs))
	p = n / float64(len(extracted))
	r = n / float64(len(groundTruth))
	if p+r > 0 {
		f = 2 * p * r / (p + r)
	}
	return p, r, f, result
}
