package evaluation

import (
	"strings"
	"testing"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
)

func TestValidateUtteranceIndices(t *testing.T) {
	issues := ValidateUtteranceIndices([]int{0, 3, -1, 10}, 5, "aspect:pricing")
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2: %v", len(issues), issues)
	}
	if !strings.Contains(issues[0], "negative index -1") {
		t.Errorf("first issue = %q", issues[0])
	}
	if !strings.Contains(issues[1], "index 10 exceeds max 5") {
		t.Errorf("second issue = %q", issues[1])
	}

	if issues := ValidateUtteranceIndices([]int{0, 5}, 5, "x"); len(issues) != 0 {
		t.Errorf("in-bounds indices flagged: %v", issues)
	}
}

func TestCheckTimelineConsistency(t *testing.T) {
	utterances := []signals.Utterance{
		{Speaker: "a", Text: "Thanks for joining today", TurnIndex: 0},
		{Speaker: "b", Text: "We are worried about the rollout", TurnIndex: 1},
		{Speaker: "a", Text: "Our team likes the product", TurnIndex: 2},
		{Speaker: "b", Text: "Can we revisit pricing next week", TurnIndex: 3},
	}

	topics := []signals.TopicDetection{
		{Name: "pricing", TimelinePosition: "early", Relevance: 0.9},
		{Name: "rollout", TimelinePosition: "early", Relevance: 0.8},
		{Name: "security", TimelinePosition: "mid", Relevance: 0.5},
	}

	issues := CheckTimelineConsistency(topics, utterances)
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %v", len(issues), issues)
	}
	// Only pricing is mislabeled: its single mention is at turn 3 of 4.
	// Rollout's mention at turn 1 sits in the early third, and security is
	// never mentioned so it cannot be verified.
	if !strings.Contains(issues[0], `Topic "pricing"`) || !strings.Contains(issues[0], `"late"`) {
		t.Errorf("issue = %q", issues[0])
	}
}

func TestCheckTimelineConsistencyEmptyTranscript(t *testing.T) {
	topics := []signals.TopicDetection{{Name: "pricing", TimelinePosition: "early"}}
	if issues := CheckTimelineConsistency(topics, nil); issues != nil {
		t.Errorf("expected no issues for empty transcript, got %v", issues)
	}
}

func TestCheckScoreDistribution(t *testing.T) {
	stats, issues := CheckScoreDistribution([]float64{0.7, 0.7, 0.7, 0.7}, "confidence")
	if !stats.Degenerate {
		t.Fatal("constant scores should be degenerate")
	}
	if len(issues) != 1 || !strings.HasPrefix(issues[0], "confidence:") {
		t.Errorf("issues = %v", issues)
	}

	stats, issues = CheckScoreDistribution([]float64{0.1, 0.5, 0.9}, "confidence")
	if stats.Degenerate || len(issues) != 0 {
		t.Errorf("spread scores flagged: %v", issues)
	}
}
