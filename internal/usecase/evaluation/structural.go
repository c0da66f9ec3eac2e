package evaluation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/pkg/metrics"
)

// ValidateUtteranceIndices checks that cited indices are non-negative and
// within the transcript bounds, returning one issue per violation
func ValidateUtteranceIndices(indices []int, maxIndex int, label string) []string {
	var issues []string
	for _, idx := range indices {
		if idx < 0 {
			issues = append(issues, fmt.Sprintf("%s: negative index %d", label, idx))
		} else if idx > maxIndex {
			issues = append(issues, fmt.Sprintf("%s: index %d exceeds max %d", label, idx, maxIndex))
		}
	}
	return issues
}

// CheckTimelineConsistency verifies topic timeline labels against where the
// topic name actually appears in the transcript. The median mention turn is
// compared to the third of the conversation the label claims; topics never
// mentioned verbatim are unverifiable and skipped.
func CheckTimelineConsistency(topics []signals.TopicDetection, utterances []signals.Utterance) []string {
	if len(utterances) == 0 {
		return nil
	}

	totalTurns := len(utterances)
	third := float64(totalTurns) / 3
	var issues []string

	for i := range topics {
		topic := &topics[i]
		topicLower := strings.ToLower(topic.Name)

		var mentionTurns []int
		for j := range utterances {
			if strings.Contains(strings.ToLower(utterances[j].Text), topicLower) {
				mentionTurns = append(mentionTurns, utterances[j].TurnIndex)
			}
		}
		if len(mentionTurns) == 0 {
			continue
		}

		sort.Ints(mentionTurns)
		median := mentionTurns[len(mentionTurns)/2]

		var expected string
		switch {
		case float64(median) < third:
			expected = "early"
		case float64(median) < 2*third:
			expected = "mid"
		default:
			expected = "late"
		}

		if topic.TimelinePosition != expected {
			issues = append(issues, fmt.Sprintf(
				"Topic %q: labeled %q but mentions concentrate in %q (median turn %d/%d)",
				topic.Name, topic.TimelinePosition, expected, median, totalTurns))
		}
	}
	return issues
}

// CheckScoreDistribution computes distribution stats for a batch of scores
// and renders any degenerate pattern as a labeled issue
func CheckScoreDistribution(scores []float64, label string) (metrics.DistributionStats, []string) {
	stats := metrics.Describe(scores)
	var issues []string
	if stats.Degenerate {
		issues = append(issues, fmt.Sprintf("%s: %s", label, stats.Reason))
	}
	return stats, issues
}
