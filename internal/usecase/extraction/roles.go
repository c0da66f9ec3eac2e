package extraction

import (
	"sort"
	"strings"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
)

// Role labels assigned by inference
const (
	RoleRep      = "sales_rep"
	RoleProspect = "prospect"
)

// NoteRolesInferred annotates a result whose speaker roles were inferred
// rather than supplied
const NoteRolesInferred = "speaker roles missing; inferred rep/prospect from discovery-question heuristic (low-confidence attribution)"

var discoveryOpeners = []string{
	"what", "how", "when", "who", "which", "why", "where",
	"tell me", "walk me", "can you", "could you", "would you", "do you",
	"have you", "how's", "what's",
}

// isDiscoveryQuestion reports whether an utterance reads like a rep's
// discovery-style question
func isDiscoveryQuestion(text string) bool {
	if !strings.Contains(text, "?") {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, opener := range discoveryOpeners {
		if strings.HasPrefix(lower, opener) || strings.Contains(lower, ". "+opener) || strings.Contains(lower, "? "+opener) {
			return true
		}
	}
	return false
}

// InferSpeakerRoles derives role labels for transcripts that lack them,
// without touching the transcript itself, under a two-party model:
// the speaker who predominantly asks discovery-style questions is the rep,
// everyone else is the prospect side. Returns whether inference ran; callers
// must mark inferred attributions as low-confidence provenance.
// Transcripts that already carry complete role labels are left untouched.
func InferSpeakerRoles(t *signals.Transcript) (map[string]string, bool) {
	if t.HasSpeakerRoles() {
		roles := make(map[string]string)
		for i := range t.Utterances {
			roles[t.Utterances[i].Speaker] = t.Utterances[i].Role
		}
		return roles, false
	}

	questions := make(map[string]int)
	turns := make(map[string]int)
	for i := range t.Utterances {
		u := &t.Utterances[i]
		turns[u.Speaker]++
		if isDiscoveryQuestion(u.Text) {
			questions[u.Speaker]++
		}
	}

	speakers := make([]string, 0, len(turns))
	for s := range turns {
		speakers = append(speakers, s)
	}
	// Rank by discovery-question count, then turn count, then name for
	// reproducibility.
	sort.Slice(speakers, func(a, b int) bool {
		sa, sb := speakers[a], speakers[b]
		if questions[sa] != questions[sb] {
			return questions[sa] > questions[sb]
		}
		if turns[sa] != turns[sb] {
			return turns[sa] > turns[sb]
		}
		return sa < sb
	})

	roles := make(map[string]string, len(speakers))
	for i, s := range speakers {
		if i == 0 {
			roles[s] = RoleRep
		} else {
			roles[s] = RoleProspect
		}
	}

	return roles, true
}

// FormatRoles renders a role assignment for prompt context, deterministically
// ordered by speaker name
func FormatRoles(roles map[string]string, inferred bool) string {
	if len(roles) == 0 {
		return ""
	}
	speakers := make([]string, 0, len(roles))
	for s := range roles {
		speakers = append(speakers, s)
	}
	sort.Strings(speakers)

	var b strings.Builder
	b.WriteString("Speaker roles")
	if inferred {
		b.WriteString(" (inferred, low confidence)")
	}
	b.WriteString(":")
	for _, s := range speakers {
		b.WriteString(" ")
		b.WriteString(s)
		b.WriteString("=")
		b.WriteString(roles[s])
		b.WriteString(";")
	}
	return strings.TrimSuffix(b.String(), ";")
}
