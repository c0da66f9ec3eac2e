package evaluation

import (
	"sort"
	"strings"
	"unicode"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
)

// Heuristic baselines cross-check the extraction output against signals a
// method with no model behind it can recover from raw text. Low agreement is
// a calibration warning, not a verdict; the extractor ranges far beyond what
// these heuristics can see.

var baselineStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "if": {},
	"of": {}, "to": {}, "in": {}, "on": {}, "at": {}, "for": {}, "with": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"it": {}, "its": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"we": {}, "you": {}, "they": {}, "our": {}, "your": {}, "their": {},
	"i": {}, "he": {}, "she": {}, "my": {}, "me": {}, "us": {}, "so": {},
	"do": {}, "does": {}, "did": {}, "have": {}, "has": {}, "had": {},
	"not": {}, "no": {}, "yes": {}, "can": {}, "will": {}, "would": {},
	"what": {}, "how": {}, "when": {}, "where": {}, "who": {}, "about": {},
}

var positiveWords = map[string]struct{}{
	"great": {}, "good": {}, "excellent": {}, "love": {}, "impressive": {},
	"excited": {}, "perfect": {}, "helpful": {}, "strong": {}, "valuable": {},
	"easy": {}, "fast": {}, "reliable": {}, "confident": {}, "promising": {},
	"better": {}, "best": {}, "like": {}, "happy": {}, "solid": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "poor": {}, "terrible": {}, "hate": {}, "concerned": {},
	"worried": {}, "expensive": {}, "slow": {}, "difficult": {}, "risky": {},
	"problem": {}, "problems": {}, "issue": {}, "issues": {}, "worse": {},
	"worst": {}, "frustrating": {}, "disappointing": {}, "unclear": {},
	"blocker": {}, "concern": {}, "concerns": {}, "doubt": {},
}

// EntityCandidates extracts capitalized spans from text as entity candidates,
// lowercased. A capitalized sentence opener only counts when it continues
// into a multi-word span.
func EntityCandidates(text string) map[string]struct{} {
	candidates := make(map[string]struct{})
	tokens := strings.Fields(text)

	sentenceStart := true
	spanOpened := false
	var span []string
	flush := func() {
		if len(span) > 1 || (len(span) == 1 && !spanOpened) {
			candidates[strings.ToLower(strings.Join(span, " "))] = struct{}{}
		}
		span = nil
	}

	for _, tok := range tokens {
		trimmed := strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		endsSentence := strings.ContainsAny(tok, ".?!")

		if trimmed != "" && isCapitalized(trimmed) {
			if len(span) == 0 {
				spanOpened = sentenceStart
			}
			span = append(span, trimmed)
		} else {
			flush()
		}
		if endsSentence {
			flush()
			sentenceStart = true
		} else {
			sentenceStart = false
		}
	}
	flush()
	return candidates
}

func isCapitalized(word string) bool {
	runes := []rune(word)
	if len(runes) < 2 || !unicode.IsUpper(runes[0]) {
		return false
	}
	_, stop := baselineStopwords[strings.ToLower(word)]
	return !stop
}

// KeyphraseCandidates extracts the topN most frequent content unigrams and
// bigrams from text, lowercased
func KeyphraseCandidates(text string, topN int) map[string]struct{} {
	var content []string
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		trimmed := strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(trimmed) < 3 {
			continue
		}
		if _, stop := baselineStopwords[trimmed]; stop {
			continue
		}
		content = append(content, trimmed)
	}

	counts := make(map[string]int)
	for i, tok := range content {
		counts[tok]++
		if i+1 < len(content) {
			counts[tok+" "+content[i+1]]++
		}
	}

	type scored struct {
		phrase string
		count  int
	}
	ranked := make([]scored, 0, len(counts))
	for phrase, count := range counts {
		if count >= 2 {
			ranked = append(ranked, scored{phrase, count})
		}
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].count != ranked[b].count {
			return ranked[a].count > ranked[b].count
		}
		return ranked[a].phrase < ranked[b].phrase
	})

	result := make(map[string]struct{})
	for i, s := range ranked {
		if i >= topN {
			break
		}
		result[s.phrase] = struct{}{}
	}
	return result
}

// LexiconPolarity classifies text sentiment from positive/negative word
// counts
func LexiconPolarity(text string) signals.SentimentPolarity {
	pos, neg := 0, 0
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		trimmed := strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if _, ok := positiveWords[trimmed]; ok {
			pos++
		}
		if _, ok := negativeWords[trimmed]; ok {
			neg++
		}
	}
	switch {
	case pos > neg:
		return signals.SentimentPositive
	case neg > pos:
		return signals.SentimentNegative
	default:
		return signals.SentimentNeutral
	}
}

// EntityBaselineAgreement reports the fraction of baseline entity candidates
// that appear in the extracted entity names. Nil when the text yields no
// candidates.
func EntityBaselineAgreement(extractedNames []string, transcriptText string) *float64 {
	candidates := EntityCandidates(transcriptText)
	if len(candidates) == 0 {
		return nil
	}

	lowered := lowercaseAll(extractedNames)
	found := 0
	for candidate := range candidates {
		for _, name := range lowered {
			if strings.Contains(name, candidate) || strings.Contains(candidate, name) {
				found++
				break
			}
		}
	}
	return Float(float64(found) / float64(len(candidates)))
}

// KeyphraseBaselineAgreement reports the fraction of baseline keyphrase
// candidates sharing at least one token with an extracted phrase. Nil when
// the text yields no candidates.
func KeyphraseBaselineAgreement(extractedPhrases []string, transcriptText string) *float64 {
	candidates := KeyphraseCandidates(transcriptText, 20)
	if len(candidates) == 0 {
		return nil
	}

	extTokens := make([]map[string]struct{}, len(extractedPhrases))
	for i, phrase := range extractedPhrases {
		extTokens[i] = tokenSetOf(phrase)
	}

	found := 0
	for candidate := range candidates {
		candTokens := tokenSetOf(candidate)
		for _, ext := range extTokens {
			if intersects(candTokens, ext) {
				found++
				break
			}
		}
	}
	return Float(float64(found) / float64(len(candidates)))
}

// SentimentPair aligns an extracted polarity with the source text it cites
type SentimentPair struct {
	SourceText string
	Polarity   signals.SentimentPolarity
}

// SentimentBaselineAgreement reports how often extracted aspect polarities
// agree with the lexicon baseline on their source utterances. Mixed maps to
// neutral for comparison. Nil when no pairs are given.
func SentimentBaselineAgreement(pairs []SentimentPair) *float64 {
	if len(pairs) == 0 {
		return nil
	}
	matches := 0
	for _, pair := range pairs {
		extracted := pair.Polarity
		if extracted == signals.SentimentMixed {
			extracted = signals.SentimentNeutral
		}
		if extracted == LexiconPolarity(pair.SourceText) {
			matches++
		}
	}
	return Float(float64(matches) / float64(len(pairs)))
}

func tokenSetOf(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}
	return set
}

func intersects(a, b map[string]struct{}) bool {
	for tok := range a {
		if _, ok := b[tok]; ok {
			return true
		}
	}
	return false
}
