package dedup

import (
	"strings"
	"unicode"

	"tech-radar/logger"
	"tech-radar/models"
)

// similarityThreshold is the Jaccard overlap above which two titles are
// treated as the same story.
const similarityThreshold = 0.65

// Tokenize lowercases a title, strips everything but letters and digits,
// and drops tokens of two characters or fewer. The surviving token set is
// what similarity is computed over.
func Tokenize(title string) map[string]struct{} {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, title)

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= 2 {
			continue
		}
		tokens[tok] = struct{}{}
	}
	return tokens
}

// Jaccard returns |a ∩ b| / |a ∪ b|. Two empty sets score zero, never one,
// so titles that tokenize to nothing are never merged with each other.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Similar reports whether two titles cross the duplicate threshold.
func Similar(titleA, titleB string) bool {
	return Jaccard(Tokenize(titleA), Tokenize(titleB)) >= similarityThreshold
}

// Filter walks candidates in their given order and drops any whose title is
// a near-duplicate of an earlier kept one, so the first occurrence of a
// story always wins. Deterministic for a fixed input ordering.
//
// Each candidate is compared against every kept set, which is quadratic in
// the input size. The input is the unscored backlog of roughly the last day,
// a few hundred articles at most, so this stays cheap; it would not scale
// to an unbounded corpus.
func Filter(candidates []models.Article) (kept, dropped []models.Article) {
	kept = make([]models.Article, 0, len(candidates))
	var keptSets []map[string]struct{}

	for i := range candidates {
		set := Tokenize(candidates[i].Title)
		if matchAny(set, keptSets) {
			logger.Log.Debugf("dedup: dropping near-duplicate %q", candidates[i].Title)
			dropped = append(dropped, candidates[i])
			continue
		}
		kept = append(kept, candidates[i])
		keptSets = append(keptSets, set)
	}
	return kept, dropped
}

func matchAny(set map[string]struct{}, against []map[string]struct{}) bool {
	for _, other := range against {
		if Jaccard(set, other) >= similarityThreshold {
			return true
		}
	}
	return false
}
