package service

import (
	"strings"

	"github.com/niksmo/korzina/internal/core/domain"
	"github.com/pmezard/go-difflib/difflib"
)

const (
	partialFullThreshold  = 0.5
	partialCleanThreshold = 0.3
	exactCleanSimilarity  = 0.9
)

var matchPriority = map[domain.MatchType]int{
	domain.MatchExactFull:    4,
	domain.MatchPartialFull:  3,
	domain.MatchExactClean:   2,
	domain.MatchPartialClean: 1,
}

// Units, packaging and prepositions common in grocery titles.
var stopWords = map[string]struct{}{
	"г": {}, "гр": {}, "кг": {}, "мл": {}, "л": {}, "шт": {}, "уп": {},
	"упак": {}, "пак": {}, "в": {}, "во": {}, "с": {}, "со": {}, "и": {},
	"на": {}, "для": {}, "по": {}, "из": {}, "без": {}, "от": {},
}

func cleanName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	kept := words[:0]
	for _, w := range words {
		if _, ok := stopWords[w]; !ok {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// similarity is the ratio of matching characters of a and b in [0, 1].
func similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

type matchable struct {
	offer domain.Offer
	name  string
	clean string
}

func newMatchable(o domain.Offer) matchable {
	return matchable{offer: o, name: strings.ToLower(o.Name), clean: cleanName(o.Name)}
}

type target struct {
	raw   string
	name  string
	clean string
}

func newTarget(raw string) target {
	return target{raw: raw, name: strings.ToLower(raw), clean: cleanName(raw)}
}

// classify compares full names first and names without stop words
// second. A check that fails its threshold falls through to the next one.
func classify(t target, m matchable) (domain.MatchType, float64) {
	if t.name == m.name {
		return domain.MatchExactFull, 1
	}
	if containsEither(t.name, m.name) {
		if r := similarity(t.name, m.name); r >= partialFullThreshold {
			return domain.MatchPartialFull, r
		}
	}
	if t.clean == m.clean {
		return domain.MatchExactClean, exactCleanSimilarity
	}
	if containsEither(t.clean, m.clean) {
		if r := similarity(t.clean, m.clean); r >= partialCleanThreshold {
			return domain.MatchPartialClean, r
		}
	}
	return domain.MatchNone, 0
}

func matchScore(mt domain.MatchType, sim, price float64) float64 {
	return float64(matchPriority[mt])*10 + sim + 0.1/(price+0.1)
}

// bestMatch returns the index of the best unused offer for t or -1.
// Stronger match kinds win, then higher similarity, then lower price.
func bestMatch(
	t target, ms []matchable, used map[int]struct{},
) (idx int, mt domain.MatchType, sim float64) {
	idx, mt = -1, domain.MatchNone
	var bestScore float64
	for i, m := range ms {
		if _, ok := used[i]; ok {
			continue
		}
		kind, s := classify(t, m)
		if kind == domain.MatchNone {
			continue
		}
		score := matchScore(kind, s, m.offer.Price)
		if idx == -1 || score > bestScore {
			idx, mt, sim, bestScore = i, kind, s, score
		}
	}
	return idx, mt, sim
}
