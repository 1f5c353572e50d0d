package catalog

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Index option defaults. The phrase index matches the whole term with wide
// tolerance; the tokenized index requires every whitespace token to match
// and is correspondingly narrower.
const (
	phraseMinScore    = -200
	tokenizedMinScore = -50
)

type indexOptions struct {
	tokenize bool
	minScore int
}

// index is a fuzzy-search index over one immutable item slice. Both indexes
// are built together during snapshot construction and never mutated after.
type index struct {
	texts []string
	opts  indexOptions
}

func newIndex(items []Item, opts indexOptions) *index {
	texts := make([]string, len(items))
	for i, it := range items {
		// Internal name participates in matching alongside display names.
		texts[i] = strings.ToLower(it.Name) + nameSeparator + it.CombinedKey
	}

	return &index{texts: texts, opts: opts}
}

// search returns the best-matching catalog position for term, or false when
// nothing scores above the index threshold.
func (ix *index) search(term string) (int, bool) {
	if ix.opts.tokenize {
		return ix.searchTokens(term)
	}

	matches := fuzzy.Find(term, ix.texts)
	if len(matches) == 0 || matches[0].Score < ix.opts.minScore {
		return 0, false
	}

	return matches[0].Index, true
}

// searchTokens requires every token of the term to match the same item and
// ranks candidates by their summed score.
func (ix *index) searchTokens(term string) (int, bool) {
	tokens := strings.Fields(term)
	if len(tokens) == 0 {
		return 0, false
	}

	scores := make(map[int]int)
	hits := make(map[int]int)

	for _, tok := range tokens {
		for _, m := range fuzzy.Find(tok, ix.texts) {
			scores[m.Index] += m.Score
			hits[m.Index]++
		}
	}

	candidates := make([]int, 0, len(hits))

	for pos, n := range hits {
		if n == len(tokens) && scores[pos] >= ix.opts.minScore {
			candidates = append(candidates, pos)
		}
	}

	if len(candidates) == 0 {
		return 0, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		si, sj := scores[candidates[i]], scores[candidates[j]]
		if si != sj {
			return si > sj
		}
		// Catalog order (shortest display name first) breaks score ties.
		return candidates[i] < candidates[j]
	})

	return candidates[0], true
}
