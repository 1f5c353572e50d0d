package catalog

import "strings"

const exactPrefix = ":"

// Resolve maps a free-text search term onto a catalog entry. First hit wins:
//
//  1. A ":"-prefixed term requires an exact, case-insensitive internal-name
//     match and never falls back to fuzzy search.
//  2. Case-insensitive substring match against the combined display-name
//     key; first match in catalog order (shortest display name first) wins.
//  3. Fuzzy fallback: terms containing a space go to the tokenized index,
//     single tokens to the phrase index.
//
// A miss is a normal outcome, not an error.
func (s *Snapshot) Resolve(term string) (Item, bool) {
	lower := strings.ToLower(strings.TrimSpace(term))

	if strings.HasPrefix(lower, exactPrefix) {
		name := strings.TrimPrefix(lower, exactPrefix)
		for _, it := range s.items {
			if strings.ToLower(it.Name) == name {
				return it, true
			}
		}

		return Item{}, false
	}

	for _, it := range s.items {
		if strings.Contains(it.CombinedKey, lower) {
			return it, true
		}
	}

	ix := s.phrase
	if strings.Contains(lower, " ") {
		ix = s.tokenized
	}

	pos, ok := ix.search(lower)
	if !ok {
		return Item{}, false
	}

	return s.items[pos], true
}
