// Package query normalizes raw platform message text into the
// platform-agnostic search query. All adapters share this one
// implementation so trigger and URL handling cannot drift between them.
package query

import "strings"

// Site search URLs double as bot triggers: pasting an item link asks the
// bot for that item's price on the matching market.
const (
	seaSearchURL    = "https://poporing.life/?search="
	globalSearchURL = "https://global.poporing.life/?search="
)

// Normalized is the result of trigger detection and query extraction.
type Normalized struct {
	// Query is the trimmed free-text search query.
	Query string
	// MarketHint is "sea" or "global" when the trigger itself implies a
	// market (site URLs), otherwise empty.
	MarketHint string
	// Activation is a diagnostic suffix describing how the bot was
	// triggered ("_direct", "_mention", "_url_sea", "_url_global").
	Activation string
	// Triggered reports whether any explicit trigger prefix matched.
	// Adapters treat untriggered text as a query only in direct messages.
	Triggered bool
}

// Normalize extracts the query from raw message text. mentionPrefixes are
// the platform's trigger prefixes (slash command, bot mention); the first
// matching prefix wins. Site-URL triggers additionally set the market hint
// and translate underscores back to spaces, except for ":"-prefixed exact
// internal names, which are taken verbatim.
func Normalize(text string, mentionPrefixes ...string) Normalized {
	text = strings.TrimSpace(text)

	for _, prefix := range mentionPrefixes {
		if strings.HasPrefix(text, prefix) {
			return Normalized{
				Query:      strings.TrimSpace(strings.TrimPrefix(text, prefix)),
				Activation: "_mention",
				Triggered:  true,
			}
		}
	}

	if strings.HasPrefix(text, seaSearchURL) {
		return Normalized{
			Query:      urlQuery(strings.TrimPrefix(text, seaSearchURL)),
			MarketHint: "sea",
			Activation: "_url_sea",
			Triggered:  true,
		}
	}

	if strings.HasPrefix(text, globalSearchURL) {
		return Normalized{
			Query:      urlQuery(strings.TrimPrefix(text, globalSearchURL)),
			MarketHint: "global",
			Activation: "_url_global",
			Triggered:  true,
		}
	}

	return Normalized{
		Query:      text,
		Activation: "_direct",
	}
}

func urlQuery(rest string) string {
	if !strings.HasPrefix(rest, ":") {
		rest = strings.ReplaceAll(rest, "_", " ")
	}

	return strings.TrimSpace(rest)
}
