// Package market defines the price-data backends a query can be routed to
// and the precedence rules for choosing one.
//
// Two real markets exist, SEA and Global, each backed by its own API origin.
// A third reserved value, Cmd, routes the request to administrative command
// handling instead of a price lookup.
package market

// Market identifies one price-data backend.
type Market string

const (
	SEA    Market = "sea"
	Global Market = "global"

	// Cmd is the reserved pseudo-market for administrative commands.
	Cmd Market = "cmd"
)

// Info holds the static per-market display and endpoint metadata.
// It is presentation/config data only and is never persisted.
type Info struct {
	APIBaseURL string
	Origin     string
	Icon       string
	SearchURL  string
	ColorHex   string
	ColorInt   int
}

var markets = map[Market]Info{
	SEA: {
		APIBaseURL: "https://api.poporing.life",
		Origin:     "https://poporing.life",
		Icon:       "[SEA] ",
		SearchURL:  "https://poporing.life/?search=:",
		ColorHex:   "#0088dd",
		ColorInt:   35037,
	},
	Global: {
		APIBaseURL: "https://api-global.poporing.life",
		Origin:     "https://global.poporing.life",
		Icon:       "[Global] ",
		SearchURL:  "https://global.poporing.life/?search=:",
		ColorHex:   "#FFFF00",
		ColorInt:   16776960,
	},
}

// Lookup returns the metadata for a real market. The second return is false
// for Cmd or any unrecognized value.
func Lookup(m Market) (Info, bool) {
	info, ok := markets[m]
	return info, ok
}

// IsReal reports whether m is a market that serves price data.
func IsReal(m Market) bool {
	return m == SEA || m == Global
}
