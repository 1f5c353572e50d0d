package market

// DefaultMarket is used when no preference level yields a concrete value.
const DefaultMarket = SEA

// autoSentinel is the stored value meaning "defer to the next precedence
// level". It is distinct from an absent preference only in intent; both
// fall through the chain.
const autoSentinel = "auto"

type prefState int

const (
	prefUnset prefState = iota
	prefAuto
	prefConcrete
)

// Preference is the tri-state value of one precedence level:
// unset, the "auto" defer sentinel, or a concrete stored token.
type Preference struct {
	state prefState
	raw   string
}

// Unset returns the absent preference.
func Unset() Preference {
	return Preference{state: prefUnset}
}

// Auto returns the defer sentinel preference.
func Auto() Preference {
	return Preference{state: prefAuto}
}

// Concrete returns a preference carrying a stored token. The token is kept
// verbatim; validation happens only after the precedence walk so that an
// unexpected stored value surfaces as an invalid market, not a silent default.
func Concrete(raw string) Preference {
	return Preference{state: prefConcrete, raw: raw}
}

// ParsePreference maps a stored value (and its presence flag) onto the
// tri-state. ok=false means the key was absent.
func ParsePreference(raw string, ok bool) Preference {
	if !ok || raw == "" {
		return Unset()
	}

	if raw == autoSentinel {
		return Auto()
	}

	return Concrete(raw)
}

// Value returns the concrete token, if any.
func (p Preference) Value() (string, bool) {
	return p.raw, p.state == prefConcrete
}

// IsAuto reports whether p is the defer sentinel.
func (p Preference) IsAuto() bool {
	return p.state == prefAuto
}

// Chain is the ordered preference levels: user, then channel, then
// server/guild. Platforms without a guild concept leave the last level unset.
type Chain struct {
	User    Preference
	Channel Preference
	Server  Preference
}

// Resolve computes the effective market for one request.
//
// Precedence: an explicit token (parsed from the query or a URL hint)
// overrides everything; otherwise the first concrete preference in
// user -> channel -> server order wins; "auto" at any level falls through;
// with nothing concrete the default is SEA. Single-letter shorthands are
// normalized ("s" -> sea, "g" -> global) and the literal query "help"
// forces the Cmd pseudo-market.
//
// The second return is false when the resolved token is not a known market,
// which callers must treat as an invalid-server condition.
func Resolve(explicit string, query string, chain Chain) (Market, bool) {
	choice := ""

	for _, p := range [...]Preference{chain.User, chain.Channel, chain.Server} {
		if v, ok := p.Value(); ok {
			choice = v
			break
		}
	}

	if choice == "" {
		choice = string(DefaultMarket)
	}

	if explicit != "" {
		choice = explicit
	}

	switch choice {
	case "s":
		choice = string(SEA)
	case "g":
		choice = string(Global)
	}

	if query == "help" {
		return Cmd, true
	}

	m := Market(choice)
	switch m {
	case SEA, Global, Cmd:
		return m, true
	}

	return m, false
}
