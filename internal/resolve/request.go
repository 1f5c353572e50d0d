package resolve

import (
	"context"

	"github.com/poporinglife/price-bot/internal/price"
)

// Request is one platform-agnostic bot invocation. Adapters fill it from
// their native event type and hand it to the Resolver together with a
// ReplySink for the response.
type Request struct {
	// UserID, ChannelID and ServerID are platform-scoped identifiers,
	// already prefixed by the adapter (e.g. "discord-123"). ServerID is
	// empty on platforms without a guild concept and in DMs.
	UserID    string
	ChannelID string
	ServerID  string

	// UserDisplayName is interpolated into self-setting confirmations.
	UserDisplayName string

	// Activation describes how the bot was triggered; it only feeds the
	// audit log ("telegram_mention", "discord_url_sea", ...).
	Activation string

	// Query is the normalized free-text query, possibly carrying a
	// "market/" prefix.
	Query string

	IsDirect bool
	IsAdmin  bool

	// ExplicitMarket is a market preselected by the trigger itself, such
	// as a pasted site search URL. An inline "market/" prefix in Query
	// still takes precedence over it.
	ExplicitMarket string

	// Raw is the platform-native event, carried for the audit log only.
	Raw any

	// Templates overrides individual reply strings; zero value means
	// DefaultTemplates.
	Templates *Templates
}

func (r *Request) templates() Templates {
	if r.Templates != nil {
		return *r.Templates
	}

	return DefaultTemplates()
}

// ReplySink delivers the outcome of a request back to the platform.
type ReplySink interface {
	ReplyText(ctx context.Context, text string) error
	ReplyPrice(ctx context.Context, result *price.Result) error
}
