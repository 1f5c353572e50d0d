// Package prefs is the stored market-preference layer: a thin key-value
// accessor over three namespaces (user, channel, server/guild).
//
// Values are single strings ("sea", "global" or the "auto" defer sentinel)
// with no TTL. Writes happen only from command handling; concurrent writes
// to the same key are last-write-wins by design, since no read-modify-write
// pattern exists.
package prefs

import "context"

// Store reads and writes single preference values by key.
type Store interface {
	// Get returns the stored value for key. The second return is false when
	// the key is absent, which is distinct from a stored "auto".
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Key namespaces. One preference record per user, channel and server.
const (
	userPrefix    = "user:"
	channelPrefix = "channel:"
	serverPrefix  = "server:"
)

// UserKey returns the preference key for a platform-scoped user ID.
func UserKey(id string) string { return userPrefix + id }

// ChannelKey returns the preference key for a channel ID. DM channels reuse
// this namespace with their own synthetic IDs.
func ChannelKey(id string) string { return channelPrefix + id }

// ServerKey returns the preference key for a guild/server ID.
func ServerKey(id string) string { return serverPrefix + id }
