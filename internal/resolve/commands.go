package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/poporinglife/price-bot/internal/platform/observability"
	"github.com/poporinglife/price-bot/internal/prefs"
)

// runCommand handles the "cmd" pseudo-market: preference mutations and the
// help text. Commands the caller is not allowed to run are dropped without
// a reply, matching the quiet-failure behavior users expect in shared
// channels. One CMD audit record is emitted either way.
func (r *Resolver) runCommand(ctx context.Context, reqID string, req Request, query string, sink ReplySink) error {
	tpl := req.templates()
	cmd := strings.ToLower(query)

	done := false
	reply := ""

	var storeErr error

	switch cmd {
	case "myserver=global":
		storeErr = r.setPref(ctx, "user", prefs.UserKey(req.UserID), "global")
		done = storeErr == nil
		reply = fmt.Sprintf(tpl.SettingMyGlobal, req.UserDisplayName)
	case "myserver=sea":
		storeErr = r.setPref(ctx, "user", prefs.UserKey(req.UserID), "sea")
		done = storeErr == nil
		reply = fmt.Sprintf(tpl.SettingMySEA, req.UserDisplayName)
	case "myserver=auto":
		storeErr = r.setPref(ctx, "user", prefs.UserKey(req.UserID), "auto")
		done = storeErr == nil
		reply = fmt.Sprintf(tpl.SettingMyAuto, req.UserDisplayName)

	case "channel=global", "channel=sea", "channel=auto":
		if req.IsAdmin && !req.IsDirect {
			value := strings.TrimPrefix(cmd, "channel=")
			storeErr = r.setPref(ctx, "channel", prefs.ChannelKey(req.ChannelID), value)
			done = storeErr == nil

			switch value {
			case "global":
				reply = tpl.SettingChannelGlobal
			case "sea":
				reply = tpl.SettingChannelSEA
			case "auto":
				reply = tpl.SettingChannelAuto
			}
		}

	case "dm=global", "dm=sea":
		// A DM preference lives under the channel key: the DM channel id
		// doubles as the preference key.
		if req.IsAdmin && req.IsDirect {
			value := strings.TrimPrefix(cmd, "dm=")
			storeErr = r.setPref(ctx, "channel", prefs.ChannelKey(req.ChannelID), value)
			done = storeErr == nil

			if value == "global" {
				reply = tpl.SettingDMGlobal
			} else {
				reply = tpl.SettingDMSEA
			}
		}

	case "default=global", "default=sea":
		if req.IsAdmin && req.ServerID != "" {
			value := strings.TrimPrefix(cmd, "default=")
			storeErr = r.setPref(ctx, "server", prefs.ServerKey(req.ServerID), value)
			done = storeErr == nil

			if value == "global" {
				reply = tpl.SettingServerGlobal
			} else {
				reply = tpl.SettingServerSEA
			}
		}

	case "help":
		done = true
		reply = helpText(tpl, req)
	}

	observability.QueriesTotal.WithLabelValues("cmd").Inc()

	evt := r.audit(typeCmd, reqID, req, "cmd", query).
		Str("cmd", cmd).
		Bool("cmd_done", done)
	if storeErr != nil {
		evt = evt.Err(storeErr)
	}
	evt.Msg("command processed")

	if !done || reply == "" {
		return nil
	}

	return sink.ReplyText(ctx, reply)
}

func (r *Resolver) setPref(ctx context.Context, scope, key, value string) error {
	if err := r.prefs.Set(ctx, key, value); err != nil {
		return fmt.Errorf("store preference %s: %w", key, err)
	}

	observability.PreferenceWrites.WithLabelValues(scope).Inc()

	return nil
}

// helpText picks one of the four help variants by audience: DM users,
// channel users, channel admins, and admins of a server.
func helpText(tpl Templates, req Request) string {
	if req.IsDirect {
		return tpl.HelpUserDM
	}

	if !req.IsAdmin {
		return tpl.HelpUserChannel
	}

	if req.ServerID != "" {
		return tpl.HelpAdminServer
	}

	return tpl.HelpAdminChannel
}
