// Package discord runs the Discord gateway adapter: mention, bot-name and
// site-URL triggers in guilds, everything in DMs, embed price replies.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/poporinglife/price-bot/internal/platform/observability"
	"github.com/poporinglife/price-bot/internal/platform/worker"
	"github.com/poporinglife/price-bot/internal/price"
	"github.com/poporinglife/price-bot/internal/query"
	"github.com/poporinglife/price-bot/internal/resolve"
)

const namePrefix = "@PoporingBot "

// adminPermissions marks a member as allowed to change channel and guild
// defaults.
const adminPermissions = discordgo.PermissionAdministrator | discordgo.PermissionManageChannels

// Sender is the slice of discordgo.Session the reply path needs.
type Sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Bot struct {
	session  *discordgo.Session
	resolver *resolve.Resolver
	log      zerolog.Logger

	sender      Sender
	permissions func(userID, channelID string) (int64, error)
}

func New(token string, resolver *resolve.Resolver, log zerolog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	b := &Bot{
		session:  session,
		resolver: resolver,
		log:      log,
		sender:   session,
		permissions: func(userID, channelID string) (int64, error) {
			return session.UserChannelPermissions(userID, channelID)
		},
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessage)

	return b, nil
}

// Run opens the gateway connection and blocks until the context is
// canceled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}

	<-ctx.Done()

	if err := b.session.Close(); err != nil {
		return fmt.Errorf("close discord gateway: %w", err)
	}

	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().
		Str("username", r.User.Username).
		Str("user_id", r.User.ID).
		Msg("discord gateway connected")
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Gateway handlers run on discordgo's dispatch goroutines; a panic
	// here would take the whole process down.
	defer worker.RecoverPanic(&b.log, "discord message handler")

	if m.Author == nil || m.Author.Bot {
		return
	}

	if s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	botID := ""
	if s.State.User != nil {
		botID = s.State.User.ID
	}

	b.handleMessage(context.Background(), botID, m)
}

func (b *Bot) handleMessage(ctx context.Context, botID string, m *discordgo.MessageCreate) {
	direct := m.GuildID == ""

	norm := query.Normalize(m.Content,
		"<@"+botID+"> ",
		"<@!"+botID+"> ",
		namePrefix,
	)

	// Guild messages need an explicit trigger; DMs activate on anything.
	if !norm.Triggered && !direct {
		return
	}

	req := resolve.Request{
		UserID: "discord-" + m.Author.ID,
		// Confirmation templates interpolate the display name; a mention
		// renders as a proper ping on Discord.
		UserDisplayName: "<@" + m.Author.ID + ">",
		Query:           norm.Query,
		IsDirect:        direct,
		IsAdmin:         direct || b.isAdmin(m),
		ExplicitMarket:  norm.MarketHint,
		Templates:       &discordTemplates,
		Raw:             m.Message,
	}

	if direct {
		req.ChannelID = "discord-dm-" + m.ChannelID
		req.Activation = "discord_dm" + norm.Activation
	} else {
		req.ChannelID = "discord-" + m.ChannelID
		req.ServerID = "discord-" + m.GuildID
		req.Activation = "discord" + norm.Activation
	}

	sink := &replySink{sender: b.sender, channelID: m.ChannelID}
	if err := b.resolver.Handle(ctx, req, sink); err != nil {
		b.log.Error().Err(err).Str("channel_id", m.ChannelID).Msg("discord reply failed")
	}
}

func (b *Bot) isAdmin(m *discordgo.MessageCreate) bool {
	perms, err := b.permissions(m.Author.ID, m.ChannelID)
	if err != nil {
		b.log.Warn().Err(err).Str("user_id", m.Author.ID).Msg("permission lookup failed")

		return false
	}

	return perms&adminPermissions != 0
}

type replySink struct {
	sender    Sender
	channelID string
}

func (s *replySink) ReplyText(_ context.Context, text string) error {
	if _, err := s.sender.ChannelMessageSend(s.channelID, text); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}

	observability.RepliesSent.WithLabelValues("discord", "text").Inc()

	return nil
}

func (s *replySink) ReplyPrice(_ context.Context, result *price.Result) error {
	description := fmt.Sprintf("Price: **%s** z\nVolume: **%s** ea\n\nLast Update: %s",
		result.Price, result.Volume, result.Timestamp)
	if result.Footnote != "" {
		description += "\n" + result.Footnote
	}

	embed := &discordgo.MessageEmbed{
		Description: description,
		Color:       result.ColorInt,
		Author: &discordgo.MessageEmbedAuthor{
			Name: result.Icon + result.DisplayName,
			URL:  result.URL,
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: result.ImageURL,
		},
	}

	if _, err := s.sender.ChannelMessageSendEmbed(s.channelID, embed); err != nil {
		return fmt.Errorf("send discord embed: %w", err)
	}

	observability.RepliesSent.WithLabelValues("discord", "price").Inc()

	return nil
}
