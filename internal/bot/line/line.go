// Package line handles LINE webhook events and replies through the
// reply-token API.
package line

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/rs/zerolog"

	"github.com/poporinglife/price-bot/internal/platform/observability"
	"github.com/poporinglife/price-bot/internal/price"
	"github.com/poporinglife/price-bot/internal/query"
	"github.com/poporinglife/price-bot/internal/resolve"
)

const (
	commandPrefix = "/ppr "

	greeting = "Hey! Thanks for using PoporingBot. Type in any item name and I will tell you its current price!"
)

// webhook verification events carry one of these placeholder tokens and
// must not be replied to.
var verificationTokens = map[string]struct{}{
	"00000000000000000000000000000000": {},
	"ffffffffffffffffffffffffffffffff": {},
}

// Replier is the slice of linebot.Client the handler needs.
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages ...linebot.SendingMessage) error
}

// ClientReplier adapts *linebot.Client to Replier.
type ClientReplier struct {
	Client *linebot.Client
}

func (c ClientReplier) Reply(ctx context.Context, replyToken string, messages ...linebot.SendingMessage) error {
	if _, err := c.Client.ReplyMessage(replyToken, messages...).WithContext(ctx).Do(); err != nil {
		return fmt.Errorf("line reply: %w", err)
	}

	return nil
}

type Handler struct {
	channelSecret string
	replier       Replier
	resolver      *resolve.Resolver
	log           zerolog.Logger
}

func NewHandler(channelSecret string, replier Replier, resolver *resolve.Resolver, log zerolog.Logger) *Handler {
	return &Handler{
		channelSecret: channelSecret,
		replier:       replier,
		resolver:      resolver,
		log:           log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	events, err := linebot.ParseRequest(h.channelSecret, r)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			http.Error(w, "invalid signature", http.StatusBadRequest)

			return
		}

		h.log.Warn().Err(err).Msg("line webhook parse failed")
		http.Error(w, "parse error", http.StatusInternalServerError)

		return
	}

	for _, event := range events {
		if _, skip := verificationTokens[event.ReplyToken]; skip {
			continue
		}

		h.handleEvent(r.Context(), event)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleEvent(ctx context.Context, event *linebot.Event) {
	switch event.Type {
	case linebot.EventTypeMessage:
		msg, ok := event.Message.(*linebot.TextMessage)
		if !ok {
			return
		}

		h.handleText(ctx, event, msg.Text)
	case linebot.EventTypeFollow:
		h.replyText(ctx, event.ReplyToken, greeting)
	case linebot.EventTypeJoin:
		h.replyText(ctx, event.ReplyToken, fmt.Sprintf("Joined %s", event.Source.Type))
	default:
	}
}

func (h *Handler) handleText(ctx context.Context, event *linebot.Event, text string) {
	norm := query.Normalize(text, commandPrefix)

	req := resolve.Request{
		Query:          norm.Query,
		ExplicitMarket: norm.MarketHint,
		// LINE replies are reply-token scoped and carry no notion of a
		// privileged member, so every source is treated as a direct
		// admin for command gating.
		IsDirect: true,
		IsAdmin:  true,
		Raw:      event,
	}

	source := event.Source

	switch source.Type {
	case linebot.EventSourceTypeUser:
		req.UserID = "line-" + source.UserID
		req.ChannelID = "line-dm-" + source.UserID
		req.Activation = "line_dm" + norm.Activation
	default:
		if source.Type == linebot.EventSourceTypeGroup {
			req.ChannelID = "line-g-" + source.GroupID
		} else {
			req.ChannelID = "line-r-" + source.RoomID
		}

		if source.UserID != "" {
			req.UserID = "line-" + source.UserID
			req.UserDisplayName = "you"
		} else {
			req.UserID = "line-anonymous-" + req.ChannelID
			req.UserDisplayName = "Anonymous"
		}

		req.Activation = "line_" + string(source.Type) + norm.Activation

		// Outside DMs the bot only reacts to explicit triggers.
		if !norm.Triggered {
			return
		}
	}

	sink := &replySink{replier: h.replier, replyToken: event.ReplyToken}
	if err := h.resolver.Handle(ctx, req, sink); err != nil {
		h.log.Error().Err(err).Str("channel_id", req.ChannelID).Msg("line reply failed")
	}
}

func (h *Handler) replyText(ctx context.Context, replyToken, text string) {
	if err := h.replier.Reply(ctx, replyToken, linebot.NewTextMessage(text)); err != nil {
		h.log.Error().Err(err).Msg("line reply failed")
	}
}

type replySink struct {
	replier    Replier
	replyToken string
}

func (s *replySink) ReplyText(ctx context.Context, text string) error {
	if err := s.replier.Reply(ctx, s.replyToken, linebot.NewTextMessage(text)); err != nil {
		return err
	}

	observability.RepliesSent.WithLabelValues("line", "text").Inc()

	return nil
}

func (s *replySink) ReplyPrice(ctx context.Context, result *price.Result) error {
	if err := s.replier.Reply(ctx, s.replyToken, linebot.NewTextMessage(formatPrice(result))); err != nil {
		return err
	}

	observability.RepliesSent.WithLabelValues("line", "price").Inc()

	return nil
}

func formatPrice(result *price.Result) string {
	text := fmt.Sprintf(
		"%s%s\nPrice: %s z\nVolume: %s ea\n\nLast Update: %s",
		result.Icon, result.DisplayName, result.Price, result.Volume, result.Timestamp,
	)

	if result.Footnote != "" {
		text += "\n" + result.Footnote
	}

	return text + "\n" + result.URL
}
