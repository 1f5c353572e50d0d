// Package telegram handles Telegram webhook updates and renders price
// replies as HTML messages.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/poporinglife/price-bot/internal/platform/observability"
	"github.com/poporinglife/price-bot/internal/price"
	"github.com/poporinglife/price-bot/internal/query"
	"github.com/poporinglife/price-bot/internal/resolve"
)

const commandPrefix = "/ppr "

// Sender is the slice of tgbotapi.BotAPI the handler needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Handler struct {
	sender   Sender
	resolver *resolve.Resolver
	log      zerolog.Logger
}

func NewHandler(sender Sender, resolver *resolve.Resolver, log zerolog.Logger) *Handler {
	return &Handler{
		sender:   sender,
		resolver: resolver,
		log:      log,
	}
}

// ServeHTTP handles one webhook update. Telegram retries on non-200, so
// every parseable update is acknowledged even when it is ignored.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.log.Warn().Err(err).Msg("telegram webhook decode failed")
		http.Error(w, "bad request", http.StatusBadRequest)

		return
	}

	defer acknowledge(w)

	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}

	h.handleMessage(r.Context(), msg)
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	norm := query.Normalize(msg.Text, commandPrefix)

	// Unlike group platforms with their own trigger rules, the Telegram
	// bot only receives messages addressed to it, so untriggered text is
	// treated as a query in groups too.
	private := msg.Chat.IsPrivate()

	req := resolve.Request{
		UserID:          fmt.Sprintf("telegram-%d", msg.From.ID),
		UserDisplayName: msg.From.UserName,
		Query:           norm.Query,
		IsDirect:        private,
		IsAdmin:         true,
		ExplicitMarket:  norm.MarketHint,
		Raw:             msg,
	}

	if private {
		req.ChannelID = fmt.Sprintf("telegram-dm-%d", msg.From.ID)
		req.Activation = "telegram_dm" + norm.Activation
	} else {
		req.ChannelID = fmt.Sprintf("telegram-group-%d", msg.Chat.ID)
		req.Activation = "telegram_group" + norm.Activation
	}

	sink := &replySink{sender: h.sender, chatID: msg.Chat.ID}
	if err := h.resolver.Handle(ctx, req, sink); err != nil {
		h.log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("telegram reply failed")
	}
}

func acknowledge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}

type replySink struct {
	sender Sender
	chatID int64
}

func (s *replySink) ReplyText(_ context.Context, text string) error {
	if _, err := s.sender.Send(tgbotapi.NewMessage(s.chatID, text)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	observability.RepliesSent.WithLabelValues("telegram", "text").Inc()

	return nil
}

func (s *replySink) ReplyPrice(_ context.Context, result *price.Result) error {
	msg := tgbotapi.NewMessage(s.chatID, formatPriceHTML(result))
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := s.sender.Send(msg); err != nil {
		return fmt.Errorf("send telegram price message: %w", err)
	}

	observability.RepliesSent.WithLabelValues("telegram", "price").Inc()

	return nil
}

func formatPriceHTML(result *price.Result) string {
	text := fmt.Sprintf(
		"<b>%s%s</b>\nPrice: <b>%s</b> z\nVolume: <b>%s</b> ea\n\nLast Update: %s",
		result.Icon, html.EscapeString(result.DisplayName), result.Price, result.Volume, result.Timestamp,
	)

	if result.Footnote != "" {
		text += "\n" + result.Footnote
	}

	return text + fmt.Sprintf("\n\n<a href=%q>%s</a>", result.URL, result.URL)
}
