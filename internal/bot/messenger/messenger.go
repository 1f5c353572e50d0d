// Package messenger handles the Facebook Messenger webhook: the GET
// verification handshake and POST message events, replying through the
// Graph API send endpoint.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/poporinglife/price-bot/internal/platform/observability"
	"github.com/poporinglife/price-bot/internal/price"
	"github.com/poporinglife/price-bot/internal/query"
	"github.com/poporinglife/price-bot/internal/resolve"
)

const (
	commandPrefix = "/ppr "

	defaultSendURL = "https://graph.facebook.com/v12.0/me/messages"
)

type Config struct {
	VerifyToken string
	PageToken   string
	// SendURL overrides the Graph API endpoint, for tests.
	SendURL string
	Client  *http.Client
}

type Handler struct {
	cfg      Config
	client   *http.Client
	sendURL  string
	resolver *resolve.Resolver
	log      zerolog.Logger
}

func NewHandler(cfg Config, resolver *resolve.Resolver, log zerolog.Logger) *Handler {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}

	sendURL := cfg.SendURL
	if sendURL == "" {
		sendURL = defaultSendURL
	}

	return &Handler{
		cfg:      cfg,
		client:   client,
		sendURL:  sendURL,
		resolver: resolver,
		log:      log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.verify(w, r)
	case http.MethodPost:
		h.receive(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// verify answers the subscription handshake: echo hub.challenge when the
// verify token matches.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("hub.mode") != "subscribe" || q.Get("hub.verify_token") != h.cfg.VerifyToken {
		http.Error(w, "verification failed", http.StatusForbidden)

		return
	}

	_, _ = w.Write([]byte(q.Get("hub.challenge")))
}

type webhookEvent struct {
	Object string `json:"object"`
	Entry  []struct {
		Messaging []messagingEvent `json:"messaging"`
	} `json:"entry"`
}

type messagingEvent struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Message struct {
		Text   string `json:"text"`
		IsEcho bool   `json:"is_echo"`
	} `json:"message"`
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	var event webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.log.Warn().Err(err).Msg("messenger webhook decode failed")
		http.Error(w, "bad request", http.StatusBadRequest)

		return
	}

	if event.Object != "page" {
		http.Error(w, "not a page event", http.StatusNotFound)

		return
	}

	for _, entry := range event.Entry {
		for _, msg := range entry.Messaging {
			if msg.Message.IsEcho || msg.Message.Text == "" {
				continue
			}

			h.handleText(r.Context(), msg)
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleText(ctx context.Context, msg messagingEvent) {
	norm := query.Normalize(msg.Message.Text, commandPrefix)

	// Messenger conversations are always one-on-one with the page.
	req := resolve.Request{
		UserID:         "fb-" + msg.Sender.ID,
		ChannelID:      "fb-dm-" + msg.Sender.ID,
		Activation:     "messenger_dm" + norm.Activation,
		Query:          norm.Query,
		IsDirect:       true,
		IsAdmin:        true,
		ExplicitMarket: norm.MarketHint,
		Raw:            msg,
	}

	sink := &replySink{handler: h, recipientID: msg.Sender.ID}
	if err := h.resolver.Handle(ctx, req, sink); err != nil {
		h.log.Error().Err(err).Str("recipient", msg.Sender.ID).Msg("messenger reply failed")
	}
}

type sendRequest struct {
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
}

func (h *Handler) send(ctx context.Context, recipientID, text string) error {
	var payload sendRequest
	payload.Recipient.ID = recipientID
	payload.Message.Text = text

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode messenger send request: %w", err)
	}

	url := h.sendURL + "?access_token=" + h.cfg.PageToken

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build messenger send request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("messenger send: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("messenger send: unexpected status %d", resp.StatusCode)
	}

	return nil
}

type replySink struct {
	handler     *Handler
	recipientID string
}

func (s *replySink) ReplyText(ctx context.Context, text string) error {
	if err := s.handler.send(ctx, s.recipientID, text); err != nil {
		return err
	}

	observability.RepliesSent.WithLabelValues("messenger", "text").Inc()

	return nil
}

func (s *replySink) ReplyPrice(ctx context.Context, result *price.Result) error {
	if err := s.handler.send(ctx, s.recipientID, formatPrice(result)); err != nil {
		return err
	}

	observability.RepliesSent.WithLabelValues("messenger", "price").Inc()

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
