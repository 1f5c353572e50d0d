package messenger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/poporinglife/price-bot/internal/catalog"
	"github.com/poporinglife/price-bot/internal/market"
	"github.com/poporinglife/price-bot/internal/prefs"
	"github.com/poporinglife/price-bot/internal/price"
	"github.com/poporinglife/price-bot/internal/resolve"
)

type fakeSource struct{}

func (fakeSource) Fetch(context.Context) ([]catalog.RawItem, error) {
	return []catalog.RawItem{{Name: "awakening_potion", DisplayName: "Awakening Potion"}}, nil
}

type fakeFetcher struct{}

func (fakeFetcher) Latest(context.Context, string, market.Market) (price.Payload, error) {
	return price.Payload{Price: 12345, Volume: 7, Timestamp: 1700000000}, nil
}

type sentMessage struct {
	recipient string
	text      string
	token     string
}

func newTestHandler(t *testing.T) (*Handler, *[]sentMessage) {
	t.Helper()

	var sent []sentMessage

	graph := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		sent = append(sent, sentMessage{
			recipient: payload.Recipient.ID,
			text:      payload.Message.Text,
			token:     r.URL.Query().Get("access_token"),
		})
	}))
	t.Cleanup(graph.Close)

	nop := zerolog.Nop()
	cat := catalog.NewStore(fakeSource{}, &nop)
	require.NoError(t, cat.Load(context.Background()))

	resolver := resolve.New(nop, cat, prefs.NewMemory(), fakeFetcher{})

	h := NewHandler(Config{
		VerifyToken: "verify-me",
		PageToken:   "page-token",
		SendURL:     graph.URL,
	}, resolver, nop)

	return h, &sent
}

func TestVerifyHandshake(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET",
		"/messenger_webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}

	if rec.Body.String() != "12345" {
		t.Errorf("challenge echo = %q", rec.Body.String())
	}
}

func TestVerifyRejectsWrongToken(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET",
		"/messenger_webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil))

	if rec.Code != 403 {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestReceivePriceQuery(t *testing.T) {
	h, sent := newTestHandler(t)

	body := `{"object":"page","entry":[{"messaging":[{"sender":{"id":"psid-1"},"message":{"text":"awakening potion"}}]}]}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/messenger_webhook", strings.NewReader(body)))

	require.Equal(t, 200, rec.Code)
	require.Len(t, *sent, 1)

	msg := (*sent)[0]

	if msg.recipient != "psid-1" {
		t.Errorf("recipient = %q", msg.recipient)
	}

	if msg.token != "page-token" {
		t.Errorf("access token = %q", msg.token)
	}

	for _, want := range []string{"[SEA] Awakening Potion", "12,345"} {
		if !strings.Contains(msg.text, want) {
			t.Errorf("reply missing %q: %s", want, msg.text)
		}
	}
}

func TestReceiveIgnoresEchoes(t *testing.T) {
	h, sent := newTestHandler(t)

	body := `{"object":"page","entry":[{"messaging":[{"sender":{"id":"psid-1"},"message":{"text":"awakening potion","is_echo":true}}]}]}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/messenger_webhook", strings.NewReader(body)))

	require.Equal(t, 200, rec.Code)

	if len(*sent) != 0 {
		t.Errorf("echo event produced %d replies", len(*sent))
	}
}

func TestReceiveRejectsNonPageObjects(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/messenger_webhook", strings.NewReader(`{"object":"user"}`)))

	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
