package line

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/poporinglife/price-bot/internal/catalog"
	"github.com/poporinglife/price-bot/internal/market"
	"github.com/poporinglife/price-bot/internal/prefs"
	"github.com/poporinglife/price-bot/internal/price"
	"github.com/poporinglife/price-bot/internal/resolve"
)

const testSecret = "test-channel-secret"

type fakeSource struct{}

func (fakeSource) Fetch(context.Context) ([]catalog.RawItem, error) {
	return []catalog.RawItem{{Name: "awakening_potion", DisplayName: "Awakening Potion"}}, nil
}

type fakeFetcher struct{}

func (fakeFetcher) Latest(context.Context, string, market.Market) (price.Payload, error) {
	return price.Payload{Price: 12345, Volume: 7, Timestamp: 1700000000}, nil
}

type fakeReplier struct {
	tokens   []string
	messages [][]linebot.SendingMessage
}

func (f *fakeReplier) Reply(_ context.Context, replyToken string, messages ...linebot.SendingMessage) error {
	f.tokens = append(f.tokens, replyToken)
	f.messages = append(f.messages, messages)

	return nil
}

func newTestHandler(t *testing.T) (*Handler, *fakeReplier, *prefs.Memory) {
	t.Helper()

	nop := zerolog.Nop()
	cat := catalog.NewStore(fakeSource{}, &nop)
	require.NoError(t, cat.Load(context.Background()))

	store := prefs.NewMemory()
	replier := &fakeReplier{}
	resolver := resolve.New(nop, cat, store, fakeFetcher{})

	return NewHandler(testSecret, replier, resolver, nop), replier, store
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(body))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("POST", "/line_webhook", strings.NewReader(body))
	req.Header.Set("X-Line-Signature", sign(body))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func textOf(t *testing.T, messages []linebot.SendingMessage) string {
	t.Helper()

	require.Len(t, messages, 1)

	msg, ok := messages[0].(*linebot.TextMessage)
	require.True(t, ok, "expected TextMessage, got %T", messages[0])

	return msg.Text
}

func TestDirectMessagePriceReply(t *testing.T) {
	h, replier, _ := newTestHandler(t)

	body := `{"destination":"x","events":[{"type":"message","replyToken":"r1",` +
		`"source":{"type":"user","userId":"U1"},` +
		`"message":{"type":"text","id":"1","text":"awakening potion"}}]}`

	rec := postWebhook(t, h, body)
	require.Equal(t, 200, rec.Code)
	require.Len(t, replier.tokens, 1)

	text := textOf(t, replier.messages[0])
	for _, want := range []string{"[SEA] Awakening Potion", "12,345", "7 ea"} {
		if !strings.Contains(text, want) {
			t.Errorf("reply missing %q: %s", want, text)
		}
	}
}

func TestGroupRequiresTrigger(t *testing.T) {
	h, replier, _ := newTestHandler(t)

	untriggered := `{"destination":"x","events":[{"type":"message","replyToken":"r1",` +
		`"source":{"type":"group","groupId":"G1","userId":"U1"},` +
		`"message":{"type":"text","id":"1","text":"awakening potion"}}]}`
	postWebhook(t, h, untriggered)

	if len(replier.tokens) != 0 {
		t.Fatalf("untriggered group message produced %d replies", len(replier.tokens))
	}

	triggered := `{"destination":"x","events":[{"type":"message","replyToken":"r2",` +
		`"source":{"type":"group","groupId":"G1","userId":"U1"},` +
		`"message":{"type":"text","id":"2","text":"/ppr awakening potion"}}]}`
	postWebhook(t, h, triggered)

	require.Len(t, replier.tokens, 1)
}

func TestGroupChannelKey(t *testing.T) {
	h, replier, store := newTestHandler(t)

	body := `{"destination":"x","events":[{"type":"message","replyToken":"r1",` +
		`"source":{"type":"group","groupId":"G1","userId":"U1"},` +
		`"message":{"type":"text","id":"1","text":"/ppr cmd/dm=sea"}}]}`
	postWebhook(t, h, body)

	require.Len(t, replier.tokens, 1)

	value, ok, err := store.Get(context.Background(), prefs.ChannelKey("line-g-G1"))
	require.NoError(t, err)

	if !ok || value != "sea" {
		t.Errorf("stored channel preference = %q (present=%v)", value, ok)
	}
}

func TestInvalidSignatureRejected(t *testing.T) {
	h, replier, _ := newTestHandler(t)

	req := httptest.NewRequest("POST", "/line_webhook", strings.NewReader(`{"events":[]}`))
	req.Header.Set("X-Line-Signature", "bogus")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	if len(replier.tokens) != 0 {
		t.Errorf("unsigned request produced replies")
	}
}

func TestVerificationTokenSkipped(t *testing.T) {
	h, replier, _ := newTestHandler(t)

	body := `{"destination":"x","events":[{"type":"message","replyToken":"00000000000000000000000000000000",` +
		`"source":{"type":"user","userId":"U1"},` +
		`"message":{"type":"text","id":"1","text":"awakening potion"}}]}`
	rec := postWebhook(t, h, body)

	require.Equal(t, 200, rec.Code)

	if len(replier.tokens) != 0 {
		t.Errorf("verification event produced replies")
	}
}

func TestFollowGreeting(t *testing.T) {
	h, replier, _ := newTestHandler(t)

	body := `{"destination":"x","events":[{"type":"follow","replyToken":"r1",` +
		`"source":{"type":"user","userId":"U1"}}]}`
	postWebhook(t, h, body)

	require.Len(t, replier.tokens, 1)

	if text := textOf(t, replier.messages[0]); text != greeting {
		t.Errorf("greeting = %q", text)
	}
}
