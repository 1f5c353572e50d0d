// Package resolve turns a normalized platform request into a reply: it
// applies stored market preferences, resolves the item, fetches the price
// and drives the reply sink. It is the single code path shared by every
// platform adapter.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/poporinglife/price-bot/internal/catalog"
	"github.com/poporinglife/price-bot/internal/market"
	"github.com/poporinglife/price-bot/internal/platform/observability"
	"github.com/poporinglife/price-bot/internal/prefs"
	"github.com/poporinglife/price-bot/internal/price"
)

// Audit record types. Every handled request emits exactly one record with
// one of these in its "type" field; downstream log processing keys on it.
const (
	typeQueryDone = "QUERY_DONE"
	typeQueryFail = "QUERY_FAIL"
	typeCmd       = "CMD"
)

// PriceFetcher is the slice of the price client the resolver needs.
type PriceFetcher interface {
	Latest(ctx context.Context, itemName string, m market.Market) (price.Payload, error)
}

// Resolver orchestrates one request end to end.
type Resolver struct {
	log     zerolog.Logger
	catalog *catalog.Store
	prefs   prefs.Store
	prices  PriceFetcher
}

func New(log zerolog.Logger, cat *catalog.Store, store prefs.Store, fetcher PriceFetcher) *Resolver {
	return &Resolver{
		log:     log,
		catalog: cat,
		prefs:   store,
		prices:  fetcher,
	}
}

// Handle processes one request. The returned error covers reply delivery
// only; domain misses (unknown item, price API down) are reported to the
// user through the sink and logged, not returned.
func (r *Resolver) Handle(ctx context.Context, req Request, sink ReplySink) error {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil
	}

	explicit := req.ExplicitMarket

	if parts := strings.SplitN(query, "/", 2); len(parts) == 2 {
		explicit = strings.TrimSpace(parts[0])
		query = strings.TrimSpace(parts[1])
	}

	reqID := uuid.NewString()
	chain := r.loadChain(ctx, reqID, req)

	m, ok := market.Resolve(explicit, query, chain)
	if !ok {
		observability.QueriesTotal.WithLabelValues("invalid_server").Inc()
		r.audit(typeQueryFail, reqID, req, string(m), query).
			Str("error_class", "INVALID_SERVER").
			Msg("invalid server token")

		return nil
	}

	if m == market.Cmd {
		return r.runCommand(ctx, reqID, req, query, sink)
	}

	return r.lookupPrice(ctx, reqID, req, m, query, sink)
}

// loadChain fetches the three preference levels concurrently. A store
// failure downgrades that level to unset so a Redis hiccup costs accuracy,
// not availability.
func (r *Resolver) loadChain(ctx context.Context, reqID string, req Request) market.Chain {
	var chain market.Chain

	g, ctx := errgroup.WithContext(ctx)

	load := func(key string, dst *market.Preference) func() error {
		return func() error {
			value, ok, err := r.prefs.Get(ctx, key)
			if err != nil {
				r.log.Warn().Err(err).Str("request_id", reqID).Str("key", key).
					Msg("preference lookup failed, treating as unset")

				return nil
			}

			*dst = market.ParsePreference(value, ok)

			return nil
		}
	}

	g.Go(load(prefs.UserKey(req.UserID), &chain.User))

	if req.ChannelID != "" {
		g.Go(load(prefs.ChannelKey(req.ChannelID), &chain.Channel))
	}

	if req.ServerID != "" {
		g.Go(load(prefs.ServerKey(req.ServerID), &chain.Server))
	}

	_ = g.Wait()

	return chain
}

func (r *Resolver) lookupPrice(ctx context.Context, reqID string, req Request, m market.Market, query string, sink ReplySink) error {
	tpl := req.templates()

	info, _ := market.Lookup(m)

	item, found := r.catalog.Resolve(query)
	if !found {
		observability.QueriesTotal.WithLabelValues("not_found").Inc()
		r.audit(typeQueryFail, reqID, req, string(m), query).
			Str("error_class", "Not Found").
			Msg("item not found")

		return sink.ReplyText(ctx, fmt.Sprintf(tpl.NotFound, query))
	}

	payload, err := r.prices.Latest(ctx, item.Name, m)
	if err != nil {
		class, outcome := fetchErrorClass(err)
		observability.QueriesTotal.WithLabelValues(outcome).Inc()
		observability.PriceAPIErrors.WithLabelValues(string(m), errorKind(err)).Inc()
		r.audit(typeQueryFail, reqID, req, string(m), query).
			Str("error_class", class).
			Err(err).
			Str("item_name", item.Name).
			Msg("price API call failed")

		return sink.ReplyText(ctx, fmt.Sprintf(tpl.ServerError, info.Icon, item.DisplayName))
	}

	result, err := buildResult(item, m, payload, tpl.Footnote)
	if err != nil {
		observability.QueriesTotal.WithLabelValues("code_error").Inc()
		r.audit(typeQueryFail, reqID, req, string(m), query).
			Str("error_class", "Code Error").
			Err(err).
			Str("item_name", item.Name).
			Msg("price normalization failed")

		return sink.ReplyText(ctx, fmt.Sprintf(tpl.ServerError, info.Icon, item.DisplayName))
	}

	observability.QueriesTotal.WithLabelValues("done").Inc()
	r.audit(typeQueryDone, reqID, req, string(m), query).
		Str("item_name", item.Name).
		Str("display_name", item.DisplayName).
		Msg("query resolved")

	return sink.ReplyPrice(ctx, result)
}

// buildResult guards normalization with a recover so a malformed payload
// degrades into a server-error reply instead of killing the adapter
// goroutine.
func buildResult(item catalog.Item, m market.Market, payload price.Payload, footnoteFormat string) (result *price.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("build price result: %v", p)
		}
	}()

	built := price.BuildResult(item, m, payload, time.Now(), footnoteFormat)

	return &built, nil
}

// fetchErrorClass separates payload-shape failures (our bug, or an API
// contract change) from transport and status failures when a fetch errors.
func fetchErrorClass(err error) (class, outcome string) {
	if errors.Is(err, price.ErrBadPayload) {
		return "Code Error", "code_error"
	}

	return "API Error", "api_error"
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, price.ErrAPIUnavailable):
		return "api_unavailable"
	case errors.Is(err, price.ErrBadPayload):
		return "bad_payload"
	default:
		return "other"
	}
}

// audit builds the per-request structured record. Exactly one of these is
// emitted per handled request; it is the audit trail for bot usage.
func (r *Resolver) audit(typ, reqID string, req Request, m, query string) *zerolog.Event {
	evt := r.log.Info()
	if req.Raw != nil && r.log.GetLevel() <= zerolog.DebugLevel {
		evt = evt.Interface("raw", req.Raw)
	}

	return evt.
		Str("type", typ).
		Str("request_id", reqID).
		Str("query", query).
		Str("server", m).
		Str("user_id", req.UserID).
		Str("channel_id", req.ChannelID).
		Str("server_id", req.ServerID).
		Str("activation", req.Activation).
		Bool("is_direct", req.IsDirect).
		Bool("is_admin", req.IsAdmin)
}
