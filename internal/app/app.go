// Package app provides the application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - Web mode: webhook server for the Telegram, LINE and Messenger
//     adapters
//   - Discord mode: Discord gateway client
//   - All mode: both of the above in one process
//
// Every mode runs the health server in the background and, when
// configured, a periodic catalog refresh worker.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/poporinglife/price-bot/internal/bot/discord"
	"github.com/poporinglife/price-bot/internal/bot/line"
	"github.com/poporinglife/price-bot/internal/bot/messenger"
	"github.com/poporinglife/price-bot/internal/bot/telegram"
	"github.com/poporinglife/price-bot/internal/catalog"
	"github.com/poporinglife/price-bot/internal/platform/config"
	"github.com/poporinglife/price-bot/internal/platform/observability"
	"github.com/poporinglife/price-bot/internal/platform/worker"
	"github.com/poporinglife/price-bot/internal/prefs"
	"github.com/poporinglife/price-bot/internal/price"
	"github.com/poporinglife/price-bot/internal/resolve"
	"github.com/poporinglife/price-bot/internal/webhook"
)

// App holds the application dependencies and provides methods to run
// different modes.
type App struct {
	cfg    *config.Config
	store  *prefs.Redis
	logger *zerolog.Logger

	catalog  *catalog.Store
	resolver *resolve.Resolver
}

func New(cfg *config.Config, store *prefs.Redis, logger *zerolog.Logger) *App {
	source := catalog.NewHTTPSource(catalog.HTTPSourceConfig{
		BaseURL:   cfg.ItemAPIBaseURL,
		Origin:    cfg.ItemAPIOrigin,
		UserAgent: cfg.BotUserAgent,
		Timeout:   cfg.HTTPTimeout,
	})

	cat := catalog.NewStore(source, logger)

	prices := price.NewClient(price.ClientConfig{
		UserAgent: cfg.BotUserAgent,
		Timeout:   cfg.HTTPTimeout,
		RPS:       cfg.PriceAPIRPS,
	})

	return &App{
		cfg:      cfg,
		store:    store,
		logger:   logger,
		catalog:  cat,
		resolver: resolve.New(*logger, cat, store, prices),
	}
}

// LoadCatalog performs the initial catalog fetch. A failure here is fatal:
// the bot cannot resolve anything without an item list.
func (a *App) LoadCatalog(ctx context.Context) error {
	if err := a.refreshCatalog(ctx); err != nil {
		return fmt.Errorf("initial catalog load: %w", err)
	}

	return nil
}

func (a *App) refreshCatalog(ctx context.Context) error {
	if err := a.catalog.Load(ctx); err != nil {
		observability.CatalogRefresh.WithLabelValues("error").Inc()

		return err
	}

	observability.CatalogRefresh.WithLabelValues("ok").Inc()

	if snap, ok := a.catalog.Snapshot(); ok {
		observability.CatalogItems.Set(float64(snap.Len()))
	}

	return nil
}

// StartHealthServer runs the health/metrics endpoint until ctx is
// canceled.
func (a *App) StartHealthServer(ctx context.Context) error {
	return observability.NewServer(a.store, a.cfg.HealthPort, a.logger).Start(ctx)
}

// RunWeb serves the webhook platform adapters.
func (a *App) RunWeb(ctx context.Context) error {
	if err := a.cfg.ValidateWeb(); err != nil {
		return err
	}

	handlers, err := a.webhookHandlers()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return webhook.NewServer(a.cfg.Port, handlers, a.logger).Start(ctx)
	})

	g.Go(func() error {
		return a.runCatalogRefresh(ctx)
	})

	return g.Wait()
}

func (a *App) webhookHandlers() (webhook.Handlers, error) {
	var handlers webhook.Handlers

	if a.cfg.HasTelegram() {
		api, err := tgbotapi.NewBotAPI(a.cfg.TelegramAPIToken)
		if err != nil {
			return handlers, fmt.Errorf("telegram bot init: %w", err)
		}

		handlers.Telegram = telegram.NewHandler(api, a.resolver, *a.logger)
	}

	if a.cfg.HasLine() {
		client, err := linebot.New(a.cfg.LineChannelSecret, a.cfg.LineChannelAccessToken)
		if err != nil {
			return handlers, fmt.Errorf("line bot init: %w", err)
		}

		handlers.Line = line.NewHandler(
			a.cfg.LineChannelSecret,
			line.ClientReplier{Client: client},
			a.resolver,
			*a.logger,
		)
	}

	if a.cfg.HasMessenger() {
		handlers.Messenger = messenger.NewHandler(messenger.Config{
			VerifyToken: a.cfg.MessengerVerifyToken,
			PageToken:   a.cfg.MessengerPageToken,
		}, a.resolver, *a.logger)
	}

	return handlers, nil
}

// RunDiscord runs the Discord gateway client.
func (a *App) RunDiscord(ctx context.Context) error {
	if err := a.cfg.ValidateDiscord(); err != nil {
		return err
	}

	bot, err := discord.New(a.cfg.DiscordToken, a.resolver, *a.logger)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Run(ctx)
	})

	g.Go(func() error {
		return a.runCatalogRefresh(ctx)
	})

	return g.Wait()
}

// RunAll runs the webhook server and the Discord gateway in one process.
func (a *App) RunAll(ctx context.Context) error {
	if err := a.cfg.ValidateWeb(); err != nil {
		return err
	}

	if err := a.cfg.ValidateDiscord(); err != nil {
		return err
	}

	handlers, err := a.webhookHandlers()
	if err != nil {
		return err
	}

	bot, err := discord.New(a.cfg.DiscordToken, a.resolver, *a.logger)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return webhook.NewServer(a.cfg.Port, handlers, a.logger).Start(ctx)
	})

	g.Go(func() error {
		return bot.Run(ctx)
	})

	g.Go(func() error {
		return a.runCatalogRefresh(ctx)
	})

	return g.Wait()
}

// runCatalogRefresh keeps the catalog fresh in the background. With a
// non-positive interval the initial load is the only one.
func (a *App) runCatalogRefresh(ctx context.Context) error {
	if a.cfg.CatalogRefreshInterval <= 0 {
		return nil
	}

	return worker.Loop(ctx, worker.Config{
		Name:         "catalog-refresh",
		PollInterval: a.cfg.CatalogRefreshInterval,
		Process:      a.refreshCatalog,
		OnError: func(err error) bool {
			// A failed refresh keeps the previous snapshot; retry on the
			// next tick.
			a.logger.Warn().Err(err).Msg("catalog refresh failed")

			return true
		},
		Logger: a.logger,
	})
}
