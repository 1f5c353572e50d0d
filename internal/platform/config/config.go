package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"local"`
	Port       int    `env:"PORT" envDefault:"3000"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"8080"`

	RedisURL string `env:"REDIS_URL,required"`

	// Platform credentials are optional here and validated per mode:
	// the web mode needs at least one webhook platform, the discord mode
	// needs the gateway token.
	DiscordToken     string `env:"DISCORD_TOKEN"`
	TelegramAPIToken string `env:"TELEGRAM_API_TOKEN"`

	LineChannelAccessToken string `env:"LINE_CHANNEL_ACCESS_TOKEN"`
	LineChannelSecret      string `env:"LINE_CHANNEL_SECRET"`

	MessengerVerifyToken string `env:"MESSENGER_VERIFY_TOKEN"`
	MessengerPageToken   string `env:"MESSENGER_PAGE_TOKEN"`

	ItemAPIBaseURL string        `env:"ITEM_API_BASE_URL" envDefault:"https://api.poporing.life"`
	ItemAPIOrigin  string        `env:"ITEM_API_ORIGIN" envDefault:"https://poporing.life"`
	BotUserAgent   string        `env:"BOT_USER_AGENT" envDefault:"PoporingBot-01282019"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	PriceAPIRPS    float64       `env:"PRICE_API_RPS" envDefault:"5"`
	// CatalogRefreshInterval of 0 disables background catalog refresh;
	// the catalog is then loaded once at startup.
	CatalogRefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" envDefault:"0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}

var (
	ErrNoWebhookPlatform = errors.New("web mode requires at least one webhook platform credential")
	ErrNoDiscordToken    = errors.New("discord mode requires DISCORD_TOKEN")
)

// HasTelegram reports whether the Telegram webhook adapter can start.
func (c *Config) HasTelegram() bool {
	return c.TelegramAPIToken != ""
}

// HasLine reports whether the LINE webhook adapter can start.
func (c *Config) HasLine() bool {
	return c.LineChannelAccessToken != "" && c.LineChannelSecret != ""
}

// HasMessenger reports whether the Messenger webhook adapter can start.
func (c *Config) HasMessenger() bool {
	return c.MessengerVerifyToken != "" && c.MessengerPageToken != ""
}

// ValidateWeb checks the credentials needed by the webhook server mode.
func (c *Config) ValidateWeb() error {
	if !c.HasTelegram() && !c.HasLine() && !c.HasMessenger() {
		return ErrNoWebhookPlatform
	}

	return nil
}

// ValidateDiscord checks the credentials needed by the Discord gateway mode.
func (c *Config) ValidateDiscord() error {
	if c.DiscordToken == "" {
		return ErrNoDiscordToken
	}

	return nil
}
