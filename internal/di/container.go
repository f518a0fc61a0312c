package di

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	channelService "github.com/reshetovitsme/tgweb2rss/internal/modules/channel/service"
	feedDomain "github.com/reshetovitsme/tgweb2rss/internal/modules/feed/domain"
	feedService "github.com/reshetovitsme/tgweb2rss/internal/modules/feed/service"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/config"
	httpServer "github.com/reshetovitsme/tgweb2rss/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/tgweb2rss/internal/transport/telegram"
	"github.com/reshetovitsme/tgweb2rss/internal/transport/web"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container with the config
// loaded from the default files.
func Setup() (do.Injector, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, oops.With("context", "failed to load config").Wrap(err)
	}
	return SetupWithConfig(cfg), nil
}

// SetupWithConfig initializes the dependency injection container around cfg
func SetupWithConfig(cfg *config.Config) do.Injector {
	injector := do.New()

	// Register Config
	do.ProvideValue(injector, cfg)

	// Register Web Client, shared by every channel session
	do.Provide(injector, func(i do.Injector) (channelService.Getter, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return web.New(web.Config{
			Timeout:   cfg.Timeout(),
			UserAgent: cfg.UserAgent,
			Logger:    slog.Default(),
		}), nil
	})

	// Register Channel Service
	do.Provide(injector, func(i do.Injector) (*channelService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		getter := do.MustInvoke[channelService.Getter](i)
		service := channelService.New(cfg, getter)
		service.SetLogger(slog.Default())
		return service, nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		service := feedService.New(feedDomain.Generator{
			Name:    cfg.GeneratorName,
			Version: cfg.GeneratorVersion,
			URL:     cfg.GeneratorURL,
		})
		service.SetLogger(slog.Default())
		return service, nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		channelService := do.MustInvoke[*channelService.Service](i)
		feedService := do.MustInvoke[*feedService.Service](i)
		server := httpServer.New(cfg, channelService, feedService)
		server.SetLogger(slog.Default())
		return server, nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		channelService := do.MustInvoke[*channelService.Service](i)
		handler := telegramHandler.New(cfg, channelService)
		handler.SetLogger(slog.Default())
		return handler, nil
	})

	// Register Bot, only resolvable when a token is configured
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.BotEnabled() {
			return nil, oops.With("context", "telegram bot token is not configured").Errorf("bot disabled")
		}
		telegramHandler := do.MustInvoke[*telegramHandler.Handler](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(telegramHandler.HandleUpdate),
		}
		if cfg.TelegramAPIURL != "" {
			opts = append(opts, bot.WithServerURL(cfg.TelegramAPIURL))
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		// Register bot commands
		telegramHandler.RegisterCommands(b)

		return b, nil
	})

	return injector
}

// Shutdown gracefully shuts down all services
func Shutdown(ctx context.Context, injector do.Injector) error {
	// Shutdown HTTP server if it was started
	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			return oops.With("context", "failed to stop http server").Wrap(err)
		}
	}

	return nil
}
