package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/reshetovitsme/tgweb2rss/internal/di"
	"github.com/reshetovitsme/tgweb2rss/internal/modules/channel/domain"
	channelService "github.com/reshetovitsme/tgweb2rss/internal/modules/channel/service"
	feedService "github.com/reshetovitsme/tgweb2rss/internal/modules/feed/service"
	messageDomain "github.com/reshetovitsme/tgweb2rss/internal/modules/message/domain"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/config"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "tg2rss",
		Usage:     "print the RSS feed of a public Telegram channel",
		ArgsUsage: "<channel>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "pages", Aliases: []string{"p"}, Usage: "number of pages to fetch (default from config)"},
			&cli.BoolFlag{Name: "pretty", Usage: "indent the XML output"},
			&cli.BoolFlag{Name: "json", Usage: "print the scraped messages as JSON instead of RSS"},
			&cli.StringFlag{Name: "mode", Usage: "pagination mode (prev_link or load_more)"},
			&cli.BoolFlag{Name: "strict", Usage: "fail on a malformed message instead of skipping it"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log every fetched page"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "tg2rss:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowAppHelp(c)
	}

	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.IsSet("mode") {
		if cfg.PaginationMode, err = domain.ParsePaginationMode(c.String("mode")); err != nil {
			return oops.With("mode", c.String("mode")).Wrap(err)
		}
	}
	if c.IsSet("strict") {
		cfg.StrictExtraction = c.Bool("strict")
	}

	injector := di.SetupWithConfig(cfg)
	channels := do.MustInvoke[*channelService.Service](injector)

	pages, err := channels.ClampPages(c.Int("pages"))
	if err != nil {
		return err
	}
	session, err := channels.Open(c.Args().First())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if c.Bool("json") {
		return printJSON(ctx, c.App.Writer, session, pages)
	}

	out, err := do.MustInvoke[*feedService.Service](injector).FetchFeed(ctx, session, pages, c.Bool("pretty"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, out)
	return err
}

func printJSON(ctx context.Context, w io.Writer, session *channelService.Session, pages int) error {
	messages, err := session.FetchPage(ctx, pages)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Channel  domain.Info             `json:"channel"`
		Messages []messageDomain.Message `json:"messages"`
	}{Channel: session.Info(), Messages: messages})
}
