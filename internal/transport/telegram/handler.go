package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	channelDomain "github.com/reshetovitsme/tgweb2rss/internal/modules/channel/domain"
	channelService "github.com/reshetovitsme/tgweb2rss/internal/modules/channel/service"
	messageDomain "github.com/reshetovitsme/tgweb2rss/internal/modules/message/domain"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/config"
	httpServer "github.com/reshetovitsme/tgweb2rss/internal/transport/http"
	"github.com/samber/lo"
)

// PreviewSize is the number of latest posts shown by /feed
const PreviewSize = 5

const previewTextLength = 80

const helpText = `👋 Welcome to Telegram to RSS Bot!

I turn public Telegram channels into RSS feeds.

Available commands:
/help - Show this help message
/feed <channel> - Get the RSS link and the latest posts of a channel
/info <channel> - Show channel details

Example:
/feed @telegram`

// Handler handles Telegram bot interactions
type Handler struct {
	cfg            *config.Config
	channelService *channelService.Service
	logger         *slog.Logger
}

// New creates a new Telegram handler
func New(cfg *config.Config, channelService *channelService.Service) *Handler {
	return &Handler{
		cfg:            cfg,
		channelService: channelService,
		logger:         slog.Default(),
	}
}

// SetLogger sets the logger
func (h *Handler) SetLogger(logger *slog.Logger) {
	h.logger = logger
}

// RegisterCommands registers bot commands
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandlerMatchFunc(MatchCommand("/feed"), h.handleFeed)
	b.RegisterHandlerMatchFunc(MatchCommand("/info"), h.handleInfo)
}

// MatchCommand matches messages that invoke the bot command name.
func MatchCommand(name string) bot.MatchFunc {
	return func(update *models.Update) bool {
		return update.Message != nil && IsCommand(update.Message.Text, name)
	}
}

// HandleUpdate processes updates no command matched. A bare channel link or
// @name is answered like /feed.
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || !IsChannelReference(update.Message.Text) {
		return
	}
	if !h.checkAuthorization(ctx, b, update) {
		return
	}
	h.sendFeed(ctx, b, update, strings.TrimSpace(update.Message.Text))
}

func (h *Handler) checkAuthorization(ctx context.Context, b *bot.Bot, update *models.Update) bool {
	var userID int64
	if update.Message.From != nil {
		userID = update.Message.From.ID
	}
	if err := h.cfg.Authorize(userID); err != nil {
		h.logger.Warn("Rejected bot user", "user_id", userID, "error", err)
		h.reply(ctx, b, update, "❌ You are not authorized to use this bot.")
		return false
	}
	return true
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.checkAuthorization(ctx, b, update) {
		return
	}
	h.reply(ctx, b, update, helpText)
}

func (h *Handler) handleFeed(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.checkAuthorization(ctx, b, update) {
		return
	}

	channel := CommandArgument(update.Message.Text)
	if channel == "" {
		h.reply(ctx, b, update, "Usage: /feed <channel>\nExample: /feed @telegram")
		return
	}
	h.sendFeed(ctx, b, update, channel)
}

func (h *Handler) sendFeed(ctx context.Context, b *bot.Bot, update *models.Update, channel string) {
	session, messages, ok := h.fetch(ctx, b, update, channel)
	if !ok {
		return
	}

	var text strings.Builder
	fmt.Fprintf(&text, "🔗 RSS Feed for %s:\n%s\n", channelTitle(session.Info()), httpServer.FeedURL(h.cfg.PublicURL, session.ChannelID()))
	if preview := FormatPreview(messages, PreviewSize); preview != "" {
		text.WriteString("\n📰 Latest posts:\n")
		text.WriteString(preview)
	}
	h.reply(ctx, b, update, text.String())
}

func (h *Handler) handleInfo(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.checkAuthorization(ctx, b, update) {
		return
	}

	channel := CommandArgument(update.Message.Text)
	if channel == "" {
		h.reply(ctx, b, update, "Usage: /info <channel>")
		return
	}

	session, _, ok := h.fetch(ctx, b, update, channel)
	if !ok {
		return
	}
	h.reply(ctx, b, update, FormatInfo(session.Info(), session.URL()))
}

// fetch reads the newest page of channel, replying with the failure when it
// cannot.
func (h *Handler) fetch(ctx context.Context, b *bot.Bot, update *models.Update, channel string) (*channelService.Session, []messageDomain.Message, bool) {
	session, err := h.channelService.Open(channel)
	if err != nil {
		h.reply(ctx, b, update, fmt.Sprintf("❌ %q is not a channel name", channel))
		return nil, nil, false
	}

	messages, err := session.FetchPage(ctx, 1)
	if err != nil {
		h.logger.Error("Error fetching channel", "channel_id", session.ChannelID(), "error", err)
		h.reply(ctx, b, update, fmt.Sprintf("❌ Failed to read channel @%s. Make sure it is public.", session.ChannelID()))
		return nil, nil, false
	}
	return session, messages, true
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	}); err != nil {
		h.logger.Error("Error sending message", "chat_id", update.Message.Chat.ID, "error", err)
	}
}

// IsChannelReference reports whether text is a lone "@name" or t.me link.
func IsChannelReference(text string) bool {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "@") && !strings.Contains(text, "t.me/") {
		return false
	}
	_, err := channelService.NormalizeChannelID(text)
	return err == nil
}

// IsCommand reports whether text starts with the command name, alone or
// addressed to a bot as name@bot.
func IsCommand(text, name string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	command, _, _ := strings.Cut(fields[0], "@")
	return command == name
}

// CommandArgument returns the first argument of a bot command
func CommandArgument(text string) string {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// FormatPreview lists the newest limit messages, newest first, one line
// each.
func FormatPreview(messages []messageDomain.Message, limit int) string {
	latest := lo.Reverse(append([]messageDomain.Message(nil), messages...))
	if len(latest) > limit {
		latest = latest[:limit]
	}

	var text strings.Builder
	for _, msg := range latest {
		fmt.Fprintf(&text, "%s #%s %s\n", Emoji(msg), msg.Number, Summary(msg))
	}
	return text.String()
}

// Emoji returns the registry emoji of every content kind of msg.
func Emoji(msg messageDomain.Message) string {
	kinds := msg.Kinds()
	if len(kinds) == 0 {
		return "∅"
	}
	return strings.Join(lo.FilterMap(kinds, func(kind messageDomain.Kind, _ int) (string, bool) {
		locator, ok := messageDomain.LocatorFor(kind)
		return locator.Emoji, ok
	}), "")
}

// Summary is a short single line description of msg.
func Summary(msg messageDomain.Message) string {
	summary := ""
	for _, content := range msg.Contents {
		switch c := content.(type) {
		case messageDomain.Text:
			summary = c.Value
		case messageDomain.Poll:
			summary = c.Question
		case messageDomain.Document:
			summary = c.Title
		}
		if summary != "" {
			break
		}
	}
	if summary == "" && len(msg.Contents) > 0 {
		if locator, ok := messageDomain.LocatorFor(msg.Contents[0].Kind()); ok {
			summary = locator.Display
		}
	}

	summary = strings.Join(strings.Fields(summary), " ")
	if runes := []rune(summary); len(runes) > previewTextLength {
		summary = string(runes[:previewTextLength]) + "…"
	}
	if msg.ForwardedFrom != "" {
		summary = "↪ " + msg.ForwardedFrom + ": " + summary
	}
	return summary
}

// FormatInfo renders the channel details known after one page.
func FormatInfo(info channelDomain.Info, url string) string {
	var text strings.Builder
	fmt.Fprintf(&text, "📊 %s\n%s\n", channelTitle(info), url)
	if description, ok := info.Description.Get(); ok {
		fmt.Fprintf(&text, "\n%s\n", description)
	}

	counters := []struct {
		label string
		value channelDomain.SetOnce[int64]
	}{
		{"Subscribers", info.Subscribers},
		{"Photos", info.Photos},
		{"Videos", info.Videos},
		{"Files", info.Files},
		{"Links", info.Links},
	}
	first := true
	for _, counter := range counters {
		value, ok := counter.value.Get()
		if !ok {
			continue
		}
		if first {
			text.WriteString("\n")
			first = false
		}
		fmt.Fprintf(&text, "%s: %d\n", counter.label, value)
	}
	return text.String()
}

func channelTitle(info channelDomain.Info) string {
	if title, ok := info.Title.Get(); ok {
		return fmt.Sprintf("%s (@%s)", title, info.ID)
	}
	return "@" + info.ID
}
