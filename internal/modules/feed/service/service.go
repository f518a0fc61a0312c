package service

import (
	"context"
	"log/slog"

	channelService "github.com/reshetovitsme/tgweb2rss/internal/modules/channel/service"
	"github.com/reshetovitsme/tgweb2rss/internal/modules/feed/domain"
	"github.com/samber/oops"
)

// Service handles RSS feed generation
type Service struct {
	generator domain.Generator
	logger    *slog.Logger
}

// New creates a new feed service
func New(generator domain.Generator) *Service {
	return &Service{
		generator: generator,
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// FetchFeed fetches up to pages further pages of session and renders the
// messages of this call as RSS.
func (s *Service) FetchFeed(ctx context.Context, session *channelService.Session, pages int, pretty bool) (string, error) {
	messages, err := session.FetchPage(ctx, pages)
	if err != nil {
		return "", oops.In("feed").With("channel_id", session.ChannelID(), "pages", pages).Wrap(err)
	}

	feed := NewAssembler(session.BaseURL(), s.generator).Assemble(session.ChannelID(), session.Info(), messages)

	out, err := Serialize(feed, pretty)
	if err != nil {
		return "", err
	}

	s.logger.Debug("Feed generated", "channel_id", session.ChannelID(), "pages", pages, "items", len(messages))
	return out, nil
}
