package service

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/reshetovitsme/tgweb2rss/internal/modules/message/extractor"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/config"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/errors"
	"github.com/samber/oops"
)

var channelIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,64}$`)

// Service opens channel sessions that share one Getter and one configuration
type Service struct {
	cfg       *config.Config
	getter    Getter
	extractor *extractor.Extractor
	logger    *slog.Logger
}

// New creates a new channel service
func New(cfg *config.Config, getter Getter) *Service {
	return &Service{
		cfg:       cfg,
		getter:    getter,
		extractor: extractor.New(extractor.WithMapURL(cfg.MapURL, cfg.MapLayer)),
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Open creates a fresh session for channelID. A leading "@" or a full
// t.me link are accepted.
func (s *Service) Open(channelID string) (*Session, error) {
	id, err := NormalizeChannelID(channelID)
	if err != nil {
		return nil, err
	}

	return NewSession(id,
		WithGetter(s.getter),
		WithBaseURL(s.cfg.TelegramBaseURL),
		WithPaginationMode(s.cfg.PaginationMode),
		WithStrictExtraction(s.cfg.StrictExtraction),
		WithExtractor(s.extractor),
		WithLogger(s.logger.With("channel_id", id)),
	), nil
}

// ClampPages bounds a requested page count by the configured limits; zero
// selects the default.
func (s *Service) ClampPages(pages int) (int, error) {
	switch {
	case pages == 0:
		return s.cfg.DefaultPages, nil
	case pages < 0 || pages > s.cfg.MaxPages:
		return 0, oops.With("pages", pages, "max_pages", s.cfg.MaxPages).Wrap(errors.ErrInvalidPages)
	}
	return pages, nil
}

// NormalizeChannelID strips "@", "https://t.me/" and "s/" decorations from a
// channel reference.
func NormalizeChannelID(channelID string) (string, error) {
	id := strings.TrimSpace(channelID)
	for _, prefix := range []string{"https://", "http://", "t.me/", "telegram.me/", "s/", "@"} {
		id = strings.TrimPrefix(id, prefix)
	}
	id = strings.Trim(id, "/")

	if !channelIDPattern.MatchString(id) {
		return "", oops.With("channel_id", channelID).Wrap(errors.ErrInvalidChannel)
	}
	return id, nil
}
