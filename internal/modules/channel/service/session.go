package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/reshetovitsme/tgweb2rss/internal/modules/channel/domain"
	messageDomain "github.com/reshetovitsme/tgweb2rss/internal/modules/message/domain"
	"github.com/reshetovitsme/tgweb2rss/internal/modules/message/extractor"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/errors"
	"github.com/reshetovitsme/tgweb2rss/internal/transport/web"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// DefaultBaseURL is the public web preview host.
const DefaultBaseURL = "https://t.me"

// Getter fetches a page. It must be safe for concurrent use when shared
// between sessions.
type Getter interface {
	Get(ctx context.Context, rawURL string, params url.Values) (string, error)
}

// Session walks the history of one channel from the newest page to the
// oldest. It is not safe for concurrent use.
type Session struct {
	getter    Getter
	extractor *extractor.Extractor
	logger    *slog.Logger
	baseURL   string
	mode      domain.PaginationMode
	strict    bool

	info      domain.Info
	position  string
	exhausted bool
	seen      map[string]struct{}
}

// Option configures a Session
type Option func(*Session)

func WithGetter(getter Getter) Option {
	return func(s *Session) { s.getter = getter }
}

func WithBaseURL(baseURL string) Option {
	return func(s *Session) { s.baseURL = strings.TrimSuffix(baseURL, "/") }
}

func WithPaginationMode(mode domain.PaginationMode) Option {
	return func(s *Session) { s.mode = mode }
}

// WithStrictExtraction makes a malformed bubble fail the whole FetchPage
// call instead of being skipped.
func WithStrictExtraction(strict bool) Option {
	return func(s *Session) { s.strict = strict }
}

func WithExtractor(e *extractor.Extractor) Option {
	return func(s *Session) { s.extractor = e }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// NewSession creates a session positioned at the newest page of channelID.
// Without WithGetter it fetches through a default web.Client.
func NewSession(channelID string, opts ...Option) *Session {
	s := &Session{
		extractor: extractor.New(),
		logger:    slog.Default(),
		baseURL:   DefaultBaseURL,
		mode:      domain.PaginationModePrevLink,
		info:      domain.Info{ID: channelID},
		seen:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.getter == nil {
		s.getter = web.New(web.Config{})
	}
	return s
}

// ChannelID returns the channel identifier.
func (s *Session) ChannelID() string {
	return s.info.ID
}

// Info returns the channel metadata collected so far.
func (s *Session) Info() domain.Info {
	return s.info
}

// Position returns the cursor of the next page to fetch, empty before the
// first fetch.
func (s *Session) Position() string {
	return s.position
}

// Exhausted reports whether the oldest page was already fetched.
func (s *Session) Exhausted() bool {
	return s.exhausted
}

// URL returns the public web preview URL of the channel.
func (s *Session) URL() string {
	return s.baseURL + "/s/" + s.info.ID
}

// BaseURL returns the host the session scrapes.
func (s *Session) BaseURL() string {
	return s.baseURL
}

// FetchPage fetches up to count pages, older pages on each iteration, and
// returns their messages oldest first. It fails with errors.ErrFeedEnd once
// the oldest page was fetched by a previous call. A failed call leaves the
// session untouched, so retrying it fetches the same pages again.
func (s *Session) FetchPage(ctx context.Context, count int) ([]messageDomain.Message, error) {
	if s.exhausted {
		return nil, oops.In("channel").With("channel_id", s.info.ID).Wrap(errors.ErrFeedEnd)
	}

	var (
		messages  []messageDomain.Message
		last      *goquery.Document
		position  = s.position
		exhausted bool
		fetched   = make(map[string]struct{})
	)

	for i := 0; i < count && !exhausted; i++ {
		params := url.Values{}
		if position != "" {
			params.Set("before", position)
		}

		body, err := s.getter.Get(ctx, s.URL(), params)
		if err != nil {
			return nil, err
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			return nil, oops.In("channel").With("channel_id", s.info.ID, "before", position).Wrap(err)
		}
		last = doc

		page, err := s.extractPage(doc, fetched)
		if err != nil {
			return nil, err
		}
		// Every iteration reaches further back in time.
		messages = append(page, messages...)

		cursor, ok := readCursor(doc, s.mode)
		if !ok {
			exhausted = true
			s.logger.Debug("Reached the oldest page", "channel_id", s.info.ID, "before", position)
			break
		}
		position = cursor
		s.logger.Debug("Fetched channel page", "channel_id", s.info.ID, "messages", len(page), "next_before", cursor)
	}

	s.position = position
	s.exhausted = exhausted
	for number := range fetched {
		s.seen[number] = struct{}{}
	}
	if last != nil {
		populateInfo(&s.info, last, s.logger)
	}

	return messages, nil
}

// extractPage returns the messages of one page oldest first. Numbers already
// returned by the session or earlier in this call are dropped; new ones are
// added to fetched.
func (s *Session) extractPage(doc *goquery.Document, fetched map[string]struct{}) ([]messageDomain.Message, error) {
	bubbles := doc.Find(messageDomain.Bubble.Selector)
	page := make([]messageDomain.Message, 0, bubbles.Length())

	var failure error
	bubbles.EachWithBreak(func(i int, bubble *goquery.Selection) bool {
		msg, err := s.extractor.Extract(bubble)
		if err != nil {
			if s.strict {
				failure = oops.In("channel").With("channel_id", s.info.ID, "bubble", i).Wrap(err)
				return false
			}
			s.logger.Warn("Skipping malformed message", "channel_id", s.info.ID, "bubble", i, "field", missingField(err), "error", err.Error())
			return true
		}
		page = append(page, msg)
		return true
	})
	if failure != nil {
		return nil, failure
	}

	page = lo.Filter(page, func(msg messageDomain.Message, _ int) bool {
		_, seen := s.seen[msg.Number]
		_, again := fetched[msg.Number]
		if seen || again {
			s.logger.Debug("Skipping already fetched message", "channel_id", s.info.ID, "number", msg.Number)
			return false
		}
		fetched[msg.Number] = struct{}{}
		return true
	})

	// Pages list their newest message first.
	return lo.Reverse(page), nil
}

// missingField returns the field name attached to an extraction error.
func missingField(err error) any {
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Context()["field"]
	}
	return nil
}
