package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/mmcdole/gofeed"
	channelDomain "github.com/reshetovitsme/tgweb2rss/internal/modules/channel/domain"
	channelService "github.com/reshetovitsme/tgweb2rss/internal/modules/channel/service"
	"github.com/reshetovitsme/tgweb2rss/internal/modules/feed/domain"
	feedService "github.com/reshetovitsme/tgweb2rss/internal/modules/feed/service"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/config"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newestPage = `<html><head><link rel="prev" href="/s/gonews?before=2"></head><body>
<div class="tgme_channel_info_header_title"><span>Go News</span></div>
<div class="tgme_widget_message_bubble">
  <a class="tgme_widget_message_owner_name" href="https://t.me/gonews">Go News</a>
  <div class="tgme_widget_message_text">third</div>
  <a class="tgme_widget_message_date" href="https://t.me/gonews/3"><time datetime="2025-02-11T20:00:00+00:00">20:00</time></a>
</div>
<div class="tgme_widget_message_bubble">
  <a class="tgme_widget_message_owner_name" href="https://t.me/gonews">Go News</a>
  <div class="tgme_widget_message_text">second</div>
  <a class="tgme_widget_message_date" href="https://t.me/gonews/2"><time datetime="2025-02-11T19:00:00+00:00">19:00</time></a>
</div>
</body></html>`

const oldestPage = `<html><head></head><body>
<div class="tgme_channel_info_header_title"><span>Go News</span></div>
<div class="tgme_widget_message_bubble">
  <a class="tgme_widget_message_owner_name" href="https://t.me/gonews">Go News</a>
  <div class="tgme_widget_message_text">first</div>
  <a class="tgme_widget_message_date" href="https://t.me/gonews/1"><time datetime="2025-02-11T18:00:00+00:00">18:00</time></a>
</div>
</body></html>`

type fakeGetter struct {
	err error
}

func (g fakeGetter) Get(_ context.Context, _ string, params url.Values) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	switch params.Get("before") {
	case "":
		return newestPage, nil
	case "2":
		return oldestPage, nil
	}
	return "", fmt.Errorf("unexpected cursor %q", params.Get("before"))
}

func newTestServer(getter channelService.Getter) *Server {
	cfg := &config.Config{
		PublicURL:       "https://rss.example.org",
		TelegramBaseURL: "https://t.me",
		DefaultPages:    1,
		MaxPages:        3,
		PaginationMode:  channelDomain.PaginationModePrevLink,
		MapURL:          "https://www.openstreetmap.org/",
		MapLayer:        "M",
	}
	return New(cfg,
		channelService.New(cfg, getter),
		feedService.New(domain.Generator{Name: "tgweb2rss", Version: "test"}),
	)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServer_RSSFeed(t *testing.T) {
	s := newTestServer(fakeGetter{})

	t.Run("default pages", func(t *testing.T) {
		rec := get(t, s, "/rss/gonews")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))

		feed, err := gofeed.NewParser().ParseString(rec.Body.String())
		require.NoError(t, err)
		assert.Equal(t, "Go News", feed.Title)
		require.Len(t, feed.Items, 2)
		assert.Equal(t, "second", feed.Items[0].Title)
		assert.Equal(t, "third", feed.Items[1].Title)
	})

	t.Run("every page", func(t *testing.T) {
		rec := get(t, s, "/rss/@gonews?pages=3&pretty=true")
		require.Equal(t, http.StatusOK, rec.Code)

		feed, err := gofeed.NewParser().ParseString(rec.Body.String())
		require.NoError(t, err)
		require.Len(t, feed.Items, 3)
		assert.Equal(t, "first", feed.Items[0].Title)
	})
}

func TestServer_BadRequests(t *testing.T) {
	s := newTestServer(fakeGetter{})

	for _, target := range []string{
		"/rss/gonews?pages=4",
		"/rss/gonews?pages=-1",
		"/rss/gonews?pages=many",
		"/rss/no",
		"/api/channels/no/messages",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, s, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestServer_TransportFailure(t *testing.T) {
	s := newTestServer(fakeGetter{err: fmt.Errorf("status 503: %w", errors.ErrUnexpectedStatus)})

	rec := get(t, s, "/rss/gonews")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, errors.ErrUnexpectedStatus.Error())
}

func TestServer_Messages(t *testing.T) {
	s := newTestServer(fakeGetter{})

	rec := get(t, s, "/api/channels/gonews/messages?pages=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Channel struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"channel"`
		URL      string `json:"url"`
		RSS      string `json:"rss"`
		Messages []struct {
			Number   string `json:"number"`
			Contents []struct {
				Type    string `json:"type"`
				Content string `json:"content"`
			} `json:"contents"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "gonews", body.Channel.ID)
	assert.Equal(t, "Go News", body.Channel.Title)
	assert.Equal(t, "https://t.me/s/gonews", body.URL)
	assert.Equal(t, "https://rss.example.org/rss/gonews", body.RSS)
	require.Len(t, body.Messages, 3)
	assert.Equal(t, "1", body.Messages[0].Number)
	assert.Equal(t, "text", body.Messages[0].Contents[0].Type)
	assert.Equal(t, "first", body.Messages[0].Contents[0].Content)
}

func TestServer_HealthAndRoot(t *testing.T) {
	s := newTestServer(fakeGetter{})

	rec := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = get(t, s, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/rss/{channel}")

	rec = get(t, s, "/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFeedURL(t *testing.T) {
	assert.Equal(t, "https://rss.example.org/rss/gonews", FeedURL("https://rss.example.org/", "gonews"))
}
