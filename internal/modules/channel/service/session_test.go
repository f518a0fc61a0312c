package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/reshetovitsme/tgweb2rss/internal/modules/channel/domain"
	messageDomain "github.com/reshetovitsme/tgweb2rss/internal/modules/message/domain"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	pages map[string]string
	calls []string
	err   error
	// failOnce fails the first request for each listed cursor.
	failOnce map[string]bool
}

func (g *fakeGetter) Get(_ context.Context, rawURL string, params url.Values) (string, error) {
	before := params.Get("before")
	g.calls = append(g.calls, before)
	if g.err != nil {
		return "", g.err
	}
	if g.failOnce[before] {
		delete(g.failOnce, before)
		return "", fmt.Errorf("connection reset: %w", errors.ErrUnexpectedStatus)
	}
	body, ok := g.pages[before]
	if !ok {
		return "", fmt.Errorf("no page before %q at %s", before, rawURL)
	}
	return body, nil
}

type pageSpec struct {
	title       string
	description string
	counters    map[string]string
	numbers     []int
	malformed   int
	cursor      string
	mode        domain.PaginationMode
}

func bubble(channel string, number int) string {
	return fmt.Sprintf(`<div class="tgme_widget_message_bubble">
  <a class="tgme_widget_message_owner_name" href="https://t.me/%[1]s"><span>%[1]s</span></a>
  <div class="tgme_widget_message_text">post %[2]d</div>
  <a class="tgme_widget_message_date" href="https://t.me/%[1]s/%[2]d"><time datetime="2025-01-01T00:%02[3]d:00+00:00">00:00</time></a>
</div>
`, channel, number, number%60)
}

// renderPage lists the messages newest first and links the next older page
// through p.cursor.
func renderPage(channel string, p pageSpec) string {
	var b strings.Builder
	b.WriteString("<html><head>")
	if p.cursor != "" && p.mode != domain.PaginationModeLoadMore {
		fmt.Fprintf(&b, `<link rel="prev" href="/s/%s?before=%s">`, channel, p.cursor)
	}
	b.WriteString("</head><body>")
	if p.title != "" {
		fmt.Fprintf(&b, `<div class="tgme_channel_info_header_title"><span>%s</span></div>`, p.title)
	}
	if p.description != "" {
		fmt.Fprintf(&b, `<div class="tgme_channel_info_description">%s</div>`, p.description)
	}
	for label, value := range p.counters {
		fmt.Fprintf(&b, `<div class="tgme_channel_info_counter"><span class="counter_value">%s</span> <span class="counter_type">%s</span></div>`, value, label)
	}
	if p.mode == domain.PaginationModeLoadMore {
		fmt.Fprintf(&b, `<a class="tme_messages_more" data-before="%s"></a>`, lo.Ternary(p.cursor == "", "0", p.cursor))
	}

	numbers := append([]int(nil), p.numbers...)
	for i := len(numbers) - 1; i >= 0; i-- {
		b.WriteString(bubble(channel, numbers[i]))
	}
	for i := 0; i < p.malformed; i++ {
		b.WriteString(`<div class="tgme_widget_message_bubble"><div class="tgme_widget_message_text">no metadata</div></div>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// pagedChannel builds a channel of pageCount pages with perPage messages
// each, numbered from 1.
func pagedChannel(channel string, pageCount, perPage int, mode domain.PaginationMode) map[string]string {
	pages := make(map[string]string, pageCount)
	before := ""
	for page := pageCount; page >= 1; page-- {
		first := (page-1)*perPage + 1
		p := pageSpec{
			title:   "Title from page " + strconv.Itoa(page),
			numbers: lo.RangeFrom(first, perPage),
			mode:    mode,
		}
		if page > 1 {
			p.cursor = strconv.Itoa(first)
		}
		pages[before] = renderPage(channel, p)
		before = p.cursor
	}
	return pages
}

func numbers(messages []messageDomain.Message) []int {
	return lo.Map(messages, func(msg messageDomain.Message, _ int) int {
		n, _ := strconv.Atoi(msg.Number)
		return n
	})
}

func TestSession_FetchPageUntilFeedEnd(t *testing.T) {
	for _, pageCount := range []int{1, 2, 5} {
		t.Run(strconv.Itoa(pageCount), func(t *testing.T) {
			getter := &fakeGetter{pages: pagedChannel("gonews", pageCount, 3, domain.PaginationModePrevLink)}
			session := NewSession("gonews", WithGetter(getter))

			var all []int
			for i := 0; i < pageCount; i++ {
				messages, err := session.FetchPage(context.Background(), 1)
				require.NoError(t, err)

				got := numbers(messages)
				require.Len(t, got, 3)
				assert.IsIncreasing(t, got)
				all = append(got, all...)
			}

			_, err := session.FetchPage(context.Background(), 1)
			assert.ErrorIs(t, err, errors.ErrFeedEnd)
			assert.True(t, session.Exhausted())

			assert.Equal(t, lo.RangeFrom(1, pageCount*3), all)
			assert.Len(t, getter.calls, pageCount)
		})
	}
}

func TestSession_FetchSeveralPagesOldestFirst(t *testing.T) {
	getter := &fakeGetter{pages: pagedChannel("gonews", 3, 4, domain.PaginationModePrevLink)}
	session := NewSession("gonews", WithGetter(getter))

	messages, err := session.FetchPage(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, lo.RangeFrom(5, 8), numbers(messages))
	assert.Equal(t, []string{"", "9"}, getter.calls)
	assert.Equal(t, "5", session.Position())
	assert.False(t, session.Exhausted())

	// Asking for more pages than are left stops at the oldest one.
	messages, err = session.FetchPage(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, lo.RangeFrom(1, 4), numbers(messages))
	assert.True(t, session.Exhausted())
}

func TestSession_SkipsDuplicates(t *testing.T) {
	pages := map[string]string{
		"":  renderPage("gonews", pageSpec{numbers: []int{4, 5, 6}, cursor: "5"}),
		"5": renderPage("gonews", pageSpec{numbers: []int{2, 3, 4}}),
	}
	session := NewSession("gonews", WithGetter(&fakeGetter{pages: pages}))

	messages, err := session.FetchPage(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 5, 6}, numbers(messages))
}

func TestSession_MetadataSetOnce(t *testing.T) {
	pages := map[string]string{
		"": renderPage("gonews", pageSpec{
			title:    "Go News",
			counters: map[string]string{"subscribers": "3.4M", "photos": "1.2K"},
			numbers:  []int{10},
			cursor:   "10",
		}),
		"10": renderPage("gonews", pageSpec{
			title:       "Renamed",
			description: "Everything about Go",
			counters:    map[string]string{"subscribers": "1", "videos": "12", "links": "oops"},
			numbers:     []int{9},
		}),
	}
	session := NewSession("gonews", WithGetter(&fakeGetter{pages: pages}))

	_, err := session.FetchPage(context.Background(), 1)
	require.NoError(t, err)

	info := session.Info()
	assert.Equal(t, "Go News", info.Title.OrZero())
	assert.False(t, info.Description.IsSet())
	assert.Equal(t, int64(3_400_000), info.Subscribers.OrZero())
	assert.Equal(t, int64(1_200), info.Photos.OrZero())

	_, err = session.FetchPage(context.Background(), 1)
	require.NoError(t, err)

	info = session.Info()
	assert.Equal(t, "Go News", info.Title.OrZero())
	assert.Equal(t, "Everything about Go", info.Description.OrZero())
	assert.Equal(t, int64(3_400_000), info.Subscribers.OrZero())
	assert.Equal(t, int64(12), info.Videos.OrZero())
	assert.False(t, info.Links.IsSet())
}

func TestSession_MalformedBubbles(t *testing.T) {
	pages := map[string]string{
		"": renderPage("gonews", pageSpec{numbers: []int{1, 2}, malformed: 2}),
	}

	t.Run("skipped", func(t *testing.T) {
		session := NewSession("gonews", WithGetter(&fakeGetter{pages: pages}))

		messages, err := session.FetchPage(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, numbers(messages))
	})

	t.Run("strict", func(t *testing.T) {
		session := NewSession("gonews", WithGetter(&fakeGetter{pages: pages}), WithStrictExtraction(true))

		_, err := session.FetchPage(context.Background(), 1)
		assert.ErrorIs(t, err, errors.ErrMalformedPage)
		assert.False(t, session.Exhausted())
	})
}

func TestSession_MalformedBubbleLogLine(t *testing.T) {
	pages := map[string]string{
		"": renderPage("gonews", pageSpec{numbers: []int{1}, malformed: 1}),
	}
	var buf bytes.Buffer
	session := NewSession("gonews",
		WithGetter(&fakeGetter{pages: pages}),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	_, err := session.FetchPage(context.Background(), 1)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "level=WARN")
	assert.Contains(t, lines[0], "field=number")
	assert.Contains(t, lines[0], `error="missing number: `)
	assert.NotContains(t, lines[0], ".go:")
}

func TestSession_TransportError(t *testing.T) {
	getter := &fakeGetter{err: fmt.Errorf("dial: %w", errors.ErrUnexpectedStatus)}
	session := NewSession("gonews", WithGetter(getter))

	_, err := session.FetchPage(context.Background(), 1)
	assert.ErrorIs(t, err, errors.ErrUnexpectedStatus)
	assert.False(t, session.Exhausted())
	assert.Empty(t, session.Position())
}

func TestSession_FailedCallCanBeRetried(t *testing.T) {
	getter := &fakeGetter{
		pages:    pagedChannel("gonews", 3, 2, domain.PaginationModePrevLink),
		failOnce: map[string]bool{"5": true},
	}
	session := NewSession("gonews", WithGetter(getter))

	_, err := session.FetchPage(context.Background(), 2)
	require.ErrorIs(t, err, errors.ErrUnexpectedStatus)
	assert.Empty(t, session.Position())
	assert.False(t, session.Exhausted())

	var all []int
	for {
		messages, err := session.FetchPage(context.Background(), 1)
		if err != nil {
			require.ErrorIs(t, err, errors.ErrFeedEnd)
			break
		}
		all = append(numbers(messages), all...)
	}
	assert.Equal(t, lo.RangeFrom(1, 6), all)
}

func TestSession_StrictFailureCanBeRetried(t *testing.T) {
	pages := map[string]string{
		"":  renderPage("gonews", pageSpec{numbers: []int{3, 4}, cursor: "3"}),
		"3": renderPage("gonews", pageSpec{numbers: []int{1, 2}, malformed: 1}),
	}
	session := NewSession("gonews", WithGetter(&fakeGetter{pages: pages}), WithStrictExtraction(true))

	_, err := session.FetchPage(context.Background(), 2)
	require.ErrorIs(t, err, errors.ErrMalformedPage)
	assert.Empty(t, session.Position())

	messages, err := session.FetchPage(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, numbers(messages))
	assert.Equal(t, "3", session.Position())
}

func TestSession_LoadMorePagination(t *testing.T) {
	getter := &fakeGetter{pages: pagedChannel("gonews", 2, 2, domain.PaginationModeLoadMore)}
	session := NewSession("gonews",
		WithGetter(getter),
		WithPaginationMode(domain.PaginationModeLoadMore),
	)

	messages, err := session.FetchPage(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, numbers(messages))
	assert.Equal(t, []string{"", "3"}, getter.calls)
	assert.True(t, session.Exhausted())
}

func TestSession_URL(t *testing.T) {
	session := NewSession("gonews", WithBaseURL("https://mirror.example.org/"))

	assert.Equal(t, "https://mirror.example.org/s/gonews", session.URL())
	assert.Equal(t, "gonews", session.ChannelID())
}
