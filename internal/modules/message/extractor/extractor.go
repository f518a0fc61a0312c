// Package extractor turns one message bubble of a channel page into a
// domain.Message.
package extractor

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/reshetovitsme/tgweb2rss/internal/modules/message/domain"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const (
	// DefaultMapURL is the neutral map provider locations are rewritten to.
	DefaultMapURL = "https://www.openstreetmap.org/"
	// DefaultMapLayer selects the standard tile layer.
	DefaultMapLayer = "M"
)

// Extractor extracts messages from bubbles. It holds no per-message state and
// is safe for concurrent use.
type Extractor struct {
	mapURL   string
	mapLayer string
}

// Option configures an Extractor
type Option func(*Extractor)

// WithMapURL overrides the map provider used for locations.
func WithMapURL(mapURL, layer string) Option {
	return func(e *Extractor) {
		e.mapURL = mapURL
		e.mapLayer = layer
	}
}

// New creates a new extractor
func New(opts ...Option) *Extractor {
	e := &Extractor{
		mapURL:   DefaultMapURL,
		mapLayer: DefaultMapLayer,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the metadata and contents of one bubble. A missing number,
// owner or date fails with errors.ErrMalformedPage; any other missing lookup
// only drops the content it belongs to.
func (e *Extractor) Extract(bubble *goquery.Selection) (domain.Message, error) {
	var msg domain.Message

	permalink, ok := bubble.Find(domain.MessageNumber.Selector).First().Attr("href")
	msg.Number = messageNumber(permalink)
	if !ok || msg.Number == "" {
		return msg, missing(domain.MessageNumber)
	}

	msg.Owner = text(bubble.Find(domain.MessageOwner.Selector).First())
	if msg.Owner == "" {
		return msg, missing(domain.MessageOwner)
	}

	msg.Date, _ = bubble.Find(domain.MessageDate.Selector).First().Attr("datetime")
	if msg.Date == "" {
		return msg, missing(domain.MessageDate)
	}

	msg.Author = text(bubble.Find(domain.MessageAuthor.Selector).First())
	msg.Views = text(bubble.Find(domain.MessageViews.Selector).First())
	msg.Voters = text(bubble.Find(domain.MessageVoters.Selector).First())
	msg.ForwardedFrom = text(bubble.Find(domain.MessageForwardedFrom.Selector).First())

	msg.Contents = []domain.Content{}
	for _, cl := range domain.ContentLocators {
		own(bubble.Find(cl.Locator.Selector)).Each(func(_ int, s *goquery.Selection) {
			if content, ok := e.content(cl.Kind, s); ok {
				msg.Contents = append(msg.Contents, content)
			}
		})
	}

	return msg, nil
}

func (e *Extractor) content(kind domain.Kind, s *goquery.Selection) (domain.Content, bool) {
	switch kind {
	case domain.KindText:
		return extractText(s)
	case domain.KindImage:
		return extractPhoto(s)
	case domain.KindVideo:
		return extractVideo(s)
	case domain.KindVoice:
		return extractVoice(s)
	case domain.KindDocument:
		return extractDocument(s)
	case domain.KindLocation:
		return e.extractLocation(s)
	case domain.KindPoll:
		return extractPoll(s)
	case domain.KindSticker:
		return extractSticker(s)
	case domain.KindNotSupportedMedia:
		return extractUnsupported(s)
	}
	return nil, false
}

func extractText(s *goquery.Selection) (domain.Content, bool) {
	// Line breaks are rewritten on a copy so the page stays intact.
	c := s.Clone()
	c.Find(domain.LineBreaks.Selector).ReplaceWithHtml("\n")
	value := text(c)
	return domain.Text{Value: value}, value != ""
}

func extractPhoto(s *goquery.Selection) (domain.Content, bool) {
	photoURL, ok := styleURL(s)
	return domain.Photo{URL: photoURL}, ok
}

func extractVideo(s *goquery.Selection) (domain.Content, bool) {
	videoURL, ok := s.Find(domain.VideoURL.Selector).First().Attr("src")
	if !ok || videoURL == "" {
		return nil, false
	}

	thumb, _ := styleURL(s.Find(domain.VideoThumb.Selector).First())

	return domain.Video{
		URL:       videoURL,
		Thumbnail: thumb,
		Duration:  text(s.Find(domain.VideoDuration.Selector).First()),
	}, true
}

func extractVoice(s *goquery.Selection) (domain.Content, bool) {
	voiceURL, ok := s.Find(domain.VoiceURL.Selector).First().Attr("src")
	if !ok || voiceURL == "" {
		return nil, false
	}

	return domain.Voice{
		URL:      voiceURL,
		Duration: text(near(s, domain.VoiceDuration.Selector)),
	}, true
}

func extractDocument(s *goquery.Selection) (domain.Content, bool) {
	documentURL, ok := s.Attr("href")
	title := text(s.Find(domain.DocumentTitle.Selector).First())
	if !ok || documentURL == "" || title == "" {
		return nil, false
	}

	return domain.Document{
		URL:   documentURL,
		Title: title,
		Size:  text(s.Find(domain.DocumentSize.Selector).First()),
	}, true
}

func (e *Extractor) extractLocation(s *goquery.Selection) (domain.Content, bool) {
	href, ok := s.Attr("href")
	if !ok {
		return nil, false
	}

	location, err := RewriteLocation(href, e.mapURL, e.mapLayer)
	if err != nil {
		return nil, false
	}
	return location, true
}

func extractPoll(s *goquery.Selection) (domain.Content, bool) {
	question := text(s.Find(domain.PollQuestion.Selector).First())
	if question == "" {
		return nil, false
	}

	options := []domain.PollOption{}
	s.Find(domain.PollOptions.Selector).Each(func(_ int, option *goquery.Selection) {
		value := text(option.Find(domain.PollOptionValue.Selector).First())
		if value == "" {
			return
		}
		options = append(options, domain.PollOption{
			Percent: text(option.Find(domain.PollOptionPercent.Selector).First()),
			Value:   value,
		})
	})

	return domain.Poll{
		Question: question,
		Type:     text(s.Find(domain.PollType.Selector).First()),
		Options:  options,
	}, true
}

func extractSticker(s *goquery.Selection) (domain.Content, bool) {
	image, ok := s.Attr("data-webp")
	if !ok || image == "" {
		return nil, false
	}

	shape, _ := styleURL(s)
	return domain.Sticker{Shape: shape, Image: image}, true
}

func extractUnsupported(s *goquery.Selection) (domain.Content, bool) {
	mediaURL, ok := s.Find(domain.UnsupportedURL.Selector).First().Attr("href")
	if !ok || mediaURL == "" {
		return nil, false
	}
	return domain.UnsupportedMedia{URL: mediaURL}, true
}

// RewriteLocation converts a map link of the form ...?q=lat,lon&z=zoom into
// a link to mapURL carrying lat, lon, zoom and layers parameters.
func RewriteLocation(href, mapURL, layer string) (domain.Location, error) {
	source, err := url.Parse(href)
	if err != nil {
		return domain.Location{}, oops.In("extractor").With("href", href).Wrap(err)
	}

	query := source.Query()
	lat, lon, found := strings.Cut(query.Get("q"), ",")
	lat, lon = strings.TrimSpace(lat), strings.TrimSpace(lon)
	zoom := strings.TrimSpace(query.Get("z"))
	if !found || lat == "" || lon == "" || zoom == "" {
		return domain.Location{}, oops.In("extractor").With("href", href).Errorf("location link without coordinates")
	}

	target, err := url.Parse(mapURL)
	if err != nil {
		return domain.Location{}, oops.In("extractor").With("map_url", mapURL).Wrap(err)
	}

	params := url.Values{}
	params.Set("lat", lat)
	params.Set("lon", lon)
	params.Set("zoom", zoom)
	params.Set("layers", layer)
	target.RawQuery = params.Encode()

	return domain.Location{
		URL:       target.String(),
		Latitude:  lat,
		Longitude: lon,
		Zoom:      zoom,
	}, nil
}

// messageNumber returns the last path segment of a permalink such as
// https://t.me/channel/123.
func messageNumber(permalink string) string {
	u, err := url.Parse(permalink)
	if err != nil {
		return ""
	}
	number := path.Base(strings.TrimSuffix(u.Path, "/"))
	return lo.Ternary(number == "." || number == "/", "", number)
}

// styleURL reads the quoted url out of a background-image style attribute.
func styleURL(s *goquery.Selection) (string, bool) {
	style, ok := s.Attr("style")
	if !ok {
		return "", false
	}

	fields := strings.Split(style, "'")
	if len(fields) < 2 || fields[1] == "" {
		return "", false
	}
	return fields[1], true
}

// own drops matches nested inside a reply preview; those belong to the
// quoted message.
func own(s *goquery.Selection) *goquery.Selection {
	return s.FilterFunction(func(_ int, match *goquery.Selection) bool {
		return match.Closest(domain.Reply.Selector).Length() == 0
	})
}

// near looks for selector among the descendants of s, then among its
// siblings.
func near(s *goquery.Selection, selector string) *goquery.Selection {
	if found := s.Find(selector); found.Length() > 0 {
		return found.First()
	}
	return s.Siblings().Filter(selector).First()
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

func missing(field domain.Locator) error {
	return oops.In("extractor").
		With("field", field.Name, "selector", field.Selector).
		Wrapf(errors.ErrMalformedPage, "missing %s", field.Name)
}
