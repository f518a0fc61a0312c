package service

import (
	"encoding/xml"
	"fmt"
	"html"
	"strings"

	"github.com/gorilla/feeds"
	channelDomain "github.com/reshetovitsme/tgweb2rss/internal/modules/channel/domain"
	"github.com/reshetovitsme/tgweb2rss/internal/modules/feed/domain"
	messageDomain "github.com/reshetovitsme/tgweb2rss/internal/modules/message/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// NoContent is the description of an entry none of whose contents rendered.
const NoContent = "<b>No Content</b>"

const mediaStyle = "max-width: 400px;"

// Assembler turns scraped messages into an RSS feed. It holds no state
// besides its configuration and is safe for concurrent use.
type Assembler struct {
	baseURL   string
	generator domain.Generator
}

// NewAssembler creates an assembler linking entries to baseURL (e.g.
// https://t.me).
func NewAssembler(baseURL string, generator domain.Generator) *Assembler {
	return &Assembler{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		generator: generator,
	}
}

// Assemble builds the feed of channelID with one entry per message, in the
// order given.
func (a *Assembler) Assemble(channelID string, info channelDomain.Info, messages []messageDomain.Message) *feeds.RssFeed {
	feed := &feeds.Feed{
		Title:       lo.CoalesceOrEmpty(info.Title.OrZero(), channelID),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/s/%s", a.baseURL, channelID), Rel: "via"},
		Description: lo.CoalesceOrEmpty(info.Description.OrZero(), channelID),
	}
	if image, ok := info.Image.Get(); ok {
		feed.Image = &feeds.Image{Url: image, Title: feed.Title, Link: feed.Link.Href}
	}

	feed.Items = lo.Map(messages, func(msg messageDomain.Message, _ int) *feeds.Item {
		return a.entry(channelID, msg)
	})

	rss := (&feeds.Rss{Feed: feed}).RssFeed()
	rss.Generator = a.generator.String()
	for i, msg := range messages {
		item := rss.Items[i]
		item.Author = feed.Items[i].Author.Name
		item.Category = strings.Join(lo.Map(msg.Kinds(), func(kind messageDomain.Kind, _ int) string {
			return kind.String()
		}), ", ")
	}
	return rss
}

func (a *Assembler) entry(channelID string, msg messageDomain.Message) *feeds.Item {
	var (
		title       string
		description strings.Builder
	)
	for _, content := range msg.Contents {
		if title == "" {
			title = caption(content, msg.Number)
		}
		description.WriteString(fragment(content, msg))
	}

	if msg.ForwardedFrom != "" {
		title = fmt.Sprintf("Forwarded from %s: %s", msg.ForwardedFrom, title)
	}

	return &feeds.Item{
		Id:          msg.Number,
		Title:       title,
		Author:      &feeds.Author{Name: lo.CoalesceOrEmpty(msg.Author, msg.Owner)},
		Created:     msg.PublishedAt(),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/%s/%s", a.baseURL, channelID, msg.Number), Rel: "alternate"},
		Description: lo.CoalesceOrEmpty(description.String(), NoContent),
	}
}

// caption is the natural entry title of a content.
func caption(content messageDomain.Content, number string) string {
	switch c := content.(type) {
	case messageDomain.Text:
		return c.Value
	case messageDomain.Poll:
		return c.Question
	}
	return display(content.Kind()) + " " + number
}

func display(kind messageDomain.Kind) string {
	locator, ok := messageDomain.LocatorFor(kind)
	if !ok {
		return kind.String()
	}
	return locator.Display
}

// fragment renders the HTML of one content.
func fragment(content messageDomain.Content, msg messageDomain.Message) string {
	e := html.EscapeString
	name := display(content.Kind())

	switch c := content.(type) {
	case messageDomain.Text:
		return "<p>" + strings.ReplaceAll(e(c.Value), "\n", "<br/>") + "</p>"
	case messageDomain.Photo:
		return fmt.Sprintf(`<img src="%s" style="%s"/>`, e(c.URL), mediaStyle)
	case messageDomain.Video:
		return fmt.Sprintf(`<video poster="%s" src="%s" style="%s" controls></video><div><sup>%s</sup></div>`,
			e(c.Thumbnail), e(c.URL), mediaStyle, e(c.Duration))
	case messageDomain.Voice:
		return fmt.Sprintf(`<div><audio src="%s" controls></audio></div><div><a href="%s">%s</a> <sub>%s</sub></div>`,
			e(c.URL), e(c.URL), name, e(c.Duration))
	case messageDomain.Document:
		return fmt.Sprintf(`<div><a href="%s">%s</a> <sub>%s</sub></div>`, e(c.URL), e(c.Title), e(c.Size))
	case messageDomain.Location:
		return fmt.Sprintf(`<div><a href="%s">%s</a> <sub>(%s, %s)</sub></div>`,
			e(c.URL), name, e(c.Latitude), e(c.Longitude))
	case messageDomain.Poll:
		var b strings.Builder
		fmt.Fprintf(&b, "<div><h1>%s</h1><ul>", e(c.Question))
		for _, option := range c.Options {
			fmt.Fprintf(&b, "<li><b>(%s)</b> %s</li>", e(option.Percent), e(option.Value))
		}
		fmt.Fprintf(&b, "</ul><div><b>%s (voters: %s)</b></div></div>", e(c.Type), e(msg.Voters))
		return b.String()
	case messageDomain.Sticker:
		return fmt.Sprintf(`<img src="%s" style="%s"/>`, e(c.Image), mediaStyle)
	case messageDomain.UnsupportedMedia:
		return fmt.Sprintf(`<b><a href="%s">%s</a></b>`, e(c.URL), name)
	}
	return ""
}

// Serialize renders feed as RSS 2.0, indented when pretty is set.
func Serialize(feed *feeds.RssFeed, pretty bool) (string, error) {
	if pretty {
		out, err := feeds.ToXML(feed)
		if err != nil {
			return "", oops.In("feed").Wrapf(err, "rendering feed")
		}
		return out, nil
	}

	out, err := xml.Marshal(feed.FeedXml())
	if err != nil {
		return "", oops.In("feed").Wrapf(err, "rendering feed")
	}
	return xml.Header + string(out), nil
}
