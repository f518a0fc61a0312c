package domain

import (
	"encoding/json"
	"time"
)

// Message is one post scraped from a channel page
type Message struct {
	Number        string    `json:"number"`
	Owner         string    `json:"owner"`
	Author        string    `json:"author,omitempty"`
	Date          string    `json:"date"`
	Views         string    `json:"views,omitempty"`
	Voters        string    `json:"voters,omitempty"`
	ForwardedFrom string    `json:"forwarded_from,omitempty"`
	Contents      []Content `json:"-"`
}

// PublishedAt parses Date. The zero time is returned when the page used an
// unexpected format.
func (m Message) PublishedAt() time.Time {
	t, err := time.Parse(time.RFC3339, m.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Kinds returns the distinct content kinds of the message in content order.
func (m Message) Kinds() []Kind {
	kinds := make([]Kind, 0, len(m.Contents))
	seen := make(map[Kind]struct{}, len(m.Contents))
	for _, c := range m.Contents {
		if _, ok := seen[c.Kind()]; ok {
			continue
		}
		seen[c.Kind()] = struct{}{}
		kinds = append(kinds, c.Kind())
	}
	return kinds
}

func (m Message) MarshalJSON() ([]byte, error) {
	type plain Message

	contents := make([]any, 0, len(m.Contents))
	for _, c := range m.Contents {
		contents = append(contents, taggedContent{Type: c.Kind(), Content: c})
	}

	return json.Marshal(struct {
		plain
		Contents []any `json:"contents"`
	}{plain: plain(m), Contents: contents})
}

// taggedContent flattens a content next to its type discriminator.
type taggedContent struct {
	Type    Kind
	Content Content
}

func (t taggedContent) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(t.Content)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}

	kind, err := json.Marshal(t.Type)
	if err != nil {
		return nil, err
	}
	fields["type"] = kind

	return json.Marshal(fields)
}

// Content is one typed fragment of a message. The set of implementations is
// closed: Text, Photo, Video, Voice, Document, Location, Poll, Sticker and
// UnsupportedMedia.
type Content interface {
	Kind() Kind
	isContent()
}

type Text struct {
	Value string `json:"content"`
}

type Photo struct {
	URL string `json:"url"`
}

type Video struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

type Voice struct {
	URL      string `json:"url"`
	Duration string `json:"duration,omitempty"`
}

type Document struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Size  string `json:"size,omitempty"`
}

// Location points at the neutral map provider, not the one used by the page.
type Location struct {
	URL       string `json:"url"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Zoom      string `json:"zoom"`
}

type Poll struct {
	Question string       `json:"poll_question"`
	Type     string       `json:"poll_type,omitempty"`
	Options  []PollOption `json:"poll_options"`
}

type PollOption struct {
	Percent string `json:"percent"`
	Value   string `json:"value"`
}

// Sticker keeps both the inline shape payload (usually an SVG data URI) and
// the raster image reference.
type Sticker struct {
	Shape string `json:"sticker_shape,omitempty"`
	Image string `json:"sticker_image"`
}

type UnsupportedMedia struct {
	URL string `json:"url"`
}

func (Text) Kind() Kind             { return KindText }
func (Photo) Kind() Kind            { return KindImage }
func (Video) Kind() Kind            { return KindVideo }
func (Voice) Kind() Kind            { return KindVoice }
func (Document) Kind() Kind         { return KindDocument }
func (Location) Kind() Kind         { return KindLocation }
func (Poll) Kind() Kind             { return KindPoll }
func (Sticker) Kind() Kind          { return KindSticker }
func (UnsupportedMedia) Kind() Kind { return KindNotSupportedMedia }

func (Text) isContent()             {}
func (Photo) isContent()            {}
func (Video) isContent()            {}
func (Voice) isContent()            {}
func (Document) isContent()         {}
func (Location) isContent()         {}
func (Poll) isContent()             {}
func (Sticker) isContent()          {}
func (UnsupportedMedia) isContent() {}
