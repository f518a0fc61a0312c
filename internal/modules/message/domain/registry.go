package domain

// Locator describes where a piece of data lives on a channel page.
type Locator struct {
	Name     string
	Selector string
	Emoji    string
	Display  string
}

// ContentLocators lists the supported content kinds in extraction order.
var ContentLocators = []ContentLocator{
	{Kind: KindText, Locator: Locator{"text", ".tgme_widget_message_text", "📃", "Text"}},
	{Kind: KindImage, Locator: Locator{"image", ".tgme_widget_message_photo_wrap", "📷", "Photo"}},
	{Kind: KindVideo, Locator: Locator{"video", ".tgme_widget_message_video_player", "📹", "Video"}},
	{Kind: KindVoice, Locator: Locator{"voice", ".tgme_widget_message_voice_player", "🎤", "Voice"}},
	{Kind: KindDocument, Locator: Locator{"document", ".tgme_widget_message_document_wrap", "📎", "Document"}},
	{Kind: KindLocation, Locator: Locator{"location", ".tgme_widget_message_location_wrap", "📍", "Location"}},
	{Kind: KindPoll, Locator: Locator{"poll", ".tgme_widget_message_poll", "📊", "Poll"}},
	{Kind: KindSticker, Locator: Locator{"sticker", ".tgme_widget_message_sticker", "🖼️", "Sticker"}},
	{Kind: KindNotSupportedMedia, Locator: Locator{"not_supported_media", ".message_media_not_supported", "❔", "Unsupported media"}},
}

// ContentLocator binds a content kind to its locator.
type ContentLocator struct {
	Kind    Kind
	Locator Locator
}

// LocatorFor returns the locator registered for kind.
func LocatorFor(kind Kind) (Locator, bool) {
	for _, cl := range ContentLocators {
		if cl.Kind == kind {
			return cl.Locator, true
		}
	}
	return Locator{}, false
}

// Page level
var (
	Bubble     = Locator{Name: "bubble", Selector: ".tgme_widget_message_bubble"}
	Reply      = Locator{Name: "reply", Selector: ".tgme_widget_message_reply"}
	PrevLink   = Locator{Name: "prev_link", Selector: `link[rel="prev"]`}
	LoadMore   = Locator{Name: "load_more", Selector: ".tme_messages_more"}
	LineBreaks = Locator{Name: "line_break", Selector: "br"}
)

// Channel metadata
var (
	ChannelTitle       = Locator{Name: "channel_title", Selector: ".tgme_channel_info_header_title"}
	ChannelDescription = Locator{Name: "channel_description", Selector: ".tgme_channel_info_description"}
	ChannelImage       = Locator{Name: "channel_image", Selector: ".tgme_page_photo_image img"}
	ChannelCounter     = Locator{Name: "channel_counter", Selector: ".tgme_channel_info_counter"}
	CounterValue       = Locator{Name: "counter_value", Selector: ".counter_value"}
	CounterType        = Locator{Name: "counter_type", Selector: ".counter_type"}
)

// Message metadata
var (
	MessageNumber        = Locator{Name: "number", Selector: ".tgme_widget_message_date"}
	MessageOwner         = Locator{Name: "owner", Selector: ".tgme_widget_message_owner_name"}
	MessageAuthor        = Locator{Name: "author", Selector: ".tgme_widget_message_from_author"}
	MessageDate          = Locator{Name: "date", Selector: ".tgme_widget_message_date time"}
	MessageViews         = Locator{Name: "views", Selector: ".tgme_widget_message_views"}
	MessageVoters        = Locator{Name: "voters", Selector: ".tgme_widget_message_voters"}
	MessageForwardedFrom = Locator{Name: "forwarded_from", Selector: ".tgme_widget_message_forwarded_from_name"}
)

// Content fields, relative to their content container
var (
	VideoURL          = Locator{Name: "video_url", Selector: "video"}
	VideoThumb        = Locator{Name: "video_thumbnail", Selector: ".tgme_widget_message_video_thumb"}
	VideoDuration     = Locator{Name: "video_duration", Selector: "time"}
	VoiceURL          = Locator{Name: "voice_url", Selector: "audio"}
	VoiceDuration     = Locator{Name: "voice_duration", Selector: ".tgme_widget_message_voice_duration"}
	DocumentTitle     = Locator{Name: "document_title", Selector: ".tgme_widget_message_document_title"}
	DocumentSize      = Locator{Name: "document_size", Selector: ".tgme_widget_message_document_extra"}
	PollQuestion      = Locator{Name: "poll_question", Selector: ".tgme_widget_message_poll_question"}
	PollType          = Locator{Name: "poll_type", Selector: ".tgme_widget_message_poll_type"}
	PollOptions       = Locator{Name: "poll_options", Selector: ".tgme_widget_message_poll_option"}
	PollOptionPercent = Locator{Name: "poll_option_percent", Selector: ".tgme_widget_message_poll_option_percent"}
	PollOptionValue   = Locator{Name: "poll_option_value", Selector: ".tgme_widget_message_poll_option_text"}
	UnsupportedURL    = Locator{Name: "unsupported_media_url", Selector: ".message_media_view_in_telegram"}
)
