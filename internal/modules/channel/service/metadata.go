package service

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/reshetovitsme/tgweb2rss/internal/modules/channel/domain"
	messageDomain "github.com/reshetovitsme/tgweb2rss/internal/modules/message/domain"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/counter"
)

// populateInfo fills the metadata fields that are still unset. Values found
// to be empty leave their field unset so a later page can provide them.
func populateInfo(info *domain.Info, doc *goquery.Document, logger *slog.Logger) {
	if title := text(doc.Find(messageDomain.ChannelTitle.Selector)); title != "" {
		info.Title.Set(title)
	}
	if description := text(doc.Find(messageDomain.ChannelDescription.Selector)); description != "" {
		info.Description.Set(description)
	}
	if image, ok := doc.Find(messageDomain.ChannelImage.Selector).First().Attr("src"); ok && image != "" {
		info.Image.Set(image)
	}

	doc.Find(messageDomain.ChannelCounter.Selector).Each(func(_ int, s *goquery.Selection) {
		label := text(s.Find(messageDomain.CounterType.Selector))
		field, ok := info.Counter(label)
		if !ok || field.IsSet() {
			return
		}

		value, err := counter.ParseInt64(text(s.Find(messageDomain.CounterValue.Selector)))
		if err != nil {
			logger.Warn("Skipping unreadable counter", "channel_id", info.ID, "counter", label, "error", err)
			return
		}
		field.Set(value)
	})
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.First().Text())
}
