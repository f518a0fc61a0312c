package service

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/reshetovitsme/tgweb2rss/internal/modules/channel/domain"
	messageDomain "github.com/reshetovitsme/tgweb2rss/internal/modules/message/domain"
)

// readCursor returns the "before" cursor of the next older page. ok is false
// when the page has no usable navigation element, i.e. it is the oldest one.
func readCursor(doc *goquery.Document, mode domain.PaginationMode) (cursor string, ok bool) {
	switch mode {
	case domain.PaginationModeLoadMore:
		cursor, _ = doc.Find(messageDomain.LoadMore.Selector).First().Attr("data-before")
	default:
		href, exists := doc.Find(messageDomain.PrevLink.Selector).First().Attr("href")
		if !exists {
			return "", false
		}
		u, err := url.Parse(href)
		if err != nil {
			return "", false
		}
		cursor = u.Query().Get("before")
	}

	cursor = strings.TrimSpace(cursor)
	// "0" is what an exhausted load more button carries.
	if cursor == "" || cursor == "0" {
		return "", false
	}
	return cursor, true
}
