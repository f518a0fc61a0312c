//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase --marshal

package domain

// Kind is the stable symbolic name of a message content type
// ENUM(text,image,video,voice,document,location,poll,sticker,not_supported_media)
type Kind string
