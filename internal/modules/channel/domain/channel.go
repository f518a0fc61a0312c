package domain

import (
	"encoding/json"
	"strings"
)

// SetOnce holds an optional value that can be written only once.
type SetOnce[T any] struct {
	value T
	set   bool
}

// Set stores v unless a value was already stored. It reports whether v was
// stored.
func (o *SetOnce[T]) Set(v T) bool {
	if o.set {
		return false
	}
	o.value = v
	o.set = true
	return true
}

// Get returns the stored value and whether one was stored.
func (o SetOnce[T]) Get() (T, bool) {
	return o.value, o.set
}

// OrZero returns the stored value or the zero value of T.
func (o SetOnce[T]) OrZero() T {
	return o.value
}

// IsSet reports whether a value was stored.
func (o SetOnce[T]) IsSet() bool {
	return o.set
}

// MarshalJSON renders the stored value, or null when nothing was stored.
func (o SetOnce[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// Info is the channel wide metadata collected from channel pages. Fields are
// populated lazily and never overwritten.
type Info struct {
	ID          string          `json:"id"`
	Title       SetOnce[string] `json:"title"`
	Description SetOnce[string] `json:"description"`
	Image       SetOnce[string] `json:"image"`
	Subscribers SetOnce[int64]  `json:"subscribers"`
	Photos      SetOnce[int64]  `json:"photos"`
	Videos      SetOnce[int64]  `json:"videos"`
	Files       SetOnce[int64]  `json:"files"`
	Links       SetOnce[int64]  `json:"links"`
}

// Counter returns the field a counter label such as "subscribers" or
// "Photo" belongs to.
func (i *Info) Counter(label string) (*SetOnce[int64], bool) {
	switch CounterLabel(label) {
	case "subscriber":
		return &i.Subscribers, true
	case "photo":
		return &i.Photos, true
	case "video":
		return &i.Videos, true
	case "file":
		return &i.Files, true
	case "link":
		return &i.Links, true
	}
	return nil, false
}

// CounterLabel normalizes a counter label: lower case, singular.
func CounterLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	return strings.TrimSuffix(label, "s")
}
