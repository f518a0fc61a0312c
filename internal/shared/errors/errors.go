package errors

import "errors"

var (
	// ErrFeedEnd is returned once every page of a channel has been fetched.
	ErrFeedEnd = errors.New("all the pages were already fetched from the channel")
	// ErrParse is returned when a counter string cannot be interpreted.
	ErrParse = errors.New("invalid counter value")
	// ErrMalformedPage is returned when a message lacks its number, owner or date.
	ErrMalformedPage = errors.New("malformed message")

	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrInvalidChannel   = errors.New("invalid channel id")
	ErrInvalidPages     = errors.New("invalid pages count")
	ErrUnauthorized     = errors.New("unauthorized user")
)
