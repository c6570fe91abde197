package service

import "errors"

// User-presentable failures. Handlers write err.Error() for these.
var (
	ErrInvalidResource    = errors.New("resourceId and resourceType are required")
	ErrAlreadyInWatchlist = errors.New("Resource already in watchlist")
	ErrAlreadyInList      = errors.New("Resource already in list")
	ErrListNotFound       = errors.New("list not found")
	ErrListNameRequired   = errors.New("list name is required")
	ErrListNameTooLong    = errors.New("list name must be at most 100 characters")
	ErrListEmojiTooLong   = errors.New("list emoji must be at most 16 characters")
	ErrInvalidRegion      = errors.New("region must be a two-letter country code")
	ErrInvalidProvider    = errors.New("provider ids must be positive")
	ErrInvalidMediaType   = errors.New("invalid media type")
	ErrNotFound           = errors.New("not found")
	ErrPasskeyNotFound    = errors.New("passkey not found")
)
