package model

import (
	"strings"
	"time"
)

// MediaType tags resources and view filters.
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeTV     MediaType = "tv"
	MediaTypePerson MediaType = "person"
	MediaTypeAll    MediaType = "all"
)

// ParseMediaType normalizes s; ok is false for unknown values.
func ParseMediaType(s string) (MediaType, bool) {
	switch mt := MediaType(strings.ToLower(strings.TrimSpace(s))); mt {
	case MediaTypeMovie, MediaTypeTV, MediaTypePerson, MediaTypeAll:
		return mt, true
	default:
		return "", false
	}
}

// ParseRegion normalizes an ISO 3166-1 alpha-2 code; ok is false unless s is
// two ASCII letters.
func ParseRegion(s string) (string, bool) {
	region := strings.ToUpper(strings.TrimSpace(s))
	if len(region) != 2 {
		return "", false
	}
	for _, c := range []byte(region) {
		if c < 'A' || c > 'Z' {
			return "", false
		}
	}
	return region, true
}

// Watchable reports whether the type can be stored in a watchlist.
func (m MediaType) Watchable() bool {
	return m == MediaTypeMovie || m == MediaTypeTV
}

// Listable reports whether the type can be stored in a custom list.
func (m MediaType) Listable() bool {
	return m == MediaTypeMovie || m == MediaTypeTV || m == MediaTypePerson
}

// WatchlistEntry is one resource in a user's watchlist.
type WatchlistEntry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	ResourceID   int       `json:"resourceId"`
	ResourceType MediaType `json:"resourceType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// List is a user-created named collection.
type List struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Emoji       string    `json:"emoji"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListSummary is a list with its aggregate item count.
type ListSummary struct {
	List
	ItemCount int `json:"itemCount"`
}

// ListItem is one resource inside a list.
type ListItem struct {
	ID           string    `json:"id"`
	ListID       string    `json:"listId"`
	ResourceID   int       `json:"resourceId"`
	ResourceType MediaType `json:"resourceType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ResourceRequest identifies a resource in watchlist and list-item bodies.
type ResourceRequest struct {
	ResourceID   int    `json:"resourceId"`
	ResourceType string `json:"resourceType"`
}

// ToggleRequest asks for a watchlist toggle. Optimistic is the membership the
// client already displays, if it applied an optimistic update.
type ToggleRequest struct {
	ResourceRequest
	Optimistic *bool `json:"optimistic"`
}

type CreateListRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Emoji       string  `json:"emoji"`
}

// UpdateListRequest carries optional list changes; nil fields are left as-is.
type UpdateListRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Emoji       *string `json:"emoji"`
}

type RegionRequest struct {
	Region string `json:"region"`
}

type ProvidersRequest struct {
	ProviderIDs []int `json:"providerIds"`
}

// SuccessResponse is the body of mutating endpoints that return no data.
type SuccessResponse struct {
	Success bool `json:"success"`
}
