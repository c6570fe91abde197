// Package viewstate keeps page URLs and the filters they encode in sync.
// Every view derives its links from a QueryState so a filter change always
// lands on a page that exists.
package viewstate

import (
	"context"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/tmdb"
)

// URL parameter names.
const (
	ParamPage      = "page"
	ParamGenre     = "genreId"
	ParamMediaType = "mediaType"
	ParamSort      = "sort_by"
	ParamProviders = "with_watch_providers"
	ParamRegion    = "watch_region"
	ParamRuntime   = "with_runtime_lte"
	ParamQuery     = "q"
)

const (
	providerSeparator = "|"
	defaultSort       = "popularity.desc"
	maxRuntimeMinutes = 1000
	maxQueryRunes     = 200
)

var sortOptions = map[model.MediaType][]string{
	model.MediaTypeMovie: {"popularity.desc", "vote_average.desc", "primary_release_date.desc", "revenue.desc"},
	model.MediaTypeTV:    {"popularity.desc", "vote_average.desc", "first_air_date.desc"},
}

// SortOptions returns the sort_by values a discover view accepts for mt.
func SortOptions(mt model.MediaType) []string {
	return slices.Clone(sortOptions[mt])
}

// GenreChecker reports whether genreID applies to mt.
type GenreChecker func(ctx context.Context, mt model.MediaType, genreID int) bool

// QueryState is the filter and pagination state of a view. Zero values mean
// "default" and are left out of URLs.
type QueryState struct {
	Page           int
	GenreID        int
	MediaType      model.MediaType
	SortBy         string
	WatchProviders []int
	WatchRegion    string
	RuntimeLTE     int
	Query          string
}

// Parse reads a QueryState from URL values. Malformed values fall back to
// their defaults instead of failing the request.
func Parse(v url.Values) QueryState {
	s := QueryState{
		Page:       positiveInt(v.Get(ParamPage), 1),
		GenreID:    positiveInt(v.Get(ParamGenre), 0),
		SortBy:     strings.TrimSpace(v.Get(ParamSort)),
		RuntimeLTE: min(positiveInt(v.Get(ParamRuntime), 0), maxRuntimeMinutes),
		Query:      truncate(strings.TrimSpace(v.Get(ParamQuery)), maxQueryRunes),
	}
	if mt, ok := model.ParseMediaType(v.Get(ParamMediaType)); ok {
		s.MediaType = mt
	}
	if region, ok := model.ParseRegion(v.Get(ParamRegion)); ok {
		s.WatchRegion = region
	}
	for _, part := range strings.Split(v.Get(ParamProviders), providerSeparator) {
		if id := positiveInt(part, 0); id > 0 && !slices.Contains(s.WatchProviders, id) {
			s.WatchProviders = append(s.WatchProviders, id)
		}
	}
	return s
}

func positiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

// Values encodes the non-default fields.
func (s QueryState) Values() url.Values {
	v := url.Values{}
	if s.Query != "" {
		v.Set(ParamQuery, s.Query)
	}
	if s.MediaType != "" {
		v.Set(ParamMediaType, string(s.MediaType))
	}
	if s.GenreID > 0 {
		v.Set(ParamGenre, strconv.Itoa(s.GenreID))
	}
	if s.SortBy != "" && s.SortBy != defaultSort {
		v.Set(ParamSort, s.SortBy)
	}
	if len(s.WatchProviders) > 0 {
		ids := make([]string, len(s.WatchProviders))
		for i, id := range s.WatchProviders {
			ids[i] = strconv.Itoa(id)
		}
		v.Set(ParamProviders, strings.Join(ids, providerSeparator))
	}
	if s.WatchRegion != "" {
		v.Set(ParamRegion, s.WatchRegion)
	}
	if s.RuntimeLTE > 0 {
		v.Set(ParamRuntime, strconv.Itoa(s.RuntimeLTE))
	}
	if s.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(s.Page))
	}
	return v
}

// Encode returns the query string without a leading "?".
func (s QueryState) Encode() string {
	return s.Values().Encode()
}

// URL returns path with the encoded state appended.
func (s QueryState) URL(path string) string {
	if q := s.Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

// WithPage moves to page p and keeps every filter.
func (s QueryState) WithPage(p int) QueryState {
	s.Page = max(p, 1)
	return s
}

// The filter setters below also reset the page to 1.

func (s QueryState) WithGenre(id int) QueryState {
	s.GenreID = max(id, 0)
	s.Page = 1
	return s
}

func (s QueryState) WithSort(sortBy string) QueryState {
	s.SortBy = sortBy
	s.Page = 1
	return s
}

func (s QueryState) WithProviders(ids []int) QueryState {
	s.WatchProviders = slices.Clone(ids)
	s.Page = 1
	return s
}

func (s QueryState) WithRegion(region string) QueryState {
	s.WatchRegion, _ = model.ParseRegion(region)
	s.Page = 1
	return s
}

func (s QueryState) WithRuntime(minutes int) QueryState {
	s.RuntimeLTE = max(minutes, 0)
	s.Page = 1
	return s
}

func (s QueryState) WithQuery(q string) QueryState {
	s.Query = strings.TrimSpace(q)
	s.Page = 1
	return s
}

// WithMediaType switches media type, resets the page and keeps the genre
// only if check accepts it for the new type.
func (s QueryState) WithMediaType(ctx context.Context, mt model.MediaType, check GenreChecker) QueryState {
	s.MediaType = mt
	s.Page = 1
	if s.GenreID != 0 && (check == nil || !check(ctx, mt, s.GenreID)) {
		s.GenreID = 0
	}
	return s
}

// ClampPage returns the state moved to the last page when Page is past
// totalPages. ok is false when no move is needed.
func (s QueryState) ClampPage(totalPages int) (QueryState, bool) {
	if totalPages > 0 && s.Page > totalPages {
		return s.WithPage(totalPages), true
	}
	return s, false
}

// NormalizeSort drops a sort_by value the discover view for mt does not offer.
func (s QueryState) NormalizeSort(mt model.MediaType) QueryState {
	if s.SortBy != "" && !slices.Contains(sortOptions[mt], s.SortBy) {
		s.SortBy = ""
	}
	return s
}

// DiscoverParams converts the state into a TMDB discover request.
func (s QueryState) DiscoverParams() tmdb.DiscoverParams {
	return tmdb.DiscoverParams{
		Page:           tmdb.ClampPage(s.Page),
		GenreID:        s.GenreID,
		SortBy:         s.SortBy,
		WatchProviders: slices.Clone(s.WatchProviders),
		WatchRegion:    s.WatchRegion,
		RuntimeLTE:     s.RuntimeLTE,
	}
}
