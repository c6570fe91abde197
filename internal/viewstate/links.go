package viewstate

import (
	"context"
	"slices"
	"strconv"

	"github.com/marquee/marquee-go/internal/model"
)

// Link is a rendered navigation target.
type Link struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Active bool   `json:"active"`
}

var mediaTypeLabels = map[model.MediaType]string{
	model.MediaTypeAll:    "All",
	model.MediaTypeMovie:  "Movies",
	model.MediaTypeTV:     "TV Shows",
	model.MediaTypePerson: "People",
}

// Tabs returns one link per media type. Switching tabs re-checks the genre
// filter against the target type.
func Tabs(ctx context.Context, path string, s QueryState, types []model.MediaType, check GenreChecker) []Link {
	links := make([]Link, len(types))
	for i, mt := range types {
		links[i] = Link{
			Label:  mediaTypeLabels[mt],
			Href:   s.WithMediaType(ctx, mt, check).URL(path),
			Active: s.MediaType == mt,
		}
	}
	return links
}

// GenrePills returns an "All" link followed by one link per genre.
func GenrePills(path string, s QueryState, genres []model.Genre) []Link {
	links := make([]Link, 0, len(genres)+1)
	links = append(links, Link{Label: "All", Href: s.WithGenre(0).URL(path), Active: s.GenreID == 0})
	for _, g := range genres {
		links = append(links, Link{
			Label:  g.Name,
			Href:   s.WithGenre(g.ID).URL(path),
			Active: s.GenreID == g.ID,
		})
	}
	return links
}

// Pager holds previous and next page links; either is empty at the edges.
type Pager struct {
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
	Label      string `json:"label"`
	Prev       string `json:"prev,omitempty"`
	Next       string `json:"next,omitempty"`
}

func Pagination(path string, s QueryState, totalPages int) Pager {
	p := Pager{Page: s.Page, TotalPages: totalPages, Label: pageLabel(s.Page, totalPages)}
	if s.Page > 1 {
		p.Prev = s.WithPage(min(s.Page-1, max(totalPages, 1))).URL(path)
	}
	if s.Page < totalPages {
		p.Next = s.WithPage(s.Page + 1).URL(path)
	}
	return p
}

// pageLabel renders "Page 2 of 7".
func pageLabel(page, totalPages int) string {
	return "Page " + strconv.Itoa(page) + " of " + strconv.Itoa(max(totalPages, 1))
}

var sortLabels = map[string]string{
	"popularity.desc":           "Most popular",
	"vote_average.desc":         "Highest rated",
	"primary_release_date.desc": "Newest",
	"first_air_date.desc":       "Newest",
	"revenue.desc":              "Highest grossing",
}

// SortLinks returns one link per sort option the discover view for mt offers.
func SortLinks(path string, s QueryState, mt model.MediaType) []Link {
	current := s.SortBy
	if current == "" {
		current = defaultSort
	}
	opts := SortOptions(mt)
	links := make([]Link, len(opts))
	for i, opt := range opts {
		links[i] = Link{Label: sortLabels[opt], Href: s.WithSort(opt).URL(path), Active: current == opt}
	}
	return links
}

// RuntimeLinks returns an "Any length" link followed by one per cap in minutes.
func RuntimeLinks(path string, s QueryState, caps []int) []Link {
	links := make([]Link, 0, len(caps)+1)
	links = append(links, Link{Label: "Any length", Href: s.WithRuntime(0).URL(path), Active: s.RuntimeLTE == 0})
	for _, c := range caps {
		links = append(links, Link{
			Label:  "Under " + strconv.Itoa(c) + " min",
			Href:   s.WithRuntime(c).URL(path),
			Active: s.RuntimeLTE == c,
		})
	}
	return links
}

// ProviderHref toggles provider id in the filter. Selecting a provider pins
// region so the link shows the same availability to whoever opens it.
func ProviderHref(path string, s QueryState, id int, region string) string {
	ids := slices.DeleteFunc(slices.Clone(s.WatchProviders), func(p int) bool { return p == id })
	if len(ids) == len(s.WatchProviders) {
		ids = append(ids, id)
	}
	next := s.WithProviders(ids)
	if len(ids) > 0 && next.WatchRegion == "" && region != "" {
		next = next.WithRegion(region)
	}
	return next.URL(path)
}
