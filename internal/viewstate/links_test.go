package viewstate

import (
	"context"
	"testing"

	"github.com/marquee/marquee-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTabsDropInvalidGenre(t *testing.T) {
	check := func(ctx context.Context, mt model.MediaType, id int) bool { return mt == model.MediaTypeMovie }
	s := QueryState{Page: 3, GenreID: 28, MediaType: model.MediaTypeMovie, Query: "dune"}

	tabs := Tabs(context.Background(), "/search", s, []model.MediaType{model.MediaTypeMovie, model.MediaTypeTV}, check)
	require.Len(t, tabs, 2)
	assert.Equal(t, Link{Label: "Movies", Href: "/search?genreId=28&mediaType=movie&q=dune", Active: true}, tabs[0])
	assert.Equal(t, Link{Label: "TV Shows", Href: "/search?mediaType=tv&q=dune"}, tabs[1])
}

func TestGenrePills(t *testing.T) {
	s := QueryState{Page: 5, GenreID: 35}
	pills := GenrePills("/discover/movie", s, []model.Genre{{ID: 28, Name: "Action"}, {ID: 35, Name: "Comedy"}})

	require.Len(t, pills, 3)
	assert.Equal(t, "/discover/movie", pills[0].Href)
	assert.False(t, pills[0].Active)
	assert.Equal(t, "/discover/movie?genreId=28", pills[1].Href)
	assert.True(t, pills[2].Active)
}

func TestPagination(t *testing.T) {
	s := QueryState{Page: 2, GenreID: 12}
	p := Pagination("/discover/tv", s, 3)
	assert.Equal(t, "/discover/tv?genreId=12", p.Prev)
	assert.Equal(t, "/discover/tv?genreId=12&page=3", p.Next)
	assert.Equal(t, "Page 2 of 3", p.Label)

	first := Pagination("/discover/tv", QueryState{Page: 1}, 1)
	assert.Empty(t, first.Prev)
	assert.Empty(t, first.Next)
	assert.Equal(t, "Page 1 of 1", Pagination("/x", QueryState{Page: 1}, 0).Label)
}

func TestSortLinks(t *testing.T) {
	s := QueryState{Page: 4, GenreID: 18}
	links := SortLinks("/discover/tv", s, model.MediaTypeTV)

	require.Len(t, links, 3)
	assert.Equal(t, Link{Label: "Most popular", Href: "/discover/tv?genreId=18", Active: true}, links[0])
	assert.Equal(t, "/discover/tv?genreId=18&sort_by=first_air_date.desc", links[2].Href)
}

func TestRuntimeLinks(t *testing.T) {
	s := QueryState{Page: 2, RuntimeLTE: 90}
	links := RuntimeLinks("/discover/movie", s, []int{90, 120})

	require.Len(t, links, 3)
	assert.Equal(t, "/discover/movie", links[0].Href)
	assert.True(t, links[1].Active)
	assert.Equal(t, "Under 120 min", links[2].Label)
	assert.Equal(t, "/discover/movie?with_runtime_lte=120", links[2].Href)
}

func TestProviderHref(t *testing.T) {
	s := QueryState{Page: 3, WatchProviders: []int{8}}

	assert.Equal(t, "/discover/movie?watch_region=GB&with_watch_providers=8%7C9", ProviderHref("/discover/movie", s, 9, "gb"))
	assert.Equal(t, "/discover/movie", ProviderHref("/discover/movie", s, 8, "GB"), "removing the last provider leaves region unpinned")
	assert.Equal(t, []int{8}, s.WatchProviders, "state is not mutated")
}
