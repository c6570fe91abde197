package service

import (
	"context"
	"errors"
	"testing"

	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/repository"
	"github.com/marquee/marquee-go/internal/testutil"
	"github.com/marquee/marquee-go/internal/tmdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providerIDs(ps []model.WatchProvider) []int {
	ids := make([]int, len(ps))
	for i, p := range ps {
		ids[i] = p.ProviderID
	}
	return ids
}

func providers(ids ...int) []model.WatchProvider {
	out := make([]model.WatchProvider, len(ids))
	for i, id := range ids {
		out[i] = model.WatchProvider{ProviderID: id, DisplayPriority: i}
	}
	return out
}

func TestSelectProviders(t *testing.T) {
	tests := []struct {
		name      string
		available []model.WatchProvider
		preferred []int
		want      []int
	}{
		{
			name:      "preferences intersect in available order",
			available: providers(2, 8, 337, 100),
			preferred: []int{337, 8, 999},
			want:      []int{8, 337},
		},
		{
			name:      "preferences with nothing available",
			available: providers(2, 3),
			preferred: []int{8},
			want:      []int{},
		},
		{
			name:      "majors first in allowlist order",
			available: providers(2, 337, 3, 8, 15),
			want:      []int{8, 337, 15, 2, 3},
		},
		{
			name:      "default capped at twelve",
			available: providers(8, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111, 112, 113),
			want:      []int{8, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, providerIDs(selectProviders(tt.available, tt.preferred)))
		})
	}
}

func TestSelectProvidersUsesPreferencesAndPriority(t *testing.T) {
	db := testutil.NewDB(t)
	prefs := NewPreferenceService(repository.NewUserRepository(db), repository.NewPreferenceRepository(db))
	client := fakeTMDB(t, map[string]string{
		"/watch/providers/movie": `{"results":[
			{"provider_id":8,"provider_name":"Netflix","display_priority":1},
			{"provider_id":9,"provider_name":"Prime Video","display_priority":3,"display_priorities":{"DE":80}},
			{"provider_id":500,"provider_name":"Niche","display_priority":51}
		]}`,
	})
	svc := NewCatalogService(client, prefs)
	ctx := context.Background()
	user := createUser(t, db, "a@example.com")

	got, err := svc.SelectProviders(ctx, "", model.MediaTypeMovie, "US")
	require.NoError(t, err)
	assert.Equal(t, []int{8, 9}, providerIDs(got))

	got, err = svc.SelectProviders(ctx, "", model.MediaTypeMovie, "DE")
	require.NoError(t, err)
	assert.Equal(t, []int{8}, providerIDs(got))

	require.NoError(t, prefs.SetProviders(ctx, user.ID, []int{9, 500}))
	got, err = svc.SelectProviders(ctx, user.ID, model.MediaTypeMovie, "US")
	require.NoError(t, err)
	assert.Equal(t, []int{9}, providerIDs(got))

	_, err = svc.SelectProviders(ctx, "", model.MediaTypePerson, "US")
	assert.ErrorIs(t, err, ErrInvalidMediaType)
}

func TestCheckGenre(t *testing.T) {
	client := fakeTMDB(t, map[string]string{
		"/genre/movie/list": `{"genres":[{"id":28,"name":"Action"},{"id":35,"name":"Comedy"}]}`,
	})
	svc := NewCatalogService(client, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		mt       model.MediaType
		genre    int
		valid    bool
		fallback bool
	}{
		{"no genre", model.MediaTypePerson, 0, true, false},
		{"known movie genre", model.MediaTypeMovie, 28, true, false},
		{"unknown movie genre", model.MediaTypeMovie, 10765, false, false},
		{"person never has genres", model.MediaTypePerson, 28, false, false},
		{"all never has genres", model.MediaTypeAll, 28, false, false},
		{"genre list unavailable fails open", model.MediaTypeTV, 10765, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.CheckGenre(ctx, tt.mt, tt.genre)
			assert.Equal(t, tt.valid, got.Value)
			assert.Equal(t, tt.fallback, got.Fallback)
			if tt.fallback {
				assert.ErrorIs(t, got.Err, tmdb.ErrUpstream)
			}
		})
	}
}

func TestHomeDedupesUpcoming(t *testing.T) {
	client := fakeTMDB(t, map[string]string{
		"/trending/movie/day": `{"page":1,"results":[{"id":1,"title":"A"}],"total_pages":1,"total_results":1}`,
		"/trending/tv/day":    `{"page":1,"results":[{"id":2,"name":"B"}],"total_pages":1,"total_results":1}`,
		"/movie/now_playing":  `{"page":1,"results":[{"id":10,"title":"Playing"}],"total_pages":1,"total_results":1}`,
		"/movie/upcoming":     `{"page":1,"results":[{"id":10,"title":"Playing"},{"id":11,"title":"Soon"}],"total_pages":1,"total_results":2}`,
		"/movie/top_rated":    `{"page":1,"results":[{"id":3,"title":"Best"}],"total_pages":1,"total_results":1}`,
	})
	svc := NewCatalogService(client, nil)

	home, err := svc.Home(context.Background())
	require.NoError(t, err)
	require.Len(t, home.Upcoming, 1)
	assert.Equal(t, 11, home.Upcoming[0].ID)
	assert.Len(t, home.NowPlaying, 1)
	assert.Len(t, home.TrendingTv, 1)
	assert.Len(t, home.TopRated, 1)
}

func TestHomeFailsWhenSectionFails(t *testing.T) {
	client := fakeTMDB(t, map[string]string{
		"/trending/movie/day": `{"page":1,"results":[],"total_pages":1,"total_results":0}`,
	})
	svc := NewCatalogService(client, nil)

	_, err := svc.Home(context.Background())
	assert.ErrorIs(t, err, tmdb.ErrUpstream)
}

func TestMovieViewSkipsOptionalFailures(t *testing.T) {
	client := fakeTMDB(t, map[string]string{
		"/movie/550": `{"id":550,"title":"Fight Club","runtime":139}`,
		"/movie/550/watch/providers": `{"results":{
			"US":{"link":"https://example.test/us","flatrate":[{"provider_id":8,"provider_name":"Netflix"}]},
			"GB":{"link":"https://example.test/gb"}
		}}`,
		"/movie/550/videos": `{"results":[
			{"key":"teaser","site":"YouTube","type":"Teaser"},
			{"key":"trailer","site":"YouTube","type":"Trailer"}
		]}`,
		"/movie/550/recommendations": `{"page":1,"results":[{"id":680,"title":"Pulp Fiction"}],"total_pages":1,"total_results":1}`,
	})
	svc := NewCatalogService(client, nil)

	view, err := svc.MovieView(context.Background(), 550, "US")
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", view.Details.Title)
	assert.Nil(t, view.Credits, "credits 404 is skipped")
	require.NotNil(t, view.Providers)
	assert.Equal(t, "https://example.test/us", view.Providers.Link)
	require.NotNil(t, view.Trailer)
	assert.Equal(t, "trailer", view.Trailer.Key)
	assert.Len(t, view.Recommendations, 1)

	view, err = svc.MovieView(context.Background(), 550, "JP")
	require.NoError(t, err)
	assert.Nil(t, view.Providers)
}

func TestMovieViewNotFound(t *testing.T) {
	svc := NewCatalogService(fakeTMDB(t, nil), nil)

	_, err := svc.MovieView(context.Background(), 1, "US")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTvViewUpstreamError(t *testing.T) {
	client := testutil.NewTMDB(t, testutil.Status(503))
	svc := NewCatalogService(client, nil)

	_, err := svc.TvView(context.Background(), 1399, "US")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tmdb.ErrUpstream))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestPersonViewDedupesCredits(t *testing.T) {
	client := fakeTMDB(t, map[string]string{
		"/person/287": `{"id":287,"name":"Brad Pitt"}`,
		"/person/287/combined_credits": `{"cast":[
			{"id":1,"media_type":"movie","title":"Low","popularity":5,"release_date":"2001-01-01"},
			{"id":2,"media_type":"movie","title":"High","popularity":50,"release_date":"1999-01-01"},
			{"id":1,"media_type":"movie","title":"Low again","popularity":5},
			{"id":3,"media_type":"tv","name":"Tie newer","popularity":5,"first_air_date":"2010-01-01"}
		],"crew":[]}`,
	})
	svc := NewCatalogService(client, nil)

	view, err := svc.PersonView(context.Background(), 287)
	require.NoError(t, err)
	assert.Equal(t, "Brad Pitt", view.Details.Name)

	ids := make([]int, len(view.Cast))
	for i, c := range view.Cast {
		ids[i] = c.ID
	}
	assert.Equal(t, []int{2, 3, 1}, ids)
	assert.Equal(t, "Low", view.Cast[2].Title, "first occurrence wins")
	assert.Empty(t, view.Crew)
}

func TestSearchBlankQuery(t *testing.T) {
	svc := NewCatalogService(nil, nil)

	page, err := svc.Search(context.Background(), "   ", model.MediaTypeMovie, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Empty(t, page.Results)
}

func TestDiscoverWrapsResources(t *testing.T) {
	client := fakeTMDB(t, map[string]string{
		"/discover/tv": `{"page":2,"results":[{"id":1399,"name":"Game of Thrones"}],"total_pages":900,"total_results":18000}`,
	})
	svc := NewCatalogService(client, nil)

	page, err := svc.Discover(context.Background(), model.MediaTypeTV, tmdb.DiscoverParams{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, tmdb.MaxPages, page.TotalPages)
	require.Len(t, page.Results, 1)
	assert.Equal(t, model.MediaTypeTV, page.Results[0].Kind)
	assert.Equal(t, "Game of Thrones", page.Results[0].Title())

	_, err = svc.Discover(context.Background(), model.MediaTypePerson, tmdb.DiscoverParams{})
	assert.ErrorIs(t, err, ErrInvalidMediaType)
}

func TestBrowse(t *testing.T) {
	client := fakeTMDB(t, map[string]string{
		"/person/popular": `{"page":1,"results":[{"id":287,"name":"Brad Pitt","profile_path":"/brad.jpg"}],"total_pages":1,"total_results":1}`,
	})
	svc := NewCatalogService(client, nil)

	page, err := svc.Browse(context.Background(), "popular-people", 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Brad Pitt", page.Results[0].Title())
	assert.Equal(t, "https://image.tmdb.org/t/p/w185/brad.jpg", ResourceImage(&page.Results[0]))

	_, err = svc.Browse(context.Background(), "nope", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Browse(context.Background(), "popular-tv", 1)
	assert.ErrorIs(t, err, tmdb.ErrUpstream)
}

func TestResourceImageWithoutPath(t *testing.T) {
	assert.Empty(t, ResourceImage(nil))
	assert.Empty(t, ResourceImage(&model.Resource{Kind: model.MediaTypeMovie, Movie: &model.Movie{ID: 1}}))
}
