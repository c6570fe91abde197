package tmdb

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/marquee/marquee-go/internal/cache"
	"github.com/marquee/marquee-go/internal/model"
	"github.com/sourcegraph/conc/pool"
)

const defaultSort = "popularity.desc"

// DiscoverParams filters /discover results. Zero values are omitted.
type DiscoverParams struct {
	Page           int
	GenreID        int
	SortBy         string
	WatchProviders []int
	WatchRegion    string
	RuntimeLTE     int
}

func (p DiscoverParams) values() url.Values {
	q := pageQuery(p.Page)
	q.Set("include_adult", "false")
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = defaultSort
	}
	q.Set("sort_by", sortBy)
	if p.GenreID > 0 {
		q.Set("with_genres", strconv.Itoa(p.GenreID))
	}
	if len(p.WatchProviders) > 0 {
		ids := make([]string, len(p.WatchProviders))
		for i, id := range p.WatchProviders {
			ids[i] = strconv.Itoa(id)
		}
		q.Set("with_watch_providers", strings.Join(ids, "|"))
	}
	if p.WatchRegion != "" {
		q.Set("watch_region", p.WatchRegion)
	}
	if p.RuntimeLTE > 0 {
		q.Set("with_runtime.lte", strconv.Itoa(p.RuntimeLTE))
	}
	return q
}

func (c *Client) DiscoverMovies(ctx context.Context, p DiscoverParams) (*model.Paged[model.Movie], error) {
	return getPaged[model.Movie](ctx, c, request{
		op: "discover movies", path: "/discover/movie", query: p.values(),
		ttl: cache.Minutes, tags: []string{"movies", "discover"},
	})
}

func (c *Client) TrendingMovies(ctx context.Context, window TimeWindow) (*model.Paged[model.Movie], error) {
	return getPaged[model.Movie](ctx, c, request{
		op: "trending movies", path: "/trending/movie/" + string(window.orDefault()),
		ttl: cache.Minutes, tags: []string{"movies", "trending"},
	})
}

func (c *Client) PopularMovies(ctx context.Context, page int) (*model.Paged[model.Movie], error) {
	return c.movieList(ctx, "popular movies", "/movie/popular", page)
}

func (c *Client) TopRatedMovies(ctx context.Context, page int) (*model.Paged[model.Movie], error) {
	return c.movieList(ctx, "top rated movies", "/movie/top_rated", page)
}

func (c *Client) NowPlayingMovies(ctx context.Context, page int) (*model.Paged[model.Movie], error) {
	return c.movieList(ctx, "now playing movies", "/movie/now_playing", page)
}

// UpcomingMovies returns upcoming titles minus those already on the first
// page of now playing.
func (c *Client) UpcomingMovies(ctx context.Context, page int) (*model.Paged[model.Movie], error) {
	var upcoming, nowPlaying *model.Paged[model.Movie]

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) (err error) {
		upcoming, err = c.movieList(ctx, "upcoming movies", "/movie/upcoming", page)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		nowPlaying, err = c.NowPlayingMovies(ctx, 1)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	playing := make(map[int]bool, len(nowPlaying.Results))
	for _, m := range nowPlaying.Results {
		playing[m.ID] = true
	}
	filtered := upcoming.Results[:0:0]
	for _, m := range upcoming.Results {
		if !playing[m.ID] {
			filtered = append(filtered, m)
		}
	}
	upcoming.Results = filtered
	return upcoming, nil
}

func (c *Client) movieList(ctx context.Context, op, path string, page int) (*model.Paged[model.Movie], error) {
	return getPaged[model.Movie](ctx, c, request{
		op: op, path: path, query: pageQuery(page),
		ttl: cache.Minutes, tags: []string{"movies"},
	})
}

func (c *Client) MovieDetails(ctx context.Context, id int) (*model.MovieDetails, error) {
	var d model.MovieDetails
	err := c.get(ctx, request{
		op: "movie details", path: idPath("/movie", id, ""),
		ttl: cache.Hours, tags: []string{"movies", movieTag(id)},
	}, &d)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) MovieCredits(ctx context.Context, id int) (*model.Credits, error) {
	var cr model.Credits
	err := c.get(ctx, request{
		op: "movie credits", path: idPath("/movie", id, "/credits"),
		ttl: cache.Hours, tags: []string{movieTag(id)},
	}, &cr)
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

func (c *Client) MovieVideos(ctx context.Context, id int) ([]model.Video, error) {
	return c.videos(ctx, "movie videos", idPath("/movie", id, "/videos"), movieTag(id))
}

// MovieWatchProviders returns availability keyed by region code.
func (c *Client) MovieWatchProviders(ctx context.Context, id int) (map[string]model.ProviderAvailability, error) {
	return c.titleProviders(ctx, "movie watch providers", idPath("/movie", id, "/watch/providers"), movieTag(id))
}

func (c *Client) MovieRecommendations(ctx context.Context, id int) (*model.Paged[model.Movie], error) {
	return getPaged[model.Movie](ctx, c, request{
		op: "movie recommendations", path: idPath("/movie", id, "/recommendations"), query: pageQuery(1),
		ttl: cache.Hours, tags: []string{movieTag(id)},
	})
}

func (c *Client) MovieGenres(ctx context.Context) ([]model.Genre, error) {
	return c.genres(ctx, "movie genres", "/genre/movie/list")
}

func (c *Client) genres(ctx context.Context, op, path string) ([]model.Genre, error) {
	var res struct {
		Genres []model.Genre `json:"genres"`
	}
	if err := c.get(ctx, request{op: op, path: path, ttl: cache.Days, tags: []string{"genres"}}, &res); err != nil {
		return nil, err
	}
	return res.Genres, nil
}

func (c *Client) videos(ctx context.Context, op, path, tag string) ([]model.Video, error) {
	var res struct {
		Results []model.Video `json:"results"`
	}
	if err := c.get(ctx, request{op: op, path: path, ttl: cache.Hours, tags: []string{tag}}, &res); err != nil {
		return nil, err
	}
	return res.Results, nil
}

func (c *Client) titleProviders(ctx context.Context, op, path, tag string) (map[string]model.ProviderAvailability, error) {
	var res struct {
		Results map[string]model.ProviderAvailability `json:"results"`
	}
	if err := c.get(ctx, request{op: op, path: path, ttl: cache.Hours, tags: []string{"providers", tag}}, &res); err != nil {
		return nil, err
	}
	if res.Results == nil {
		res.Results = map[string]model.ProviderAvailability{}
	}
	return res.Results, nil
}

func movieTag(id int) string  { return "movie:" + strconv.Itoa(id) }
func tvTag(id int) string     { return "tv:" + strconv.Itoa(id) }
func personTag(id int) string { return "person:" + strconv.Itoa(id) }
