package tmdb

import (
	"context"

	"github.com/marquee/marquee-go/internal/cache"
	"github.com/marquee/marquee-go/internal/model"
)

func (c *Client) DiscoverTv(ctx context.Context, p DiscoverParams) (*model.Paged[model.TvShow], error) {
	return getPaged[model.TvShow](ctx, c, request{
		op: "discover tv", path: "/discover/tv", query: p.values(),
		ttl: cache.Minutes, tags: []string{"tv", "discover"},
	})
}

func (c *Client) TrendingTv(ctx context.Context, window TimeWindow) (*model.Paged[model.TvShow], error) {
	return getPaged[model.TvShow](ctx, c, request{
		op: "trending tv", path: "/trending/tv/" + string(window.orDefault()),
		ttl: cache.Minutes, tags: []string{"tv", "trending"},
	})
}

func (c *Client) PopularTv(ctx context.Context, page int) (*model.Paged[model.TvShow], error) {
	return c.tvList(ctx, "popular tv", "/tv/popular", page)
}

func (c *Client) TopRatedTv(ctx context.Context, page int) (*model.Paged[model.TvShow], error) {
	return c.tvList(ctx, "top rated tv", "/tv/top_rated", page)
}

func (c *Client) AiringTodayTv(ctx context.Context, page int) (*model.Paged[model.TvShow], error) {
	return c.tvList(ctx, "airing today tv", "/tv/airing_today", page)
}

func (c *Client) OnTheAirTv(ctx context.Context, page int) (*model.Paged[model.TvShow], error) {
	return c.tvList(ctx, "on the air tv", "/tv/on_the_air", page)
}

func (c *Client) tvList(ctx context.Context, op, path string, page int) (*model.Paged[model.TvShow], error) {
	return getPaged[model.TvShow](ctx, c, request{
		op: op, path: path, query: pageQuery(page),
		ttl: cache.Minutes, tags: []string{"tv"},
	})
}

func (c *Client) TvDetails(ctx context.Context, id int) (*model.TvDetails, error) {
	var d model.TvDetails
	err := c.get(ctx, request{
		op: "tv details", path: idPath("/tv", id, ""),
		ttl: cache.Hours, tags: []string{"tv", tvTag(id)},
	}, &d)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// TvCredits returns the aggregate credits across every season.
func (c *Client) TvCredits(ctx context.Context, id int) (*model.Credits, error) {
	var cr model.Credits
	err := c.get(ctx, request{
		op: "tv credits", path: idPath("/tv", id, "/aggregate_credits"),
		ttl: cache.Hours, tags: []string{tvTag(id)},
	}, &cr)
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

func (c *Client) TvVideos(ctx context.Context, id int) ([]model.Video, error) {
	return c.videos(ctx, "tv videos", idPath("/tv", id, "/videos"), tvTag(id))
}

// TvWatchProviders returns availability keyed by region code.
func (c *Client) TvWatchProviders(ctx context.Context, id int) (map[string]model.ProviderAvailability, error) {
	return c.titleProviders(ctx, "tv watch providers", idPath("/tv", id, "/watch/providers"), tvTag(id))
}

func (c *Client) TvRecommendations(ctx context.Context, id int) (*model.Paged[model.TvShow], error) {
	return getPaged[model.TvShow](ctx, c, request{
		op: "tv recommendations", path: idPath("/tv", id, "/recommendations"), query: pageQuery(1),
		ttl: cache.Hours, tags: []string{tvTag(id)},
	})
}

func (c *Client) TvGenres(ctx context.Context) ([]model.Genre, error) {
	return c.genres(ctx, "tv genres", "/genre/tv/list")
}
