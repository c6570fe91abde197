package tmdb

import (
	"context"
	"net/url"

	"github.com/marquee/marquee-go/internal/cache"
	"github.com/marquee/marquee-go/internal/model"
)

// WatchProviders lists the streaming providers TMDB knows for mediaType
// (movie or tv) in region.
func (c *Client) WatchProviders(ctx context.Context, mediaType model.MediaType, region string) ([]model.WatchProvider, error) {
	kind := model.MediaTypeMovie
	if mediaType == model.MediaTypeTV {
		kind = model.MediaTypeTV
	}
	q := url.Values{}
	if region != "" {
		q.Set("watch_region", region)
	}

	var res struct {
		Results []model.WatchProvider `json:"results"`
	}
	err := c.get(ctx, request{
		op: "watch providers", path: "/watch/providers/" + string(kind), query: q,
		ttl: cache.Days, tags: []string{"providers"},
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Results, nil
}

// Regions lists the regions with watch provider data.
func (c *Client) Regions(ctx context.Context) ([]model.Region, error) {
	var res struct {
		Results []model.Region `json:"results"`
	}
	err := c.get(ctx, request{
		op: "regions", path: "/watch/providers/regions",
		ttl: cache.Days, tags: []string{"providers"},
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Results, nil
}
