package tmdb

import (
	"context"

	"github.com/marquee/marquee-go/internal/cache"
	"github.com/marquee/marquee-go/internal/model"
)

func (c *Client) PersonDetails(ctx context.Context, id int) (*model.PersonDetails, error) {
	var d model.PersonDetails
	err := c.get(ctx, request{
		op: "person details", path: idPath("/person", id, ""),
		ttl: cache.Hours, tags: []string{"people", personTag(id)},
	}, &d)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// PersonCombinedCredits returns the person's movie and TV credits. The same
// title can appear several times, once per role.
func (c *Client) PersonCombinedCredits(ctx context.Context, id int) (*model.PersonCredits, error) {
	var cr model.PersonCredits
	err := c.get(ctx, request{
		op: "person credits", path: idPath("/person", id, "/combined_credits"),
		ttl: cache.Hours, tags: []string{personTag(id)},
	}, &cr)
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

func (c *Client) PopularPeople(ctx context.Context, page int) (*model.Paged[model.Person], error) {
	return getPaged[model.Person](ctx, c, request{
		op: "popular people", path: "/person/popular", query: pageQuery(page),
		ttl: cache.Minutes, tags: []string{"people"},
	})
}

func (c *Client) TrendingPeople(ctx context.Context, window TimeWindow) (*model.Paged[model.Person], error) {
	return getPaged[model.Person](ctx, c, request{
		op: "trending people", path: "/trending/person/" + string(window.orDefault()),
		ttl: cache.Minutes, tags: []string{"people", "trending"},
	})
}
