package service

import (
	"context"
	"log/slog"

	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/tmdb"
	"github.com/sourcegraph/conc/pool"
)

const (
	// PageSize is the number of stored resources shown per page.
	PageSize        = 20
	hydrateParallel = 8
)

// ResourceRef identifies one external resource.
type ResourceRef struct {
	ID   int
	Kind model.MediaType
}

// HydratedItem is a stored reference with its TMDB data. Resource is nil when
// the lookup failed; the item is still listed.
type HydratedItem struct {
	ResourceID   int             `json:"resourceId"`
	ResourceType model.MediaType `json:"resourceType"`
	Resource     *model.Resource `json:"resource,omitempty"`
	ImageURL     string          `json:"imageUrl,omitempty"`
}

// hydrate fetches every ref concurrently. Individual failures are logged and
// leave Resource nil.
func hydrate(ctx context.Context, client *tmdb.Client, refs []ResourceRef) []HydratedItem {
	items := make([]HydratedItem, len(refs))
	p := pool.New().WithMaxGoroutines(hydrateParallel)
	for i, ref := range refs {
		items[i] = HydratedItem{ResourceID: ref.ID, ResourceType: ref.Kind}
		p.Go(func() {
			res, err := fetchResource(ctx, client, ref)
			if err != nil {
				slog.Warn("resource lookup failed", "kind", ref.Kind, "id", ref.ID, "error", err)
				return
			}
			items[i].Resource = res
			items[i].ImageURL = ResourceImage(res)
		})
	}
	p.Wait()
	return items
}

func fetchResource(ctx context.Context, client *tmdb.Client, ref ResourceRef) (*model.Resource, error) {
	switch ref.Kind {
	case model.MediaTypeMovie:
		d, err := client.MovieDetails(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return &model.Resource{Kind: ref.Kind, Movie: &d.Movie}, nil
	case model.MediaTypeTV:
		d, err := client.TvDetails(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return &model.Resource{Kind: ref.Kind, TV: &d.TvShow}, nil
	case model.MediaTypePerson:
		d, err := client.PersonDetails(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return &model.Resource{Kind: ref.Kind, Person: &d.Person}, nil
	}
	return nil, ErrInvalidMediaType
}

// ResourceImage returns the poster, or profile for people, of res.
func ResourceImage(res *model.Resource) string {
	switch {
	case res == nil:
		return ""
	case res.Movie != nil:
		return tmdb.PosterURL(res.Movie.PosterPath, "")
	case res.TV != nil:
		return tmdb.PosterURL(res.TV.PosterPath, "")
	case res.Person != nil:
		return tmdb.ProfileURL(res.Person.ProfilePath, "")
	}
	return ""
}

// totalPages returns the page count for total items, at least zero.
func totalPages(total int) int {
	return (total + PageSize - 1) / PageSize
}

func pageOffset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}
