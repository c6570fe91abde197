package tmdb

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/marquee/marquee-go/internal/cache"
	"github.com/marquee/marquee-go/internal/model"
)

// Search queries one media type, or every type when mediaType is all.
// Results of unknown kinds are dropped.
func (c *Client) Search(ctx context.Context, query string, mediaType model.MediaType, page int) (*model.Paged[model.Resource], error) {
	q := pageQuery(page)
	q.Set("query", query)
	q.Set("include_adult", "false")

	kind := mediaType
	if !kind.Listable() {
		kind = model.MediaTypeAll
	}
	path := "/search/" + string(kind)
	if kind == model.MediaTypeAll {
		path = "/search/multi"
	}

	raw, err := getPaged[json.RawMessage](ctx, c, request{
		op: "search results", path: path, query: q,
		ttl: cache.Minutes, tags: []string{"search"},
	})
	if err != nil {
		return nil, err
	}

	out := &model.Paged[model.Resource]{
		Page:         raw.Page,
		TotalPages:   raw.TotalPages,
		TotalResults: raw.TotalResults,
		Results:      make([]model.Resource, 0, len(raw.Results)),
	}
	for _, item := range raw.Results {
		res, ok := decodeResource(item, kind)
		if !ok {
			continue
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}

// decodeResource validates one search result. For single-type searches the
// kind is implied; multi search results carry media_type.
func decodeResource(data json.RawMessage, kind model.MediaType) (model.Resource, bool) {
	if kind == model.MediaTypeAll {
		var probe struct {
			MediaType model.MediaType `json:"media_type"`
		}
		if err := json.Unmarshal(data, &probe); err != nil {
			return model.Resource{}, false
		}
		kind = probe.MediaType
	}

	res := model.Resource{Kind: kind}
	var err error
	switch kind {
	case model.MediaTypeMovie:
		res.Movie = &model.Movie{}
		err = json.Unmarshal(data, res.Movie)
	case model.MediaTypeTV:
		res.TV = &model.TvShow{}
		err = json.Unmarshal(data, res.TV)
	case model.MediaTypePerson:
		res.Person = &model.Person{}
		err = json.Unmarshal(data, res.Person)
	default:
		return model.Resource{}, false
	}
	if err != nil {
		slog.Debug("dropping malformed search result", "kind", kind, "error", err)
		return model.Resource{}, false
	}
	return res, true
}
