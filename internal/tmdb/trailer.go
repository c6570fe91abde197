package tmdb

import (
	"context"

	"github.com/marquee/marquee-go/internal/model"
)

// SelectMovieTrailer returns the first YouTube trailer, or nil.
func SelectMovieTrailer(videos []model.Video) *model.Video {
	for i := range videos {
		if videos[i].Site == "YouTube" && videos[i].Type == "Trailer" {
			return &videos[i]
		}
	}
	return nil
}

// SelectTvTrailer returns the first YouTube or Vimeo trailer, teaser or
// opening credits clip, or nil.
func SelectTvTrailer(videos []model.Video) *model.Video {
	for i := range videos {
		v := &videos[i]
		if v.Site != "YouTube" && v.Site != "Vimeo" {
			continue
		}
		switch v.Type {
		case "Trailer", "Teaser", "Opening Credits":
			return v
		}
	}
	return nil
}

// MovieTrailer returns the movie's trailer, or nil when it has none.
func (c *Client) MovieTrailer(ctx context.Context, id int) (*model.Video, error) {
	videos, err := c.MovieVideos(ctx, id)
	if err != nil {
		return nil, err
	}
	return SelectMovieTrailer(videos), nil
}

// TvTrailer returns the show's trailer, or nil when it has none.
func (c *Client) TvTrailer(ctx context.Context, id int) (*model.Video, error) {
	videos, err := c.TvVideos(ctx, id)
	if err != nil {
		return nil, err
	}
	return SelectTvTrailer(videos), nil
}
