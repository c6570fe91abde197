package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/tmdb"
	"github.com/sourcegraph/conc/pool"
)

const (
	// maxProviderPriority drops long-tail providers TMDB ranks low in a region.
	maxProviderPriority = 50
	maxDefaultProviders = 12
)

// majorProviders are shown first when a user has no provider preferences:
// Netflix, Apple TV+, Disney+, Hulu, Max, Apple TV, Paramount+, Peacock.
var majorProviders = []int{8, 9, 337, 15, 1899, 350, 531, 386}

// HomeView is the landing page data.
type HomeView struct {
	TrendingMovies []model.Movie  `json:"trendingMovies"`
	TrendingTv     []model.TvShow `json:"trendingTv"`
	NowPlaying     []model.Movie  `json:"nowPlaying"`
	Upcoming       []model.Movie  `json:"upcoming"`
	TopRated       []model.Movie  `json:"topRated"`
}

// MovieView bundles a movie detail page. Only Details is guaranteed; the
// rest is omitted when its lookup fails.
type MovieView struct {
	Details         *model.MovieDetails         `json:"details"`
	Credits         *model.Credits              `json:"credits,omitempty"`
	Providers       *model.ProviderAvailability `json:"providers,omitempty"`
	Trailer         *model.Video                `json:"trailer,omitempty"`
	Recommendations []model.Movie               `json:"recommendations"`
	Region          string                      `json:"region"`
	PosterURL       string                      `json:"posterUrl,omitempty"`
	BackdropURL     string                      `json:"backdropUrl,omitempty"`
}

// TvView bundles a TV detail page.
type TvView struct {
	Details         *model.TvDetails            `json:"details"`
	Credits         *model.Credits              `json:"credits,omitempty"`
	Providers       *model.ProviderAvailability `json:"providers,omitempty"`
	Trailer         *model.Video                `json:"trailer,omitempty"`
	Recommendations []model.TvShow              `json:"recommendations"`
	Region          string                      `json:"region"`
	PosterURL       string                      `json:"posterUrl,omitempty"`
	BackdropURL     string                      `json:"backdropUrl,omitempty"`
}

// PersonView bundles a person page. Credits are deduplicated and sorted by
// popularity.
type PersonView struct {
	Details    *model.PersonDetails   `json:"details"`
	Cast       []model.CombinedCredit `json:"cast"`
	Crew       []model.CombinedCredit `json:"crew"`
	ProfileURL string                 `json:"profileUrl,omitempty"`
}

// CatalogService reads TMDB data for browsing views.
type CatalogService struct {
	tmdb  *tmdb.Client
	prefs *PreferenceService
}

func NewCatalogService(client *tmdb.Client, prefs *PreferenceService) *CatalogService {
	return &CatalogService{tmdb: client, prefs: prefs}
}

// Genres returns the genre list for movie or tv.
func (s *CatalogService) Genres(ctx context.Context, mt model.MediaType) ([]model.Genre, error) {
	switch mt {
	case model.MediaTypeMovie:
		return s.tmdb.MovieGenres(ctx)
	case model.MediaTypeTV:
		return s.tmdb.TvGenres(ctx)
	}
	return nil, ErrInvalidMediaType
}

// CheckGenre reports whether genreID applies to mt. Zero means no filter and
// is always valid. If the genre list cannot be loaded the genre is assumed
// valid so navigation is never blocked.
func (s *CatalogService) CheckGenre(ctx context.Context, mt model.MediaType, genreID int) Resolved[bool] {
	if genreID == 0 {
		return resolved(true)
	}
	if !mt.Watchable() {
		return resolved(false)
	}
	genres, err := s.Genres(ctx, mt)
	if err != nil {
		slog.Warn("genre check failed, keeping filter", "media_type", mt, "genre_id", genreID, "error", err)
		return fallback(true, err)
	}
	return resolved(slices.ContainsFunc(genres, func(g model.Genre) bool { return g.ID == genreID }))
}

// Regions returns the watch-provider regions sorted by English name.
func (s *CatalogService) Regions(ctx context.Context) ([]model.Region, error) {
	regions, err := s.tmdb.Regions(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(regions, func(a, b model.Region) int {
		return strings.Compare(a.EnglishName, b.EnglishName)
	})
	return regions, nil
}

// AvailableProviders returns the providers TMDB lists for mt in region,
// excluding low-priority ones.
func (s *CatalogService) AvailableProviders(ctx context.Context, mt model.MediaType, region string) ([]model.WatchProvider, error) {
	if !mt.Watchable() {
		return nil, ErrInvalidMediaType
	}
	all, err := s.tmdb.WatchProviders(ctx, mt, region)
	if err != nil {
		return nil, err
	}
	out := make([]model.WatchProvider, 0, len(all))
	for _, p := range all {
		if p.PriorityIn(region) <= maxProviderPriority {
			out = append(out, p)
		}
	}
	return out, nil
}

// SelectProviders picks the providers to offer as filters. A user with
// preferences gets those available in region; everyone else gets the major
// providers first and then the rest, up to maxDefaultProviders.
func (s *CatalogService) SelectProviders(ctx context.Context, userID string, mt model.MediaType, region string) ([]model.WatchProvider, error) {
	available, err := s.AvailableProviders(ctx, mt, region)
	if err != nil {
		return nil, err
	}

	var preferred []int
	if userID != "" && s.prefs != nil {
		preferred, err = s.prefs.Providers(ctx, userID)
		if err != nil {
			slog.Warn("provider preferences unavailable", "user_id", userID, "error", err)
			preferred = nil
		}
	}
	return selectProviders(available, preferred), nil
}

func selectProviders(available []model.WatchProvider, preferred []int) []model.WatchProvider {
	if len(preferred) > 0 {
		out := make([]model.WatchProvider, 0, len(preferred))
		for _, p := range available {
			if slices.Contains(preferred, p.ProviderID) {
				out = append(out, p)
			}
		}
		return out
	}

	out := make([]model.WatchProvider, 0, maxDefaultProviders)
	for _, id := range majorProviders {
		if i := slices.IndexFunc(available, func(p model.WatchProvider) bool { return p.ProviderID == id }); i >= 0 {
			out = append(out, available[i])
		}
	}
	for _, p := range available {
		if !slices.Contains(majorProviders, p.ProviderID) {
			out = append(out, p)
		}
	}
	if len(out) > maxDefaultProviders {
		out = out[:maxDefaultProviders]
	}
	return out
}

// Home loads the landing page sections concurrently. Any failed section
// fails the page.
func (s *CatalogService) Home(ctx context.Context) (*HomeView, error) {
	var view HomeView
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		res, err := s.tmdb.TrendingMovies(ctx, tmdb.Day)
		if err == nil {
			view.TrendingMovies = res.Results
		}
		return err
	})
	p.Go(func(ctx context.Context) error {
		res, err := s.tmdb.TrendingTv(ctx, tmdb.Day)
		if err == nil {
			view.TrendingTv = res.Results
		}
		return err
	})
	p.Go(func(ctx context.Context) error {
		res, err := s.tmdb.NowPlayingMovies(ctx, 1)
		if err == nil {
			view.NowPlaying = res.Results
		}
		return err
	})
	p.Go(func(ctx context.Context) error {
		res, err := s.tmdb.UpcomingMovies(ctx, 1)
		if err == nil {
			view.Upcoming = res.Results
		}
		return err
	})
	p.Go(func(ctx context.Context) error {
		res, err := s.tmdb.TopRatedMovies(ctx, 1)
		if err == nil {
			view.TopRated = res.Results
		}
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return &view, nil
}

// Discover lists movies or TV shows matching params.
func (s *CatalogService) Discover(ctx context.Context, mt model.MediaType, params tmdb.DiscoverParams) (*model.Paged[model.Resource], error) {
	switch mt {
	case model.MediaTypeMovie:
		return movieResources(s.tmdb.DiscoverMovies(ctx, params))
	case model.MediaTypeTV:
		return tvResources(s.tmdb.DiscoverTv(ctx, params))
	}
	return nil, ErrInvalidMediaType
}

// Collections are the named lists Browse serves.
var Collections = []string{
	"popular-movies", "top-rated-movies", "now-playing", "upcoming",
	"popular-tv", "top-rated-tv", "airing-today", "on-the-air",
	"popular-people", "trending-people",
}

// Browse returns one page of a named collection. Unknown names are
// ErrNotFound. Trending people has a single page.
func (s *CatalogService) Browse(ctx context.Context, collection string, page int) (*model.Paged[model.Resource], error) {
	page = tmdb.ClampPage(page)
	switch collection {
	case "popular-movies":
		return movieResources(s.tmdb.PopularMovies(ctx, page))
	case "top-rated-movies":
		return movieResources(s.tmdb.TopRatedMovies(ctx, page))
	case "now-playing":
		return movieResources(s.tmdb.NowPlayingMovies(ctx, page))
	case "upcoming":
		return movieResources(s.tmdb.UpcomingMovies(ctx, page))
	case "popular-tv":
		return tvResources(s.tmdb.PopularTv(ctx, page))
	case "top-rated-tv":
		return tvResources(s.tmdb.TopRatedTv(ctx, page))
	case "airing-today":
		return tvResources(s.tmdb.AiringTodayTv(ctx, page))
	case "on-the-air":
		return tvResources(s.tmdb.OnTheAirTv(ctx, page))
	case "popular-people":
		return personResources(s.tmdb.PopularPeople(ctx, page))
	case "trending-people":
		return personResources(s.tmdb.TrendingPeople(ctx, tmdb.Week))
	}
	return nil, ErrNotFound
}

func movieResources(page *model.Paged[model.Movie], err error) (*model.Paged[model.Resource], error) {
	if err != nil {
		return nil, err
	}
	return resources(page, func(m model.Movie) model.Resource {
		return model.Resource{Kind: model.MediaTypeMovie, Movie: &m}
	}), nil
}

func tvResources(page *model.Paged[model.TvShow], err error) (*model.Paged[model.Resource], error) {
	if err != nil {
		return nil, err
	}
	return resources(page, func(t model.TvShow) model.Resource {
		return model.Resource{Kind: model.MediaTypeTV, TV: &t}
	}), nil
}

func personResources(page *model.Paged[model.Person], err error) (*model.Paged[model.Resource], error) {
	if err != nil {
		return nil, err
	}
	return resources(page, func(p model.Person) model.Resource {
		return model.Resource{Kind: model.MediaTypePerson, Person: &p}
	}), nil
}

func resources[T any](page *model.Paged[T], wrap func(T) model.Resource) *model.Paged[model.Resource] {
	out := &model.Paged[model.Resource]{
		Page:         page.Page,
		TotalPages:   page.TotalPages,
		TotalResults: page.TotalResults,
		Results:      make([]model.Resource, len(page.Results)),
	}
	for i, item := range page.Results {
		out.Results[i] = wrap(item)
	}
	return out
}

// Search runs a text search. A blank query returns an empty first page
// without calling TMDB.
func (s *CatalogService) Search(ctx context.Context, query string, mt model.MediaType, page int) (*model.Paged[model.Resource], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &model.Paged[model.Resource]{Page: 1, Results: []model.Resource{}}, nil
	}
	if mt == "" {
		mt = model.MediaTypeAll
	}
	if _, ok := model.ParseMediaType(string(mt)); !ok {
		return nil, ErrInvalidMediaType
	}
	return s.tmdb.Search(ctx, query, mt, page)
}

// MovieView loads a movie and its optional sections concurrently.
func (s *CatalogService) MovieView(ctx context.Context, id int, region string) (*MovieView, error) {
	view := &MovieView{Region: region, Recommendations: []model.Movie{}}

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) (err error) {
		view.Details, err = s.tmdb.MovieDetails(ctx, id)
		if err == nil {
			view.PosterURL = tmdb.PosterURL(view.Details.PosterPath, "")
			view.BackdropURL = tmdb.BackdropURL(view.Details.BackdropPath, "")
		}
		return err
	})
	p.Go(func(ctx context.Context) error {
		view.Credits = optional(s.tmdb.MovieCredits(ctx, id))("movie credits", id)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		providers := optional(s.tmdb.MovieWatchProviders(ctx, id))("movie providers", id)
		view.Providers = inRegion(providers, region)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		view.Trailer = optional(s.tmdb.MovieTrailer(ctx, id))("movie trailer", id)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		if recs := optional(s.tmdb.MovieRecommendations(ctx, id))("movie recommendations", id); recs != nil {
			view.Recommendations = recs.Results
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, detailError(err)
	}
	return view, nil
}

// TvView loads a TV show and its optional sections concurrently.
func (s *CatalogService) TvView(ctx context.Context, id int, region string) (*TvView, error) {
	view := &TvView{Region: region, Recommendations: []model.TvShow{}}

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) (err error) {
		view.Details, err = s.tmdb.TvDetails(ctx, id)
		if err == nil {
			view.PosterURL = tmdb.PosterURL(view.Details.PosterPath, "")
			view.BackdropURL = tmdb.BackdropURL(view.Details.BackdropPath, "")
		}
		return err
	})
	p.Go(func(ctx context.Context) error {
		view.Credits = optional(s.tmdb.TvCredits(ctx, id))("tv credits", id)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		providers := optional(s.tmdb.TvWatchProviders(ctx, id))("tv providers", id)
		view.Providers = inRegion(providers, region)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		view.Trailer = optional(s.tmdb.TvTrailer(ctx, id))("tv trailer", id)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		if recs := optional(s.tmdb.TvRecommendations(ctx, id))("tv recommendations", id); recs != nil {
			view.Recommendations = recs.Results
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, detailError(err)
	}
	return view, nil
}

// PersonView loads a person with deduplicated credits.
func (s *CatalogService) PersonView(ctx context.Context, id int) (*PersonView, error) {
	view := &PersonView{Cast: []model.CombinedCredit{}, Crew: []model.CombinedCredit{}}

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) (err error) {
		view.Details, err = s.tmdb.PersonDetails(ctx, id)
		if err == nil {
			view.ProfileURL = tmdb.ProfileURL(view.Details.ProfilePath, "")
		}
		return err
	})
	p.Go(func(ctx context.Context) error {
		credits := optional(s.tmdb.PersonCombinedCredits(ctx, id))("person credits", id)
		if credits != nil {
			view.Cast = DeduplicateAndSortByPopularity(credits.Cast, model.CombinedCredit.Date)
			view.Crew = DeduplicateAndSortByPopularity(credits.Crew, model.CombinedCredit.Date)
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, detailError(err)
	}
	return view, nil
}

// optional logs a failed secondary lookup and yields the zero value in its place.
func optional[T any](v T, err error) func(op string, id int) T {
	return func(op string, id int) T {
		if err != nil {
			slog.Warn("optional lookup failed", "op", op, "id", id, "error", err)
			var zero T
			return zero
		}
		return v
	}
}

func inRegion(providers map[string]model.ProviderAvailability, region string) *model.ProviderAvailability {
	if a, ok := providers[region]; ok {
		return &a
	}
	return nil
}

func detailError(err error) error {
	if tmdb.NotFound(err) {
		return ErrNotFound
	}
	if errors.Is(err, tmdb.ErrUpstream) {
		return err
	}
	return fmt.Errorf("failed to load details: %w", err)
}
