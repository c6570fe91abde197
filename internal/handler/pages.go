package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/marquee/marquee-go/internal/middleware"
	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/service"
	"github.com/marquee/marquee-go/internal/viewstate"
	"github.com/sourcegraph/conc/pool"
)

var (
	searchTabs    = []model.MediaType{model.MediaTypeAll, model.MediaTypeMovie, model.MediaTypeTV, model.MediaTypePerson}
	watchableTabs = []model.MediaType{model.MediaTypeMovie, model.MediaTypeTV}
	runtimeCaps   = []int{90, 120, 150}
)

// PageHandler serves the view models behind the site's pages.
type PageHandler struct {
	catalog   *service.CatalogService
	watchlist *service.WatchlistService
	lists     *service.ListService
	prefs     *service.PreferenceService
	auth      *service.AuthService
}

func NewPageHandler(
	catalog *service.CatalogService,
	watchlist *service.WatchlistService,
	lists *service.ListService,
	prefs *service.PreferenceService,
	auth *service.AuthService,
) *PageHandler {
	return &PageHandler{catalog: catalog, watchlist: watchlist, lists: lists, prefs: prefs, auth: auth}
}

// DiscoverView is the data for /discover/{mediaType}.
type DiscoverView struct {
	MediaType  model.MediaType              `json:"mediaType"`
	Results    *model.Paged[model.Resource] `json:"results"`
	Genres     []viewstate.Link             `json:"genres"`
	Providers  []ProviderOption             `json:"providers"`
	Sorts      []viewstate.Link             `json:"sorts"`
	Runtimes   []viewstate.Link             `json:"runtimes"`
	Region     string                       `json:"region"`
	Pagination viewstate.Pager              `json:"pagination"`
}

// SearchView is the data for /search.
type SearchView struct {
	Query      string                       `json:"query"`
	MediaType  model.MediaType              `json:"mediaType"`
	Tabs       []viewstate.Link             `json:"tabs"`
	Genres     []viewstate.Link             `json:"genres,omitempty"`
	Results    *model.Paged[model.Resource] `json:"results"`
	Pagination viewstate.Pager              `json:"pagination"`
}

// BrowseView is the data for /browse/{collection}.
type BrowseView struct {
	Collection  string                       `json:"collection"`
	Collections []string                     `json:"collections"`
	Results     *model.Paged[model.Resource] `json:"results"`
	Pagination  viewstate.Pager              `json:"pagination"`
}

// DetailView wraps a movie or tv view with the caller's library state.
type DetailView[T any] struct {
	View        T        `json:"view"`
	InWatchlist bool     `json:"inWatchlist"`
	ListIDs     []string `json:"listIds"`
}

// WatchlistView is the data for /watchlist.
type WatchlistView struct {
	*service.WatchlistPage
	Tabs       []viewstate.Link `json:"tabs"`
	Pagination viewstate.Pager  `json:"pagination"`
}

// ListView is the data for /lists/{listID}.
type ListView struct {
	*service.ListPage
	Pagination viewstate.Pager `json:"pagination"`
}

func (h *PageHandler) genreChecker() viewstate.GenreChecker {
	return func(ctx context.Context, mt model.MediaType, genreID int) bool {
		return h.catalog.CheckGenre(ctx, mt, genreID).Value
	}
}

// redirect sends the browser to the canonical URL for s.
func redirect(w http.ResponseWriter, r *http.Request, s viewstate.QueryState) {
	http.Redirect(w, r, s.URL(r.URL.Path), http.StatusFound)
}

// writePageError maps failures on page routes. Missing resources are 404;
// everything else, upstream failures included, is 500.
func writePageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrListNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidMediaType):
		writeJSON(w, http.StatusNotFound, errorResponse("not found"))
	default:
		slog.Error("page failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}

// HandleLogin handles GET /login.
func (h *PageHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"callbackUrl": safeReturnPath(r.URL.Query().Get("callbackUrl")),
		"providers":   h.auth.Providers(),
	})
}

// HandleHome handles GET /.
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	view, err := h.catalog.Home(r.Context())
	if err != nil {
		writePageError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// HandleDiscover handles GET /discover/{mediaType}.
func (h *PageHandler) HandleDiscover(w http.ResponseWriter, r *http.Request) {
	mt, ok := model.ParseMediaType(chi.URLParam(r, "mediaType"))
	if !ok || !mt.Watchable() {
		writeJSON(w, http.StatusNotFound, errorResponse("not found"))
		return
	}
	ctx := r.Context()

	s := viewstate.Parse(r.URL.Query()).NormalizeSort(mt)
	s.MediaType = ""
	if s.GenreID != 0 && !h.catalog.CheckGenre(ctx, mt, s.GenreID).Value {
		redirect(w, r, s.WithGenre(0))
		return
	}

	userID, _ := middleware.UserIDFromContext(ctx)
	region := s.WatchRegion
	if region == "" {
		region = h.prefs.ResolveRegion(ctx, userID).Value
	}
	params := s.DiscoverParams()
	if len(params.WatchProviders) > 0 {
		params.WatchRegion = region
	}

	view := DiscoverView{
		MediaType: mt,
		Genres:    []viewstate.Link{},
		Providers: []ProviderOption{},
		Sorts:     viewstate.SortLinks(r.URL.Path, s, mt),
		Runtimes:  viewstate.RuntimeLinks(r.URL.Path, s, runtimeCaps),
		Region:    region,
	}
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) (err error) {
		view.Results, err = h.catalog.Discover(ctx, mt, params)
		return err
	})
	p.Go(func(ctx context.Context) error {
		genres, err := h.catalog.Genres(ctx, mt)
		if err != nil {
			slog.Warn("genre pills unavailable", "media_type", mt, "error", err)
			return nil
		}
		view.Genres = viewstate.GenrePills(r.URL.Path, s, genres)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		providers, err := h.catalog.SelectProviders(ctx, userID, mt, region)
		if err != nil {
			slog.Warn("provider filters unavailable", "media_type", mt, "region", region, "error", err)
			return nil
		}
		view.Providers = providerOptions(providers)
		for i := range view.Providers {
			id := view.Providers[i].ProviderID
			view.Providers[i].Href = viewstate.ProviderHref(r.URL.Path, s, id, region)
			view.Providers[i].Selected = slices.Contains(s.WatchProviders, id)
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		writePageError(w, r, err)
		return
	}

	if last, moved := s.ClampPage(view.Results.TotalPages); moved {
		redirect(w, r, last)
		return
	}
	view.Pagination = viewstate.Pagination(r.URL.Path, s, view.Results.TotalPages)

	writeJSON(w, http.StatusOK, view)
}

// HandleSearch handles GET /search.
func (h *PageHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := viewstate.Parse(r.URL.Query())
	if raw := r.URL.Query().Get(viewstate.ParamQuery); raw != s.Query {
		// A query that needed trimming starts over on page 1.
		redirect(w, r, s.WithQuery(s.Query))
		return
	}
	if s.MediaType == "" {
		s.MediaType = model.MediaTypeAll
	}
	if s.GenreID != 0 && !h.catalog.CheckGenre(ctx, s.MediaType, s.GenreID).Value {
		redirect(w, r, s.WithGenre(0))
		return
	}

	results, err := h.catalog.Search(ctx, s.Query, s.MediaType, s.Page)
	if err != nil {
		writePageError(w, r, err)
		return
	}
	if last, moved := s.ClampPage(results.TotalPages); moved {
		redirect(w, r, last)
		return
	}
	if s.GenreID != 0 {
		results.Results = slices.DeleteFunc(results.Results, func(res model.Resource) bool {
			return !hasGenre(res, s.GenreID)
		})
	}

	view := SearchView{
		Query:      s.Query,
		MediaType:  s.MediaType,
		Tabs:       viewstate.Tabs(ctx, r.URL.Path, s, searchTabs, h.genreChecker()),
		Results:    results,
		Pagination: viewstate.Pagination(r.URL.Path, s, results.TotalPages),
	}
	if s.MediaType.Watchable() {
		if genres, err := h.catalog.Genres(ctx, s.MediaType); err == nil {
			view.Genres = viewstate.GenrePills(r.URL.Path, s, genres)
		}
	}

	writeJSON(w, http.StatusOK, view)
}

// HandleBrowse handles GET /browse/{collection}.
func (h *PageHandler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")
	s := viewstate.Parse(r.URL.Query())

	results, err := h.catalog.Browse(r.Context(), name, s.Page)
	if err != nil {
		writePageError(w, r, err)
		return
	}
	if last, moved := s.ClampPage(results.TotalPages); moved {
		redirect(w, r, last)
		return
	}

	writeJSON(w, http.StatusOK, BrowseView{
		Collection:  name,
		Collections: service.Collections,
		Results:     results,
		Pagination:  viewstate.Pagination(r.URL.Path, s, results.TotalPages),
	})
}

func hasGenre(res model.Resource, genreID int) bool {
	switch {
	case res.Movie != nil:
		return slices.Contains(res.Movie.GenreIDs, genreID)
	case res.TV != nil:
		return slices.Contains(res.TV.GenreIDs, genreID)
	}
	return false
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

// libraryState reports whether the signed-in caller has saved the resource.
// Failures leave the defaults in place.
func (h *PageHandler) libraryState(ctx context.Context, id int, mt model.MediaType) (bool, []string) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return false, []string{}
	}
	req := model.ResourceRequest{ResourceID: id, ResourceType: string(mt)}

	in, err := h.watchlist.Status(ctx, userID, req)
	if err != nil {
		slog.Warn("watchlist status unavailable", "user_id", userID, "error", err)
	}
	ids, err := h.lists.ListsContaining(ctx, userID, req)
	if err != nil || ids == nil {
		ids = []string{}
	}
	return in, ids
}

// HandleMovie handles GET /movie/{id}.
func (h *PageHandler) HandleMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("not found"))
		return
	}
	ctx := r.Context()

	userID, _ := middleware.UserIDFromContext(ctx)
	view, err := h.catalog.MovieView(ctx, id, h.prefs.ResolveRegion(ctx, userID).Value)
	if err != nil {
		writePageError(w, r, err)
		return
	}

	out := DetailView[*service.MovieView]{View: view}
	out.InWatchlist, out.ListIDs = h.libraryState(ctx, id, model.MediaTypeMovie)
	writeJSON(w, http.StatusOK, out)
}

// HandleTv handles GET /tv/{id}.
func (h *PageHandler) HandleTv(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("not found"))
		return
	}
	ctx := r.Context()

	userID, _ := middleware.UserIDFromContext(ctx)
	view, err := h.catalog.TvView(ctx, id, h.prefs.ResolveRegion(ctx, userID).Value)
	if err != nil {
		writePageError(w, r, err)
		return
	}

	out := DetailView[*service.TvView]{View: view}
	out.InWatchlist, out.ListIDs = h.libraryState(ctx, id, model.MediaTypeTV)
	writeJSON(w, http.StatusOK, out)
}

// HandlePerson handles GET /person/{id}.
func (h *PageHandler) HandlePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("not found"))
		return
	}

	view, err := h.catalog.PersonView(r.Context(), id)
	if err != nil {
		writePageError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// HandleWatchlist handles GET /watchlist. Requires a signed-in user.
func (h *PageHandler) HandleWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	s := viewstate.Parse(r.URL.Query())
	mt := s.MediaType
	if !mt.Watchable() {
		mt = model.MediaTypeMovie
	}

	page, err := h.watchlist.Page(r.Context(), userID, mt, s.Page)
	if err != nil {
		writePageError(w, r, err)
		return
	}
	if last, moved := s.ClampPage(page.TotalPages); moved {
		redirect(w, r, last)
		return
	}

	active := s
	active.MediaType = mt
	tabs := viewstate.Tabs(r.Context(), r.URL.Path, active, watchableTabs, h.genreChecker())
	for i, tab := range watchableTabs {
		tabs[i].Label += " (" + strconv.Itoa(page.Counts[tab]) + ")"
	}
	writeJSON(w, http.StatusOK, WatchlistView{
		WatchlistPage: page,
		Tabs:          tabs,
		Pagination:    viewstate.Pagination(r.URL.Path, s, page.TotalPages),
	})
}

// HandleLists handles GET /lists. Requires a signed-in user.
func (h *PageHandler) HandleLists(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	lists, err := h.lists.ListForUser(r.Context(), userID)
	if err != nil {
		writePageError(w, r, err)
		return
	}
	if lists == nil {
		lists = []model.ListSummary{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"lists": lists})
}

// HandleList handles GET /lists/{listID}. Requires a signed-in owner.
func (h *PageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	s := viewstate.Parse(r.URL.Query())

	page, err := h.lists.Items(r.Context(), userID, chi.URLParam(r, "listID"), s.Page)
	if err != nil {
		writePageError(w, r, err)
		return
	}
	if last, moved := s.ClampPage(page.TotalPages); moved {
		redirect(w, r, last)
		return
	}

	writeJSON(w, http.StatusOK, ListView{
		ListPage:   page,
		Pagination: viewstate.Pagination(r.URL.Path, s, page.TotalPages),
	})
}
