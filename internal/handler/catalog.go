package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marquee/marquee-go/internal/middleware"
	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/service"
	"github.com/marquee/marquee-go/internal/tmdb"
)

// ProviderOption is a provider filter with its logo resolved.
type ProviderOption struct {
	model.WatchProvider
	LogoURL  string `json:"logoUrl,omitempty"`
	Href     string `json:"href,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

func providerOptions(providers []model.WatchProvider) []ProviderOption {
	out := make([]ProviderOption, len(providers))
	for i, p := range providers {
		out[i] = ProviderOption{WatchProvider: p, LogoURL: tmdb.LogoURL(p.LogoPath, "")}
	}
	return out
}

// CatalogHandler serves TMDB reference data used by filter controls.
type CatalogHandler struct {
	catalog *service.CatalogService
	prefs   *service.PreferenceService
}

func NewCatalogHandler(catalog *service.CatalogService, prefs *service.PreferenceService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, prefs: prefs}
}

// HandleGenres handles GET /api/genres/{mediaType} requests.
func (h *CatalogHandler) HandleGenres(w http.ResponseWriter, r *http.Request) {
	mt, ok := model.ParseMediaType(chi.URLParam(r, "mediaType"))
	if !ok || !mt.Watchable() {
		writeJSON(w, http.StatusBadRequest, errorResponse(service.ErrInvalidMediaType.Error()))
		return
	}

	genres, err := h.catalog.Genres(r.Context(), mt)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, genres)
}

// HandleRegions handles GET /api/regions requests.
func (h *CatalogHandler) HandleRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.catalog.Regions(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, regions)
}

// HandleProviders handles GET /api/providers/{mediaType} requests. The region
// defaults to the caller's preference; ?region= overrides it.
func (h *CatalogHandler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	mt, ok := model.ParseMediaType(chi.URLParam(r, "mediaType"))
	if !ok || !mt.Watchable() {
		writeJSON(w, http.StatusBadRequest, errorResponse(service.ErrInvalidMediaType.Error()))
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	region := h.prefs.ResolveRegion(r.Context(), userID).Value
	if q := r.URL.Query().Get("region"); q != "" {
		normalized, err := service.NormalizeRegion(q)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		region = normalized
	}

	providers, err := h.catalog.SelectProviders(r.Context(), userID, mt, region)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"region": region, "providers": providerOptions(providers)})
}
