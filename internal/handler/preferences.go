package handler

import (
	"net/http"

	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/service"
)

// PreferenceHandler handles region and provider preferences.
type PreferenceHandler struct {
	service *service.PreferenceService
}

func NewPreferenceHandler(svc *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: svc}
}

// HandleGetRegion handles GET /api/preferences/region requests. fallback is
// set when the stored region could not be read and the default was used.
func (h *PreferenceHandler) HandleGetRegion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	region := h.service.ResolveRegion(r.Context(), userID)
	writeJSON(w, http.StatusOK, map[string]any{"region": region.Value, "fallback": region.Fallback})
}

// HandleSetRegion handles PUT /api/preferences/region requests.
func (h *PreferenceHandler) HandleSetRegion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req model.RegionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	region, err := h.service.SetRegion(r.Context(), userID, req.Region)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.RegionRequest{Region: region})
}

// HandleGetProviders handles GET /api/preferences/providers requests.
func (h *PreferenceHandler) HandleGetProviders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	ids, err := h.service.Providers(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if ids == nil {
		ids = []int{}
	}

	writeJSON(w, http.StatusOK, model.ProvidersRequest{ProviderIDs: ids})
}

// HandleSetProviders handles PUT /api/preferences/providers requests.
func (h *PreferenceHandler) HandleSetProviders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req model.ProvidersRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.SetProviders(r.Context(), userID, req.ProviderIDs); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success)
}
