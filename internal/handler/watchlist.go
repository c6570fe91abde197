package handler

import (
	"errors"
	"net/http"

	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/service"
	"github.com/marquee/marquee-go/internal/viewstate"
)

// WatchlistHandler handles HTTP requests for the watchlist API.
type WatchlistHandler struct {
	service *service.WatchlistService
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(svc *service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{service: svc}
}

// ToggleResponse reports a toggle outcome. Reconciliation tells a client
// that applied an optimistic update whether to keep it.
type ToggleResponse struct {
	Action         service.WatchAction        `json:"action,omitempty"`
	InWatchlist    bool                       `json:"inWatchlist"`
	Reconciliation *viewstate.OptimisticState `json:"reconciliation,omitempty"`
	Error          string                     `json:"error,omitempty"`
}

// HandleList handles GET /api/watchlist requests.
func (h *WatchlistHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	entries, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	if entries == nil {
		entries = []model.WatchlistEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleAdd handles POST /api/watchlist requests.
func (h *WatchlistHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req model.ResourceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.Add(r.Context(), userID, req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResource):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrAlreadyInWatchlist):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, success)
}

// HandleRemove handles DELETE /api/watchlist requests.
func (h *WatchlistHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req model.ResourceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.Remove(r.Context(), userID, req); err != nil {
		if errors.Is(err, service.ErrInvalidResource) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, success)
}

// HandleToggle handles POST /api/watchlist/toggle requests.
func (h *WatchlistHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req model.ToggleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var optimistic *viewstate.Optimistic[bool]
	if req.Optimistic != nil {
		optimistic = viewstate.Apply(!*req.Optimistic, *req.Optimistic)
	}

	action, err := h.service.Toggle(r.Context(), userID, req.ResourceRequest)
	if err != nil {
		status, msg := http.StatusInternalServerError, "internal server error"
		if errors.Is(err, service.ErrInvalidResource) {
			status, msg = http.StatusBadRequest, err.Error()
		}
		resp := ToggleResponse{Error: msg}
		if optimistic != nil {
			optimistic.Fail()
			resp.InWatchlist, resp.Reconciliation = optimistic.Value, &optimistic.State
		}
		writeJSON(w, status, resp)
		return
	}

	resp := ToggleResponse{Action: action, InWatchlist: action == service.ActionAdded}
	if optimistic != nil {
		optimistic.Settle(resp.InWatchlist)
		resp.Reconciliation = &optimistic.State
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleStatus handles GET /api/watchlist/status requests.
func (h *WatchlistHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	in, err := h.service.Status(r.Context(), userID, resourceFromQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"inWatchlist": in})
}
