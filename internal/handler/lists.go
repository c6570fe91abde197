package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marquee/marquee-go/internal/middleware"
	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/service"
)

// ListHandler handles HTTP requests for custom lists.
type ListHandler struct {
	service *service.ListService
}

// NewListHandler creates a new ListHandler.
func NewListHandler(svc *service.ListService) *ListHandler {
	return &ListHandler{service: svc}
}

// HandleIndex handles GET /api/lists requests.
func (h *ListHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	lists, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if lists == nil {
		lists = []model.ListSummary{}
	}

	writeJSON(w, http.StatusOK, lists)
}

// HandleCreate handles POST /api/lists requests.
func (h *ListHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req model.CreateListRequest
	if !decodeBody(w, r, &req) {
		return
	}

	list, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, list)
}

// HandleGet handles GET /api/lists/{listID} requests. The list is loaded by
// the ListOwner middleware.
func (h *ListHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	list, ok := middleware.ListFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse(service.ErrListNotFound.Error()))
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleUpdate handles PATCH /api/lists/{listID} requests.
func (h *ListHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req model.UpdateListRequest
	if !decodeBody(w, r, &req) {
		return
	}

	list, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "listID"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleDelete handles DELETE /api/lists/{listID} requests.
func (h *ListHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "listID")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success)
}

// HandleAddItem handles POST /api/lists/{listID}/items requests.
func (h *ListHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req model.ResourceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.AddItem(r.Context(), userID, chi.URLParam(r, "listID"), req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success)
}

// HandleRemoveItem handles DELETE /api/lists/{listID}/items requests.
func (h *ListHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req model.ResourceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.RemoveItem(r.Context(), userID, chi.URLParam(r, "listID"), req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success)
}

// HandleContaining handles GET /api/lists/containing requests. It returns
// the ids of the caller's lists that hold the resource.
func (h *ListHandler) HandleContaining(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	ids, err := h.service.ListsContaining(r.Context(), userID, resourceFromQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"listIds": ids})
}
