package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/marquee/marquee-go/internal/middleware"
	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/service"
	"github.com/marquee/marquee-go/internal/tmdb"
)

const maxBodyBytes = 1 << 20 // 1MB

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

var success = model.SuccessResponse{Success: true}

// decodeBody reads a JSON request body into dst. On failure it writes the
// error response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err.Error() == "http: request body too large" {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return false
	}
	return true
}

// requireUserID returns the signed-in user id or writes 401.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
	}
	return userID, ok
}

// resourceFromQuery reads resourceId and resourceType query parameters.
// Validation is left to the service.
func resourceFromQuery(r *http.Request) model.ResourceRequest {
	id, _ := strconv.Atoi(r.URL.Query().Get("resourceId"))
	return model.ResourceRequest{ResourceID: id, ResourceType: r.URL.Query().Get("resourceType")}
}

// writeServiceError maps service and upstream errors to a JSON response.
// Known failures carry their own message; anything else is logged and
// reported generically.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidResource),
		errors.Is(err, service.ErrListNameRequired),
		errors.Is(err, service.ErrListNameTooLong),
		errors.Is(err, service.ErrListEmojiTooLong),
		errors.Is(err, service.ErrInvalidRegion),
		errors.Is(err, service.ErrInvalidProvider),
		errors.Is(err, service.ErrInvalidMediaType),
		errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrNameTooLong),
		errors.Is(err, service.ErrUnknownProvider):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, service.ErrListNotFound),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrPasskeyNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrAlreadyInWatchlist),
		errors.Is(err, service.ErrAlreadyInList),
		errors.Is(err, service.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, tmdb.ErrUpstream):
		slog.Warn("upstream request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse(err.Error()))
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}
