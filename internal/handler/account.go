package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/service"
)

// AccountHandler handles profile and passkey management.
type AccountHandler struct {
	auth *service.AuthService
}

func NewAccountHandler(auth *service.AuthService) *AccountHandler {
	return &AccountHandler{auth: auth}
}

// HandlePasskeys handles GET /api/account/passkeys requests.
func (h *AccountHandler) HandlePasskeys(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	passkeys, err := h.auth.Passkeys(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, passkeys)
}

// HandleDeletePasskey handles DELETE /api/account/passkeys/{id} requests.
func (h *AccountHandler) HandleDeletePasskey(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.auth.DeletePasskey(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, success)
}

// HandleUpdateProfile handles PATCH /api/account/profile requests.
func (h *AccountHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req model.ProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
