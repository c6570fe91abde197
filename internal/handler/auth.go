package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marquee/marquee-go/internal/crypto"
	"github.com/marquee/marquee-go/internal/middleware"
	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/service"
)

const (
	oauthStateCookie  = "marquee_oauth_state"
	oauthReturnCookie = "marquee_oauth_return"
	oauthCookieTTL    = 10 * time.Minute
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service      *service.AuthService
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie should be set when
// the site is served over HTTPS.
func NewAuthHandler(svc *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: svc, secureCookie: secureCookie}
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, expires time.Time) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	} else {
		c.Expires = expires
	}
	http.SetCookie(w, c)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, resp model.AuthResponse) {
	h.setCookie(w, middleware.SessionCookie, resp.Token, resp.ExpiresAt)
}

func requestMeta(r *http.Request) service.SessionMeta {
	return service.SessionMeta{IPAddress: r.RemoteAddr, UserAgent: r.UserAgent()}
}

// safeReturnPath accepts only same-site absolute paths.
func safeReturnPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}

// HandleAnonymous handles POST /api/auth/anonymous requests.
func (h *AuthHandler) HandleAnonymous(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.SignInAnonymous(r.Context(), requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.startSession(w, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// HandleSignUp handles POST /api/auth/sign-up requests. A signed-in guest is
// upgraded in place.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req model.SignUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	currentUserID, _ := middleware.UserIDFromContext(r.Context())
	resp, err := h.service.SignUp(r.Context(), currentUserID, req, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.startSession(w, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// HandleSignIn handles POST /api/auth/sign-in requests.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req model.SignInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.SignIn(r.Context(), req, requestMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.startSession(w, resp)
	writeJSON(w, http.StatusOK, resp)
}

// HandleSignOut handles POST /api/auth/sign-out requests.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if err := h.service.SignOut(r.Context(), token); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	h.setCookie(w, middleware.SessionCookie, "", time.Time{})
	writeJSON(w, http.StatusOK, success)
}

// HandleSession handles GET /api/auth/session requests. Anonymous callers
// get a null user rather than 401.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil, "providers": h.service.Providers()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": model.NewUserResponse(user), "providers": h.service.Providers()})
}

// HandleOAuthStart handles GET /api/auth/oauth/{provider} requests. It
// redirects to the provider's consent page.
func (h *AuthHandler) HandleOAuthStart(w http.ResponseWriter, r *http.Request) {
	state, err := crypto.NewToken(16)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	target, err := h.service.OAuthURL(chi.URLParam(r, "provider"), state)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	expires := time.Now().Add(oauthCookieTTL)
	h.setCookie(w, oauthStateCookie, state, expires)
	h.setCookie(w, oauthReturnCookie, safeReturnPath(r.URL.Query().Get("callbackUrl")), expires)
	http.Redirect(w, r, target, http.StatusFound)
}

// HandleOAuthCallback handles GET /api/auth/oauth/{provider}/callback
// requests.
func (h *AuthHandler) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid oauth state"))
		return
	}
	returnPath := "/"
	if c, err := r.Cookie(oauthReturnCookie); err == nil {
		returnPath = safeReturnPath(c.Value)
	}
	h.setCookie(w, oauthStateCookie, "", time.Time{})
	h.setCookie(w, oauthReturnCookie, "", time.Time{})

	if r.URL.Query().Get("error") != "" {
		http.Redirect(w, r, middleware.LoginURL(returnPath)+"&error=oauth", http.StatusFound)
		return
	}

	currentUserID, _ := middleware.UserIDFromContext(r.Context())
	resp, err := h.service.SignInOAuth(r.Context(), chi.URLParam(r, "provider"), r.URL.Query().Get("code"), currentUserID, requestMeta(r))
	if err != nil {
		if errors.Is(err, service.ErrOAuthFailed) {
			http.Redirect(w, r, middleware.LoginURL(returnPath)+"&error=oauth", http.StatusFound)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	h.startSession(w, resp)
	http.Redirect(w, r, returnPath, http.StatusFound)
}
