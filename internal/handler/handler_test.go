package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/repository"
	"github.com/marquee/marquee-go/internal/service"
	"github.com/marquee/marquee-go/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptyPage = `{"page":1,"results":[],"total_pages":0,"total_results":0}`

// newTestRouter wires the full router against an in-memory database and a
// fake TMDB serving routes by exact path.
func newTestRouter(t *testing.T, routes map[string]http.Handler) http.Handler {
	t.Helper()
	db := testutil.NewDB(t)

	mux := http.NewServeMux()
	for path, h := range routes {
		mux.Handle(path, h)
	}
	client := testutil.NewTMDB(t, mux)

	users := repository.NewUserRepository(db)
	prefs := service.NewPreferenceService(users, repository.NewPreferenceRepository(db))
	auth := service.NewAuthService(
		users,
		repository.NewSessionRepository(db),
		repository.NewAccountRepository(db),
		repository.NewPasskeyRepository(db),
		"test-secret",
		time.Hour,
	)

	return NewRouter(Services{
		Auth:      auth,
		Watchlist: service.NewWatchlistService(repository.NewWatchlistRepository(db), client),
		Lists:     service.NewListService(repository.NewListRepository(db), client),
		Prefs:     prefs,
		Catalog:   service.NewCatalogService(client, prefs),
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func do(t *testing.T, h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// signIn creates a guest session and returns its token.
func signIn(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/auth/anonymous", "", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp model.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestWatchlistAddThenList(t *testing.T) {
	h := newTestRouter(t, nil)
	token := signIn(t, h)
	body := `{"resourceId":550,"resourceType":"movie"}`

	rec := do(t, h, http.MethodPost, "/api/watchlist", token, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/watchlist", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]model.WatchlistEntry](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, 550, entries[0].ResourceID)
	assert.Equal(t, model.MediaTypeMovie, entries[0].ResourceType)
}

func TestWatchlistDuplicateIsConflict(t *testing.T) {
	h := newTestRouter(t, nil)
	token := signIn(t, h)
	body := `{"resourceId":550,"resourceType":"movie"}`

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/watchlist", token, body).Code)

	rec := do(t, h, http.MethodPost, "/api/watchlist", token, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Resource already in watchlist"}`, rec.Body.String())
}

func TestWatchlistRemoveMissingSucceeds(t *testing.T) {
	h := newTestRouter(t, nil)
	token := signIn(t, h)

	rec := do(t, h, http.MethodDelete, "/api/watchlist", token, `{"resourceId":13,"resourceType":"tv"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestWatchlistRequestErrors(t *testing.T) {
	h := newTestRouter(t, nil)
	token := signIn(t, h)

	tests := []struct {
		name   string
		method string
		token  string
		body   string
		want   int
	}{
		{"no session", http.MethodGet, "", "", http.StatusUnauthorized},
		{"no session on add", http.MethodPost, "", `{"resourceId":1,"resourceType":"movie"}`, http.StatusUnauthorized},
		{"missing id", http.MethodPost, token, `{"resourceType":"movie"}`, http.StatusBadRequest},
		{"person not watchable", http.MethodPost, token, `{"resourceId":1,"resourceType":"person"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, token, `{`, http.StatusBadRequest},
		{"oversized body", http.MethodPost, token, `{"resourceType":"` + strings.Repeat("a", 2<<20) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, "/api/watchlist", tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestWatchlistToggleReconciles(t *testing.T) {
	h := newTestRouter(t, nil)
	token := signIn(t, h)

	rec := do(t, h, http.MethodPost, "/api/watchlist/toggle", token, `{"resourceId":550,"resourceType":"movie","optimistic":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"action":"added","inWatchlist":true,"reconciliation":"confirmed"}`, rec.Body.String())

	// The client still believes the movie is absent, so its optimistic add is
	// contradicted by the server removing it.
	rec = do(t, h, http.MethodPost, "/api/watchlist/toggle", token, `{"resourceId":550,"resourceType":"movie","optimistic":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"action":"removed","inWatchlist":false,"reconciliation":"reverted"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/watchlist/status?resourceId=550&resourceType=movie", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"inWatchlist":false}`, rec.Body.String())
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	h := newTestRouter(t, nil)

	for _, target := range []string{"/watchlist?page=2", "/lists", "/lists/abc"} {
		rec := do(t, h, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/login?callbackUrl="+url.QueryEscape(target), rec.Header().Get("Location"))
	}
}

func TestWatchlistPageRedirectsPastEnd(t *testing.T) {
	h := newTestRouter(t, nil)
	token := signIn(t, h)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/watchlist", token, `{"resourceId":550,"resourceType":"movie"}`).Code)

	rec := do(t, h, http.MethodGet, "/watchlist?page=5", token, "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/watchlist", rec.Header().Get("Location"))
}

func TestDiscoverRedirectsPastLastPage(t *testing.T) {
	h := newTestRouter(t, map[string]http.Handler{
		"/discover/movie": testutil.JSON(`{"page":10,"results":[],"total_pages":3,"total_results":55}`),
	})

	rec := do(t, h, http.MethodGet, "/discover/movie?page=10&sort_by=vote_average.desc", "", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/discover/movie?page=3&sort_by=vote_average.desc", rec.Header().Get("Location"))
}

func TestDiscoverDropsInvalidGenre(t *testing.T) {
	h := newTestRouter(t, map[string]http.Handler{
		"/genre/tv/list": testutil.JSON(`{"genres":[{"id":10759,"name":"Action & Adventure"}]}`),
		"/discover/tv":   testutil.JSON(emptyPage),
	})

	rec := do(t, h, http.MethodGet, "/discover/tv?genreId=28&page=4", "", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/discover/tv", rec.Header().Get("Location"))
}

func TestDiscoverKeepsGenreWhenCheckFails(t *testing.T) {
	h := newTestRouter(t, map[string]http.Handler{
		"/genre/movie/list": testutil.Status(http.StatusInternalServerError),
		"/discover/movie":   testutil.JSON(`{"page":1,"results":[{"id":550,"title":"Fight Club"}],"total_pages":1,"total_results":1}`),
	})

	rec := do(t, h, http.MethodGet, "/discover/movie?genreId=18", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	view := decode[DiscoverView](t, rec)
	require.Len(t, view.Results.Results, 1)
	assert.Equal(t, "US", view.Region)
	assert.Empty(t, view.Pagination.Next)
}

func TestBrowseCollections(t *testing.T) {
	h := newTestRouter(t, map[string]http.Handler{
		"/tv/airing_today": testutil.JSON(`{"page":2,"results":[{"id":1399,"name":"Game of Thrones","poster_path":"/got.jpg"}],"total_pages":2,"total_results":21}`),
	})

	rec := do(t, h, http.MethodGet, "/browse/airing-today?page=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[BrowseView](t, rec)
	require.Len(t, view.Results.Results, 1)
	assert.Equal(t, model.MediaTypeTV, view.Results.Results[0].Kind)
	assert.Equal(t, "/browse/airing-today", view.Pagination.Prev)

	rec = do(t, h, http.MethodGet, "/browse/airing-today?page=9", "", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/browse/airing-today?page=2", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/browse/nope", "", "").Code)
}

func TestSearchDropsGenreForPeople(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/search?q=dune&mediaType=person&genreId=28&page=2", "", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/search?mediaType=person&q=dune", rec.Header().Get("Location"))
}

func TestDiscoverUpstreamFailureIs500(t *testing.T) {
	h := newTestRouter(t, map[string]http.Handler{
		"/discover/movie": testutil.Status(http.StatusServiceUnavailable),
	})

	rec := do(t, h, http.MethodGet, "/discover/movie", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCatalogAPIUpstreamFailureIs502(t *testing.T) {
	h := newTestRouter(t, map[string]http.Handler{
		"/watch/providers/regions": testutil.Status(http.StatusInternalServerError),
	})

	rec := do(t, h, http.MethodGet, "/api/regions", "", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/genres/person", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLifecycle(t *testing.T) {
	h := newTestRouter(t, nil)
	owner := signIn(t, h)
	other := signIn(t, h)

	rec := do(t, h, http.MethodPost, "/api/lists", owner, `{"name":"  Weekend  "}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	list := decode[model.List](t, rec)
	assert.Equal(t, "Weekend", list.Name)
	assert.Equal(t, service.DefaultListEmoji, list.Emoji)

	rec = do(t, h, http.MethodPost, "/api/lists", owner, `{"name":"Long","emoji":"`+strings.Repeat("x", 17)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"list emoji must be at most 16 characters"}`, rec.Body.String())

	items := "/api/lists/" + list.ID + "/items"
	body := `{"resourceId":1399,"resourceType":"tv"}`
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, items, owner, body).Code)

	rec = do(t, h, http.MethodPost, items, owner, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Resource already in list"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/lists/containing?resourceId=1399&resourceType=tv", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"listIds":["`+list.ID+`"]}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/lists/"+list.ID, other, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, items, other, body).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/lists/"+list.ID, other, "").Code)

	rec = do(t, h, http.MethodGet, "/api/lists", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	summaries := decode[[]model.ListSummary](t, rec)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].ItemCount)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/api/lists/"+list.ID, owner, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/lists/"+list.ID, owner, "").Code)
}

func TestRegionPreference(t *testing.T) {
	h := newTestRouter(t, nil)
	token := signIn(t, h)

	rec := do(t, h, http.MethodGet, "/api/preferences/region", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"region":"US","fallback":false}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/preferences/region", token, `{"region":"gb"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"region":"GB"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/preferences/region", token, "")
	assert.JSONEq(t, `{"region":"GB","fallback":false}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/preferences/region", token, `{"region":"Narnia"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionEndpoint(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/auth/session", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":null,"providers":[]}`, rec.Body.String())

	token := signIn(t, h)
	rec = do(t, h, http.MethodGet, "/api/auth/session", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[struct {
		User *model.UserResponse `json:"user"`
	}](t, rec)
	require.NotNil(t, session.User)
	assert.True(t, session.User.IsAnonymous)

	rec = do(t, h, http.MethodPost, "/api/auth/sign-out", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/watchlist", token, "").Code)
}

func TestSignUpUpgradesGuest(t *testing.T) {
	h := newTestRouter(t, nil)
	token := signIn(t, h)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/watchlist", token, `{"resourceId":550,"resourceType":"movie"}`).Code)

	rec := do(t, h, http.MethodPost, "/api/auth/sign-up", token, `{"email":"ada@example.com","password":"correct horse"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[model.AuthResponse](t, rec)
	assert.False(t, resp.User.IsAnonymous)

	rec = do(t, h, http.MethodGet, "/api/watchlist", resp.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.WatchlistEntry](t, rec), 1)

	rec = do(t, h, http.MethodPost, "/api/auth/sign-in", "", `{"email":"ada@example.com","password":"wrong password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOAuthCallbackRejectsStateMismatch(t *testing.T) {
	h := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/oauth/github/callback?state=abc&code=x", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "xyz"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/auth/oauth/github", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unconfigured provider")
}

func TestSafeReturnPath(t *testing.T) {
	tests := map[string]string{
		"":                  "/",
		"/lists?page=2":     "/lists?page=2",
		"//evil.test":       "/",
		"https://evil.test": "/",
		"/\\evil.test":      "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeReturnPath(in), in)
	}
}
