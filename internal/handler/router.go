package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/marquee/marquee-go/internal/cache"
	"github.com/marquee/marquee-go/internal/middleware"
	"github.com/marquee/marquee-go/internal/service"
)

// Services are the dependencies of the HTTP layer. Cache is nil when TMDB
// responses are not cached.
type Services struct {
	Auth      *service.AuthService
	Watchlist *service.WatchlistService
	Lists     *service.ListService
	Prefs     *service.PreferenceService
	Catalog   *service.CatalogService
	Cache     *cache.Cache
}

// NewRouter wires every API and page route. secureCookies marks session
// cookies Secure.
func NewRouter(svc Services, logger *slog.Logger, secureCookies bool) http.Handler {
	authHandler := NewAuthHandler(svc.Auth, secureCookies)
	watchlistHandler := NewWatchlistHandler(svc.Watchlist)
	listHandler := NewListHandler(svc.Lists)
	prefHandler := NewPreferenceHandler(svc.Prefs)
	accountHandler := NewAccountHandler(svc.Auth)
	catalogHandler := NewCatalogHandler(svc.Catalog, svc.Prefs)
	pages := NewPageHandler(svc.Catalog, svc.Watchlist, svc.Lists, svc.Prefs, svc.Auth)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Session(svc.Auth))

	r.Get("/health", healthHandler(svc.Cache))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(5, 10))
				r.Post("/anonymous", authHandler.HandleAnonymous)
				r.Post("/sign-up", authHandler.HandleSignUp)
				r.Post("/sign-in", authHandler.HandleSignIn)
				r.Get("/oauth/{provider}", authHandler.HandleOAuthStart)
				r.Get("/oauth/{provider}/callback", authHandler.HandleOAuthCallback)
			})
			r.Post("/sign-out", authHandler.HandleSignOut)
			r.Get("/session", authHandler.HandleSession)
		})

		r.Get("/genres/{mediaType}", catalogHandler.HandleGenres)
		r.Get("/regions", catalogHandler.HandleRegions)
		r.Get("/providers/{mediaType}", catalogHandler.HandleProviders)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/watchlist", watchlistHandler.HandleList)
			r.Post("/watchlist", watchlistHandler.HandleAdd)
			r.Delete("/watchlist", watchlistHandler.HandleRemove)
			r.Post("/watchlist/toggle", watchlistHandler.HandleToggle)
			r.Get("/watchlist/status", watchlistHandler.HandleStatus)

			r.Get("/lists", listHandler.HandleIndex)
			r.Post("/lists", listHandler.HandleCreate)
			r.Get("/lists/containing", listHandler.HandleContaining)
			r.Route("/lists/{listID}", func(r chi.Router) {
				r.Use(middleware.ListOwner(svc.Lists))
				r.Get("/", listHandler.HandleGet)
				r.Patch("/", listHandler.HandleUpdate)
				r.Delete("/", listHandler.HandleDelete)
				r.Post("/items", listHandler.HandleAddItem)
				r.Delete("/items", listHandler.HandleRemoveItem)
			})

			r.Get("/preferences/region", prefHandler.HandleGetRegion)
			r.Put("/preferences/region", prefHandler.HandleSetRegion)
			r.Get("/preferences/providers", prefHandler.HandleGetProviders)
			r.Put("/preferences/providers", prefHandler.HandleSetProviders)

			r.Get("/account/passkeys", accountHandler.HandlePasskeys)
			r.Delete("/account/passkeys/{id}", accountHandler.HandleDeletePasskey)
			r.Patch("/account/profile", accountHandler.HandleUpdateProfile)
		})
	})

	r.Get("/", pages.HandleHome)
	r.Get("/login", pages.HandleLogin)
	r.Get("/discover/{mediaType}", pages.HandleDiscover)
	r.Get("/browse/{collection}", pages.HandleBrowse)
	r.Get("/search", pages.HandleSearch)
	r.Get("/movie/{id}", pages.HandleMovie)
	r.Get("/tv/{id}", pages.HandleTv)
	r.Get("/person/{id}", pages.HandlePerson)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePageUser)
		r.Get("/watchlist", pages.HandleWatchlist)
		r.Get("/lists", pages.HandleLists)
		r.With(middleware.ListOwner(svc.Lists)).Get("/lists/{listID}", pages.HandleList)
	})

	return r
}
