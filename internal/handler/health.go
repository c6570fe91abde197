package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/marquee/marquee-go/internal/cache"
)

// HealthResponse reports liveness. The TMDB cache is optional, so an
// unreachable Redis degrades the report without failing it.
type HealthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}

func healthHandler(c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := HealthResponse{Status: "ok", Cache: "disabled"}
		if c != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			res.Cache = "ok"
			if err := c.Ping(ctx); err != nil {
				res.Cache = "unavailable"
			}
		}
		writeJSON(w, http.StatusOK, res)
	}
}
