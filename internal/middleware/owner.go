package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/service"
)

const listKey contextKey = "list"

// ListGetter loads a list scoped to its owner.
type ListGetter interface {
	Get(ctx context.Context, userID, listID string) (*model.List, error)
}

// ListOwner loads the {listID} route parameter for the signed-in user and
// answers 404 when the list is missing or owned by someone else. It must run
// after RequireUser or RequirePageUser.
func ListOwner(lists ListGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			list, err := lists.Get(r.Context(), userID, chi.URLParam(r, "listID"))
			if err != nil {
				if errors.Is(err, service.ErrListNotFound) {
					writeJSONError(w, http.StatusNotFound, service.ErrListNotFound.Error())
					return
				}
				slog.Error("list owner check failed", "user_id", userID, "error", err)
				writeJSONError(w, http.StatusInternalServerError, "failed to load list")
				return
			}

			ctx := context.WithValue(r.Context(), listKey, list)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ListFromContext returns the list loaded by ListOwner.
func ListFromContext(ctx context.Context) (*model.List, bool) {
	l, ok := ctx.Value(listKey).(*model.List)
	return l, ok && l != nil
}
