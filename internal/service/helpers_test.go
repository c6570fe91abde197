package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/repository"
	"github.com/marquee/marquee-go/internal/testutil"
	"github.com/marquee/marquee-go/internal/tmdb"
	"github.com/stretchr/testify/require"
)

// fakeTMDB serves fixed bodies by exact path; anything else is a 404.
func fakeTMDB(t *testing.T, routes map[string]string) *tmdb.Client {
	t.Helper()
	mux := http.NewServeMux()
	for path, body := range routes {
		mux.Handle(path, testutil.JSON(body))
	}
	return testutil.NewTMDB(t, mux)
}

func createUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	u := &model.User{Name: "Test", Email: email}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), u))
	return u
}

func movieRequest(id int) model.ResourceRequest {
	return model.ResourceRequest{ResourceID: id, ResourceType: string(model.MediaTypeMovie)}
}
