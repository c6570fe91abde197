package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGitHubProviderExchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"gho_test","token_type":"bearer","scope":"read:user,user:email"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":42,"login":"octocat","name":"","email":null,"avatar_url":"https://example.test/a.png"}`))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"email":"old@example.com","primary":false,"verified":true},
			{"email":"octo@example.com","primary":true,"verified":true}
		]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := newGitHubProvider(&oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  CallbackURL("http://app.test", ProviderGitHub),
		Endpoint: oauth2.Endpoint{
			AuthURL:  srv.URL + "/login/oauth/authorize",
			TokenURL: srv.URL + "/login/oauth/access_token",
		},
	}, srv.URL)

	assert.Contains(t, p.AuthCodeURL("st4te"), "state=st4te")

	id, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "42", id.AccountID)
	assert.Equal(t, "octocat", id.Name)
	assert.Equal(t, "octo@example.com", id.Email)
	assert.True(t, id.EmailVerified)
	assert.Equal(t, "gho_test", id.AccessToken)
	assert.Equal(t, "read:user,user:email", id.Scope)
}

func TestCallbackURL(t *testing.T) {
	assert.Equal(t, "https://marquee.test/api/auth/oauth/google/callback", CallbackURL("https://marquee.test", ProviderGoogle))
}
