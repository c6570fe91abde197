package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/marquee/marquee-go/internal/crypto"
	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/repository"
	"github.com/marquee/marquee-go/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeProvider struct {
	identity *OAuthIdentity
	err      error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.test/auth?state=" + state
}

func (f *fakeProvider) Exchange(ctx context.Context, code string) (*OAuthIdentity, error) {
	return f.identity, f.err
}

func newTestAuthService(t *testing.T, ttl time.Duration, providers ...OAuthProvider) (*AuthService, *sql.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		repository.NewAccountRepository(db),
		repository.NewPasskeyRepository(db),
		testSecret,
		ttl,
		providers...,
	)
	return svc, db
}

func TestSignUpValidation(t *testing.T) {
	svc, _ := newTestAuthService(t, time.Hour)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     model.SignUpRequest
		wantErr error
	}{
		{"empty email", model.SignUpRequest{Password: "password123"}, ErrEmailRequired},
		{"bad email", model.SignUpRequest{Email: "not-an-email", Password: "password123"}, ErrInvalidEmail},
		{"empty password", model.SignUpRequest{Email: "a@example.com"}, ErrPasswordRequired},
		{"short password", model.SignUpRequest{Email: "a@example.com", Password: "short"}, ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, "", tt.req, SessionMeta{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, _ := newTestAuthService(t, time.Hour)
	ctx := context.Background()

	res, err := svc.SignUp(ctx, "", model.SignUpRequest{Email: " Ada@Example.com ", Password: "correct horse"}, SessionMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, "ada", res.User.Name)
	assert.False(t, res.User.IsAnonymous)

	_, err = svc.SignUp(ctx, "", model.SignUpRequest{Email: "ada@example.com", Password: "another one"}, SessionMeta{})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.SignIn(ctx, model.SignInRequest{Email: "ada@example.com", Password: "wrong password"}, SessionMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, model.SignInRequest{Email: "nobody@example.com", Password: "correct horse"}, SessionMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	signedIn, err := svc.SignIn(ctx, model.SignInRequest{Email: "ADA@example.com", Password: "correct horse"}, SessionMeta{})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, signedIn.User.ID)

	user, err := svc.Authenticate(ctx, signedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)
}

func TestSignInUpgradesWeakHash(t *testing.T) {
	svc, db := newTestAuthService(t, time.Hour)
	ctx := context.Background()
	accounts := repository.NewAccountRepository(db)

	weak, err := crypto.HashPasswordWith("correct horse", crypto.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	require.NoError(t, err)
	user := createUser(t, db, "legacy@example.com")
	require.NoError(t, accounts.Create(ctx, &model.Account{
		AccountID:  user.ID,
		ProviderID: repository.ProviderCredential,
		UserID:     user.ID,
		Password:   weak,
	}))

	_, err = svc.SignIn(ctx, model.SignInRequest{Email: "legacy@example.com", Password: "correct horse"}, SessionMeta{})
	require.NoError(t, err)

	account, err := accounts.GetByUser(ctx, user.ID, repository.ProviderCredential)
	require.NoError(t, err)
	assert.NotEqual(t, weak, account.Password)
	assert.False(t, crypto.NeedsRehash(account.Password, crypto.DefaultHashParams()))

	_, err = svc.SignIn(ctx, model.SignInRequest{Email: "legacy@example.com", Password: "correct horse"}, SessionMeta{})
	assert.NoError(t, err, "upgraded hash still verifies")
}

func TestSignUpPromotesAnonymousUser(t *testing.T) {
	svc, db := newTestAuthService(t, time.Hour)
	ctx := context.Background()
	watchlist := NewWatchlistService(repository.NewWatchlistRepository(db), nil)

	guest, err := svc.SignInAnonymous(ctx, SessionMeta{})
	require.NoError(t, err)
	assert.True(t, guest.User.IsAnonymous)
	require.NoError(t, watchlist.Add(ctx, guest.User.ID, movieRequest(550)))

	res, err := svc.SignUp(ctx, guest.User.ID, model.SignUpRequest{Name: "Grace", Email: "grace@example.com", Password: "password123"}, SessionMeta{})
	require.NoError(t, err)
	assert.Equal(t, guest.User.ID, res.User.ID)
	assert.False(t, res.User.IsAnonymous)
	assert.Equal(t, "Grace", res.User.Name)

	in, err := watchlist.Status(ctx, res.User.ID, movieRequest(550))
	require.NoError(t, err)
	assert.True(t, in, "guest watchlist survives sign-up")

	_, err = svc.Authenticate(ctx, guest.Token)
	assert.ErrorIs(t, err, ErrUnauthorized, "guest session is revoked")
}

func TestAuthenticateRejects(t *testing.T) {
	svc, _ := newTestAuthService(t, time.Hour)
	ctx := context.Background()

	res, err := svc.SignInAnonymous(ctx, SessionMeta{})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	forged, err := crypto.GenerateToken(res.User.ID, "not-a-session", testSecret, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, svc.SignOut(ctx, res.Token))
	_, err = svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.NoError(t, svc.SignOut(ctx, "garbage"))
}

func TestAuthenticateDeletesExpiredSession(t *testing.T) {
	svc, db := newTestAuthService(t, time.Hour)
	ctx := context.Background()
	sessions := repository.NewSessionRepository(db)
	user := createUser(t, db, "a@example.com")

	// The JWT outlives the row so only the session expiry is exercised.
	require.NoError(t, sessions.Create(ctx, &model.Session{Token: "expired", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute)}))
	token, err := crypto.GenerateToken(user.ID, "expired", testSecret, time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = sessions.GetByToken(ctx, "expired")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc, db := newTestAuthService(t, time.Hour)
	ctx := context.Background()
	user := createUser(t, db, "a@example.com")

	name := "  New Name "
	res, err := svc.UpdateProfile(ctx, user.ID, model.ProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", res.Name)

	blank := " "
	_, err = svc.UpdateProfile(ctx, user.ID, model.ProfileRequest{Name: &blank})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.UpdateProfile(ctx, "missing", model.ProfileRequest{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPasskeys(t *testing.T) {
	svc, db := newTestAuthService(t, time.Hour)
	ctx := context.Background()
	user := createUser(t, db, "a@example.com")
	other := createUser(t, db, "b@example.com")

	keys, err := svc.Passkeys(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, keys)

	pk := &model.Passkey{Name: "laptop", PublicKey: "pk", UserID: user.ID, CredentialID: "cred", DeviceType: "singleDevice"}
	require.NoError(t, repository.NewPasskeyRepository(db).Create(ctx, pk))

	assert.ErrorIs(t, svc.DeletePasskey(ctx, other.ID, pk.ID), ErrPasskeyNotFound)
	require.NoError(t, svc.DeletePasskey(ctx, user.ID, pk.ID))
	assert.ErrorIs(t, svc.DeletePasskey(ctx, user.ID, pk.ID), ErrPasskeyNotFound)
}

func TestSignInOAuth(t *testing.T) {
	provider := &fakeProvider{identity: &OAuthIdentity{
		AccountID:     "gh-42",
		Email:         "octo@example.com",
		EmailVerified: true,
		Name:          "Octo",
		AccessToken:   "at-1",
	}}
	svc, db := newTestAuthService(t, time.Hour, provider)
	ctx := context.Background()

	assert.Equal(t, []string{"fake"}, svc.Providers())
	url, err := svc.OAuthURL("fake", "xyz")
	require.NoError(t, err)
	assert.Contains(t, url, "state=xyz")
	_, err = svc.OAuthURL("nope", "xyz")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	first, err := svc.SignInOAuth(ctx, "fake", "code", "", SessionMeta{})
	require.NoError(t, err)
	assert.Equal(t, "Octo", first.User.Name)

	provider.identity.AccessToken = "at-2"
	again, err := svc.SignInOAuth(ctx, "fake", "code", "", SessionMeta{})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, again.User.ID)

	account, err := repository.NewAccountRepository(db).GetByProvider(ctx, "fake", "gh-42")
	require.NoError(t, err)
	assert.Equal(t, "at-2", account.AccessToken)

	provider.err = errors.New("denied")
	_, err = svc.SignInOAuth(ctx, "fake", "code", "", SessionMeta{})
	assert.ErrorIs(t, err, ErrOAuthFailed)
}

func TestSignInOAuthLinksVerifiedEmail(t *testing.T) {
	provider := &fakeProvider{identity: &OAuthIdentity{AccountID: "g-1", Email: "ada@example.com", EmailVerified: true}}
	svc, _ := newTestAuthService(t, time.Hour, provider)
	ctx := context.Background()

	existing, err := svc.SignUp(ctx, "", model.SignUpRequest{Email: "ada@example.com", Password: "password123"}, SessionMeta{})
	require.NoError(t, err)

	res, err := svc.SignInOAuth(ctx, "fake", "code", "", SessionMeta{})
	require.NoError(t, err)
	assert.Equal(t, existing.User.ID, res.User.ID)
}

func TestSignInOAuthPromotesGuestsWithoutEmail(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestAuthService(t, time.Hour, provider)
	ctx := context.Background()

	for _, login := range []string{"octo-a", "octo-b"} {
		guest, err := svc.SignInAnonymous(ctx, SessionMeta{})
		require.NoError(t, err)

		provider.identity = &OAuthIdentity{AccountID: login, Name: login, Image: "https://avatars.test/" + login}
		res, err := svc.SignInOAuth(ctx, "fake", "code", guest.User.ID, SessionMeta{})
		require.NoError(t, err, login)
		assert.Equal(t, guest.User.ID, res.User.ID)
		assert.False(t, res.User.IsAnonymous)
		assert.Empty(t, res.User.Email)
		assert.Equal(t, "https://avatars.test/"+login, res.User.Image)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	svc, db := newTestAuthService(t, time.Hour)
	ctx := context.Background()
	sessions := repository.NewSessionRepository(db)
	user := createUser(t, db, "a@example.com")

	require.NoError(t, sessions.Create(ctx, &model.Session{Token: "old", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, sessions.Create(ctx, &model.Session{Token: "new", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}))

	n, err := svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
