package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/marquee/marquee-go/internal/crypto"
	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/repository"
)

const (
	minPasswordLength = 8
	maxNameLength     = 100
	sessionTokenBytes = 32
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmail       = errors.New("email is invalid")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrEmailTaken         = errors.New("email already taken")
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name must be at most 100 characters")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUnknownProvider    = errors.New("unknown sign-in provider")
	ErrOAuthFailed        = errors.New("sign-in with provider failed")
)

// SessionMeta describes the client a session is issued to.
type SessionMeta struct {
	IPAddress string
	UserAgent string
}

// AuthService handles authentication business logic.
type AuthService struct {
	users     *repository.UserRepository
	sessions  *repository.SessionRepository
	accounts  *repository.AccountRepository
	passkeys  *repository.PasskeyRepository
	secret    string
	ttl       time.Duration
	providers map[string]OAuthProvider
}

// NewAuthService creates a new AuthService. Only the given OAuth providers
// are offered.
func NewAuthService(
	users *repository.UserRepository,
	sessions *repository.SessionRepository,
	accounts *repository.AccountRepository,
	passkeys *repository.PasskeyRepository,
	secret string,
	ttl time.Duration,
	providers ...OAuthProvider,
) *AuthService {
	s := &AuthService{
		users:     users,
		sessions:  sessions,
		accounts:  accounts,
		passkeys:  passkeys,
		secret:    secret,
		ttl:       ttl,
		providers: make(map[string]OAuthProvider, len(providers)),
	}
	for _, p := range providers {
		s.providers[p.Name()] = p
	}
	return s
}

// SignInAnonymous creates a guest user and a session for it.
func (s *AuthService) SignInAnonymous(ctx context.Context, meta SessionMeta) (model.AuthResponse, error) {
	name, err := crypto.GuestName()
	if err != nil {
		return model.AuthResponse{}, err
	}
	user := &model.User{Name: name, IsAnonymous: true}
	if err := s.users.Create(ctx, user); err != nil {
		return model.AuthResponse{}, fmt.Errorf("failed to create guest: %w", err)
	}
	return s.issueSession(ctx, user, meta)
}

// SignUp registers an email and password. When currentUserID is an
// anonymous user it is promoted in place so its library is kept.
func (s *AuthService) SignUp(ctx context.Context, currentUserID string, req model.SignUpRequest, meta SessionMeta) (model.AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if req.Password == "" {
		return model.AuthResponse{}, ErrPasswordRequired
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return model.AuthResponse{}, ErrPasswordTooShort
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return model.AuthResponse{}, ErrNameTooLong
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.signUpUser(ctx, currentUserID, name, email)
	if err != nil {
		return model.AuthResponse{}, err
	}

	err = s.accounts.Create(ctx, &model.Account{
		AccountID:  user.ID,
		ProviderID: repository.ProviderCredential,
		UserID:     user.ID,
		Password:   hash,
	})
	if err != nil {
		slog.Error("credential account create failed", "user_id", user.ID, "error", err)
		return model.AuthResponse{}, fmt.Errorf("failed to sign up: %w", err)
	}
	return s.issueSession(ctx, user, meta)
}

func (s *AuthService) signUpUser(ctx context.Context, currentUserID, name, email string) (*model.User, error) {
	if currentUserID != "" {
		current, err := s.users.GetByID(ctx, currentUserID)
		if err == nil && current.IsAnonymous {
			promoted := &model.User{ID: current.ID, Name: name, Email: email}
			if err := s.users.Promote(ctx, promoted); err != nil {
				if errors.Is(err, repository.ErrDuplicateEmail) {
					return nil, ErrEmailTaken
				}
				return nil, fmt.Errorf("failed to sign up: %w", err)
			}
			// Guest sessions die with the guest identity.
			if err := s.sessions.DeleteByUser(ctx, current.ID); err != nil {
				slog.Warn("guest session cleanup failed", "user_id", current.ID, "error", err)
			}
			return s.users.GetByID(ctx, current.ID)
		}
	}

	user := &model.User{Name: name, Email: email}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}
	return user, nil
}

// SignIn authenticates an email and password.
func (s *AuthService) SignIn(ctx context.Context, req model.SignInRequest, meta SessionMeta) (model.AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if req.Password == "" {
		return model.AuthResponse{}, ErrPasswordRequired
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}
	account, err := s.accounts.GetByUser(ctx, user.ID, repository.ProviderCredential)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, account.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	if params := crypto.DefaultHashParams(); crypto.NeedsRehash(account.Password, params) {
		if hash, err := crypto.HashPasswordWith(req.Password, params); err == nil {
			if err := s.accounts.UpdatePassword(ctx, account.ID, hash); err != nil {
				slog.Warn("password rehash failed", "user_id", user.ID, "error", err)
			}
		}
	}

	return s.issueSession(ctx, user, meta)
}

// SignOut ends the session carried by token. Unknown or invalid tokens are
// ignored.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := crypto.ValidateToken(token, s.secret)
	if err != nil {
		return nil
	}
	if err := s.sessions.DeleteByToken(ctx, claims.SessionToken); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// Authenticate resolves a signed session token to its user. Expired sessions
// are deleted and rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := crypto.ValidateToken(token, s.secret)
	if err != nil {
		return nil, ErrUnauthorized
	}

	session, err := s.sessions.GetByToken(ctx, claims.SessionToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.UserID != claims.UserID() {
		return nil, ErrUnauthorized
	}
	if session.Expired(time.Now()) {
		if err := s.sessions.DeleteByToken(ctx, session.Token); err != nil {
			slog.Warn("expired session cleanup failed", "user_id", session.UserID, "error", err)
		}
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// PurgeExpiredSessions deletes every expired session.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, time.Now())
}

// GetUser retrieves a user by ID and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUnauthorized
		}
		return model.UserResponse{}, err
	}
	return model.NewUserResponse(user), nil
}

// UpdateProfile applies the non-nil fields of req.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req model.ProfileRequest) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUnauthorized
		}
		return model.UserResponse{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return model.UserResponse{}, ErrNameRequired
		}
		if utf8.RuneCountInString(name) > maxNameLength {
			return model.UserResponse{}, ErrNameTooLong
		}
		user.Name = name
	}
	if req.Image != nil {
		user.Image = strings.TrimSpace(*req.Image)
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		slog.Error("profile update failed", "user_id", userID, "error", err)
		return model.UserResponse{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return model.NewUserResponse(user), nil
}

// Passkeys lists the user's registered passkeys.
func (s *AuthService) Passkeys(ctx context.Context, userID string) ([]model.Passkey, error) {
	keys, err := s.passkeys.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load passkeys: %w", err)
	}
	if keys == nil {
		keys = []model.Passkey{}
	}
	return keys, nil
}

// DeletePasskey removes one of the user's passkeys.
func (s *AuthService) DeletePasskey(ctx context.Context, userID, id string) error {
	if err := s.passkeys.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrPasskeyNotFound) {
			return ErrPasskeyNotFound
		}
		return fmt.Errorf("failed to delete passkey: %w", err)
	}
	return nil
}

// Providers returns the names of the configured OAuth providers.
func (s *AuthService) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// OAuthURL returns the consent URL for provider.
func (s *AuthService) OAuthURL(provider, state string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", ErrUnknownProvider
	}
	return p.AuthCodeURL(state), nil
}

// SignInOAuth completes a provider sign-in. A known identity signs into its
// user; a new identity is linked to the current anonymous user, to an
// existing user with the same verified email, or to a new user.
func (s *AuthService) SignInOAuth(ctx context.Context, provider, code, currentUserID string, meta SessionMeta) (model.AuthResponse, error) {
	p, ok := s.providers[provider]
	if !ok {
		return model.AuthResponse{}, ErrUnknownProvider
	}
	identity, err := p.Exchange(ctx, code)
	if err != nil {
		slog.Warn("oauth exchange failed", "provider", provider, "error", err)
		return model.AuthResponse{}, ErrOAuthFailed
	}

	account, err := s.accounts.GetByProvider(ctx, provider, identity.AccountID)
	switch {
	case err == nil:
		applyIdentity(account, identity)
		if err := s.accounts.UpdateTokens(ctx, account); err != nil {
			slog.Warn("oauth token update failed", "provider", provider, "user_id", account.UserID, "error", err)
		}
		user, err := s.users.GetByID(ctx, account.UserID)
		if err != nil {
			return model.AuthResponse{}, fmt.Errorf("failed to sign in: %w", err)
		}
		return s.issueSession(ctx, user, meta)
	case !errors.Is(err, repository.ErrAccountNotFound):
		return model.AuthResponse{}, fmt.Errorf("failed to sign in: %w", err)
	}

	user, err := s.oauthUser(ctx, currentUserID, identity)
	if err != nil {
		return model.AuthResponse{}, err
	}

	account = &model.Account{AccountID: identity.AccountID, ProviderID: provider, UserID: user.ID}
	applyIdentity(account, identity)
	if err := s.accounts.Create(ctx, account); err != nil {
		slog.Error("oauth account link failed", "provider", provider, "user_id", user.ID, "error", err)
		return model.AuthResponse{}, fmt.Errorf("failed to sign in: %w", err)
	}
	return s.issueSession(ctx, user, meta)
}

func (s *AuthService) oauthUser(ctx context.Context, currentUserID string, id *OAuthIdentity) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(id.Email))
	name := strings.TrimSpace(id.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	if name == "" {
		name = "User"
	}

	if email != "" && id.EmailVerified {
		existing, err := s.users.GetByEmail(ctx, email)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to sign in: %w", err)
		}
	}

	if currentUserID != "" {
		current, err := s.users.GetByID(ctx, currentUserID)
		if err == nil && current.IsAnonymous {
			promoted := &model.User{
				ID:            current.ID,
				Name:          name,
				Email:         email,
				EmailVerified: id.EmailVerified,
				Image:         id.Image,
			}
			if err := s.users.Promote(ctx, promoted); err != nil {
				if errors.Is(err, repository.ErrDuplicateEmail) {
					return nil, ErrEmailTaken
				}
				return nil, fmt.Errorf("failed to sign in: %w", err)
			}
			return s.users.GetByID(ctx, current.ID)
		}
	}

	user := &model.User{Name: name, Email: email, EmailVerified: id.EmailVerified, Image: id.Image}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	return user, nil
}

func applyIdentity(a *model.Account, id *OAuthIdentity) {
	a.AccessToken = id.AccessToken
	a.RefreshToken = id.RefreshToken
	a.IDToken = id.IDToken
	a.AccessTokenExpiresAt = id.Expiry
	a.Scope = id.Scope
}

func (s *AuthService) issueSession(ctx context.Context, user *model.User, meta SessionMeta) (model.AuthResponse, error) {
	opaque, err := crypto.NewToken(sessionTokenBytes)
	if err != nil {
		return model.AuthResponse{}, err
	}
	session := &model.Session{
		Token:     opaque,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.ttl).UTC().Truncate(time.Second),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return model.AuthResponse{}, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := crypto.GenerateToken(user.ID, opaque, s.secret, session.ExpiresAt)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      model.NewUserResponse(user),
	}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
