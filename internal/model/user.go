package model

import "time"

// User represents a user in the database.
type User struct {
	ID            string
	Name          string
	Email         string
	EmailVerified bool
	Image         string
	Region        string
	IsAnonymous   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Session is a server-side login session. Token is opaque and unique.
type Session struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Account links a user to one provider identity. Password is only set for the
// credential provider and holds an argon2id PHC hash.
type Account struct {
	ID                    string
	AccountID             string
	ProviderID            string
	UserID                string
	AccessToken           string
	RefreshToken          string
	IDToken               string
	AccessTokenExpiresAt  *time.Time
	RefreshTokenExpiresAt *time.Time
	Scope                 string
	Password              string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Passkey is a registered WebAuthn credential.
type Passkey struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	PublicKey    string    `json:"-"`
	UserID       string    `json:"-"`
	CredentialID string    `json:"credentialId"`
	Counter      int64     `json:"counter"`
	DeviceType   string    `json:"deviceType"`
	BackedUp     bool      `json:"backedUp"`
	Transports   string    `json:"transports,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SignUpRequest represents an email/password registration request.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInRequest represents an email/password login request.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileRequest carries optional profile changes; nil fields are left as-is.
type ProfileRequest struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

// AuthResponse represents an authentication response with a session token and user info.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	Image         string    `json:"image,omitempty"`
	Region        string    `json:"region"`
	IsAnonymous   bool      `json:"isAnonymous"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewUserResponse strips a user down to its public fields.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Image:         u.Image,
		Region:        u.Region,
		IsAnonymous:   u.IsAnonymous,
		CreatedAt:     u.CreatedAt,
	}
}
