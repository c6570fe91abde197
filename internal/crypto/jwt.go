package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer   = "marquee"
	audience = "marquee-web"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims wraps an opaque session token. The session row stays authoritative;
// the signature only keeps forged cookies from reaching the database.
type Claims struct {
	jwt.RegisteredClaims
	SessionToken string `json:"sid"`
}

// UserID returns the subject the session was issued to.
func (c *Claims) UserID() string {
	return c.Subject
}

// GenerateToken creates a signed JWT carrying the session token for userID.
func GenerateToken(userID, sessionToken, secret string, expiresAt time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		SessionToken: sessionToken,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and validates a JWT token string, returning the claims if valid.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer), jwt.WithAudience(audience), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionToken == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
