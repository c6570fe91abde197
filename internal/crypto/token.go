package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

// NewToken returns n random bytes encoded as unpadded base64url. Used for
// session tokens and OAuth state.
func NewToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

const guestSuffixChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GuestName returns a display name for an anonymous user, e.g. "Guest K7QX".
func GuestName() (string, error) {
	suffix := make([]byte, 4)
	max := big.NewInt(int64(len(guestSuffixChars)))
	for i := range suffix {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating guest name: %w", err)
		}
		suffix[i] = guestSuffixChars[idx.Int64()]
	}
	return "Guest " + string(suffix), nil
}
