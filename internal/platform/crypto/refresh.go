package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// NewRefreshToken returns an opaque refresh token and the hash stored for it.
func NewRefreshToken() (token, hash string, err error) {
	token, err = randomHex(32)
	if err != nil {
		return "", "", err
	}
	return token, HashRefreshToken(token), nil
}

func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
