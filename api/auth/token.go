package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/chatbook/chatbook-backend/env"
)

// genAccessToken signs a short-lived HS256 token bound to the calling device
// (audience) and the account (subject). Symmetric on purpose: the same
// process signs and verifies.
func genAccessToken(aud, sub string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "https://chatbook.test",
		Audience:  jwt.ClaimStrings{aud},
		Subject:   sub,
	})
	return token.SignedString(env.HS256_SECRET)
}
