// Package auth implements the bearer token issuer: a stateless HS256 JWT
// signer/verifier binding a member id to an expiry.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/talkroom/talkroom/internal/common"
)

// Issuer signs and verifies bearer tokens. The secret and validity window are
// fixed at construction; an Issuer is safe for concurrent use.
type Issuer struct {
	secretKey []byte
	validity  time.Duration
}

func NewIssuer(secretKey []byte, validity time.Duration) *Issuer {
	return &Issuer{secretKey: secretKey, validity: validity}
}

// Issue produces a signed token whose subject is the member id and whose
// expiry is now plus the configured validity window.
func (i *Issuer) Issue(memberID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   memberID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
	})

	tokenString, err := token.SignedString(i.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// member id it was issued for. An elapsed expiry yields ErrTokenExpired,
// any other defect ErrInvalidToken.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
