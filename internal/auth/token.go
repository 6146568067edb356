package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "taskManagementAPI"

// SignSessionToken returns an HS256 token naming sessionID and expiring at
// expiresAt. The token carries no user data; it only points at server state.
func SignSessionToken(secret, sessionID string, expiresAt time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("session secret is empty")
	}
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseSessionToken validates tokenStr and returns the session id it names.
func ParseSessionToken(tokenStr, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("session secret is empty")
	}
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return "", err
	}
	if claims.ID == "" {
		return "", errors.New("invalid claims")
	}
	return claims.ID, nil
}
