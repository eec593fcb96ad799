package utils // package utils provides helper functions for token creation

import (
	"errors"
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// OperatorRole is the role claim required by the deployment history endpoint.
const OperatorRole = "OPERATOR"

// AccessToken represents a signed JWT along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewOperatorToken signs an HS256 JWT for subject carrying the operator
// role.  The token includes sub, role, exp and iat claims.
func NewOperatorToken(secret, subject string, ttl time.Duration) (AccessToken, error) {
	if secret == "" {
		return AccessToken{}, errors.New("empty signing secret")
	}
	if ttl <= 0 {
		return AccessToken{}, errors.New("ttl must be positive")
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": OperatorRole,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
