package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IssuedToken is a freshly minted access/refresh token pair
type IssuedToken struct {
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
}

// TokenIssuer mints bearer token strings.
//
// Tokens are HS256-signed JWTs carrying a random jti, so every string is
// unique and unguessable. Tokens are matched verbatim against the store;
// the signature is not checked on the way back in.
type TokenIssuer struct {
	secret             []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewTokenIssuer creates a new token issuer
func NewTokenIssuer(secret string, accessTokenExpiry, refreshTokenExpiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:             []byte(secret),
		accessTokenExpiry:  accessTokenExpiry,
		refreshTokenExpiry: refreshTokenExpiry,
	}
}

// Issue mints a token pair for the account
func (i *TokenIssuer) Issue(accountID string, now time.Time) (*IssuedToken, error) {
	expiresAt := now.Add(i.accessTokenExpiry)

	token, err := i.sign(jwt.MapClaims{
		"sub":  accountID,
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
		"type": "access",
		"jti":  uuid.New().String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := i.sign(jwt.MapClaims{
		"sub":  accountID,
		"exp":  now.Add(i.refreshTokenExpiry).Unix(),
		"iat":  now.Unix(),
		"type": "refresh",
		"jti":  uuid.New().String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &IssuedToken{
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func (i *TokenIssuer) sign(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}
