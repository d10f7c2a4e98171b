package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the HTTP cookie carrying the access token.
const CookieName = "access_token"

// TokenTTL is how long a minted access token stays valid.
const TokenTTL = 24 * time.Hour

// TokenError is returned when a token cannot be parsed or fails validation.
type TokenError struct {
	Reason string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("invalid token: %s", e.Reason)
}

// Tokens mints and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

type claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Mint issues a signed token for the user, valid for TokenTTL.
func (t *Tokens) Mint(userID string) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the user ID it was minted for.
func (t *Tokens) Verify(tokenString string) (string, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now() }))
	if err != nil {
		return "", &TokenError{Reason: err.Error()}
	}
	if !token.Valid || c.UserID == "" {
		return "", &TokenError{Reason: "missing user_id claim"}
	}
	return c.UserID, nil
}
