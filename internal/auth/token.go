package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrShopMismatch = errors.New("session token issued for a different shop")
)

// TokenVerifier validates POS session tokens. They are short-lived JWTs
// signed by the platform with the app's shared secret; the destination claim
// names the shop the token was minted for.
type TokenVerifier struct {
	secret []byte
	apiKey string
}

func NewTokenVerifier(secret, apiKey string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), apiKey: apiKey}
}

type sessionClaims struct {
	Dest string `json:"dest"`
	jwt.RegisteredClaims
}

// VerifySessionToken checks signature, expiry and audience, and returns the
// shop domain the token belongs to.
func (v *TokenVerifier) VerifySessionToken(tokenString string) (string, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return v.secret, nil
	}, jwt.WithAudience(v.apiKey))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	shop, err := shopFromDest(claims.Dest)
	if err != nil {
		return "", err
	}
	return shop, nil
}

// shopFromDest extracts the shop domain from the token's dest claim, which
// arrives as "https://{shop}.myshopify.com".
func shopFromDest(dest string) (string, error) {
	if dest == "" {
		return "", fmt.Errorf("%w: missing dest claim", ErrInvalidToken)
	}
	u, err := url.Parse(dest)
	if err != nil || u.Host == "" {
		// Some runtimes send the bare domain without a scheme.
		if err == nil && !strings.Contains(dest, "/") {
			return dest, nil
		}
		return "", fmt.Errorf("%w: malformed dest claim", ErrInvalidToken)
	}
	return u.Host, nil
}
