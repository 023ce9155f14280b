// Package auth verifies identity-provider bearer tokens and gates API routes.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. The front-end runs the OAuth flow against the identity provider itself
//    (it fetches /auth/config to learn the domain/clientID/audience).
// 2. The provider issues the browser a signed RS256 access token.
// 3. Every API call carries it as "Authorization: Bearer <jwt>".
// 4. This package verifies signature, issuer, audience, and expiry — no
//    round trip to the provider, just the provider's public key.
// 5. The verified subject ("sub" claim) identifies the caller everywhere
//    downstream; registration state is a separate, local check.
//
// The server never implements the OAuth protocol and never sees credentials.
// Its entire trust decision is "was this token signed by the provider's key
// and minted for this API" — which is exactly what RS256 + issuer + audience
// verification answers.
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates RS256 bearer tokens issued by the identity provider.
//
// RS256 is asymmetric: the provider signs with its private key, we verify
// with the published public key. Unlike HS256 there is no shared secret to
// protect on this side — the public key can sit in plain config.
type Verifier struct {
	key      *rsa.PublicKey
	issuer   string
	audience string
}

// NewVerifier builds a Verifier from the provider's PEM-encoded public key
// and the expected issuer and audience values.
//
// issuer is the provider's base URL (e.g. "https://tenant.auth0.example/")
// and audience is this API's identifier as registered with the provider.
// A token minted for a different API fails the audience check even though
// its signature is valid — that check is what scopes tokens to us.
func NewVerifier(publicKeyPEM []byte, issuer, audience string) (*Verifier, error) {
	if issuer == "" || audience == "" {
		return nil, errors.New("auth: issuer and audience are required")
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("auth: parsing provider public key: %w", err)
	}

	return &Verifier{
		key:      key,
		issuer:   issuer,
		audience: audience,
	}, nil
}

// claims embeds jwt.RegisteredClaims; the subject is all we consume.
type claims struct {
	jwt.RegisteredClaims
}

// Verify parses and verifies a bearer token string and returns the subject.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid against the provider's public key
//   - Algorithm is RS256 (jwt.WithValidMethods blocks algorithm confusion —
//     a token claiming alg "none" or HS256 is rejected before verification)
//   - Issuer and audience match the configured values
//   - Token is not expired, and an expiry claim is present at all
//
// Callers must not distinguish WHY verification failed in anything
// client-visible: every failure collapses to the same 401.
func (v *Verifier) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return v.key, nil
		},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	// A verified token with no subject is a provider misconfiguration, not a
	// client mistake, but the response is still a uniform 401.
	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
