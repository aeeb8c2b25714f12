// Package auth implements the admin session gate: a shared-secret check in
// front of every mutating endpoint, plus short-lived session tokens derived
// from that secret.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/visualink/studio/internal/apperr"
)

const (
	sessionIssuer  = "studio-admin"
	sessionSubject = "admin"
)

// Session is a signed admin session token.
type Session struct {
	Token     string    `json:"token"     example:"eyJhbGci..."`
	ExpiresAt time.Time `json:"expiresAt" example:"2026-02-27T14:48:34Z"`
}

// Gate authorizes admin requests against a shared secret injected at construction.
type Gate struct {
	secret     []byte
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewGate creates a Gate. An empty secret produces a gate that rejects every
// credential.
func NewGate(secret string, sessionTTL time.Duration) *Gate {
	g := &Gate{ttl: sessionTTL, now: time.Now}
	if secret != "" {
		g.secret = []byte(secret)
		mac := hmac.New(sha256.New, g.secret)
		mac.Write([]byte("admin-session-signing-key"))
		g.signingKey = mac.Sum(nil)
	}
	return g
}

// Configured reports whether a secret was supplied.
func (g *Gate) Configured() bool {
	return len(g.secret) > 0
}

// CheckSecret accepts only the raw shared secret.
func (g *Gate) CheckSecret(credential string) error {
	if !g.Configured() || credential == "" {
		return apperr.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(credential), g.secret) != 1 {
		return apperr.ErrUnauthorized
	}
	return nil
}

// Check accepts either the raw shared secret or an unexpired session token.
func (g *Gate) Check(credential string) error {
	if g.CheckSecret(credential) == nil {
		return nil
	}
	if !g.Configured() || strings.Count(credential, ".") != 2 {
		return apperr.ErrUnauthorized
	}
	return g.verifySession(credential)
}

// IssueSession signs a session token valid for the configured TTL.
func (g *Gate) IssueSession() (*Session, error) {
	if !g.Configured() {
		return nil, apperr.ErrUnauthorized
	}
	now := g.now()
	expiresAt := now.Add(g.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   sessionSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.signingKey)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt.UTC().Truncate(time.Second)}, nil
}

func (g *Gate) verifySession(raw string) error {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return g.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithSubject(sessionSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil || !token.Valid {
		return apperr.ErrUnauthorized
	}
	return nil
}
