// Package auth reads the bearer tokens issued by the admin API. The signing
// key stays on the server, so claims are parsed without verification and
// only used to skip restoring a session that is known to be expired.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Common errors
var (
	ErrOpaqueToken = errors.New("token is not a JWT")
	ErrNoExpiry    = errors.New("token carries no expiry")
)

// TokenInfo is what a token says about itself
type TokenInfo struct {
	Subject   string
	Issuer    string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Inspector parses tokens without verifying them
type Inspector struct {
	parser *jwt.Parser
	leeway time.Duration
	now    func() time.Time
}

// NewInspector creates an inspector. Tokens expiring within leeway count
// as expired.
func NewInspector(leeway time.Duration) *Inspector {
	return &Inspector{
		parser: jwt.NewParser(),
		leeway: leeway,
		now:    time.Now,
	}
}

// Inspect reads the registered claims of token
func (i *Inspector) Inspect(token string) (TokenInfo, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, ErrOpaqueToken
	}
	info := TokenInfo{Subject: claims.Subject, Issuer: claims.Issuer}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	return info, nil
}

// Expired reports whether token is a JWT whose expiry has passed. Opaque
// tokens and JWTs without an expiry are never considered expired.
func (i *Inspector) Expired(token string) bool {
	info, err := i.Inspect(token)
	if err != nil || info.ExpiresAt.IsZero() {
		return false
	}
	return !i.now().Add(i.leeway).Before(info.ExpiresAt)
}

// Remaining returns how long token stays valid
func (i *Inspector) Remaining(token string) (time.Duration, error) {
	info, err := i.Inspect(token)
	if err != nil {
		return 0, err
	}
	if info.ExpiresAt.IsZero() {
		return 0, ErrNoExpiry
	}
	return info.ExpiresAt.Sub(i.now()), nil
}
