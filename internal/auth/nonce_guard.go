package auth

import (
	"context"
	"metastor/internal/apperr"
	"time"
)

const (
	DefaultNonceMaxAge = 5 * time.Minute
	nonceClockSkew     = 1 * time.Minute
)

// NonceStore records nonces that have been spent. Claim returns false when
// the key was already claimed.
type NonceStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// NonceGuard enforces nonce freshness and single use. It is opt-in: without
// it a captured signature/nonce pair can be replayed.
type NonceGuard struct {
	store   NonceStore
	appName string
	maxAge  time.Duration
}

func NewNonceGuard(store NonceStore, appName string, maxAge time.Duration) *NonceGuard {
	if maxAge <= 0 {
		maxAge = DefaultNonceMaxAge
	}
	if appName == "" {
		appName = DefaultAppName
	}
	return &NonceGuard{store: store, appName: appName, maxAge: maxAge}
}

func (g *NonceGuard) Check(ctx context.Context, pubKey, nonce string, now time.Time) error {
	issued, err := ParseNonce(g.appName, nonce)
	if err != nil {
		return apperr.MalformedInput("%v", err)
	}
	if now.Sub(issued) > g.maxAge {
		return apperr.Unauthorized("nonce expired")
	}
	if issued.Sub(now) > nonceClockSkew {
		return apperr.Unauthorized("nonce issued in the future")
	}

	claimed, err := g.store.Claim(ctx, "nonce:"+pubKey+":"+nonce, g.maxAge+nonceClockSkew)
	if err != nil {
		return apperr.UpstreamUnavailable("nonce store", err)
	}
	if !claimed {
		return apperr.Unauthorized("nonce already used")
	}
	return nil
}
