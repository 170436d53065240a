package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"metastor/internal/apperr"
	"metastor/internal/models"
	"strconv"
	"strings"
	"time"

	"github.com/mr-tron/base58"
)

const DefaultAppName = "MetaStor"

type AccountStore interface {
	UpsertAccount(ctx context.Context, pubKey string) (*models.Account, error)
}

// Authenticator runs the wallet challenge/response login.
type Authenticator struct {
	accounts AccountStore
	guard    *NonceGuard
	appName  string
	secret   string
	ttl      time.Duration
	now      func() time.Time
}

type Option func(*Authenticator)

func WithNonceGuard(g *NonceGuard) Option {
	return func(a *Authenticator) { a.guard = g }
}

func WithAppName(name string) Option {
	return func(a *Authenticator) {
		if name != "" {
			a.appName = name
		}
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(a *Authenticator) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

func NewAuthenticator(accounts AccountStore, secret string, opts ...Option) *Authenticator {
	a := &Authenticator{
		accounts: accounts,
		appName:  DefaultAppName,
		secret:   secret,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GenerateNonce returns "<app> Login <unix-seconds>".
func GenerateNonce(appName string, now time.Time) string {
	return fmt.Sprintf("%s Login %d", appName, now.Unix())
}

// ParseNonce extracts the timestamp of a nonce produced by GenerateNonce.
func ParseNonce(appName, nonce string) (time.Time, error) {
	prefix := appName + " Login "
	if !strings.HasPrefix(nonce, prefix) {
		return time.Time{}, fmt.Errorf("nonce does not start with %q", prefix)
	}
	secs, err := strconv.ParseInt(strings.TrimPrefix(nonce, prefix), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("nonce timestamp: %w", err)
	}
	return time.Unix(secs, 0), nil
}

func (a *Authenticator) GenerateNonce() string {
	return GenerateNonce(a.appName, a.now())
}

func (a *Authenticator) AppName() string {
	return a.appName
}

// Login verifies that signatureB64 is the owner's signature over nonce and
// mints a session. The account is created on first login.
func (a *Authenticator) Login(ctx context.Context, pubKey, signatureB64, nonce string) (*Session, error) {
	if pubKey == "" || signatureB64 == "" || nonce == "" {
		return nil, apperr.MalformedInput("publicKey, signature and nonce are required")
	}

	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return nil, apperr.MalformedInput("signature is not valid base64: %v", err)
	}

	pub, err := base58.Decode(pubKey)
	if err != nil {
		return nil, apperr.MalformedInput("public key is not valid base58: %v", err)
	}

	ok, err := VerifySignature([]byte(nonce), sig, pub)
	if err != nil {
		if errors.Is(err, ErrInvalidInputLength) {
			return nil, apperr.MalformedInput("%v", err)
		}
		return nil, apperr.Internal("signature verification", err)
	}
	if !ok {
		return nil, apperr.InvalidSignature("invalid signature")
	}

	if a.guard != nil {
		if err := a.guard.Check(ctx, pubKey, nonce, a.now()); err != nil {
			return nil, err
		}
	}

	account, err := a.accounts.UpsertAccount(ctx, pubKey)
	if err != nil {
		return nil, apperr.Internal("failed to upsert account", err)
	}

	session, err := GenerateJWT(account, a.secret, a.ttl, a.now())
	if err != nil {
		return nil, apperr.Internal("failed to sign session token", err)
	}
	return session, nil
}
