package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"authportal/internal/shared/constants"
	"authportal/pkg/cache"
)

// expirySkew keeps a cached token from being handed out right before it expires
const expirySkew = 30 * time.Second

// TokenFetcher is the subset of Client the token source needs
type TokenFetcher interface {
	Token(ctx context.Context, cookies []*http.Cookie) (string, error)
}

// TokenSource hands out bearer tokens for backend calls, caching them in Redis
// per session until shortly before they expire
type TokenSource struct {
	fetcher     TokenFetcher
	cache       cache.Service
	cookieName  string
	fallbackTTL time.Duration
	now         func() time.Time
}

// NewTokenSource creates a token source. fallbackTTL applies to tokens without an exp claim.
func NewTokenSource(fetcher TokenFetcher, cacheService cache.Service, cookieName string, fallbackTTL time.Duration) *TokenSource {
	return &TokenSource{
		fetcher:     fetcher,
		cache:       cacheService,
		cookieName:  cookieName,
		fallbackTTL: fallbackTTL,
		now:         time.Now,
	}
}

// Token returns a bearer token for the session carried by r
func (ts *TokenSource) Token(ctx context.Context, r *http.Request) (string, error) {
	session, ok := SessionCookie(r, ts.cookieName)
	if !ok {
		return "", ErrNoSession
	}
	key := constants.BuildBearerTokenKey(Fingerprint(session.Value))

	if ts.cache != nil {
		var cached string
		if err := ts.cache.Get(ctx, key, &cached); err == nil && cached != "" {
			return cached, nil
		}
	}

	token, err := ts.fetcher.Token(ctx, r.Cookies())
	if err != nil {
		return "", err
	}

	if ts.cache != nil {
		if ttl := ts.ttl(token); ttl > 0 {
			// a failed write only costs another fetch
			_ = ts.cache.Set(ctx, key, token, ttl)
		}
	}
	return token, nil
}

// Forget drops the cached token for the session carried by r
func (ts *TokenSource) Forget(ctx context.Context, r *http.Request) {
	if ts.cache == nil {
		return
	}
	if session, ok := SessionCookie(r, ts.cookieName); ok {
		_ = ts.cache.Delete(ctx, constants.BuildBearerTokenKey(Fingerprint(session.Value)))
	}
}

func (ts *TokenSource) ttl(token string) time.Duration {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return ts.fallbackTTL
	}
	ttl := claims.ExpiresAt.Time.Sub(ts.now()) - expirySkew
	if ttl <= 0 {
		return 0
	}
	if ts.fallbackTTL > 0 && ttl > ts.fallbackTTL {
		return ts.fallbackTTL
	}
	return ttl
}

// IsNoSession reports whether err means the caller is not signed in
func IsNoSession(err error) bool {
	return errors.Is(err, ErrNoSession) || IsStatus(err, http.StatusUnauthorized)
}
