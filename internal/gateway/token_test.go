package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/redis/go-redis/v9"

	"authportal/internal/shared/constants"
	"authportal/pkg/cache"
)

type countingFetcher struct {
	token string
	calls int
}

func (f *countingFetcher) Token(ctx context.Context, cookies []*http.Cookie) (string, error) {
	f.calls++
	return f.token, nil
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, cache.Service) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, cache.NewService(rdb)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func sessionRequest(value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "better-auth.session_token", Value: value})
	return r
}

func TestTokenSource_CachesUntilExpiry(t *testing.T) {
	mr, svc := newTestCache(t)
	fetcher := &countingFetcher{token: signedToken(t, time.Now().Add(10*time.Minute))}
	ts := NewTokenSource(fetcher, svc, "better-auth.session_token", time.Hour)

	for i := 0; i < 3; i++ {
		got, err := ts.Token(context.Background(), sessionRequest("sess-1"))
		if err != nil {
			t.Fatalf("Token() error = %v", err)
		}
		if got != fetcher.token {
			t.Fatalf("Token() = %q", got)
		}
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1", fetcher.calls)
	}

	ttl := mr.TTL(constants.BuildBearerTokenKey(Fingerprint("sess-1")))
	if ttl <= 0 || ttl > 10*time.Minute {
		t.Errorf("ttl = %v", ttl)
	}

	ts.Forget(context.Background(), sessionRequest("sess-1"))
	if _, err := ts.Token(context.Background(), sessionRequest("sess-1")); err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if fetcher.calls != 2 {
		t.Errorf("fetcher calls after Forget = %d, want 2", fetcher.calls)
	}
}

func TestTokenSource_SeparateSessions(t *testing.T) {
	_, svc := newTestCache(t)
	fetcher := &countingFetcher{token: "opaque-token"}
	ts := NewTokenSource(fetcher, svc, "better-auth.session_token", time.Minute)

	ts.Token(context.Background(), sessionRequest("a"))
	ts.Token(context.Background(), sessionRequest("b"))
	if fetcher.calls != 2 {
		t.Errorf("fetcher calls = %d, want 2", fetcher.calls)
	}
}

func TestTokenSource_ExpiredTokenNotCached(t *testing.T) {
	_, svc := newTestCache(t)
	fetcher := &countingFetcher{token: signedToken(t, time.Now().Add(10*time.Second))}
	ts := NewTokenSource(fetcher, svc, "better-auth.session_token", time.Hour)

	ts.Token(context.Background(), sessionRequest("s"))
	ts.Token(context.Background(), sessionRequest("s"))
	if fetcher.calls != 2 {
		t.Errorf("fetcher calls = %d, want 2", fetcher.calls)
	}
}

func TestTokenSource_NoSession(t *testing.T) {
	ts := NewTokenSource(&countingFetcher{token: "x"}, nil, "better-auth.session_token", time.Minute)
	_, err := ts.Token(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !IsNoSession(err) {
		t.Errorf("expected no-session error, got %v", err)
	}
}
