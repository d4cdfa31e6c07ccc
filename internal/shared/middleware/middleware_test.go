package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"authportal/internal/gateway"
	"authportal/internal/users"
	"authportal/pkg/logger"

	"github.com/gin-gonic/gin"
)

const cookieName = "better-auth.session_token"

type stubSessions struct {
	session *users.Session
	err     error
	calls   int
}

func (s *stubSessions) Current(ctx context.Context, cookies []*http.Cookie) (*users.Session, error) {
	s.calls++
	return s.session, s.err
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, session.User.Email)
	})
	r.GET("/me", handlers...)
	return r
}

func get(r http.Handler, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireSession(t *testing.T) {
	ada := &users.Session{User: users.SessionUser{ID: "u1", Email: "ada@example.com", Role: users.RoleUser}}

	tests := []struct {
		name      string
		cookie    *http.Cookie
		sessions  *stubSessions
		wantCode  int
		wantBody  string
		wantCalls int
	}{
		{"no cookie", nil, &stubSessions{session: ada}, http.StatusUnauthorized, "", 0},
		{"live session", &http.Cookie{Name: cookieName, Value: "v"}, &stubSessions{session: ada}, http.StatusOK, "ada@example.com", 1},
		{"secure cookie", &http.Cookie{Name: gateway.SecurePrefix + cookieName, Value: "v"}, &stubSessions{session: ada}, http.StatusOK, "ada@example.com", 1},
		{"expired session", &http.Cookie{Name: cookieName, Value: "v"}, &stubSessions{err: gateway.ErrNoSession}, http.StatusUnauthorized, "", 1},
		{"gateway down", &http.Cookie{Name: cookieName, Value: "v"}, &stubSessions{err: gateway.ErrUnavailable}, http.StatusBadGateway, "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(RequireSession(cookieName, tt.sessions, logger.Discard()))
			w := get(r, tt.cookie)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
			if tt.sessions.calls != tt.wantCalls {
				t.Errorf("gateway calls = %d, want %d", tt.sessions.calls, tt.wantCalls)
			}
		})
	}
}

func TestOptionalSession(t *testing.T) {
	r := newEngine(OptionalSession(cookieName, &stubSessions{err: gateway.ErrNoSession}))
	w := get(r, &http.Cookie{Name: cookieName, Value: "v"})
	if w.Code != http.StatusOK || w.Body.String() != "anonymous" {
		t.Errorf("got %d %q, want 200 anonymous", w.Code, w.Body.String())
	}
}

func TestRequireRoles(t *testing.T) {
	admin := &users.Session{User: users.SessionUser{ID: "u1", Email: "root@example.com", Role: users.RoleAdmin}}
	member := &users.Session{User: users.SessionUser{ID: "u2", Email: "ada@example.com", Role: users.RoleUser}}
	cookie := &http.Cookie{Name: cookieName, Value: "v"}

	r := newEngine(RequireSession(cookieName, &stubSessions{session: admin}, logger.Discard()), RequireRoles(users.RoleAdmin, users.RoleSuperAdmin))
	if w := get(r, cookie); w.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", w.Code)
	}

	r = newEngine(RequireSession(cookieName, &stubSessions{session: member}, logger.Discard()), RequireRoles(users.RoleAdmin))
	if w := get(r, cookie); w.Code != http.StatusForbidden {
		t.Errorf("member status = %d, want 403", w.Code)
	}
}
