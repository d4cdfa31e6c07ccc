package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"authportal/internal/backend"
	"authportal/internal/flows"
	"authportal/internal/gateway"
	"authportal/internal/shared/constants"
	"authportal/internal/shared/middleware"
	"authportal/internal/users"
	"authportal/pkg/cache"
	"authportal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	flowCookie    = "authportal_flow"
	sessionCookie = "better-auth.session_token"
)

type stubGateway struct {
	errs       map[string]error
	cookies    []*http.Cookie
	calls      map[string]int
	lastReset  gateway.ResetPasswordRequest
	signOutErr error
}

func newStubGateway() *stubGateway {
	return &stubGateway{errs: map[string]error{}, calls: map[string]int{}}
}

func (s *stubGateway) SignUpEmail(ctx context.Context, req gateway.SignUpEmailRequest) (*gateway.SignUpResult, error) {
	s.calls["sign-up"]++
	if err := s.errs["sign-up"]; err != nil {
		return nil, err
	}
	return &gateway.SignUpResult{User: gateway.User{Email: req.Email}}, nil
}

func (s *stubGateway) SignInEmail(ctx context.Context, req gateway.SignInEmailRequest) (*gateway.SignInResult, error) {
	s.calls["sign-in"]++
	if err := s.errs["sign-in"]; err != nil {
		return nil, err
	}
	return &gateway.SignInResult{User: gateway.User{Email: req.Email}, Cookies: s.cookies}, nil
}

func (s *stubGateway) SignInSocial(ctx context.Context, req gateway.SignInSocialRequest) (*gateway.SocialResult, error) {
	s.calls["social"]++
	return &gateway.SocialResult{URL: "https://accounts.google.com/o/oauth2/auth?state=x", Redirect: true}, nil
}

func (s *stubGateway) ForgetPassword(ctx context.Context, req gateway.ForgetPasswordRequest) (*gateway.StatusResult, error) {
	s.calls["forget"]++
	return &gateway.StatusResult{Status: true}, s.errs["forget"]
}

func (s *stubGateway) ResetPassword(ctx context.Context, req gateway.ResetPasswordRequest) (*gateway.StatusResult, error) {
	s.calls["reset"]++
	s.lastReset = req
	return &gateway.StatusResult{Status: true}, s.errs["reset"]
}

func (s *stubGateway) SendVerificationEmail(ctx context.Context, req gateway.SendVerificationEmailRequest) (*gateway.StatusResult, error) {
	s.calls["verify"]++
	return &gateway.StatusResult{Status: true}, s.errs["verify"]
}

func (s *stubGateway) SignOut(ctx context.Context, cookies []*http.Cookie) ([]*http.Cookie, error) {
	s.calls["sign-out"]++
	return nil, s.signOutErr
}

type stubBackend struct {
	verifyErr error
	reset     *backend.ResetWithOTPRequest
}

func (b *stubBackend) VerifyResetOTP(ctx context.Context, email, otp string) error {
	return b.verifyErr
}

func (b *stubBackend) ResetPasswordWithOTP(ctx context.Context, req backend.ResetWithOTPRequest) error {
	b.reset = &req
	return nil
}

type stubSessions struct {
	session *users.Session
	err     error
}

func (s stubSessions) Current(ctx context.Context, cookies []*http.Cookie) (*users.Session, error) {
	return s.session, s.err
}

type stubTokens struct{ forgotten int }

func (s *stubTokens) Forget(ctx context.Context, r *http.Request) { s.forgotten++ }

type harness struct {
	engine  *gin.Engine
	gw      *stubGateway
	be      *stubBackend
	tokens  *stubTokens
	store   *flows.Store
	redis   *miniredis.Miniredis
	cookies []*http.Cookie
}

var ada = &users.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	User: users.SessionUser{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: users.RoleUser}}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	cs := cache.NewService(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	gw := newStubGateway()
	be := &stubBackend{}
	store := flows.NewStore(cs, flows.Deps{Gateway: gw, Backend: be, Logger: logger.Discard(), MaxResends: 3}, time.Hour, time.Minute)
	tokens := &stubTokens{}
	sessions := stubSessions{session: ada}

	ctrl := NewController(store, gw, sessions, tokens, Options{
		FlowCookieName:    flowCookie,
		SessionCookieName: sessionCookie,
		FlowTTL:           time.Hour,
	}, logger.Discard())
	router := NewRouter(ctrl)

	r := gin.New()
	api := r.Group("/api/v1")
	router.SetupRoutes(api)
	profile := api.Group("/profile", middleware.RequireSession(sessionCookie, sessions, logger.Discard()))
	router.SetupPasswordRoutes(profile)
	router.SetupPages(r.Group("", middleware.OptionalSession(sessionCookie, sessions)))

	return &harness{engine: r, gw: gw, be: be, tokens: tokens, store: store, redis: mr}
}

type envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// do sends a request carrying the cookies collected so far
func (h *harness) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range h.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == flowCookie && ck.MaxAge >= 0 {
			h.setCookie(ck.Name, ck.Value)
		}
	}

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (h *harness) setCookie(name, value string) {
	for _, ck := range h.cookies {
		if ck.Name == name {
			ck.Value = value
			return
		}
	}
	h.cookies = append(h.cookies, &http.Cookie{Name: name, Value: value})
}

func (h *harness) flowID() string {
	for _, ck := range h.cookies {
		if ck.Name == flowCookie {
			return ck.Value
		}
	}
	return ""
}

func flowView(t *testing.T, env envelope) FlowView {
	t.Helper()
	var v FlowView
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode flow view: %v (%s)", err, env.Data)
	}
	return v
}

var registration = map[string]string{
	"firstName":       "Ada",
	"lastName":        "Lovelace",
	"email":           "ada@example.com",
	"password":        "Analytical1",
	"confirmPassword": "Analytical1",
}

func TestSignUp_SubmitThenResendUntilCapped(t *testing.T) {
	h := newHarness(t)

	w, env := h.do(t, http.MethodPost, "/api/v1/auth/sign-up", registration)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-up status = %d, body = %s", w.Code, w.Body.String())
	}
	v := flowView(t, env)
	if v.State != flows.SignUpEmailSent || v.Email != "ada@example.com" || v.MaxResends != 3 {
		t.Fatalf("view = %+v", v)
	}
	if h.flowID() == "" {
		t.Fatal("flow cookie not set")
	}

	for i := 1; i <= 3; i++ {
		w, env = h.do(t, http.MethodPost, "/api/v1/auth/sign-up/resend", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("resend %d status = %d", i, w.Code)
		}
		if got := flowView(t, env).ResendCount; got != i {
			t.Fatalf("resend %d count = %d", i, got)
		}
	}

	w, env = h.do(t, http.MethodPost, "/api/v1/auth/sign-up/resend", nil)
	if w.Code != http.StatusBadRequest || env.Message != "Maximum resend attempts reached. Please try again later." {
		t.Errorf("capped resend = %d %q", w.Code, env.Message)
	}
	if h.gw.calls["verify"] != 3 {
		t.Errorf("verification emails = %d, want 3", h.gw.calls["verify"])
	}
}

func TestSignUp_ValidationErrors(t *testing.T) {
	h := newHarness(t)

	body := map[string]string{"firstName": "Ada", "email": "not-an-email", "password": "short", "confirmPassword": "short"}
	w, env := h.do(t, http.MethodPost, "/api/v1/auth/sign-up", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	for _, field := range []string{"lastName", "email", "password"} {
		if env.Errors[field] == "" {
			t.Errorf("missing error for %s: %v", field, env.Errors)
		}
	}
	if h.gw.calls["sign-up"] != 0 {
		t.Error("invalid form reached the auth service")
	}
}

func TestSignUp_BackResetsFlow(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/api/v1/auth/sign-up", registration)

	w, env := h.do(t, http.MethodPost, "/api/v1/auth/sign-up/back", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if v := flowView(t, env); v.State != flows.SignUpForm || v.Email != "" || v.ResendCount != 0 {
		t.Errorf("view = %+v", v)
	}
}

func TestResend_RejectedOnFreshFlow(t *testing.T) {
	h := newHarness(t)
	w, _ := h.do(t, http.MethodPost, "/api/v1/auth/sign-in/resend", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestFlow_BusyLockRejectsConcurrentRequest(t *testing.T) {
	h := newHarness(t)
	h.setCookie(flowCookie, flows.NewID())

	release, err := h.store.Acquire(context.Background(), flows.KindSignUp, h.flowID())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer release()

	w, _ := h.do(t, http.MethodPost, "/api/v1/auth/sign-up", registration)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if h.gw.calls["sign-up"] != 0 {
		t.Error("busy flow must not call the auth service")
	}
}

func TestSignIn_SuccessForwardsCookiesAndRedirect(t *testing.T) {
	h := newHarness(t)
	h.gw.cookies = []*http.Cookie{{Name: sessionCookie, Value: "sess", Path: "/", HttpOnly: true}}

	w, env := h.do(t, http.MethodPost, "/api/v1/auth/sign-in?redirect=%2Fdashboard%2Fprofile",
		map[string]string{"email": "ada@example.com", "password": "x"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if v := flowView(t, env); v.Redirect != "/dashboard/profile" {
		t.Errorf("redirect = %q", v.Redirect)
	}

	var forwarded bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionCookie && ck.Value == "sess" {
			forwarded = true
		}
	}
	if !forwarded {
		t.Error("session cookie not forwarded")
	}
	if h.redis.Exists(constants.BuildFlowKey(string(flows.KindSignIn), h.flowID())) {
		t.Error("finished sign-in flow should be deleted")
	}
}

func TestSignIn_ExternalRedirectIgnored(t *testing.T) {
	h := newHarness(t)
	_, env := h.do(t, http.MethodPost, "/api/v1/auth/sign-in",
		map[string]string{"email": "ada@example.com", "password": "x", "redirect": "//evil.example"})
	if v := flowView(t, env); v.Redirect != flows.PathDashboard {
		t.Errorf("redirect = %q, want dashboard", v.Redirect)
	}
}

func TestSignIn_UnverifiedSurvivesAcrossRequests(t *testing.T) {
	h := newHarness(t)
	h.gw.errs["sign-in"] = &gateway.Error{Status: http.StatusForbidden, Message: "Email not verified"}

	w, env := h.do(t, http.MethodPost, "/api/v1/auth/sign-in", map[string]string{"email": "ada@example.com", "password": "x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if v := flowView(t, env); v.State != flows.SignInEmailVerificationRequired {
		t.Fatalf("state = %s", v.State)
	}

	w, env = h.do(t, http.MethodGet, "/auth/sign-in", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("page status = %d", w.Code)
	}
	var page PageResponse
	_ = json.Unmarshal(env.Data, &page)
	if page.Flow == nil || page.Flow.State != flows.SignInEmailVerificationRequired || page.Flow.Email != "ada@example.com" {
		t.Errorf("page = %+v", page)
	}

	w, _ = h.do(t, http.MethodPost, "/api/v1/auth/sign-in/resend", nil)
	if w.Code != http.StatusOK || h.gw.calls["verify"] != 1 {
		t.Errorf("resend = %d, verify calls = %d", w.Code, h.gw.calls["verify"])
	}
}

func TestSignIn_Social(t *testing.T) {
	h := newHarness(t)
	w, env := h.do(t, http.MethodPost, "/api/v1/auth/sign-in/social", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if v := flowView(t, env); v.Redirect == "" {
		t.Error("expected provider redirect")
	}
}

func TestForgotPassword_Flow(t *testing.T) {
	h := newHarness(t)

	w, env := h.do(t, http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{"email": "ada@example.com"})
	if w.Code != http.StatusOK || flowView(t, env).State != flows.ForgotPasswordEmailSent {
		t.Fatalf("submit = %d %s", w.Code, env.Data)
	}
	w, _ = h.do(t, http.MethodPost, "/api/v1/auth/forgot-password/resend", nil)
	if w.Code != http.StatusOK || h.gw.calls["forget"] != 2 {
		t.Errorf("resend = %d, forget calls = %d", w.Code, h.gw.calls["forget"])
	}
	_, env = h.do(t, http.MethodPost, "/api/v1/auth/forgot-password/back", nil)
	if flowView(t, env).State != flows.ForgotPasswordEmail {
		t.Errorf("back state = %s", flowView(t, env).State)
	}
}

func TestResetPassword_FromLink(t *testing.T) {
	h := newHarness(t)

	w, env := h.do(t, http.MethodGet, "/auth/reset-password?token=tok123", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("page status = %d", w.Code)
	}
	var page PageResponse
	_ = json.Unmarshal(env.Data, &page)
	if page.Flow == nil || page.Flow.State != flows.ResetForm {
		t.Fatalf("page = %+v", page)
	}

	w, env = h.do(t, http.MethodPost, "/api/v1/auth/reset-password",
		map[string]string{"password": "Analytical1", "confirmPassword": "Analytical1"})
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d, body = %s", w.Code, w.Body.String())
	}
	if v := flowView(t, env); v.State != flows.ResetSuccess || v.Redirect != flows.PathSignIn {
		t.Errorf("view = %+v", v)
	}
	if h.gw.lastReset.Token != "tok123" {
		t.Errorf("token sent = %q", h.gw.lastReset.Token)
	}
}

func TestResetPassword_MissingToken(t *testing.T) {
	h := newHarness(t)
	_, env := h.do(t, http.MethodGet, "/auth/reset-password", nil)

	var page PageResponse
	_ = json.Unmarshal(env.Data, &page)
	if page.Flow == nil || page.Flow.State != flows.ResetError || page.Flow.Message != "Invalid or missing reset token" {
		t.Errorf("page = %+v", page.Flow)
	}
	if h.gw.calls["reset"] != 0 {
		t.Error("no call expected without a token")
	}
}

func TestPasswordManagement_Flow(t *testing.T) {
	h := newHarness(t)
	h.setCookie(sessionCookie, "sess")

	steps := []struct {
		path string
		body interface{}
		want flows.State
	}{
		{"/api/v1/profile/password/open", nil, flows.PasswordForgot},
		{"/api/v1/profile/password/email", map[string]string{"email": "ada@example.com"}, flows.PasswordVerifyToken},
		{"/api/v1/profile/password/otp", map[string]string{"otp": "123456"}, flows.PasswordNewPassword},
		{"/api/v1/profile/password/new-password", map[string]string{"newPassword": "longenough", "confirmPassword": "longenough"}, flows.PasswordResetSuccess},
	}
	for _, step := range steps {
		w, env := h.do(t, http.MethodPost, step.path, step.body)
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d, body = %s", step.path, w.Code, w.Body.String())
		}
		if got := flowView(t, env).State; got != step.want {
			t.Fatalf("%s state = %s, want %s", step.path, got, step.want)
		}
	}
	if h.be.reset == nil || h.be.reset.OTP != "123456" || h.be.reset.Email != "ada@example.com" {
		t.Errorf("backend reset = %+v", h.be.reset)
	}
}

func TestPasswordManagement_RequiresSession(t *testing.T) {
	h := newHarness(t)
	w, _ := h.do(t, http.MethodPost, "/api/v1/profile/password/open", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSignOut_ClearsCookies(t *testing.T) {
	h := newHarness(t)
	h.setCookie(sessionCookie, "sess")
	h.gw.signOutErr = gateway.ErrUnavailable

	w, env := h.do(t, http.MethodPost, "/api/v1/auth/sign-out", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out SignOutResponse
	_ = json.Unmarshal(env.Data, &out)
	if out.Redirect != flows.PathSignIn {
		t.Errorf("redirect = %q", out.Redirect)
	}

	cleared := map[string]bool{}
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			cleared[ck.Name] = true
		}
	}
	for _, name := range []string{sessionCookie, gateway.SecurePrefix + sessionCookie, flowCookie} {
		if !cleared[name] {
			t.Errorf("cookie %s not cleared", name)
		}
	}
	if h.tokens.forgotten != 1 {
		t.Error("cached bearer token not dropped")
	}
}

func TestSession(t *testing.T) {
	h := newHarness(t)

	w, _ := h.do(t, http.MethodGet, "/api/v1/session", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", w.Code)
	}

	h.setCookie(sessionCookie, "sess")
	w, env := h.do(t, http.MethodGet, "/api/v1/session", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out SessionResponse
	_ = json.Unmarshal(env.Data, &out)
	if out.User.Email != "ada@example.com" || out.User.Role != users.RoleUser || out.SessionID != "s1" {
		t.Errorf("session = %+v", out)
	}
}
