package flows

import (
	"context"
	"net/http"
	"sync"

	"authportal/internal/backend"
	"authportal/internal/gateway"
	"authportal/pkg/logger"
)

// fakeGateway answers every call with err (nil means success) and counts calls.
// When block is set each call waits on it before returning.
type fakeGateway struct {
	mu      sync.Mutex
	calls   map[string]int
	err     error
	errs    map[string]error
	cookies []*http.Cookie
	social  string
	block   chan struct{}
	started chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{calls: map[string]int{}, errs: map[string]error{}}
}

func (f *fakeGateway) record(op string) error {
	f.mu.Lock()
	f.calls[op]++
	block, started := f.block, f.started
	err := f.err
	if e, ok := f.errs[op]; ok {
		err = e
	}
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return err
}

func (f *fakeGateway) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeGateway) SignUpEmail(ctx context.Context, req gateway.SignUpEmailRequest) (*gateway.SignUpResult, error) {
	if err := f.record("sign-up"); err != nil {
		return nil, err
	}
	return &gateway.SignUpResult{User: gateway.User{Email: req.Email}}, nil
}

func (f *fakeGateway) SignInEmail(ctx context.Context, req gateway.SignInEmailRequest) (*gateway.SignInResult, error) {
	if err := f.record("sign-in"); err != nil {
		return nil, err
	}
	return &gateway.SignInResult{User: gateway.User{Email: req.Email}, Cookies: f.cookies}, nil
}

func (f *fakeGateway) SignInSocial(ctx context.Context, req gateway.SignInSocialRequest) (*gateway.SocialResult, error) {
	if err := f.record("sign-in-social"); err != nil {
		return nil, err
	}
	return &gateway.SocialResult{URL: f.social, Redirect: true}, nil
}

func (f *fakeGateway) ForgetPassword(ctx context.Context, req gateway.ForgetPasswordRequest) (*gateway.StatusResult, error) {
	if err := f.record("forget-password"); err != nil {
		return nil, err
	}
	return &gateway.StatusResult{Status: true}, nil
}

func (f *fakeGateway) ResetPassword(ctx context.Context, req gateway.ResetPasswordRequest) (*gateway.StatusResult, error) {
	if err := f.record("reset-password"); err != nil {
		return nil, err
	}
	return &gateway.StatusResult{Status: true}, nil
}

func (f *fakeGateway) SendVerificationEmail(ctx context.Context, req gateway.SendVerificationEmailRequest) (*gateway.StatusResult, error) {
	if err := f.record("send-verification-email"); err != nil {
		return nil, err
	}
	return &gateway.StatusResult{Status: true}, nil
}

type fakeBackend struct {
	verifyErr error
	resetErr  error
	lastReset backend.ResetWithOTPRequest
	calls     int
}

func (b *fakeBackend) VerifyResetOTP(ctx context.Context, email, otp string) error {
	b.calls++
	return b.verifyErr
}

func (b *fakeBackend) ResetPasswordWithOTP(ctx context.Context, req backend.ResetWithOTPRequest) error {
	b.calls++
	b.lastReset = req
	return b.resetErr
}

func testDeps(gw *fakeGateway, be *fakeBackend) Deps {
	return Deps{Gateway: gw, Backend: be, Logger: logger.Discard(), MaxResends: 3}
}
