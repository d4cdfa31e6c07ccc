package profile

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"authportal/internal/backend"
	"authportal/internal/gateway"
	"authportal/internal/shared/constants"
	"authportal/internal/users"
	"authportal/internal/validation"
	"authportal/pkg/cache"
	"authportal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeTokens struct {
	token string
	err   error
}

func (f fakeTokens) Token(ctx context.Context, r *http.Request) (string, error) {
	return f.token, f.err
}

type fakeBackend struct {
	profile   *backend.Profile
	getErr    error
	updateErr error
	updated   *backend.Profile
	imageURL  string
	uploaded  string
	gotToken  string
}

func (f *fakeBackend) GetProfile(ctx context.Context, token string) (*backend.Profile, error) {
	f.gotToken = token
	if f.getErr != nil {
		return nil, f.getErr
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeBackend) UpdateProfile(ctx context.Context, token string, p backend.Profile) error {
	f.gotToken = token
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = &p
	return nil
}

func (f *fakeBackend) UploadProfileImage(ctx context.Context, token, filename string, image io.Reader) (string, error) {
	raw, _ := io.ReadAll(image)
	f.uploaded = filename + ":" + string(raw)
	return f.imageURL, nil
}

var ada = users.SessionUser{ID: "u1", Name: "Ada Lovelace", Email: "ada@example.com", Image: "http://img/session.png"}

func newTestService(t *testing.T, tokens TokenProvider, be Backend) (*Service, cache.Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	cs := cache.NewService(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return NewService(tokens, be, cs, logger.Discard(), time.Hour), cs
}

func req() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
}

func TestService_GetMergesSessionUser(t *testing.T) {
	be := &fakeBackend{profile: &backend.Profile{Phone: "555", City: "London"}}
	svc, cs := newTestService(t, fakeTokens{token: "bearer"}, be)

	view, err := svc.Get(context.Background(), req(), ada)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if view.Source != SourceBackend {
		t.Errorf("source = %s, want backend", view.Source)
	}
	p := view.Profile
	if p.Name != ada.Name || p.Email != ada.Email || p.Image != ada.Image || p.City != "London" {
		t.Errorf("profile = %+v", p)
	}
	if be.gotToken != "bearer" {
		t.Errorf("backend token = %q", be.gotToken)
	}

	var cached backend.Profile
	if err := cs.Get(context.Background(), constants.BuildUserProfileKey("u1"), &cached); err != nil {
		t.Fatalf("profile not cached: %v", err)
	}
	if cached.Phone != "555" {
		t.Errorf("cached = %+v", cached)
	}
}

func TestService_GetBackendNamesWin(t *testing.T) {
	be := &fakeBackend{profile: &backend.Profile{Name: "Countess Ada", Email: "ada@backend.io"}}
	svc, _ := newTestService(t, fakeTokens{token: "t"}, be)

	view, _ := svc.Get(context.Background(), req(), ada)
	if view.Profile.Name != "Countess Ada" || view.Profile.Email != "ada@backend.io" {
		t.Errorf("profile = %+v", view.Profile)
	}
}

func TestService_GetFallsBack(t *testing.T) {
	be := &fakeBackend{getErr: backend.ErrUnavailable}
	svc, cs := newTestService(t, fakeTokens{token: "t"}, be)

	view, err := svc.Get(context.Background(), req(), ada)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if view.Source != SourceSession || view.Profile.Name != ada.Name || view.Profile.Phone != "" {
		t.Errorf("view = %+v, want session-only data", view)
	}

	_ = cs.Set(context.Background(), constants.BuildUserProfileKey("u1"), backend.Profile{Phone: "555"}, time.Hour)
	view, _ = svc.Get(context.Background(), req(), ada)
	if view.Source != SourceCache || view.Profile.Phone != "555" || view.Profile.Email != ada.Email {
		t.Errorf("view = %+v, want cached data", view)
	}
}

func TestService_GetWithoutToken(t *testing.T) {
	svc, _ := newTestService(t, fakeTokens{err: gateway.ErrNoSession}, &fakeBackend{})

	view, err := svc.Get(context.Background(), req(), ada)
	if err != nil || view.Source != SourceSession {
		t.Errorf("Get() = %+v, %v; want session fallback", view, err)
	}
}

func TestService_Update(t *testing.T) {
	be := &fakeBackend{}
	svc, cs := newTestService(t, fakeTokens{token: "t"}, be)

	form := validation.ProfileUpdate{Name: "Ada", Email: "ada@example.com", City: "Paris", LinkedIn: "https://linkedin.com/in/ada"}
	if _, err := svc.Update(context.Background(), req(), ada, form); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if be.updated == nil || be.updated.City != "Paris" {
		t.Fatalf("backend got %+v", be.updated)
	}

	var cached backend.Profile
	_ = cs.Get(context.Background(), constants.BuildUserProfileKey("u1"), &cached)
	if cached.City != "Paris" {
		t.Errorf("cached = %+v, want last write", cached)
	}
}

func TestService_UpdateValidation(t *testing.T) {
	be := &fakeBackend{}
	svc, _ := newTestService(t, fakeTokens{token: "t"}, be)

	errs, err := svc.Update(context.Background(), req(), ada, validation.ProfileUpdate{Email: "nope", LinkedIn: "not a url"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Update() error = %v, want ErrValidation", err)
	}
	for _, field := range []string{"name", "email", "linkedin"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("missing field error for %s in %v", field, errs)
		}
	}
	if be.updated != nil {
		t.Error("invalid form must not reach the backend")
	}
}

func TestService_UpdateBackendError(t *testing.T) {
	be := &fakeBackend{updateErr: &backend.Error{Status: 422, Message: "phone taken"}}
	svc, _ := newTestService(t, fakeTokens{token: "t"}, be)

	_, err := svc.Update(context.Background(), req(), ada, validation.ProfileUpdate{Name: "Ada", Email: "ada@example.com"})
	var beErr *backend.Error
	if !errors.As(err, &beErr) || beErr.Status != 422 {
		t.Errorf("Update() error = %v", err)
	}
}

func TestService_UploadImage(t *testing.T) {
	be := &fakeBackend{imageURL: "http://img/new.png"}
	svc, cs := newTestService(t, fakeTokens{token: "t"}, be)
	ctx := context.Background()
	_ = cs.Set(ctx, constants.BuildUserProfileKey("u1"), backend.Profile{Name: "Ada", Image: "http://img/old.png"}, time.Hour)

	got, err := svc.UploadImage(ctx, req(), ada, "me.png", stringReader("png-bytes"))
	if err != nil {
		t.Fatalf("UploadImage() error = %v", err)
	}
	if got != "http://img/new.png" || be.uploaded != "me.png:png-bytes" {
		t.Errorf("UploadImage() = %q, backend got %q", got, be.uploaded)
	}

	var cached backend.Profile
	_ = cs.Get(ctx, constants.BuildUserProfileKey("u1"), &cached)
	if cached.Image != "http://img/new.png" {
		t.Errorf("cached image = %q", cached.Image)
	}
}

func TestService_UploadImageRejectsEmpty(t *testing.T) {
	svc, _ := newTestService(t, fakeTokens{token: "t"}, &fakeBackend{})
	if _, err := svc.UploadImage(context.Background(), req(), ada, "", nil); !errors.Is(err, ErrEmptyUpload) {
		t.Errorf("UploadImage() error = %v, want ErrEmptyUpload", err)
	}
}

func TestService_UploadImageNoURL(t *testing.T) {
	svc, _ := newTestService(t, fakeTokens{token: "t"}, &fakeBackend{})
	if _, err := svc.UploadImage(context.Background(), req(), ada, "me.png", stringReader("x")); !errors.Is(err, ErrNoImageURL) {
		t.Errorf("UploadImage() error = %v, want ErrNoImageURL", err)
	}
}
