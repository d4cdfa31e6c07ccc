package flows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"authportal/internal/shared/constants"
	"authportal/pkg/cache"
)

var kindStates = map[Kind][]State{
	KindSignUp:             {SignUpForm, SignUpEmailSent},
	KindSignIn:             {SignInForm, SignInEmailVerificationRequired},
	KindForgotPassword:     {ForgotPasswordEmail, ForgotPasswordEmailSent},
	KindResetPassword:      {ResetValidatingToken, ResetForm, ResetSuccess, ResetError},
	KindPasswordManagement: {PasswordMenu, PasswordForgot, PasswordVerifyToken, PasswordNewPassword, PasswordResetSuccess},
}

// ParseKind validates a flow kind coming from a route or cookie
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := kindStates[k]
	return k, ok
}

// New creates a machine of the given kind in its initial state
func New(kind Kind, deps Deps) (Machine, error) {
	switch kind {
	case KindSignUp:
		return NewSignUp(deps), nil
	case KindSignIn:
		return NewSignIn(deps), nil
	case KindForgotPassword:
		return NewForgotPassword(deps), nil
	case KindResetPassword:
		return NewResetPassword(deps), nil
	case KindPasswordManagement:
		return NewPasswordManagement(deps), nil
	default:
		return nil, fmt.Errorf("unknown flow kind %q", kind)
	}
}

type restorer interface {
	restore(Snapshot)
}

// Restore rebuilds a machine from its snapshot
func Restore(snap Snapshot, deps Deps) (Machine, error) {
	valid := false
	for _, st := range kindStates[snap.Kind] {
		if st == snap.State {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("snapshot state %q for %q: %w", snap.State, snap.Kind, ErrInvalidTransition)
	}

	m, err := New(snap.Kind, deps)
	if err != nil {
		return nil, err
	}
	m.(restorer).restore(snap)
	return m, nil
}

// NewID returns a fresh flow id
func NewID() string {
	return uuid.NewString()
}

// Store keeps flow snapshots in Redis so one flow can span several requests
type Store struct {
	cache   cache.Service
	deps    Deps
	ttl     time.Duration
	lockTTL time.Duration
}

// NewStore creates a snapshot store
func NewStore(cacheService cache.Service, deps Deps, ttl, lockTTL time.Duration) *Store {
	if ttl <= 0 {
		ttl = constants.TTL_FLOW_SNAPSHOT
	}
	if lockTTL <= 0 {
		lockTTL = constants.TTL_FLOW_BUSY_LOCK
	}
	return &Store{cache: cacheService, deps: deps.withDefaults(), ttl: ttl, lockTTL: lockTTL}
}

// Deps returns the dependencies machines from this store are built with
func (s *Store) Deps() Deps { return s.deps }

// Load restores the flow or returns ErrFlowNotFound
func (s *Store) Load(ctx context.Context, kind Kind, id string) (Machine, error) {
	if id == "" {
		return nil, ErrFlowNotFound
	}
	var snap Snapshot
	if err := s.cache.Get(ctx, constants.BuildFlowKey(string(kind), id), &snap); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrFlowNotFound
		}
		return nil, fmt.Errorf("load %s flow: %w", kind, err)
	}
	if snap.Kind != kind {
		return nil, ErrFlowNotFound
	}
	return Restore(snap, s.deps)
}

// Open loads the flow, or starts a new one when none is stored
func (s *Store) Open(ctx context.Context, kind Kind, id string) (Machine, error) {
	m, err := s.Load(ctx, kind, id)
	if errors.Is(err, ErrFlowNotFound) {
		return New(kind, s.deps)
	}
	return m, err
}

// Save stores the machine's snapshot and refreshes its TTL
func (s *Store) Save(ctx context.Context, id string, m Machine) error {
	if err := s.cache.Set(ctx, constants.BuildFlowKey(string(m.Kind()), id), m.Snapshot(), s.ttl); err != nil {
		return fmt.Errorf("save %s flow: %w", m.Kind(), err)
	}
	return nil
}

// Delete drops a finished flow
func (s *Store) Delete(ctx context.Context, kind Kind, id string) error {
	return s.cache.Delete(ctx, constants.BuildFlowKey(string(kind), id))
}

// Acquire takes the flow's busy lock so concurrent requests on one flow serialise.
// It returns ErrBusy when another request holds it. The release func is safe to defer.
func (s *Store) Acquire(ctx context.Context, kind Kind, id string) (func(), error) {
	key := constants.BuildFlowBusyKey(string(kind), id)
	owner := uuid.NewString()

	ok, err := s.cache.SetIfAbsent(ctx, key, owner, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire %s flow lock: %w", kind, err)
	}
	if !ok {
		return nil, ErrBusy
	}

	release := func() {
		// the request context may already be cancelled
		_, _ = s.cache.DeleteIfEquals(context.WithoutCancel(ctx), key, owner)
	}
	return release, nil
}
