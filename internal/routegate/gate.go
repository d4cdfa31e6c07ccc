package routegate

import (
	"net/url"
	"strings"
)

const (
	SignInPath    = "/auth/sign-in"
	DashboardPath = "/dashboard"
	redirectParam = "redirect"
)

// DecisionKind is what the gate does with a request
type DecisionKind int

const (
	Skip DecisionKind = iota
	Allow
	Redirect
)

func (k DecisionKind) String() string {
	switch k {
	case Skip:
		return "skip"
	case Allow:
		return "allow"
	default:
		return "redirect"
	}
}

// Decision is the gate's verdict for one path. Target is set only for Redirect.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// Routes holds the three route lists. "/" matches only itself; every other
// entry matches by prefix.
type Routes struct {
	Public   []string
	AuthOnly []string
	Exempt   []string
}

// DefaultRoutes are the portal's routes
func DefaultRoutes() Routes {
	return Routes{
		Public: []string{
			"/",
			"/auth/sign-in",
			"/auth/sign-up",
			"/auth/forgot-password",
			"/auth/reset-password",
			"/auth/verify-email",
			"/about",
			"/contact",
			"/privacy-policy",
			"/terms-conditions",
			"/terms&conditions",
			"/support",
			"/error",
		},
		AuthOnly: []string{
			"/auth/sign-in",
			"/auth/sign-up",
			"/auth/forgot-password",
			"/auth/reset-password",
		},
		Exempt: []string{
			"/api",
			"/_next/",
			"/static/",
			"/swagger/",
			"/favicon.ico",
			"/images/",
			"/icons/",
			"/health",
			"/ping",
			"/status",
		},
	}
}

// Classify decides what to do with path given whether a session cookie is present.
// It is total: every input yields exactly one decision.
func (r Routes) Classify(path string, authenticated bool) Decision {
	if r.exempt(path) {
		return Decision{Kind: Skip}
	}

	if authenticated {
		if matchAny(r.AuthOnly, path) {
			return Decision{Kind: Redirect, Target: DashboardPath}
		}
		return Decision{Kind: Allow}
	}

	if matchAny(r.Public, path) {
		return Decision{Kind: Allow}
	}
	return Decision{Kind: Redirect, Target: signInTarget(path)}
}

// Classify uses the default routes
func Classify(path string, authenticated bool) Decision {
	return DefaultRoutes().Classify(path, authenticated)
}

func (r Routes) exempt(path string) bool {
	// anything that looks like a file
	if strings.Contains(path, ".") {
		return true
	}
	for _, prefix := range r.Exempt {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func matchAny(routes []string, path string) bool {
	for _, route := range routes {
		if route == "/" {
			if path == "/" {
				return true
			}
			continue
		}
		if strings.HasPrefix(path, route) {
			return true
		}
	}
	return false
}

func signInTarget(path string) string {
	if path == SignInPath {
		return SignInPath
	}
	q := url.Values{}
	q.Set(redirectParam, path)
	return SignInPath + "?" + q.Encode()
}
