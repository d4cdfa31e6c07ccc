package gateway

import (
	"encoding/hex"
	"net/http"

	"golang.org/x/crypto/blake2b"
)

// SecurePrefix is prepended to cookie names the auth service sets over HTTPS
const SecurePrefix = "__Secure-"

// SessionCookie finds the session cookie under its plain or secure name
func SessionCookie(r *http.Request, name string) (*http.Cookie, bool) {
	for _, candidate := range []string{name, SecurePrefix + name} {
		if ck, err := r.Cookie(candidate); err == nil && ck.Value != "" {
			return ck, true
		}
	}
	return nil, false
}

// HasSession reports whether the request carries a non-empty session cookie.
// It says nothing about whether the session is still valid.
func HasSession(r *http.Request, name string) bool {
	_, ok := SessionCookie(r, name)
	return ok
}

// Fingerprint derives a stable cache key from a session cookie value so the raw
// token never appears in Redis key names
func Fingerprint(sessionValue string) string {
	sum := blake2b.Sum256([]byte(sessionValue))
	return hex.EncodeToString(sum[:16])
}
