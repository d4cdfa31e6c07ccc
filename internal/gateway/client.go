package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxResponseBytes = 1 << 20

// Client talks to the auth service over its REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the auth service mounted at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithHTTP lets tests and callers supply their own transport
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

// SignInEmail signs a user in with email and password.
// The session cookies issued by the auth service are returned on the result.
func (c *Client) SignInEmail(ctx context.Context, req SignInEmailRequest) (*SignInResult, error) {
	var out SignInResult
	cookies, err := c.do(ctx, http.MethodPost, "/sign-in/email", req, nil, &out)
	if err != nil {
		return nil, err
	}
	out.Cookies = cookies
	return &out, nil
}

// SignInSocial starts an OAuth sign-in and returns the provider URL
func (c *Client) SignInSocial(ctx context.Context, req SignInSocialRequest) (*SocialResult, error) {
	var out SocialResult
	if _, err := c.do(ctx, http.MethodPost, "/sign-in/social", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignUpEmail registers a new account
func (c *Client) SignUpEmail(ctx context.Context, req SignUpEmailRequest) (*SignUpResult, error) {
	var out SignUpResult
	if _, err := c.do(ctx, http.MethodPost, "/sign-up/email", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignOut ends the session identified by the forwarded cookies.
// The returned cookies clear the session on the caller's side.
func (c *Client) SignOut(ctx context.Context, cookies []*http.Cookie) ([]*http.Cookie, error) {
	var out StatusResult
	return c.do(ctx, http.MethodPost, "/sign-out", struct{}{}, cookies, &out)
}

// ForgetPassword asks the auth service to email a reset link
func (c *Client) ForgetPassword(ctx context.Context, req ForgetPasswordRequest) (*StatusResult, error) {
	var out StatusResult
	if _, err := c.do(ctx, http.MethodPost, "/forget-password", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword sets a new password using the emailed token
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*StatusResult, error) {
	var out StatusResult
	if _, err := c.do(ctx, http.MethodPost, "/reset-password", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendVerificationEmail asks for another verification email
func (c *Client) SendVerificationEmail(ctx context.Context, req SendVerificationEmailRequest) (*StatusResult, error) {
	var out StatusResult
	if _, err := c.do(ctx, http.MethodPost, "/send-verification-email", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Token exchanges the forwarded session for a bearer token
func (c *Client) Token(ctx context.Context, cookies []*http.Cookie) (string, error) {
	var out TokenResult
	if _, err := c.do(ctx, http.MethodGet, "/token", nil, cookies, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", ErrNoSession
	}
	return out.Token, nil
}

// GetSession returns the caller's session, or ErrNoSession when there is none
func (c *Client) GetSession(ctx context.Context, cookies []*http.Cookie) (*SessionSnapshot, error) {
	var out *SessionSnapshot
	if _, err := c.do(ctx, http.MethodGet, "/get-session", nil, cookies, &out); err != nil {
		return nil, err
	}
	// the auth service answers 200 with a null body when no session exists
	if out == nil || out.User.ID == "" {
		return nil, ErrNoSession
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, cookies []*http.Cookie, out interface{}) ([]*http.Cookie, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", ErrUnavailable, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp.StatusCode, raw)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return resp.Cookies(), nil
}

func decodeError(status int, raw []byte) error {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		body.Message = strings.TrimSpace(string(raw))
	}
	if body.Message == "" {
		body.Message = http.StatusText(status)
	}
	return &Error{Status: status, Code: body.Code, Message: body.Message}
}

// IsStatus reports whether err is a gateway Error with the given HTTP status
func IsStatus(err error, status int) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Status == status
}
