package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 1 << 20

// Client calls the application backend. Profile calls need a bearer token
// obtained from the auth service; the user endpoints are unauthenticated.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client rooted at baseURL (which already includes /api)
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetProfile fetches the caller's profile
func (c *Client) GetProfile(ctx context.Context, token string) (*Profile, error) {
	var out Profile
	if err := c.doJSON(ctx, http.MethodGet, "/profile", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces the caller's editable profile fields
func (c *Client) UpdateProfile(ctx context.Context, token string, profile Profile) error {
	return c.doJSON(ctx, http.MethodPut, "/profile", token, profile, nil)
}

// UploadProfileImage sends image as the multipart field "image" and returns the stored URL
func (c *Client) UploadProfileImage(ctx context.Context, token, filename string, image io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/profile/image", token, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out ImageUploadResult
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return out.URL(), nil
}

// VerifyResetOTP checks a reset code without consuming it
func (c *Client) VerifyResetOTP(ctx context.Context, email, otp string) error {
	return c.doJSON(ctx, http.MethodPost, "/users/verify-reset-otp", "", VerifyOTPRequest{Email: email, OTP: otp}, nil)
}

// ResetPasswordWithOTP sets a new password using a previously verified code
func (c *Client) ResetPasswordWithOTP(ctx context.Context, req ResetWithOTPRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/users/reset-password-with-otp", "", req, nil)
}

// SendEmail asks the backend to deliver a transactional email
func (c *Client) SendEmail(ctx context.Context, purpose EmailPurpose, email, link string) error {
	path, ok := emailPaths[purpose]
	if !ok {
		return ErrInvalidPurpose
	}
	return c.doJSON(ctx, http.MethodPost, path, "", EmailRequest{Email: email, URL: link}, nil)
}

// FetchRole looks up the user's role. It never fails: any error or
// unrecognised body yields DefaultRole.
func (c *Client) FetchRole(ctx context.Context, userID string) string {
	var body struct {
		Role json.RawMessage `json:"role"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/users/roles/"+url.PathEscape(userID), "", nil, &body); err != nil {
		return DefaultRole
	}
	return parseRole(body.Role)
}

// parseRole accepts {"role":{"role":"X"}} and {"role":"X"}
func parseRole(raw json.RawMessage) string {
	if len(raw) == 0 {
		return DefaultRole
	}
	var nested struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && nested.Role != "" {
		return nested.Role
	}
	var flat string
	if err := json.Unmarshal(raw, &flat); err == nil && flat != "" {
		return flat
	}
	return DefaultRole
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, token, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Message string `json:"message"`
		}
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(raw, &body) == nil && body.Message != "" {
			msg = body.Message
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
		}
	}
	return nil
}
