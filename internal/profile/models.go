package profile

import "authportal/internal/backend"

// Source tells the client where the profile data came from
type Source string

const (
	SourceBackend Source = "backend"
	SourceCache   Source = "cache"
	SourceSession Source = "session"
)

// View is the profile page payload
type View struct {
	Profile backend.Profile `json:"profile"`
	Source  Source          `json:"source"`
}

// ImageResponse is returned after a successful upload
type ImageResponse struct {
	ImageURL string `json:"imageUrl"`
}
