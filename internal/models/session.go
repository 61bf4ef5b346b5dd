package models

import "time"

// SessionKind separates administrator sessions from customer sessions. Each
// kind is persisted independently.
type SessionKind string

const (
	SessionAdmin SessionKind = "admin"
	SessionUser  SessionKind = "user"
)

// Valid reports whether k is a known kind.
func (k SessionKind) Valid() bool {
	return k == SessionAdmin || k == SessionUser
}

// Profile holds the identity attributes returned at login.
type Profile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Session is an authenticated identity plus its access token.
type Session struct {
	Kind        SessionKind `json:"kind"`
	AccessToken string      `json:"accessToken"`
	Profile     Profile     `json:"profile"`
}

// LoginResponse is what the API returns from its login endpoints.
type LoginResponse struct {
	AccessToken string  `json:"accessToken"`
	Profile     Profile `json:"profile"`
}
