package testutil

import (
	"fmt"
	"time"

	"pawhub/internal/models"
)

// FixedTime is the timestamp fixtures use for created/updated fields.
var FixedTime = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

// SessionBuilder provides a fluent interface for building test sessions.
type SessionBuilder struct {
	session models.Session
}

// NewSessionBuilder creates a user session with sensible defaults.
func NewSessionBuilder() *SessionBuilder {
	return &SessionBuilder{
		session: models.Session{
			Kind:        models.SessionUser,
			AccessToken: "test-access-token",
			Profile: models.Profile{
				ID:        1,
				Name:      "Test User",
				Email:     "test@example.com",
				Role:      "user",
				IsActive:  true,
				CreatedAt: FixedTime,
				UpdatedAt: FixedTime,
			},
		},
	}
}

func (b *SessionBuilder) Admin() *SessionBuilder {
	b.session.Kind = models.SessionAdmin
	b.session.Profile.Role = "admin"
	return b
}

func (b *SessionBuilder) WithToken(token string) *SessionBuilder {
	b.session.AccessToken = token
	return b
}

func (b *SessionBuilder) WithProfileID(id int64) *SessionBuilder {
	b.session.Profile.ID = id
	return b
}

func (b *SessionBuilder) WithName(name string) *SessionBuilder {
	b.session.Profile.Name = name
	return b
}

func (b *SessionBuilder) WithEmail(email string) *SessionBuilder {
	b.session.Profile.Email = email
	return b
}

func (b *SessionBuilder) Build() models.Session {
	return b.session
}

// Rooms returns n cafe rooms named "Room 1".."Room n".
func Rooms(n int) []models.CafeRoom {
	out := make([]models.CafeRoom, n)
	for i := range out {
		out[i] = models.CafeRoom{
			ID:           int64(i + 1),
			Name:         fmt.Sprintf("Room %d", i+1),
			Capacity:     4,
			PricePerHour: 12.5,
		}
	}
	return out
}

// Clinics returns n clinics named "Clinic 1".."Clinic n".
func Clinics(n int) []models.Clinic {
	out := make([]models.Clinic, n)
	for i := range out {
		out[i] = models.Clinic{
			ID:      int64(i + 1),
			Name:    fmt.Sprintf("Clinic %d", i+1),
			Address: fmt.Sprintf("%d Main Street", i+1),
		}
	}
	return out
}

// Page wraps items as a single-page result.
func Page[T any](items ...T) models.PaginatedResult[T] {
	return models.PaginatedResult[T]{Items: items, TotalPages: 1}
}
