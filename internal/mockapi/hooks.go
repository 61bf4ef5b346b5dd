package mockapi

import (
	"encoding/json"
	"strings"

	"pawhub/internal/models"
	dErrors "pawhub/pkg/domain-errors"
)

type passwordField struct {
	Password string `json:"password"`
}

func (s *Server) prepareUser(c *Claims, _ []byte, v *models.User, existing *models.User) error {
	now := s.now().UTC()
	if existing != nil {
		// Credentials are keyed by email, so it cannot change here.
		v.Email = existing.Email
		v.CreatedAt = existing.CreatedAt
		v.UpdatedAt = now
		if c.Kind != models.SessionAdmin {
			v.Role = existing.Role
			v.IsActive = existing.IsActive
		}
		return nil
	}
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
	if _, taken := s.accounts.lookup(models.SessionUser, v.Email); taken {
		return dErrors.New(dErrors.CodeConflict, "An account with this email already exists")
	}
	if v.Role == "" {
		v.Role = "user"
	}
	v.CreatedAt, v.UpdatedAt = now, now
	return nil
}

func (s *Server) prepareAdmin(_ *Claims, _ []byte, v *models.Admin, existing *models.Admin) error {
	now := s.now().UTC()
	if existing != nil {
		v.Email = existing.Email
		v.CreatedAt = existing.CreatedAt
		v.UpdatedAt = now
		return nil
	}
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
	if _, taken := s.accounts.lookup(models.SessionAdmin, v.Email); taken {
		return dErrors.New(dErrors.CodeConflict, "An account with this email already exists")
	}
	if v.Role == "" {
		v.Role = "admin"
	}
	v.CreatedAt, v.UpdatedAt = now, now
	return nil
}

// credentialsFor returns an afterCreate hook that registers the optional
// password sent alongside a new user or admin.
func credentialsFor[T any](s *Server, kind models.SessionKind, ident func(T) (int64, string)) func([]byte, T) error {
	return func(raw []byte, v T) error {
		var pw passwordField
		if err := json.Unmarshal(raw, &pw); err != nil || pw.Password == "" {
			return nil
		}
		id, email := ident(v)
		return s.addAccount(kind, email, pw.Password, id)
	}
}

func (s *Server) prepareAppointment(c *Claims, _ []byte, v *models.Appointment, existing *models.Appointment) error {
	if existing != nil {
		v.UserID = existing.UserID
		v.CreatedAt = existing.CreatedAt
		if c.Kind != models.SessionAdmin && v.Status != existing.Status && v.Status != "cancelled" {
			return dErrors.New(dErrors.CodeForbidden, "Only an administrator can change this status")
		}
		return s.checkReferences(v)
	}
	if c.Kind == models.SessionUser {
		v.UserID = c.ProfileID()
	}
	if v.UserID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "user is required")
	}
	if _, ok := s.users.get(v.UserID); !ok {
		return dErrors.New(dErrors.CodeValidation, "user does not exist")
	}
	v.Status = "pending"
	v.CreatedAt = s.now().UTC()
	return s.checkReferences(v)
}

func (s *Server) checkReferences(v *models.Appointment) error {
	switch v.Kind {
	case models.AppointmentCafeRoom:
		if _, ok := s.rooms.get(v.RoomID); !ok {
			return dErrors.New(dErrors.CodeValidation, "Please choose a room")
		}
	case models.AppointmentCareService:
		_, hasService := s.services.get(v.ServiceID)
		_, hasPackage := s.packages.get(v.PackageID)
		if !hasService && !hasPackage {
			return dErrors.New(dErrors.CodeValidation, "Please choose a service or package")
		}
	}
	return nil
}
