// Package mockapi is an in-memory stand-in for the remote REST API, used for
// local development and tests.
package mockapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pawhub/internal/models"
	dErrors "pawhub/pkg/domain-errors"
	"pawhub/pkg/platform/httputil"
	"pawhub/pkg/platform/middleware/request"
	"pawhub/pkg/secrets"
)

// Server serves the REST API from seeded in-memory collections.
type Server struct {
	logger   *slog.Logger
	tokens   *TokenService
	latency  time.Duration
	hashCost int
	now      func() time.Time

	accounts     *accounts
	clinics      *collection[models.Clinic]
	doctors      *collection[models.Doctor]
	services     *collection[models.CareService]
	rooms        *collection[models.CafeRoom]
	pets         *collection[models.CafePet]
	sitters      *collection[models.PetSitter]
	users        *collection[models.User]
	admins       *collection[models.Admin]
	appointments *collection[models.Appointment]
	packages     *collection[models.Package]
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithLatency delays every response by d.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// WithHashCost sets the bcrypt cost for seeded and registered passwords.
func WithHashCost(cost int) Option {
	return func(s *Server) { s.hashCost = cost }
}

// New builds a seeded server.
func New(tokens *TokenService, opts ...Option) (*Server, error) {
	s := &Server{
		logger:   slog.Default(),
		tokens:   tokens,
		now:      time.Now,
		accounts: newAccounts(),
		clinics: newCollection(func(v *models.Clinic) *int64 { return &v.ID }, func(v models.Clinic, f map[string]string) bool {
			return nameFilter(f, v.Name)
		}),
		doctors: newCollection(func(v *models.Doctor) *int64 { return &v.ID }, func(v models.Doctor, f map[string]string) bool {
			return int64Filter(f, "clinicId", v.ClinicID) && nameFilter(f, v.Name)
		}),
		services: newCollection(func(v *models.CareService) *int64 { return &v.ID }, func(v models.CareService, f map[string]string) bool {
			return nameFilter(f, v.Name)
		}),
		rooms: newCollection(func(v *models.CafeRoom) *int64 { return &v.ID }, func(v models.CafeRoom, f map[string]string) bool {
			return nameFilter(f, v.Name)
		}),
		pets: newCollection(func(v *models.CafePet) *int64 { return &v.ID }, func(v models.CafePet, f map[string]string) bool {
			species, ok := f["species"]
			return nameFilter(f, v.Name) && (!ok || strings.EqualFold(species, v.Species))
		}),
		sitters: newCollection(func(v *models.PetSitter) *int64 { return &v.ID }, func(v models.PetSitter, f map[string]string) bool {
			return nameFilter(f, v.Name)
		}),
		users: newCollection(func(v *models.User) *int64 { return &v.ID }, func(v models.User, f map[string]string) bool {
			return nameFilter(f, v.Name)
		}),
		admins: newCollection(func(v *models.Admin) *int64 { return &v.ID }, func(v models.Admin, f map[string]string) bool {
			return nameFilter(f, v.Name)
		}),
		appointments: newCollection(func(v *models.Appointment) *int64 { return &v.ID }, func(v models.Appointment, f map[string]string) bool {
			return int64Filter(f, "userId", v.UserID)
		}),
		packages: newCollection(func(v *models.Package) *int64 { return &v.ID }, func(v models.Package, f map[string]string) bool {
			return nameFilter(f, v.Name)
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.seed(s.now().UTC()); err != nil {
		return nil, err
	}
	return s, nil
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(s.logger))
	r.Use(request.Logger(s.logger))
	r.Use(request.RequireJSON)
	r.Use(s.simulateLatency)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "pawhub-mockapi"})
	})
	r.Post("/auth/{kind}/login", s.handleLogin)
	r.Post("/auth/user/register", s.handleRegister)

	mount(r, s, resource[models.Clinic]{name: "clinics", col: s.clinics, read: public, write: adminOnly})
	mount(r, s, resource[models.Doctor]{name: "doctors", col: s.doctors, read: public, write: adminOnly})
	mount(r, s, resource[models.CareService]{name: "care-services", col: s.services, read: public, write: adminOnly})
	mount(r, s, resource[models.CafeRoom]{name: "cafe-rooms", col: s.rooms, read: public, write: adminOnly})
	mount(r, s, resource[models.CafePet]{name: "cafe-pets", col: s.pets, read: public, write: adminOnly})
	mount(r, s, resource[models.PetSitter]{name: "pet-sitters", col: s.sitters, read: public, write: adminOnly})
	mount(r, s, resource[models.Package]{name: "packages", col: s.packages, read: public, write: adminOnly})
	mount(r, s, resource[models.User]{
		name: "users", col: s.users, read: adminOnly, write: adminOnly,
		self:    func(c *Claims, v models.User) bool { return c.Kind == models.SessionUser && c.ProfileID() == v.ID },
		prepare: s.prepareUser,
		afterCreate: credentialsFor(s, models.SessionUser, func(v models.User) (int64, string) {
			return v.ID, v.Email
		}),
	})
	mount(r, s, resource[models.Admin]{
		name: "admins", col: s.admins, read: adminOnly, write: adminOnly,
		prepare: s.prepareAdmin,
		afterCreate: credentialsFor(s, models.SessionAdmin, func(v models.Admin) (int64, string) {
			return v.ID, v.Email
		}),
	})
	mount(r, s, resource[models.Appointment]{
		name: "appointments", col: s.appointments, read: authenticated, write: authenticated,
		scope: func(c *Claims, v models.Appointment) bool {
			return c.Kind == models.SessionAdmin || c.ProfileID() == v.UserID
		},
		prepare: s.prepareAppointment,
	})
	return r
}

func (s *Server) simulateLatency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.latency > 0 {
			t := time.NewTimer(s.latency)
			select {
			case <-t.C:
			case <-r.Context().Done():
				t.Stop()
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *loginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (r *registerRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	kind := models.SessionKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown login kind"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[loginRequest](w, r, s.logger)
	if !ok {
		return
	}
	invalid := dErrors.New(dErrors.CodeUnauthorized, "Invalid email or password")
	acc, found := s.accounts.lookup(kind, req.Email)
	if !found {
		httputil.WriteError(w, invalid)
		return
	}
	if err := secrets.Verify(req.Password, acc.hash); err != nil {
		httputil.WriteError(w, err)
		return
	}
	profile, err := s.profile(kind, acc.profileID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !profile.IsActive {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "This account has been disabled"))
		return
	}
	s.writeLogin(r.Context(), w, http.StatusOK, kind, profile)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[registerRequest](w, r, s.logger)
	if !ok {
		return
	}
	if _, taken := s.accounts.lookup(models.SessionUser, req.Email); taken {
		httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "An account with this email already exists"))
		return
	}
	now := s.now().UTC()
	user := s.users.create(models.User{
		Name: req.Name, Email: req.Email, Phone: req.Phone,
		Role: "user", IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err := s.addAccount(models.SessionUser, user.Email, req.Password, user.ID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	s.writeLogin(r.Context(), w, http.StatusCreated, models.SessionUser, userProfile(user))
}

func (s *Server) writeLogin(ctx context.Context, w http.ResponseWriter, status int, kind models.SessionKind, profile models.Profile) {
	token, err := s.tokens.Issue(kind, profile)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	s.logger.InfoContext(ctx, "login issued", "kind", kind, "profile_id", profile.ID)
	httputil.WriteJSON(w, status, models.LoginResponse{AccessToken: token, Profile: profile})
}

func (s *Server) profile(kind models.SessionKind, id int64) (models.Profile, error) {
	if kind == models.SessionAdmin {
		a, ok := s.admins.get(id)
		if !ok {
			return models.Profile{}, dErrors.New(dErrors.CodeUnauthorized, "Invalid email or password")
		}
		return models.Profile{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role, IsActive: a.IsActive, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}, nil
	}
	u, ok := s.users.get(id)
	if !ok {
		return models.Profile{}, dErrors.New(dErrors.CodeUnauthorized, "Invalid email or password")
	}
	return userProfile(u), nil
}

func userProfile(u models.User) models.Profile {
	return models.Profile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}
