package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pawhub/internal/api"
	"pawhub/internal/models"
	"pawhub/internal/session"
	dErrors "pawhub/pkg/domain-errors"
	"pawhub/pkg/requestcontext"
)

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

type registerForm struct {
	Name            string `form:"name" validate:"required,max=120"`
	Email           string `form:"email" validate:"required,email"`
	Phone           string `form:"phone" validate:"omitempty,max=20"`
	Password        string `form:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
	Next            string `form:"next"`
}

type authData struct {
	Kind    models.SessionKind
	Heading string
	Action  string
	Next    string
	Email   string
	Name    string
	Phone   string
	Errors  FieldErrors
}

// home is where each kind lands after signing in.
func home(kind models.SessionKind) string {
	if kind == models.SessionAdmin {
		return "/admin"
	}
	return "/"
}

func (s *Server) registerAuth(r chi.Router) {
	r.Get(userLoginPath, s.loginPage(models.SessionUser))
	r.Post(userLoginPath, s.login(models.SessionUser))
	r.Post("/logout", s.logout(models.SessionUser, "/"))
	r.Get("/register", s.handleRegisterPage)
	r.Post("/register", s.handleRegister)

	r.Get(adminLoginPath, s.loginPage(models.SessionAdmin))
	r.Post(adminLoginPath, s.login(models.SessionAdmin))
	r.Post("/admin/logout", s.logout(models.SessionAdmin, adminLoginPath))
}

func loginAction(kind models.SessionKind) (heading, action string) {
	if kind == models.SessionAdmin {
		return "Admin sign in", adminLoginPath
	}
	return "Sign in", userLoginPath
}

// signedIn reports whether the visitor already holds a session of kind.
func (s *Server) signedIn(ctx context.Context, kind models.SessionKind) bool {
	visitorID := requestcontext.VisitorID(ctx)
	if visitorID == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, viewerTimeout)
	defer cancel()
	sess, status, err := s.sessions.Store(kind, visitorID).Await(ctx)
	return err == nil && status == session.StatusAuthenticated && !session.TokenExpired(sess.AccessToken, s.now())
}

func (s *Server) loginPage(kind models.SessionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next := safeNext(r.URL.Query().Get("next"), home(kind))
		if s.signedIn(r.Context(), kind) {
			http.Redirect(w, r, next, http.StatusSeeOther)
			return
		}
		heading, action := loginAction(kind)
		s.render(w, r, http.StatusOK, "login", page{Title: heading, Data: authData{
			Kind: kind, Heading: heading, Action: action, Next: next,
		}})
	}
}

func (s *Server) login(kind models.SessionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		heading, action := loginAction(kind)

		var in loginForm
		_, err := decodeForm(r, &in, "email", "password", "next")
		in.Email = strings.ToLower(in.Email)
		data := authData{Kind: kind, Heading: heading, Action: action, Next: safeNext(in.Next, home(kind)), Email: in.Email}
		if err != nil {
			data.Errors = FieldErrors{"": dErrors.Message(err, dErrors.DefaultMessage)}
			s.render(w, r, http.StatusBadRequest, "login", page{Title: heading, Data: data})
			return
		}
		if errs := validateForm(in); errs != nil {
			data.Errors = errs
			s.render(w, r, http.StatusBadRequest, "login", page{Title: heading, Data: data})
			return
		}

		sess, err := s.api.Login(ctx, kind, api.Credentials{Email: in.Email, Password: in.Password})
		if err != nil {
			s.recordLoginFailure(kind)
			s.logger.InfoContext(ctx, "login failed",
				"kind", string(kind),
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			data.Errors = FieldErrors{"": dErrors.Message(err, dErrors.DefaultMessage)}
			s.render(w, r, loginFailureStatus(err), "login", page{Title: heading, Data: data})
			return
		}

		if err := s.startSession(ctx, kind, sess); err != nil {
			s.renderError(w, r, err)
			return
		}
		if s.metrics != nil {
			s.metrics.IncrementLogins(string(kind))
		}
		http.Redirect(w, r, data.Next, http.StatusSeeOther)
	}
}

func loginFailureStatus(err error) int {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeValidation, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) recordLoginFailure(kind models.SessionKind) {
	if s.metrics != nil {
		s.metrics.IncrementLoginFailures(string(kind))
	}
}

// startSession stores sess for the visitor and drops list pages fetched
// under the previous identity.
func (s *Server) startSession(ctx context.Context, kind models.SessionKind, sess models.Session) error {
	visitorID := requestcontext.VisitorID(ctx)
	if visitorID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Cookies are required to sign in.")
	}
	if err := s.sessions.Store(kind, visitorID).Set(ctx, sess); err != nil {
		s.logger.ErrorContext(ctx, "failed to store session",
			"kind", string(kind),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return err
	}
	s.forgetViews(ctx)
	s.logger.InfoContext(ctx, "signed in",
		"kind", string(kind),
		"profile_id", sess.Profile.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Server) logout(kind models.SessionKind, to string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if visitorID := requestcontext.VisitorID(ctx); visitorID != "" {
			if err := s.sessions.Store(kind, visitorID).Clear(ctx); err != nil {
				s.logger.ErrorContext(ctx, "failed to clear session",
					"kind", string(kind),
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
			}
			s.forgetViews(ctx)
		}
		http.Redirect(w, r, to, http.StatusSeeOther)
	}
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"), "/")
	if s.signedIn(r.Context(), models.SessionUser) {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "register", page{Title: "Create an account", Data: authData{
		Kind: models.SessionUser, Heading: "Create an account", Action: "/register", Next: next,
	}})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in registerForm
	_, err := decodeForm(r, &in, "name", "email", "phone", "password", "confirmPassword", "next")
	in.Email = strings.ToLower(in.Email)
	data := authData{
		Kind: models.SessionUser, Heading: "Create an account", Action: "/register",
		Next: safeNext(in.Next, "/"), Email: in.Email, Name: in.Name, Phone: in.Phone,
	}
	if err != nil {
		data.Errors = FieldErrors{"": dErrors.Message(err, dErrors.DefaultMessage)}
		s.render(w, r, http.StatusBadRequest, "register", page{Title: data.Heading, Data: data})
		return
	}
	if errs := validateForm(in); errs != nil {
		data.Errors = errs
		s.render(w, r, http.StatusBadRequest, "register", page{Title: data.Heading, Data: data})
		return
	}

	sess, err := s.api.Register(ctx, api.Registration{Name: in.Name, Email: in.Email, Phone: in.Phone, Password: in.Password})
	if err != nil {
		s.logger.InfoContext(ctx, "registration failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		data.Errors = FieldErrors{"": dErrors.Message(err, dErrors.DefaultMessage)}
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			data.Errors = FieldErrors{"email": dErrors.Message(err, "This email is already registered.")}
		}
		s.render(w, r, loginFailureStatus(err), "register", page{Title: data.Heading, Data: data})
		return
	}
	if err := s.startSession(ctx, models.SessionUser, sess); err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, data.Next, http.StatusSeeOther)
}
