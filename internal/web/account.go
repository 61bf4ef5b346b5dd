package web

import (
	"net/http"
	"strconv"
	"strings"

	"pawhub/internal/api"
	"pawhub/internal/fetcher"
	"pawhub/internal/models"
	"pawhub/internal/search"
	"pawhub/internal/session"
	dErrors "pawhub/pkg/domain-errors"
	"pawhub/pkg/requestcontext"
)

type profileForm struct {
	Name  string `form:"name" validate:"required,max=120"`
	Phone string `form:"phone" validate:"omitempty,max=20"`
}

type profileData struct {
	Email   string
	Role    string
	Since   string
	Form    profileForm
	Errors  FieldErrors
	Editing bool
	Loading bool
}

// loadOwnUser fetches the signed-in user's record with their own token.
func (s *Server) loadOwnUser(r *http.Request) (fetcher.ValueState[models.User], bool) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	users := api.NewResource[models.User](s.clientFor(ctx), api.Users)
	item := fetcher.NewItem(ctx, "account-user", users.Get, strconv.FormatInt(sess.Profile.ID, 10), s.fetchOpts...)
	defer item.Close()
	settled := s.settleAll(ctx, item)
	return item.Snapshot(), settled
}

func userProfileData(u models.User) profileData {
	d := profileData{
		Email: u.Email,
		Role:  u.Role,
		Form:  profileForm{Name: u.Name, Phone: u.Phone},
	}
	if !u.CreatedAt.IsZero() {
		d.Since = u.CreatedAt.Format("2 Jan 2006")
	}
	return d
}

func (s *Server) handleAccountProfile(w http.ResponseWriter, r *http.Request) {
	snap, settled := s.loadOwnUser(r)
	if snap.Err != nil && !snap.Loading {
		s.renderError(w, r, snap.Err)
		return
	}
	d := userProfileData(snap.Data)
	d.Editing = true
	d.Loading = !settled
	p := page{Title: "My profile", Refresh: !settled, Data: d}
	if r.URL.Query().Get("saved") != "" {
		p.Flash = "Your profile was saved."
	}
	s.render(w, r, http.StatusOK, "account_profile", p)
}

func (s *Server) handleAccountProfileSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)

	snap, settled := s.loadOwnUser(r)
	switch {
	case !settled:
		s.renderError(w, r, dErrors.New(dErrors.CodeTimeout, "Your profile could not be loaded in time. Please try again."))
		return
	case snap.Err != nil:
		s.renderError(w, r, snap.Err)
		return
	}
	user := snap.Data

	var in profileForm
	if _, err := decodeForm(r, &in, "name", "phone"); err != nil {
		s.renderError(w, r, err)
		return
	}
	d := userProfileData(user)
	d.Editing = true
	d.Form = in
	if errs := validateForm(in); errs != nil {
		d.Errors = errs
		s.render(w, r, http.StatusBadRequest, "account_profile", page{Title: "My profile", Data: d})
		return
	}

	user.Name = strings.TrimSpace(in.Name)
	user.Phone = strings.TrimSpace(in.Phone)
	users := api.NewResource[models.User](s.clientFor(ctx), api.Users)
	updated, err := users.Update(ctx, strconv.FormatInt(user.ID, 10), user)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			d.Errors = FieldErrors{"": dErrors.Message(err, dErrors.DefaultMessage)}
			s.render(w, r, http.StatusBadRequest, "account_profile", page{Title: "My profile", Data: d})
			return
		}
		s.renderError(w, r, err)
		return
	}

	// The layout greets the session profile, so it follows the edit.
	sess.Profile.Name = updated.Name
	sess.Profile.UpdatedAt = updated.UpdatedAt
	if err := s.sessions.Store(models.SessionUser, requestcontext.VisitorID(ctx)).Set(ctx, sess); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh session profile",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	http.Redirect(w, r, "/account/profile?saved=1", http.StatusSeeOther)
}

func appointmentCard(a models.Appointment) card {
	what := "Cafe room"
	switch a.Kind {
	case models.AppointmentCareService:
		what = "Care service"
	case models.AppointmentClinic:
		what = "Clinic visit"
	}
	when := a.Date + " " + a.StartTime
	if a.EndTime != "" {
		when += "–" + a.EndTime
	}
	c := card{Title: what + " #" + strconv.FormatInt(a.ID, 10), Subtitle: when, Body: a.Notes, Meta: a.Status}
	if a.Guests > 0 {
		c.Meta += " · " + strconv.Itoa(a.Guests) + " guests"
	}
	return c
}

func (s *Server) handleAccountBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	appointments := api.NewResource[models.Appointment](s.clientFor(ctx), api.Appointments)

	snap, settled := loadList(s, r, listSource[models.Appointment]{
		key:    "account:bookings",
		fetch:  appointments.List,
		fields: search.AppointmentFields,
		fixed:  map[string]string{"userId": strconv.FormatInt(sess.Profile.ID, 10)},
	})

	query := cloneQuery(r.URL.Query())
	query.Del("booked")
	data := listData{
		Heading: "My bookings",
		Path:    "/account/bookings",
		Term:    snap.Term,
		Hidden:  hiddenFilters(query, nil, snap.CurrentPage),
		Loading: !settled,
		Error:   snap.Error,
		Pages:   pageLinks("/account/bookings", query, snap.CurrentPage, snap.TotalPages),
	}
	for _, a := range snap.Visible {
		data.Cards = append(data.Cards, appointmentCard(a))
	}
	if snap.Empty && snap.Error == "" {
		data.Empty = "No booking found."
	}
	p := page{Title: "My bookings", Refresh: !settled, Data: data}
	if r.URL.Query().Get("booked") != "" {
		p.Flash = "Your booking was received."
	}
	s.render(w, r, http.StatusOK, "list", p)
}
