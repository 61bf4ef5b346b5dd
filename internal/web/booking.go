package web

import (
	"net/http"
	"strconv"

	"pawhub/internal/api"
	"pawhub/internal/booking"
	"pawhub/internal/fetcher"
	"pawhub/internal/models"
	"pawhub/internal/session"
	dErrors "pawhub/pkg/domain-errors"
	"pawhub/pkg/requestcontext"
)

const bookingConfirmPath = "/booking/confirm"

// draftInput is what the booking forms post. Drafts are not validated until
// confirmation.
type draftInput struct {
	Date      string `form:"date"`
	StartTime string `form:"startTime"`
	EndTime   string `form:"endTime"`
	Guests    int    `form:"guests"`
	PackageID int64  `form:"packageId"`
	Notes     string `form:"notes"`
}

var draftFields = []string{"date", "startTime", "endTime", "guests", "packageId", "notes"}

func (d draftInput) apply(drafts *booking.Drafts, visitorID string) booking.Draft {
	drafts.SetDate(visitorID, d.Date)
	drafts.SetTimeRange(visitorID, booking.TimeRange{Start: d.StartTime, End: d.EndTime})
	return drafts.SetGuests(visitorID, d.Guests)
}

func (s *Server) handleRoomDraft(w http.ResponseWriter, r *http.Request) {
	_, id, _ := idParam(r)
	visitorID := requestcontext.VisitorID(r.Context())

	var in draftInput
	if _, err := decodeForm(r, &in, draftFields...); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.drafts.SetRoom(visitorID, id)
	in.apply(s.drafts, visitorID)
	http.Redirect(w, r, bookingConfirmPath, http.StatusSeeOther)
}

func (s *Server) handleServiceDraft(w http.ResponseWriter, r *http.Request) {
	_, id, _ := idParam(r)
	visitorID := requestcontext.VisitorID(r.Context())

	var in draftInput
	if _, err := decodeForm(r, &in, draftFields...); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.drafts.SetService(visitorID, id, in.PackageID)
	in.EndTime = ""
	in.apply(s.drafts, visitorID)
	http.Redirect(w, r, bookingConfirmPath, http.StatusSeeOther)
}

type confirmData struct {
	Empty   bool
	Kind    models.AppointmentKind
	Summary []fact
	Form    draftInput
	Errors  FieldErrors
	Loading bool
}

// summarize names what the draft books, fetching the room, service and
// package it points at concurrently.
func (s *Server) summarize(r *http.Request, d booking.Draft) ([]fact, bool) {
	ctx := r.Context()
	rooms := fetcher.NewItem(ctx, "confirm-room", api.NewResource[models.CafeRoom](s.api, api.CafeRooms).Get, idString(d.RoomID), s.fetchOpts...)
	services := fetcher.NewItem(ctx, "confirm-service", api.NewResource[models.CareService](s.api, api.CareServices).Get, idString(d.ServiceID), s.fetchOpts...)
	packages := fetcher.NewItem(ctx, "confirm-package", api.NewResource[models.Package](s.api, api.Packages).Get, idString(d.PackageID), s.fetchOpts...)
	defer rooms.Close()
	defer services.Close()
	defer packages.Close()

	settled := s.settleAll(ctx, rooms, services, packages)

	var out []fact
	if snap := rooms.Snapshot(); snap.HasData {
		out = append(out, fact{"Room", snap.Data.Name}, fact{"Price", money(snap.Data.PricePerHour) + " / hour"})
	}
	if snap := services.Snapshot(); snap.HasData {
		out = append(out, fact{"Service", snap.Data.Name}, fact{"Price", money(snap.Data.Price)})
	}
	if snap := packages.Snapshot(); snap.HasData {
		out = append(out, fact{"Package", snap.Data.Name}, fact{"Package price", money(snap.Data.Price)})
	}
	return out, settled
}

func idString(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func (s *Server) renderConfirm(w http.ResponseWriter, r *http.Request, status int, d booking.Draft, form draftInput, errs FieldErrors) {
	data := confirmData{Form: form, Errors: errs, Kind: d.Kind()}
	if d.Kind() == "" {
		data.Empty = true
		s.render(w, r, status, "booking_confirm", page{Title: "Confirm booking", Data: data})
		return
	}
	summary, settled := s.summarize(r, d)
	data.Summary = summary
	data.Loading = !settled
	s.render(w, r, status, "booking_confirm", page{Title: "Confirm booking", Data: data})
}

func (s *Server) handleBookingConfirm(w http.ResponseWriter, r *http.Request) {
	d := s.drafts.Get(requestcontext.VisitorID(r.Context()))
	form := draftInput{Date: d.Date, StartTime: d.Time.Start, EndTime: d.Time.End, Guests: d.Guests, PackageID: d.PackageID}
	s.renderConfirm(w, r, http.StatusOK, d, form, nil)
}

// handleBookingSubmit folds the last edits into the draft, validates the
// resulting appointment and creates it as the signed-in user.
func (s *Server) handleBookingSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	visitorID := requestcontext.VisitorID(ctx)
	sess, _ := session.FromContext(ctx)

	current := s.drafts.Get(visitorID)
	in := draftInput{PackageID: current.PackageID}
	if _, err := decodeForm(r, &in, draftFields...); err != nil {
		s.renderConfirm(w, r, http.StatusBadRequest, current, in, FieldErrors{"": dErrors.Message(err, "")})
		return
	}
	d := in.apply(s.drafts, visitorID)
	if d.Kind() == "" {
		s.renderConfirm(w, r, http.StatusBadRequest, d, in, nil)
		return
	}

	appt := d.Appointment(sess.Profile.ID, in.Notes)
	if errs := validateForm(appt); errs != nil {
		s.renderConfirm(w, r, http.StatusBadRequest, d, in, errs)
		return
	}

	created, err := api.NewResource[models.Appointment](s.clientFor(ctx), api.Appointments).Create(ctx, appt)
	if err != nil {
		s.logger.WarnContext(ctx, "booking rejected",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		if dErrors.HasCode(err, dErrors.CodeValidation) || dErrors.HasCode(err, dErrors.CodeNotFound) || dErrors.HasCode(err, dErrors.CodeConflict) {
			s.renderConfirm(w, r, http.StatusBadRequest, d, in, FieldErrors{"": dErrors.Message(err, "")})
			return
		}
		s.renderError(w, r, err)
		return
	}

	s.drafts.Clear(visitorID)
	s.forgetViews(ctx)
	s.logger.InfoContext(ctx, "booking created",
		"appointment_id", created.ID,
		"kind", string(created.Kind),
		"request_id", requestcontext.RequestID(ctx),
	)
	http.Redirect(w, r, "/account/bookings?booked="+strconv.FormatInt(created.ID, 10), http.StatusSeeOther)
}
