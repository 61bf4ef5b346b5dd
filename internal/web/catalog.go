package web

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pawhub/internal/api"
	"pawhub/internal/booking"
	"pawhub/internal/fetcher"
	"pawhub/internal/models"
	"pawhub/internal/search"
	"pawhub/pkg/requestcontext"
)

// homeFeatured is how many entities each home page section shows.
const homeFeatured = 3

type homeSection struct {
	Heading string
	Link    string
	Cards   []card
	Error   string
}

type detailData struct {
	Heading  string
	Subtitle string
	Image    string
	Body     string
	Facts    []fact
	Back     string
	// Related entities shown under the main one.
	RelatedHeading string
	Related        []card
	RelatedError   string
	RelatedEmpty   string
	Booking        *bookingForm
	Loading        bool
}

// bookingForm is the draft form embedded in bookable detail pages.
type bookingForm struct {
	Action    string
	Date      string
	StartTime string
	EndTime   string
	Guests    int
	PackageID int64
	Rooms     bool
	Packages  []option
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

func clinicCard(c models.Clinic) card {
	return card{
		Title:    c.Name,
		Subtitle: c.Address,
		Body:     c.Description,
		Meta:     rating(c.Rating),
		Image:    c.ImageURL,
		Link:     "/clinics/" + strconv.FormatInt(c.ID, 10),
	}
}

func doctorCard(d models.Doctor) card {
	c := card{
		Title:    d.Name,
		Subtitle: d.Specialty,
		Body:     d.Expertise,
		Image:    d.ImageURL,
	}
	if d.Experience > 0 {
		c.Meta = fmt.Sprintf("%d years experience", d.Experience)
	}
	if d.ClinicID != 0 {
		c.Link = "/clinics/" + strconv.FormatInt(d.ClinicID, 10)
	}
	return c
}

func serviceCard(s models.CareService) card {
	c := card{
		Title:    s.Name,
		Subtitle: money(s.Price),
		Body:     s.Description,
		Image:    s.ImageURL,
		Link:     "/care-services/" + strconv.FormatInt(s.ID, 10),
	}
	if s.Duration > 0 {
		c.Meta = fmt.Sprintf("%d min", s.Duration)
	}
	return c
}

func roomCard(r models.CafeRoom) card {
	return card{
		Title:    r.Name,
		Subtitle: fmt.Sprintf("Up to %d guests", r.Capacity),
		Body:     r.Description,
		Meta:     money(r.PricePerHour) + " / hour",
		Image:    r.ImageURL,
		Link:     "/cafe/rooms/" + strconv.FormatInt(r.ID, 10),
	}
}

func petCard(p models.CafePet) card {
	sub := p.Species
	if p.Breed != "" {
		sub += " · " + p.Breed
	}
	c := card{Title: p.Name, Subtitle: sub, Body: p.Description, Image: p.ImageURL}
	if p.Age > 0 {
		c.Meta = fmt.Sprintf("%d years old", p.Age)
	}
	return c
}

func sitterCard(p models.PetSitter) card {
	return card{
		Title:    p.Name,
		Subtitle: p.Expertise,
		Body:     p.Bio,
		Meta:     money(p.HourlyRate) + " / hour",
		Image:    p.ImageURL,
		Link:     "/pet-sitters/" + strconv.FormatInt(p.ID, 10),
	}
}

func packageCard(p models.Package) card {
	return card{
		Title:    p.Name,
		Subtitle: money(p.Price),
		Body:     p.Description,
		Meta:     strings.Join(p.Highlights, " · "),
	}
}

func rating(v float64) string {
	if v <= 0 {
		return ""
	}
	return "★ " + strconv.FormatFloat(v, 'f', 1, 64)
}

func (s *Server) registerCatalog(r chi.Router) {
	r.Get("/", s.handleHome)

	r.Get("/clinics", listHandler(s, catalogList[models.Clinic]{
		key: "clinics", title: "Clinics", heading: "Veterinary clinics", path: "/clinics",
		noun: "clinic", fields: search.ClinicFields, card: clinicCard,
	}, api.NewResource[models.Clinic](s.api, api.Clinics)))
	r.Get("/doctors", listHandler(s, catalogList[models.Doctor]{
		key: "doctors", title: "Doctors", heading: "Our doctors", path: "/doctors",
		noun: "doctor", fields: search.DoctorFields, remote: []string{"clinicId"}, card: doctorCard,
	}, api.NewResource[models.Doctor](s.api, api.Doctors)))
	r.Get("/care-services", listHandler(s, catalogList[models.CareService]{
		key: "care-services", title: "Care services", heading: "Pet care services", path: "/care-services",
		noun: "service", fields: search.CareServiceFields, card: serviceCard,
	}, api.NewResource[models.CareService](s.api, api.CareServices)))
	r.Get("/cafe/rooms", listHandler(s, catalogList[models.CafeRoom]{
		key: "cafe-rooms", title: "Cafe rooms", heading: "Pet cafe rooms", path: "/cafe/rooms",
		noun: "room", fields: search.CafeRoomFields, card: roomCard,
	}, api.NewResource[models.CafeRoom](s.api, api.CafeRooms)))
	r.Get("/cafe/pets", listHandler(s, catalogList[models.CafePet]{
		key: "cafe-pets", title: "Cafe pets", heading: "Meet our cafe pets", path: "/cafe/pets",
		noun: "pet", fields: search.CafePetFields, remote: []string{"species"}, card: petCard,
	}, api.NewResource[models.CafePet](s.api, api.CafePets)))
	r.Get("/pet-sitters", listHandler(s, catalogList[models.PetSitter]{
		key: "pet-sitters", title: "Pet sitters", heading: "Pet sitters", path: "/pet-sitters",
		noun: "pet sitter", fields: search.PetSitterFields, card: sitterCard,
	}, api.NewResource[models.PetSitter](s.api, api.PetSitters)))
	r.Get("/packages", listHandler(s, catalogList[models.Package]{
		key: "packages", title: "Packages", heading: "Care packages", path: "/packages",
		noun: "package", fields: search.PackageFields, card: packageCard,
	}, api.NewResource[models.Package](s.api, api.Packages)))

	r.Get("/clinics/{id}", s.requireID(s.handleClinic))
	r.Get("/care-services/{id}", s.requireID(s.handleCareService))
	r.Get("/cafe/rooms/{id}", s.requireID(s.handleCafeRoom))
	r.Get("/pet-sitters/{id}", s.requireID(s.handlePetSitter))
}

// requireID answers 404 for any {id} that is not a positive integer, before
// anything is fetched.
func (s *Server) requireID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := idParam(r); !ok {
			s.notFound(w, r)
			return
		}
		next(w, r)
	}
}

// featured fetches the first few entities of res for the home page.
func featured[T any](ctx context.Context, s *Server, res api.Resource[T], cardOf func(T) card) (*fetcher.Paginated[T], func() homeSection) {
	p := fetcher.NewPaginated(ctx, "home:"+res.Name(), res.List, homeFeatured, s.fetchOpts...)
	return p, func() homeSection {
		snap := p.Snapshot()
		sec := homeSection{Error: snap.Error}
		for _, item := range snap.Items {
			sec.Cards = append(sec.Cards, cardOf(item))
		}
		return sec
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clinics, clinicSec := featured(ctx, s, api.NewResource[models.Clinic](s.api, api.Clinics), clinicCard)
	services, serviceSec := featured(ctx, s, api.NewResource[models.CareService](s.api, api.CareServices), serviceCard)
	rooms, roomSec := featured(ctx, s, api.NewResource[models.CafeRoom](s.api, api.CafeRooms), roomCard)
	defer clinics.Close()
	defer services.Close()
	defer rooms.Close()

	settled := s.settleAll(ctx, clinics, services, rooms)

	sections := []homeSection{clinicSec(), serviceSec(), roomSec()}
	sections[0].Heading, sections[0].Link = "Veterinary clinics", "/clinics"
	sections[1].Heading, sections[1].Link = "Pet care services", "/care-services"
	sections[2].Heading, sections[2].Link = "Pet cafe rooms", "/cafe/rooms"

	s.render(w, r, http.StatusOK, "home", page{Title: "PawHub", Refresh: !settled, Data: sections})
}

// idParam returns the {id} path parameter when it is a positive integer.
func idParam(r *http.Request) (string, int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return "", 0, false
	}
	return raw, id, true
}

// detail loads the item named by the {id} parameter. It writes the 404 or
// error page itself and returns ok=false when the page is done.
func detail[T any](s *Server, w http.ResponseWriter, r *http.Request, res api.Resource[T], related ...waiter) (fetcher.ValueState[T], bool, bool) {
	raw, _, valid := idParam(r)
	if !valid {
		s.notFound(w, r)
		return fetcher.ValueState[T]{}, false, false
	}
	item := fetcher.NewItem(r.Context(), res.Name(), res.Get, raw, s.fetchOpts...)
	defer item.Close()

	settled := s.settleAll(r.Context(), append(related, item)...)
	snap := item.Snapshot()
	switch {
	case snap.NotFound:
		s.notFound(w, r)
		return snap, settled, false
	case snap.Err != nil && !snap.Loading:
		s.renderError(w, r, snap.Err)
		return snap, settled, false
	}
	return snap, settled, true
}

func (s *Server) renderDetail(w http.ResponseWriter, r *http.Request, title string, settled bool, d detailData) {
	d.Loading = !settled
	if d.Loading && d.Heading == "" {
		d.Heading = "Loading…"
	}
	s.render(w, r, http.StatusOK, "detail", page{Title: title, Refresh: !settled, Data: d})
}

func (s *Server) handleClinic(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	doctors := api.NewResource[models.Doctor](s.api, api.Doctors)
	staff := fetcher.NewList(r.Context(), "clinic-doctors", func(ctx context.Context) ([]models.Doctor, error) {
		res, err := doctors.List(ctx, models.NewListQuery(1, 50).WithFilters(map[string]string{"clinicId": raw}))
		return res.Items, err
	}, s.fetchOpts...)
	defer staff.Close()

	snap, settled, ok := detail(s, w, r, api.NewResource[models.Clinic](s.api, api.Clinics), staff)
	if !ok {
		return
	}
	c := snap.Data
	d := detailData{
		Heading:        c.Name,
		Subtitle:       c.Address,
		Image:          c.ImageURL,
		Body:           c.Description,
		Back:           "/clinics",
		RelatedHeading: "Doctors at this clinic",
		Facts:          []fact{{"Phone", c.Phone}, {"Rating", rating(c.Rating)}},
	}
	rel := staff.Snapshot()
	d.RelatedError = rel.Error
	for _, doc := range rel.Data {
		dc := doctorCard(doc)
		dc.Link = ""
		d.Related = append(d.Related, dc)
	}
	if len(d.Related) == 0 && rel.Error == "" {
		d.RelatedEmpty = "No doctor is listed for this clinic yet."
	}
	s.renderDetail(w, r, c.Name, settled, d)
}

func (s *Server) handleCareService(w http.ResponseWriter, r *http.Request) {
	packages := api.NewResource[models.Package](s.api, api.Packages)
	bundles := fetcher.NewList(r.Context(), "service-packages", packages.All, s.fetchOpts...)
	defer bundles.Close()

	snap, settled, ok := detail(s, w, r, api.NewResource[models.CareService](s.api, api.CareServices), bundles)
	if !ok {
		return
	}
	svc := snap.Data
	draft := s.drafts.Get(requestcontext.VisitorID(r.Context()))

	d := detailData{
		Heading:        svc.Name,
		Subtitle:       money(svc.Price),
		Image:          svc.ImageURL,
		Body:           svc.Description,
		Back:           "/care-services",
		RelatedHeading: "Packages including this service",
		Facts:          []fact{{"Duration", fmt.Sprintf("%d min", svc.Duration)}},
		Booking:        draftForm(draft, "/care-services/"+strconv.FormatInt(svc.ID, 10)+"/draft", draft.ServiceID == svc.ID),
	}
	rel := bundles.Snapshot()
	d.RelatedError = rel.Error
	for _, p := range rel.Data {
		if !slices.Contains(p.ServiceIDs, svc.ID) {
			continue
		}
		d.Related = append(d.Related, packageCard(p))
		d.Booking.Packages = append(d.Booking.Packages, option{
			Value:    strconv.FormatInt(p.ID, 10),
			Label:    p.Name + " (" + money(p.Price) + ")",
			Selected: draft.ServiceID == svc.ID && draft.PackageID == p.ID,
		})
	}
	if len(d.Related) == 0 && rel.Error == "" {
		d.RelatedEmpty = "This service is not part of any package."
	}
	s.renderDetail(w, r, svc.Name, settled, d)
}

func (s *Server) handleCafeRoom(w http.ResponseWriter, r *http.Request) {
	pets := api.NewResource[models.CafePet](s.api, api.CafePets)
	residents := fetcher.NewList(r.Context(), "room-pets", pets.All, s.fetchOpts...)
	defer residents.Close()

	snap, settled, ok := detail(s, w, r, api.NewResource[models.CafeRoom](s.api, api.CafeRooms), residents)
	if !ok {
		return
	}
	room := snap.Data
	draft := s.drafts.Get(requestcontext.VisitorID(r.Context()))

	d := detailData{
		Heading:        room.Name,
		Subtitle:       fmt.Sprintf("Up to %d guests", room.Capacity),
		Image:          room.ImageURL,
		Body:           room.Description,
		Back:           "/cafe/rooms",
		RelatedHeading: "Pets you may meet",
		Facts:          []fact{{"Price", money(room.PricePerHour) + " / hour"}},
		Booking:        draftForm(draft, "/cafe/rooms/"+strconv.FormatInt(room.ID, 10)+"/draft", draft.RoomID == room.ID),
	}
	d.Booking.Rooms = true
	rel := residents.Snapshot()
	d.RelatedError = rel.Error
	for _, p := range rel.Data {
		d.Related = append(d.Related, petCard(p))
	}
	if len(d.Related) == 0 && rel.Error == "" {
		d.RelatedEmpty = emptyMessage("pet")
	}
	s.renderDetail(w, r, room.Name, settled, d)
}

func (s *Server) handlePetSitter(w http.ResponseWriter, r *http.Request) {
	snap, settled, ok := detail(s, w, r, api.NewResource[models.PetSitter](s.api, api.PetSitters))
	if !ok {
		return
	}
	p := snap.Data
	s.renderDetail(w, r, p.Name, settled, detailData{
		Heading:  p.Name,
		Subtitle: p.Expertise,
		Image:    p.ImageURL,
		Body:     p.Bio,
		Back:     "/pet-sitters",
		Facts:    []fact{{"Rate", money(p.HourlyRate) + " / hour"}, {"Rating", rating(p.Rating)}},
	})
}

// draftForm prefills the booking form from the visitor's draft when the draft
// is for the entity on the page.
func draftForm(d booking.Draft, action string, current bool) *bookingForm {
	f := &bookingForm{Action: action, Guests: 1}
	if !current {
		return f
	}
	f.Date, f.StartTime, f.EndTime = d.Date, d.Time.Start, d.Time.End
	f.PackageID = d.PackageID
	if d.Guests > 0 {
		f.Guests = d.Guests
	}
	return f
}
