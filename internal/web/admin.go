package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pawhub/internal/api"
	"pawhub/internal/fetcher"
	"pawhub/internal/models"
	"pawhub/internal/search"
	"pawhub/internal/session"
	dErrors "pawhub/pkg/domain-errors"
	"pawhub/pkg/requestcontext"
)

// Admin form input types.
const (
	inputText     = "text"
	inputTextarea = "textarea"
	inputNumber   = "number"
	inputEmail    = "email"
	inputURL      = "url"
	inputCheckbox = "checkbox"
	inputSelect   = "select"
	inputPassword = "password"
	// inputList is a comma separated list, decoded by adminResource.extra.
	inputList = "list"
)

type adminField struct {
	Name     string
	Label    string
	Type     string
	Options  []string
	Required bool
	// CreateOnly fields are shown on the new form and locked afterwards.
	CreateOnly bool
}

type adminRow struct {
	Cells []string
	Edit  string
}

type formField struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Checked  bool
	Options  []option
	Required bool
	ReadOnly bool
	Error    string
}

type adminFormData struct {
	Heading string
	Action  string
	Back    string
	Submit  string
	Fields  []formField
	Error   string
}

// adminResource describes one resource managed from the back office.
type adminResource[T any] struct {
	name     string
	title    string
	singular string
	fields   []adminField
	columns  []string
	row      func(T) []string
	id       func(T) int64
	search   []search.Field[T]
	// creatable is false for resources only customers create.
	creatable bool
	// extra decodes what the form library cannot, such as list inputs.
	extra func(vals url.Values, v *T) FieldErrors
	// password forwards the password input on create.
	password bool
}

func (s *Server) registerAdmin(r chi.Router) {
	r.Get("/admin", s.handleAdminDashboard)
	r.Get("/admin/profile", s.handleAdminProfile)

	mountAdmin(r, s, adminResource[models.Clinic]{
		name: api.Clinics, title: "Clinics", singular: "clinic", creatable: true,
		fields: []adminField{
			{Name: "name", Label: "Name", Type: inputText, Required: true},
			{Name: "address", Label: "Address", Type: inputText},
			{Name: "phone", Label: "Phone", Type: inputText},
			{Name: "description", Label: "Description", Type: inputTextarea},
			{Name: "imageUrl", Label: "Image URL", Type: inputURL},
			{Name: "rating", Label: "Rating", Type: inputNumber},
		},
		columns: []string{"Name", "Address", "Rating"},
		row:     func(c models.Clinic) []string { return []string{c.Name, c.Address, rating(c.Rating)} },
		id:      func(c models.Clinic) int64 { return c.ID },
		search:  search.ClinicFields,
	})
	mountAdmin(r, s, adminResource[models.Doctor]{
		name: api.Doctors, title: "Doctors", singular: "doctor", creatable: true,
		fields: []adminField{
			{Name: "name", Label: "Name", Type: inputText, Required: true},
			{Name: "clinicId", Label: "Clinic ID", Type: inputNumber},
			{Name: "specialty", Label: "Specialty", Type: inputText},
			{Name: "expertise", Label: "Expertise", Type: inputText},
			{Name: "experience", Label: "Years of experience", Type: inputNumber},
			{Name: "imageUrl", Label: "Image URL", Type: inputURL},
		},
		columns: []string{"Name", "Specialty", "Clinic"},
		row: func(d models.Doctor) []string {
			return []string{d.Name, d.Specialty, strconv.FormatInt(d.ClinicID, 10)}
		},
		id:     func(d models.Doctor) int64 { return d.ID },
		search: search.DoctorFields,
	})
	mountAdmin(r, s, adminResource[models.CareService]{
		name: api.CareServices, title: "Care services", singular: "service", creatable: true,
		fields: []adminField{
			{Name: "name", Label: "Name", Type: inputText, Required: true},
			{Name: "description", Label: "Description", Type: inputTextarea},
			{Name: "price", Label: "Price", Type: inputNumber},
			{Name: "duration", Label: "Duration (min)", Type: inputNumber},
			{Name: "imageUrl", Label: "Image URL", Type: inputURL},
		},
		columns: []string{"Name", "Price", "Duration"},
		row: func(c models.CareService) []string {
			return []string{c.Name, money(c.Price), fmt.Sprintf("%d min", c.Duration)}
		},
		id:     func(c models.CareService) int64 { return c.ID },
		search: search.CareServiceFields,
	})
	mountAdmin(r, s, adminResource[models.CafeRoom]{
		name: api.CafeRooms, title: "Cafe rooms", singular: "room", creatable: true,
		fields: []adminField{
			{Name: "name", Label: "Name", Type: inputText, Required: true},
			{Name: "description", Label: "Description", Type: inputTextarea},
			{Name: "capacity", Label: "Capacity", Type: inputNumber},
			{Name: "pricePerHour", Label: "Price per hour", Type: inputNumber},
			{Name: "imageUrl", Label: "Image URL", Type: inputURL},
		},
		columns: []string{"Name", "Capacity", "Price / hour"},
		row: func(c models.CafeRoom) []string {
			return []string{c.Name, strconv.Itoa(c.Capacity), money(c.PricePerHour)}
		},
		id:     func(c models.CafeRoom) int64 { return c.ID },
		search: search.CafeRoomFields,
	})
	mountAdmin(r, s, adminResource[models.CafePet]{
		name: api.CafePets, title: "Cafe pets", singular: "pet", creatable: true,
		fields: []adminField{
			{Name: "name", Label: "Name", Type: inputText, Required: true},
			{Name: "species", Label: "Species", Type: inputText},
			{Name: "breed", Label: "Breed", Type: inputText},
			{Name: "age", Label: "Age", Type: inputNumber},
			{Name: "description", Label: "Description", Type: inputTextarea},
			{Name: "imageUrl", Label: "Image URL", Type: inputURL},
		},
		columns: []string{"Name", "Species", "Breed"},
		row:     func(p models.CafePet) []string { return []string{p.Name, p.Species, p.Breed} },
		id:      func(p models.CafePet) int64 { return p.ID },
		search:  search.CafePetFields,
	})
	mountAdmin(r, s, adminResource[models.PetSitter]{
		name: api.PetSitters, title: "Pet sitters", singular: "pet sitter", creatable: true,
		fields: []adminField{
			{Name: "name", Label: "Name", Type: inputText, Required: true},
			{Name: "expertise", Label: "Expertise", Type: inputText},
			{Name: "bio", Label: "Bio", Type: inputTextarea},
			{Name: "hourlyRate", Label: "Hourly rate", Type: inputNumber},
			{Name: "rating", Label: "Rating", Type: inputNumber},
			{Name: "imageUrl", Label: "Image URL", Type: inputURL},
		},
		columns: []string{"Name", "Expertise", "Rate"},
		row: func(p models.PetSitter) []string {
			return []string{p.Name, p.Expertise, money(p.HourlyRate)}
		},
		id:     func(p models.PetSitter) int64 { return p.ID },
		search: search.PetSitterFields,
	})
	mountAdmin(r, s, adminResource[models.Package]{
		name: api.Packages, title: "Packages", singular: "package", creatable: true,
		fields: []adminField{
			{Name: "name", Label: "Name", Type: inputText, Required: true},
			{Name: "description", Label: "Description", Type: inputTextarea},
			{Name: "price", Label: "Price", Type: inputNumber},
			{Name: "serviceIds", Label: "Service IDs (comma separated)", Type: inputList},
			{Name: "highlights", Label: "Highlights (comma separated)", Type: inputList},
		},
		columns: []string{"Name", "Price", "Services"},
		row: func(p models.Package) []string {
			return []string{p.Name, money(p.Price), strconv.Itoa(len(p.ServiceIDs))}
		},
		id:     func(p models.Package) int64 { return p.ID },
		search: search.PackageFields,
		extra:  decodePackageLists,
	})
	mountAdmin(r, s, adminResource[models.User]{
		name: api.Users, title: "Users", singular: "user", creatable: true, password: true,
		fields: []adminField{
			{Name: "name", Label: "Name", Type: inputText, Required: true},
			{Name: "email", Label: "Email", Type: inputEmail, Required: true, CreateOnly: true},
			{Name: "phone", Label: "Phone", Type: inputText},
			{Name: "role", Label: "Role", Type: inputSelect, Options: []string{"user", "vip"}},
			{Name: "isActive", Label: "Active", Type: inputCheckbox},
			{Name: "password", Label: "Password", Type: inputPassword, CreateOnly: true},
		},
		columns: []string{"Name", "Email", "Role", "Active"},
		row: func(u models.User) []string {
			return []string{u.Name, u.Email, u.Role, yesNo(u.IsActive)}
		},
		id:     func(u models.User) int64 { return u.ID },
		search: search.UserFields,
	})
	mountAdmin(r, s, adminResource[models.Admin]{
		name: api.Admins, title: "Admins", singular: "admin", creatable: true, password: true,
		fields: []adminField{
			{Name: "name", Label: "Name", Type: inputText, Required: true},
			{Name: "email", Label: "Email", Type: inputEmail, Required: true, CreateOnly: true},
			{Name: "role", Label: "Role", Type: inputSelect, Options: []string{"admin", "superadmin"}},
			{Name: "isActive", Label: "Active", Type: inputCheckbox},
			{Name: "password", Label: "Password", Type: inputPassword, CreateOnly: true},
		},
		columns: []string{"Name", "Email", "Role", "Active"},
		row: func(a models.Admin) []string {
			return []string{a.Name, a.Email, a.Role, yesNo(a.IsActive)}
		},
		id:     func(a models.Admin) int64 { return a.ID },
		search: search.AdminFields,
	})
	mountAdmin(r, s, adminResource[models.Appointment]{
		name: api.Appointments, title: "Appointments", singular: "appointment",
		fields: []adminField{
			{Name: "date", Label: "Date (YYYY-MM-DD)", Type: inputText, Required: true},
			{Name: "startTime", Label: "Start (HH:MM)", Type: inputText, Required: true},
			{Name: "endTime", Label: "End (HH:MM)", Type: inputText},
			{Name: "guests", Label: "Guests", Type: inputNumber},
			{Name: "status", Label: "Status", Type: inputSelect, Options: []string{"pending", "confirmed", "completed", "cancelled"}},
			{Name: "notes", Label: "Notes", Type: inputTextarea},
		},
		columns: []string{"Kind", "User", "Date", "Time", "Status"},
		row: func(a models.Appointment) []string {
			return []string{string(a.Kind), strconv.FormatInt(a.UserID, 10), a.Date, a.StartTime, a.Status}
		},
		id:     func(a models.Appointment) int64 { return a.ID },
		search: search.AppointmentFields,
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func adminPath(name string, parts ...string) string {
	return "/admin/" + name + strings.Join(append([]string{""}, parts...), "/")
}

func mountAdmin[T any](r chi.Router, s *Server, def adminResource[T]) {
	r.Get(adminPath(def.name), func(w http.ResponseWriter, r *http.Request) {
		adminList(s, w, r, def)
	})
	r.Get(adminPath(def.name, "{id}", "edit"), s.requireID(func(w http.ResponseWriter, r *http.Request) {
		adminEdit(s, w, r, def)
	}))
	r.Post(adminPath(def.name, "{id}"), s.requireID(func(w http.ResponseWriter, r *http.Request) {
		adminSave(s, w, r, def)
	}))
	if def.creatable {
		r.Get(adminPath(def.name, "new"), func(w http.ResponseWriter, r *http.Request) {
			var zero T
			s.renderAdminForm(w, r, http.StatusOK, adminNewForm(def, formValues(zero), nil, ""))
		})
		r.Post(adminPath(def.name), func(w http.ResponseWriter, r *http.Request) {
			adminCreate(s, w, r, def)
		})
	}
}

func adminList[T any](s *Server, w http.ResponseWriter, r *http.Request, def adminResource[T]) {
	ctx := r.Context()
	res := api.NewResource[T](s.clientFor(ctx), def.name)
	snap, settled := loadList(s, r, listSource[T]{
		key:    "admin:" + def.name,
		fetch:  res.List,
		fields: def.search,
	})

	path := adminPath(def.name)
	query := cloneQuery(r.URL.Query())
	query.Del("saved")
	data := listData{
		Heading: def.title,
		Path:    path,
		Term:    snap.Term,
		Hidden:  hiddenFilters(query, nil, snap.CurrentPage),
		Loading: !settled,
		Error:   snap.Error,
		Pages:   pageLinks(path, query, snap.CurrentPage, snap.TotalPages),
		Columns: def.columns,
	}
	if def.creatable {
		data.NewHref = adminPath(def.name, "new")
	}
	for _, item := range snap.Visible {
		data.Rows = append(data.Rows, adminRow{
			Cells: def.row(item),
			Edit:  adminPath(def.name, strconv.FormatInt(def.id(item), 10), "edit"),
		})
	}
	if snap.Empty && snap.Error == "" {
		data.Empty = emptyMessage(def.singular)
	}
	p := page{Title: def.title, Refresh: !settled, Data: data}
	if r.URL.Query().Get("saved") != "" {
		p.Flash = "Saved."
	}
	s.render(w, r, http.StatusOK, "admin_list", p)
}

func adminEdit[T any](s *Server, w http.ResponseWriter, r *http.Request, def adminResource[T]) {
	ctx := r.Context()
	raw := chi.URLParam(r, "id")
	res := api.NewResource[T](s.clientFor(ctx), def.name)
	item := fetcher.NewItem(ctx, "admin:"+def.name, res.Get, raw, s.fetchOpts...)
	defer item.Close()

	if !s.settleAll(ctx, item) {
		s.renderError(w, r, dErrors.New(dErrors.CodeTimeout, ""))
		return
	}
	snap := item.Snapshot()
	if snap.Err != nil {
		s.renderError(w, r, snap.Err)
		return
	}
	s.renderAdminForm(w, r, http.StatusOK, adminEditForm(def, raw, formValues(snap.Data), nil, ""))
}

func adminCreate[T any](s *Server, w http.ResponseWriter, r *http.Request, def adminResource[T]) {
	ctx := r.Context()
	var v T
	errs, err := decodeAdmin(r, &v, def, true)
	if err != nil {
		s.renderAdminForm(w, r, http.StatusBadRequest, adminNewForm(def, postedValues(r), nil, dErrors.Message(err, dErrors.DefaultMessage)))
		return
	}
	if errs != nil {
		s.renderAdminForm(w, r, http.StatusBadRequest, adminNewForm(def, postedValues(r), errs, ""))
		return
	}

	var body any = v
	if def.password {
		if body, err = withPassword(v, r.PostForm.Get("password")); err != nil {
			s.renderError(w, r, err)
			return
		}
	}
	created, err := api.NewResource[T](s.clientFor(ctx), def.name).Create(ctx, body)
	if err != nil {
		if rejected(err) {
			s.renderAdminForm(w, r, http.StatusBadRequest, adminNewForm(def, postedValues(r), nil, dErrors.Message(err, dErrors.DefaultMessage)))
			return
		}
		s.renderError(w, r, err)
		return
	}
	s.adminSaved(w, r, def.name, "created", def.id(created))
}

func adminSave[T any](s *Server, w http.ResponseWriter, r *http.Request, def adminResource[T]) {
	ctx := r.Context()
	raw := chi.URLParam(r, "id")
	res := api.NewResource[T](s.clientFor(ctx), def.name)

	v, err := res.Get(ctx, raw)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	errs, err := decodeAdmin(r, &v, def, false)
	if err != nil {
		s.renderAdminForm(w, r, http.StatusBadRequest, adminEditForm(def, raw, postedValues(r), nil, dErrors.Message(err, dErrors.DefaultMessage)))
		return
	}
	if errs != nil {
		s.renderAdminForm(w, r, http.StatusBadRequest, adminEditForm(def, raw, postedValues(r), errs, ""))
		return
	}
	updated, err := res.Update(ctx, raw, v)
	if err != nil {
		if rejected(err) {
			s.renderAdminForm(w, r, http.StatusBadRequest, adminEditForm(def, raw, postedValues(r), nil, dErrors.Message(err, dErrors.DefaultMessage)))
			return
		}
		s.renderError(w, r, err)
		return
	}
	s.adminSaved(w, r, def.name, "updated", def.id(updated))
}

// rejected reports errors the admin can fix by editing the form.
func rejected(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeValidation) ||
		dErrors.HasCode(err, dErrors.CodeConflict) ||
		dErrors.HasCode(err, dErrors.CodeBadRequest)
}

func (s *Server) adminSaved(w http.ResponseWriter, r *http.Request, name, action string, id int64) {
	ctx := r.Context()
	s.forgetViews(ctx)
	sess, _ := session.FromContext(ctx)
	s.logger.InfoContext(ctx, "admin "+action+" "+name,
		"id", id,
		"admin_id", sess.Profile.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	http.Redirect(w, r, adminPath(name)+"?saved=1", http.StatusSeeOther)
}

// decodeAdmin folds the posted form into v. Blank text inputs clear the
// field, blank numbers become zero and an absent checkbox is false, so an
// edit can undo any value. Create-only inputs are ignored on edit.
func decodeAdmin[T any](r *http.Request, v *T, def adminResource[T], creating bool) (FieldErrors, error) {
	if err := r.ParseForm(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "The form could not be read.")
	}
	vals := url.Values{}
	for _, f := range def.fields {
		if f.Type == inputPassword || f.Type == inputList || (f.CreateOnly && !creating) {
			continue
		}
		raw := strings.TrimSpace(r.PostForm.Get(f.Name))
		switch f.Type {
		case inputCheckbox:
			vals.Set(f.Name, strconv.FormatBool(raw != ""))
		case inputNumber:
			if raw == "" {
				raw = "0"
			}
			vals.Set(f.Name, raw)
		default:
			vals.Set(f.Name, raw)
		}
	}
	if err := newFormDecoder().DecodeValues(v, vals); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "Please enter numbers in the numeric fields.")
	}

	errs := FieldErrors{}
	if def.extra != nil {
		for k, msg := range def.extra(r.PostForm, v) {
			errs[k] = msg
		}
	}
	for k, msg := range validateForm(v) {
		errs[k] = msg
	}
	if def.password && creating {
		if pw := r.PostForm.Get("password"); pw != "" && len(pw) < 8 {
			errs["password"] = "Must be at least 8 characters."
		}
	}
	if len(errs) == 0 {
		return nil, nil
	}
	return errs, nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func decodePackageLists(vals url.Values, p *models.Package) FieldErrors {
	p.Highlights = splitList(vals.Get("highlights"))
	p.ServiceIDs = []int64{}
	for _, part := range splitList(vals.Get("serviceIds")) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return FieldErrors{"serviceIds": "Please enter service IDs as numbers separated by commas."}
		}
		p.ServiceIDs = append(p.ServiceIDs, id)
	}
	return nil
}

// withPassword adds the password input to the JSON body of v.
func withPassword(v any, password string) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "")
	}
	body := map[string]any{}
	if err := json.Unmarshal(b, &body); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "")
	}
	if password != "" {
		body["password"] = password
	}
	return body, nil
}

// formValues flattens v into input values keyed by JSON name.
func formValues(v any) map[string]string {
	out := map[string]string{}
	b, err := json.Marshal(v)
	if err != nil {
		return out
	}
	raw := map[string]any{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return out
	}
	for k, val := range raw {
		out[k] = formatValue(val)
	}
	return out
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, formatValue(e))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// postedValues echoes a rejected form back into its inputs.
func postedValues(r *http.Request) map[string]string {
	out := map[string]string{}
	for k := range r.PostForm {
		if k == "password" {
			continue
		}
		out[k] = r.PostForm.Get(k)
	}
	if len(out) > 0 {
		out["isActive"] = strconv.FormatBool(r.PostForm.Get("isActive") != "")
	}
	return out
}

func buildFields(fields []adminField, values map[string]string, errs FieldErrors, creating bool) []formField {
	out := make([]formField, 0, len(fields))
	for _, f := range fields {
		if f.Type == inputPassword && !creating {
			continue
		}
		ff := formField{
			Name:     f.Name,
			Label:    f.Label,
			Type:     f.Type,
			Value:    values[f.Name],
			Required: f.Required,
			ReadOnly: f.CreateOnly && !creating,
			Error:    errs[f.Name],
		}
		if f.Type == inputCheckbox {
			ff.Checked = ff.Value == "true"
		}
		for _, o := range f.Options {
			ff.Options = append(ff.Options, option{Value: o, Label: o, Selected: o == ff.Value})
		}
		out = append(out, ff)
	}
	return out
}

func adminNewForm[T any](def adminResource[T], values map[string]string, errs FieldErrors, msg string) adminFormData {
	return adminFormData{
		Heading: "New " + def.singular,
		Action:  adminPath(def.name),
		Back:    adminPath(def.name),
		Submit:  "Create",
		Fields:  buildFields(def.fields, values, errs, true),
		Error:   firstNonEmpty(msg, errs[""]),
	}
}

func adminEditForm[T any](def adminResource[T], id string, values map[string]string, errs FieldErrors, msg string) adminFormData {
	return adminFormData{
		Heading: "Edit " + def.singular + " #" + id,
		Action:  adminPath(def.name, id),
		Back:    adminPath(def.name),
		Submit:  "Save",
		Fields:  buildFields(def.fields, values, errs, false),
		Error:   firstNonEmpty(msg, errs[""]),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *Server) renderAdminForm(w http.ResponseWriter, r *http.Request, status int, d adminFormData) {
	s.render(w, r, status, "admin_form", page{Title: d.Heading, Data: d})
}

// dashboardTile counts one resource by asking for pages of one entity: the
// page count is the entity count.
type dashboardTile struct {
	fetcher *fetcher.Paginated[json.RawMessage]
	card    card
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	client := s.clientFor(ctx)

	names := []struct{ res, title string }{
		{api.Clinics, "Clinics"}, {api.Doctors, "Doctors"}, {api.CareServices, "Care services"},
		{api.Packages, "Packages"}, {api.CafeRooms, "Cafe rooms"}, {api.CafePets, "Cafe pets"},
		{api.PetSitters, "Pet sitters"}, {api.Appointments, "Appointments"}, {api.Users, "Users"},
		{api.Admins, "Admins"},
	}
	tiles := make([]dashboardTile, 0, len(names))
	waiters := make([]waiter, 0, len(names))
	for _, n := range names {
		res := api.NewResource[json.RawMessage](client, n.res)
		p := fetcher.NewPaginated(ctx, "dashboard:"+n.res, res.List, 1, s.fetchOpts...)
		defer p.Close()
		tiles = append(tiles, dashboardTile{fetcher: p, card: card{Title: n.title, Link: adminPath(n.res)}})
		waiters = append(waiters, p)
	}
	settled := s.settleAll(ctx, waiters...)

	cards := make([]card, 0, len(tiles))
	for _, t := range tiles {
		snap := t.fetcher.Snapshot()
		c := t.card
		switch {
		case snap.Error != "":
			c.Meta = snap.Error
		case snap.Loaded && len(snap.Items) == 0:
			c.Meta = "0 entries"
		case snap.Loaded:
			c.Meta = strconv.Itoa(snap.TotalPages) + " entries"
		default:
			c.Meta = "Loading…"
		}
		cards = append(cards, c)
	}
	s.render(w, r, http.StatusOK, "admin_dashboard", page{Title: "Admin", Refresh: !settled, Data: cards})
}

func (s *Server) handleAdminProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	admins := api.NewResource[models.Admin](s.clientFor(ctx), api.Admins)
	item := fetcher.NewItem(ctx, "admin-profile", admins.Get, strconv.FormatInt(sess.Profile.ID, 10), s.fetchOpts...)
	defer item.Close()
	settled := s.settleAll(ctx, item)

	p := sess.Profile
	facts := []fact{{"Name", p.Name}, {"Email", p.Email}, {"Role", p.Role}}
	if snap := item.Snapshot(); snap.HasData {
		a := snap.Data
		facts = []fact{{"Name", a.Name}, {"Email", a.Email}, {"Role", a.Role}, {"Active", yesNo(a.IsActive)}}
		if !a.CreatedAt.IsZero() {
			facts = append(facts, fact{"Member since", a.CreatedAt.Format("2 Jan 2006")})
		}
	}
	s.render(w, r, http.StatusOK, "admin_profile", page{Title: "My profile", Refresh: !settled, Data: facts})
}
