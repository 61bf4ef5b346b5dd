package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"

	"pawhub/internal/models"
	dErrors "pawhub/pkg/domain-errors"
	"pawhub/pkg/requestcontext"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// viewer is who the layout greets.
type viewer struct {
	User  *models.Profile
	Admin *models.Profile
}

// page is the data every template receives.
type page struct {
	Title  string
	Viewer viewer
	Path   string
	Flash  string
	// Refresh asks the browser to reload while fetches are still running.
	Refresh bool
	Data    any
}

type card struct {
	Title    string
	Subtitle string
	Body     string
	Meta     string
	Image    string
	Link     string
}

type fact struct {
	Label string
	Value string
}

type pageLink struct {
	N       int
	Href    string
	Current bool
}

type errorData struct {
	Status  int
	Heading string
	Message string
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer(images imagePolicy) (*renderer, error) {
	funcs := template.FuncMap{
		"image": images.URL,
		"money": money,
		"join":  strings.Join,
	}
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	rd := &renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		rd.pages[strings.TrimSuffix(base, ".html")] = t
	}
	return rd, nil
}

// render executes the named page into a buffer first so a template failure
// never leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	t, ok := s.tmpl.pages[name]
	if !ok {
		s.logger.ErrorContext(r.Context(), "unknown template", "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	p.Viewer = s.viewer(r)
	p.Path = r.URL.Path
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		s.logger.ErrorContext(r.Context(), "template execution failed",
			"template", name,
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError renders the page for a failed fetch: 404 for not found, 400 for
// rejected input, 502 for everything the API failed at.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		s.notFound(w, r)
	case dErrors.HasCode(err, dErrors.CodeValidation), dErrors.HasCode(err, dErrors.CodeBadRequest):
		s.render(w, r, http.StatusBadRequest, "error", page{Title: "Bad request", Data: errorData{
			Status: http.StatusBadRequest, Heading: "Bad request", Message: dErrors.Message(err, "The request could not be processed."),
		}})
	case dErrors.HasCode(err, dErrors.CodeUnauthorized), dErrors.HasCode(err, dErrors.CodeForbidden):
		s.render(w, r, http.StatusForbidden, "error", page{Title: "Access denied", Data: errorData{
			Status: http.StatusForbidden, Heading: "Access denied", Message: dErrors.Message(err, "You are not allowed to see this page."),
		}})
	default:
		s.render(w, r, http.StatusBadGateway, "error", page{Title: "Something went wrong", Data: errorData{
			Status: http.StatusBadGateway, Heading: "Something went wrong", Message: dErrors.Message(err, dErrors.DefaultMessage),
		}})
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "error", page{Title: "Not found", Data: errorData{
		Status: http.StatusNotFound, Heading: "Page not found", Message: "We could not find what you were looking for.",
	}})
}

func money(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 && s[i-1] != '-' {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String() + " ₫"
}

// pageLinks builds numbered links for a paginated list at basePath,
// preserving the other query parameters.
func pageLinks(basePath string, query url.Values, current, total int) []pageLink {
	if total <= 1 {
		return nil
	}
	links := make([]pageLink, 0, total)
	for n := 1; n <= total; n++ {
		q := cloneQuery(query)
		q.Set("page", strconv.Itoa(n))
		links = append(links, pageLink{N: n, Href: basePath + "?" + q.Encode(), Current: n == current})
	}
	return links
}

func cloneQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = slices.Clone(v)
	}
	return out
}
