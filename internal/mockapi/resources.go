package mockapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pawhub/internal/models"
	dErrors "pawhub/pkg/domain-errors"
	"pawhub/pkg/platform/httputil"
)

const maxBodyBytes = 1 << 20

// access is the least privilege an operation needs.
type access int

const (
	public access = iota
	authenticated
	adminOnly
)

// resource describes one REST collection.
type resource[T any] struct {
	name        string
	col         *collection[T]
	read, write access
	// self lets a caller that lacks the privilege act on a row it owns.
	self func(*Claims, T) bool
	// scope hides rows from callers it rejects.
	scope func(*Claims, T) bool
	// prepare runs after validation; existing is nil on create.
	prepare func(c *Claims, raw []byte, v *T, existing *T) error
	// afterCreate runs once the row has its id.
	afterCreate func(raw []byte, v T) error
}

func (res resource[T]) visible(c *Claims) func(T) bool {
	if res.scope == nil {
		return nil
	}
	return func(v T) bool { return c != nil && res.scope(c, v) }
}

func mount[T any](r chi.Router, s *Server, res resource[T]) {
	base := "/" + res.name
	r.Get(base, func(w http.ResponseWriter, r *http.Request) {
		c, err := s.authorize(r, res.read)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		q := models.ParseListQuery(r.URL.Query(), models.DefaultPageSize)
		httputil.WriteJSON(w, http.StatusOK, res.col.page(q, res.visible(c)))
	})
	r.Get(base+"/all", func(w http.ResponseWriter, r *http.Request) {
		c, err := s.authorize(r, res.read)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, res.col.all(res.visible(c)))
	})
	r.Get(base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		row, _, err := loadRow(s, r, res, res.read)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, row)
	})
	r.Post(base, func(w http.ResponseWriter, r *http.Request) {
		c, err := s.authorize(r, res.write)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		raw, v, err := decode[T](r)
		if err == nil && res.prepare != nil {
			err = res.prepare(c, raw, &v, nil)
		}
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		created := res.col.create(v)
		if res.afterCreate != nil {
			if err := res.afterCreate(raw, created); err != nil {
				httputil.WriteError(w, err)
				return
			}
		}
		s.logger.InfoContext(r.Context(), "resource created", "resource", res.name, "id", *res.col.id(&created))
		httputil.WriteJSON(w, http.StatusCreated, created)
	})
	r.Put(base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		existing, c, err := loadRow(s, r, res, res.write)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		raw, v, err := decode[T](r)
		if err == nil && res.prepare != nil {
			err = res.prepare(c, raw, &v, &existing)
		}
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		updated, ok := res.col.update(*res.col.id(&existing), v)
		if !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, notFoundMessage(res.name)))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, updated)
	})
}

// loadRow loads the {id} row and checks need, letting owners through.
func loadRow[T any](s *Server, r *http.Request, res resource[T], need access) (T, *Claims, error) {
	var zero T
	c, authErr := s.authorize(r, need)
	if authErr != nil && c == nil {
		return zero, nil, authErr
	}
	notFound := dErrors.New(dErrors.CodeNotFound, notFoundMessage(res.name))
	id, ok := parseID(r)
	if !ok {
		return zero, c, notFound
	}
	row, ok := res.col.get(id)
	if !ok {
		return zero, c, notFound
	}
	if authErr != nil && (res.self == nil || !res.self(c, row)) {
		return zero, c, authErr
	}
	if keep := res.visible(c); keep != nil && !keep(row) {
		return zero, c, notFound
	}
	return row, c, nil
}

func notFoundMessage(name string) string {
	return strings.TrimSuffix(strings.ReplaceAll(name, "-", " "), "s") + " not found"
}

func decode[T any](r *http.Request) ([]byte, T, error) {
	var v T
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, v, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, v, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	if err := httputil.PrepareRequest(&v); err != nil {
		return nil, v, err
	}
	return raw, v, nil
}

// authorize resolves the caller and checks need. Claims are returned even
// when the check fails so callers can apply ownership rules.
func (s *Server) authorize(r *http.Request, need access) (*Claims, error) {
	raw, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if need == public {
			return nil, nil
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Authentication required")
	}
	c, err := s.tokens.Validate(raw)
	if err != nil {
		if need == public {
			return nil, nil
		}
		return nil, err
	}
	if need == adminOnly && c.Kind != models.SessionAdmin {
		return c, dErrors.New(dErrors.CodeForbidden, "Administrator access required")
	}
	return c, nil
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
