package api

import (
	"context"
	"net/http"
	"strings"

	"pawhub/internal/models"
	dErrors "pawhub/pkg/domain-errors"
)

// Remote resource collections.
const (
	Clinics      = "clinics"
	Doctors      = "doctors"
	CareServices = "care-services"
	CafeRooms    = "cafe-rooms"
	CafePets     = "cafe-pets"
	PetSitters   = "pet-sitters"
	Users        = "users"
	Admins       = "admins"
	Appointments = "appointments"
	Packages     = "packages"
)

// Resource is the CRUD surface of one collection, decoded as T.
type Resource[T any] struct {
	c    *Client
	name string
}

// NewResource binds collection name on c.
func NewResource[T any](c *Client, name string) Resource[T] {
	return Resource[T]{c: c, name: name}
}

// Name returns the collection name.
func (r Resource[T]) Name() string { return r.name }

// List fetches one page: GET /{name}?page=&pageSize=&filters.
func (r Resource[T]) List(ctx context.Context, q models.ListQuery) (models.PaginatedResult[T], error) {
	var out models.PaginatedResult[T]
	err := r.c.do(ctx, r.name, http.MethodGet, "/"+r.name, q.Values(), nil, &out)
	if out.Items == nil {
		out.Items = []T{}
	}
	return out, err
}

// All fetches the whole collection: GET /{name}/all.
func (r Resource[T]) All(ctx context.Context) ([]T, error) {
	out := []T{}
	err := r.c.do(ctx, r.name, http.MethodGet, "/"+r.name+"/all", nil, nil, &out)
	return out, err
}

// Get fetches one entity: GET /{name}/{id}.
func (r Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	if err := validID(id); err != nil {
		return out, err
	}
	err := r.c.do(ctx, r.name, http.MethodGet, "/"+r.name+"/"+id, nil, nil, &out)
	return out, err
}

// Create submits body: POST /{name}.
func (r Resource[T]) Create(ctx context.Context, body any) (T, error) {
	var out T
	err := r.c.do(ctx, r.name, http.MethodPost, "/"+r.name, nil, body, &out)
	return out, err
}

// Update replaces one entity: PUT /{name}/{id}.
func (r Resource[T]) Update(ctx context.Context, id string, body any) (T, error) {
	var out T
	if err := validID(id); err != nil {
		return out, err
	}
	err := r.c.do(ctx, r.name, http.MethodPut, "/"+r.name+"/"+id, nil, body, &out)
	return out, err
}

func validID(id string) error {
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, "/?#") {
		return dErrors.New(dErrors.CodeNotFound, "")
	}
	return nil
}
