package mockapi

import (
	"slices"
	"strings"
	"sync"

	"pawhub/internal/models"
)

// collection is an in-memory table of T ordered by id.
type collection[T any] struct {
	mu     sync.RWMutex
	items  []T
	nextID int64
	id     func(*T) *int64
	match  func(T, map[string]string) bool
}

func newCollection[T any](id func(*T) *int64, match func(T, map[string]string) bool) *collection[T] {
	if match == nil {
		match = func(T, map[string]string) bool { return true }
	}
	return &collection[T]{nextID: 1, id: id, match: match}
}

func (c *collection[T]) insertLocked(v T) T {
	*c.id(&v) = c.nextID
	c.nextID++
	c.items = append(c.items, v)
	return v
}

func (c *collection[T]) seed(items ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range items {
		c.insertLocked(v)
	}
}

// page returns one page of the rows that match q's filters and keep.
func (c *collection[T]) page(q models.ListQuery, keep func(T) bool) models.PaginatedResult[T] {
	q = q.Normalize()
	rows := c.filter(q.Filters, keep)
	out := models.PaginatedResult[T]{
		Items:      []T{},
		TotalPages: models.TotalPagesFor(len(rows), q.PageSize),
	}
	start := (q.Page - 1) * q.PageSize
	if start >= len(rows) {
		return out
	}
	end := min(start+q.PageSize, len(rows))
	out.Items = append(out.Items, rows[start:end]...)
	return out
}

func (c *collection[T]) all(keep func(T) bool) []T {
	return c.filter(nil, keep)
}

func (c *collection[T]) filter(filters map[string]string, keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rows := make([]T, 0, len(c.items))
	for _, v := range c.items {
		if keep != nil && !keep(v) {
			continue
		}
		if len(filters) > 0 && !c.match(v, filters) {
			continue
		}
		rows = append(rows, v)
	}
	return rows
}

func (c *collection[T]) get(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

func (c *collection[T]) create(v T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertLocked(v)
}

// update replaces the row with id wholesale.
func (c *collection[T]) update(id int64, v T) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return v, false
	}
	*c.id(&v) = id
	c.items[i] = v
	return v, true
}

func (c *collection[T]) indexLocked(id int64) int {
	return slices.IndexFunc(c.items, func(v T) bool { return *c.id(&v) == id })
}

// account is a login credential bound to a user or admin row.
type account struct {
	kind      models.SessionKind
	profileID int64
	hash      string
}

type accounts struct {
	mu      sync.RWMutex
	byEmail map[models.SessionKind]map[string]account
}

func newAccounts() *accounts {
	return &accounts{byEmail: map[models.SessionKind]map[string]account{
		models.SessionAdmin: {},
		models.SessionUser:  {},
	}}
}

func (a *accounts) lookup(kind models.SessionKind, email string) (account, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	acc, ok := a.byEmail[kind][strings.ToLower(email)]
	return acc, ok
}

// add registers email under kind; false when it is already taken.
func (a *accounts) add(email string, acc account) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	email = strings.ToLower(email)
	if _, taken := a.byEmail[acc.kind][email]; taken {
		return false
	}
	a.byEmail[acc.kind][email] = acc
	return true
}
