// Package booking holds each visitor's in-progress booking between a listing
// page and the confirmation step. Drafts are plain selections: setters do not
// validate, and nothing is persisted.
package booking

import (
	"context"
	"sync"
	"time"

	"pawhub/internal/models"
	psync "pawhub/pkg/platform/sync"
)

// DefaultIdleTTL is how long an untouched draft is kept.
const DefaultIdleTTL = 2 * time.Hour

// TimeRange is a start and end time of day, as entered (HH:MM).
type TimeRange struct {
	Start string
	End   string
}

// Draft is one visitor's selections.
type Draft struct {
	Date      string
	Time      TimeRange
	RoomID    int64
	ServiceID int64
	PackageID int64
	Guests    int
}

// IsZero reports whether nothing has been selected.
func (d Draft) IsZero() bool {
	return d == Draft{}
}

// Kind returns what the draft books: a room wins over a service.
func (d Draft) Kind() models.AppointmentKind {
	switch {
	case d.RoomID != 0:
		return models.AppointmentCafeRoom
	case d.ServiceID != 0, d.PackageID != 0:
		return models.AppointmentCareService
	default:
		return ""
	}
}

// Appointment turns the draft into an appointment request for userID.
func (d Draft) Appointment(userID int64, notes string) models.Appointment {
	return models.Appointment{
		UserID:    userID,
		Kind:      d.Kind(),
		RoomID:    d.RoomID,
		ServiceID: d.ServiceID,
		PackageID: d.PackageID,
		Date:      d.Date,
		StartTime: d.Time.Start,
		EndTime:   d.Time.End,
		Guests:    d.Guests,
		Status:    "pending",
		Notes:     notes,
	}
}

type entry struct {
	draft    Draft
	lastUsed time.Time
}

// Drafts holds one Draft per visitor. Writes for a visitor are serialized.
type Drafts struct {
	locks   *psync.ShardedMutex
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
}

// Option configures Drafts.
type Option func(*Drafts)

// WithIdleTTL overrides how long an untouched draft is kept.
func WithIdleTTL(ttl time.Duration) Option {
	return func(d *Drafts) {
		if ttl > 0 {
			d.idleTTL = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Drafts) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDrafts creates an empty draft holder.
func NewDrafts(opts ...Option) *Drafts {
	d := &Drafts{
		locks:   psync.NewShardedMutex(),
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Get returns the visitor's draft; the zero Draft when there is none.
func (d *Drafts) Get(visitorID string) Draft {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if e, ok := d.entries[visitorID]; ok {
		return e.draft
	}
	return Draft{}
}

// Update applies fn to the visitor's draft and returns the result.
func (d *Drafts) Update(visitorID string, fn func(*Draft)) Draft {
	var out Draft
	d.locks.Do(visitorID, func() {
		draft := d.Get(visitorID)
		fn(&draft)
		d.mu.Lock()
		d.entries[visitorID] = &entry{draft: draft, lastUsed: d.now()}
		d.mu.Unlock()
		out = draft
	})
	return out
}

func (d *Drafts) SetDate(visitorID, date string) Draft {
	return d.Update(visitorID, func(dr *Draft) { dr.Date = date })
}

func (d *Drafts) SetTimeRange(visitorID string, tr TimeRange) Draft {
	return d.Update(visitorID, func(dr *Draft) { dr.Time = tr })
}

// SetRoom selects a cafe room. A room booking carries no service.
func (d *Drafts) SetRoom(visitorID string, roomID int64) Draft {
	return d.Update(visitorID, func(dr *Draft) {
		dr.RoomID = roomID
		dr.ServiceID = 0
		dr.PackageID = 0
	})
}

// SetService selects a care service, optionally within a package.
func (d *Drafts) SetService(visitorID string, serviceID, packageID int64) Draft {
	return d.Update(visitorID, func(dr *Draft) {
		dr.ServiceID = serviceID
		dr.PackageID = packageID
		dr.RoomID = 0
	})
}

func (d *Drafts) SetGuests(visitorID string, guests int) Draft {
	return d.Update(visitorID, func(dr *Draft) { dr.Guests = guests })
}

// Clear drops the visitor's draft.
func (d *Drafts) Clear(visitorID string) {
	d.locks.Do(visitorID, func() {
		d.mu.Lock()
		delete(d.entries, visitorID)
		d.mu.Unlock()
	})
}

// EvictIdle drops drafts untouched since now minus the idle TTL.
func (d *Drafts) EvictIdle(_ context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-d.idleTTL)

	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for k, e := range d.entries {
		if e.lastUsed.Before(cutoff) {
			delete(d.entries, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of drafts held.
func (d *Drafts) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}
