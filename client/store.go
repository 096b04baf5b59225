package client

import (
	"context"
	"sync"
	"time"

	"github.com/nutriagenda/scheduling-portal/internal/notification"
	"github.com/nutriagenda/scheduling-portal/internal/pagination"
)

// Status of a store domain's last fetch.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Domain holds one slice of server state plus its fetch lifecycle. Page 0
// replaces the content, later pages append; Last mirrors the envelope so
// callers know when to stop paging.
type Domain[T any] struct {
	Content []T
	Status  Status
	Err     error
	Page    int
	Last    bool

	// generation fences out completions of superseded fetches. A fetch
	// started before a Reset or a newer fetch must not overwrite state.
	generation uint64
}

func (d *Domain[T]) reset() {
	*d = Domain[T]{generation: d.generation + 1}
}

// begin marks the domain loading and returns the generation token the
// completion must present.
func (d *Domain[T]) begin() uint64 {
	d.generation++
	d.Status = StatusLoading
	d.Err = nil
	return d.generation
}

func (d *Domain[T]) complete(gen uint64, page *pagination.Page[T], err error) {
	if gen != d.generation {
		return
	}
	if err != nil {
		d.Status = StatusFailed
		d.Err = err
		return
	}

	if page.Number == 0 {
		d.Content = page.Content
	} else {
		d.Content = append(d.Content, page.Content...)
	}
	d.Status = StatusSucceeded
	d.Page = page.Number
	d.Last = page.Last
}

// Store aggregates the client-side domains behind one mutex. All reads go
// through snapshot accessors; fetches route through the Gateway.
type Store struct {
	gateway *Gateway

	mu            sync.Mutex
	calendar      Domain[CalendarEvent]
	appointments  Domain[CalendarEvent]
	roster        Domain[RosterEntry]
	search        Domain[NutritionistResult]
	notifications Domain[notification.Notification]
	locations     Domain[Location]
}

func NewStore(gateway *Gateway) *Store {
	return &Store{gateway: gateway}
}

// Reset restores every domain to its initial state and bumps generations so
// in-flight fetches land dead. Called on sign-out.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendar.reset()
	s.appointments.reset()
	s.roster.reset()
	s.search.reset()
	s.notifications.reset()
	s.locations.reset()
}

// fetchPage runs the begin/complete cycle for one domain under the store
// lock, releasing it around the network call.
func fetchPage[T any](s *Store, d *Domain[T], fetch func() (*pagination.Page[T], error)) error {
	s.mu.Lock()
	gen := d.begin()
	s.mu.Unlock()

	page, err := fetch()

	s.mu.Lock()
	d.complete(gen, page, err)
	s.mu.Unlock()
	return err
}

func (s *Store) FetchAppointments(ctx context.Context, sess Session, page, size int) error {
	return fetchPage(s, &s.appointments, func() (*pagination.Page[CalendarEvent], error) {
		if sess.Role == "NUTRITIONIST" {
			return s.gateway.MyAppointments(ctx, sess, page, size)
		}
		return s.gateway.MyFutureAppointments(ctx, sess, page, size)
	})
}

func (s *Store) FetchRoster(ctx context.Context, sess Session, page, size int) error {
	return fetchPage(s, &s.roster, func() (*pagination.Page[RosterEntry], error) {
		return s.gateway.Roster(ctx, sess, page, size)
	})
}

func (s *Store) SearchNutritionists(ctx context.Context, sess Session, params NutritionistSearch, page, size int) error {
	return fetchPage(s, &s.search, func() (*pagination.Page[NutritionistResult], error) {
		return s.gateway.SearchNutritionists(ctx, sess, params, page, size)
	})
}

func (s *Store) FetchNotifications(ctx context.Context, sess Session, page, size int) error {
	return fetchPage(s, &s.notifications, func() (*pagination.Page[notification.Notification], error) {
		return s.gateway.Notifications(ctx, sess, page, size)
	})
}

// FetchCalendar loads the week view. The server returns a flat list, not a
// page, so it is wrapped as a single replacing page.
func (s *Store) FetchCalendar(ctx context.Context, sess Session, from, to time.Time) error {
	return fetchPage(s, &s.calendar, func() (*pagination.Page[CalendarEvent], error) {
		events, err := s.gateway.Calendar(ctx, sess, from, to)
		if err != nil {
			return nil, err
		}
		size := len(events)
		if size == 0 {
			size = 1
		}
		p := pagination.New(events, 0, size, int64(len(events)))
		return &p, nil
	})
}

// FetchLocations loads the nutritionist's service locations. The server
// returns a flat list, wrapped as a single replacing page.
func (s *Store) FetchLocations(ctx context.Context, sess Session) error {
	return fetchPage(s, &s.locations, func() (*pagination.Page[Location], error) {
		locations, err := s.gateway.Locations(ctx, sess)
		if err != nil {
			return nil, err
		}
		size := len(locations)
		if size == 0 {
			size = 1
		}
		p := pagination.New(locations, 0, size, int64(len(locations)))
		return &p, nil
	})
}

// PushNotification prepends a live notification received over the socket.
func (s *Store) PushNotification(n notification.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications.Content = append([]notification.Notification{n}, s.notifications.Content...)
}

// Snapshot accessors copy the domain so callers never race the mutex.

func (s *Store) Appointments() Domain[CalendarEvent] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.appointments)
}

func (s *Store) Calendar() Domain[CalendarEvent] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.calendar)
}

func (s *Store) Roster() Domain[RosterEntry] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.roster)
}

func (s *Store) NutritionistResults() Domain[NutritionistResult] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.search)
}

func (s *Store) Notifications() Domain[notification.Notification] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.notifications)
}

func (s *Store) Locations() Domain[Location] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.locations)
}

func snapshot[T any](d Domain[T]) Domain[T] {
	out := d
	out.Content = append([]T(nil), d.Content...)
	return out
}
