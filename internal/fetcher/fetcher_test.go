package fetcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"pawhub/internal/models"
	dErrors "pawhub/pkg/domain-errors"
)

const waitFor = time.Second

type result[V any] struct {
	v   V
	err error
}

// call is one request captured by a stub; the test decides when and how it resolves.
type call[K, V any] struct {
	key K
	ctx context.Context
	res chan result[V]
}

func (c *call[K, V]) resolve(v V)    { c.res <- result[V]{v: v} }
func (c *call[K, V]) fail(err error) { c.res <- result[V]{err: err} }
func (c *call[K, V]) aborted() bool  { return c.ctx.Err() != nil }

// stub blocks every request until the test resolves it. It ignores
// cancellation so that superseded requests still resolve late.
type stub[K, V any] struct {
	calls chan *call[K, V]
	done  chan struct{}
}

func newStub[K, V any](t *testing.T) *stub[K, V] {
	s := &stub[K, V]{calls: make(chan *call[K, V], 16), done: make(chan struct{})}
	t.Cleanup(func() { close(s.done) })
	return s
}

func (s *stub[K, V]) fetch(ctx context.Context, key K) (V, error) {
	c := &call[K, V]{key: key, ctx: ctx, res: make(chan result[V], 1)}
	s.calls <- c
	select {
	case r := <-c.res:
		return r.v, r.err
	case <-s.done:
		var zero V
		return zero, context.Canceled
	}
}

func (s *stub[K, V]) next(t *testing.T) *call[K, V] {
	t.Helper()
	select {
	case c := <-s.calls:
		return c
	case <-time.After(waitFor):
		t.Fatal("expected a request to be issued")
		return nil
	}
}

func (s *stub[K, V]) none(t *testing.T) {
	t.Helper()
	select {
	case c := <-s.calls:
		t.Fatalf("unexpected request for %v", c.key)
	case <-time.After(50 * time.Millisecond):
	}
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	stale    atomic.Int32
}

func (m *fakeMetrics) ObserveFetch(_, outcome string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = map[string]int{}
	}
	m.outcomes[outcome]++
}

func (m *fakeMetrics) IncStaleDiscarded(string) { m.stale.Add(1) }

func (m *fakeMetrics) outcome(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[name]
}

func page(totalPages int, items ...string) models.PaginatedResult[string] {
	return models.PaginatedResult[string]{Items: items, TotalPages: totalPages}
}

type PaginatedSuite struct {
	suite.Suite
	stub    *stub[models.ListQuery, models.PaginatedResult[string]]
	metrics *fakeMetrics
	p       *Paginated[string]
}

func TestPaginatedSuite(t *testing.T) {
	suite.Run(t, new(PaginatedSuite))
}

func (s *PaginatedSuite) SetupTest() {
	s.stub = newStub[models.ListQuery, models.PaginatedResult[string]](s.T())
	s.metrics = &fakeMetrics{}
	s.p = NewPaginated(context.Background(), "rooms", s.stub.fetch, 6, WithMetrics(s.metrics))
}

func (s *PaginatedSuite) TearDownTest() {
	s.p.Close()
}

func (s *PaginatedSuite) settle() PageState[string] {
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	s.Require().NoError(s.p.Wait(ctx))
	return s.p.Snapshot()
}

func (s *PaginatedSuite) loadFirstPage() {
	first := s.stub.next(s.T())
	first.resolve(page(3, "a", "b"))
	s.settle()
}

func (s *PaginatedSuite) TestInitialRequest() {
	first := s.stub.next(s.T())
	s.Equal(1, first.key.Page)
	s.Equal(6, first.key.PageSize)

	state := s.p.Snapshot()
	s.True(state.Loading)
	s.False(state.Loaded)
	s.Empty(state.Items)

	first.resolve(page(3, "a", "b"))
	state = s.settle()
	s.False(state.Loading)
	s.True(state.Loaded)
	s.Equal([]string{"a", "b"}, state.Items)
	s.Equal(3, state.TotalPages)
	s.Equal(1, state.CurrentPage)
	s.Equal(6, state.PageSize)
	s.Empty(state.Error)
	s.Equal(1, s.metrics.outcome("ok"))
}

func (s *PaginatedSuite) TestSetPageIssuesExactlyOneRequest() {
	s.loadFirstPage()

	s.True(s.p.SetPage(2))
	c := s.stub.next(s.T())
	s.Equal(2, c.key.Page)
	s.Equal(6, c.key.PageSize)

	s.False(s.p.SetPage(2), "unchanged query must not re-fetch")
	s.stub.none(s.T())

	c.resolve(page(3, "c"))
	state := s.settle()
	s.Equal([]string{"c"}, state.Items)
	s.Equal(2, state.CurrentPage)
}

func (s *PaginatedSuite) TestPageBelowOneIsClamped() {
	s.loadFirstPage()

	s.False(s.p.SetPage(0))
	s.stub.none(s.T())
}

func (s *PaginatedSuite) TestLastRequestWins() {
	s.loadFirstPage()

	s.p.SetPage(2)
	older := s.stub.next(s.T())
	s.p.SetPage(3)
	newer := s.stub.next(s.T())

	s.True(older.aborted(), "superseded request is cancelled")
	s.False(newer.aborted())

	newer.resolve(page(3, "from-3"))
	s.settle()
	older.resolve(page(3, "from-2"))

	s.Eventually(func() bool { return s.metrics.stale.Load() == 1 }, waitFor, 5*time.Millisecond)
	state := s.p.Snapshot()
	s.Equal([]string{"from-3"}, state.Items)
	s.Equal(3, state.CurrentPage)
}

func (s *PaginatedSuite) TestStaleResolutionWhileNewerPending() {
	s.loadFirstPage()

	s.p.SetPage(2)
	older := s.stub.next(s.T())
	s.p.SetPage(3)
	newer := s.stub.next(s.T())

	older.resolve(page(3, "from-2"))
	s.Eventually(func() bool { return s.metrics.stale.Load() == 1 }, waitFor, 5*time.Millisecond)

	state := s.p.Snapshot()
	s.True(state.Loading, "newer request still in flight")
	s.Equal([]string{"a", "b"}, state.Items)

	newer.resolve(page(3, "from-3"))
	s.Equal([]string{"from-3"}, s.settle().Items)
}

func (s *PaginatedSuite) TestSnapshotCarriesLatestQuery() {
	s.loadFirstPage()

	s.p.SetPageAndFilters(2, map[string]string{"species": "Cat"})
	c := s.stub.next(s.T())
	state := s.p.Snapshot()
	s.True(state.Loading)
	s.Equal(2, state.Query.Page)
	s.Equal(map[string]string{"species": "Cat"}, state.Query.Filters)

	state.Query.Filters["species"] = "Dog"
	s.Equal("Cat", s.p.Snapshot().Query.Filters["species"], "snapshot filters are a copy")

	c.resolve(page(2, "c"))
	state = s.settle()
	s.True(state.Query.Equal(c.key))
}

func (s *PaginatedSuite) TestFailurePreservesData() {
	s.loadFirstPage()

	s.p.SetPage(2)
	s.stub.next(s.T()).fail(dErrors.New(dErrors.CodeUnavailable, ""))

	state := s.settle()
	s.False(state.Loading)
	s.Equal([]string{"a", "b"}, state.Items)
	s.Equal(3, state.TotalPages)
	s.Equal(dErrors.DefaultMessage, state.Error)
	s.True(dErrors.HasCode(state.Err, dErrors.CodeUnavailable))
	s.Equal(1, s.metrics.outcome("error"))
}

func (s *PaginatedSuite) TestFailureMessageSurfaces() {
	s.stub.next(s.T()).fail(dErrors.New(dErrors.CodeValidation, "pageSize must be positive"))
	s.Equal("pageSize must be positive", s.settle().Error)
}

func (s *PaginatedSuite) TestSuccessClearsError() {
	s.stub.next(s.T()).fail(errors.New("boom"))
	s.Equal("boom", s.settle().Error)

	s.p.SetPage(2)
	s.stub.next(s.T()).resolve(page(2, "x"))
	state := s.settle()
	s.Empty(state.Error)
	s.NoError(state.Err)
	s.True(state.Loaded)
}

func (s *PaginatedSuite) TestCloseIgnoresLateResolution() {
	s.loadFirstPage()

	s.p.SetPage(2)
	inflight := s.stub.next(s.T())
	s.p.Close()

	s.True(inflight.aborted())
	s.True(s.p.Closed())
	inflight.resolve(page(9, "late"))

	s.Eventually(func() bool { return s.metrics.stale.Load() == 1 }, waitFor, 5*time.Millisecond)
	s.Equal([]string{"a", "b"}, s.p.Snapshot().Items)

	s.False(s.p.SetPage(4))
	s.stub.none(s.T())
}

func (s *PaginatedSuite) TestSetFiltersAndPageSize() {
	s.loadFirstPage()

	s.True(s.p.SetFilters(map[string]string{"clinicId": "4"}))
	c := s.stub.next(s.T())
	s.Equal(map[string]string{"clinicId": "4"}, c.key.Filters)
	c.resolve(page(1, "d"))
	s.settle()

	s.False(s.p.SetFilters(map[string]string{"clinicId": "4"}))
	s.stub.none(s.T())

	s.True(s.p.SetPageSize(12))
	c = s.stub.next(s.T())
	s.Equal(12, c.key.PageSize)
	s.Equal(map[string]string{"clinicId": "4"}, c.key.Filters)
	c.resolve(page(1, "d"))
	s.Equal(12, s.settle().PageSize)
}

func (s *PaginatedSuite) TestSetPageAndFiltersIssuesOneRequest() {
	s.loadFirstPage()

	s.True(s.p.SetPageAndFilters(2, map[string]string{"name": "cozy"}))
	c := s.stub.next(s.T())
	s.Equal(2, c.key.Page)
	s.Equal(map[string]string{"name": "cozy"}, c.key.Filters)
	s.stub.none(s.T())
	c.resolve(page(2, "c"))
	s.settle()

	s.False(s.p.SetPageAndFilters(2, map[string]string{"name": "cozy"}))
	s.stub.none(s.T())
}

func (s *PaginatedSuite) TestReloadReissuesCurrentQuery() {
	s.loadFirstPage()
	s.True(s.p.SetPage(2))
	pending := s.stub.next(s.T())
	s.False(s.p.Reload(), "reload while loading is a no-op")
	pending.fail(errors.New("boom"))
	s.NotEmpty(s.settle().Error)

	s.True(s.p.Reload())
	c := s.stub.next(s.T())
	s.Equal(2, c.key.Page)
	c.resolve(page(3, "c"))
	state := s.settle()
	s.Empty(state.Error)
	s.Equal([]string{"c"}, state.Items)
}

func (s *PaginatedSuite) TestSetFetchAlwaysRefetches() {
	s.loadFirstPage()

	other := newStub[models.ListQuery, models.PaginatedResult[string]](s.T())
	s.True(s.p.SetFetch(other.fetch))
	c := other.next(s.T())
	s.Equal(1, c.key.Page)
	c.resolve(page(1, "z"))
	s.Equal([]string{"z"}, s.settle().Items)
	s.stub.none(s.T())
}

func (s *PaginatedSuite) TestSnapshotIsACopy() {
	s.loadFirstPage()

	state := s.p.Snapshot()
	state.Items[0] = "mutated"
	s.Equal("a", s.p.Snapshot().Items[0])
}

func (s *PaginatedSuite) TestWaitHonorsContext() {
	s.stub.next(s.T())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	s.ErrorIs(s.p.Wait(ctx), context.DeadlineExceeded)
}

func (s *PaginatedSuite) TestChangedFiresOnResolution() {
	first := s.stub.next(s.T())
	changed := s.p.Changed()
	first.resolve(page(1, "a"))

	select {
	case <-changed:
	case <-time.After(waitFor):
		s.Fail("expected a change notification")
	}
}

func TestParentCancellationAbortsRequest(t *testing.T) {
	st := newStub[models.ListQuery, models.PaginatedResult[string]](t)
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPaginated(ctx, "pets", st.fetch, 6)
	defer p.Close()

	c := st.next(t)
	cancel()
	assert.True(t, c.aborted())
}

func TestItem(t *testing.T) {
	t.Run("empty id issues no request", func(t *testing.T) {
		st := newStub[string, string](t)
		it := NewItem(context.Background(), "clinic", st.fetch, "")
		defer it.Close()

		st.none(t)
		state := it.Snapshot()
		assert.False(t, state.Loading)
		assert.False(t, state.HasData)
		assert.NoError(t, it.Wait(context.Background()))
	})

	t.Run("fetches by id and refetches on change", func(t *testing.T) {
		st := newStub[string, string](t)
		it := NewItem(context.Background(), "clinic", st.fetch, "4")
		defer it.Close()

		c := st.next(t)
		assert.Equal(t, "4", c.key)
		assert.True(t, it.Snapshot().Loading)
		c.resolve("Downtown Vet")
		require.NoError(t, it.Wait(context.Background()))
		assert.Equal(t, "Downtown Vet", it.Snapshot().Data)

		assert.False(t, it.SetID("4"))
		st.none(t)

		assert.True(t, it.SetID("5"))
		c = st.next(t)
		assert.Equal(t, "5", c.key)
		assert.False(t, it.Snapshot().HasData, "data for the previous id is dropped")
		c.resolve("Uptown Vet")
		require.NoError(t, it.Wait(context.Background()))
		assert.Equal(t, "Uptown Vet", it.Snapshot().Data)
		assert.Equal(t, "5", it.ID())
	})

	t.Run("not found", func(t *testing.T) {
		st := newStub[string, string](t)
		it := NewItem(context.Background(), "clinic", st.fetch, "999")
		defer it.Close()

		st.next(t).fail(dErrors.New(dErrors.CodeNotFound, "clinic not found"))
		require.NoError(t, it.Wait(context.Background()))
		state := it.Snapshot()
		assert.True(t, state.NotFound)
		assert.Equal(t, "clinic not found", state.Error)
		assert.False(t, state.Loading)
	})

	t.Run("stale id is discarded", func(t *testing.T) {
		st := newStub[string, string](t)
		it := NewItem(context.Background(), "room", st.fetch, "1")
		defer it.Close()

		older := st.next(t)
		it.SetID("2")
		newer := st.next(t)
		assert.True(t, older.aborted())

		newer.resolve("two")
		require.NoError(t, it.Wait(context.Background()))
		older.resolve("one")
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, "two", it.Snapshot().Data)
	})

	t.Run("clearing the id aborts", func(t *testing.T) {
		st := newStub[string, string](t)
		it := NewItem(context.Background(), "room", st.fetch, "1")
		defer it.Close()

		c := st.next(t)
		assert.False(t, it.SetID(""))
		assert.True(t, c.aborted())
		assert.False(t, it.Snapshot().Loading)
	})

	t.Run("reload keeps data on failure", func(t *testing.T) {
		st := newStub[string, string](t)
		it := NewItem(context.Background(), "room", st.fetch, "1")
		defer it.Close()

		st.next(t).resolve("one")
		require.NoError(t, it.Wait(context.Background()))

		assert.True(t, it.Reload())
		st.next(t).fail(dErrors.New(dErrors.CodeTimeout, ""))
		require.NoError(t, it.Wait(context.Background()))
		state := it.Snapshot()
		assert.Equal(t, "one", state.Data)
		assert.Equal(t, dErrors.DefaultMessage, state.Error)
		assert.False(t, state.NotFound)
	})
}

func TestList(t *testing.T) {
	st := newStub[struct{}, []string](t)
	fetch := func(ctx context.Context) ([]string, error) { return st.fetch(ctx, struct{}{}) }
	l := NewList(context.Background(), "clinics", fetch)
	defer l.Close()

	st.next(t).resolve([]string{"a", "b"})
	require.NoError(t, l.Wait(context.Background()))

	state := l.Snapshot()
	assert.Equal(t, []string{"a", "b"}, state.Data)
	state.Data[0] = "mutated"
	assert.Equal(t, "a", l.Snapshot().Data[0])

	assert.True(t, l.Reload())
	st.next(t).resolve([]string{"c"})
	require.NoError(t, l.Wait(context.Background()))
	assert.Equal(t, []string{"c"}, l.Snapshot().Data)

	l.Close()
	assert.False(t, l.Reload())
	assert.NoError(t, l.Wait(context.Background()), "closed fetchers never block")
}
