package listing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"pawhub/internal/fetcher"
	"pawhub/internal/models"
	"pawhub/internal/search"
	"pawhub/pkg/testutil"
)

type RegistrySuite struct {
	suite.Suite
	now      time.Time
	registry *Registry
	builds   int
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.builds = 0
	s.registry = NewRegistry(
		WithIdleTTL(10*time.Minute),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *RegistrySuite) TearDownTest() {
	s.registry.Close()
}

func (s *RegistrySuite) clinics(visitor string) *View[models.Clinic] {
	return Get(s.registry, visitor, "clinics", func(ctx context.Context) *View[models.Clinic] {
		s.builds++
		fetch := func(context.Context, models.ListQuery) (models.PaginatedResult[models.Clinic], error) {
			return testutil.Page(testutil.Clinics(1)...), nil
		}
		return NewView(fetcher.NewPaginated(ctx, "clinics", fetch, 6), search.ClinicFields...)
	})
}

func (s *RegistrySuite) TestReusesViewPerVisitor() {
	a := s.clinics("visitor-a")
	again := s.clinics("visitor-a")
	b := s.clinics("visitor-b")

	s.Same(a, again)
	s.NotSame(a, b)
	s.Equal(2, s.builds)
	s.Equal(2, s.registry.Len())
}

func (s *RegistrySuite) TestSearchTermSurvivesBetweenRequests() {
	s.clinics("visitor-a").SetSearch("down")
	s.Equal("down", s.clinics("visitor-a").Search())
	s.Empty(s.clinics("visitor-b").Search())
}

func (s *RegistrySuite) TestEvictIdle() {
	stale := s.clinics("visitor-a")
	s.now = s.now.Add(8 * time.Minute)
	s.clinics("visitor-b")

	n, err := s.registry.EvictIdle(context.Background(), s.now.Add(3*time.Minute))
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal(1, s.registry.Len())
	s.True(stale.Pager().Closed())

	fresh := s.clinics("visitor-a")
	s.NotSame(stale, fresh)
}

func (s *RegistrySuite) TestForget() {
	s.clinics("visitor-a")
	s.clinics("visitor-b")

	s.Equal(1, s.registry.Forget("visitor-a"))
	s.Equal(1, s.registry.Len())
}

func TestRegistryCloseAbortsViews(t *testing.T) {
	r := NewRegistry()
	started := make(chan struct{})
	v := Get(r, "v", "pets", func(ctx context.Context) *View[models.CafePet] {
		fetch := func(ctx context.Context, _ models.ListQuery) (models.PaginatedResult[models.CafePet], error) {
			close(started)
			<-ctx.Done()
			return models.PaginatedResult[models.CafePet]{}, ctx.Err()
		}
		return NewView(fetcher.NewPaginated(ctx, "cafe-pets", fetch, 6), search.CafePetFields...)
	})

	<-started
	r.Close()
	assert.True(t, v.Pager().Closed())
	require.NoError(t, v.Wait(context.Background()))
	assert.Zero(t, r.Len())
}
