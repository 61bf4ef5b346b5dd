package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"pawhub/internal/models"
	"pawhub/pkg/testutil"
)

// PersisterSuite runs the same contract against every backend.
type PersisterSuite struct {
	suite.Suite
	newPersister func(t *testing.T) Persister
	p            Persister
}

func (s *PersisterSuite) SetupTest() {
	s.p = s.newPersister(s.T())
}

func TestMemoryPersister(t *testing.T) {
	suite.Run(t, &PersisterSuite{newPersister: func(*testing.T) Persister { return NewMemoryPersister() }})
}

func TestRedisPersister(t *testing.T) {
	suite.Run(t, &PersisterSuite{newPersister: func(t *testing.T) Persister {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return NewRedisPersister(client, 0)
	}})
}

func TestSQLitePersister(t *testing.T) {
	suite.Run(t, &PersisterSuite{newPersister: func(t *testing.T) Persister {
		p, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "sessions.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = p.Close() })
		return p
	}})
}

func sampleSession() models.Session {
	return testutil.NewSessionBuilder().
		WithToken("token-abc").
		WithProfileID(7).
		WithName("Mina Park").
		WithEmail("mina@pawhub.test").
		Build()
}

func (s *PersisterSuite) TestLoadMissing() {
	_, found, err := s.p.Load(context.Background(), "pawhub:user-auth-storage:nobody")
	s.Require().NoError(err)
	s.False(found)
}

func (s *PersisterSuite) TestSaveLoadDelete() {
	ctx := context.Background()
	key := Key("pawhub", models.SessionUser, "v1")

	s.Require().NoError(s.p.Save(ctx, key, sampleSession()))
	got, found, err := s.p.Load(ctx, key)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(sampleSession(), got)

	s.Require().NoError(s.p.Delete(ctx, key))
	_, found, err = s.p.Load(ctx, key)
	s.Require().NoError(err)
	s.False(found)
}

func (s *PersisterSuite) TestSaveOverwrites() {
	ctx := context.Background()
	key := Key("pawhub", models.SessionUser, "v1")

	s.Require().NoError(s.p.Save(ctx, key, sampleSession()))
	next := sampleSession()
	next.AccessToken = "token-def"
	s.Require().NoError(s.p.Save(ctx, key, next))

	got, _, err := s.p.Load(ctx, key)
	s.Require().NoError(err)
	s.Equal("token-def", got.AccessToken)
}

func (s *PersisterSuite) TestKeysAreIndependent() {
	ctx := context.Background()
	userKey := Key("pawhub", models.SessionUser, "v1")
	adminKey := Key("pawhub", models.SessionAdmin, "v1")

	s.Require().NoError(s.p.Save(ctx, userKey, sampleSession()))
	_, found, err := s.p.Load(ctx, adminKey)
	s.Require().NoError(err)
	s.False(found)
}

func (s *PersisterSuite) TestDeleteMissingIsNoop() {
	s.NoError(s.p.Delete(context.Background(), "pawhub:admin-auth-storage:nobody"))
}

func TestKey(t *testing.T) {
	require.Equal(t, "pawhub:admin-auth-storage:v1", Key("pawhub", models.SessionAdmin, "v1"))
	require.Equal(t, "pawhub:user-auth-storage:v1", Key("pawhub:", models.SessionUser, "v1"))
	require.Equal(t, "user-auth-storage:v1", Key("", models.SessionUser, "v1"))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := decode([]byte("not json"))
	require.Error(t, err)

	_, _, err = decode([]byte(`{"state":{"session":null},"version":9}`))
	require.Error(t, err)

	_, found, err := decode([]byte(`{"state":{"session":null},"version":1}`))
	require.NoError(t, err)
	require.False(t, found)
}

func TestRedisPersisterTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	p := NewRedisPersister(client, time.Hour)

	key := Key("pawhub", models.SessionUser, "v1")
	require.NoError(t, p.Save(context.Background(), key, sampleSession()))
	require.Equal(t, time.Hour, mr.TTL(key))
	require.NoError(t, p.Health(context.Background()))

	mr.FastForward(2 * time.Hour)
	_, found, err := p.Load(context.Background(), key)
	require.NoError(t, err)
	require.False(t, found)
}
