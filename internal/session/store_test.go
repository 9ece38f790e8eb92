package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, ttl), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	rec, err := s.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.True(t, rec.Empty())

	require.NoError(t, s.Save(ctx, "sid-1", Record{Token: "opaque", User: []byte(`{"id":"u1"}`)}))
	assert.True(t, mr.Exists("otpdash:session:sid-1:token"))
	assert.True(t, mr.Exists("otpdash:session:sid-1:user"))
	assert.Equal(t, time.Hour, mr.TTL("otpdash:session:sid-1:token"))

	rec, err = s.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "opaque", rec.Token)
	assert.JSONEq(t, `{"id":"u1"}`, string(rec.User))

	require.NoError(t, s.Clear(ctx, "sid-1"))
	assert.False(t, mr.Exists("otpdash:session:sid-1:token"))
	assert.False(t, mr.Exists("otpdash:session:sid-1:user"))
}

func TestRedisStore_TTLFollowsJWTExpiry(t *testing.T) {
	s, mr := newRedisStore(t, 24*time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	tok := signedToken(t, now.Add(2*time.Hour))
	require.NoError(t, s.Save(context.Background(), "sid-1", Record{Token: tok, User: []byte(`{"id":"u1"}`)}))

	assert.Equal(t, 2*time.Hour, mr.TTL("otpdash:session:sid-1:token"))
	assert.Equal(t, 2*time.Hour, mr.TTL("otpdash:session:sid-1:user"))
}

func TestRedisStore_Expires(t *testing.T) {
	s, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sid-1", Record{Token: "opaque", User: []byte(`{"id":"u1"}`)}))
	mr.FastForward(2 * time.Minute)

	rec, err := s.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.True(t, rec.Empty())
}

func TestRedisStore_NotConfigured(t *testing.T) {
	s := NewRedisStore(nil, time.Hour)
	_, err := s.Load(context.Background(), "x")
	assert.ErrorIs(t, err, ErrStoreNotConfigured)
	assert.ErrorIs(t, s.Save(context.Background(), "x", Record{}), ErrStoreNotConfigured)
	assert.ErrorIs(t, s.Ping(context.Background()), ErrStoreNotConfigured)
}

func TestRedisStore_ManagerReload(t *testing.T) {
	s, _ := newRedisStore(t, time.Hour)
	require.NoError(t, s.Save(context.Background(), "sid-9", Record{
		Token: "tok",
		User:  []byte(`{"id":"u1","role":"admin","plan":{"name":"Pro"}}`),
	}))

	m := NewManager("sid-9", s, &mockBackend{})
	m.Initialize(context.Background())

	assert.Equal(t, StatusAuthenticated, m.Status())
	assert.True(t, m.User().IsAdmin())
	assert.Equal(t, "Pro", m.Plan().Name)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(context.Background(), "sid", Record{Token: "t", User: []byte(`{}`)}))
	now = now.Add(2 * time.Minute)

	rec, err := s.Load(context.Background(), "sid")
	require.NoError(t, err)
	assert.True(t, rec.Empty())
}

func TestMemoryStore_ExpiredBearerDropsQuickly(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	tok := signedToken(t, now.Add(-time.Minute))
	require.NoError(t, s.Save(context.Background(), "sid", Record{Token: tok, User: []byte(`{"id":"u1"}`)}))

	now = now.Add(2 * time.Second)
	rec, err := s.Load(context.Background(), "sid")
	require.NoError(t, err)
	assert.True(t, rec.Empty())
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	got, ok := TokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = TokenExpiry("not-a-jwt")
	assert.False(t, ok)

	_, ok = TokenExpiry("")
	assert.False(t, ok)
}

func TestRecordTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Hour, recordTTL("opaque", time.Hour, now))
	assert.Equal(t, 30*time.Minute, recordTTL(signedToken(t, now.Add(30*time.Minute)), time.Hour, now))
	assert.Equal(t, time.Hour, recordTTL(signedToken(t, now.Add(5*time.Hour)), time.Hour, now))
	assert.Equal(t, expiredTTL, recordTTL(signedToken(t, now.Add(-time.Minute)), time.Hour, now))
}
